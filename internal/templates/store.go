// Package templates loads the enrollment document templates and verifies
// them against the field-name contract the filler depends on.
package templates

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/docgen"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/pkg/storage"
)

// checkedKinds is the fixed set of templates the service serves, in the
// order the status endpoint reports them.
var checkedKinds = []docgen.DocumentKind{docgen.KindActa, docgen.KindTratamiento}

// Source loads a fresh copy of a kind's template bytes. Fresh means the
// returned slice belongs to the caller; sources never share buffers between
// requests.
type Source interface {
	Load(ctx context.Context, kind docgen.DocumentKind) ([]byte, error)
	// Describe names where the kind's template comes from, for logs and the
	// status endpoint.
	Describe(kind docgen.DocumentKind) string
}

// =====================================================
// Filesystem Source
// =====================================================

// FSSource reads templates from local files, one path per document kind.
type FSSource struct {
	paths map[docgen.DocumentKind]string
}

func NewFSSource(actaPath, tratamientoPath string) *FSSource {
	return &FSSource{
		paths: map[docgen.DocumentKind]string{
			docgen.KindActa:        actaPath,
			docgen.KindTratamiento: tratamientoPath,
		},
	}
}

func (s *FSSource) Load(ctx context.Context, kind docgen.DocumentKind) ([]byte, error) {
	path, ok := s.paths[kind]
	if !ok || path == "" {
		return nil, fmt.Errorf("no template path configured for %s", kind)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s template: %w", kind, err)
	}
	return data, nil
}

func (s *FSSource) Describe(kind docgen.DocumentKind) string {
	return s.paths[kind]
}

// =====================================================
// Object Storage Source
// =====================================================

// S3Source reads templates from an object bucket through the storage client.
type S3Source struct {
	client storage.S3Client
	bucket string
	keys   map[docgen.DocumentKind]string
}

func NewS3Source(client storage.S3Client, bucket, actaKey, tratamientoKey string) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		keys: map[docgen.DocumentKind]string{
			docgen.KindActa:        actaKey,
			docgen.KindTratamiento: tratamientoKey,
		},
	}
}

func (s *S3Source) Load(ctx context.Context, kind docgen.DocumentKind) ([]byte, error) {
	key, ok := s.keys[kind]
	if !ok || key == "" {
		return nil, fmt.Errorf("no template key configured for %s", kind)
	}
	return s.client.Download(ctx, s.bucket, key)
}

func (s *S3Source) Describe(kind docgen.DocumentKind) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.keys[kind])
}

// =====================================================
// Contract Preflight
// =====================================================

// ContractStatus is the outcome of one kind's preflight.
type ContractStatus struct {
	Kind          string    `json:"kind"`
	Source        string    `json:"source"`
	Pages         int       `json:"pages"`
	FieldCount    int       `json:"field_count"`
	MissingFields []string  `json:"missing_fields"`
	Error         string    `json:"error,omitempty"`
	CheckedAt     time.Time `json:"checked_at"`
}

// Checker validates the templates structurally and diffs their form fields
// against the field-name contract. A broken structure is an error; a missing
// field is a warning, because per-request fills tolerate misses anyway. The
// last outcome per kind is retained for the status endpoint.
type Checker struct {
	source Source
	logger *zap.Logger

	mu       sync.RWMutex
	statuses map[docgen.DocumentKind]ContractStatus
}

func NewChecker(source Source, logger *zap.Logger) *Checker {
	return &Checker{
		source:   source,
		logger:   logger,
		statuses: make(map[docgen.DocumentKind]ContractStatus),
	}
}

// Run preflights every document kind. The returned error is non-nil when any
// template failed to load or validate.
func (c *Checker) Run(ctx context.Context) error {
	var firstErr error
	for _, kind := range checkedKinds {
		status := c.check(ctx, kind)
		c.mu.Lock()
		c.statuses[kind] = status
		c.mu.Unlock()
		if status.Error != "" && firstErr == nil {
			firstErr = fmt.Errorf("template %s: %s", kind, status.Error)
		}
	}
	return firstErr
}

// Statuses returns the last preflight outcome per kind, commitment first.
func (c *Checker) Statuses() []ContractStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ContractStatus, 0, len(c.statuses))
	for _, kind := range checkedKinds {
		if status, ok := c.statuses[kind]; ok {
			out = append(out, status)
		}
	}
	return out
}

func (c *Checker) check(ctx context.Context, kind docgen.DocumentKind) ContractStatus {
	status := ContractStatus{
		Kind:      string(kind),
		Source:    c.source.Describe(kind),
		CheckedAt: time.Now().UTC(),
	}

	raw, err := c.source.Load(ctx, kind)
	if err != nil {
		status.Error = err.Error()
		c.logger.Error("template load failed",
			zap.String("kind", string(kind)),
			zap.String("source", status.Source),
			zap.Error(err))
		return status
	}

	pctx, err := pdfcpuapi.ReadContext(bytes.NewReader(raw), nil)
	if err != nil {
		status.Error = fmt.Sprintf("parse: %v", err)
		c.logger.Error("template parse failed", zap.String("kind", string(kind)), zap.Error(err))
		return status
	}
	if err := pdfcpuapi.ValidateContext(pctx); err != nil {
		status.Error = fmt.Sprintf("validate: %v", err)
		c.logger.Error("template validation failed", zap.String("kind", string(kind)), zap.Error(err))
		return status
	}
	status.Pages = pctx.PageCount

	names, err := docgen.ListFormFields(raw)
	if err != nil {
		status.Error = fmt.Sprintf("field inventory: %v", err)
		c.logger.Error("template field inventory failed", zap.String("kind", string(kind)), zap.Error(err))
		return status
	}
	status.FieldCount = len(names)

	have := make(map[string]bool, len(names))
	for _, name := range names {
		have[name] = true
	}
	missing := make([]string, 0)
	for role, name := range docgen.FieldNames(kind) {
		if have[name] {
			continue
		}
		missing = append(missing, name)
		c.logger.Warn("template missing contract field",
			zap.String("kind", string(kind)),
			zap.String("role", string(role)),
			zap.String("field", name))
	}
	sort.Strings(missing)
	status.MissingFields = missing

	c.logger.Info("template preflight ok",
		zap.String("kind", string(kind)),
		zap.String("source", status.Source),
		zap.Int("pages", status.Pages),
		zap.Int("fields", status.FieldCount),
		zap.Int("missing_fields", len(missing)))
	return status
}
