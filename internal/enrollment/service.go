package enrollment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/docgen"
)

// TemplateSource loads a fresh copy of a kind's template bytes. Fresh means
// the returned slice is owned by the caller; sources never hand out shared
// buffers.
type TemplateSource interface {
	Load(ctx context.Context, kind docgen.DocumentKind) ([]byte, error)
}

// DocumentFiller produces one flattened document from a template and a
// record.
type DocumentFiller interface {
	Fill(kind docgen.DocumentKind, template []byte, rec docgen.Record) (*docgen.DocumentOutput, error)
}

// Uploader mirrors produced documents into object storage and returns a
// download link for the mirrored copy, or "" when links are not issued.
type Uploader interface {
	Store(ctx context.Context, generationID string, doc *docgen.DocumentOutput) (string, error)
}

// GenerationResult is the outcome of one enrollment request. Treatment is
// nil for adults, never an empty document. MirrorLinks holds presigned
// download links for mirrored copies, keyed by kind; it stays empty unless
// an uploader is configured and link issuance succeeded.
type GenerationResult struct {
	ID          string
	Commitment  *docgen.DocumentOutput
	Treatment   *docgen.DocumentOutput
	MirrorLinks map[docgen.DocumentKind]string
}

// Documents returns the produced documents in a stable order, commitment
// first.
func (r *GenerationResult) Documents() []*docgen.DocumentOutput {
	docs := []*docgen.DocumentOutput{r.Commitment}
	if r.Treatment != nil {
		docs = append(docs, r.Treatment)
	}
	return docs
}

// Service orchestrates document generation for enrollment requests.
type Service struct {
	templates TemplateSource
	filler    DocumentFiller
	uploader  Uploader // nil when output mirroring is disabled
	logger    *zap.Logger
}

// NewService creates the generation orchestrator. uploader may be nil.
func NewService(templates TemplateSource, filler DocumentFiller, uploader Uploader, logger *zap.Logger) *Service {
	return &Service{
		templates: templates,
		filler:    filler,
		uploader:  uploader,
		logger:    logger,
	}
}

// Generate produces the commitment document and, for a minor, the
// data-treatment consent. Both documents are mandatory on their branch: a
// minor without a consent form is not a partial success, it is a failed
// request. Upload mirroring, when configured, is best effort and never
// affects the result.
func (s *Service) Generate(ctx context.Context, rec docgen.Record) (*GenerationResult, error) {
	id := uuid.New().String()
	logger := s.logger.With(zap.String("generation_id", id))

	commitment, err := s.generateDocument(ctx, docgen.KindActa, rec)
	if err != nil {
		logger.Error("commitment generation failed", zap.Error(err))
		return nil, err
	}
	result := &GenerationResult{ID: id, Commitment: commitment}

	if rec.Minor() {
		treatment, err := s.generateDocument(ctx, docgen.KindTratamiento, rec)
		if err != nil {
			logger.Error("data treatment generation failed", zap.Error(err))
			return nil, err
		}
		result.Treatment = treatment
	}

	s.mirror(ctx, logger, result)

	logger.Info("generation complete",
		zap.Bool("minor", rec.Minor()),
		zap.Int("documents", len(result.Documents())))
	return result, nil
}

func (s *Service) generateDocument(ctx context.Context, kind docgen.DocumentKind, rec docgen.Record) (*docgen.DocumentOutput, error) {
	template, err := s.templates.Load(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s template: %w", kind, err)
	}
	return s.filler.Fill(kind, template, rec)
}

func (s *Service) mirror(ctx context.Context, logger *zap.Logger, result *GenerationResult) {
	if s.uploader == nil {
		return
	}
	for _, doc := range result.Documents() {
		url, err := s.uploader.Store(ctx, result.ID, doc)
		if err != nil {
			logger.Warn("output upload failed",
				zap.String("kind", string(doc.Kind)),
				zap.Error(err))
			continue
		}
		if url != "" {
			if result.MirrorLinks == nil {
				result.MirrorLinks = make(map[docgen.DocumentKind]string)
			}
			result.MirrorLinks[doc.Kind] = url
		}
	}
}
