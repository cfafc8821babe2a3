package enrollment

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/docgen"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/templates"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/pkg/security"
)

const contentTypePDF = "application/pdf"

// ContractStatusSource exposes the result of the last template preflight.
type ContractStatusSource interface {
	Statuses() []templates.ContractStatus
}

type Handler struct {
	service   *Service
	contracts ContractStatusSource
	policy    security.SignaturePolicy
}

func NewHandler(service *Service, contracts ContractStatusSource, policy security.SignaturePolicy) *Handler {
	return &Handler{
		service:   service,
		contracts: contracts,
		policy:    policy,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	enrollment := rg.Group("/enrollment")
	{
		enrollment.POST("/documents", h.GenerateDocuments)
		enrollment.GET("/templates", h.TemplateStatus)
	}
}

// GenerateDocuments handles POST /enrollment/documents. Error bodies carry
// the broken rule, never the submitted personal data; the detailed cause
// lives in the service logs under the generation ID.
func (h *Handler) GenerateDocuments(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.policy.Check(req.Signatures.Applicant, req.Signatures.Guardian); err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}

	rec, err := BuildGenerationRecord(req, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Generate(c.Request.Context(), rec)
	if err != nil {
		if errors.Is(err, docgen.ErrTemplateUnreadable) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "document template is not readable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "document generation failed"})
		return
	}

	c.JSON(http.StatusOK, toGenerateResponse(result))
}

// TemplateStatus handles GET /enrollment/templates: the per-kind outcome of
// the last template preflight.
func (h *Handler) TemplateStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.contracts.Statuses()})
}

func toGenerateResponse(result *GenerationResult) GenerateResponse {
	docs := make([]GeneratedDocument, 0, 2)
	for _, doc := range result.Documents() {
		docs = append(docs, GeneratedDocument{
			Kind:          string(doc.Kind),
			Filename:      doc.Filename,
			ContentType:   contentTypePDF,
			ContentBase64: base64.StdEncoding.EncodeToString(doc.Content),
			SizeBytes:     len(doc.Content),
			DownloadURL:   result.MirrorLinks[doc.Kind],
		})
	}
	return GenerateResponse{
		GenerationID: result.ID,
		GeneratedAt:  time.Now().UTC(),
		Documents:    docs,
	}
}
