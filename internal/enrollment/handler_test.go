package enrollment

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/docgen"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/templates"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/pkg/security"
)

type stubContracts struct {
	statuses []templates.ContractStatus
}

func (s stubContracts) Statuses() []templates.ContractStatus {
	return s.statuses
}

func newTestRouter(source TemplateSource, uploader Uploader, policy security.SignaturePolicy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(newTestService(source, uploader), stubContracts{
		statuses: []templates.ContractStatus{{Kind: "acta_compromiso", Pages: 1}},
	}, policy)

	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func postDocuments(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollment/documents", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateDocumentsEndpointAdult(t *testing.T) {
	mockSource := new(MockTemplateSource)
	mockSource.On("Load", mock.Anything, docgen.KindActa).Return(contractTemplate(t, docgen.KindActa), nil)
	router := newTestRouter(mockSource, nil, security.DefaultSignaturePolicy())

	w := postDocuments(t, router, adultRequestWithImages())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.GenerationID)
	require.Len(t, resp.Documents, 1)

	doc := resp.Documents[0]
	assert.Equal(t, "acta_compromiso", doc.Kind)
	assert.Equal(t, "acta_compromiso_52804123.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)

	content, err := base64.StdEncoding.DecodeString(doc.ContentBase64)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
	assert.Equal(t, len(content), doc.SizeBytes)
	assert.Empty(t, doc.DownloadURL, "no mirror configured, no link")
}

func TestGenerateDocumentsEndpointMinor(t *testing.T) {
	mockSource := new(MockTemplateSource)
	mockSource.On("Load", mock.Anything, docgen.KindActa).Return(contractTemplate(t, docgen.KindActa), nil)
	mockSource.On("Load", mock.Anything, docgen.KindTratamiento).Return(contractTemplate(t, docgen.KindTratamiento), nil)
	router := newTestRouter(mockSource, nil, security.DefaultSignaturePolicy())

	w := postDocuments(t, router, minorRequestWithImages())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Documents, 2)
	assert.Equal(t, "acta_compromiso", resp.Documents[0].Kind)
	assert.Equal(t, "tratamiento_datos", resp.Documents[1].Kind)
	assert.Equal(t, "tratamiento_datos_1098765432.pdf", resp.Documents[1].Filename)
}

func TestGenerateDocumentsEndpointMirrorLinks(t *testing.T) {
	mockSource := new(MockTemplateSource)
	mockSource.On("Load", mock.Anything, docgen.KindActa).Return(contractTemplate(t, docgen.KindActa), nil)

	mockUploader := new(MockUploader)
	mockUploader.On("Store", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*docgen.DocumentOutput")).
		Return("https://storage.example/signed/acta", nil)

	router := newTestRouter(mockSource, mockUploader, security.DefaultSignaturePolicy())

	w := postDocuments(t, router, adultRequestWithImages())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "https://storage.example/signed/acta", resp.Documents[0].DownloadURL)
	mockUploader.AssertExpectations(t)
}

func TestGenerateDocumentsEndpointValidation(t *testing.T) {
	router := newTestRouter(new(MockTemplateSource), nil, security.DefaultSignaturePolicy())

	t.Run("minor without guardian", func(t *testing.T) {
		req := minorRequestWithImages()
		req.Guardian = nil
		w := postDocuments(t, router, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "guardian")
	})

	t.Run("unknown document type", func(t *testing.T) {
		req := adultRequestWithImages()
		req.Applicant.DocumentType = "NIT"
		w := postDocuments(t, router, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing applicant name", func(t *testing.T) {
		req := adultRequestWithImages()
		req.Applicant.FullName = ""
		w := postDocuments(t, router, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollment/documents", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGenerateDocumentsEndpointOversizeSignature(t *testing.T) {
	router := newTestRouter(new(MockTemplateSource), nil, security.SignaturePolicy{MaxEncodedBytes: 16})

	w := postDocuments(t, router, adultRequestWithImages())
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "too large")
}

func TestGenerateDocumentsEndpointUnreadableTemplate(t *testing.T) {
	mockSource := new(MockTemplateSource)
	mockSource.On("Load", mock.Anything, docgen.KindActa).Return([]byte("broken template"), nil)
	router := newTestRouter(mockSource, nil, security.DefaultSignaturePolicy())

	w := postDocuments(t, router, adultRequestWithImages())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "template")
}

func TestTemplateStatusEndpoint(t *testing.T) {
	router := newTestRouter(new(MockTemplateSource), nil, security.DefaultSignaturePolicy())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrollment/templates", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Templates []templates.ContractStatus `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Templates, 1)
	assert.Equal(t, "acta_compromiso", resp.Templates[0].Kind)
}
