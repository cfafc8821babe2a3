package enrollment

import (
	"time"
)

// ApplicantPayload is the applicant block of a generation request.
type ApplicantPayload struct {
	FullName          string `json:"full_name" binding:"required"`
	DocumentType      string `json:"document_type" binding:"required"`
	DocumentTypeOther string `json:"document_type_other"`
	DocumentNumber    string `json:"document_number" binding:"required"`
	Program           string `json:"program"`
	Cohort            string `json:"cohort"`
	TrainingCenter    string `json:"training_center"`
	City              string `json:"city"`
	Region            string `json:"region"`
}

// GuardianPayload is the legal guardian block, required only for minors.
// Field presence is validated by the record builder, not binding tags,
// because the whole block is optional for adults.
type GuardianPayload struct {
	FullName          string `json:"full_name"`
	DocumentType      string `json:"document_type"`
	DocumentNumber    string `json:"document_number"`
	IssueMunicipality string `json:"issue_municipality"`
	Email             string `json:"email"`
	Address           string `json:"address"`
}

// SignaturePayload carries the captured signature images as data-URI or bare
// base64 strings.
type SignaturePayload struct {
	Applicant string `json:"applicant"`
	Guardian  string `json:"guardian"`
}

// GenerateRequest is the body of POST /enrollment/documents.
type GenerateRequest struct {
	Applicant  ApplicantPayload `json:"applicant" binding:"required"`
	Guardian   *GuardianPayload `json:"guardian"`
	Signatures SignaturePayload `json:"signatures"`
}

// GeneratedDocument is one produced document in transport form. DownloadURL
// is a time-limited link to the mirrored copy, present only when output
// mirroring issues links.
type GeneratedDocument struct {
	Kind          string `json:"kind"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	ContentBase64 string `json:"content_base64"`
	SizeBytes     int    `json:"size_bytes"`
	DownloadURL   string `json:"download_url,omitempty"`
}

// GenerateResponse is the body returned on a successful generation: one
// document for an adult, two for a minor.
type GenerateResponse struct {
	GenerationID string              `json:"generation_id"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Documents    []GeneratedDocument `json:"documents"`
}
