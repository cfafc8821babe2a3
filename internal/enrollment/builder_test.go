package enrollment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/docgen"
)

func validAdultRequest() GenerateRequest {
	return GenerateRequest{
		Applicant: ApplicantPayload{
			FullName:       "  Laura Gomez Duque ",
			DocumentType:   "CC",
			DocumentNumber: "52.804.123",
			Program:        "Gestion Logistica",
			Cohort:         "2755001",
			TrainingCenter: "Centro de Comercio",
			City:           "Bogota",
			Region:         "Cundinamarca",
		},
		Signatures: SignaturePayload{Applicant: "data:image/png;base64,aGVsbG8="},
	}
}

func validMinorRequest() GenerateRequest {
	req := validAdultRequest()
	req.Applicant.DocumentType = "TI"
	req.Applicant.DocumentNumber = "1098765432"
	req.Guardian = &GuardianPayload{
		FullName:          "Marta Pineda Correa",
		DocumentType:      "CC",
		DocumentNumber:    "43888999",
		IssueMunicipality: "Medellin",
		Email:             "marta.pineda@example.com",
		Address:           "Calle 44 # 52-165",
	}
	req.Signatures.Guardian = "data:image/png;base64,d29ybGQ="
	return req
}

func TestBuildGenerationRecordAdult(t *testing.T) {
	now := time.Date(2026, time.August, 5, 10, 30, 0, 0, time.UTC)

	rec, err := BuildGenerationRecord(validAdultRequest(), now)
	require.NoError(t, err)

	assert.Equal(t, "Laura Gomez Duque", rec.Applicant.FullName, "values must be trimmed")
	assert.Equal(t, docgen.DocTypeCC, rec.Applicant.DocumentType)
	assert.False(t, rec.Minor())
	assert.Nil(t, rec.Guardian)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", rec.Signatures.Applicant)
	assert.Equal(t, "", rec.Signatures.Guardian)

	assert.Equal(t, "05", rec.Date.Day)
	assert.Equal(t, "agosto", rec.Date.Month)
	assert.Equal(t, "2026", rec.Date.Year)
	assert.Equal(t, "05 de agosto de 2026", rec.Date.Full)
}

func TestBuildGenerationRecordMinor(t *testing.T) {
	rec, err := BuildGenerationRecord(validMinorRequest(), time.Now())
	require.NoError(t, err)

	assert.True(t, rec.Minor())
	require.NotNil(t, rec.Guardian)
	assert.Equal(t, "Marta Pineda Correa", rec.Guardian.FullName)
	assert.Equal(t, docgen.DocTypeCC, rec.Guardian.DocumentType)
	assert.Equal(t, "marta.pineda@example.com", rec.Guardian.Email)
	assert.Equal(t, "data:image/png;base64,d29ybGQ=", rec.Signatures.Guardian)
}

func TestBuildGenerationRecordOtherType(t *testing.T) {
	req := validAdultRequest()
	req.Applicant.DocumentType = "Other"
	req.Applicant.DocumentTypeOther = "Pasaporte"

	rec, err := BuildGenerationRecord(req, time.Now())
	require.NoError(t, err)
	assert.Equal(t, docgen.DocTypeOther, rec.Applicant.DocumentType)
	assert.Equal(t, "Pasaporte", rec.Applicant.DocumentOther)
}

func TestBuildGenerationRecordDropsGuardianForAdult(t *testing.T) {
	req := validAdultRequest()
	req.Guardian = &GuardianPayload{FullName: "Pedro Gomez", DocumentType: "CC", DocumentNumber: "19456789"}
	req.Signatures.Guardian = "data:image/png;base64,eA=="

	rec, err := BuildGenerationRecord(req, time.Now())
	require.NoError(t, err)
	assert.Nil(t, rec.Guardian)
	assert.Equal(t, "", rec.Signatures.Guardian)
}

func TestBuildGenerationRecordValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GenerateRequest)
		wantErr error
	}{
		{
			name:    "unknown document type",
			mutate:  func(r *GenerateRequest) { r.Applicant.DocumentType = "NIT" },
			wantErr: ErrInvalidDocumentType,
		},
		{
			name:    "other label with cc type",
			mutate:  func(r *GenerateRequest) { r.Applicant.DocumentTypeOther = "Pasaporte" },
			wantErr: ErrUnexpectedOtherLabel,
		},
		{
			name:    "missing applicant signature",
			mutate:  func(r *GenerateRequest) { r.Signatures.Applicant = "   " },
			wantErr: ErrApplicantSignatureRequired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validAdultRequest()
			tt.mutate(&req)
			_, err := BuildGenerationRecord(req, time.Now())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestBuildGenerationRecordMinorValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GenerateRequest)
		wantErr error
	}{
		{
			name:    "guardian block missing",
			mutate:  func(r *GenerateRequest) { r.Guardian = nil },
			wantErr: ErrGuardianRequired,
		},
		{
			name:    "guardian name missing",
			mutate:  func(r *GenerateRequest) { r.Guardian.FullName = "" },
			wantErr: ErrGuardianRequired,
		},
		{
			name:    "guardian document number missing",
			mutate:  func(r *GenerateRequest) { r.Guardian.DocumentNumber = " " },
			wantErr: ErrGuardianRequired,
		},
		{
			name:    "guardian type ti not allowed",
			mutate:  func(r *GenerateRequest) { r.Guardian.DocumentType = "TI" },
			wantErr: ErrInvalidGuardianDocumentType,
		},
		{
			name:    "guardian signature missing",
			mutate:  func(r *GenerateRequest) { r.Signatures.Guardian = "" },
			wantErr: ErrGuardianSignatureRequired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validMinorRequest()
			tt.mutate(&req)
			_, err := BuildGenerationRecord(req, time.Now())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestNewComputedDate(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want docgen.ComputedDate
	}{
		{
			name: "single digit day is padded",
			now:  time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC),
			want: docgen.ComputedDate{Day: "05", Month: "agosto", Year: "2026", Full: "05 de agosto de 2026"},
		},
		{
			name: "end of january",
			now:  time.Date(2025, time.January, 31, 23, 59, 0, 0, time.UTC),
			want: docgen.ComputedDate{Day: "31", Month: "enero", Year: "2025", Full: "31 de enero de 2025"},
		},
		{
			name: "december",
			now:  time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
			want: docgen.ComputedDate{Day: "01", Month: "diciembre", Year: "2024", Full: "01 de diciembre de 2024"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewComputedDate(tt.now))
		})
	}
}
