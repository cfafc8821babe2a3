package enrollment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/docgen"
)

// ErrValidation is the base of every record-building failure. Handlers match
// on it to map the whole family to a 400. The messages are static on purpose:
// they name the broken rule, never the submitted values.
var ErrValidation = errors.New("invalid enrollment request")

var (
	ErrInvalidDocumentType         = fmt.Errorf("%w: applicant document type must be TI, CC, CE or Other", ErrValidation)
	ErrUnexpectedOtherLabel        = fmt.Errorf("%w: document_type_other is only accepted with document type Other", ErrValidation)
	ErrApplicantSignatureRequired  = fmt.Errorf("%w: applicant signature is required", ErrValidation)
	ErrGuardianRequired            = fmt.Errorf("%w: guardian data is required for a minor applicant", ErrValidation)
	ErrInvalidGuardianDocumentType = fmt.Errorf("%w: guardian document type must be CC or CE", ErrValidation)
	ErrGuardianSignatureRequired   = fmt.Errorf("%w: guardian signature is required for a minor applicant", ErrValidation)
)

// BuildGenerationRecord merges a request payload with the generation clock
// into the typed record the filler consumes. All cross-field invariants are
// enforced here, before any template is touched: a record that comes out of
// this builder is complete for its age category.
func BuildGenerationRecord(req GenerateRequest, now time.Time) (docgen.Record, error) {
	docType := docgen.DocumentType(strings.TrimSpace(req.Applicant.DocumentType))
	switch docType {
	case docgen.DocTypeTI, docgen.DocTypeCC, docgen.DocTypeCE, docgen.DocTypeOther:
	default:
		return docgen.Record{}, ErrInvalidDocumentType
	}

	otherLabel := strings.TrimSpace(req.Applicant.DocumentTypeOther)
	if docType != docgen.DocTypeOther && otherLabel != "" {
		return docgen.Record{}, ErrUnexpectedOtherLabel
	}
	if strings.TrimSpace(req.Signatures.Applicant) == "" {
		return docgen.Record{}, ErrApplicantSignatureRequired
	}

	rec := docgen.Record{
		Applicant: docgen.ApplicantRecord{
			FullName:       strings.TrimSpace(req.Applicant.FullName),
			DocumentType:   docType,
			DocumentOther:  otherLabel,
			DocumentNumber: strings.TrimSpace(req.Applicant.DocumentNumber),
			Program:        strings.TrimSpace(req.Applicant.Program),
			Cohort:         strings.TrimSpace(req.Applicant.Cohort),
			TrainingCenter: strings.TrimSpace(req.Applicant.TrainingCenter),
			City:           strings.TrimSpace(req.Applicant.City),
			Region:         strings.TrimSpace(req.Applicant.Region),
		},
		Signatures: docgen.SignatureAssets{
			Applicant: req.Signatures.Applicant,
		},
		Date: NewComputedDate(now),
	}

	if docType == docgen.DocTypeTI {
		guardian, err := buildGuardian(req)
		if err != nil {
			return docgen.Record{}, err
		}
		rec.Guardian = guardian
		rec.Signatures.Guardian = req.Signatures.Guardian
	}
	// A guardian block sent for an adult is dropped here, so nothing
	// downstream ever sees guardian data outside the minor branch.

	return rec, nil
}

func buildGuardian(req GenerateRequest) (*docgen.GuardianRecord, error) {
	g := req.Guardian
	if g == nil {
		return nil, ErrGuardianRequired
	}
	if strings.TrimSpace(g.FullName) == "" || strings.TrimSpace(g.DocumentNumber) == "" {
		return nil, ErrGuardianRequired
	}
	gType := docgen.DocumentType(strings.TrimSpace(g.DocumentType))
	if gType != docgen.DocTypeCC && gType != docgen.DocTypeCE {
		return nil, ErrInvalidGuardianDocumentType
	}
	if strings.TrimSpace(req.Signatures.Guardian) == "" {
		return nil, ErrGuardianSignatureRequired
	}
	return &docgen.GuardianRecord{
		FullName:          strings.TrimSpace(g.FullName),
		DocumentType:      gType,
		DocumentNumber:    strings.TrimSpace(g.DocumentNumber),
		IssueMunicipality: strings.TrimSpace(g.IssueMunicipality),
		Email:             strings.TrimSpace(g.Email),
		Address:           strings.TrimSpace(g.Address),
	}, nil
}

// spanishMonths holds the month names the templates print. Index 0 is
// January.
var spanishMonths = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// NewComputedDate renders the generation date the way the templates print
// it: zero-padded day, Spanish month name, and the composed long form.
func NewComputedDate(now time.Time) docgen.ComputedDate {
	day := fmt.Sprintf("%02d", now.Day())
	month := spanishMonths[now.Month()-1]
	year := strconv.Itoa(now.Year())
	return docgen.ComputedDate{
		Day:   day,
		Month: month,
		Year:  year,
		Full:  fmt.Sprintf("%s de %s de %s", day, month, year),
	}
}
