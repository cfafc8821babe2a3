package docgen

import "errors"

// DocumentKind identifies one of the two enrollment documents. The kind
// string doubles as the filename slug.
type DocumentKind string

const (
	// KindActa is the commitment acknowledgment every applicant signs.
	KindActa DocumentKind = "acta_compromiso"
	// KindTratamiento is the data-treatment consent required for minors.
	KindTratamiento DocumentKind = "tratamiento_datos"
)

// DocumentType is an identity-document class. TI (tarjeta de identidad)
// marks the applicant as a minor; every other value is an adult.
type DocumentType string

const (
	DocTypeTI    DocumentType = "TI"
	DocTypeCC    DocumentType = "CC"
	DocTypeCE    DocumentType = "CE"
	DocTypeOther DocumentType = "Other"
)

// ErrTemplateUnreadable marks template bytes that could not be parsed as a
// PDF. Callers use it to tell a broken template apart from a field
// population problem, which is never fatal.
var ErrTemplateUnreadable = errors.New("template unreadable")

// ApplicantRecord carries the applicant identity and programme data copied
// onto both documents.
type ApplicantRecord struct {
	FullName       string
	DocumentType   DocumentType
	DocumentOther  string // custom label, meaningful only for DocTypeOther
	DocumentNumber string
	Program        string
	Cohort         string
	TrainingCenter string
	City           string
	Region         string
}

// GuardianRecord is the legal guardian block, assembled only for minors.
type GuardianRecord struct {
	FullName          string
	DocumentType      DocumentType // CC or CE
	DocumentNumber    string
	IssueMunicipality string
	Email             string
	Address           string
}

// SignatureAssets holds the captured signature payloads as received from the
// signing surface: data-URI or bare base64 PNG/JPEG strings.
type SignatureAssets struct {
	Applicant string
	Guardian  string
}

// ComputedDate is the generation date broken into the pieces the templates
// print separately.
type ComputedDate struct {
	Day   string // zero-padded, "05"
	Month string // localized name, "agosto"
	Year  string // "2026"
	Full  string // "05 de agosto de 2026"
}

// Record is the fully assembled input for one generation run. Guardian is
// nil for adults.
type Record struct {
	Applicant  ApplicantRecord
	Guardian   *GuardianRecord
	Signatures SignatureAssets
	Date       ComputedDate
}

// Minor reports whether the applicant's document type marks a minor.
func (r Record) Minor() bool {
	return r.Applicant.DocumentType == DocTypeTI
}

// DocumentOutput is one produced, flattened document.
type DocumentOutput struct {
	Kind     DocumentKind
	Filename string
	Content  []byte
}
