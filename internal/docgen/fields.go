package docgen

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/unidoc/unipdf/v3/model"
)

// FieldRole names one semantic slot a template exposes. Fill logic works in
// roles; the per-document tables below translate them into the field names
// the template authors committed to. Changing a name here without changing
// the template (or vice versa) turns that slot into a silent no-op, which is
// what the startup preflight exists to catch.
type FieldRole string

const (
	RoleApplicantName           FieldRole = "applicant_name"
	RoleApplicantIdentity       FieldRole = "applicant_identity"
	RoleApplicantDocNumber      FieldRole = "applicant_doc_number"
	RoleApplicantTypeTI         FieldRole = "applicant_type_ti"
	RoleApplicantTypeCC         FieldRole = "applicant_type_cc"
	RoleApplicantTypeCE         FieldRole = "applicant_type_ce"
	RoleApplicantTypeOther      FieldRole = "applicant_type_other"
	RoleApplicantTypeOtherLabel FieldRole = "applicant_type_other_label"
	RoleProgram                 FieldRole = "program"
	RoleCohort                  FieldRole = "cohort"
	RoleTrainingCenter          FieldRole = "training_center"
	RoleCity                    FieldRole = "city"
	RoleRegion                  FieldRole = "region"
	RoleDay                     FieldRole = "day"
	RoleMonth                   FieldRole = "month"
	RoleYear                    FieldRole = "year"
	RoleFullDate                FieldRole = "full_date"
	RoleGuardianName            FieldRole = "guardian_name"
	RoleGuardianIdentity        FieldRole = "guardian_identity"
	RoleGuardianDocNumber       FieldRole = "guardian_doc_number"
	RoleGuardianTypeCC          FieldRole = "guardian_type_cc"
	RoleGuardianTypeCE          FieldRole = "guardian_type_ce"
	RoleGuardianMunicipality    FieldRole = "guardian_municipality"
	RoleGuardianEmail           FieldRole = "guardian_email"
	RoleGuardianAddress         FieldRole = "guardian_address"
	RoleApplicantSignature      FieldRole = "applicant_signature"
	RoleGuardianSignature       FieldRole = "guardian_signature"
)

// actaFields is the field-name contract of the commitment template.
var actaFields = map[FieldRole]string{
	RoleApplicantName:           "nombre_aprendiz",
	RoleApplicantIdentity:       "identificacion_aprendiz",
	RoleApplicantDocNumber:      "documento_aprendiz",
	RoleApplicantTypeTI:         "tipo_ti",
	RoleApplicantTypeCC:         "tipo_cc",
	RoleApplicantTypeCE:         "tipo_ce",
	RoleApplicantTypeOther:      "tipo_otro",
	RoleApplicantTypeOtherLabel: "tipo_otro_cual",
	RoleProgram:                 "programa_formacion",
	RoleCohort:                  "numero_ficha",
	RoleTrainingCenter:          "centro_formacion",
	RoleDay:                     "dia",
	RoleMonth:                   "mes",
	RoleYear:                    "anio",
	RoleFullDate:                "fecha_completa",
	RoleGuardianName:            "nombre_acudiente",
	RoleGuardianIdentity:        "identificacion_acudiente",
	RoleGuardianDocNumber:       "documento_acudiente",
	RoleApplicantSignature:      "firma_aprendiz",
	RoleGuardianSignature:       "firma_acudiente",
}

// tratamientoFields is the field-name contract of the data-treatment
// template. It carries everything the acta does plus the city/region pair
// and the guardian contact block.
var tratamientoFields = map[FieldRole]string{
	RoleApplicantName:           "nombre_aprendiz",
	RoleApplicantIdentity:       "identificacion_aprendiz",
	RoleApplicantDocNumber:      "documento_aprendiz",
	RoleApplicantTypeTI:         "tipo_ti",
	RoleApplicantTypeCC:         "tipo_cc",
	RoleApplicantTypeCE:         "tipo_ce",
	RoleApplicantTypeOther:      "tipo_otro",
	RoleApplicantTypeOtherLabel: "tipo_otro_cual",
	RoleProgram:                 "programa_formacion",
	RoleCohort:                  "numero_ficha",
	RoleTrainingCenter:          "centro_formacion",
	RoleCity:                    "ciudad",
	RoleRegion:                  "region",
	RoleDay:                     "dia",
	RoleMonth:                   "mes",
	RoleYear:                    "anio",
	RoleFullDate:                "fecha_completa",
	RoleGuardianName:            "nombre_acudiente",
	RoleGuardianIdentity:        "identificacion_acudiente",
	RoleGuardianDocNumber:       "documento_acudiente",
	RoleGuardianTypeCC:          "tipo_cc_acudiente",
	RoleGuardianTypeCE:          "tipo_ce_acudiente",
	RoleGuardianMunicipality:    "municipio_acudiente",
	RoleGuardianEmail:           "correo_acudiente",
	RoleGuardianAddress:         "direccion_acudiente",
	RoleApplicantSignature:      "firma_aprendiz",
	RoleGuardianSignature:       "firma_acudiente",
}

// FieldNames returns the role-to-name table for kind. The returned map is
// shared; callers only read it.
func FieldNames(kind DocumentKind) map[FieldRole]string {
	switch kind {
	case KindTratamiento:
		return tratamientoFields
	default:
		return actaFields
	}
}

// ListFormFields parses template bytes and returns the sorted names of the
// form fields it defines. Used by the template preflight; generation always
// reparses its own copy.
func ListFormFields(template []byte) ([]string, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateUnreadable, err)
	}
	if reader.AcroForm == nil {
		return nil, nil
	}
	fields := reader.AcroForm.AllFields()
	names := make([]string, 0, len(fields))
	for _, fld := range fields {
		name := fld.PartialName()
		if name == "" {
			if full, err := fld.FullName(); err == nil {
				name = full
			}
		}
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
