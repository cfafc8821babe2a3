package docgen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unipdf/v3/annotator"
	"github.com/unidoc/unipdf/v3/core"
	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"
)

// FillerOptions configures document filling behavior.
type FillerOptions struct {
	// RegenerateAppearances rebuilds text-field appearance streams before
	// flattening so filled values render in viewers that ignore the form
	// dictionary.
	RegenerateAppearances bool
}

// DefaultFillerOptions returns the options used in production.
func DefaultFillerOptions() FillerOptions {
	return FillerOptions{
		RegenerateAppearances: true,
	}
}

// Filler populates a template with an assembled record and serializes a
// flattened, non-editable document.
type Filler struct {
	options FillerOptions
	logger  *zap.Logger
}

// NewFiller creates a document filler.
func NewFiller(logger *zap.Logger, options FillerOptions) *Filler {
	return &Filler{
		options: options,
		logger:  logger,
	}
}

// pendingSignature pairs a decoded image with its resolved placement. The
// list is built before flattening removes the widgets from the pages.
type pendingSignature struct {
	field     string
	image     signatureImage
	placement widgetPlacement
}

// =====================================================
// Fill Pipeline
// =====================================================

// Fill populates the kind's template with the record, embeds the signature
// images, flattens the form, and serializes the final document. Missing
// template fields and unusable signatures are logged and skipped; only an
// unreadable template or a serialization problem fails the fill.
func (f *Filler) Fill(kind DocumentKind, template []byte, rec Record) (*DocumentOutput, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateUnreadable, kind, err)
	}

	fields := indexFields(reader.AcroForm)
	if len(fields) == 0 {
		f.logger.Warn("template defines no form fields", zap.String("kind", string(kind)))
	}

	values := fieldValues(rec)
	set, missing := 0, 0
	for role, fieldName := range FieldNames(kind) {
		if role == RoleApplicantSignature || role == RoleGuardianSignature {
			continue
		}
		if setTextField(fields, fieldName, values[role]) {
			set++
			continue
		}
		missing++
		f.logger.Warn("template field missing",
			zap.String("kind", string(kind)),
			zap.String("role", string(role)),
			zap.String("field", fieldName))
	}

	pending := f.collectSignatures(kind, reader, fields, rec)

	if reader.AcroForm != nil {
		appearance := annotator.FieldAppearance{
			OnlyIfMissing:        true,
			RegenerateTextFields: f.options.RegenerateAppearances,
		}
		if err := reader.FlattenFields(true, appearance); err != nil {
			return nil, fmt.Errorf("flatten %s form: %w", kind, err)
		}
	}

	content, err := f.assemble(reader, pending)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", kind, err)
	}

	out := &DocumentOutput{
		Kind:     kind,
		Filename: fmt.Sprintf("%s_%s.pdf", kind, StripSeparators(rec.Applicant.DocumentNumber)),
		Content:  content,
	}

	f.logger.Info("document filled",
		zap.String("kind", string(kind)),
		zap.Int("fields_set", set),
		zap.Int("fields_missing", missing),
		zap.Int("signatures", len(pending)),
		zap.Int("size_bytes", len(out.Content)))

	return out, nil
}

// fieldValues computes every text value a template can carry. Roles a kind's
// table does not list are simply never written. Guardian slots are only
// populated for a minor; for an adult they stay empty strings, so a reused
// acta template never shows stale guardian content after flattening.
func fieldValues(rec Record) map[FieldRole]string {
	a := rec.Applicant
	values := map[FieldRole]string{
		RoleApplicantName:           a.FullName,
		RoleApplicantIdentity:       BuildIdentityLabel(a.DocumentType, a.DocumentNumber, a.DocumentOther),
		RoleApplicantDocNumber:      FormatDocumentNumber(a.DocumentNumber),
		RoleApplicantTypeTI:         CheckboxSentinel(a.DocumentType, DocTypeTI),
		RoleApplicantTypeCC:         CheckboxSentinel(a.DocumentType, DocTypeCC),
		RoleApplicantTypeCE:         CheckboxSentinel(a.DocumentType, DocTypeCE),
		RoleApplicantTypeOther:      CheckboxSentinel(a.DocumentType, DocTypeOther),
		RoleApplicantTypeOtherLabel: otherTypeLabel(a),
		RoleProgram:                 a.Program,
		RoleCohort:                  a.Cohort,
		RoleTrainingCenter:          a.TrainingCenter,
		RoleCity:                    a.City,
		RoleRegion:                  a.Region,
		RoleDay:                     rec.Date.Day,
		RoleMonth:                   rec.Date.Month,
		RoleYear:                    rec.Date.Year,
		RoleFullDate:                rec.Date.Full,
	}
	if g := rec.Guardian; g != nil && rec.Minor() {
		values[RoleGuardianName] = g.FullName
		values[RoleGuardianIdentity] = BuildIdentityLabel(g.DocumentType, g.DocumentNumber, "")
		values[RoleGuardianDocNumber] = FormatDocumentNumber(g.DocumentNumber)
		values[RoleGuardianTypeCC] = CheckboxSentinel(g.DocumentType, DocTypeCC)
		values[RoleGuardianTypeCE] = CheckboxSentinel(g.DocumentType, DocTypeCE)
		values[RoleGuardianMunicipality] = g.IssueMunicipality
		values[RoleGuardianEmail] = g.Email
		values[RoleGuardianAddress] = g.Address
	}
	return values
}

func otherTypeLabel(a ApplicantRecord) string {
	if a.DocumentType == DocTypeOther {
		return a.DocumentOther
	}
	return ""
}

// indexFields builds a name lookup over the form's field tree.
func indexFields(acro *model.PdfAcroForm) map[string]*model.PdfField {
	index := make(map[string]*model.PdfField)
	if acro == nil {
		return index
	}
	for _, fld := range acro.AllFields() {
		name := fld.PartialName()
		if name == "" {
			if full, err := fld.FullName(); err == nil {
				name = full
			}
		}
		if name != "" {
			index[name] = fld
		}
	}
	return index
}

// setTextField writes value into the named field. Reports false when the
// template does not define the field, or defines it as something other than
// the text fields this contract is written against.
func setTextField(fields map[string]*model.PdfField, name, value string) bool {
	fld, ok := fields[name]
	if !ok {
		return false
	}
	if _, isText := fld.GetContext().(*model.PdfFieldText); !isText {
		return false
	}
	fld.V = core.MakeString(value)
	return true
}

// =====================================================
// Signature Embedding
// =====================================================

// collectSignatures decodes the signature payloads and resolves their widget
// placements while the form still exists. Everything that goes wrong here is
// logged and skipped: a lost signature degrades the document, it never fails
// the request.
func (f *Filler) collectSignatures(kind DocumentKind, reader *model.PdfReader, fields map[string]*model.PdfField, rec Record) []pendingSignature {
	names := FieldNames(kind)
	payloads := []struct {
		role    FieldRole
		payload string
	}{
		{RoleApplicantSignature, rec.Signatures.Applicant},
		{RoleGuardianSignature, guardianSignaturePayload(rec)},
	}

	var pending []pendingSignature
	for _, p := range payloads {
		if strings.TrimSpace(p.payload) == "" {
			continue
		}
		fieldName, ok := names[p.role]
		if !ok {
			continue
		}
		img, err := decodeSignaturePayload(p.payload)
		if err != nil {
			f.logger.Warn("signature payload unusable",
				zap.String("kind", string(kind)),
				zap.String("field", fieldName),
				zap.Error(err))
			continue
		}
		fld, ok := fields[fieldName]
		if !ok {
			f.logger.Warn("signature field missing",
				zap.String("kind", string(kind)),
				zap.String("field", fieldName))
			continue
		}
		placement, err := resolveWidgetPlacement(reader, fld)
		if err != nil {
			f.logger.Warn("signature field has no usable placement",
				zap.String("kind", string(kind)),
				zap.String("field", fieldName),
				zap.Error(err))
			continue
		}
		pending = append(pending, pendingSignature{field: fieldName, image: img, placement: placement})
	}
	return pending
}

// guardianSignaturePayload returns the guardian signature only when the
// document requires one, which is exactly when the applicant is a minor.
func guardianSignaturePayload(rec Record) string {
	if rec.Minor() {
		return rec.Signatures.Guardian
	}
	return ""
}

// assemble rebuilds the flattened pages through the creator, drawing pending
// signatures onto the pages their widgets belonged to.
func (f *Filler) assemble(reader *model.PdfReader, pending []pendingSignature) ([]byte, error) {
	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	c := creator.New()
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i, err)
		}
		if err := c.AddPage(page); err != nil {
			return nil, fmt.Errorf("assemble page %d: %w", i, err)
		}
		for _, ps := range pending {
			if ps.placement.page != i {
				continue
			}
			f.drawSignature(c, page, ps)
		}
	}

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawSignature renders one signature inside its widget box, aspect-fitted
// and centered on both axes.
func (f *Filler) drawSignature(c *creator.Creator, page *model.PdfPage, ps pendingSignature) {
	img, err := c.NewImageFromData(ps.image.data)
	if err != nil {
		f.logger.Warn("signature image not drawable",
			zap.String("field", ps.field),
			zap.String("format", ps.image.format),
			zap.Error(err))
		return
	}

	w, h := fitSignature(img.Width(), img.Height(), ps.placement.width(), ps.placement.height())
	if w <= 0 || h <= 0 {
		f.logger.Warn("signature box degenerate", zap.String("field", ps.field))
		return
	}

	mediaBox, err := page.GetMediaBox()
	if err != nil {
		f.logger.Warn("page has no media box", zap.String("field", ps.field), zap.Error(err))
		return
	}

	img.ScaleToWidth(w)
	x, y := signaturePosition(ps.placement, *mediaBox, w, h)
	img.SetPos(x, y)

	if err := c.Draw(img); err != nil {
		f.logger.Warn("signature draw failed", zap.String("field", ps.field), zap.Error(err))
	}
}
