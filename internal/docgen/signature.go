package docgen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strings"

	"github.com/unidoc/unipdf/v3/core"
	"github.com/unidoc/unipdf/v3/model"
)

const dataURIMarker = ";base64,"

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// signatureImage is one decoded signature ready for drawing.
type signatureImage struct {
	data   []byte
	format string // "png" or "jpeg"
}

// decodeSignaturePayload strips an optional data-URI prefix and decodes the
// base64 body. The format comes from the MIME prefix when present, otherwise
// from the magic bytes. Callers skip empty payloads before calling.
func decodeSignaturePayload(payload string) (signatureImage, error) {
	body := payload
	format := ""
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, dataURIMarker)
		if idx < 0 {
			return signatureImage{}, fmt.Errorf("data URI prefix without base64 marker")
		}
		mime := strings.ToLower(payload[len("data:"):idx])
		body = payload[idx+len(dataURIMarker):]
		switch {
		case strings.Contains(mime, "png"):
			format = "png"
		case strings.Contains(mime, "jpeg"), strings.Contains(mime, "jpg"):
			format = "jpeg"
		default:
			return signatureImage{}, fmt.Errorf("unsupported signature image type %q", mime)
		}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return signatureImage{}, fmt.Errorf("decode signature base64: %w", err)
	}
	if format == "" {
		format = sniffImageFormat(data)
		if format == "" {
			return signatureImage{}, fmt.Errorf("signature bytes are neither PNG nor JPEG")
		}
	}
	return signatureImage{data: data, format: format}, nil
}

func sniffImageFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return "png"
	case len(data) >= 3 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff:
		return "jpeg"
	}
	return ""
}

// widgetPlacement is the page and rectangle a signature gets drawn into.
// Page numbers are 1-based.
type widgetPlacement struct {
	page               int
	llx, lly, urx, ury float64
}

func (p widgetPlacement) width() float64  { return p.urx - p.llx }
func (p widgetPlacement) height() float64 { return p.ury - p.lly }

// resolveWidgetPlacement reads the first widget of a field: its rectangle
// and owning page. Page membership is resolved by identity against each
// page's annotation list; when that fails the first page is assumed.
func resolveWidgetPlacement(reader *model.PdfReader, fld *model.PdfField) (widgetPlacement, error) {
	if len(fld.Annotations) == 0 {
		return widgetPlacement{}, fmt.Errorf("field has no widget")
	}
	wa := fld.Annotations[0]
	arr, ok := core.GetArray(wa.Rect)
	if !ok {
		return widgetPlacement{}, fmt.Errorf("widget has no rectangle")
	}
	vals, err := arr.ToFloat64Array()
	if err != nil || len(vals) != 4 {
		return widgetPlacement{}, fmt.Errorf("widget rectangle malformed")
	}
	return widgetPlacement{
		page: pageOfWidget(reader, wa),
		llx:  math.Min(vals[0], vals[2]),
		lly:  math.Min(vals[1], vals[3]),
		urx:  math.Max(vals[0], vals[2]),
		ury:  math.Max(vals[1], vals[3]),
	}, nil
}

func pageOfWidget(reader *model.PdfReader, wa *model.PdfAnnotationWidget) int {
	numPages, err := reader.GetNumPages()
	if err != nil {
		return 1
	}
	target := wa.GetContainingPdfObject()
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			continue
		}
		annots, err := page.GetAnnotations()
		if err != nil {
			continue
		}
		for _, an := range annots {
			if an.GetContainingPdfObject() == target {
				return i
			}
			if widget, ok := an.GetContext().(*model.PdfAnnotationWidget); ok && widget == wa {
				return i
			}
		}
	}
	return 1
}

// signaturePosition maps a widget rectangle to the creator's coordinate
// system, which grows downward from the page's top-left corner. The drawn
// image of size (w, h) is centered inside the rectangle, measured from the
// media box origin rather than absolute user space.
func signaturePosition(p widgetPlacement, mediaBox model.PdfRectangle, w, h float64) (x, y float64) {
	x = (p.llx - mediaBox.Llx) + (p.width()-w)/2
	y = (mediaBox.Ury - p.ury) + (p.height()-h)/2
	return x, y
}

// fitSignature fits an image of natural size (iw, ih) into a box (bw, bh)
// preserving aspect ratio: the width is matched first, and when the scaled
// height overflows, the height becomes the bound instead. One dimension
// always lands exactly on its bound, the other never exceeds it.
func fitSignature(iw, ih, bw, bh float64) (w, h float64) {
	if iw <= 0 || ih <= 0 || bw <= 0 || bh <= 0 {
		return 0, 0
	}
	ratio := iw / ih
	w = bw
	h = w / ratio
	if h > bh {
		h = bh
		w = h * ratio
	}
	return w, h
}
