// Package pdftest builds in-memory PDF fixtures for exercising the document
// pipeline in tests. Templates are generated programmatically so the test
// suite never depends on binary files checked into the repository.
package pdftest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"sync"
	"testing"

	"github.com/unidoc/unipdf/v3/annotator"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

var (
	licenseOnce sync.Once
	licenseErr  error
	licensed    bool
)

// RequireLicense applies the metered toolkit license from
// UNIDOC_LICENSE_API_KEY once per process and skips the calling test when
// the variable is not set. The toolkit refuses to serialize documents
// unlicensed, so every test that builds a fixture or writes a document
// calls this first.
func RequireLicense(tb testing.TB) {
	tb.Helper()
	licenseOnce.Do(func() {
		key := os.Getenv("UNIDOC_LICENSE_API_KEY")
		if key == "" {
			return
		}
		licenseErr = license.SetMeteredKey(key)
		licensed = licenseErr == nil
	})
	if licenseErr != nil {
		tb.Fatalf("pdf toolkit license: %v", licenseErr)
	}
	if !licensed {
		tb.Skip("UNIDOC_LICENSE_API_KEY not set")
	}
}

// Template builds a single-page document with one named text field per entry,
// stacked top to bottom.
func Template(fieldNames ...string) ([]byte, error) {
	return Pages(fieldNames)
}

// Pages builds one page per slice, each carrying its own named text fields.
func Pages(pages ...[]string) ([]byte, error) {
	blank, err := blankDocument(len(pages))
	if err != nil {
		return nil, err
	}

	reader, err := model.NewPdfReader(bytes.NewReader(blank))
	if err != nil {
		return nil, fmt.Errorf("reread blank document: %w", err)
	}

	writer := model.NewPdfWriter()
	form := model.NewPdfAcroForm()

	for pageIdx, fieldNames := range pages {
		page, err := reader.GetPage(pageIdx + 1)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageIdx+1, err)
		}
		for i, name := range fieldNames {
			lly := 740 - float64(i)*24
			tf, err := annotator.NewTextField(page, name, []float64{72, lly, 312, lly + 16}, annotator.TextFieldOptions{})
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			*form.Fields = append(*form.Fields, tf.PdfField)
			page.AddAnnotation(tf.Annotations[0].PdfAnnotation)
		}
		if err := writer.AddPage(page); err != nil {
			return nil, fmt.Errorf("add page %d: %w", pageIdx+1, err)
		}
	}

	if err := writer.SetForms(form); err != nil {
		return nil, fmt.Errorf("set form: %w", err)
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

// FormlessDocument builds a one-page document carrying no form at all.
func FormlessDocument() ([]byte, error) {
	return blankDocument(1)
}

func blankDocument(pages int) ([]byte, error) {
	c := creator.New()
	c.SetPageSize(creator.PageSizeLetter)
	for i := 0; i < pages; i++ {
		c.NewPage()
		p := c.NewParagraph(fmt.Sprintf("Fixture page %d", i+1))
		if err := c.Draw(p); err != nil {
			return nil, fmt.Errorf("draw page %d: %w", i+1, err)
		}
	}
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return nil, fmt.Errorf("write blank document: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractPageText returns the text content of the numbered page.
func ExtractPageText(content []byte, pageNum int) (string, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	page, err := reader.GetPage(pageNum)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", pageNum, err)
	}
	ex, err := extractor.New(page)
	if err != nil {
		return "", fmt.Errorf("extractor: %w", err)
	}
	return ex.ExtractText()
}

// PageCount reports the number of pages in the document.
func PageCount(content []byte) (int, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(content))
	if err != nil {
		return 0, fmt.Errorf("read document: %w", err)
	}
	return reader.GetNumPages()
}

// PageImageCount reports how many raster images the numbered page draws.
func PageImageCount(content []byte, pageNum int) (int, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(content))
	if err != nil {
		return 0, fmt.Errorf("read document: %w", err)
	}
	page, err := reader.GetPage(pageNum)
	if err != nil {
		return 0, fmt.Errorf("page %d: %w", pageNum, err)
	}
	ex, err := extractor.New(page)
	if err != nil {
		return 0, fmt.Errorf("extractor: %w", err)
	}
	images, err := ex.ExtractPageImages(nil)
	if err != nil {
		return 0, fmt.Errorf("extract images: %w", err)
	}
	return len(images.Images), nil
}

// FormFieldCount reports how many form fields the document still defines.
func FormFieldCount(content []byte) (int, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(content))
	if err != nil {
		return 0, fmt.Errorf("read document: %w", err)
	}
	if reader.AcroForm == nil {
		return 0, nil
	}
	return len(reader.AcroForm.AllFields()), nil
}

// PNGDataURI returns a small opaque PNG wrapped in a browser-style data URI,
// the shape signature pads produce.
func PNGDataURI(width, height int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(PNGBytes(width, height))
}

// PNGBytes returns an encoded PNG with a visible diagonal stroke.
func PNGBytes(width, height int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, strokeImage(width, height))
	return buf.Bytes()
}

// JPEGBytes returns an encoded JPEG with a visible diagonal stroke.
func JPEGBytes(width, height int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, strokeImage(width, height), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func strokeImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 0; x < width; x++ {
		y := x * height / width
		if y >= height {
			y = height - 1
		}
		img.Set(x, y, color.Black)
	}
	return img
}
