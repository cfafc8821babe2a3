package docgen

import (
	"fmt"
	"strings"
)

// checkboxMark is what the templates expect inside the text fields they use
// as checkboxes; an empty string clears the box.
const checkboxMark = "X"

var separatorReplacer = strings.NewReplacer(".", "", " ", "")

// StripSeparators removes the dot and space separators a document number may
// arrive with.
func StripSeparators(raw string) string {
	return separatorReplacer.Replace(raw)
}

// FormatDocumentNumber regroups a document number with a dot every three
// digits counted from the right, the Colombian convention: "1234567" becomes
// "1.234.567". Existing dots and spaces are stripped first, so already
// formatted input passes through unchanged. Empty input stays empty.
func FormatDocumentNumber(raw string) string {
	digits := StripSeparators(raw)
	n := len(digits)
	if n == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(n + n/3)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// BuildIdentityLabel renders the composite "type plus number" line used on
// identity fields, e.g. "CC No. 1.234.567". For DocTypeOther the captured
// custom label replaces the type literal when present.
func BuildIdentityLabel(docType DocumentType, docNumber, otherLabel string) string {
	label := string(docType)
	if docType == DocTypeOther && otherLabel != "" {
		label = otherLabel
	}
	return fmt.Sprintf("%s No. %s", label, FormatDocumentNumber(docNumber))
}

// CheckboxSentinel returns the checkbox mark when candidate is the selected
// document type and the empty string otherwise. Writing the result for every
// member of an indicator group is what keeps the group mutually exclusive:
// one member gets the mark, the siblings are cleared in the same pass.
func CheckboxSentinel(selected, candidate DocumentType) string {
	if selected == candidate {
		return checkboxMark
	}
	return ""
}
