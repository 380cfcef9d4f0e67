// Package fields holds the lightweight regex extractors that populate the
// catalog columns around the classification verdict: RFI numbers, titles,
// dates, parties, and drawing references.
package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RFI number from a folder or file name: "RFI 913 - Storm Pipe", "RFI-913",
// "RFI_913 LE Response", "RFI#913", "RFI913" all normalize to "RFI-913".
var rfiNumberRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brfi\b[^\d]{0,3}(\d{1,6})\b`),
	regexp.MustCompile(`(?i)\brfi#?[^\d]?(\d{1,6})\b`),
	regexp.MustCompile(`(?i)\brfi(\d{1,6})\b`),
}

// RFINumber parses an RFI number out of a folder or file name and returns it
// as "RFI-<N>", or "" if nothing matches.
func RFINumber(name string) string {
	if name == "" {
		return ""
	}
	for _, re := range rfiNumberRes {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return fmt.Sprintf("RFI-%d", n)
	}
	return ""
}

const maxTitleLen = 180

// Title takes the leading run of the normalized text as a display title.
func Title(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if i := strings.IndexAny(text, ".\n"); i > 10 && i < maxTitleLen {
		return strings.TrimSpace(text[:i])
	}
	if len(text) > maxTitleLen {
		return strings.TrimSpace(text[:maxTitleLen])
	}
	return text
}

var dateRe = regexp.MustCompile(`(?i)\b(?:\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\w*\s+\d{1,2},\s*\d{4})\b`)

// Dates returns the distinct date strings found in text, first-seen order.
// By convention the first is the submitted date and the second the response
// date; RFI correspondence prints them in that order.
func Dates(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, d := range dateRe.FindAllString(text, -1) {
		d = strings.TrimSpace(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
		if len(out) == 4 {
			break
		}
	}
	return out
}

func DateSubmitted(text string) string {
	if d := Dates(text); len(d) > 0 {
		return d[0]
	}
	return ""
}

func DateResponded(text string) string {
	if d := Dates(text); len(d) > 1 {
		return d[1]
	}
	return ""
}

var (
	toRe   = regexp.MustCompile(`(?i)\b(?:To|Attn\.?):\s*([^:]{2,80}?)(?:\s+(?:From|Date|Subject|Re|Attn\.?):|$)`)
	fromRe = regexp.MustCompile(`(?i)\bFrom:\s*([^:]{2,80}?)(?:\s+(?:To|Date|Subject|Re|Attn\.?):|$)`)
)

// ToParty extracts the addressee after a "To:"/"Attn:" label. Works on
// whitespace-collapsed text, so the capture is bounded by the next label
// rather than a line ending.
func ToParty(text string) string {
	return firstGroup(toRe, text)
}

// FromParty extracts the sender after a "From:" label.
func FromParty(text string) string {
	return firstGroup(fromRe, text)
}

var (
	questionRe = regexp.MustCompile(`(?i)\bQuestion:\s*(.{1,600}?)(?:\b(?:Response|Answer):|$)`)
	responseRe = regexp.MustCompile(`(?i)\b(?:Response|Answer):\s*(.{1,600}?)(?:\b(?:Question|Subject|Date|To|From):|$)`)
)

// Question extracts the block after a "Question:" header, up to the next
// header or a length cap.
func Question(text string) string {
	return firstGroup(questionRe, text)
}

// Response extracts the block after a "Response:"/"Answer:" header.
func Response(text string) string {
	return firstGroup(responseRe, text)
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Detail/sheet reference notations:
//   "8/S303", "12/A501"
//   "Detail 5 on S401", "Detail 3 at A-501"
//   "SK-235", "SK235"
var (
	detailSlashRe   = regexp.MustCompile(`\b(\d{1,2})\s*/\s*([A-Z]{1,3}[ -]?\d{1,4}[A-Z]?)\b`)
	detailOnSheetRe = regexp.MustCompile(`(?i)\b(?:detail|det\.?)\s*(\d{1,2})\s*(?:on|at)\s*([A-Z]{1,3}[ -]?\d{1,4}[A-Z]?)\b`)
	skRefRe         = regexp.MustCompile(`(?i)\bSK[- ]?(\d{1,4}[A-Z]?)\b`)
)

// DetailRefs extracts detail/sheet and SK references from free text and
// returns them as a CSV string, deduplicated in first-seen order:
// "8/S303, 12/A501, SK-235".
func DetailRefs(text string) string {
	var found []string

	for _, m := range detailSlashRe.FindAllStringSubmatch(text, -1) {
		found = append(found, m[1]+"/"+normSheet(m[2]))
	}
	for _, m := range detailOnSheetRe.FindAllStringSubmatch(text, -1) {
		found = append(found, m[1]+"/"+normSheet(m[2]))
	}
	for _, m := range skRefRe.FindAllStringSubmatch(text, -1) {
		found = append(found, "SK-"+strings.ToUpper(strings.ReplaceAll(m[1], " ", "")))
	}

	seen := make(map[string]struct{}, len(found))
	var out []string
	for _, ref := range found {
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return strings.Join(out, ", ")
}

// normSheet normalizes sheet identifiers: "A-501" -> "A501", "S 303" -> "S303".
func normSheet(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}
