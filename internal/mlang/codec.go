// Package mlang reads and merges multi-language text stored as
// {mlang CODE}...{mlang} regions inside a single string.
//
// The lexer is regex based and best effort: tags are matched case
// insensitively with optional whitespace, inner text spans newlines and is
// matched non-greedily. Anything that does not form a complete region is left
// in place as literal text.
package mlang

import (
	"regexp"
	"strings"
)

// OtherCode is the fallback language block.
const OtherCode = "other"

var (
	segmentPattern = regexp.MustCompile(`(?is)\{\s*mlang\s+([a-z]{2}(?:_[a-z]{2})?|other)\s*\}(.*?)\{\s*mlang\s*\}`)
	closingPattern = regexp.MustCompile(`(?i)\{\s*mlang\s*\}`)
	codePattern    = regexp.MustCompile(`^(?:[a-z]{2}(?:_[A-Za-z]{2})?|other)$`)
)

// Segment is one matched region in document order.
type Segment struct {
	Code  string
	Raw   string
	Inner string
	// Start and End delimit Raw; InnerStart and InnerEnd delimit Inner.
	Start, End           int
	InnerStart, InnerEnd int
}

// ValidCode reports whether code is usable as a region code.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Segments lists every well-formed region in document order.
func Segments(text string) []Segment {
	matches := segmentPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Segment, 0, len(matches))
	for _, m := range matches {
		out = append(out, Segment{
			Code:       text[m[2]:m[3]],
			Raw:        text[m[0]:m[1]],
			Inner:      text[m[4]:m[5]],
			Start:      m[0],
			End:        m[1],
			InnerStart: m[4],
			InnerEnd:   m[5],
		})
	}
	return out
}

// HasTags reports whether text contains at least one well-formed region.
func HasTags(text string) bool {
	return segmentPattern.MatchString(text)
}

// HasCode reports whether a region tagged code exists, ignoring case.
func HasCode(text, code string) bool {
	for _, seg := range Segments(text) {
		if strings.EqualFold(seg.Code, code) {
			return true
		}
	}
	return false
}

// FindCodes returns the distinct codes in first-occurrence order.
func FindCodes(text string) []string {
	var codes []string
	seen := map[string]struct{}{}
	for _, seg := range Segments(text) {
		if _, ok := seen[seg.Code]; ok {
			continue
		}
		seen[seg.Code] = struct{}{}
		codes = append(codes, seg.Code)
	}
	return codes
}

// FindSegments maps each code to its full region, tags included. Later
// regions overwrite earlier ones with the same code.
func FindSegments(text string) map[string]string {
	out := map[string]string{}
	for _, seg := range Segments(text) {
		out[seg.Code] = seg.Raw
	}
	return out
}

// FindSegmentsInner maps each code to the text between its tags. Later
// regions overwrite earlier ones with the same code.
func FindSegmentsInner(text string) map[string]string {
	out := map[string]string{}
	for _, seg := range Segments(text) {
		out[seg.Code] = seg.Inner
	}
	return out
}

// Wrap encloses untagged text in a single region for code. Tagged text is
// rejected with a *PreconditionError; empty text is returned unchanged.
func Wrap(text, code string) (string, error) {
	if HasTags(text) {
		return text, &PreconditionError{Op: "wrap", Reason: "text already contains language tags"}
	}
	if text == "" {
		return text, nil
	}
	return open(code) + text + closeTag, nil
}

// UpdateOrAdd sets the inner text of every region tagged code to inner.
// Codes match case insensitively, like the lexer. When no such region exists a new one is inserted right after the last
// closing tag in text, or appended when text has no closing tag.
func UpdateOrAdd(text, code, inner string) string {
	segments := Segments(text)
	var b strings.Builder
	last := 0
	replaced := false
	for _, seg := range segments {
		if !strings.EqualFold(seg.Code, code) {
			continue
		}
		b.WriteString(text[last:seg.InnerStart])
		b.WriteString(inner)
		last = seg.InnerEnd
		replaced = true
	}
	if replaced {
		b.WriteString(text[last:])
		return b.String()
	}

	region := open(code) + inner + closeTag
	closings := closingPattern.FindAllStringIndex(text, -1)
	if len(closings) == 0 {
		return text + region
	}
	at := closings[len(closings)-1][1]
	return text[:at] + region + text[at:]
}

// ReplaceSourceSegment merges newText into the region whose inner text still
// equals expected, so a source edited under another code is not duplicated.
// When no region matches, sourceCode is used as given.
func ReplaceSourceSegment(text, sourceCode, expected, newText string) string {
	target := sourceCode
	inner := FindSegmentsInner(text)
	for _, code := range FindCodes(text) {
		if inner[code] == expected {
			target = code
			break
		}
	}
	return UpdateOrAdd(text, target, newText)
}

const closeTag = "{mlang}"

func open(code string) string {
	return "{mlang " + code + "}"
}
