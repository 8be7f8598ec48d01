package translate

import (
	"strings"

	"github.com/goliatone/go-autotranslate/internal/mlang"
)

// SourceText picks the text to translate out of raw. Untagged text is used
// as is and reports an empty code. Tagged text prefers the region for
// sourceLang, then the "other" region, then the first region in the string.
func SourceText(raw, sourceLang string) (text, code string) {
	segments := mlang.Segments(raw)
	if len(segments) == 0 {
		return raw, ""
	}
	sourceLang = strings.ToLower(strings.TrimSpace(sourceLang))
	inner := mlang.FindSegmentsInner(raw)
	if sourceLang != "" {
		if text, ok := inner[sourceLang]; ok {
			return text, sourceLang
		}
	}
	if text, ok := inner[mlang.OtherCode]; ok {
		return text, mlang.OtherCode
	}
	return segments[0].Inner, segments[0].Code
}
