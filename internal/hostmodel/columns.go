package hostmodel

import (
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// ParseColumnType classifies a declared SQL type such as "VARCHAR(255)" or
// "longtext". length is used when the type carries no size.
func ParseColumnType(declared string, length int) (interfaces.ColumnKind, int) {
	t := strings.ToLower(strings.TrimSpace(declared))
	if open := strings.IndexByte(t, '('); open >= 0 {
		if closeIdx := strings.IndexByte(t[open:], ')'); closeIdx > 0 {
			size := strings.SplitN(t[open+1:open+closeIdx], ",", 2)[0]
			if n, err := strconv.Atoi(strings.TrimSpace(size)); err == nil {
				length = n
			}
		}
		t = strings.TrimSpace(t[:open])
	}

	switch {
	case strings.Contains(t, "char"):
		return interfaces.ColumnChar, length
	case strings.Contains(t, "text"), t == "clob":
		return interfaces.ColumnText, 0
	case strings.Contains(t, "int"):
		return interfaces.ColumnInteger, 0
	case strings.Contains(t, "real"), strings.Contains(t, "num"), strings.Contains(t, "dec"),
		strings.Contains(t, "float"), strings.Contains(t, "double"):
		return interfaces.ColumnNumber, 0
	case strings.Contains(t, "blob"), strings.Contains(t, "bytea"), strings.Contains(t, "binary"):
		return interfaces.ColumnBinary, 0
	default:
		return interfaces.ColumnOther, 0
	}
}

func sortedStrings(values []string) []string {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}
