package interfaces

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrWriteFailed is the sentinel behind every *WriteError.
var ErrWriteFailed = errors.New("content model: write failed")

// WriteError reports a failed field write. Actual and Max are rune counts and
// are zero when unknown.
type WriteError struct {
	SourceType string
	ID         int64
	Column     string
	Actual     int
	Max        int
	Err        error
}

func (e *WriteError) Error() string {
	target := fmt.Sprintf("%s.%s id=%d", e.SourceType, e.Column, e.ID)
	switch {
	case e.Max > 0 && e.Actual > e.Max:
		return fmt.Sprintf("content model: write %s: value length %d exceeds column maximum %d", target, e.Actual, e.Max)
	case e.Err != nil:
		return fmt.Sprintf("content model: write %s: %v", target, e.Err)
	default:
		return "content model: write " + target + " failed"
	}
}

func (e *WriteError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrWriteFailed, e.Err}
	}
	return []error{ErrWriteFailed}
}

// ID returns the numeric id column of the record.
func (r ContentRecord) ID() int64 {
	return r.Int64("id")
}

// Has reports whether column is present, even when null.
func (r ContentRecord) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// String returns the column as text. Nulls become "".
func (r ContentRecord) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an integer, or zero when it cannot be read as one.
func (r ContentRecord) Int64(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case []byte:
		n, _ := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	default:
		return 0
	}
}

// Clone returns a shallow copy.
func (r ContentRecord) Clone() ContentRecord {
	if r == nil {
		return nil
	}
	out := make(ContentRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
