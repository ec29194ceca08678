package utils

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// ContainsFold reports whether substr occurs in s ignoring case.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// SearchTerms splits a free text query into whitespace separated terms.
func SearchTerms(q string) []string {
	return strings.FieldsFunc(strings.TrimSpace(q), unicode.IsSpace)
}

// MatchesAllTerms reports whether every term occurs in at least one of fields, ignoring case.
func MatchesAllTerms(terms []string, fields ...string) bool {
	for _, term := range terms {
		found := false
		for _, f := range fields {
			if ContainsFold(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// EscapeLike escapes LIKE/ILIKE wildcards so s matches literally. The escape character is a backslash.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ParseCount parses a decimal count string. Nil or non-numeric values report false.
func ParseCount(s *string) (int64, bool) {
	if s == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func StringPtr(s string) *string {
	return &s
}
