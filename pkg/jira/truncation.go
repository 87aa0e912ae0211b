package jira

import (
	"encoding/json"
	"unicode/utf8"
)

const (
	// MaxFieldLength is the maximum length of text fields in list results
	MaxFieldLength = 300
	// TruncationSuffix is appended to truncated strings
	TruncationSuffix = "..."
)

// TextTruncator shortens long text fields in list results.
type TextTruncator struct {
	maxLength int
	suffix    string
}

// NewTextTruncator creates a truncator with the given maximum rune count.
func NewTextTruncator(maxLength int) *TextTruncator {
	return &TextTruncator{
		maxLength: maxLength,
		suffix:    TruncationSuffix,
	}
}

// Truncate cuts s to maxLength runes and appends the suffix.
func (t *TextTruncator) Truncate(s string) string {
	if utf8.RuneCountInString(s) <= t.maxLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:t.maxLength]) + t.suffix
}

// TruncateListResponse truncates the named fields of every element of a slice.
// Field names are JSON names; "a.b" addresses a field of a nested object.
// Values that do not encode to a JSON array are returned unchanged.
func (t *TextTruncator) TruncateListResponse(data any, fieldNames []string) (any, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var slice []map[string]any
	if err := json.Unmarshal(jsonData, &slice); err != nil {
		return data, nil
	}

	for _, item := range slice {
		for _, name := range fieldNames {
			visitPath(item, name, func(m map[string]any, key string) {
				if s, ok := m[key].(string); ok {
					m[key] = t.Truncate(s)
				}
			})
		}
	}
	return slice, nil
}

// Text fields truncated per entity, by JSON name.
var (
	IssueFields   = []string{"description", "fields.description"}
	ProjectFields = []string{"description"}
	CommentFields = []string{"body"}
)
