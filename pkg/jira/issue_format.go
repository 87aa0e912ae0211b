package jira

import (
	"context"
	"sort"
	"strings"

	gj "github.com/andygrunwald/go-jira"

	"github.com/InkyQuill/jira-mcp-server/pkg/fieldmap"
)

func statusName(f *gj.IssueFields) string {
	if f == nil || f.Status == nil {
		return ""
	}
	return f.Status.Name
}

func priorityName(f *gj.IssueFields) string {
	if f == nil || f.Priority == nil {
		return ""
	}
	return f.Priority.Name
}

func assigneeName(f *gj.IssueFields) string {
	if f == nil || f.Assignee == nil {
		return ""
	}
	return userName(f.Assignee)
}

func userName(u *gj.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

func issueFields(issue *gj.Issue) *gj.IssueFields {
	if issue.Fields == nil {
		return &gj.IssueFields{}
	}
	return issue.Fields
}

// issueSummary is the compact issue shape used by search results.
type issueSummary struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Priority    string `json:"priority,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	Type        string `json:"type"`
}

func summarizeIssue(issue gj.Issue) issueSummary {
	f := issueFields(&issue)
	return issueSummary{
		Key:         issue.Key,
		Summary:     f.Summary,
		Description: f.Description,
		Status:      statusName(f),
		Priority:    priorityName(f),
		Assignee:    assigneeName(f),
		Type:        f.Type.Name,
	}
}

// formatFieldValue reduces Jira's nested field values to something readable:
// option, user and status objects become their name, value or displayName.
func formatFieldValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, formatFieldValue(item))
		}
		return out
	case map[string]any:
		for _, key := range []string{"name", "value", "displayName"} {
			if s, ok := val[key]; ok {
				return s
			}
		}
		return val
	default:
		return val
	}
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	}
	return false
}

// customFieldsByName returns the issue's non-empty custom field values keyed by
// display name. Ids the catalog does not know are kept as they are.
func customFieldsByName(ctx context.Context, mapper *fieldmap.Mapper, issue *gj.Issue) (map[string]any, error) {
	out := make(map[string]any)
	f := issueFields(issue)

	ids := make([]string, 0, len(f.Unknowns))
	for id := range f.Unknowns {
		if strings.HasPrefix(id, "customfield_") {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		value := formatFieldValue(f.Unknowns[id])
		if isEmptyValue(value) {
			continue
		}
		name, ok, err := mapper.GetName(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			name = id
		}
		out[name] = value
	}
	return out, nil
}

// resolveFieldID returns the id of the first of names the catalog knows, or
// fallback when none is known.
func resolveFieldID(ctx context.Context, mapper *fieldmap.Mapper, fallback string, names ...string) (string, error) {
	for _, name := range names {
		id, ok, err := mapper.GetID(ctx, name)
		if err != nil {
			return "", err
		}
		if ok {
			return id, nil
		}
	}
	return fallback, nil
}

// unknownValue returns the first non-empty value among the given custom field ids.
func unknownValue(f *gj.IssueFields, ids ...string) (any, bool) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if v, ok := f.Unknowns[id]; ok && !isEmptyValue(v) {
			return v, true
		}
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
