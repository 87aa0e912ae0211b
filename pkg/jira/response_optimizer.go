package jira

import (
	"encoding/json"
	"fmt"
	"strings"

	gj "github.com/andygrunwald/go-jira"
)

// PaginationMetadata is the paging window Jira reported for a list call.
type PaginationMetadata struct {
	StartAt    int  `json:"startAt"`
	MaxResults int  `json:"maxResults"`
	Total      int  `json:"total"`
	Returned   int  `json:"returned"`
	IsLast     bool `json:"isLast"`
}

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Items      any                 `json:"items"`
	Pagination *PaginationMetadata `json:"pagination,omitempty"`
}

// ExtractPagination reads startAt/maxResults/total from a search response.
// It returns nil when the response carried no paging information.
func ExtractPagination(resp *gj.Response, returned int) *PaginationMetadata {
	if resp == nil || (resp.Total == 0 && resp.MaxResults == 0 && resp.StartAt == 0) {
		return nil
	}
	return &PaginationMetadata{
		StartAt:    resp.StartAt,
		MaxResults: resp.MaxResults,
		Total:      resp.Total,
		Returned:   returned,
		IsLast:     resp.StartAt+returned >= resp.Total,
	}
}

// FieldFilter removes noise such as REST self links and avatar URLs.
type FieldFilter struct {
	excludedFields []string
}

// NewFieldFilter creates a field filter for the given entity type.
func NewFieldFilter(entityType string) *FieldFilter {
	var fields []string

	switch strings.ToLower(entityType) {
	case "issue":
		fields = []string{
			"self",
			"expand",
			"fields.assignee.avatarUrls",
			"fields.assignee.self",
			"fields.reporter.avatarUrls",
			"fields.reporter.self",
			"fields.creator.avatarUrls",
			"fields.status.iconUrl",
			"fields.status.self",
			"fields.issuetype.iconUrl",
			"fields.priority.iconUrl",
			"fields.project.avatarUrls",
		}
	case "project":
		fields = []string{
			"self",
			"expand",
			"avatarUrls",
			"projectCategory.self",
			"lead.avatarUrls",
			"lead.self",
		}
	case "user":
		fields = []string{
			"self",
			"avatarUrls",
			"expand",
			"groups",
			"applicationRoles",
		}
	}

	return &FieldFilter{excludedFields: fields}
}

// FilterResponse removes excluded fields from every element of a slice.
// Values that do not encode to a JSON array are returned unchanged.
func (f *FieldFilter) FilterResponse(data any) (any, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}

	var slice []map[string]any
	if err := json.Unmarshal(jsonData, &slice); err != nil {
		return data, nil
	}

	for _, item := range slice {
		f.removeFields(item)
	}
	return slice, nil
}

func (f *FieldFilter) removeFields(item map[string]any) {
	for _, path := range f.excludedFields {
		visitPath(item, path, func(m map[string]any, key string) {
			delete(m, key)
		})
	}
}

// visitPath calls fn for the last segment of a dotted path. Intermediate
// segments may be objects or arrays of objects.
func visitPath(item map[string]any, path string, fn func(m map[string]any, key string)) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		fn(item, head)
		return
	}
	switch v := item[head].(type) {
	case map[string]any:
		visitPath(v, rest, fn)
	case []any:
		for _, elem := range v {
			if m, ok := elem.(map[string]any); ok {
				visitPath(m, rest, fn)
			}
		}
	}
}

// ResponseOptimizer combines text truncation and field filtering.
type ResponseOptimizer struct {
	truncator   *TextTruncator
	filter      *FieldFilter
	truncFields []string
}

// NewResponseOptimizer creates an optimizer for the given entity type.
func NewResponseOptimizer(entityType string) *ResponseOptimizer {
	return &ResponseOptimizer{
		truncator:   NewTextTruncator(MaxFieldLength),
		filter:      NewFieldFilter(entityType),
		truncFields: truncationFields(entityType),
	}
}

func truncationFields(entityType string) []string {
	switch strings.ToLower(entityType) {
	case "issue":
		return IssueFields
	case "project":
		return ProjectFields
	case "comment":
		return CommentFields
	default:
		return nil
	}
}

// OptimizeListResponse truncates, filters and wraps a list with pagination metadata.
func (o *ResponseOptimizer) OptimizeListResponse(data any, returned int, resp *gj.Response) (*PaginatedResponse, error) {
	truncated, err := o.truncator.TruncateListResponse(data, o.truncFields)
	if err != nil {
		return nil, fmt.Errorf("failed to truncate response: %w", err)
	}

	filtered, err := o.filter.FilterResponse(truncated)
	if err != nil {
		return nil, fmt.Errorf("failed to filter response: %w", err)
	}

	return &PaginatedResponse{
		Items:      filtered,
		Pagination: ExtractPagination(resp, returned),
	}, nil
}
