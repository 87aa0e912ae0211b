package jira

import (
	"net/http"
	"strings"
	"testing"

	gj "github.com/andygrunwald/go-jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagedResponse(startAt, maxResults, total int) *gj.Response {
	return &gj.Response{
		Response:   &http.Response{StatusCode: http.StatusOK},
		StartAt:    startAt,
		MaxResults: maxResults,
		Total:      total,
	}
}

func TestExtractPagination(t *testing.T) {
	tests := []struct {
		name     string
		resp     *gj.Response
		returned int
		expected *PaginationMetadata
	}{
		{name: "Nil response", resp: nil, returned: 3, expected: nil},
		{name: "No paging information", resp: okResponse(), returned: 3, expected: nil},
		{
			name: "First page", resp: pagedResponse(0, 20, 45), returned: 20,
			expected: &PaginationMetadata{StartAt: 0, MaxResults: 20, Total: 45, Returned: 20, IsLast: false},
		},
		{
			name: "Last page", resp: pagedResponse(40, 20, 45), returned: 5,
			expected: &PaginationMetadata{StartAt: 40, MaxResults: 20, Total: 45, Returned: 5, IsLast: true},
		},
		{
			name: "Empty result", resp: pagedResponse(0, 50, 0), returned: 0,
			expected: &PaginationMetadata{StartAt: 0, MaxResults: 50, Total: 0, Returned: 0, IsLast: true},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractPagination(tc.resp, tc.returned))
		})
	}
}

func TestFieldFilter_Issues(t *testing.T) {
	issues := []gj.Issue{{
		Key:    "PROJ-1",
		Self:   testBaseURL + "/rest/api/2/issue/10001",
		Expand: "renderedFields",
		Fields: &gj.IssueFields{
			Summary:  "Login",
			Assignee: &gj.User{DisplayName: "Dana", Self: testBaseURL + "/rest/api/2/user", AvatarUrls: gj.AvatarUrls{Four8X48: "a.png"}},
			Status:   &gj.Status{Name: "Open", IconURL: "s.png", Self: "x"},
			Type:     gj.IssueType{Name: "Bug", IconURL: "b.png"},
		},
	}}

	result, err := NewFieldFilter("issue").FilterResponse(issues)
	require.NoError(t, err)
	item := result.([]map[string]any)[0]
	assert.NotContains(t, item, "self")
	assert.NotContains(t, item, "expand")
	assert.Equal(t, "PROJ-1", item["key"])

	fields := item["fields"].(map[string]any)
	assert.Equal(t, "Login", fields["summary"])
	assignee := fields["assignee"].(map[string]any)
	assert.Equal(t, "Dana", assignee["displayName"])
	assert.NotContains(t, assignee, "avatarUrls")
	assert.NotContains(t, assignee, "self")
	assert.NotContains(t, fields["status"], "iconUrl")
	assert.NotContains(t, fields["issuetype"], "iconUrl")
}

func TestFieldFilter_NilAssignee(t *testing.T) {
	issues := []gj.Issue{{Key: "PROJ-1", Fields: &gj.IssueFields{Summary: "Unassigned"}}}
	result, err := NewFieldFilter("issue").FilterResponse(issues)
	require.NoError(t, err)
	assert.Equal(t, "PROJ-1", result.([]map[string]any)[0]["key"])
}

func TestFieldFilter_Users(t *testing.T) {
	users := []gj.User{{AccountID: "acc-1", DisplayName: "Dana", Self: "x", AvatarUrls: gj.AvatarUrls{Four8X48: "a.png"}}}
	result, err := NewFieldFilter("user").FilterResponse(users)
	require.NoError(t, err)
	item := result.([]map[string]any)[0]
	assert.Equal(t, "acc-1", item["accountId"])
	assert.NotContains(t, item, "self")
	assert.NotContains(t, item, "avatarUrls")
}

func TestFieldFilter_UnknownEntityKeepsEverything(t *testing.T) {
	in := []map[string]any{{"self": "x", "id": "1"}}
	result, err := NewFieldFilter("sprint").FilterResponse(in)
	require.NoError(t, err)
	assert.Equal(t, in, result)
}

func TestFieldFilter_EmptySlice(t *testing.T) {
	result, err := NewFieldFilter("project").FilterResponse([]gj.Issue{})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestResponseOptimizer_Integration(t *testing.T) {
	issues := []gj.Issue{{
		Key:  "PROJ-1",
		Self: "x",
		Fields: &gj.IssueFields{
			Summary:     "Long one",
			Description: strings.Repeat("d", 400),
		},
	}}

	out, err := NewResponseOptimizer("issue").OptimizeListResponse(issues, 1, pagedResponse(0, 50, 1))
	require.NoError(t, err)
	require.NotNil(t, out.Pagination)
	assert.True(t, out.Pagination.IsLast)

	item := out.Items.([]map[string]any)[0]
	assert.NotContains(t, item, "self")
	desc := item["fields"].(map[string]any)["description"].(string)
	assert.Equal(t, strings.Repeat("d", MaxFieldLength)+TruncationSuffix, desc)
}
