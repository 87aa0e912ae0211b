package jira

import (
	"context"
	"errors"
	"net/http"
	"testing"

	gj "github.com/andygrunwald/go-jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/InkyQuill/jira-mcp-server/internal/toolsnaps"
)

func TestFormatCommitHandler(t *testing.T) {
	ctx := context.Background()
	tool, _ := FormatCommit(failingGetClient, tr)
	require.NoError(t, toolsnaps.Test(tool.Name, tool))

	t.Run("Plain without validation", func(t *testing.T) {
		_, handler := FormatCommit(failingGetClient, tr)
		result, err := handler(ctx, createMCPRequest(map[string]any{
			"issueKey": " proj-12 ", "message": "add login", "validate": false,
		}))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"issueKey": "PROJ-12",
			"commitMessage": "PROJ-12: add login",
			"subject": "PROJ-12: add login",
			"gitCommand": "git commit -m \"PROJ-12: add login\""
		}`, getTextResult(t, result))
	})

	t.Run("Conventional with description", func(t *testing.T) {
		client, getClient := newMockClient(t)
		client.EXPECT().GetIssue(gomock.Any(), "PROJ-12", &gj.GetQueryOptions{Fields: "summary,issuetype"}).
			Return(&gj.Issue{Key: "PROJ-12", Fields: &gj.IssueFields{Summary: `Support "SSO" login`, Type: gj.IssueType{Name: "Story"}}}, okResponse(), nil)
		_, handler := FormatCommit(getClient, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{
			"issueKey": "PROJ-12", "message": "add login", "type": "feat", "includeDescription": true,
		}))
		require.NoError(t, err)
		out := decodeResult(t, result)
		assert.Equal(t, "feat(PROJ-12): add login", out["subject"])
		assert.Equal(t, "feat(PROJ-12): add login\n\nRelated to: Support \"SSO\" login\nIssue type: Story", out["commitMessage"])
		assert.Contains(t, out["gitCommand"], `Support \"SSO\" login`)
		assert.Equal(t, `Support "SSO" login`, out["issueSummary"])
	})

	t.Run("Unknown issue", func(t *testing.T) {
		client, getClient := newMockClient(t)
		client.EXPECT().GetIssue(gomock.Any(), "PROJ-999", gomock.Any()).Return(nil, response(http.StatusNotFound), errors.New("404"))
		_, handler := FormatCommit(getClient, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{"issueKey": "PROJ-999", "message": "x"}))
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, getTextResult(t, result), "issue PROJ-999 not found")
	})

	t.Run("Invalid key", func(t *testing.T) {
		_, handler := FormatCommit(failingGetClient, tr)
		result, err := handler(ctx, createMCPRequest(map[string]any{"issueKey": "not a key", "message": "x"}))
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, getTextResult(t, result), "invalid issue key format")
	})

	t.Run("Blank message", func(t *testing.T) {
		_, handler := FormatCommit(failingGetClient, tr)
		result, err := handler(ctx, createMCPRequest(map[string]any{"issueKey": "PROJ-1", "message": "   "}))
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, getTextResult(t, result), "message cannot be empty")
	})
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		issues, suggestions int
		score               int
		level               string
	}{
		{0, 0, 100, "Excellent"},
		{0, 2, 90, "Excellent"},
		{1, 1, 80, "Good"},
		{2, 2, 60, "Needs Improvement"},
		{3, 6, 25, "Poor"},
		{10, 10, 0, "Poor"},
	}
	for _, tc := range tests {
		score := qualityScore(tc.issues, tc.suggestions)
		assert.Equal(t, tc.score, score)
		assert.Equal(t, tc.level, qualityLevel(score))
	}
}

func TestCheckDescription(t *testing.T) {
	r := &auditReport{Metadata: map[string]any{}}
	r.checkDescription("Too short", true, true)
	assert.Equal(t, []string{"Description is very short", "No acceptance criteria found"}, r.Issues)
	assert.Contains(t, r.Suggestions, "Consider adding Definition of Done checklist items")

	r = &auditReport{Metadata: map[string]any{}}
	r.checkDescription("Too short", false, false)
	assert.Equal(t, []string{"Description is very short"}, r.Issues)
}

func TestAuditIssueHandler(t *testing.T) {
	ctx := context.Background()
	tool, _ := AuditIssue(failingGetClient, tr)
	require.NoError(t, toolsnaps.Test(tool.Name, tool))

	t.Run("Complete story", func(t *testing.T) {
		issue := &gj.Issue{Key: "PROJ-5", Fields: &gj.IssueFields{
			Summary: "Checkout flow",
			Description: "Users pay with saved cards.\n\nAcceptance criteria:\n- Given a saved card when paying then no card form is shown\n" +
				"Definition of Done:\n- [x] reviewed",
			Type:       gj.IssueType{Name: "Story"},
			Priority:   &gj.Priority{Name: "Medium"},
			Assignee:   &gj.User{DisplayName: "Dana Lee"},
			Labels:     []string{"payments"},
			Components: []*gj.Component{{Name: "web"}},
			Unknowns: map[string]any{
				"customfield_10016": float64(5),
				"customfield_10014": "PROJ-100",
			},
		}}
		client, getClient := newMockClient(t)
		client.EXPECT().GetIssue(gomock.Any(), "PROJ-5", nil).Return(issue, okResponse(), nil)
		expectFields(client)
		_, handler := AuditIssue(getClient, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{"issueKey": "PROJ-5"}))
		require.NoError(t, err)
		require.False(t, result.IsError, getTextResult(t, result))
		out := decodeResult(t, result)
		assert.Equal(t, float64(100), out["qualityScore"])
		assert.Equal(t, "Excellent", out["qualityLevel"])
		assert.Empty(t, out["issues"])
		assert.NotContains(t, out, "quickActions")
		assert.Equal(t, map[string]any{
			"issueType":   "Story",
			"storyPoints": float64(5),
			"epicLink":    "PROJ-100",
			"priority":    "Medium",
			"assignee":    "Dana Lee",
			"labels":      []any{"payments"},
			"components":  []any{"web"},
		}, out["metadata"])
	})

	t.Run("Empty bug", func(t *testing.T) {
		client, getClient := newMockClient(t)
		client.EXPECT().GetIssue(gomock.Any(), "PROJ-6", nil).
			Return(&gj.Issue{Key: "PROJ-6", Fields: &gj.IssueFields{Type: gj.IssueType{Name: "Bug"}}}, okResponse(), nil)
		expectFields(client)
		_, handler := AuditIssue(getClient, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{"issueKey": "PROJ-6"}))
		require.NoError(t, err)
		out := decodeResult(t, result)
		assert.Equal(t, []any{"No description provided", "No story points assigned", "No priority set"}, out["issues"])
		assert.Equal(t, float64(25), out["qualityScore"])
		assert.Equal(t, "Poor", out["qualityLevel"])
		assert.Equal(t, []any{"Use update_issue to add description", "Use update_issue to add story points"}, out["quickActions"])
	})

	t.Run("Epics skip estimates", func(t *testing.T) {
		client, getClient := newMockClient(t)
		client.EXPECT().GetIssue(gomock.Any(), "PROJ-7", nil).Return(&gj.Issue{Key: "PROJ-7", Fields: &gj.IssueFields{
			Type:        gj.IssueType{Name: "Epic"},
			Description: "A long enough description of the epic. Acceptance criteria: done when shipped.",
			Priority:    &gj.Priority{Name: "High"},
			Assignee:    &gj.User{Name: "dana"},
			Labels:      []string{"q3"},
		}}, okResponse(), nil)
		_, handler := AuditIssue(getClient, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{"issueKey": "PROJ-7"}))
		require.NoError(t, err)
		out := decodeResult(t, result)
		assert.Empty(t, out["issues"])
		assert.NotContains(t, out["metadata"], "storyPoints")
	})
}
