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

func TestListLinkTypesHandler(t *testing.T) {
	tool, _ := ListLinkTypes(failingGetClient, tr)
	require.NoError(t, toolsnaps.Test(tool.Name, tool))

	client, getClient := newMockClient(t)
	client.EXPECT().IssueLinkTypes(gomock.Any()).Return([]gj.IssueLinkType{
		{ID: "10000", Name: "Blocks", Inward: "is blocked by", Outward: "blocks"},
	}, okResponse(), nil)
	_, handler := ListLinkTypes(getClient, tr)

	result, err := handler(context.Background(), createMCPRequest(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"10000","name":"Blocks","inward":"is blocked by","outward":"blocks"}]`, getTextResult(t, result))
}

func TestCreateIssueLinkHandler(t *testing.T) {
	tool, _ := CreateIssueLink(failingGetClient, tr)
	require.NoError(t, toolsnaps.Test(tool.Name, tool))

	t.Run("Success", func(t *testing.T) {
		client, getClient := newMockClient(t)
		client.EXPECT().AddIssueLink(gomock.Any(), &gj.IssueLink{
			Type:         gj.IssueLinkType{Name: "Blocks"},
			InwardIssue:  &gj.Issue{Key: "PROJ-2"},
			OutwardIssue: &gj.Issue{Key: "PROJ-1"},
		}).Return(response(http.StatusCreated), nil)
		_, handler := CreateIssueLink(getClient, tr)

		result, err := handler(context.Background(), createMCPRequest(map[string]any{
			"inwardIssueKey": "PROJ-2", "outwardIssueKey": "PROJ-1", "linkType": "Blocks",
		}))
		require.NoError(t, err)
		assert.Equal(t, "Issue link created successfully", decodeResult(t, result)["message"])
	})

	t.Run("Error - unknown link type", func(t *testing.T) {
		client, getClient := newMockClient(t)
		client.EXPECT().AddIssueLink(gomock.Any(), gomock.Any()).Return(response(http.StatusNotFound), errors.New("no such type"))
		_, handler := CreateIssueLink(getClient, tr)

		result, err := handler(context.Background(), createMCPRequest(map[string]any{
			"inwardIssueKey": "PROJ-2", "outwardIssueKey": "PROJ-1", "linkType": "Clones",
		}))
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, getTextResult(t, result), "issues PROJ-2 and PROJ-1 not found")
	})

	t.Run("Error - missing link type", func(t *testing.T) {
		_, handler := CreateIssueLink(failingGetClient, tr)
		result, err := handler(context.Background(), createMCPRequest(map[string]any{
			"inwardIssueKey": "PROJ-2", "outwardIssueKey": "PROJ-1",
		}))
		require.NoError(t, err)
		assert.Contains(t, getTextResult(t, result), "linkType")
	})
}
