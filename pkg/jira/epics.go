package jira

import (
	"context"
	"fmt"
	"math"
	"strings"

	gj "github.com/andygrunwald/go-jira"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

// Classic custom field ids used when the catalog has no field of that name.
const (
	defaultStoryPointsField = "customfield_10001"
	defaultEpicLinkField    = "customfield_10014"
)

var storyPointsNames = []string{"Story Points", "Story point estimate"}

func statusClause(status string) string {
	switch status {
	case "open":
		return "status != Done"
	case "done":
		return "status = Done"
	}
	return ""
}

func isDoneStatus(name string) bool {
	switch strings.ToLower(name) {
	case "done", "closed":
		return true
	}
	return false
}

func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(part/total*1000) / 10
}

// ListEpics defines the list_epics tool.
func ListEpics(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("list_epics",
			mcp.WithDescription(t("TOOL_LIST_EPICS_DESCRIPTION", "List the epics of a project, newest first.")),
			mcp.WithTitleAnnotation(t("TOOL_LIST_EPICS_USER_TITLE", "List epics")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("projectKey",
				mcp.Required(),
				mcp.Description("Project key (e.g., PROJ)"),
			),
			mcp.WithString("status",
				mcp.Description("Status filter (default: open)"),
				mcp.Enum("open", "done", "all"),
			),
			mcp.WithNumber("maxResults",
				mcp.Description("Maximum number of epics (default: 50)"),
				mcp.Min(1),
				mcp.Max(100),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectKey, err := requiredParam[string](&req, "projectKey")
			if err != nil {
				return validationError(err), nil
			}
			if err := checkProjectKey(projectKey); err != nil {
				return validationError(err), nil
			}
			status, err := OptionalParam[string](&req, "status")
			if err != nil {
				return validationError(err), nil
			}
			if status == "" {
				status = "open"
			}
			maxResults, err := OptionalIntParamWithDefault(&req, "maxResults", 50)
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			jql := fmt.Sprintf("project = %s AND issuetype = Epic", projectKey)
			if clause := statusClause(status); clause != "" {
				jql += " AND " + clause
			}
			jql += " ORDER BY created DESC"

			epics, resp, err := client.SearchIssues(ctx, jql, &gj.SearchOptions{
				MaxResults: maxResults,
				Fields:     []string{"summary", "status", "priority", "assignee"},
			})
			if result, err := HandleListAPIError(err, resp, "epics"); result != nil || err != nil {
				return result, err
			}

			list := make([]map[string]any, 0, len(epics))
			for _, e := range epics {
				f := issueFields(&e)
				info := map[string]any{
					"key":     e.Key,
					"summary": f.Summary,
					"status":  statusName(f),
				}
				if p := priorityName(f); p != "" {
					info["priority"] = p
				}
				if a := assigneeName(f); a != "" {
					info["assignee"] = a
				}
				list = append(list, info)
			}

			return jsonResult(map[string]any{
				"projectKey": projectKey,
				"filter":     status,
				"count":      len(list),
				"epics":      list,
			})
		}
}

// GetEpicIssues defines the get_epic_issues tool.
func GetEpicIssues(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("get_epic_issues",
			mcp.WithDescription(t("TOOL_GET_EPIC_ISSUES_DESCRIPTION",
				"List the issues of an epic with progress statistics (issue counts and story points).")),
			mcp.WithTitleAnnotation(t("TOOL_GET_EPIC_ISSUES_USER_TITLE", "Get epic issues")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("epicKey",
				mcp.Required(),
				mcp.Description("Epic issue key (e.g., PROJ-100)"),
			),
			mcp.WithString("status",
				mcp.Description("Status filter (default: all)"),
				mcp.Enum("open", "done", "all"),
			),
			mcp.WithNumber("maxResults",
				mcp.Description("Maximum number of issues (default: 100)"),
				mcp.Min(1),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			epicKey, err := requiredParam[string](&req, "epicKey")
			if err != nil {
				return validationError(err), nil
			}
			if !issueKeyPattern.MatchString(epicKey) {
				return validationError(fmt.Errorf("invalid epic key %q: expected e.g. PROJ-100", epicKey)), nil
			}
			status, err := OptionalParam[string](&req, "status")
			if err != nil {
				return validationError(err), nil
			}
			if status == "" {
				status = "all"
			}
			maxResults, err := OptionalIntParamWithDefault(&req, "maxResults", 100)
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			epic, resp, err := client.GetIssue(ctx, epicKey, &gj.GetQueryOptions{Fields: "summary"})
			if result, err := HandleAPIError(err, resp, fmt.Sprintf("epic %s", epicKey)); result != nil || err != nil {
				return result, err
			}

			mapper := mappers.For(client)
			pointsField, err := resolveFieldID(ctx, mapper, defaultStoryPointsField, storyPointsNames...)
			if err != nil {
				return handleMapperError(err)
			}
			hasEpicLink, err := mapper.Contains(ctx, "Epic Link")
			if err != nil {
				return handleMapperError(err)
			}

			jql := fmt.Sprintf("parent = %s", epicKey)
			if hasEpicLink {
				jql = fmt.Sprintf(`("Epic Link" = %s OR parent = %s)`, epicKey, epicKey)
			}
			if clause := statusClause(status); clause != "" {
				jql += " AND " + clause
			}
			jql += " ORDER BY status ASC, priority DESC"

			issues, resp, err := client.SearchIssues(ctx, jql, &gj.SearchOptions{
				MaxResults: maxResults,
				Fields:     []string{"summary", "status", "issuetype", "priority", "assignee", pointsField},
			})
			if result, err := HandleListAPIError(err, resp, "epic issues"); result != nil || err != nil {
				return result, err
			}

			var doneCount int
			var totalPoints, donePoints float64
			list := make([]map[string]any, 0, len(issues))
			for _, issue := range issues {
				f := issueFields(&issue)
				info := map[string]any{
					"key":     issue.Key,
					"summary": f.Summary,
					"type":    f.Type.Name,
					"status":  statusName(f),
				}
				if p := priorityName(f); p != "" {
					info["priority"] = p
				}
				if a := assigneeName(f); a != "" {
					info["assignee"] = a
				}
				points, hasPoints := 0.0, false
				if v, ok := unknownValue(f, pointsField); ok {
					points, hasPoints = toFloat(v)
				}
				if hasPoints {
					info["storyPoints"] = points
					totalPoints += points
				}
				if isDoneStatus(statusName(f)) {
					doneCount++
					donePoints += points
				}
				list = append(list, info)
			}

			return jsonResult(map[string]any{
				"epicKey":     epicKey,
				"epicSummary": issueFields(epic).Summary,
				"filter":      status,
				"progress": map[string]any{
					"totalIssues":           len(list),
					"doneIssues":            doneCount,
					"percentComplete":       percent(float64(doneCount), float64(len(list))),
					"totalPoints":           totalPoints,
					"donePoints":            donePoints,
					"pointsPercentComplete": percent(donePoints, totalPoints),
				},
				"issues": list,
			})
		}
}
