package jira

import (
	"context"
	"fmt"
	"strings"

	gj "github.com/andygrunwald/go-jira"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/fieldmap"
	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

const searchFields = "summary,description,status,priority,assignee,issuetype,project"

type commentInfo struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
}

type attachmentInfo struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Created  string `json:"created"`
	MimeType string `json:"mimeType,omitempty"`
}

// GetIssue defines the get_issue tool.
func GetIssue(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("get_issue",
			mcp.WithDescription(t("TOOL_GET_ISSUE_DESCRIPTION",
				"Get complete issue details including comments, attachments and custom fields. Custom fields are keyed by their display name, e.g. 'Story Points'.")),
			mcp.WithTitleAnnotation(t("TOOL_GET_ISSUE_USER_TITLE", "Get issue")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithBoolean("includeCustomFields",
				mcp.Description("Include custom fields in the response (default: true)"),
			),
			mcp.WithBoolean("customFieldsOnly",
				mcp.Description("Only return custom fields (default: false)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}
			includeCustom, err := OptionalBoolParamWithDefault(&req, "includeCustomFields", true)
			if err != nil {
				return validationError(err), nil
			}
			customOnly, err := OptionalBoolParamWithDefault(&req, "customFieldsOnly", false)
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			issue, resp, err := client.GetIssue(ctx, issueKey, nil)
			if result, err := HandleAPIError(err, resp, fmt.Sprintf("issue %s", issueKey)); result != nil || err != nil {
				return result, err
			}

			var custom map[string]any
			if includeCustom || customOnly {
				custom, err = customFieldsByName(ctx, mappers.For(client), issue)
				if err != nil {
					return handleMapperError(err)
				}
			}

			if customOnly {
				return jsonResult(map[string]any{"key": issue.Key, "customFields": custom})
			}

			f := issueFields(issue)
			comments := []commentInfo{}
			if f.Comments != nil {
				for _, c := range f.Comments.Comments {
					comments = append(comments, commentInfo{
						ID:      c.ID,
						Author:  userName(&c.Author),
						Body:    c.Body,
						Created: c.Created,
					})
				}
			}
			attachments := []attachmentInfo{}
			for _, a := range f.Attachments {
				attachments = append(attachments, attachmentInfo{
					ID:       a.ID,
					Filename: a.Filename,
					Size:     a.Size,
					Created:  a.Created,
					MimeType: a.MimeType,
				})
			}

			out := map[string]any{
				"key":         issue.Key,
				"summary":     f.Summary,
				"description": f.Description,
				"status":      statusName(f),
				"priority":    priorityName(f),
				"assignee":    assigneeName(f),
				"type":        f.Type.Name,
				"comments":    comments,
				"attachments": attachments,
			}
			if f.Parent != nil {
				out["parent"] = f.Parent.Key
			}
			if includeCustom {
				out["customFields"] = custom
			}
			return jsonResult(out)
		}
}

// SearchIssues defines the search_issues tool.
func SearchIssues(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("search_issues",
			mcp.WithDescription(t("TOOL_SEARCH_ISSUES_DESCRIPTION",
				"Search issues of a project with JQL. The project defaults to the one in .jiramcprc. Long descriptions are truncated.")),
			mcp.WithTitleAnnotation(t("TOOL_SEARCH_ISSUES_USER_TITLE", "Search issues")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("projectKey",
				mcp.Description("Project key (e.g., PROJ). Optional when .jiramcprc is present"),
			),
			mcp.WithString("jql",
				mcp.Description("JQL filter, combined with the project clause (e.g., status = \"In Progress\")"),
			),
			mcp.WithNumber("startAt",
				mcp.Description("Index of the first result to return (0-based)"),
				mcp.Min(0),
			),
			mcp.WithNumber("maxResults",
				mcp.Description("Maximum number of results to return (default 30, max 100)"),
				mcp.Min(1),
				mcp.Max(100),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectKey, err := GetProjectKeyWithFallback(&req)
			if err != nil {
				return validationError(err), nil
			}
			if err := checkProjectKey(projectKey); err != nil {
				return validationError(err), nil
			}
			filter, err := OptionalParam[string](&req, "jql")
			if err != nil {
				return validationError(err), nil
			}
			startAt, maxResults, err := OptionalPaginationParams(&req, 30)
			if err != nil {
				return validationError(err), nil
			}

			jql := fmt.Sprintf("project = %s ORDER BY updated DESC", projectKey)
			if filter = strings.TrimSpace(filter); filter != "" {
				jql = fmt.Sprintf("project = %s AND (%s)", projectKey, filter)
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			issues, resp, err := client.SearchIssues(ctx, jql, &gj.SearchOptions{
				StartAt:    startAt,
				MaxResults: maxResults,
				Fields:     strings.Split(searchFields, ","),
			})
			if result, err := HandleListAPIError(err, resp, "issues"); result != nil || err != nil {
				return result, err
			}

			summaries := make([]issueSummary, 0, len(issues))
			for _, issue := range issues {
				summaries = append(summaries, summarizeIssue(issue))
			}

			optimized, err := NewResponseOptimizer("issue").OptimizeListResponse(summaries, len(summaries), resp)
			if err != nil {
				return nil, err
			}
			return jsonResult(map[string]any{
				"jql":        jql,
				"items":      optimized.Items,
				"pagination": optimized.Pagination,
			})
		}
}

func myIssuesJQL(role, status, projectKey string) string {
	var parts []string
	switch role {
	case "reporter":
		parts = append(parts, "reporter = currentUser()")
	case "watcher":
		parts = append(parts, "watcher = currentUser()")
	case "any":
		parts = append(parts, "(assignee = currentUser() OR reporter = currentUser() OR watcher = currentUser())")
	default:
		parts = append(parts, "assignee = currentUser()")
	}
	if projectKey != "" {
		parts = append(parts, "project = "+projectKey)
	}
	switch status {
	case "in_progress":
		parts = append(parts, `status = "In Progress"`)
	case "open":
		parts = append(parts, "status != Done AND status != Closed")
	}
	return strings.Join(parts, " AND ") + " ORDER BY updated DESC"
}

// SearchMyIssues defines the search_my_issues tool.
func SearchMyIssues(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("search_my_issues",
			mcp.WithDescription(t("TOOL_SEARCH_MY_ISSUES_DESCRIPTION",
				"Find issues assigned to, reported by or watched by you. Handy for picking the issue key of a commit message.")),
			mcp.WithTitleAnnotation(t("TOOL_SEARCH_MY_ISSUES_USER_TITLE", "Search my issues")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("projectKey",
				mcp.Description("Only issues of this project"),
			),
			mcp.WithString("status",
				mcp.Description("Status filter (default: in_progress)"),
				mcp.Enum("in_progress", "open", "all"),
			),
			mcp.WithString("role",
				mcp.Description("Your role on the issue (default: assignee)"),
				mcp.Enum("assignee", "reporter", "watcher", "any"),
			),
			mcp.WithNumber("maxResults",
				mcp.Description("Maximum number of results (default: 10)"),
				mcp.Min(1),
				mcp.Max(100),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectKey, err := OptionalParam[string](&req, "projectKey")
			if err != nil {
				return validationError(err), nil
			}
			if projectKey != "" {
				if err := checkProjectKey(projectKey); err != nil {
					return validationError(err), nil
				}
			}
			status, err := OptionalParam[string](&req, "status")
			if err != nil {
				return validationError(err), nil
			}
			if status == "" {
				status = "in_progress"
			}
			role, err := OptionalParam[string](&req, "role")
			if err != nil {
				return validationError(err), nil
			}
			if role == "" {
				role = "assignee"
			}
			maxResults, err := OptionalIntParamWithDefault(&req, "maxResults", 10)
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			jql := myIssuesJQL(role, status, projectKey)
			issues, resp, err := client.SearchIssues(ctx, jql, &gj.SearchOptions{
				MaxResults: maxResults,
				Fields:     []string{"summary", "status", "issuetype", "priority", "project"},
			})
			if result, err := HandleListAPIError(err, resp, "issues"); result != nil || err != nil {
				return result, err
			}

			list := make([]map[string]any, 0, len(issues))
			for _, issue := range issues {
				f := issueFields(&issue)
				list = append(list, map[string]any{
					"key":          issue.Key,
					"summary":      f.Summary,
					"status":       statusName(f),
					"type":         f.Type.Name,
					"project":      f.Project.Key,
					"commitFormat": issue.Key + ": ",
				})
			}

			out := map[string]any{
				"count":        len(list),
				"issues":       list,
				"statusFilter": status,
				"roleFilter":   role,
			}
			if projectKey != "" {
				out["projectFilter"] = projectKey
			}
			if len(list) > 0 {
				out["hint"] = fmt.Sprintf("Use issue key in commit: git commit -m \"%s: your message\"", list[0]["key"])
			}
			return jsonResult(out)
		}
}

// resolveAssignee turns an email into the user reference Jira expects.
// Anything without "@" is taken to be an account id already.
func resolveAssignee(ctx context.Context, client Client, assignee string) (map[string]any, *mcp.CallToolResult, error) {
	if !strings.Contains(assignee, "@") {
		return map[string]any{"accountId": assignee}, nil, nil
	}
	users, resp, err := client.FindUsers(ctx, assignee)
	if result, err := HandleAPIError(err, resp, fmt.Sprintf("user %s", assignee)); result != nil || err != nil {
		return nil, result, err
	}
	if len(users) == 0 {
		return nil, mcp.NewToolResultError(fmt.Sprintf("no Jira user found for %s", assignee)), nil
	}
	if users[0].AccountID != "" {
		return map[string]any{"accountId": users[0].AccountID}, nil, nil
	}
	return map[string]any{"name": users[0].Name}, nil, nil
}

// applyCustomFields merges the translated customFields argument into fields.
func applyCustomFields(ctx context.Context, mapper *fieldmap.Mapper, req *mcp.CallToolRequest, fields map[string]any) (*mcp.CallToolResult, error) {
	custom, err := OptionalParam[map[string]any](req, "customFields")
	if err != nil {
		return validationError(err), nil
	}
	if len(custom) == 0 {
		return nil, nil
	}
	translated, err := mapper.TranslateFields(ctx, custom)
	if err != nil {
		return handleMapperError(err)
	}
	for k, v := range translated {
		fields[k] = v
	}
	return nil, nil
}

// CreateIssue defines the create_jira_issue tool.
func CreateIssue(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("create_jira_issue",
			mcp.WithDescription(t("TOOL_CREATE_JIRA_ISSUE_DESCRIPTION",
				"Create a Jira issue. Custom fields may be given by display name ('Story Points') or id (customfield_10016).")),
			mcp.WithTitleAnnotation(t("TOOL_CREATE_JIRA_ISSUE_USER_TITLE", "Create issue")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("projectKey",
				mcp.Required(),
				mcp.Description("Project key (e.g., PROJ)"),
			),
			mcp.WithString("summary",
				mcp.Required(),
				mcp.Description("Issue summary"),
			),
			mcp.WithString("issueType",
				mcp.Required(),
				mcp.Description("Issue type name (e.g., Bug, Task, Story)"),
			),
			mcp.WithString("description",
				mcp.Description("Issue description"),
			),
			mcp.WithString("priority",
				mcp.Description("Priority name (e.g., High)"),
			),
			mcp.WithString("assignee",
				mcp.Description("Assignee email or account id"),
			),
			mcp.WithObject("customFields",
				mcp.Description("Custom field values keyed by field name or id"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectKey, err := requiredParam[string](&req, "projectKey")
			if err != nil {
				return validationError(err), nil
			}
			summary, err := requiredParam[string](&req, "summary")
			if err != nil {
				return validationError(err), nil
			}
			issueType, err := requiredParam[string](&req, "issueType")
			if err != nil {
				return validationError(err), nil
			}
			description, err := OptionalParam[string](&req, "description")
			if err != nil {
				return validationError(err), nil
			}
			priority, err := OptionalParam[string](&req, "priority")
			if err != nil {
				return validationError(err), nil
			}
			assignee, err := OptionalParam[string](&req, "assignee")
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			fields := map[string]any{
				"project":   map[string]any{"key": projectKey},
				"summary":   summary,
				"issuetype": map[string]any{"name": issueType},
			}
			if description != "" {
				fields["description"] = description
			}
			if priority != "" {
				fields["priority"] = map[string]any{"name": priority}
			}
			if assignee != "" {
				ref, result, err := resolveAssignee(ctx, client, assignee)
				if result != nil || err != nil {
					return result, err
				}
				fields["assignee"] = ref
			}
			if result, err := applyCustomFields(ctx, mappers.For(client), &req, fields); result != nil || err != nil {
				return result, err
			}

			issue, resp, err := client.CreateIssue(ctx, fields)
			if result, err := HandleCreateUpdateAPIError(err, resp, fmt.Sprintf("project %s", projectKey), "create issue"); result != nil || err != nil {
				return result, err
			}

			return jsonResult(map[string]string{"key": issue.Key, "id": issue.ID, "self": issue.Self})
		}
}

// UpdateIssue defines the update_issue tool.
func UpdateIssue(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("update_issue",
			mcp.WithDescription(t("TOOL_UPDATE_ISSUE_DESCRIPTION",
				"Update fields of an existing issue. Custom fields may be given by display name or id.")),
			mcp.WithTitleAnnotation(t("TOOL_UPDATE_ISSUE_USER_TITLE", "Update issue")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithString("summary",
				mcp.Description("New summary"),
			),
			mcp.WithString("description",
				mcp.Description("New description"),
			),
			mcp.WithString("assignee",
				mcp.Description("Assignee email or account id"),
			),
			mcp.WithString("priority",
				mcp.Description("Priority name"),
			),
			mcp.WithObject("customFields",
				mcp.Description("Custom field values keyed by field name or id"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}

			fields := map[string]any{}
			for _, name := range []string{"summary", "description"} {
				v, ok, err := OptionalParamOK[string](&req, name)
				if err != nil {
					return validationError(err), nil
				}
				if ok {
					fields[name] = v
				}
			}
			priority, err := OptionalParam[string](&req, "priority")
			if err != nil {
				return validationError(err), nil
			}
			if priority != "" {
				fields["priority"] = map[string]any{"name": priority}
			}
			assignee, err := OptionalParam[string](&req, "assignee")
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			if assignee != "" {
				ref, result, err := resolveAssignee(ctx, client, assignee)
				if result != nil || err != nil {
					return result, err
				}
				fields["assignee"] = ref
			}
			if result, err := applyCustomFields(ctx, mappers.For(client), &req, fields); result != nil || err != nil {
				return result, err
			}
			if len(fields) == 0 {
				return mcp.NewToolResultError("Validation Error: at least one field to update is required"), nil
			}

			resp, err := client.UpdateIssue(ctx, issueKey, fields)
			if result, err := HandleCreateUpdateAPIError(err, resp, fmt.Sprintf("issue %s", issueKey), "update issue"); result != nil || err != nil {
				return result, err
			}

			return jsonResult(map[string]string{"message": fmt.Sprintf("Issue %s updated successfully", issueKey)})
		}
}

// DeleteIssue defines the delete_issue tool.
func DeleteIssue(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("delete_issue",
			mcp.WithDescription(t("TOOL_DELETE_ISSUE_DESCRIPTION", "Delete a Jira issue.")),
			mcp.WithTitleAnnotation(t("TOOL_DELETE_ISSUE_USER_TITLE", "Delete issue")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			resp, err := client.DeleteIssue(ctx, issueKey)
			if result, err := HandleCreateUpdateAPIError(err, resp, fmt.Sprintf("issue %s", issueKey), "delete issue"); result != nil || err != nil {
				return result, err
			}

			return jsonResult(map[string]string{"message": fmt.Sprintf("Issue %s deleted successfully", issueKey)})
		}
}
