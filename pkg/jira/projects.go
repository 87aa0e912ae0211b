package jira

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

// ListProjects defines the list_projects tool.
func ListProjects(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("list_projects",
			mcp.WithDescription(t("TOOL_LIST_PROJECTS_DESCRIPTION", "List the Jira projects you can see, optionally filtered by key or name.")),
			mcp.WithTitleAnnotation(t("TOOL_LIST_PROJECTS_USER_TITLE", "List projects")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("query",
				mcp.Description("Case-insensitive filter on project key or name"),
			),
			mcp.WithNumber("maxResults",
				mcp.Description("Maximum number of projects to return (default: 50)"),
				mcp.Min(1),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			query, err := OptionalParam[string](&req, "query")
			if err != nil {
				return validationError(err), nil
			}
			maxResults, err := OptionalIntParamWithDefault(&req, "maxResults", 50)
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			projects, resp, err := client.Projects(ctx)
			if result, err := HandleListAPIError(err, resp, "projects"); result != nil || err != nil {
				return result, err
			}

			needle := strings.ToLower(query)
			matched := make([]any, 0)
			if projects != nil {
				for _, p := range *projects {
					if len(matched) == maxResults {
						break
					}
					if needle != "" &&
						!strings.Contains(strings.ToLower(p.Key), needle) &&
						!strings.Contains(strings.ToLower(p.Name), needle) {
						continue
					}
					matched = append(matched, p)
				}
			}

			filtered, err := NewFieldFilter("project").FilterResponse(matched)
			if err != nil {
				return nil, err
			}

			out := map[string]any{
				"count":    len(matched),
				"projects": filtered,
			}
			if query != "" {
				out["filter"] = query
			}
			return jsonResult(out)
		}
}

// GetUser defines the get_user tool.
func GetUser(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("get_user",
			mcp.WithDescription(t("TOOL_GET_USER_DESCRIPTION", "Look up a Jira user by email address.")),
			mcp.WithTitleAnnotation(t("TOOL_GET_USER_USER_TITLE", "Get user")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("email",
				mcp.Required(),
				mcp.Description("User email address"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			email, err := requiredParam[string](&req, "email")
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			users, resp, err := client.FindUsers(ctx, email)
			if result, err := HandleListAPIError(err, resp, "users"); result != nil || err != nil {
				return result, err
			}
			if len(users) == 0 {
				return mcp.NewToolResultError(fmt.Sprintf("No user found with email: %s", email)), nil
			}

			u := users[0]
			accountID := u.AccountID
			if accountID == "" {
				accountID = u.Name
			}
			return jsonResult(map[string]any{
				"accountId":    accountID,
				"displayName":  u.DisplayName,
				"emailAddress": u.EmailAddress,
				"active":       u.Active,
			})
		}
}
