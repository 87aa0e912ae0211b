package jira

import (
	"context"
	"fmt"

	gj "github.com/andygrunwald/go-jira"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

// ListLinkTypes defines the list_link_types tool.
func ListLinkTypes(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("list_link_types",
			mcp.WithDescription(t("TOOL_LIST_LINK_TYPES_DESCRIPTION", "List the issue link types (Blocks, Relates, ...) with their inward and outward wording.")),
			mcp.WithTitleAnnotation(t("TOOL_LIST_LINK_TYPES_USER_TITLE", "List link types")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			types, resp, err := client.IssueLinkTypes(ctx)
			if result, err := HandleListAPIError(err, resp, "issue link types"); result != nil || err != nil {
				return result, err
			}

			out := make([]map[string]string, 0, len(types))
			for _, lt := range types {
				out = append(out, map[string]string{
					"id":      lt.ID,
					"name":    lt.Name,
					"inward":  lt.Inward,
					"outward": lt.Outward,
				})
			}
			return jsonResult(out)
		}
}

// CreateIssueLink defines the create_issue_link tool.
func CreateIssueLink(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("create_issue_link",
			mcp.WithDescription(t("TOOL_CREATE_ISSUE_LINK_DESCRIPTION", "Link two issues, e.g. PROJ-1 blocks PROJ-2.")),
			mcp.WithTitleAnnotation(t("TOOL_CREATE_ISSUE_LINK_USER_TITLE", "Create issue link")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("inwardIssueKey",
				mcp.Required(),
				mcp.Description("Key of the inward issue"),
			),
			mcp.WithString("outwardIssueKey",
				mcp.Required(),
				mcp.Description("Key of the outward issue"),
			),
			mcp.WithString("linkType",
				mcp.Required(),
				mcp.Description("Link type name (see list_link_types)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			inward, err := requiredParam[string](&req, "inwardIssueKey")
			if err != nil {
				return validationError(err), nil
			}
			outward, err := requiredParam[string](&req, "outwardIssueKey")
			if err != nil {
				return validationError(err), nil
			}
			linkType, err := requiredParam[string](&req, "linkType")
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			resp, err := client.AddIssueLink(ctx, &gj.IssueLink{
				Type:         gj.IssueLinkType{Name: linkType},
				InwardIssue:  &gj.Issue{Key: inward},
				OutwardIssue: &gj.Issue{Key: outward},
			})
			if result, err := HandleCreateUpdateAPIError(err, resp, fmt.Sprintf("issues %s and %s", inward, outward), "create issue link"); result != nil || err != nil {
				return result, err
			}

			return jsonResult(map[string]string{
				"message":      "Issue link created successfully",
				"inwardIssue":  inward,
				"outwardIssue": outward,
				"linkType":     linkType,
			})
		}
}
