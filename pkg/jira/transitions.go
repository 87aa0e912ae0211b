package jira

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gj "github.com/andygrunwald/go-jira"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

type transitionField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type transitionInfo struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	To             string            `json:"to"`
	RequiredFields []transitionField `json:"requiredFields,omitempty"`
}

// findTransition matches by id, then by exact name ignoring case, then by
// partial name.
func findTransition(transitions []gj.Transition, want string) *gj.Transition {
	for i := range transitions {
		if transitions[i].ID == want {
			return &transitions[i]
		}
	}
	for i := range transitions {
		if strings.EqualFold(transitions[i].Name, want) {
			return &transitions[i]
		}
	}
	lower := strings.ToLower(want)
	for i := range transitions {
		if strings.Contains(strings.ToLower(transitions[i].Name), lower) {
			return &transitions[i]
		}
	}
	return nil
}

func transitionNames(transitions []gj.Transition) string {
	names := make([]string, 0, len(transitions))
	for _, tr := range transitions {
		names = append(names, tr.Name)
	}
	return strings.Join(names, ", ")
}

func targetStatus(tr *gj.Transition) string {
	if tr.To.Name == "" {
		return "Unknown"
	}
	return tr.To.Name
}

// GetTransitions defines the get_transitions tool.
func GetTransitions(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("get_transitions",
			mcp.WithDescription(t("TOOL_GET_TRANSITIONS_DESCRIPTION",
				"List the workflow transitions available for an issue, with the fields each one requires.")),
			mcp.WithTitleAnnotation(t("TOOL_GET_TRANSITIONS_USER_TITLE", "Get transitions")),
			mcp.WithReadOnlyHintAnnotation(true),
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

			issue, resp, err := client.GetIssue(ctx, issueKey, &gj.GetQueryOptions{Fields: "status"})
			if result, err := HandleAPIError(err, resp, fmt.Sprintf("issue %s", issueKey)); result != nil || err != nil {
				return result, err
			}
			transitions, resp, err := client.GetTransitions(ctx, issueKey)
			if result, err := HandleAPIError(err, resp, fmt.Sprintf("transitions of issue %s", issueKey)); result != nil || err != nil {
				return result, err
			}

			mapper := mappers.For(client)
			list := make([]transitionInfo, 0, len(transitions))
			for _, tr := range transitions {
				info := transitionInfo{ID: tr.ID, Name: tr.Name, To: targetStatus(&tr)}
				for id, field := range tr.Fields {
					if !field.Required {
						continue
					}
					name, ok, err := mapper.GetName(ctx, id)
					if err != nil {
						return handleMapperError(err)
					}
					if !ok {
						name = id
					}
					info.RequiredFields = append(info.RequiredFields, transitionField{ID: id, Name: name})
				}
				sort.Slice(info.RequiredFields, func(i, j int) bool {
					return info.RequiredFields[i].ID < info.RequiredFields[j].ID
				})
				list = append(list, info)
			}

			return jsonResult(map[string]any{
				"issueKey":             issueKey,
				"currentStatus":        statusName(issueFields(issue)),
				"availableTransitions": list,
			})
		}
}

// TransitionIssue defines the transition_issue tool.
func TransitionIssue(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("transition_issue",
			mcp.WithDescription(t("TOOL_TRANSITION_ISSUE_DESCRIPTION",
				"Move an issue through its workflow. The transition may be given by id or name; fields may use display names.")),
			mcp.WithTitleAnnotation(t("TOOL_TRANSITION_ISSUE_USER_TITLE", "Transition issue")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithString("transition",
				mcp.Required(),
				mcp.Description("Transition id or name (e.g., 'In Progress', 'Done')"),
			),
			mcp.WithString("comment",
				mcp.Description("Comment to add with the transition"),
			),
			mcp.WithObject("fields",
				mcp.Description("Fields to set during the transition, keyed by name or id"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}
			want, err := requiredParam[string](&req, "transition")
			if err != nil {
				return validationError(err), nil
			}
			comment, err := OptionalParam[string](&req, "comment")
			if err != nil {
				return validationError(err), nil
			}
			fields, err := OptionalParam[map[string]any](&req, "fields")
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			transitions, resp, err := client.GetTransitions(ctx, issueKey)
			if result, err := HandleAPIError(err, resp, fmt.Sprintf("transitions of issue %s", issueKey)); result != nil || err != nil {
				return result, err
			}
			tr := findTransition(transitions, want)
			if tr == nil {
				return mcp.NewToolResultError(fmt.Sprintf("Transition '%s' not available. Available transitions: %s",
					want, transitionNames(transitions))), nil
			}

			issue, resp, err := client.GetIssue(ctx, issueKey, &gj.GetQueryOptions{Fields: "status"})
			if result, err := HandleAPIError(err, resp, fmt.Sprintf("issue %s", issueKey)); result != nil || err != nil {
				return result, err
			}

			payload := map[string]any{
				"transition": map[string]string{"id": tr.ID},
			}
			if len(fields) > 0 {
				translated, err := mappers.For(client).TranslateFields(ctx, fields)
				if err != nil {
					return handleMapperError(err)
				}
				payload["fields"] = translated
			}
			if comment != "" {
				payload["update"] = map[string]any{
					"comment": []any{map[string]any{"add": map[string]string{"body": comment}}},
				}
			}

			resp, err = client.DoTransition(ctx, issueKey, payload)
			if result, err := HandleCreateUpdateAPIError(err, resp, fmt.Sprintf("issue %s", issueKey), "transition issue"); result != nil || err != nil {
				return result, err
			}

			out := map[string]any{
				"message":    fmt.Sprintf("Issue %s transitioned successfully", issueKey),
				"issueKey":   issueKey,
				"from":       statusName(issueFields(issue)),
				"to":         targetStatus(tr),
				"transition": tr.Name,
			}
			if comment != "" {
				out["comment"] = "Added"
			}
			return jsonResult(out)
		}
}
