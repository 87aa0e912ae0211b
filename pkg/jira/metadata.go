package jira

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gj "github.com/andygrunwald/go-jira"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/fieldmap"
	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

const (
	maxAllowedValues   = 20
	maxOptionalFields  = 15
	maxSuggestedEpics  = 5
	maxSuggestedValues = 10
)

// ListIssueTypes defines the list_issue_types tool.
func ListIssueTypes(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("list_issue_types",
			mcp.WithDescription(t("TOOL_LIST_ISSUE_TYPES_DESCRIPTION", "List all issue types defined in Jira.")),
			mcp.WithTitleAnnotation(t("TOOL_LIST_ISSUE_TYPES_USER_TITLE", "List issue types")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			types, resp, err := client.IssueTypes(ctx)
			if result, err := HandleListAPIError(err, resp, "issue types"); result != nil || err != nil {
				return result, err
			}

			out := make([]map[string]any, 0, len(types))
			for _, it := range types {
				out = append(out, map[string]any{
					"id":          it.ID,
					"name":        it.Name,
					"description": it.Description,
					"subtask":     it.Subtask,
				})
			}
			return jsonResult(out)
		}
}

type metaField struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Required      bool     `json:"required"`
	Type          string   `json:"type,omitempty"`
	ItemType      string   `json:"itemType,omitempty"`
	AllowedValues []string `json:"allowedValues,omitempty"`
}

func allowedValueNames(raw any, limit int) []string {
	values, ok := raw.([]any)
	if !ok || len(values) == 0 || len(values) > limit {
		return nil
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := m["name"].(string); ok {
			names = append(names, s)
		} else if s, ok := m["value"].(string); ok {
			names = append(names, s)
		} else {
			names = append(names, fmt.Sprint(m))
		}
	}
	return names
}

// describeMetaField converts one create-meta field entry. Names missing from the
// entry are looked up in the field catalog.
func describeMetaField(ctx context.Context, mapper *fieldmap.Mapper, id string, raw any) (metaField, error) {
	info, _ := raw.(map[string]any)
	mf := metaField{ID: id, Name: id}
	if name, ok := info["name"].(string); ok && name != "" {
		mf.Name = name
	} else if name, ok, err := mapper.GetName(ctx, id); err != nil {
		return mf, err
	} else if ok {
		mf.Name = name
	}
	mf.Required, _ = info["required"].(bool)
	if schema, ok := info["schema"].(map[string]any); ok {
		mf.Type, _ = schema["type"].(string)
		if mf.Type == "" {
			mf.Type = "unknown"
		}
		mf.ItemType, _ = schema["items"].(string)
	}
	mf.AllowedValues = allowedValueNames(info["allowedValues"], maxAllowedValues)
	return mf, nil
}

// projectMeta fetches create-meta and returns the project entry.
func projectMeta(ctx context.Context, client Client, projectKey string) (*gj.MetaProject, *mcp.CallToolResult, error) {
	meta, resp, err := client.CreateMeta(ctx, projectKey)
	if result, err := HandleAPIError(err, resp, fmt.Sprintf("project %s", projectKey)); result != nil || err != nil {
		return nil, result, err
	}
	if meta == nil || len(meta.Projects) == 0 || meta.Projects[0] == nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Project %s not found or no access", projectKey)), nil
	}
	return meta.Projects[0], nil, nil
}

func issueTypeNames(p *gj.MetaProject) []string {
	names := make([]string, 0, len(p.IssueTypes))
	for _, it := range p.IssueTypes {
		names = append(names, it.Name)
	}
	return names
}

func findMetaIssueType(p *gj.MetaProject, name string) *gj.MetaIssueType {
	for _, it := range p.IssueTypes {
		if strings.EqualFold(it.Name, name) {
			return it
		}
	}
	return nil
}

// GetCreateMeta defines the get_create_meta tool.
func GetCreateMeta(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("get_create_meta",
			mcp.WithDescription(t("TOOL_GET_CREATE_META_DESCRIPTION",
				"Show which fields are required and optional when creating issues in a project, per issue type, with allowed values for select fields.")),
			mcp.WithTitleAnnotation(t("TOOL_GET_CREATE_META_USER_TITLE", "Get create metadata")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("projectKey",
				mcp.Required(),
				mcp.Description("Project key (e.g., PROJ)"),
			),
			mcp.WithString("issueType",
				mcp.Description("Only this issue type (case-insensitive)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectKey, err := requiredParam[string](&req, "projectKey")
			if err != nil {
				return validationError(err), nil
			}
			typeFilter, err := OptionalParam[string](&req, "issueType")
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			project, result, err := projectMeta(ctx, client, projectKey)
			if result != nil || err != nil {
				return result, err
			}

			types := project.IssueTypes
			if typeFilter != "" {
				it := findMetaIssueType(project, typeFilter)
				if it == nil {
					return mcp.NewToolResultError(fmt.Sprintf("Issue type '%s' not found. Available: %s",
						typeFilter, strings.Join(issueTypeNames(project), ", "))), nil
				}
				types = []*gj.MetaIssueType{it}
			}

			mapper := mappers.For(client)
			out := make([]map[string]any, 0, len(types))
			for _, it := range types {
				required := []metaField{}
				optional := []metaField{}
				for id, raw := range it.Fields {
					if id == "project" || id == "issuetype" {
						continue
					}
					mf, err := describeMetaField(ctx, mapper, id, raw)
					if err != nil {
						return handleMapperError(err)
					}
					if mf.Required {
						required = append(required, mf)
					} else {
						optional = append(optional, mf)
					}
				}
				sort.Slice(required, func(i, j int) bool { return required[i].Name < required[j].Name })
				sort.Slice(optional, func(i, j int) bool { return optional[i].Name < optional[j].Name })

				total := len(optional)
				if len(optional) > maxOptionalFields {
					optional = optional[:maxOptionalFields]
				}
				out = append(out, map[string]any{
					"name":                it.Name,
					"description":         it.Description,
					"requiredFields":      required,
					"optionalFields":      optional,
					"totalOptionalFields": total,
				})
			}

			name := project.Name
			if name == "" {
				name = projectKey
			}
			return jsonResult(map[string]any{
				"projectKey":  projectKey,
				"projectName": name,
				"issueTypes":  out,
			})
		}
}

type fieldRecommendation struct {
	Field           string `json:"field"`
	FieldID         string `json:"fieldId,omitempty"`
	Reason          string `json:"reason"`
	SuggestedValues []int  `json:"suggestedValues,omitempty"`
}

func recommendationsFor(issueType string) []fieldRecommendation {
	switch strings.ToLower(issueType) {
	case "story", "user story":
		return []fieldRecommendation{
			{Field: "Story Points", Reason: "Helps with sprint planning", SuggestedValues: []int{1, 2, 3, 5, 8, 13}},
			{Field: "Epic Link", Reason: "Stories should belong to an epic"},
		}
	case "bug":
		return []fieldRecommendation{
			{Field: "Priority", Reason: "Helps triage bugs"},
			{Field: "Steps to Reproduce", Reason: "Add to description for faster debugging"},
		}
	case "task":
		return []fieldRecommendation{
			{Field: "Story Points", Reason: "Tasks benefit from estimation", SuggestedValues: []int{1, 2, 3, 5}},
		}
	case "epic":
		return []fieldRecommendation{
			{Field: "Epic Name", Reason: "Short name for linked issues"},
		}
	}
	return []fieldRecommendation{}
}

// SuggestIssueFields defines the suggest_issue_fields tool.
func SuggestIssueFields(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("suggest_issue_fields",
			mcp.WithDescription(t("TOOL_SUGGEST_ISSUE_FIELDS_DESCRIPTION",
				"Suggest which fields to fill when creating an issue of a given type, including required fields and open epics to link to.")),
			mcp.WithTitleAnnotation(t("TOOL_SUGGEST_ISSUE_FIELDS_USER_TITLE", "Suggest issue fields")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("projectKey",
				mcp.Required(),
				mcp.Description("Project key (e.g., PROJ)"),
			),
			mcp.WithString("issueType",
				mcp.Required(),
				mcp.Description("Issue type name (e.g., Story, Bug)"),
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
			issueType, err := requiredParam[string](&req, "issueType")
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			project, result, err := projectMeta(ctx, client, projectKey)
			if result != nil || err != nil {
				return result, err
			}

			it := findMetaIssueType(project, issueType)
			if it == nil {
				return jsonResult(map[string]any{
					"error":          fmt.Sprintf("Issue type '%s' not found", issueType),
					"availableTypes": issueTypeNames(project),
				})
			}

			mapper := mappers.For(client)
			required := []metaField{}
			for id, raw := range it.Fields {
				if id == "project" || id == "issuetype" {
					continue
				}
				mf, err := describeMetaField(ctx, mapper, id, raw)
				if err != nil {
					return handleMapperError(err)
				}
				if !mf.Required {
					continue
				}
				info, _ := raw.(map[string]any)
				mf.AllowedValues = allowedValueNames(info["allowedValues"], maxSuggestedValues)
				mf.Type, mf.ItemType = "", ""
				required = append(required, mf)
			}
			sort.Slice(required, func(i, j int) bool { return required[i].Name < required[j].Name })

			recs := recommendationsFor(issueType)
			for i := range recs {
				id, ok, err := mapper.GetID(ctx, recs[i].Field)
				if err != nil {
					return handleMapperError(err)
				}
				if ok {
					recs[i].FieldID = id
				}
			}

			out := map[string]any{
				"projectKey":      projectKey,
				"issueType":       issueType,
				"requiredFields":  required,
				"recommendations": recs,
				"tips": []string{
					"Use get_create_meta for full field details",
					"Custom fields can use friendly names",
				},
			}

			if !strings.EqualFold(issueType, "epic") {
				jql := fmt.Sprintf("project = %s AND issuetype = Epic AND status != Done ORDER BY created DESC", projectKey)
				epics, _, err := client.SearchIssues(ctx, jql, &gj.SearchOptions{MaxResults: maxSuggestedEpics, Fields: []string{"summary"}})
				if err != nil {
					// Epics are a hint; a failed lookup leaves them out.
					toolLogger.WithError(err).WithField("project", projectKey).Debug("epic lookup failed")
				}
				if len(epics) > 0 {
					list := make([]map[string]string, 0, len(epics))
					for _, e := range epics {
						list = append(list, map[string]string{"key": e.Key, "summary": issueFields(&e).Summary})
					}
					out["availableEpics"] = list
				}
			}

			return jsonResult(out)
		}
}
