package jira

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/fieldmap"
	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

type fieldSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
	Type   string `json:"type,omitempty"`
}

func summarizeField(f fieldmap.Field) fieldSummary {
	return fieldSummary{ID: f.ID, Name: f.Name, Custom: f.Custom, Type: f.Schema.Type}
}

// ListFields defines the list_fields tool.
func ListFields(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("list_fields",
			mcp.WithDescription(t("TOOL_LIST_FIELDS_DESCRIPTION", "List all Jira fields, system and custom, with their ids and types.")),
			mcp.WithTitleAnnotation(t("TOOL_LIST_FIELDS_USER_TITLE", "List Jira fields")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			fields, err := mappers.For(client).GetAllFields(ctx)
			if err != nil {
				return handleMapperError(err)
			}

			out := make([]fieldSummary, 0, len(fields))
			for _, f := range fields {
				out = append(out, summarizeField(f))
			}
			return jsonResult(out)
		}
}

// maxFieldMappingLimit caps get_field_mapping results.
const maxFieldMappingLimit = 1000

// GetFieldMapping defines the get_field_mapping tool.
func GetFieldMapping(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("get_field_mapping",
			mcp.WithDescription(t("TOOL_GET_FIELD_MAPPING_DESCRIPTION",
				"Find field ids by name. Use it to learn which customfield_NNNNN id backs a field such as 'Story Points' or 'Epic Link'.")),
			mcp.WithTitleAnnotation(t("TOOL_GET_FIELD_MAPPING_USER_TITLE", "Get field mapping")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("search",
				mcp.Description("Case-insensitive substring matched against field names and ids"),
			),
			mcp.WithBoolean("customOnly",
				mcp.Description("Only return custom fields (default: false)"),
			),
			mcp.WithNumber("limit",
				mcp.Description(fmt.Sprintf("Maximum number of fields to return (default: 50, max %d)", maxFieldMappingLimit)),
				mcp.Min(1),
				mcp.Max(maxFieldMappingLimit),
			),
			mcp.WithBoolean("refresh",
				mcp.Description("Reload the field catalog from Jira before searching (default: false)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			search, err := OptionalParam[string](&req, "search")
			if err != nil {
				return validationError(err), nil
			}
			customOnly, err := OptionalBoolParamWithDefault(&req, "customOnly", false)
			if err != nil {
				return validationError(err), nil
			}
			limit, err := OptionalIntParamWithDefault(&req, "limit", 50)
			if err != nil {
				return validationError(err), nil
			}
			if limit < 1 {
				limit = 50
			}
			limit = min(limit, maxFieldMappingLimit)
			refresh, err := OptionalBoolParamWithDefault(&req, "refresh", false)
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}
			mapper := mappers.For(client)

			if refresh {
				if err := mapper.Refresh(ctx); err != nil {
					return handleMapperError(err)
				}
			}

			var fields []fieldmap.Field
			if customOnly {
				fields, err = mapper.GetCustomFields(ctx)
			} else {
				fields, err = mapper.GetAllFields(ctx)
			}
			if err != nil {
				return handleMapperError(err)
			}
			total, err := mapper.Len(ctx)
			if err != nil {
				return handleMapperError(err)
			}

			needle := strings.ToLower(strings.TrimSpace(search))
			matched := make([]fieldSummary, 0, min(limit, len(fields)))
			for _, f := range fields {
				if len(matched) == limit {
					break
				}
				if needle != "" &&
					!strings.Contains(strings.ToLower(f.Name), needle) &&
					!strings.Contains(strings.ToLower(f.ID), needle) {
					continue
				}
				matched = append(matched, summarizeField(f))
			}

			return jsonResult(map[string]any{
				"fields":         matched,
				"count":          len(matched),
				"totalAvailable": total,
			})
		}
}
