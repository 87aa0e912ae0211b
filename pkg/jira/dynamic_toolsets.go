package jira

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/InkyQuill/jira-mcp-server/pkg/toolsets"
	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

// DynamicToolsetManager lets the client enable toolsets at runtime.
type DynamicToolsetManager struct {
	toolsetGroup *toolsets.ToolsetGroup
	mcpServer    *server.MCPServer
	logger       *log.Logger
}

// NewDynamicToolsetManager creates a manager for tg serving on mcpServer.
func NewDynamicToolsetManager(tg *toolsets.ToolsetGroup, mcpServer *server.MCPServer, logger *log.Logger) *DynamicToolsetManager {
	return &DynamicToolsetManager{
		toolsetGroup: tg,
		mcpServer:    mcpServer,
		logger:       logger,
	}
}

// RegisterDiscoveryTools registers list_available_toolsets and enable_toolset.
func (dtm *DynamicToolsetManager) RegisterDiscoveryTools(t translations.TranslationHelperFunc) {
	dtm.mcpServer.AddTools(
		toolsets.NewServerTool(dtm.ListAvailableToolsets(t)),
		toolsets.NewServerTool(dtm.EnableToolset(t)),
	)
	dtm.logger.Info("Dynamic toolset discovery tools registered")
}

// ListAvailableToolsets defines the list_available_toolsets tool.
func (dtm *DynamicToolsetManager) ListAvailableToolsets(t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("list_available_toolsets",
			mcp.WithDescription(t("TOOL_LIST_AVAILABLE_TOOLSETS_DESCRIPTION", "List all Jira toolsets that can be enabled, with their status.")),
			mcp.WithTitleAnnotation(t("TOOL_LIST_AVAILABLE_TOOLSETS_USER_TITLE", "List available toolsets")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			infos := dtm.toolsetGroup.ListToolsets()
			return jsonResult(map[string]any{
				"toolsets": infos,
				"count":    len(infos),
			})
		}
}

// EnableToolset defines the enable_toolset tool.
func (dtm *DynamicToolsetManager) EnableToolset(t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("enable_toolset",
			mcp.WithDescription(t("TOOL_ENABLE_TOOLSET_DESCRIPTION", "Enable a Jira toolset, making its tools available.")),
			mcp.WithTitleAnnotation(t("TOOL_ENABLE_TOOLSET_USER_TITLE", "Enable toolset")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("toolset",
				mcp.Required(),
				mcp.Description("Name of the toolset to enable (e.g., 'issues', 'workflow')"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := requiredParam[string](&req, "toolset")
			if err != nil {
				return validationError(err), nil
			}

			dtm.logger.WithField("toolset", name).Info("Enabling toolset")
			if err := dtm.toolsetGroup.EnableToolset(name); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to enable toolset '%s': %v", name, err)), nil
			}
			if err := dtm.toolsetGroup.RegisterToolset(dtm.mcpServer, name); err != nil {
				return nil, fmt.Errorf("failed to register tools for '%s': %w", name, err)
			}

			return jsonResult(map[string]any{
				"success": true,
				"toolset": name,
				"message": fmt.Sprintf("Successfully enabled toolset '%s'. Tools are now available.", name),
			})
		}
}
