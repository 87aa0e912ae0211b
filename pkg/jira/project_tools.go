package jira

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

// lookupProject finds projectKey among the projects visible to client.
func lookupProject(ctx context.Context, client Client, projectKey string) (name string, result *mcp.CallToolResult, err error) {
	projects, resp, err := client.Projects(ctx)
	if result, err := HandleListAPIError(err, resp, "projects"); result != nil || err != nil {
		return "", result, err
	}
	if projects != nil {
		for _, p := range *projects {
			if p.Key == projectKey {
				return p.Name, nil, nil
			}
		}
	}
	return "", mcp.NewToolResultError(fmt.Sprintf("Project '%s' not found or not accessible on %s", projectKey, client.BaseURL())), nil
}

// detectFromWorkingDir reads the project key from the current Git branch.
func detectFromWorkingDir() (projectKey, branch string, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return DetectProjectFromGit(cwd)
}

// GetCurrentProject defines the get_current_project tool.
func GetCurrentProject(t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("get_current_project",
			mcp.WithDescription(t("TOOL_GET_CURRENT_PROJECT_DESCRIPTION",
				"Show the project configured in .jiramcprc in the current directory or one of its parents.")),
			mcp.WithTitleAnnotation(t("TOOL_GET_CURRENT_PROJECT_USER_TITLE", "Get current project")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			config, configPath, err := FindProjectConfig()
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to read project config: %v", err)), nil
			}
			if config == nil {
				return jsonResult(map[string]any{
					"found":   false,
					"message": fmt.Sprintf("No %s file found in current or parent directories. Use set_current_project to create one.", ConfigFileName),
				})
			}
			return jsonResult(map[string]any{
				"found":       true,
				"configPath":  configPath,
				"projectKey":  config.ProjectKey,
				"jiraHost":    config.JiraHost,
				"serverName":  config.ServerName,
				"lastUpdated": config.LastUpdated,
			})
		}
}

// DetectProject defines the detect_project tool.
func DetectProject(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("detect_project",
			mcp.WithDescription(t("TOOL_DETECT_PROJECT_DESCRIPTION",
				"Detect the Jira project from the current Git branch name (e.g. feature/PROJ-123-login gives PROJ) without saving it.")),
			mcp.WithTitleAnnotation(t("TOOL_DETECT_PROJECT_USER_TITLE", "Detect project")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectKey, branch, err := detectFromWorkingDir()
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to detect project: %v", err)), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}
			name, result, err := lookupProject(ctx, client, projectKey)
			if result != nil || err != nil {
				return result, err
			}

			return jsonResult(map[string]any{
				"success":     true,
				"projectKey":  projectKey,
				"projectName": name,
				"branch":      branch,
				"jiraHost":    client.BaseURL(),
				"message":     fmt.Sprintf("Project detected. Use set_current_project with projectKey='%s' to save it.", projectKey),
			})
		}
}

// SetCurrentProject defines the set_current_project tool.
func SetCurrentProject(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("set_current_project",
			mcp.WithDescription(t("TOOL_SET_CURRENT_PROJECT_DESCRIPTION",
				"Write .jiramcprc in the current directory so tools default to this project and server.")),
			mcp.WithTitleAnnotation(t("TOOL_SET_CURRENT_PROJECT_USER_TITLE", "Set current project")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("projectKey",
				mcp.Required(),
				mcp.Description("Project key (e.g., PROJ)"),
			),
			mcp.WithString("jiraHost",
				mcp.Description("Jira host; defaults to the host of the active server"),
			),
			mcp.WithString("serverName",
				mcp.Description("Configured server to use for this directory"),
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
			jiraHost, err := OptionalParam[string](&req, "jiraHost")
			if err != nil {
				return validationError(err), nil
			}
			serverName, err := OptionalParam[string](&req, "serverName")
			if err != nil {
				return validationError(err), nil
			}

			if jiraHost == "" {
				client, err := getClient(ctx)
				if err != nil {
					return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
				}
				jiraHost = client.BaseURL()
			} else if jiraHost, err = NormalizeBaseURL(jiraHost); err != nil {
				return validationError(err), nil
			}

			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
			configPath, err := WriteProjectConfig(cwd, &ProjectConfig{
				ProjectKey: projectKey,
				JiraHost:   jiraHost,
				ServerName: serverName,
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to write project config: %v", err)), nil
			}

			return jsonResult(map[string]any{
				"success":    true,
				"configPath": configPath,
				"projectKey": projectKey,
				"jiraHost":   jiraHost,
				"serverName": serverName,
				"message":    fmt.Sprintf("Project %s configured successfully", projectKey),
			})
		}
}

// AutoDetectProject defines the auto_detect_project tool.
func AutoDetectProject(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("auto_detect_project",
			mcp.WithDescription(t("TOOL_AUTO_DETECT_PROJECT_DESCRIPTION",
				"Detect the Jira project from the current Git branch, verify it exists and save it to .jiramcprc.")),
			mcp.WithTitleAnnotation(t("TOOL_AUTO_DETECT_PROJECT_USER_TITLE", "Auto-detect project")),
			mcp.WithReadOnlyHintAnnotation(false),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectKey, branch, err := detectFromWorkingDir()
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to detect project: %v", err)), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}
			name, result, err := lookupProject(ctx, client, projectKey)
			if result != nil || err != nil {
				return result, err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
			configPath, err := WriteProjectConfig(cwd, &ProjectConfig{
				ProjectKey: projectKey,
				JiraHost:   client.BaseURL(),
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to write project config: %v", err)), nil
			}

			return jsonResult(map[string]any{
				"success":     true,
				"configPath":  configPath,
				"projectKey":  projectKey,
				"projectName": name,
				"branch":      branch,
				"jiraHost":    client.BaseURL(),
				"message":     "Project detected and configured successfully",
			})
		}
}
