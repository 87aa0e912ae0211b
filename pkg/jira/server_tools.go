package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gj "github.com/andygrunwald/go-jira"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/credentials"
	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

// TokenStore persists API tokens between sessions. *credentials.Keyring satisfies it.
type TokenStore interface {
	Save(host, token string) error
}

// probeServer checks credentials with /myself before anything is stored.
func probeServer(ctx context.Context, client Client, name string) (*gj.User, *mcp.CallToolResult, error) {
	user, resp, err := client.Myself(ctx)
	if err == nil {
		return user, nil, nil
	}
	if statusCode(resp) == http.StatusUnauthorized {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Token validation failed for server '%s': %v", name, ErrUnauthorized)), nil
	}
	return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to connect to server '%s': %v", name, err)), nil
}

// tokenArgs reads apiToken/bearerToken. A bearer token selects bearer auth.
func tokenArgs(req *mcp.CallToolRequest) (string, credentials.AuthScheme, error) {
	bearer, err := OptionalParam[string](req, "bearerToken")
	if err != nil {
		return "", "", err
	}
	if bearer != "" {
		return bearer, credentials.AuthBearer, nil
	}
	apiToken, err := OptionalParam[string](req, "apiToken")
	if err != nil {
		return "", "", err
	}
	if apiToken == "" {
		return "", "", fmt.Errorf("either apiToken or bearerToken is required")
	}
	return apiToken, credentials.AuthBasic, nil
}

func accountIdentity(user *gj.User) string {
	if user.AccountID != "" {
		return user.AccountID
	}
	return user.Name
}

// ListServers defines the list_servers tool.
func ListServers(pool *ClientPool, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("list_servers",
			mcp.WithDescription(t("TOOL_LIST_SERVERS_DESCRIPTION", "List the configured Jira servers and their validation status.")),
			mcp.WithTitleAnnotation(t("TOOL_LIST_SERVERS_USER_TITLE", "List servers")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			servers := pool.Store().ListServers()
			if len(servers) == 0 {
				return jsonResult(map[string]any{
					"servers": []any{},
					"count":   0,
					"message": "No servers configured. Set JIRA_HOST and a token, or use add_server.",
				})
			}

			list := make([]map[string]any, 0, len(servers))
			for _, md := range servers {
				list = append(list, map[string]any{
					"name":          md.Name,
					"host":          md.Host,
					"email":         md.Email,
					"authType":      md.AuthType,
					"accountId":     md.AccountID,
					"displayName":   md.DisplayName,
					"addedAt":       md.AddedAt,
					"lastValidated": md.LastValidated,
					"isInvalid":     md.IsInvalid,
					"tokenHint":     md.Token.Hint(),
				})
			}
			return jsonResult(map[string]any{
				"servers": list,
				"count":   len(list),
				"message": fmt.Sprintf("Found %d configured server(s)", len(list)),
			})
		}
}

// ValidateServers defines the validate_servers tool.
func ValidateServers(pool *ClientPool, notifier *Notifier, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("validate_servers",
			mcp.WithDescription(t("TOOL_VALIDATE_SERVERS_DESCRIPTION",
				"Check every configured server's credentials against Jira. Problems are reported as notifications.")),
			mcp.WithTitleAnnotation(t("TOOL_VALIDATE_SERVERS_USER_TITLE", "Validate servers")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			results := pool.Store().ValidateAll(ctx, pool.ClientForServer)

			var valid, invalid int
			for _, r := range results {
				switch {
				case r.Success:
					valid++
					notifier.serverValidated(r.ServerName, r.DisplayName, r.AccountID)
				case r.IsInvalid:
					invalid++
					notifier.tokenInvalid(r.ServerName)
				default:
					invalid++
					notifier.serverIssue(r.ServerName, errors.New(r.Error))
				}
			}

			return jsonResult(map[string]any{
				"results":      results,
				"validCount":   valid,
				"invalidCount": invalid,
			})
		}
}

// AddServer defines the add_server tool.
func AddServer(pool *ClientPool, notifier *Notifier, tokens TokenStore, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("add_server",
			mcp.WithDescription(t("TOOL_ADD_SERVER_DESCRIPTION",
				"Add a Jira server for this session. The credentials are validated first. Use bearerToken for Server/Data Center personal access tokens, email plus apiToken for Cloud.")),
			mcp.WithTitleAnnotation(t("TOOL_ADD_SERVER_USER_TITLE", "Add server")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Server name (e.g., 'work')"),
			),
			mcp.WithString("host",
				mcp.Required(),
				mcp.Description("Jira host (e.g., example.atlassian.net)"),
			),
			mcp.WithString("email",
				mcp.Description("Account email (Cloud)"),
			),
			mcp.WithString("apiToken",
				mcp.Description("API token (Cloud)"),
			),
			mcp.WithString("bearerToken",
				mcp.Description("Personal access token (Server/Data Center)"),
			),
			mcp.WithBoolean("saveToKeyring",
				mcp.Description("Also store the token in the OS keyring (default: false)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := requiredParam[string](&req, "name")
			if err != nil {
				return validationError(err), nil
			}
			host, err := requiredParam[string](&req, "host")
			if err != nil {
				return validationError(err), nil
			}
			baseURL, err := NormalizeBaseURL(host)
			if err != nil {
				return validationError(err), nil
			}
			email, err := OptionalParam[string](&req, "email")
			if err != nil {
				return validationError(err), nil
			}
			token, scheme, err := tokenArgs(&req)
			if err != nil {
				return validationError(err), nil
			}
			save, err := OptionalBoolParamWithDefault(&req, "saveToKeyring", false)
			if err != nil {
				return validationError(err), nil
			}
			if _, err := pool.Store().GetServer(name); err == nil {
				return mcp.NewToolResultError(fmt.Sprintf("Server '%s' already exists. Use update_server_token or remove_server.", name)), nil
			}

			md := &ServerMetadata{
				Name:     name,
				Host:     baseURL,
				Email:    email,
				AuthType: scheme,
				Token:    credentials.NewSecret(token),
			}
			client, err := pool.NewClient(md)
			if err != nil {
				return validationError(err), nil
			}
			user, result, err := probeServer(ctx, client, name)
			if result != nil || err != nil {
				return result, err
			}

			md.AccountID = accountIdentity(user)
			md.DisplayName = user.DisplayName
			md.LastValidated = pool.Store().now()
			if err := pool.Register(md, client); err != nil {
				return nil, fmt.Errorf("failed to register server: %w", err)
			}
			notifier.serverValidated(name, md.DisplayName, md.AccountID)

			out := map[string]any{
				"success":     true,
				"message":     fmt.Sprintf("Server '%s' added and validated successfully", name),
				"serverName":  name,
				"host":        baseURL,
				"accountId":   md.AccountID,
				"displayName": md.DisplayName,
			}
			if save {
				if err := tokens.Save(baseURL, token); err != nil {
					out["keyringError"] = err.Error()
				} else {
					out["savedToKeyring"] = true
				}
			}
			return jsonResult(out)
		}
}

// UpdateServerToken defines the update_server_token tool.
func UpdateServerToken(pool *ClientPool, notifier *Notifier, tokens TokenStore, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("update_server_token",
			mcp.WithDescription(t("TOOL_UPDATE_SERVER_TOKEN_DESCRIPTION",
				"Replace the API token of a configured server, e.g. after a 401. The new token is validated before it is used.")),
			mcp.WithTitleAnnotation(t("TOOL_UPDATE_SERVER_TOKEN_USER_TITLE", "Update server token")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Server name"),
			),
			mcp.WithString("apiToken",
				mcp.Description("New API token (Cloud)"),
			),
			mcp.WithString("bearerToken",
				mcp.Description("New personal access token (Server/Data Center)"),
			),
			mcp.WithBoolean("saveToKeyring",
				mcp.Description("Also store the token in the OS keyring (default: false)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := requiredParam[string](&req, "name")
			if err != nil {
				return validationError(err), nil
			}
			token, scheme, err := tokenArgs(&req)
			if err != nil {
				return validationError(err), nil
			}
			save, err := OptionalBoolParamWithDefault(&req, "saveToKeyring", false)
			if err != nil {
				return validationError(err), nil
			}

			existing, err := pool.Store().GetServer(name)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Server '%s' not found. Use list_servers to see configured servers.", name)), nil
			}

			md := *existing
			md.Token = credentials.NewSecret(token)
			md.AuthType = scheme
			client, err := pool.NewClient(&md)
			if err != nil {
				return validationError(err), nil
			}
			user, result, err := probeServer(ctx, client, name)
			if result != nil || err != nil {
				return result, err
			}

			md.AccountID = accountIdentity(user)
			md.DisplayName = user.DisplayName
			md.LastValidated = pool.Store().now()
			md.IsInvalid = false
			if err := pool.Register(&md, client); err != nil {
				return nil, fmt.Errorf("failed to register server: %w", err)
			}
			notifier.serverValidated(name, md.DisplayName, md.AccountID)

			out := map[string]any{
				"success":     true,
				"message":     fmt.Sprintf("Token for server '%s' updated and validated successfully", name),
				"serverName":  name,
				"accountId":   md.AccountID,
				"displayName": md.DisplayName,
			}
			if save {
				if err := tokens.Save(md.Host, token); err != nil {
					out["keyringError"] = err.Error()
				} else {
					out["savedToKeyring"] = true
				}
			}
			return jsonResult(out)
		}
}

// RemoveServer defines the remove_server tool.
func RemoveServer(pool *ClientPool, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("remove_server",
			mcp.WithDescription(t("TOOL_REMOVE_SERVER_DESCRIPTION", "Remove a Jira server from this session.")),
			mcp.WithTitleAnnotation(t("TOOL_REMOVE_SERVER_USER_TITLE", "Remove server")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Server name"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := requiredParam[string](&req, "name")
			if err != nil {
				return validationError(err), nil
			}
			if err := pool.Disconnect(name); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Server '%s' not found", name)), nil
			}
			return jsonResult(map[string]any{
				"success": true,
				"message": fmt.Sprintf("Server '%s' removed", name),
			})
		}
}

// GetNotifications defines the get_notifications tool.
func GetNotifications(notifier *Notifier, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("get_notifications",
			mcp.WithDescription(t("TOOL_GET_NOTIFICATIONS_DESCRIPTION", "Show recent server notifications such as rejected tokens.")),
			mcp.WithTitleAnnotation(t("TOOL_GET_NOTIFICATIONS_USER_TITLE", "Get notifications")),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			items := notifier.List()
			return jsonResult(map[string]any{
				"notifications": items,
				"count":         len(items),
			})
		}
}

// ClearNotifications defines the clear_notifications tool.
func ClearNotifications(notifier *Notifier, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("clear_notifications",
			mcp.WithDescription(t("TOOL_CLEAR_NOTIFICATIONS_DESCRIPTION", "Clear all server notifications.")),
			mcp.WithTitleAnnotation(t("TOOL_CLEAR_NOTIFICATIONS_USER_TITLE", "Clear notifications")),
			mcp.WithReadOnlyHintAnnotation(false),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			n := notifier.Clear()
			return jsonResult(map[string]any{
				"cleared": n,
				"message": fmt.Sprintf("Cleared %d notification(s)", n),
			})
		}
}
