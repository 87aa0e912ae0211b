package jira

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/InkyQuill/jira-mcp-server/pkg/toolsets"
	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

// GetClientFn returns the Jira client for the current call.
type GetClientFn func(context.Context) (Client, error)

// DefaultTools defines the list of toolsets enabled by default.
var DefaultTools = []string{"all"}

// ToolDeps are the shared collaborators of the tool constructors.
type ToolDeps struct {
	GetClient GetClientFn
	Pool      *ClientPool
	Notifier  *Notifier
	Tokens    TokenStore
	T         translations.TranslationHelperFunc
	Logger    *log.Logger
}

// InitToolsets builds every Jira toolset. Outside dynamic mode the requested
// toolsets are enabled right away.
func InitToolsets(enabledToolsets []string, readOnly bool, deps ToolDeps, dynamicMode bool) (*toolsets.ToolsetGroup, error) {
	tg := toolsets.NewToolsetGroup(readOnly)
	getClient, t := deps.GetClient, deps.T

	if dynamicMode {
		deps.Logger.Info("Dynamic toolset mode enabled - toolsets will be loaded on demand")
	}

	fields := toolsets.NewToolset("fields", "Jira field catalog: list fields and map field names to ids.")
	fields.AddReadTools(
		toolsets.NewServerTool(ListFields(getClient, t)),
		toolsets.NewServerTool(GetFieldMapping(getClient, t)),
	)

	issues := toolsets.NewToolset("issues", "Read, search, create, update and delete Jira issues.")
	issues.AddReadTools(
		toolsets.NewServerTool(GetIssue(getClient, t)),
		toolsets.NewServerTool(SearchIssues(getClient, t)),
		toolsets.NewServerTool(SearchMyIssues(getClient, t)),
		toolsets.NewServerTool(ListIssueTypes(getClient, t)),
		toolsets.NewServerTool(GetCreateMeta(getClient, t)),
		toolsets.NewServerTool(SuggestIssueFields(getClient, t)),
	)
	issues.AddWriteTools(
		toolsets.NewServerTool(CreateIssue(getClient, t)),
		toolsets.NewServerTool(UpdateIssue(getClient, t)),
		toolsets.NewServerTool(DeleteIssue(getClient, t)),
	)

	attachments := toolsets.NewToolset("attachments", "Comments and file attachments on issues.")
	attachments.AddReadTools(
		toolsets.NewServerTool(GetIssueAttachment(getClient, t)),
	)
	attachments.AddWriteTools(
		toolsets.NewServerTool(AddComment(getClient, t)),
		toolsets.NewServerTool(AddCommentWithAttachment(getClient, t)),
		toolsets.NewServerTool(AttachFile(getClient, t)),
		toolsets.NewServerTool(AttachContent(getClient, t)),
	)

	workflow := toolsets.NewToolset("workflow", "Workflow transitions of issues.")
	workflow.AddReadTools(
		toolsets.NewServerTool(GetTransitions(getClient, t)),
	)
	workflow.AddWriteTools(
		toolsets.NewServerTool(TransitionIssue(getClient, t)),
	)

	links := toolsets.NewToolset("links", "Issue links and link types.")
	links.AddReadTools(
		toolsets.NewServerTool(ListLinkTypes(getClient, t)),
	)
	links.AddWriteTools(
		toolsets.NewServerTool(CreateIssueLink(getClient, t)),
	)

	projects := toolsets.NewToolset("projects", "Jira projects and users.")
	projects.AddReadTools(
		toolsets.NewServerTool(ListProjects(getClient, t)),
		toolsets.NewServerTool(GetUser(getClient, t)),
	)

	epics := toolsets.NewToolset("epics", "Epics and their progress.")
	epics.AddReadTools(
		toolsets.NewServerTool(ListEpics(getClient, t)),
		toolsets.NewServerTool(GetEpicIssues(getClient, t)),
	)

	devflow := toolsets.NewToolset("devflow", "Developer workflow helpers: commit messages and issue quality audits.")
	devflow.AddReadTools(
		toolsets.NewServerTool(FormatCommit(getClient, t)),
		toolsets.NewServerTool(AuditIssue(getClient, t)),
	)

	serverManagement := toolsets.NewToolset("server_management", "Manage configured Jira servers, their tokens and notifications.")
	serverManagement.AddReadTools(
		toolsets.NewServerTool(ListServers(deps.Pool, t)),
		toolsets.NewServerTool(ValidateServers(deps.Pool, deps.Notifier, t)),
		toolsets.NewServerTool(GetNotifications(deps.Notifier, t)),
	)
	serverManagement.AddWriteTools(
		toolsets.NewServerTool(AddServer(deps.Pool, deps.Notifier, deps.Tokens, t)),
		toolsets.NewServerTool(UpdateServerToken(deps.Pool, deps.Notifier, deps.Tokens, t)),
		toolsets.NewServerTool(RemoveServer(deps.Pool, t)),
		toolsets.NewServerTool(ClearNotifications(deps.Notifier, t)),
	)

	projectConfig := toolsets.NewToolset("project_config", "Per-directory project configuration (.jiramcprc) and detection from Git branches.")
	projectConfig.AddReadTools(
		toolsets.NewServerTool(GetCurrentProject(t)),
		toolsets.NewServerTool(DetectProject(getClient, t)),
	)
	projectConfig.AddWriteTools(
		toolsets.NewServerTool(SetCurrentProject(getClient, t)),
		toolsets.NewServerTool(AutoDetectProject(getClient, t)),
	)

	for _, ts := range []*toolsets.Toolset{
		fields, issues, attachments, workflow, links, projects, epics, devflow, serverManagement, projectConfig,
	} {
		tg.AddToolset(ts)
	}

	if !dynamicMode {
		if err := tg.EnableToolsets(enabledToolsets); err != nil {
			return nil, err
		}
	}
	return tg, nil
}
