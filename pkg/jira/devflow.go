package jira

import (
	"context"
	"fmt"
	"slices"
	"strings"

	gj "github.com/andygrunwald/go-jira"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/fieldmap"
	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

var commitTypes = []string{"feat", "fix", "docs", "style", "refactor", "test", "chore"}

// FormatCommit defines the format_commit tool.
func FormatCommit(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("format_commit",
			mcp.WithDescription(t("TOOL_FORMAT_COMMIT_DESCRIPTION",
				"Format a git commit message that references a Jira issue, either 'PROJ-123: message' or conventional 'feat(PROJ-123): message'.")),
			mcp.WithTitleAnnotation(t("TOOL_FORMAT_COMMIT_USER_TITLE", "Format commit message")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithString("message",
				mcp.Required(),
				mcp.Description("Commit message without the issue key"),
			),
			mcp.WithString("type",
				mcp.Description("Conventional commit type"),
				mcp.Enum(commitTypes...),
			),
			mcp.WithBoolean("includeDescription",
				mcp.Description("Add the issue summary to the commit body (default: false)"),
			),
			mcp.WithBoolean("validate",
				mcp.Description("Check that the issue exists in Jira (default: true)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}
			issueKey = strings.ToUpper(strings.TrimSpace(issueKey))
			if !issueKeyPattern.MatchString(issueKey) {
				return validationError(fmt.Errorf("invalid issue key format: %s. Expected format: PROJ-123", issueKey)), nil
			}
			message, err := requiredParam[string](&req, "message")
			if err != nil {
				return validationError(err), nil
			}
			message = strings.TrimSpace(message)
			if message == "" {
				return validationError(fmt.Errorf("required parameter message cannot be empty or zero value")), nil
			}
			commitType, err := OptionalParam[string](&req, "type")
			if err != nil {
				return validationError(err), nil
			}
			includeDescription, err := OptionalBoolParamWithDefault(&req, "includeDescription", false)
			if err != nil {
				return validationError(err), nil
			}
			validate, err := OptionalBoolParamWithDefault(&req, "validate", true)
			if err != nil {
				return validationError(err), nil
			}

			var summary, issueType string
			if validate {
				client, err := getClient(ctx)
				if err != nil {
					return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
				}
				issue, resp, err := client.GetIssue(ctx, issueKey, &gj.GetQueryOptions{Fields: "summary,issuetype"})
				if result, err := HandleAPIError(err, resp, fmt.Sprintf("issue %s", issueKey)); result != nil || err != nil {
					return result, err
				}
				f := issueFields(issue)
				summary, issueType = f.Summary, f.Type.Name
			}

			subject := fmt.Sprintf("%s: %s", issueKey, message)
			if commitType != "" {
				subject = fmt.Sprintf("%s(%s): %s", commitType, issueKey, message)
			}
			commitMessage := subject
			if includeDescription && summary != "" {
				commitMessage += "\n\nRelated to: " + summary
				if issueType != "" {
					commitMessage += "\nIssue type: " + issueType
				}
			}

			out := map[string]any{
				"issueKey":      issueKey,
				"commitMessage": commitMessage,
				"subject":       subject,
				"gitCommand":    fmt.Sprintf(`git commit -m "%s"`, strings.ReplaceAll(commitMessage, `"`, `\"`)),
			}
			if summary != "" {
				out["issueSummary"] = summary
			}
			return jsonResult(out)
		}
}

var (
	acceptanceKeywords = []string{"acceptance criteria", "given", "when", "then", "ac:", "criteria:"}
	doneKeywords       = []string{"definition of done", "dod", "done when", "complete when", "✓", "☑", "- [x]", "- [ ]"}
)

// auditReport accumulates findings of audit_issue.
type auditReport struct {
	Issues      []string       `json:"issues"`
	Suggestions []string       `json:"suggestions"`
	Metadata    map[string]any `json:"metadata"`
}

func (r *auditReport) problem(issue, suggestion string) {
	r.Issues = append(r.Issues, issue)
	r.Suggestions = append(r.Suggestions, suggestion)
}

func (r *auditReport) suggest(s string) {
	r.Suggestions = append(r.Suggestions, s)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func (r *auditReport) checkDescription(description string, checkDoD, checkAC bool) {
	if strings.TrimSpace(description) == "" {
		r.problem("No description provided", "Add a clear description of the work required")
		return
	}
	if len([]rune(description)) < 50 {
		r.problem("Description is very short", "Expand description with more context")
	}
	lower := strings.ToLower(description)
	if checkAC && !containsAny(lower, acceptanceKeywords) {
		r.problem("No acceptance criteria found", "Add acceptance criteria using Given/When/Then or bullet points")
	}
	if checkDoD && !containsAny(lower, doneKeywords) {
		r.suggest("Consider adding Definition of Done checklist items")
	}
}

// fieldIDs returns the catalog ids for names followed by the fallbacks.
func fieldIDs(ctx context.Context, mapper *fieldmap.Mapper, names []string, fallbacks ...string) ([]string, error) {
	var ids []string
	for _, name := range names {
		id, ok, err := mapper.GetID(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, id)
		}
	}
	return append(ids, fallbacks...), nil
}

func (r *auditReport) checkEstimates(ctx context.Context, mapper *fieldmap.Mapper, f *gj.IssueFields) error {
	switch strings.ToLower(f.Type.Name) {
	case "story", "task", "bug":
	default:
		return nil
	}

	pointIDs, err := fieldIDs(ctx, mapper, storyPointsNames, "customfield_10016", "customfield_10026", defaultStoryPointsField)
	if err != nil {
		return err
	}
	if v, ok := unknownValue(f, pointIDs...); ok {
		r.Metadata["storyPoints"] = v
	} else {
		r.problem("No story points assigned", "Add story point estimate for capacity planning")
	}

	epicIDs, err := fieldIDs(ctx, mapper, []string{"Epic Link"}, defaultEpicLinkField, "customfield_10008")
	if err != nil {
		return err
	}
	switch v, ok := unknownValue(f, epicIDs...); {
	case ok:
		if m, isMap := v.(map[string]any); isMap && m["key"] != nil {
			r.Metadata["epicLink"] = m["key"]
		} else {
			r.Metadata["epicLink"] = fmt.Sprint(v)
		}
	case f.Parent != nil && f.Parent.Key != "":
		r.Metadata["epicLink"] = f.Parent.Key
	default:
		r.suggest("Consider linking to an Epic for better tracking")
	}
	return nil
}

func (r *auditReport) checkMetadata(f *gj.IssueFields) {
	r.Metadata["issueType"] = f.Type.Name
	if p := priorityName(f); p != "" {
		r.Metadata["priority"] = p
	} else {
		r.problem("No priority set", "Set priority to help with triage")
	}
	if a := assigneeName(f); a != "" {
		r.Metadata["assignee"] = a
	} else {
		r.suggest("Assign to a team member when ready")
	}
	if len(f.Labels) > 0 {
		r.Metadata["labels"] = f.Labels
	} else {
		r.suggest("Consider adding labels for categorization")
	}
	if len(f.Components) > 0 {
		names := make([]string, 0, len(f.Components))
		for _, c := range f.Components {
			names = append(names, c.Name)
		}
		r.Metadata["components"] = names
	}
}

// qualityScore costs 15 points per issue and 5 per suggestion.
func qualityScore(issues, suggestions int) int {
	return max(0, min(100, 100-15*issues-5*suggestions))
}

func qualityLevel(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 50:
		return "Needs Improvement"
	}
	return "Poor"
}

// AuditIssue defines the audit_issue tool.
func AuditIssue(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	mappers := newFieldMappers()
	return mcp.NewTool("audit_issue",
			mcp.WithDescription(t("TOOL_AUDIT_ISSUE_DESCRIPTION",
				"Audit an issue for quality and completeness: description, acceptance criteria, Definition of Done, story points, epic link, priority and labels. Returns a score with recommendations.")),
			mcp.WithTitleAnnotation(t("TOOL_AUDIT_ISSUE_USER_TITLE", "Audit issue")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithBoolean("checkDefinitionOfDone",
				mcp.Description("Look for Definition of Done items (default: true)"),
			),
			mcp.WithBoolean("checkAcceptanceCriteria",
				mcp.Description("Look for acceptance criteria (default: true)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}
			checkDoD, err := OptionalBoolParamWithDefault(&req, "checkDefinitionOfDone", true)
			if err != nil {
				return validationError(err), nil
			}
			checkAC, err := OptionalBoolParamWithDefault(&req, "checkAcceptanceCriteria", true)
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
			f := issueFields(issue)

			report := &auditReport{Issues: []string{}, Suggestions: []string{}, Metadata: map[string]any{}}
			report.checkDescription(f.Description, checkDoD, checkAC)
			if err := report.checkEstimates(ctx, mappers.For(client), f); err != nil {
				return handleMapperError(err)
			}
			report.checkMetadata(f)

			score := qualityScore(len(report.Issues), len(report.Suggestions))
			out := map[string]any{
				"issueKey":     issueKey,
				"summary":      f.Summary,
				"qualityScore": score,
				"qualityLevel": qualityLevel(score),
				"issues":       report.Issues,
				"suggestions":  report.Suggestions,
				"metadata":     report.Metadata,
			}
			if len(report.Issues) > 0 || len(report.Suggestions) > 0 {
				actions := []string{}
				if slices.Contains(report.Issues, "No description provided") {
					actions = append(actions, "Use update_issue to add description")
				}
				if slices.Contains(report.Issues, "No story points assigned") {
					actions = append(actions, "Use update_issue to add story points")
				}
				out["quickActions"] = actions
			}
			return jsonResult(out)
		}
}
