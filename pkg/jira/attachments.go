package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	gj "github.com/andygrunwald/go-jira"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/InkyQuill/jira-mcp-server/pkg/translations"
)

var errAttachmentTooLarge = fmt.Errorf("attachment too large (max %d MB)", MaxAttachmentSize/(1024*1024))

// readAttachmentFile loads a local file for upload.
func readAttachmentFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxAttachmentSize {
		return nil, errAttachmentTooLarge
	}
	return os.ReadFile(path)
}

// decodeContent converts the content argument to bytes.
func decodeContent(content, encoding string) ([]byte, error) {
	var data []byte
	switch encoding {
	case "", "none":
		data = []byte(content)
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 content: %w", err)
		}
		data = decoded
	default:
		return nil, fmt.Errorf("unsupported encoding %q: use none or base64", encoding)
	}
	if len(data) > MaxAttachmentSize {
		return nil, errAttachmentTooLarge
	}
	return data, nil
}

func uploadAttachment(ctx context.Context, client Client, issueKey, filename string, data []byte) (*mcp.CallToolResult, error) {
	_, resp, err := client.AddAttachment(ctx, issueKey, bytes.NewReader(data), filepath.Base(filename))
	return HandleCreateUpdateAPIError(err, resp, fmt.Sprintf("issue %s", issueKey), "attach file")
}

// AddComment defines the add_comment tool.
func AddComment(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("add_comment",
			mcp.WithDescription(t("TOOL_ADD_COMMENT_DESCRIPTION", "Add a comment to a Jira issue.")),
			mcp.WithTitleAnnotation(t("TOOL_ADD_COMMENT_USER_TITLE", "Add comment")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithString("comment",
				mcp.Required(),
				mcp.Description("Comment text"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}
			body, err := requiredParam[string](&req, "comment")
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			comment, resp, err := client.AddComment(ctx, issueKey, body)
			if result, err := HandleCreateUpdateAPIError(err, resp, fmt.Sprintf("issue %s", issueKey), "add comment"); result != nil || err != nil {
				return result, err
			}

			return jsonResult(map[string]string{
				"message":   "Comment added successfully",
				"commentId": comment.ID,
			})
		}
}

// AddCommentWithAttachment defines the add_comment_with_attachment tool.
func AddCommentWithAttachment(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("add_comment_with_attachment",
			mcp.WithDescription(t("TOOL_ADD_COMMENT_WITH_ATTACHMENT_DESCRIPTION",
				"Add a comment and an attachment to an issue. The attachment comes from a local file (filepath) or inline content.")),
			mcp.WithTitleAnnotation(t("TOOL_ADD_COMMENT_WITH_ATTACHMENT_USER_TITLE", "Add comment with attachment")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithString("comment",
				mcp.Required(),
				mcp.Description("Comment text"),
			),
			mcp.WithString("filename",
				mcp.Required(),
				mcp.Description("Name of the attachment in Jira"),
			),
			mcp.WithString("filepath",
				mcp.Description("Local file to attach"),
			),
			mcp.WithString("content",
				mcp.Description("Inline attachment content, used when filepath is not given"),
			),
			mcp.WithString("encoding",
				mcp.Description("Encoding of content (default: none)"),
				mcp.Enum("none", "base64"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}
			body, err := requiredParam[string](&req, "comment")
			if err != nil {
				return validationError(err), nil
			}
			filename, err := requiredParam[string](&req, "filename")
			if err != nil {
				return validationError(err), nil
			}
			path, err := OptionalParam[string](&req, "filepath")
			if err != nil {
				return validationError(err), nil
			}
			content, err := OptionalParam[string](&req, "content")
			if err != nil {
				return validationError(err), nil
			}
			encoding, err := OptionalParam[string](&req, "encoding")
			if err != nil {
				return validationError(err), nil
			}

			var data []byte
			switch {
			case path != "":
				data, err = readAttachmentFile(path)
			case content != "":
				data, err = decodeContent(content, encoding)
			default:
				err = fmt.Errorf("either filepath or content is required")
			}
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			comment, resp, err := client.AddComment(ctx, issueKey, body)
			if result, err := HandleCreateUpdateAPIError(err, resp, fmt.Sprintf("issue %s", issueKey), "add comment"); result != nil || err != nil {
				return result, err
			}
			if result, err := uploadAttachment(ctx, client, issueKey, filename, data); result != nil || err != nil {
				return result, err
			}

			return jsonResult(map[string]string{
				"message":   "Comment and attachment added successfully",
				"commentId": comment.ID,
				"filename":  filepath.Base(filename),
			})
		}
}

// AttachFile defines the attach_file tool.
func AttachFile(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("attach_file",
			mcp.WithDescription(t("TOOL_ATTACH_FILE_DESCRIPTION", "Attach a local file (max 10 MB) to an issue.")),
			mcp.WithTitleAnnotation(t("TOOL_ATTACH_FILE_USER_TITLE", "Attach file")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithString("filename",
				mcp.Required(),
				mcp.Description("Name of the attachment in Jira"),
			),
			mcp.WithString("filepath",
				mcp.Required(),
				mcp.Description("Local file to attach"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}
			filename, err := requiredParam[string](&req, "filename")
			if err != nil {
				return validationError(err), nil
			}
			path, err := requiredParam[string](&req, "filepath")
			if err != nil {
				return validationError(err), nil
			}

			data, err := readAttachmentFile(path)
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			if result, err := uploadAttachment(ctx, client, issueKey, filename, data); result != nil || err != nil {
				return result, err
			}
			return jsonResult(map[string]string{
				"message":  "File attached successfully",
				"filename": filepath.Base(filename),
			})
		}
}

// AttachContent defines the attach_content tool.
func AttachContent(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("attach_content",
			mcp.WithDescription(t("TOOL_ATTACH_CONTENT_DESCRIPTION",
				"Attach inline content to an issue as a file. Use base64 encoding for binary data.")),
			mcp.WithTitleAnnotation(t("TOOL_ATTACH_CONTENT_USER_TITLE", "Attach content")),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithString("filename",
				mcp.Required(),
				mcp.Description("Name of the attachment in Jira"),
			),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("File content"),
			),
			mcp.WithString("encoding",
				mcp.Description("Encoding of content (default: none)"),
				mcp.Enum("none", "base64"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}
			filename, err := requiredParam[string](&req, "filename")
			if err != nil {
				return validationError(err), nil
			}
			content, err := requiredParam[string](&req, "content")
			if err != nil {
				return validationError(err), nil
			}
			encoding, err := OptionalParam[string](&req, "encoding")
			if err != nil {
				return validationError(err), nil
			}

			data, err := decodeContent(content, encoding)
			if err != nil {
				return validationError(err), nil
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			if result, err := uploadAttachment(ctx, client, issueKey, filename, data); result != nil || err != nil {
				return result, err
			}
			return jsonResult(map[string]string{
				"message":  "Content attached successfully",
				"filename": filepath.Base(filename),
			})
		}
}

type downloadedFile struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int    `json:"size"`
}

func saveAttachment(ctx context.Context, client Client, a *gj.Attachment, dir string) (*downloadedFile, *gj.Response, error) {
	data, resp, err := client.DownloadAttachment(ctx, a.ID)
	if err != nil {
		return nil, resp, err
	}
	name := filepath.Base(a.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "attachment-" + a.ID
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return &downloadedFile{ID: a.ID, Filename: name, Path: path, Size: len(data)}, resp, nil
}

// GetIssueAttachment defines the get_issue_attachment tool.
func GetIssueAttachment(getClient GetClientFn, t translations.TranslationHelperFunc) (mcp.Tool, server.ToolHandlerFunc) {
	return mcp.NewTool("get_issue_attachment",
			mcp.WithDescription(t("TOOL_GET_ISSUE_ATTACHMENT_DESCRIPTION",
				"Download attachments of an issue to a local directory. Select one by attachmentId or filename, or omit both to download all.")),
			mcp.WithTitleAnnotation(t("TOOL_GET_ISSUE_ATTACHMENT_USER_TITLE", "Download attachment")),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("issueKey",
				mcp.Required(),
				mcp.Description("Issue key (e.g., PROJ-123)"),
			),
			mcp.WithString("attachmentId",
				mcp.Description("Attachment id"),
			),
			mcp.WithString("filename",
				mcp.Description("Attachment file name"),
			),
			mcp.WithString("outputPath",
				mcp.Description("Directory to save into (default: current directory)"),
			),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			issueKey, err := requiredParam[string](&req, "issueKey")
			if err != nil {
				return validationError(err), nil
			}
			attachmentID, err := OptionalParam[string](&req, "attachmentId")
			if err != nil {
				return validationError(err), nil
			}
			filename, err := OptionalParam[string](&req, "filename")
			if err != nil {
				return validationError(err), nil
			}
			outputPath, err := OptionalParam[string](&req, "outputPath")
			if err != nil {
				return validationError(err), nil
			}
			if outputPath == "" {
				outputPath = "."
			}

			client, err := getClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Jira client: %w", err)
			}

			if err := os.MkdirAll(outputPath, 0755); err != nil {
				return nil, fmt.Errorf("failed to create output directory: %w", err)
			}

			var targets []*gj.Attachment
			if attachmentID != "" {
				a, resp, err := client.GetAttachment(ctx, attachmentID)
				if result, err := HandleAPIError(err, resp, fmt.Sprintf("attachment %s", attachmentID)); result != nil || err != nil {
					return result, err
				}
				targets = []*gj.Attachment{a}
			} else {
				issue, resp, err := client.GetIssue(ctx, issueKey, &gj.GetQueryOptions{Fields: "attachment"})
				if result, err := HandleAPIError(err, resp, fmt.Sprintf("issue %s", issueKey)); result != nil || err != nil {
					return result, err
				}
				all := issueFields(issue).Attachments
				if len(all) == 0 {
					return mcp.NewToolResultError(fmt.Sprintf("No attachments found in issue %s", issueKey)), nil
				}
				if filename == "" {
					targets = all
				} else {
					for _, a := range all {
						if a.Filename == filename {
							targets = append(targets, a)
							break
						}
					}
					if len(targets) == 0 {
						return mcp.NewToolResultError(fmt.Sprintf("Attachment '%s' not found in issue %s", filename, issueKey)), nil
					}
				}
			}

			files := make([]*downloadedFile, 0, len(targets))
			for _, a := range targets {
				file, resp, err := saveAttachment(ctx, client, a, outputPath)
				if result, err := HandleAPIError(err, resp, fmt.Sprintf("attachment %s", a.ID)); result != nil || err != nil {
					return result, err
				}
				files = append(files, file)
			}

			if len(files) == 1 && (attachmentID != "" || filename != "") {
				return jsonResult(map[string]any{
					"message":  "Attachment downloaded successfully",
					"id":       files[0].ID,
					"filename": files[0].Filename,
					"path":     files[0].Path,
					"size":     files[0].Size,
				})
			}
			return jsonResult(map[string]any{
				"message":    fmt.Sprintf("Downloaded %d attachments", len(files)),
				"files":      files,
				"outputPath": outputPath,
			})
		}
}
