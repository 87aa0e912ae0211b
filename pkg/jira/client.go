package jira

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gj "github.com/andygrunwald/go-jira"
	"github.com/google/go-querystring/query"

	"github.com/InkyQuill/jira-mcp-server/pkg/credentials"
	"github.com/InkyQuill/jira-mcp-server/pkg/fieldmap"
)

// MaxAttachmentSize is the largest file the attachment tools will upload or download.
const MaxAttachmentSize = 10 * 1024 * 1024

// Client is the subset of the Jira REST API used by the tools.
// It is an interface so handlers can be tested against a gomock double.
//
//go:generate mockgen -source=client.go -destination=mock_client_test.go -package=jira
type Client interface {
	BaseURL() string

	Fields(ctx context.Context) ([]gj.Field, *gj.Response, error)

	GetIssue(ctx context.Context, key string, opts *gj.GetQueryOptions) (*gj.Issue, *gj.Response, error)
	CreateIssue(ctx context.Context, fields map[string]any) (*gj.Issue, *gj.Response, error)
	UpdateIssue(ctx context.Context, key string, fields map[string]any) (*gj.Response, error)
	DeleteIssue(ctx context.Context, key string) (*gj.Response, error)
	SearchIssues(ctx context.Context, jql string, opts *gj.SearchOptions) ([]gj.Issue, *gj.Response, error)

	GetTransitions(ctx context.Context, key string) ([]gj.Transition, *gj.Response, error)
	DoTransition(ctx context.Context, key string, payload any) (*gj.Response, error)

	AddComment(ctx context.Context, key, body string) (*gj.Comment, *gj.Response, error)
	AddAttachment(ctx context.Context, key string, r io.Reader, filename string) ([]gj.Attachment, *gj.Response, error)
	GetAttachment(ctx context.Context, id string) (*gj.Attachment, *gj.Response, error)
	DownloadAttachment(ctx context.Context, id string) ([]byte, *gj.Response, error)

	AddIssueLink(ctx context.Context, link *gj.IssueLink) (*gj.Response, error)
	IssueLinkTypes(ctx context.Context) ([]gj.IssueLinkType, *gj.Response, error)
	IssueTypes(ctx context.Context) ([]gj.IssueType, *gj.Response, error)
	CreateMeta(ctx context.Context, projectKey string) (*gj.CreateMetaInfo, *gj.Response, error)

	Projects(ctx context.Context) (*gj.ProjectList, *gj.Response, error)
	FindUsers(ctx context.Context, search string) ([]gj.User, *gj.Response, error)
	Myself(ctx context.Context) (*gj.User, *gj.Response, error)
}

// ConnectionConfig describes how to reach and authenticate against one Jira instance.
type ConnectionConfig struct {
	Host   string
	Email  string
	Token  *credentials.Secret
	Scheme credentials.AuthScheme
}

// NormalizeBaseURL turns "example.atlassian.net" or "https://example.atlassian.net/"
// into "https://example.atlassian.net".
func NormalizeBaseURL(host string) (string, error) {
	h := strings.TrimSpace(host)
	if h == "" {
		return "", errors.New("jira host is required")
	}
	if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
		h = "https://" + h
	}
	u, err := url.Parse(h)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid jira host %q", host)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// ClientFactory builds a Client from a connection config.
type ClientFactory func(cfg ConnectionConfig) (Client, error)

// NewClient creates a go-jira backed Client.
func NewClient(cfg ConnectionConfig) (Client, error) {
	baseURL, err := NormalizeBaseURL(cfg.Host)
	if err != nil {
		return nil, err
	}
	if cfg.Token.Empty() {
		return nil, errors.New("jira API token is required")
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = credentials.AuthBasic
	}
	if scheme == credentials.AuthBasic && cfg.Email == "" {
		return nil, errors.New("jira email is required for basic authentication")
	}

	tp := &credentials.Transport{Scheme: scheme, Email: cfg.Email, Token: cfg.Token}
	jc, err := gj.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}
	return &serviceClient{jc: jc, baseURL: baseURL, scheme: scheme}, nil
}

type serviceClient struct {
	jc      *gj.Client
	baseURL string
	scheme  credentials.AuthScheme
}

func (c *serviceClient) BaseURL() string { return c.baseURL }

func (c *serviceClient) Fields(ctx context.Context) ([]gj.Field, *gj.Response, error) {
	return c.jc.Field.GetListWithContext(ctx)
}

func (c *serviceClient) GetIssue(ctx context.Context, key string, opts *gj.GetQueryOptions) (*gj.Issue, *gj.Response, error) {
	return c.jc.Issue.GetWithContext(ctx, key, opts)
}

// CreateIssue posts the raw field map so custom fields need no struct mapping.
func (c *serviceClient) CreateIssue(ctx context.Context, fields map[string]any) (*gj.Issue, *gj.Response, error) {
	req, err := c.jc.NewRequestWithContext(ctx, http.MethodPost, "rest/api/2/issue", map[string]any{"fields": fields})
	if err != nil {
		return nil, nil, err
	}
	created := new(gj.Issue)
	resp, err := c.jc.Do(req, created)
	if err != nil {
		return nil, resp, gj.NewJiraError(resp, err)
	}
	return created, resp, nil
}

func (c *serviceClient) UpdateIssue(ctx context.Context, key string, fields map[string]any) (*gj.Response, error) {
	return c.jc.Issue.UpdateIssueWithContext(ctx, key, map[string]any{"fields": fields})
}

func (c *serviceClient) DeleteIssue(ctx context.Context, key string) (*gj.Response, error) {
	return c.jc.Issue.DeleteWithContext(ctx, key)
}

func (c *serviceClient) SearchIssues(ctx context.Context, jql string, opts *gj.SearchOptions) ([]gj.Issue, *gj.Response, error) {
	return c.jc.Issue.SearchWithContext(ctx, jql, opts)
}

func (c *serviceClient) GetTransitions(ctx context.Context, key string) ([]gj.Transition, *gj.Response, error) {
	return c.jc.Issue.GetTransitionsWithContext(ctx, key)
}

func (c *serviceClient) DoTransition(ctx context.Context, key string, payload any) (*gj.Response, error) {
	return c.jc.Issue.DoTransitionWithPayloadWithContext(ctx, key, payload)
}

func (c *serviceClient) AddComment(ctx context.Context, key, body string) (*gj.Comment, *gj.Response, error) {
	return c.jc.Issue.AddCommentWithContext(ctx, key, &gj.Comment{Body: body})
}

func (c *serviceClient) AddAttachment(ctx context.Context, key string, r io.Reader, filename string) ([]gj.Attachment, *gj.Response, error) {
	attachments, resp, err := c.jc.Issue.PostAttachmentWithContext(ctx, key, r, filename)
	if err != nil || attachments == nil {
		return nil, resp, err
	}
	return *attachments, resp, nil
}

func (c *serviceClient) GetAttachment(ctx context.Context, id string) (*gj.Attachment, *gj.Response, error) {
	req, err := c.jc.NewRequestWithContext(ctx, http.MethodGet, "rest/api/2/attachment/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, nil, err
	}
	attachment := new(gj.Attachment)
	resp, err := c.jc.Do(req, attachment)
	if err != nil {
		return nil, resp, gj.NewJiraError(resp, err)
	}
	return attachment, resp, nil
}

func (c *serviceClient) DownloadAttachment(ctx context.Context, id string) ([]byte, *gj.Response, error) {
	resp, err := c.jc.Issue.DownloadAttachmentWithContext(ctx, id)
	if err != nil {
		return nil, resp, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, MaxAttachmentSize+1))
	if err != nil {
		return nil, resp, fmt.Errorf("failed to read attachment %s: %w", id, err)
	}
	if n > MaxAttachmentSize {
		return nil, resp, fmt.Errorf("attachment %s exceeds %d bytes", id, MaxAttachmentSize)
	}
	return buf.Bytes(), resp, nil
}

func (c *serviceClient) AddIssueLink(ctx context.Context, link *gj.IssueLink) (*gj.Response, error) {
	return c.jc.Issue.AddLinkWithContext(ctx, link)
}

func (c *serviceClient) IssueLinkTypes(ctx context.Context) ([]gj.IssueLinkType, *gj.Response, error) {
	return c.jc.IssueLinkType.GetListWithContext(ctx)
}

func (c *serviceClient) IssueTypes(ctx context.Context) ([]gj.IssueType, *gj.Response, error) {
	req, err := c.jc.NewRequestWithContext(ctx, http.MethodGet, "rest/api/2/issuetype", nil)
	if err != nil {
		return nil, nil, err
	}
	var types []gj.IssueType
	resp, err := c.jc.Do(req, &types)
	if err != nil {
		return nil, resp, gj.NewJiraError(resp, err)
	}
	return types, resp, nil
}

func (c *serviceClient) CreateMeta(ctx context.Context, projectKey string) (*gj.CreateMetaInfo, *gj.Response, error) {
	return c.jc.Issue.GetCreateMetaWithContext(ctx, projectKey)
}

func (c *serviceClient) Projects(ctx context.Context) (*gj.ProjectList, *gj.Response, error) {
	return c.jc.Project.GetListWithContext(ctx)
}

type userSearchOptions struct {
	Query      string `url:"query,omitempty"`
	Username   string `url:"username,omitempty"`
	MaxResults int    `url:"maxResults,omitempty"`
}

// FindUsers searches users by email or name. Cloud expects "query", Server and
// Data Center expect "username".
func (c *serviceClient) FindUsers(ctx context.Context, q string) ([]gj.User, *gj.Response, error) {
	opts := userSearchOptions{Query: q, MaxResults: 50}
	if c.scheme == credentials.AuthBearer {
		opts = userSearchOptions{Username: q, MaxResults: 50}
	}
	values, err := query.Values(opts)
	if err != nil {
		return nil, nil, err
	}
	req, err := c.jc.NewRequestWithContext(ctx, http.MethodGet, "rest/api/2/user/search?"+values.Encode(), nil)
	if err != nil {
		return nil, nil, err
	}
	var users []gj.User
	resp, err := c.jc.Do(req, &users)
	if err != nil {
		return nil, resp, gj.NewJiraError(resp, err)
	}
	return users, resp, nil
}

func (c *serviceClient) Myself(ctx context.Context) (*gj.User, *gj.Response, error) {
	return c.jc.User.GetSelfWithContext(ctx)
}

// toField converts the go-jira field record to the mapper's descriptor.
func toField(f gj.Field) fieldmap.Field {
	return fieldmap.Field{
		ID:          f.ID,
		Key:         f.Key,
		Name:        f.Name,
		Custom:      f.Custom,
		Navigable:   f.Navigable,
		Searchable:  f.Searchable,
		ClauseNames: f.ClauseNames,
		Schema: fieldmap.Schema{
			Type:     f.Schema.Type,
			Items:    f.Schema.Items,
			Custom:   f.Schema.Custom,
			System:   f.Schema.System,
			CustomID: f.Schema.CustomID,
		},
	}
}

// FieldSource exposes a Client's field catalog as a fieldmap.Source.
type FieldSource struct {
	Client Client
}

// FetchFields implements fieldmap.Source. Failures carry the HTTP response
// as an *APIError so handlers can classify them.
func (s FieldSource) FetchFields(ctx context.Context) ([]fieldmap.Field, error) {
	raw, resp, err := s.Client.Fields(ctx)
	if err != nil {
		return nil, &APIError{Resp: resp, Err: err}
	}
	out := make([]fieldmap.Field, 0, len(raw))
	for _, f := range raw {
		out = append(out, toField(f))
	}
	return out, nil
}

// APIError is a failed Jira call surfaced through another component.
type APIError struct {
	Resp *gj.Response
	Err  error
}

func (e *APIError) Error() string { return e.Err.Error() }

func (e *APIError) Unwrap() error { return e.Err }
