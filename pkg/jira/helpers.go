package jira

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	gj "github.com/andygrunwald/go-jira"
	"github.com/mark3labs/mcp-go/mcp"
	log "github.com/sirupsen/logrus"

	"github.com/InkyQuill/jira-mcp-server/pkg/fieldmap"
)

const authFailedMessage = "Authentication failed (401). Your Jira API token may be expired or revoked. Please update it using the update_server_token tool."

func statusCode(resp *gj.Response) int {
	if resp == nil || resp.Response == nil {
		return http.StatusInternalServerError
	}
	return resp.StatusCode
}

// HandleAPIError provides centralized error handling for Jira API calls
// It checks the response status code and returns appropriate MCP error results
// Returns:
//   - (*mcp.CallToolResult, nil) if the error should be returned to the user
//   - (nil, error) if the error should be propagated as an internal error
//   - (nil, nil) if err is nil
func HandleAPIError(err error, resp *gj.Response, resourceDescription string) (*mcp.CallToolResult, error) {
	if err == nil {
		return nil, nil
	}

	code := statusCode(resp)
	switch code {
	case http.StatusUnauthorized:
		return mcp.NewToolResultError(authFailedMessage), nil
	case http.StatusNotFound:
		return mcp.NewToolResultError(fmt.Sprintf("%s not found or access denied (%d)", resourceDescription, code)), nil
	case http.StatusBadRequest, http.StatusForbidden, http.StatusUnprocessableEntity:
		return mcp.NewToolResultError(fmt.Sprintf("failed to process %s: %v (status: %d)", resourceDescription, err, code)), nil
	}

	return nil, fmt.Errorf("failed to process %s: %w (status: %d)", resourceDescription, err, code)
}

// HandleListAPIError is HandleAPIError for list calls: a 404 is not reported as
// "not found" because an empty listing is a valid answer.
func HandleListAPIError(err error, resp *gj.Response, resourceDescription string) (*mcp.CallToolResult, error) {
	if err == nil {
		return nil, nil
	}

	code := statusCode(resp)
	switch code {
	case http.StatusUnauthorized:
		return mcp.NewToolResultError(authFailedMessage), nil
	case http.StatusBadRequest:
		// Jira answers malformed JQL with 400.
		return mcp.NewToolResultError(fmt.Sprintf("failed to list %s: %v (status: %d)", resourceDescription, err, code)), nil
	}

	return nil, fmt.Errorf("failed to list %s: %w (status: %d)", resourceDescription, err, code)
}

// HandleCreateUpdateAPIError handles errors of create, update, delete and transition calls.
func HandleCreateUpdateAPIError(err error, resp *gj.Response, resourceDescription, operation string) (*mcp.CallToolResult, error) {
	if err == nil {
		return nil, nil
	}

	code := statusCode(resp)
	switch code {
	case http.StatusUnauthorized:
		return mcp.NewToolResultError(authFailedMessage), nil
	case http.StatusNotFound:
		return mcp.NewToolResultError(fmt.Sprintf("%s not found or access denied (%d)", resourceDescription, code)), nil
	case http.StatusBadRequest, http.StatusForbidden, http.StatusConflict, http.StatusUnprocessableEntity:
		return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v (status: %d)", operation, err, code)), nil
	}

	return nil, fmt.Errorf("failed to %s %s: %w (status: %d)", operation, resourceDescription, err, code)
}

// handleMapperError classifies a field catalog failure like any other API error.
func handleMapperError(err error) (*mcp.CallToolResult, error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return HandleAPIError(apiErr.Err, apiErr.Resp, "Jira field catalog")
	}
	return nil, fmt.Errorf("failed to load Jira field catalog: %w", err)
}

func validationError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Validation Error: %v", err))
}

// jsonResult renders v as indented JSON text. <, > and & stay literal since
// descriptions and JQL are read back as-is.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(strings.TrimSuffix(buf.String(), "\n")), nil
}

// requiredParam returns the value of a required parameter.
// The value must be present, of type T and not the zero value.
func requiredParam[T comparable](r *mcp.CallToolRequest, p string) (T, error) {
	var zero T
	args := r.GetArguments()

	v, ok := args[p]
	if !ok || v == nil {
		return zero, fmt.Errorf("missing required parameter: %s", p)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("parameter %s is not of expected type %T, got %T", p, zero, v)
	}
	if typed == zero {
		return zero, fmt.Errorf("required parameter %s cannot be empty or zero value", p)
	}
	return typed, nil
}

// OptionalParamOK returns the value of an optional parameter and whether it was present.
func OptionalParamOK[T any](r *mcp.CallToolRequest, p string) (value T, ok bool, err error) {
	v, present := r.GetArguments()[p]
	if !present || v == nil {
		return value, false, nil
	}
	value, ok = v.(T)
	if !ok {
		return value, true, fmt.Errorf("parameter %s is not of expected type %T, got %T", p, value, v)
	}
	return value, true, nil
}

// OptionalParam returns the value of an optional parameter or the zero value.
func OptionalParam[T any](r *mcp.CallToolRequest, p string) (T, error) {
	v, _, err := OptionalParamOK[T](r, p)
	return v, err
}

// OptionalIntParamWithDefault reads a numeric parameter as int.
// JSON numbers arrive as float64; non-integral values are rejected.
func OptionalIntParamWithDefault(r *mcp.CallToolRequest, p string, d int) (int, error) {
	f, ok, err := OptionalParamOK[float64](r, p)
	if err != nil {
		return 0, err
	}
	if !ok {
		return d, nil
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("parameter %s must be an integer, got %v", p, f)
	}
	return int(f), nil
}

// OptionalBoolParamWithDefault reads a boolean parameter.
func OptionalBoolParamWithDefault(r *mcp.CallToolRequest, p string, d bool) (bool, error) {
	b, ok, err := OptionalParamOK[bool](r, p)
	if err != nil {
		return false, err
	}
	if !ok {
		return d, nil
	}
	return b, nil
}

// WithPagination adds startAt and maxResults parameters to a tool.
func WithPagination(defaultMax int) mcp.ToolOption {
	return func(tool *mcp.Tool) {
		mcp.WithNumber("startAt",
			mcp.Description("Index of the first result to return (0-based)"),
			mcp.Min(0),
		)(tool)
		mcp.WithNumber("maxResults",
			mcp.Description(fmt.Sprintf("Maximum number of results to return (default %d, max 100)", defaultMax)),
			mcp.Min(1),
			mcp.Max(100),
		)(tool)
	}
}

// OptionalPaginationParams reads the parameters declared by WithPagination.
func OptionalPaginationParams(r *mcp.CallToolRequest, defaultMax int) (startAt, maxResults int, err error) {
	startAt, err = OptionalIntParamWithDefault(r, "startAt", 0)
	if err != nil {
		return 0, 0, err
	}
	maxResults, err = OptionalIntParamWithDefault(r, "maxResults", defaultMax)
	if err != nil {
		return 0, 0, err
	}
	if startAt < 0 {
		return 0, 0, fmt.Errorf("startAt must be >= 0")
	}
	if maxResults < 1 {
		maxResults = defaultMax
	}
	if maxResults > 100 {
		maxResults = 100
	}
	return startAt, maxResults, nil
}

var toolLogger log.FieldLogger = log.StandardLogger()

// fieldMappers holds the field mappers owned by one tool handler,
// one per Jira instance the handler has talked to.
type fieldMappers struct {
	mu     sync.Mutex
	byHost map[string]*fieldmap.Mapper
}

func newFieldMappers() *fieldMappers {
	return &fieldMappers{byHost: make(map[string]*fieldmap.Mapper)}
}

// For returns the mapper for client's instance, creating it on first use.
func (f *fieldMappers) For(client Client) *fieldmap.Mapper {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := client.BaseURL()
	m, ok := f.byHost[key]
	if !ok {
		m = fieldmap.New(FieldSource{Client: client}, fieldmap.WithLogger(toolLogger.WithField("jira", key)))
		f.byHost[key] = m
	}
	return m
}
