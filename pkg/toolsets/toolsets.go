package toolsets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Toolset represents a logical group of MCP tools.
type Toolset struct {
	Name        string
	Description string
	Enabled     bool // Whether this toolset is active based on configuration
	readOnly    bool // Whether only the read tools of this toolset are exposed
	writeTools  []server.ServerTool
	readTools   []server.ServerTool
}

// ToolsetInfo provides metadata about a toolset.
type ToolsetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	ToolCount   int    `json:"toolCount"`
}

// ToolsetGroup manages a collection of Toolsets.
type ToolsetGroup struct {
	Toolsets     map[string]*Toolset
	everythingOn bool // Flag if "all" toolsets were requested
	readOnly     bool // Global read-only flag propagated to added toolsets
	mu           sync.RWMutex
}

// NewServerTool pairs a tool definition with its handler. Arguments are checked
// against the tool's input schema before the handler runs; a violation is
// reported to the caller as a tool error.
func NewServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	schema, err := compileInputSchema(tool)
	if err != nil {
		panic(fmt.Sprintf("tool %s has an invalid input schema: %v", tool.Name, err))
	}
	return server.ServerTool{
		Tool:    tool,
		Handler: validating(schema, handler),
	}
}

func compileInputSchema(tool mcp.Tool) (*jsonschema.Schema, error) {
	var data []byte
	var err error
	switch {
	case tool.RawInputSchema != nil:
		data = tool.RawInputSchema
	case tool.InputSchema.Type == "":
		// Hand-built tools without a schema are not validated.
		return nil, nil
	default:
		data, err = json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, err
		}
	}
	compiler := jsonschema.NewCompiler()
	url := tool.Name + ".json"
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

func validating(schema *jsonschema.Schema, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	if schema == nil || next == nil {
		return next
	}
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		if err := schema.Validate(args); err != nil {
			return mcp.NewToolResultError("Validation Error: " + describe(err)), nil
		}
		return next(ctx, req)
	}
}

// describe flattens a schema validation error into "location: message" lines.
func describe(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "arguments"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}

// NewToolset creates a new, disabled Toolset instance.
func NewToolset(name string, description string) *Toolset {
	return &Toolset{
		Name:        name,
		Description: description,
		writeTools:  make([]server.ServerTool, 0),
		readTools:   make([]server.ServerTool, 0),
	}
}

func isReadOnly(tool mcp.Tool) bool {
	hint := tool.Annotations.ReadOnlyHint
	return hint != nil && *hint
}

// AddReadTools adds tools that only read from Jira.
// Every tool must carry the read-only annotation.
func (t *Toolset) AddReadTools(tools ...server.ServerTool) *Toolset {
	for _, tool := range tools {
		if !isReadOnly(tool.Tool) {
			panic(fmt.Sprintf("tool %s is added as read tool but lacks the read-only hint", tool.Tool.Name))
		}
	}
	t.readTools = append(t.readTools, tools...)
	return t
}

// AddWriteTools adds tools that modify Jira or local state.
// If the Toolset is read-only these are never registered.
func (t *Toolset) AddWriteTools(tools ...server.ServerTool) *Toolset {
	for _, tool := range tools {
		if isReadOnly(tool.Tool) {
			panic(fmt.Sprintf("tool %s is added as write tool but has the read-only hint", tool.Tool.Name))
		}
	}
	t.writeTools = append(t.writeTools, tools...)
	return t
}

// GetActiveTools returns the tools that should be registered based on the
// Toolset's Enabled and readOnly flags.
func (t *Toolset) GetActiveTools() []server.ServerTool {
	if !t.Enabled {
		return nil
	}
	if t.readOnly {
		active := make([]server.ServerTool, len(t.readTools))
		copy(active, t.readTools)
		return active
	}
	return t.Tools()
}

// RegisterTools adds the Toolset's active tools to the provided MCP server instance.
func (t *Toolset) RegisterTools(s *server.MCPServer) {
	active := t.GetActiveTools()
	if len(active) == 0 {
		return
	}
	s.AddTools(active...)
}

// SetReadOnly forces the toolset into read-only mode.
func (t *Toolset) SetReadOnly() {
	t.readOnly = true
}

// IsReadOnly reports whether only read tools are exposed.
func (t *Toolset) IsReadOnly() bool {
	return t.readOnly
}

// GetDescription returns the toolset's description.
func (t *Toolset) GetDescription() string {
	return t.Description
}

// Tools returns all tools (both read and write) in the toolset.
func (t *Toolset) Tools() []server.ServerTool {
	all := make([]server.ServerTool, 0, len(t.readTools)+len(t.writeTools))
	all = append(all, t.readTools...)
	all = append(all, t.writeTools...)
	return all
}

// IsEnabled returns whether the toolset is currently enabled.
func (t *Toolset) IsEnabled() bool {
	return t.Enabled
}

// Enable enables the toolset.
func (t *Toolset) Enable() {
	t.Enabled = true
}

// Disable disables the toolset.
func (t *Toolset) Disable() {
	t.Enabled = false
}

// NewToolsetGroup creates a new manager for multiple Toolsets.
// The readOnly flag applies globally to all toolsets added subsequently.
func NewToolsetGroup(readOnly bool) *ToolsetGroup {
	return &ToolsetGroup{
		Toolsets: make(map[string]*Toolset),
		readOnly: readOnly,
	}
}

// AddToolset adds a pre-configured Toolset to the group.
func (tg *ToolsetGroup) AddToolset(ts *Toolset) {
	tg.mu.Lock()
	defer tg.mu.Unlock()

	if tg.readOnly {
		ts.SetReadOnly()
	}
	tg.Toolsets[ts.Name] = ts
}

// EnableToolset enables a single toolset by name.
// Returns an error if the toolset is not found or is already enabled.
func (tg *ToolsetGroup) EnableToolset(name string) error {
	tg.mu.Lock()
	defer tg.mu.Unlock()
	return tg.enableLocked(name)
}

func (tg *ToolsetGroup) enableLocked(name string) error {
	ts, ok := tg.Toolsets[name]
	if !ok {
		return fmt.Errorf("toolset '%s' not found", name)
	}
	if ts.IsEnabled() {
		return fmt.Errorf("toolset '%s' already enabled", name)
	}
	ts.Enable()
	return nil
}

// EnableToolsets enables multiple toolsets based on a list of names.
// The special name "all" enables every known toolset.
func (tg *ToolsetGroup) EnableToolsets(names []string) error {
	if len(names) == 0 {
		return errors.New("no toolsets specified to enable")
	}

	tg.mu.Lock()
	defer tg.mu.Unlock()

	for _, name := range names {
		if name == "all" {
			tg.everythingOn = true
			for _, ts := range tg.Toolsets {
				ts.Enable()
			}
			return nil
		}
	}

	tg.everythingOn = false
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := tg.enableLocked(name); err != nil {
			return err
		}
	}
	return nil
}

// IsEverythingOn reports whether "all" was requested.
func (tg *ToolsetGroup) IsEverythingOn() bool {
	tg.mu.RLock()
	defer tg.mu.RUnlock()
	return tg.everythingOn
}

// Names returns the toolset names in sorted order.
func (tg *ToolsetGroup) Names() []string {
	tg.mu.RLock()
	defer tg.mu.RUnlock()
	return tg.sortedNamesLocked()
}

func (tg *ToolsetGroup) sortedNamesLocked() []string {
	names := make([]string, 0, len(tg.Toolsets))
	for name := range tg.Toolsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterTools registers the active tools of every enabled toolset, in name order.
func (tg *ToolsetGroup) RegisterTools(s *server.MCPServer) {
	tg.mu.RLock()
	defer tg.mu.RUnlock()

	for _, name := range tg.sortedNamesLocked() {
		if ts := tg.Toolsets[name]; ts.Enabled {
			ts.RegisterTools(s)
		}
	}
}

// RegisterToolset registers the active tools of a single enabled toolset.
func (tg *ToolsetGroup) RegisterToolset(s *server.MCPServer, name string) error {
	tg.mu.RLock()
	defer tg.mu.RUnlock()

	ts, ok := tg.Toolsets[name]
	if !ok {
		return fmt.Errorf("toolset '%s' not found", name)
	}
	if !ts.Enabled {
		return fmt.Errorf("toolset '%s' is not enabled", name)
	}
	ts.RegisterTools(s)
	return nil
}

// ListToolsets returns information about all available toolsets, sorted by name.
func (tg *ToolsetGroup) ListToolsets() []ToolsetInfo {
	tg.mu.RLock()
	defer tg.mu.RUnlock()

	infos := make([]ToolsetInfo, 0, len(tg.Toolsets))
	for _, name := range tg.sortedNamesLocked() {
		ts := tg.Toolsets[name]
		infos = append(infos, ToolsetInfo{
			Name:        name,
			Description: ts.GetDescription(),
			Enabled:     ts.IsEnabled(),
			ToolCount:   len(ts.GetActiveToolsIgnoringEnabled()),
		})
	}
	return infos
}

// GetActiveToolsIgnoringEnabled returns the tools the toolset would expose once
// enabled, honouring read-only mode.
func (t *Toolset) GetActiveToolsIgnoringEnabled() []server.ServerTool {
	if t.readOnly {
		return t.readTools
	}
	return t.Tools()
}
