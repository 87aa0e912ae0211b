// Package fieldmap translates between Jira field display names and field ids.
//
// A Mapper fetches the field catalog of a Jira instance once, on first use, and
// answers name/id lookups and custom field checks from that snapshot until it is
// refreshed. Tools use it so callers can write {"Story Points": 5} instead of
// {"customfield_10001": 5}.
package fieldmap

import (
	"context"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Schema mirrors the schema block Jira returns for every field.
type Schema struct {
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Items    string `json:"items,omitempty" yaml:"items,omitempty"`
	Custom   string `json:"custom,omitempty" yaml:"custom,omitempty"`
	System   string `json:"system,omitempty" yaml:"system,omitempty"`
	CustomID int64  `json:"customId,omitempty" yaml:"customId,omitempty"`
}

// Field describes one Jira field.
type Field struct {
	ID          string   `json:"id" yaml:"id"`
	Key         string   `json:"key,omitempty" yaml:"key,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Custom      bool     `json:"custom" yaml:"custom"`
	Navigable   bool     `json:"navigable,omitempty" yaml:"navigable,omitempty"`
	Searchable  bool     `json:"searchable,omitempty" yaml:"searchable,omitempty"`
	ClauseNames []string `json:"clauseNames,omitempty" yaml:"clauseNames,omitempty"`
	Schema      Schema   `json:"schema" yaml:"schema"`
}

func (f Field) clone() Field {
	if f.ClauseNames != nil {
		f.ClauseNames = append([]string(nil), f.ClauseNames...)
	}
	return f
}

// Source supplies the complete field catalog of a Jira instance.
type Source interface {
	FetchFields(ctx context.Context) ([]Field, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Field, error)

// FetchFields calls f(ctx).
func (f SourceFunc) FetchFields(ctx context.Context) ([]Field, error) {
	return f(ctx)
}

// Kind classifies a field id.
type Kind int

const (
	// KindUnknown means the id is not part of the cached catalog.
	KindUnknown Kind = iota
	// KindSystem is a built-in Jira field such as summary or status.
	KindSystem
	// KindCustom is a field created by instance administrators.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "system"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

type state int

const (
	stateUninitialized state = iota
	stateReady
)

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger used for cache rebuild and name collision messages.
func WithLogger(logger log.FieldLogger) Option {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Mapper caches the field catalog of one Jira instance.
//
// The zero value is not usable; create one with New. All lookups lazily fetch
// the catalog on first use. A failed fetch is returned unchanged and leaves the
// mapper uninitialized, so the next call fetches again.
type Mapper struct {
	src    Source
	logger log.FieldLogger

	mu    sync.Mutex
	state state

	exactNames map[string]string // display name -> id
	foldNames  map[string]string // lower-cased display name -> id
	names      map[string]string // id -> display name
	fields     map[string]Field  // id -> descriptor
	order      []string          // ids in catalog order
	customIDs  []string          // custom ids in catalog order
	custom     map[string]struct{}
}

// New returns a Mapper backed by src. No request is made until the first lookup.
func New(src Source, opts ...Option) *Mapper {
	m := &Mapper{
		src:    src,
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize fetches the catalog if it has not been loaded yet.
// Calling it on a ready mapper is a no-op.
func (m *Mapper) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureReady(ctx)
}

// Refresh discards the cached catalog and fetches it again.
func (m *Mapper) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return m.ensureReady(ctx)
}

// ensureReady must be called with m.mu held.
func (m *Mapper) ensureReady(ctx context.Context) error {
	if m.state == stateReady {
		return nil
	}
	fields, err := m.src.FetchFields(ctx)
	if err != nil {
		return err
	}
	m.build(fields)
	m.state = stateReady
	return nil
}

func (m *Mapper) reset() {
	m.state = stateUninitialized
	m.exactNames = nil
	m.foldNames = nil
	m.names = nil
	m.fields = nil
	m.order = nil
	m.customIDs = nil
	m.custom = nil
}

func (m *Mapper) build(fields []Field) {
	m.exactNames = make(map[string]string, len(fields))
	m.foldNames = make(map[string]string, len(fields))
	m.names = make(map[string]string, len(fields))
	m.fields = make(map[string]Field, len(fields))
	m.order = make([]string, 0, len(fields))
	m.customIDs = nil
	m.custom = make(map[string]struct{})

	for _, f := range fields {
		if _, seen := m.fields[f.ID]; !seen {
			m.order = append(m.order, f.ID)
		}
		m.fields[f.ID] = f.clone()
		m.names[f.ID] = f.Name

		folded := strings.ToLower(f.Name)
		if prev, ok := m.foldNames[folded]; ok && prev != f.ID {
			m.logger.WithFields(log.Fields{
				"name":     f.Name,
				"previous": prev,
				"id":       f.ID,
			}).Debug("field name collision, keeping the later field")
		}
		m.exactNames[f.Name] = f.ID
		m.foldNames[folded] = f.ID

		if f.Custom {
			if _, ok := m.custom[f.ID]; !ok {
				m.customIDs = append(m.customIDs, f.ID)
			}
			m.custom[f.ID] = struct{}{}
		}
	}

	m.logger.WithFields(log.Fields{
		"fields": len(m.fields),
		"custom": len(m.customIDs),
	}).Debug("field cache built")
}

func (m *Mapper) lookupID(name string) (string, bool) {
	if id, ok := m.exactNames[name]; ok {
		return id, true
	}
	id, ok := m.foldNames[strings.ToLower(name)]
	return id, ok
}

// GetID resolves a display name to a field id. The exact spelling is tried
// before a case-insensitive match. ok is false when nothing matches.
func (m *Mapper) GetID(ctx context.Context, name string) (id string, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return "", false, err
	}
	id, ok = m.lookupID(name)
	return id, ok, nil
}

// GetName resolves a field id to its display name.
func (m *Mapper) GetName(ctx context.Context, id string) (name string, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return "", false, err
	}
	name, ok = m.names[id]
	return name, ok, nil
}

// GetField returns a copy of the cached descriptor for id.
func (m *Mapper) GetField(ctx context.Context, id string) (Field, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return Field{}, false, err
	}
	f, ok := m.fields[id]
	if !ok {
		return Field{}, false, nil
	}
	return f.clone(), true, nil
}

// IsCustomField reports whether id is a known custom field. Unknown ids report false;
// use Classify to tell unknown ids apart from system fields.
func (m *Mapper) IsCustomField(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return false, err
	}
	_, ok := m.custom[id]
	return ok, nil
}

// Classify reports whether id is a custom field, a system field, or not known at all.
func (m *Mapper) Classify(ctx context.Context, id string) (Kind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return KindUnknown, err
	}
	if _, ok := m.fields[id]; !ok {
		return KindUnknown, nil
	}
	if _, ok := m.custom[id]; ok {
		return KindCustom, nil
	}
	return KindSystem, nil
}

// GetCustomFields returns the custom fields in the order the catalog listed them.
func (m *Mapper) GetCustomFields(ctx context.Context) ([]Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return nil, err
	}
	out := make([]Field, 0, len(m.customIDs))
	for _, id := range m.customIDs {
		out = append(out, m.fields[id].clone())
	}
	return out, nil
}

// GetAllFields returns a copy of the whole catalog in catalog order.
func (m *Mapper) GetAllFields(ctx context.Context) ([]Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return nil, err
	}
	out := make([]Field, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.fields[id].clone())
	}
	return out, nil
}

// TranslateFields rewrites the keys of in from display names to field ids.
//
// A key that already is a known id is kept. Otherwise a key that resolves as a
// name is replaced by its id. Anything else, e.g. "assignee" on an instance that
// does not list it, is passed through. Values are never touched.
func (m *Mapper) TranslateFields(ctx context.Context, in map[string]any) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		if _, isID := m.fields[key]; isID {
			out[key] = value
			continue
		}
		if id, ok := m.lookupID(key); ok {
			out[id] = value
			continue
		}
		out[key] = value
	}
	return out, nil
}

// TranslateFieldNames rewrites known field ids in the keys of in to display names.
// Unknown keys pass through.
func (m *Mapper) TranslateFieldNames(ctx context.Context, in map[string]any) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		if name, ok := m.names[key]; ok {
			out[name] = value
			continue
		}
		out[key] = value
	}
	return out, nil
}

// Len returns the number of cached fields.
func (m *Mapper) Len(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return 0, err
	}
	return len(m.fields), nil
}

// Contains reports whether s is a field id, a display name as spelled, or the
// lower-cased form of a display name. Other casings do not match; use GetID
// for case-insensitive resolution.
func (m *Mapper) Contains(ctx context.Context, s string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureReady(ctx); err != nil {
		return false, err
	}
	if _, ok := m.fields[s]; ok {
		return true, nil
	}
	if _, ok := m.exactNames[s]; ok {
		return true, nil
	}
	_, ok := m.foldNames[s]
	return ok, nil
}
