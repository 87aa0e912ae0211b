package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/InkyQuill/jira-mcp-server/pkg/credentials"
)

// ServerMetadata describes one configured Jira server. The token never leaves
// its enclave and is not serialized.
type ServerMetadata struct {
	Name          string                 `json:"name"`
	Host          string                 `json:"host"`
	Email         string                 `json:"email,omitempty"`
	AuthType      credentials.AuthScheme `json:"authType"`
	Token         *credentials.Secret    `json:"-"`
	AccountID     string                 `json:"accountId,omitempty"`
	DisplayName   string                 `json:"displayName,omitempty"`
	AddedAt       time.Time              `json:"addedAt"`
	LastValidated time.Time              `json:"lastValidated,omitempty"`
	IsInvalid     bool                   `json:"isInvalid"`
}

// ConnectionConfig returns the settings needed to build a client for this server.
func (m *ServerMetadata) ConnectionConfig() ConnectionConfig {
	return ConnectionConfig{Host: m.Host, Email: m.Email, Token: m.Token, Scheme: m.AuthType}
}

// ValidationResult is the outcome of checking one server's credentials.
type ValidationResult struct {
	ServerName  string `json:"serverName"`
	Host        string `json:"host,omitempty"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	IsInvalid   bool   `json:"isInvalid"`
	AccountID   string `json:"accountId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// ErrUnauthorized is returned by ValidateServer when Jira rejects the token.
var ErrUnauthorized = errors.New("token rejected by Jira (401)")

// ServerStore keeps the runtime set of configured Jira servers.
type ServerStore struct {
	servers map[string]*ServerMetadata
	mu      sync.RWMutex
	now     func() time.Time
}

// NewServerStore creates an empty store.
func NewServerStore() *ServerStore {
	return &ServerStore{
		servers: make(map[string]*ServerMetadata),
		now:     time.Now,
	}
}

// AddServer adds or replaces a server entry.
func (s *ServerStore) AddServer(name string, md *ServerMetadata) error {
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	if md == nil {
		return fmt.Errorf("server metadata cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	md.Name = name
	if md.AddedAt.IsZero() {
		md.AddedAt = s.now()
	}
	s.servers[name] = md
	return nil
}

// GetServer returns a copy of the named entry.
func (s *ServerStore) GetServer(name string) (*ServerMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	md, ok := s.servers[name]
	if !ok {
		return nil, fmt.Errorf("server '%s' not found", name)
	}
	cp := *md
	return &cp, nil
}

// ListServers returns copies of all entries sorted by name.
func (s *ServerStore) ListServers() []*ServerMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ServerMetadata, 0, len(s.servers))
	for _, md := range s.servers {
		cp := *md
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RemoveServer deletes the named entry.
func (s *ServerStore) RemoveServer(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.servers[name]; !ok {
		return fmt.Errorf("server '%s' not found", name)
	}
	delete(s.servers, name)
	return nil
}

// ValidateServer calls /myself with client and records the result on the
// named entry. A 401 marks the server invalid and returns ErrUnauthorized.
func (s *ServerStore) ValidateServer(ctx context.Context, name string, client Client) (*ServerMetadata, error) {
	user, resp, err := client.Myself(ctx)
	if err != nil {
		if statusCode(resp) == http.StatusUnauthorized {
			s.markInvalid(name)
			return nil, fmt.Errorf("server '%s': %w", name, ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to validate server '%s': %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	md, ok := s.servers[name]
	if !ok {
		md = &ServerMetadata{Name: name, Host: client.BaseURL(), AddedAt: s.now()}
		s.servers[name] = md
	}
	md.AccountID = user.AccountID
	if md.AccountID == "" {
		// Server and Data Center identify users by name.
		md.AccountID = user.Name
	}
	md.DisplayName = user.DisplayName
	md.LastValidated = s.now()
	md.IsInvalid = false

	cp := *md
	return &cp, nil
}

func (s *ServerStore) markInvalid(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if md, ok := s.servers[name]; ok {
		md.IsInvalid = true
	}
}

// ValidateAll validates every stored server. getClient builds the client for a
// server name; a failure there is reported in the result like any other.
func (s *ServerStore) ValidateAll(ctx context.Context, getClient func(name string) (Client, error)) []ValidationResult {
	servers := s.ListServers()
	results := make([]ValidationResult, 0, len(servers))

	for _, srv := range servers {
		result := ValidationResult{ServerName: srv.Name, Host: srv.Host}

		client, err := getClient(srv.Name)
		if err != nil {
			result.Error = fmt.Sprintf("failed to get client: %v", err)
			results = append(results, result)
			continue
		}

		md, err := s.ValidateServer(ctx, srv.Name, client)
		if err != nil {
			result.Error = err.Error()
			result.IsInvalid = errors.Is(err, ErrUnauthorized)
		} else {
			result.Success = true
			result.AccountID = md.AccountID
			result.DisplayName = md.DisplayName
		}
		results = append(results, result)
	}
	return results
}
