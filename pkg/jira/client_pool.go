package jira

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/InkyQuill/jira-mcp-server/pkg/credentials"
)

// DefaultServerName is used for the server configured through JIRA_HOST when
// no explicit name is given.
const DefaultServerName = "default"

// ClientPool manages one Jira client per configured server.
type ClientPool struct {
	clients map[string]Client // key: server name
	store   *ServerStore
	factory ClientFactory
	logger  *log.Logger
	mu      sync.RWMutex
}

// NewClientPool creates a pool. A nil factory means NewClient.
func NewClientPool(store *ServerStore, factory ClientFactory, logger *log.Logger) *ClientPool {
	if factory == nil {
		factory = NewClient
	}
	return &ClientPool{
		clients: make(map[string]Client),
		store:   store,
		factory: factory,
		logger:  logger,
	}
}

// Store returns the server store backing the pool.
func (cp *ClientPool) Store() *ServerStore {
	return cp.store
}

// AddClient adds a client to the pool under name.
func (cp *ClientPool) AddClient(name string, client Client) error {
	if name == "" {
		return fmt.Errorf("client name cannot be empty")
	}
	if client == nil {
		return fmt.Errorf("client cannot be nil")
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()

	cp.clients[name] = client
	cp.logger.WithFields(log.Fields{"server": name, "host": client.BaseURL()}).Info("Added Jira client to pool")
	return nil
}

// GetClient retrieves a client by name.
func (cp *ClientPool) GetClient(name string) (Client, error) {
	cp.mu.RLock()
	defer cp.mu.RUnlock()

	client, ok := cp.clients[name]
	if !ok {
		return nil, fmt.Errorf("client '%s' not found in pool", name)
	}
	return client, nil
}

// GetDefaultClient returns the "default" client, or the first by name.
func (cp *ClientPool) GetDefaultClient() (Client, string, error) {
	cp.mu.RLock()
	defer cp.mu.RUnlock()

	if client, ok := cp.clients[DefaultServerName]; ok {
		return client, DefaultServerName, nil
	}
	names := cp.sortedNamesLocked()
	if len(names) == 0 {
		return nil, "", fmt.Errorf("no Jira clients available in pool")
	}
	return cp.clients[names[0]], names[0], nil
}

// FindByHost returns the client whose base URL matches host.
func (cp *ClientPool) FindByHost(host string) (Client, string, bool) {
	want, err := NormalizeBaseURL(host)
	if err != nil {
		return nil, "", false
	}

	cp.mu.RLock()
	defer cp.mu.RUnlock()

	for _, name := range cp.sortedNamesLocked() {
		client := cp.clients[name]
		if strings.EqualFold(client.BaseURL(), want) {
			return client, name, true
		}
	}
	return nil, "", false
}

// ListClients returns the client names in sorted order.
func (cp *ClientPool) ListClients() []string {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	return cp.sortedNamesLocked()
}

func (cp *ClientPool) sortedNamesLocked() []string {
	names := make([]string, 0, len(cp.clients))
	for name := range cp.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemoveClient removes a client from the pool.
func (cp *ClientPool) RemoveClient(name string) error {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if _, ok := cp.clients[name]; !ok {
		return fmt.Errorf("client '%s' not found in pool", name)
	}
	delete(cp.clients, name)
	cp.logger.WithField("server", name).Info("Removed Jira client from pool")
	return nil
}

// NewClient builds a client with the pool's factory without registering it.
func (cp *ClientPool) NewClient(md *ServerMetadata) (Client, error) {
	client, err := cp.factory(md.ConnectionConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client for '%s': %w", md.Name, err)
	}
	return client, nil
}

// Register stores md and adds client under md.Name, replacing any previous entry.
func (cp *ClientPool) Register(md *ServerMetadata, client Client) error {
	if err := cp.store.AddServer(md.Name, md); err != nil {
		return err
	}
	return cp.AddClient(md.Name, client)
}

// Connect builds a client for md and registers both.
func (cp *ClientPool) Connect(md *ServerMetadata) (Client, error) {
	client, err := cp.NewClient(md)
	if err != nil {
		return nil, err
	}
	if err := cp.Register(md, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Disconnect removes the named server from both the pool and the store.
func (cp *ClientPool) Disconnect(name string) error {
	if err := cp.RemoveClient(name); err != nil {
		return err
	}
	if err := cp.store.RemoveServer(name); err != nil {
		cp.logger.WithField("server", name).Debugf("Server had no stored metadata: %v", err)
	}
	return nil
}

// InitializeFromConfig registers the server configured at startup
// (flags, environment or keyring). An empty name becomes "default".
func (cp *ClientPool) InitializeFromConfig(name string, cfg ConnectionConfig) (Client, string, error) {
	if name == "" {
		name = DefaultServerName
	}
	baseURL, err := NormalizeBaseURL(cfg.Host)
	if err != nil {
		return nil, "", err
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = credentials.AuthBasic
	}

	client, err := cp.Connect(&ServerMetadata{
		Name:     name,
		Host:     baseURL,
		Email:    cfg.Email,
		AuthType: scheme,
		Token:    cfg.Token,
	})
	if err != nil {
		return nil, "", err
	}
	cp.logger.WithFields(log.Fields{"server": name, "host": baseURL}).Info("Initialized Jira client from configuration")
	return client, name, nil
}

// ClientForServer returns the pooled client for name, building one from the
// store when the pool has none yet.
func (cp *ClientPool) ClientForServer(name string) (Client, error) {
	if client, err := cp.GetClient(name); err == nil {
		return client, nil
	}
	md, err := cp.store.GetServer(name)
	if err != nil {
		return nil, err
	}
	return cp.NewClient(md)
}
