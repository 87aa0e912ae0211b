package jira

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// ClientResolver picks the Jira client for a request:
//  1. serverName from .jiramcprc
//  2. a pooled client whose host matches jiraHost from .jiramcprc
//  3. the configured default server
//  4. any pooled client
type ClientResolver struct {
	pool          *ClientPool
	defaultServer string
	logger        *log.Logger
	findConfig    func() (*ProjectConfig, string, error)
}

// NewClientResolver creates a new client resolver.
func NewClientResolver(pool *ClientPool, defaultServer string, logger *log.Logger) *ClientResolver {
	return &ClientResolver{
		pool:          pool,
		defaultServer: defaultServer,
		logger:        logger,
		findConfig:    FindProjectConfig,
	}
}

// Resolve returns the client to use and the server name it is registered under.
func (cr *ClientResolver) Resolve(ctx context.Context) (Client, string, error) {
	config, configPath, err := cr.findConfig()
	if err != nil {
		cr.logger.Warnf("Ignoring unreadable project config: %v", err)
	}

	if config != nil {
		cr.logger.WithField("path", configPath).Debug("Using project config")

		if config.ServerName != "" {
			client, err := cr.pool.GetClient(config.ServerName)
			if err == nil {
				return client, config.ServerName, nil
			}
			cr.logger.Warnf("Server '%s' from %s is not configured, falling back", config.ServerName, ConfigFileName)
		}

		if config.JiraHost != "" {
			if client, name, ok := cr.pool.FindByHost(config.JiraHost); ok {
				return client, name, nil
			}
			cr.logger.Warnf("No server matches host %s, falling back", config.JiraHost)
		}
	}

	if cr.defaultServer != "" {
		client, err := cr.pool.GetClient(cr.defaultServer)
		if err == nil {
			return client, cr.defaultServer, nil
		}
		cr.logger.Warnf("Default server '%s' not found, using first available", cr.defaultServer)
	}

	return cr.pool.GetDefaultClient()
}

// GetClientFn returns a GetClientFn backed by Resolve.
func (cr *ClientResolver) GetClientFn() GetClientFn {
	return func(ctx context.Context) (Client, error) {
		client, name, err := cr.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		cr.logger.WithField("server", name).Debug("Resolved Jira client for request")
		return client, nil
	}
}
