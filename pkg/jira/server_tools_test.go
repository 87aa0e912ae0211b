package jira

import (
	"context"
	"errors"
	"net/http"
	"testing"

	gj "github.com/andygrunwald/go-jira"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/InkyQuill/jira-mcp-server/internal/toolsnaps"
	"github.com/InkyQuill/jira-mcp-server/pkg/credentials"
)

type fakeTokenStore struct {
	saved map[string]string
	err   error
}

func (f *fakeTokenStore) Save(host, token string) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[host] = token
	return nil
}

// newTestPool returns a pool whose factory hands out client and records the
// configs it was asked for.
func newTestPool(t *testing.T, client Client) (*ClientPool, *[]ConnectionConfig) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	var configs []ConnectionConfig
	factory := func(cfg ConnectionConfig) (Client, error) {
		configs = append(configs, cfg)
		if client == nil {
			return nil, errors.New("no client")
		}
		return client, nil
	}
	return NewClientPool(NewServerStore(), factory, logger), &configs
}

func TestListServersHandler(t *testing.T) {
	tool, _ := ListServers(nil, tr)
	require.NoError(t, toolsnaps.Test(tool.Name, tool))

	t.Run("Empty", func(t *testing.T) {
		pool, _ := newTestPool(t, nil)
		_, handler := ListServers(pool, tr)

		result, err := handler(context.Background(), createMCPRequest(nil))
		require.NoError(t, err)
		out := decodeResult(t, result)
		assert.Equal(t, float64(0), out["count"])
		assert.Contains(t, out["message"], "No servers configured")
	})

	t.Run("Token is hinted", func(t *testing.T) {
		client, _ := newMockClient(t)
		pool, _ := newTestPool(t, client)
		require.NoError(t, pool.Register(&ServerMetadata{
			Name:     "work",
			Host:     testBaseURL,
			Email:    "dana@example.com",
			AuthType: credentials.AuthBasic,
			Token:    credentials.NewSecret("abcdefgh1234wxyz"),
		}, client))
		_, handler := ListServers(pool, tr)

		result, err := handler(context.Background(), createMCPRequest(nil))
		require.NoError(t, err)
		text := getTextResult(t, result)
		assert.NotContains(t, text, "abcdefgh1234wxyz")
		out := decodeResult(t, result)
		server := out["servers"].([]any)[0].(map[string]any)
		assert.Equal(t, "work", server["name"])
		assert.Equal(t, "abcd...wxyz", server["tokenHint"])
		assert.Equal(t, "basic", server["authType"])
	})
}

func TestAddServerHandler(t *testing.T) {
	ctx := context.Background()
	tool, _ := AddServer(nil, nil, nil, tr)
	require.NoError(t, toolsnaps.Test(tool.Name, tool))

	t.Run("Success - bearer token saved to keyring", func(t *testing.T) {
		client, _ := newMockClient(t)
		client.EXPECT().Myself(gomock.Any()).Return(&gj.User{Name: "dana", DisplayName: "Dana Lee"}, okResponse(), nil)
		pool, configs := newTestPool(t, client)
		notifier, _ := newTestNotifier()
		tokens := &fakeTokenStore{}
		_, handler := AddServer(pool, notifier, tokens, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{
			"name": "dc", "host": "jira.internal.example.com/", "bearerToken": "pat-123", "saveToKeyring": true,
		}))
		require.NoError(t, err)
		require.False(t, result.IsError, getTextResult(t, result))

		out := decodeResult(t, result)
		assert.Equal(t, "https://jira.internal.example.com", out["host"])
		assert.Equal(t, "dana", out["accountId"])
		assert.Equal(t, true, out["savedToKeyring"])
		assert.Equal(t, map[string]string{"https://jira.internal.example.com": "pat-123"}, tokens.saved)

		require.Len(t, *configs, 1)
		assert.Equal(t, credentials.AuthBearer, (*configs)[0].Scheme)

		md, err := pool.Store().GetServer("dc")
		require.NoError(t, err)
		assert.Equal(t, "Dana Lee", md.DisplayName)
		assert.False(t, md.LastValidated.IsZero())
		registered, err := pool.GetClient("dc")
		require.NoError(t, err)
		assert.Same(t, client, registered)

		notes := notifier.List()
		require.Len(t, notes, 1)
		assert.Equal(t, "Server Validated", notes[0].Title)
	})

	t.Run("Keyring failure is reported, not fatal", func(t *testing.T) {
		client, _ := newMockClient(t)
		client.EXPECT().Myself(gomock.Any()).Return(&gj.User{AccountID: "acc-1"}, okResponse(), nil)
		pool, _ := newTestPool(t, client)
		notifier, _ := newTestNotifier()
		_, handler := AddServer(pool, notifier, &fakeTokenStore{err: errors.New("no keyring")}, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{
			"name": "cloud", "host": "example.atlassian.net", "email": "dana@example.com", "apiToken": "tok", "saveToKeyring": true,
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Equal(t, "no keyring", decodeResult(t, result)["keyringError"])
	})

	t.Run("Rejected token is not registered", func(t *testing.T) {
		client, _ := newMockClient(t)
		client.EXPECT().Myself(gomock.Any()).Return(nil, response(http.StatusUnauthorized), errors.New("401"))
		pool, _ := newTestPool(t, client)
		notifier, _ := newTestNotifier()
		_, handler := AddServer(pool, notifier, &fakeTokenStore{}, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{
			"name": "cloud", "host": "example.atlassian.net", "email": "dana@example.com", "apiToken": "bad",
		}))
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, getTextResult(t, result), "Token validation failed for server 'cloud'")
		assert.Empty(t, pool.ListClients())
		assert.Empty(t, pool.Store().ListServers())
	})

	t.Run("Unreachable host", func(t *testing.T) {
		client, _ := newMockClient(t)
		client.EXPECT().Myself(gomock.Any()).Return(nil, nil, errors.New("dial tcp: no such host"))
		pool, _ := newTestPool(t, client)
		notifier, _ := newTestNotifier()
		_, handler := AddServer(pool, notifier, &fakeTokenStore{}, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{
			"name": "cloud", "host": "example.atlassian.net", "email": "dana@example.com", "apiToken": "tok",
		}))
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, getTextResult(t, result), "Failed to connect to server 'cloud'")
	})

	t.Run("Duplicate name", func(t *testing.T) {
		client, _ := newMockClient(t)
		pool, _ := newTestPool(t, client)
		require.NoError(t, pool.Register(&ServerMetadata{Name: "work", Host: testBaseURL}, client))
		notifier, _ := newTestNotifier()
		_, handler := AddServer(pool, notifier, &fakeTokenStore{}, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{"name": "work", "host": "x.atlassian.net", "apiToken": "t"}))
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, getTextResult(t, result), "already exists")
	})

	t.Run("Missing token", func(t *testing.T) {
		pool, _ := newTestPool(t, nil)
		notifier, _ := newTestNotifier()
		_, handler := AddServer(pool, notifier, &fakeTokenStore{}, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{"name": "work", "host": "x.atlassian.net"}))
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, getTextResult(t, result), "either apiToken or bearerToken is required")
	})
}

func TestUpdateServerTokenHandler(t *testing.T) {
	ctx := context.Background()
	tool, _ := UpdateServerToken(nil, nil, nil, tr)
	require.NoError(t, toolsnaps.Test(tool.Name, tool))

	t.Run("Success clears invalid flag", func(t *testing.T) {
		client, _ := newMockClient(t)
		client.EXPECT().Myself(gomock.Any()).Return(&gj.User{AccountID: "acc-1", DisplayName: "Dana"}, okResponse(), nil)
		pool, configs := newTestPool(t, client)
		require.NoError(t, pool.Register(&ServerMetadata{
			Name: "work", Host: testBaseURL, Email: "dana@example.com", AuthType: credentials.AuthBasic, IsInvalid: true,
		}, client))
		notifier, _ := newTestNotifier()
		tokens := &fakeTokenStore{}
		_, handler := UpdateServerToken(pool, notifier, tokens, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{"name": "work", "apiToken": "fresh", "saveToKeyring": true}))
		require.NoError(t, err)
		require.False(t, result.IsError, getTextResult(t, result))

		md, err := pool.Store().GetServer("work")
		require.NoError(t, err)
		assert.False(t, md.IsInvalid)
		assert.Equal(t, "acc-1", md.AccountID)
		assert.Equal(t, "dana@example.com", md.Email)
		assert.Equal(t, "fresh", tokens.saved[testBaseURL])
		require.Len(t, *configs, 1)
		assert.Equal(t, testBaseURL, (*configs)[0].Host)
	})

	t.Run("Unknown server", func(t *testing.T) {
		pool, _ := newTestPool(t, nil)
		notifier, _ := newTestNotifier()
		_, handler := UpdateServerToken(pool, notifier, &fakeTokenStore{}, tr)

		result, err := handler(ctx, createMCPRequest(map[string]any{"name": "nope", "apiToken": "x"}))
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, getTextResult(t, result), "Server 'nope' not found")
	})
}

func TestRemoveServerHandler(t *testing.T) {
	tool, _ := RemoveServer(nil, tr)
	require.NoError(t, toolsnaps.Test(tool.Name, tool))

	client, _ := newMockClient(t)
	pool, _ := newTestPool(t, client)
	require.NoError(t, pool.Register(&ServerMetadata{Name: "work", Host: testBaseURL}, client))
	_, handler := RemoveServer(pool, tr)

	result, err := handler(context.Background(), createMCPRequest(map[string]any{"name": "work"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Empty(t, pool.ListClients())

	result, err = handler(context.Background(), createMCPRequest(map[string]any{"name": "work"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestValidateServersHandler(t *testing.T) {
	tool, _ := ValidateServers(nil, nil, tr)
	require.NoError(t, toolsnaps.Test(tool.Name, tool))

	good, _ := newMockClient(t)
	good.EXPECT().Myself(gomock.Any()).Return(&gj.User{AccountID: "acc-1", DisplayName: "Dana"}, okResponse(), nil)
	bad, _ := newMockClient(t)
	bad.EXPECT().Myself(gomock.Any()).Return(nil, response(http.StatusUnauthorized), errors.New("401"))
	flaky, _ := newMockClient(t)
	flaky.EXPECT().Myself(gomock.Any()).Return(nil, response(http.StatusBadGateway), errors.New("502"))

	pool, _ := newTestPool(t, nil)
	require.NoError(t, pool.Register(&ServerMetadata{Name: "a-good", Host: testBaseURL}, good))
	require.NoError(t, pool.Register(&ServerMetadata{Name: "b-bad", Host: testBaseURL}, bad))
	require.NoError(t, pool.Register(&ServerMetadata{Name: "c-flaky", Host: testBaseURL}, flaky))
	notifier, _ := newTestNotifier()
	_, handler := ValidateServers(pool, notifier, tr)

	result, err := handler(context.Background(), createMCPRequest(nil))
	require.NoError(t, err)
	out := decodeResult(t, result)
	assert.Equal(t, float64(1), out["validCount"])
	assert.Equal(t, float64(2), out["invalidCount"])

	md, err := pool.Store().GetServer("b-bad")
	require.NoError(t, err)
	assert.True(t, md.IsInvalid)

	notes := notifier.List()
	require.Len(t, notes, 3)
	assert.Equal(t, "Server Validated", notes[0].Title)
	assert.Equal(t, "Token Invalid", notes[1].Title)
	assert.Equal(t, "Server Issue Detected", notes[2].Title)
}

func TestNotificationTools(t *testing.T) {
	getTool, _ := GetNotifications(nil, tr)
	require.NoError(t, toolsnaps.Test(getTool.Name, getTool))
	clearTool, _ := ClearNotifications(nil, tr)
	require.NoError(t, toolsnaps.Test(clearTool.Name, clearTool))

	notifier, _ := newTestNotifier()
	notifier.tokenInvalid("work")
	_, getHandler := GetNotifications(notifier, tr)
	_, clearHandler := ClearNotifications(notifier, tr)

	result, err := getHandler(context.Background(), createMCPRequest(nil))
	require.NoError(t, err)
	out := decodeResult(t, result)
	assert.Equal(t, float64(1), out["count"])
	first := out["notifications"].([]any)[0].(map[string]any)
	assert.Equal(t, "ERROR", first["level"])
	assert.Equal(t, "work", first["serverName"])

	result, err = clearHandler(context.Background(), createMCPRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, float64(1), decodeResult(t, result)["cleared"])
	assert.Empty(t, notifier.List())
}
