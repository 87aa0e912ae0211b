// Package credentials keeps Jira API tokens out of plain memory and config files.
package credentials

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/zalando/go-keyring"
)

// ServiceName is the keyring service under which tokens are stored.
const ServiceName = "jira-mcp-server"

// ErrNotFound is returned when no token is stored for a host.
var ErrNotFound = errors.New("no stored token for host")

// Keyring stores API tokens in the OS keyring, one entry per Jira host.
type Keyring struct {
	service string
}

// NewKeyring returns a Keyring using ServiceName.
func NewKeyring() *Keyring {
	return &Keyring{service: ServiceName}
}

// HostKey normalizes a Jira URL or host name to the form used as keyring user.
func HostKey(host string) string {
	h := strings.TrimSpace(strings.ToLower(host))
	h = strings.TrimPrefix(h, "https://")
	h = strings.TrimPrefix(h, "http://")
	return strings.TrimRight(h, "/")
}

// Save stores token for host, replacing any previous value.
func (k *Keyring) Save(host, token string) error {
	if HostKey(host) == "" {
		return errors.New("host cannot be empty")
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(k.service, HostKey(host), token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// Load returns the token stored for host, or ErrNotFound.
func (k *Keyring) Load(host string) (string, error) {
	token, err := keyring.Get(k.service, HostKey(host))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	return token, nil
}

// Delete removes the token stored for host. Deleting a missing entry is not an error.
func (k *Keyring) Delete(host string) error {
	err := keyring.Delete(k.service, HostKey(host))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// Secret is a token sealed in a memguard enclave. It is only decrypted for the
// duration of a Use call.
type Secret struct {
	enclave *memguard.Enclave
}

// NewSecret seals value. An empty value yields an empty Secret.
func NewSecret(value string) *Secret {
	if value == "" {
		return &Secret{}
	}
	return &Secret{enclave: memguard.NewEnclave([]byte(value))}
}

// Empty reports whether the secret holds no value.
func (s *Secret) Empty() bool {
	return s == nil || s.enclave == nil
}

// Use decrypts the secret, passes it to fn and destroys the plaintext afterwards.
// value aliases the locked buffer, which is unmapped when fn returns: fn must not
// retain it. Copy with strings.Clone if the value has to outlive the call.
func (s *Secret) Use(fn func(value string)) error {
	if s.Empty() {
		return errors.New("secret is empty")
	}
	buf, err := s.enclave.Open()
	if err != nil {
		return fmt.Errorf("failed to open secret: %w", err)
	}
	defer buf.Destroy()
	fn(buf.String())
	return nil
}

// Hint returns a short, non-sensitive representation like "abcd...wxyz".
func (s *Secret) Hint() string {
	hint := "(empty)"
	_ = s.Use(func(v string) {
		if len(v) <= 8 {
			hint = "****"
			return
		}
		hint = v[:4] + "..." + v[len(v)-4:]
	})
	return hint
}

// AuthScheme selects how credentials are attached to requests.
type AuthScheme string

const (
	// AuthBasic sends email and API token (Jira Cloud).
	AuthBasic AuthScheme = "basic"
	// AuthBearer sends a personal access token (Jira Server / Data Center).
	AuthBearer AuthScheme = "bearer"
)

// Transport is an http.RoundTripper that adds Jira credentials to each request.
type Transport struct {
	Scheme AuthScheme
	Email  string
	Token  *Secret
	Base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	err := t.Token.Use(func(token string) {
		switch t.Scheme {
		case AuthBearer:
			r.Header.Set("Authorization", "Bearer "+token)
		default:
			r.SetBasicAuth(t.Email, token)
		}
	})
	if err != nil {
		return nil, err
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}

// Client returns an *http.Client using the transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}
