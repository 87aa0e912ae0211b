package installer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	ServerName = "jira-mcp-server"
)

// Authentication types offered by the installer.
const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// PromptConfig holds the configuration collected from user prompts
type PromptConfig struct {
	Mode       string // "local" or "docker"
	JiraHost   string
	AuthType   string // AuthBasic (Cloud) or AuthBearer (Server / Data Center)
	Email      string
	Token      string
	ReadOnly   bool
	UseKeyring bool
}

// Prompter asks the installer questions on a line-oriented stream.
// ReadSecret reads a value without echoing it.
type Prompter struct {
	in         *bufio.Reader
	out        io.Writer
	ReadSecret func() (string, error)
}

// NewPrompter returns a Prompter for in and out. Secrets are read through
// term.ReadPassword when in is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out}
	p.ReadSecret = p.readLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.ReadSecret = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		}
	}
	return p
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	return p.readLine()
}

func (p *Prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// PromptUser collects the server configuration.
func (p *Prompter) PromptUser() (*PromptConfig, error) {
	config := &PromptConfig{}

	mode, err := p.ask("Select mode [local/docker] (default: local): ")
	if err != nil {
		return nil, err
	}
	switch mode {
	case "", "local":
		config.Mode = "local"
	case "docker":
		config.Mode = "docker"
	default:
		return nil, fmt.Errorf("invalid mode: %s. Must be 'local' or 'docker'", mode)
	}

	config.JiraHost, err = p.ask("Jira URL (e.g. https://example.atlassian.net): ")
	if err != nil {
		return nil, err
	}
	if config.JiraHost == "" {
		return nil, errors.New("jira URL cannot be empty")
	}

	auth, err := p.ask("Authentication [basic (Cloud: email + API token) / bearer (Server/Data Center PAT)] (default: basic): ")
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(auth) {
	case "", AuthBasic:
		config.AuthType = AuthBasic
		config.Email, err = p.ask("Account email: ")
		if err != nil {
			return nil, err
		}
		if config.Email == "" {
			return nil, errors.New("email is required for basic authentication")
		}
	case AuthBearer:
		config.AuthType = AuthBearer
	default:
		return nil, fmt.Errorf("invalid authentication type: %s. Must be 'basic' or 'bearer'", auth)
	}

	fmt.Fprint(p.out, "API token: ")
	token, err := p.ReadSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	config.Token = strings.TrimSpace(token)
	if config.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	// A container cannot reach the host keyring.
	if config.Mode == "local" {
		config.UseKeyring, err = p.confirm("Store the token in the OS keyring instead of the config file? (y/n, default: n): ")
		if err != nil {
			return nil, err
		}
	}

	config.ReadOnly, err = p.confirm("Enable read-only mode? (y/n, default: n): ")
	if err != nil {
		return nil, err
	}
	return config, nil
}

// PromptUser collects configuration from the user via interactive prompts
// on stdin/stdout.
func PromptUser() (*PromptConfig, error) {
	return NewPrompter(os.Stdin, os.Stdout).PromptUser()
}
