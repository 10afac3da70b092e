// Package credential resolves the Claude OAuth access token from the
// environment, OS credential stores or the Claude Code credentials file.
package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/burnline/internal/config"

	"github.com/bytedance/sonic"
)

// ServiceName is the credential-store entry Claude Code writes.
const ServiceName = "Claude Code-credentials"

const lookupTimeout = 2 * time.Second

// ErrNoToken is returned when a provider has no token to offer.
var ErrNoToken = errors.New("credential: no oauth token")

// Provider yields an OAuth access token.
type Provider interface {
	Name() string
	Token(ctx context.Context) (string, error)
}

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Env reads the token from an environment variable.
type Env struct {
	Var    string
	Getenv func(string) string
}

func (e Env) Name() string { return "env:" + e.Var }

func (e Env) Token(_ context.Context) (string, error) {
	getenv := e.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if tok := strings.TrimSpace(getenv(e.Var)); tok != "" {
		return tok, nil
	}
	return "", ErrNoToken
}

// Keychain reads the token from the macOS login keychain via security(1).
type Keychain struct {
	Run Runner
}

func (Keychain) Name() string { return "keychain" }

func (k Keychain) Token(ctx context.Context) (string, error) {
	return runLookup(ctx, k.Run, "security", "find-generic-password", "-s", ServiceName, "-w")
}

// Keyring reads the token from the freedesktop secret service via secret-tool(1).
type Keyring struct {
	Run Runner
}

func (Keyring) Name() string { return "keyring" }

func (k Keyring) Token(ctx context.Context) (string, error) {
	return runLookup(ctx, k.Run, "secret-tool", "lookup", "service", ServiceName)
}

func runLookup(ctx context.Context, run Runner, name string, args ...string) (string, error) {
	if run == nil {
		run = ExecRunner
	}
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	out, err := run(ctx, name, args...)
	if err != nil {
		return "", fmt.Errorf("credential: %s: %w", name, err)
	}
	return ParseToken(out)
}

// File reads the Claude Code credentials file.
type File struct {
	Path string
}

// DefaultFile returns the ~/.claude/.credentials.json provider.
func DefaultFile() File {
	home, _ := os.UserHomeDir()
	return File{Path: filepath.Join(home, ".claude", ".credentials.json")}
}

func (f File) Name() string { return "file:" + f.Path }

func (f File) Token(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("credential: reading %s: %w", f.Path, err)
	}
	return ParseToken(data)
}

// Chain tries each provider in order and returns the first token found.
type Chain []Provider

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return strings.Join(names, ",")
}

func (c Chain) Token(ctx context.Context) (string, error) {
	var errs []error
	for _, p := range c {
		tok, err := p.Token(ctx)
		if err == nil {
			return tok, nil
		}
		if !errors.Is(err, ErrNoToken) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(append([]error{ErrNoToken}, errs...)...)
	}
	return "", ErrNoToken
}

// ForPlatform builds the provider chain for an operating system. The env
// override always wins.
func ForPlatform(goos string) Chain {
	chain := Chain{Env{Var: config.EnvOAuthToken}}
	switch goos {
	case "darwin":
		chain = append(chain, Keychain{})
	case "linux":
		chain = append(chain, Keyring{})
	}
	return append(chain, DefaultFile())
}

type credentialsFile struct {
	AccessToken   string `json:"accessToken"`
	ClaudeAIOAuth *struct {
		AccessToken string `json:"accessToken"`
	} `json:"claudeAiOauth"`
}

// ParseToken extracts an access token from a credential payload: either a
// JSON document with accessToken / claudeAiOauth.accessToken, or a bare token.
func ParseToken(raw []byte) (string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "", ErrNoToken
	}
	if !strings.HasPrefix(s, "{") {
		return s, nil
	}

	var creds credentialsFile
	if err := sonic.UnmarshalString(s, &creds); err != nil {
		return "", fmt.Errorf("credential: parsing credentials: %w", err)
	}
	if creds.ClaudeAIOAuth != nil && creds.ClaudeAIOAuth.AccessToken != "" {
		return creds.ClaudeAIOAuth.AccessToken, nil
	}
	if creds.AccessToken != "" {
		return creds.AccessToken, nil
	}
	return "", ErrNoToken
}
