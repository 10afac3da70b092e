package credential

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`{"claudeAiOauth":{"accessToken":"sk-ant-oat01-nested","refreshToken":"r"}}`, "sk-ant-oat01-nested"},
		{`{"accessToken":"sk-ant-oat01-flat"}`, "sk-ant-oat01-flat"},
		{"  sk-ant-oat01-raw\n", "sk-ant-oat01-raw"},
	}
	for _, tc := range cases {
		got, err := ParseToken([]byte(tc.in))
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}

	_, err := ParseToken([]byte(`{"claudeAiOauth":{}}`))
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = ParseToken(nil)
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = ParseToken([]byte(`{broken`))
	assert.Error(t, err)
}

func TestEnv(t *testing.T) {
	p := Env{Var: "TOK", Getenv: func(string) string { return " abc " }}
	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	p.Getenv = func(string) string { return "" }
	_, err = p.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestKeychainAndKeyringInvokeTools(t *testing.T) {
	var calls [][]string
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, append([]string{name}, args...))
		return []byte(`{"claudeAiOauth":{"accessToken":"tok"}}`), nil
	}

	tok, err := Keychain{Run: run}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	tok, err = Keyring{Run: run}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	require.Len(t, calls, 2)
	assert.Equal(t, []string{"security", "find-generic-password", "-s", ServiceName, "-w"}, calls[0])
	assert.Equal(t, []string{"secret-tool", "lookup", "service", ServiceName}, calls[1])
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".credentials.json")
	_, err := File{Path: path}.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, os.WriteFile(path, []byte(`{"claudeAiOauth":{"accessToken":"from-file"}}`), 0o600))
	tok, err := File{Path: path}.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-file", tok)
}

func TestChain_FirstTokenWins(t *testing.T) {
	failing := Keyring{Run: func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("secret-tool: not found")
	}}
	chain := Chain{
		Env{Var: "X", Getenv: func(string) string { return "" }},
		failing,
		Env{Var: "Y", Getenv: func(string) string { return "fallback" }},
	}
	tok, err := chain.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback", tok)

	_, err = chain[:2].Token(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestForPlatform(t *testing.T) {
	darwin := ForPlatform("darwin")
	require.Len(t, darwin, 3)
	assert.IsType(t, Keychain{}, darwin[1])

	linux := ForPlatform("linux")
	require.Len(t, linux, 3)
	assert.IsType(t, Keyring{}, linux[1])

	other := ForPlatform("plan9")
	require.Len(t, other, 2)
	assert.IsType(t, Env{}, other[0])
}
