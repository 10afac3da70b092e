// Package model defines domain types for burnline snapshots, sources and sessions.
package model

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// ErrMalformedSnapshot is returned when stdin is not a JSON object. The
// returned Snapshot is still usable: every field reports as missing.
var ErrMalformedSnapshot = errors.New("model: malformed snapshot")

// DefaultWindowSize is assumed when the snapshot carries no window size.
const DefaultWindowSize = 200_000

// TokenUsage is the token breakdown of the most recent request.
type TokenUsage struct {
	Input         int64
	Output        int64
	CacheCreation int64
	CacheRead     int64
}

// Total returns the sum of all four token categories.
func (u TokenUsage) Total() int64 {
	return u.Input + u.Output + u.CacheCreation + u.CacheRead
}

// Snapshot is the per-invocation state Claude Code pipes on stdin.
// Each field is independently optional; Has* reports presence.
type Snapshot struct {
	SessionID string
	ModelID   string
	ModelName string
	Project   string

	WindowSize int64
	Usage      TokenUsage
	HasUsage   bool

	CostUSD  float64
	HasCost  bool
	Duration int64 // milliseconds
	HasDur   bool

	TotalInputTokens  int64
	TotalOutputTokens int64
}

// HasModel reports whether any model identification was present.
func (s Snapshot) HasModel() bool {
	return s.ModelID != "" || s.ModelName != ""
}

// Window returns the context window size, defaulting to 200k.
func (s Snapshot) Window() int64 {
	if s.WindowSize > 0 {
		return s.WindowSize
	}
	return DefaultWindowSize
}

type rawSnapshot struct {
	SessionID     json.RawMessage `json:"session_id"`
	Model         json.RawMessage `json:"model"`
	Workspace     json.RawMessage `json:"workspace"`
	Cwd           json.RawMessage `json:"cwd"`
	ContextWindow json.RawMessage `json:"context_window"`
	Cost          json.RawMessage `json:"cost"`

	// flat form: {"context_window_size": ..., "usage": {...}, "cost": 1.2}
	WindowSize json.RawMessage `json:"context_window_size"`
	Usage      json.RawMessage `json:"usage"`
}

// ParseSnapshot decodes a Claude Code statusline payload. Malformed
// sub-fields are dropped individually instead of failing the whole parse.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	var raw rawSnapshot
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return snap, ErrMalformedSnapshot
	}

	snap.SessionID, _ = str(raw.SessionID)

	if id, ok := str(raw.Model); ok {
		snap.ModelID = id
	} else if m := object(raw.Model); m != nil {
		snap.ModelID, _ = str(m["id"])
		snap.ModelName, _ = str(m["display_name"])
	}

	if ws := object(raw.Workspace); ws != nil {
		if dir, ok := str(ws["project_dir"]); ok && dir != "" {
			snap.Project = filepath.Base(dir)
		} else if dir, ok := str(ws["current_dir"]); ok && dir != "" {
			snap.Project = filepath.Base(dir)
		}
	}
	if snap.Project == "" {
		if dir, ok := str(raw.Cwd); ok && dir != "" {
			snap.Project = filepath.Base(dir)
		}
	}

	if cw := object(raw.ContextWindow); cw != nil {
		if n, ok := num(cw["context_window_size"]); ok && n > 0 {
			snap.WindowSize = int64(n)
		}
		usage := object(cw["current_usage"])
		if usage == nil {
			usage = object(cw["usage"])
		}
		if usage != nil {
			snap.Usage, snap.HasUsage = parseUsage(usage)
		}
		if n, ok := num(cw["total_input_tokens"]); ok {
			snap.TotalInputTokens = int64(n)
		}
		if n, ok := num(cw["total_output_tokens"]); ok {
			snap.TotalOutputTokens = int64(n)
		}
	}
	if snap.WindowSize == 0 {
		if n, ok := num(raw.WindowSize); ok && n > 0 {
			snap.WindowSize = int64(n)
		}
	}
	if !snap.HasUsage {
		if usage := object(raw.Usage); usage != nil {
			snap.Usage, snap.HasUsage = parseUsage(usage)
		}
	}

	if c, ok := num(raw.Cost); ok {
		snap.CostUSD, snap.HasCost = c, true
	} else if cost := object(raw.Cost); cost != nil {
		if c, ok := num(cost["total_cost_usd"]); ok {
			snap.CostUSD, snap.HasCost = c, true
		}
		if d, ok := num(cost["total_duration_ms"]); ok {
			snap.Duration, snap.HasDur = int64(d), true
		}
	}

	return snap, nil
}

func parseUsage(m map[string]json.RawMessage) (TokenUsage, bool) {
	var u TokenUsage
	found := false
	for key, dst := range map[string]*int64{
		"input_tokens":                &u.Input,
		"output_tokens":               &u.Output,
		"cache_creation_input_tokens": &u.CacheCreation,
		"cache_read_input_tokens":     &u.CacheRead,
	} {
		if n, ok := num(m[key]); ok && n >= 0 {
			*dst = int64(n)
			found = true
		}
	}
	return u, found
}

func missing(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func object(raw json.RawMessage) map[string]json.RawMessage {
	if missing(raw) {
		return nil
	}
	var m map[string]json.RawMessage
	if err := sonic.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func str(raw json.RawMessage) (string, bool) {
	if missing(raw) {
		return "", false
	}
	var s string
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// num accepts JSON numbers and numeric strings.
func num(raw json.RawMessage) (float64, bool) {
	if missing(raw) {
		return 0, false
	}
	var f float64
	if err := sonic.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	if s, ok := str(raw); ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
