package config

// Environment variables consulted by burnline.
const (
	EnvConfig     = "BURNLINE_CONFIG"
	EnvCacheDir   = "BURNLINE_CACHE_DIR"
	EnvOAuthToken = "CLAUDE_OAUTH_TOKEN"
	EnvCols       = "STATUSLINE_COLS"
	EnvColumns    = "COLUMNS"
	EnvNoColor    = "NO_COLOR"
)

// ApplyEnv overlays environment overrides onto cfg. getenv is usually os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if dir := getenv(EnvCacheDir); dir != "" {
		cfg.Cache.Dir = dir
	}
	if getenv(EnvNoColor) != "" {
		cfg.Display.Color = ColorNever
	}
}
