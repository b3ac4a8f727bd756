package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	StateDir  string
	Output    string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("DUELSYNC_SERVER", "http://localhost:8080"),
		StateDir:  getEnvOrDefault("DUELSYNC_STATE_DIR", defaultStateDir()),
		Output:    "text",
	}
}

// SavePlayerID remembers the player id minted for a game, keyed by game
// code, so later invocations can act and reconnect as the same identity
func (c *Config) SavePlayerID(code, playerID string) error {
	if err := os.MkdirAll(c.StateDir, 0700); err != nil {
		return err
	}
	return os.WriteFile(c.playerFile(code), []byte(playerID), 0600)
}

// LoadPlayerID returns the remembered player id for a game, or empty
func (c *Config) LoadPlayerID(code string) string {
	data, err := os.ReadFile(c.playerFile(code))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *Config) playerFile(code string) string {
	return filepath.Join(c.StateDir, strings.ToUpper(code)+".player")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".duelsync"
	}
	return filepath.Join(home, ".duelsync")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
