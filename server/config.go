package server

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so TOML values like "500ms" decode.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config is the chat server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string `toml:"listen_addr"`

	// CompletionURL is the base URL of the completion service. Empty means
	// the server's own mock completion endpoint.
	CompletionURL string `toml:"completion_url"`

	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database, or empty for in-memory.
	DBPath string `toml:"db_path"`

	// MinResponseDelay and MaxResponseDelay bound the artificial thinking
	// delay of the mock completion endpoint.
	MinResponseDelay Duration `toml:"min_response_delay"`
	MaxResponseDelay Duration `toml:"max_response_delay"`
}

// DefaultConfig returns the configuration used when no file or flags are
// given.
func DefaultConfig() Config {
	return Config{
		ListenAddr:       ":8080",
		MinResponseDelay: Duration{time.Second},
		MaxResponseDelay: Duration{3 * time.Second},
	}
}

// LoadConfig reads a TOML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return config, nil
}
