package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every option the sync layer recognises. RemoteURL and
// RemoteKey establish the remote session; without both, every remote
// operation fails before any network attempt.
type Config struct {
	RemoteURL          string `yaml:"remote_url"`
	RemoteKey          string `yaml:"remote_key"`
	EnableRealtime     bool   `yaml:"enable_realtime"`
	DefaultProjectPath string `yaml:"default_project_path"`
	RealtimeAddr       string `yaml:"realtime_addr"`
	RealtimeChannel    string `yaml:"realtime_channel"`
	ListenAddr         string `yaml:"listen_addr"`
	Debug              bool   `yaml:"debug"`
}

// Default returns the built-in configuration before any file or env input.
func Default() Config {
	return Config{
		EnableRealtime:  true,
		RealtimeChannel: "taskmirror:changes",
		ListenAddr:      ":8793",
	}
}

// Load reads the config file at path, when present, and applies environment
// overrides on top. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("REMOTE_URL"); v != "" {
		cfg.RemoteURL = v
	}
	if v := os.Getenv("REMOTE_KEY"); v != "" {
		cfg.RemoteKey = v
	}
	if v := os.Getenv("DEFAULT_PROJECT_PATH"); v != "" {
		cfg.DefaultProjectPath = v
	}
	if v := os.Getenv("REALTIME_ADDR"); v != "" {
		cfg.RealtimeAddr = v
	}
	if v := os.Getenv("REALTIME_CHANNEL"); v != "" {
		cfg.RealtimeChannel = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ENABLE_REALTIME"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableRealtime = b
		}
	}
	if v := os.Getenv("DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

// HasSession reports whether remote credentials are configured.
func (c Config) HasSession() bool {
	return c.RemoteURL != "" && c.RemoteKey != ""
}
