package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Playlist.TargetMinutes != 120 {
			t.Errorf("expected target 120, got %d", config.Playlist.TargetMinutes)
		}
		if config.Playlist.MaxOverrunMinutes != 5 {
			t.Errorf("expected overrun 5, got %d", config.Playlist.MaxOverrunMinutes)
		}
		if config.YouTube.RegionCode != "CA" || config.YouTube.RelevanceLanguage != "en" {
			t.Errorf("unexpected search hints %s/%s", config.YouTube.RegionCode, config.YouTube.RelevanceLanguage)
		}
		if config.YouTube.MaxResults != 8 {
			t.Errorf("expected max results 8, got %d", config.YouTube.MaxResults)
		}
		if config.Credentials.Google.RedirectURI != "http://127.0.0.1:5173/oauth2callback" {
			t.Errorf("unexpected redirect uri %s", config.Credentials.Google.RedirectURI)
		}
		if len(config.Playlist.Songs) != 29 {
			t.Errorf("expected 29 seed songs, got %d", len(config.Playlist.Songs))
		}
		if config.Playlist.Privacy != "private" {
			t.Errorf("expected private playlist, got %s", config.Playlist.Privacy)
		}
		if config.Auth.CallbackTimeout != 0 {
			t.Errorf("expected no callback timeout, got %v", config.Auth.CallbackTimeout)
		}
	})

	t.Run("Weights", func(t *testing.T) {
		w := DefaultConfig().Weights()
		if w.TypicalBonus != 1000 || w.ProximityDivisor != 10 || w.RankPenalty != 1 {
			t.Errorf("unexpected weights %+v", w)
		}
		if w.TypicalMinSeconds != 120 || w.TypicalMaxSeconds != 480 || w.CenterSeconds != 240 {
			t.Errorf("unexpected window %+v", w)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[credentials.google]
client_id = "id"
client_secret = "secret"

[auth]
store = "sqlite"
callback_timeout = "2m"

[playlist]
target_minutes = 60
songs = ["A - One", "B - Two"]
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Playlist.TargetMinutes != 60 {
			t.Errorf("expected target 60, got %d", config.Playlist.TargetMinutes)
		}
		if config.Playlist.MaxOverrunMinutes != 5 {
			t.Errorf("expected default overrun 5, got %d", config.Playlist.MaxOverrunMinutes)
		}
		if len(config.Playlist.Songs) != 2 {
			t.Errorf("expected songs to be replaced, got %d", len(config.Playlist.Songs))
		}
		if config.Auth.Store != StoreSQLite {
			t.Errorf("expected sqlite store, got %s", config.Auth.Store)
		}
		if config.Auth.CallbackTimeout != 2*time.Minute {
			t.Errorf("expected 2m timeout, got %v", config.Auth.CallbackTimeout)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{
			"GOOGLE_CLIENT_ID":     "env-id",
			"GOOGLE_CLIENT_SECRET": "env-secret",
			"GOOGLE_REDIRECT_URI":  "",
		}
		config.ApplyEnv(func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		})

		if config.Credentials.Google.ClientID != "env-id" {
			t.Errorf("expected env client id, got %s", config.Credentials.Google.ClientID)
		}
		if config.Credentials.Google.ClientSecret != "env-secret" {
			t.Errorf("expected env client secret, got %s", config.Credentials.Google.ClientSecret)
		}
		if config.Credentials.Google.RedirectURI != "http://127.0.0.1:5173/oauth2callback" {
			t.Errorf("empty env value should not override redirect uri")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.Credentials.Google.ClientID = "id"
		c.Credentials.Google.ClientSecret = "secret"
		return c
	}

	tc := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing client id", mutate: func(c *Config) { c.Credentials.Google.ClientID = "" }, wantErr: ErrMissingCredentials},
		{name: "missing client secret", mutate: func(c *Config) { c.Credentials.Google.ClientSecret = "" }, wantErr: ErrMissingCredentials},
		{name: "zero target", mutate: func(c *Config) { c.Playlist.TargetMinutes = 0 }, wantErr: ErrInvalidConfig},
		{name: "negative overrun", mutate: func(c *Config) { c.Playlist.MaxOverrunMinutes = -1 }, wantErr: ErrInvalidConfig},
		{name: "unknown privacy", mutate: func(c *Config) { c.Playlist.Privacy = "friends" }, wantErr: ErrInvalidConfig},
		{name: "unknown store", mutate: func(c *Config) { c.Auth.Store = "keychain" }, wantErr: ErrInvalidConfig},
		{name: "zero max results", mutate: func(c *Config) { c.YouTube.MaxResults = 0 }, wantErr: ErrInvalidConfig},
		{name: "max results above api limit", mutate: func(c *Config) { c.YouTube.MaxResults = 51 }, wantErr: ErrInvalidConfig},
		{name: "max results at api limit", mutate: func(c *Config) { c.YouTube.MaxResults = 50 }},
		{name: "zero divisor", mutate: func(c *Config) { c.Scoring.ProximityDivisor = 0 }, wantErr: ErrInvalidConfig},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
