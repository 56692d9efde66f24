package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/mixtape/internal/models"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Auth        AuthConfig        `toml:"auth"`
	Database    DatabaseConfig    `toml:"database"`
	YouTube     YouTubeConfig     `toml:"youtube"`
	Playlist    PlaylistConfig    `toml:"playlist"`
	Scoring     ScoringConfig     `toml:"scoring"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Google GoogleConfig `toml:"google"`
}

// GoogleConfig contains the OAuth2 client registered in the Google Cloud console.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// AuthConfig selects where the OAuth token is kept.
type AuthConfig struct {
	Store           string        `toml:"store"`
	TokenPath       string        `toml:"token_path"`
	CallbackTimeout time.Duration `toml:"callback_timeout"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// YouTubeConfig contains YouTube Data API search hints and client settings.
type YouTubeConfig struct {
	RegionCode        string  `toml:"region_code"`
	RelevanceLanguage string  `toml:"relevance_language"`
	MaxResults        int     `toml:"max_results"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	BaseURL           string  `toml:"base_url"`
}

// PlaylistConfig describes the playlist to assemble.
type PlaylistConfig struct {
	Title             string   `toml:"title"`
	Description       string   `toml:"description"`
	Privacy           string   `toml:"privacy"`
	TargetMinutes     int      `toml:"target_minutes"`
	MaxOverrunMinutes int      `toml:"max_overrun_minutes"`
	Songs             []string `toml:"songs"`
}

// ScoringConfig holds the candidate scoring weights.
type ScoringConfig struct {
	TypicalMinSeconds int     `toml:"typical_min_seconds"`
	TypicalMaxSeconds int     `toml:"typical_max_seconds"`
	TypicalBonus      float64 `toml:"typical_bonus"`
	CenterSeconds     int     `toml:"center_seconds"`
	ProximityDivisor  float64 `toml:"proximity_divisor"`
	RankPenalty       float64 `toml:"rank_penalty"`
}

// LoadConfig reads a TOML configuration file from the specified path.
//
// Keys absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides the Google client settings with non-empty environment values.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	for key, field := range map[string]*string{
		"GOOGLE_CLIENT_ID":     &c.Credentials.Google.ClientID,
		"GOOGLE_CLIENT_SECRET": &c.Credentials.Google.ClientSecret,
		"GOOGLE_REDIRECT_URI":  &c.Credentials.Google.RedirectURI,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}
}

// Validate reports missing credentials and out-of-range settings.
func (c *Config) Validate() error {
	if c.Credentials.Google.ClientID == "" || c.Credentials.Google.ClientSecret == "" {
		return fmt.Errorf("%w: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set", ErrMissingCredentials)
	}
	if c.Credentials.Google.RedirectURI == "" {
		return fmt.Errorf("%w: redirect_uri is empty", ErrInvalidConfig)
	}
	if c.Playlist.TargetMinutes <= 0 {
		return fmt.Errorf("%w: target_minutes must be positive, got %d", ErrInvalidConfig, c.Playlist.TargetMinutes)
	}
	if c.Playlist.MaxOverrunMinutes < 0 {
		return fmt.Errorf("%w: max_overrun_minutes must not be negative, got %d", ErrInvalidConfig, c.Playlist.MaxOverrunMinutes)
	}

	switch c.Playlist.Privacy {
	case "private", "public", "unlisted":
	default:
		return fmt.Errorf("%w: unknown privacy %q", ErrInvalidConfig, c.Playlist.Privacy)
	}

	switch c.Auth.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("%w: unknown auth store %q", ErrInvalidConfig, c.Auth.Store)
	}

	if c.YouTube.MaxResults < 1 || c.YouTube.MaxResults > 50 {
		return fmt.Errorf("%w: max_results must be between 1 and 50, got %d", ErrInvalidConfig, c.YouTube.MaxResults)
	}

	if c.Scoring.ProximityDivisor == 0 {
		return fmt.Errorf("%w: proximity_divisor must not be zero", ErrInvalidConfig)
	}

	return nil
}

// Budget returns the playlist duration budget.
func (c *Config) Budget() models.Budget {
	return models.Budget{
		TargetMinutes:     c.Playlist.TargetMinutes,
		MaxOverrunMinutes: c.Playlist.MaxOverrunMinutes,
	}
}

// Weights returns the candidate scoring weights.
func (c *Config) Weights() models.ScoreWeights {
	return models.ScoreWeights{
		TypicalMinSeconds: c.Scoring.TypicalMinSeconds,
		TypicalMaxSeconds: c.Scoring.TypicalMaxSeconds,
		TypicalBonus:      c.Scoring.TypicalBonus,
		CenterSeconds:     c.Scoring.CenterSeconds,
		ProximityDivisor:  c.Scoring.ProximityDivisor,
		RankPenalty:       c.Scoring.RankPenalty,
	}
}

// SearchOptions returns the search hints passed with every query variant.
func (c *Config) SearchOptions() models.SearchOptions {
	return models.SearchOptions{
		MaxResults:        c.YouTube.MaxResults,
		Order:             models.OrderRelevance,
		RegionCode:        c.YouTube.RegionCode,
		RelevanceLanguage: c.YouTube.RelevanceLanguage,
	}
}
