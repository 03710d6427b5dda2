package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	AppName    = "YTT"
	AppVersion = "1.0.0"
)

// UserAgent identifies outbound requests to translation backends.
var UserAgent = "Mozilla/5.0 (compatible; " + AppName + "/" + AppVersion + ")"

type Config struct {
	Addr      string `env:"YTT_ADDR" env-default:":8000"`
	DataDir   string `env:"YTT_DATA_DIR" env-default:"./data"`
	DBPath    string `env:"YTT_DB_PATH"`
	StaticDir string `env:"YTT_STATIC_DIR"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`

	LibreTranslateURL    string `env:"LIBRETRANSLATE_URL" env-default:"http://localhost:5000"`
	LibreTranslateAPIKey string `env:"LIBRETRANSLATE_API_KEY"`
	TranslateRateLimit   int    `env:"TRANSLATE_RATE_LIMIT" env-default:"10"`

	ChunkSize     int `env:"CHUNK_SIZE" env-default:"5000"`
	MaxTextLength int `env:"MAX_TEXT_LENGTH" env-default:"50000"`
	MaxFileSizeMB int `env:"MAX_FILE_SIZE_MB" env-default:"10"`

	YtDlpPath string `env:"YTDLP_PATH" env-default:"yt-dlp"`

	RetentionInterval time.Duration `env:"RETENTION_INTERVAL" env-default:"1h"`

	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
}

// HistoryPath is the JSON file holding translation history.
func (c Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.json")
}

// TranscriptDir holds one subdirectory per fetched video.
func (c Config) TranscriptDir() string {
	return filepath.Join(c.DataDir, "transcripts")
}

func (c Config) UploadDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

// LegacySettingsPath is the settings document written by older releases.
func (c Config) LegacySettingsPath() string {
	return filepath.Join(c.DataDir, "settings.json")
}

func (c Config) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("config: read env: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "ytt.db")
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = detectStaticDir()
	}
	if cfg.ChunkSize <= 0 {
		return cfg, fmt.Errorf("config: CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.MaxTextLength <= 0 {
		return cfg, fmt.Errorf("config: MAX_TEXT_LENGTH must be positive, got %d", cfg.MaxTextLength)
	}
	if cfg.MaxFileSizeMB <= 0 {
		return cfg, fmt.Errorf("config: MAX_FILE_SIZE_MB must be positive, got %d", cfg.MaxFileSizeMB)
	}
	if cfg.RetentionInterval <= 0 {
		return cfg, fmt.Errorf("config: RETENTION_INTERVAL must be positive, got %s", cfg.RetentionInterval)
	}

	cfg.DataDir = filepath.Clean(cfg.DataDir)
	cfg.DBPath = filepath.Clean(cfg.DBPath)
	cfg.StaticDir = filepath.Clean(cfg.StaticDir)

	return cfg, nil
}

func detectStaticDir() string {
	candidates := []string{
		"./static",
		"./frontend/build",
		"../frontend/build",
	}
	for _, candidate := range candidates {
		indexPath := filepath.Join(candidate, "index.html")
		if info, err := os.Stat(indexPath); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return "./static"
}
