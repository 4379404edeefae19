package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alexvidalr/adscope/internal/adapters/googleads"
	"github.com/alexvidalr/adscope/internal/adapters/meta"
	"github.com/alexvidalr/adscope/internal/adapters/tiktok"
	"github.com/alexvidalr/adscope/internal/domain"
)

// Config es la configuración completa del pipeline.
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Log        LogConfig         `yaml:"log"`
	Fetch      FetchConfig       `yaml:"fetch"`
	Meta       meta.Config       `yaml:"meta"`
	Google     googleads.Config  `yaml:"google"`
	TikTok     tiktok.Config     `yaml:"tiktok"`
	Thresholds domain.Thresholds `yaml:"thresholds"`
	Storage    StorageConfig     `yaml:"storage"`
}

// ServerConfig controla el servidor HTTP.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// FetchConfig es la query base de los runs programados y el tuning de fetch.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"` // deadline por llamada a adapter
	Level          string `yaml:"level"`           // ad | adset | campaign
	Channel        string `yaml:"channel"`         // all | meta | google | tiktok
	Account        string `yaml:"account"`         // "" | all | account id
	DatePreset     string `yaml:"date_preset"`
	IncludeDims    bool   `yaml:"include_dims"`
	Schedule       string `yaml:"schedule"` // spec cron del run periódico
}

// StorageConfig controla el histórico de runs.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Las variables de entorno pisan al YAML: las credenciales nunca
// deberían vivir en el archivo versionado. path vacío usa solo env+defaults.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// FetchTimeout devuelve el deadline por llamada como time.Duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están
// presentes. Las listas de cuentas se pasan separadas por comas.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PORT"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Server.Port)
	}

	if v := os.Getenv("META_ACCESS_TOKEN"); v != "" {
		cfg.Meta.AccessToken = v
	}
	if v := os.Getenv("META_ACCOUNT_IDS"); v != "" {
		cfg.Meta.AccountIDs = splitCSV(v)
	}

	if v := os.Getenv("GOOGLE_DEVELOPER_TOKEN"); v != "" {
		cfg.Google.DeveloperToken = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Google.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Google.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REFRESH_TOKEN"); v != "" {
		cfg.Google.RefreshToken = v
	}
	if v := os.Getenv("GOOGLE_CUSTOMER_IDS"); v != "" {
		cfg.Google.CustomerIDs = splitCSV(v)
	}
	if v := os.Getenv("GOOGLE_LOGIN_CUSTOMER_ID"); v != "" {
		cfg.Google.LoginCustomerID = v
	}

	if v := os.Getenv("TIKTOK_ACCESS_TOKEN"); v != "" {
		cfg.TikTok.AccessToken = v
	}
	if v := os.Getenv("TIKTOK_ADVERTISER_IDS"); v != "" {
		cfg.TikTok.AdvertiserIDs = splitCSV(v)
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if cfg.Fetch.TimeoutSeconds <= 0 {
		cfg.Fetch.TimeoutSeconds = 30
	}
	if cfg.Fetch.Level == "" {
		cfg.Fetch.Level = "ad"
	}
	if cfg.Fetch.Channel == "" {
		cfg.Fetch.Channel = "all"
	}
	if cfg.Fetch.Schedule == "" {
		cfg.Fetch.Schedule = "0 * * * *" // cada hora en punto
	}

	if cfg.Thresholds.MinSpend <= 0 {
		cfg.Thresholds.MinSpend = 50
	}
	if cfg.Thresholds.MinClicks <= 0 {
		cfg.Thresholds.MinClicks = 30
	}
	if cfg.Thresholds.RoasKill <= 0 {
		cfg.Thresholds.RoasKill = 1.0
	}
	if cfg.Thresholds.RoasScale <= 0 {
		cfg.Thresholds.RoasScale = 3.0
	}

	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "adscope.db"
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
