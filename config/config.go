package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultMinFairValue = 0.40

// Config es la configuración completa del proceso. Se construye una vez al
// arrancar y se pasa a los constructores; nadie lee el entorno después.
type Config struct {
	Strategy  StrategyConfig  `yaml:"strategy"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	API       APIConfig       `yaml:"api"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Storage   StorageConfig   `yaml:"storage"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
}

// StrategyConfig controla señales y posiciones simuladas.
type StrategyConfig struct {
	NEAThreshold    float64 `yaml:"nea_threshold"`     // puntos de NEA para BUY/AVOID
	MinFairValue    float64 `yaml:"min_fair_value"`    // 0-1, el FV debe superarlo
	TakeProfitPrice float64 `yaml:"take_profit_price"` // 0-1, igual para todas las posiciones
	Bankroll        float64 `yaml:"bankroll"`
	RiskPerTrade    float64 `yaml:"risk_per_trade"` // fracción del bankroll por posición
}

// SchedulerConfig controla el loop de fondo.
type SchedulerConfig struct {
	MonitorIntervalSeconds int    `yaml:"monitor_interval_seconds"`
	TickSeconds            int    `yaml:"tick_seconds"`
	DailyScanHour          int    `yaml:"daily_scan_hour"`
	TimeZone               string `yaml:"time_zone"`
}

// APIConfig contiene los base URLs y filtros de Polymarket.
type APIConfig struct {
	CLOBBase    string `yaml:"clob_base"`
	GammaBase   string `yaml:"gamma_base"`
	SeriesID    int    `yaml:"series_id"`
	TagID       int    `yaml:"tag_id"`
	EventsLimit int    `yaml:"events_limit"`
}

// AnalysisConfig controla el análisis con Gemini.
type AnalysisConfig struct {
	APIKey         string `yaml:"api_key"` // vacío: se usa siempre el análisis por defecto
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StorageConfig controla dónde se persiste el estado.
type StorageConfig struct {
	Driver string `yaml:"driver"` // file | sqlite
	Dir    string `yaml:"dir"`    // directorio de los JSON (driver file)
	DSN    string `yaml:"dsn"`    // ruta al archivo SQLite, o ":memory:"
}

// HTTPConfig controla la API del dashboard.
type HTTPConfig struct {
	Addr        string   `yaml:"addr"` // vacío desactiva el servidor
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga .env si existe, luego el YAML (opcional), luego las variables
// de entorno, y completa los valores por defecto.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	// Valores donde el cero es configurable: se siembran antes del YAML y
	// sólo cambian si la clave está presente.
	cfg := Config{Strategy: StrategyConfig{MinFairValue: defaultMinFairValue}}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// sin archivo: defaults + entorno
		case err != nil:
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// MonitorInterval devuelve el intervalo de monitoreo como time.Duration.
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.Scheduler.MonitorIntervalSeconds) * time.Second
}

// Tick devuelve la granularidad del scheduler.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Scheduler.TickSeconds) * time.Second
}

// AnalysisTimeout devuelve el timeout de cada llamada a Gemini.
func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}

// Location carga la zona horaria del mercado.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scheduler.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config.Location: %q: %w", c.Scheduler.TimeZone, err)
	}
	return loc, nil
}

// Validate rechaza valores fuera de rango.
func (c *Config) Validate() error {
	s := c.Strategy
	switch {
	case s.MinFairValue < 0 || s.MinFairValue > 1:
		return fmt.Errorf("strategy.min_fair_value=%v: must be in [0,1]", s.MinFairValue)
	case s.TakeProfitPrice <= 0 || s.TakeProfitPrice > 1:
		return fmt.Errorf("strategy.take_profit_price=%v: must be in (0,1]", s.TakeProfitPrice)
	case s.RiskPerTrade <= 0 || s.RiskPerTrade > 1:
		return fmt.Errorf("strategy.risk_per_trade=%v: must be in (0,1]", s.RiskPerTrade)
	case c.Tick() >= domain.DailyScanWindow:
		return fmt.Errorf("scheduler.tick_seconds=%d: must be shorter than the %s daily scan window", c.Scheduler.TickSeconds, domain.DailyScanWindow)
	case c.Scheduler.DailyScanHour < 0 || c.Scheduler.DailyScanHour > 23:
		return fmt.Errorf("scheduler.daily_scan_hour=%d: must be in [0,23]", c.Scheduler.DailyScanHour)
	case c.Storage.Driver != "file" && c.Storage.Driver != "sqlite":
		return fmt.Errorf("storage.driver=%q: must be file or sqlite", c.Storage.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"NEA_THRESHOLD", &cfg.Strategy.NEAThreshold},
		{"MIN_FAIR_VALUE", &cfg.Strategy.MinFairValue},
		{"TAKE_PROFIT_PRICE", &cfg.Strategy.TakeProfitPrice},
		{"BANKROLL", &cfg.Strategy.Bankroll},
		{"RISK_PER_TRADE", &cfg.Strategy.RiskPerTrade},
	}
	for _, f := range floats {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("env %s=%q: %w", f.key, v, err)
		}
		*f.dst = n
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MONITOR_INTERVAL", &cfg.Scheduler.MonitorIntervalSeconds},
		{"NBA_SERIES_ID", &cfg.API.SeriesID},
	}
	for _, i := range ints {
		v := os.Getenv(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s=%q: %w", i.key, v, err)
		}
		*i.dst = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"GEMINI_API_KEY", &cfg.Analysis.APIKey},
		{"GEMINI_MODEL", &cfg.Analysis.Model},
		{"GAMMA_API", &cfg.API.GammaBase},
		{"CLOB_API", &cfg.API.CLOBBase},
		{"DATA_DIR", &cfg.Storage.Dir},
		{"STORAGE_DRIVER", &cfg.Storage.Driver},
		{"HTTP_ADDR", &cfg.HTTP.Addr},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"LOG_FORMAT", &cfg.Log.Format},
	}
	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Strategy.NEAThreshold <= 0 {
		cfg.Strategy.NEAThreshold = 10
	}
	if cfg.Strategy.TakeProfitPrice == 0 {
		cfg.Strategy.TakeProfitPrice = 0.42
	}
	if cfg.Strategy.Bankroll <= 0 {
		cfg.Strategy.Bankroll = 100
	}
	if cfg.Strategy.RiskPerTrade == 0 {
		cfg.Strategy.RiskPerTrade = 0.01
	}
	if cfg.Scheduler.MonitorIntervalSeconds <= 0 {
		cfg.Scheduler.MonitorIntervalSeconds = 3600
	}
	if cfg.Scheduler.TickSeconds <= 0 {
		cfg.Scheduler.TickSeconds = 30
	}
	if cfg.Scheduler.DailyScanHour == 0 {
		cfg.Scheduler.DailyScanHour = 9
	}
	if cfg.Scheduler.TimeZone == "" {
		cfg.Scheduler.TimeZone = "America/New_York"
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.SeriesID <= 0 {
		cfg.API.SeriesID = 10345
	}
	if cfg.API.TagID <= 0 {
		cfg.API.TagID = 100639
	}
	if cfg.API.EventsLimit <= 0 {
		cfg.API.EventsLimit = 50
	}
	if cfg.Analysis.Model == "" {
		cfg.Analysis.Model = "gemini-flash-lite-latest"
	}
	if cfg.Analysis.TimeoutSeconds <= 0 {
		cfg.Analysis.TimeoutSeconds = 60
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "data"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "nbaedge.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
