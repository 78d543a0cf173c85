// Package config loads dashboard settings from YAML, .env and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"StockDashboard/internal/calculator"
	"StockDashboard/internal/model"
)

// Data source providers.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderMock  = "mock"
)

// Config holds all application configuration. Every field can be overridden
// from the environment, e.g. DASHBOARD_SYMBOLS=AAPL,MSFT or
// DASHBOARD_REFRESH_INTERVAL=30s.
type Config struct {
	Dashboard struct {
		Symbols      []string               `yaml:"symbols" envconfig:"SYMBOLS"`
		StartDate    string                 `yaml:"start_date" envconfig:"START_DATE"`
		EndDate      string                 `yaml:"end_date" envconfig:"END_DATE"`
		LookbackDays int                    `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS"`
		Currency     string                 `yaml:"currency" envconfig:"CURRENCY"`
		Indicators   model.IndicatorToggles `yaml:"indicators" envconfig:"INDICATORS"`
	} `yaml:"dashboard" envconfig:"DASHBOARD"`
	Refresh struct {
		Interval     time.Duration `yaml:"interval" envconfig:"INTERVAL"`
		Cron         string        `yaml:"cron" envconfig:"CRON"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
		Concurrency  int           `yaml:"concurrency" envconfig:"CONCURRENCY"`
	} `yaml:"refresh" envconfig:"DASHBOARD_REFRESH"`
	IndicatorParams struct {
		MAWindows       []int   `yaml:"ma_windows" envconfig:"MA_WINDOWS"`
		RSIPeriod       int     `yaml:"rsi_period" envconfig:"RSI_PERIOD"`
		BollingerPeriod int     `yaml:"bollinger_period" envconfig:"BOLLINGER_PERIOD"`
		BollingerK      float64 `yaml:"bollinger_k" envconfig:"BOLLINGER_K"`
	} `yaml:"indicator_params" envconfig:"DASHBOARD_INDICATOR"`
	Currencies map[string]float64 `yaml:"currencies" envconfig:"DASHBOARD_CURRENCIES"`
	DataSource struct {
		Provider      string  `yaml:"provider" envconfig:"PROVIDER"`
		BaseURL       string  `yaml:"base_url" envconfig:"BASE_URL"`
		APIKey        string  `yaml:"api_key" envconfig:"API_KEY"`
		MockBasePrice float64 `yaml:"mock_base_price" envconfig:"MOCK_BASE_PRICE"`
	} `yaml:"data_source" envconfig:"DASHBOARD_DATA"`
	Portfolio struct {
		StateFile string `yaml:"state_file" envconfig:"STATE_FILE"`
	} `yaml:"portfolio" envconfig:"DASHBOARD_PORTFOLIO"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database" envconfig:"DASHBOARD_DB"`
	API struct {
		Addr        string   `yaml:"addr" envconfig:"ADDR"`
		CORSOrigins []string `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
	} `yaml:"api" envconfig:"DASHBOARD_API"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Dashboard.Symbols = []string{"AAPL", "MSFT", "TSLA"}
	cfg.Dashboard.LookbackDays = 180
	cfg.Dashboard.Currency = "USD"
	cfg.Dashboard.Indicators = model.IndicatorToggles{MovingAverages: true, RSI: true, Bollinger: true}
	cfg.Refresh.Interval = 60 * time.Second
	cfg.Refresh.FetchTimeout = 15 * time.Second
	cfg.Refresh.Concurrency = 4
	def := calculator.DefaultParams()
	cfg.IndicatorParams.MAWindows = def.MAWindows
	cfg.IndicatorParams.RSIPeriod = def.RSIPeriod
	cfg.IndicatorParams.BollingerPeriod = def.BollingerPeriod
	cfg.IndicatorParams.BollingerK = def.BollingerK
	cfg.Currencies = map[string]float64{"INR": 83.0}
	cfg.DataSource.MockBasePrice = 100
	cfg.Portfolio.StateFile = "data/portfolio.json"
	cfg.Database.SQLitePath = "data/dashboard.db"
	cfg.API.Addr = ":8080"
	cfg.API.CORSOrigins = []string{"*"}
	return cfg
}

// Load reads config from a YAML file on top of the defaults, then applies
// .env and environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		// yaml.v3 merges into the default map; a file's table replaces it
		var file struct {
			Currencies map[string]float64 `yaml:"currencies"`
		}
		if err := yaml.Unmarshal(data, &file); err == nil && file.Currencies != nil {
			cfg.Currencies = file.Currencies
		}
	}

	// .env is optional
	_ = godotenv.Load()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.DataSource.Provider = strings.ToLower(strings.TrimSpace(cfg.DataSource.Provider))
	if cfg.DataSource.Provider == "" {
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = ProviderREST
		} else {
			cfg.DataSource.Provider = ProviderYahoo
		}
	}
	return cfg, nil
}

// Validate checks ranges and required fields. Date range and currency code
// problems are left to the refresh pass, which reports them as
// configuration errors.
func (c *Config) Validate() error {
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("refresh.interval must not be negative")
	}
	if c.Refresh.FetchTimeout <= 0 {
		return fmt.Errorf("refresh.fetch_timeout must be positive")
	}
	if c.Refresh.Concurrency <= 0 {
		return fmt.Errorf("refresh.concurrency must be positive")
	}
	if c.Dashboard.LookbackDays < 0 {
		return fmt.Errorf("dashboard.lookback_days must not be negative")
	}
	for _, w := range c.IndicatorParams.MAWindows {
		if w <= 0 {
			return fmt.Errorf("indicator_params.ma_windows must be positive, got %d", w)
		}
	}
	if c.IndicatorParams.RSIPeriod <= 0 || c.IndicatorParams.BollingerPeriod <= 0 {
		return fmt.Errorf("indicator_params periods must be positive")
	}
	if c.IndicatorParams.BollingerK <= 0 {
		return fmt.Errorf("indicator_params.bollinger_k must be positive")
	}
	for code, r := range c.Currencies {
		if r <= 0 {
			return fmt.Errorf("currencies.%s must be positive", code)
		}
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	return nil
}

// PassConfig converts the dashboard section into pass input. Missing dates
// default to the lookback window ending today.
func (c *Config) PassConfig(now time.Time) (model.PassConfig, error) {
	end := model.DateOf(now)
	if c.Dashboard.EndDate != "" {
		t, err := model.ParseDate(c.Dashboard.EndDate)
		if err != nil {
			return model.PassConfig{}, model.NewConfigError("end_date", "invalid date %q", c.Dashboard.EndDate)
		}
		end = t
	}
	start := end.AddDate(0, 0, -c.Dashboard.LookbackDays)
	if c.Dashboard.StartDate != "" {
		t, err := model.ParseDate(c.Dashboard.StartDate)
		if err != nil {
			return model.PassConfig{}, model.NewConfigError("start_date", "invalid date %q", c.Dashboard.StartDate)
		}
		start = t
	}
	pc := model.PassConfig{
		Symbols:    c.Dashboard.Symbols,
		Start:      start,
		End:        end,
		Indicators: c.Dashboard.Indicators,
		Currency:   c.Dashboard.Currency,
		Interval:   c.Refresh.Interval,
	}
	return pc.Normalized(), nil
}

// EngineParams returns the indicator windows.
func (c *Config) EngineParams() calculator.Params {
	return calculator.Params{
		MAWindows:       c.IndicatorParams.MAWindows,
		RSIPeriod:       c.IndicatorParams.RSIPeriod,
		BollingerPeriod: c.IndicatorParams.BollingerPeriod,
		BollingerK:      c.IndicatorParams.BollingerK,
	}
}
