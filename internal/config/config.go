package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"aedash/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Window     WindowConfig     `mapstructure:"window"`
	Smoothing  SmoothingConfig  `mapstructure:"smoothing"`
	Spot       SpotConfig       `mapstructure:"spot"`
	Activation ActivationConfig `mapstructure:"activation"`
	Chart      ChartConfig      `mapstructure:"chart"`
	Server     ServerConfig     `mapstructure:"server"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// WindowConfig controls how picked dates become instants.
type WindowConfig struct {
	Timezone    string `mapstructure:"timezone" validate:"required"`
	DefaultDays int    `mapstructure:"default_days" validate:"min=1,max=45"`
}

// SmoothingConfig sets the trailing average length in AE intervals.
type SmoothingConfig struct {
	Window int `mapstructure:"window" validate:"min=1"`
}

// SpotConfig captures day-ahead price feed connectivity.
type SpotConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// ActivationConfig captures AE download connectivity.
type ActivationConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	Language       string        `mapstructure:"language" validate:"required"`
	Resolution     string        `mapstructure:"resolution" validate:"required"`
	Mode           string        `mapstructure:"mode" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// ChartConfig sets PNG geometry and the optional value-axis clamp.
type ChartConfig struct {
	Width    int     `mapstructure:"width" validate:"min=320"`
	Height   int     `mapstructure:"height" validate:"min=240"`
	ClampMin float64 `mapstructure:"clamp_min"`
	ClampMax float64 `mapstructure:"clamp_max"`
}

// ServerConfig governs the dashboard HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// WatchConfig governs the periodic re-render of a trailing window.
type WatchConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToInterval bool          `mapstructure:"align_to_interval"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
	Days            int           `mapstructure:"days" validate:"min=1,max=45"`
	PNGPath         string        `mapstructure:"png_path"`
	Clamp           bool          `mapstructure:"clamp"`
}

// AlertingConfig defines notification routing for watch mode.
type AlertingConfig struct {
	Enabled         bool           `mapstructure:"enabled"`
	NotifyMalformed bool           `mapstructure:"notify_malformed"`
	Telegram        TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig holds Telegram bot parameters.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AEDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "aedash")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("window.timezone", "UTC")
	v.SetDefault("window.default_days", 1)

	v.SetDefault("smoothing.window", 4)

	v.SetDefault("spot.base_url", "https://api.awattar.at/v1")
	v.SetDefault("spot.request_timeout", "0s")
	v.SetDefault("spot.user_agent", "aedash/1.0")

	v.SetDefault("activation.base_url", "https://transparency.apg.at/api/v1")
	v.SetDefault("activation.language", "German")
	v.SetDefault("activation.resolution", "PT15M")
	v.SetDefault("activation.mode", "Export")
	v.SetDefault("activation.request_timeout", "0s")
	v.SetDefault("activation.user_agent", "aedash/1.0")

	v.SetDefault("chart.width", 1280)
	v.SetDefault("chart.height", 720)
	v.SetDefault("chart.clamp_min", -150.0)
	v.SetDefault("chart.clamp_max", 300.0)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("watch.interval", "15m")
	v.SetDefault("watch.align_to_interval", true)
	v.SetDefault("watch.startup_delay", "0s")
	v.SetDefault("watch.days", 1)
	v.SetDefault("watch.png_path", "out/ae_spot.png")
	v.SetDefault("watch.clamp", false)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.notify_malformed", true)
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate performs sanity checks on the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Window.Location(); err != nil {
		return err
	}
	if c.Chart.ClampMin >= c.Chart.ClampMax {
		return fmt.Errorf("chart.clamp_min must be below chart.clamp_max")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Spot.RequestTimeout < 0 || c.Activation.RequestTimeout < 0 {
		return fmt.Errorf("request timeouts cannot be negative")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// Location resolves the configured timezone.
func (w WindowConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return nil, fmt.Errorf("window.timezone %q: %w", w.Timezone, err)
	}
	return loc, nil
}

// ResolveDays returns either the CLI override or the configured default.
func (c *Config) ResolveDays(override int) int {
	if override > 0 {
		return override
	}
	return c.Window.DefaultDays
}
