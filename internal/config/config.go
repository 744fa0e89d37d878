package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

var ErrNoToken = errors.New("BOT_TOKEN is not set")

type Config struct {
	App struct {
		Env       string
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"app"`

	Telegram struct {
		Token          string
		PollTimeout    time.Duration `mapstructure:"poll_timeout"`
		RestartBackoff time.Duration `mapstructure:"restart_backoff"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Port int
	} `mapstructure:"http"`

	Database struct {
		Driver string
		DSN    string
	} `mapstructure:"database"`

	Dialog struct {
		TTL           time.Duration `mapstructure:"ttl"`
		SweepInterval time.Duration `mapstructure:"sweep_interval"`
	} `mapstructure:"dialog"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

func (c Config) HTTPAddr() string { return fmt.Sprintf("0.0.0.0:%d", c.HTTP.Port) }

// Load читает конфиг: файл (если есть) → .env → переменные окружения.
// BOT_TOKEN и PORT читаются под своими историческими именами, остальное: с префиксом APP_.
func Load(path string) (Config, error) {
	var c Config

	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("telegram.token", "BOT_TOKEN", "APP_TELEGRAM_TOKEN")
	_ = v.BindEnv("http.port", "PORT", "APP_HTTP_PORT")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	if c.Telegram.Token == "" {
		return c, ErrNoToken
	}
	return c, nil
}

// LoadStorage как Load, но без обязательного токена: для CLI-команд, которым нужна только БД.
func LoadStorage(path string) (Config, error) {
	c, err := Load(path)
	if errors.Is(err, ErrNoToken) {
		return c, nil
	}
	return c, err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.log_format", "json")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 30*time.Second)
	v.SetDefault("telegram.restart_backoff", 15*time.Second)
	v.SetDefault("http.port", 10000)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "paint_db.sqlite")
	v.SetDefault("dialog.ttl", 30*time.Minute)
	v.SetDefault("dialog.sweep_interval", time.Minute)
	v.SetDefault("metrics.enabled", false)
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err)
}
