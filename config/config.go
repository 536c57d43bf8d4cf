package config

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config is the full process configuration. Values come from cove.yaml (or an
// explicit file), COVE_* environment overrides, then defaults.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	DatabaseURL string `mapstructure:"database_url"`
	JWTSecret   string `mapstructure:"jwt_secret"`

	// Browser origins allowed to open the websocket. Empty allows any.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	AuthTimeout time.Duration `mapstructure:"auth_timeout"`
	TypingTTL   time.Duration `mapstructure:"typing_ttl"`

	SendQueueSize int `mapstructure:"send_queue_size"`
	FanoutWorkers int `mapstructure:"fanout_workers"`
	FanoutQueue   int `mapstructure:"fanout_queue"`

	LogLevel string `mapstructure:"log_level"`
}

var (
	loadedMu sync.RWMutex
	loaded   *viper.Viper
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("auth_timeout", 5*time.Second)
	v.SetDefault("typing_ttl", 6*time.Second)
	v.SetDefault("send_queue_size", 256)
	v.SetDefault("fanout_workers", 4)
	v.SetDefault("fanout_queue", 1024)
	v.SetDefault("log_level", "info")
}

// Load reads configuration. cfgFile may be empty, in which case cove.yaml is
// searched in the working directory; a missing file is not an error since env
// and defaults can carry a full config.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("cove")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("COVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	loadedMu.Lock()
	loaded = v
	loadedMu.Unlock()
	setCurrent(&c)

	return &c, nil
}
