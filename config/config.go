// Ininicializing common application configuration
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const EnvPrefix = "OPTIVENUE"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Booking  BookingConfig  `mapstructure:"booking"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	AppVersion     string        `mapstructure:"app_version"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Env            string        `mapstructure:"environment"`
	Mode           string        `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"` // sqlite file, ":memory:" allowed
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectRetries  int           `mapstructure:"connect_retries"`
	ConnectBackoff  time.Duration `mapstructure:"connect_backoff"`
}

type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	LockKey   string        `mapstructure:"lock_key"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`
	LockRetry time.Duration `mapstructure:"lock_retry"`

	// connection pool
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type BookingConfig struct {
	SampleStep time.Duration `mapstructure:"sample_step"`
	Timezone   string        `mapstructure:"timezone"` // zone of created_at
	LockWait   time.Duration `mapstructure:"lock_wait"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | text
}

// LoadConfig reads path, or config/config.yaml when path is empty. A missing
// default file is not an error: defaults and OPTIVENUE_* variables apply.
func LoadConfig(path string) (*viper.Viper, error) {

	viperInstance := viper.New()
	setDefaults(viperInstance)

	viperInstance.SetEnvPrefix(EnvPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	if path != "" {
		viperInstance.SetConfigFile(path)
	} else {
		viperInstance.AddConfigPath("./config")
		viperInstance.SetConfigName("config")
		viperInstance.SetConfigType("yaml")
	}

	err := viperInstance.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return viperInstance, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return viperInstance, nil
}

// WatchLog re-reads the config file on change and passes the new log section
// to apply. Other sections still need a restart. No-op without a file.
func WatchLog(v *viper.Viper, apply func(LogConfig)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		reloadLog(v, e, apply)
	})
	v.WatchConfig()
}

func reloadLog(v *viper.Viper, e fsnotify.Event, apply func(LogConfig)) {
	if !e.Has(fsnotify.Write | fsnotify.Create) {
		return
	}
	lc := LogConfig{Level: v.GetString("log.level"), Format: v.GetString("log.format")}
	if _, err := logrus.ParseLevel(lc.Level); err != nil {
		logrus.WithError(err).WithField("file", e.Name).Warn("Ignoring invalid log level")
		return
	}
	logrus.WithFields(logrus.Fields{"file": e.Name, "level": lc.Level}).Info("Reloading log config")
	apply(lc)
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		return errors.New("config: database.path is required for sqlite")
	}
	if c.Server.Port == "" {
		return errors.New("config: server.port is required")
	}
	if c.Booking.SampleStep <= 0 {
		return fmt.Errorf("config: booking.sample_step must be positive, got %s", c.Booking.SampleStep)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// GetServerAddress returns host:port
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	// Database defaults
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "optivenue")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "optivenue")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "optivenue.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("database.connect_backoff", time.Second)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_key", "optivenue:booking-lock")
	v.SetDefault("redis.lock_ttl", 30*time.Second)
	v.SetDefault("redis.lock_retry", 50*time.Millisecond)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.pool_timeout", 4*time.Second)

	// Booking defaults
	v.SetDefault("booking.sample_step", 15*time.Minute)
	v.SetDefault("booking.timezone", "Europe/Chisinau")
	v.SetDefault("booking.lock_wait", 10*time.Second)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
