package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// StorageConfig holds the results store settings.
type StorageConfig struct {
	Type      string         `json:"type" mapstructure:"type"`
	BatchSize int            `json:"batchSize" mapstructure:"batchSize"`
	SQLite    SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres  PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// SQLiteConfig holds the sqlite backend settings.
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds the postgres backend settings.
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslmode" mapstructure:"sslmode"`
}

// InfluxConfig holds the telemetry export settings.
type InfluxConfig struct {
	Enabled          bool   `json:"enabled" mapstructure:"enabled"`
	Protocol         string `json:"protocol" mapstructure:"protocol"`
	Host             string `json:"host" mapstructure:"host"`
	Port             string `json:"port" mapstructure:"port"`
	Token            string `json:"token" mapstructure:"token"`
	Org              string `json:"org" mapstructure:"org"`
	BackupDir        string `json:"backupDir" mapstructure:"backupDir"`
	BucketSweep      string `json:"bucketSweep" mapstructure:"bucketSweep"`
	BucketValidation string `json:"bucketValidation" mapstructure:"bucketValidation"`
}

// URL assembles the server URL from protocol, host and port.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// GraylogConfig holds the GELF log shipping settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// SweepConfig holds the characterization sweep settings.
type SweepConfig struct {
	VelocityStart float64       `json:"velocityStart" mapstructure:"velocityStart"`
	VelocityEnd   float64       `json:"velocityEnd" mapstructure:"velocityEnd"`
	VelocityStep  float64       `json:"velocityStep" mapstructure:"velocityStep"`
	Workers       int           `json:"workers" mapstructure:"workers"`
	TargetRPM     float64       `json:"targetRPM" mapstructure:"targetRPM"`
	FlushInterval time.Duration `json:"flushInterval" mapstructure:"flushInterval"`
}

// Load reads configuration from the JSON config file and sets default values.
// configDir is the directory containing the config file. Defaults are
// registered before the file is read, so callers may ignore a not-found
// error and run on defaults alone.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("defaultTireRadius", 0.33)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.batchSize", 500)
	viper.SetDefault("storage.sqlite.path", "./apexsim.db")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "apexsim")
	viper.SetDefault("storage.postgres.sslmode", "disable")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "apexsim")
	viper.SetDefault("influx.backupDir", "./telemetry-backup")
	viper.SetDefault("influx.bucketSweep", "sweeps")
	viper.SetDefault("influx.bucketValidation", "validations")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("sweep.velocityStart", 1.0)
	viper.SetDefault("sweep.velocityEnd", 100.0)
	viper.SetDefault("sweep.velocityStep", 0.5)
	viper.SetDefault("sweep.workers", 4)
	viper.SetDefault("sweep.targetRPM", 0.0)
	viper.SetDefault("sweep.flushInterval", "1s")

	viper.SetDefault("track.sourceEPSG", 4326)
	viper.SetDefault("track.targetEPSG", 3857)

	viper.SetConfigName("apexsim.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// FileUsed returns the path of the config file read by Load, or "" when
// running on defaults.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetLogLevel returns the configured log level name.
func GetLogLevel() string {
	return viper.GetString("logLevel")
}

// GetStorageConfig returns the results store settings.
func GetStorageConfig() StorageConfig {
	var cfg StorageConfig
	_ = viper.UnmarshalKey("storage", &cfg)
	return cfg
}

// GetInfluxConfig returns the telemetry export settings.
func GetInfluxConfig() InfluxConfig {
	var cfg InfluxConfig
	_ = viper.UnmarshalKey("influx", &cfg)
	return cfg
}

// GetGraylogConfig returns the GELF shipping settings.
func GetGraylogConfig() GraylogConfig {
	var cfg GraylogConfig
	_ = viper.UnmarshalKey("graylog", &cfg)
	return cfg
}

// GetSweepConfig returns the characterization sweep settings.
func GetSweepConfig() SweepConfig {
	var cfg SweepConfig
	_ = viper.UnmarshalKey("sweep", &cfg)
	return cfg
}
