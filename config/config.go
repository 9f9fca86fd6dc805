package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SystemConfig struct {
	Workdir  string `yaml:"workdir" json:"workdir"`
	Location string `yaml:"location" json:"location"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type RegistryConfig struct {
	// FlushDelaySec is the debounce window between a catalog mutation
	// and the durable write, in seconds.
	FlushDelaySec int `yaml:"flush_delay_sec" json:"flush_delay_sec"`
	// BackupCron schedules the daily snapshot backup job.
	BackupCron string `yaml:"backup_cron" json:"backup_cron"`
}

type AppConfig struct {
	System   SystemConfig   `yaml:"system" json:"system"`
	Web      WebConfig      `yaml:"web" json:"web"`
	Logger   LoggerConfig   `yaml:"logger" json:"logger"`
	Registry RegistryConfig `yaml:"registry" json:"registry"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		System: SystemConfig{
			Workdir:  "/var/billingd",
			Location: "Asia/Dhaka",
		},
		Web: WebConfig{
			Host: "127.0.0.1",
			Port: 1889,
		},
		Logger: LoggerConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/billingd/billingd.log",
		},
		Registry: RegistryConfig{
			FlushDelaySec: 5,
			BackupCron:    "0 3 * * *",
		},
	}
}

// LoadConfig reads the yaml file at path when it exists, then applies
// BILLINGD_* environment overrides on top of the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return nil, errors.Wrap(err, "read config")
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrap(err, "parse config")
			}
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("BILLINGD_WORKDIR"); v != "" {
		cfg.System.Workdir = v
	}
	if v := os.Getenv("BILLINGD_LOCATION"); v != "" {
		cfg.System.Location = v
	}
	if v := os.Getenv("BILLINGD_WEB_HOST"); v != "" {
		cfg.Web.Host = v
	}
	if v := os.Getenv("BILLINGD_WEB_PORT"); v != "" {
		cfg.Web.Port = cast.ToInt(v)
	}
	if v := os.Getenv("BILLINGD_LOGGER_MODE"); v != "" {
		cfg.Logger.Mode = v
	}
	if v := os.Getenv("BILLINGD_FLUSH_DELAY"); v != "" {
		cfg.Registry.FlushDelaySec = cast.ToInt(v)
	}
}

// BlobStorePath is where the durable catalog blob database lives.
func (c *AppConfig) BlobStorePath() string {
	return filepath.Join(c.System.Workdir, "catalog-store.bolt")
}
