package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/artsel/internal/adapters/artic"
	"github.com/bnema/artsel/internal/domain"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".config/artsel"
	envPrefix  = "ARTSEL"

	baseURLKey     = "api.base_url"
	pageSizeKey    = "api.page_size"
	pageBaseKey    = "api.page_base"
	timeoutKey     = "api.timeout"
	fieldsKey      = "api.fields"
	cacheSizeKey   = "cache.size"
	cacheTTLKey    = "cache.ttl"
	bulkDefaultKey = "bulk.default"
	concurrencyKey = "export.concurrency"
)

type Config struct {
	API    APIConfig
	Cache  CacheConfig
	Bulk   BulkConfig
	Export ExportConfig
	// File is the config file that was read, empty when defaults were used.
	File string
}

type APIConfig struct {
	BaseURL  string
	PageSize int
	PageBase int
	Timeout  time.Duration
	Fields   []string
}

// CacheConfig sizes the page cache. Size 0 disables it.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

type BulkConfig struct {
	Default int
}

type ExportConfig struct {
	Concurrency int
}

// Load reads configuration into cfg. ARTSEL_ environment variables override
// the TOML file, which overrides the defaults. An explicit path must exist;
// the default location is optional.
func Load(cfg *viper.Viper, path string) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	setDefaults(cfg)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetConfigType(configType)
	if path != "" {
		cfg.SetConfigFile(path)
	} else {
		cfg.SetConfigName(configName)
		if homeDir, err := os.UserHomeDir(); err == nil {
			cfg.AddConfigPath(filepath.Join(homeDir, configDir))
		}
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	loaded := Config{
		API: APIConfig{
			BaseURL:  cfg.GetString(baseURLKey),
			PageSize: cfg.GetInt(pageSizeKey),
			PageBase: cfg.GetInt(pageBaseKey),
			Timeout:  cfg.GetDuration(timeoutKey),
			Fields:   splitFields(cfg.GetStringSlice(fieldsKey)),
		},
		Cache: CacheConfig{
			Size: cfg.GetInt(cacheSizeKey),
			TTL:  cfg.GetDuration(cacheTTLKey),
		},
		Bulk:   BulkConfig{Default: cfg.GetInt(bulkDefaultKey)},
		Export: ExportConfig{Concurrency: cfg.GetInt(concurrencyKey)},
		File:   cfg.ConfigFileUsed(),
	}

	if err := loaded.Validate(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, fmt.Errorf("%s is empty", baseURLKey))
	}
	if c.API.PageSize < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", pageSizeKey, c.API.PageSize))
	}
	if c.API.PageBase != 0 && c.API.PageBase != 1 {
		errs = append(errs, fmt.Errorf("%s must be 0 or 1, got %d", pageBaseKey, c.API.PageBase))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", timeoutKey, c.API.Timeout))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", cacheSizeKey, c.Cache.Size))
	}
	if c.Bulk.Default < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", bulkDefaultKey, c.Bulk.Default))
	}
	if c.Export.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", concurrencyKey, c.Export.Concurrency))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults(cfg *viper.Viper) {
	cfg.SetDefault(baseURLKey, artic.DefaultBaseURL)
	cfg.SetDefault(pageSizeKey, domain.DefaultPageSize)
	cfg.SetDefault(pageBaseKey, 1)
	cfg.SetDefault(timeoutKey, 15*time.Second)
	cfg.SetDefault(fieldsKey, artic.DefaultFields)
	cfg.SetDefault(cacheSizeKey, 32)
	cfg.SetDefault(cacheTTLKey, 5*time.Minute)
	cfg.SetDefault(bulkDefaultKey, domain.DefaultPageSize)
	cfg.SetDefault(concurrencyKey, 4)
}

// splitFields accepts both a TOML array and a comma separated env value.
func splitFields(raw []string) []string {
	var fields []string
	for _, entry := range raw {
		for _, field := range strings.Split(entry, ",") {
			if field = strings.TrimSpace(field); field != "" {
				fields = append(fields, field)
			}
		}
	}
	return fields
}
