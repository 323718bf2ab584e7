package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/beanbocchi/lakeprobe/pkg/validator"
)

// EnvPrefix prefixes every environment override, e.g. LAKEPROBE_TRANSFER_TIMEOUT.
const EnvPrefix = "LAKEPROBE"

var (
	mu      sync.RWMutex
	current *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.addSource", false)

	v.SetDefault("backend.type", "datalake")
	v.SetDefault("datalake.endpoint", "https://%s.dfs.core.windows.net")
	v.SetDefault("local.root", "./lakeprobe-data")

	v.SetDefault("transfer.timeout", 300*time.Second)
	v.SetDefault("transfer.chunkSize", 0)
	v.SetDefault("transfer.concurrency", 0)
	v.SetDefault("transfer.progressInterval", time.Second)

	v.SetDefault("generator.chunkSize", 10*1024)
	v.SetDefault("generator.exactSize", false)

	v.SetDefault("verify.enabled", false)
	v.SetDefault("history.path", "")
}

// Load reads defaults, the optional YAML file at path and LAKEPROBE_* env
// overrides, validates the result and makes it the current config.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	mu.Lock()
	current = &cfg
	mu.Unlock()

	return &cfg, nil
}

// GetConfig returns the config from the last successful Load.
func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		panic(errors.New("config not loaded"))
	}
	return current
}
