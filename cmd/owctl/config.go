package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/arloliu/go-ownet/logger"
	"github.com/arloliu/go-ownet/owclient"
	"github.com/arloliu/go-ownet/ownet"
)

// owctl config.toml key mapping.
type fileConfig struct {
	Host          string   `toml:"host"`
	Port          int      `toml:"port"`
	Flags         []string `toml:"flags"`
	DialTimeout   string   `toml:"dial_timeout"`
	ReadTimeout   string   `toml:"read_timeout"`
	WriteTimeout  string   `toml:"write_timeout"`
	MaxKeepalives int      `toml:"max_keepalives"`
	LogLevel      string   `toml:"log_level"`
}

type appConfig struct {
	Host          string
	Port          int
	Flags         ownet.Flag
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxKeepalives int
	LogLevel      logger.Level
}

func defaultAppConfig() appConfig {
	return appConfig{
		Host:          "localhost",
		Port:          owclient.DefaultPort,
		Flags:         ownet.FlagPersistence,
		DialTimeout:   3 * time.Second,
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  5 * time.Second,
		MaxKeepalives: 100,
		LogLevel:      logger.WarnLevel,
	}
}

// loadConfig reads a TOML config file and overlays the defined keys on the defaults.
func loadConfig(path string) (appConfig, error) {
	cfg := defaultAppConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return appConfig{}, fmt.Errorf("load owctl config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return appConfig{}, fmt.Errorf("load owctl config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("flags") {
		flags, err := ownet.ParseFlags(raw.Flags)
		if err != nil {
			return appConfig{}, fmt.Errorf("load owctl config: %w", err)
		}
		cfg.Flags = flags
	}
	if meta.IsDefined("max_keepalives") {
		cfg.MaxKeepalives = raw.MaxKeepalives
	}
	if meta.IsDefined("log_level") {
		lv, ok := logger.ParseLevel(strings.ToLower(strings.TrimSpace(raw.LogLevel)))
		if !ok {
			return appConfig{}, fmt.Errorf("load owctl config: invalid log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = lv
	}

	durations := []struct {
		key    string
		value  string
		target *time.Duration
	}{
		{"dial_timeout", raw.DialTimeout, &cfg.DialTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.WriteTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return appConfig{}, fmt.Errorf("load owctl config: %s: %w", d.key, err)
		}
		*d.target = v
	}

	return cfg, nil
}

// options converts the config to client options.
func (c appConfig) options(log logger.Logger) []owclient.Option {
	return []owclient.Option{
		owclient.WithDefaultFlags(c.Flags),
		owclient.WithDialTimeout(c.DialTimeout),
		owclient.WithReadTimeout(c.ReadTimeout),
		owclient.WithWriteTimeout(c.WriteTimeout),
		owclient.WithMaxKeepalives(c.MaxKeepalives),
		owclient.WithLogger(log),
	}
}
