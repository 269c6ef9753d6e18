package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-ownet/logger"
	"github.com/arloliu/go-ownet/ownet"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "owctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	require := require.New(t)

	path := writeConfig(t, `
host = "owserver.lan"
flags = ["persistence", "uncached", "fahrenheit"]
read_timeout = "2s"
log_level = "debug"
`)

	cfg, err := loadConfig(path)
	require.NoError(err)
	require.Equal("owserver.lan", cfg.Host)
	require.Equal(4304, cfg.Port)
	require.Equal(ownet.FlagPersistence|ownet.FlagUncached|ownet.TempFahrenheit, cfg.Flags)
	require.Equal(2*time.Second, cfg.ReadTimeout)
	require.Equal(3*time.Second, cfg.DialTimeout)
	require.Equal(logger.DebugLevel, cfg.LogLevel)
	require.Len(cfg.options(logger.NewMockLogger()), 6)
}

func TestLoadConfigNoFile(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, defaultAppConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		description string
		content     string
		errContains string
	}{
		{"unknown flag", `flags = ["persistence", "bogus"]`, "unknown flag"},
		{"bad duration", `dial_timeout = "soon"`, "dial_timeout"},
		{"bad level", `log_level = "loud"`, "invalid log_level"},
		{"unknown key", `hots = "typo"`, `unknown key "hots"`},
		{"syntax", `host = `, "load owctl config"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			require.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestParseValue(t *testing.T) {
	require.Equal(t, ownet.On, parseValue("ON"))
	require.Equal(t, ownet.Off, parseValue("false"))
	require.Equal(t, []byte("12.5"), parseValue("12.5"))
}
