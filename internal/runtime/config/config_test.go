package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.Engine)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	require.NoError(t, cfg.Validate())
}

func TestConfigGetters(t *testing.T) {
	cfg := &Config{
		Engine:           "lua",
		LuaSkipStdLibs:   true,
		LuaRegistrySize:  1024,
		LuaCallStackSize: 256,
		ScriptPath:       "/srv/scripts",
	}

	assert.Equal(t, "lua", cfg.GetEngine())
	assert.True(t, cfg.GetLuaSkipStdLibs())
	assert.Equal(t, 1024, cfg.GetLuaRegistrySize())
	assert.Equal(t, 256, cfg.GetLuaCallStackSize())
	assert.Equal(t, "/srv/scripts", cfg.GetScriptPath())
}

func TestGetShutdownTimeout(t *testing.T) {
	assert.Equal(t, DefaultShutdownTimeout, (&Config{}).GetShutdownTimeout())
	assert.Equal(t, time.Second, (&Config{ShutdownTimeout: time.Second}).GetShutdownTimeout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"zero value is valid", Config{}, ""},
		{"unknown engine is lenient", Config{Engine: "custom"}, ""},
		{"negative registry size", Config{LuaRegistrySize: -1}, "registry size"},
		{"negative call stack", Config{LuaCallStackSize: -1}, "call stack"},
		{"negative max modules", Config{MaxModules: -1}, "max modules"},
		{"negative shutdown timeout", Config{ShutdownTimeout: -time.Second}, "timeout"},
		{"metrics without address", Config{MetricsEnabled: true}, "address is required"},
		{"metrics with address", Config{MetricsEnabled: true, MetricsAddr: ":2112"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Config{LuaRegistrySize: -1, MaxModules: -5}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry size")
	assert.Contains(t, err.Error(), "max modules")
}

func TestValidateConfig(t *testing.T) {
	assert.Error(t, ValidateConfig(nil))
	assert.NoError(t, ValidateConfig(&Config{}))
}
