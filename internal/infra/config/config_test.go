package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.InMemoryLedger())
	assert.Equal(t, uint64(3480), cfg.Rent.LamportsPerByteYear)
	assert.Equal(t, 2.0, cfg.Rent.ExemptionThreshold)
	assert.Equal(t, uint8(50), cfg.Rent.BurnPercent)
	assert.Equal(t, DefaultProgramID, cfg.Program.ID)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	pk, err := cfg.GetProgramID()
	require.NoError(t, err)
	assert.Equal(t, DefaultProgramID, pk.ToBase58())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NARRATIVES_MINT_LEDGER_PATH", "/var/lib/mint")
	t.Setenv("NARRATIVES_MINT_RENT_LAMPORTS_PER_BYTE_YEAR", "1000")
	t.Setenv("NARRATIVES_MINT_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.InMemoryLedger())
	assert.Equal(t, "/var/lib/mint", cfg.Ledger.Path)
	assert.Equal(t, uint64(1000), cfg.Rent.LamportsPerByteYear)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ledger:
  path: ./ledger
rent:
  exemption_threshold: 1.5
log:
  level: debug
secret:
  authority: projects/p/secrets/mint-authority/versions/latest
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./ledger", cfg.Ledger.Path)
	assert.Equal(t, 1.5, cfg.Rent.ExemptionThreshold)
	assert.Equal(t, uint64(3480), cfg.Rent.LamportsPerByteYear)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "projects/p/secrets/mint-authority/versions/latest", cfg.Secret.Authority)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Rent:    RentConfig{LamportsPerByteYear: 3480, ExemptionThreshold: 2, BurnPercent: 50},
			Program: ProgramConfig{ID: DefaultProgramID},
			Log:     LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty program id", func(c *Config) { c.Program.ID = "" }},
		{"bad program id", func(c *Config) { c.Program.ID = "0OIl" }},
		{"negative threshold", func(c *Config) { c.Rent.ExemptionThreshold = -1 }},
		{"burn over 100", func(c *Config) { c.Rent.BurnPercent = 101 }},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
