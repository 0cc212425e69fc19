package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/argo-replay/pkg/marketdata"
)

func TestLoadConfig(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, 8000, cfg.Port)
		assert.Equal(t, marketdata.ProviderYahoo, cfg.MarketData.Provider)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		raw := "port: 9100\nmarket_data:\n  provider: binance\n"
		require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.Port)
		assert.Equal(t, marketdata.ProviderBinance, cfg.MarketData.Provider)
		// untouched keys keep their defaults
		assert.Equal(t, 64, cfg.MaxSeries)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("port: -1\n"), 0644))

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/config.yaml")
		assert.Error(t, err)
	})
}
