package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeYAML(t *testing.T) {
	data := []byte(`
base_dir: ./testdata
strategies:
  - name: services
    root: ./testdata/services
  - name: user
    root: ./testdata/user
    overridden: true
special_roots:
  - contract: example.com.Greeter
    path: ./testdata/greeter.descriptor
`)

	cfg, err := DecodeYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "./testdata", cfg.BaseDir)
	require.Len(t, cfg.Strategies, 2)
	assert.Equal(t, "user", cfg.Strategies[1].Name)
	assert.True(t, cfg.Strategies[1].Overridden)
	require.Len(t, cfg.SpecialRoots, 1)
	assert.Equal(t, "example.com.Greeter", cfg.SpecialRoots[0].Contract)
}

func TestDecodeTOML(t *testing.T) {
	data := []byte(`
base_dir = "./testdata"

[[strategies]]
name = "services"
root = "./testdata/services"
`)

	cfg, err := DecodeTOML(data)
	require.NoError(t, err)
	require.Len(t, cfg.Strategies, 1)
	assert.Equal(t, "services", cfg.Strategies[0].Name)
}

func TestDecode_DispatchesByExtension(t *testing.T) {
	toml := []byte("base_dir = \"x\"\n[[strategies]]\nname = \"a\"\nroot = \"r\"\n")
	cfg, err := Decode("manifest.toml", toml)
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.Strategies[0].Name)

	yaml := []byte("base_dir: x\nstrategies:\n  - name: a\n    root: r\n")
	cfg, err = Decode("manifest.yaml", yaml)
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.Strategies[0].Name)
}

func TestStrategyConfig_ValidateRejectsEmpty(t *testing.T) {
	cfg := &StrategyConfig{}
	assert.Error(t, cfg.Validate())
}

func TestStrategyConfig_ValidateRejectsBlankName(t *testing.T) {
	cfg := &StrategyConfig{Strategies: []StrategyEntry{{Root: "./x"}}}
	assert.Error(t, cfg.Validate())
}

func TestStrategyConfig_ToDiscoveryStrategiesPreservesOrder(t *testing.T) {
	cfg := &StrategyConfig{Strategies: []StrategyEntry{
		{Name: "services", Root: "./a"},
		{Name: "user", Root: "./b", Overridden: true},
	}}
	require.NoError(t, cfg.Validate())

	strategies := cfg.toDiscoveryStrategies()
	require.Len(t, strategies, 2)
	assert.Equal(t, "services", strategies[0].Name)
	assert.True(t, strategies[1].Overridden)
}
