package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, cfg.Genome.CompatibilityDisjointCoefficient)
	assert.Equal(t, 0.2, cfg.Genome.ConnAddProb)
	assert.Equal(t, 0.1, cfg.Genome.NodeAddProb)
	assert.True(t, cfg.Genome.SingleMutation)
	assert.Equal(t, "sigmoid", cfg.Genome.ActivationDefault)
	assert.Equal(t, "sum", cfg.Genome.AggregationDefault)
	assert.Equal(t, 2.0, cfg.SpeciesSet.CompatibilityThreshold)
}

func TestLoadConfigINI(t *testing.T) {
	path := writeConfigFile(t, "neat.ini", `
[DefaultGenome]
compat_weight_coefficient = 0.5
conn_add_prob      = 0.3   # inline comment
node_add_prob      = 0.25
single_mutation    = false
activation_default = Tanh
aggregation_default = max
weight_min_value   = -5.0
weight_max_value   = 5.0

[DefaultSpeciesSet]
compatibility_threshold = 3.5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Genome.CompatibilityWeightCoefficient)
	assert.Equal(t, 0.3, cfg.Genome.ConnAddProb)
	assert.Equal(t, 0.25, cfg.Genome.NodeAddProb)
	assert.False(t, cfg.Genome.SingleMutation)
	assert.Equal(t, -5.0, cfg.Genome.WeightMinValue)
	assert.Equal(t, 5.0, cfg.Genome.WeightMaxValue)
	assert.Equal(t, 3.5, cfg.SpeciesSet.CompatibilityThreshold)

	// Absent keys keep their defaults.
	assert.Equal(t, 0.2, cfg.Genome.ConnDeleteProb)
	assert.Equal(t, 0.5, cfg.Genome.BiasMutatePower)

	assert.Equal(t, ActivationTanh, cfg.Genome.initialActivation())
	assert.Equal(t, AggregationMax, cfg.Genome.initialAggregation())
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfigFile(t, "neat.yaml", `
genome:
  conn_add_prob: 0.4
  node_del_prob: 0.0
  single_mutation: false
  activation_default: relu
species_set:
  compatibility_threshold: 1.25
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, cfg.Genome.ConnAddProb)
	assert.Equal(t, 0.0, cfg.Genome.NodeDeleteProb)
	assert.False(t, cfg.Genome.SingleMutation)
	assert.Equal(t, ActivationRelu, cfg.Genome.initialActivation())
	assert.Equal(t, 1.25, cfg.SpeciesSet.CompatibilityThreshold)
	assert.Equal(t, 0.8, cfg.Genome.WeightMutateRate)
}

func TestLoadConfigExampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "examples", "xor", "xor-config.ini"))
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.SpeciesSet.CompatibilityThreshold)
	assert.Equal(t, 0.0, cfg.Genome.BiasInitValue)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfigFile(t, "bad.yaml", "genome: [1, 2")
	_, err = LoadConfig(path)
	assert.Error(t, err)

	path = writeConfigFile(t, "prob.ini", "[DefaultGenome]\nconn_add_prob = 1.5\n")
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conn_add_prob")

	path = writeConfigFile(t, "act.ini", "[DefaultGenome]\nactivation_default = swish\n")
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activation_default")
}

func TestGenomeConfigValidate(t *testing.T) {
	cases := map[string]func(*GenomeConfig){
		"mutate plus replace":  func(c *GenomeConfig) { c.WeightMutateRate, c.WeightReplaceRate = 0.8, 0.3 },
		"negative power":       func(c *GenomeConfig) { c.BiasMutatePower = -1 },
		"inverted bounds":      func(c *GenomeConfig) { c.ResponseMinValue, c.ResponseMaxValue = 2, 1 },
		"init outside bounds":  func(c *GenomeConfig) { c.BiasInitValue = 100 },
		"weight excludes unit": func(c *GenomeConfig) { c.WeightMinValue, c.WeightMaxValue = -0.5, 0.5 },
		"unknown aggregation":  func(c *GenomeConfig) { c.AggregationDefault = "median" },
		"negative coefficient": func(c *GenomeConfig) { c.CompatibilityDisjointCoefficient = -1 },
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultGenomeConfig()
			corrupt(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error")
		})
	}

	cfg := DefaultConfig()
	cfg.SpeciesSet.CompatibilityThreshold = -1
	assert.Error(t, cfg.Validate())
}
