package neat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for the genome operators and the
// speciation helper.
type Config struct {
	Genome     GenomeConfig     `yaml:"genome"`
	SpeciesSet SpeciesSetConfig `yaml:"species_set"`
}

// GenomeConfig holds parameters specific to the structure and mutation of genomes.
type GenomeConfig struct {
	// --- Top-level Genome parameters ---
	CompatibilityDisjointCoefficient float64 `ini:"compat_disjoint_coefficient" yaml:"compat_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compat_weight_coefficient" yaml:"compat_weight_coefficient"`
	ConnAddProb                      float64 `ini:"conn_add_prob" yaml:"conn_add_prob"`
	ConnDeleteProb                   float64 `ini:"conn_del_prob" yaml:"conn_del_prob"`
	NodeAddProb                      float64 `ini:"node_add_prob" yaml:"node_add_prob"`
	NodeDeleteProb                   float64 `ini:"node_del_prob" yaml:"node_del_prob"`
	SingleMutation                   bool    `ini:"single_mutation" yaml:"single_mutation"` // exactly one structural mutation per Mutate call

	// --- Node Gene parameters ---
	BiasInitValue   float64 `ini:"bias_init_value" yaml:"bias_init_value"`
	BiasReplaceRate float64 `ini:"bias_replace_rate" yaml:"bias_replace_rate"`
	BiasMutateRate  float64 `ini:"bias_mutate_rate" yaml:"bias_mutate_rate"`
	BiasMutatePower float64 `ini:"bias_mutate_power" yaml:"bias_mutate_power"` // std-dev of the perturbation
	BiasMaxValue    float64 `ini:"bias_max_value" yaml:"bias_max_value"`
	BiasMinValue    float64 `ini:"bias_min_value" yaml:"bias_min_value"`

	ResponseInitValue   float64 `ini:"response_init_value" yaml:"response_init_value"`
	ResponseReplaceRate float64 `ini:"response_replace_rate" yaml:"response_replace_rate"`
	ResponseMutateRate  float64 `ini:"response_mutate_rate" yaml:"response_mutate_rate"`
	ResponseMutatePower float64 `ini:"response_mutate_power" yaml:"response_mutate_power"`
	ResponseMaxValue    float64 `ini:"response_max_value" yaml:"response_max_value"`
	ResponseMinValue    float64 `ini:"response_min_value" yaml:"response_min_value"`

	ActivationDefault    string  `ini:"activation_default" yaml:"activation_default"`
	ActivationMutateRate float64 `ini:"activation_mut_prob" yaml:"activation_mut_prob"`

	AggregationDefault    string  `ini:"aggregation_default" yaml:"aggregation_default"`
	AggregationMutateRate float64 `ini:"aggregation_mut_prob" yaml:"aggregation_mut_prob"`

	// --- Connection Gene parameters ---
	WeightReplaceRate float64 `ini:"weight_replace_rate" yaml:"weight_replace_rate"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate" yaml:"weight_mutate_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power" yaml:"weight_mutate_power"`
	WeightMaxValue    float64 `ini:"weight_max_value" yaml:"weight_max_value"`
	WeightMinValue    float64 `ini:"weight_min_value" yaml:"weight_min_value"`

	EnableProb float64 `ini:"enable_prob" yaml:"enable_prob"` // chance of toggling Enabled per mutation pass
}

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
}

// DefaultGenomeConfig returns the reference genome parameters.
func DefaultGenomeConfig() GenomeConfig {
	return GenomeConfig{
		CompatibilityDisjointCoefficient: 1.0,
		CompatibilityWeightCoefficient:   1.0,
		ConnAddProb:                      0.2,
		ConnDeleteProb:                   0.2,
		NodeAddProb:                      0.1,
		NodeDeleteProb:                   0.1,
		SingleMutation:                   true,

		BiasInitValue:   1.0,
		BiasReplaceRate: 0.1,
		BiasMutateRate:  0.7,
		BiasMutatePower: 0.5,
		BiasMaxValue:    30.0,
		BiasMinValue:    -30.0,

		ResponseInitValue:   1.0,
		ResponseReplaceRate: 0.1,
		ResponseMutateRate:  0.1,
		ResponseMutatePower: 0.1,
		ResponseMaxValue:    30.0,
		ResponseMinValue:    -30.0,

		ActivationDefault:     ActivationSigmoid.String(),
		ActivationMutateRate:  0.2,
		AggregationDefault:    AggregationSum.String(),
		AggregationMutateRate: 0.2,

		WeightReplaceRate: 0.1,
		WeightMutateRate:  0.8,
		WeightMutatePower: 0.5,
		WeightMaxValue:    30.0,
		WeightMinValue:    -30.0,

		EnableProb: 0.02,
	}
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	return &Config{
		Genome:     DefaultGenomeConfig(),
		SpeciesSet: SpeciesSetConfig{CompatibilityThreshold: 2.0},
	}
}

// LoadConfig loads configuration parameters from an INI file, or from YAML when
// the file extension is .yaml or .yml. Keys that are absent keep their defaults.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config '%s': %w", filePath, err)
		}
	default:
		cfg, err := ini.LoadSources(ini.LoadOptions{
			SpaceBeforeInlineComment: true, // "value # comment" strips the comment, "a#b" stays a value
		}, filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		if err := cfg.Section("DefaultGenome").MapTo(&config.Genome); err != nil {
			return nil, fmt.Errorf("failed to map [DefaultGenome] section: %w", err)
		}
		if err := cfg.Section("DefaultSpeciesSet").MapTo(&config.SpeciesSet); err != nil {
			return nil, fmt.Errorf("failed to map [DefaultSpeciesSet] section: %w", err)
		}
	}

	config.Genome.ActivationDefault = strings.TrimSpace(config.Genome.ActivationDefault)
	config.Genome.AggregationDefault = strings.TrimSpace(config.Genome.AggregationDefault)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every parameter range.
func (c *Config) Validate() error {
	if err := c.Genome.Validate(); err != nil {
		return err
	}
	if c.SpeciesSet.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	return nil
}

// Validate checks the genome parameters.
func (gc *GenomeConfig) Validate() error {
	if gc.CompatibilityDisjointCoefficient < 0 {
		return fmt.Errorf("config error: compat_disjoint_coefficient cannot be negative")
	}
	if gc.CompatibilityWeightCoefficient < 0 {
		return fmt.Errorf("config error: compat_weight_coefficient cannot be negative")
	}

	probabilities := []struct {
		name  string
		value float64
	}{
		{"conn_add_prob", gc.ConnAddProb},
		{"conn_del_prob", gc.ConnDeleteProb},
		{"node_add_prob", gc.NodeAddProb},
		{"node_del_prob", gc.NodeDeleteProb},
		{"bias_mutate_rate", gc.BiasMutateRate},
		{"bias_replace_rate", gc.BiasReplaceRate},
		{"response_mutate_rate", gc.ResponseMutateRate},
		{"response_replace_rate", gc.ResponseReplaceRate},
		{"weight_mutate_rate", gc.WeightMutateRate},
		{"weight_replace_rate", gc.WeightReplaceRate},
		{"activation_mut_prob", gc.ActivationMutateRate},
		{"aggregation_mut_prob", gc.AggregationMutateRate},
		{"enable_prob", gc.EnableProb},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", p.name)
		}
	}
	if gc.BiasMutateRate+gc.BiasReplaceRate > 1 {
		return fmt.Errorf("config error: bias_mutate_rate + bias_replace_rate cannot exceed 1")
	}
	if gc.ResponseMutateRate+gc.ResponseReplaceRate > 1 {
		return fmt.Errorf("config error: response_mutate_rate + response_replace_rate cannot exceed 1")
	}
	if gc.WeightMutateRate+gc.WeightReplaceRate > 1 {
		return fmt.Errorf("config error: weight_mutate_rate + weight_replace_rate cannot exceed 1")
	}

	if gc.BiasMutatePower < 0 || gc.ResponseMutatePower < 0 || gc.WeightMutatePower < 0 {
		return fmt.Errorf("config error: mutate powers cannot be negative")
	}
	if gc.BiasMaxValue < gc.BiasMinValue {
		return fmt.Errorf("config error: bias_max_value cannot be less than bias_min_value")
	}
	if gc.ResponseMaxValue < gc.ResponseMinValue {
		return fmt.Errorf("config error: response_max_value cannot be less than response_min_value")
	}
	if gc.WeightMaxValue < gc.WeightMinValue {
		return fmt.Errorf("config error: weight_max_value cannot be less than weight_min_value")
	}
	if gc.BiasInitValue < gc.BiasMinValue || gc.BiasInitValue > gc.BiasMaxValue {
		return fmt.Errorf("config error: bias_init_value must lie within [bias_min_value, bias_max_value]")
	}
	if gc.ResponseInitValue < gc.ResponseMinValue || gc.ResponseInitValue > gc.ResponseMaxValue {
		return fmt.Errorf("config error: response_init_value must lie within [response_min_value, response_max_value]")
	}
	if 1.0 < gc.WeightMinValue || 1.0 > gc.WeightMaxValue {
		// Minimal topology and split connections use unit weight.
		return fmt.Errorf("config error: weight range must contain 1.0")
	}

	if _, err := ParseActivation(gc.ActivationDefault); err != nil {
		return fmt.Errorf("config error: activation_default: %w", err)
	}
	if _, err := ParseAggregation(gc.AggregationDefault); err != nil {
		return fmt.Errorf("config error: aggregation_default: %w", err)
	}
	return nil
}

// initialActivation is the activation given to freshly created nodes.
func (gc *GenomeConfig) initialActivation() Activation {
	a, err := ParseActivation(gc.ActivationDefault)
	if err != nil {
		return ActivationSigmoid
	}
	return a
}

// initialAggregation is the aggregation given to freshly created nodes.
func (gc *GenomeConfig) initialAggregation() Aggregation {
	a, err := ParseAggregation(gc.AggregationDefault)
	if err != nil {
		return AggregationSum
	}
	return a
}
