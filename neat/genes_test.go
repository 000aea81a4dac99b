package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenomeConfig() *GenomeConfig {
	cfg := DefaultGenomeConfig()
	return &cfg
}

func randomNodeGene(rng *rand.Rand, id int, cfg *GenomeConfig) *NodeGene {
	n := NewNodeGene(id, cfg)
	n.Bias = uniform(rng, cfg.BiasMinValue, cfg.BiasMaxValue)
	n.Response = uniform(rng, cfg.ResponseMinValue, cfg.ResponseMaxValue)
	n.Activation = RandomActivation(rng)
	n.Aggregation = RandomAggregation(rng)
	return n
}

func TestNodeGeneActivate(t *testing.T) {
	cfg := testGenomeConfig()
	n := NewNodeGene(7, cfg)
	n.Bias = 0.5
	n.Response = 2.0
	n.Activation = ActivationIdentity
	n.Aggregation = AggregationSum

	assert.Equal(t, 0.5+2.0*6.0, n.Activate([]float64{1, 2, 3}))
	assert.Equal(t, 0.5, n.Activate(nil))
}

func TestNewNodeGeneUsesConfiguredDefaults(t *testing.T) {
	cfg := testGenomeConfig()
	cfg.ActivationDefault = "tanh"
	cfg.AggregationDefault = "max"
	cfg.BiasInitValue = 0.25

	n := NewNodeGene(9, cfg)
	assert.Equal(t, ActivationTanh, n.Activation)
	assert.Equal(t, AggregationMax, n.Aggregation)
	assert.Equal(t, 0.25, n.Bias)
	assert.Equal(t, 1.0, n.Response)
	assert.Empty(t, n.Incoming)
	assert.Empty(t, n.Outgoing)
}

func TestNodeGeneDistance(t *testing.T) {
	cfg := testGenomeConfig()
	cfg.CompatibilityWeightCoefficient = 0.5

	a := NewNodeGene(5, cfg)
	b := a.Copy()
	assert.Equal(t, 0.0, a.Distance(b, cfg))

	b.Bias += 1.0
	b.Response -= 0.5
	b.Activation = ActivationRelu
	assert.InDelta(t, (1.0+0.5+1.0)*0.5, a.Distance(b, cfg), 1e-12)

	b.Aggregation = AggregationMin
	assert.InDelta(t, (1.0+0.5+2.0)*0.5, a.Distance(b, cfg), 1e-12)
}

func TestGeneDistanceReflexiveAndSymmetric(t *testing.T) {
	cfg := testGenomeConfig()
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		a := randomNodeGene(rng, 5, cfg)
		b := randomNodeGene(rng, 5, cfg)
		assert.Equal(t, 0.0, a.Distance(a, cfg))
		assert.Equal(t, a.Distance(b, cfg), b.Distance(a, cfg))

		c := NewConnectionGene(3, 0, 4, uniform(rng, -30, 30))
		d := NewConnectionGene(3, 0, 4, uniform(rng, -30, 30))
		d.Enabled = rng.Float64() < 0.5
		assert.Equal(t, 0.0, c.Distance(c, cfg))
		assert.Equal(t, c.Distance(d, cfg), d.Distance(c, cfg))
	}
}

func TestNodeGeneCrossover(t *testing.T) {
	cfg := testGenomeConfig()
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		a := randomNodeGene(rng, 12, cfg)
		a.Incoming[1] = true
		b := randomNodeGene(rng, 12, cfg)
		b.Outgoing[2] = true

		child := a.Crossover(b, rng)
		assert.Equal(t, 12, child.ID)
		assert.Contains(t, []float64{a.Bias, b.Bias}, child.Bias)
		assert.Contains(t, []float64{a.Response, b.Response}, child.Response)
		assert.Contains(t, []Activation{a.Activation, b.Activation}, child.Activation)
		assert.Contains(t, []Aggregation{a.Aggregation, b.Aggregation}, child.Aggregation)
		assert.Equal(t, a.Incoming, child.Incoming)
		assert.Equal(t, a.Outgoing, child.Outgoing)
	}
}

func TestConnectionGeneCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	a := NewConnectionGene(6, 1, 4, 2.0)
	b := NewConnectionGene(6, 2, 7, -3.0)
	b.Enabled = false

	sawOther := false
	for i := 0; i < 50; i++ {
		child := a.Crossover(b, rng)
		assert.Equal(t, 6, child.ID)
		assert.Equal(t, 1, child.Source)
		assert.Equal(t, 4, child.Destination)
		assert.Contains(t, []float64{2.0, -3.0}, child.Weight)
		if child.Weight == -3.0 {
			sawOther = true
		}
	}
	assert.True(t, sawOther)
	assert.Equal(t, 2.0, a.Weight, "parent must not change")
}

func TestConnectionGeneCrossoverPanicsOnMisalignedGenes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := NewConnectionGene(1, 0, 4, 1.0)
	b := NewConnectionGene(2, 0, 4, 1.0)
	assert.Panics(t, func() { a.Crossover(b, rng) })
}

func TestConnectionGeneDistance(t *testing.T) {
	cfg := testGenomeConfig()
	cfg.CompatibilityWeightCoefficient = 2.0
	a := NewConnectionGene(1, 0, 4, 1.5)
	b := NewConnectionGene(1, 0, 4, -0.5)
	assert.Equal(t, 4.0, a.Distance(b, cfg))
	b.Enabled = false
	assert.Equal(t, 6.0, a.Distance(b, cfg))
}

func TestMutateFloatAttribute(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 100; i++ {
		assert.Equal(t, 3.0, mutateFloatAttribute(rng, 3.0, 0, 0, 10, -5, 5))
	}
	for i := 0; i < 1000; i++ {
		v := mutateFloatAttribute(rng, 3.0, 0, 1, 10, -5, 5)
		assert.GreaterOrEqual(t, v, -5.0)
		assert.LessOrEqual(t, v, 5.0)
	}
	negative := 0
	for i := 0; i < 1000; i++ {
		if mutateFloatAttribute(rng, 0, 0, 1, 0, -30, 30) < 0 {
			negative++
		}
	}
	// Replacement is uniform over the whole range, negative half included.
	assert.InDelta(t, 500, negative, 100)
}

func TestGeneMutationRespectsBounds(t *testing.T) {
	cfg := testGenomeConfig()
	cfg.BiasMutatePower = 50
	cfg.ResponseMutatePower = 50
	cfg.WeightMutatePower = 50
	cfg.BiasMutateRate, cfg.BiasReplaceRate = 0.6, 0.4
	cfg.ResponseMutateRate, cfg.ResponseReplaceRate = 0.6, 0.4
	cfg.WeightMutateRate, cfg.WeightReplaceRate = 0.6, 0.4

	rng := rand.New(rand.NewSource(13))
	n := NewNodeGene(8, cfg)
	c := NewConnectionGene(0, 0, 4, 1.0)
	for i := 0; i < 2000; i++ {
		n.Mutate(rng, cfg)
		c.Mutate(rng, cfg)
		require.True(t, n.Bias >= cfg.BiasMinValue && n.Bias <= cfg.BiasMaxValue)
		require.True(t, n.Response >= cfg.ResponseMinValue && n.Response <= cfg.ResponseMaxValue)
		require.True(t, c.Weight >= cfg.WeightMinValue && c.Weight <= cfg.WeightMaxValue)
	}
}

func TestConnectionGeneEnableToggle(t *testing.T) {
	cfg := testGenomeConfig()
	cfg.WeightMutateRate, cfg.WeightReplaceRate = 0, 0
	cfg.EnableProb = 1.0
	rng := rand.New(rand.NewSource(4))

	c := NewConnectionGene(0, 0, 4, 1.0)
	c.Mutate(rng, cfg)
	assert.False(t, c.Enabled)
	c.Mutate(rng, cfg)
	assert.True(t, c.Enabled)
	assert.Equal(t, 1.0, c.Weight)

	cfg.EnableProb = 0
	for i := 0; i < 20; i++ {
		c.Mutate(rng, cfg)
	}
	assert.True(t, c.Enabled)
}

func TestNodeGeneFunctionResampling(t *testing.T) {
	cfg := testGenomeConfig()
	cfg.ActivationMutateRate = 1.0
	cfg.AggregationMutateRate = 1.0
	rng := rand.New(rand.NewSource(21))

	n := NewNodeGene(6, cfg)
	activations := make(map[Activation]bool)
	aggregations := make(map[Aggregation]bool)
	for i := 0; i < 1000; i++ {
		n.Mutate(rng, cfg)
		activations[n.Activation] = true
		aggregations[n.Aggregation] = true
	}
	assert.Len(t, activations, len(Activations()))
	assert.Len(t, aggregations, len(Aggregations()))
}
