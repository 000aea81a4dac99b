package neat

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the genome graph.
type NodeGene struct {
	ID          int // 0..NumInputs-1 are inputs, OutputNodeID is the output, anything else is hidden
	Bias        float64
	Response    float64
	Activation  Activation
	Aggregation Aggregation
	Incoming    map[int]bool // ids of connections whose destination is this node
	Outgoing    map[int]bool // ids of connections whose source is this node
}

// NewNodeGene creates a NodeGene with the configured initial attributes and no
// incident connections.
func NewNodeGene(id int, config *GenomeConfig) *NodeGene {
	return &NodeGene{
		ID:          id,
		Bias:        config.BiasInitValue,
		Response:    config.ResponseInitValue,
		Activation:  config.initialActivation(),
		Aggregation: config.initialAggregation(),
		Incoming:    make(map[int]bool),
		Outgoing:    make(map[int]bool),
	}
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Bias: %.3f, Response: %.3f, Activation: %s, Aggregation: %s, In: %d, Out: %d)",
		ng.ID, ng.Bias, ng.Response, ng.Activation, ng.Aggregation, len(ng.Incoming), len(ng.Outgoing))
}

// Copy creates a deep copy of the NodeGene, adjacency sets included.
func (ng *NodeGene) Copy() *NodeGene {
	return &NodeGene{
		ID:          ng.ID,
		Bias:        ng.Bias,
		Response:    ng.Response,
		Activation:  ng.Activation,
		Aggregation: ng.Aggregation,
		Incoming:    copySet(ng.Incoming),
		Outgoing:    copySet(ng.Outgoing),
	}
}

// IsInput reports whether the node is one of the reserved input nodes.
func (ng *NodeGene) IsInput() bool {
	return isInputID(ng.ID)
}

// Activate computes bias + response * activation(aggregation(inputs)).
func (ng *NodeGene) Activate(inputs []float64) float64 {
	return ng.Bias + ng.Response*ng.Activation.Activate(ng.Aggregation.Aggregate(inputs))
}

// Mutate adjusts the attributes of the NodeGene based on mutation rates in the config.
func (ng *NodeGene) Mutate(rng *rand.Rand, config *GenomeConfig) {
	ng.Bias = mutateFloatAttribute(rng, ng.Bias, config.BiasMutateRate, config.BiasReplaceRate, config.BiasMutatePower, config.BiasMinValue, config.BiasMaxValue)
	ng.Response = mutateFloatAttribute(rng, ng.Response, config.ResponseMutateRate, config.ResponseReplaceRate, config.ResponseMutatePower, config.ResponseMinValue, config.ResponseMaxValue)
	if rng.Float64() < config.ActivationMutateRate {
		ng.Activation = RandomActivation(rng)
	}
	if rng.Float64() < config.AggregationMutateRate {
		ng.Aggregation = RandomAggregation(rng)
	}
}

// Distance calculates the genetic distance between two NodeGenes based on their attributes.
func (ng *NodeGene) Distance(other *NodeGene, config *GenomeConfig) float64 {
	d := math.Abs(ng.Bias-other.Bias) + math.Abs(ng.Response-other.Response)
	if ng.Activation != other.Activation {
		d += 1.0
	}
	if ng.Aggregation != other.Aggregation {
		d += 1.0
	}
	return d * config.CompatibilityWeightCoefficient
}

// Crossover creates a new NodeGene inheriting each attribute from ng or other
// with equal probability. The child keeps ng's id and adjacency.
func (ng *NodeGene) Crossover(other *NodeGene, rng *rand.Rand) *NodeGene {
	child := ng.Copy()

	if rng.Float64() < 0.5 {
		child.Bias = other.Bias
	}
	if rng.Float64() < 0.5 {
		child.Response = other.Response
	}
	if rng.Float64() < 0.5 {
		child.Activation = other.Activation
	}
	if rng.Float64() < 0.5 {
		child.Aggregation = other.Aggregation
	}

	return child
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene represents a directed edge between two nodes in the genome.
// ID is the innovation number shared by every genome carrying the same edge.
type ConnectionGene struct {
	ID          int
	Source      int
	Destination int
	Weight      float64
	Enabled     bool
}

// NewConnectionGene creates an enabled ConnectionGene.
func NewConnectionGene(id, source, destination int, weight float64) *ConnectionGene {
	return &ConnectionGene{
		ID:          id,
		Source:      source,
		Destination: destination,
		Weight:      weight,
		Enabled:     true,
	}
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(ID: %d, %d->%d, Weight: %.3f, Enabled: %t)",
		cg.ID, cg.Source, cg.Destination, cg.Weight, cg.Enabled)
}

// Copy creates a copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}

// Key returns the ordered node pair of the connection.
func (cg *ConnectionGene) Key() ConnectionKey {
	return ConnectionKey{InNodeID: cg.Source, OutNodeID: cg.Destination}
}

// Mutate adjusts the weight and possibly toggles the enabled flag.
func (cg *ConnectionGene) Mutate(rng *rand.Rand, config *GenomeConfig) {
	cg.Weight = mutateFloatAttribute(rng, cg.Weight, config.WeightMutateRate, config.WeightReplaceRate, config.WeightMutatePower, config.WeightMinValue, config.WeightMaxValue)
	if rng.Float64() < config.EnableProb {
		cg.Enabled = !cg.Enabled
	}
}

// Distance calculates the genetic distance between two ConnectionGenes.
func (cg *ConnectionGene) Distance(other *ConnectionGene, config *GenomeConfig) float64 {
	d := math.Abs(cg.Weight - other.Weight)
	if cg.Enabled != other.Enabled {
		d += 1.0
	}
	return d * config.CompatibilityWeightCoefficient
}

// Crossover creates a new ConnectionGene inheriting weight and enabled flag
// from either parent. Topology always comes from cg. Both genes must carry the
// same innovation number; anything else is a programming error and panics.
func (cg *ConnectionGene) Crossover(other *ConnectionGene, rng *rand.Rand) *ConnectionGene {
	if cg.ID != other.ID {
		panic(fmt.Sprintf("neat: crossover of misaligned connection genes %d and %d", cg.ID, other.ID))
	}
	child := cg.Copy()

	if rng.Float64() < 0.5 {
		child.Weight = other.Weight
	}
	if rng.Float64() < 0.5 {
		child.Enabled = other.Enabled
	}

	return child
}

// --------------------------- Attribute Helpers ---------------------------

// mutateFloatAttribute perturbs with probability mutateRate, replaces with a
// uniform draw from [minVal, maxVal] with probability replaceRate, and
// otherwise returns value unchanged.
func mutateFloatAttribute(rng *rand.Rand, value, mutateRate, replaceRate, mutatePower, minVal, maxVal float64) float64 {
	r := rng.Float64()
	if r < mutateRate {
		return clamp(value+rng.NormFloat64()*mutatePower, minVal, maxVal)
	}
	if r < mutateRate+replaceRate {
		return uniform(rng, minVal, maxVal)
	}
	return value
}

func copySet(s map[int]bool) map[int]bool {
	c := make(map[int]bool, len(s))
	for k := range s {
		c[k] = true
	}
	return c
}

// sortedKeys returns the keys of m in ascending order so iteration is
// reproducible under a seeded rng.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
