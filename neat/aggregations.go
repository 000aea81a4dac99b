package neat

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Aggregation identifies how a node combines its weighted inputs.
type Aggregation int

const (
	AggregationProduct Aggregation = iota
	AggregationSum
	AggregationMax
	AggregationMin
	AggregationMaxAbs
	AggregationMean

	numAggregations = int(AggregationMean) + 1
)

var aggregationNames = [numAggregations]string{"product", "sum", "max", "min", "maxabs", "mean"}

// Aggregations lists every aggregation variant in declaration order.
func Aggregations() []Aggregation {
	all := make([]Aggregation, numAggregations)
	for i := range all {
		all[i] = Aggregation(i)
	}
	return all
}

// ParseAggregation resolves a configuration name (case-insensitive) to its variant.
func ParseAggregation(name string) (Aggregation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range aggregationNames {
		if n == name {
			return Aggregation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown aggregation function: %s", name)
}

// RandomAggregation draws a variant uniformly from the full set.
func RandomAggregation(rng *rand.Rand) Aggregation {
	return Aggregation(rng.Intn(numAggregations))
}

func (a Aggregation) String() string {
	if a < 0 || int(a) >= numAggregations {
		return fmt.Sprintf("Aggregation(%d)", int(a))
	}
	return aggregationNames[a]
}

// Aggregate folds inputs into a single value. Every variant returns 0 for an
// empty slice, including Product.
func (a Aggregation) Aggregate(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0
	}
	switch a {
	case AggregationProduct:
		product := 1.0
		for _, v := range inputs {
			product *= v
		}
		return product
	case AggregationSum:
		return Sum(inputs)
	case AggregationMax:
		return MaxFloat(inputs)
	case AggregationMin:
		return MinFloat(inputs)
	case AggregationMaxAbs:
		// Keeps the sign of the element with the largest magnitude.
		best := inputs[0]
		for _, v := range inputs[1:] {
			if math.Abs(v) > math.Abs(best) {
				best = v
			}
		}
		return best
	case AggregationMean:
		return Mean(inputs)
	default:
		panic(fmt.Sprintf("neat: invalid aggregation %d", int(a)))
	}
}
