package neat

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Activation identifies one of the fixed activation functions a node can apply
// to its aggregated input.
type Activation int

const (
	ActivationSigmoid Activation = iota
	ActivationTanh
	ActivationSin
	ActivationGauss
	ActivationRelu
	ActivationElu
	ActivationLelu
	ActivationSelu
	ActivationSoftPlus
	ActivationIdentity
	ActivationClamped
	ActivationInv
	ActivationLog
	ActivationExp
	ActivationAbs
	ActivationHat
	ActivationSquare
	ActivationCube

	numActivations = int(ActivationCube) + 1
)

// SELU constants.
const (
	seluLambda = 1.0507009873554805
	seluAlpha  = 1.6732632423543772
)

// activationNames maps each variant to the name used in configuration files.
var activationNames = [numActivations]string{
	"sigmoid", "tanh", "sin", "gauss", "relu", "elu", "lelu", "selu", "softplus",
	"identity", "clamped", "inv", "log", "exp", "abs", "hat", "square", "cube",
}

// Activations lists every activation variant in declaration order.
func Activations() []Activation {
	all := make([]Activation, numActivations)
	for i := range all {
		all[i] = Activation(i)
	}
	return all
}

// ParseActivation resolves a configuration name (case-insensitive) to its variant.
func ParseActivation(name string) (Activation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range activationNames {
		if n == name {
			return Activation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown activation function: %s", name)
}

// RandomActivation draws a variant uniformly from the full set.
func RandomActivation(rng *rand.Rand) Activation {
	return Activation(rng.Intn(numActivations))
}

// String returns the configuration name of the variant.
func (a Activation) String() string {
	if a < 0 || int(a) >= numActivations {
		return fmt.Sprintf("Activation(%d)", int(a))
	}
	return activationNames[a]
}

// Activate applies the function to x. Inputs are clamped where needed so the
// result is always finite for finite x.
func (a Activation) Activate(x float64) float64 {
	switch a {
	case ActivationSigmoid:
		z := clamp(5*x, -60, 60)
		return 1 / (1 + math.Exp(-z))
	case ActivationTanh:
		return math.Tanh(clamp(2.5*x, -60, 60))
	case ActivationSin:
		return math.Sin(clamp(5*x, -60, 60))
	case ActivationGauss:
		z := clamp(x, -3.4, 3.4)
		return -5 * z * z
	case ActivationRelu:
		if x > 0 {
			return x
		}
		return 0
	case ActivationElu:
		if x > 0 {
			return x
		}
		return math.Expm1(x)
	case ActivationLelu:
		if x > 0 {
			return x
		}
		return 0.005 * x
	case ActivationSelu:
		if x > 0 {
			return seluLambda * x
		}
		return seluLambda * seluAlpha * math.Expm1(x)
	case ActivationSoftPlus:
		z := clamp(5*x, -60, 60)
		return 0.2 * math.Log10(1+math.Exp(z))
	case ActivationIdentity:
		return x
	case ActivationClamped:
		return clamp(x, -1, 1)
	case ActivationInv:
		if x == 0 {
			return 0
		}
		return 1 / x
	case ActivationLog:
		return math.Log10(math.Max(x, 1e-7))
	case ActivationExp:
		return math.Exp(clamp(x, -60, 60))
	case ActivationAbs:
		return math.Abs(x)
	case ActivationHat:
		return math.Max(0, 1-math.Abs(x))
	case ActivationSquare:
		return x * x
	case ActivationCube:
		return x * x * x
	default:
		panic(fmt.Sprintf("neat: invalid activation %d", int(a)))
	}
}
