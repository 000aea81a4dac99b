package nn

import (
	"fmt"
	"sort"

	"github.com/baldhumanity/neat-genome/neat"
)

// neuralNode represents a node during network activation.
type neuralNode struct {
	gene   *neat.NodeGene
	inputs []incoming // Enabled incoming connections relevant to this node
}

type incoming struct {
	source int
	weight float64
}

// FeedForwardNetwork represents a phenotype network that can be activated.
// It is built from an acyclic genome and evaluates nodes in topological order.
type FeedForwardNetwork struct {
	NodeEvalOrder []int // Non-input node ids in evaluation order
	nodes         map[int]neuralNode
}

// CreateFeedForwardNetwork builds a runnable feed-forward network from a genome.
// Disabled connections are skipped; the ordering covers every connection so a
// genome that fails the acyclicity check is rejected.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to order genome %d: %w", g.ID, err)
	}

	net := &FeedForwardNetwork{
		NodeEvalOrder: make([]int, 0, len(order)),
		nodes:         make(map[int]neuralNode, len(order)),
	}
	for _, id := range order {
		gene := g.Nodes[id]
		if gene.IsInput() {
			// Input values come from the caller; edges into an input are never evaluated.
			continue
		}
		node := neuralNode{gene: gene.Copy()}
		for _, cid := range sortedConnIDs(gene.Incoming) {
			conn := g.Connections[cid]
			if !conn.Enabled {
				continue
			}
			node.inputs = append(node.inputs, incoming{source: conn.Source, weight: conn.Weight})
		}
		net.nodes[id] = node
		net.NodeEvalOrder = append(net.NodeEvalOrder, id)
	}
	return net, nil
}

// Activate computes the network's output for one value per input node.
func (net *FeedForwardNetwork) Activate(inputs []float64) (float64, error) {
	if len(inputs) != neat.NumInputs {
		return 0, fmt.Errorf("mismatch between input count (%d) and network input nodes (%d)", len(inputs), neat.NumInputs)
	}

	nodeValues := make(map[int]float64, len(net.nodes)+neat.NumInputs)
	for i, v := range inputs {
		nodeValues[i] = v
	}

	var buffer []float64
	for _, id := range net.NodeEvalOrder {
		node := net.nodes[id]
		buffer = buffer[:0]
		for _, in := range node.inputs {
			buffer = append(buffer, nodeValues[in.source]*in.weight)
		}
		nodeValues[id] = node.gene.Activate(buffer)
	}
	return nodeValues[neat.OutputNodeID], nil
}

func sortedConnIDs(set map[int]bool) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
