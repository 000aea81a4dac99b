package neat

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const (
	// NumInputs is the number of reserved input nodes, ids 0..NumInputs-1.
	NumInputs = 4
	// OutputNodeID is the id of the single reserved output node.
	OutputNodeID = 4

	// maxNodeID bounds the id space hidden node ids are drawn from.
	maxNodeID = math.MaxInt32
)

var (
	ErrCycle               = errors.New("connection graph contains a cycle")
	ErrMissingReservedNode = errors.New("reserved node missing")
	ErrAdjacency           = errors.New("adjacency sets inconsistent with connections")
	ErrOutOfBounds         = errors.New("gene attribute out of bounds")
)

func isInputID(id int) bool    { return id >= 0 && id < NumInputs }
func isReservedID(id int) bool { return id >= 0 && id <= OutputNodeID }

// Genome represents an individual organism in the population.
// It consists of NodeGenes and ConnectionGenes keyed by id.
type Genome struct {
	ID          int                     // Unique identifier for this genome.
	Nodes       map[int]*NodeGene       // Map node ID -> NodeGene
	Connections map[int]*ConnectionGene // Map innovation number -> ConnectionGene
	Fitness     float64                 // Written by the evaluator, read by crossover.
	Config      *GenomeConfig

	innovations *InnovationTracker
}

// NewGenome creates a genome with the minimal topology: every input connected
// to the output with an enabled, unit-weight connection. innovations must be
// the tracker shared by the whole population.
func NewGenome(id int, config *GenomeConfig, innovations *InnovationTracker) *Genome {
	g := &Genome{
		ID:          id,
		Nodes:       make(map[int]*NodeGene),
		Connections: make(map[int]*ConnectionGene),
		Config:      config,
		innovations: innovations,
	}
	for nid := 0; nid <= OutputNodeID; nid++ {
		g.Nodes[nid] = NewNodeGene(nid, config)
	}
	for in := 0; in < NumInputs; in++ {
		g.addConnection(innovations.ConnectionID(in, OutputNodeID), in, OutputNodeID, 1.0)
	}
	return g
}

// Innovations returns the innovation tracker the genome allocates ids from.
func (g *Genome) Innovations() *InnovationTracker {
	return g.innovations
}

// String returns a short summary of the genome.
func (g *Genome) String() string {
	enabled := 0
	for _, c := range g.Connections {
		if c.Enabled {
			enabled++
		}
	}
	return fmt.Sprintf("Genome(ID: %d, Fitness: %.4f, Nodes: %d, Connections: %d (%d enabled))",
		g.ID, g.Fitness, len(g.Nodes), len(g.Connections), enabled)
}

// Copy creates a deep copy of the genome sharing the config and tracker.
func (g *Genome) Copy() *Genome {
	c := &Genome{
		ID:          g.ID,
		Nodes:       make(map[int]*NodeGene, len(g.Nodes)),
		Connections: make(map[int]*ConnectionGene, len(g.Connections)),
		Fitness:     g.Fitness,
		Config:      g.Config,
		innovations: g.innovations,
	}
	for id, n := range g.Nodes {
		c.Nodes[id] = n.Copy()
	}
	for id, conn := range g.Connections {
		c.Connections[id] = conn.Copy()
	}
	return c
}

// --------------------------- Structural edits ---------------------------

// addConnection inserts an enabled connection and registers it on both endpoints.
func (g *Genome) addConnection(id, src, dst int, weight float64) *ConnectionGene {
	c := NewConnectionGene(id, src, dst, weight)
	g.Connections[id] = c
	g.Nodes[src].Outgoing[id] = true
	g.Nodes[dst].Incoming[id] = true
	return c
}

// RemoveConnection deletes a connection and detaches it from both endpoints.
func (g *Genome) RemoveConnection(id int) bool {
	c, ok := g.Connections[id]
	if !ok {
		return false
	}
	if src, ok := g.Nodes[c.Source]; ok {
		delete(src.Outgoing, id)
	}
	if dst, ok := g.Nodes[c.Destination]; ok {
		delete(dst.Incoming, id)
	}
	delete(g.Connections, id)
	return true
}

// RemoveNode deletes a hidden node together with every incident connection.
// Reserved nodes are never removed.
func (g *Genome) RemoveNode(id int) bool {
	n, ok := g.Nodes[id]
	if !ok || isReservedID(id) {
		return false
	}
	for _, cid := range sortedKeys(n.Incoming) {
		g.RemoveConnection(cid)
	}
	for _, cid := range sortedKeys(n.Outgoing) {
		g.RemoveConnection(cid)
	}
	delete(g.Nodes, id)
	return true
}

// ConnectNodes adds an enabled connection src -> dst. It is a no-op returning
// false when either node is missing, the ordered pair is already connected, or
// the edge would close a cycle.
func (g *Genome) ConnectNodes(src, dst int, weight float64) bool {
	srcNode, ok := g.Nodes[src]
	if !ok {
		return false
	}
	if _, ok := g.Nodes[dst]; !ok {
		return false
	}
	for cid := range srcNode.Outgoing {
		if g.Connections[cid].Destination == dst {
			return false
		}
	}
	if g.createsCycle(src, dst) {
		return false
	}

	id := g.innovations.ConnectionID(src, dst)
	if _, exists := g.Connections[id]; exists {
		// Only reachable when the genome was built against another tracker.
		return false
	}
	g.addConnection(id, src, dst, clamp(weight, g.Config.WeightMinValue, g.Config.WeightMaxValue))
	return true
}

// createsCycle reports whether adding src -> dst would close a directed cycle,
// i.e. whether src is reachable from dst over enabled or disabled connections.
func (g *Genome) createsCycle(src, dst int) bool {
	if src == dst {
		return true
	}
	visited := map[int]bool{dst: true}
	queue := []int{dst}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for cid := range g.Nodes[current].Outgoing {
			next := g.Connections[cid].Destination
			if next == src {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// newNodeID draws an unused, non-reserved node id.
func (g *Genome) newNodeID(rng *rand.Rand) int {
	for {
		id := rng.Intn(maxNodeID)
		if isReservedID(id) {
			continue
		}
		if _, exists := g.Nodes[id]; !exists {
			return id
		}
	}
}

// --------------------------- Mutation ---------------------------

// Mutate applies structural mutation according to the configured policy and
// then mutates the attributes of every connection and node.
func (g *Genome) Mutate(rng *rand.Rand) {
	structural := []struct {
		prob   float64
		mutate func(*rand.Rand) bool
	}{
		{g.Config.NodeAddProb, g.MutateAddNode},
		{g.Config.NodeDeleteProb, g.MutateDeleteNode},
		{g.Config.ConnAddProb, g.MutateAddConnection},
		{g.Config.ConnDeleteProb, g.MutateDeleteConnection},
	}

	if g.Config.SingleMutation {
		total := 0.0
		last := -1
		for i, s := range structural {
			total += s.prob
			if s.prob > 0 {
				last = i
			}
		}
		if total > 0 {
			r := rng.Float64() * total
			chosen := last // guards against rounding at the top of the range
			for i, s := range structural {
				if r < s.prob {
					chosen = i
					break
				}
				r -= s.prob
			}
			structural[chosen].mutate(rng)
		}
	} else {
		for _, s := range structural {
			if rng.Float64() < s.prob {
				s.mutate(rng)
			}
		}
	}

	for _, id := range sortedKeys(g.Connections) {
		g.Connections[id].Mutate(rng, g.Config)
	}
	for _, id := range sortedKeys(g.Nodes) {
		g.Nodes[id].Mutate(rng, g.Config)
	}
}

// MutateAddNode splits a random enabled connection a -> b into a -> n -> b.
// The original connection is disabled, a -> n gets weight 1 and n -> b keeps
// the original weight.
func (g *Genome) MutateAddNode(rng *rand.Rand) bool {
	candidates := make([]int, 0, len(g.Connections))
	for _, id := range sortedKeys(g.Connections) {
		if g.Connections[id].Enabled {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return false
	}

	split := g.Connections[candidates[rng.Intn(len(candidates))]]
	split.Enabled = false

	nodeID := g.newNodeID(rng)
	g.Nodes[nodeID] = NewNodeGene(nodeID, g.Config)

	inID := g.innovations.ConnectionID(split.Source, nodeID)
	outID := g.innovations.ConnectionID(nodeID, split.Destination)
	g.addConnection(inID, split.Source, nodeID, 1.0)
	g.addConnection(outID, nodeID, split.Destination, split.Weight)
	return true
}

// MutateAddConnection picks a random source among non-input nodes and a
// random destination among all nodes, and connects them with a uniformly drawn
// weight if ConnectNodes accepts the pair. Self pairs and edges back into an
// ancestor are rejected by the cycle check.
func (g *Genome) MutateAddConnection(rng *rand.Rand) bool {
	nodeIDs := sortedKeys(g.Nodes)
	sources := make([]int, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if !isInputID(id) {
			sources = append(sources, id)
		}
	}

	src := sources[rng.Intn(len(sources))]
	dst := nodeIDs[rng.Intn(len(nodeIDs))]
	weight := uniform(rng, g.Config.WeightMinValue, g.Config.WeightMaxValue)
	return g.ConnectNodes(src, dst, weight)
}

// MutateDeleteConnection removes a uniformly chosen connection.
func (g *Genome) MutateDeleteConnection(rng *rand.Rand) bool {
	ids := sortedKeys(g.Connections)
	if len(ids) == 0 {
		return false
	}
	return g.RemoveConnection(ids[rng.Intn(len(ids))])
}

// MutateDeleteNode removes a uniformly chosen hidden node and its connections.
func (g *Genome) MutateDeleteNode(rng *rand.Rand) bool {
	hidden := make([]int, 0, len(g.Nodes))
	for _, id := range sortedKeys(g.Nodes) {
		if !isReservedID(id) {
			hidden = append(hidden, id)
		}
	}
	if len(hidden) == 0 {
		return false
	}
	return g.RemoveNode(hidden[rng.Intn(len(hidden))])
}

// --------------------------- Crossover ---------------------------

// ConfigureCrossover replaces the genome's genes with a child of parent1 and
// parent2. The dominant parent is parent1 only if its fitness is strictly
// greater; ties go to parent2. Every gene of the dominant parent is inherited,
// crossed with the other parent's gene of the same id when present. Parents
// are not modified.
func (g *Genome) ConfigureCrossover(parent1, parent2 *Genome, rng *rand.Rand) {
	dominant, other := parent2, parent1
	if parent1.Fitness > parent2.Fitness {
		dominant, other = parent1, parent2
	}

	g.Config = dominant.Config
	g.innovations = dominant.innovations
	g.Fitness = 0
	g.Nodes = make(map[int]*NodeGene, len(dominant.Nodes))
	g.Connections = make(map[int]*ConnectionGene, len(dominant.Connections))

	for _, id := range sortedKeys(dominant.Nodes) {
		n := dominant.Nodes[id]
		if o, ok := other.Nodes[id]; ok {
			g.Nodes[id] = n.Crossover(o, rng)
		} else {
			g.Nodes[id] = n.Copy()
		}
	}
	for _, id := range sortedKeys(dominant.Connections) {
		c := dominant.Connections[id]
		if o, ok := other.Connections[id]; ok {
			g.Connections[id] = c.Crossover(o, rng)
		} else {
			g.Connections[id] = c.Copy()
		}
	}
}

// Crossover returns a new genome with the given id bred from two parents.
func Crossover(id int, parent1, parent2 *Genome, rng *rand.Rand) *Genome {
	child := &Genome{ID: id}
	child.ConfigureCrossover(parent1, parent2, rng)
	return child
}

// --------------------------- Distance ---------------------------

// DistanceComponents breaks the compatibility distance into its parts.
// Deltas are sums of per-gene distances and are already scaled by the
// weight coefficient.
type DistanceComponents struct {
	MatchedNodes        int
	DisjointNodes       int
	NodeDelta           float64
	MatchedConnections  int
	DisjointConnections int
	ConnectionDelta     float64
}

// DistanceComponents aligns the two genomes by gene id.
func (g *Genome) DistanceComponents(other *Genome) DistanceComponents {
	var dc DistanceComponents

	for _, id := range unionKeys(g.Nodes, other.Nodes) {
		n1, ok1 := g.Nodes[id]
		n2, ok2 := other.Nodes[id]
		if ok1 && ok2 {
			dc.MatchedNodes++
			dc.NodeDelta += n1.Distance(n2, g.Config)
		} else {
			dc.DisjointNodes++
		}
	}
	for _, id := range unionKeys(g.Connections, other.Connections) {
		c1, ok1 := g.Connections[id]
		c2, ok2 := other.Connections[id]
		if ok1 && ok2 {
			dc.MatchedConnections++
			dc.ConnectionDelta += c1.Distance(c2, g.Config)
		} else {
			dc.DisjointConnections++
		}
	}
	return dc
}

// Distance calculates the compatibility distance used for speciation: the
// matched-gene deltas plus the disjoint gene count scaled by the disjoint
// coefficient.
func (g *Genome) Distance(other *Genome) float64 {
	dc := g.DistanceComponents(other)
	disjoint := float64(dc.DisjointNodes + dc.DisjointConnections)
	return dc.NodeDelta + dc.ConnectionDelta + g.Config.CompatibilityDisjointCoefficient*disjoint
}

func unionKeys[V any](a, b map[int]V) []int {
	keys := make([]int, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	return keys
}

// --------------------------- Invariants ---------------------------

// TopologicalOrder returns every node id ordered so that each connection,
// enabled or not, points forward. Ties are broken by ascending id.
func (g *Genome) TopologicalOrder() ([]int, error) {
	inDegree := make(map[int]int, len(g.Nodes))
	queue := []int{}
	for _, id := range sortedKeys(g.Nodes) {
		inDegree[id] = len(g.Nodes[id].Incoming)
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]int, 0, len(g.Nodes))
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)

		for _, cid := range sortedKeys(g.Nodes[u].Outgoing) {
			v := g.Connections[cid].Destination
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
		sort.Ints(queue)
	}

	if len(order) != len(g.Nodes) {
		return nil, fmt.Errorf("genome %d: %w (ordered %d of %d nodes)", g.ID, ErrCycle, len(order), len(g.Nodes))
	}
	return order, nil
}

// Validate checks the structural invariants: reserved nodes present, id
// uniqueness, adjacency consistency, acyclicity and attribute bounds.
func (g *Genome) Validate() error {
	for id := 0; id <= OutputNodeID; id++ {
		if _, ok := g.Nodes[id]; !ok {
			return fmt.Errorf("genome %d: node %d: %w", g.ID, id, ErrMissingReservedNode)
		}
	}

	pairs := make(map[ConnectionKey]int, len(g.Connections))
	for id, c := range g.Connections {
		if c.ID != id {
			return fmt.Errorf("genome %d: connection stored under %d has id %d: %w", g.ID, id, c.ID, ErrAdjacency)
		}
		src, ok := g.Nodes[c.Source]
		if !ok || !src.Outgoing[id] {
			return fmt.Errorf("genome %d: connection %d missing from source %d outgoing set: %w", g.ID, id, c.Source, ErrAdjacency)
		}
		dst, ok := g.Nodes[c.Destination]
		if !ok || !dst.Incoming[id] {
			return fmt.Errorf("genome %d: connection %d missing from destination %d incoming set: %w", g.ID, id, c.Destination, ErrAdjacency)
		}
		if prev, dup := pairs[c.Key()]; dup {
			return fmt.Errorf("genome %d: connections %d and %d share %d->%d: %w", g.ID, prev, id, c.Source, c.Destination, ErrAdjacency)
		}
		pairs[c.Key()] = id
		if c.Weight < g.Config.WeightMinValue || c.Weight > g.Config.WeightMaxValue {
			return fmt.Errorf("genome %d: connection %d weight %f: %w", g.ID, id, c.Weight, ErrOutOfBounds)
		}
	}

	for id, n := range g.Nodes {
		if n.ID != id {
			return fmt.Errorf("genome %d: node stored under %d has id %d: %w", g.ID, id, n.ID, ErrAdjacency)
		}
		for cid := range n.Incoming {
			if c, ok := g.Connections[cid]; !ok || c.Destination != id {
				return fmt.Errorf("genome %d: node %d lists stray incoming connection %d: %w", g.ID, id, cid, ErrAdjacency)
			}
		}
		for cid := range n.Outgoing {
			if c, ok := g.Connections[cid]; !ok || c.Source != id {
				return fmt.Errorf("genome %d: node %d lists stray outgoing connection %d: %w", g.ID, id, cid, ErrAdjacency)
			}
		}
		if n.Bias < g.Config.BiasMinValue || n.Bias > g.Config.BiasMaxValue {
			return fmt.Errorf("genome %d: node %d bias %f: %w", g.ID, id, n.Bias, ErrOutOfBounds)
		}
		if n.Response < g.Config.ResponseMinValue || n.Response > g.Config.ResponseMaxValue {
			return fmt.Errorf("genome %d: node %d response %f: %w", g.ID, id, n.Response, ErrOutOfBounds)
		}
	}

	if _, err := g.TopologicalOrder(); err != nil {
		return err
	}
	return nil
}
