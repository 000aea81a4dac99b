package neat

import (
	"bytes"
	"encoding/gob"
	"sync"
)

// ConnectionKey identifies a structural feature by its ordered node pair.
type ConnectionKey struct {
	InNodeID  int
	OutNodeID int
}

// InnovationTracker hands out connection innovation numbers for a whole
// population. The same ordered node pair always maps to the same number, so
// genomes that grow the same edge independently still align in crossover.
// It is safe for concurrent use.
type InnovationTracker struct {
	mu       sync.Mutex
	nextID   int
	registry map[ConnectionKey]int
}

// NewInnovationTracker creates a tracker with the minimal topology registered:
// input i -> output has innovation number i.
func NewInnovationTracker() *InnovationTracker {
	t := &InnovationTracker{registry: make(map[ConnectionKey]int)}
	for i := 0; i < NumInputs; i++ {
		t.registry[ConnectionKey{InNodeID: i, OutNodeID: OutputNodeID}] = i
	}
	t.nextID = NumInputs
	return t
}

// ConnectionID returns the innovation number for src -> dst, allocating the
// next one if the pair has never been seen.
func (t *InnovationTracker) ConnectionID(src, dst int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := ConnectionKey{InNodeID: src, OutNodeID: dst}
	if id, ok := t.registry[key]; ok {
		return id
	}
	id := t.nextID
	t.nextID++
	t.registry[key] = id
	return id
}

// Lookup returns the innovation number registered for src -> dst, if any.
func (t *InnovationTracker) Lookup(src, dst int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.registry[ConnectionKey{InNodeID: src, OutNodeID: dst}]
	return id, ok
}

// Next reports the innovation number the next new pair will receive.
func (t *InnovationTracker) Next() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextID
}

// Registry returns a copy of every registered pair.
func (t *InnovationTracker) Registry() map[ConnectionKey]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := make(map[ConnectionKey]int, len(t.registry))
	for k, v := range t.registry {
		c[k] = v
	}
	return c
}

// innovationState is the wire form of an InnovationTracker.
type innovationState struct {
	NextID   int
	Registry map[ConnectionKey]int
}

// GobEncode snapshots the registry under the lock.
func (t *InnovationTracker) GobEncode() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(innovationState{NextID: t.nextID, Registry: t.registry}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode replaces the tracker's state with an encoded snapshot.
func (t *InnovationTracker) GobDecode(data []byte) error {
	var state innovationState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	if state.Registry == nil {
		state.Registry = make(map[ConnectionKey]int)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID = state.NextID
	t.registry = state.Registry
	return nil
}
