package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
)

// Snapshot holds a set of genomes together with the innovation registry they
// were grown against. The config is not saved; it is relinked on load.
type Snapshot struct {
	Genomes     map[int]*Genome
	Innovations *InnovationTracker
}

// SaveSnapshot writes genomes and their tracker to a gzip-compressed gob file.
func SaveSnapshot(filePath string, genomes map[int]*Genome, innovations *InnovationTracker) error {
	if innovations == nil {
		return fmt.Errorf("cannot save snapshot '%s' without an innovation registry", filePath)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(Snapshot{Genomes: genomes, Innovations: innovations}); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush snapshot '%s': %w", filePath, err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. Every genome is
// relinked to config and to the single restored tracker, then validated.
func LoadSnapshot(filePath string, config *GenomeConfig) (*Snapshot, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for snapshot: %w", err)
	}
	defer gzReader.Close()

	snapshot := &Snapshot{}
	if err := gob.NewDecoder(gzReader).Decode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snapshot.Innovations == nil {
		return nil, fmt.Errorf("snapshot '%s' carries no innovation registry", filePath)
	}
	if snapshot.Genomes == nil {
		snapshot.Genomes = make(map[int]*Genome)
	}

	for id, g := range snapshot.Genomes {
		g.Config = config
		g.innovations = snapshot.Innovations
		// gob drops empty maps, so adjacency sets of isolated nodes come back nil.
		if g.Nodes == nil {
			g.Nodes = make(map[int]*NodeGene)
		}
		if g.Connections == nil {
			g.Connections = make(map[int]*ConnectionGene)
		}
		for _, n := range g.Nodes {
			if n.Incoming == nil {
				n.Incoming = make(map[int]bool)
			}
			if n.Outgoing == nil {
				n.Outgoing = make(map[int]bool)
			}
		}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("snapshot genome %d is invalid: %w", id, err)
		}
	}
	return snapshot, nil
}
