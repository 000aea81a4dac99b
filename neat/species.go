package neat

import (
	"log"
	"math"
)

// Species represents a group of genetically similar genomes.
type Species struct {
	Key            int             // Unique identifier for the species.
	Created        int             // Generation number when the species was created.
	Representative *Genome         // The representative genome for this species.
	Members        map[int]*Genome // Genomes belonging to this species (maps genome ID -> genome).
}

// NewSpecies creates a new species.
func NewSpecies(key, generation int) *Species {
	return &Species{
		Key:     key,
		Created: generation,
		Members: make(map[int]*Genome),
	}
}

// Update adjusts the species' representative and members.
func (s *Species) Update(representative *Genome, members map[int]*Genome) {
	s.Representative = representative
	s.Members = members
}

// --------------------------- GenomeDistanceCache ---------------------------

type genomePair struct{ a, b int }

// GenomeDistanceCache stores calculated distances between genomes to avoid
// redundant computations. Distance is symmetric, so pairs are stored once.
type GenomeDistanceCache struct {
	distances map[genomePair]float64
	Hits      int
	Misses    int
}

// NewGenomeDistanceCache creates a new distance cache.
func NewGenomeDistanceCache() *GenomeDistanceCache {
	return &GenomeDistanceCache{distances: make(map[genomePair]float64)}
}

// Distance calculates or retrieves the distance between two genomes.
func (dc *GenomeDistanceCache) Distance(genome1, genome2 *Genome) float64 {
	key := genomePair{genome1.ID, genome2.ID}
	if key.a > key.b {
		key.a, key.b = key.b, key.a
	}

	if d, exists := dc.distances[key]; exists {
		dc.Hits++
		return d
	}

	dc.Misses++
	d := genome1.Distance(genome2)
	dc.distances[key] = d
	return d
}

// Values returns every cached distance.
func (dc *GenomeDistanceCache) Values() []float64 {
	all := make([]float64, 0, len(dc.distances))
	for _, d := range dc.distances {
		all = append(all, d)
	}
	return all
}

// --------------------------- SpeciesSet ---------------------------

// SpeciesSet manages the collection of species within a population.
type SpeciesSet struct {
	Species         map[int]*Species // Map species key -> Species
	GenomeToSpecies map[int]int      // Map genome ID -> species key
	Indexer         int              // Counter for assigning new species keys (start at 1)
	Config          *SpeciesSetConfig
	Logger          *log.Logger // Optional; nil keeps speciation silent.
}

// NewSpeciesSet creates a new species set manager.
func NewSpeciesSet(config *SpeciesSetConfig) *SpeciesSet {
	return &SpeciesSet{
		Species:         make(map[int]*Species),
		GenomeToSpecies: make(map[int]int),
		Indexer:         1,
		Config:          config,
	}
}

func (ss *SpeciesSet) logf(format string, args ...any) {
	if ss.Logger != nil {
		ss.Logger.Printf(format, args...)
	}
}

// Speciate partitions the population into species based on genetic distance.
// Each existing species first claims the genome closest to its previous
// representative; every other genome joins the closest species whose
// representative is within the compatibility threshold, or founds a new one.
func (ss *SpeciesSet) Speciate(population map[int]*Genome, generation int) {
	if len(population) == 0 {
		ss.Species = make(map[int]*Species)
		ss.GenomeToSpecies = make(map[int]int)
		return
	}

	threshold := ss.Config.CompatibilityThreshold
	distanceCache := NewGenomeDistanceCache()

	unspeciated := make(map[int]*Genome, len(population))
	for k, v := range population {
		unspeciated[k] = v
	}
	newRepresentatives := make(map[int]*Genome)
	newMembers := make(map[int][]int)

	// Existing species pick their new representative.
	for _, sid := range sortedKeys(ss.Species) {
		s := ss.Species[sid]
		if len(unspeciated) == 0 {
			break
		}
		if s.Representative == nil {
			continue
		}

		var closest *Genome
		minDist := math.Inf(1)
		for _, gid := range sortedKeys(unspeciated) {
			d := distanceCache.Distance(s.Representative, unspeciated[gid])
			if d < minDist {
				minDist = d
				closest = unspeciated[gid]
			}
		}
		newRepresentatives[sid] = closest
		newMembers[sid] = []int{closest.ID}
		delete(unspeciated, closest.ID)
	}

	// Remaining genomes join the closest compatible species.
	for _, gid := range sortedKeys(unspeciated) {
		g := unspeciated[gid]

		bestSpecies := -1
		minDist := math.Inf(1)
		for _, sid := range sortedKeys(newRepresentatives) {
			d := distanceCache.Distance(newRepresentatives[sid], g)
			if d < threshold && d < minDist {
				minDist = d
				bestSpecies = sid
			}
		}

		if bestSpecies != -1 {
			newMembers[bestSpecies] = append(newMembers[bestSpecies], gid)
		} else {
			newSID := ss.Indexer
			ss.Indexer++
			newRepresentatives[newSID] = g
			newMembers[newSID] = []int{gid}
		}
	}

	newSpeciesMap := make(map[int]*Species, len(newRepresentatives))
	newGenomeToSpeciesMap := make(map[int]int, len(population))
	for _, sid := range sortedKeys(newRepresentatives) {
		representative := newRepresentatives[sid]
		s := ss.Species[sid]
		if s == nil {
			s = NewSpecies(sid, generation)
			ss.logf("created species %d represented by genome %d", sid, representative.ID)
		}

		memberMap := make(map[int]*Genome, len(newMembers[sid]))
		for _, gid := range newMembers[sid] {
			memberMap[gid] = population[gid]
			newGenomeToSpeciesMap[gid] = sid
		}
		s.Update(representative, memberMap)
		newSpeciesMap[sid] = s
	}
	for sid := range ss.Species {
		if _, alive := newSpeciesMap[sid]; !alive {
			ss.logf("species %d died out", sid)
		}
	}

	ss.Species = newSpeciesMap
	ss.GenomeToSpecies = newGenomeToSpeciesMap

	if distances := distanceCache.Values(); len(distances) > 0 {
		ss.logf("mean genetic distance %.3f, stdev %.3f", Mean(distances), Stdev(distances))
	}
}

// GetSpeciesID returns the species ID for a given genome ID.
func (ss *SpeciesSet) GetSpeciesID(genomeID int) (int, bool) {
	sid, exists := ss.GenomeToSpecies[genomeID]
	return sid, exists
}

// GetSpecies returns the Species object for a given genome ID.
func (ss *SpeciesSet) GetSpecies(genomeID int) (*Species, bool) {
	sid, exists := ss.GenomeToSpecies[genomeID]
	if !exists {
		return nil, false
	}
	s, exists := ss.Species[sid]
	return s, exists
}
