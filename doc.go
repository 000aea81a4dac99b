// Package neat provides the genetic encoding used by NeuroEvolution of Augmenting Topologies (NEAT).
//
// A genome is a strictly acyclic graph of node genes and connection genes. The neat
// subpackage implements the operators an evolutionary loop needs: structural and parameter
// mutation, crossover aligned by innovation number, and the compatibility distance used for
// speciation. Population management and fitness evaluation are left to the caller.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	rng := rand.New(rand.NewSource(42))
//	innovations := neat.NewInnovationTracker() // shared by the whole population
//	a := neat.NewGenome(1, &config.Genome, innovations)
//	b := neat.NewGenome(2, &config.Genome, innovations)
//
//	a.Mutate(rng)
//	b.Mutate(rng)
//	a.Fitness, b.Fitness = evaluate(a), evaluate(b)
//
//	child := neat.Crossover(3, a, b, rng)
//	fmt.Println(child, a.Distance(b))
package neat
