package optimize

import "fmt"

// Objective weights the sub-objectives of the schedule score. All weights
// are non-negative; minimized terms are subtracted during evaluation.
type Objective struct {
	Conflicts  float64 `json:"conflicts"`
	Travel     float64 `json:"travel"`
	Efficiency float64 `json:"efficiency"`
	Balance    float64 `json:"balance"`
	Cost       float64 `json:"cost"`
}

// DefaultObjective returns the standard weighting: conflicts dominate,
// travel and efficiency matter, balance and cost break ties.
func DefaultObjective() Objective {
	return Objective{Conflicts: 1, Travel: 0.5, Efficiency: 1, Balance: 0.2, Cost: 0.1}
}

// Config defines optimizer settings.
type Config struct {
	// Genetic search is chosen automatically below these problem sizes.
	GeneticMaxEvents int `json:"genetic_max_events"`
	GeneticMaxSlots  int `json:"genetic_max_slots"`

	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	MutationRate   float64 `json:"mutation_rate"`
	TournamentK    int     `json:"tournament_k"`
	Elites         int     `json:"elites"`

	// TimeToleranceHours bounds how far a slot may sit from the event's
	// requested start and still be considered compatible.
	TimeToleranceHours float64 `json:"time_tolerance_hours"`

	Objective Objective `json:"objective"`
}

// SetDefaults fills unset fields with working values.
func (c *Config) SetDefaults() {
	if c.GeneticMaxEvents == 0 {
		c.GeneticMaxEvents = 12
	}
	if c.GeneticMaxSlots == 0 {
		c.GeneticMaxSlots = 20
	}
	if c.PopulationSize == 0 {
		c.PopulationSize = 30
	}
	if c.Generations == 0 {
		c.Generations = 40
	}
	if c.MutationRate == 0 {
		c.MutationRate = 0.1
	}
	if c.TournamentK == 0 {
		c.TournamentK = 5
	}
	if c.Elites == 0 {
		c.Elites = 4
	}
	if c.TimeToleranceHours == 0 {
		c.TimeToleranceHours = 48
	}
	if c.Objective == (Objective{}) {
		c.Objective = DefaultObjective()
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation_rate must be in [0,1]")
	}
	if c.PopulationSize < 2 {
		return fmt.Errorf("population_size must be at least 2")
	}
	if c.Elites >= c.PopulationSize {
		return fmt.Errorf("elites must be smaller than population_size")
	}
	return nil
}
