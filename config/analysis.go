package config

import (
	"fmt"

	"github.com/mreynaud/schedcore/core/leveling"
)

// AnalysisConfig tunes the heuristic engines.
type AnalysisConfig struct {
	Leveling leveling.Config `json:"leveling"`
}

// SetDefaults applies the stock heuristic parameters.
func (c *AnalysisConfig) SetDefaults() {
	c.Leveling.SetDefaults()
}

// Validate checks the tuning parameters are usable.
func (c AnalysisConfig) Validate() error {
	if c.Leveling.AcceptableExtensionPercent < 0 {
		return fmt.Errorf("acceptable extension percent must not be negative")
	}
	if c.Leveling.MaxOffenderPeriods < 1 {
		return fmt.Errorf("max offender periods must be at least 1")
	}
	if c.Leveling.MaxDelayedTasksPerPeriod < 1 {
		return fmt.Errorf("max delayed tasks per period must be at least 1")
	}
	return nil
}
