// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package analysis

import (
	"fmt"
	"time"
)

// Mode decides when the engine's opinion of a position is accepted.
type Mode string

const (
	// ModeTime gives the engine a fixed amount of time per position.
	ModeTime Mode = "time"

	// ModeStability listens to the engine till its best move has not
	// changed for the stability period.
	ModeStability Mode = "stability"
)

// Settings configures how much effort is spent on each position.
type Settings struct {
	Mode Mode `yaml:"mode"`

	// Plies before QuickPly are always analyzed with QuickTime.
	QuickPly  int           `yaml:"quick-ply"`
	QuickTime time.Duration `yaml:"quick-time"`
	DeepTime  time.Duration `yaml:"deep-time"`

	// Positions evaluated beyond ±DecidedThreshold pawns are considered
	// already won or lost.
	DecidedThreshold float64 `yaml:"decided-threshold"`

	StabilityPeriod time.Duration `yaml:"stability-period"`

	// StreamLimit is the time limit handed to the engine for searches
	// which are expected to be stopped on stability instead.
	StreamLimit time.Duration `yaml:"stream-limit"`

	// BaselineTime is spent on the move actually played during a deep
	// analysis, to have something to compare the best line against.
	BaselineTime time.Duration `yaml:"baseline-time"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Mode:             ModeStability,
		QuickPly:         50,
		QuickTime:        100 * time.Millisecond,
		DeepTime:         11 * time.Second,
		DecidedThreshold: 10,
		StabilityPeriod:  10 * time.Second,
		StreamLimit:      24 * time.Hour,
		BaselineTime:     10 * time.Second,
	}
}

func (settings Settings) Validate() error {
	switch settings.Mode {
	case ModeTime, ModeStability:
	default:
		return fmt.Errorf("analysis: unknown mode %q", settings.Mode)
	}

	for name, duration := range map[string]time.Duration{
		"quick-time":       settings.QuickTime,
		"deep-time":        settings.DeepTime,
		"stability-period": settings.StabilityPeriod,
		"stream-limit":     settings.StreamLimit,
		"baseline-time":    settings.BaselineTime,
	} {
		if duration <= 0 {
			return fmt.Errorf("analysis: %s must be positive, got %s", name, duration)
		}
	}

	if settings.QuickPly < 0 {
		return fmt.Errorf("analysis: quick-ply must not be negative, got %d", settings.QuickPly)
	}

	if settings.DecidedThreshold < 0 {
		return fmt.Errorf("analysis: decided-threshold must not be negative, got %v", settings.DecidedThreshold)
	}

	return nil
}

// Budget is the effort granted to the engine for a single position.
type Budget struct {
	Time time.Duration

	// Quick budgets are always spent in time mode.
	Quick bool
}

// Quick returns the budget for positions not worth a deep look.
func (settings Settings) Quick() Budget {
	return Budget{Time: settings.QuickTime, Quick: true}
}

// Allocate returns the budget for the position reached by the move at the
// given ply, given the evaluation of the position the move was played
// from. Openings and positions which are already decided get the quick
// budget, everything else the deep one.
func (settings Settings) Allocate(ply int, before Eval) Budget {
	if ply < settings.QuickPly || before.Exceeds(settings.DecidedThreshold) {
		return settings.Quick()
	}

	return Budget{Time: settings.DeepTime}
}
