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
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/autopsy/pkg/uci"
)

// LineDepth is the number of moves of the best line which are kept.
const LineDepth = 7

// Verdict is the engine's opinion of a single position. A verdict with an
// empty BestMove means the engine never produced a usable line.
type Verdict struct {
	BestMove string   `yaml:"best-move,omitempty"`
	Eval     Eval     `yaml:"eval"`
	Line     []string `yaml:"line,flow"`
	Depth    int      `yaml:"depth"`

	Elapsed time.Duration `yaml:"elapsed"`
}

// verdictOf builds a verdict from a finished search.
func verdictOf(info uci.Info) Verdict {
	verdict := Verdict{
		Eval:  Normalize(info.Score),
		Line:  truncate(info.PV),
		Depth: info.Depth,
	}

	if len(info.PV) > 0 {
		verdict.BestMove = info.PV[0]
	}

	return verdict
}

func truncate(line []string) []string {
	if len(line) > LineDepth {
		line = line[:LineDepth]
	}

	return append([]string{}, line...)
}

// tracker follows the best move of a single running search. It starts
// out waiting for the first usable update and tracks from then on.
type tracker struct {
	verdict    Verdict
	lastChange time.Time
	tracking   bool
}

// observe folds an update received at the given time into the tracked
// verdict. usable is false for updates without a line, which are ignored.
// A different leading move is a change and restarts the quiet period, the
// same one is a refinement and does not.
func (state *tracker) observe(info uci.Info, at time.Time) (changed, usable bool) {
	if len(info.PV) == 0 {
		return false, false
	}

	changed = !state.tracking || info.PV[0] != state.verdict.BestMove

	state.verdict = verdictOf(info)
	if changed {
		state.lastChange = at
		state.tracking = true
	}

	return changed, true
}

// stable reports whether the best move has stayed the same for period.
func (state *tracker) stable(at time.Time, period time.Duration) bool {
	return state.tracking && at.Sub(state.lastChange) >= period
}

// Detector produces a Verdict for a position, deciding when to stop
// listening to the engine.
type Detector struct {
	Oracle   Oracle
	Settings Settings

	// Now is used to measure elapsed time, time.Now if nil.
	Now func() time.Time
}

func (detector *Detector) now() time.Time {
	if detector.Now == nil {
		return time.Now()
	}

	return detector.Now()
}

// Verdict analyzes the given position within budget. Quick budgets and
// time mode run one fixed time search, otherwise the search is streamed
// till the best move is stable.
func (detector *Detector) Verdict(ctx context.Context, fen string, budget Budget) (Verdict, error) {
	if detector.Oracle == nil {
		return Verdict{}, ErrOracleUnavailable
	}

	start := detector.now()

	if budget.Quick || detector.Settings.Mode != ModeStability {
		info, err := detector.Oracle.Evaluate(ctx, fen, budget.Time)
		if err != nil {
			return Verdict{}, oracleError(err)
		}

		verdict := verdictOf(info)
		verdict.Elapsed = detector.now().Sub(start)
		return verdict, nil
	}

	return detector.converge(ctx, fen, start)
}

func (detector *Detector) converge(ctx context.Context, fen string, start time.Time) (Verdict, error) {
	stream, err := detector.Oracle.Stream(ctx, fen, detector.Settings.StreamLimit)
	if err != nil {
		return Verdict{}, oracleError(err)
	}

	// the search has to be stopped whichever way the loop is left
	defer stop(stream, fen)

	period := detector.Settings.StabilityPeriod

	var state tracker
	for {
		select {
		case <-ctx.Done():
			verdict := state.verdict
			verdict.Elapsed = detector.now().Sub(start)
			return verdict, ctx.Err()

		case info, ok := <-stream.Updates():
			if !ok {
				// the search ended on its own: take whatever we have
				verdict := state.verdict
				verdict.Elapsed = detector.now().Sub(start)
				return verdict, nil
			}

			at := info.At
			if at.IsZero() {
				at = detector.now()
			}

			changed, usable := state.observe(info, at)
			if !usable {
				continue
			}

			if changed {
				logrus.WithFields(logrus.Fields{
					"elapsed": at.Sub(start).Round(100 * time.Millisecond),
					"depth":   info.Depth,
					"move":    state.verdict.BestMove,
					"eval":    state.verdict.Eval,
				}).Debug("Best move changed")
			}

			if state.stable(at, period) {
				logrus.WithFields(logrus.Fields{
					"elapsed": at.Sub(start).Round(100 * time.Millisecond),
					"move":    state.verdict.BestMove,
				}).Debugf("Stable for %s", period)

				verdict := state.verdict
				verdict.Elapsed = at.Sub(start)
				return verdict, nil
			}
		}
	}
}
