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
)

// DeepRequest describes a single position to be looked at in depth.
type DeepRequest struct {
	FEN string

	// Move is the move actually played from the position, if any, and
	// AfterFEN the position it leads to.
	Move     string
	AfterFEN string

	// Duration bounds the analysis in time mode.
	Duration time.Duration
}

// DeepUpdate is reported every time the engine changes its mind.
type DeepUpdate struct {
	Elapsed time.Duration
	Initial bool
	Verdict Verdict

	// Advantage is how much better the best line is than the move
	// played, absent when there is nothing to compare with.
	Advantage Eval
}

// DeepResult is the outcome of a deep analysis.
type DeepResult struct {
	Verdict   Verdict
	Advantage Eval

	// Baseline is the evaluation of the move played, from the mover's
	// perspective.
	Baseline Eval

	Elapsed time.Duration

	// Stable is set if the analysis ended because the best move stopped
	// changing.
	Stable bool
}

// DeepAnalyzer streams the analysis of a single position, reporting every
// change of the best line as it happens.
type DeepAnalyzer struct {
	Oracle   Oracle
	Settings Settings

	// Now is used to measure elapsed time, time.Now if nil.
	Now func() time.Time
}

func (deep *DeepAnalyzer) now() time.Time {
	if deep.Now == nil {
		return time.Now()
	}

	return deep.Now()
}

// Analyze looks at the requested position till the best move is stable,
// in stability mode, or till the requested duration has passed, in time
// mode. report, if not nil, is called on every change of the best move.
func (deep *DeepAnalyzer) Analyze(ctx context.Context, request DeepRequest, report func(DeepUpdate)) (DeepResult, error) {
	if deep.Oracle == nil {
		return DeepResult{}, ErrOracleUnavailable
	}

	var result DeepResult

	if request.Move != "" && request.AfterFEN != "" {
		info, err := deep.Oracle.Evaluate(ctx, request.AfterFEN, deep.Settings.BaselineTime)
		if err != nil {
			return result, oracleError(err)
		}

		// the evaluation is from the opponent's perspective
		result.Baseline = Normalize(info.Score).Negate()
	}

	limit := deep.Settings.StreamLimit
	stability := deep.Settings.Mode == ModeStability
	if !stability {
		limit = request.Duration
	}

	start := deep.now()

	stream, err := deep.Oracle.Stream(ctx, request.FEN, limit)
	if err != nil {
		return result, oracleError(err)
	}

	defer stop(stream, request.FEN)

	finish := func(at time.Time) DeepResult {
		result.Elapsed = at.Sub(start)
		result.Advantage = result.Verdict.Eval.Sub(result.Baseline)
		return result
	}

	var state tracker
	initial := true
	for {
		select {
		case <-ctx.Done():
			return finish(deep.now()), ctx.Err()

		case info, ok := <-stream.Updates():
			if !ok {
				return finish(deep.now()), nil
			}

			at := info.At
			if at.IsZero() {
				at = deep.now()
			}

			changed, usable := state.observe(info, at)
			if !usable {
				continue
			}

			result.Verdict = state.verdict
			result.Verdict.Elapsed = at.Sub(start)

			if changed && report != nil {
				report(DeepUpdate{
					Elapsed:   at.Sub(start),
					Initial:   initial,
					Verdict:   result.Verdict,
					Advantage: result.Verdict.Eval.Sub(result.Baseline),
				})
			}

			initial = false

			if stability && state.stable(at, deep.Settings.StabilityPeriod) {
				logrus.Debugf("Best move stable for %s", deep.Settings.StabilityPeriod)
				result.Stable = true
				return finish(at), nil
			}

			if !stability && at.Sub(start) > request.Duration {
				return finish(at), nil
			}
		}
	}
}
