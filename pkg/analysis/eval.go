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
	"math"

	"laptudirm.com/x/autopsy/pkg/uci"
)

// MateScore is the magnitude forced mates are mapped to. It dominates any
// realistic material evaluation.
const MateScore = 99

// Eval is an evaluation in pawns from the perspective of the side to move
// in the position it was computed for. The zero value is an absent
// evaluation, which is different from a dead equal one.
type Eval struct {
	Pawns float64
	Known bool
}

// Pawns returns a known evaluation of the given value.
func Pawns(value float64) Eval {
	return Eval{Pawns: value, Known: true}
}

// Normalize converts an engine score into an Eval. Centipawns are scaled
// to pawns while mates are mapped onto ±MateScore, closer mates being at
// least as extreme as further ones.
func Normalize(score uci.Score) Eval {
	switch score.Kind {
	case uci.Centipawns:
		return Pawns(float64(score.Value) / 100)

	case uci.Mate:
		// mate 0 means the side to move has already been mated
		n := score.Value
		if n > 0 {
			return Pawns(math.Min(MateScore, float64(1000-n)))
		}

		return Pawns(math.Max(-MateScore, float64(-1000+n)))

	default:
		return Eval{}
	}
}

// Negate flips the perspective of the evaluation.
func (eval Eval) Negate() Eval {
	if !eval.Known {
		return eval
	}

	return Pawns(-eval.Pawns)
}

// Sub returns eval - other, which is absent if either of them is.
func (eval Eval) Sub(other Eval) Eval {
	if !eval.Known || !other.Known {
		return Eval{}
	}

	return Pawns(eval.Pawns - other.Pawns)
}

// Exceeds reports whether the evaluation is known and its magnitude is
// strictly more than threshold.
func (eval Eval) Exceeds(threshold float64) bool {
	return eval.Known && math.Abs(eval.Pawns) > threshold
}

func (eval Eval) String() string {
	if !eval.Known {
		return "None"
	}

	return fmt.Sprintf("%+.2f", eval.Pawns)
}

// MarshalYAML writes absent evaluations as null.
func (eval Eval) MarshalYAML() (any, error) {
	if !eval.Known {
		return nil, nil
	}

	return eval.Pawns, nil
}

// Swing returns the change in evaluation caused by a move, from the
// mover's perspective. before is relative to the mover, after to their
// opponent, so after is negated first. A positive swing means the move
// improved the mover's position.
func Swing(before, after Eval) Eval {
	return after.Negate().Sub(before)
}
