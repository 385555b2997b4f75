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

package report

import (
	"fmt"
	"strings"
	"time"

	"laptudirm.com/x/autopsy/pkg/analysis"
)

// DeepUpdate prints a change of the best line found in the position fen.
func (printer *Printer) DeepUpdate(fen string, update analysis.DeepUpdate) {
	line := printer.line(fen, update.Verdict.Line)
	elapsed := update.Elapsed.Seconds()

	if update.Initial || len(line) == 0 {
		printer.printf("[%6.1fs] Initial best variation (depth %d):\n", elapsed, update.Verdict.Depth)
	} else {
		printer.printf("[%6.1fs] Best move CHANGED to %s (depth %d):\n", elapsed, line[0], update.Verdict.Depth)
	}

	printer.printf("          Eval: %s\n", update.Verdict.Eval)
	if update.Advantage.Known {
		printer.printf("          PV advantage over move played: %s\n", Advantage(update.Advantage))
	}
	printer.printf("          PV  : %s\n", strings.Join(line, " "))
}

// DeepResult prints the outcome of a deep analysis of the position fen.
func (printer *Printer) DeepResult(fen string, result analysis.DeepResult, period time.Duration) {
	printer.printf("%s\n", strings.Repeat("-", 60))

	if result.Stable {
		printer.printf("Analysis complete after %s (best move stable for %s)\n", seconds(result.Elapsed), period)
	} else {
		printer.printf("Analysis complete after %s\n", seconds(result.Elapsed))
	}

	if result.Verdict.BestMove == "" {
		printer.printf("The engine didn't find a line\n")
		return
	}

	line := printer.line(fen, result.Verdict.Line)
	printer.printf("Final best variation: %s (Eval: %s)\n", strings.Join(line, " "), result.Verdict.Eval)
	if result.Advantage.Known {
		printer.printf("PV advantage over move played: %s\n", Advantage(result.Advantage))
	}
}

// Advantage formats how much better the best line is than the move played.
func Advantage(advantage analysis.Eval) string {
	switch {
	case !advantage.Known:
		return "None"
	case advantage.Pawns == 0:
		return "0.00 pawns (equal)"
	default:
		return fmt.Sprintf("%s pawns", advantage)
	}
}
