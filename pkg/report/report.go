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
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"laptudirm.com/x/autopsy/pkg/analysis"
)

// Swings beyond DecidedSwing only happen when a mate appears or vanishes.
const (
	DecidedSwing = 100
	SeriousSwing = -3
	MistakeSwing = -1
)

// Notation renders engine lines for display.
type Notation interface {
	Line(fen string, line []string) []string
}

// Printer prints analysis results in a human readable form.
type Printer struct {
	w        io.Writer
	notation Notation
}

// New returns a printer writing to w. Lines are printed as they are if
// notation is nil.
func New(w io.Writer, notation Notation) *Printer {
	return &Printer{w: w, notation: notation}
}

func (printer *Printer) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(printer.w, format, a...)
}

func (printer *Printer) line(fen string, line []string) []string {
	if printer.notation == nil {
		return line
	}

	return printer.notation.Line(fen, line)
}

// Header prints the players and the result of the game.
func (printer *Printer) Header(white, black, result string) {
	rows := []string{
		fmt.Sprintf(" White  | %s", white),
		fmt.Sprintf(" Black  | %s", black),
		fmt.Sprintf(" Result | %s", result),
	}

	printer.printf("╔%s╗\n", strings.Repeat("═", width))
	for _, row := range rows {
		printer.printf("║%s║\n", padRight(row, width))
	}
	printer.printf("╚%s╝\n\n", strings.Repeat("═", width))
}

// WorstMoves prints the given moves, worst first, with the line the engine
// preferred for each.
func (printer *Printer) WorstMoves(worst []analysis.Record) {
	printer.printf("Moves with the largest evaluation drops:\n\n")

	for i, record := range worst {
		printer.printf("%2d. Move %2d. %-5s played %s\n", i+1, record.MoveNumber, record.Player, record.SAN)
		printer.printf(
			"    Evaluation change: %s pawns (analysis time: %s)\n",
			record.Swing, seconds(record.TotalTime()),
		)

		if record.Before.BestMove != "" {
			line := printer.line(record.PreFEN, record.Before.Line)
			if len(line) > 0 {
				printer.printf("    Engine preferred: %s\n", line[0])
				printer.printf("    Better continuation: %s\n", strings.Join(line, " "))
			}
		}

		switch swing := record.Swing.Pawns; {
		case math.Abs(swing) > DecidedSwing:
			printer.printf("    \x1b[36mNOTE\x1b[0m: the game was already decided, large swings are expected\n")
			printer.printf("    Look at earlier moves for meaningful mistakes\n")
		case swing < SeriousSwing:
			printer.printf("    \x1b[31mSERIOUS MISTAKE\x1b[0m: large evaluation drop indicates a major error\n")
		case swing < MistakeSwing:
			printer.printf("    \x1b[33mMISTAKE\x1b[0m: position significantly worsened\n")
		}

		printer.printf("\n")
	}
}

// Assessment sums up where the game turned.
func (printer *Printer) Assessment(worst []analysis.Record) {
	printer.printf("Assessment:\n")

	if len(worst) == 0 {
		printer.printf("  No decisive mistakes detected within the configured thresholds.\n")
	} else {
		largest := worst[0]
		printer.printf(
			"  Largest swing: Move %d. %s played %s, evaluation changed by %s pawns\n",
			largest.MoveNumber, largest.Player, largest.SAN, largest.Swing,
		)
	}

	printer.printf("  Large changes in already won or lost positions carry less insight,\n")
	printer.printf("  the earliest large drops show where the game turned.\n\n")

	printer.printf("Analysis notes:\n")
	printer.printf("  - Evaluation change is how much the mover's position changed after the move\n")
	printer.printf("  - Negative values mean the move worsened the position, positive values\n")
	printer.printf("    mean it improved it\n")
	printer.printf("  - The better continuation is the line the engine preferred instead\n\n")

	var total time.Duration
	for _, record := range worst {
		total += record.TotalTime()
	}

	printer.printf("Time spent on the reported moves: %s\n", seconds(total))
}

// Debug prints the evaluations of every ply.
func (printer *Printer) Debug(records []analysis.Record) {
	const row = " %4s %3s %-5s %-8s %9s %9s %9s "

	printer.printf("╔%s╗\n", strings.Repeat("═", width))
	printer.printf("║"+row+"║\n", "No.", "Ply", "Side", "Played", "Before", "After", "Swing")
	printer.printf("╠%s╣\n", strings.Repeat("═", width))
	for _, record := range records {
		printer.printf(
			"║"+row+"║\n",
			fmt.Sprint(record.MoveNumber), fmt.Sprint(record.Ply), record.Player, record.SAN,
			record.Before.Eval, record.After, record.Swing,
		)
	}
	printer.printf("╚%s╝\n\n", strings.Repeat("═", width))
}

// width is the inner width of printed boxes.
const width = 55

// padRight pads s with spaces till its display width reaches n.
func padRight(s string, n int) string {
	if w := runewidth.StringWidth(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}

	return s
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
