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

package cmd

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/autopsy/pkg/analysis"
	"laptudirm.com/x/autopsy/pkg/game"
	"laptudirm.com/x/autopsy/pkg/report"
)

// autopsy deep
func Deep() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deep [pgn-file] --move number [--color white|black]",
		Short: "Analyze a single move of a game in depth",
		Args:  cobra.MaximumNArgs(1),
		Long: heredoc.Doc(`deep gives the position in which the chosen move was played
			to the engine and prints every change of its best line as it
			happens, along with how much better that line is than the move
			which was actually played.

			In stability mode the analysis ends once the best move has not
			changed for the stability period, in time mode it ends after
			the given duration.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			number, _ := cmd.Flags().GetInt("move")
			color, _ := cmd.Flags().GetString("color")
			duration, _ := cmd.Flags().GetDuration("duration")

			if duration <= 0 {
				return fmt.Errorf("duration must be positive, got %s", duration)
			}

			g, err := loadGame(args)
			if err != nil {
				return err
			}

			target, err := g.Target(number, color)
			if err != nil {
				return err
			}

			engine, err := startEngine(cfg)
			if err != nil {
				return err
			}

			defer func() { _ = engine.Kill() }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deeply analyzing move %d for %s...\n", number, color)
			if target.Move != "" {
				fmt.Fprintf(out, "Move played: \x1b[34m%s\x1b[0m\n", target.SAN)
			}
			fmt.Fprintln(out)

			printer := report.New(out, game.Notation{})
			deep := &analysis.DeepAnalyzer{Oracle: engine, Settings: cfg.Analysis}

			result, err := deep.Analyze(cmd.Context(), analysis.DeepRequest{
				FEN:      target.FEN,
				Move:     target.Move,
				AfterFEN: target.AfterFEN,
				Duration: duration,
			}, func(update analysis.DeepUpdate) {
				printer.DeepUpdate(target.FEN, update)
			})

			printer.DeepResult(target.FEN, result, cfg.Analysis.StabilityPeriod)
			return err
		},
	}

	analysisFlags(cmd)
	cmd.Flags().IntP("move", "m", 0, "Number of the move to analyze")
	cmd.Flags().String("color", "white", "Color which played the move, white or black")
	cmd.Flags().Duration("duration", 240*time.Second, "How long to analyze for in time mode")
	_ = cmd.MarkFlagRequired("move")

	return cmd
}
