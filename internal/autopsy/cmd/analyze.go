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

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/autopsy/internal/autopsy/util"
	"laptudirm.com/x/autopsy/pkg/analysis"
	"laptudirm.com/x/autopsy/pkg/game"
	"laptudirm.com/x/autopsy/pkg/report"
)

// autopsy analyze
func Analyze() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [pgn-file]",
		Short: "Analyze a game and report its worst moves",
		Args:  cobra.MaximumNArgs(1),
		Long: heredoc.Doc(`analyze replays the first game of the given pgn file against
			a UCI engine, evaluating every position once, and reports the
			moves which worsened the mover's position the most.

			The opening and positions which are already won or lost are
			analyzed quickly, every other position is given to the engine
			till its best move stops changing (stability mode) or for a
			fixed time (time mode). Moves played from decided positions
			are left out of the report.

			If no pgn file is provided, a built-in sample game is analyzed.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("top") {
				cfg.Report.Top, _ = cmd.Flags().GetInt("top")
			}

			if cmd.Flags().Changed("debug") {
				cfg.Report.Debug, _ = cmd.Flags().GetBool("debug")
			}

			g, err := loadGame(args)
			if err != nil {
				return err
			}

			board, err := g.Board()
			if err != nil {
				return err
			}

			engine, err := startEngine(cfg)
			if err != nil {
				return err
			}

			defer func() { _ = engine.Kill() }()

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"Analyzing \x1b[34m%s\x1b[0m vs \x1b[34m%s\x1b[0m with %s (%d plies)\n\n",
				g.Tag("White"), g.Tag("Black"), engine.Name(), len(g.Moves),
			)

			analyzer := &analysis.Analyzer{
				Oracle:   engine,
				Settings: cfg.Analysis,
				Progress: func(record analysis.Record) {
					util.SetSpinnerSuffix(fmt.Sprintf(
						"%d. %s %s (%d/%d)",
						record.MoveNumber, record.Player, record.SAN, record.Ply+1, len(g.Moves),
					))
				},
			}

			util.SetSpinnerSuffix("Starting analysis")
			util.StartSpinner()
			records, err := analyzer.Analyze(cmd.Context(), board, g.Moves)
			util.PauseSpinner()

			if err != nil {
				if len(records) == 0 {
					return err
				}

				logrus.Errorf("Analysis stopped after %d plies: %v", len(records), err)
			}

			worst := analysis.WorstMoves(records, cfg.Analysis.DecidedThreshold, cfg.Report.Top)

			printer := report.New(cmd.OutOrStdout(), game.Notation{})
			if cfg.Report.Debug {
				printer.Debug(records)
			}

			printer.Header(g.Tag("White"), g.Tag("Black"), g.Tag("Result"))
			printer.WorstMoves(worst)
			printer.Assessment(worst)

			if output, _ := cmd.Flags().GetString("output"); output != "" {
				if err := report.WriteYAMLFile(output, report.NewDump(g.Tags, records, worst)); err != nil {
					return err
				}

				logrus.Infof("Analysis written to %s", output)
			}

			return err
		},
	}

	analysisFlags(cmd)
	cmd.Flags().Bool("debug", false, "Print the evaluations of every ply")
	cmd.Flags().IntP("top", "n", 0, "Number of worst moves to report")
	cmd.Flags().StringP("output", "o", "", "Write every ply's analysis to the given YAML file")

	return cmd
}
