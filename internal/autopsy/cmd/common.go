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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/autopsy/pkg/analysis"
	"laptudirm.com/x/autopsy/pkg/config"
	"laptudirm.com/x/autopsy/pkg/game"
	"laptudirm.com/x/autopsy/pkg/uci"
)

// analysisFlags registers the flags which override the analysis section
// of the configuration.
func analysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("engine", "", "Command used to start the UCI engine")
	cmd.Flags().String("mode", "", "Analysis mode, either time or stability")
}

// loadConfig loads the configuration file and applies any overrides
// provided on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("engine") {
		cfg.Engine.Cmd, _ = cmd.Flags().GetString("engine")
		cfg.Engine.Name = cfg.Engine.Cmd
	}

	if cmd.Flags().Changed("mode") {
		mode, _ := cmd.Flags().GetString("mode")
		cfg.Analysis.Mode = analysis.Mode(mode)
	}

	return cfg, cfg.Validate()
}

func loadGame(args []string) (*game.Game, error) {
	if len(args) == 0 {
		logrus.Info("No pgn provided, analyzing the sample game")
		return game.Sample(), nil
	}

	return game.LoadFile(args[0])
}

// startEngine starts the configured engine. An engine which fails to start
// leaves nothing to analyze with.
func startEngine(cfg config.Config) (*uci.Engine, error) {
	logrus.Debugf("Starting engine %s", cfg.Engine.Cmd)

	engine, err := uci.StartEngine(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("%w: starting %s: %v", analysis.ErrOracleUnavailable, cfg.Engine.Cmd, err)
	}

	return engine, nil
}
