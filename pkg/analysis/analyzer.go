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
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Record is the analysis of a single ply of the game.
type Record struct {
	Ply        int    `yaml:"ply"` // 0-based
	MoveNumber int    `yaml:"move-number"`
	Player     string `yaml:"player"`
	Move       string `yaml:"move"`
	SAN        string `yaml:"san"`

	PreFEN  string `yaml:"pre-fen"`
	PostFEN string `yaml:"post-fen"`

	// Before is the verdict on the position the move was played from,
	// from the mover's perspective. After is the evaluation of the
	// resulting position, from the opponent's.
	Before Verdict `yaml:"before"`
	After  Eval    `yaml:"after"`
	Swing  Eval    `yaml:"swing"`

	BeforeTime time.Duration `yaml:"before-time"`
	AfterTime  time.Duration `yaml:"after-time"`
}

// TotalTime is the time spent by the engine on both ends of the move.
func (record Record) TotalTime() time.Duration {
	return record.BeforeTime + record.AfterTime
}

// Analyzer analyzes every ply of a game in a single pass, evaluating each
// position exactly once.
type Analyzer struct {
	Oracle   Oracle
	Settings Settings

	// Progress, if set, is called with every record as soon as it's made.
	Progress func(Record)

	// Now is used to measure elapsed time, time.Now if nil.
	Now func() time.Time
}

// Analyze plays the given moves on the board, which must be at the
// starting position of the game, and returns a record for every ply
// analyzed. Analysis stops early once the game has ended. If an error is
// encountered midway, the records made till then are returned with it.
func (analyzer *Analyzer) Analyze(ctx context.Context, board Board, moves []string) ([]Record, error) {
	if analyzer.Oracle == nil {
		return nil, ErrOracleUnavailable
	}

	detector := &Detector{
		Oracle:   analyzer.Oracle,
		Settings: analyzer.Settings,
		Now:      analyzer.Now,
	}

	// the verdict on the position about to be moved from
	current, err := detector.Verdict(ctx, board.FEN(), analyzer.Settings.Quick())
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(moves))
	for ply, move := range moves {
		record := Record{
			Ply:        ply,
			MoveNumber: board.MoveNumber(),
			Player:     board.SideToMove(),
			Move:       move,
			PreFEN:     board.FEN(),
			Before:     current,
			BeforeTime: current.Elapsed,
		}

		record.SAN, err = board.SAN(move)
		if err != nil {
			logrus.WithField("move", move).Debugf("Unable to render move: %v", err)
			record.SAN = move
		}

		logrus.WithFields(logrus.Fields{
			"ply":    fmt.Sprintf("%d/%d", ply+1, len(moves)),
			"player": record.Player,
		}).Debugf("Analyzing %d. %s", record.MoveNumber, record.SAN)

		if err := board.MakeMove(move); err != nil {
			return records, fmt.Errorf("analysis: ply %d (%s): %w", ply+1, move, err)
		}

		record.PostFEN = board.FEN()

		budget := analyzer.Settings.Allocate(ply, current.Eval)
		next, err := detector.Verdict(ctx, record.PostFEN, budget)
		if err != nil {
			return records, err
		}

		record.After = next.Eval
		record.AfterTime = next.Elapsed
		record.Swing = Swing(record.Before.Eval, record.After)

		records = append(records, record)
		if analyzer.Progress != nil {
			analyzer.Progress(record)
		}

		current = next

		if over, reason := board.Terminal(); over {
			if ply+1 < len(moves) {
				logrus.Warnf("Game ended by %s with %d moves left, ignoring them", reason, len(moves)-ply-1)
			}

			break
		}
	}

	return records, nil
}
