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
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/autopsy/pkg/uci"
)

// ErrOracleUnavailable is returned when there is no engine to analyze
// with, or it refused to start a search.
var ErrOracleUnavailable = errors.New("analysis: oracle unavailable")

// Oracle evaluates positions, given as FEN strings. It is implemented by
// *uci.Engine.
type Oracle interface {
	// Evaluate searches the position for movetime and returns the final
	// result of the search.
	Evaluate(ctx context.Context, fen string, movetime time.Duration) (uci.Info, error)

	// Stream starts a search which runs for at most movetime, and
	// delivers every update as it arrives.
	Stream(ctx context.Context, fen string, movetime time.Duration) (uci.Stream, error)
}

// Board is the game being analyzed. Moves are in UCI notation.
type Board interface {
	FEN() string

	// SideToMove returns the name of the player to move.
	SideToMove() string

	// MoveNumber returns the full move number of the position.
	MoveNumber() int

	// SAN renders the given move in standard algebraic notation.
	SAN(move string) (string, error)

	MakeMove(move string) error

	// Terminal reports whether the game has ended and why.
	Terminal() (bool, string)
}

// oracleError classifies an error returned by the oracle. Cancellations
// are returned as is, everything else means the oracle is unusable.
func oracleError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
}

// stop ends a search. A search which won't stop leaves the oracle busy,
// so the failure is reported instead of being dropped.
func stop(stream uci.Stream, fen string) {
	if err := stream.Stop(); err != nil {
		logrus.WithField("fen", fen).Warnf("Search did not stop: %v", err)
	}
}
