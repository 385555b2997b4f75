package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"laptudirm.com/x/autopsy/pkg/uci"
)

var epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func frozen() time.Time { return epoch }

// at returns an info with the given line and score, received offset after
// the epoch.
func at(offset time.Duration, score uci.Score, pv ...string) uci.Info {
	return uci.Info{
		Depth: int(offset / time.Second),
		Score: score,
		PV:    pv,
		At:    epoch.Add(offset),
	}
}

type fakeStream struct {
	updates chan uci.Info
	stops   int
	stopErr error
}

func newFakeStream(infos ...uci.Info) *fakeStream {
	updates := make(chan uci.Info, len(infos))
	for _, info := range infos {
		updates <- info
	}

	close(updates)
	return &fakeStream{updates: updates}
}

func (stream *fakeStream) Updates() <-chan uci.Info { return stream.updates }

func (stream *fakeStream) Stop() error {
	stream.stops++
	return stream.stopErr
}

// fakeOracle answers searches from fixed tables keyed by position.
type fakeOracle struct {
	evaluations map[string]uci.Info
	streams     map[string]*fakeStream
	err         error

	evaluated []string
	streamed  []string
	limits    []time.Duration
}

func (oracle *fakeOracle) Evaluate(_ context.Context, fen string, movetime time.Duration) (uci.Info, error) {
	if oracle.err != nil {
		return uci.Info{}, oracle.err
	}

	oracle.evaluated = append(oracle.evaluated, fen)
	oracle.limits = append(oracle.limits, movetime)
	return oracle.evaluations[fen], nil
}

func (oracle *fakeOracle) Stream(_ context.Context, fen string, movetime time.Duration) (uci.Stream, error) {
	if oracle.err != nil {
		return nil, oracle.err
	}

	oracle.streamed = append(oracle.streamed, fen)
	oracle.limits = append(oracle.limits, movetime)

	stream, found := oracle.streams[fen]
	if !found {
		stream = newFakeStream()
	}

	return stream, nil
}

// fakeBoard plays any move. Positions are named after the number of plies
// played to reach them.
type fakeBoard struct {
	ply      int
	terminal int // ply at which the game ends, 0 for never
}

func (board *fakeBoard) FEN() string { return fen(board.ply) }

func (board *fakeBoard) SideToMove() string {
	if board.ply%2 == 0 {
		return "White"
	}

	return "Black"
}

func (board *fakeBoard) MoveNumber() int { return board.ply/2 + 1 }

func (board *fakeBoard) SAN(move string) (string, error) {
	if strings.HasPrefix(move, "?") {
		return "", errors.New("unrenderable move")
	}

	return strings.ToUpper(move), nil
}

func (board *fakeBoard) MakeMove(move string) error {
	if move == "illegal" {
		return errors.New("illegal move")
	}

	board.ply++
	return nil
}

func (board *fakeBoard) Terminal() (bool, string) {
	return board.terminal != 0 && board.ply == board.terminal, "Checkmate"
}

func fen(ply int) string { return fmt.Sprintf("fen-%d", ply) }

// timeSettings analyzes everything deeply with fixed time searches.
func timeSettings() Settings {
	settings := DefaultSettings()
	settings.Mode = ModeTime
	settings.QuickPly = 0
	return settings
}
