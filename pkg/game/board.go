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

package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/board/move"
	"laptudirm.com/x/mess/pkg/formats/fen"
)

var ErrIllegalMove = errors.New("game: illegal move")

// Board is a chess position which moves, in UCI notation, can be played
// on. Notation and FENs come from the position, while legality and the
// end of the game are decided by the oracle board.
type Board struct {
	position *chess.Position

	oracle *board.Board
	moves  []move.Move
}

// NewBoard returns a board set up at the given position.
func NewBoard(fenstr string) (*Board, error) {
	setup, err := chess.FEN(fenstr)
	if err != nil {
		return nil, fmt.Errorf("game: invalid fen %q: %w", fenstr, err)
	}

	position := chess.NewGame(setup).Position()
	oracle := board.New(board.FEN(fen.FromString(position.String())))

	return &Board{
		position: position,
		oracle:   oracle,
		moves:    oracle.GenerateMoves(false),
	}, nil
}

func (b *Board) FEN() string {
	return b.position.String()
}

// SideToMove returns White or Black.
func (b *Board) SideToMove() string {
	return b.position.Turn().Name()
}

// MoveNumber returns the full move number of the position.
func (b *Board) MoveNumber() int {
	fields := strings.Fields(b.position.String())
	if len(fields) < 6 {
		return 1
	}

	number, err := strconv.Atoi(fields[5])
	if err != nil {
		return 1
	}

	return number
}

// SAN renders the given move in standard algebraic notation.
func (b *Board) SAN(mov string) (string, error) {
	decoded, err := chess.UCINotation{}.Decode(b.position, mov)
	if err != nil {
		return "", err
	}

	return chess.AlgebraicNotation{}.Encode(b.position, decoded), nil
}

// MakeMove plays the given move, which must be legal in the position.
func (b *Board) MakeMove(mov string) error {
	index := -1
	for i, legal := range b.moves {
		if strings.EqualFold(legal.String(), mov) {
			index = i
			break
		}
	}

	if index == -1 {
		return fmt.Errorf("%w %s in %s", ErrIllegalMove, mov, b.FEN())
	}

	decoded, err := chess.UCINotation{}.Decode(b.position, strings.ToLower(mov))
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrIllegalMove, mov, err)
	}

	b.oracle.MakeMove(b.moves[index])
	b.moves = b.oracle.GenerateMoves(false)
	b.position = b.position.Update(decoded)
	return nil
}

// Terminal reports whether the game has ended and how. Draws which have
// to be claimed, like threefold repetition or the 50-move rule, don't
// end the game.
func (b *Board) Terminal() (bool, string) {
	switch {
	case len(b.moves) == 0:
		if b.oracle.IsInCheck(b.oracle.SideToMove) {
			return true, "Checkmate"
		}

		return true, "Stalemate"

	case b.oracle.DrawClock >= 150:
		return true, "75-move Rule"
	case b.oracle.IsInsufficientMaterial():
		return true, "Insufficient Material"
	}

	return false, ""
}
