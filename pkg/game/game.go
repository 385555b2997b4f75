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
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notnil/chess"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoGame       = errors.New("game: no game found in pgn")
	ErrBeyondGame   = errors.New("game: move is beyond the end of the game")
	ErrInvalidColor = errors.New("game: color must be white or black")
)

//go:embed sample.pgn
var sample string

// Game is the mainline of a finished game.
type Game struct {
	Tags map[string]string

	// Start is the FEN of the position the game started from.
	Start string

	// Moves is the mainline in UCI notation.
	Moves []string
}

// Sample returns the game analyzed when no pgn is provided.
func Sample() *Game {
	game, err := LoadGame(strings.NewReader(sample))
	if err != nil {
		panic(err)
	}

	return game
}

// LoadFile loads the first game from the given pgn file.
func LoadFile(path string) (*Game, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close()
	return LoadGame(file)
}

// LoadGame reads the first game from the pgn. Any further games are
// ignored.
func LoadGame(r io.Reader) (*Game, error) {
	scanner := chess.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("game: parsing pgn: %w", err)
		}

		return nil, ErrNoGame
	}

	parsed := scanner.Next()

	game := &Game{Tags: make(map[string]string)}
	for _, pair := range parsed.TagPairs() {
		game.Tags[pair.Key] = pair.Value
	}

	positions := parsed.Positions()
	if len(positions) == 0 {
		return nil, ErrNoGame
	}

	game.Start = positions[0].String()
	for _, mov := range parsed.Moves() {
		game.Moves = append(game.Moves, mov.String())
	}

	if scanner.Scan() {
		logrus.Warn("Multiple games found in pgn, analyzing the first one")
	}

	return game, nil
}

// Tag returns the value of the given tag, or Unknown if it isn't set.
func (game *Game) Tag(key string) string {
	if value, found := game.Tags[key]; found && value != "" {
		return value
	}

	return "Unknown"
}

// Board returns a board at the starting position of the game.
func (game *Game) Board() (*Board, error) {
	return NewBoard(game.Start)
}

// Target is a position of the game singled out for deep analysis.
type Target struct {
	FEN string

	// Move and SAN are the move played from the position, and AfterFEN
	// the position it led to. They are empty if the game ended there.
	Move     string
	SAN      string
	AfterFEN string
}

// Ply returns the index of the given move of the given color, which is
// either white or black.
func Ply(number int, color string) (int, error) {
	ply := (number - 1) * 2
	switch strings.ToLower(color) {
	case "white":
	case "black":
		ply++
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, color)
	}

	return ply, nil
}

// Target returns the position in which the given move was played.
func (game *Game) Target(number int, color string) (Target, error) {
	ply, err := Ply(number, color)
	if err != nil {
		return Target{}, err
	}

	if number < 1 || ply > len(game.Moves) {
		return Target{}, fmt.Errorf("%w: move %d %s", ErrBeyondGame, number, strings.ToLower(color))
	}

	board, err := game.Board()
	if err != nil {
		return Target{}, err
	}

	for _, mov := range game.Moves[:ply] {
		if err := board.MakeMove(mov); err != nil {
			return Target{}, err
		}
	}

	target := Target{FEN: board.FEN()}
	if ply == len(game.Moves) {
		return target, nil
	}

	target.Move = game.Moves[ply]
	if target.SAN, err = board.SAN(target.Move); err != nil {
		target.SAN = target.Move
	}

	if err := board.MakeMove(target.Move); err != nil {
		return Target{}, err
	}

	target.AfterFEN = board.FEN()
	return target, nil
}
