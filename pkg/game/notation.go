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
	"github.com/notnil/chess"
	"github.com/sirupsen/logrus"
)

// Notation renders engine lines in standard algebraic notation.
type Notation struct{}

// Line renders the given line of UCI moves, played from fen. Moves which
// can't be rendered, and all moves after them, are left as they are.
func (Notation) Line(fen string, line []string) []string {
	rendered := make([]string, 0, len(line))

	setup, err := chess.FEN(fen)
	if err != nil {
		logrus.Debugf("Unable to render line from %s: %v", fen, err)
		return append(rendered, line...)
	}

	position := chess.NewGame(setup).Position()
	for i, mov := range line {
		decoded, err := chess.UCINotation{}.Decode(position, mov)
		if err != nil || !legal(position, decoded) {
			logrus.WithField("move", mov).Debug("Unable to render move in line")
			return append(rendered, line[i:]...)
		}

		rendered = append(rendered, chess.AlgebraicNotation{}.Encode(position, decoded))
		position = position.Update(decoded)
	}

	return rendered
}

func legal(position *chess.Position, mov *chess.Move) bool {
	for _, valid := range position.ValidMoves() {
		if valid.String() == mov.String() {
			return true
		}
	}

	return false
}
