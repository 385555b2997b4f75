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

package uci

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScoreKind tells which unit, if any, a Score is expressed in.
type ScoreKind uint8

const (
	NoScore ScoreKind = iota
	Centipawns
	Mate
)

// Score is a score reported by the engine, relative to the side to move.
// For Mate scores Value is the distance to mate in moves, positive when the
// side to move is the one delivering it.
type Score struct {
	Kind  ScoreKind
	Value int

	// Lowerbound and Upperbound are set when the engine only reported a
	// bound on the score instead of an exact value.
	Lowerbound, Upperbound bool
}

// CP returns a centipawn score.
func CP(value int) Score {
	return Score{Kind: Centipawns, Value: value}
}

// MateIn returns a mate-in-n score.
func MateIn(n int) Score {
	return Score{Kind: Mate, Value: n}
}

func (score Score) String() string {
	switch score.Kind {
	case Centipawns:
		return fmt.Sprintf("cp %d", score.Value)
	case Mate:
		return fmt.Sprintf("mate %d", score.Value)
	default:
		return "none"
	}
}

// Info is a single search update parsed from an engine's info line.
type Info struct {
	Depth    int
	SelDepth int
	MultiPV  int

	Nodes int64
	NPS   int64
	Time  time.Duration

	Score Score
	PV    []string

	// At is the time the update was read from the engine.
	At time.Time
}

// Empty reports whether the info carries neither a score nor a line.
func (info Info) Empty() bool {
	return info.Score.Kind == NoScore && len(info.PV) == 0
}

// merge overwrites the fields of info with the ones reported by update.
func (info Info) merge(update Info) Info {
	if update.Depth != 0 {
		info.Depth = update.Depth
		info.SelDepth = update.SelDepth
	}

	if update.Nodes != 0 {
		info.Nodes, info.NPS, info.Time = update.Nodes, update.NPS, update.Time
	}

	if update.Score.Kind != NoScore {
		info.Score = update.Score
	}

	if len(update.PV) != 0 {
		info.PV = update.PV
	}

	info.MultiPV = update.MultiPV
	info.At = update.At
	return info
}

// ParseInfo parses an "info ..." line sent by a UCI engine. The second
// return value is false if the line is not an info line, or only carries
// informational strings.
func ParseInfo(line string) (Info, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return Info{}, false
	}

	var info Info
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "string":
			// the rest of the line is free text
			return info, !info.Empty() || info.Depth != 0

		case "depth":
			info.Depth = intField(fields, &i)
		case "seldepth":
			info.SelDepth = intField(fields, &i)
		case "multipv":
			info.MultiPV = intField(fields, &i)
		case "nodes":
			info.Nodes = int64(intField(fields, &i))
		case "nps":
			info.NPS = int64(intField(fields, &i))
		case "time":
			info.Time = time.Duration(intField(fields, &i)) * time.Millisecond

		case "score":
			i = parseScore(fields, i, &info.Score)

		case "pv":
			info.PV = append([]string(nil), fields[i+1:]...)
			i = len(fields)
		}
	}

	return info, !info.Empty() || info.Depth != 0
}

// parseScore parses the score starting at fields[i] == "score" and returns
// the index of the last field consumed.
func parseScore(fields []string, i int, score *Score) int {
	if i+2 >= len(fields) {
		return len(fields)
	}

	value, err := strconv.Atoi(fields[i+2])
	if err != nil {
		return i + 2
	}

	switch fields[i+1] {
	case "cp":
		*score = CP(value)
	case "mate":
		*score = MateIn(value)
	default:
		return i + 2
	}

	i += 2
	for i+1 < len(fields) {
		switch fields[i+1] {
		case "lowerbound":
			score.Lowerbound = true
		case "upperbound":
			score.Upperbound = true
		default:
			return i
		}

		i++
	}

	return i
}

func intField(fields []string, i *int) int {
	if *i+1 >= len(fields) {
		return 0
	}

	*i++
	value, _ := strconv.Atoi(fields[*i])
	return value
}
