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

import "sort"

// WorstMoves returns at most n records, the most damaging move first.
// Moves without a swing and moves played from positions which were
// already decided are left out. Equal swings keep the order of play.
func WorstMoves(records []Record, decided float64, n int) []Record {
	if n <= 0 {
		return nil
	}

	worst := make([]Record, 0, len(records))
	for _, record := range records {
		if !record.Swing.Known || record.Before.Eval.Exceeds(decided) {
			continue
		}

		worst = append(worst, record)
	}

	sort.SliceStable(worst, func(i, j int) bool {
		return worst[i].Swing.Pawns < worst[j].Swing.Pawns
	})

	if len(worst) > n {
		worst = worst[:n]
	}

	return worst
}
