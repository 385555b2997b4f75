package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/autopsy/pkg/uci"
)

func scored(cp int, move string) uci.Info {
	return uci.Info{Depth: 12, Score: uci.CP(cp), PV: []string{move}}
}

func TestAnalyzeGame(t *testing.T) {
	oracle := &fakeOracle{evaluations: map[string]uci.Info{
		fen(0): scored(30, "e2e4"),
		fen(1): scored(-10, "e7e5"),
		fen(2): scored(20, "g1f3"),
		fen(3): scored(250, "d8h4"),
		fen(4): scored(-260, "g2g3"),
	}}

	var progress []int
	analyzer := &Analyzer{
		Oracle:   oracle,
		Settings: timeSettings(),
		Progress: func(record Record) { progress = append(progress, record.Ply) },
		Now:      frozen,
	}

	records, err := analyzer.Analyze(context.Background(), &fakeBoard{}, []string{"e2e4", "e7e5", "f1c4", "d8h4"})
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []int{0, 1, 2, 3}, progress)
	assert.Equal(t, []string{fen(0), fen(1), fen(2), fen(3), fen(4)}, oracle.evaluated, "every position is evaluated once")

	settings := timeSettings()
	assert.Equal(t, []time.Duration{
		settings.QuickTime,
		settings.DeepTime, settings.DeepTime, settings.DeepTime, settings.DeepTime,
	}, oracle.limits)

	third := records[2]
	assert.Equal(t, 2, third.Ply)
	assert.Equal(t, 2, third.MoveNumber)
	assert.Equal(t, "White", third.Player)
	assert.Equal(t, "F1C4", third.SAN)
	assert.Equal(t, fen(2), third.PreFEN)
	assert.Equal(t, fen(3), third.PostFEN)
	assert.Equal(t, "g1f3", third.Before.BestMove)
	assert.Equal(t, Pawns(0.2), third.Before.Eval)
	assert.Equal(t, Pawns(2.5), third.After)
	assert.InDelta(t, -2.70, third.Swing.Pawns, 1e-9)

	assert.Equal(t, "Black", records[1].Player)
	assert.Equal(t, 1, records[1].MoveNumber)

	// every verdict but the first is carried over as the next one's before
	for i := 1; i < len(records); i++ {
		assert.Equal(t, records[i-1].After, records[i].Before.Eval)
	}

	worst := WorstMoves(records, settings.DecidedThreshold, 20)
	require.Len(t, worst, 4)
	assert.Equal(t, 2, worst[0].Ply)
	assert.Equal(t, 0, worst[1].Ply)
	assert.InDelta(t, -0.20, worst[1].Swing.Pawns, 1e-9)
	assert.Equal(t, 1, worst[2].Ply)
	assert.Equal(t, 3, worst[3].Ply)
}

func TestAnalyzeDecidedPositions(t *testing.T) {
	oracle := &fakeOracle{evaluations: map[string]uci.Info{
		fen(0): scored(1500, "d1h5"),
		fen(1): scored(500, "g7g6"),
		fen(2): scored(-400, "h5e5"),
	}}

	settings := timeSettings()
	analyzer := &Analyzer{Oracle: oracle, Settings: settings, Now: frozen}

	records, err := analyzer.Analyze(context.Background(), &fakeBoard{}, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// the first move is played from a decided position
	assert.Equal(t, []time.Duration{settings.QuickTime, settings.QuickTime, settings.DeepTime}, oracle.limits)
	assert.InDelta(t, -20, records[0].Swing.Pawns, 1e-9)

	worst := WorstMoves(records, settings.DecidedThreshold, 20)
	require.Len(t, worst, 1)
	assert.Equal(t, 1, worst[0].Ply)
	assert.InDelta(t, -1, worst[0].Swing.Pawns, 1e-9)
}

func TestAnalyzeQuickOpening(t *testing.T) {
	oracle := &fakeOracle{}

	settings := timeSettings()
	settings.QuickPly = 2
	analyzer := &Analyzer{Oracle: oracle, Settings: settings, Now: frozen}

	_, err := analyzer.Analyze(context.Background(), &fakeBoard{}, []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{
		settings.QuickTime, settings.QuickTime, settings.QuickTime, settings.DeepTime,
	}, oracle.limits)
}

func TestAnalyzeMissingEvaluations(t *testing.T) {
	oracle := &fakeOracle{evaluations: map[string]uci.Info{
		fen(0): scored(10, "e2e4"),
	}}

	analyzer := &Analyzer{Oracle: oracle, Settings: timeSettings(), Now: frozen}
	records, err := analyzer.Analyze(context.Background(), &fakeBoard{}, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	for _, record := range records {
		assert.False(t, record.Swing.Known)
	}

	assert.Empty(t, WorstMoves(records, 10, 20))
}

func TestAnalyzeStopsAtGameEnd(t *testing.T) {
	analyzer := &Analyzer{Oracle: &fakeOracle{}, Settings: timeSettings(), Now: frozen}

	records, err := analyzer.Analyze(context.Background(), &fakeBoard{terminal: 2}, []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAnalyzeUnrenderableMove(t *testing.T) {
	analyzer := &Analyzer{Oracle: &fakeOracle{}, Settings: timeSettings(), Now: frozen}

	records, err := analyzer.Analyze(context.Background(), &fakeBoard{}, []string{"?a", "b"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "?a", records[0].SAN)
	assert.Equal(t, "B", records[1].SAN)
}

func TestAnalyzeIllegalMove(t *testing.T) {
	analyzer := &Analyzer{Oracle: &fakeOracle{}, Settings: timeSettings(), Now: frozen}

	records, err := analyzer.Analyze(context.Background(), &fakeBoard{}, []string{"a", "illegal", "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ply 2")
	assert.Len(t, records, 1)
}

func TestAnalyzeOracleUnavailable(t *testing.T) {
	analyzer := &Analyzer{Settings: timeSettings()}

	records, err := analyzer.Analyze(context.Background(), &fakeBoard{}, []string{"a"})
	assert.ErrorIs(t, err, ErrOracleUnavailable)
	assert.Empty(t, records)

	analyzer.Oracle = &fakeOracle{err: errors.New("exec: \"stockfish\": executable file not found in $PATH")}
	records, err = analyzer.Analyze(context.Background(), &fakeBoard{}, []string{"a"})
	assert.ErrorIs(t, err, ErrOracleUnavailable)
	assert.Empty(t, records)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	oracle := &fakeOracle{err: context.Canceled}
	analyzer := &Analyzer{Oracle: oracle, Settings: timeSettings()}

	_, err := analyzer.Analyze(ctx, &fakeBoard{}, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrOracleUnavailable)
}

func TestRecordTotalTime(t *testing.T) {
	record := Record{BeforeTime: 3 * time.Second, AfterTime: 1500 * time.Millisecond}
	assert.Equal(t, 4500*time.Millisecond, record.TotalTime())
}
