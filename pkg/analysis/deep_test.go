package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/autopsy/pkg/uci"
)

func TestDeepAnalyzeTimeMode(t *testing.T) {
	stream := newFakeStream(
		at(0, uci.CP(40), "e2e4"),
		at(2*time.Second, uci.CP(80), "d2d4"),
		at(5*time.Second, uci.CP(90), "d2d4", "d7d5"),
		at(12*time.Second, uci.CP(100), "c2c4"),
		at(13*time.Second, uci.CP(110), "g1f3"),
	)

	oracle := &fakeOracle{
		evaluations: map[string]uci.Info{"after": {Score: uci.CP(-50), PV: []string{"e7e5"}}},
		streams:     map[string]*fakeStream{"before": stream},
	}

	settings := timeSettings()
	deep := &DeepAnalyzer{Oracle: oracle, Settings: settings, Now: frozen}

	var updates []DeepUpdate
	result, err := deep.Analyze(context.Background(), DeepRequest{
		FEN:      "before",
		Move:     "e2e4",
		AfterFEN: "after",
		Duration: 10 * time.Second,
	}, func(update DeepUpdate) { updates = append(updates, update) })
	require.NoError(t, err)

	require.Len(t, updates, 3)
	assert.True(t, updates[0].Initial)
	assert.False(t, updates[1].Initial)
	assert.Equal(t, "e2e4", updates[0].Verdict.BestMove)
	assert.Equal(t, "d2d4", updates[1].Verdict.BestMove)
	assert.Equal(t, 2*time.Second, updates[1].Elapsed)
	assert.Equal(t, "c2c4", updates[2].Verdict.BestMove)

	assert.InDelta(t, -0.1, updates[0].Advantage.Pawns, 1e-9)
	assert.InDelta(t, 0.3, updates[1].Advantage.Pawns, 1e-9)
	assert.InDelta(t, 0.5, updates[2].Advantage.Pawns, 1e-9)

	assert.Equal(t, Pawns(0.5), result.Baseline)
	assert.Equal(t, "c2c4", result.Verdict.BestMove)
	assert.InDelta(t, 0.5, result.Advantage.Pawns, 1e-9)
	assert.Equal(t, 12*time.Second, result.Elapsed)
	assert.False(t, result.Stable)

	assert.Equal(t, []time.Duration{settings.BaselineTime, 10 * time.Second}, oracle.limits)
	assert.Equal(t, 1, stream.stops)
}

func TestDeepAnalyzeStability(t *testing.T) {
	stream := newFakeStream(
		at(0, uci.CP(40), "e2e4"),
		at(3*time.Second, uci.CP(80), "d2d4"),
		at(8*time.Second, uci.CP(85), "d2d4", "g8f6"),
		at(13*time.Second, uci.CP(90), "d2d4", "g8f6", "c2c4"),
	)

	oracle := &fakeOracle{streams: map[string]*fakeStream{"before": stream}}

	settings := DefaultSettings()
	settings.StabilityPeriod = 10 * time.Second
	deep := &DeepAnalyzer{Oracle: oracle, Settings: settings, Now: frozen}

	var updates []DeepUpdate
	result, err := deep.Analyze(context.Background(), DeepRequest{FEN: "before"}, func(update DeepUpdate) {
		updates = append(updates, update)
	})
	require.NoError(t, err)

	assert.Len(t, updates, 2)
	for _, update := range updates {
		assert.False(t, update.Advantage.Known, "nothing to compare with")
	}

	assert.True(t, result.Stable)
	assert.Equal(t, 13*time.Second, result.Elapsed)
	assert.Equal(t, Pawns(0.9), result.Verdict.Eval)
	assert.False(t, result.Baseline.Known)
	assert.Empty(t, oracle.evaluated)
	assert.Equal(t, []time.Duration{settings.StreamLimit}, oracle.limits)
}

func TestDeepAnalyzeStreamEnds(t *testing.T) {
	stream := newFakeStream(at(time.Second, uci.CP(-20), "e7e5"))
	oracle := &fakeOracle{streams: map[string]*fakeStream{"before": stream}}

	deep := &DeepAnalyzer{Oracle: oracle, Settings: DefaultSettings(), Now: frozen}
	result, err := deep.Analyze(context.Background(), DeepRequest{FEN: "before"}, nil)
	require.NoError(t, err)

	assert.False(t, result.Stable)
	assert.Equal(t, "e7e5", result.Verdict.BestMove)
	assert.Equal(t, 1, stream.stops)
}

func TestDeepAnalyzeReportsStopFailure(t *testing.T) {
	hook := test.NewGlobal()
	t.Cleanup(hook.Reset)

	stream := newFakeStream(at(time.Second, uci.CP(-20), "e7e5"))
	stream.stopErr = uci.ErrReadTimeout
	oracle := &fakeOracle{streams: map[string]*fakeStream{"before": stream}}

	deep := &DeepAnalyzer{Oracle: oracle, Settings: DefaultSettings(), Now: frozen}
	_, err := deep.Analyze(context.Background(), DeepRequest{FEN: "before"}, nil)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "before", entry.Data["fen"])
}

func TestDeepAnalyzeOracleUnavailable(t *testing.T) {
	deep := &DeepAnalyzer{Settings: DefaultSettings()}
	_, err := deep.Analyze(context.Background(), DeepRequest{FEN: "before"}, nil)
	assert.ErrorIs(t, err, ErrOracleUnavailable)

	deep.Oracle = &fakeOracle{err: errors.New("engine: read i/o timeout")}
	_, err = deep.Analyze(context.Background(), DeepRequest{FEN: "before", Move: "e2e4", AfterFEN: "after"}, nil)
	assert.ErrorIs(t, err, ErrOracleUnavailable)
}
