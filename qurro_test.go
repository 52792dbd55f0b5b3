package qurro

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronmartino/qurro/codec"
	"github.com/cameronmartino/qurro/metadata"
	"github.com/cameronmartino/qurro/model"
	"github.com/cameronmartino/qurro/table"
	"github.com/cameronmartino/qurro/testutil"
)

func sessionFixtures(t *testing.T) (*table.Table, *metadata.Index) {
	t.Helper()
	return testutil.AbundanceTable(t), testutil.RankedIndex(t)
}

func TestNewValidation(t *testing.T) {
	tbl, idx := sessionFixtures(t)

	_, err := New(nil, idx)
	assert.ErrorIs(t, err, ErrNilTable)

	_, err = New(tbl, nil)
	assert.ErrorIs(t, err, ErrNilIndex)
}

func TestSessionClickFlow(t *testing.T) {
	tbl, idx := sessionFixtures(t)
	q, err := New(tbl, idx)
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.ClickFeature(ctx, "F1"))
	assert.Equal(t, model.StateIdle, q.State())

	require.NoError(t, q.ClickFeature(ctx, "F2"))
	assert.Equal(t, model.StateReady, q.State())

	pkt := <-q.Packets()
	assert.Equal(t, model.StateReady, pkt.State)
	assert.Equal(t, model.Generation(2), pkt.Generation)
	assert.InDelta(t, 2.302585, pkt.PerSampleLogRatio["SA"].Value, 1e-6)
	assert.True(t, pkt.PerSampleLogRatio["SB"].Excluded)
	assert.Equal(t, 1, pkt.ExcludedSampleCount)
}

func TestSessionQueryErrors(t *testing.T) {
	tbl, idx := sessionFixtures(t)
	q, err := New(tbl, idx)
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()

	var se *QuerySyntaxError
	err = q.SubmitQuery(ctx, "rank >", Numerator)
	require.ErrorAs(t, err, &se)
	var inner *metadata.SyntaxError
	assert.ErrorAs(t, err, &inner, "the metadata-layer error stays reachable via Unwrap")

	var fe *QueryFieldError
	err = q.SubmitQuery(ctx, "loading > 0.5", Numerator)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "loading", fe.Field)

	var ge *GroupEmptyError
	err = q.SubmitQuery(ctx, "rank > 99", Numerator)
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, Numerator, ge.Slot)

	err = q.ClickFeature(ctx, "F9")
	assert.ErrorIs(t, err, ErrUnknownFeature)
}

func TestSessionClear(t *testing.T) {
	tbl, idx := sessionFixtures(t)
	q, err := New(tbl, idx)
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.ClickFeature(ctx, "F1"))
	require.NoError(t, q.ClickFeature(ctx, "F2"))
	<-q.Packets()

	require.NoError(t, q.Clear(Numerator))
	assert.Equal(t, model.StateIdle, q.State())

	pkt := <-q.Packets()
	assert.Equal(t, model.StateIdle, pkt.State)
	assert.Nil(t, pkt.PerSampleLogRatio)
	assert.Equal(t, []model.FeatureID{"F2"}, pkt.DenominatorFeatureIDs)
}

func TestSessionDropsOldestPacket(t *testing.T) {
	tbl, idx := sessionFixtures(t)
	q, err := New(tbl, idx, WithPacketBuffer(1))
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.ClickFeature(ctx, "F1"))
	require.NoError(t, q.ClickFeature(ctx, "F2")) // generation 2
	require.NoError(t, q.ClickFeature(ctx, "F3")) // generation 3 displaces it

	pkt := <-q.Packets()
	assert.Equal(t, model.Generation(3), pkt.Generation)
}

func TestSessionOnPacketCallback(t *testing.T) {
	tbl, idx := sessionFixtures(t)

	var got []model.Packet
	q, err := New(tbl, idx, WithOnPacket(func(pkt model.Packet) {
		got = append(got, pkt)
	}))
	require.NoError(t, err)
	defer q.Close()

	assert.Nil(t, q.Packets())

	ctx := context.Background()
	require.NoError(t, q.ClickFeature(ctx, "F1"))
	require.NoError(t, q.ClickFeature(ctx, "F2"))
	require.Len(t, got, 1)
	assert.Equal(t, model.StateReady, got[0].State)
}

func TestSessionAsyncWorkers(t *testing.T) {
	tbl, idx := sessionFixtures(t)
	q, err := New(tbl, idx, WithWorkers(2))
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.SubmitQuery(ctx, "rank > 0", Numerator))
	require.NoError(t, q.SubmitQuery(ctx, "rank < 0", Denominator))

	require.Eventually(t, func() bool {
		return q.State() == model.StateReady
	}, 2*time.Second, 5*time.Millisecond)

	pkt := <-q.Packets()
	assert.Equal(t, model.StateReady, pkt.State)
	assert.Equal(t, []model.FeatureID{"F1", "F2"}, pkt.NumeratorFeatureIDs)
	assert.Equal(t, []model.FeatureID{"F3"}, pkt.DenominatorFeatureIDs)
}

func TestSessionMetrics(t *testing.T) {
	tbl, idx := sessionFixtures(t)
	mc := &BasicMetricsCollector{}
	q, err := New(tbl, idx, WithMetricsCollector(mc))
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.ClickFeature(ctx, "F1"))
	require.NoError(t, q.ClickFeature(ctx, "F2"))
	_ = q.SubmitQuery(ctx, "rank >", Numerator)
	require.NoError(t, q.Clear(Denominator))

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.ClickCount)
	assert.Equal(t, int64(0), stats.ClickErrors)
	assert.Equal(t, int64(1), stats.QueryCount)
	assert.Equal(t, int64(1), stats.QueryErrors)
	assert.Equal(t, int64(1), stats.ClearCount)
}

func TestSessionMarshalPacket(t *testing.T) {
	tbl, idx := sessionFixtures(t)
	q, err := New(tbl, idx, WithCodec(codec.JSON{}))
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.ClickFeature(ctx, "F1"))
	require.NoError(t, q.ClickFeature(ctx, "F2"))
	pkt := <-q.Packets()

	data, err := q.MarshalPacket(pkt)
	require.NoError(t, err)

	var decoded model.Packet
	require.NoError(t, codec.JSON{}.Unmarshal(data, &decoded))
	assert.Equal(t, pkt, decoded)
}

func TestSessionClose(t *testing.T) {
	tbl, idx := sessionFixtures(t)
	q, err := New(tbl, idx)
	require.NoError(t, err)

	require.NoError(t, q.Close())
	require.NoError(t, q.Close()) // idempotent

	err = q.ClickFeature(context.Background(), "F1")
	assert.ErrorIs(t, err, ErrClosed)

	_, open := <-q.Packets()
	assert.False(t, open, "packet channel closes with the session")

	assert.True(t, errors.Is(q.Clear(Numerator), ErrClosed))
}
