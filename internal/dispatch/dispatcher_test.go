package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"fiscal-engine/internal/core"
	"fiscal-engine/internal/dispatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	calls []core.SequenceLowCapacity
	err   error
}

func (s *recordingSink) NotifyLowCapacity(_ context.Context, ev core.SequenceLowCapacity) error {
	s.calls = append(s.calls, ev)
	return s.err
}

func TestDispatch_RoutesLowCapacityToSink(t *testing.T) {
	sink := &recordingSink{}
	d := dispatch.New(zap.NewNop(), sink)

	d.Dispatch(context.Background(), []core.Event{
		core.InvoiceCreated{TenantID: 1, InvoiceID: 10, FiscalNumber: "B0200000000001"},
		core.SequenceLowCapacity{TenantID: 1, SequenceID: 3, DocumentTypeCode: "02", NumberPrefix: "B02", Remaining: 9},
		core.InvoicePaid{TenantID: 1, InvoiceID: 10},
	})

	require.Len(t, sink.calls, 1, "only the low-capacity event reaches the sink")
	assert.Equal(t, 3, sink.calls[0].SequenceID)
	assert.Equal(t, int64(9), sink.calls[0].Remaining)
}

func TestDispatch_SinkErrorIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("smtp down")}
	d := dispatch.New(zap.NewNop(), sink)

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), []core.Event{
			core.SequenceLowCapacity{TenantID: 1, SequenceID: 3, Remaining: 1},
		})
	})
	assert.Len(t, sink.calls, 1)
}

func TestDispatch_NilSink(t *testing.T) {
	d := dispatch.New(zap.NewNop(), nil)

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), []core.Event{
			core.SequenceLowCapacity{TenantID: 1, SequenceID: 3, Remaining: 1},
		})
	})
}
