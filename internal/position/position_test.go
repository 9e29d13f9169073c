package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
)

func TestIngest(t *testing.T) {
	tests := []struct {
		name     string
		records  []Record
		symbol   string
		want     Snapshot
		wantKind error
	}{
		{
			name: "long position",
			records: []Record{
				{Symbol: "BTCUSDT", PositionAmt: "0.5", EntryPrice: "27000.1"},
			},
			symbol: "BTCUSDT",
			want:   Snapshot{Symbol: "BTCUSDT", Amount: 0.5, EntryPrice: 27000.1},
		},
		{
			name: "other symbols are discarded",
			records: []Record{
				{Symbol: "ETHUSDT", PositionAmt: "3", EntryPrice: "1800"},
				{Symbol: "BTCUSDT", PositionAmt: "-0.01", EntryPrice: "26500"},
			},
			symbol: "BTCUSDT",
			want:   Snapshot{Symbol: "BTCUSDT", Amount: -0.01, EntryPrice: 26500},
		},
		{
			name:     "nil response",
			records:  nil,
			symbol:   "BTCUSDT",
			wantKind: apperr.ErrData,
		},
		{
			name: "missing symbol",
			records: []Record{
				{PositionAmt: "1", EntryPrice: "100"},
			},
			symbol:   "BTCUSDT",
			wantKind: apperr.ErrAPIResponse,
		},
		{
			name: "missing positionAmt",
			records: []Record{
				{Symbol: "BTCUSDT", EntryPrice: "100"},
			},
			symbol:   "BTCUSDT",
			wantKind: apperr.ErrAPIResponse,
		},
		{
			name: "missing entryPrice",
			records: []Record{
				{Symbol: "BTCUSDT", PositionAmt: "1"},
			},
			symbol:   "BTCUSDT",
			wantKind: apperr.ErrAPIResponse,
		},
		{
			name: "unparsable amount",
			records: []Record{
				{Symbol: "BTCUSDT", PositionAmt: "abc", EntryPrice: "100"},
			},
			symbol:   "BTCUSDT",
			wantKind: apperr.ErrAPIResponse,
		},
		{
			name: "no record for configured symbol",
			records: []Record{
				{Symbol: "ETHUSDT", PositionAmt: "1", EntryPrice: "1800"},
			},
			symbol:   "BTCUSDT",
			wantKind: apperr.ErrAPIResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Ingest(tt.records, tt.symbol)
			if tt.wantKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIngestNamesMissingField(t *testing.T) {
	_, err := Ingest([]Record{{Symbol: "BTCUSDT", PositionAmt: "1"}}, "BTCUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entryPrice")
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		want     string
	}{
		{
			name:     "long",
			snapshot: Snapshot{Symbol: "BTCUSDT", Amount: 5, EntryPrice: 27000},
			want:     "BTCUSDT, amount: 5, entry price: 27000, direction: LONG",
		},
		{
			name:     "short",
			snapshot: Snapshot{Symbol: "BTCUSDT", Amount: -5, EntryPrice: 27000},
			want:     "BTCUSDT, amount: -5, entry price: 27000, direction: SHORT",
		},
		{
			// Flat renders as SHORT. Historical formatting, kept as is.
			name:     "flat labeled short",
			snapshot: Snapshot{Symbol: "BTCUSDT", Amount: 0, EntryPrice: 0},
			want:     "BTCUSDT, amount: 0, entry price: 0, direction: SHORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.snapshot))
		})
	}
}

func TestTrackerDedup(t *testing.T) {
	tr := NewTracker()

	text := "BTCUSDT, amount: 0.5, entry price: 27000, direction: LONG"
	assert.True(t, tr.Changed(text), "first observation is always a change")
	tr.Commit(text)

	assert.False(t, tr.Changed(text), "identical text is suppressed")

	updated := "BTCUSDT, amount: -0.5, entry price: 26000, direction: SHORT"
	assert.True(t, tr.Changed(updated))
}

func TestTrackerRetriesUncommitted(t *testing.T) {
	tr := NewTracker()

	text := "some position"
	assert.True(t, tr.Changed(text))
	// No Commit: delivery failed, the same text must register as a
	// change on the next cycle.
	assert.True(t, tr.Changed(text))
}
