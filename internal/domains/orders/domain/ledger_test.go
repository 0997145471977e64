package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLedger_AppendKeepsChronologicalOrder(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	l := NewLedger("o-1")

	_, err := l.Append(StatusCreated, SourceSystem, nil, now)
	require.NoError(t, err)
	_, err = l.Append(StatusPickedUp, "ops", map[string]any{"driver": "d-7"}, now.Add(time.Minute))
	require.NoError(t, err)

	entries := l.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, StatusCreated, entries[0].Status)
	require.Equal(t, StatusPickedUp, entries[1].Status)
	require.Equal(t, "o-1", entries[1].OrderID)
	require.Equal(t, "d-7", entries[1].Metadata["driver"])
	require.True(t, entries[1].Timestamp.After(entries[0].Timestamp))

	current, ok := l.Current()
	require.True(t, ok)
	require.Equal(t, StatusPickedUp, current)
}

func TestLedger_TimestampsStrictlyIncreaseWhenClockStalls(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	l := NewLedger("o-1")
	first, err := l.Append(StatusCreated, SourceSystem, nil, now)
	require.NoError(t, err)
	second, err := l.Append(StatusPickedUp, "ops", nil, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, first.Timestamp.Add(time.Microsecond), second.Timestamp)
}

func TestLedger_MustStartWithCreated(t *testing.T) {
	l := NewLedger("o-1")
	_, err := l.Append(StatusPickedUp, "ops", nil, time.Now())
	require.ErrorIs(t, err, ErrLedgerStart)
	require.Zero(t, l.Len())
}

func TestLedger_ClosedAfterTerminal(t *testing.T) {
	now := time.Now()
	l := NewLedger("o-1")
	_, err := l.Append(StatusCreated, SourceSystem, nil, now)
	require.NoError(t, err)
	_, err = l.Append(StatusCancelled, "ops", nil, now)
	require.NoError(t, err)
	_, err = l.Append(StatusPickedUp, "ops", nil, now)
	require.ErrorIs(t, err, ErrLedgerClosed)
	require.Equal(t, 2, l.Len())
}

func TestLedger_ValidatesSource(t *testing.T) {
	l := NewLedger("o-1")
	_, err := l.Append(StatusCreated, "   ", nil, time.Now())
	require.ErrorIs(t, err, ErrEmptySource)

	long := make([]byte, MaxSourceLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = l.Append(StatusCreated, string(long), nil, time.Now())
	require.ErrorIs(t, err, ErrSourceTooLong)
}

func TestNormalizeSource_CountsCharacters(t *testing.T) {
	source := strings.Repeat("é", MaxSourceLength)
	got, err := NormalizeSource(source)
	require.NoError(t, err)
	require.Equal(t, source, got)

	_, err = NormalizeSource(source + "é")
	require.ErrorIs(t, err, ErrSourceTooLong)
}

func TestLedger_EntriesAreCopies(t *testing.T) {
	l := NewLedger("o-1")
	_, err := l.Append(StatusCreated, SourceSystem, map[string]any{"k": "v"}, time.Now())
	require.NoError(t, err)

	entries := l.Entries()
	entries[0].Status = StatusDelivered
	entries[0].Metadata["k"] = "mutated"

	again := l.Entries()
	require.Equal(t, StatusCreated, again[0].Status)
	require.Equal(t, "v", again[0].Metadata["k"])
}
