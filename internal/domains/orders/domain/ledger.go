package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// SourceSystem tags entries written by the store itself, such as the creation entry.
const SourceSystem = "system"

// MaxSourceLength bounds the free-text origin tag.
const MaxSourceLength = 50

var (
	ErrEmptySource   = errors.New("history source is required")
	ErrSourceTooLong = fmt.Errorf("history source exceeds %d characters", MaxSourceLength)
	ErrLedgerClosed  = errors.New("order history is closed by a terminal status")
	ErrLedgerStart   = errors.New("order history must start with the created status")
)

// HistoryEntry is one immutable record of a status change.
type HistoryEntry struct {
	OrderID   string
	Status    Status
	Source    string
	Metadata  map[string]any
	Timestamp time.Time
}

// Ledger is the append-only status history of a single order.
type Ledger struct {
	orderID string
	entries []HistoryEntry
}

// NewLedger restores a ledger from already persisted entries in chronological order.
func NewLedger(orderID string, entries ...HistoryEntry) *Ledger {
	l := &Ledger{orderID: orderID}
	for _, e := range entries {
		l.entries = append(l.entries, cloneEntry(e))
	}
	return l
}

// Append records status as the newest entry. The first entry must be created and
// nothing may follow a terminal entry. Timestamps are kept strictly increasing.
func (l *Ledger) Append(status Status, source string, metadata map[string]any, now time.Time) (HistoryEntry, error) {
	if !status.IsValid() {
		return HistoryEntry{}, ErrInvalidStatus
	}
	source, err := NormalizeSource(source)
	if err != nil {
		return HistoryEntry{}, err
	}
	var previous time.Time
	if last, ok := l.Last(); ok {
		if last.Status.IsTerminal() {
			return HistoryEntry{}, ErrLedgerClosed
		}
		previous = last.Timestamp
	} else if status != StatusCreated {
		return HistoryEntry{}, ErrLedgerStart
	}
	entry := HistoryEntry{
		OrderID:   l.orderID,
		Status:    status,
		Source:    source,
		Metadata:  cloneMetadata(metadata),
		Timestamp: NextTimestamp(previous, now),
	}
	l.entries = append(l.entries, entry)
	return cloneEntry(entry), nil
}

// Last returns the newest entry.
func (l *Ledger) Last() (HistoryEntry, bool) {
	if len(l.entries) == 0 {
		return HistoryEntry{}, false
	}
	return cloneEntry(l.entries[len(l.entries)-1]), true
}

// Current returns the status of the newest entry.
func (l *Ledger) Current() (Status, bool) {
	last, ok := l.Last()
	return last.Status, ok
}

// Len reports the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns a chronological copy of the ledger.
func (l *Ledger) Entries() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, cloneEntry(e))
	}
	return out
}

// NextTimestamp returns now truncated to microseconds, bumped past previous when the
// clock did not advance. Microseconds match what SQL stores keep.
func NextTimestamp(previous, now time.Time) time.Time {
	ts := now.UTC().Truncate(time.Microsecond)
	if !previous.IsZero() && !ts.After(previous) {
		ts = previous.UTC().Add(time.Microsecond)
	}
	return ts
}

// NormalizeSource trims and validates a history source tag.
func NormalizeSource(source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", ErrEmptySource
	}
	if utf8.RuneCountInString(source) > MaxSourceLength {
		return "", ErrSourceTooLong
	}
	return source, nil
}

func cloneEntry(e HistoryEntry) HistoryEntry {
	e.Metadata = cloneMetadata(e.Metadata)
	return e
}

func cloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
