package engine

import (
	"iter"
	"time"
)

type RecordType string

const (
	RecordStudySession      RecordType = "study_session"
	RecordChallengeComplete RecordType = "challenge_complete"
)

type RecordStatus string

const (
	StatusCompleted  RecordStatus = "completed"
	StatusIncomplete RecordStatus = "incomplete"
)

// HistoryRecord is one completed study session or challenge. Records are
// immutable once appended; ordering is append order, which may differ
// from chronological order if the wall clock was adjusted.
type HistoryRecord struct {
	Type     RecordType   `json:"type"`
	Topic    string       `json:"topic,omitempty"`
	Duration int          `json:"duration"` // seconds
	Date     time.Time    `json:"date"`
	Session  int          `json:"session,omitempty"`
	Status   RecordStatus `json:"status"`
}

// Ledger is the append-only log of history records. All aggregates are
// derived on demand by walking the records; nothing is cached.
type Ledger struct {
	records []HistoryRecord
}

func NewLedger(records []HistoryRecord) *Ledger {
	return &Ledger{records: records}
}

// Append adds a record to the log. The only validation is that the
// duration is not negative.
func (l *Ledger) Append(r HistoryRecord) error {
	if r.Duration < 0 {
		return validationErr("duration", "must not be negative")
	}
	l.records = append(l.records, r)
	return nil
}

func (l *Ledger) Len() int { return len(l.records) }

// Records returns the log in append order. The returned slice is shared;
// callers must not mutate it.
func (l *Ledger) Records() []HistoryRecord { return l.records }

// Filter yields records matching pred, in append order. The sequence is
// recomputed on every range, not cached.
func (l *Ledger) Filter(pred func(HistoryRecord) bool) iter.Seq[HistoryRecord] {
	return func(yield func(HistoryRecord) bool) {
		for _, r := range l.records {
			if !pred(r) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// sameDay compares calendar days in local time, matching the original
// string-prefix-on-ISO-date semantics.
func sameDay(a, b time.Time) bool {
	return a.Local().Format(time.DateOnly) == b.Local().Format(time.DateOnly)
}

// OnDay matches records dated on the same calendar day as t.
func OnDay(t time.Time) func(HistoryRecord) bool {
	return func(r HistoryRecord) bool { return sameDay(r.Date, t) }
}

// Since matches records dated at or after t.
func Since(t time.Time) func(HistoryRecord) bool {
	return func(r HistoryRecord) bool { return !r.Date.Before(t) }
}

// Between matches records dated within [from, to] inclusive.
func Between(from, to time.Time) func(HistoryRecord) bool {
	return func(r HistoryRecord) bool {
		return !r.Date.Before(from) && !r.Date.After(to)
	}
}

// All matches every record.
func All() func(HistoryRecord) bool {
	return func(HistoryRecord) bool { return true }
}

// TotalForDay sums durations of records on the given calendar day.
func (l *Ledger) TotalForDay(day time.Time) int {
	total := 0
	for r := range l.Filter(OnDay(day)) {
		total += r.Duration
	}
	return total
}

// TotalForTrailingDays sums durations of records within the last n days
// counted back from now, inclusive of today.
func (l *Ledger) TotalForTrailingDays(now time.Time, n int) int {
	cutoff := now.AddDate(0, 0, -n)
	total := 0
	for r := range l.Filter(Since(cutoff)) {
		total += r.Duration
	}
	return total
}

// streakLookbackDays caps how far back the streak walk goes.
const streakLookbackDays = 30

// ConsecutiveStudyStreak counts consecutive calendar days, today
// included, that have at least one record with positive duration. The
// walk stops at the first gap.
func (l *Ledger) ConsecutiveStudyStreak(now time.Time) int {
	streak := 0
	for i := 0; i < streakLookbackDays; i++ {
		day := now.AddDate(0, 0, -i)
		studied := false
		for r := range l.Filter(OnDay(day)) {
			if r.Duration > 0 {
				studied = true
				break
			}
		}
		if !studied {
			break
		}
		streak++
	}
	return streak
}

// DayBucket is one bar of the history chart.
type DayBucket struct {
	Date    time.Time
	Seconds int
}

// DailyBuckets returns one bucket per calendar day for the trailing n
// days, oldest first, today last. Days without records get zero buckets.
func (l *Ledger) DailyBuckets(now time.Time, n int) []DayBucket {
	buckets := make([]DayBucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		buckets = append(buckets, DayBucket{
			Date:    day,
			Seconds: l.TotalForDay(day),
		})
	}
	return buckets
}
