package engine

import (
	"testing"
	"time"
)

func studyRecord(date time.Time, duration int) HistoryRecord {
	return HistoryRecord{
		Type:     RecordStudySession,
		Duration: duration,
		Date:     date,
		Session:  1,
		Status:   StatusCompleted,
	}
}

// ============================================================
// Append
// ============================================================

func TestLedgerAppend(t *testing.T) {
	l := NewLedger(nil)
	if err := l.Append(studyRecord(testBase, 1500)); err != nil {
		t.Fatal(err)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", l.Len())
	}
}

func TestLedgerAppendNegativeDuration(t *testing.T) {
	l := NewLedger(nil)
	if err := l.Append(studyRecord(testBase, -1)); err == nil {
		t.Fatal("negative duration should be rejected")
	}
	if l.Len() != 0 {
		t.Fatal("rejected record must not be appended")
	}
}

func TestLedgerAppendOrder(t *testing.T) {
	l := NewLedger(nil)
	// Out of chronological order on purpose; append order wins.
	l.Append(studyRecord(testBase, 10))
	l.Append(studyRecord(testBase.Add(-time.Hour), 20))

	recs := l.Records()
	if recs[0].Duration != 10 || recs[1].Duration != 20 {
		t.Fatal("records must keep append order")
	}
}

// ============================================================
// Aggregates
// ============================================================

func TestTotalForDay(t *testing.T) {
	l := NewLedger(nil)
	l.Append(studyRecord(testBase, 1500))
	l.Append(studyRecord(testBase.Add(2*time.Hour), 600))
	l.Append(studyRecord(testBase.AddDate(0, 0, -1), 9999))

	if got := l.TotalForDay(testBase); got != 2100 {
		t.Fatalf("expected 2100 for today, got %d", got)
	}
	if got := l.TotalForDay(testBase.AddDate(0, 0, -1)); got != 9999 {
		t.Fatalf("expected 9999 for yesterday, got %d", got)
	}
	if got := l.TotalForDay(testBase.AddDate(0, 0, -2)); got != 0 {
		t.Fatalf("expected 0 for an empty day, got %d", got)
	}
}

func TestTotalForTrailingDays(t *testing.T) {
	l := NewLedger(nil)
	l.Append(studyRecord(testBase, 100))
	l.Append(studyRecord(testBase.AddDate(0, 0, -3), 200))
	l.Append(studyRecord(testBase.AddDate(0, 0, -10), 400))

	if got := l.TotalForTrailingDays(testBase, 7); got != 300 {
		t.Fatalf("expected 300 within 7 days, got %d", got)
	}
	if got := l.TotalForTrailingDays(testBase, 30); got != 700 {
		t.Fatalf("expected 700 within 30 days, got %d", got)
	}
}

// ============================================================
// Streak
// ============================================================

func TestConsecutiveStudyStreak(t *testing.T) {
	l := NewLedger(nil)
	// Records on D, D-1, D-3 — the gap at D-2 stops the walk.
	l.Append(studyRecord(testBase, 100))
	l.Append(studyRecord(testBase.AddDate(0, 0, -1), 100))
	l.Append(studyRecord(testBase.AddDate(0, 0, -3), 100))

	if got := l.ConsecutiveStudyStreak(testBase); got != 2 {
		t.Fatalf("expected streak 2, got %d", got)
	}
}

func TestStreakEmptyLedger(t *testing.T) {
	l := NewLedger(nil)
	if got := l.ConsecutiveStudyStreak(testBase); got != 0 {
		t.Fatalf("expected streak 0, got %d", got)
	}
}

func TestStreakNoRecordToday(t *testing.T) {
	l := NewLedger(nil)
	l.Append(studyRecord(testBase.AddDate(0, 0, -1), 100))
	if got := l.ConsecutiveStudyStreak(testBase); got != 0 {
		t.Fatalf("a gap today means streak 0, got %d", got)
	}
}

func TestStreakIgnoresZeroDurations(t *testing.T) {
	l := NewLedger(nil)
	l.Append(studyRecord(testBase, 0))
	if got := l.ConsecutiveStudyStreak(testBase); got != 0 {
		t.Fatalf("zero-duration records must not count, got %d", got)
	}
}

func TestStreakCappedLookback(t *testing.T) {
	l := NewLedger(nil)
	for i := 0; i < 60; i++ {
		l.Append(studyRecord(testBase.AddDate(0, 0, -i), 100))
	}
	if got := l.ConsecutiveStudyStreak(testBase); got != 30 {
		t.Fatalf("streak should cap at 30, got %d", got)
	}
}

// ============================================================
// Filter
// ============================================================

func TestFilterRestartable(t *testing.T) {
	l := NewLedger(nil)
	l.Append(studyRecord(testBase, 100))
	l.Append(studyRecord(testBase.AddDate(0, 0, -1), 200))

	seq := l.Filter(OnDay(testBase))
	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	if count() != 1 || count() != 1 {
		t.Fatal("filter sequence must be restartable")
	}
}

func TestFilterEarlyStop(t *testing.T) {
	l := NewLedger(nil)
	for i := 0; i < 10; i++ {
		l.Append(studyRecord(testBase, 100))
	}

	n := 0
	for range l.Filter(All()) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Fatalf("expected early stop after 3, got %d", n)
	}
}

func TestFilterSeesLaterAppends(t *testing.T) {
	l := NewLedger(nil)
	l.Append(studyRecord(testBase, 100))
	seq := l.Filter(All())
	l.Append(studyRecord(testBase, 200))

	n := 0
	for range seq {
		n++
	}
	if n != 2 {
		t.Fatalf("filter is recomputed per range, expected 2, got %d", n)
	}
}

func TestBetweenPredicate(t *testing.T) {
	l := NewLedger(nil)
	l.Append(studyRecord(testBase.AddDate(0, 0, -5), 1))
	l.Append(studyRecord(testBase.AddDate(0, 0, -2), 2))
	l.Append(studyRecord(testBase, 3))

	n := 0
	for range l.Filter(Between(testBase.AddDate(0, 0, -3), testBase.AddDate(0, 0, -1))) {
		n++
	}
	if n != 1 {
		t.Fatalf("expected 1 record in range, got %d", n)
	}
}

// ============================================================
// Daily buckets
// ============================================================

func TestDailyBuckets(t *testing.T) {
	l := NewLedger(nil)
	l.Append(studyRecord(testBase, 1500))
	l.Append(studyRecord(testBase.AddDate(0, 0, -2), 600))

	buckets := l.DailyBuckets(testBase, 7)
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}
	// Oldest first, today last.
	if !sameDay(buckets[6].Date, testBase) {
		t.Fatal("last bucket should be today")
	}
	if buckets[6].Seconds != 1500 {
		t.Fatalf("today's bucket should be 1500, got %d", buckets[6].Seconds)
	}
	if buckets[4].Seconds != 600 {
		t.Fatalf("two-days-ago bucket should be 600, got %d", buckets[4].Seconds)
	}
	if buckets[0].Seconds != 0 {
		t.Fatal("empty days get zero buckets")
	}
}
