package engine

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type memKV struct {
	m        map[string]string
	failSave bool
}

func newMemKV() *memKV { return &memKV{m: make(map[string]string)} }

func (kv *memKV) Load(key string) (string, bool, error) {
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *memKV) Save(key, value string) error {
	if kv.failSave {
		return errors.New("store full")
	}
	kv.m[key] = value
	return nil
}

type recorder struct {
	messages   []string
	severities []Severity
	sounds     []string
}

func (r *recorder) Notify(msg string, sev Severity) {
	r.messages = append(r.messages, msg)
	r.severities = append(r.severities, sev)
}

func (r *recorder) PlaySound(id string) { r.sounds = append(r.sounds, id) }

func (r *recorder) sawSeverity(sev Severity) bool {
	for _, s := range r.severities {
		if s == sev {
			return true
		}
	}
	return false
}

func newTestCoordinator(t *testing.T) (*Coordinator, *manualClock, *memKV, *recorder) {
	t.Helper()
	clock := &manualClock{now: testBase}
	kv := newMemKV()
	rec := &recorder{}
	co := NewCoordinator(kv, clock, rec, rec)
	co.LoadAndResume()
	return co, clock, kv, rec
}

// tickN advances the clock and ticks the coordinator n times.
func tickN(co *Coordinator, clock *manualClock, n int) {
	for i := 0; i < n; i++ {
		clock.advance(time.Second)
		co.OnTick()
	}
}

// ============================================================
// Fresh start and persistence
// ============================================================

func TestCoordinatorFreshStart(t *testing.T) {
	co, _, _, _ := newTestCoordinator(t)
	if co.Challenge.Configured() {
		t.Fatal("fresh coordinator has no challenge")
	}
	if co.Study.Running || co.Study.CurrentSession != 1 {
		t.Fatal("fresh coordinator has a pristine study engine")
	}
	if co.Ledger.Len() != 0 {
		t.Fatal("fresh coordinator has empty history")
	}
}

func TestPersistAfterMutation(t *testing.T) {
	co, _, kv, _ := newTestCoordinator(t)

	co.StartStudy()
	raw, ok := kv.m[snapshotKey]
	if !ok {
		t.Fatal("snapshot should be written after a mutation")
	}
	snap, err := decodeSnapshot(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.StudyTimer.Running {
		t.Fatal("persisted snapshot should show the study engine running")
	}

	if _, ok := kv.m[backupKey]; !ok {
		t.Fatal("backup copy should be written alongside the snapshot")
	}
	if !strings.Contains(kv.m[backupKey], "backedUpAt") {
		t.Fatal("backup should carry its timestamp")
	}
}

func TestLastTickWrittenWhileStudying(t *testing.T) {
	co, clock, kv, _ := newTestCoordinator(t)

	co.StartStudy()
	tickN(co, clock, 3)

	raw, ok := kv.m[lastTickKey]
	if !ok {
		t.Fatal("last tick should be recorded while the study engine runs")
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatal(err)
	}
	if !last.Equal(clock.now.Truncate(time.Second)) {
		t.Fatalf("last tick %v should track the clock %v", last, clock.now)
	}
}

func TestPersistFailureDoesNotStopTicking(t *testing.T) {
	co, clock, kv, _ := newTestCoordinator(t)
	co.StartStudy()
	kv.failSave = true

	tickN(co, clock, 10)
	if co.Study.CurrentTime != co.Study.StudyTime-10 {
		t.Fatal("in-memory state must stay authoritative when saves fail")
	}

	// Next successful save catches up.
	kv.failSave = false
	tickN(co, clock, 1)
	snap, err := decodeSnapshot(kv.m[snapshotKey])
	if err != nil {
		t.Fatal(err)
	}
	if snap.StudyTimer.CurrentTime != co.Study.CurrentTime {
		t.Fatal("first successful save should carry the current state")
	}
}

// ============================================================
// Tick routing
// ============================================================

func TestBothTimersTickIndependently(t *testing.T) {
	co, clock, _, _ := newTestCoordinator(t)

	if err := co.SetupChallenge("Math", 10, clock.now); err != nil {
		t.Fatal(err)
	}
	if err := co.StartChallenge(); err != nil {
		t.Fatal(err)
	}
	co.StartStudy()

	tickN(co, clock, 5)

	if co.Challenge.RemainingSeconds != 10*86400-5 {
		t.Fatalf("challenge should have ticked 5 times, remaining %d", co.Challenge.RemainingSeconds)
	}
	if co.Study.CurrentTime != co.Study.StudyTime-5 {
		t.Fatalf("study engine should have ticked 5 times, at %d", co.Study.CurrentTime)
	}
}

func TestStudyCompletionAppendsHistory(t *testing.T) {
	co, clock, _, rec := newTestCoordinator(t)
	co.Study.AutoStartBreak = false
	co.StartStudy()

	tickN(co, clock, co.Study.StudyTime)

	if co.Ledger.Len() != 1 {
		t.Fatalf("expected one history record, got %d", co.Ledger.Len())
	}
	if len(rec.sounds) == 0 {
		t.Fatal("phase completion should play a sound")
	}
	if co.Study.IsStudyTime || co.Study.Running {
		t.Fatal("engine should be paused in break phase")
	}
}

// ============================================================
// Deferred auto-start
// ============================================================

func TestAutoStartFiresAfterDelay(t *testing.T) {
	co, clock, _, _ := newTestCoordinator(t)
	co.StartStudy()

	// Finish the study phase; auto-start of the break is now pending.
	tickN(co, clock, co.Study.StudyTime)
	if co.Study.Running {
		t.Fatal("engine pauses while the auto-start is pending")
	}

	tickN(co, clock, 1)
	if !co.Study.Running {
		t.Fatal("auto-start should fire on the next tick")
	}
	if co.Study.IsStudyTime {
		t.Fatal("auto-start should resume into the break phase")
	}
}

func TestPauseCancelsPendingAutoStart(t *testing.T) {
	co, clock, _, _ := newTestCoordinator(t)
	co.StartStudy()
	tickN(co, clock, co.Study.StudyTime)

	// Stop before the deferred start fires.
	co.PauseStudy()
	tickN(co, clock, 5)
	if co.Study.Running {
		t.Fatal("a cancelled auto-start must not fire")
	}
}

func TestResetCancelsPendingAutoStart(t *testing.T) {
	co, clock, _, _ := newTestCoordinator(t)
	co.StartStudy()
	tickN(co, clock, co.Study.StudyTime)

	co.ResetStudy()
	tickN(co, clock, 5)
	if co.Study.Running {
		t.Fatal("reset must cancel the pending auto-start")
	}
	if !co.Study.IsStudyTime || co.Study.CurrentSession != 1 {
		t.Fatal("reset should land on session 1, study phase")
	}
}

// ============================================================
// Resume after reload
// ============================================================

func TestResumeChallengeAfterGap(t *testing.T) {
	clock := &manualClock{now: testBase}
	kv := newMemKV()
	co := NewCoordinator(kv, clock, nil, nil)
	co.LoadAndResume()

	// A challenge ending 10 seconds from now.
	if err := co.SetupChallenge("Sprint", 1, clock.now); err != nil {
		t.Fatal(err)
	}
	co.Challenge.EndTime = clock.now.Add(10 * time.Second)
	if err := co.StartChallenge(); err != nil {
		t.Fatal(err)
	}
	co.OnTick()

	// Reload 15 seconds later: the challenge expired while unloaded.
	clock.advance(15 * time.Second)
	co2 := NewCoordinator(kv, clock, nil, nil)
	co2.LoadAndResume()

	if !co2.Challenge.Completed() || co2.Challenge.RemainingSeconds != 0 {
		t.Fatalf("expired challenge should be finalized, remaining=%d", co2.Challenge.RemainingSeconds)
	}
	completions := 0
	for range co2.Ledger.Filter(func(r HistoryRecord) bool { return r.Type == RecordChallengeComplete }) {
		completions++
	}
	if completions != 1 {
		t.Fatalf("expected exactly one completion record, got %d", completions)
	}

	// A third load while still expired must not duplicate the record.
	co3 := NewCoordinator(kv, clock, nil, nil)
	co3.LoadAndResume()
	completions = 0
	for range co3.Ledger.Filter(func(r HistoryRecord) bool { return r.Type == RecordChallengeComplete }) {
		completions++
	}
	if completions != 1 {
		t.Fatalf("repeated reload duplicated the record: %d", completions)
	}
}

func TestResumeStudyDrift(t *testing.T) {
	clock := &manualClock{now: testBase}
	kv := newMemKV()
	co := NewCoordinator(kv, clock, nil, nil)
	co.LoadAndResume()
	co.StartStudy()
	tickN(co, clock, 10)
	was := co.Study.CurrentTime

	// 2 minutes pass while the app is closed.
	clock.advance(2 * time.Minute)
	co2 := NewCoordinator(kv, clock, nil, nil)
	co2.LoadAndResume()

	if co2.Study.CurrentTime != was-120 {
		t.Fatalf("expected countdown %d after drift, got %d", was-120, co2.Study.CurrentTime)
	}
	if !co2.Study.Running {
		t.Fatal("a still-live phase should keep running after resume")
	}
}

func TestResumeStudyGapExhaustsPhase(t *testing.T) {
	clock := &manualClock{now: testBase}
	kv := newMemKV()
	co := NewCoordinator(kv, clock, nil, nil)
	co.LoadAndResume()
	co.StartStudy()
	tickN(co, clock, 10)

	// Overnight gap.
	clock.advance(9 * time.Hour)
	co2 := NewCoordinator(kv, clock, nil, nil)
	co2.LoadAndResume()

	sessions := 0
	for range co2.Ledger.Filter(func(r HistoryRecord) bool { return r.Type == RecordStudySession }) {
		sessions++
	}
	if sessions != 1 {
		t.Fatalf("unobserved gap must replay completion once, got %d records", sessions)
	}
	if co2.Study.IsStudyTime {
		t.Fatal("exhausted phase should land in break")
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	clock := &manualClock{now: testBase}
	kv := newMemKV()
	kv.m[snapshotKey] = "{not json"

	co := NewCoordinator(kv, clock, nil, nil)
	co.LoadAndResume()

	// Corrupt state falls back to defaults instead of crashing.
	if co.Study.StudyTime != DefaultStudyTime {
		t.Fatal("corrupt snapshot should leave fresh defaults")
	}
}

// ============================================================
// Daily goal and rollover
// ============================================================

func TestDailyGoalReachedOnce(t *testing.T) {
	co, clock, _, rec := newTestCoordinator(t)
	co.Study.AutoStartBreak = false
	if err := co.ApplySettings(1500, 300, 4, 1800); err != nil {
		t.Fatal(err)
	}

	// Two full study phases cross the 1800s goal.
	co.StartStudy()
	tickN(co, clock, 1500)
	co.SkipStudy() // skip the break
	co.StartStudy()
	tickN(co, clock, 1500)

	if !co.Study.GoalReached {
		t.Fatal("goal should be reached after 3000s studied")
	}
	goalNotes := 0
	for _, m := range rec.messages {
		if strings.Contains(m, "goal") {
			goalNotes++
		}
	}
	if goalNotes != 1 {
		t.Fatalf("goal notification should fire exactly once, got %d", goalNotes)
	}
}

func TestGoalFlagClearsOnNewDay(t *testing.T) {
	co, clock, _, _ := newTestCoordinator(t)
	co.Study.GoalReached = true

	clock.advance(24 * time.Hour)
	co.OnTick()

	if co.Study.GoalReached {
		t.Fatal("goal flag should clear on day rollover")
	}
}

// ============================================================
// Error surfacing
// ============================================================

func TestValidationErrorsNotified(t *testing.T) {
	co, _, _, rec := newTestCoordinator(t)

	if err := co.SetupChallenge("", 10, co.Now()); err == nil {
		t.Fatal("expected validation error")
	}
	if err := co.ApplySettings(100, 300, 4, 7200); err == nil {
		t.Fatal("expected validation error")
	}
	if !rec.sawSeverity(SeverityError) {
		t.Fatal("rejections should surface as error notifications")
	}
}

func TestAggregateAccessors(t *testing.T) {
	co, clock, _, _ := newTestCoordinator(t)
	co.Study.AutoStartBreak = false
	co.StartStudy()
	tickN(co, clock, co.Study.StudyTime)

	if co.TodayTotal() != 1500 {
		t.Fatalf("expected today total 1500, got %d", co.TodayTotal())
	}
	if co.WeekTotal() != 1500 {
		t.Fatalf("expected week total 1500, got %d", co.WeekTotal())
	}
	if co.Streak() != 1 {
		t.Fatalf("expected streak 1, got %d", co.Streak())
	}
}
