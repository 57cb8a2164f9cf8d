package engine

import (
	"fmt"
	"log"
	"time"
)

// Store keys owned by the coordinator. Nothing else reads or writes the
// persistent store.
const (
	snapshotKey = "snapshot"
	lastTickKey = "last_tick"
	backupKey   = "backup"
)

// KV is the persistence contract: an opaque key→string store that
// survives restarts. Writes can fail (size limits); the coordinator
// treats failures as recoverable.
type KV interface {
	Load(key string) (value string, ok bool, err error)
	Save(key, value string) error
}

// PersistenceError wraps a store failure. It is logged and swallowed at
// the tick-loop boundary; in-memory state stays authoritative and the
// next successful save catches up.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Coordinator owns the application state: both timer state machines, the
// history ledger, and the sole connection to the persistent store. It
// resumes state on load, drives the shared once-per-second tick, runs
// the effects transitions return, and persists after every mutation.
//
// Everything is synchronous; the host calls OnTick from a single
// goroutine and no state escapes between ticks.
type Coordinator struct {
	Challenge *ChallengeTimer
	Study     *StudyEngine
	Ledger    *Ledger

	clock    Clock
	kv       KV
	notifier Notifier
	sound    SoundPlayer

	// autoStartAt is the deadline of a pending deferred auto-start,
	// zero when none is scheduled. Checked each tick; any manual study
	// operation cancels it.
	autoStartAt time.Time

	lastDay string // local calendar day of the previous tick
}

func NewCoordinator(kv KV, clock Clock, notifier Notifier, sound SoundPlayer) *Coordinator {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if sound == nil {
		sound = NopSoundPlayer{}
	}
	return &Coordinator{
		Challenge: &ChallengeTimer{},
		Study:     NewStudyEngine(),
		Ledger:    NewLedger(nil),
		clock:     clock,
		kv:        kv,
		notifier:  notifier,
		sound:     sound,
	}
}

func localDay(t time.Time) string { return t.Local().Format(time.DateOnly) }

// LoadAndResume reads the persisted snapshot and reconciles both timers
// against the wall clock. A timer that was running and is now exhausted
// completes immediately instead of waiting for the next tick. Load
// failures leave the coordinator on fresh defaults.
func (co *Coordinator) LoadAndResume() {
	now := co.clock.Now()
	co.lastDay = localDay(now)

	raw, ok, err := co.kv.Load(snapshotKey)
	if err != nil {
		log.Printf("%v", &PersistenceError{Op: "load snapshot", Err: err})
		return
	}
	if !ok {
		return
	}
	snap, err := decodeSnapshot(raw)
	if err != nil {
		log.Printf("%v", &PersistenceError{Op: "load snapshot", Err: err})
		return
	}
	co.Challenge, co.Study, co.Ledger = snap.restore()

	effects := co.Challenge.Resume(now)

	if co.Study.Running {
		if rawTick, ok, err := co.kv.Load(lastTickKey); err == nil && ok {
			if last, perr := time.Parse(time.RFC3339, rawTick); perr == nil {
				effects = append(effects, co.Study.Resume(now, now.Sub(last))...)
			}
		}
	}

	co.runEffects(effects, now)
	co.persist(now)
}

// OnTick advances whichever timers are running by one second. The two
// timers are independent; both may run at once. The snapshot is
// persisted whenever anything moved.
func (co *Coordinator) OnTick() {
	now := co.clock.Now()
	dirty := false

	if day := localDay(now); day != co.lastDay {
		co.lastDay = day
		if co.Study.GoalReached {
			co.Study.GoalReached = false
			dirty = true
		}
	}

	var effects []Effect

	if !co.autoStartAt.IsZero() && !now.Before(co.autoStartAt) {
		co.autoStartAt = time.Time{}
		effects = append(effects, co.Study.Start()...)
		dirty = true
	}

	if co.Challenge.Running {
		effects = append(effects, co.Challenge.Tick(now)...)
		dirty = true
	}
	if co.Study.Running {
		effects = append(effects, co.Study.Tick(now)...)
		dirty = true
	}

	co.runEffects(effects, now)

	if dirty || len(effects) > 0 {
		co.persist(now)
	}
}

// --- Challenge operations ---

func (co *Coordinator) SetupChallenge(topic string, days int, startDate time.Time) error {
	now := co.clock.Now()
	effects, err := co.Challenge.Setup(topic, days, startDate)
	if err != nil {
		co.notifier.Notify(err.Error(), SeverityError)
		return err
	}
	co.runEffects(effects, now)
	co.persist(now)
	return nil
}

func (co *Coordinator) StartChallenge() error {
	now := co.clock.Now()
	effects, err := co.Challenge.Start(now)
	if err != nil {
		co.notifier.Notify(err.Error(), SeverityError)
		return err
	}
	co.runEffects(effects, now)
	co.persist(now)
	return nil
}

func (co *Coordinator) StopChallenge() {
	now := co.clock.Now()
	co.runEffects(co.Challenge.Stop(), now)
	co.persist(now)
}

// --- Study operations ---

func (co *Coordinator) StartStudy() {
	now := co.clock.Now()
	co.autoStartAt = time.Time{}
	co.runEffects(co.Study.Start(), now)
	co.persist(now)
}

func (co *Coordinator) PauseStudy() {
	now := co.clock.Now()
	co.autoStartAt = time.Time{}
	co.runEffects(co.Study.Pause(), now)
	co.persist(now)
}

func (co *Coordinator) ResetStudy() {
	now := co.clock.Now()
	co.autoStartAt = time.Time{}
	co.runEffects(co.Study.Reset(), now)
	co.persist(now)
}

func (co *Coordinator) SkipStudy() {
	now := co.clock.Now()
	co.autoStartAt = time.Time{}
	co.runEffects(co.Study.Skip(), now)
	co.persist(now)
}

func (co *Coordinator) ApplySettings(studyTime, breakTime, sessions, dailyGoal int) error {
	now := co.clock.Now()
	effects, err := co.Study.ApplySettings(studyTime, breakTime, sessions, dailyGoal)
	if err != nil {
		co.notifier.Notify(err.Error(), SeverityError)
		return err
	}
	co.runEffects(effects, now)
	co.persist(now)
	return nil
}

// SetAutoStartBreak toggles automatic continuation after a completed
// study phase.
func (co *Coordinator) SetAutoStartBreak(on bool) {
	co.Study.AutoStartBreak = on
	co.persist(co.clock.Now())
}

// --- Aggregate accessors (derived, never cached) ---

func (co *Coordinator) TodayTotal() int {
	return co.Ledger.TotalForDay(co.clock.Now())
}

func (co *Coordinator) WeekTotal() int {
	return co.Ledger.TotalForTrailingDays(co.clock.Now(), 7)
}

func (co *Coordinator) Streak() int {
	return co.Ledger.ConsecutiveStudyStreak(co.clock.Now())
}

func (co *Coordinator) Now() time.Time { return co.clock.Now() }

// --- Effects and persistence ---

func (co *Coordinator) runEffects(effects []Effect, now time.Time) {
	for _, ef := range effects {
		switch ef.Kind {
		case EffectNotify:
			co.notifier.Notify(ef.Message, ef.Severity)
		case EffectSound:
			co.sound.PlaySound(ef.Sound)
		case EffectRecord:
			if err := co.Ledger.Append(*ef.Record); err != nil {
				log.Printf("drop history record: %v", err)
				continue
			}
			if ef.Record.Type == RecordStudySession {
				co.runEffects(co.Study.CheckDailyGoal(co.Ledger.TotalForDay(now)), now)
			}
		case EffectAutoStart:
			co.autoStartAt = now.Add(ef.Delay)
		}
	}
}

// backup mirrors the snapshot under a second key with a timestamp, the
// original's auto-backup behavior.
type backup struct {
	Snapshot
	BackedUpAt time.Time `json:"backedUpAt"`
}

// persist writes the full snapshot, the last-tick timestamp, and the
// backup copy. Failures are logged and swallowed; the tick loop must
// never die on a full or broken store.
func (co *Coordinator) persist(now time.Time) {
	snap := takeSnapshot(co.Challenge, co.Study, co.Ledger)

	raw, err := encodeSnapshot(snap)
	if err != nil {
		log.Printf("%v", &PersistenceError{Op: "save snapshot", Err: err})
		return
	}
	if err := co.kv.Save(snapshotKey, raw); err != nil {
		log.Printf("%v", &PersistenceError{Op: "save snapshot", Err: err})
	}

	if co.Study.Running {
		if err := co.kv.Save(lastTickKey, now.Format(time.RFC3339)); err != nil {
			log.Printf("%v", &PersistenceError{Op: "save last tick", Err: err})
		}
	}

	if rawBackup, err := encodeBackup(backup{Snapshot: snap, BackedUpAt: now}); err == nil {
		if err := co.kv.Save(backupKey, rawBackup); err != nil {
			log.Printf("%v", &PersistenceError{Op: "save backup", Err: err})
		}
	}
}
