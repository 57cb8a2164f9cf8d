package engine

import (
	"fmt"
	"time"
)

// Bounds enforced by ApplySettings.
const (
	minStudyTime = 300  // 5 min
	maxStudyTime = 7200 // 2 h
	minBreakTime = 60
	maxBreakTime = 1800
	minSessions  = 1
	maxSessions  = 10
	minDailyGoal = 1800  // 30 min
	maxDailyGoal = 43200 // 12 h
)

// Defaults for a fresh engine.
const (
	DefaultStudyTime = 25 * 60
	DefaultBreakTime = 5 * 60
	DefaultSessions  = 4
	DefaultDailyGoal = 2 * 60 * 60
)

// autoStartDelay is the pause between a completed phase and the
// automatic start of the next one.
const autoStartDelay = time.Second

// StudyEngine is the pomodoro-style study/break cycle. A full cycle is
// Sessions study phases, each followed by a break; completing the last
// break resets the cycle to session 1, study phase, paused.
//
// CurrentTime always counts down within the duration of the current
// phase. Natural phase completion leaves the engine paused and, where
// auto-continuation applies, raises a deferred auto-start effect instead
// of restarting itself.
type StudyEngine struct {
	StudyTime      int // seconds per study phase
	BreakTime      int // seconds per break phase
	Sessions       int // study sessions per full cycle
	CurrentTime    int
	CurrentSession int
	IsStudyTime    bool
	Running        bool

	TotalSessionsCompleted int // lifetime, never reset

	DailyGoal      int // seconds of study per day
	GoalReached    bool
	AutoStartBreak bool
}

func NewStudyEngine() *StudyEngine {
	return &StudyEngine{
		StudyTime:      DefaultStudyTime,
		BreakTime:      DefaultBreakTime,
		Sessions:       DefaultSessions,
		CurrentTime:    DefaultStudyTime,
		CurrentSession: 1,
		IsStudyTime:    true,
		DailyGoal:      DefaultDailyGoal,
		AutoStartBreak: true,
	}
}

// PhaseDuration is the full length of the current phase.
func (e *StudyEngine) PhaseDuration() int {
	if e.IsStudyTime {
		return e.StudyTime
	}
	return e.BreakTime
}

// Start begins counting down the current phase. No-op if already running.
func (e *StudyEngine) Start() []Effect {
	if e.Running {
		return nil
	}
	e.Running = true
	return []Effect{
		notifyEffect("Study timer started!", SeveritySuccess),
	}
}

// Pause halts the countdown. No-op if not running.
func (e *StudyEngine) Pause() []Effect {
	if !e.Running {
		return nil
	}
	e.Running = false
	return []Effect{
		notifyEffect("Study timer paused", SeverityWarning),
	}
}

// Reset unconditionally returns the engine to session 1, study phase,
// paused. The lifetime session counter is untouched.
func (e *StudyEngine) Reset() []Effect {
	e.Running = false
	e.CurrentTime = e.StudyTime
	e.CurrentSession = 1
	e.IsStudyTime = true
	return []Effect{
		notifyEffect("Study timer reset", SeverityInfo),
	}
}

// Skip advances to the other phase without waiting for the countdown.
// Unlike natural expiry it records no history and never auto-starts.
func (e *StudyEngine) Skip() []Effect {
	if e.IsStudyTime {
		e.IsStudyTime = false
		e.CurrentTime = e.BreakTime
	} else {
		e.IsStudyTime = true
		e.CurrentTime = e.StudyTime
		e.CurrentSession++
		if e.CurrentSession > e.Sessions {
			return e.completeAllSessions()
		}
	}
	return []Effect{
		notifyEffect("Session skipped", SeverityInfo),
		soundEffect(SoundWarning),
	}
}

// Tick advances the countdown by one second. Only effective while
// running; hitting zero triggers the same completion logic as natural
// expiry.
func (e *StudyEngine) Tick(now time.Time) []Effect {
	if !e.Running {
		return nil
	}
	e.CurrentTime--
	if e.CurrentTime > 0 {
		return nil
	}
	return e.completePhase(now)
}

// Resume reconciles the countdown with real time that elapsed while the
// app was not ticking. If the gap exhausts the current phase, the
// natural-completion logic runs exactly once — not once per elapsed
// second — so an overnight gap cannot flood the history log.
func (e *StudyEngine) Resume(now time.Time, elapsed time.Duration) []Effect {
	if !e.Running {
		return nil
	}
	gap := int(elapsed.Seconds())
	if gap <= 0 {
		return nil
	}
	if gap < e.CurrentTime {
		e.CurrentTime -= gap
		return nil
	}
	e.CurrentTime = 0
	return e.completePhase(now)
}

// completePhase handles natural expiry of the current phase. Each call
// raises at most one of the session-complete or cycle-complete events.
func (e *StudyEngine) completePhase(now time.Time) []Effect {
	e.Running = false

	if e.IsStudyTime {
		// Study phase done: record it, hand over to the break.
		e.IsStudyTime = false
		e.CurrentTime = e.BreakTime
		e.TotalSessionsCompleted++

		effects := []Effect{
			recordEffect(HistoryRecord{
				Type:     RecordStudySession,
				Duration: e.StudyTime,
				Date:     now,
				Session:  e.CurrentSession,
				Status:   StatusCompleted,
			}),
			notifyEffect("Study session done! Take a break.", SeveritySuccess),
			soundEffect(SoundSuccess),
		}
		if e.AutoStartBreak {
			effects = append(effects, autoStartEffect(autoStartDelay))
		}
		return effects
	}

	// Break done: back to studying, or full cycle complete.
	e.IsStudyTime = true
	e.CurrentTime = e.StudyTime
	e.CurrentSession++
	if e.CurrentSession > e.Sessions {
		return e.completeAllSessions()
	}
	return []Effect{
		notifyEffect("Break over! Back to studying.", SeveritySuccess),
		soundEffect(SoundSuccess),
		autoStartEffect(autoStartDelay),
	}
}

func (e *StudyEngine) completeAllSessions() []Effect {
	e.Running = false
	e.CurrentSession = 1
	e.IsStudyTime = true
	e.CurrentTime = e.StudyTime
	return []Effect{
		notifyEffect("All sessions complete! Congratulations!", SeveritySuccess),
		soundEffect(SoundSuccess),
	}
}

// ApplySettings validates and applies new durations. The first
// out-of-range field is named in the rejection and nothing changes. When
// the engine is paused the countdown is also re-seeded for the new study
// time.
func (e *StudyEngine) ApplySettings(studyTime, breakTime, sessions, dailyGoal int) ([]Effect, error) {
	if studyTime < minStudyTime || studyTime > maxStudyTime {
		return nil, validationErr("study time", fmt.Sprintf("must be between %d and %d minutes", minStudyTime/60, maxStudyTime/60))
	}
	if breakTime < minBreakTime || breakTime > maxBreakTime {
		return nil, validationErr("break time", fmt.Sprintf("must be between %d and %d minutes", minBreakTime/60, maxBreakTime/60))
	}
	if sessions < minSessions || sessions > maxSessions {
		return nil, validationErr("sessions", fmt.Sprintf("must be between %d and %d", minSessions, maxSessions))
	}
	if dailyGoal < minDailyGoal || dailyGoal > maxDailyGoal {
		return nil, validationErr("daily goal", fmt.Sprintf("must be between %.1f and %.0f hours", float64(minDailyGoal)/3600, float64(maxDailyGoal)/3600))
	}

	e.StudyTime = studyTime
	e.BreakTime = breakTime
	e.Sessions = sessions
	e.DailyGoal = dailyGoal

	if !e.Running {
		e.CurrentTime = studyTime
		e.CurrentSession = 1
		e.IsStudyTime = true
	}

	return []Effect{
		notifyEffect("Timer settings updated", SeveritySuccess),
	}, nil
}

// CheckDailyGoal marks the goal reached the first time the day's study
// total crosses it. One notification per day; the coordinator clears the
// flag on day rollover.
func (e *StudyEngine) CheckDailyGoal(todayTotal int) []Effect {
	if e.GoalReached || todayTotal < e.DailyGoal {
		return nil
	}
	e.GoalReached = true
	return []Effect{
		notifyEffect("Daily study goal reached!", SeveritySuccess),
		soundEffect(SoundSuccess),
	}
}
