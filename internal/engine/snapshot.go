package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the full persisted application state: both timers plus the
// history log, serialized as one JSON document. The coordinator writes it
// after every mutation and reads it once at startup.
type Snapshot struct {
	ChallengeTimer challengeSnapshot `json:"challengeTimer"`
	StudyTimer     studySnapshot     `json:"studyTimer"`
	StudyHistory   []HistoryRecord   `json:"studyHistory"`
}

type challengeSnapshot struct {
	Topic              string     `json:"topic"`
	Days               int        `json:"days"`
	TotalSeconds       int        `json:"totalSeconds"`
	RemainingSeconds   int        `json:"remainingSeconds"`
	Running            bool       `json:"running"`
	StartTime          *time.Time `json:"startTime"`
	EndTime            *time.Time `json:"endTime"`
	CompletionRecorded bool       `json:"completionRecorded"`
}

type studySnapshot struct {
	StudyTime              int  `json:"studyTime"`
	BreakTime              int  `json:"breakTime"`
	Sessions               int  `json:"sessions"`
	CurrentTime            int  `json:"currentTime"`
	CurrentSession         int  `json:"currentSession"`
	IsStudyTime            bool `json:"isStudyTime"`
	Running                bool `json:"running"`
	TotalSessionsCompleted int  `json:"totalSessionsCompleted"`
	DailyGoal              int  `json:"dailyGoal"`
	GoalReached            bool `json:"goalReached"`
	AutoStartBreak         bool `json:"autoStartBreak"`
}

func takeSnapshot(c *ChallengeTimer, e *StudyEngine, l *Ledger) Snapshot {
	snap := Snapshot{
		ChallengeTimer: challengeSnapshot{
			Topic:              c.Topic,
			Days:               c.Days,
			TotalSeconds:       c.TotalSeconds,
			RemainingSeconds:   c.RemainingSeconds,
			Running:            c.Running,
			CompletionRecorded: c.CompletionRecorded,
		},
		StudyTimer: studySnapshot{
			StudyTime:              e.StudyTime,
			BreakTime:              e.BreakTime,
			Sessions:               e.Sessions,
			CurrentTime:            e.CurrentTime,
			CurrentSession:         e.CurrentSession,
			IsStudyTime:            e.IsStudyTime,
			Running:                e.Running,
			TotalSessionsCompleted: e.TotalSessionsCompleted,
			DailyGoal:              e.DailyGoal,
			GoalReached:            e.GoalReached,
			AutoStartBreak:         e.AutoStartBreak,
		},
		StudyHistory: l.Records(),
	}
	if !c.StartTime.IsZero() {
		t := c.StartTime
		snap.ChallengeTimer.StartTime = &t
	}
	if !c.EndTime.IsZero() {
		t := c.EndTime
		snap.ChallengeTimer.EndTime = &t
	}
	return snap
}

// restore rebuilds the in-memory state from a snapshot. Missing or
// zero-valued settings fall back to defaults, mirroring how the original
// merged a parsed snapshot over its default state.
func (s Snapshot) restore() (*ChallengeTimer, *StudyEngine, *Ledger) {
	c := &ChallengeTimer{
		Topic:              s.ChallengeTimer.Topic,
		Days:               s.ChallengeTimer.Days,
		TotalSeconds:       s.ChallengeTimer.TotalSeconds,
		RemainingSeconds:   s.ChallengeTimer.RemainingSeconds,
		Running:            s.ChallengeTimer.Running,
		CompletionRecorded: s.ChallengeTimer.CompletionRecorded,
	}
	if s.ChallengeTimer.StartTime != nil {
		c.StartTime = *s.ChallengeTimer.StartTime
	}
	if s.ChallengeTimer.EndTime != nil {
		c.EndTime = *s.ChallengeTimer.EndTime
	}

	e := NewStudyEngine()
	st := s.StudyTimer
	if st.StudyTime > 0 {
		e.StudyTime = st.StudyTime
	}
	if st.BreakTime > 0 {
		e.BreakTime = st.BreakTime
	}
	if st.Sessions > 0 {
		e.Sessions = st.Sessions
	}
	if st.DailyGoal > 0 {
		e.DailyGoal = st.DailyGoal
	}
	if st.CurrentSession > 0 {
		e.CurrentSession = st.CurrentSession
	}
	e.CurrentTime = st.CurrentTime
	e.IsStudyTime = st.IsStudyTime
	e.Running = st.Running
	e.TotalSessionsCompleted = st.TotalSessionsCompleted
	e.GoalReached = st.GoalReached
	e.AutoStartBreak = st.AutoStartBreak

	return c, e, NewLedger(s.StudyHistory)
}

func encodeSnapshot(s Snapshot) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data), nil
}

func encodeBackup(b backup) (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	return string(data), nil
}

func decodeSnapshot(raw string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
