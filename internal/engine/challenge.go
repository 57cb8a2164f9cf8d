package engine

import (
	"fmt"
	"time"
)

const (
	minChallengeDays = 1
	maxChallengeDays = 365
)

// ChallengeTimer is a long-duration countdown tied to a study topic.
// It moves through four states: unconfigured, paused, running, and
// completed (remaining == 0). A completed challenge stays terminal until
// Setup replaces it.
//
// All transitions are pure: they mutate the timer and return effect
// descriptions for the coordinator to execute.
type ChallengeTimer struct {
	Topic            string
	Days             int
	TotalSeconds     int
	RemainingSeconds int
	Running          bool
	StartTime        time.Time
	EndTime          time.Time

	// CompletionRecorded guards against appending a second
	// challenge_complete record when an already-expired challenge is
	// finalized again on a later load.
	CompletionRecorded bool
}

// Configured reports whether a challenge has been set up.
func (c *ChallengeTimer) Configured() bool { return c.TotalSeconds > 0 }

// Completed reports whether the countdown has been exhausted.
func (c *ChallengeTimer) Completed() bool {
	return c.Configured() && c.RemainingSeconds <= 0
}

// Setup configures a new challenge, replacing any previous one. It is
// rejected while the timer is running.
func (c *ChallengeTimer) Setup(topic string, days int, startDate time.Time) ([]Effect, error) {
	if c.Running {
		return nil, stateErr("setup challenge", "cannot edit a running challenge")
	}
	if days < minChallengeDays || days > maxChallengeDays {
		return nil, validationErr("days", fmt.Sprintf("must be between %d and %d", minChallengeDays, maxChallengeDays))
	}
	if topic == "" {
		return nil, validationErr("topic", "must not be empty")
	}
	if startDate.IsZero() {
		return nil, validationErr("start date", "must be set")
	}

	c.Topic = topic
	c.Days = days
	c.TotalSeconds = days * 24 * 60 * 60
	c.RemainingSeconds = c.TotalSeconds
	c.Running = false
	c.StartTime = startDate
	c.EndTime = startDate.AddDate(0, 0, days)
	c.CompletionRecorded = false

	return []Effect{
		notifyEffect(fmt.Sprintf("Challenge set: %s — %d days", topic, days), SeveritySuccess),
	}, nil
}

// Start begins the countdown. Starting a running timer is a no-op;
// starting a completed one is rejected.
func (c *ChallengeTimer) Start(now time.Time) ([]Effect, error) {
	if c.Running {
		return nil, nil
	}
	if !c.Configured() || c.RemainingSeconds <= 0 {
		return nil, stateErr("start challenge", "challenge is already complete")
	}

	c.Running = true
	c.StartTime = now
	return []Effect{
		notifyEffect("Challenge timer started!", SeveritySuccess),
	}, nil
}

// Stop halts the countdown, preserving the remaining time. Stopping a
// stopped timer is a no-op.
func (c *ChallengeTimer) Stop() []Effect {
	if !c.Running {
		return nil
	}
	c.Running = false
	return []Effect{
		notifyEffect("Challenge timer stopped", SeverityWarning),
	}
}

// Tick advances the countdown by one second. Only effective while
// running; the transition to completed fires exactly once.
func (c *ChallengeTimer) Tick(now time.Time) []Effect {
	if !c.Running {
		return nil
	}
	c.RemainingSeconds--
	if c.RemainingSeconds > 0 {
		return nil
	}
	return c.complete(now)
}

// Resume reconciles the timer against the wall clock after a reload.
// The remaining time is recomputed from the stored end time rather than
// trusting the stale persisted count, so time that passed while the app
// was closed still counts down. An expired challenge is finalized
// immediately.
func (c *ChallengeTimer) Resume(now time.Time) []Effect {
	if !c.Running || c.EndTime.IsZero() {
		return nil
	}
	remaining := int(c.EndTime.Sub(now).Seconds())
	if remaining > 0 {
		c.RemainingSeconds = remaining
		return nil
	}
	return c.complete(now)
}

func (c *ChallengeTimer) complete(now time.Time) []Effect {
	c.Running = false
	c.RemainingSeconds = 0

	effects := []Effect{
		notifyEffect("Challenge complete! Congratulations!", SeveritySuccess),
		soundEffect(SoundSuccess),
	}
	if !c.CompletionRecorded {
		c.CompletionRecorded = true
		effects = append(effects, recordEffect(HistoryRecord{
			Type:     RecordChallengeComplete,
			Topic:    c.Topic,
			Duration: c.TotalSeconds,
			Date:     now,
			Status:   StatusCompleted,
		}))
	}
	return effects
}
