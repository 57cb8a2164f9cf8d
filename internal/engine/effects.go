package engine

import "time"

// State transitions do not perform side effects themselves. They return
// Effect values describing what should happen — a notification, a sound,
// a history append, a deferred auto-start — and the Coordinator is the
// only component that executes them. This keeps transitions unit-testable
// without a display or a store.

type EffectKind int

const (
	EffectNotify EffectKind = iota
	EffectSound
	EffectRecord
	EffectAutoStart
)

// Severity mirrors the notification levels of the status line.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Sound identifiers passed to the SoundPlayer collaborator.
const (
	SoundSuccess = "success"
	SoundWarning = "warning"
)

type Effect struct {
	Kind     EffectKind
	Message  string
	Severity Severity
	Sound    string

	// Record is set for EffectRecord.
	Record *HistoryRecord

	// Delay is set for EffectAutoStart: how long to wait before the
	// study engine is started again.
	Delay time.Duration
}

func notifyEffect(msg string, sev Severity) Effect {
	return Effect{Kind: EffectNotify, Message: msg, Severity: sev}
}

func soundEffect(id string) Effect {
	return Effect{Kind: EffectSound, Sound: id}
}

func recordEffect(r HistoryRecord) Effect {
	return Effect{Kind: EffectRecord, Record: &r}
}

func autoStartEffect(delay time.Duration) Effect {
	return Effect{Kind: EffectAutoStart, Delay: delay}
}

// Notifier receives user-facing notifications. Fire and forget; the core
// never consumes a return value.
type Notifier interface {
	Notify(message string, severity Severity)
}

// SoundPlayer plays a named alert sound. Fire and forget.
type SoundPlayer interface {
	PlaySound(id string)
}

// NopNotifier discards notifications. Used when no display is attached.
type NopNotifier struct{}

func (NopNotifier) Notify(string, Severity) {}

// NopSoundPlayer discards sound requests.
type NopSoundPlayer struct{}

func (NopSoundPlayer) PlaySound(string) {}
