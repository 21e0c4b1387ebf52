package session

import (
	"fmt"
	"time"
)

// SecurityLevel tracks how strongly a session has been verified
type SecurityLevel int

const (
	// LevelNormal is the state after password login
	LevelNormal SecurityLevel = iota
	// LevelElevated is reached after step-up authentication
	LevelElevated
	// LevelHigh marks a session that accumulated risk again after elevation
	LevelHigh
)

var levelNames = map[SecurityLevel]string{
	LevelNormal:   "normal",
	LevelElevated: "elevated",
	LevelHigh:     "high",
}

func (l SecurityLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (l SecurityLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *SecurityLevel) UnmarshalText(text []byte) error {
	for level, name := range levelNames {
		if name == string(text) {
			*l = level
			return nil
		}
	}
	return fmt.Errorf("session: unknown security level %q", text)
}

// Record is one live session. It is owned exclusively by the Store; callers
// only ever see copies.
type Record struct {
	ID                  string        `json:"id"`
	UserID              string        `json:"userId"`
	CreatedAt           time.Time     `json:"createdAt"`
	LastActivityAt      time.Time     `json:"lastActivityAt"`
	OriginIP            string        `json:"originIp"`
	UserAgentHash       string        `json:"userAgentHash"`
	Level               SecurityLevel `json:"level"`
	RiskScore           int           `json:"riskScore"`
	ConsecutiveFailures int           `json:"consecutiveFailures"`
}

func (r *Record) idleExpired(now time.Time, idle time.Duration) bool {
	return now.Sub(r.LastActivityAt) > idle
}

func (r *Record) absoluteExpired(now time.Time, absolute time.Duration) bool {
	return now.Sub(r.CreatedAt) > absolute
}

// ValidationResult reports the outcome of validating a live session
type ValidationResult struct {
	UserID    string
	Level     SecurityLevel
	RiskScore int
	// RiskDelta is what this validation added to the score
	RiskDelta int
	// StepUpRequired is set once the cumulative score crosses the
	// escalation threshold; the session stays valid but sensitive
	// operations must demand a second factor
	StepUpRequired bool
}
