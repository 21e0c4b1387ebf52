package session

import (
	"time"

	"github.com/kochabx/trustcore/core/tag"
)

// Config holds session lifecycle and risk-scoring configuration. The weights
// are tunable defaults, not mandated constants.
type Config struct {
	// IdleTimeoutSeconds expires a session after this much inactivity
	IdleTimeoutSeconds int64 `json:"idleTimeoutSeconds" default:"1800"`

	// AbsoluteTimeoutSeconds expires a session this long after creation
	// regardless of activity
	AbsoluteTimeoutSeconds int64 `json:"absoluteTimeoutSeconds" default:"28800"`

	// MaxConcurrentSessions caps active sessions per user; the oldest is
	// evicted when the cap is reached
	MaxConcurrentSessions int `json:"maxConcurrentSessions" default:"3"`

	// IPSubnetToleranceBits treats addresses in the same prefix as a soft
	// mismatch, accommodating mobile carrier NAT rotation
	IPSubnetToleranceBits int `json:"ipSubnetToleranceBits" default:"24"`

	// Risk weights added per anomaly observation
	SubnetMismatchWeight    int `json:"subnetMismatchWeight" default:"10"`
	IPMismatchWeight        int `json:"ipMismatchWeight" default:"25"`
	UserAgentMismatchWeight int `json:"userAgentMismatchWeight" default:"15"`
	FailureStreakWeight     int `json:"failureStreakWeight" default:"5"`

	// RiskEscalationThreshold is the cumulative score at which step-up
	// authentication is required instead of outright rejection
	RiskEscalationThreshold int `json:"riskEscalationThreshold" default:"50"`

	// SweepWorkers sizes the worker pool used by SweepExpired
	SweepWorkers int `json:"sweepWorkers" default:"4"`
}

func (c *Config) init() error {
	return tag.ApplyDefaults(c)
}

// IdleTimeout returns the idle timeout as a duration
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// AbsoluteTimeout returns the absolute timeout as a duration
func (c *Config) AbsoluteTimeout() time.Duration {
	return time.Duration(c.AbsoluteTimeoutSeconds) * time.Second
}
