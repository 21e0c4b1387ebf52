package rate

import "errors"

var (
	ErrUnknownRule = errors.New("rate: unknown rule")
	ErrNoRules     = errors.New("rate: at least one rule is required")
)
