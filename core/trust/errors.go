package trust

import "errors"

var (
	// ErrStepUpFailed means the presented TOTP code did not verify; the
	// session's failure streak was incremented
	ErrStepUpFailed = errors.New("trust: step-up verification failed")
)
