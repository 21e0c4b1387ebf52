package trust

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kochabx/trustcore/core/token/blacklist"
)

// janitor runs the periodic maintenance sweeps: expired sessions, idle
// rate-limit buckets and stale blacklist entries
type janitor struct {
	core *Core
	cron *cron.Cron
}

func newJanitor(core *Core, spec string) (*janitor, error) {
	j := &janitor{
		core: core,
		cron: cron.New(),
	}
	if _, err := j.cron.AddFunc(spec, j.sweep); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *janitor) start() {
	j.cron.Start()
}

func (j *janitor) stop() {
	<-j.cron.Stop().Done()
}

func (j *janitor) sweep() {
	now := time.Now()

	removed := j.core.sessions.SweepExpired(now)
	j.core.limiter.Sweep(now)

	if purger, ok := j.core.blacklistRaw.(*blacklist.Memory); ok {
		purger.Purge(now)
	}

	j.core.logger.Debug().
		Int("sessions_removed", removed).
		Msg("janitor sweep completed")
}
