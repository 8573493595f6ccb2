package app

import (
	"time"

	"github.com/adanyl0v/studyboard/internal/config"
	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/scheduler"
	"github.com/adanyl0v/studyboard/internal/services"
)

// mustStartScheduler starts the daily digest and returns a function
// that stops it. A disabled scheduler returns a no-op.
func mustStartScheduler(publisher events.Publisher) (stop func()) {
	cfg := config.Global().Scheduler
	if !cfg.Enabled {
		globalLogger.Info().Msg("scheduler disabled")
		return func() {}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("timezone", cfg.Timezone).
			Msg("failed to load scheduler timezone")
		panic(err)
	}

	s := scheduler.New(Logger("scheduler"), loc)
	digest := scheduler.NewDigestJob(
		Logger("digest"),
		services.NewDueTaskLister(Logger("tasks"), globalPostgresPool),
		publisher,
	)
	_, err = s.ScheduleDaily(cfg.DigestTime, digest.Run)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("digest_time", cfg.DigestTime).
			Msg("failed to schedule digest")
		panic(err)
	}

	s.Start()
	return s.Stop
}
