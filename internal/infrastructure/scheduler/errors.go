package scheduler

import "errors"

var (
	// ErrUnknownJob is returned when running a job name that is not registered
	ErrUnknownJob = errors.New("unknown scheduler job")

	// ErrJobRunning is returned when a job is triggered while its previous run is still going
	ErrJobRunning = errors.New("scheduler job is already running")

	// ErrInvalidConfig is returned when a cron spec cannot be parsed
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
