/*
Package log provides structured logging for Burrow using zerolog.

The package has two halves. The CLI half configures a process-wide
logger (Init, WithComponent, the Info/Errorf wrappers) and derives the
component loggers it injects into the engine. The engine half is a set
of context helpers (WithWorker, WithJob, WithTopic) that tag an
injected logger with engine identities; they take the logger as an
argument precisely so that engine packages never touch the global.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                           │
	│  CLI side                                                 │
	│  ┌────────────────────────────────────────────┐          │
	│  │  Init(Config) ──► global Logger             │          │
	│  │  WithComponent("queue"/"pool"/...)          │          │
	│  │         │ injected at construction          │          │
	│  └─────────┼──────────────────────────────────┘          │
	│            ▼                                              │
	│  Engine side (no global access)                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │  WithWorker(logger, "batch-1")              │          │
	│  │    worker's lifetime logger                 │          │
	│  │  WithJob(logger, jobID)                     │          │
	│  │    per-execution trace records              │          │
	│  │  WithTopic(logger, "user.created")          │          │
	│  │    per-route fan-out records                │          │
	│  └────────────────────────────────────────────┘          │
	│                                                           │
	│  Output: JSON (production) or console (development)       │
	│  {"level":"warn","component":"worker",                    │
	│   "worker":"batch-1","job_id":"9f1c...",                  │
	│   "job_priority":"batch","message":"job executed"}        │
	└───────────────────────────────────────────────────────────┘

# Levels

ParseLevel maps config strings (debug, info, warn, error) onto zerolog
levels; anything unrecognized falls back to info instead of failing, so a
config typo changes the log level, not the process.

Debug carries per-job trace records and router fan-out decisions; Info
carries lifecycle events (pool start/stop, worker start/stop); Warn carries
failed jobs and dead letters; Error carries spill and spool faults.

# Usage

CLI initialization:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})
	queueLog := log.WithComponent("queue") // inject into queue.Options

Engine context tagging (on an injected logger):

	w.logger = log.WithWorker(injected, name)
	lg := log.WithJob(injected, jobID)
	lg.Warn().Err(err).Msg("job executed")

Standalone logger without the global:

	lg := log.New(log.Config{Level: log.DebugLevel, Output: &buf})

# Integration Points

  - cmd/burrow: Init plus WithComponent for every injected logger
  - pkg/worker: WithWorker wraps the injected logger at construction
  - pkg/job: WithJob tags each execution trace record
  - pkg/router: WithTopic tags routing decisions

# Best Practices

Do:
  - Inject loggers at construction; derive context with the helpers
  - Use structured fields for queryable data
  - Log errors with .Err() for consistent formatting

Don't:
  - Read the global Logger from engine packages
  - Log payload bytes (may carry user data)
  - Use debug level in production

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - pkg/pool for how component loggers flow through the engine
*/
package log
