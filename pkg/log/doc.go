/*
Package log provides structured logging for the naming client using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("beat-reactor")             │          │
	│  │  - WithService("order-service")              │          │
	│  │  - WithInstance("order-service#10.0.0.1#8080")│         │
	│  │  - WithRequestID(uuid)                       │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │                                              │          │
	│  │  JSON Format:                               │          │
	│  │  {                                           │          │
	│  │    "level": "info",                         │          │
	│  │    "component": "beat-reactor",             │          │
	│  │    "time": "2024-10-13T10:30:00Z",         │          │
	│  │    "message": "beat sent"                   │          │
	│  │  }                                           │          │
	│  │                                              │          │
	│  │  Console Format:                            │          │
	│  │  10:30AM INF beat sent component=beat-reactor│         │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from every package in the client
  - Thread-safe concurrent writes

Log Levels:
  - Debug: Detailed debugging information
  - Info: General informational messages
  - Warn: Warning messages (potential issues)
  - Error: Error messages (operation failed)
  - Fatal: Critical errors (process exits)

Context Loggers:
  - WithComponent: Add component name to all logs
  - WithService: Add service name context
  - WithInstance: Add instance key context ("{service}#{ip}#{port}")
  - WithRequestID: Add per-attempt request correlation ID

# Usage

Initializing the Logger:

	import "github.com/sezi-yuan/nacos-naming-go/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Simple Logging:

	log.Logger.Info().Msg("naming client starting")
	log.Logger.Debug().Msg("polling server list")
	log.Logger.Warn().Msg("beat ack reported instance not found")
	log.Logger.Error().Err(err).Msg("failed to reach any naming server")

Component Loggers:

	beatLog := log.WithComponent("beat-reactor")
	beatLog.Info().Msg("started heartbeat loop")

	instLog := log.WithService("order-service").
		With().Str("instance", "order-service#10.0.0.1#8080").Logger()
	instLog.Warn().Msg("beat ack: resource not found, re-registering")

# Integration Points

This package is used by every component:

  - pkg/remote: logs request attempts, rotation, and failures
  - pkg/token: logs login and refresh outcomes
  - pkg/cache: logs diff results and failover persistence
  - pkg/beat: logs per-instance heartbeat lifecycle
  - pkg/push: logs UDP push reception and decode failures
  - pkg/naming: logs facade-level operations

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once at application start
  - Accessible from all packages without passing

Context Logger Pattern:
  - Create child loggers with context fields
  - Pass context loggers into long-lived goroutines (the beat reactor holds
    one WithInstance logger per task for its whole lifetime)

# Best Practices

Do:
  - Use Info level for production
  - Create service/instance-scoped loggers for long-running loops
  - Log errors with .Err() so the error chain is preserved

Don't:
  - Log access tokens or credentials
  - Use Debug level in production
  - Log in tight loops (the beat reactor logs once per period, not per retry)

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
*/
package log
