//go:build linux

// Command epio-hello serves a fixed HTTP page from a single-threaded
// epio scheduler.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/webriots/epio"
	"github.com/webriots/epio/internal/hello"
)

func main() {
	var (
		port      = flag.Int("port", 8001, "TCP port to listen on")
		backlog   = flag.Int("backlog", 100000, "listen backlog")
		maxEvents = flag.Int("max-events", epio.DefaultMaxEvents, "readiness events collected per wait")
		level     = flag.String("log-level", "info", "log level (trace, debug, info, warn, error)")
		pretty    = flag.Bool("pretty", false, "human readable console logs")
	)
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if *pretty {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		log.Fatal().Err(err).Str("level", *level).Msg("invalid log level")
	}
	log = log.Level(lvl)

	sched, err := epio.New(
		epio.WithMaxEvents(*maxEvents),
		epio.WithLogger(log),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("create scheduler")
	}

	ln, err := hello.Listen(sched, *port, *backlog)
	if err != nil {
		log.Fatal().Err(err).Int("port", *port).Msg("listen")
	}

	ctx := context.Background()
	sched.Spawn(func(ctx context.Context, t *epio.Task) {
		hello.Serve(ctx, t, ln, log)
	})

	log.Info().Int("port", *port).Msg("serving")

	if err := sched.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("scheduler stopped")
	}
}
