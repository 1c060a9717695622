package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/habedi/photofeed/cmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// main sets up logging from DEBUG_PHOTOFEED, cancels in-flight work on an
// interrupt or termination signal and runs the command line.
func main() {
	configureLogLevelFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := setupInterruptListener()
	go handleInterrupt(stopChan, cancel, func(msg string) { log.Warn().Msg(msg) })

	code := cmd.Execute(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

// configureLogLevelFromEnv enables debug logging when DEBUG_PHOTOFEED is set
// to anything but "", "0" or "false"; otherwise logging is disabled.
func configureLogLevelFromEnv() {
	switch os.Getenv("DEBUG_PHOTOFEED") {
	case "", "0", "false":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func setupInterruptListener() chan os.Signal {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	return stopChan
}

// handleInterrupt cancels the command's context when an interrupt arrives, so
// requests in flight end as canceled and the command returns.
func handleInterrupt(stopChan chan os.Signal, cancel context.CancelFunc, logFn func(string)) {
	<-stopChan
	logFn("Interrupt signal received. Canceling...")
	cancel()
}
