package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const MAX_UNGRACEFUL_TEARDOWN_DURATION = 500 * time.Millisecond

// cancelOnSigintSigterm creates a goroutine that calls cancel on SIGINT or SIGTERM. If the process is still
// running MAX_UNGRACEFUL_TEARDOWN_DURATION after, os.Exit(128+signal) is called.
func cancelOnSigintSigterm(cancel context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-ch
		code := 128
		if s, ok := sig.(syscall.Signal); ok {
			code += int(s)
		}

		cancel()

		<-time.After(MAX_UNGRACEFUL_TEARDOWN_DURATION)
		os.Exit(code) //https://tldp.org/LDP/abs/html/exitcodes.html
	}()
}
