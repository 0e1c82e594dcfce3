// Spectromesh draws a 3D mesh driven by the frequency spectrum of live or recorded audio.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/golang/glog"
)

func init() {
	// GL calls must come from the main thread
	runtime.LockOSThread()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		glog.Errorf("spectromesh: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
