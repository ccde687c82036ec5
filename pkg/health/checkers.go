package health

import (
	"context"
	"fmt"
	"runtime"
)

// GoroutineCountCheck fails when the number of goroutines exceeds the
// threshold, which usually indicates a leak.
func GoroutineCountCheck(threshold int) Check {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return fmt.Errorf("too many goroutines: %d > %d", n, threshold)
		}
		return nil
	}
}

// Pinger is satisfied by database pools that support a health ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger into a Check.
func PingCheck(p Pinger) Check {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}
