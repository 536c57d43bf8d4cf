package safe

import (
	"github.com/covechat/cove/logger"
)

// Go starts a goroutine that recovers from panics, so a misbehaving handler
// or timer callback cannot take the whole gateway down.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[safe.Go] panic recovered: %v", r)
			}
		}()
		f()
	}()
}

// Run invokes f inline with the same panic recovery, for callers that are
// already on their own goroutine (read loops, fanout workers).
func Run(f func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[safe.Run] panic recovered: %v", r)
		}
	}()
	f()
}
