package remote

import (
	"math/rand"
	"net"
	"syscall"
	"time"

	"github.com/trigitdb/trigit/pkg/errors"
)

// ErrPortInUse indicates the listen address stayed bound for every attempt.
// Fatal at server startup: the daemon exits with a distinguished status.
var ErrPortInUse = errors.New("listen address already in use")

const listenBackoffBase = 50 * time.Millisecond

// Listen binds a TCP address with a bounded retry loop: addresses in use
// are retried with exponential backoff plus jitter, any other error is
// returned immediately. After attempts exhaust, a typed ErrPortInUse wraps
// the last bind failure.
func Listen(addr string, attempts int) (net.Listener, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, err
		}
		lastErr = err
		if i < attempts-1 {
			backoff := listenBackoffBase << uint(i)
			jitter := time.Duration(rand.Int63n(int64(listenBackoffBase)))
			time.Sleep(backoff + jitter)
		}
	}
	return nil, ErrPortInUse.Wrap(lastErr)
}
