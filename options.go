package noiseconn

import "time"

// Options configures how a Conn behaves when the underlying transport
// signals iox.ErrWouldBlock.
type Options struct {
	// RetryDelay controls how Conn handles iox.ErrWouldBlock from the
	// underlying transport:
	//   - negative: nonblock, return ErrWouldBlock immediately
	//   - zero: yield (runtime.Gosched) and retry
	//   - positive: sleep for the duration and retry
	RetryDelay time.Duration
}

var defaultOptions = Options{
	RetryDelay: -1, // default: nonblock
}

// Option configures a Conn at construction time.
type Option func(*Options)

// WithRetryDelay sets the retry/wait policy used when the underlying
// transport returns iox.ErrWouldBlock.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithBlock enables cooperative blocking (yield-and-retry) on iox.ErrWouldBlock.
func WithBlock() Option {
	return func(o *Options) { o.RetryDelay = 0 }
}

// WithNonblock forces non-blocking behavior (return iox.ErrWouldBlock immediately).
//
// This is the default.
func WithNonblock() Option {
	return func(o *Options) { o.RetryDelay = -1 }
}
