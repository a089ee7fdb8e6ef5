package noiseconn

import (
	"runtime"
	"time"
)

// gosched cooperatively yields to avoid burning a full core when
// emulating blocking I/O on top of a non-blocking transport.
func gosched() {
	runtime.Gosched()
}

func sleep(d time.Duration) {
	time.Sleep(d)
}
