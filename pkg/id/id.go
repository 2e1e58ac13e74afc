package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID string. IDs generated within the same millisecond stay
// lexicographically increasing, which keeps trade listings time-sortable.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), mono).String()
}
