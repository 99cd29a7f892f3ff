package logging

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// requestIDCounter numbers IDs when the random source is unavailable.
var requestIDCounter uint64

// GenerateRequestID generates a unique request ID, a random UUID in its
// canonical 36 character form.
func GenerateRequestID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		counter := atomic.AddUint64(&requestIDCounter, 1)
		return "req-" + strconv.FormatUint(counter, 10)
	}
	return id.String()
}
