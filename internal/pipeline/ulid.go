package pipeline

import (
	"crypto/rand"
	"sync"
	"time"
)

// Job IDs are ULIDs: a 48-bit millisecond timestamp followed by 80 random
// bits, written as 26 Crockford base32 characters. IDs minted within the
// same millisecond increment the random part so they still sort in order.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	ulidMu      sync.Mutex
	lastMillis  uint64
	lastEntropy [10]byte
)

func generateULID() string {
	return newULID(time.Now())
}

func newULID(now time.Time) string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ms := uint64(now.UnixMilli())
	if ms == lastMillis {
		increment(&lastEntropy)
	} else {
		lastMillis = ms
		rand.Read(lastEntropy[:])
	}

	var id [16]byte
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}
	copy(id[6:], lastEntropy[:])
	return encodeULID(id)
}

// increment adds one to a big-endian counter, wrapping on overflow.
func increment(b *[10]byte) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return
		}
	}
}

// encodeULID writes 128 bits as 26 base32 digits, most significant first.
// The leading digit carries only the top 3 bits.
func encodeULID(id [16]byte) string {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(id[i])
		lo = lo<<8 | uint64(id[i+8])
	}
	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
