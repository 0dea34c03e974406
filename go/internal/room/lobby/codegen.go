package lobby

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// CodeAlphabet leaves out 0, O, 1, I and L.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const CodeLength = 6

// Randomizer is the source of room codes and draft orders.
type Randomizer interface {
	Code() string
	Perm(n int) []int
}

// LockedRand is a Randomizer over a single math/rand source.
// *rand.Rand is not safe for concurrent use, hence the mutex.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedRand seeds from the current time.
func NewLockedRand() *LockedRand {
	return NewLockedRandFrom(rand.NewSource(time.Now().UnixNano()))
}

func NewLockedRandFrom(src rand.Source) *LockedRand {
	return &LockedRand{rng: rand.New(src)}
}

func (r *LockedRand) Code() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, CodeLength)
	for i := range b {
		b[i] = CodeAlphabet[r.rng.Intn(len(CodeAlphabet))]
	}
	return string(b)
}

func (r *LockedRand) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Perm(n)
}

// NormalizeCode upper-cases and trims user input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code could have been issued by CreateRoom.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(CodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
