// Package groupid allocates the short, human-shareable codes used as
// group identifiers.
//
// Allocation is generate-then-insert: draw a random code, attempt to
// persist it, and redraw on a uniqueness conflict. Correctness relies on
// the store's atomic unique-constraint check, not on any in-process
// coordination.
package groupid

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/dongapp/dong/internal/storage"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Length is the number of characters in a group code. 26^6 gives
	// roughly 309M possible codes.
	Length = 6

	// MaxAttempts bounds the redraw loop. Exceeding it fails the
	// allocation rather than returning a colliding code.
	MaxAttempts = 5
)

// ErrExhausted is returned when MaxAttempts consecutive draws collided
// with existing codes. Callers should report a retryable server error.
var ErrExhausted = errors.New("exhausted attempts to allocate a unique group code")

// InsertFunc attempts to persist a new group under the given code.
// It must return storage.ErrConflict when the code is already taken.
type InsertFunc func(ctx context.Context, code string) error

// Allocator draws candidate codes from an injected random source, so
// tests can seed it deterministically. One Allocator serves every
// in-flight request; the mutex guards the source, which is not safe
// for concurrent use on its own.
type Allocator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewAllocator creates an Allocator backed by src.
func NewAllocator(src rand.Source) *Allocator {
	return &Allocator{rnd: rand.New(src)}
}

// Next draws one candidate code: Length characters, each uniform over
// the uppercase alphabet. Safe for concurrent use.
func (a *Allocator) Next() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	code := make([]byte, Length)
	for i := range code {
		code[i] = alphabet[a.rnd.IntN(len(alphabet))]
	}
	return string(code)
}

// Allocate draws codes and calls insert until one persists. A
// storage.ErrConflict from insert discards the code and redraws; any
// other error propagates immediately. After MaxAttempts conflicts it
// returns ErrExhausted without drawing again.
func (a *Allocator) Allocate(ctx context.Context, insert InsertFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code := a.Next()
		err := insert(ctx, code)
		if err == nil {
			return code, nil
		}
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		return "", fmt.Errorf("failed to persist group code: %w", err)
	}
	return "", ErrExhausted
}
