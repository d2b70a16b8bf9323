// Package replacement provides the cache replacement policies used to pick an
// eviction victim. A policy is passed per call, so callers can switch policy
// between operations on the same cache.
package replacement

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Policy picks the index of the slot to overwrite. lastAccess holds one entry
// per cache slot; empty slots carry the zero time. Policies must not modify
// lastAccess and must return an index in [0, len(lastAccess)).
type Policy interface {
	Victim(lastAccess []time.Time) int
	Name() string
}

// Random picks a uniformly distributed slot. It keeps no per-cache state.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random policy. A zero seed uses the current time.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (p *Random) Victim(lastAccess []time.Time) int {
	if len(lastAccess) == 0 {
		return 0
	}
	return p.rng.Intn(len(lastAccess))
}

func (p *Random) Name() string { return "random" }

// LRU picks the slot with the oldest access time. Ties go to the lowest index,
// so empty slots (zero time) are taken first, in index order.
type LRU struct{}

func (LRU) Victim(lastAccess []time.Time) int {
	victim := 0
	for i := 1; i < len(lastAccess); i++ {
		if lastAccess[i].Before(lastAccess[victim]) {
			victim = i
		}
	}
	return victim
}

func (LRU) Name() string { return "lru" }

// Parse maps a policy name ("lru" or "random") to a Policy.
func Parse(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lru", "":
		return LRU{}, nil
	case "random":
		return NewRandom(0), nil
	default:
		return nil, fmt.Errorf("unknown replacement policy %q; use lru|random", name)
	}
}
