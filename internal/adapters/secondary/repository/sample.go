package repository

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

// lockedRand rend un *rand.Rand partageable entre requêtes concurrentes
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource : seed 0 => graine basée sur l'horloge
func NewRandomSource(seed uint64) ports.RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.IntN(n)
}

// sampleIndexes tire min(n, total) positions distinctes dans [0, total).
// Algorithme de Floyd : n tirages, pas d'allocation en O(total).
func sampleIndexes(rnd ports.RandomSource, total, n int) []int {
	if n <= 0 || total <= 0 {
		return nil
	}
	if n > total {
		n = total
	}

	seen := make(map[int]struct{}, n)
	out := make([]int, 0, n)
	for j := total - n; j < total; j++ {
		pick := rnd.IntN(j + 1)
		if _, dup := seen[pick]; dup {
			pick = j
		}
		seen[pick] = struct{}{}
		out = append(out, pick)
	}
	return out
}
