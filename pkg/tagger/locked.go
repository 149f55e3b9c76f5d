package tagger

import (
	"context"
	"sync"
)

type locked struct {
	mu sync.Mutex
	t  Tagger
}

// Locked wraps a tagger that is not safe for concurrent use so that calls
// are serialised.
func Locked(t Tagger) Tagger {
	return &locked{t: t}
}

func (l *locked) Tokenize(ctx context.Context, text string) ([]Token, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Tokenize(ctx, text)
}
