package youtube

import (
	"errors"
	"sync"
)

var errNoCredentials = errors.New("no API keys configured")

// CredentialPool is an ordered set of API keys with a shared current index.
// The index is always in [0, Len()) and advances circularly.
type CredentialPool struct {
	mu    sync.Mutex
	keys  []string
	index int
}

func NewCredentialPool(keys []string) (*CredentialPool, error) {
	if len(keys) == 0 {
		return nil, errNoCredentials
	}
	return &CredentialPool{keys: append([]string{}, keys...)}, nil
}

// Current returns the active index and key.
func (p *CredentialPool) Current() (int, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index, p.keys[p.index]
}

// Rotate moves past the key at observed and returns the new index.
// If another caller already rotated away from observed, the index is left as is.
func (p *CredentialPool) Rotate(observed int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index == observed {
		p.index = (p.index + 1) % len(p.keys)
	}
	return p.index
}

func (p *CredentialPool) Len() int {
	return len(p.keys)
}
