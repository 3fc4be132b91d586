package cryptoagent

import (
	"slices"
	"sync"

	"github.com/simonhull/id3v23"
)

// Directory maps ENCR owner identifiers to crypto agents.
// It is safe for concurrent use, so one Directory can serve ReadMany.
type Directory struct {
	mu     sync.RWMutex
	agents map[string]id3v23.CryptoAgent
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{agents: make(map[string]id3v23.CryptoAgent)}
}

// Register sets the agent for owner, replacing any previous one.
func (d *Directory) Register(owner string, agent id3v23.CryptoAgent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents[owner] = agent
}

// Unregister removes the agent for owner.
func (d *Directory) Unregister(owner string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.agents, owner)
}

// Lookup returns the agent for owner.
func (d *Directory) Lookup(owner string) (id3v23.CryptoAgent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.agents[owner]
	return a, ok
}

// Owners returns the registered owner identifiers in sorted order.
func (d *Directory) Owners() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.agents))
	for owner := range d.agents {
		out = append(out, owner)
	}
	slices.Sort(out)
	return out
}

var _ id3v23.AgentDirectory = (*Directory)(nil)
