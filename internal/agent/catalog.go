package agent

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog maintains the known specialist agents.
type Catalog struct {
	mu     sync.RWMutex
	agents map[string]Agent
	order  []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{agents: map[string]Agent{}}
}

// Register installs an agent. Returns an error if the definition is
// malformed or the ID already exists.
func (c *Catalog) Register(a Agent) error {
	if err := a.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.agents[a.ID]; exists {
		return fmt.Errorf("agent: %s already registered", a.ID)
	}
	c.agents[a.ID] = a
	c.order = append(c.order, a.ID)
	return nil
}

// MustRegister panics if registration fails.
func (c *Catalog) MustRegister(a Agent) {
	if err := c.Register(a); err != nil {
		panic(err)
	}
}

// Resolve looks up an agent by ID.
func (c *Catalog) Resolve(id string) (Agent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.agents[id]
	if !ok {
		return Agent{}, fmt.Errorf("agent: unknown id %s", id)
	}
	return a, nil
}

// Has reports whether an agent with the given ID is registered.
func (c *Catalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.agents[id]
	return ok
}

// IDs returns a sorted list of registered agent identifiers.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.agents))
	for id := range c.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns the agents in registration order. The order is what the
// team setup screen displays, so builtins come first and plugin packs
// follow in discovery order.
func (c *Catalog) All() []Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Agent, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.agents[id])
	}
	return out
}

// Len reports how many agents are registered.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.agents)
}
