// Package cardcache is the persisted client-local card metadata store,
// keyed by external card identifier. It backs the layered fallback in
// game.ResolveCardFacts.
package cardcache

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/cardloft/tabletop-client/internal/game"
)

type Cache struct {
	mu    sync.RWMutex
	facts map[string]game.CardFacts
}

func New() *Cache {
	return &Cache{facts: make(map[string]game.CardFacts)}
}

// Lookup satisfies game.FactsLookup.
func (c *Cache) Lookup(cardID string) (game.CardFacts, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.facts[cardID]
	return f, ok
}

func (c *Cache) Put(cardID string, f game.CardFacts) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.facts[cardID] = f
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.facts)
}

// Load merges the cache file at path. A missing file is not an error;
// the cache just starts cold.
func (c *Cache) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var facts map[string]game.CardFacts
	if err := json.Unmarshal(data, &facts); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, f := range facts {
		c.facts[id] = f
	}
	return nil
}

// Save writes the cache to path.
func (c *Cache) Save(path string) error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.facts, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
