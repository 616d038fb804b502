// Package knowledge is a small in-memory reference base of PV testing
// material (standards, procedures, equipment, best practices). Retrieval is
// keyword/substring matching over a store that stays small and static; this
// is deliberately not a search engine.
package knowledge

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type Entry struct {
	Content any       `json:"content"`
	AddedAt time.Time `json:"added_at"`
}

type Match struct {
	Key   string `json:"key"`
	Entry Entry  `json:"entry"`
}

type category struct {
	keys    []string
	entries map[string]Entry
}

// Store maps category -> key -> entry. Iteration order is insertion order
// in both dimensions, which keeps assembled prompts reproducible.
type Store struct {
	mu         sync.RWMutex
	order      []string
	categories map[string]*category
}

func NewStore() *Store {
	st := &Store{
		categories: make(map[string]*category),
	}
	st.seedDefaults()
	return st
}

// Add upserts an entry; an existing key is overwritten silently.
func (st *Store) Add(categoryName, key string, content any) {
	st.mu.Lock()
	defer st.mu.Unlock()

	cat, ok := st.categories[categoryName]
	if !ok {
		cat = &category{entries: make(map[string]Entry)}
		st.categories[categoryName] = cat
		st.order = append(st.order, categoryName)
	}

	if _, exists := cat.entries[key]; !exists {
		cat.keys = append(cat.keys, key)
	}
	cat.entries[key] = Entry{Content: content, AddedAt: time.Now().UTC()}
}

// Get returns the entry for (category, key). With an empty key it returns
// the whole category as ordered matches. Absent category or key is not an
// error; ok is false.
func (st *Store) Get(categoryName, key string) ([]Match, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	cat, ok := st.categories[categoryName]
	if !ok {
		return nil, false
	}

	if key == "" {
		matches := make([]Match, 0, len(cat.keys))
		for _, k := range cat.keys {
			matches = append(matches, Match{Key: k, Entry: cat.entries[k]})
		}
		return matches, true
	}

	entry, ok := cat.entries[key]
	if !ok {
		return nil, false
	}
	return []Match{{Key: key, Entry: entry}}, true
}

// Categories returns category names in insertion order.
func (st *Store) Categories() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]string, len(st.order))
	copy(out, st.order)
	return out
}

// Retrieve finds entries in a category relevant to a free-text query. An
// entry matches when its key appears in the query, the query appears in the
// key, or the query appears anywhere in the entry's content (recursing into
// nested maps and lists). Matching is case-insensitive. Returns nil, false
// when nothing matches, so callers can tell "no matches" from "no category".
func (st *Store) Retrieve(query, categoryName string) ([]Match, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	cat, ok := st.categories[categoryName]
	if !ok {
		return nil, false
	}

	queryLower := strings.ToLower(query)

	var matches []Match
	for _, key := range cat.keys {
		entry := cat.entries[key]
		keyLower := strings.ToLower(key)

		if strings.Contains(queryLower, keyLower) ||
			strings.Contains(keyLower, queryLower) ||
			contentMatches(entry.Content, queryLower) {
			matches = append(matches, Match{Key: key, Entry: entry})
		}
	}

	if len(matches) == 0 {
		return nil, false
	}
	return matches, true
}

func contentMatches(content any, queryLower string) bool {
	switch v := content.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), queryLower)
	case map[string]any:
		for _, item := range v {
			if contentMatches(item, queryLower) {
				return true
			}
		}
	case []string:
		for _, item := range v {
			if strings.Contains(strings.ToLower(item), queryLower) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if contentMatches(item, queryLower) {
				return true
			}
		}
	default:
		return strings.Contains(strings.ToLower(fmt.Sprintf("%v", v)), queryLower)
	}
	return false
}
