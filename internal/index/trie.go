// Package index provides the in-memory prefix index over visitor
// records. One Trie instance is shared by every request in the
// process; all access goes through an internal read-write lock, so
// searches run concurrently while inserts and removes are exclusive.
package index

import (
	"sort"
	"strings"
	"sync"
)

// IDSet is a set of record identifiers.
type IDSet map[string]struct{}

// Trie maps lowercase keys to sets of record identifiers. A record is
// indexed once per searchable attribute, so distinct keys routinely map
// to the same identifier and one key may hold many identifiers.
type Trie struct {
	mu   sync.RWMutex
	root *node
}

type node struct {
	children map[rune]*node
	values   IDSet
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// New creates an empty Trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert adds id under key. Keys are lowercased and trimmed; set
// semantics make re-inserting an existing (key, id) pair a no-op.
// Empty keys are ignored: the root never holds values.
func (t *Trie) Insert(key, id string) {
	key = normalize(key)
	if key == "" || id == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.root
	for _, r := range key {
		child, ok := cur.children[r]
		if !ok {
			child = newNode()
			cur.children[r] = child
		}
		cur = child
	}
	if cur.values == nil {
		cur.values = make(IDSet)
	}
	cur.values[id] = struct{}{}
}

// Search resolves a whitespace-separated multi-token query. Each token
// is an independent prefix whose subtree is walked depth-first in
// lexicographic character order until limit unique identifiers are
// collected; the result is the intersection of the per-token sets.
// An empty or all-whitespace query matches nothing. Because each
// per-token set is already bounded by limit, the intersection may
// under-report for very tight limits; that is accepted behavior.
func (t *Trie) Search(limit int, query string) IDSet {
	tokens := strings.Fields(normalize(query))
	if len(tokens) == 0 {
		return IDSet{}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	results := make([]IDSet, 0, len(tokens))
	for _, prefix := range tokens {
		results = append(results, t.searchPrefix(limit, prefix))
	}
	if len(results) == 1 {
		return results[0]
	}
	return intersect(results)
}

// searchPrefix collects up to limit identifiers under one prefix.
// Caller holds at least a read lock.
func (t *Trie) searchPrefix(limit int, prefix string) IDSet {
	results := make(IDSet)

	cur := t.root
	for _, r := range prefix {
		child, ok := cur.children[r]
		if !ok {
			// No key starts with this prefix.
			return results
		}
		cur = child
	}

	cur.collect(limit, results)
	return results
}

// collect gathers identifiers from the subtree rooted at n, visiting
// a node's identifiers in ascending order and its children in
// ascending character order so results are deterministic for a given
// tree and limit, even when the limit truncates mid node.
func (n *node) collect(limit int, results IDSet) {
	if len(n.values) > 0 {
		ids := make([]string, 0, len(n.values))
		for id := range n.values {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if len(results) >= limit {
				return
			}
			results[id] = struct{}{}
		}
	}

	if len(n.children) == 0 {
		return
	}
	chars := make([]rune, 0, len(n.children))
	for r := range n.children {
		chars = append(chars, r)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	for _, r := range chars {
		if len(results) >= limit {
			return
		}
		n.children[r].collect(limit, results)
	}
}

// Remove deletes the (key, id) pair, then prunes dangling nodes:
// walking back toward the root, every node left with no values and no
// children is detached, stopping at the first node still alive.
// Entries under other keys are untouched. Removing a missing pair is a
// no-op.
func (t *Trie) Remove(key, id string) {
	key = normalize(key)
	if key == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	type step struct {
		parent *node
		r      rune
	}

	path := make([]step, 0, len(key))
	cur := t.root
	for _, r := range key {
		child, ok := cur.children[r]
		if !ok {
			return
		}
		path = append(path, step{parent: cur, r: r})
		cur = child
	}

	delete(cur.values, id)

	for i := len(path) - 1; i >= 0; i-- {
		if len(cur.values) > 0 || len(cur.children) > 0 {
			break
		}
		delete(path[i].parent.children, path[i].r)
		cur = path[i].parent
	}
}

// Reset discards every entry. Used by full index rebuilds.
func (t *Trie) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = newNode()
}

// intersect returns the identifiers present in every set, pairwise,
// iterating the smaller set and probing the larger.
func intersect(sets []IDSet) IDSet {
	common := sets[0]
	for _, s := range sets[1:] {
		common = intersectPair(common, s)
	}
	return common
}

func intersectPair(a, b IDSet) IDSet {
	if len(a) > len(b) {
		a, b = b, a
	}
	common := make(IDSet)
	for id := range a {
		if _, ok := b[id]; ok {
			common[id] = struct{}{}
		}
	}
	return common
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
