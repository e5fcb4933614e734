// Package trie provides a generic trie for topic-based routing. Topics are
// "/"-separated paths and registration patterns support MQTT-style wildcards:
//   - "ui/click" - exact topic match
//   - "ui/+"     - single-level wildcard (matches any one segment)
//   - "audio/#"  - multi-level wildcard (matches any remaining segments)
package trie

import (
	"errors"
	"strings"
)

// ErrInvalidPattern is returned when a registration pattern is malformed,
// for example when "#" appears before the final segment.
var ErrInvalidPattern = errors.New("trie: invalid topic pattern")

// Trie stores values of type T under topic patterns and matches concrete
// topics against them. Exact segments win over "+", which wins over "#".
type Trie[T any] struct {
	children map[string]*Trie[T]
	matchAny *Trie[T] // "+" child
	matchAll *Trie[T] // "#" child
	set      bool
	value    T
}

// New creates an empty Trie.
func New[T any]() *Trie[T] {
	return &Trie[T]{}
}

// Set stores value under the given pattern, replacing any previous value.
func (t *Trie[T]) Set(pattern string, value T) error {
	segs := strings.Split(pattern, "/")
	node := t
	for i, seg := range segs {
		switch seg {
		case "":
			return ErrInvalidPattern
		case "#":
			if i != len(segs)-1 {
				return ErrInvalidPattern
			}
			if node.matchAll == nil {
				node.matchAll = New[T]()
			}
			node = node.matchAll
		case "+":
			if node.matchAny == nil {
				node.matchAny = New[T]()
			}
			node = node.matchAny
		default:
			if node.children == nil {
				node.children = make(map[string]*Trie[T])
			}
			child, ok := node.children[seg]
			if !ok {
				child = New[T]()
				node.children[seg] = child
			}
			node = child
		}
	}
	node.set = true
	node.value = value
	return nil
}

// Match returns the value registered under the pattern that best matches
// the concrete topic, or false when nothing matches.
func (t *Trie[T]) Match(topic string) (T, bool) {
	return t.match(strings.Split(topic, "/"))
}

func (t *Trie[T]) match(segs []string) (T, bool) {
	if len(segs) == 0 {
		if t.set {
			return t.value, true
		}
		if t.matchAll != nil && t.matchAll.set {
			return t.matchAll.value, true
		}
		var zero T
		return zero, false
	}

	if child, ok := t.children[segs[0]]; ok {
		if v, ok := child.match(segs[1:]); ok {
			return v, true
		}
	}
	if t.matchAny != nil {
		if v, ok := t.matchAny.match(segs[1:]); ok {
			return v, true
		}
	}
	if t.matchAll != nil && t.matchAll.set {
		return t.matchAll.value, true
	}
	var zero T
	return zero, false
}
