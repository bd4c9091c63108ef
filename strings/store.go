// Package strings implements the in-memory strings store and the binary,
// JSON metadata, and text-form codecs for a game's STRINGS archive.
package strings

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Store is a mapping from block ID to an ordered list of strings, indexed
// 0..N-1 per block.
type Store struct {
	blocks map[uint16][]string
	order  []uint16
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{blocks: make(map[uint16][]string)}
}

// Get returns the string at (block, index).
func (s *Store) Get(block uint16, index int) (string, bool) {
	strs, ok := s.blocks[block]
	if !ok || index < 0 || index >= len(strs) {
		return "", false
	}
	return strs[index], true
}

// Set replaces the string at (block, index), growing the block if index is
// beyond its current length.
func (s *Store) Set(block uint16, index int, text string) error {
	if index < 0 {
		return fmt.Errorf("strings: negative index %d", index)
	}
	strs, ok := s.blocks[block]
	if !ok {
		s.order = append(s.order, block)
	}
	for len(strs) <= index {
		strs = append(strs, "")
	}
	strs[index] = text
	s.blocks[block] = strs
	return nil
}

// Blocks returns the block IDs present, in ascending order.
func (s *Store) Blocks() []uint16 {
	out := make([]uint16, len(s.order))
	copy(out, s.order)
	slices.Sort(out)
	return out
}

// Strings returns the ordered string list for block, or nil if absent.
func (s *Store) Strings(block uint16) []string {
	return s.blocks[block]
}
