package graph

import "math/bits"

// BitSet is a compact set of node indices.
type BitSet struct {
	bits []uint64
}

// NewBitSet creates a BitSet sized for indices up to maxVal (inclusive).
func NewBitSet(maxVal int) *BitSet {
	words := (maxVal + 64) / 64
	return &BitSet{bits: make([]uint64, words)}
}

// Set adds val to the set.
func (b *BitSet) Set(val int) {
	word := val / 64
	if word >= len(b.bits) {
		b.grow(word + 1)
	}
	b.bits[word] |= 1 << (uint(val) % 64)
}

// Clear removes val from the set.
func (b *BitSet) Clear(val int) {
	word := val / 64
	if word < len(b.bits) {
		b.bits[word] &^= 1 << (uint(val) % 64)
	}
}

// Has reports whether val is in the set.
func (b *BitSet) Has(val int) bool {
	word := val / 64
	if word >= len(b.bits) {
		return false
	}
	return b.bits[word]&(1<<(uint(val)%64)) != 0
}

// Count returns the number of elements in the set.
func (b *BitSet) Count() int {
	n := 0
	for _, w := range b.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// grow expands the bitset to n words.
// Callers guarantee n > len(b.bits).
func (b *BitSet) grow(n int) {
	newBits := make([]uint64, n)
	copy(newBits, b.bits)
	b.bits = newBits
}
