package graph

import "testing"

func TestBitSet(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		set     []int
		clear   []int
		present []int
		absent  []int
		count   int
	}{
		{"empty", 8, nil, nil, nil, []int{0, 7, 8, 500}, 0},
		{"word edges", 0, []int{0, 63, 64, 127, 128}, nil, []int{0, 63, 64, 127, 128}, []int{1, 62, 65, 129}, 5},
		{"grows past size", 4, []int{3, 4, 1000}, nil, []int{3, 4, 1000}, []int{999, 1001}, 3},
		{"duplicate set", 16, []int{5, 5, 5}, nil, []int{5}, []int{4, 6}, 1},
		{"clear", 70, []int{1, 65, 69}, []int{65, 2, 4000}, []int{1, 69}, []int{2, 65}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBitSet(tt.size)
			for _, v := range tt.set {
				b.Set(v)
			}
			for _, v := range tt.clear {
				b.Clear(v)
			}
			for _, v := range tt.present {
				if !b.Has(v) {
					t.Errorf("Has(%d) = false", v)
				}
			}
			for _, v := range tt.absent {
				if b.Has(v) {
					t.Errorf("Has(%d) = true", v)
				}
			}
			if got := b.Count(); got != tt.count {
				t.Errorf("Count() = %d, want %d", got, tt.count)
			}
		})
	}
}

// The traversal marks a node on-stack, then done, then clears on-stack.
func TestBitSetTraversalMarks(t *testing.T) {
	done, onStack := NewBitSet(3), NewBitSet(3)
	for node := 0; node < 130; node++ {
		onStack.Set(node)
		done.Set(node)
		onStack.Clear(node)
	}
	if onStack.Count() != 0 || done.Count() != 130 {
		t.Errorf("onStack = %d, done = %d", onStack.Count(), done.Count())
	}
}
