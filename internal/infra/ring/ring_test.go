package ring_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/nodechaos-controller/internal/infra/ring"
)

type pushCase struct {
	name        string
	giveCap     int
	givePush    []int
	wantItems   []int
	wantNewest2 []int
	wantEvicted []int
}

func TestBuffer_Push(t *testing.T) {
	t.Parallel()

	tests := []pushCase{
		{
			name:        "empty",
			giveCap:     3,
			wantItems:   nil,
			wantNewest2: []int{},
		},
		{
			name:        "below capacity",
			giveCap:     3,
			givePush:    []int{1, 2},
			wantItems:   []int{1, 2},
			wantNewest2: []int{2, 1},
		},
		{
			name:        "wraps and evicts oldest",
			giveCap:     3,
			givePush:    []int{1, 2, 3, 4, 5},
			wantItems:   []int{3, 4, 5},
			wantNewest2: []int{5, 4},
			wantEvicted: []int{1, 2},
		},
		{
			name:        "zero capacity behaves as one",
			giveCap:     0,
			givePush:    []int{7, 8},
			wantItems:   []int{8},
			wantNewest2: []int{8},
			wantEvicted: []int{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := ring.New[int](tt.giveCap)

			var evicted []int

			for _, v := range tt.givePush {
				if old, ok := b.Push(v); ok {
					evicted = append(evicted, old)
				}
			}

			require.Equal(t, tt.wantItems, b.Items())
			require.Equal(t, tt.wantNewest2, b.Newest(2))
			require.Equal(t, tt.wantEvicted, evicted)
			require.Equal(t, len(tt.wantItems), b.Len())
		})
	}
}

func TestBuffer_Last(t *testing.T) {
	t.Parallel()

	b := ring.New[string](2)

	_, ok := b.Last()
	require.False(t, ok)

	b.Push("a")
	b.Push("b")
	b.Push("c")

	got, ok := b.Last()
	require.True(t, ok)
	require.Equal(t, "c", got)
	require.Equal(t, 2, b.Cap())
	require.Equal(t, []string{"c", "b"}, b.Newest(0))
}
