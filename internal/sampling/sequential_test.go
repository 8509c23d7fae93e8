package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeSequential(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	cases := []struct {
		name  string
		count int
		start int
		want  []int
	}{
		{name: "from start", count: 2, start: 0, want: []int{1, 2}},
		{name: "middle", count: 3, start: 1, want: []int{2, 3, 4}},
		{name: "ends exactly at tail", count: 2, start: 3, want: []int{4, 5}},
		{name: "wraps around", count: 3, start: 4, want: []int{5, 1, 2}},
		{name: "wraps from middle", count: 4, start: 3, want: []int{4, 5, 1, 2}},
		{name: "whole sequence", count: 5, start: 2, want: []int{1, 2, 3, 4, 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TakeSequential(items, tc.count, tc.start)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTakeSequential_DoesNotAliasInput(t *testing.T) {
	items := []string{"a", "b", "c"}

	got, err := TakeSequential(items, 2, 0)
	require.NoError(t, err)
	got[0] = "z"

	assert.Equal(t, []string{"a", "b", "c"}, items)
}

func TestTakeSequential_InvalidArguments(t *testing.T) {
	cases := []struct {
		name    string
		items   []int
		count   int
		start   int
		mention string
	}{
		{name: "empty items", items: nil, count: 1, start: 0, mention: "'items'"},
		{name: "zero count", items: []int{1, 2}, count: 0, start: 0, mention: "'count'"},
		{name: "count too large", items: []int{1, 2}, count: 3, start: 0, mention: "'count'"},
		{name: "negative start", items: []int{1, 2}, count: 1, start: -1, mention: "'start'"},
		{name: "start out of range", items: []int{1, 2}, count: 1, start: 2, mention: "'start'"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TakeSequential(tc.items, tc.count, tc.start)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Contains(t, err.Error(), tc.mention)
		})
	}
}

func TestTakeRandomSequential(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var seen int

	got, err := TakeRandomSequential(items, 3, func(n int) int {
		seen = n
		return 4
	})

	require.NoError(t, err)
	assert.Equal(t, 5, seen)
	assert.Equal(t, []int{5, 1, 2}, got)
}

func TestTakeRandomSequential_DefaultSource(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	for i := 0; i < 50; i++ {
		got, err := TakeRandomSequential(items, 2, nil)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, got[0]%5+1, got[1])
	}
}

func TestTakeRandomSequential_EmptyItems(t *testing.T) {
	_, err := TakeRandomSequential([]int{}, 1, nil)

	assert.ErrorIs(t, err, ErrInvalidArgument)
}
