package combos

import (
	"testing"

	"github.com/matryer/is"
)

func TestMaskBasics(t *testing.T) {
	is := is.New(t)
	m := FromIndices([]int{0, 2, 5})
	is.Equal(m, Mask(0b100101))
	is.True(m.Has(2))
	is.True(!m.Has(1))
	is.Equal(m.Size(), 3)
	is.Equal(m.Indices(), []int{0, 2, 5})
	is.Equal(m.String(6), "101001")
	is.True(FromIndices([]int{0, 5}).SubsetOf(m))
	is.True(!FromIndices([]int{1}).SubsetOf(m))
	is.True(Mask(0).SubsetOf(m))
}

func TestForEachOrder(t *testing.T) {
	is := is.New(t)
	var got []string
	ForEach(3, 0, 3, func(m Mask, idxs []int) {
		is.Equal(len(idxs), m.Size())
		got = append(got, m.String(3))
	})
	is.Equal(got, []string{
		"000",
		"100", "010", "001",
		"110", "101", "011",
		"111",
	})
}

func TestCount(t *testing.T) {
	is := is.New(t)
	type tc struct {
		n, lo, hi int
		expected  int
	}
	cases := []tc{
		{3, 0, 3, 8},
		{6, 0, 6, 64},
		{6, 1, 2, 21},
		{7, 1, 5, 119},
		{1, 1, 1, 1},
	}
	for _, c := range cases {
		is.Equal(Count(c.n, c.lo, c.hi), c.expected)
		visited := 0
		ForEach(c.n, c.lo, c.hi, func(Mask, []int) { visited++ })
		is.Equal(visited, c.expected)
	}
}
