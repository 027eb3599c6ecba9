package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortNatural(t *testing.T) {
	testCases := []struct {
		name     string
		in       []string
		expected []string
	}{
		{
			name:     "numbered lessons",
			in:       []string{"2. Intro", "10. Advanced", "1. Start"},
			expected: []string{"1. Start", "2. Intro", "10. Advanced"},
		},
		{
			name:     "zero padded and plain",
			in:       []string{"10.mp4", "02.mp4", "1.mp4"},
			expected: []string{"1.mp4", "02.mp4", "10.mp4"},
		},
		{
			name:     "case insensitive",
			in:       []string{"b.pdf", "A.pdf", "c.pdf"},
			expected: []string{"A.pdf", "b.pdf", "c.pdf"},
		},
		{
			name:     "nested paths",
			in:       []string{"week 10/a", "week 9/a", "week 1/a"},
			expected: []string{"week 1/a", "week 9/a", "week 10/a"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := append([]string(nil), tc.in...)
			SortNatural(s, func(v string) string { return v })
			require.Equal(t, tc.expected, s)
		})
	}
}

func TestNaturalLess(t *testing.T) {
	require.True(t, NaturalLess("2", "10"))
	require.False(t, NaturalLess("10", "2"))
}

func TestGetIDFromParts(t *testing.T) {
	a := GetIDFromParts("u1", "c1", "x1")
	b := GetIDFromParts("u1", "c1", "x1")
	c := GetIDFromParts("u1", "c1x", "1")

	require.Len(t, a, 40)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestHasParentSegment(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{path: "", expected: false},
		{path: "Module 1...Basics", expected: false},
		{path: "v1..v2/part", expected: false},
		{path: "..", expected: true},
		{path: "a/../b", expected: true},
		{path: "a/..", expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			require.Equal(t, tc.expected, HasParentSegment(tc.path))
		})
	}
}
