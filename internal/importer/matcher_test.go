package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchSubtitles(t *testing.T) {
	testCases := []struct {
		name      string
		files     []string
		expected  map[string]string // video name -> subtitle name
		leftovers []string
	}{
		{
			name:     "exact base name",
			files:    []string{"intro.mp4", "intro.vtt"},
			expected: map[string]string{"intro.mp4": "intro.vtt"},
		},
		{
			name:     "shared numeric prefix",
			files:    []string{"03.Lesson.mp4", "03.captions.vtt"},
			expected: map[string]string{"03.Lesson.mp4": "03.captions.vtt"},
		},
		{
			name:      "orphan subtitle",
			files:     []string{"a.vtt"},
			expected:  map[string]string{},
			leftovers: []string{"a.vtt"},
		},
		{
			name:     "no double consumption",
			files:    []string{"1.mp4", "1.vtt", "2.mp4"},
			expected: map[string]string{"1.mp4": "1.vtt"},
		},
		{
			name:     "exact match wins over earlier prefix match",
			files:    []string{"01. a.srt", "01. b.mp4", "01. b.vtt"},
			expected: map[string]string{"01. b.mp4": "01. b.vtt"},
			leftovers: []string{"01. a.srt"},
		},
		{
			name:     "subtitle listed before its video",
			files:    []string{"a.vtt", "b.pdf", "z.mp4", "z.srt", "a.mp4"},
			expected: map[string]string{"z.mp4": "z.srt", "a.mp4": "a.vtt"},
		},
		{
			name:     "earlier video takes the prefix match first",
			files:    []string{"1. a.mp4", "1. b.mp4", "1. c.vtt"},
			expected: map[string]string{"1. a.mp4": "1. c.vtt"},
		},
		{
			name:      "prefix compares whole digit run",
			files:     []string{"1. a.mp4", "10. a.vtt"},
			expected:  map[string]string{},
			leftovers: []string{"10. a.vtt"},
		},
		{
			name:      "videos without prefix do not prefix match",
			files:     []string{"intro.mp4", "outro.vtt"},
			expected:  map[string]string{},
			leftovers: []string{"outro.vtt"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			matches, leftovers := MatchSubtitles(entries(tc.files...))

			got := make(map[string]string)
			for videoPath, sub := range matches {
				got[videoPath[len("f/"):]] = sub.Name
			}
			require.Equal(t, tc.expected, got)

			var leftoverNames []string
			for _, sub := range leftovers {
				leftoverNames = append(leftoverNames, sub.Name)
			}
			require.Equal(t, tc.leftovers, leftoverNames)
		})
	}
}
