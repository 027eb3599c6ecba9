package importer

import (
	"context"
	"testing"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestProcessFolder(t *testing.T) {
	src := newFakeSource().addFiles("course/01. Basics",
		"10. Advanced.mp4",
		"2. Intro.mp4",
		"2. Intro.vtt",
		"1. Start.mp4",
		"1. Start.srt",
		"orphan.vtt",
		"slides.PDF",
		"diagram.png",
		"code.zip",
		"nested/",
	)

	p := NewProcessor(src, discardLogger())
	res, err := p.ProcessFolder(context.Background(), "alice/flutter", "course/01. Basics")
	require.NoError(t, err)

	require.Equal(t, "Basics", res.FolderDisplayName)
	require.Equal(t, "course/01. Basics", res.FolderPath)

	type row struct {
		name     string
		kind     entity.ContentKind
		original string
		subtitle string
		order    int
	}

	var got []row
	for _, item := range res.Items {
		require.True(t, item.Selected)
		require.NotContains(t, item.SourceURL, "token")
		got = append(got, row{item.DisplayName, item.Kind, item.OriginalName, item.SubtitleURL, item.Order})
	}

	base := testBaseURL + "alice/flutter/resolve/main/course/01. Basics/"
	require.Equal(t, []row{
		{"Start", entity.KindVideo, "1. Start.mp4", base + "1. Start.srt", 0},
		{"Intro", entity.KindVideo, "2. Intro.mp4", base + "2. Intro.vtt", 1},
		{"Advanced", entity.KindVideo, "10. Advanced.mp4", "", 2},
		{"code", entity.KindFile, "code.zip", "", 3},
		{"diagram", entity.KindImage, "diagram.png", "", 4},
		{"slides", entity.KindDocument, "slides.PDF", "", 5},
	}, got)

	require.Equal(t, base+"1. Start.mp4", res.Items[0].SourceURL)
	require.Equal(t, int64(len("1. Start.mp4")), res.Items[0].Size)
}

func TestProcessFolderSubtitlePairing(t *testing.T) {
	testCases := []struct {
		name      string
		files     []string
		itemCount int
		subtitles []string
	}{
		{
			name:      "exact match",
			files:     []string{"intro.mp4", "intro.vtt"},
			itemCount: 1,
			subtitles: []string{"intro.vtt"},
		},
		{
			name:      "prefix match",
			files:     []string{"03.Lesson.mp4", "03.captions.vtt"},
			itemCount: 1,
			subtitles: []string{"03.captions.vtt"},
		},
		{
			name:      "orphan subtitle dropped",
			files:     []string{"a.vtt"},
			itemCount: 0,
		},
		{
			name:      "no double consumption",
			files:     []string{"1.mp4", "1.vtt", "2.mp4"},
			itemCount: 2,
			subtitles: []string{"1.vtt", ""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := newFakeSource().addFiles("f", tc.files...)
			res, err := NewProcessor(src, discardLogger()).ProcessFolder(context.Background(), "r", "f")
			require.NoError(t, err)
			require.Len(t, res.Items, tc.itemCount)

			for i, sub := range tc.subtitles {
				require.NotEqual(t, entity.KindSubtitle, res.Items[i].Kind)
				if sub == "" {
					require.Empty(t, res.Items[i].SubtitleURL)
					continue
				}
				require.Equal(t, testBaseURL+"r/resolve/main/f/"+sub, res.Items[i].SubtitleURL)
			}
		})
	}
}

func TestProcessFolderDescribed(t *testing.T) {
	fake := newFakeSource().addFiles("1. Start", "1. a.mp4", "2. b.pdf")
	fake.metas = map[string]*entity.FolderMeta{
		"1. Start": {Title: "Getting started", Files: map[string]string{"2. b.pdf": "Cheat sheet"}},
	}

	res, err := NewProcessor(&describingSource{fake}, discardLogger()).ProcessFolder(context.Background(), "r", "1. Start")
	require.NoError(t, err)
	require.Equal(t, "Getting started", res.FolderDisplayName)
	require.Equal(t, "a", res.Items[0].DisplayName)
	require.Equal(t, "Cheat sheet", res.Items[1].DisplayName)
}

func TestProcessFolderError(t *testing.T) {
	src := newFakeSource()
	src.err = common.ErrInvalidCredential

	res, err := NewProcessor(src, discardLogger()).ProcessFolder(context.Background(), "r", "f")
	require.ErrorIs(t, err, common.ErrInvalidCredential)
	require.Nil(t, res)
}

func TestProcessChildren(t *testing.T) {
	src := newFakeSource().
		addFiles("", "10. Wrap up/", "1. Start/", "2. Only subtitles/", "readme.md").
		addFiles("1. Start", "1. a.mp4").
		addFiles("2. Only subtitles", "1. a.vtt").
		addFiles("10. Wrap up", "end.pdf", "end2.pdf")

	p := NewProcessor(src, discardLogger())
	res, err := p.ProcessChildren(context.Background(), "r", "")
	require.NoError(t, err)

	require.Len(t, res, 2)
	require.Equal(t, "10. Wrap up", res[0].FolderPath)
	require.Equal(t, "Wrap up", res[0].FolderDisplayName)
	require.Len(t, res[0].Items, 2)
	require.Equal(t, "1. Start", res[1].FolderPath)
	require.Equal(t, []string{"", "10. Wrap up", "1. Start", "2. Only subtitles"}, src.calls)
}

func TestProcessChildrenStopsOnError(t *testing.T) {
	src := newFakeSource().addFiles("", "a/", "b/").addFiles("b", "x.mp4")

	_, err := NewProcessor(src, discardLogger()).ProcessChildren(context.Background(), "r", "")
	require.ErrorIs(t, err, common.ErrRemoteNotFound)
	require.Equal(t, []string{"", "a"}, src.calls)
}
