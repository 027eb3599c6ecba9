package fsadapter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/config"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, files map[string]string) *fsAdapter {
	t.Helper()

	cfg := &config.Config{AdminToken: "x"}
	cfg.SetDefaults()
	cfg.Local.SkipFiles = []string{".DS_Store"}

	fs := afero.NewMemMapFs()
	for p, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), os.ModeDir|0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), 0o644))
	}

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	return NewFSAdapterWithFS(fs, cfg.LocalConfig(), log)
}

func TestListTree(t *testing.T) {
	a := newTestAdapter(t, map[string]string{
		"/flutter/10. Advanced/a.mp4": "a",
		"/flutter/2. Basics/b.mp4":    "bb",
		"/flutter/1. Start/c.mp4":     "ccc",
		"/flutter/1. Start/c.vtt":     "WEBVTT",
		"/flutter/readme.pdf":         "pdf",
		"/flutter/.DS_Store":          "",
		"/flutter/description.md":     "# Flutter",
	})

	testCases := []struct {
		name     string
		path     string
		expected []string
		kinds    []entity.EntryKind
	}{
		{
			name:     "repository root",
			path:     "",
			expected: []string{"1. Start", "2. Basics", "10. Advanced", "readme.pdf"},
			kinds:    []entity.EntryKind{entity.EntryKindDirectory, entity.EntryKindDirectory, entity.EntryKindDirectory, entity.EntryKindFile},
		},
		{
			name:     "sub folder",
			path:     "1. Start",
			expected: []string{"1. Start/c.mp4", "1. Start/c.vtt"},
			kinds:    []entity.EntryKind{entity.EntryKindFile, entity.EntryKindFile},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := a.ListTree(context.Background(), "flutter", tc.path)
			require.NoError(t, err)

			var paths []string
			var kinds []entity.EntryKind
			for _, e := range entries {
				paths = append(paths, e.Path)
				kinds = append(kinds, e.Kind)
			}
			require.Equal(t, tc.expected, paths)
			require.Equal(t, tc.kinds, kinds)
		})
	}
}

func TestListTreeErrors(t *testing.T) {
	a := newTestAdapter(t, map[string]string{"/flutter/a.mp4": "a"})

	_, err := a.ListTree(context.Background(), "flutter", "missing")
	require.ErrorIs(t, err, common.ErrRemoteNotFound)

	_, err = a.ListTree(context.Background(), "flutter", "../etc")
	require.ErrorIs(t, err, common.ErrInvalidPath)

	_, err = a.ListTree(context.Background(), "flutter", "x/../..")
	require.ErrorIs(t, err, common.ErrInvalidPath)

	_, err = a.ListTree(context.Background(), "", "")
	require.ErrorIs(t, err, common.ErrInvalidPath)
}

func TestListTreeDottedNames(t *testing.T) {
	a := newTestAdapter(t, map[string]string{
		"/flutter/Module 1...Basics/a.mp4": "a",
		"/flutter/v1..v2/b.mp4":            "b",
	})

	entries, err := a.ListTree(context.Background(), "flutter", "Module 1...Basics")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Module 1...Basics/a.mp4", entries[0].Path)

	entries, err = a.ListTree(context.Background(), "flutter", "v1..v2")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestListDatasets(t *testing.T) {
	a := newTestAdapter(t, map[string]string{
		"/flutter/a.mp4": "a",
		"/dart/b.mp4":    "b",
		"/.cache/x":      "x",
	})

	datasets, err := a.ListDatasets(context.Background())
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	require.Equal(t, "dart", datasets[0].ID)
	require.Equal(t, "flutter", datasets[1].ID)
}

func TestResolveURL(t *testing.T) {
	a := newTestAdapter(t, nil)

	require.Equal(t, "/media/flutter/1.%20Start/c.mp4", a.ResolveURL("flutter", "1. Start/c.mp4"))
}

func TestDescribe(t *testing.T) {
	a := newTestAdapter(t, map[string]string{
		"/flutter/1. Start/description.md": `---
title: Getting started
files:
  c.mp4: Welcome video
---
# Body
`,
		"/flutter/2. Plain/description.md": "# No front matter",
		"/flutter/3. Empty/a.mp4":          "a",
	})

	meta, err := a.Describe("flutter", "1. Start")
	require.NoError(t, err)
	require.NotNil(t, meta)
	require.Equal(t, "Getting started", meta.Title)
	require.Equal(t, "Welcome video", meta.Files["c.mp4"])

	meta, err = a.Describe("flutter", "2. Plain")
	require.NoError(t, err)
	require.Nil(t, meta)

	meta, err = a.Describe("flutter", "3. Empty")
	require.NoError(t, err)
	require.Nil(t, meta)
}
