package importer

import (
	"context"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
)

const testBaseURL = "https://hf.test/datasets/"

type fakeSource struct {
	tree  map[string][]*entity.RemoteEntry
	metas map[string]*entity.FolderMeta
	err   error
	calls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{tree: make(map[string][]*entity.RemoteEntry)}
}

// addFiles registers files (and sub directories ending in "/") under folder.
func (s *fakeSource) addFiles(folder string, names ...string) *fakeSource {
	for _, name := range names {
		kind := entity.EntryKindFile
		if strings.HasSuffix(name, "/") {
			kind = entity.EntryKindDirectory
			name = strings.TrimSuffix(name, "/")
		}

		s.tree[folder] = append(s.tree[folder], &entity.RemoteEntry{
			Kind: kind,
			Path: path.Join(folder, name),
			Name: name,
			Size: int64(len(name)),
		})
	}

	return s
}

func (s *fakeSource) ListTree(_ context.Context, repoID, folderPath string) ([]*entity.RemoteEntry, error) {
	s.calls = append(s.calls, folderPath)
	if s.err != nil {
		return nil, s.err
	}

	entries, ok := s.tree[folderPath]
	if !ok {
		return nil, common.ErrRemoteNotFound
	}

	return entries, nil
}

func (s *fakeSource) ResolveURL(repoID, filePath string) string {
	return testBaseURL + repoID + "/resolve/main/" + filePath
}

type describingSource struct {
	*fakeSource
}

func (s *describingSource) Describe(_, folderPath string) (*entity.FolderMeta, error) {
	return s.metas[folderPath], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func entries(names ...string) []*entity.RemoteEntry {
	var res []*entity.RemoteEntry
	for _, name := range names {
		res = append(res, &entity.RemoteEntry{Kind: entity.EntryKindFile, Path: "f/" + name, Name: name})
	}

	return res
}
