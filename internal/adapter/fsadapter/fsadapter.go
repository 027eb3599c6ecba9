package fsadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/config"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/jgivc/eduvance/internal/util"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	maxEntries         = 1000
	frontmatterDivider = "---\n"
)

// fsAdapter serves course material stored on disk with the same contract as
// the remote tree client. Each top-level directory of the work dir is a repository.
type fsAdapter struct {
	fs        afero.Fs
	cfg       *config.LocalConfig
	skipFiles map[string]struct{}

	log *slog.Logger
}

func NewFSAdapter(cfg *config.LocalConfig, log *slog.Logger) *fsAdapter {
	return NewFSAdapterWithFS(afero.NewBasePathFs(afero.NewOsFs(), cfg.WorkDir), cfg, log)
}

// NewFSAdapterWithFS expects fs to be rooted at the work dir.
func NewFSAdapterWithFS(fs afero.Fs, cfg *config.LocalConfig, log *slog.Logger) *fsAdapter {
	skipFilesMap := make(map[string]struct{})
	skipFilesMap[cfg.DescFileName] = struct{}{}
	for _, file := range cfg.SkipFiles {
		skipFilesMap[file] = struct{}{}
	}

	return &fsAdapter{
		fs:        fs,
		cfg:       cfg,
		skipFiles: skipFilesMap,
		log:       log.With(slog.String("item", "FSAdapter")),
	}
}

func (a *fsAdapter) ListDatasets(_ context.Context) ([]*entity.Dataset, error) {
	infos, err := afero.ReadDir(a.fs, "/")
	if err != nil {
		return nil, fmt.Errorf("cannot read work dir: %w", err)
	}

	var datasets []*entity.Dataset
	for _, info := range infos {
		if !info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			continue
		}

		datasets = append(datasets, &entity.Dataset{
			ID:           info.Name(),
			Name:         info.Name(),
			LastModified: info.ModTime(),
		})
	}

	util.SortNatural(datasets, func(d *entity.Dataset) string { return d.ID })

	return datasets, nil
}

func (a *fsAdapter) ListTree(_ context.Context, repoID, folderPath string) ([]*entity.RemoteEntry, error) {
	dir, err := a.repoPath(repoID, folderPath)
	if err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s:%s", common.ErrRemoteNotFound, repoID, folderPath)
		}

		return nil, fmt.Errorf("cannot read folder %s: %w", dir, err)
	}

	var entries []*entity.RemoteEntry
	for _, info := range infos {
		name := info.Name()
		if _, skip := a.skipFiles[name]; skip {
			a.log.Debug("Skip file", slog.String("path", path.Join(dir, name)))

			continue
		}

		entry := &entity.RemoteEntry{
			Kind: entity.EntryKindFile,
			Path: path.Join(folderPath, name),
			Name: name,
		}
		if info.IsDir() {
			entry.Kind = entity.EntryKindDirectory
		} else {
			entry.Size = info.Size()
		}

		entries = append(entries, entry)

		if len(entries) >= maxEntries {
			a.log.Warn("Too many entries, listing truncated", slog.String("path", dir))

			break
		}
	}

	util.SortNatural(entries, func(e *entity.RemoteEntry) string { return e.Path })

	return entries, nil
}

func (a *fsAdapter) ResolveURL(repoID, filePath string) string {
	segments := append([]string{repoID}, strings.Split(filePath, "/")...)
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}

	return strings.TrimSuffix(a.cfg.URL, "/") + "/" + strings.Join(segments, "/")
}

// Describe reads the front matter of the folder description file.
// A folder without one yields nil meta and no error.
func (a *fsAdapter) Describe(repoID, folderPath string) (*entity.FolderMeta, error) {
	dir, err := a.repoPath(repoID, folderPath)
	if err != nil {
		return nil, err
	}

	fileName := path.Join(dir, a.cfg.DescFileName)
	if !a.fileExists(fileName) {
		return nil, nil
	}

	content, err := afero.ReadFile(a.fs, fileName)
	if err != nil {
		return nil, fmt.Errorf("cannot read description file: %w", err)
	}

	str := string(content)
	if !strings.HasPrefix(str, frontmatterDivider) {
		return nil, nil
	}

	parts := strings.SplitN(str, frontmatterDivider, 3)
	if len(parts) < 3 {
		return nil, nil
	}

	var meta entity.FolderMeta
	if err := yaml.Unmarshal([]byte(parts[1]), &meta); err != nil {
		return nil, fmt.Errorf("cannot unmarshal frontmatter: %w", err)
	}

	return &meta, nil
}

func (a *fsAdapter) repoPath(repoID, folderPath string) (string, error) {
	if repoID == "" || strings.Contains(repoID, "/") {
		return "", fmt.Errorf("%w: repository %q", common.ErrInvalidPath, repoID)
	}

	if repoID == ".." || util.HasParentSegment(folderPath) {
		return "", fmt.Errorf("%w: %s", common.ErrInvalidPath, folderPath)
	}

	return path.Join("/", repoID, folderPath), nil
}

func (a *fsAdapter) fileExists(p string) bool {
	_, err := a.fs.Stat(p)

	return err == nil
}
