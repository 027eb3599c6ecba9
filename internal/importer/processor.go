package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/jgivc/eduvance/internal/entity"
	"github.com/jgivc/eduvance/internal/util"
)

// TreeSource lists a repository folder and resolves file URLs.
type TreeSource interface {
	ListTree(ctx context.Context, repoID, folderPath string) ([]*entity.RemoteEntry, error)
	ResolveURL(repoID, filePath string) string
}

// FolderDescriber is implemented by sources that can carry per-folder
// overrides of the section title and item names.
type FolderDescriber interface {
	Describe(repoID, folderPath string) (*entity.FolderMeta, error)
}

type Processor struct {
	src TreeSource
	log *slog.Logger
}

func NewProcessor(src TreeSource, log *slog.Logger) *Processor {
	return &Processor{
		src: src,
		log: log.With(slog.String("item", "Processor")),
	}
}

// ProcessFolder turns the files of one folder into import candidates.
func (p *Processor) ProcessFolder(ctx context.Context, repoID, folderPath string) (*entity.FolderImportResult, error) {
	entries, err := p.src.ListTree(ctx, repoID, folderPath)
	if err != nil {
		return nil, fmt.Errorf("cannot list folder %s: %w", folderPath, err)
	}

	var files []*entity.RemoteEntry
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e)
		}
	}
	util.SortNatural(files, func(e *entity.RemoteEntry) string { return e.Name })

	meta, err := p.describe(repoID, folderPath)
	if err != nil {
		return nil, err
	}

	matches, orphans := MatchSubtitles(files)
	if len(orphans) > 0 {
		p.log.Debug("Drop orphan subtitles", slog.String("folder", folderPath), slog.Int("count", len(orphans)))
	}

	result := &entity.FolderImportResult{
		FolderDisplayName: DisplayName(path.Base(folderPath), false),
		FolderPath:        folderPath,
		Items:             []*entity.ImportCandidate{},
	}
	if folderPath == "" {
		result.FolderDisplayName = repoID
	}
	if meta != nil && meta.Title != "" {
		result.FolderDisplayName = meta.Title
	}

	for _, f := range files {
		kind := Classify(f.Name)
		if kind == entity.KindSubtitle {
			continue
		}

		item := &entity.ImportCandidate{
			DisplayName:  DisplayName(f.Name, true),
			Kind:         kind,
			SourceURL:    p.src.ResolveURL(repoID, f.Path),
			OriginalName: f.Name,
			Size:         f.Size,
			Order:        len(result.Items),
			Selected:     true,
		}

		if sub, ok := matches[f.Path]; ok {
			item.SubtitleURL = p.src.ResolveURL(repoID, sub.Path)
		}

		if meta != nil {
			if name, ok := meta.Files[f.Name]; ok && name != "" {
				item.DisplayName = name
			}
		}

		result.Items = append(result.Items, item)
	}

	p.log.Info("Folder processed", slog.String("repo", repoID), slog.String("folder", folderPath),
		slog.Int("files", len(files)), slog.Int("items", len(result.Items)))

	return result, nil
}

// ProcessChildren processes every immediate subfolder of parentPath in listing
// order and keeps the ones that yield at least one candidate.
func (p *Processor) ProcessChildren(ctx context.Context, repoID, parentPath string) ([]*entity.FolderImportResult, error) {
	entries, err := p.src.ListTree(ctx, repoID, parentPath)
	if err != nil {
		return nil, fmt.Errorf("cannot list folder %s: %w", parentPath, err)
	}

	var results []*entity.FolderImportResult
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		folder, err := p.ProcessFolder(ctx, repoID, e.Path)
		if err != nil {
			return nil, err
		}

		if len(folder.Items) == 0 {
			p.log.Info("Skip empty folder", slog.String("folder", e.Path))

			continue
		}

		results = append(results, folder)
	}

	return results, nil
}

func (p *Processor) describe(repoID, folderPath string) (*entity.FolderMeta, error) {
	d, ok := p.src.(FolderDescriber)
	if !ok {
		return nil, nil
	}

	meta, err := d.Describe(repoID, folderPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s description: %w", folderPath, err)
	}

	return meta, nil
}
