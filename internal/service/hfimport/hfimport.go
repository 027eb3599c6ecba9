package hfimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/config"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/jgivc/eduvance/internal/importer"
)

const (
	serviceName = "hfimport"

	settingsTokenField = "token"
)

type Source interface {
	importer.TreeSource
	ListDatasets(ctx context.Context) ([]*entity.Dataset, error)
}

// RemoteSource is a Source bound to one credential.
type RemoteSource interface {
	Source
	Whoami(ctx context.Context) (*entity.Identity, error)
	Tokenize(resolved string) string
}

// RemoteFactory builds a remote source for token.
type RemoteFactory func(token string) RemoteSource

type SettingsRepository interface {
	GetSettings(ctx context.Context, name string) (map[string]string, error)
	SaveSettings(ctx context.Context, name string, values map[string]string) error
}

type CourseRepository interface {
	importer.CourseWriter
	CountSections(ctx context.Context, courseID string) (int, error)
}

type PreviewRequest struct {
	Source string `json:"source"`
	RepoID string `json:"repo"`
	Path   string `json:"path"`
	Batch  bool   `json:"batch"` // Preview every subfolder of Path
}

type importService struct {
	running  atomic.Bool
	settings SettingsRepository
	courses  CourseRepository
	remote   RemoteFactory
	local    Source
	cfg      *config.HFConfig
	log      *slog.Logger
}

// NewImportService wires the import flow. local may be nil when no local
// source is configured.
func NewImportService(settings SettingsRepository, courses CourseRepository, remote RemoteFactory, local Source,
	cfg *config.HFConfig, log *slog.Logger) *importService {
	return &importService{
		settings: settings,
		courses:  courses,
		remote:   remote,
		local:    local,
		cfg:      cfg,
		log:      log.With(slog.String("service", serviceName)),
	}
}

// Token returns the stored credential, falling back to the seed one.
func (s *importService) Token(ctx context.Context) (string, error) {
	settings, err := s.settings.GetSettings(ctx, s.cfg.SettingsKey)
	if err != nil {
		return "", fmt.Errorf("cannot get token: %w", err)
	}

	if token := settings[settingsTokenField]; token != "" {
		return token, nil
	}

	if s.cfg.SeedToken != "" {
		return s.cfg.SeedToken, nil
	}

	return "", common.ErrTokenNotConfigured
}

// Status reports the account behind the current credential.
func (s *importService) Status(ctx context.Context) (*entity.Identity, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}

	return s.remote(token).Whoami(ctx)
}

// SaveToken stores token after checking it against the remote API.
func (s *importService) SaveToken(ctx context.Context, token string) (*entity.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", common.ErrBadRequest)
	}

	identity, err := s.remote(token).Whoami(ctx)
	if err != nil {
		s.log.Warn("Token rejected", slog.Any("error", err))

		return nil, err
	}

	if err := s.settings.SaveSettings(ctx, s.cfg.SettingsKey, map[string]string{settingsTokenField: token}); err != nil {
		s.log.Error("Cannot save token", slog.Any("error", err))

		return nil, fmt.Errorf("cannot save token: %w", err)
	}

	s.log.Info("Token saved", slog.String("user", identity.Name))

	return identity, nil
}

func (s *importService) Datasets(ctx context.Context, source string) ([]*entity.Dataset, error) {
	src, err := s.source(ctx, source)
	if err != nil {
		return nil, err
	}

	return src.ListDatasets(ctx)
}

// Browse lists one folder of a repository with the breadcrumbs leading to it.
func (s *importService) Browse(ctx context.Context, source, repoID, folderPath string) (*entity.Listing, error) {
	session := importer.NewSession(source)
	session.Open(repoID)
	if err := session.Enter(folderPath); err != nil {
		return nil, err
	}

	src, err := s.source(ctx, session.Source)
	if err != nil {
		return nil, err
	}

	entries, err := src.ListTree(ctx, session.RepoID, session.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot list %s:%s: %w", repoID, session.Path, err)
	}

	return &entity.Listing{
		Source:      session.Source,
		RepoID:      session.RepoID,
		Path:        session.Path,
		Breadcrumbs: session.Breadcrumbs(),
		Entries:     entries,
	}, nil
}

// Preview builds the import candidates of one folder, or of each subfolder in batch mode.
func (s *importService) Preview(ctx context.Context, req *PreviewRequest) ([]*entity.FolderImportResult, error) {
	if req.RepoID == "" {
		return nil, fmt.Errorf("%w: repository is empty", common.ErrBadRequest)
	}

	session := importer.NewSession(req.Source)
	session.Open(req.RepoID)
	if err := session.Enter(req.Path); err != nil {
		return nil, err
	}

	src, err := s.source(ctx, session.Source)
	if err != nil {
		return nil, err
	}

	p := importer.NewProcessor(src, s.log)

	var folders []*entity.FolderImportResult
	if req.Batch {
		folders, err = p.ProcessChildren(ctx, session.RepoID, session.Path)
	} else {
		var folder *entity.FolderImportResult
		if folder, err = p.ProcessFolder(ctx, session.RepoID, session.Path); err == nil && len(folder.Items) > 0 {
			folders = append(folders, folder)
		}
	}
	if err != nil {
		s.log.Error("Cannot build preview", slog.String("repo", req.RepoID), slog.String("path", req.Path), slog.Any("error", err))

		return nil, err
	}

	if len(folders) == 0 {
		return nil, common.ErrNothingToImport
	}

	return folders, nil
}

// Commit writes the reviewed folders into the course. Only one commit runs at a time.
func (s *importService) Commit(ctx context.Context, courseID string, folders []*entity.FolderImportResult) (*entity.CommitResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, common.ErrImportInProgress
	}
	defer s.running.Store(false)

	selected := 0
	for _, f := range folders {
		selected += len(f.SelectedItems())
	}
	if selected == 0 {
		return nil, common.ErrNothingToImport
	}

	existing, err := s.courses.CountSections(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("cannot count course %s sections: %w", courseID, err)
	}

	log := s.log.With(slog.String("op", "Commit"), slog.String("course_id", courseID))
	log.Info("Start import", slog.Int("folders", len(folders)), slog.Int("items", selected), slog.Int("existing_sections", existing))

	result, err := importer.Commit(ctx, s.courses, courseID, folders, existing)
	if err != nil {
		var commitErr *importer.CommitError
		if errors.As(err, &commitErr) {
			log.Error("Import stopped", slog.Int("folder", commitErr.Folder), slog.Int("item", commitErr.Item),
				slog.Int("sections_created", result.SectionsCreated), slog.Int("contents_created", result.ContentsCreated),
				slog.Any("error", commitErr.Err))
		}

		return result, err
	}

	log.Info("Import done", slog.Int("sections_created", result.SectionsCreated), slog.Int("contents_created", result.ContentsCreated))

	return result, nil
}

// MediaURL makes a stored content URL playable. Without a configured
// credential the URL is returned as is.
func (s *importService) MediaURL(ctx context.Context, resolved string) (string, error) {
	token, err := s.Token(ctx)
	if err != nil {
		if errors.Is(err, common.ErrTokenNotConfigured) {
			return resolved, nil
		}

		return "", err
	}

	return s.remote(token).Tokenize(resolved), nil
}

func (s *importService) source(ctx context.Context, name string) (Source, error) {
	switch name {
	case importer.SourceHF, "":
		token, err := s.Token(ctx)
		if err != nil {
			return nil, err
		}

		return s.remote(token), nil
	case importer.SourceLocal:
		if s.local != nil {
			return s.local, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", common.ErrUnknownSource, name)
}
