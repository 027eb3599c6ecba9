package importer

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/jgivc/eduvance/internal/util"
	"gopkg.in/yaml.v2"
)

const (
	SourceHF    = "hf"
	SourceLocal = "local"
)

// Session is the state of one browse-preview-commit flow. It is owned by a
// single caller and carries no locking.
type Session struct {
	Source  string                       `yaml:"source"`
	RepoID  string                       `yaml:"repo"`
	Path    string                       `yaml:"path"`
	Folders []*entity.FolderImportResult `yaml:"folders"`
}

func NewSession(source string) *Session {
	if source == "" {
		source = SourceHF
	}

	return &Session{Source: source}
}

// Open starts browsing a repository from its root and drops any preview.
func (s *Session) Open(repoID string) {
	s.RepoID = repoID
	s.Path = ""
	s.Folders = nil
}

// Enter moves into dirPath, a directory path returned by the last listing.
func (s *Session) Enter(dirPath string) error {
	if s.RepoID == "" {
		return fmt.Errorf("%w: no repository opened", common.ErrBadRequest)
	}

	// Remote paths are opaque and escaped per segment. Local ones map onto the disk.
	if s.Source == SourceLocal && util.HasParentSegment(dirPath) {
		return fmt.Errorf("%w: %s", common.ErrInvalidPath, dirPath)
	}

	s.Path = strings.Trim(dirPath, "/")
	s.Folders = nil

	return nil
}

// Up moves to the parent folder. It reports false at the repository root.
func (s *Session) Up() bool {
	if s.Path == "" {
		return false
	}

	parent := path.Dir(s.Path)
	if parent == "." {
		parent = ""
	}
	s.Path = parent
	s.Folders = nil

	return true
}

// Breadcrumbs lists the repository root followed by every folder down to the current one.
func (s *Session) Breadcrumbs() []entity.Breadcrumb {
	crumbs := []entity.Breadcrumb{{Name: s.RepoID, Path: ""}}
	if s.Path == "" {
		return crumbs
	}

	parts := strings.Split(s.Path, "/")
	for i, part := range parts {
		crumbs = append(crumbs, entity.Breadcrumb{
			Name: part,
			Path: strings.Join(parts[:i+1], "/"),
		})
	}

	return crumbs
}

func (s *Session) SetPreview(folders []*entity.FolderImportResult) {
	s.Folders = folders
}

func (s *Session) Select(folder, item int, selected bool) error {
	it, err := s.item(folder, item)
	if err != nil {
		return err
	}
	it.Selected = selected

	return nil
}

func (s *Session) Rename(folder, item int, name string) error {
	it, err := s.item(folder, item)
	if err != nil {
		return err
	}
	it.DisplayName = name

	return nil
}

func (s *Session) RenameFolder(folder int, name string) error {
	if folder < 0 || folder >= len(s.Folders) {
		return fmt.Errorf("%w: folder %d out of range", common.ErrBadRequest, folder)
	}
	s.Folders[folder].FolderDisplayName = name

	return nil
}

// SelectedCount returns the number of items that a commit would create.
func (s *Session) SelectedCount() int {
	n := 0
	for _, f := range s.Folders {
		n += len(f.SelectedItems())
	}

	return n
}

func (s *Session) Reset() {
	s.Path = ""
	s.Folders = nil
}

func (s *Session) item(folder, item int) (*entity.ImportCandidate, error) {
	if folder < 0 || folder >= len(s.Folders) {
		return nil, fmt.Errorf("%w: folder %d out of range", common.ErrBadRequest, folder)
	}

	items := s.Folders[folder].Items
	if item < 0 || item >= len(items) {
		return nil, fmt.Errorf("%w: item %d out of range", common.ErrBadRequest, item)
	}

	return items[item], nil
}

// WritePlan stores the session as an editable yaml document.
func (s *Session) WritePlan(w io.Writer) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("cannot marshal plan: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("cannot write plan: %w", err)
	}

	return nil
}

func ReadPlan(r io.Reader) (*Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read plan: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("cannot unmarshal plan: %w", err)
	}

	if s.RepoID == "" {
		return nil, fmt.Errorf("%w: plan has no repository", common.ErrBadRequest)
	}

	return &s, nil
}
