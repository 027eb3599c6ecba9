package entity

import "time"

type EntryKind string

const (
	EntryKindFile      EntryKind = "file"
	EntryKindDirectory EntryKind = "directory"
)

// RemoteEntry is one item of a repository tree listing.
type RemoteEntry struct {
	Kind EntryKind `json:"type" yaml:"type"`
	Path string    `json:"path" yaml:"path"` // Full path inside the repository, unique within one listing
	Name string    `json:"name" yaml:"name"` // Final path segment
	Size int64     `json:"size" yaml:"size"`
}

func (e *RemoteEntry) IsDir() bool {
	return e.Kind == EntryKindDirectory
}

// Dataset is a remote repository the acting user can browse.
type Dataset struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Private      bool      `json:"private"`
	LastModified time.Time `json:"lastModified"`
}

// Identity is the account behind a credential.
type Identity struct {
	Name     string `json:"name"`
	FullName string `json:"fullname"`
}

// Breadcrumb is one step of the path from the repository root to the current folder.
type Breadcrumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// FolderMeta holds overrides read from a folder description file.
type FolderMeta struct {
	Title string            `yaml:"title"`
	Files map[string]string `yaml:"files"` // original file name -> display name
}

// Listing is one browsed folder of an import source.
type Listing struct {
	Source      string         `json:"source"`
	RepoID      string         `json:"repo"`
	Path        string         `json:"path"`
	Breadcrumbs []Breadcrumb   `json:"breadcrumbs"`
	Entries     []*RemoteEntry `json:"entries"`
}
