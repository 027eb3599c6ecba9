package entity

type ContentKind string

const (
	KindVideo    ContentKind = "video"
	KindSubtitle ContentKind = "subtitle"
	KindDocument ContentKind = "document"
	KindImage    ContentKind = "image"
	KindFile     ContentKind = "file"
)

// ContentType maps an import kind to the persisted content type.
// Subtitles never become content; they fold into file if asked.
func (k ContentKind) ContentType() ContentType {
	switch k {
	case KindVideo:
		return ContentTypeVideo
	case KindDocument:
		return ContentTypePDF
	default:
		return ContentTypeFile
	}
}

// ImportCandidate is one file of a folder that can become a content item.
type ImportCandidate struct {
	DisplayName  string      `json:"name" yaml:"name"` // Editable by the reviewer
	Kind         ContentKind `json:"type" yaml:"type"`
	SourceURL    string      `json:"url" yaml:"url"`
	SubtitleURL  string      `json:"subtitleUrl,omitempty" yaml:"subtitle_url,omitempty"`
	OriginalName string      `json:"originalName" yaml:"original_name"`
	Size         int64       `json:"size" yaml:"size"`
	Order        int         `json:"order" yaml:"order"`
	Selected     bool        `json:"selected" yaml:"selected"`
}

// FolderImportResult is the preview of one folder: future section plus its items.
type FolderImportResult struct {
	FolderDisplayName string             `json:"folderName" yaml:"folder_name"` // Editable section name
	FolderPath        string             `json:"folderPath" yaml:"folder_path"`
	Items             []*ImportCandidate `json:"items" yaml:"items"`
}

// SelectedItems returns the items the reviewer kept, in item order.
func (f *FolderImportResult) SelectedItems() []*ImportCandidate {
	var items []*ImportCandidate
	for _, item := range f.Items {
		if item.Selected {
			items = append(items, item)
		}
	}

	return items
}

type CommitResult struct {
	SectionsCreated int      `json:"sectionsCreated"`
	ContentsCreated int      `json:"contentsCreated"`
	SectionIDs      []string `json:"sectionIds,omitempty"`
}
