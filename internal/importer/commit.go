package importer

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/jgivc/eduvance/internal/entity"
)

// CourseWriter persists the records created by an import.
type CourseWriter interface {
	CreateSection(ctx context.Context, courseID string, section *entity.Section) (string, error)
	CreateContent(ctx context.Context, courseID, sectionID string, content *entity.Content) (string, error)
}

// CommitError reports where a commit stopped. Everything counted in Result
// stays persisted.
type CommitError struct {
	Result *entity.CommitResult
	Folder int // Index of the folder being written
	Item   int // Index among the folder's selected items, -1 when the section create failed
	Err    error
}

func (e *CommitError) Error() string {
	if e.Item < 0 {
		return fmt.Sprintf("import stopped at folder %d section, %d sections and %d contents created: %v",
			e.Folder, e.Result.SectionsCreated, e.Result.ContentsCreated, e.Err)
	}

	return fmt.Sprintf("import stopped at folder %d item %d, %d sections and %d contents created: %v",
		e.Folder, e.Item, e.Result.SectionsCreated, e.Result.ContentsCreated, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Commit writes the selected folders and items one after another: the section
// of a folder first, then its contents. It stops at the first failure and
// does not undo what was already written.
func Commit(ctx context.Context, w CourseWriter, courseID string, folders []*entity.FolderImportResult, existingSections int) (*entity.CommitResult, error) {
	result := &entity.CommitResult{}

	for fi, folder := range folders {
		items := folder.SelectedItems()
		if len(items) == 0 {
			continue
		}

		section := &entity.Section{
			Name:  sectionName(folder),
			Order: existingSections + result.SectionsCreated,
		}

		sectionID, err := w.CreateSection(ctx, courseID, section)
		if err != nil {
			return result, &CommitError{Result: result, Folder: fi, Item: -1, Err: err}
		}
		result.SectionsCreated++
		result.SectionIDs = append(result.SectionIDs, sectionID)

		for ii, item := range items {
			content := &entity.Content{
				Type:  item.Kind.ContentType(),
				Name:  itemName(item),
				URL:   item.SourceURL,
				Order: ii,
			}
			if item.Kind == entity.KindVideo {
				content.SubtitleURL = item.SubtitleURL
			}

			if _, err := w.CreateContent(ctx, courseID, sectionID, content); err != nil {
				return result, &CommitError{Result: result, Folder: fi, Item: ii, Err: err}
			}
			result.ContentsCreated++
		}
	}

	return result, nil
}

func sectionName(folder *entity.FolderImportResult) string {
	if name := strings.TrimSpace(folder.FolderDisplayName); name != "" {
		return name
	}

	return DisplayName(path.Base(folder.FolderPath), false)
}

func itemName(item *entity.ImportCandidate) string {
	if name := strings.TrimSpace(item.DisplayName); name != "" {
		return name
	}

	return DisplayName(item.OriginalName, true)
}
