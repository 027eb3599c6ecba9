package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/jgivc/eduvance/internal/importer"
	"github.com/jgivc/eduvance/internal/service/hfimport"
)

const (
	maxBodySize = 4 << 20

	headerUserID = "X-User-ID"
)

type CourseService interface {
	CreateCourse(ctx context.Context, course *entity.Course) (string, error)
	UpdateCourse(ctx context.Context, course *entity.Course) error
	GetCourse(ctx context.Context, id string) (*entity.CourseDetail, error)
	ListCourses(ctx context.Context, categoryID string) ([]*entity.Course, error)
	DeleteCourse(ctx context.Context, id string) error

	CreateSection(ctx context.Context, courseID, name string) (string, error)
	RenameSection(ctx context.Context, courseID, sectionID, name string) error
	DeleteSection(ctx context.Context, courseID, sectionID string) error
	MoveSection(ctx context.Context, courseID, sectionID string, up bool) error

	CreateContent(ctx context.Context, courseID, sectionID string, content *entity.Content) (string, error)
	UpdateContent(ctx context.Context, content *entity.Content) error
	DeleteContent(ctx context.Context, sectionID, contentID string) error

	CreateCategory(ctx context.Context, category *entity.Category) (string, error)
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	UpdateCategory(ctx context.Context, category *entity.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateAnnouncement(ctx context.Context, a *entity.Announcement) (string, error)
	UpdateAnnouncement(ctx context.Context, a *entity.Announcement) error
	ListAnnouncements(ctx context.Context, activeOnly bool) ([]*entity.Announcement, error)
	ToggleAnnouncement(ctx context.Context, id string) (bool, error)
	DeleteAnnouncement(ctx context.Context, id string) error
}

type DashboardService interface {
	Stats(ctx context.Context) (*entity.Stats, error)
	PopularCourses(ctx context.Context) ([]*entity.PopularCourse, error)
}

type ImportService interface {
	Status(ctx context.Context) (*entity.Identity, error)
	SaveToken(ctx context.Context, token string) (*entity.Identity, error)
	Datasets(ctx context.Context, source string) ([]*entity.Dataset, error)
	Browse(ctx context.Context, source, repoID, folderPath string) (*entity.Listing, error)
	Preview(ctx context.Context, req *hfimport.PreviewRequest) ([]*entity.FolderImportResult, error)
	Commit(ctx context.Context, courseID string, folders []*entity.FolderImportResult) (*entity.CommitResult, error)
	MediaURL(ctx context.Context, resolved string) (string, error)
}

type StudentService interface {
	SaveProfile(ctx context.Context, student *entity.Student) (*entity.Student, error)
	GetStudent(ctx context.Context, id string) (*entity.Student, error)
	ListStudents(ctx context.Context) ([]*entity.Student, error)
	SetDisabled(ctx context.Context, id string, disabled bool) error
	DeleteStudent(ctx context.Context, id string) error

	Enroll(ctx context.Context, userID, courseID string) (*entity.Enrollment, error)
	Unenroll(ctx context.Context, userID, courseID string) error
	MyCourses(ctx context.Context, userID string) ([]*entity.Course, error)

	SaveProgress(ctx context.Context, p *entity.Progress) (*entity.Progress, error)
	CourseProgress(ctx context.Context, userID, courseID string) (*entity.CourseProgress, error)
	RecentlyWatched(ctx context.Context, userID string) ([]*entity.Progress, error)

	SaveNote(ctx context.Context, note *entity.Note) (*entity.Note, error)
	CourseNotes(ctx context.Context, userID, courseID string) ([]*entity.Note, error)
	DeleteNote(ctx context.Context, userID, noteID string) error
}

type errorResponse struct {
	Error string `json:"error"`
}

type idResponse struct {
	ID string `json:"id"`
}

type commitErrorResponse struct {
	Error  string               `json:"error"`
	Folder int                  `json:"folder"`
	Item   int                  `json:"item"`
	Result *entity.CommitResult `json:"result"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: cannot decode body: %v", common.ErrBadRequest, err)
	}

	return nil
}

// writeError maps service errors to status codes. Unknown errors are logged
// and hidden from the client.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var commitErr *importer.CommitError
	if errors.As(err, &commitErr) {
		log.Error("Import failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, commitErrorResponse{
			Error:  commitErr.Error(),
			Folder: commitErr.Folder,
			Item:   commitErr.Item,
			Result: commitErr.Result,
		})

		return
	}

	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("Request failed", slog.Any("error", err))
		msg = http.StatusText(status)
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrBadRequest), errors.Is(err, common.ErrInvalidPath), errors.Is(err, common.ErrUnknownSource):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotEnrolled), errors.Is(err, common.ErrStudentDisabled):
		return http.StatusForbidden
	case errors.Is(err, common.ErrCourseNotFound), errors.Is(err, common.ErrSectionNotFound),
		errors.Is(err, common.ErrContentNotFound), errors.Is(err, common.ErrCategoryNotFound),
		errors.Is(err, common.ErrAnnouncementNotFound), errors.Is(err, common.ErrStudentNotFound),
		errors.Is(err, common.ErrNoteNotFound), errors.Is(err, common.ErrRemoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(err, common.ErrTokenNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, common.ErrInvalidCredential), errors.Is(err, common.ErrNothingToImport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrRemoteRequestFailed):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
