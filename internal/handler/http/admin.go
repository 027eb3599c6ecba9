package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/jgivc/eduvance/internal/service/hfimport"
)

// respond writes v with status, or the mapped error.
func respond(w http.ResponseWriter, log *slog.Logger, status int, v any, err error) {
	if err != nil {
		writeError(w, log, err)

		return
	}

	if v == nil {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	writeJSON(w, status, v)
}

func created(w http.ResponseWriter, log *slog.Logger, id string, err error) {
	respond(w, log, http.StatusCreated, idResponse{ID: id}, err)
}

func NewStatsHandler(srv DashboardService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "StatsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := srv.Stats(r.Context())
		respond(w, log, http.StatusOK, stats, err)
	}
}

func NewPopularCoursesHandler(srv DashboardService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "PopularCoursesHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		courses, err := srv.PopularCourses(r.Context())
		if courses == nil {
			courses = []*entity.PopularCourse{}
		}
		respond(w, log, http.StatusOK, courses, err)
	}
}

func NewCreateCourseHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CreateCourseHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var course entity.Course
		if err := readJSON(r, &course); err != nil {
			writeError(w, log, err)

			return
		}

		id, err := srv.CreateCourse(r.Context(), &course)
		created(w, log, id, err)
	}
}

func NewUpdateCourseHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UpdateCourseHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var course entity.Course
		if err := readJSON(r, &course); err != nil {
			writeError(w, log, err)

			return
		}
		course.ID = chi.URLParam(r, "courseID")

		respond(w, log, http.StatusOK, nil, srv.UpdateCourse(r.Context(), &course))
	}
}

func NewDeleteCourseHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteCourseHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, log, http.StatusOK, nil, srv.DeleteCourse(r.Context(), chi.URLParam(r, "courseID")))
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

func NewCreateSectionHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CreateSectionHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		id, err := srv.CreateSection(r.Context(), chi.URLParam(r, "courseID"), req.Name)
		created(w, log, id, err)
	}
}

func NewRenameSectionHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "RenameSectionHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		err := srv.RenameSection(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "sectionID"), req.Name)
		respond(w, log, http.StatusOK, nil, err)
	}
}

func NewDeleteSectionHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteSectionHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		err := srv.DeleteSection(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "sectionID"))
		respond(w, log, http.StatusOK, nil, err)
	}
}

// NewMoveSectionHandler expects ?dir=up or ?dir=down.
func NewMoveSectionHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "MoveSectionHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		dir := r.URL.Query().Get("dir")
		if dir != "up" && dir != "down" {
			writeError(w, log, common.ErrBadRequest)

			return
		}

		err := srv.MoveSection(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "sectionID"), dir == "up")
		respond(w, log, http.StatusOK, nil, err)
	}
}

func NewCreateContentHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CreateContentHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var content entity.Content
		if err := readJSON(r, &content); err != nil {
			writeError(w, log, err)

			return
		}

		id, err := srv.CreateContent(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "sectionID"), &content)
		created(w, log, id, err)
	}
}

func NewUpdateContentHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UpdateContentHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var content entity.Content
		if err := readJSON(r, &content); err != nil {
			writeError(w, log, err)

			return
		}
		content.SectionID = chi.URLParam(r, "sectionID")
		content.ID = chi.URLParam(r, "contentID")

		respond(w, log, http.StatusOK, nil, srv.UpdateContent(r.Context(), &content))
	}
}

func NewDeleteContentHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteContentHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		err := srv.DeleteContent(r.Context(), chi.URLParam(r, "sectionID"), chi.URLParam(r, "contentID"))
		respond(w, log, http.StatusOK, nil, err)
	}
}

func NewCreateCategoryHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CreateCategoryHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var category entity.Category
		if err := readJSON(r, &category); err != nil {
			writeError(w, log, err)

			return
		}

		id, err := srv.CreateCategory(r.Context(), &category)
		created(w, log, id, err)
	}
}

func NewUpdateCategoryHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UpdateCategoryHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var category entity.Category
		if err := readJSON(r, &category); err != nil {
			writeError(w, log, err)

			return
		}
		category.ID = chi.URLParam(r, "categoryID")

		respond(w, log, http.StatusOK, nil, srv.UpdateCategory(r.Context(), &category))
	}
}

func NewDeleteCategoryHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteCategoryHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, log, http.StatusOK, nil, srv.DeleteCategory(r.Context(), chi.URLParam(r, "categoryID")))
	}
}

// NewAnnouncementsHandler lists every announcement, or only the active ones when active is true.
func NewAnnouncementsHandler(srv CourseService, active bool, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "AnnouncementsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		list, err := srv.ListAnnouncements(r.Context(), active)
		respond(w, log, http.StatusOK, list, err)
	}
}

func NewCreateAnnouncementHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CreateAnnouncementHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var a entity.Announcement
		if err := readJSON(r, &a); err != nil {
			writeError(w, log, err)

			return
		}

		id, err := srv.CreateAnnouncement(r.Context(), &a)
		created(w, log, id, err)
	}
}

func NewUpdateAnnouncementHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UpdateAnnouncementHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var a entity.Announcement
		if err := readJSON(r, &a); err != nil {
			writeError(w, log, err)

			return
		}
		a.ID = chi.URLParam(r, "announcementID")

		respond(w, log, http.StatusOK, nil, srv.UpdateAnnouncement(r.Context(), &a))
	}
}

func NewToggleAnnouncementHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ToggleAnnouncementHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		active, err := srv.ToggleAnnouncement(r.Context(), chi.URLParam(r, "announcementID"))
		respond(w, log, http.StatusOK, map[string]bool{"active": active}, err)
	}
}

func NewDeleteAnnouncementHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteAnnouncementHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, log, http.StatusOK, nil, srv.DeleteAnnouncement(r.Context(), chi.URLParam(r, "announcementID")))
	}
}

func NewStudentsHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "StudentsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		students, err := srv.ListStudents(r.Context())
		respond(w, log, http.StatusOK, students, err)
	}
}

type disableRequest struct {
	Disabled bool `json:"disabled"`
}

func NewDisableStudentHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DisableStudentHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req disableRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		respond(w, log, http.StatusOK, nil, srv.SetDisabled(r.Context(), chi.URLParam(r, "studentID"), req.Disabled))
	}
}

func NewDeleteStudentHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteStudentHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, log, http.StatusOK, nil, srv.DeleteStudent(r.Context(), chi.URLParam(r, "studentID")))
	}
}

func NewImportStatusHandler(srv ImportService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ImportStatusHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := srv.Status(r.Context())
		respond(w, log, http.StatusOK, identity, err)
	}
}

type tokenRequest struct {
	Token string `json:"token"`
}

func NewSaveTokenHandler(srv ImportService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SaveTokenHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		identity, err := srv.SaveToken(r.Context(), req.Token)
		respond(w, log, http.StatusOK, identity, err)
	}
}

func NewDatasetsHandler(srv ImportService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DatasetsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		datasets, err := srv.Datasets(r.Context(), r.URL.Query().Get("source"))
		if datasets == nil {
			datasets = []*entity.Dataset{}
		}
		respond(w, log, http.StatusOK, datasets, err)
	}
}

// NewTreeHandler serves ?source=&repo=&path=.
func NewTreeHandler(srv ImportService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "TreeHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("repo") == "" {
			writeError(w, log, common.ErrBadRequest)

			return
		}

		listing, err := srv.Browse(r.Context(), q.Get("source"), q.Get("repo"), q.Get("path"))
		respond(w, log, http.StatusOK, listing, err)
	}
}

func NewPreviewHandler(srv ImportService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "PreviewHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req hfimport.PreviewRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		folders, err := srv.Preview(r.Context(), &req)
		respond(w, log, http.StatusOK, folders, err)
	}
}

type commitRequest struct {
	CourseID string                       `json:"courseId"`
	Folders  []*entity.FolderImportResult `json:"folders"`
}

func NewCommitHandler(srv ImportService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CommitHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req commitRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		if req.CourseID == "" {
			writeError(w, log, common.ErrBadRequest)

			return
		}

		result, err := srv.Commit(r.Context(), req.CourseID, req.Folders)
		respond(w, log, http.StatusOK, result, err)
	}
}
