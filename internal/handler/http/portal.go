package httphandler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
)

// userID returns the student id set by the upstream auth layer.
func userID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(headerUserID))
	if id == "" {
		return "", common.ErrUnauthorized
	}

	return id, nil
}

func NewCoursesHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CoursesHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		courses, err := srv.ListCourses(r.Context(), r.URL.Query().Get("category"))
		if courses == nil {
			courses = []*entity.Course{}
		}
		respond(w, log, http.StatusOK, courses, err)
	}
}

func NewCourseHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CourseHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		course, err := srv.GetCourse(r.Context(), chi.URLParam(r, "courseID"))
		respond(w, log, http.StatusOK, course, err)
	}
}

func NewCategoriesHandler(srv CourseService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CategoriesHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := srv.ListCategories(r.Context())
		if categories == nil {
			categories = []*entity.Category{}
		}
		respond(w, log, http.StatusOK, categories, err)
	}
}

func NewProfileHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ProfileHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		student, err := srv.GetStudent(r.Context(), id)
		respond(w, log, http.StatusOK, student, err)
	}
}

func NewSaveProfileHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SaveProfileHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		var student entity.Student
		if err := readJSON(r, &student); err != nil {
			writeError(w, log, err)

			return
		}
		student.ID = id

		saved, err := srv.SaveProfile(r.Context(), &student)
		respond(w, log, http.StatusOK, saved, err)
	}
}

func NewMyCoursesHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "MyCoursesHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		courses, err := srv.MyCourses(r.Context(), id)
		if courses == nil {
			courses = []*entity.Course{}
		}
		respond(w, log, http.StatusOK, courses, err)
	}
}

func NewEnrollHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "EnrollHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		enrollment, err := srv.Enroll(r.Context(), id, chi.URLParam(r, "courseID"))
		respond(w, log, http.StatusOK, enrollment, err)
	}
}

func NewUnenrollHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UnenrollHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		respond(w, log, http.StatusOK, nil, srv.Unenroll(r.Context(), id, chi.URLParam(r, "courseID")))
	}
}

func NewSaveProgressHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SaveProgressHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		var p entity.Progress
		if err := readJSON(r, &p); err != nil {
			writeError(w, log, err)

			return
		}
		p.UserID = id
		p.CourseID = chi.URLParam(r, "courseID")

		saved, err := srv.SaveProgress(r.Context(), &p)
		respond(w, log, http.StatusOK, saved, err)
	}
}

func NewCourseProgressHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CourseProgressHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		progress, err := srv.CourseProgress(r.Context(), id, chi.URLParam(r, "courseID"))
		respond(w, log, http.StatusOK, progress, err)
	}
}

func NewRecentHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "RecentHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		recent, err := srv.RecentlyWatched(r.Context(), id)
		if recent == nil {
			recent = []*entity.Progress{}
		}
		respond(w, log, http.StatusOK, recent, err)
	}
}

func NewSaveNoteHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SaveNoteHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		var note entity.Note
		if err := readJSON(r, &note); err != nil {
			writeError(w, log, err)

			return
		}
		note.UserID = id
		note.CourseID = chi.URLParam(r, "courseID")

		saved, err := srv.SaveNote(r.Context(), &note)
		if err == nil && saved == nil {
			w.WriteHeader(http.StatusNoContent)

			return
		}
		respond(w, log, http.StatusOK, saved, err)
	}
}

func NewCourseNotesHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CourseNotesHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		notes, err := srv.CourseNotes(r.Context(), id, chi.URLParam(r, "courseID"))
		if notes == nil {
			notes = []*entity.Note{}
		}
		respond(w, log, http.StatusOK, notes, err)
	}
}

func NewDeleteNoteHandler(srv StudentService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteNoteHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := userID(r)
		if err != nil {
			writeError(w, log, err)

			return
		}

		respond(w, log, http.StatusOK, nil, srv.DeleteNote(r.Context(), id, chi.URLParam(r, "noteID")))
	}
}

type mediaResponse struct {
	URL string `json:"url"`
}

// NewMediaHandler returns the playable form of a stored content url (?url=).
func NewMediaHandler(srv ImportService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "MediaHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := userID(r); err != nil {
			writeError(w, log, err)

			return
		}

		resolved := r.URL.Query().Get("url")
		if resolved == "" {
			writeError(w, log, common.ErrBadRequest)

			return
		}

		u, err := srv.MediaURL(r.Context(), resolved)
		respond(w, log, http.StatusOK, mediaResponse{URL: u}, err)
	}
}
