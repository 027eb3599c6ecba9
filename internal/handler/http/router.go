package httphandler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jgivc/eduvance/internal/common"
)

const requestTimeout = 60 * time.Second

type Services struct {
	Courses   CourseService
	Dashboard DashboardService
	Import    ImportService
	Students  StudentService
}

func NewRouter(srv *Services, adminToken string, log *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))

	router.Get("/health", NewHealthHandler())

	router.Route("/api/admin", func(api chi.Router) {
		api.Use(adminAuth(adminToken, log))

		api.Get("/stats", NewStatsHandler(srv.Dashboard, log))
		api.Get("/popular", NewPopularCoursesHandler(srv.Dashboard, log))

		api.Route("/courses", func(r chi.Router) {
			r.Get("/", NewCoursesHandler(srv.Courses, log))
			r.Post("/", NewCreateCourseHandler(srv.Courses, log))
			r.Get("/{courseID}", NewCourseHandler(srv.Courses, log))
			r.Put("/{courseID}", NewUpdateCourseHandler(srv.Courses, log))
			r.Delete("/{courseID}", NewDeleteCourseHandler(srv.Courses, log))

			r.Post("/{courseID}/sections", NewCreateSectionHandler(srv.Courses, log))
			r.Put("/{courseID}/sections/{sectionID}", NewRenameSectionHandler(srv.Courses, log))
			r.Delete("/{courseID}/sections/{sectionID}", NewDeleteSectionHandler(srv.Courses, log))
			r.Post("/{courseID}/sections/{sectionID}/move", NewMoveSectionHandler(srv.Courses, log))

			r.Post("/{courseID}/sections/{sectionID}/contents", NewCreateContentHandler(srv.Courses, log))
			r.Put("/{courseID}/sections/{sectionID}/contents/{contentID}", NewUpdateContentHandler(srv.Courses, log))
			r.Delete("/{courseID}/sections/{sectionID}/contents/{contentID}", NewDeleteContentHandler(srv.Courses, log))
		})

		api.Route("/categories", func(r chi.Router) {
			r.Get("/", NewCategoriesHandler(srv.Courses, log))
			r.Post("/", NewCreateCategoryHandler(srv.Courses, log))
			r.Put("/{categoryID}", NewUpdateCategoryHandler(srv.Courses, log))
			r.Delete("/{categoryID}", NewDeleteCategoryHandler(srv.Courses, log))
		})

		api.Route("/announcements", func(r chi.Router) {
			r.Get("/", NewAnnouncementsHandler(srv.Courses, false, log))
			r.Post("/", NewCreateAnnouncementHandler(srv.Courses, log))
			r.Put("/{announcementID}", NewUpdateAnnouncementHandler(srv.Courses, log))
			r.Post("/{announcementID}/toggle", NewToggleAnnouncementHandler(srv.Courses, log))
			r.Delete("/{announcementID}", NewDeleteAnnouncementHandler(srv.Courses, log))
		})

		api.Route("/students", func(r chi.Router) {
			r.Get("/", NewStudentsHandler(srv.Students, log))
			r.Put("/{studentID}/disabled", NewDisableStudentHandler(srv.Students, log))
			r.Delete("/{studentID}", NewDeleteStudentHandler(srv.Students, log))
		})

		api.Route("/hf", func(r chi.Router) {
			r.Get("/status", NewImportStatusHandler(srv.Import, log))
			r.Put("/token", NewSaveTokenHandler(srv.Import, log))
			r.Get("/datasets", NewDatasetsHandler(srv.Import, log))
			r.Get("/tree", NewTreeHandler(srv.Import, log))
			r.Post("/preview", NewPreviewHandler(srv.Import, log))
			r.Post("/commit", NewCommitHandler(srv.Import, log))
		})
	})

	router.Route("/api/portal", func(api chi.Router) {
		api.Get("/courses", NewCoursesHandler(srv.Courses, log))
		api.Get("/courses/{courseID}", NewCourseHandler(srv.Courses, log))
		api.Get("/categories", NewCategoriesHandler(srv.Courses, log))
		api.Get("/announcements", NewAnnouncementsHandler(srv.Courses, true, log))

		api.Get("/me", NewProfileHandler(srv.Students, log))
		api.Put("/me", NewSaveProfileHandler(srv.Students, log))
		api.Get("/me/courses", NewMyCoursesHandler(srv.Students, log))
		api.Get("/me/recent", NewRecentHandler(srv.Students, log))

		api.Post("/courses/{courseID}/enroll", NewEnrollHandler(srv.Students, log))
		api.Delete("/courses/{courseID}/enroll", NewUnenrollHandler(srv.Students, log))
		api.Get("/courses/{courseID}/progress", NewCourseProgressHandler(srv.Students, log))
		api.Put("/courses/{courseID}/progress", NewSaveProgressHandler(srv.Students, log))
		api.Get("/courses/{courseID}/notes", NewCourseNotesHandler(srv.Students, log))
		api.Put("/courses/{courseID}/notes", NewSaveNoteHandler(srv.Students, log))
		api.Delete("/notes/{noteID}", NewDeleteNoteHandler(srv.Students, log))

		api.Get("/media", NewMediaHandler(srv.Import, log))
	})

	return router
}

// adminAuth checks the shared secret sent as a bearer token. An empty token
// rejects every request.
func adminAuth(token string, log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(slog.String("handler", "AdminAuth"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log.Warn("Reject admin request", slog.String("remote", r.RemoteAddr), slog.String("path", r.URL.Path))
				writeError(w, log, common.ErrUnauthorized)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(slog.String("handler", "RequestLogger"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debug("Request served",
				slog.String("id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("took", time.Since(start)),
			)
		})
	}
}
