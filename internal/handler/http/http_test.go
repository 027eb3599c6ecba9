package httphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/jgivc/eduvance/internal/importer"
	"github.com/jgivc/eduvance/internal/service/hfimport"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "secret"

type courseMock struct {
	mock.Mock
	CourseService
}

func (m *courseMock) CreateCourse(ctx context.Context, course *entity.Course) (string, error) {
	args := m.Called(course.Name)

	return args.String(0), args.Error(1)
}

func (m *courseMock) GetCourse(ctx context.Context, id string) (*entity.CourseDetail, error) {
	args := m.Called(id)

	return args.Get(0).(*entity.CourseDetail), args.Error(1)
}

func (m *courseMock) MoveSection(ctx context.Context, courseID, sectionID string, up bool) error {
	return m.Called(courseID, sectionID, up).Error(0)
}

func (m *courseMock) ListAnnouncements(ctx context.Context, activeOnly bool) ([]*entity.Announcement, error) {
	args := m.Called(activeOnly)

	return args.Get(0).([]*entity.Announcement), args.Error(1)
}

type dashboardMock struct {
	mock.Mock
	DashboardService
}

func (m *dashboardMock) Stats(ctx context.Context) (*entity.Stats, error) {
	args := m.Called()

	return args.Get(0).(*entity.Stats), args.Error(1)
}

type importMock struct {
	mock.Mock
	ImportService
}

func (m *importMock) Browse(ctx context.Context, source, repoID, folderPath string) (*entity.Listing, error) {
	args := m.Called(source, repoID, folderPath)

	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *importMock) Preview(ctx context.Context, req *hfimport.PreviewRequest) ([]*entity.FolderImportResult, error) {
	args := m.Called(*req)

	return args.Get(0).([]*entity.FolderImportResult), args.Error(1)
}

func (m *importMock) Commit(ctx context.Context, courseID string, folders []*entity.FolderImportResult) (*entity.CommitResult, error) {
	args := m.Called(courseID, len(folders))

	return args.Get(0).(*entity.CommitResult), args.Error(1)
}

func (m *importMock) MediaURL(ctx context.Context, resolved string) (string, error) {
	args := m.Called(resolved)

	return args.String(0), args.Error(1)
}

type studentMock struct {
	mock.Mock
	StudentService
}

func (m *studentMock) Enroll(ctx context.Context, userID, courseID string) (*entity.Enrollment, error) {
	args := m.Called(userID, courseID)

	return args.Get(0).(*entity.Enrollment), args.Error(1)
}

func (m *studentMock) SaveProgress(ctx context.Context, p *entity.Progress) (*entity.Progress, error) {
	args := m.Called(*p)

	return args.Get(0).(*entity.Progress), args.Error(1)
}

func (m *studentMock) SaveNote(ctx context.Context, note *entity.Note) (*entity.Note, error) {
	args := m.Called(note.Text)

	return args.Get(0).(*entity.Note), args.Error(1)
}

type testServer struct {
	courses   *courseMock
	dashboard *dashboardMock
	imports   *importMock
	students  *studentMock
	handler   http.Handler
}

func newTestServer() *testServer {
	s := &testServer{
		courses:   &courseMock{},
		dashboard: &dashboardMock{},
		imports:   &importMock{},
		students:  &studentMock{},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	s.handler = NewRouter(&Services{
		Courses:   s.courses,
		Dashboard: s.dashboard,
		Import:    s.imports,
		Students:  s.students,
	}, testAdminToken, log)

	return s
}

func (s *testServer) do(method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, r)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

func admin() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func student(id string) map[string]string {
	return map[string]string{headerUserID: id}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))

	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestAdminAuth(t *testing.T) {
	testCases := []struct {
		name   string
		header map[string]string
		status int
	}{
		{name: "no header", status: http.StatusUnauthorized},
		{name: "wrong token", header: map[string]string{"Authorization": "Bearer nope"}, status: http.StatusUnauthorized},
		{name: "not bearer", header: map[string]string{"Authorization": testAdminToken}, status: http.StatusUnauthorized},
		{name: "valid", header: admin(), status: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer()
			s.dashboard.On("Stats").Return(&entity.Stats{Courses: 3}, nil).Maybe()

			rec := s.do(http.MethodGet, "/api/admin/stats", "", tc.header)
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestAdminAuthEmptyTokenRejects(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	h := NewRouter(&Services{Dashboard: &dashboardMock{}}, "", log)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateCourse(t *testing.T) {
	s := newTestServer()
	s.courses.On("CreateCourse", "Flutter").Return("c1", nil)

	rec := s.do(http.MethodPost, "/api/admin/courses", `{"name":"Flutter"}`, admin())
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "c1", decode[idResponse](t, rec).ID)

	rec = s.do(http.MethodPost, "/api/admin/courses", `{"name":`, admin())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	s.courses.AssertExpectations(t)
}

func TestMoveSection(t *testing.T) {
	s := newTestServer()
	s.courses.On("MoveSection", "c1", "s1", true).Return(nil)

	rec := s.do(http.MethodPost, "/api/admin/courses/c1/sections/s1/move?dir=up", "", admin())
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/courses/c1/sections/s1/move?dir=left", "", admin())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	s.courses.AssertExpectations(t)
}

func TestErrorStatus(t *testing.T) {
	testCases := []struct {
		err    error
		status int
	}{
		{err: common.ErrCourseNotFound, status: http.StatusNotFound},
		{err: fmt.Errorf("cannot list: %w", common.ErrRemoteNotFound), status: http.StatusNotFound},
		{err: common.ErrTokenNotConfigured, status: http.StatusPreconditionFailed},
		{err: common.ErrInvalidCredential, status: http.StatusUnprocessableEntity},
		{err: common.ErrRemoteRequestFailed, status: http.StatusBadGateway},
		{err: common.ErrInvalidPath, status: http.StatusBadRequest},
		{err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			s := newTestServer()
			s.imports.On("Browse", "hf", "org/data", "a").Return((*entity.Listing)(nil), tc.err)

			rec := s.do(http.MethodGet, "/api/admin/hf/tree?source=hf&repo=org/data&path=a", "", admin())
			require.Equal(t, tc.status, rec.Code)

			msg := decode[errorResponse](t, rec).Error
			if tc.status == http.StatusInternalServerError {
				require.Equal(t, http.StatusText(http.StatusInternalServerError), msg)
			} else {
				require.Equal(t, tc.err.Error(), msg)
			}
		})
	}
}

func TestTreeRequiresRepo(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/api/admin/hf/tree", "", admin())
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreview(t *testing.T) {
	s := newTestServer()
	req := hfimport.PreviewRequest{Source: "hf", RepoID: "org/data", Path: "course", Batch: true}
	s.imports.On("Preview", req).Return([]*entity.FolderImportResult{
		{FolderDisplayName: "Start", FolderPath: "course/1. Start"},
	}, nil)

	rec := s.do(http.MethodPost, "/api/admin/hf/preview",
		`{"source":"hf","repo":"org/data","path":"course","batch":true}`, admin())
	require.Equal(t, http.StatusOK, rec.Code)

	folders := decode[[]*entity.FolderImportResult](t, rec)
	require.Len(t, folders, 1)
	require.Equal(t, "course/1. Start", folders[0].FolderPath)
}

func TestCommit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer()
		s.imports.On("Commit", "c1", 2).Return(&entity.CommitResult{SectionsCreated: 2, ContentsCreated: 5}, nil)

		rec := s.do(http.MethodPost, "/api/admin/hf/commit", `{"courseId":"c1","folders":[{},{}]}`, admin())
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 5, decode[entity.CommitResult](t, rec).ContentsCreated)
	})

	t.Run("partial failure", func(t *testing.T) {
		s := newTestServer()
		partial := &entity.CommitResult{SectionsCreated: 1, ContentsCreated: 2}
		s.imports.On("Commit", "c1", 1).Return(partial, &importer.CommitError{
			Result: partial, Folder: 0, Item: 2, Err: fmt.Errorf("redis down"),
		})

		rec := s.do(http.MethodPost, "/api/admin/hf/commit", `{"courseId":"c1","folders":[{}]}`, admin())
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		resp := decode[commitErrorResponse](t, rec)
		require.Equal(t, 2, resp.Item)
		require.Equal(t, 2, resp.Result.ContentsCreated)
	})

	t.Run("import in progress", func(t *testing.T) {
		s := newTestServer()
		s.imports.On("Commit", "c1", 1).Return((*entity.CommitResult)(nil), common.ErrImportInProgress)

		rec := s.do(http.MethodPost, "/api/admin/hf/commit", `{"courseId":"c1","folders":[{}]}`, admin())
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing course", func(t *testing.T) {
		s := newTestServer()

		rec := s.do(http.MethodPost, "/api/admin/hf/commit", `{"folders":[{}]}`, admin())
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPortalRequiresUser(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPost, "/api/portal/courses/c1/enroll", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPortalPublicRoutes(t *testing.T) {
	s := newTestServer()
	s.courses.On("ListAnnouncements", true).Return([]*entity.Announcement{{ID: "a1", Active: true}}, nil)
	s.courses.On("GetCourse", "c1").Return(&entity.CourseDetail{Course: &entity.Course{ID: "c1"}}, nil)

	rec := s.do(http.MethodGet, "/api/portal/announcements", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]*entity.Announcement](t, rec), 1)

	rec = s.do(http.MethodGet, "/api/portal/courses/c1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	s.courses.AssertExpectations(t)
}

func TestEnroll(t *testing.T) {
	s := newTestServer()
	s.students.On("Enroll", "u1", "c1").Return(&entity.Enrollment{ID: "u1_c1", UserID: "u1", CourseID: "c1"}, nil)
	s.students.On("Enroll", "u2", "c1").Return((*entity.Enrollment)(nil), common.ErrStudentDisabled)

	rec := s.do(http.MethodPost, "/api/portal/courses/c1/enroll", "", student("u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1_c1", decode[entity.Enrollment](t, rec).ID)

	rec = s.do(http.MethodPost, "/api/portal/courses/c1/enroll", "", student("u2"))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSaveProgressUsesPathAndHeader(t *testing.T) {
	s := newTestServer()
	expected := entity.Progress{UserID: "u1", CourseID: "c1", ContentID: "x", Position: 12}
	s.students.On("SaveProgress", expected).Return(&expected, nil)

	rec := s.do(http.MethodPut, "/api/portal/courses/c1/progress",
		`{"userId":"someone-else","courseId":"c2","contentId":"x","position":12}`, student("u1"))
	require.Equal(t, http.StatusOK, rec.Code)

	s.students.AssertExpectations(t)
}

func TestSaveEmptyNote(t *testing.T) {
	s := newTestServer()
	s.students.On("SaveNote", "").Return((*entity.Note)(nil), nil)

	rec := s.do(http.MethodPut, "/api/portal/courses/c1/notes", `{"contentId":"x","text":""}`, student("u1"))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMedia(t *testing.T) {
	s := newTestServer()
	resolved := "https://hf.test/datasets/org/data/resolve/main/a.mp4"
	s.imports.On("MediaURL", resolved).Return(resolved+"?token=t", nil)

	rec := s.do(http.MethodGet, "/api/portal/media?url="+resolved, "", student("u1"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, resolved+"?token=t", decode[mediaResponse](t, rec).URL)

	rec = s.do(http.MethodGet, "/api/portal/media", "", student("u1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
