package course

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type repoMock struct {
	mock.Mock
	CourseRepository
}

func (m *repoMock) CreateCourse(ctx context.Context, course *entity.Course) (string, error) {
	args := m.Called(ctx, course)

	return args.String(0), args.Error(1)
}

func (m *repoMock) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	args := m.Called(ctx)

	return args.Get(0).([]*entity.Category), args.Error(1)
}

func (m *repoMock) ListSections(ctx context.Context, courseID string) ([]*entity.Section, error) {
	args := m.Called(ctx, courseID)

	return args.Get(0).([]*entity.Section), args.Error(1)
}

func (m *repoMock) CountSections(ctx context.Context, courseID string) (int, error) {
	args := m.Called(ctx, courseID)

	return args.Int(0), args.Error(1)
}

func (m *repoMock) CreateSection(ctx context.Context, courseID string, section *entity.Section) (string, error) {
	args := m.Called(ctx, courseID, section)

	return args.String(0), args.Error(1)
}

func (m *repoMock) UpdateSection(ctx context.Context, section *entity.Section) error {
	return m.Called(ctx, section).Error(0)
}

func (m *repoMock) CreateContent(ctx context.Context, courseID, sectionID string, content *entity.Content) (string, error) {
	args := m.Called(ctx, courseID, sectionID, content)

	return args.String(0), args.Error(1)
}

type rendererMock struct {
	mock.Mock
}

func (m *rendererMock) Render(src []byte) (*entity.Document, error) {
	args := m.Called(string(src))

	return args.Get(0).(*entity.Document), args.Error(1)
}

func newTestService(repo CourseRepository, md Renderer) *courseService {
	return NewCourseService(repo, md, slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})))
}

func TestCreateCourseFrontMatter(t *testing.T) {
	ctx := context.Background()
	repo := &repoMock{}
	md := &rendererMock{}

	md.On("Render", "src").Return(&entity.Document{
		HTML: "<p>body</p>",
		Meta: &entity.CourseMeta{Title: "Flutter", Category: "mobile", Thumbnail: "t.png"},
	}, nil)
	repo.On("ListCategories", ctx).Return([]*entity.Category{{ID: "c1", Name: "Web"}, {ID: "c2", Name: "Mobile"}}, nil)
	repo.On("CreateCourse", ctx, mock.MatchedBy(func(c *entity.Course) bool {
		return c.Name == "Flutter" && c.CategoryID == "c2" && c.Thumbnail == "t.png" && c.DescriptionHTML == "<p>body</p>"
	})).Return("id1", nil)

	id, err := newTestService(repo, md).CreateCourse(ctx, &entity.Course{Description: "src"})
	require.NoError(t, err)
	require.Equal(t, "id1", id)
	repo.AssertExpectations(t)
}

func TestCreateCourseValidation(t *testing.T) {
	md := &rendererMock{}
	md.On("Render", "").Return(&entity.Document{}, nil)

	_, err := newTestService(&repoMock{}, md).CreateCourse(context.Background(), &entity.Course{Name: "  "})
	require.ErrorIs(t, err, common.ErrBadRequest)
}

func TestCreateSectionAppends(t *testing.T) {
	ctx := context.Background()
	repo := &repoMock{}
	repo.On("CountSections", ctx, "course").Return(3, nil)
	repo.On("CreateSection", ctx, "course", &entity.Section{Name: "Extras", Order: 3}).Return("s4", nil)

	id, err := newTestService(repo, &rendererMock{}).CreateSection(ctx, "course", " Extras ")
	require.NoError(t, err)
	require.Equal(t, "s4", id)

	_, err = newTestService(repo, &rendererMock{}).CreateSection(ctx, "course", "")
	require.ErrorIs(t, err, common.ErrBadRequest)
}

func TestMoveSection(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		section  string
		up       bool
		expected map[string]int
		err      error
	}{
		{
			name:     "move down",
			section:  "a",
			expected: map[string]int{"a": 1, "b": 0},
		},
		{
			name:     "move up",
			section:  "c",
			up:       true,
			expected: map[string]int{"c": 1, "b": 2},
		},
		{
			name:    "first up is a no-op",
			section: "a",
			up:      true,
		},
		{
			name:    "last down is a no-op",
			section: "c",
		},
		{
			name:    "unknown section",
			section: "x",
			err:     common.ErrSectionNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &repoMock{}
			repo.On("ListSections", ctx, "course").Return([]*entity.Section{
				{ID: "a", Order: 0}, {ID: "b", Order: 1}, {ID: "c", Order: 2},
			}, nil)

			got := make(map[string]int)
			repo.On("UpdateSection", ctx, mock.Anything).Run(func(args mock.Arguments) {
				s := args.Get(1).(*entity.Section)
				got[s.ID] = s.Order
			}).Return(nil)

			err := newTestService(repo, &rendererMock{}).MoveSection(ctx, "course", tc.section, tc.up)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			if tc.expected == nil {
				repo.AssertNotCalled(t, "UpdateSection", mock.Anything, mock.Anything)

				return
			}
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestCreateContent(t *testing.T) {
	ctx := context.Background()
	repo := &repoMock{}
	repo.On("ListSections", ctx, "course").Return([]*entity.Section{
		{ID: "s1", Contents: []*entity.Content{{ID: "x"}, {ID: "y"}}},
	}, nil)
	repo.On("CreateContent", ctx, "course", "s1", mock.MatchedBy(func(c *entity.Content) bool {
		return c.Order == 2
	})).Return("z", nil)

	srv := newTestService(repo, &rendererMock{})

	id, err := srv.CreateContent(ctx, "course", "s1", &entity.Content{Name: "Intro", Type: entity.ContentTypeVideo})
	require.NoError(t, err)
	require.Equal(t, "z", id)

	_, err = srv.CreateContent(ctx, "course", "s1", &entity.Content{Name: "Intro", Type: "audio"})
	require.ErrorIs(t, err, common.ErrBadRequest)
}
