package course

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
)

const (
	serviceName = "course"
)

type CourseRepository interface {
	CreateCourse(ctx context.Context, course *entity.Course) (string, error)
	GetCourse(ctx context.Context, id string) (*entity.Course, error)
	ListCourses(ctx context.Context) ([]*entity.Course, error)
	UpdateCourse(ctx context.Context, course *entity.Course) error
	DeleteCourse(ctx context.Context, id string) error

	CreateSection(ctx context.Context, courseID string, section *entity.Section) (string, error)
	GetSection(ctx context.Context, courseID, sectionID string) (*entity.Section, error)
	ListSections(ctx context.Context, courseID string) ([]*entity.Section, error)
	CountSections(ctx context.Context, courseID string) (int, error)
	UpdateSection(ctx context.Context, section *entity.Section) error
	DeleteSection(ctx context.Context, courseID, sectionID string) error

	CreateContent(ctx context.Context, courseID, sectionID string, content *entity.Content) (string, error)
	GetContent(ctx context.Context, sectionID, contentID string) (*entity.Content, error)
	UpdateContent(ctx context.Context, content *entity.Content) error
	DeleteContent(ctx context.Context, sectionID, contentID string) error

	CreateCategory(ctx context.Context, category *entity.Category) (string, error)
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	UpdateCategory(ctx context.Context, category *entity.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateAnnouncement(ctx context.Context, a *entity.Announcement) (string, error)
	GetAnnouncement(ctx context.Context, id string) (*entity.Announcement, error)
	ListAnnouncements(ctx context.Context, activeOnly bool) ([]*entity.Announcement, error)
	UpdateAnnouncement(ctx context.Context, a *entity.Announcement) error
	ToggleAnnouncement(ctx context.Context, id string) (bool, error)
	DeleteAnnouncement(ctx context.Context, id string) error
}

type Renderer interface {
	Render(src []byte) (*entity.Document, error)
}

type courseService struct {
	repo CourseRepository
	md   Renderer
	log  *slog.Logger
}

func NewCourseService(repo CourseRepository, md Renderer, log *slog.Logger) *courseService {
	return &courseService{
		repo: repo,
		md:   md,
		log:  log.With(slog.String("service", serviceName)),
	}
}

// CreateCourse renders the description. Front matter of the description
// fills the name, thumbnail and category when they are not given.
func (s *courseService) CreateCourse(ctx context.Context, course *entity.Course) (string, error) {
	if err := s.prepareCourse(ctx, course); err != nil {
		return "", err
	}

	id, err := s.repo.CreateCourse(ctx, course)
	if err != nil {
		s.log.Error("Cannot create course", slog.String("name", course.Name), slog.Any("error", err))

		return "", fmt.Errorf("cannot create course: %w", err)
	}

	s.log.Info("Course created", slog.String("id", id), slog.String("name", course.Name))

	return id, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, course *entity.Course) error {
	if err := s.prepareCourse(ctx, course); err != nil {
		return err
	}

	if err := s.repo.UpdateCourse(ctx, course); err != nil {
		return fmt.Errorf("cannot update course %s: %w", course.ID, err)
	}

	return nil
}

func (s *courseService) GetCourse(ctx context.Context, id string) (*entity.CourseDetail, error) {
	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot get course %s: %w", id, err)
	}

	sections, err := s.repo.ListSections(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot get course %s sections: %w", id, err)
	}

	return &entity.CourseDetail{Course: course, Sections: sections}, nil
}

// ListCourses returns every course, or the ones of one category when categoryID is set.
func (s *courseService) ListCourses(ctx context.Context, categoryID string) ([]*entity.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list courses: %w", err)
	}

	if categoryID == "" {
		return courses, nil
	}

	res := make([]*entity.Course, 0, len(courses))
	for _, c := range courses {
		if c.CategoryID == categoryID {
			res = append(res, c)
		}
	}

	return res, nil
}

func (s *courseService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		s.log.Error("Cannot delete course", slog.String("id", id), slog.Any("error", err))

		return fmt.Errorf("cannot delete course %s: %w", id, err)
	}

	return nil
}

// CreateSection appends a section after the existing ones.
func (s *courseService) CreateSection(ctx context.Context, courseID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: section name is empty", common.ErrBadRequest)
	}

	n, err := s.repo.CountSections(ctx, courseID)
	if err != nil {
		return "", err
	}

	id, err := s.repo.CreateSection(ctx, courseID, &entity.Section{Name: name, Order: n})
	if err != nil {
		return "", fmt.Errorf("cannot create section: %w", err)
	}

	return id, nil
}

func (s *courseService) RenameSection(ctx context.Context, courseID, sectionID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: section name is empty", common.ErrBadRequest)
	}

	section, err := s.repo.GetSection(ctx, courseID, sectionID)
	if err != nil {
		return err
	}
	section.Name = name

	return s.repo.UpdateSection(ctx, section)
}

func (s *courseService) DeleteSection(ctx context.Context, courseID, sectionID string) error {
	return s.repo.DeleteSection(ctx, courseID, sectionID)
}

// MoveSection swaps the section with its neighbour. Moving the first section
// up or the last one down does nothing.
func (s *courseService) MoveSection(ctx context.Context, courseID, sectionID string, up bool) error {
	sections, err := s.repo.ListSections(ctx, courseID)
	if err != nil {
		return fmt.Errorf("cannot list course %s sections: %w", courseID, err)
	}

	idx := -1
	for i, sec := range sections {
		if sec.ID == sectionID {
			idx = i

			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", common.ErrSectionNotFound, sectionID)
	}

	other := idx + 1
	if up {
		other = idx - 1
	}
	if other < 0 || other >= len(sections) {
		return nil
	}

	a, b := sections[idx], sections[other]
	a.Order, b.Order = b.Order, a.Order
	if a.Order == b.Order {
		a.Order, b.Order = other, idx
	}

	if err := s.repo.UpdateSection(ctx, a); err != nil {
		return fmt.Errorf("cannot move section %s: %w", a.ID, err)
	}

	if err := s.repo.UpdateSection(ctx, b); err != nil {
		return fmt.Errorf("cannot move section %s: %w", b.ID, err)
	}

	return nil
}

// CreateContent appends a content item to the end of the section.
func (s *courseService) CreateContent(ctx context.Context, courseID, sectionID string, content *entity.Content) (string, error) {
	if err := validateContent(content); err != nil {
		return "", err
	}

	sections, err := s.repo.ListSections(ctx, courseID)
	if err != nil {
		return "", fmt.Errorf("cannot list course %s sections: %w", courseID, err)
	}

	content.Order = 0
	for _, sec := range sections {
		if sec.ID == sectionID {
			content.Order = len(sec.Contents)
		}
	}

	id, err := s.repo.CreateContent(ctx, courseID, sectionID, content)
	if err != nil {
		return "", fmt.Errorf("cannot create content: %w", err)
	}

	return id, nil
}

func (s *courseService) UpdateContent(ctx context.Context, content *entity.Content) error {
	if err := validateContent(content); err != nil {
		return err
	}

	old, err := s.repo.GetContent(ctx, content.SectionID, content.ID)
	if err != nil {
		return err
	}
	content.Order = old.Order

	return s.repo.UpdateContent(ctx, content)
}

func (s *courseService) DeleteContent(ctx context.Context, sectionID, contentID string) error {
	return s.repo.DeleteContent(ctx, sectionID, contentID)
}

func (s *courseService) CreateCategory(ctx context.Context, category *entity.Category) (string, error) {
	if strings.TrimSpace(category.Name) == "" {
		return "", fmt.Errorf("%w: category name is empty", common.ErrBadRequest)
	}

	return s.repo.CreateCategory(ctx, category)
}

func (s *courseService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *courseService) UpdateCategory(ctx context.Context, category *entity.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: category name is empty", common.ErrBadRequest)
	}

	return s.repo.UpdateCategory(ctx, category)
}

func (s *courseService) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *courseService) CreateAnnouncement(ctx context.Context, a *entity.Announcement) (string, error) {
	if err := s.prepareAnnouncement(a); err != nil {
		return "", err
	}

	return s.repo.CreateAnnouncement(ctx, a)
}

func (s *courseService) UpdateAnnouncement(ctx context.Context, a *entity.Announcement) error {
	if err := s.prepareAnnouncement(a); err != nil {
		return err
	}

	return s.repo.UpdateAnnouncement(ctx, a)
}

func (s *courseService) ListAnnouncements(ctx context.Context, activeOnly bool) ([]*entity.Announcement, error) {
	return s.repo.ListAnnouncements(ctx, activeOnly)
}

func (s *courseService) ToggleAnnouncement(ctx context.Context, id string) (bool, error) {
	return s.repo.ToggleAnnouncement(ctx, id)
}

func (s *courseService) DeleteAnnouncement(ctx context.Context, id string) error {
	return s.repo.DeleteAnnouncement(ctx, id)
}

func (s *courseService) prepareCourse(ctx context.Context, course *entity.Course) error {
	doc, err := s.md.Render([]byte(course.Description))
	if err != nil {
		return fmt.Errorf("%w: cannot render description: %v", common.ErrBadRequest, err)
	}
	course.DescriptionHTML = doc.HTML

	if meta := doc.Meta; meta != nil {
		if course.Name == "" {
			course.Name = meta.Title
		}
		if course.Thumbnail == "" {
			course.Thumbnail = meta.Thumbnail
		}
		if course.CategoryID == "" && meta.Category != "" {
			if course.CategoryID, err = s.categoryID(ctx, meta.Category); err != nil {
				return err
			}
		}
	}

	course.Name = strings.TrimSpace(course.Name)
	if course.Name == "" {
		return fmt.Errorf("%w: course name is empty", common.ErrBadRequest)
	}

	return nil
}

// categoryID finds a category by name. An unknown name yields "".
func (s *courseService) categoryID(ctx context.Context, name string) (string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return "", fmt.Errorf("cannot list categories: %w", err)
	}

	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c.ID, nil
		}
	}

	s.log.Warn("Unknown category in course front matter", slog.String("category", name))

	return "", nil
}

func (s *courseService) prepareAnnouncement(a *entity.Announcement) error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: announcement title is empty", common.ErrBadRequest)
	}

	doc, err := s.md.Render([]byte(a.Body))
	if err != nil {
		return fmt.Errorf("%w: cannot render announcement: %v", common.ErrBadRequest, err)
	}
	a.BodyHTML = doc.HTML

	return nil
}

func validateContent(content *entity.Content) error {
	if strings.TrimSpace(content.Name) == "" {
		return fmt.Errorf("%w: content name is empty", common.ErrBadRequest)
	}

	if !content.Type.Valid() {
		return fmt.Errorf("%w: unknown content type %q", common.ErrBadRequest, content.Type)
	}

	return nil
}
