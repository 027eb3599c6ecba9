package lms

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/redis/go-redis/v9"
)

func (r *lmsRepository) CreateCourse(ctx context.Context, course *entity.Course) (string, error) {
	now := time.Now()
	course.ID = uuid.NewString()
	course.CreatedAt = now
	course.UpdatedAt = now

	if err := setJSON(ctx, r.cl, KeyCourses, course.ID, course); err != nil {
		return "", fmt.Errorf("cannot create course: %w", err)
	}

	return course.ID, nil
}

func (r *lmsRepository) GetCourse(ctx context.Context, id string) (*entity.Course, error) {
	return getJSON[entity.Course](ctx, r.cl, KeyCourses, id, common.ErrCourseNotFound)
}

// ListCourses returns the courses, newest first.
func (r *lmsRepository) ListCourses(ctx context.Context) ([]*entity.Course, error) {
	courses, err := getAllJSON[entity.Course](ctx, r.cl, KeyCourses)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].CreatedAt.After(courses[j].CreatedAt)
	})

	return courses, nil
}

func (r *lmsRepository) UpdateCourse(ctx context.Context, course *entity.Course) error {
	old, err := r.GetCourse(ctx, course.ID)
	if err != nil {
		return err
	}

	course.CreatedAt = old.CreatedAt
	course.UpdatedAt = time.Now()

	if err := setJSON(ctx, r.cl, KeyCourses, course.ID, course); err != nil {
		return fmt.Errorf("cannot update course %s: %w", course.ID, err)
	}

	return nil
}

// DeleteCourse removes the course with its sections, contents and enrollments.
func (r *lmsRepository) DeleteCourse(ctx context.Context, id string) error {
	if err := mustExist(ctx, r.cl, KeyCourses, id, common.ErrCourseNotFound); err != nil {
		return err
	}

	sectionIDs, err := r.cl.HKeys(ctx, getKey(KeySections, id)).Result()
	if err != nil {
		return fmt.Errorf("cannot get course %s sections: %w", id, err)
	}

	enrollments, err := getAllJSON[entity.Enrollment](ctx, r.cl, KeyEnrollments)
	if err != nil {
		return err
	}

	pipe := r.cl.TxPipeline()
	for _, sectionID := range sectionIDs {
		pipe.Del(ctx, getKey(KeyContents, sectionID))
	}
	pipe.Del(ctx, getKey(KeySections, id))
	for _, e := range enrollments {
		if e.CourseID == id {
			pipe.HDel(ctx, KeyEnrollments, e.ID)
		}
	}
	pipe.HDel(ctx, KeyEnrollCounter, id)
	pipe.HDel(ctx, KeyCourses, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cannot delete course %s: %w", id, err)
	}

	r.log.Info("Course deleted", slog.String("id", id), slog.Int("sections", len(sectionIDs)))

	return nil
}

func (r *lmsRepository) CreateSection(ctx context.Context, courseID string, section *entity.Section) (string, error) {
	if err := mustExist(ctx, r.cl, KeyCourses, courseID, common.ErrCourseNotFound); err != nil {
		return "", err
	}

	section.ID = uuid.NewString()
	section.CourseID = courseID
	section.Contents = nil

	if err := setJSON(ctx, r.cl, getKey(KeySections, courseID), section.ID, section); err != nil {
		return "", fmt.Errorf("cannot create section: %w", err)
	}

	return section.ID, nil
}

func (r *lmsRepository) GetSection(ctx context.Context, courseID, sectionID string) (*entity.Section, error) {
	return getJSON[entity.Section](ctx, r.cl, getKey(KeySections, courseID), sectionID, common.ErrSectionNotFound)
}

// ListSections returns the course sections ordered by Order, each with its ordered contents.
func (r *lmsRepository) ListSections(ctx context.Context, courseID string) ([]*entity.Section, error) {
	sections, err := getAllJSON[entity.Section](ctx, r.cl, getKey(KeySections, courseID))
	if err != nil {
		return nil, err
	}

	if len(sections) == 0 {
		return sections, nil
	}

	pipe := r.cl.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(sections))
	for i, s := range sections {
		cmds[i] = pipe.HGetAll(ctx, getKey(KeyContents, s.ID))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("cannot get course %s contents: %w", courseID, err)
	}

	for i, s := range sections {
		contents, err := decodeAll[entity.Content](getKey(KeyContents, s.ID), cmds[i].Val())
		if err != nil {
			return nil, err
		}
		sortContents(contents)
		s.Contents = contents
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	return sections, nil
}

func (r *lmsRepository) CountSections(ctx context.Context, courseID string) (int, error) {
	n, err := r.cl.HLen(ctx, getKey(KeySections, courseID)).Result()
	if err != nil {
		return 0, fmt.Errorf("cannot count course %s sections: %w", courseID, err)
	}

	return int(n), nil
}

func (r *lmsRepository) UpdateSection(ctx context.Context, section *entity.Section) error {
	key := getKey(KeySections, section.CourseID)
	if err := mustExist(ctx, r.cl, key, section.ID, common.ErrSectionNotFound); err != nil {
		return err
	}

	section.Contents = nil
	if err := setJSON(ctx, r.cl, key, section.ID, section); err != nil {
		return fmt.Errorf("cannot update section %s: %w", section.ID, err)
	}

	return nil
}

func (r *lmsRepository) DeleteSection(ctx context.Context, courseID, sectionID string) error {
	key := getKey(KeySections, courseID)
	if err := mustExist(ctx, r.cl, key, sectionID, common.ErrSectionNotFound); err != nil {
		return err
	}

	pipe := r.cl.TxPipeline()
	pipe.Del(ctx, getKey(KeyContents, sectionID))
	pipe.HDel(ctx, key, sectionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cannot delete section %s: %w", sectionID, err)
	}

	return nil
}

func (r *lmsRepository) CreateContent(ctx context.Context, courseID, sectionID string, content *entity.Content) (string, error) {
	if err := mustExist(ctx, r.cl, getKey(KeySections, courseID), sectionID, common.ErrSectionNotFound); err != nil {
		return "", err
	}

	content.ID = uuid.NewString()
	content.SectionID = sectionID

	if err := setJSON(ctx, r.cl, getKey(KeyContents, sectionID), content.ID, content); err != nil {
		return "", fmt.Errorf("cannot create content: %w", err)
	}

	return content.ID, nil
}

func (r *lmsRepository) GetContent(ctx context.Context, sectionID, contentID string) (*entity.Content, error) {
	return getJSON[entity.Content](ctx, r.cl, getKey(KeyContents, sectionID), contentID, common.ErrContentNotFound)
}

func (r *lmsRepository) UpdateContent(ctx context.Context, content *entity.Content) error {
	key := getKey(KeyContents, content.SectionID)
	if err := mustExist(ctx, r.cl, key, content.ID, common.ErrContentNotFound); err != nil {
		return err
	}

	if err := setJSON(ctx, r.cl, key, content.ID, content); err != nil {
		return fmt.Errorf("cannot update content %s: %w", content.ID, err)
	}

	return nil
}

func (r *lmsRepository) DeleteContent(ctx context.Context, sectionID, contentID string) error {
	n, err := r.cl.HDel(ctx, getKey(KeyContents, sectionID), contentID).Result()
	if err != nil {
		return fmt.Errorf("cannot delete content %s: %w", contentID, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", common.ErrContentNotFound, contentID)
	}

	return nil
}

func (r *lmsRepository) CreateCategory(ctx context.Context, category *entity.Category) (string, error) {
	category.ID = uuid.NewString()
	category.CreatedAt = time.Now()

	if err := setJSON(ctx, r.cl, KeyCategories, category.ID, category); err != nil {
		return "", fmt.Errorf("cannot create category: %w", err)
	}

	return category.ID, nil
}

// ListCategories returns the categories ordered by Order, then by name.
func (r *lmsRepository) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := getAllJSON[entity.Category](ctx, r.cl, KeyCategories)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Order != categories[j].Order {
			return categories[i].Order < categories[j].Order
		}

		return categories[i].Name < categories[j].Name
	})

	return categories, nil
}

func (r *lmsRepository) UpdateCategory(ctx context.Context, category *entity.Category) error {
	old, err := getJSON[entity.Category](ctx, r.cl, KeyCategories, category.ID, common.ErrCategoryNotFound)
	if err != nil {
		return err
	}

	category.CreatedAt = old.CreatedAt
	if err := setJSON(ctx, r.cl, KeyCategories, category.ID, category); err != nil {
		return fmt.Errorf("cannot update category %s: %w", category.ID, err)
	}

	return nil
}

func (r *lmsRepository) DeleteCategory(ctx context.Context, id string) error {
	n, err := r.cl.HDel(ctx, KeyCategories, id).Result()
	if err != nil {
		return fmt.Errorf("cannot delete category %s: %w", id, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", common.ErrCategoryNotFound, id)
	}

	return nil
}

func sortContents(contents []*entity.Content) {
	sort.SliceStable(contents, func(i, j int) bool {
		return contents[i].Order < contents[j].Order
	})
}
