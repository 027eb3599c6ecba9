package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
)

const (
	serviceName = "student"
)

type StudentRepository interface {
	UpsertStudent(ctx context.Context, student *entity.Student) error
	GetStudent(ctx context.Context, id string) (*entity.Student, error)
	ListStudents(ctx context.Context) ([]*entity.Student, error)
	UpdateStudent(ctx context.Context, student *entity.Student) error
	DeleteStudent(ctx context.Context, id string) error

	GetCourse(ctx context.Context, id string) (*entity.Course, error)
	ListSections(ctx context.Context, courseID string) ([]*entity.Section, error)

	Enroll(ctx context.Context, userID, courseID string) (*entity.Enrollment, error)
	Unenroll(ctx context.Context, userID, courseID string) error
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	ListEnrollments(ctx context.Context, userID string) ([]*entity.Enrollment, error)

	SaveProgress(ctx context.Context, p *entity.Progress) (*entity.Progress, error)
	CourseProgress(ctx context.Context, userID, courseID string) ([]*entity.Progress, error)
	RecentProgress(ctx context.Context, userID string, limit int) ([]*entity.Progress, error)

	SaveNote(ctx context.Context, note *entity.Note) (*entity.Note, error)
	GetNote(ctx context.Context, userID, courseID, contentID string) (*entity.Note, error)
	CourseNotes(ctx context.Context, userID, courseID string) ([]*entity.Note, error)
	DeleteNote(ctx context.Context, userID, noteID string) error
}

type studentService struct {
	repo        StudentRepository
	recentLimit int
	log         *slog.Logger
}

func NewStudentService(repo StudentRepository, recentLimit int, log *slog.Logger) *studentService {
	return &studentService{
		repo:        repo,
		recentLimit: recentLimit,
		log:         log.With(slog.String("service", serviceName)),
	}
}

// SaveProfile creates or updates the profile of the signed-in student. The
// disabled flag is managed by administrators only and is never changed here.
func (s *studentService) SaveProfile(ctx context.Context, student *entity.Student) (*entity.Student, error) {
	if student.ID == "" {
		return nil, fmt.Errorf("%w: student id is empty", common.ErrBadRequest)
	}
	student.Name = strings.TrimSpace(student.Name)
	student.Email = strings.TrimSpace(student.Email)

	old, err := s.repo.GetStudent(ctx, student.ID)
	switch {
	case err == nil:
		student.Disabled = old.Disabled
	case errors.Is(err, common.ErrStudentNotFound):
		student.Disabled = false
		s.log.Info("New student", slog.String("id", student.ID))
	default:
		return nil, err
	}

	if err := s.repo.UpsertStudent(ctx, student); err != nil {
		return nil, fmt.Errorf("cannot save student %s: %w", student.ID, err)
	}

	return student, nil
}

func (s *studentService) GetStudent(ctx context.Context, id string) (*entity.Student, error) {
	return s.repo.GetStudent(ctx, id)
}

func (s *studentService) ListStudents(ctx context.Context) ([]*entity.Student, error) {
	return s.repo.ListStudents(ctx)
}

func (s *studentService) SetDisabled(ctx context.Context, id string, disabled bool) error {
	student, err := s.repo.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	student.Disabled = disabled

	if err := s.repo.UpdateStudent(ctx, student); err != nil {
		return fmt.Errorf("cannot update student %s: %w", id, err)
	}

	s.log.Info("Student updated", slog.String("id", id), slog.Bool("disabled", disabled))

	return nil
}

func (s *studentService) DeleteStudent(ctx context.Context, id string) error {
	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		s.log.Error("Cannot delete student", slog.String("id", id), slog.Any("error", err))

		return fmt.Errorf("cannot delete student %s: %w", id, err)
	}

	return nil
}

func (s *studentService) Enroll(ctx context.Context, userID, courseID string) (*entity.Enrollment, error) {
	if err := s.checkActive(ctx, userID); err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Enroll(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("cannot enroll %s to %s: %w", userID, courseID, err)
	}

	return enrollment, nil
}

func (s *studentService) Unenroll(ctx context.Context, userID, courseID string) error {
	return s.repo.Unenroll(ctx, userID, courseID)
}

// MyCourses returns the courses a student is enrolled in, most recent enrollment first.
func (s *studentService) MyCourses(ctx context.Context, userID string) ([]*entity.Course, error) {
	enrollments, err := s.repo.ListEnrollments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cannot list %s enrollments: %w", userID, err)
	}

	courses := make([]*entity.Course, 0, len(enrollments))
	for _, e := range enrollments {
		course, err := s.repo.GetCourse(ctx, e.CourseID)
		if err != nil {
			if errors.Is(err, common.ErrCourseNotFound) {
				s.log.Warn("Enrollment of a missing course", slog.String("id", e.ID))

				continue
			}

			return nil, err
		}
		courses = append(courses, course)
	}

	return courses, nil
}

func (s *studentService) SaveProgress(ctx context.Context, p *entity.Progress) (*entity.Progress, error) {
	if p.UserID == "" || p.CourseID == "" || p.ContentID == "" {
		return nil, fmt.Errorf("%w: progress needs user, course and content", common.ErrBadRequest)
	}

	if err := s.checkEnrolled(ctx, p.UserID, p.CourseID); err != nil {
		return nil, err
	}

	if p.Duration > 0 && p.Position >= p.Duration {
		p.Completed = true
	}

	return s.repo.SaveProgress(ctx, p)
}

// CourseProgress counts completed content items against every item of the course.
func (s *studentService) CourseProgress(ctx context.Context, userID, courseID string) (*entity.CourseProgress, error) {
	sections, err := s.repo.ListSections(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("cannot list course %s sections: %w", courseID, err)
	}

	items, err := s.repo.CourseProgress(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("cannot get course %s progress: %w", courseID, err)
	}

	res := &entity.CourseProgress{CourseID: courseID, Items: items}

	known := make(map[string]struct{})
	for _, sec := range sections {
		for _, c := range sec.Contents {
			known[c.ID] = struct{}{}
		}
	}
	res.Total = len(known)

	for _, p := range items {
		if _, ok := known[p.ContentID]; ok && p.Completed {
			res.Completed++
		}
	}

	if res.Total > 0 {
		res.Percent = res.Completed * 100 / res.Total
	}

	return res, nil
}

func (s *studentService) RecentlyWatched(ctx context.Context, userID string) ([]*entity.Progress, error) {
	return s.repo.RecentProgress(ctx, userID, s.recentLimit)
}

// SaveNote stores the note of a content item. An empty text removes the note.
func (s *studentService) SaveNote(ctx context.Context, note *entity.Note) (*entity.Note, error) {
	if note.UserID == "" || note.CourseID == "" || note.ContentID == "" {
		return nil, fmt.Errorf("%w: note needs user, course and content", common.ErrBadRequest)
	}

	if err := s.checkEnrolled(ctx, note.UserID, note.CourseID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(note.Text) == "" {
		old, err := s.repo.GetNote(ctx, note.UserID, note.CourseID, note.ContentID)
		if err != nil {
			if errors.Is(err, common.ErrNoteNotFound) {
				return nil, nil
			}

			return nil, err
		}

		return nil, s.repo.DeleteNote(ctx, note.UserID, old.ID)
	}

	return s.repo.SaveNote(ctx, note)
}

func (s *studentService) GetNote(ctx context.Context, userID, courseID, contentID string) (*entity.Note, error) {
	return s.repo.GetNote(ctx, userID, courseID, contentID)
}

func (s *studentService) CourseNotes(ctx context.Context, userID, courseID string) ([]*entity.Note, error) {
	return s.repo.CourseNotes(ctx, userID, courseID)
}

func (s *studentService) DeleteNote(ctx context.Context, userID, noteID string) error {
	return s.repo.DeleteNote(ctx, userID, noteID)
}

func (s *studentService) checkActive(ctx context.Context, userID string) error {
	student, err := s.repo.GetStudent(ctx, userID)
	if err != nil {
		return err
	}

	if student.Disabled {
		return fmt.Errorf("%w: %s", common.ErrStudentDisabled, userID)
	}

	return nil
}

func (s *studentService) checkEnrolled(ctx context.Context, userID, courseID string) error {
	ok, err := s.repo.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %s", common.ErrNotEnrolled, courseID)
	}

	return nil
}
