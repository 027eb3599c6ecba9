package lms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/jgivc/eduvance/internal/util"
)

// UpsertStudent stores the profile, keeping the original sign-up time.
func (r *lmsRepository) UpsertStudent(ctx context.Context, student *entity.Student) error {
	old, err := getJSON[entity.Student](ctx, r.cl, KeyStudents, student.ID, common.ErrStudentNotFound)
	switch {
	case err == nil:
		student.CreatedAt = old.CreatedAt
	case errors.Is(err, common.ErrStudentNotFound):
		if student.CreatedAt.IsZero() {
			student.CreatedAt = time.Now()
		}
	default:
		return err
	}

	if err := setJSON(ctx, r.cl, KeyStudents, student.ID, student); err != nil {
		return fmt.Errorf("cannot save student %s: %w", student.ID, err)
	}

	return nil
}

func (r *lmsRepository) GetStudent(ctx context.Context, id string) (*entity.Student, error) {
	return getJSON[entity.Student](ctx, r.cl, KeyStudents, id, common.ErrStudentNotFound)
}

// ListStudents returns the students, most recent sign-ups first.
func (r *lmsRepository) ListStudents(ctx context.Context) ([]*entity.Student, error) {
	students, err := getAllJSON[entity.Student](ctx, r.cl, KeyStudents)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(students, func(i, j int) bool {
		return students[i].CreatedAt.After(students[j].CreatedAt)
	})

	return students, nil
}

func (r *lmsRepository) UpdateStudent(ctx context.Context, student *entity.Student) error {
	if err := mustExist(ctx, r.cl, KeyStudents, student.ID, common.ErrStudentNotFound); err != nil {
		return err
	}

	return r.UpsertStudent(ctx, student)
}

// DeleteStudent removes the student with enrollments, progress and notes.
func (r *lmsRepository) DeleteStudent(ctx context.Context, id string) error {
	if err := mustExist(ctx, r.cl, KeyStudents, id, common.ErrStudentNotFound); err != nil {
		return err
	}

	enrollments, err := r.ListEnrollments(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.cl.TxPipeline()
	for _, e := range enrollments {
		pipe.HDel(ctx, KeyEnrollments, e.ID)
		pipe.HIncrBy(ctx, KeyEnrollCounter, e.CourseID, -1)
	}
	pipe.Del(ctx, getKey(KeyProgress, id))
	pipe.Del(ctx, getKey(KeyNotes, id))
	pipe.HDel(ctx, KeyStudents, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cannot delete student %s: %w", id, err)
	}

	return nil
}

func (r *lmsRepository) CountStudents(ctx context.Context) (int, error) {
	n, err := r.cl.HLen(ctx, KeyStudents).Result()
	if err != nil {
		return 0, fmt.Errorf("cannot count students: %w", err)
	}

	return int(n), nil
}

// Enroll is idempotent: enrolling twice keeps the first enrollment.
func (r *lmsRepository) Enroll(ctx context.Context, userID, courseID string) (*entity.Enrollment, error) {
	if err := mustExist(ctx, r.cl, KeyCourses, courseID, common.ErrCourseNotFound); err != nil {
		return nil, err
	}

	enrollment := &entity.Enrollment{
		ID:         getID(userID, courseID),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}

	data, err := marshal(enrollment)
	if err != nil {
		return nil, err
	}

	created, err := r.cl.HSetNX(ctx, KeyEnrollments, enrollment.ID, data).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot enroll %s to %s: %w", userID, courseID, err)
	}

	if !created {
		return getJSON[entity.Enrollment](ctx, r.cl, KeyEnrollments, enrollment.ID, common.ErrCourseNotFound)
	}

	if err := r.cl.HIncrBy(ctx, KeyEnrollCounter, courseID, 1).Err(); err != nil {
		return nil, fmt.Errorf("cannot increment course %s enrollments: %w", courseID, err)
	}

	return enrollment, nil
}

func (r *lmsRepository) Unenroll(ctx context.Context, userID, courseID string) error {
	n, err := r.cl.HDel(ctx, KeyEnrollments, getID(userID, courseID)).Result()
	if err != nil {
		return fmt.Errorf("cannot unenroll %s from %s: %w", userID, courseID, err)
	}

	if n == 0 {
		return nil
	}

	if err := r.cl.HIncrBy(ctx, KeyEnrollCounter, courseID, -1).Err(); err != nil {
		return fmt.Errorf("cannot decrement course %s enrollments: %w", courseID, err)
	}

	return nil
}

func (r *lmsRepository) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	ok, err := r.cl.HExists(ctx, KeyEnrollments, getID(userID, courseID)).Result()
	if err != nil {
		return false, fmt.Errorf("cannot check enrollment: %w", err)
	}

	return ok, nil
}

// ListEnrollments returns the enrollments of one student, newest first.
func (r *lmsRepository) ListEnrollments(ctx context.Context, userID string) ([]*entity.Enrollment, error) {
	all, err := getAllJSON[entity.Enrollment](ctx, r.cl, KeyEnrollments)
	if err != nil {
		return nil, err
	}

	var res []*entity.Enrollment
	for _, e := range all {
		if e.UserID == userID {
			res = append(res, e)
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].EnrolledAt.After(res[j].EnrolledAt)
	})

	return res, nil
}

func (r *lmsRepository) CountEnrollments(ctx context.Context) (int, error) {
	n, err := r.cl.HLen(ctx, KeyEnrollments).Result()
	if err != nil {
		return 0, fmt.Errorf("cannot count enrollments: %w", err)
	}

	return int(n), nil
}

// SaveProgress merges p into the stored progress of the same content.
// Completed never goes back to false.
func (r *lmsRepository) SaveProgress(ctx context.Context, p *entity.Progress) (*entity.Progress, error) {
	key := getKey(KeyProgress, p.UserID)
	field := getID(p.CourseID, p.ContentID)

	merged := *p
	old, err := getJSON[entity.Progress](ctx, r.cl, key, field, common.ErrContentNotFound)
	switch {
	case err == nil:
		merged.Completed = old.Completed || p.Completed
		if merged.SectionID == "" {
			merged.SectionID = old.SectionID
		}
		if merged.Duration == 0 {
			merged.Duration = old.Duration
		}
	case !errors.Is(err, common.ErrContentNotFound):
		return nil, err
	}
	merged.UpdatedAt = time.Now()

	if err := setJSON(ctx, r.cl, key, field, &merged); err != nil {
		return nil, fmt.Errorf("cannot save progress: %w", err)
	}

	return &merged, nil
}

func (r *lmsRepository) CourseProgress(ctx context.Context, userID, courseID string) ([]*entity.Progress, error) {
	all, err := getAllJSON[entity.Progress](ctx, r.cl, getKey(KeyProgress, userID))
	if err != nil {
		return nil, err
	}

	var res []*entity.Progress
	for _, p := range all {
		if p.CourseID == courseID {
			res = append(res, p)
		}
	}

	return res, nil
}

// RecentProgress returns the last watched items of a student, newest first.
func (r *lmsRepository) RecentProgress(ctx context.Context, userID string, limit int) ([]*entity.Progress, error) {
	all, err := getAllJSON[entity.Progress](ctx, r.cl, getKey(KeyProgress, userID))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	return all, nil
}

// SaveNote keeps one note per student and content.
func (r *lmsRepository) SaveNote(ctx context.Context, note *entity.Note) (*entity.Note, error) {
	key := getKey(KeyNotes, note.UserID)
	note.ID = util.GetIDFromParts(note.UserID, note.CourseID, note.ContentID)
	note.UpdatedAt = time.Now()

	old, err := getJSON[entity.Note](ctx, r.cl, key, note.ID, common.ErrNoteNotFound)
	switch {
	case err == nil:
		note.CreatedAt = old.CreatedAt
	case errors.Is(err, common.ErrNoteNotFound):
		note.CreatedAt = note.UpdatedAt
	default:
		return nil, err
	}

	if err := setJSON(ctx, r.cl, key, note.ID, note); err != nil {
		return nil, fmt.Errorf("cannot save note: %w", err)
	}

	return note, nil
}

func (r *lmsRepository) GetNote(ctx context.Context, userID, courseID, contentID string) (*entity.Note, error) {
	id := util.GetIDFromParts(userID, courseID, contentID)

	return getJSON[entity.Note](ctx, r.cl, getKey(KeyNotes, userID), id, common.ErrNoteNotFound)
}

// CourseNotes returns the notes of a student in one course, latest edit first.
func (r *lmsRepository) CourseNotes(ctx context.Context, userID, courseID string) ([]*entity.Note, error) {
	all, err := getAllJSON[entity.Note](ctx, r.cl, getKey(KeyNotes, userID))
	if err != nil {
		return nil, err
	}

	var res []*entity.Note
	for _, n := range all {
		if n.CourseID == courseID {
			res = append(res, n)
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].UpdatedAt.After(res[j].UpdatedAt)
	})

	return res, nil
}

func (r *lmsRepository) DeleteNote(ctx context.Context, userID, noteID string) error {
	n, err := r.cl.HDel(ctx, getKey(KeyNotes, userID), noteID).Result()
	if err != nil {
		return fmt.Errorf("cannot delete note %s: %w", noteID, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", common.ErrNoteNotFound, noteID)
	}

	return nil
}
