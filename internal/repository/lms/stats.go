package lms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
	"github.com/redis/go-redis/v9"
)

// Stats counts the records shown on the dashboard. Students who signed up
// after since are counted as recent.
func (r *lmsRepository) Stats(ctx context.Context, since time.Time) (*entity.Stats, error) {
	log := r.log.With(slog.String("op", "Stats"))

	courseIDs, err := r.cl.HKeys(ctx, KeyCourses).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get courses: %w", err)
	}

	stats := &entity.Stats{Courses: len(courseIDs)}

	pipe := r.cl.Pipeline()
	sectionCmds := make([]*redis.StringSliceCmd, len(courseIDs))
	for i, id := range courseIDs {
		sectionCmds[i] = pipe.HKeys(ctx, getKey(KeySections, id))
	}
	if len(courseIDs) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("cannot get sections: %w", err)
		}
	}

	var sectionIDs []string
	for _, cmd := range sectionCmds {
		sectionIDs = append(sectionIDs, cmd.Val()...)
	}
	stats.Sections = len(sectionIDs)

	for _, sectionID := range sectionIDs {
		contents, err := getAllJSON[entity.Content](ctx, r.cl, getKey(KeyContents, sectionID))
		if err != nil {
			return nil, err
		}

		for _, c := range contents {
			switch c.Type {
			case entity.ContentTypeVideo:
				stats.Videos++
			case entity.ContentTypePDF:
				stats.PDFs++
			}
		}
	}

	students, err := getAllJSON[entity.Student](ctx, r.cl, KeyStudents)
	if err != nil {
		return nil, err
	}
	stats.Students = len(students)
	for _, s := range students {
		if s.CreatedAt.After(since) {
			stats.RecentSignups++
		}
	}

	if stats.Enrollments, err = r.CountEnrollments(ctx); err != nil {
		return nil, err
	}

	active, err := r.ListAnnouncements(ctx, true)
	if err != nil {
		return nil, err
	}
	stats.ActiveAnnouncements = len(active)

	log.Debug("Stats collected", slog.Int("courses", stats.Courses), slog.Int("sections", stats.Sections))

	return stats, nil
}

// PopularCourses returns up to limit courses with the most enrollments.
func (r *lmsRepository) PopularCourses(ctx context.Context, limit int) ([]*entity.PopularCourse, error) {
	counters, err := r.cl.HGetAll(ctx, KeyEnrollCounter).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get enrollment counters: %w", err)
	}

	type counter struct {
		id    string
		count int
	}

	list := make([]counter, 0, len(counters))
	for id, val := range counters {
		n, err := strconv.Atoi(val)
		if err != nil {
			r.log.Error("Cannot convert counter to int", slog.String("course_id", id), slog.Any("error", err))

			continue
		}

		if n > 0 {
			list = append(list, counter{id, n})
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}

		return list[i].id < list[j].id
	})

	var res []*entity.PopularCourse
	for _, c := range list {
		if limit > 0 && len(res) >= limit {
			break
		}

		course, err := r.GetCourse(ctx, c.id)
		if err != nil {
			if errors.Is(err, common.ErrCourseNotFound) {
				continue
			}

			return nil, err
		}

		res = append(res, &entity.PopularCourse{Course: course, EnrollmentCount: c.count})
	}

	return res, nil
}
