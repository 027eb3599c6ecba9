package lms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	KeyCourses       = "crs"  // HASH. course_id: course json
	KeySections      = "sec"  // HASH. sec:course_id section_id: section json
	KeyContents      = "cnt"  // HASH. cnt:section_id content_id: content json
	KeyCategories    = "cat"  // HASH. category_id: category json
	KeyStudents      = "stu"  // HASH. user_id: student json
	KeyEnrollments   = "enr"  // HASH. user_course: enrollment json
	KeyEnrollCounter = "enc"  // HASH. course_id: enrollment count. HINCRBY enc {course_id} 1
	KeyProgress      = "prg"  // HASH. prg:user_id course_content: progress json
	KeyNotes         = "note" // HASH. note:user_id note_id: note json
	KeyAnnouncements = "ann"  // HASH. announcement_id: announcement json
	KeySettings      = "set"  // HASH. set:name field: value

	KeySeparator = ":"
	IDSeparator  = "_"
)

type lmsRepository struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewLMSRepository(cl *redis.Client, log *slog.Logger) *lmsRepository {
	return &lmsRepository{
		cl:  cl,
		log: log.With(slog.String("item", "LMSRepository")),
	}
}

func (r *lmsRepository) GetSettings(ctx context.Context, name string) (map[string]string, error) {
	settings, err := r.cl.HGetAll(ctx, getKey(KeySettings, name)).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get %s settings: %w", name, err)
	}

	return settings, nil
}

func (r *lmsRepository) SaveSettings(ctx context.Context, name string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	args := make([]any, 0, len(values)*2)
	for field, value := range values {
		args = append(args, field, value)
	}

	if err := r.cl.HSet(ctx, getKey(KeySettings, name), args...).Err(); err != nil {
		return fmt.Errorf("cannot save %s settings: %w", name, err)
	}

	return nil
}

func getJSON[T any](ctx context.Context, cl redis.Cmdable, key, field string, notFound error) (*T, error) {
	str, err := cl.HGet(ctx, key, field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", notFound, field)
		}

		return nil, fmt.Errorf("cannot get %s from %s: %w", field, key, err)
	}

	var v T
	if err := json.Unmarshal([]byte(str), &v); err != nil {
		return nil, fmt.Errorf("cannot unmarshal %s from %s: %w", field, key, err)
	}

	return &v, nil
}

func getAllJSON[T any](ctx context.Context, cl redis.Cmdable, key string) ([]*T, error) {
	values, err := cl.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get %s: %w", key, err)
	}

	return decodeAll[T](key, values)
}

func decodeAll[T any](key string, values map[string]string) ([]*T, error) {
	items := make([]*T, 0, len(values))
	for field, str := range values {
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			return nil, fmt.Errorf("cannot unmarshal %s from %s: %w", field, key, err)
		}
		items = append(items, &v)
	}

	return items, nil
}

func setJSON(ctx context.Context, cl redis.Cmdable, key, field string, v any) error {
	data, err := marshal(v)
	if err != nil {
		return err
	}

	return cl.HSet(ctx, key, field, data).Err()
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("cannot marshal value: %w", err)
	}

	return string(data), nil
}

// mustExist reports notFound when field is absent from the hash key.
func mustExist(ctx context.Context, cl redis.Cmdable, key, field string, notFound error) error {
	ok, err := cl.HExists(ctx, key, field).Result()
	if err != nil {
		return fmt.Errorf("cannot check %s in %s: %w", field, key, err)
	}

	if !ok {
		return fmt.Errorf("%w: %s", notFound, field)
	}

	return nil
}

func getKey(keys ...string) string {
	return strings.Join(keys, KeySeparator)
}

func getID(parts ...string) string {
	return strings.Join(parts, IDSeparator)
}
