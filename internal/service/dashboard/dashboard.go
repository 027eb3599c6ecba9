package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jgivc/eduvance/internal/entity"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	serviceName = "dashboard"

	recentSignupPeriod = 7 * 24 * time.Hour
)

type StatsRepository interface {
	Stats(ctx context.Context, since time.Time) (*entity.Stats, error)
	PopularCourses(ctx context.Context, limit int) ([]*entity.PopularCourse, error)
}

type dashboardService struct {
	repo         StatsRepository
	fs           afero.Fs
	popularLimit int
	now          func() time.Time
	log          *slog.Logger
}

func NewDashboardService(repo StatsRepository, fs afero.Fs, popularLimit int, log *slog.Logger) *dashboardService {
	return &dashboardService{
		repo:         repo,
		fs:           fs,
		popularLimit: popularLimit,
		now:          time.Now,
		log:          log.With(slog.String("service", serviceName)),
	}
}

func (d *dashboardService) Stats(ctx context.Context) (*entity.Stats, error) {
	stats, err := d.repo.Stats(ctx, d.now().Add(-recentSignupPeriod))
	if err != nil {
		d.log.Error("Cannot get stats", slog.Any("error", err))

		return nil, fmt.Errorf("cannot get stats: %w", err)
	}

	return stats, nil
}

func (d *dashboardService) PopularCourses(ctx context.Context) ([]*entity.PopularCourse, error) {
	courses, err := d.repo.PopularCourses(ctx, d.popularLimit)
	if err != nil {
		d.log.Error("Cannot get popular courses", slog.Any("error", err))

		return nil, fmt.Errorf("cannot get popular courses: %w", err)
	}

	return courses, nil
}

type statsDump struct {
	GeneratedAt time.Time     `yaml:"generated_at"`
	Stats       *entity.Stats `yaml:"stats"`
	Popular     []popularDump `yaml:"popular"`
}

type popularDump struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Enrollments int    `yaml:"enrollments"`
}

// DumpStats writes the dashboard counters to fileName as yaml.
func (d *dashboardService) DumpStats(ctx context.Context, fileName string) error {
	stats, err := d.Stats(ctx)
	if err != nil {
		return err
	}

	popular, err := d.PopularCourses(ctx)
	if err != nil {
		return err
	}

	dump := statsDump{GeneratedAt: d.now().UTC(), Stats: stats}
	for _, p := range popular {
		dump.Popular = append(dump.Popular, popularDump{ID: p.ID, Name: p.Name, Enrollments: p.EnrollmentCount})
	}

	data, err := yaml.Marshal(&dump)
	if err != nil {
		return fmt.Errorf("cannot marshal stats: %w", err)
	}

	if err := afero.WriteFile(d.fs, fileName, data, 0o644); err != nil {
		d.log.Error("Cannot write stats dump", slog.String("file", fileName), slog.Any("error", err))

		return fmt.Errorf("cannot write stats dump: %w", err)
	}

	d.log.Info("Stats dumped", slog.String("file", fileName))

	return nil
}
