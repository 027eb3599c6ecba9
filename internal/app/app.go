package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jgivc/eduvance/internal/adapter/fsadapter"
	"github.com/jgivc/eduvance/internal/adapter/hfadapter"
	"github.com/jgivc/eduvance/internal/adapter/mdadapter"
	"github.com/jgivc/eduvance/internal/config"
	httphandler "github.com/jgivc/eduvance/internal/handler/http"
	"github.com/jgivc/eduvance/internal/repository/lms"
	"github.com/jgivc/eduvance/internal/service/course"
	"github.com/jgivc/eduvance/internal/service/dashboard"
	"github.com/jgivc/eduvance/internal/service/hfimport"
	"github.com/jgivc/eduvance/internal/service/student"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const (
	dumpTimeout     = 5 * time.Second
	shutdownTimeout = 5 * time.Second
	pingTimeout     = 5 * time.Second
)

type App struct {
	cfgPath   string
	cfg       *config.Config
	srv       *http.Server
	rdb       *redis.Client
	dashboard interface {
		DumpStats(ctx context.Context, fileName string) error
	}
	log *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	log, err := newLogger(a.cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	a.log = log

	a.rdb, err = connectRedis(a.cfg.RedisURL)
	if err != nil {
		panic(err)
	}

	repo := lms.NewLMSRepository(a.rdb, log)
	md := mdadapter.NewMDAdapter(hfadapter.RefResolver{BaseURL: a.cfg.HuggingFace.BaseURL}, log)

	dSrv := dashboard.NewDashboardService(repo, afero.NewOsFs(), a.cfg.Portal.PopularLimit, log)
	a.dashboard = dSrv

	router := httphandler.NewRouter(&httphandler.Services{
		Courses:   course.NewCourseService(repo, md, log),
		Dashboard: dSrv,
		Import:    newImportService(a.cfg, repo, log),
		Students:  student.NewStudentService(repo, a.cfg.Portal.RecentLimit, log),
	}, a.cfg.AdminToken, log)

	// Local course material is served under the prefix the local source resolves to,
	// unless that prefix points to another host.
	if prefix := strings.TrimSuffix(a.cfg.Local.URL, "/"); strings.HasPrefix(prefix, "/") {
		media := afero.NewHttpFs(afero.NewBasePathFs(afero.NewOsFs(), a.cfg.Local.WorkDir))
		router.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(media.Dir("/"))))
	}

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: router,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen), slog.String("url", a.cfg.URL))

		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) Dump() {
	if a.dashboard == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dumpTimeout)
	defer cancel()

	if err := a.dashboard.DumpStats(ctx, a.cfg.DumpFileName); err != nil {
		a.log.Error("Cannot dump stats", slog.Any("error", err))

		return
	}

	a.log.Info("Stats dumped", slog.String("file", a.cfg.DumpFileName))
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil {
			a.log.Error("Cannot shutdown server", slog.Any("error", err))
		}
	}

	if a.rdb != nil {
		a.rdb.Close()
	}
}

func newLogger(level string) (*slog.Logger, error) {
	lo := &slog.HandlerOptions{}
	switch level {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, lo)), nil
}

func connectRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cannot parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()

		return nil, fmt.Errorf("cannot connect to redis: %w", err)
	}

	return rdb, nil
}

func newImportService(cfg *config.Config, repo hfImportRepository, log *slog.Logger) httphandler.ImportService {
	remote := func(token string) hfimport.RemoteSource {
		return hfadapter.NewClient(cfg.HFConfig(), token, log)
	}

	return hfimport.NewImportService(repo, repo, remote, fsadapter.NewFSAdapter(cfg.LocalConfig(), log), cfg.HFConfig(), log)
}

type hfImportRepository interface {
	hfimport.SettingsRepository
	hfimport.CourseRepository
}
