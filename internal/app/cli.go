package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jgivc/eduvance/internal/config"
	httphandler "github.com/jgivc/eduvance/internal/handler/http"
	"github.com/jgivc/eduvance/internal/importer"
	"github.com/jgivc/eduvance/internal/repository/lms"
	"github.com/jgivc/eduvance/internal/service/hfimport"
	"github.com/redis/go-redis/v9"
)

const cliTimeout = 5 * time.Minute

// CLI runs the import flow from the command line against the same store the
// server uses.
type CLI struct {
	imports httphandler.ImportService
	rdb     *redis.Client
	out     io.Writer
	log     *slog.Logger
}

func NewCLI(cfgPath string, out io.Writer) (*CLI, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	rdb, err := connectRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	return &CLI{
		imports: newImportService(cfg, lms.NewLMSRepository(rdb, log), log),
		rdb:     rdb,
		out:     out,
		log:     log,
	}, nil
}

func (c *CLI) Close() error {
	return c.rdb.Close()
}

func (c *CLI) Datasets(source string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	datasets, err := c.imports.Datasets(ctx, source)
	if err != nil {
		return fmt.Errorf("cannot list datasets: %w", err)
	}

	for i, d := range datasets {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, d.ID)
	}

	return nil
}

func (c *CLI) Tree(source, repoID, folderPath string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	listing, err := c.imports.Browse(ctx, source, repoID, folderPath)
	if err != nil {
		return fmt.Errorf("cannot browse: %w", err)
	}

	for _, e := range listing.Entries {
		if e.IsDir() {
			fmt.Fprintf(c.out, "%s/\n", e.Path)

			continue
		}
		fmt.Fprintf(c.out, "%s (%d)\n", e.Path, e.Size)
	}

	return nil
}

// Preview writes an editable plan of the folder, or of its subfolders when batch is set.
func (c *CLI) Preview(source, repoID, folderPath string, batch bool, plan io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	folders, err := c.imports.Preview(ctx, &hfimport.PreviewRequest{
		Source: source,
		RepoID: repoID,
		Path:   folderPath,
		Batch:  batch,
	})
	if err != nil {
		return fmt.Errorf("cannot preview: %w", err)
	}

	s := importer.NewSession(source)
	s.Open(repoID)
	if err := s.Enter(folderPath); err != nil {
		return err
	}
	s.SetPreview(folders)

	if err := s.WritePlan(plan); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%d folders, %d items selected\n", len(folders), s.SelectedCount())

	return nil
}

func (c *CLI) Commit(courseID string, plan io.Reader) error {
	s, err := importer.ReadPlan(plan)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	result, err := c.imports.Commit(ctx, courseID, s.Folders)
	if err != nil {
		return fmt.Errorf("cannot commit: %w", err)
	}

	fmt.Fprintf(c.out, "Created %d sections, %d contents\n", result.SectionsCreated, result.ContentsCreated)

	return nil
}
