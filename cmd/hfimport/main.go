package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jgivc/eduvance/internal/app"
)

const usage = `Usage: hfimport [-c config.yml] <command> [flags]

Commands:
  datasets [-source hf|local]
  tree     [-source hf|local] -repo ID [-path DIR]
  preview  [-source hf|local] -repo ID [-path DIR] [-batch] [-o plan.yml]
  commit   -course ID [-plan plan.yml]
`

func main() {
	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cli, err := app.NewCLI(*cfgFileName, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot start: %s\n", err)
		os.Exit(1)
	}
	defer cli.Close()

	if err := run(cli, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		cli.Close()
		os.Exit(1)
	}
}

func run(cli *app.CLI, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	source := fs.String("source", "hf", "Import source: hf or local")
	repo := fs.String("repo", "", "Repository id")
	dir := fs.String("path", "", "Folder path inside the repository")
	batch := fs.Bool("batch", false, "Preview every subfolder of -path")
	out := fs.String("o", "plan.yml", "Plan file to write")
	courseID := fs.String("course", "", "Target course id")
	plan := fs.String("plan", "plan.yml", "Plan file to commit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd {
	case "datasets":
		return cli.Datasets(*source)
	case "tree":
		return cli.Tree(*source, *repo, *dir)
	case "preview":
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("cannot create plan file: %w", err)
		}
		defer f.Close()

		return cli.Preview(*source, *repo, *dir, *batch, f)
	case "commit":
		if *courseID == "" {
			return fmt.Errorf("-course is required")
		}

		f, err := os.Open(*plan)
		if err != nil {
			return fmt.Errorf("cannot open plan file: %w", err)
		}
		defer f.Close()

		return cli.Commit(*courseID, f)
	}

	flag.Usage()

	return fmt.Errorf("unknown command %q", cmd)
}
