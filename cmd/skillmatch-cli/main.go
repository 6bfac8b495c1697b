package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-skillmatch/config"
	"github.com/gcbaptista/go-skillmatch/internal/engine"
	internalErrors "github.com/gcbaptista/go-skillmatch/internal/errors"
	"github.com/gcbaptista/go-skillmatch/internal/jobs"
	"github.com/gcbaptista/go-skillmatch/internal/snapshot"
)

type options struct {
	configPath string
	dataPath   string
	skills     string
	interests  string
	experience string
	location   string
	jobType    string
	sector     string
	topK       int
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to a YAML settings file")
	flag.StringVar(&opts.dataPath, "data", "", "CSV of job postings (overrides data_path)")
	flag.StringVar(&opts.skills, "skills", "", "Comma-separated skills, e.g. \"python, sql\"")
	flag.StringVar(&opts.interests, "interests", "", "Free-text interests")
	flag.StringVar(&opts.experience, "experience", "", "Experience level, e.g. \"entry level\"")
	flag.StringVar(&opts.location, "location", "", "Only show postings whose location contains this text")
	flag.StringVar(&opts.jobType, "job-type", "", "Only show postings whose job type contains this text")
	flag.StringVar(&opts.sector, "sector", "", "Only show postings whose sector contains this text")
	flag.IntVar(&opts.topK, "top", 0, "Number of recommendations (default from settings)")
	flag.BoolVar(&opts.verbose, "verbose", false, "Log to stderr")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.dataPath != "" {
		settings.DataPath = opts.dataPath
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer func() { _ = logger.Sync() }()

	var stores []snapshot.Store
	if settings.Snapshot.Dir != "" {
		stores = append(stores, snapshot.NewFileStore(settings.Snapshot.Dir))
	}

	manager := jobs.NewManager(settings.Jobs.MaxWorkers, logger)
	defer manager.Stop()

	eng := engine.NewEngine(settings, logger, manager, stores...)
	if err := eng.Load(ctx); err != nil {
		return err
	}

	r := newRenderer(out)
	req := engine.RecommendRequest{
		Skills:     []string{opts.skills},
		Interests:  opts.interests,
		Experience: opts.experience,
		Location:   opts.location,
		JobType:    opts.jobType,
		Sector:     opts.sector,
		TopK:       opts.topK,
	}

	if strings.TrimSpace(opts.skills) != "" || strings.TrimSpace(opts.interests) != "" {
		return recommend(ctx, eng, r, req)
	}
	return interactive(ctx, eng, r, req, in, out)
}

func recommend(ctx context.Context, eng *engine.Engine, r *renderer, req engine.RecommendRequest) error {
	rec, err := eng.Recommend(ctx, req)
	if errors.Is(err, internalErrors.ErrEmptyQuery) {
		r.EmptyQuery()
		return nil
	}
	if err != nil {
		return err
	}
	r.Recommendation(rec)
	return nil
}

// interactive prompts for skills until the input ends or the user types "exit".
func interactive(ctx context.Context, eng *engine.Engine, r *renderer, base engine.RecommendRequest, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	prompt := color.New(color.FgGreen).FprintfFunc()

	for {
		prompt(out, "\nSkills (comma-separated, 'exit' to quit): ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "exit") {
			break
		}

		req := base
		req.Skills = []string{line}
		if err := recommend(ctx, eng, r, req); err != nil {
			r.Error(err)
		}
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
