package engine

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"x509lint/internal/config"
	"x509lint/internal/input"
	"x509lint/internal/output"
	"x509lint/internal/rules"
)

func exitCodeForRun(fatal, partial, wrongs bool) int {
	// Exit code contract:
	// 0 = clean run, no findings at or above --fail-on
	// 1 = findings at or above --fail-on
	// 2 = partial failure (some documents could not be decoded)
	// 3 = fatal error (lint did not run)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if wrongs {
		return 1
	}
	return 0
}

func setupOutputManager(cfg *config.Config, stdout io.Writer) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		cs := output.NewConsoleSink(stdout, cfg.Output.ConsoleFormat, output.WithNoColor(cfg.Output.NoColor))
		if err := outMgr.AddSink(cs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

type Engine struct {
	Stdin  io.Reader
	Stdout io.Writer
	Log    logrus.FieldLogger
}

func NewEngine(log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Log:    log,
	}
}

// readInputs splits every configured source into blocks. No files means stdin.
func (e *Engine) readInputs(cfg *config.Config) ([]input.Block, int, error) {
	sources := cfg.Input.Files
	if len(sources) == 0 {
		sources = []string{input.StdinName}
	}
	var blocks []input.Block
	for _, name := range sources {
		bs, err := input.ReadSource(name, e.Stdin)
		if err != nil {
			return nil, 0, err
		}
		e.Log.WithField("source", name).Debugf("found %d document(s)", len(bs))
		blocks = append(blocks, bs...)
	}
	return blocks, len(sources), nil
}

func buildCatalog(cfg *config.Config) (*rules.Catalog, error) {
	return rules.Build(rules.Options{
		Filter:      cfg.Lints.Filter,
		ZLint:       cfg.Lints.ZLint,
		ZLintConfig: cfg.Lints.ZLintConfig,
	})
}

// Run lints every configured input and returns the process exit code.
// cfg must be validated.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	catalog, err := buildCatalog(cfg)
	if err != nil {
		e.Log.WithError(err).Error("failed to build lint catalog")
		return exitCodeForRun(true, false, false)
	}
	e.Log.Debugf("selected %d certificate lints and %d CRL lints", catalog.Certificates.Len(), catalog.RevocationLists.Len())

	blocks, sources, err := e.readInputs(cfg)
	if err != nil {
		e.Log.WithError(err).Error("failed to read input")
		return exitCodeForRun(true, false, false)
	}

	linter, err := NewLinter(catalog, cfg.Input.Kind, cfg.Runtime.LintWorkers, e.Log)
	if err != nil {
		e.Log.WithError(err).Error("failed to create linter")
		return exitCodeForRun(true, false, false)
	}
	scheduler, err := NewScheduler(linter, cfg.Runtime.Concurrency)
	if err != nil {
		e.Log.WithError(err).Error("failed to create scheduler")
		return exitCodeForRun(true, false, false)
	}

	outMgr, err := setupOutputManager(cfg, e.Stdout)
	if err != nil {
		e.Log.WithError(err).Error("failed to create output sinks")
		return exitCodeForRun(true, false, false)
	}
	defer func() {
		if err := outMgr.Close(); err != nil {
			e.Log.WithError(err).Error("failed to close output sinks")
		}
	}()

	_ = outMgr.Write(output.Event{
		Type:             output.EventRunStarted,
		Sources:          sources,
		Documents:        len(blocks),
		CertificateLints: catalog.Certificates.Len(),
		CRLLints:         catalog.RevocationLists.Len(),
	})

	failOn := cfg.FailOnStatus()
	var partial, wrongs bool
	docCh, errCh := scheduler.Execute(ctx, blocks)
	for d := range docCh {
		switch {
		case d.Failed():
			partial = true
		case d.Status >= failOn:
			wrongs = true
		}
		if err := outMgr.Write(d); err != nil {
			e.Log.WithError(err).Warn("failed to write result")
		}
	}

	var schedErr error
	for err := range errCh {
		if err != nil {
			schedErr = err
		}
	}
	if schedErr != nil {
		e.Log.WithError(schedErr).Error("lint run interrupted")
	}

	code := exitCodeForRun(schedErr != nil, partial, wrongs)
	_ = outMgr.Write(output.Event{Type: output.EventRunFinished, Documents: len(blocks), ExitCode: code})
	return code
}
