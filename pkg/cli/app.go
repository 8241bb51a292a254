package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/funvibe/speclink/internal/collector"
	"github.com/funvibe/speclink/internal/config"
	"github.com/funvibe/speclink/internal/diagnostics"
	"github.com/funvibe/speclink/internal/inliner"
	"github.com/funvibe/speclink/internal/linker"
	"github.com/funvibe/speclink/internal/modules"
	"github.com/funvibe/speclink/internal/pipeline"
	"github.com/funvibe/speclink/internal/utils"
)

// App carries what the commands share: streams, settings and the logger.
// Settings and logger are filled in by the root command before any
// subcommand runs.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	viper    *viper.Viper
	cfgFile  string
	settings config.Settings
	logger   *log.Logger
	out      styles
	errOut   styles
}

func NewApp(stdout, stderr io.Writer) *App {
	return &App{
		Stdout:   stdout,
		Stderr:   stderr,
		viper:    config.NewViper(),
		settings: config.DefaultSettings(),
	}
}

// configure loads settings and builds the logger and styles.
func (a *App) configure() error {
	settings, err := config.LoadSettings(a.viper, a.cfgFile)
	if err != nil {
		return err
	}
	a.settings = settings

	level, err := log.ParseLevel(strings.ToLower(settings.LogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	a.logger = log.NewWithOptions(a.Stderr, log.Options{
		Level:  level,
		Prefix: config.AppName,
	})
	a.out = newStyles(a.Stdout, useColor(settings.Color, a.Stdout))
	a.errOut = newStyles(a.Stderr, useColor(settings.Color, a.Stderr))
	return nil
}

// Stage selects how far run takes the pipeline.
type Stage int

const (
	StageCollect Stage = iota
	StageLink
	StageInline
)

// load reads the forest documents named by paths.
func (a *App) load(paths []string) (*modules.Forest, error) {
	forest, err := modules.NewLoader().Load(paths...)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}
	a.logger.Debug("loaded forest", "files", len(forest.Files), "modules", len(forest.Modules))
	return forest, nil
}

// run runs the pipeline on forest up to stage. Diagnostics are printed to
// Stderr; the returned error carries the exit code.
func (a *App) run(forest *modules.Forest, stage Stage) (*pipeline.PipelineContext, error) {
	processors := []pipeline.Processor{&collector.CollectorProcessor{}}
	if stage >= StageLink {
		processors = append(processors, &linker.LinkerProcessor{})
	}
	if stage >= StageInline {
		processors = append(processors, &inliner.InlinerProcessor{})
	}

	ctx := pipeline.NewPipelineContext(forest.Modules, forest.Sources, a.logger)
	ctx = pipeline.New(processors...).Run(ctx)

	if ctx.Fatal != nil {
		a.printError(ctx.Fatal)
		return ctx, &ExitError{Code: ExitInternal, Err: ctx.Fatal, Reported: true}
	}
	if len(ctx.Errors) > 0 {
		for _, err := range ctx.Errors {
			a.printError(err)
		}
		return ctx, &ExitError{Code: ExitFailure, Err: errors.Join(ctx.Errors...), Reported: true}
	}
	return ctx, nil
}

// printError renders err on Stderr, one line per resolution error.
func (a *App) printError(err error) {
	if errs, ok := diagnostics.AsResolutionErrors(err); ok {
		for _, e := range errs {
			a.printResolutionError(e)
		}
		return
	}
	if errors.Is(err, diagnostics.ErrInternal) {
		fmt.Fprintln(a.Stderr, a.errOut.Error.Render("internal error: ")+err.Error())
		return
	}
	fmt.Fprintln(a.Stderr, a.errOut.Error.Render("error: ")+err.Error())
}

func (a *App) printResolutionError(e *diagnostics.ResolutionError) {
	var sb strings.Builder
	if e.Location != nil {
		sb.WriteString(a.errOut.Location.Render(e.Location.String()) + ": ")
	}
	sb.WriteString(a.errOut.Error.Render("error") + " ")
	sb.WriteString(a.errOut.Code.Render("["+string(e.Code)+"]") + " ")
	switch {
	case e.ModuleName != "":
		fmt.Fprintf(&sb, "module %s not found", e.ModuleName)
	case e.DefName != "":
		fmt.Fprintf(&sb, "name %s not found in module %s", e.DefName, e.Context)
	default:
		sb.WriteString("unresolved reference")
	}
	sb.WriteString(a.errOut.Muted.Render(" (in " + e.Module + ")"))
	fmt.Fprintln(a.Stderr, sb.String())
}

// readDocuments returns the raw bytes of the forest documents under paths,
// in load order.
func readDocuments(paths []string) ([][]byte, error) {
	files, err := utils.ExpandForestPaths(paths)
	if err != nil {
		return nil, err
	}
	docs := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, data)
	}
	return docs, nil
}
