package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"rostercli/internal/app"
	"rostercli/internal/config"
	apperrors "rostercli/internal/errors"
	"rostercli/internal/infrastructure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags holds command line overrides. Empty values keep the configuration.
type flags struct {
	configFile string
	dataDir    string
	identity   string
	marks      string
	weights    string
	export     string
	delimiter  string
	unknown    string
	command    string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.configFile, "config", "", "YAML config file (default: $ROSTER_CONFIG, roster.yaml or configs/roster.yaml)")
	fs.StringVar(&f.dataDir, "data", "", "directory holding the source files")
	fs.StringVar(&f.identity, "identity", "", "identity source (StudentID;Name;Class)")
	fs.StringVar(&f.marks, "marks", "", "marks source (StudentID;<subjects>)")
	fs.StringVar(&f.weights, "weights", "", "weights source (Subject;Weight)")
	fs.StringVar(&f.export, "export", "", "export file")
	fs.StringVar(&f.delimiter, "delimiter", "", "field delimiter")
	fs.StringVar(&f.unknown, "unknown-students", "", "policy for marks of unknown students: create or reject")
	fs.StringVar(&f.command, "run", "", "run one command and exit: ranked, alpha, progress, export or student:<id>")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// apply overlays the flags onto cfg and validates the result
func (f *flags) apply(cfg *config.Config) error {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Data.Dir, f.dataDir)
	set(&cfg.Data.IdentityFile, f.identity)
	set(&cfg.Data.MarksFile, f.marks)
	set(&cfg.Data.WeightsFile, f.weights)
	set(&cfg.Export.File, f.export)
	set(&cfg.Parsing.Delimiter, f.delimiter)
	set(&cfg.Parsing.UnknownStudents, f.unknown)
	return cfg.Validate()
}

func loadConfig(f *flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configFile != "" {
		cfg, err = config.LoadFile(f.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := f.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if f.version {
		fmt.Fprintf(stdout, "%s %s\n", config.AppName, config.AppVersion)
		return 0
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintln(stderr, apperrors.Describe(err))
		return 1
	}

	application, err := app.NewApplication(ctx, cfg, app.Options{TraceOut: stderr})
	if err != nil {
		apperrors.NewErrorHandler(infrastructure.GetLogger(), stderr).Handle(ctx, err)
		return 1
	}
	defer func() {
		application.Close(ctx)
		infrastructure.CloseLogFile()
	}()

	if f.command != "" {
		if err := application.RunCommand(ctx, f.command, stdout); err != nil {
			return 1
		}
		return 0
	}

	if err := application.Run(ctx, stdin, stdout); err != nil {
		apperrors.NewErrorHandler(application.Logger, stderr).Handle(ctx, err)
		return 1
	}
	return 0
}
