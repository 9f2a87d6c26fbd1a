package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calumari/cppbridge/internal/config"
	"github.com/calumari/cppbridge/internal/generator"
	"github.com/calumari/cppbridge/internal/logging"
	"github.com/calumari/cppbridge/internal/manifest"
	"github.com/calumari/cppbridge/internal/watch"
)

// options are the flags shared by generate and watch.
type options struct {
	output       string
	includes     []string
	headers      []string
	sourceRoot   string
	suffix       string
	classMarker  string
	methodMarker string
	workers      int
	check        bool
	force        bool
	manifest     string
	logLevel     string
	logFormat    string
}

func bindOptions(cmd *cobra.Command, d config.Config) *options {
	o := &options{}
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "Root directory for generated bridge headers (required)")
	f.StringSliceVarP(&o.includes, "include", "i", nil, "Include directory used to resolve #include directives (required, repeatable)")
	f.StringSliceVarP(&o.headers, "headers", "H", nil, "Header paths or ** patterns to generate from (repeatable; positional args also accepted)")
	f.StringVar(&o.sourceRoot, "source-root", d.SourceRoot, "Include root stripped from header paths when placing outputs")
	f.StringVar(&o.suffix, "suffix", d.Suffix, "Suffix appended to the output file stem")
	f.StringVar(&o.classMarker, "class-marker", d.ClassMarker, "annotate() argument that selects classes")
	f.StringVar(&o.methodMarker, "method-marker", d.MethodMarker, "annotate() argument that selects methods")
	f.IntVar(&o.workers, "workers", d.Workers, "Headers processed in parallel (0 = one per CPU)")
	f.BoolVar(&o.check, "check", false, "Report stale outputs as a diff instead of writing them")
	f.BoolVar(&o.force, "force", false, "Regenerate even when the manifest says an output is current")
	f.StringVar(&o.manifest, "manifest", d.Manifest, "Path of the generation manifest database (empty disables it)")
	f.StringVar(&o.logLevel, "log-level", d.LogLevel, "Log level: debug, info, warn or error")
	f.StringVar(&o.logFormat, "log-format", d.LogFormat, "Log format: console or json")
	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagRequired("include")
	return o
}

// session holds what one command invocation opens and must release.
type session struct {
	cfg   generator.Config
	log   *zap.Logger
	store *manifest.Store
}

func (o *options) open(args []string, version string, logOut io.Writer) (*session, error) {
	headers := append(append([]string{}, o.headers...), args...)
	if len(headers) == 0 {
		return nil, errors.New("at least one header is required (--headers or positional arguments)")
	}
	log, err := logging.New(o.logLevel, o.logFormat, logOut)
	if err != nil {
		return nil, err
	}
	s := &session{log: log}
	s.cfg = generator.Config{
		OutputDir:    o.output,
		IncludeDirs:  o.includes,
		Headers:      headers,
		SourceRoot:   o.sourceRoot,
		Suffix:       o.suffix,
		ClassMarker:  o.classMarker,
		MethodMarker: o.methodMarker,
		Workers:      o.workers,
		Check:        o.check,
		Force:        o.force,
		Version:      version,
		Logger:       log,
	}
	if o.manifest != "" {
		store, err := manifest.Open(o.manifest)
		if err != nil {
			return nil, err
		}
		s.store = store
		s.cfg.Manifest = store
	}
	return s, nil
}

func (s *session) close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn("closing manifest", zap.Error(err))
		}
	}
	_ = s.log.Sync()
}

func newRootCmd(version string, defaults config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "bridgegen [headers...]",
		Short: `Generate extern "C" bridges for annotated C++ classes`,
		Long: `bridgegen reads C++ headers, selects classes and methods annotated with
[[clang::annotate("bridge_class")]] and [[clang::annotate("bridge_func")]],
and writes one bridge header per input exposing them through opaque handles
and a numeric method dispatch function. Running without a subcommand is the
same as "bridgegen generate".`,
		Example:       "  bridgegen -o gen -i include -H 'include/impact/**/*.h'",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	o := bindOptions(root, defaults)
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, o, args, version)
	}
	root.AddCommand(
		newGenerateCmd(version, defaults),
		newWatchCmd(version, defaults),
		newVersionCmd(version),
	)
	return root
}

func newGenerateCmd(version string, defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [headers...]",
		Short: "Generate bridge headers once",
		Args:  cobra.ArbitraryArgs,
	}
	o := bindOptions(cmd, defaults)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, o, args, version)
	}
	return cmd
}

func newWatchCmd(version string, defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [headers...]",
		Short: "Generate, then regenerate headers as they change",
		Args:  cobra.ArbitraryArgs,
	}
	o := bindOptions(cmd, defaults)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, o, args, version)
	}
	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bridgegen version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func runGenerate(cmd *cobra.Command, o *options, args []string, version string) error {
	s, err := o.open(args, version, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	report, err := generator.Run(cmd.Context(), s.cfg)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	return reportErr(report)
}

func runWatch(cmd *cobra.Command, o *options, args []string, version string) error {
	if o.check {
		return errors.New("--check cannot be combined with watch")
	}
	s, err := o.open(args, version, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	headers, err := generator.ExpandHeaders(s.cfg.Headers)
	if err != nil {
		return err
	}
	g, err := generator.New(s.cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	report, err := g.Generate(ctx, headers)
	if err != nil {
		return err
	}
	printReport(out, report)

	w, err := watch.New(s.log)
	if err != nil {
		return err
	}
	defer w.Close()

	s.log.Info("watching headers", zap.Int("headers", len(headers)))
	err = w.Run(ctx, headers, func(header string) {
		report, err := g.Generate(ctx, []string{header})
		if err != nil {
			return
		}
		printReport(out, report)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reportErr turns failed or stale units into the command's error so the
// process exits non-zero.
func reportErr(r *generator.Report) error {
	if n := r.Count(generator.StatusFailed); n > 0 {
		return fmt.Errorf("%d header(s) failed", n)
	}
	if n := r.Count(generator.StatusDrift); n > 0 {
		return fmt.Errorf("%d bridge(s) out of date", n)
	}
	return nil
}
