// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"gramgrep/internal/config"
	"gramgrep/internal/engine"
	"gramgrep/internal/errors"
	"gramgrep/internal/hooks"
	"gramgrep/internal/ir"
	"gramgrep/internal/replace"
	"gramgrep/internal/walk"
)

var log = commonlog.GetLogger("gramgrep")

type options struct {
	stages stageList

	recursive    bool
	include      []string
	exclude      []string
	excludeDir   []string
	onlyMatching bool
	filesOnly    bool
	count        bool
	replace      string
	modify       bool
	checkout     string
	startup      string
	shutdown     string
	configPath   string
	color        string
	dump         bool
	verbose      int
}

// exitError carries a status without further output.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		var exit *exitError
		if stderrors.As(err, &exit) {
			os.Exit(exit.code)
		}
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "gram-grep [flags] [PATTERN] PATH...",
		Short: "Search files with text, regex, token and grammar stages",
		Long: "gram-grep searches files through a pipeline of stages. Each stage\n" +
			"searches the range matched by the previous one. Stage modifiers apply\n" +
			"to the stage flag that follows them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetOut(stdout)
			cmd.SetErr(stderr)
			return runSearch(cmd, opts, args)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fs := cmd.Flags()
	opts.stages.register(fs)
	fs.BoolVarP(&opts.recursive, "recursive", "r", false, "search directories recursively")
	fs.StringSliceVar(&opts.include, "include", nil, "search only files whose base name matches a wildcard")
	fs.StringSliceVar(&opts.exclude, "exclude", nil, "skip files whose base name matches a wildcard")
	fs.StringSliceVar(&opts.excludeDir, "exclude-dir", nil, "skip directories whose name matches a wildcard")
	fs.BoolVarP(&opts.onlyMatching, "only-matching", "o", false, "print only the matched text")
	fs.BoolVarP(&opts.filesOnly, "files-with-matches", "l", false, "print only the names of matching files")
	fs.BoolVarP(&opts.count, "count", "c", false, "print a match count per file")
	fs.StringVar(&opts.replace, "replace", "", "replace every match; $n refers to captures of the last stage")
	fs.BoolVar(&opts.modify, "modify", false, "write replacements and action edits back to the files")
	fs.StringVar(&opts.checkout, "checkout", "", "command run with $1 set to a read-only file before it is modified")
	fs.StringVar(&opts.startup, "startup", "", "command run before searching")
	fs.StringVar(&opts.shutdown, "shutdown", "", "command run after searching")
	fs.StringVar(&opts.configPath, "config", "", "run config file (.yaml or .toml)")
	fs.StringVar(&opts.color, "color", "", "colour output: auto, always or never")
	fs.BoolVar(&opts.dump, "dump", false, "print the compiled form of each config stage and exit")
	fs.CountVarP(&opts.verbose, "verbose", "V", "increase log verbosity")
	return cmd
}

// merge applies the run config under the command line flags.
func (o *options) merge(cmd *cobra.Command) error {
	if o.configPath == "" {
		if o.color == "" {
			o.color = "auto"
		}
		return nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	if len(o.stages.stages) == 0 {
		o.stages.stages = cfg.Stages
	}
	if !changed("recursive") {
		o.recursive = cfg.Recursive
	}
	if !changed("include") {
		o.include = cfg.Include
	}
	if !changed("exclude") {
		o.exclude = cfg.Exclude
	}
	if !changed("exclude-dir") {
		o.excludeDir = cfg.ExcludeDir
	}
	if !changed("checkout") {
		o.checkout = cfg.Hooks.Checkout
	}
	if !changed("startup") {
		o.startup = cfg.Hooks.Startup
	}
	if !changed("shutdown") {
		o.shutdown = cfg.Hooks.Shutdown
	}
	if !changed("color") {
		o.color = cfg.Color
	}
	if !changed("verbose") {
		o.verbose = cfg.Verbose
	}
	return nil
}

func configureColor(mode string, out io.Writer) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto", "":
		tty := false
		if f, ok := out.(*os.File); ok {
			tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		color.NoColor = !tty || os.Getenv("TERM") == "dumb"
	default:
		return fmt.Errorf("--color must be auto, always or never, got %q", mode)
	}
	return nil
}

func runSearch(cmd *cobra.Command, opts *options, args []string) error {
	startTime := time.Now()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if err := opts.stages.finish(); err != nil {
		return err
	}
	if err := opts.merge(cmd); err != nil {
		return err
	}
	if err := configureColor(opts.color, stdout); err != nil {
		return err
	}
	commonlog.Configure(opts.verbose, nil)

	specs := opts.stages.stages
	if len(specs) == 0 {
		if len(args) == 0 {
			return fmt.Errorf("no pattern given")
		}
		specs = []config.Stage{{Kind: config.KindRegex, Pattern: args[0]}}
		args = args[1:]
	}

	var pipeline ir.Pipeline
	for _, s := range specs {
		cs, err := buildStage(s)
		if err != nil {
			reportStageError(stderr, err)
			return &exitError{code: 1}
		}
		if cs.result != nil {
			for _, w := range cs.result.Warnings {
				fmt.Fprint(stderr, cs.result.Reporter.FormatError(w))
			}
		}
		if opts.dump {
			ir.Dump(stdout, cs.matcher)
		}
		pipeline.Stages = append(pipeline.Stages, cs.matcher)
	}
	if opts.dump {
		return nil
	}
	if err := pipeline.Validate(); err != nil {
		return err
	}
	log.Infof("pipeline: %d stages", len(pipeline.Stages))
	if len(args) == 0 {
		return fmt.Errorf("no files given")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runner := hooks.NewRunner()
	if err := runner.Run(ctx, opts.startup, ""); err != nil {
		warn(stderr, err)
	}

	hasReplace := cmd.Flags().Changed("replace")
	s := &searcher{
		opts:       opts,
		stdout:     stdout,
		stderr:     stderr,
		hasReplace: hasReplace,
		applier:    &replace.Applier{Runner: runner, Checkout: opts.checkout},
		engine: engine.New(pipeline, engine.Options{
			Replace:    opts.replace,
			HasReplace: hasReplace,
			Modify:     opts.modify,
			Stdout:     stdout,
			Exec:       runner,
		}),
	}
	filter := &walk.Filter{
		Recursive:  opts.recursive,
		Include:    opts.include,
		Exclude:    opts.exclude,
		ExcludeDir: opts.excludeDir,
	}
	err := filter.Walk(args, func(path string) error {
		return s.searchFile(ctx, path)
	}, func(path string, err error) {
		s.notSearched++
		warn(stderr, &errors.IOError{Op: "open", Path: path, Err: err})
	})

	if herr := runner.Run(ctx, opts.shutdown, ""); herr != nil {
		warn(stderr, herr)
	}
	if err != nil {
		return err
	}

	s.summary(formatDuration(time.Since(startTime)))
	return nil
}

func reportStageError(w io.Writer, err error) {
	var ce *errors.CompileError
	if stderrors.As(err, &ce) {
		if data, rerr := os.ReadFile(ce.Path); rerr == nil {
			fmt.Fprint(w, errors.NewErrorReporter(ce.Path, string(data)).FormatError(ce.Diag))
			return
		}
	}
	color.New(color.FgRed).Fprintf(w, "error: %v\n", err)
}

func warn(w io.Writer, err error) {
	color.New(color.FgYellow).Fprintf(w, "warning: %v\n", err)
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
