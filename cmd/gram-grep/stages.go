package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gramgrep/internal/compiler"
	"gramgrep/internal/config"
	"gramgrep/internal/errors"
	"gramgrep/internal/ir"
)

// stageList collects stage flags in command line order. Modifier flags
// set pending options that the next stage flag consumes.
type stageList struct {
	stages  []config.Stage
	pending config.Stage
	dirty   bool
}

// finish attaches modifiers given after the last stage to that stage.
func (l *stageList) finish() error {
	if !l.dirty {
		return nil
	}
	if len(l.stages) == 0 {
		return fmt.Errorf("stage modifiers given without a stage")
	}
	last := &l.stages[len(l.stages)-1]
	p := l.pending
	last.IgnoreCase = last.IgnoreCase || p.IgnoreCase
	last.WordRegexp = last.WordRegexp || p.WordRegexp
	last.Invert = last.Invert || p.Invert
	last.InvertAll = last.InvertAll || p.InvertAll
	last.ExtendSearch = last.ExtendSearch || p.ExtendSearch
	last.UTF8 = last.UTF8 || p.UTF8
	l.pending, l.dirty = config.Stage{}, false
	return nil
}

type stageFlag struct {
	list *stageList
	kind string
}

func (f *stageFlag) Set(pattern string) error {
	s := f.list.pending
	s.Kind = f.kind
	s.Pattern = pattern
	f.list.stages = append(f.list.stages, s)
	f.list.pending, f.list.dirty = config.Stage{}, false
	return nil
}

func (f *stageFlag) String() string { return "" }
func (f *stageFlag) Type() string   { return "string" }

type modifierFlag struct {
	list  *stageList
	apply func(s *config.Stage, on bool)
}

func (f *modifierFlag) Set(value string) error {
	on, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	f.apply(&f.list.pending, on)
	f.list.dirty = true
	return nil
}

func (f *modifierFlag) String() string   { return "false" }
func (f *modifierFlag) Type() string     { return "bool" }
func (f *modifierFlag) IsBoolFlag() bool { return true }

func (l *stageList) register(fs *pflag.FlagSet) {
	stage := func(name, short, kind, usage string) {
		fs.VarP(&stageFlag{list: l, kind: kind}, name, short, usage)
	}
	stage("text", "T", config.KindText, "add a literal text stage")
	stage("regex", "E", config.KindRegex, "add a regular expression stage")
	stage("file", "f", config.KindGrammar, "add a grammar or token stage from a config file")

	modifier := func(name, short, usage string, apply func(*config.Stage, bool)) {
		flag := fs.VarPF(&modifierFlag{list: l, apply: apply}, name, short, usage)
		flag.NoOptDefVal = "true"
	}
	modifier("ignore-case", "i", "next stage ignores case", func(s *config.Stage, on bool) { s.IgnoreCase = on })
	modifier("word-regexp", "w", "next stage matches whole words", func(s *config.Stage, on bool) { s.WordRegexp = on })
	modifier("invert", "v", "next stage selects text the pattern does not match", func(s *config.Stage, on bool) { s.Invert = on })
	modifier("invert-all", "", "next stage rejects the range if the pattern matches anywhere", func(s *config.Stage, on bool) { s.InvertAll = on })
	modifier("extend-search", "x", "stage after a match of the next stage searches to the end of the enclosing range", func(s *config.Stage, on bool) { s.ExtendSearch = on })
	modifier("utf8", "", "next stage matches UTF-8 characters", func(s *config.Stage, on bool) { s.UTF8 = on })
}

// compiledStage keeps what --dump and the error reporter need.
type compiledStage struct {
	stage   config.Stage
	matcher ir.Matcher
	result  *compiler.Result
}

func buildStage(s config.Stage) (*compiledStage, error) {
	flags := s.Flags()
	switch s.Kind {
	case config.KindText:
		m, err := ir.NewTextMatcher(s.Pattern, flags)
		if err != nil {
			return nil, err
		}
		return &compiledStage{stage: s, matcher: m}, nil
	case config.KindRegex:
		m, err := ir.NewRegexMatcher(s.Pattern, flags)
		if err != nil {
			return nil, err
		}
		return &compiledStage{stage: s, matcher: m}, nil
	case config.KindGrammar:
		data, err := os.ReadFile(s.Pattern)
		if err != nil {
			return nil, &errors.IOError{Op: "read", Path: s.Pattern, Err: err}
		}
		source := string(data)
		res, err := compiler.Compile(s.Pattern, source, flags)
		if err != nil {
			return nil, err
		}
		return &compiledStage{stage: s, matcher: res.Matcher, result: res}, nil
	}
	return nil, fmt.Errorf("unknown stage kind %q", s.Kind)
}
