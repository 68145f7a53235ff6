// Package engine runs a search pipeline over one buffer.
//
// The engine keeps a stack of ranges. The range at depth d is searched by
// stage d; each occurrence found narrows the search by pushing a new range
// for stage d+1. When the stack is one deeper than the pipeline, every
// stage has matched and the top range is reported. Ranges are popped when
// their stage finds nothing more, which resumes the enclosing range after
// the occurrence that produced them.
package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/tliron/commonlog"
	"gramgrep/internal/action"
	"gramgrep/internal/errors"
	"gramgrep/internal/ir"
	"gramgrep/internal/lalr"
	"gramgrep/internal/replace"
	"gramgrep/token"
)

var log = commonlog.GetLogger("gramgrep.engine")

type Options struct {
	// Replace is staged over every reported match when HasReplace is
	// set. $n refers to the captures of the last stage.
	Replace    string
	HasReplace bool

	// Modify lets actions stage edits.
	Modify bool

	Stdout io.Writer
	Exec   action.Executor
}

// Hit is one reported match. Start and End are file offsets; Text is the
// matched text, which differs from the file bytes when an action rewrote
// the match.
type Hit struct {
	Line     int
	LineText string
	Start    int
	End      int
	Text     string
}

type Result struct {
	Path   string
	Hits   []Hit
	Edits  *replace.Map
	Errors []error
}

type Engine struct {
	stages  []ir.Matcher
	opts    Options
	runtime *action.Runtime
}

func New(p ir.Pipeline, opts Options) *Engine {
	return &Engine{
		stages: p.Stages,
		opts:   opts,
		runtime: action.New(action.Options{
			Modify: opts.Modify,
			Stdout: opts.Stdout,
			Exec:   opts.Exec,
		}),
	}
}

// frame is one range of the stack. src is -1 for the file buffer and an
// arena index otherwise. origin is the file span a synthetic range was
// derived from.
type frame struct {
	src     int
	owned   bool
	start   int
	cursor  int
	end     int
	origin  lalr.Span
	visited bool

	// merged is set once edits have gone into the file map, so later hits
	// below this range do not stage them again.
	merged bool

	// Set by the stage that pushed this frame.
	edits    *replace.Map
	captures []string

	tokens []token.Token
	lexed  bool
}

// run is the state of one Search call.
type run struct {
	e      *Engine
	ctx    context.Context
	path   string
	buf    []byte
	frames []frame
	arena  [][]byte
	result *Result
	lines  lineIndex
}

// Search runs the pipeline over buf. Action errors do not stop the
// search; they are collected in Result.Errors.
func (e *Engine) Search(ctx context.Context, path string, buf []byte) (*Result, error) {
	if len(e.stages) == 0 {
		return nil, fmt.Errorf("empty pipeline")
	}
	r := &run{
		e:      e,
		ctx:    ctx,
		path:   path,
		buf:    buf,
		result: &Result{Path: path, Edits: replace.NewMap()},
		lines:  lineIndex{buf: buf},
	}
	r.frames = append(r.frames, frame{src: -1, end: len(buf), origin: lalr.Span{End: len(buf)}})

	for len(r.frames) > 0 {
		if err := ctx.Err(); err != nil {
			return r.result, err
		}
		depth := len(r.frames) - 1
		if depth == len(e.stages) {
			r.accept()
			r.pop()
			continue
		}
		child, ok := r.step(depth)
		if !ok {
			r.pop()
			continue
		}
		r.frames = append(r.frames, child)
	}

	log.Debugf("%s: %d hits, %d edits, %d errors", path, len(r.result.Hits), r.result.Edits.Len(), len(r.result.Errors))
	return r.result, nil
}

func (r *run) subject(f *frame) []byte {
	if f.src < 0 {
		return r.buf
	}
	return r.arena[f.src]
}

// pushText stores synthetic text in the arena and returns its index. The
// frame built on it owns the entry and frees it when popped.
func (r *run) pushText(text string) int {
	r.arena = append(r.arena, []byte(text))
	return len(r.arena) - 1
}

func (r *run) pop() {
	top := r.frames[len(r.frames)-1]
	if top.owned {
		r.arena = r.arena[:len(r.arena)-1]
	}
	r.frames = r.frames[:len(r.frames)-1]
}

// accept records the top range as a hit and merges the edits staged on
// the way down.
func (r *run) accept() {
	top := &r.frames[len(r.frames)-1]
	hit := Hit{Start: top.origin.Start, End: top.origin.End}
	if top.src < 0 {
		hit.Start, hit.End = top.start, top.end
	}
	hit.Text = string(r.subject(top)[top.start:top.end])
	hit.Line, hit.LineText = r.lines.lookup(hit.Start)
	r.result.Hits = append(r.result.Hits, hit)

	for i := 1; i < len(r.frames); i++ {
		if r.frames[i].merged {
			continue
		}
		r.result.Edits.Merge(r.frames[i].edits)
		r.frames[i].merged = true
	}
	if r.e.opts.HasReplace && top.src < 0 {
		r.result.Edits.Stage(top.start, top.end-top.start, expand(r.e.opts.Replace, top.captures))
	}
}

// line returns the file line of the innermost file-backed range.
func (r *run) line(f *frame, offset int) int {
	if f.src >= 0 {
		offset = f.origin.Start
	}
	n, _ := r.lines.lookup(offset)
	return n
}

func (r *run) actionError(err error, line int) {
	if ae, ok := err.(*errors.ActionError); ok {
		ae.Path, ae.Line = r.path, line
	}
	log.Warningf("%s", err)
	r.result.Errors = append(r.result.Errors, err)
}
