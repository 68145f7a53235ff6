package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gramgrep/internal/engine"
	"gramgrep/internal/replace"
	"gramgrep/internal/source"
)

// searcher runs the engine over each file and keeps the run totals.
type searcher struct {
	opts       *options
	stdout     io.Writer
	stderr     io.Writer
	engine     *engine.Engine
	applier    *replace.Applier
	hasReplace bool

	matches       int
	matchingFiles int
	searched      int
	notSearched   int
}

var (
	pathColor  = color.New(color.FgMagenta)
	lineColor  = color.New(color.FgGreen)
	matchColor = color.New(color.FgRed, color.Bold)
)

// searchFile reports the hits in path and writes its edits back when
// --modify is set. Only fatal errors are returned.
func (s *searcher) searchFile(ctx context.Context, path string) error {
	f, err := source.Open(path)
	if err != nil {
		s.notSearched++
		warn(s.stderr, err)
		return nil
	}
	defer f.Close()
	s.searched++

	res, err := s.engine.Search(ctx, path, f.Data)
	if err != nil {
		return err
	}
	for _, aerr := range res.Errors {
		warn(s.stderr, aerr)
	}
	if len(res.Hits) > 0 {
		s.matches += len(res.Hits)
		s.matchingFiles++
		s.report(f.Data, res)
	}

	if s.opts.modify && res.Edits.Len() > 0 {
		// The mapping must go before the file is replaced.
		edits := res.Edits
		f.Close()
		if err := s.applier.WriteFile(ctx, path, edits); err != nil {
			warn(s.stderr, err)
		} else {
			log.Infof("%s: applied %d edits", path, edits.Len())
		}
	}
	return nil
}

func (s *searcher) report(buf []byte, res *engine.Result) {
	switch {
	case s.opts.filesOnly:
		fmt.Fprintln(s.stdout, pathColor.Sprint(res.Path))
		return
	case s.opts.count:
		fmt.Fprintf(s.stdout, "%s:%d\n", pathColor.Sprint(res.Path), len(res.Hits))
		return
	case s.opts.onlyMatching:
		for _, h := range res.Hits {
			fmt.Fprintf(s.stdout, "%s(%s):%s\n", pathColor.Sprint(res.Path), lineColor.Sprint(h.Line), matchColor.Sprint(h.Text))
		}
		return
	}

	// One output line per file line; hits on the same line are highlighted
	// together.
	hits := res.Hits
	for i := 0; i < len(hits); {
		j := i + 1
		for j < len(hits) && hits[j].Line == hits[i].Line {
			j++
		}
		start := lineStart(buf, hits[i].Start)
		text := hits[i].LineText
		if s.hasReplace && !s.opts.modify {
			text = previewLine(start, text, res.Edits)
		} else {
			text = highlight(start, text, hits[i:j])
		}
		fmt.Fprintf(s.stdout, "%s(%s):%s\n", pathColor.Sprint(res.Path), lineColor.Sprint(hits[i].Line), text)
		i = j
	}
}

func lineStart(buf []byte, offset int) int {
	if offset > len(buf) {
		offset = len(buf)
	}
	return bytes.LastIndexByte(buf[:offset], '\n') + 1
}

// highlight colours the parts of line covered by hits. Hits spanning
// several lines are highlighted up to the end of this one.
func highlight(start int, line string, hits []engine.Hit) string {
	if color.NoColor {
		return line
	}
	var b strings.Builder
	pos := 0
	for _, h := range hits {
		from, to := h.Start-start, h.End-start
		if from < pos || from > len(line) || to <= from {
			continue
		}
		if to > len(line) {
			to = len(line)
		}
		b.WriteString(line[pos:from])
		b.WriteString(matchColor.Sprint(line[from:to]))
		pos = to
	}
	b.WriteString(line[pos:])
	return b.String()
}

// previewLine applies the edits that fall inside line.
func previewLine(start int, line string, edits *replace.Map) string {
	out := line
	for _, e := range edits.Sorted() {
		from, to := e.Offset-start, e.Offset-start+e.Length
		if from < 0 || to > len(line) {
			continue
		}
		out = out[:from] + e.Text + out[to:]
	}
	return out
}

func (s *searcher) summary(elapsed string) {
	line := fmt.Sprintf("Matches: %d    Matching files: %d    Total files searched: %d",
		s.matches, s.matchingFiles, s.searched)
	if s.notSearched > 0 {
		line += fmt.Sprintf("    Not searched: %d", s.notSearched)
	}
	if s.opts.filesOnly || s.opts.count {
		fmt.Fprintln(s.stderr, line)
	} else {
		fmt.Fprintln(s.stdout, line)
	}
	log.Infof("finished in %s", elapsed)
}
