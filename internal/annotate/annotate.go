// Package annotate decorates Ant console output on its way to the build
// log. Target headers and build summary lines get ANSI emphasis so logs
// fold nicely; everything else passes through untouched. Annotation is
// cosmetic only and never drops or reorders bytes.
package annotate

import (
	"bytes"
	"io"
	"regexp"
	"strings"
)

// targetHeader matches Ant's target banner: a single word followed by a
// colon, alone on the line, e.g. "compile:".
var targetHeader = regexp.MustCompile(`^[^\s"]+:$`)

const (
	bold  = "\x1b[1m"
	green = "\x1b[32m"
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

// Annotator wraps an output sink with line-based rewriting of recognized
// Ant markers. A partial final line is held until more bytes arrive, or
// until ForceEOL or Close flushes it.
type Annotator struct {
	out io.Writer
	buf bytes.Buffer
}

// New wraps sink.
func New(sink io.Writer) *Annotator {
	return &Annotator{out: sink}
}

// Write consumes raw subprocess output. Complete lines are annotated and
// forwarded immediately; a trailing partial line is buffered.
func (a *Annotator) Write(p []byte) (int, error) {
	a.buf.Write(p)

	for {
		idx := bytes.IndexByte(a.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := make([]byte, idx+1)
		copy(line, a.buf.Bytes()[:idx+1])
		a.buf.Next(idx + 1)

		if err := a.emit(line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// ForceEOL flushes any buffered partial line to the sink. Call it once
// the subprocess has exited so the last line is not lost.
func (a *Annotator) ForceEOL() error {
	if a.buf.Len() == 0 {
		return nil
	}
	line := make([]byte, a.buf.Len())
	copy(line, a.buf.Bytes())
	a.buf.Reset()
	return a.emit(line)
}

// Close flushes like ForceEOL and closes the sink if it is closable.
func (a *Annotator) Close() error {
	if err := a.ForceEOL(); err != nil {
		return err
	}
	if c, ok := a.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// emit writes one line, annotated if recognized. The original bytes are
// always present in the output; annotation only adds framing around them.
func (a *Annotator) emit(line []byte) error {
	trimmed := strings.TrimRight(string(line), "\r\n")
	ending := string(line[len(trimmed):])

	switch {
	case targetHeader.MatchString(trimmed):
		_, err := io.WriteString(a.out, bold+trimmed+reset+ending)
		return err
	case trimmed == "BUILD SUCCESSFUL":
		_, err := io.WriteString(a.out, green+trimmed+reset+ending)
		return err
	case trimmed == "BUILD FAILED":
		_, err := io.WriteString(a.out, red+trimmed+reset+ending)
		return err
	default:
		_, err := a.out.Write(line)
		return err
	}
}
