// Package mztab reads mzTab files: it routes lines through the section state
// machine, parses metadata, headers and data lines into the core model and
// collects every problem in a bounded error list.
package mztab

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
	"github.com/ChrisMcGann/mztab/pkg/validate"
)

const maxLineSize = 64 * 1024 * 1024

// Options controls what a Reader records.
type Options struct {
	Level     mzerror.Level // minimum level kept in the error list
	MaxErrors int           // error list capacity, mzerror.DefaultMaxCount if <= 0
	Logger    *slog.Logger
}

// DefaultOptions records errors only, up to mzerror.DefaultMaxCount.
func DefaultOptions() Options {
	return Options{Level: mzerror.LevelError, MaxErrors: mzerror.DefaultMaxCount}
}

// Result is the outcome of a parse. File is nil unless the structural and
// field-level checks left the error list empty.
type Result struct {
	File   *core.File
	Errors *mzerror.List
}

// Reader parses one mzTab stream.
type Reader struct {
	scanner *bufio.Scanner
	opts    Options
	logger  *slog.Logger
	lineNum int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader, opts Options) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		scanner: scanner,
		opts:    opts,
		logger:  logger,
	}
}

// Open opens a file for reading, transparently decompressing gzip content.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &gzipFile{Reader: gz, file: f}, nil
	}
	return &plainFile{Reader: br, file: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}

type plainFile struct {
	*bufio.Reader
	file *os.File
}

func (p *plainFile) Close() error {
	return p.file.Close()
}

// ReadFile opens and parses the file at path.
func ReadFile(ctx context.Context, path string, opts Options) (*Result, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return NewReader(rc, opts).Read(ctx)
}

// Read parses the whole stream. The returned error is a *mzerror.FatalError
// for a structural failure, mzerror.ErrOverflow when the error list filled
// up, or an I/O or context error. Result is never nil.
func (r *Reader) Read(ctx context.Context) (*Result, error) {
	s := newSession(r.opts, r.logger)
	res := &Result{Errors: s.list}

	for r.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r.lineNum++
		text := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := s.line(r.lineNum, strings.Split(text, "\t")); err != nil {
			r.logger.Debug("parse stopped", "line", r.lineNum, "error", err)
			return res, err
		}
	}
	if err := r.scanner.Err(); err != nil {
		return res, fmt.Errorf("read line %d: %w", r.lineNum+1, err)
	}

	s.finish()
	if s.err != nil {
		return res, s.err
	}
	if !s.list.IsEmpty() {
		r.logger.Debug("file model not built", "errors", s.list.Len())
		return res, nil
	}

	res.File = s.file
	if err := validate.Check(s.file, s.list); err != nil {
		return res, err
	}
	return res, nil
}

// session is the mutable state of one parse.
type session struct {
	*reporter
	logger   *slog.Logger
	file     *core.File
	meta     *metadataParser
	data     map[core.Section]*dataParser
	high     core.Section
	metaDone bool
}

func newSession(opts Options, logger *slog.Logger) *session {
	rep := &reporter{list: mzerror.NewList(opts.MaxErrors, opts.Level)}
	file := core.NewFile(core.NewMetadata())
	return &session{
		reporter: rep,
		logger:   logger,
		file:     file,
		meta:     newMetadataParser(file.Metadata, rep),
		data:     make(map[core.Section]*dataParser),
		high:     core.SectionComment,
	}
}

func (s *session) line(n int, fields []string) error {
	prefix := strings.TrimSpace(fields[0])
	section, ok := core.ParseSection(prefix)
	if !ok {
		return s.fatal(mzerror.LinePrefix, n, prefix)
	}
	if section == core.SectionComment {
		s.file.AddComment(n, strings.Join(fields[1:], "\t"))
		return nil
	}
	if section < s.high {
		return s.fatal(mzerror.LineOrder, n, section.Prefix(), s.high.Prefix())
	}
	if section != core.SectionMetadata && !s.metaDone {
		s.endMetadata()
	}

	switch {
	case section == core.SectionMetadata:
		if err := s.meta.parse(n, fields); err != nil {
			return err
		}
	case section.IsHeader():
		if s.data[section.Data()] != nil {
			return s.fatal(mzerror.HeaderLine, n, section.Prefix())
		}
		factory, mapping := parseHeader(section, fields, n, s.file.Metadata, s.reporter)
		s.file.SetFactory(factory)
		s.data[factory.Section()] = newDataParser(factory, mapping, s.file.Metadata, s.reporter)
		s.meta.resolveColUnits(factory)
		s.logger.Debug("header parsed", "section", factory.Section().Name(), "line", n, "columns", mapping.Len()-1)
	case section.IsData():
		dp := s.data[section]
		if dp == nil {
			return s.fatal(mzerror.NoHeaderLine, n, section.Prefix(), section.Header().Prefix())
		}
		if rec := dp.parse(n, fields); rec != nil {
			if err := s.file.AddRecord(rec); err != nil {
				return err
			}
		}
	}

	if section > s.high {
		s.high = section
	}
	return s.err
}

func (s *session) endMetadata() {
	s.metaDone = true
	s.meta.checkRequired()
}

func (s *session) finish() {
	if !s.metaDone {
		s.endMetadata()
	}
	s.meta.finish()
}
