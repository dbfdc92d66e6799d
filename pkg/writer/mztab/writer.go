// Package mztab serializes an in-memory mzTab file back to its tab-delimited
// text form.
package mztab

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/core"
)

// Writer renders files as mzTab text
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter creates a new mzTab writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteFile serializes f to path, gzip compressed when path ends in .gz.
func WriteFile(path string, f *core.File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	var dst io.Writer = out
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(out)
		dst = gz
	}
	if err := NewWriter(dst).Write(f); err != nil {
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}
	return out.Close()
}

// Write renders comments, metadata and every present section, then flushes.
func (w *Writer) Write(f *core.File) error {
	if err := f.Metadata.Validate(); err != nil {
		return err
	}
	for _, c := range f.Comments {
		w.line("COM", c.Text)
	}
	w.metadata(f.Metadata)
	for _, section := range f.Sections() {
		w.section(f, section)
	}
	if w.err != nil {
		return fmt.Errorf("failed to write mzTab: %w", w.err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to write mzTab: %w", err)
	}
	return nil
}

func (w *Writer) line(fields ...string) {
	if w.err != nil {
		return
	}
	if _, err := w.w.WriteString(strings.Join(fields, "\t")); err != nil {
		w.err = err
		return
	}
	w.err = w.w.WriteByte('\n')
}

func (w *Writer) mtd(key, value string) {
	if value == "" {
		return
	}
	w.line("MTD", key, value)
}

func (w *Writer) mtdParam(key string, p *core.Param) {
	if p != nil {
		w.mtd(key, p.String())
	}
}

func (w *Writer) mtdParamList(key string, l core.ParamList) {
	if len(l) > 0 {
		w.mtd(key, l.String())
	}
}

func indexed(name string, id int) string {
	return name + "[" + strconv.Itoa(id) + "]"
}

// section writes the header line and then one line per record.
func (w *Writer) section(f *core.File, section core.Section) {
	factory := f.Factory(section)
	cols := factory.Columns()
	header := make([]string, 0, len(cols)+1)
	header = append(header, section.Header().Prefix())
	for _, c := range cols {
		header = append(header, c.Header)
	}
	w.line(header...)

	for _, rec := range f.Records(section) {
		w.line(append([]string{section.Prefix()}, rec.Cells()...)...)
	}
}
