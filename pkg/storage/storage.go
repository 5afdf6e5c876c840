package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoURLColumn is returned when an existing output file has no "url" header.
var ErrNoURLColumn = errors.New("output file has no url column")

// URLColumn is the header naming the column that identifies a row.
const URLColumn = "url"

// LoadProcessed returns the set of URLs already recorded in the CSV file at
// path. A missing or empty file yields an empty set.
func LoadProcessed(path string) (map[string]struct{}, error) {
	processed := make(map[string]struct{})

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return processed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening output file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return processed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header of %s: %w", path, err)
	}

	col := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == URLColumn {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoURLColumn)
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", path, err)
		}
		if col < len(rec) && rec[col] != "" {
			processed[rec[col]] = struct{}{}
		}
	}
	return processed, nil
}

// CSVLog is an append-only CSV file. Every row is flushed as it is written.
type CSVLog struct {
	f             *os.File
	w             *csv.Writer
	path          string
	headerWritten bool
	rows          int
}

// OpenCSVLog opens path for appending, creating it if needed. The header is
// written only when the file is new or empty.
func OpenCSVLog(path string, header []string) (*CSVLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening output file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	l := &CSVLog{f: f, w: csv.NewWriter(f), path: path}
	if info.Size() == 0 {
		if err := l.write(header); err != nil {
			_ = f.Close()
			return nil, err
		}
		l.headerWritten = true
	}
	return l, nil
}

func (l *CSVLog) write(record []string) error {
	if err := l.w.Write(record); err != nil {
		return fmt.Errorf("error writing %s: %w", l.path, err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("error flushing %s: %w", l.path, err)
	}
	return nil
}

// Append writes one record and flushes it.
func (l *CSVLog) Append(record []string) error {
	if err := l.write(record); err != nil {
		return err
	}
	l.rows++
	return nil
}

// HeaderWritten reports whether opening the log wrote the header row.
func (l *CSVLog) HeaderWritten() bool { return l.headerWritten }

// Rows returns the number of records appended through this log.
func (l *CSVLog) Rows() int { return l.rows }

func (l *CSVLog) Close() error {
	l.w.Flush()
	werr := l.w.Error()
	if err := l.f.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", l.path, err)
	}
	return werr
}
