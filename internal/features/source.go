package features

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"scenepack/internal/services"
)

// Source yields frame records in capture order. Next returns io.EOF once
// the stream is exhausted. An error wrapping services.ErrCorruptPacket
// describes a single unreadable record; the source stays usable after it.
type Source interface {
	Next() (FrameFeature, error)
	Close() error
}

// SliceSource serves records from memory.
type SliceSource struct {
	records []FrameFeature
	pos     int
}

// NewSliceSource wraps records as a Source.
func NewSliceSource(records []FrameFeature) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next() (FrameFeature, error) {
	if s.pos >= len(s.records) {
		return FrameFeature{}, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *SliceSource) Close() error { return nil }

const maxRecordLine = 64 << 20

// DirSource reads the JSON Lines dumps an extractor leaves in a movie folder.
// Files are consumed in lexical order, one {"frameId", "features"} object per
// line. Records without a frameId are named after their position.
type DirSource struct {
	files   []string
	current *os.File
	scanner *bufio.Scanner
	fileIdx int
	line    int
	index   int
}

// OpenDirSource lists the *.jsonl files of dir.
func OpenDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", services.ErrMissingInputDirectory, dir)
		}
		return nil, fmt.Errorf("read source folder: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".jsonl") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return &DirSource{files: files}, nil
}

// HasRecords reports whether the folder contains any record files.
func (s *DirSource) HasRecords() bool {
	return len(s.files) > 0
}

type sourceRecord struct {
	FrameID  *string     `json:"frameId"`
	Features *[]*float32 `json:"features"`
}

func (s *DirSource) Next() (FrameFeature, error) {
	for {
		if s.scanner == nil {
			if s.fileIdx >= len(s.files) {
				return FrameFeature{}, io.EOF
			}
			if err := s.openNext(); err != nil {
				return FrameFeature{}, err
			}
		}
		if !s.scanner.Scan() {
			err := s.scanner.Err()
			name := s.current.Name()
			s.closeCurrent()
			if err != nil {
				return FrameFeature{}, fmt.Errorf("read %s: %w", name, err)
			}
			continue
		}
		s.line++
		raw := bytes.TrimSpace(s.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec sourceRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return FrameFeature{}, fmt.Errorf("%w: %s line %d: %v",
				services.ErrCorruptPacket, filepath.Base(s.current.Name()), s.line, err)
		}
		if rec.Features == nil {
			return FrameFeature{}, fmt.Errorf("%w: %s line %d: missing features",
				services.ErrCorruptPacket, filepath.Base(s.current.Name()), s.line)
		}
		values := make([]float32, len(*rec.Features))
		for j, v := range *rec.Features {
			if v == nil {
				return FrameFeature{}, fmt.Errorf("%w: %s line %d: null feature value at %d",
					services.ErrCorruptPacket, filepath.Base(s.current.Name()), s.line, j)
			}
			values[j] = *v
		}
		id := FrameID(s.index)
		if rec.FrameID != nil && strings.TrimSpace(*rec.FrameID) != "" {
			id = strings.TrimSpace(*rec.FrameID)
		}
		s.index++
		return FrameFeature{FrameID: id, Features: values}, nil
	}
}

func (s *DirSource) openNext() error {
	path := s.files[s.fileIdx]
	s.fileIdx++
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordLine)
	s.current = file
	s.scanner = scanner
	s.line = 0
	return nil
}

func (s *DirSource) closeCurrent() {
	if s.current != nil {
		_ = s.current.Close()
	}
	s.current = nil
	s.scanner = nil
}

func (s *DirSource) Close() error {
	s.closeCurrent()
	s.fileIdx = len(s.files)
	return nil
}
