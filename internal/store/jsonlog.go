package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lukman83/sheetgen/internal/models"
)

const (
	opAppend        = "append"
	opDeleteProduct = "delete_product"
	opDeleteSheet   = "delete_sheet"

	maxLineSize = 4 << 20
)

type event struct {
	Op     string         `json:"op"`
	At     time.Time      `json:"at"`
	ID     string         `json:"id,omitempty"`
	Record *models.Record `json:"record,omitempty"`
}

// JSONLog is an append-only JSON-lines event log replayed into memory at open.
// A single mutex serializes writers. The file is created on the first write.
type JSONLog struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	records []models.Record
	// torn is set when the file does not end in a newline, e.g. after a
	// crash mid-write. The next event starts on a fresh line.
	torn bool
}

func OpenJSONLog(path string) (*JSONLog, error) {
	if path == "" {
		return nil, errors.New("jsonlog: empty path")
	}
	s := &JSONLog{path: path}
	if err := s.replay(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONLog) replay() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("jsonlog: open %s: %w", s.path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var ev event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			log.Printf("jsonlog: %s:%d: skipping malformed event: %v", s.path, line, err)
			continue
		}
		s.apply(ev)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("jsonlog: read %s: %w", s.path, err)
	}

	torn, err := endsTorn(f)
	if err != nil {
		return fmt.Errorf("jsonlog: read %s: %w", s.path, err)
	}
	s.torn = torn
	return nil
}

func endsTorn(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

// apply mutates the in-memory index and reports whether the event matched a record.
func (s *JSONLog) apply(ev event) bool {
	switch ev.Op {
	case opAppend:
		if ev.Record != nil {
			s.records = append(s.records, *ev.Record)
			return true
		}
	case opDeleteProduct:
		for i, r := range s.records {
			if r.Product.ID == ev.ID {
				s.records = append(s.records[:i], s.records[i+1:]...)
				return true
			}
		}
	case opDeleteSheet:
		for i, r := range s.records {
			if r.Sheet != nil && r.Sheet.ID == ev.ID {
				s.records[i].Sheet = nil
				return true
			}
		}
	}
	return false
}

func (s *JSONLog) write(ev event) error {
	if s.file == nil {
		if dir := filepath.Dir(s.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("jsonlog: create directory: %w", err)
			}
		}
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("jsonlog: open %s: %w", s.path, err)
		}
		s.file = f
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("jsonlog: encode event: %w", err)
	}
	line := append(data, '\n')
	if s.torn {
		line = append([]byte{'\n'}, line...)
	}
	if _, err := s.file.Write(line); err != nil {
		s.torn = true
		return fmt.Errorf("jsonlog: write event: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return err
	}
	s.torn = false
	return nil
}

func (s *JSONLog) Append(_ context.Context, rec models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := event{Op: opAppend, At: time.Now().UTC(), Record: &rec}
	if err := s.write(ev); err != nil {
		return err
	}
	s.apply(ev)
	return nil
}

func (s *JSONLog) List(_ context.Context) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *JSONLog) FindByProductID(_ context.Context, id string) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.Product.ID == id {
			return r, nil
		}
	}
	return models.Record{}, ErrNotFound
}

func (s *JSONLog) DeleteProduct(_ context.Context, id string) error {
	return s.delete(opDeleteProduct, id, func(r models.Record) bool { return r.Product.ID == id })
}

func (s *JSONLog) DeleteSheet(_ context.Context, id string) error {
	return s.delete(opDeleteSheet, id, func(r models.Record) bool { return r.Sheet != nil && r.Sheet.ID == id })
}

func (s *JSONLog) delete(op, id string, match func(models.Record) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, r := range s.records {
		if match(r) {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	ev := event{Op: op, At: time.Now().UTC(), ID: id}
	if err := s.write(ev); err != nil {
		return err
	}
	s.apply(ev)
	return nil
}

func (s *JSONLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
