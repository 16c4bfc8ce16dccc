package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"herald/pkg/logx"
)

// Stamped is implemented by documents that carry a last-updated timestamp.
// Update() refreshes it on every successful mutation.
type Stamped interface {
	SetLastUpdated(t time.Time)
}

// Store is a mutex-guarded JSON document kept in memory and mirrored to disk.
//
// All reads and writes go through View/Update, which serialize access: the
// read-all/mutate/write-all pattern is only safe with a single writer at a
// time, so the store enforces that discipline itself.
//
// Persistence failures degrade rather than fail: an unreadable file falls back
// to the initial document, and a failed write keeps the in-memory state (the
// next successful Update persists it again).
type Store[T any] struct {
	path string
	log  logx.Logger

	mu  sync.Mutex
	doc T
}

// Open loads the document at path. A missing file is initialized from init()
// and persisted immediately; a corrupt file is logged and replaced in memory
// (not on disk) by the initial document.
func Open[T any](path string, log logx.Logger, init func() T) (*Store[T], error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Store[T]{path: path, log: log}

	b, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.doc = init()
		if err := s.saveLocked(); err != nil {
			return nil, err
		}
		log.Info("document initialized", logx.String("path", path))
	case err != nil:
		return nil, err
	default:
		if uerr := json.Unmarshal(b, &s.doc); uerr != nil {
			log.Error("document unreadable; starting from empty state",
				logx.String("path", path), logx.Err(uerr))
			s.doc = init()
		}
	}
	return s, nil
}

// View runs fn with read access to the document. fn must not retain references
// to slices or maps inside the document past its return.
func (s *Store[T]) View(fn func(doc *T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.doc)
}

// Update runs fn with write access and persists the result. If fn returns an
// error, persistence is skipped and the error is returned; fn is expected to
// validate before mutating. A failed disk write is logged and absorbed: the
// mutation stays visible in memory.
func (s *Store[T]) Update(fn func(doc *T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.doc); err != nil {
		return err
	}
	if st, ok := any(&s.doc).(Stamped); ok {
		st.SetLastUpdated(time.Now())
	}
	if err := s.saveLocked(); err != nil {
		s.log.Warn("document write failed; keeping in-memory state",
			logx.String("path", s.path), logx.Err(err))
	}
	return nil
}

func (s *Store[T]) saveLocked() error {
	b, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
