package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileSink writes to server-YYYY-MM-DD.log under dir. It switches to a new
// file when the day changes or the current file exceeds maxSize, and prunes
// files older than maxAge days whenever it opens a new one.
type fileSink struct {
	mu      sync.Mutex
	dir     string
	maxSize int64
	maxAge  int
	day     string
	file    *os.File
	size    int64
	now     func() time.Time
}

func openFileSink(dir string, maxSize int64, maxAge int) (*fileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	s := &fileSink{dir: dir, maxSize: maxSize, maxAge: maxAge, now: time.Now}
	if err := s.rotate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileSink) path(day string) string {
	return filepath.Join(s.dir, fmt.Sprintf("server-%s.log", day))
}

// rotate must be called with mu held.
func (s *fileSink) rotate() error {
	day := s.now().Format("2006-01-02")
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
		if day == s.day {
			// Same day and over size: archive the full file.
			archived := filepath.Join(s.dir, fmt.Sprintf("server-%s-%d.log", day, s.now().Unix()))
			if err := os.Rename(s.path(day), archived); err != nil {
				return fmt.Errorf("failed to archive log file: %w", err)
			}
		}
	}

	file, err := os.OpenFile(s.path(day), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}

	s.file = file
	s.day = day
	s.size = info.Size()
	s.prune()
	return nil
}

func (s *fileSink) prune() {
	if s.maxAge <= 0 {
		return
	}
	files, _ := filepath.Glob(filepath.Join(s.dir, "server-*.log"))
	cutoff := time.Duration(s.maxAge) * 24 * time.Hour
	for _, f := range files {
		if f == s.path(s.day) {
			continue
		}
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if s.now().Sub(info.ModTime()) > cutoff {
			_ = os.Remove(f)
		}
	}
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now().Format("2006-01-02") != s.day || (s.maxSize > 0 && s.size+int64(len(p)) > s.maxSize && s.size > 0) {
		if err := s.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := s.file.Write(p)
	s.size += int64(n)
	return n, err
}

func (s *fileSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	return s.file.Sync()
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
