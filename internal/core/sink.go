package core

import (
	"sync"

	"runepkg/internal/ports"
)

// SyncLineSink serializes calls to a line sink and a progress sink so
// output from concurrent producers never interleaves mid-line.
type SyncLineSink struct {
	mu       sync.Mutex
	line     ports.LineSink
	progress ProgressSink
}

func NewSyncLineSink(line ports.LineSink, progress ProgressSink) *SyncLineSink {
	return &SyncLineSink{line: line, progress: progress}
}

func (s *SyncLineSink) Line(line string) {
	if s == nil || s.line == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.line(line)
}

func (s *SyncLineSink) Progress(current int, total int) {
	if s == nil || s.progress == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress(current, total)
}
