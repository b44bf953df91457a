package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"
)

// requestEntry is one handled HTTP request.
type requestEntry struct {
	Time       time.Time `json:"time"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// requestLog keeps a bounded in-memory trail of handled requests with an
// optional persistent sink.
type requestLog struct {
	mu      sync.Mutex
	entries []requestEntry
	max     int
	sink    requestSink
}

type requestSink interface {
	Write(entry requestEntry) error
}

func newRequestLog(max int, sink requestSink) *requestLog {
	if max <= 0 {
		max = 200
	}
	return &requestLog{max: max, sink: sink}
}

func (l *requestLog) add(entry requestEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	if l.sink != nil {
		// Persistence is best effort; the request has already been served.
		_ = l.sink.Write(entry)
	}
}

func (l *requestLog) listLimit(limit int) []requestEntry {
	if limit <= 0 || limit > l.max {
		limit = l.max
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := l.entries
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]requestEntry, len(entries))
	copy(out, entries)
	return out
}

func (l *requestLog) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &auditStatusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		l.add(requestEntry{
			Time:       time.Now().UTC(),
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

type auditStatusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *auditStatusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// fileRequestSink appends request entries as JSONL.
type fileRequestSink struct {
	mu   sync.Mutex
	file *os.File
}

func newFileRequestSink(path string) (requestSink, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	return &fileRequestSink{file: f}, nil
}

func (s *fileRequestSink) Write(entry requestEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.file.Write(append(b, '\n'))
	return err
}
