package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notice is one user-visible toast.
type Notice struct {
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	At       time.Time `json:"at"`
}

// Sink receives toasts. Notify is fire-and-forget: implementations must not
// block the caller on delivery and report their own failures through logs.
type Sink interface {
	Notify(ctx context.Context, n Notice)
}

func Success(message string) Notice {
	return Notice{Title: "Success", Message: message, Severity: SeveritySuccess, At: time.Now().UTC()}
}

func Error(title, message string) Notice {
	if title == "" {
		title = "Error"
	}
	return Notice{Title: title, Message: message, Severity: SeverityError, At: time.Now().UTC()}
}

// LogSink writes toasts to slog.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	if n.Severity == SeverityError {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "notification", "title", n.Title, "message", n.Message, "severity", n.Severity)
}

// MemorySink keeps the most recent toasts until a presenter drains them.
type MemorySink struct {
	mu      sync.Mutex
	notices []Notice
	limit   int
}

func NewMemorySink(limit int) *MemorySink {
	if limit <= 0 {
		limit = 100
	}
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Notify(_ context.Context, n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	if over := len(s.notices) - s.limit; over > 0 {
		s.notices = append([]Notice(nil), s.notices[over:]...)
	}
}

// Drain returns buffered toasts oldest first and empties the buffer.
func (s *MemorySink) Drain() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// Fanout forwards each toast to every sink in order.
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, n Notice) {
	for _, s := range f {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}
