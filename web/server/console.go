package server

import (
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// ConsoleMessage represents a log entry forwarded to web clients
type ConsoleMessage struct {
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"` // "debug", "info", "warn", "error"
	Logger    string         `json:"logger,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Console fans log entries out to subscribed clients. Slow subscribers miss
// messages rather than blocking the logger.
type Console struct {
	mu   sync.Mutex
	subs map[chan ConsoleMessage]struct{}
}

// NewConsole creates a console with no subscribers
func NewConsole() *Console {
	return &Console{subs: make(map[chan ConsoleMessage]struct{})}
}

// Subscribe returns a message channel and a function that cancels it
func (c *Console) Subscribe(buffer int) (<-chan ConsoleMessage, func()) {
	ch := make(chan ConsoleMessage, buffer)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// Publish sends msg to every subscriber without blocking
func (c *Console) Publish(msg ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- msg:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// Core returns a zap core that publishes entries at or above level
func (c *Console) Core(level zapcore.LevelEnabler) zapcore.Core {
	return &consoleCore{LevelEnabler: level, console: c}
}

type consoleCore struct {
	zapcore.LevelEnabler
	console *Console
	fields  []zapcore.Field
}

func (cc *consoleCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *cc
	clone.fields = append(append([]zapcore.Field(nil), cc.fields...), fields...)
	return &clone
}

func (cc *consoleCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if cc.Enabled(ent.Level) {
		return ce.AddCore(ent, cc)
	}
	return ce
}

func (cc *consoleCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	msg := ConsoleMessage{
		Message:   ent.Message,
		Timestamp: ent.Time,
		Level:     ent.Level.String(),
		Logger:    ent.LoggerName,
	}

	if len(cc.fields)+len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range cc.fields {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}
		msg.Fields = enc.Fields
	}

	cc.console.Publish(msg)
	return nil
}

func (cc *consoleCore) Sync() error { return nil }
