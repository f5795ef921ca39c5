// Package events delivers change notifications raised by the oracle and the
// router to external observers. Publishing never fails the operation that
// raised the event.
package events

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/model"
)

// Sink receives change notifications
type Sink interface {
	Publish(event model.Event)
}

// Discard drops every event
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(model.Event) {}

// LogSink writes each event as a structured log line
type LogSink struct {
	logger logrus.FieldLogger
}

// NewLogSink creates a sink logging through logger, or the standard logger when nil
func NewLogSink(logger logrus.FieldLogger) *LogSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogSink{logger: logger}
}

// Publish logs the event at info level
func (s *LogSink) Publish(event model.Event) {
	fields := logrus.Fields{"event": string(event.Kind)}
	for k, v := range event.Fields {
		fields[k] = v
	}
	s.logger.WithFields(fields).Info("Settlement event")
}

// Recorder keeps every published event in memory
type Recorder struct {
	mu     sync.Mutex
	events []model.Event
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish appends the event
func (r *Recorder) Publish(event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in publish order
func (r *Recorder) Kinds() []model.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// Fanout publishes to several sinks in order
type Fanout []Sink

// Publish forwards the event to every sink
func (f Fanout) Publish(event model.Event) {
	for _, s := range f {
		if s != nil {
			s.Publish(event)
		}
	}
}
