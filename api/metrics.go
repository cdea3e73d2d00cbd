package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	notesEventName     = "notes.request"
	notesEventDomain   = "notes"
	observabilityEvent = "observability.event"
	tracerName         = "notes-api/api"
)

// noteRequestMetrics collects per-request timings and counters and emits them
// as a single observability event when the request finishes. One instance is
// created per handler invocation and must not be shared across requests.
type noteRequestMetrics struct {
	logger    *log.Logger
	span      trace.Span
	route     string
	operation string
	start     time.Time

	decodeDuration time.Duration
	storeDuration  time.Duration
	encodeDuration time.Duration

	notesReturned int
	countNotes    bool
	errorStage    string
}

// newNoteRequestMetrics starts the request span and returns the context that
// carries it so downstream calls stay correlated.
func newNoteRequestMetrics(ctx context.Context, logger *log.Logger, route, operation string) (*noteRequestMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, "notes."+operation)
	return &noteRequestMetrics{
		logger:    logger,
		span:      span,
		route:     route,
		operation: operation,
		start:     time.Now(),
	}, spanCtx
}

func (m *noteRequestMetrics) ObserveDecode(d time.Duration) {
	if d > 0 {
		m.decodeDuration = d
	}
}

func (m *noteRequestMetrics) ObserveStore(d time.Duration) {
	if d > 0 {
		m.storeDuration = d
	}
}

func (m *noteRequestMetrics) ObserveEncode(d time.Duration) {
	if d > 0 {
		m.encodeDuration = d
	}
}

func (m *noteRequestMetrics) SetNotesReturned(n int) {
	if n < 0 {
		n = 0
	}
	m.notesReturned = n
	m.countNotes = true
}

func (m *noteRequestMetrics) SetErrorStage(stage string) {
	m.errorStage = stage
}

// Log finishes the span and writes the observability event. It must be called
// exactly once, after the response status is known.
func (m *noteRequestMetrics) Log(status int, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("http.route", m.route),
		attribute.Int("http.status_code", status),
		attribute.String("notes.operation", m.operation),
		attribute.Float64("notes.total_ms", durationToMillis(time.Since(m.start))),
	}
	if m.decodeDuration > 0 {
		attrs = append(attrs, attribute.Float64("notes.decode_ms", durationToMillis(m.decodeDuration)))
	}
	if m.storeDuration > 0 {
		attrs = append(attrs, attribute.Float64("notes.store_ms", durationToMillis(m.storeDuration)))
	}
	if m.encodeDuration > 0 {
		attrs = append(attrs, attribute.Float64("notes.encode_ms", durationToMillis(m.encodeDuration)))
	}
	if m.countNotes {
		attrs = append(attrs, attribute.Int("notes.returned", m.notesReturned))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("notes.error_stage", m.errorStage))
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error.message", err.Error()))
	}

	severityText, severityNumber := severityForStatus(status, err)

	m.span.SetAttributes(attrs...)
	eventAttrs := append(attrs,
		attribute.String("event.name", notesEventName),
		attribute.String("event.domain", notesEventDomain),
		attribute.String("severity_text", severityText),
	)
	m.span.AddEvent(observabilityEvent, trace.WithAttributes(eventAttrs...))
	if severityText == "ERROR" {
		description := http.StatusText(status)
		if err != nil {
			description = err.Error()
		}
		m.span.SetStatus(codes.Error, description)
	} else {
		m.span.SetStatus(codes.Ok, "")
	}
	m.span.End()

	fields := log.Fields{
		"event.name":      notesEventName,
		"event.domain":    notesEventDomain,
		"attributes":      attributesToFields(attrs),
		"severity_text":   severityText,
		"severity_number": severityNumber,
	}
	spanCtx := m.span.SpanContext()
	if spanCtx.HasTraceID() {
		fields["trace_id"] = spanCtx.TraceID().String()
	}
	if spanCtx.HasSpanID() {
		fields["span_id"] = spanCtx.SpanID().String()
	}

	entry := m.logger.WithFields(fields)
	switch severityText {
	case "ERROR":
		entry.Error(observabilityEvent)
	case "WARN":
		entry.Warn(observabilityEvent)
	default:
		entry.Info(observabilityEvent)
	}
}

func severityForStatus(status int, err error) (string, int) {
	switch {
	case err != nil || status >= http.StatusInternalServerError:
		return "ERROR", 17
	case status >= http.StatusBadRequest:
		return "WARN", 13
	default:
		return "INFO", 9
	}
}

func attributesToFields(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
