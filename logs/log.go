package logs

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type RequestMeta struct {
	Status    int
	Path      string
	Domain    string
	Agent     string
	Method    string
	RemoteIP  string
	Query     string
	RequestID string
}

// OtelLogging writes to zap and mirrors each message onto the given span.
// Every method accepts a nil span.
type OtelLogging interface {
	Debug(span trace.Span, args ...interface{})
	Debugf(span trace.Span, template string, args ...interface{})
	Info(span trace.Span, args ...interface{})
	Infof(span trace.Span, template string, args ...interface{})
	Warn(span trace.Span, args ...interface{})
	Warnf(span trace.Span, template string, args ...interface{})
	Error(span trace.Span, args ...interface{})
	Errorf(span trace.Span, template string, args ...interface{})
	Fatal(span trace.Span, args ...interface{})
	LogHttpResponse(span trace.Span, meta RequestMeta)
	LogJson(span trace.Span, label string, value interface{})
}

type otelLog struct {
	logger *zap.Logger
}

func NewOtelLogging(zapLogger *zap.Logger) OtelLogging {
	return &otelLog{logger: zapLogger}
}

// NewNop returns a logger that discards everything.
func NewNop() OtelLogging {
	return NewOtelLogging(zap.NewNop())
}

func (l *otelLog) logSpan(span trace.Span, level, message string) []zap.Field {
	if span == nil || !span.SpanContext().IsValid() {
		return nil
	}
	traceID := span.SpanContext().TraceID().String()
	spanID := span.SpanContext().SpanID().String()

	span.SetAttributes(
		attribute.String("log.level", level),
		attribute.String("log.message", message),
	)
	return []zap.Field{zap.String("trace_id", traceID), zap.String("span_id", spanID)}
}

func (l *otelLog) LogJson(span trace.Span, label string, value interface{}) {
	// keeps the span's log.* attributes from a disabled debug entry
	if !l.logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		l.logger.Error("Failed to marshal JSON",
			zap.String("label", label),
			zap.Error(err),
		)
		return
	}

	fields := l.logSpan(span, "DEBUG", label)
	l.logger.Debug("Logging JSON", append(fields, zap.String(label, string(jsonBytes)))...)
}

func (l *otelLog) LogHttpResponse(span trace.Span, meta RequestMeta) {
	spanAttrs := []attribute.KeyValue{
		attribute.Int("http.status_code", meta.Status),
	}
	logFields := []zap.Field{
		zap.Int("http_status", meta.Status),
	}
	add := func(spanKey, logKey, value string) {
		if value == "" {
			return
		}
		spanAttrs = append(spanAttrs, attribute.String(spanKey, value))
		logFields = append(logFields, zap.String(logKey, value))
	}
	add("http.path", "http_path", meta.Path)
	add("http.domain", "http_domain", meta.Domain)
	add("http.user_agent", "user_agent", meta.Agent)
	add("http.method", "http_method", meta.Method)
	add("http.remote_ip", "remote_ip", meta.RemoteIP)
	add("http.query_params", "query_params", meta.Query)
	add("http.request_id", "request_id", meta.RequestID)

	if span != nil {
		span.SetAttributes(spanAttrs...)
		if sc := span.SpanContext(); sc.IsValid() {
			logFields = append(logFields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
	}

	log := l.logger.With(logFields...)

	switch {
	case meta.Status >= 500:
		log.Error("Internal Server Error occurred")
	case meta.Status >= 400:
		log.Warn("Client error response recorded")
	case meta.Status >= 300:
		log.Info("Redirection response recorded")
	case meta.Status >= 200:
		log.Info("Successful response recorded")
	default:
		log.Info("Unexpected status code recorded")
	}
}

func BuildRequestMeta(r *http.Request, status int) RequestMeta {
	domain := r.URL.Hostname()
	if domain == "" {
		domain = r.Host
	}
	return RequestMeta{
		Status:    status,
		Path:      r.URL.Path,
		Domain:    domain,
		Agent:     r.UserAgent(),
		Method:    r.Method,
		RemoteIP:  r.RemoteAddr,
		Query:     r.URL.RawQuery,
		RequestID: r.Header.Get("X-Request-ID"),
	}
}

func (l *otelLog) Debug(span trace.Span, args ...interface{}) {
	msg := fmt.Sprint(args...)
	l.logger.Debug(msg, l.logSpan(span, "DEBUG", msg)...)
}

func (l *otelLog) Debugf(span trace.Span, template string, args ...interface{}) {
	l.Debug(span, fmt.Sprintf(template, args...))
}

func (l *otelLog) Info(span trace.Span, args ...interface{}) {
	msg := fmt.Sprint(args...)
	l.logger.Info(msg, l.logSpan(span, "INFO", msg)...)
}

func (l *otelLog) Infof(span trace.Span, template string, args ...interface{}) {
	l.Info(span, fmt.Sprintf(template, args...))
}

func (l *otelLog) Warn(span trace.Span, args ...interface{}) {
	msg := fmt.Sprint(args...)
	l.logger.Warn(msg, l.logSpan(span, "WARN", msg)...)
}

func (l *otelLog) Warnf(span trace.Span, template string, args ...interface{}) {
	l.Warn(span, fmt.Sprintf(template, args...))
}

func (l *otelLog) Error(span trace.Span, args ...interface{}) {
	msg := fmt.Sprint(args...)
	l.logger.Error(msg, append(l.logSpan(span, "ERROR", msg), zap.Stack("stacktrace"))...)
}

func (l *otelLog) Errorf(span trace.Span, template string, args ...interface{}) {
	l.Error(span, fmt.Sprintf(template, args...))
}

func (l *otelLog) Fatal(span trace.Span, args ...interface{}) {
	msg := fmt.Sprint(args...)
	l.logger.Fatal(msg, append(l.logSpan(span, "FATAL", msg), zap.Stack("stacktrace"))...)
}
