package handlers

import (
	"errors"
	"net/http"

	"primecheck/logs"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func HelloHandler(l logs.OtelLogging) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		l.Info(span, "hello")
		writeText(w, http.StatusOK, "hello")
	}
}

func HelloNameHandler(l logs.OtelLogging) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		span := trace.SpanFromContext(r.Context())
		l.Info(span, "hello: "+name)
		span.SetAttributes(attribute.String("name", name))
		writeText(w, http.StatusOK, "hello: "+name)
	}
}

func SayHelloHandler(l logs.OtelLogging) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		span := trace.SpanFromContext(r.Context())
		l.Info(span, "sayhello: "+name)

		span.SetAttributes(
			attribute.String("event", name),
			attribute.String("message", "this is a log message for name "+name),
		)

		response := formatGreeting(span, name)
		span.SetAttributes(attribute.String("response", response))

		writeText(w, http.StatusOK, response)
	}
}

func formatGreeting(span trace.Span, name string) string {
	span.AddEvent("formatGreeting", trace.WithAttributes(attribute.String("text", name)))
	response := "hello: " + name
	span.AddEvent("done", trace.WithAttributes(attribute.String("response", response)))
	return response
}

func Simulate2xxHandler(l logs.OtelLogging) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l.Info(trace.SpanFromContext(r.Context()), "2xx received")
		writeText(w, http.StatusOK, "Got 2xx Response")
	}
}

const simulatedFailureBody = "Exception message"

var errSimulated = errors.New("simulated server error")

func Simulate5xxHandler(l logs.OtelLogging) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		l.Info(span, "5xx received")

		span.RecordError(errSimulated)
		span.SetStatus(codes.Error, errSimulated.Error())
		l.Error(span, "simulated failure: ", errSimulated)

		writeText(w, http.StatusInternalServerError, simulatedFailureBody)
	}
}

func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "ok")
	}
}
