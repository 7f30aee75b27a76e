// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package telemetry

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName identifies spans created by the HTTP layer.
	TracerName = "shopii-http"

	// TraceIDHeader echoes the trace id back to the caller.
	TraceIDHeader = "X-Trace-ID"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware opens a server span per request and names it after the chi route pattern.
func Middleware(provider trace.TracerProvider) func(http.Handler) http.Handler {
	tracer := provider.Tracer(TracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(request.Context(), propagation.HeaderCarrier(request.Header))

			ctx, span := tracer.Start(ctx, request.Method+" "+request.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPMethod(request.Method),
					semconv.NetHostName(request.Host),
					semconv.UserAgentOriginal(request.UserAgent()),
				),
			)
			defer span.End()

			if span.SpanContext().HasTraceID() {
				writer.Header().Set(TraceIDHeader, span.SpanContext().TraceID().String())
			}

			recorder := &statusWriter{ResponseWriter: writer, status: http.StatusOK}
			next.ServeHTTP(recorder, request.WithContext(ctx))

			// The route pattern is only known once chi has matched the request.
			if routeCtx := chi.RouteContext(ctx); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					span.SetName(request.Method + " " + pattern)
					span.SetAttributes(semconv.HTTPRoute(pattern))
				}
			}

			span.SetAttributes(semconv.HTTPStatusCode(recorder.status))
			if recorder.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(recorder.status))
				span.SetAttributes(attribute.Bool("error", true))
			}
		})
	}
}
