// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores and retrieves the per-request values shared by the
// middleware chain and the handlers: request ID, logger, auth claims and the
// resolved client origin.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/shopii/internal/platform/network"
	"github.com/taibuivan/shopii/internal/platform/sec"
)

// key is unexported so no other package can collide with these entries.
type key int

const (
	keyRequestID key = iota
	keyLogger
	keyUser
	keyOrigin
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(keyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithAuthUser returns a new context with the provided auth claims attached.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, keyUser, user)
}

// GetAuthUser retrieves the [*sec.AuthClaims] from the [context.Context].
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(keyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// # Network Origin

// WithOrigin returns a new context carrying the resolved client origin.
func WithOrigin(ctx context.Context, origin network.Origin) context.Context {
	return context.WithValue(ctx, keyOrigin, origin)
}

// GetOrigin retrieves the client origin from the context.
// The second result is false when no origin was resolved for this request.
func GetOrigin(ctx context.Context) (network.Origin, bool) {
	origin, ok := ctx.Value(keyOrigin).(network.Origin)
	return origin, ok
}
