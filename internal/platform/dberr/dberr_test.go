// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "Account", "find"))

	notFound := apperr.As(dberr.Wrap(pgx.ErrNoRows, "Account", "find"))
	require.NotNil(t, notFound)
	assert.Equal(t, apperr.CodeNotFound, notFound.Code)

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "uq_account_email"}
	conflict := apperr.As(dberr.Wrap(unique, "Account", "insert"))
	require.NotNil(t, conflict)
	assert.Equal(t, apperr.CodeConflict, conflict.Code)
	assert.ErrorIs(t, conflict, unique)

	internal := apperr.As(dberr.Wrap(errors.New("conn reset"), "Account", "insert"))
	require.NotNil(t, internal)
	assert.Equal(t, apperr.CodeInternal, internal.Code)
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_account_username"}

	assert.True(t, dberr.IsUniqueViolation(err, ""))
	assert.True(t, dberr.IsUniqueViolation(err, "uq_account_username"))
	assert.False(t, dberr.IsUniqueViolation(err, "uq_account_email"))
	assert.False(t, dberr.IsUniqueViolation(errors.New("x"), ""))
}
