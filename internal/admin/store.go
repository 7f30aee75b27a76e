// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"time"

	"github.com/taibuivan/shopii/internal/users/auth"
)

// # Data Access

// AccountStore is the subset of [auth.AccountRepository] used for single-account edits.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*auth.Account, error)
	FindByEmail(ctx context.Context, email string) (*auth.Account, error)
	FindByUsername(ctx context.Context, username string) (*auth.Account, error)
	Create(ctx context.Context, account *auth.Account) error
	Update(ctx context.Context, account *auth.Account) error
}

// UserRepository covers the directory-wide queries of the back office.
type UserRepository interface {

	/*
		List returns a page of non-admin accounts matching filter, newest first.

		Returns:
		  - []*auth.Account: The page
		  - int: Total matches across all pages
		  - error: Database failures
	*/
	List(ctx context.Context, filter Filter, limit, offset int) ([]*auth.Account, int, error)

	// Delete removes an account; its trusted devices go with it.
	Delete(ctx context.Context, id string) error

	// Report aggregates account counts, with "new" meaning created at or after since.
	Report(ctx context.Context, since time.Time) (*Report, error)
}
