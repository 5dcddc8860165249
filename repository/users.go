// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/raywall/kudos-ledger/dyndb"
)

// UserRepository resolves users by email and by session token.
type UserRepository struct {
	repo       *Repository[User]
	emailIndex string
	tokenIndex string
}

func NewUserRepository(store dyndb.Store[User], emailIndex, tokenIndex string, opts ...Option[User]) *UserRepository {
	opts = append(opts, WithHook(immutableWallet(store)))
	return &UserRepository{
		repo:       New(store, opts...),
		emailIndex: emailIndex,
		tokenIndex: tokenIndex,
	}
}

// FindByEmail reads the email index and, on a miss, the primary key with a
// consistent read. The index lags behind recent writes.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := r.repo.FindOne(ctx, r.emailIndex, "email", email)
	if errors.Is(err, dyndb.ErrNotFound) {
		u, err = r.repo.Get(ctx, email)
	}
	return u, notFound(err, ErrUserNotFound)
}

func (r *UserRepository) FindByToken(ctx context.Context, token string) (*User, error) {
	u, err := r.repo.FindOne(ctx, r.tokenIndex, "token", token)
	return u, notFound(err, ErrUserNotFound)
}

func (r *UserRepository) Save(ctx context.Context, u *User) error {
	return r.repo.Save(ctx, u)
}

// Create stores a new user. Returns ErrAlreadyExists when the email is taken.
func (r *UserRepository) Create(ctx context.Context, u *User) error {
	err := r.repo.SaveIf(ctx, u, expression.AttributeNotExists(expression.Name("email")))
	if errors.Is(err, dyndb.ErrConditionFailed) {
		return ErrAlreadyExists
	}
	return err
}

// immutableWallet rejects a save that would move an existing user to a
// different wallet.
func immutableWallet(store dyndb.Store[User]) BeforeSaveHook[User] {
	return func(ctx context.Context, u *User) error {
		existing, err := store.Get(ctx, u.Email, nil)
		if errors.Is(err, dyndb.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if existing.WalletID != "" && existing.WalletID != u.WalletID {
			return ErrWalletImmutable
		}
		return nil
	}
}
