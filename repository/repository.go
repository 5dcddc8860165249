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
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/go-playground/validator/v10"
	"github.com/raywall/kudos-ledger/dyndb"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	ErrUserNotFound   = fmt.Errorf("user %w", dyndb.ErrNotFound)
	ErrWalletNotFound = fmt.Errorf("wallet %w", dyndb.ErrNotFound)
	ErrRewardNotFound = fmt.Errorf("reward %w", dyndb.ErrNotFound)
	ErrTokenNotFound  = fmt.Errorf("token %w", dyndb.ErrNotFound)

	// ErrTokenAlreadyUsed is returned when a payment token lost the
	// consume race or was already processed.
	ErrTokenAlreadyUsed = fmt.Errorf("token already used: %w", dyndb.ErrConditionFailed)
	// ErrAlreadyExists is returned by conditional creates.
	ErrAlreadyExists = fmt.Errorf("item already exists: %w", dyndb.ErrConditionFailed)
	// ErrWalletImmutable is returned when a save would move a user to another wallet.
	ErrWalletImmutable = errors.New("wallet id is immutable")
)

// BeforeSaveHook runs after struct validation and before the write. It may
// mutate the item or abort the save by returning an error.
type BeforeSaveHook[T any] func(ctx context.Context, item *T) error

// Repository is the generic record layer over a dyndb.Store: validated
// writes, key lookups and index reads through the pagination engine.
type Repository[T any] struct {
	store    dyndb.Store[T]
	valid    *validator.Validate
	hooks    []BeforeSaveHook[T]
	maxPages int
}

// Option configures a Repository.
type Option[T any] func(*Repository[T])

// WithHook registers a BeforeSaveHook.
func WithHook[T any](fn BeforeSaveHook[T]) Option[T] {
	return func(r *Repository[T]) { r.hooks = append(r.hooks, fn) }
}

// WithMaxPages bounds exhaustive reads. Zero means unbounded.
func WithMaxPages[T any](n int) Option[T] {
	return func(r *Repository[T]) { r.maxPages = n }
}

// WithValidator replaces the default validator.
func WithValidator[T any](v *validator.Validate) Option[T] {
	return func(r *Repository[T]) { r.valid = v }
}

// New wraps store with validation and index helpers.
func New[T any](store dyndb.Store[T], opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		store: store,
		valid: validator.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store exposes the underlying store for operations the repository does not wrap.
func (r *Repository[T]) Store() dyndb.Store[T] {
	return r.store
}

// Get retrieves an item by its hash key. Returns ErrInvalidInput for an empty key.
func (r *Repository[T]) Get(ctx context.Context, pk any) (*T, error) {
	if isEmpty(pk) {
		return nil, ErrInvalidInput
	}
	return r.store.Get(ctx, pk, nil)
}

// Save validates the item, runs the hooks and persists it (upsert).
func (r *Repository[T]) Save(ctx context.Context, item *T) error {
	return r.SaveIf(ctx, item)
}

// SaveIf is Save guarded by conditions. A false condition surfaces as
// dyndb.ErrConditionFailed.
func (r *Repository[T]) SaveIf(ctx context.Context, item *T, cond ...expression.ConditionBuilder) error {
	if item == nil {
		return ErrInvalidInput
	}
	if err := r.valid.StructCtx(ctx, item); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for _, hook := range r.hooks {
		if err := hook(ctx, item); err != nil {
			return err
		}
	}
	return r.store.Put(ctx, *item, cond...)
}

// FindOne returns the first match of field = value on index, reading only
// the first page. Returns dyndb.ErrNotFound when nothing matches.
func (r *Repository[T]) FindOne(ctx context.Context, index, field string, value any) (*T, error) {
	if isEmpty(value) {
		return nil, ErrInvalidInput
	}
	items, err := dyndb.First(ctx, r.fetch(index, field, value, 0))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, dyndb.ErrNotFound
	}
	return &items[0], nil
}

// ListAll returns every match of field = value on index.
func (r *Repository[T]) ListAll(ctx context.Context, index, field string, value any) ([]T, error) {
	return r.All(ctx, r.fetch(index, field, value, 0))
}

// All drains fetch honoring the repository page limit.
func (r *Repository[T]) All(ctx context.Context, fetch dyndb.PageFunc[T]) ([]T, error) {
	return dyndb.AllWith(ctx, fetch, dyndb.AllOptions{MaxPages: r.maxPages})
}

// Page reads a single page of field = value on index starting at cursor.
func (r *Repository[T]) Page(ctx context.Context, index, field string, value any, limit int32, cursor dyndb.Cursor) (dyndb.Page[T], error) {
	return dyndb.One(ctx, r.fetch(index, field, value, limit), cursor)
}

func (r *Repository[T]) fetch(index, field string, value any, limit int32) dyndb.PageFunc[T] {
	return func(ctx context.Context, cursor dyndb.Cursor) (dyndb.Page[T], error) {
		return r.store.QueryPage(ctx, index, field, value, limit, cursor)
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// notFound maps a generic not-found from the store to the domain error.
func notFound(err, domain error) error {
	if errors.Is(err, dyndb.ErrNotFound) && !errors.Is(err, domain) {
		return domain
	}
	return err
}
