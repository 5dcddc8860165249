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
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/kudos-ledger/dyndb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedQuery serves items in pages of size per call, keyed by offset.
func pagedQuery[T any](items []T, size int, calls *int) func(context.Context, string, string, any, int32, dyndb.Cursor) (dyndb.Page[T], error) {
	return func(_ context.Context, _, _ string, _ any, _ int32, c dyndb.Cursor) (dyndb.Page[T], error) {
		*calls++
		start := 0
		if c != nil {
			start, _ = strconv.Atoi(c["offset"].(*types.AttributeValueMemberN).Value)
		}
		end := min(start+size, len(items))
		page := dyndb.Page[T]{Items: append([]T{}, items[start:end]...)}
		if end < len(items) {
			page.Next = dyndb.Cursor{"offset": &types.AttributeValueMemberN{Value: strconv.Itoa(end)}}
		}
		return page, nil
	}
}

func TestRepository_Get(t *testing.T) {
	store := &dyndb.MockStore[Wallet]{
		GetFn: func(_ context.Context, pk, _ any) (*Wallet, error) {
			return &Wallet{WalletID: pk.(string), Balance: 5}, nil
		},
	}
	repo := New[Wallet](store)

	t.Run("should return ErrInvalidInput when key is empty", func(t *testing.T) {
		_, err := repo.Get(context.Background(), "")
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = repo.Get(context.Background(), nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("should return the item", func(t *testing.T) {
		w, err := repo.Get(context.Background(), "w1")
		require.NoError(t, err)
		assert.Equal(t, int64(5), w.Balance)
	})
}

func TestRepository_Save(t *testing.T) {
	var saved []Wallet
	var conds int
	store := &dyndb.MockStore[Wallet]{
		PutFn: func(_ context.Context, w Wallet, cond ...expression.ConditionBuilder) error {
			saved = append(saved, w)
			conds = len(cond)
			return nil
		},
	}

	t.Run("should reject invalid items", func(t *testing.T) {
		repo := New[Wallet](store)

		err := repo.Save(context.Background(), &Wallet{WalletID: "w1", Balance: -1})
		assert.ErrorIs(t, err, ErrInvalidInput)

		err = repo.Save(context.Background(), nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, saved)
	})

	t.Run("hooks can mutate and abort", func(t *testing.T) {
		boom := errors.New("blocked")
		repo := New[Wallet](store,
			WithHook[Wallet](func(_ context.Context, w *Wallet) error {
				w.Balance += 1
				return nil
			}),
			WithHook[Wallet](func(_ context.Context, w *Wallet) error {
				if w.WalletID == "blocked" {
					return boom
				}
				return nil
			}),
		)

		require.NoError(t, repo.Save(context.Background(), &Wallet{WalletID: "w1"}))
		require.Len(t, saved, 1)
		assert.Equal(t, int64(1), saved[0].Balance)

		err := repo.Save(context.Background(), &Wallet{WalletID: "blocked"})
		assert.ErrorIs(t, err, boom)
		assert.Len(t, saved, 1)
	})

	t.Run("SaveIf forwards conditions", func(t *testing.T) {
		repo := New[Wallet](store)

		err := repo.SaveIf(context.Background(), &Wallet{WalletID: "w2"},
			expression.AttributeNotExists(expression.Name("walletId")))
		require.NoError(t, err)
		assert.Equal(t, 1, conds)
	})
}

func TestRepository_IndexReads(t *testing.T) {
	items := []Wallet{{WalletID: "a"}, {WalletID: "b"}, {WalletID: "c"}, {WalletID: "d"}, {WalletID: "e"}}

	t.Run("FindOne reads only the first page", func(t *testing.T) {
		calls := 0
		repo := New[Wallet](&dyndb.MockStore[Wallet]{QueryPageFn: pagedQuery(items, 2, &calls)})

		w, err := repo.FindOne(context.Background(), "idx", "walletId", "a")

		require.NoError(t, err)
		assert.Equal(t, "a", w.WalletID)
		assert.Equal(t, 1, calls)
	})

	t.Run("FindOne absent", func(t *testing.T) {
		calls := 0
		repo := New[Wallet](&dyndb.MockStore[Wallet]{QueryPageFn: pagedQuery([]Wallet{}, 2, &calls)})

		_, err := repo.FindOne(context.Background(), "idx", "walletId", "zzz")
		assert.ErrorIs(t, err, dyndb.ErrNotFound)

		_, err = repo.FindOne(context.Background(), "idx", "walletId", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("ListAll drains every page", func(t *testing.T) {
		calls := 0
		repo := New[Wallet](&dyndb.MockStore[Wallet]{QueryPageFn: pagedQuery(items, 2, &calls)})

		all, err := repo.ListAll(context.Background(), "idx", "walletId", "x")

		require.NoError(t, err)
		assert.Equal(t, items, all)
		assert.Equal(t, 3, calls)
	})

	t.Run("ListAll honors MaxPages", func(t *testing.T) {
		calls := 0
		repo := New[Wallet](&dyndb.MockStore[Wallet]{QueryPageFn: pagedQuery(items, 2, &calls)}, WithMaxPages[Wallet](2))

		_, err := repo.ListAll(context.Background(), "idx", "walletId", "x")
		assert.ErrorIs(t, err, dyndb.ErrTooManyPages)
	})

	t.Run("Page surfaces the cursor", func(t *testing.T) {
		calls := 0
		repo := New[Wallet](&dyndb.MockStore[Wallet]{QueryPageFn: pagedQuery(items, 2, &calls)})

		page, err := repo.Page(context.Background(), "idx", "walletId", "x", 2, nil)
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		require.True(t, page.HasNext())

		page, err = repo.Page(context.Background(), "idx", "walletId", "x", 2, page.Next)
		require.NoError(t, err)
		assert.Equal(t, "c", page.Items[0].WalletID)
		assert.Equal(t, 2, calls)
	})
}
