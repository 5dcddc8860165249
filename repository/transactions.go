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
	"time"

	"github.com/raywall/kudos-ledger/dyndb"
	"golang.org/x/sync/errgroup"
)

// TransactionIndexes names the secondary indexes of the transactions table.
type TransactionIndexes struct {
	From     string
	To       string
	ByStatus string
}

type TransactionRepository struct {
	repo    *Repository[Transaction]
	indexes TransactionIndexes
}

func NewTransactionRepository(store dyndb.Store[Transaction], indexes TransactionIndexes, opts ...Option[Transaction]) *TransactionRepository {
	return &TransactionRepository{repo: New(store, opts...), indexes: indexes}
}

func (r *TransactionRepository) Get(ctx context.Context, transactionID string) (*Transaction, error) {
	return r.repo.Get(ctx, transactionID)
}

func (r *TransactionRepository) Save(ctx context.Context, tx *Transaction) error {
	return r.repo.Save(ctx, tx)
}

// ListForWallet reads the "from" and "to" indexes concurrently and returns
// the sent transactions followed by the received ones.
func (r *TransactionRepository) ListForWallet(ctx context.Context, walletID string) ([]Transaction, error) {
	if walletID == "" {
		return nil, ErrInvalidInput
	}

	var sent, received []Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sent, err = r.repo.ListAll(gctx, r.indexes.From, "fromWalletId", walletID)
		return err
	})
	g.Go(func() (err error) {
		received, err = r.repo.ListAll(gctx, r.indexes.To, "toWalletId", walletID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Transaction, 0, len(sent)+len(received))
	out = append(out, sent...)
	return append(out, received...), nil
}

// ListPending returns pending transactions created at or before now-olderThan.
func (r *TransactionRepository) ListPending(ctx context.Context, olderThan time.Duration, now time.Time) ([]Transaction, error) {
	cutoff := now.Add(-olderThan).Unix()
	query := r.repo.Store().Query().
		Index(r.indexes.ByStatus).
		KeyEqual("status", StatusPending).
		KeyBetween("date", int64(0), cutoff)
	return r.repo.All(ctx, query.Fetch())
}

// PageForWallet reads one page of the sent (or received) transactions of a
// wallet. A nil cursor starts from the first page.
func (r *TransactionRepository) PageForWallet(ctx context.Context, walletID string, received bool, limit int32, cursor dyndb.Cursor) (dyndb.Page[Transaction], error) {
	if walletID == "" {
		return dyndb.Page[Transaction]{}, ErrInvalidInput
	}

	index, field := r.indexes.From, "fromWalletId"
	if received {
		index, field = r.indexes.To, "toWalletId"
	}
	return r.repo.Page(ctx, index, field, walletID, limit, cursor)
}
