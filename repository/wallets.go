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

type WalletRepository struct {
	repo  *Repository[Wallet]
	index string
}

func NewWalletRepository(store dyndb.Store[Wallet], index string, opts ...Option[Wallet]) *WalletRepository {
	return &WalletRepository{repo: New(store, opts...), index: index}
}

func (r *WalletRepository) FindByWalletID(ctx context.Context, walletID string) (*Wallet, error) {
	w, err := r.repo.FindOne(ctx, r.index, "walletId", walletID)
	return w, notFound(err, ErrWalletNotFound)
}

// Save overwrites the wallet. There is no compare-and-swap on balance.
func (r *WalletRepository) Save(ctx context.Context, w *Wallet) error {
	return r.repo.Save(ctx, w)
}

// Create persists a new zero-balance wallet. Returns ErrAlreadyExists when
// the id is taken.
func (r *WalletRepository) Create(ctx context.Context, walletID string) (*Wallet, error) {
	w := &Wallet{WalletID: walletID}
	err := r.repo.SaveIf(ctx, w, expression.AttributeNotExists(expression.Name("walletId")))
	if errors.Is(err, dyndb.ErrConditionFailed) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}
