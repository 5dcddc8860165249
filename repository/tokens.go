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
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/raywall/kudos-ledger/dyndb"
)

// TokenRepository implements single-use payment tokens: CREATED -> PROCESSED.
type TokenRepository struct {
	repo *Repository[Token]
	now  func() time.Time
}

func NewTokenRepository(store dyndb.Store[Token], opts ...Option[Token]) *TokenRepository {
	return &TokenRepository{repo: New(store, opts...), now: time.Now}
}

// Issue creates a new token in CREATED.
func (r *TokenRepository) Issue(ctx context.Context) (*Token, error) {
	t := &Token{
		Token:   NewID(),
		Status:  TokenCreated,
		Created: r.now().Unix(),
	}
	err := r.repo.SaveIf(ctx, t, expression.AttributeNotExists(expression.Name("token")))
	if errors.Is(err, dyndb.ErrConditionFailed) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Consume moves the token to PROCESSED and attaches processingCode, in a
// single conditional update. It succeeds at most once per token.
//
// A failed condition that returns no old item means the token never
// existed (ErrTokenNotFound). Any other condition failure is reported as
// ErrTokenAlreadyUsed.
func (r *TokenRepository) Consume(ctx context.Context, tokenID, processingCode string) (*Token, error) {
	if tokenID == "" || processingCode == "" {
		return nil, ErrInvalidInput
	}

	cond := expression.Name("tokenStatus").Equal(expression.Value(TokenCreated)).
		And(expression.AttributeNotExists(expression.Name("processingCode")))
	update := expression.Set(expression.Name("processingCode"), expression.Value(processingCode)).
		Set(expression.Name("tokenStatus"), expression.Value(TokenProcessed))

	t, err := r.repo.Store().UpdateWith(ctx, dyndb.Key{"token": tokenID}, update, dyndb.UpdateOptions{
		Condition:                   &cond,
		ReturnValues:                types.ReturnValueAllNew,
		ReturnOldOnConditionFailure: true,
	})
	if err == nil {
		if t == nil {
			t = &Token{Token: tokenID, Status: TokenProcessed, ProcessingCode: processingCode}
		}
		return t, nil
	}

	var cfe *dyndb.ConditionFailedError
	if errors.As(err, &cfe) && len(cfe.Existing) == 0 {
		return nil, ErrTokenNotFound
	}
	if errors.Is(err, dyndb.ErrConditionFailed) {
		return nil, ErrTokenAlreadyUsed
	}
	return nil, err
}

// NewID returns a random identifier without dashes.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
