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

	"github.com/raywall/kudos-ledger/dyndb"
)

type RecognitionRepository struct {
	repo *Repository[Recognition]
}

func NewRecognitionRepository(store dyndb.Store[Recognition], opts ...Option[Recognition]) *RecognitionRepository {
	return &RecognitionRepository{repo: New(store, opts...)}
}

func (r *RecognitionRepository) Get(ctx context.Context, recognitionID string) (*Recognition, error) {
	return r.repo.Get(ctx, recognitionID)
}

func (r *RecognitionRepository) Save(ctx context.Context, rec *Recognition) error {
	return r.repo.Save(ctx, rec)
}
