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
	"github.com/raywall/kudos-ledger/pkg/cache"
	"github.com/rs/zerolog"
)

// RewardRepository is read-only. Lookups go through a read-through cache;
// cache failures fall back to the store.
type RewardRepository struct {
	repo  *Repository[Reward]
	index string
	cache cache.Cache
	log   zerolog.Logger
}

func NewRewardRepository(store dyndb.Store[Reward], index string, c cache.Cache, log zerolog.Logger) *RewardRepository {
	if c == nil {
		c = cache.Noop{}
	}
	return &RewardRepository{
		repo:  New(store),
		index: index,
		cache: c,
		log:   log,
	}
}

func (r *RewardRepository) FindByRewardID(ctx context.Context, rewardID string) (*Reward, error) {
	if rewardID == "" {
		return nil, ErrInvalidInput
	}

	var cached Reward
	found, err := r.cache.Get(ctx, rewardID, &cached)
	if err != nil {
		r.log.Warn().Err(err).Str("reward_id", rewardID).Msg("reward cache read failed")
	}
	if found {
		return &cached, nil
	}

	reward, err := r.repo.FindOne(ctx, r.index, "rewardId", rewardID)
	if err != nil {
		return nil, notFound(err, ErrRewardNotFound)
	}

	if err := r.cache.Set(ctx, rewardID, reward); err != nil {
		r.log.Warn().Err(err).Str("reward_id", rewardID).Msg("reward cache write failed")
	}
	return reward, nil
}

// Invalidate drops the cached reward so the next lookup reads the table.
func (r *RewardRepository) Invalidate(ctx context.Context, rewardID string) error {
	if rewardID == "" {
		return ErrInvalidInput
	}
	return r.cache.Delete(ctx, rewardID)
}
