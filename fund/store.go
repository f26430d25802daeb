// Copyright 2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fund

import (
	"context"
	"fmt"
	"strings"

	"github.com/fund-lens/fl-api/database"
	"github.com/fund-lens/fl-api/observability/opentelemetry"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

// Store loads fund enrichment documents from the database and keeps
// parsed funds in a local LRU. Documents only change when the nightly
// enrichment pipeline runs, so cached entries are served until the
// scheduled Refresh evicts them.
type Store struct {
	cache *lru.Cache
}

func NewStore() *Store {
	size := viper.GetInt("cache.fund_size")
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New(size)
	if err != nil {
		log.Panic().Err(err).Msg("could not create fund cache")
	}
	return &Store{cache: c}
}

// Get loads the requested funds, preferring cached copies. All ids
// must resolve; a missing fund is an error because every downstream
// report needs the complete portfolio.
func (s *Store) Get(ctx context.Context, ids []string) ([]*Fund, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "fund.Get")
	defer span.End()

	if len(ids) == 0 {
		return nil, ErrMissingFundIDs
	}

	funds := make([]*Fund, 0, len(ids))
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.cache.Get(id); ok {
			funds = append(funds, v.(*Fund))
		} else {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		loaded, err := s.query(ctx, "SELECT fund_id, name, category, document FROM funds WHERE fund_id = ANY($1)", missing)
		if err != nil {
			return nil, err
		}
		for _, f := range loaded {
			s.cache.Add(f.ID, f)
		}
		funds = append(funds, loaded...)
	}

	if len(funds) < len(ids) {
		found := make(map[string]bool, len(funds))
		for _, f := range funds {
			found[f.ID] = true
		}
		unknown := make([]string, 0, len(ids)-len(funds))
		for _, id := range ids {
			if !found[id] {
				unknown = append(unknown, id)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(unknown, ", "))
	}

	return funds, nil
}

// Refresh reloads every fund and replaces the cached copies; run on a
// schedule so NAV updates from the enrichment pipeline become visible
func (s *Store) Refresh(ctx context.Context) error {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "fund.Refresh")
	defer span.End()

	funds, err := s.query(ctx, "SELECT fund_id, name, category, document FROM funds")
	if err != nil {
		return err
	}
	for _, f := range funds {
		s.cache.Add(f.ID, f)
	}
	log.Info().Int("NumFunds", len(funds)).Msg("refreshed fund cache")
	return nil
}

func (s *Store) query(ctx context.Context, sql string, args ...any) ([]*Fund, error) {
	subLog := log.With().Str("Query", sql).Logger()

	trx, err := database.Trx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not query funds")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	var funds []*Fund
	for rows.Next() {
		var (
			id       string
			name     string
			category string
			doc      []byte
		)
		if err := rows.Scan(&id, &name, &category, &doc); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan fund row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}

		f, err := ParseDocument(doc)
		if err != nil {
			// a malformed document should not poison the whole
			// portfolio request
			subLog.Warn().Err(err).Str("FundId", id).Msg("skipping malformed fund document")
			continue
		}

		// columns are authoritative over the document copy
		f.ID = id
		if name != "" {
			f.Name = name
		}
		if category != "" {
			f.Category = category
		}
		funds = append(funds, f)
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
	}
	return funds, nil
}
