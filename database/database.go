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

package database

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// PgxIface is the subset of pgxpool.Pool the fund store needs; it
// exists so tests can substitute a pgxmock connection
type PgxIface interface {
	Begin(context.Context) (pgx.Tx, error)
}

var pool PgxIface

// Connect establishes the database connection pool. Fund master data
// is read-only reference data so a single shared role is sufficient.
func Connect(ctx context.Context) error {
	p, err := pgxpool.Connect(ctx, viper.GetString("database.url"))
	if err != nil {
		return err
	}
	if err := p.Ping(ctx); err != nil {
		return err
	}
	pool = p
	return nil
}

// SetPool replaces the connection pool; used by tests to install a
// pgxmock connection
func SetPool(p PgxIface) {
	pool = p
}

// Trx begins a new transaction on the shared pool
func Trx(ctx context.Context) (pgx.Tx, error) {
	trx, err := pool.Begin(ctx)
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not begin transaction")
		return nil, err
	}
	return trx, nil
}
