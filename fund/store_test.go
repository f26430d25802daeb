// Copyright 2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fund_test

import (
	"context"
	"errors"

	"github.com/fund-lens/fl-api/database"
	"github.com/fund-lens/fl-api/fund"
	"github.com/pashagolub/pgxmock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var (
		mock  pgxmock.PgxConnIface
		store *fund.Store
	)

	BeforeEach(func() {
		var err error
		mock, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(mock)
		store = fund.NewStore()
	})

	Context("when loading funds by id", func() {
		It("parses rows into funds and caches them", func() {
			doc := []byte(`{"id": "F1", "navHistory": {"2023-01-31": 100, "2023-02-28": 110}}`)
			mock.ExpectBegin()
			mock.ExpectQuery("SELECT fund_id, name, category, document FROM funds").
				WillReturnRows(pgxmock.NewRows([]string{"fund_id", "name", "category", "document"}).
					AddRow("F1", "Alpha Growth", "Large Cap", doc))
			mock.ExpectCommit()

			funds, err := store.Get(context.Background(), []string{"F1"})
			Expect(err).To(BeNil())
			Expect(funds).To(HaveLen(1))
			Expect(funds[0].ID).To(Equal("F1"))
			Expect(funds[0].Name).To(Equal("Alpha Growth"))
			Expect(funds[0].Category).To(Equal("Large Cap"))
			Expect(funds[0].NavHistory.Len()).To(Equal(2))

			// second call must be served from cache; no query expected
			funds, err = store.Get(context.Background(), []string{"F1"})
			Expect(err).To(BeNil())
			Expect(funds).To(HaveLen(1))
			Expect(mock.ExpectationsWereMet()).To(BeNil())
		})

		It("fails when a requested fund does not exist", func() {
			mock.ExpectBegin()
			mock.ExpectQuery("SELECT fund_id, name, category, document FROM funds").
				WillReturnRows(pgxmock.NewRows([]string{"fund_id", "name", "category", "document"}))
			mock.ExpectCommit()

			_, err := store.Get(context.Background(), []string{"NOPE"})
			Expect(errors.Is(err, fund.ErrNotFound)).To(BeTrue())
		})

		It("rejects an empty id list", func() {
			_, err := store.Get(context.Background(), nil)
			Expect(errors.Is(err, fund.ErrMissingFundIDs)).To(BeTrue())
		})
	})

	Context("when refreshing the cache", func() {
		It("loads every fund", func() {
			mock.ExpectBegin()
			mock.ExpectQuery("SELECT fund_id, name, category, document FROM funds").
				WillReturnRows(pgxmock.NewRows([]string{"fund_id", "name", "category", "document"}).
					AddRow("F1", "Alpha Growth", "Large Cap", []byte(`{"id": "F1"}`)).
					AddRow("F2", "Beta Value", "Mid Cap", []byte(`{"id": "F2"}`)))
			mock.ExpectCommit()

			Expect(store.Refresh(context.Background())).To(Succeed())

			funds, err := store.Get(context.Background(), []string{"F1", "F2"})
			Expect(err).To(BeNil())
			Expect(funds).To(HaveLen(2))
			Expect(mock.ExpectationsWereMet()).To(BeNil())
		})
	})
})
