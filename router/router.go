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

package router

import (
	"github.com/fund-lens/fl-api/handler"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes registers all API routes
func SetupRoutes(app *fiber.App, analysis *handler.Analysis) {
	v1 := app.Group("/v1")
	v1.Get("/ping", handler.Ping)

	v1.Post("/analysis", analysis.Analyze)
	v1.Post("/analysis/diversification", analysis.Diversification)
	v1.Post("/analysis/covariance", analysis.Covariance)
	v1.Post("/analysis/projection", analysis.Projection)
	v1.Post("/analysis/funds/:id/returns", analysis.Returns)
	v1.Post("/analysis/funds/:id/risk", analysis.Risk)
}
