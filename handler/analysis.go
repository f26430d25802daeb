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

package handler

import (
	"errors"
	"time"

	"github.com/fund-lens/fl-api/common"
	"github.com/fund-lens/fl-api/forecast"
	"github.com/fund-lens/fl-api/fund"
	"github.com/fund-lens/fl-api/metrics"
	"github.com/fund-lens/fl-api/observability/opentelemetry"
	"github.com/fund-lens/fl-api/portfolio"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

// AnalysisRequest is the common request body for all analysis
// endpoints. Fund documents may be supplied inline for what-if
// portfolios; otherwise they are loaded from the fund store.
type AnalysisRequest struct {
	Portfolio     map[string]float64 `json:"portfolio"`
	Funds         []json.RawMessage  `json:"funds,omitempty"`
	InitialAmount float64            `json:"initialAmount,omitempty"`
	Years         int                `json:"years,omitempty"`
	SIPMonths     int                `json:"sipMonths,omitempty"`
}

// AnalysisReport is the combined response of the full analysis
// endpoint
type AnalysisReport struct {
	RequestID       string                           `json:"requestId"`
	GeneratedAt     time.Time                        `json:"generatedAt"`
	Diversification *portfolio.DiversificationReport `json:"diversification"`
	Covariance      *portfolio.CovarianceReport      `json:"covariance"`
	Returns         []*metrics.RollingReturns        `json:"returns"`
	SIP             []*metrics.SIPResult             `json:"sip"`
	Risk            []*metrics.RiskInsights          `json:"risk"`
	Projection      *projectionResponse              `json:"projection,omitempty"`
}

type projectionResponse struct {
	*forecast.Projection
	Source string `json:"source"`
}

// Analysis serves portfolio analytics backed by the fund store
type Analysis struct {
	store *fund.Store
}

func NewAnalysis(store *fund.Store) *Analysis {
	return &Analysis{store: store}
}

const defaultSIPMonths = 60

// parseRequest decodes and validates the shared request body
func parseRequest(c *fiber.Ctx) (*AnalysisRequest, error) {
	var req AnalysisRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Warn().Err(err).Msg("could not parse analysis request")
		return nil, fiber.ErrBadRequest
	}
	if len(req.Portfolio) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "portfolio weights are required")
	}
	if req.SIPMonths <= 0 {
		req.SIPMonths = defaultSIPMonths
	}
	return &req, nil
}

// resolveFunds prefers inline documents over the store so callers can
// analyze hypothetical portfolios without persisting them
func (a *Analysis) resolveFunds(c *fiber.Ctx, req *AnalysisRequest) ([]*fund.Fund, error) {
	if len(req.Funds) > 0 {
		funds := make([]*fund.Fund, 0, len(req.Funds))
		for _, doc := range req.Funds {
			f, err := fund.ParseDocument(doc)
			if err != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest, "malformed inline fund document")
			}
			funds = append(funds, f)
		}
		return funds, nil
	}

	weights := portfolio.Weights(req.Portfolio)
	funds, err := a.store.Get(c.Context(), weights.FundIDs())
	if err != nil {
		return nil, mapError(err)
	}
	return funds, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, fund.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, fund.ErrMissingFundIDs),
		errors.Is(err, portfolio.ErrUnknownFund),
		errors.Is(err, forecast.ErrHorizonTooLong),
		errors.Is(err, forecast.ErrInvalidHorizon),
		errors.Is(err, forecast.ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	log.Error().Stack().Err(err).Msg("analysis request failed")
	return fiber.ErrInternalServerError
}

// Analyze runs every report for the portfolio in one pass
func (a *Analysis) Analyze(c *fiber.Ctx) error {
	_, span := otel.Tracer(opentelemetry.Name).Start(c.Context(), "handler.Analyze")
	defer span.End()
	span.SetAttributes(opentelemetry.SpanAttributesFromFiber(c)...)

	req, err := parseRequest(c)
	if err != nil {
		return err
	}
	funds, err := a.resolveFunds(c, req)
	if err != nil {
		return err
	}
	weights := portfolio.Weights(req.Portfolio)

	report := &AnalysisReport{
		RequestID:       uuid.New().String(),
		GeneratedAt:     time.Now().UTC(),
		Diversification: portfolio.Diversification(funds, weights),
		Covariance:      portfolio.Covariance(funds, weights),
	}

	for _, f := range funds {
		report.Returns = append(report.Returns, metrics.Rolling(f))
		if sip := metrics.SimulateSIP(f, req.SIPMonths); sip != nil {
			report.SIP = append(report.SIP, sip)
		}
		report.Risk = append(report.Risk, metrics.Insights(f, metrics.CategoryDefaults))
	}

	if req.InitialAmount > 0 && req.Years > 0 {
		proj, err := a.project(req, report.Covariance)
		if err != nil {
			return err
		}
		report.Projection = proj
	}

	return c.JSON(report)
}

// Diversification reports stock and sector concentration. Responses
// are pure functions of the request so they are served from the report
// cache when possible.
func (a *Analysis) Diversification(c *fiber.Ctx) error {
	return a.cached(c, "diversification", func(funds []*fund.Fund, weights portfolio.Weights) (any, error) {
		return portfolio.Diversification(funds, weights), nil
	})
}

// Covariance reports the monthly return covariance structure
func (a *Analysis) Covariance(c *fiber.Ctx) error {
	return a.cached(c, "covariance", func(funds []*fund.Fund, weights portfolio.Weights) (any, error) {
		return portfolio.Covariance(funds, weights), nil
	})
}

// Projection simulates future portfolio wealth. Not cached: each
// simulation draws fresh paths.
func (a *Analysis) Projection(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return err
	}
	if req.InitialAmount <= 0 {
		return mapError(forecast.ErrInvalidAmount)
	}
	funds, err := a.resolveFunds(c, req)
	if err != nil {
		return err
	}

	cov := portfolio.Covariance(funds, portfolio.Weights(req.Portfolio))
	proj, err := a.project(req, cov)
	if err != nil {
		return err
	}
	return c.JSON(proj)
}

// project derives simulation inputs from return history when at least
// a year of common history exists, falling back to category defaults
func (a *Analysis) project(req *AnalysisRequest, cov *portfolio.CovarianceReport) (*projectionResponse, error) {
	meanReturn, stdDev := forecast.Defaults()
	source := "category-default"
	if cov.Months >= 12 {
		meanReturn = cov.AnnualizedReturn
		stdDev = cov.AnnualizedStdDev
		source = "history"
	}

	proj, err := forecast.Project(req.InitialAmount, meanReturn, stdDev, req.Years, forecast.Paths())
	if err != nil {
		return nil, mapError(err)
	}
	return &projectionResponse{Projection: proj, Source: source}, nil
}

// Returns reports rolling returns and the SIP simulation for a single
// fund of the portfolio
func (a *Analysis) Returns(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return err
	}
	f, err := a.lookupFund(c, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"rolling": metrics.Rolling(f),
		"sip":     metrics.SimulateSIP(f, req.SIPMonths),
	})
}

// Risk reports the risk insight labels for a single fund of the
// portfolio
func (a *Analysis) Risk(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return err
	}
	f, err := a.lookupFund(c, req)
	if err != nil {
		return err
	}
	return c.JSON(metrics.Insights(f, metrics.CategoryDefaults))
}

func (a *Analysis) lookupFund(c *fiber.Ctx, req *AnalysisRequest) (*fund.Fund, error) {
	fundID := c.Params("id")
	weights := portfolio.Weights(req.Portfolio)
	if _, err := weights.Weight(fundID); err != nil {
		return nil, mapError(err)
	}

	funds, err := a.resolveFunds(c, req)
	if err != nil {
		return nil, err
	}
	for _, f := range funds {
		if f.ID == fundID {
			return f, nil
		}
	}
	return nil, mapError(fund.ErrNotFound)
}

// cached serves deterministic reports from the content-addressed cache
func (a *Analysis) cached(c *fiber.Ctx, kind string, build func([]*fund.Fund, portfolio.Weights) (any, error)) error {
	key := common.CacheKey(kind, string(c.Body()))
	if body, err := common.CacheGet(key); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	req, err := parseRequest(c)
	if err != nil {
		return err
	}
	funds, err := a.resolveFunds(c, req)
	if err != nil {
		return err
	}

	report, err := build(funds, portfolio.Weights(req.Portfolio))
	if err != nil {
		return mapError(err)
	}

	body, err := json.Marshal(report)
	if err != nil {
		return mapError(err)
	}
	if err := common.CacheSet(key, body); err != nil {
		log.Warn().Err(err).Msg("could not cache report")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
