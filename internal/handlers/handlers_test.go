package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/XavierBriggs/fortuna/services/stake-advisor/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/stake-advisor/pkg/models"
)

// MockHistory implements history.Store for testing
type MockHistory struct {
	entries     []models.HistoryEntry
	shouldError bool
}

func (m *MockHistory) Append(ctx context.Context, entry models.HistoryEntry) error {
	if m.shouldError {
		return context.DeadlineExceeded
	}
	m.entries = append([]models.HistoryEntry{entry}, m.entries...)
	return nil
}

func (m *MockHistory) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if m.shouldError {
		return nil, context.DeadlineExceeded
	}
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

// MockLedger implements ledger.Ledger for testing
type MockLedger struct {
	bets        []models.BetRecord
	shouldError bool
}

func (m *MockLedger) RecordBet(ctx context.Context, bet models.BetRecord) (int64, error) {
	if m.shouldError {
		return 0, context.DeadlineExceeded
	}
	bet.ID = int64(len(m.bets) + 1)
	m.bets = append(m.bets, bet)
	return bet.ID, nil
}

func (m *MockLedger) ListBets(ctx context.Context, limit int) ([]models.BetRecord, error) {
	if m.shouldError {
		return nil, context.DeadlineExceeded
	}
	if limit > len(m.bets) {
		limit = len(m.bets)
	}
	return m.bets[:limit], nil
}

func newTestHandler(hist *MockHistory, led *MockLedger) *handlers.Handler {
	var h *handlers.Handler
	switch {
	case hist != nil && led != nil:
		h = handlers.NewHandler(1000, 0.5, 50, hist, led)
	case hist != nil:
		h = handlers.NewHandler(1000, 0.5, 50, hist, nil)
	case led != nil:
		h = handlers.NewHandler(1000, 0.5, 50, nil, led)
	default:
		h = handlers.NewHandler(1000, 0.5, 50, nil, nil)
	}
	return h
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	handler := newTestHandler(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", body["status"])
	}
}

func TestEvaluateKnownValue(t *testing.T) {
	hist := &MockHistory{}
	handler := newTestHandler(hist, nil)

	rec := postJSON(t, handler.Evaluate, "/api/v1/evaluate", models.EvaluateRequest{
		Odds:                 models.OddsPayload{Format: "decimal", Decimal: 2.0},
		EstimatedProbability: 0.6,
		Bankroll:             1000,
		KellyPreset:          "half",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp models.EvaluateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if math.Abs(resp.FullKellyFraction-0.2) > 0.0001 {
		t.Errorf("FullKellyFraction = %f, want 0.2", resp.FullKellyFraction)
	}
	if math.Abs(resp.AppliedFraction-0.1) > 0.0001 {
		t.Errorf("AppliedFraction = %f, want 0.1", resp.AppliedFraction)
	}
	if math.Abs(resp.RecommendedStake-100) > 0.01 {
		t.Errorf("RecommendedStake = %f, want 100", resp.RecommendedStake)
	}
	if math.Abs(resp.Edge-0.1) > 0.0001 {
		t.Errorf("Edge = %f, want 0.1", resp.Edge)
	}
	if resp.Odds.American != "+100" {
		t.Errorf("Odds.American = %q, want +100", resp.Odds.American)
	}
	if resp.FairOdds == nil || resp.FairOdds.Decimal != "1.667" {
		t.Errorf("FairOdds = %+v, want decimal 1.667", resp.FairOdds)
	}

	if len(hist.entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(hist.entries))
	}
	if hist.entries[0].RecommendedStake != 100 {
		t.Errorf("history stake = %f, want 100", hist.entries[0].RecommendedStake)
	}
}

func TestEvaluateAmericanOdds(t *testing.T) {
	handler := newTestHandler(nil, nil)

	rec := postJSON(t, handler.Evaluate, "/api/v1/evaluate", models.EvaluateRequest{
		Odds:                 models.OddsPayload{Format: "american", American: -200},
		EstimatedProbability: 0.5,
		Bankroll:             5000,
		KellyMultiplier:      1.0,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp models.EvaluateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// -200 is decimal 1.5; p=0.5 has no edge there, so stake floors at zero.
	if math.Abs(resp.DecimalOdds-1.5) > 0.0001 {
		t.Errorf("DecimalOdds = %f, want 1.5", resp.DecimalOdds)
	}
	if resp.RecommendedStake != 0 {
		t.Errorf("RecommendedStake = %f, want 0", resp.RecommendedStake)
	}
	if resp.FullKellyFraction >= 0 {
		t.Errorf("FullKellyFraction = %f, want negative", resp.FullKellyFraction)
	}
}

func TestEvaluateInvalidInputs(t *testing.T) {
	handler := newTestHandler(nil, nil)

	tests := []struct {
		name     string
		request  models.EvaluateRequest
		wantKind string
	}{
		{
			"Decimal odds at even floor",
			models.EvaluateRequest{
				Odds:                 models.OddsPayload{Format: "decimal", Decimal: 1.0},
				EstimatedProbability: 0.5,
				KellyMultiplier:      0.5,
			},
			"invalid_odds",
		},
		{
			"American odds zero",
			models.EvaluateRequest{
				Odds:                 models.OddsPayload{Format: "american"},
				EstimatedProbability: 0.5,
				KellyMultiplier:      0.5,
			},
			"invalid_odds",
		},
		{
			"Fractional zero denominator",
			models.EvaluateRequest{
				Odds:                 models.OddsPayload{Format: "fractional", Numerator: 3},
				EstimatedProbability: 0.5,
				KellyMultiplier:      0.5,
			},
			"invalid_odds",
		},
		{
			"Unknown format",
			models.EvaluateRequest{
				Odds:                 models.OddsPayload{Format: "moneyline", Decimal: 2.0},
				EstimatedProbability: 0.5,
				KellyMultiplier:      0.5,
			},
			"invalid_odds",
		},
		{
			"Probability above one",
			models.EvaluateRequest{
				Odds:                 models.OddsPayload{Format: "decimal", Decimal: 2.0},
				EstimatedProbability: 1.5,
				KellyMultiplier:      0.5,
			},
			"invalid_probability",
		},
		{
			"Negative bankroll",
			models.EvaluateRequest{
				Odds:                 models.OddsPayload{Format: "decimal", Decimal: 2.0},
				EstimatedProbability: 0.5,
				Bankroll:             -1,
				KellyMultiplier:      0.5,
			},
			"invalid_bankroll",
		},
		{
			"Multiplier above one",
			models.EvaluateRequest{
				Odds:                 models.OddsPayload{Format: "decimal", Decimal: 2.0},
				EstimatedProbability: 0.5,
				KellyMultiplier:      1.5,
			},
			"invalid_input",
		},
		{
			"Unknown preset",
			models.EvaluateRequest{
				Odds:                 models.OddsPayload{Format: "decimal", Decimal: 2.0},
				EstimatedProbability: 0.5,
				KellyPreset:          "double",
			},
			"invalid_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler.Evaluate, "/api/v1/evaluate", tt.request)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.wantKind)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	handler := newTestHandler(nil, nil)

	rec := postJSON(t, handler.Convert, "/api/v1/convert", models.ConvertRequest{
		Odds: models.OddsPayload{Format: "american", American: 150},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp models.ConvertResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if math.Abs(resp.DecimalOdds-2.5) > 0.0001 {
		t.Errorf("DecimalOdds = %f, want 2.5", resp.DecimalOdds)
	}
	if math.Abs(resp.ImpliedProbability-0.4) > 0.0001 {
		t.Errorf("ImpliedProbability = %f, want 0.4", resp.ImpliedProbability)
	}
	if resp.Odds.Decimal != "2.500" || resp.Odds.American != "+150" || resp.Odds.Fractional != "3/2" {
		t.Errorf("Odds = %+v, want 2.500 / +150 / 3/2", resp.Odds)
	}
}

func TestConvertOpposite(t *testing.T) {
	handler := newTestHandler(nil, nil)

	rec := postJSON(t, handler.Convert, "/api/v1/convert", models.ConvertRequest{
		Odds:     models.OddsPayload{Format: "decimal", Decimal: 3.0},
		Opposite: true,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var resp models.ConvertResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if math.Abs(resp.DecimalOdds-1.5) > 0.0001 {
		t.Errorf("DecimalOdds = %f, want 1.5", resp.DecimalOdds)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	hist := &MockHistory{}
	handler := newTestHandler(hist, nil)

	// Seed two evaluations through the real handler.
	for _, p := range []float64{0.55, 0.6} {
		rec := postJSON(t, handler.Evaluate, "/api/v1/evaluate", models.EvaluateRequest{
			Odds:                 models.OddsPayload{Format: "decimal", Decimal: 2.0},
			EstimatedProbability: p,
			Bankroll:             1000,
			KellyMultiplier:      0.5,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("seed evaluate: status = %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	handler.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Count   int                   `json:"count"`
		Entries []models.HistoryEntry `json:"entries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
	// Newest first.
	if len(resp.Entries) == 2 && resp.Entries[0].Probability != 0.6 {
		t.Errorf("first entry probability = %f, want 0.6", resp.Entries[0].Probability)
	}
}

func TestHistoryUnavailable(t *testing.T) {
	handler := newTestHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	handler.History(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestLogBetAndList(t *testing.T) {
	led := &MockLedger{}
	handler := newTestHandler(nil, led)

	rec := postJSON(t, handler.LogBet, "/api/v1/bets", models.LogBetRequest{
		Odds:                 models.OddsPayload{Format: "decimal", Decimal: 2.0},
		EstimatedProbability: 0.6,
		Bankroll:             1000,
		KellyMultiplier:      0.5,
		Stake:                100,
		Note:                 "home ML",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var bet models.BetRecord
	if err := json.NewDecoder(rec.Body).Decode(&bet); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if bet.ID != 1 || bet.ExternalID == "" {
		t.Errorf("bet ids = %d / %q, want assigned", bet.ID, bet.ExternalID)
	}
	if bet.Stake != 100 {
		t.Errorf("stake = %f, want 100", bet.Stake)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/bets", nil)
	listRec := httptest.NewRecorder()
	handler.ListBets(listRec, listReq)

	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", listRec.Code)
	}
	var listResp struct {
		Count int                `json:"count"`
		Bets  []models.BetRecord `json:"bets"`
	}
	if err := json.NewDecoder(listRec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if listResp.Count != 1 {
		t.Errorf("count = %d, want 1", listResp.Count)
	}
}

func TestLogBetValidation(t *testing.T) {
	led := &MockLedger{}
	handler := newTestHandler(nil, led)

	tests := []struct {
		name     string
		request  models.LogBetRequest
		wantKind string
	}{
		{
			"Stake above bankroll",
			models.LogBetRequest{
				Odds:                 models.OddsPayload{Format: "decimal", Decimal: 2.0},
				EstimatedProbability: 0.6,
				Bankroll:             100,
				KellyMultiplier:      0.5,
				Stake:                200,
			},
			"invalid_input",
		},
		{
			"Invalid odds",
			models.LogBetRequest{
				Odds:                 models.OddsPayload{Format: "decimal", Decimal: 0.8},
				EstimatedProbability: 0.6,
				Bankroll:             100,
				KellyMultiplier:      0.5,
				Stake:                10,
			},
			"invalid_odds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler.LogBet, "/api/v1/bets", tt.request)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.wantKind)
			}
			if len(led.bets) != 0 {
				t.Errorf("ledger recorded %d bets, want none", len(led.bets))
			}
		})
	}
}

func TestLedgerUnavailable(t *testing.T) {
	handler := newTestHandler(nil, nil)

	rec := postJSON(t, handler.LogBet, "/api/v1/bets", models.LogBetRequest{})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
