package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/XavierBriggs/fortuna/services/stake-advisor/internal/calculator"
	"github.com/XavierBriggs/fortuna/services/stake-advisor/internal/history"
	"github.com/XavierBriggs/fortuna/services/stake-advisor/internal/ledger"
	"github.com/XavierBriggs/fortuna/services/stake-advisor/pkg/models"
	"github.com/XavierBriggs/fortuna/services/stake-advisor/pkg/oddsmath"
	"github.com/google/uuid"
)

// Handler contains dependencies for HTTP handlers. History and ledger are
// optional; their endpoints report unavailable when not configured.
type Handler struct {
	defaultBankroll   float64
	defaultMultiplier float64
	historyLimit      int
	history           history.Store
	ledger            ledger.Ledger
}

// NewHandler creates a new handler.
func NewHandler(defaultBankroll, defaultMultiplier float64, historyLimit int, hist history.Store, led ledger.Ledger) *Handler {
	return &Handler{
		defaultBankroll:   defaultBankroll,
		defaultMultiplier: defaultMultiplier,
		historyLimit:      historyLimit,
		history:           hist,
		ledger:            led,
	}
}

// HealthCheck returns service health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "stake-advisor",
	})
}

// Evaluate computes the full recommendation for a single wager.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err), "invalid_request")
		return
	}

	// Use defaults if not provided
	if req.Bankroll == 0 {
		req.Bankroll = h.defaultBankroll
	}
	multiplier, err := h.resolveMultiplier(req.KellyMultiplier, req.KellyPreset)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
		return
	}

	odds, err := req.Odds.ToValue()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
		return
	}

	evaluation, err := calculator.Evaluate(calculator.BetInput{
		Odds:                 odds,
		EstimatedProbability: req.EstimatedProbability,
		Bankroll:             req.Bankroll,
		KellyMultiplier:      multiplier,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
		return
	}

	resp := models.EvaluateResponse{
		DecimalOdds:        evaluation.DecimalOdds,
		Odds:               displayOdds(evaluation.DecimalOdds),
		ImpliedProbability: evaluation.Metrics.ImpliedProbability,
		Edge:               evaluation.Metrics.Edge,
		EVPerUnitStake:     evaluation.Metrics.EVPerUnitStake,
		FullKellyFraction:  evaluation.Kelly.FullKellyFraction,
		AppliedFraction:    evaluation.Kelly.AppliedFraction,
		RecommendedStake:   round(evaluation.Kelly.RecommendedStake),
		LogGrowth:          evaluation.Kelly.LogGrowth,
	}

	// Fair odds exist only for probabilities strictly inside (0,1).
	if fair, err := oddsmath.ProbabilityToDecimal(req.EstimatedProbability); err == nil {
		display := displayOdds(fair)
		resp.FairOdds = &display
	}

	if h.history != nil {
		entry := models.HistoryEntry{
			ID:               uuid.NewString(),
			EvaluatedAt:      time.Now().UTC(),
			DecimalOdds:      evaluation.DecimalOdds,
			Probability:      req.EstimatedProbability,
			Bankroll:         req.Bankroll,
			KellyMultiplier:  multiplier,
			Edge:             evaluation.Metrics.Edge,
			RecommendedStake: resp.RecommendedStake,
		}
		if err := h.history.Append(r.Context(), entry); err != nil {
			// History is best-effort; the recommendation still stands.
			fmt.Printf("⚠️  History append error: %v\n", err)
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// Convert translates odds between notations, optionally flipping to the
// no-vig price of the opposite side first.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req models.ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err), "invalid_request")
		return
	}

	odds, err := req.Odds.ToValue()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
		return
	}

	decimal, err := odds.ToDecimal()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
		return
	}

	if req.Opposite {
		decimal, err = oddsmath.Complement(decimal)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
			return
		}
	}

	implied, err := oddsmath.ImpliedProbability(decimal)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
		return
	}

	respondJSON(w, http.StatusOK, models.ConvertResponse{
		DecimalOdds:        decimal,
		ImpliedProbability: implied,
		Odds:               displayOdds(decimal),
	})
}

// History returns recent evaluations, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "history store not configured", "unavailable")
		return
	}

	limit, ok := parseLimit(w, r, h.historyLimit)
	if !ok {
		return
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("read history: %v", err), "internal")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// LogBet records an accepted recommendation in the ledger.
func (h *Handler) LogBet(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondError(w, http.StatusServiceUnavailable, "bet ledger not configured", "unavailable")
		return
	}

	var req models.LogBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err), "invalid_request")
		return
	}

	odds, err := req.Odds.ToValue()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
		return
	}

	decimal, err := odds.ToDecimal()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
		return
	}

	// Re-validate against the same invariants evaluate enforces.
	if _, err := calculator.ComputeKelly(decimal, req.EstimatedProbability, req.Bankroll, req.KellyMultiplier); err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), calculator.Kind(err))
		return
	}
	if req.Stake < 0 || req.Stake > req.Bankroll {
		respondError(w, http.StatusBadRequest, "stake must be between 0 and bankroll", "invalid_input")
		return
	}

	bet := models.BetRecord{
		ExternalID:      uuid.NewString(),
		PlacedAt:        time.Now().UTC(),
		DecimalOdds:     decimal,
		Probability:     req.EstimatedProbability,
		Bankroll:        req.Bankroll,
		KellyMultiplier: req.KellyMultiplier,
		Stake:           round(req.Stake),
		Note:            req.Note,
	}

	id, err := h.ledger.RecordBet(r.Context(), bet)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("record bet: %v", err), "internal")
		return
	}
	bet.ID = id

	respondJSON(w, http.StatusCreated, bet)
}

// ListBets returns the most recently logged bets.
func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		respondError(w, http.StatusServiceUnavailable, "bet ledger not configured", "unavailable")
		return
	}

	limit, ok := parseLimit(w, r, h.historyLimit)
	if !ok {
		return
	}

	bets, err := h.ledger.ListBets(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("list bets: %v", err), "internal")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(bets),
		"bets":  bets,
	})
}

// resolveMultiplier picks the Kelly multiplier: explicit value wins, then a
// named preset, then the service default.
func (h *Handler) resolveMultiplier(value float64, preset string) (float64, error) {
	if value != 0 {
		return value, nil
	}
	switch preset {
	case "":
		return h.defaultMultiplier, nil
	case "full":
		return calculator.MultiplierFull, nil
	case "half":
		return calculator.MultiplierHalf, nil
	case "quarter":
		return calculator.MultiplierQuarter, nil
	default:
		return 0, fmt.Errorf("%w: unknown kelly preset %q", calculator.ErrInvalidInput, preset)
	}
}

// parseLimit reads an optional positive limit query param, writing the error
// response itself when the value is malformed.
func parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer", "invalid_request")
		return 0, false
	}
	return parsed, true
}

// displayOdds renders decimal odds in all three notations. The decimal is
// known valid here, so the conversions cannot fail.
func displayOdds(decimal float64) models.OddsDisplay {
	display := models.OddsDisplay{
		Decimal: oddsmath.Decimal(decimal).String(),
	}
	if am, err := oddsmath.FromDecimal(decimal, oddsmath.FormatAmerican); err == nil {
		display.American = am.String()
	}
	if fr, err := oddsmath.FromDecimal(decimal, oddsmath.FormatFractional); err == nil {
		display.Fractional = fr.String()
	}
	return display
}

// round rounds a float to 2 decimal places
func round(val float64) float64 {
	return math.Round(val*100) / 100
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: message,
		Kind:  kind,
	})
}
