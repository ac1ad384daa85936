package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/etnz/liquidity"
	"github.com/etnz/liquidity/batch"
	"github.com/etnz/liquidity/date"
)

// batchLimit is how many portfolios of a batch are planned at once.
const batchLimit = 4

// Handler serves the liquidity operations.
type Handler struct {
	defaults batch.Defaults
}

// NewHandler creates a Handler. Snapshots without a catalog use the one of
// defaults. A zero defaults.Today means the current day of each request.
func NewHandler(defaults batch.Defaults) *Handler {
	return &Handler{defaults: defaults}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports that the server is up.
//
// Endpoint: GET /api/system/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// SettleResponse is the answer of the date endpoints.
type SettleResponse struct {
	Request    date.Date       `json:"request"`
	Settlement date.Date       `json:"settlement"`
	Conversion int             `json:"conv"`
	Liquidity  int             `json:"liq"`
	Convention date.Convention `json:"convention"`
}

// offsets parses the conv, liq and convention query parameters.
func offsets(r *http.Request) (conv, liq int, c date.Convention, err error) {
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"conv", &conv}, {"liq", &liq}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, aerr := strconv.Atoi(v)
		if aerr != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("invalid %s %q", p.name, v)
		}
		*p.dst = n
	}
	return conv, liq, date.ParseConvention(q.Get("convention")), nil
}

// Settle computes the settlement date of a request.
//
// Endpoint: GET /api/settle?request=2024-01-02&conv=1&liq=2&convention=business
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	request, err := date.Parse(r.URL.Query().Get("request"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid request date", err.Error())
		return
	}
	conv, liq, c, err := offsets(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid offsets", err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, SettleResponse{
		Request:    request,
		Settlement: date.SettleDate(request, conv, liq, c),
		Conversion: conv,
		Liquidity:  liq,
		Convention: c,
	})
}

// LatestRequest computes the latest request date that settles by a target.
//
// Endpoint: GET /api/latest-request?target=2024-01-05&conv=1&liq=2
func (h *Handler) LatestRequest(w http.ResponseWriter, r *http.Request) {
	target, err := date.Parse(r.URL.Query().Get("target"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid target date", err.Error())
		return
	}
	conv, liq, c, err := offsets(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid offsets", err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, SettleResponse{
		Request:    date.LatestRequestDate(target, conv, liq, c),
		Settlement: target,
		Conversion: conv,
		Liquidity:  liq,
		Convention: c,
	})
}

// MatchRequest is the body of the match endpoint. Catalog is optional.
type MatchRequest struct {
	Code    string            `json:"code"`
	Name    string            `json:"name"`
	Catalog liquidity.Catalog `json:"catalog,omitempty"`
}

// MatchResponse tells which catalog entry a fund resolves to.
type MatchResponse struct {
	Matched bool                         `json:"matched"`
	Params  *liquidity.LiquidationParams `json:"params,omitempty"`
}

// Match looks a fund up in the liquidation catalog.
//
// Endpoint: POST /api/match
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid match request", err.Error())
		return
	}
	catalog := req.Catalog
	if len(catalog) == 0 {
		catalog = h.defaults.Catalog
	}
	var resp MatchResponse
	if p, ok := liquidity.MatchLiquidationParams(catalog, req.Code, req.Name); ok {
		resp = MatchResponse{Matched: true, Params: &p}
	}
	RespondJSON(w, http.StatusOK, resp)
}

// book decodes the snapshot body into a book. It writes the error response
// and returns false when the request is invalid.
func (h *Handler) book(w http.ResponseWriter, r *http.Request) (*liquidity.Snapshot, batch.Defaults, bool) {
	d, err := h.requestDefaults(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid today", err.Error())
		return nil, d, false
	}
	s, err := liquidity.DecodeSnapshot(r.Body)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid snapshot", err.Error())
		return nil, d, false
	}
	return s, d, true
}

// requestDefaults returns the defaults for r, with today taken from the
// today query parameter when set.
func (h *Handler) requestDefaults(r *http.Request) (batch.Defaults, error) {
	d := h.defaults
	if v := r.URL.Query().Get("today"); v != "" {
		today, err := date.Parse(v)
		if err != nil {
			return d, err
		}
		d.Today = today
	}
	if d.Today.IsZero() {
		d.Today = date.Today()
	}
	return d, nil
}

// Timeline simulates the effective cash of the posted snapshot.
//
// Endpoint: POST /api/timeline
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	s, d, ok := h.book(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, liquidity.BuildCashTimeline(batch.Book(s, d), d.Options))
}

// Advice suggests request dates for the posted snapshot.
//
// Endpoint: POST /api/advice
func (h *Handler) Advice(w http.ResponseWriter, r *http.Request) {
	s, d, ok := h.book(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, liquidity.SuggestRequestDates(batch.Book(s, d), d.Options))
}

// Adherence compares the posted snapshot with its target model.
//
// Endpoint: POST /api/adherence
func (h *Handler) Adherence(w http.ResponseWriter, r *http.Request) {
	s, d, ok := h.book(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, liquidity.Adherence(batch.Book(s, d), s.Targets))
}

// Plan runs the full analysis of the posted snapshot.
//
// Endpoint: POST /api/plan
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	s, d, ok := h.book(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, batch.Analyze(batch.Input{Snapshot: s}, d))
}

// BatchPlan runs the full analysis of several portfolios concurrently.
//
// Endpoint: POST /api/batch/plan
func (h *Handler) BatchPlan(w http.ResponseWriter, r *http.Request) {
	d, err := h.requestDefaults(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid today", err.Error())
		return
	}
	var inputs []batch.Input
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid batch", err.Error())
		return
	}
	results, err := batch.Run(r.Context(), inputs, d, batchLimit)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "batch failed", err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, results)
}
