package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/etnz/liquidity"
	"github.com/etnz/liquidity/batch"
	"github.com/etnz/liquidity/date"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotBody = `{
  "today": "2024-01-02",
  "caixa": 1000,
  "positions": [
    {"code": "DI", "name": "ALPHA FIC FI RF DI", "value": 2000, "strategy": "Caixa"},
    {"code": "B", "name": "BETA FIC FIM", "value": 2000, "strategy": "Multimercado"}
  ],
  "targets": [{"code": "B", "name": "BETA FIC FIM", "percent": 50}],
  "movements": [
    {"fund_name": "BETA FIC FIM", "fund_code": "B", "operation": "resgate", "value": 300,
     "request_date": "2024-01-02", "liquidation_date": "2024-01-05"}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := NewHandler(batch.Defaults{
		Catalog: liquidity.Catalog{
			{Code: "B", Name: "BETA FIC FIM", RedemptionConversionDays: 1, RedemptionSettlementDays: 2},
		},
		Today:   date.New(2024, 1, 2),
		Options: liquidity.DefaultOptions(),
	})
	srv := httptest.NewServer(NewRouter(h, []string{"http://localhost:3000"}, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv, "/api/system/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "healthy", decode[HealthResponse](t, resp).Status)
}

func TestSettle(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/api/settle?request=2024-01-05&conv=1&liq=2&convention=business")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[SettleResponse](t, resp)
	assert.Equal(t, date.New(2024, 1, 10), got.Settlement)
	assert.Equal(t, date.Business, got.Convention)

	resp = get(t, srv, "/api/settle?request=2024-01-05&liq=3&convention=corridos")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, date.New(2024, 1, 8), decode[SettleResponse](t, resp).Settlement)
}

func TestSettleBadRequest(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{
		"/api/settle",
		"/api/settle?request=2024-13-45",
		"/api/settle?request=2024-01-05&conv=x",
		"/api/settle?request=2024-01-05&liq=-1",
	} {
		resp := get(t, srv, path)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.NotEmpty(t, decode[ErrorResponse](t, resp).Error, path)
	}
}

func TestLatestRequest(t *testing.T) {
	srv := newTestServer(t)
	resp := get(t, srv, "/api/latest-request?target=2024-01-10&conv=1&liq=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[SettleResponse](t, resp)
	assert.Equal(t, date.New(2024, 1, 5), got.Request)
	assert.Equal(t, date.New(2024, 1, 10), got.Settlement)
}

func TestMatch(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv, "/api/match", `{"code": "B"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[MatchResponse](t, resp)
	require.True(t, got.Matched)
	assert.Equal(t, "BETA FIC FIM", got.Params.Name)

	resp = post(t, srv, "/api/match", `{"name": "UNKNOWN FUND"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[MatchResponse](t, resp)
	assert.False(t, got.Matched)
	assert.Nil(t, got.Params)

	resp = post(t, srv, "/api/match", `{"code": "Z", "catalog": [{"code": "Z", "name": "ZETA"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[MatchResponse](t, resp).Matched)
}

func TestTimeline(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/api/timeline", snapshotBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Today   date.Date `json:"today"`
		Records []struct {
			Date     date.Date `json:"date"`
			Negative bool      `json:"negative"`
		} `json:"records"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, date.New(2024, 1, 2), got.Today)
	require.NotEmpty(t, got.Records)
	assert.Equal(t, date.New(2024, 1, 2), got.Records[0].Date)
	for _, r := range got.Records {
		assert.False(t, r.Negative, r.Date)
	}
}

func TestTimelineTodayOverride(t *testing.T) {
	srv := newTestServer(t)
	body := `{"caixa": 100, "positions": []}`

	resp := post(t, srv, "/api/timeline?today=2024-03-04", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got struct {
		Today date.Date `json:"today"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, date.New(2024, 3, 4), got.Today)

	resp = post(t, srv, "/api/timeline?today=tomorrow", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlan(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv, "/api/plan", snapshotBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		RunID string    `json:"run_id"`
		Today date.Date `json:"today"`
		Plan  struct {
			Entries  []json.RawMessage `json:"entries"`
			Warnings []json.RawMessage `json:"warnings"`
		} `json:"plan"`
		Adherence struct {
			Gaps []struct {
				Code string `json:"code"`
			} `json:"gaps"`
		} `json:"adherence"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, date.New(2024, 1, 2), got.Today)
	gaps := got.Adherence.Gaps
	require.NotEmpty(t, gaps)
	assert.Equal(t, "B", gaps[0].Code)
	assert.Equal(t, liquidity.Caixa, gaps[len(gaps)-1].Code)
}

func TestBatchPlan(t *testing.T) {
	srv := newTestServer(t)
	body := `[{"name": "one", "snapshot": ` + snapshotBody + `}, {"name": "two", "snapshot": ` + snapshotBody + `}]`
	resp := post(t, srv, "/api/batch/plan", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []struct {
		RunID string `json:"run_id"`
		Name  string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Name)
	assert.Equal(t, "two", got[1].Name)
	assert.NotEqual(t, got[0].RunID, got[1].RunID)

	resp = post(t, srv, "/api/batch/plan", `[{"name": "empty"}]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[ErrorResponse](t, resp).Details, "missing snapshot")
}

func TestInvalidSnapshot(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/api/timeline", "/api/advice", "/api/adherence", "/api/plan", "/api/match", "/api/batch/plan"} {
		resp := post(t, srv, path, `{"caixa": `)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.NotEmpty(t, decode[ErrorResponse](t, resp).Error, path)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/plan", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/api/system/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
