package trading

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxdesk/tradeflow-api/internal/store"
	"github.com/fxdesk/tradeflow-api/internal/types"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := NewEngine(store.NewMemoryStore(), 1)
	require.NoError(t, err)

	handlers := NewGinHandlers(engine)
	router := gin.New()
	router.GET("/hello", handlers.HelloHandler())

	trade := router.Group("/trade")
	{
		trade.POST("", handlers.CreateTradeHandler())
		trade.GET("", handlers.ListTradesHandler())
		trade.GET("/:id", handlers.GetStatusHandler())
		trade.DELETE("/:id", handlers.CancelTradeHandler())
		trade.GET("/:id/details", handlers.GetDetailsHandler())
		trade.PUT("/:id/details", handlers.UpdateDetailsHandler())
		trade.POST("/:id/submit", handlers.SubmitTradeHandler())
		trade.POST("/:id/approve", handlers.ApproveTradeHandler())
		trade.POST("/:id/send", handlers.SendTradeHandler())
		trade.POST("/:id/book", handlers.BookTradeHandler())
		trade.GET("/:id/history", handlers.GetHistoryHandler())
		trade.GET("/:id/diff", handlers.TradeDiffHandler())
	}

	return router, engine
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "userTrader1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createViaAPI(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/trade", map[string]any{
		"userId":  "userTrader1",
		"details": validDetails(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		TradeID string `json:"tradeId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.TradeID)
	return out.TradeID
}

func TestHelloEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/hello", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.NotEmpty(t, out["message"])
}

func TestCreateTradeEndpoint(t *testing.T) {
	router, engine := newTestRouter(t)

	tradeID := createViaAPI(t, router)

	id, err := types.ParseTradeID(tradeID)
	require.NoError(t, err)

	state, err := engine.GetStatus(id)
	require.NoError(t, err)
	assert.Equal(t, types.Draft, state)
}

func TestCreateTradeRejectsBadDetails(t *testing.T) {
	router, _ := newTestRouter(t)

	bad := validDetails()
	bad.TradeDate = bad.ValueDate.AddDate(0, 0, 5)

	w := doJSON(t, router, http.MethodPost, "/trade", map[string]any{
		"userId":  "userTrader1",
		"details": bad,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTradeRejectsMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/trade", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTradesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	first := createViaAPI(t, router)
	second := createViaAPI(t, router)

	w := doJSON(t, router, http.MethodGet, "/trade?sort=true", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ids []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ids))
	assert.ElementsMatch(t, []string{first, second}, ids)
}

func TestGetStatusEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	tradeID := createViaAPI(t, router)

	w := doJSON(t, router, http.MethodGet, "/trade/"+tradeID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Draft", out["state"])
}

func TestUnknownAndMalformedIDsAnswer404(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/trade/999999", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodGet, "/trade/not-a-number", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodPost, "/trade/999999/submit", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, router, http.MethodDelete, "/trade/999999", nil).Code)
}

func TestLifecycleEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	tradeID := createViaAPI(t, router)

	for _, step := range []string{"submit", "approve", "send", "book"} {
		w := doJSON(t, router, http.MethodPost, "/trade/"+tradeID+"/"+step, nil)
		assert.Equal(t, http.StatusNoContent, w.Code, "step %s: %s", step, w.Body.String())
	}

	w := doJSON(t, router, http.MethodGet, "/trade/"+tradeID, nil)
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Executed", out["state"])
}

func TestInvalidTransitionAnswers409(t *testing.T) {
	router, _ := newTestRouter(t)
	tradeID := createViaAPI(t, router)

	w := doJSON(t, router, http.MethodPost, "/trade/"+tradeID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateDetailsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	tradeID := createViaAPI(t, router)

	updated := validDetails()
	updated.Counterparty = "AnotherCo"

	w := doJSON(t, router, http.MethodPut, "/trade/"+tradeID+"/details", updated)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/trade/"+tradeID, nil)
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "NeedsReapproval", out["state"])

	w = doJSON(t, router, http.MethodGet, "/trade/"+tradeID+"/details", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var details types.TradeDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "AnotherCo", details.Counterparty)
}

func TestCancelEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	tradeID := createViaAPI(t, router)

	assert.Equal(t, http.StatusNoContent, doJSON(t, router, http.MethodDelete, "/trade/"+tradeID, nil).Code)

	// Cancelled is terminal: a second cancel conflicts, the trade stays
	// queryable.
	assert.Equal(t, http.StatusConflict, doJSON(t, router, http.MethodDelete, "/trade/"+tradeID, nil).Code)

	w := doJSON(t, router, http.MethodGet, "/trade/"+tradeID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Cancelled", out["state"])
}

func TestHistoryEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	tradeID := createViaAPI(t, router)

	doJSON(t, router, http.MethodPost, "/trade/"+tradeID+"/submit", nil)

	w := doJSON(t, router, http.MethodGet, "/trade/"+tradeID+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history []types.TradeEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, 0, history[0].Version)
	assert.Equal(t, types.PendingApproval, history[1].ToState)
}

func TestDiffEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	tradeID := createViaAPI(t, router)

	updated := validDetails()
	updated.TradingEntity = "MegaCorp"
	doJSON(t, router, http.MethodPut, "/trade/"+tradeID+"/details", updated)

	w := doJSON(t, router, http.MethodGet, "/trade/"+tradeID+"/diff?v1=0&v2=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var diff struct {
		TradeID     string                    `json:"trade_id"`
		FromVersion int                       `json:"from_version"`
		ToVersion   int                       `json:"to_version"`
		Differences map[string]map[string]any `json:"differences"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &diff))
	assert.Equal(t, tradeID, diff.TradeID)
	require.Contains(t, diff.Differences, "trading_entity")
	assert.Equal(t, "BigBank", diff.Differences["trading_entity"]["before"])
	assert.Equal(t, "MegaCorp", diff.Differences["trading_entity"]["after"])
}

func TestDiffEndpointBadParams(t *testing.T) {
	router, _ := newTestRouter(t)
	tradeID := createViaAPI(t, router)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/trade/"+tradeID+"/diff?v1=x&v2=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, router, http.MethodGet, "/trade/"+tradeID+"/diff?v1=0&v2=9", nil).Code)
}
