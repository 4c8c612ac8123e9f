package trading

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fxdesk/tradeflow-api/internal/types"
	"github.com/fxdesk/tradeflow-api/pkg/response"
)

// GinHandlers contains HTTP handlers for the trade lifecycle endpoints.
type GinHandlers struct {
	engine *Engine
}

// NewGinHandlers creates a new set of HTTP handlers over the engine.
func NewGinHandlers(engine *Engine) *GinHandlers {
	return &GinHandlers{
		engine: engine,
	}
}

// handleError maps an engine error to its HTTP status: unknown trade 404,
// refused transition 409, rejected input or bad version 400, anything else
// 500.
func handleError(c *gin.Context, err error) {
	var (
		validationErr *ValidationError
		transitionErr *InvalidTransitionError
		notFoundErr   *NotFoundError
		badVersionErr *BadVersionError
	)

	switch {
	case errors.As(err, &notFoundErr):
		response.NotFound(c, err.Error())
	case errors.As(err, &transitionErr):
		response.Conflict(c, err.Error())
	case errors.As(err, &validationErr):
		response.ValidationFailed(c, err.Error())
	case errors.As(err, &badVersionErr):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, "An unexpected error occurred")
	}
}

// userID returns the caller identity for mutating requests. The engine
// trusts the supplied identifier; authenticating it is the deployment's
// concern, typically a gateway setting this header.
func userID(c *gin.Context) string {
	if user := c.GetHeader("X-User-ID"); user != "" {
		return user
	}
	return "anonymous"
}

// tradeID parses the path identifier. A malformed id is indistinguishable
// from an unknown one at this boundary, so it answers 404.
func (h *GinHandlers) tradeID(c *gin.Context) (types.TradeID, bool) {
	id, err := types.ParseTradeID(c.Param("id"))
	if err != nil {
		response.NotFound(c, "Trade not found")
		return 0, false
	}
	return id, true
}

// HelloHandler handles GET /hello
func (h *GinHandlers) HelloHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello World"})
	}
}

// CreateTradeHandler handles POST requests to create a new draft trade.
// Request body: { "userId": string, "details": TradeDetails }
func (h *GinHandlers) CreateTradeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID  string             `json:"userId"`
			Details types.TradeDetails `json:"details"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		id, err := h.engine.CreateTrade(req.UserID, req.Details)
		if err != nil {
			handleError(c, err)
			return
		}

		log.Debug().
			Str("trade_id", id.String()).
			Str("user_id", req.UserID).
			Msg("trade created")

		c.JSON(http.StatusOK, gin.H{"tradeId": id.String()})
	}
}

// ListTradesHandler handles GET /trade?sort=bool
func (h *GinHandlers) ListTradesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sorted, _ := strconv.ParseBool(c.Query("sort"))

		ids := h.engine.ListTrades(sorted)
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = id.String()
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetStatusHandler handles GET /trade/:id
func (h *GinHandlers) GetStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.tradeID(c)
		if !ok {
			return
		}

		state, err := h.engine.GetStatus(id)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": state.String()})
	}
}

// GetDetailsHandler handles GET /trade/:id/details
func (h *GinHandlers) GetDetailsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.tradeID(c)
		if !ok {
			return
		}

		details, err := h.engine.GetDetails(id)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, details)
	}
}

// UpdateDetailsHandler handles PUT /trade/:id/details. The full replacement
// details are the request body; a successful update forces re-approval.
func (h *GinHandlers) UpdateDetailsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.tradeID(c)
		if !ok {
			return
		}

		var details types.TradeDetails
		if err := c.ShouldBindJSON(&details); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		if err := h.engine.Update(userID(c), id, details); err != nil {
			handleError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SubmitTradeHandler handles POST /trade/:id/submit
func (h *GinHandlers) SubmitTradeHandler() gin.HandlerFunc {
	return h.mutation(func(user string, id types.TradeID) error {
		return h.engine.Submit(user, id)
	})
}

// ApproveTradeHandler handles POST /trade/:id/approve
func (h *GinHandlers) ApproveTradeHandler() gin.HandlerFunc {
	return h.mutation(func(user string, id types.TradeID) error {
		return h.engine.Approve(user, id)
	})
}

// SendTradeHandler handles POST /trade/:id/send
func (h *GinHandlers) SendTradeHandler() gin.HandlerFunc {
	return h.mutation(func(user string, id types.TradeID) error {
		return h.engine.SendToCounterparty(user, id)
	})
}

// BookTradeHandler handles POST /trade/:id/book
func (h *GinHandlers) BookTradeHandler() gin.HandlerFunc {
	return h.mutation(func(user string, id types.TradeID) error {
		return h.engine.Book(user, id)
	})
}

// CancelTradeHandler handles DELETE /trade/:id. Cancellation is soft: a
// terminal event is appended and the trade remains queryable.
func (h *GinHandlers) CancelTradeHandler() gin.HandlerFunc {
	return h.mutation(func(user string, id types.TradeID) error {
		return h.engine.Cancel(user, id)
	})
}

// mutation wraps the shared shape of the bodyless state-changing endpoints.
func (h *GinHandlers) mutation(op func(user string, id types.TradeID) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.tradeID(c)
		if !ok {
			return
		}

		if err := op(userID(c), id); err != nil {
			handleError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GetHistoryHandler handles GET /trade/:id/history
func (h *GinHandlers) GetHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.tradeID(c)
		if !ok {
			return
		}

		history, err := h.engine.GetHistory(id)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

// TradeDiffHandler handles GET /trade/:id/diff?v1=int&v2=int
func (h *GinHandlers) TradeDiffHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.tradeID(c)
		if !ok {
			return
		}

		v1, err := strconv.Atoi(c.Query("v1"))
		if err != nil {
			response.BadRequest(c, "v1 must be an integer version")
			return
		}
		v2, err := strconv.Atoi(c.Query("v2"))
		if err != nil {
			response.BadRequest(c, "v2 must be an integer version")
			return
		}

		diff, err := h.engine.Diff(id, v1, v2)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, diff)
	}
}
