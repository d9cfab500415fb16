// Package api exposes the engine over HTTP. Order ids are uint64 and
// exceed what JSON numbers can represent faithfully, so every id on
// the wire is a string.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/erain9/venue/pkg/core"
	"github.com/erain9/venue/pkg/engine"
	"github.com/erain9/venue/pkg/id"
	"github.com/erain9/venue/pkg/logging"
)

// Server wires HTTP routes to the engine
type Server struct {
	engine *engine.Engine
	logger zerolog.Logger
}

// NewServer creates a server over the engine
func NewServer(eng *engine.Engine, logger zerolog.Logger) *Server {
	return &Server{engine: eng, logger: logger}
}

// Router builds the gin router with all venue routes registered
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestID(s.logger))
	router.Use(logging.RequestLogger(s.logger))

	router.GET("/healthz", s.health)
	router.POST("/orderbooks", s.createBook)
	router.GET("/orderbooks", s.listBooks)
	router.GET("/orderbooks/:symbol", s.getDepth)
	router.POST("/orderbooks/:symbol/orders", s.createOrder)
	router.GET("/orderbooks/:symbol/orders/:id", s.getOrder)
	router.DELETE("/orderbooks/:symbol/orders/:id", s.cancelOrder)

	return router
}

type createBookRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

type createOrderRequest struct {
	Side     string `json:"side" binding:"required"`
	Quantity string `json:"quantity" binding:"required"`
	Price    string `json:"price" binding:"required"`
}

type orderResponse struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
	Filled    string `json:"filled"`
	Remaining string `json:"remaining"`
	Status    string `json:"status"`
}

func toOrderResponse(order *core.Order) orderResponse {
	return orderResponse{
		ID:        strconv.FormatUint(order.ID(), 10),
		Symbol:    order.Symbol(),
		Side:      order.Side().String(),
		Quantity:  order.Quantity().String(),
		Price:     order.Price().String(),
		Filled:    order.Filled().String(),
		Remaining: order.Remaining().String(),
		Status:    string(order.Status()),
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) createBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.engine.CreateBook(req.Symbol); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"symbol": req.Symbol})
}

func (s *Server) listBooks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symbols": s.engine.Symbols()})
}

func (s *Server) getDepth(c *gin.Context) {
	depth, err := s.engine.AggregatedBook(c.Param("symbol"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, depth)
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	side, ok := core.SideFromString(req.Side)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be BUY or SELL"})
		return
	}

	order, err := s.engine.CreateOrder(c.Request.Context(), c.Param("symbol"), side, req.Quantity, req.Price)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (s *Server) getOrder(c *gin.Context) {
	orderID, ok := s.parseOrderID(c)
	if !ok {
		return
	}
	order, err := s.engine.GetOrder(c.Param("symbol"), orderID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (s *Server) cancelOrder(c *gin.Context) {
	orderID, ok := s.parseOrderID(c)
	if !ok {
		return
	}
	order, err := s.engine.CancelOrder(c.Request.Context(), c.Param("symbol"), orderID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (s *Server) parseOrderID(c *gin.Context) (uint64, bool) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order id must be a decimal integer"})
		return 0, false
	}
	return orderID, true
}

// writeError maps engine errors to HTTP statuses
func (s *Server) writeError(c *gin.Context, err error) {
	var verrs engine.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verrs})
	case errors.Is(err, core.ErrOrderNotFound), errors.Is(err, engine.ErrUnknownSymbol):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrBookExists), errors.Is(err, core.ErrOrderExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, id.ErrClockRolledBack):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		logging.FromContext(c.Request.Context()).Error().Err(err).Msg("Unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
