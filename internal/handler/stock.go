package handler

import (
	"net/http"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/service"

	"github.com/gin-gonic/gin"
)

// StockHandler serves the stock movement ledger and the stock levels it
// maintains. Movements are append-only: there is no update or delete.
type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

func (h *StockHandler) RecordMovement(c *gin.Context) {
	var req dto.CreateStockMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordMovement(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockHandler) ListLevels(c *gin.Context) {
	var filter dto.StockLevelFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListLevels(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
