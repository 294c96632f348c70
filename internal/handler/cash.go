package handler

import (
	"net/http"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/service"

	"github.com/gin-gonic/gin"
)

// CashHandler serves cash registers and their movement ledger.
type CashHandler struct{ svc service.CashService }

func NewCashHandler(svc service.CashService) *CashHandler {
	return &CashHandler{svc: svc}
}

func (h *CashHandler) ListRegisters(c *gin.Context) {
	resp, err := h.svc.ListRegisters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRegister returns the register with its latest movements embedded.
func (h *CashHandler) GetRegister(c *gin.Context) {
	resp, err := h.svc.GetRegister(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CashHandler) CreateRegister(c *gin.Context) {
	var req dto.CreateCashRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateRegister(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CashHandler) UpdateRegister(c *gin.Context) {
	var req dto.UpdateCashRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RenameRegister(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CashHandler) DeleteRegister(c *gin.Context) {
	if err := h.svc.DeleteRegister(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CashHandler) RecordMovement(c *gin.Context) {
	var req dto.CreateCashMovementRequest
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

func (h *CashHandler) ListMovements(c *gin.Context) {
	var filter dto.CashMovementFilter
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
