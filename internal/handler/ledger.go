package handler

import (
	"net/http"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/service"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct{ svc service.LedgerService }

func NewLedgerHandler(svc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// Reconcile recomputes stock levels and register balances from the
// ledgers. It always answers 200; drift is reported in the body.
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	resp, err := h.svc.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
