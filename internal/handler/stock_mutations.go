package handler

import (
	"net/http"

	"stockroom/internal/dto"
	"stockroom/internal/service"

	"github.com/gin-gonic/gin"
)

// StockMutationsHandler exposes the append-only ledger: record and read, no
// update or delete routes on purpose.
type StockMutationsHandler struct{ svc service.LedgerService }

func NewStockMutationsHandler(svc service.LedgerService) *StockMutationsHandler {
	return &StockMutationsHandler{svc: svc}
}

func (h *StockMutationsHandler) Record(c *gin.Context) {
	var req dto.RecordMutationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor := actorFrom(c)
	resp, err := h.svc.Record(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StockMutationsHandler) List(c *gin.Context) {
	var filter dto.StockMutationFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockMutationsHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockMutationsHandler) ListByProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListByProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
