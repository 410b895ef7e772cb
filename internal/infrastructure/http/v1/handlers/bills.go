package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shoptill/internal/core/apperror"
	"shoptill/internal/core/types"
	"shoptill/internal/domain/billing"
	"shoptill/internal/infrastructure/http/v1/dto"
	"shoptill/internal/render"
)

// BillHandler handles historical bill lookup, credit settlement and
// voiding.
type BillHandler struct {
	*BaseHandler
	service *billing.Service
	receipt *render.Receipt
}

// NewBillHandler creates a new bill handler.
func NewBillHandler(base *BaseHandler, service *billing.Service, receipt *render.Receipt) *BillHandler {
	return &BillHandler{BaseHandler: base, service: service, receipt: receipt}
}

// Get handles GET /bills/:number.
func (h *BillHandler) Get(c *gin.Context) {
	bill, err := h.service.FindByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bill)
}

// Receipt handles GET /bills/:number/receipt, returning printable text.
func (h *BillHandler) Receipt(c *gin.Context) {
	bill, err := h.service.FindByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}
	text, err := h.receipt.Render(bill)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// ListCredit handles GET /bills/credit.
func (h *BillHandler) ListCredit(c *gin.Context) {
	bills, err := h.service.ListUnsettled(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: bills, Count: len(bills)})
}

// Settle handles POST /bills/:number/settle.
func (h *BillHandler) Settle(c *gin.Context) {
	var req dto.SettleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cash, err := types.NewMoneyFromString(req.CashTendered)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid cash amount").WithDetail("cashTendered", req.CashTendered))
		return
	}

	bill, err := h.service.Settle(c.Request.Context(), c.Param("number"), cash)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bill)
}

// Void handles DELETE /bills/:number.
func (h *BillHandler) Void(c *gin.Context) {
	if err := h.service.Void(c.Request.Context(), c.Param("number")); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
