package handlers

import (
	"github.com/gin-gonic/gin"

	"shoptill/internal/core/apperror"
	appctx "shoptill/internal/core/context"
	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
	"shoptill/internal/domain/billing"
	"shoptill/internal/domain/catalog"
	"shoptill/internal/domain/pricing"
	"shoptill/internal/infrastructure/http/v1/dto"
)

// RegisterHandler drives the till: the per-operator draft and its
// finalization into a bill. Item lookups hit the catalog mirror, never
// the database, so ringing up lines stays fast.
type RegisterHandler struct {
	*BaseHandler
	drafts  *billing.DraftStore
	mirror  *catalog.Mirror
	billing *billing.Service
	rules   *pricing.Engine
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(
	base *BaseHandler,
	drafts *billing.DraftStore,
	mirror *catalog.Mirror,
	billingService *billing.Service,
	rules *pricing.Engine,
) *RegisterHandler {
	return &RegisterHandler{
		BaseHandler: base,
		drafts:      drafts,
		mirror:      mirror,
		billing:     billingService,
		rules:       rules,
	}
}

// draftKey scopes the draft to the signed-in operator.
func (h *RegisterHandler) draftKey(c *gin.Context) string {
	return appctx.GetOperatorID(c.Request.Context())
}

func (h *RegisterHandler) draftResponse(c *gin.Context, draft billing.Draft) dto.DraftResponse {
	resp := dto.DraftResponse{
		Lines:           draft.Lines(),
		GrossTotal:      draft.GrossTotal().String(),
		DiscountPercent: draft.DiscountPercent().String(),
		DiscountAmount:  draft.DiscountAmount().String(),
		NetTotal:        draft.NetTotal().String(),
		CashTendered:    draft.CashTendered().String(),
		Balance:         draft.Balance().String(),
	}
	if h.rules != nil && !draft.Empty() {
		suggested := h.rules.Suggest(c.Request.Context(), pricing.Facts{
			GrossTotal: draft.GrossTotal(),
			LineCount:  len(draft.Lines()),
		})
		if !suggested.IsZero() {
			resp.SuggestedOff = suggested.String()
		}
	}
	return resp
}

// Get handles GET /register/draft.
func (h *RegisterHandler) Get(c *gin.Context) {
	h.OK(c, h.draftResponse(c, h.drafts.Get(h.draftKey(c))))
}

// AddLine handles POST /register/draft/lines.
func (h *RegisterHandler) AddLine(c *gin.Context) {
	var req dto.AddLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	itemID, err := id.Parse(req.ItemID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id").WithDetail("itemId", req.ItemID))
		return
	}
	item, ok := h.mirror.Get(itemID)
	if !ok {
		h.Error(c, apperror.NewNotFound("item", req.ItemID))
		return
	}
	if item.DeletionMark {
		h.Error(c, apperror.NewValidation("item is no longer sold").WithDetail("itemId", req.ItemID))
		return
	}

	draft, err := h.drafts.Update(h.draftKey(c), func(d billing.Draft) (billing.Draft, error) {
		return d.AddItem(item, req.Quantity)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.draftResponse(c, draft))
}

// SetLinePrice handles PUT /register/draft/lines/price.
func (h *RegisterHandler) SetLinePrice(c *gin.Context) {
	var req dto.SetLinePriceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	itemID, err := id.Parse(req.ItemID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id").WithDetail("itemId", req.ItemID))
		return
	}
	price, err := types.NewMoneyFromString(req.UnitPrice)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid unit price").WithDetail("unitPrice", req.UnitPrice))
		return
	}

	draft, err := h.drafts.Update(h.draftKey(c), func(d billing.Draft) (billing.Draft, error) {
		return d.SetLinePrice(itemID, price)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.draftResponse(c, draft))
}

// RemoveLine handles DELETE /register/draft/lines.
func (h *RegisterHandler) RemoveLine(c *gin.Context) {
	var req dto.RemoveLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	itemID, err := id.Parse(req.ItemID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id").WithDetail("itemId", req.ItemID))
		return
	}

	draft, err := h.drafts.Update(h.draftKey(c), func(d billing.Draft) (billing.Draft, error) {
		return d.RemoveLine(itemID), nil
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.draftResponse(c, draft))
}

// SetDiscount handles PUT /register/draft/discount.
func (h *RegisterHandler) SetDiscount(c *gin.Context) {
	var req dto.SetDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	pct, err := types.NewMoneyFromString(req.Percent)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid discount percent").WithDetail("percent", req.Percent))
		return
	}

	draft, err := h.drafts.Update(h.draftKey(c), func(d billing.Draft) (billing.Draft, error) {
		return d.SetDiscountPercent(pct)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.draftResponse(c, draft))
}

// SetCash handles PUT /register/draft/cash.
func (h *RegisterHandler) SetCash(c *gin.Context) {
	var req dto.SetCashRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amount, err := types.NewMoneyFromString(req.Amount)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid cash amount").WithDetail("amount", req.Amount))
		return
	}

	draft, err := h.drafts.Update(h.draftKey(c), func(d billing.Draft) (billing.Draft, error) {
		return d.SetCashTendered(amount)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, h.draftResponse(c, draft))
}

// Reset handles DELETE /register/draft.
func (h *RegisterHandler) Reset(c *gin.Context) {
	h.drafts.Reset(h.draftKey(c))
	h.NoContent(c)
}

// Finalize handles POST /register/draft/finalize. On success the draft
// is cleared and the immutable bill is returned; on failure the draft
// stays exactly as it was so the operator can correct and retry.
func (h *RegisterHandler) Finalize(c *gin.Context) {
	var req dto.FinalizeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	key := h.draftKey(c)
	draft := h.drafts.Get(key)

	bill, err := h.billing.Finalize(c.Request.Context(), draft, req.Quotation)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.drafts.Reset(key)
	h.OK(c, bill)
}
