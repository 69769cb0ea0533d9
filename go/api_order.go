package posserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/domain"
	orderingports "github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
)

// streamHeartbeat is how often an idle order stream re-checks its session.
const streamHeartbeat = 15 * time.Second

// OrderAPI drives the order of the caller's session.
type OrderAPI struct {
	service orderingports.Service
}

func NewOrderAPI(service orderingports.Service) OrderAPI {
	return OrderAPI{service: service}
}

// Get /v1/order
// Current order with rounded totals
func (api *OrderAPI) GetOrder(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	state, err := api.service.Order(c.Request.Context(), claims.SessionID)
	api.respondState(c, state, err)
}

// Get /v1/order/events
// Server-sent order events: the current order, then one per change
func (api *OrderAPI) StreamOrder(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	updates := make(chan orderingports.State, 1)
	cancel, err := api.service.Watch(ctx, claims.SessionID, func(state orderingports.State) {
		offerLatest(updates, state)
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer cancel()
	state, err := api.service.Order(ctx, claims.SessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("order", toOrder(state))
	c.Writer.Flush()
	sent := state.Version

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := api.service.Order(ctx, claims.SessionID); err != nil {
				return
			}
		case state := <-updates:
			if state.Version <= sent {
				continue
			}
			c.SSEvent("order", toOrder(state))
			c.Writer.Flush()
			sent = state.Version
		}
	}
}

// offerLatest replaces any undelivered state in ch with state without blocking.
func offerLatest(ch chan orderingports.State, state orderingports.State) {
	for {
		select {
		case ch <- state:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Post /v1/order/items
// Add one unit of a catalog item
func (api *OrderAPI) AddItem(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var payload AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	state, err := api.service.AddItem(c.Request.Context(), claims.SessionID, payload.ItemId)
	api.respondState(c, state, err)
}

// Patch /v1/order/items/:itemId
// Change a line quantity by delta; a line reaching zero is removed
func (api *OrderAPI) ChangeQuantity(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	itemID, ok := bindPathParam(c, "itemId")
	if !ok {
		return
	}
	var payload ChangeQuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	state, err := api.service.ChangeQuantity(c.Request.Context(), claims.SessionID, itemID, payload.Delta)
	api.respondState(c, state, err)
}

// Delete /v1/order/items/:itemId
// Remove a line
func (api *OrderAPI) RemoveItem(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	itemID, ok := bindPathParam(c, "itemId")
	if !ok {
		return
	}
	state, err := api.service.RemoveItem(c.Request.Context(), claims.SessionID, itemID)
	api.respondState(c, state, err)
}

// Put /v1/order/discount
// Set the discount percentage
func (api *OrderAPI) SetDiscount(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var payload DiscountRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	state, applied, err := api.service.SetDiscountPercent(c.Request.Context(), claims.SessionID, string(payload.Value))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, DiscountResponse{Applied: applied, Order: toOrder(state)})
}

// Delete /v1/order
// Empty the order and reset the discount
func (api *OrderAPI) ClearOrder(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	state, err := api.service.Clear(c.Request.Context(), claims.SessionID)
	api.respondState(c, state, err)
}

// Post /v1/order/checkout
// Submit the order; an empty order is not submitted
func (api *OrderAPI) Checkout(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	result, err := api.service.Checkout(c.Request.Context(), claims.SessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !result.Submitted {
		c.JSON(http.StatusOK, CheckoutResponse{Submitted: false})
		return
	}
	totals := toPricing(result.Totals)
	c.JSON(http.StatusCreated, CheckoutResponse{OrderId: result.OrderID, Submitted: true, Totals: &totals})
}

func (api *OrderAPI) respondState(c *gin.Context, state orderingports.State, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(state))
}

func toOrder(state orderingports.State) Order {
	lines := make([]OrderLine, 0, len(state.Order.Lines))
	for _, line := range state.Order.Lines {
		lines = append(lines, OrderLine{
			ItemId:    line.ItemID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.StringFixed(domain.CurrencyPlaces),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal().StringFixed(domain.CurrencyPlaces),
		})
	}
	return Order{
		SessionId:       state.SessionID,
		Employee:        state.Employee,
		Lines:           lines,
		DiscountPercent: state.Order.DiscountPercent.String(),
		Pricing:         toPricing(state.Pricing),
		Version:         state.Version,
	}
}

func toPricing(p domain.PricingResult) Pricing {
	r := p.Rounded()
	return Pricing{
		Subtotal:       r.Subtotal.StringFixed(domain.CurrencyPlaces),
		DiscountAmount: r.DiscountAmount.StringFixed(domain.CurrencyPlaces),
		TaxableAmount:  r.TaxableAmount.StringFixed(domain.CurrencyPlaces),
		TaxAmount:      r.TaxAmount.StringFixed(domain.CurrencyPlaces),
		Total:          r.Total.StringFixed(domain.CurrencyPlaces),
	}
}
