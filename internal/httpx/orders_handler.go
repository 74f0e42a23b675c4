package httpx

import (
	"context"
	"net/http"

	"github.com/ariefcatur/go-order-console/internal/app"
	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/ariefcatur/go-order-console/internal/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type OrderStore interface {
	Orders() []orders.Order
	Logs() []orders.TransitionLog
	Order(id string) (orders.Order, bool)
	Adjacent(id string) (prev, next string, ok bool)
	Refresh(ctx context.Context) error
	Transition(ctx context.Context, orderID string, req orders.TransitionRequest) (orders.Order, error)
	VerifyActions(ctx context.Context, orderID string) (app.ActionCheck, error)
	TicketFor(ctx context.Context, orderID string) (*orders.Ticket, error)
}

type OrdersHandler struct {
	Store OrderStore
	Log   zerolog.Logger
}

type orderView struct {
	orders.Order
	AllowedActions []orders.AllowedAction `json:"allowedActions"`
}

type orderDetail struct {
	orderView
	PreviousID string                 `json:"previousId,omitempty"`
	NextID     string                 `json:"nextId,omitempty"`
	Ticket     *orders.Ticket         `json:"ticket,omitempty"`
	Logs       []orders.TransitionLog `json:"logs"`
}

type transitionReq struct {
	Action             string `json:"action"`
	CancellationReason string `json:"cancellationReason"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/actions/verify", h.verifyActions)
	r.Post("/orders/{id}/transition", h.transition)
	r.Get("/logs", h.listLogs)
	r.Post("/refresh", h.refresh)
}

func view(o orders.Order) orderView {
	return orderView{Order: o, AllowedActions: orders.AllowedActions(o)}
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	all := h.Store.Orders()
	views := make([]orderView, 0, len(all))
	for _, o := range all {
		views = append(views, view(o))
	}
	writeJSON(w, http.StatusOK, pagination.At(views, pagination.OrderSizes, queryInt(r, "page", 1), queryInt(r, "size", 0)))
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, ok := h.Store.Order(id)
	if !ok {
		writeError(w, h.Log, app.ErrUnknownOrder)
		return
	}
	prev, next, _ := h.Store.Adjacent(id)
	d := orderDetail{
		orderView:  view(o),
		PreviousID: prev,
		NextID:     next,
		Logs:       orders.SortLogsByDate(orders.LogsForOrder(h.Store.Logs(), id), true),
	}
	if o.CurrentState == orders.StateCancelled {
		t, err := h.Store.TicketFor(r.Context(), id)
		if err != nil {
			// the order itself is still worth showing
			h.Log.Warn().Err(err).Str("order_id", id).Msg("ticket lookup")
		}
		d.Ticket = t
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *OrdersHandler) verifyActions(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.VerifyActions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *OrdersHandler) transition(w http.ResponseWriter, r *http.Request) {
	var req transitionReq
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	action, ok := orders.ParseAction(req.Action)
	if !ok {
		action = orders.Action(req.Action)
	}
	o, err := h.Store.Transition(r.Context(), chi.URLParam(r, "id"), orders.TransitionRequest{
		Action:             action,
		CancellationReason: req.CancellationReason,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, view(o))
}

func (h *OrdersHandler) listLogs(w http.ResponseWriter, r *http.Request) {
	logs := orders.SortLogsByDate(orders.FilterLogs(h.Store.Logs(), r.URL.Query().Get("q")), true)
	writeJSON(w, http.StatusOK, pagination.At(logs, pagination.LogSizes, queryInt(r, "page", 1), queryInt(r, "size", 0)))
}

func (h *OrdersHandler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Refresh(r.Context()); err != nil {
		h.Log.Error().Err(err).Msg("refresh failed")
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:  "could not load orders, please try again",
			Detail: serverDetail(err),
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
