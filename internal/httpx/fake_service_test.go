package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/shopspring/decimal"
)

// fakeService is an in-memory stand-in for the persistence service speaking
// its snake_case wire format.
type fakeService struct {
	mu              sync.Mutex
	seq             int
	orders          []map[string]any
	logs            []map[string]any
	tickets         map[string]string
	transitionCalls int
	logsDown        bool
}

func newFakeService() *fakeService {
	return &fakeService{tickets: map[string]string{}}
}

func (f *fakeService) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeService) seed(id string, amount float64, state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, map[string]any{
		"id":            id,
		"amount":        amount,
		"current_state": state,
		"creation_date": "2025-03-04T10:00:00",
		"customer":      map[string]any{"id": "c-seed", "name": "Seed", "email": "seed@x.com"},
		"products":      []any{},
		"notes":         nil,
	})
	f.logs = append(f.logs, map[string]any{
		"id": f.nextID("l"), "order_id": id, "previous_state": nil, "new_state": state,
		"action_taken": "create", "transition_date": "2025-03-04T10:00:00",
	})
}

func (f *fakeService) transitions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transitionCalls
}

func (f *fakeService) setLogsDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logsDown = down
}

func (f *fakeService) find(id string) map[string]any {
	for _, o := range f.orders {
		if o["id"] == id {
			return o
		}
	}
	return nil
}

func reply(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		reply(w, http.StatusOK, f.orders)
	})
	mux.HandleFunc("GET /orders/logs", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.logsDown {
			reply(w, http.StatusServiceUnavailable, map[string]string{"detail": "Database unavailable"})
			return
		}
		reply(w, http.StatusOK, f.logs)
	})
	mux.HandleFunc("POST /products", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		body["id"] = f.nextID("p")
		reply(w, http.StatusCreated, body)
	})
	mux.HandleFunc("POST /customers", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		body["id"] = f.nextID("c")
		reply(w, http.StatusCreated, body)
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		id := f.nextID("o")
		o := map[string]any{
			"id":            id,
			"amount":        body["amount"],
			"current_state": body["current_state"],
			"creation_date": "2025-03-04T11:00:00",
			"customer":      map[string]any{"id": body["customer_id"], "name": "Jane", "email": "jane@x.com"},
			"products":      body["products"],
			"notes":         body["notes"],
		}
		f.orders = append(f.orders, o)
		reply(w, http.StatusCreated, o)
	})
	mux.HandleFunc("POST /orders/{id}/transition", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action string `json:"action"`
			Reason string `json:"cancellation_reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.transitionCalls++
		o := f.find(r.PathValue("id"))
		if o == nil {
			reply(w, http.StatusNotFound, map[string]string{"detail": "Order not found"})
			return
		}
		prev := o["current_state"].(string)
		next, ok := orders.Next(orders.State(prev), decimal.NewFromFloat(o["amount"].(float64)), orders.Action(body.Action))
		if !ok {
			reply(w, http.StatusBadRequest, map[string]string{"detail": "Invalid transition from " + prev})
			return
		}
		o["current_state"] = string(next)
		f.logs = append(f.logs, map[string]any{
			"id": f.nextID("l"), "order_id": o["id"], "previous_state": prev, "new_state": string(next),
			"action_taken": body.Action, "transition_date": "2025-03-04T12:00:00",
		})
		if next == orders.StateCancelled {
			f.tickets[o["id"].(string)] = body.Reason
		}
		reply(w, http.StatusOK, o)
	})
	mux.HandleFunc("GET /orders/{id}/allowed-actions", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []string{"start_preparation", "cancel"})
	})
	mux.HandleFunc("GET /tickets/order/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		reason, ok := f.tickets[id]
		if !ok {
			reply(w, http.StatusNotFound, map[string]string{"detail": "Ticket not found"})
			return
		}
		reply(w, http.StatusOK, map[string]any{
			"id": "t-" + id, "order_id": id, "cancellation_reason": reason,
			"creation_date": "2025-03-04T12:00:00",
		})
	})
	return mux
}
