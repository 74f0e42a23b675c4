package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ariefcatur/go-order-console/internal/api"
	"github.com/ariefcatur/go-order-console/internal/app"
	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/ariefcatur/go-order-console/internal/pagination"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersJSON = `[
	{"id":"o-1","amount":1500,"current_state":"pending","creation_date":"2025-03-04T10:00:00",
	 "customer":{"id":"c-1","name":"Jane","email":"jane@x.com"},"products":[],"notes":null},
	{"id":"o-2","amount":20,"current_state":"delivered","creation_date":"2025-03-04T09:00:00",
	 "customer":{"id":"c-2","name":"Ana","email":"ana@x.com"},"products":[],"notes":"gift"}
]`

const cancelledJSON = `{"id":"o-3","amount":"19.98","current_state":"cancelled","creation_date":"2025-03-04T08:00:00",
	"customer":{"id":"c-3","name":"Bo","email":"bo@x.com"},
	"products":[{"product_id":"p-1","name":"Mug","quantity":2,"unit_price":9.99}],"notes":"leave at door"}`

const ticketJSON = `{"id":"t-1","order_id":"o-3","cancellation_reason":"out of stock","creation_date":"2025-03-04T09:30:00"}`

func newCLI(t *testing.T) (*cli, *bytes.Buffer, *atomic.Int32) {
	t.Helper()
	transitions := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, ordersJSON)
	})
	mux.HandleFunc("GET /orders/logs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"l-1","order_id":"o-1","previous_state":null,"new_state":"pending","action_taken":"create","transition_date":"2025-03-04T10:00:00"}]`)
	})
	mux.HandleFunc("POST /orders/{id}/transition", func(w http.ResponseWriter, r *http.Request) {
		transitions.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"Invalid transition"}`)
	})
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "o-1":
			_, _ = io.WriteString(w, `{"id":"o-1","amount":1500,"current_state":"pending","creation_date":"2025-03-04T10:00:00",
				"customer":{"id":"c-1","name":"Jane","email":"jane@x.com"},"products":[],"notes":null}`)
		case "o-3":
			_, _ = io.WriteString(w, cancelledJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	mux.HandleFunc("GET /tickets/order/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "o-3" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, ticketJSON)
	})
	mux.HandleFunc("GET /tickets", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "["+ticketJSON+"]")
	})
	mux.HandleFunc("GET /tickets/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "t-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, ticketJSON)
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"p-1","name":"Mug","unit_price":9.99},{"id":"p-2","name":"Lamp","unit_price":"45"}]`)
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"p-1","name":"Mug","unit_price":9.99}`)
	})
	mux.HandleFunc("GET /customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"c-3","name":"Bo","email":"bo@x.com"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL)
	out := &bytes.Buffer{}
	return &cli{store: app.NewStore(client, 100), client: client, out: out}, out, transitions
}

func TestListCommand(t *testing.T) {
	c, out, _ := newCLI(t)
	require.NoError(t, c.run(context.Background(), "list", nil))

	s := out.String()
	assert.Contains(t, s, "o-1")
	assert.Contains(t, s, "1500.00")
	assert.Contains(t, s, "Submit for Review | Cancel Order")
	assert.Contains(t, s, "showing 1-2 of 2")
}

func TestListCommandFiltersByState(t *testing.T) {
	c, out, _ := newCLI(t)
	require.NoError(t, c.run(context.Background(), "list", []string{"-state", " Delivered "}))

	s := out.String()
	assert.Contains(t, s, "o-2")
	assert.NotContains(t, s, "o-1")
	assert.Contains(t, s, "final", "terminal orders offer no actions")
	assert.Contains(t, s, "showing 1-1 of 1")

	err := c.run(context.Background(), "list", []string{"-state", "lost"})
	assert.ErrorContains(t, err, "expected one of pending, review, in_preparation, shipped, delivered, cancelled")
}

func TestShowCommand(t *testing.T) {
	c, out, _ := newCLI(t)
	ctx := context.Background()

	require.NoError(t, c.run(ctx, "show", []string{"-order", "o-1"}))
	s := out.String()
	assert.Contains(t, s, "amount   1500.00")
	assert.Contains(t, s, "submit_for_review")
	assert.NotContains(t, s, "is final")

	out.Reset()
	require.NoError(t, c.run(ctx, "show", []string{"-order", "o-3"}))
	s = out.String()
	assert.Contains(t, s, "notes    leave at door")
	assert.Regexp(t, `Mug\s+2\s+9.99\s+19.98`, s)
	assert.Contains(t, s, "cancelled is final, no further actions")
	assert.Contains(t, s, "ticket t-1  order o-3")
	assert.Contains(t, s, "out of stock")

	assert.ErrorIs(t, c.run(ctx, "show", []string{"-order", "o-9"}), api.ErrNotFound)
}

func TestLookupCommands(t *testing.T) {
	c, out, _ := newCLI(t)
	ctx := context.Background()

	require.NoError(t, c.run(ctx, "tickets", nil))
	assert.Contains(t, out.String(), "t-1")
	assert.Contains(t, out.String(), "showing 1-1 of 1")

	out.Reset()
	require.NoError(t, c.run(ctx, "ticket", []string{"-id", "t-1"}))
	assert.Contains(t, out.String(), "ticket t-1  order o-3  2025-03-04 09:30  out of stock")
	assert.ErrorIs(t, c.run(ctx, "ticket", []string{"-id", "t-9"}), api.ErrNotFound)

	out.Reset()
	require.NoError(t, c.run(ctx, "products", []string{"-size", "5"}))
	assert.Contains(t, out.String(), "Lamp")
	assert.Contains(t, out.String(), "45.00")

	out.Reset()
	require.NoError(t, c.run(ctx, "product", []string{"-id", "p-1"}))
	assert.Equal(t, "product p-1  Mug  9.99\n", out.String())

	out.Reset()
	require.NoError(t, c.run(ctx, "customer", []string{"-id", "c-3"}))
	assert.Equal(t, "customer c-3  Bo <bo@x.com>\n", out.String())

	assert.ErrorContains(t, c.run(ctx, "customer", nil), "-id is required")
}

func TestLogsCommand(t *testing.T) {
	c, out, _ := newCLI(t)
	require.NoError(t, c.run(context.Background(), "logs", []string{"-q", "O-1"}))
	assert.Contains(t, out.String(), "create")

	out.Reset()
	require.NoError(t, c.run(context.Background(), "logs", []string{"-q", "zzz"}))
	assert.Contains(t, out.String(), "nothing to show")
}

func TestTransitionCommand(t *testing.T) {
	c, _, calls := newCLI(t)
	ctx := context.Background()

	err := c.run(ctx, "transition", []string{"-order", "o-1", "-action", "cancel"})
	var ve *orders.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, calls.Load())

	err = c.run(ctx, "transition", []string{"-order", "o-1", "-action", "ship"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server: Invalid transition")
	assert.Equal(t, int32(1), calls.Load())

	assert.Error(t, c.run(ctx, "transition", []string{"-action", "ship"}), "order flag required")
}

func TestTicketAndUnknownCommands(t *testing.T) {
	c, out, _ := newCLI(t)
	require.NoError(t, c.run(context.Background(), "ticket", []string{"-order", "o-1"}))
	assert.Contains(t, out.String(), "has no cancellation ticket")

	assert.ErrorContains(t, c.run(context.Background(), "explode", nil), "unknown command")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowserPaging(t *testing.T) {
	c, _, _ := newCLI(t)
	require.NoError(t, c.store.Refresh(context.Background()))

	var m tea.Model = newBrowser(context.Background(), c.store)
	b := m.(browser)
	assert.Equal(t, 9, b.window.Size)
	assert.Len(t, b.window.Items, 2)
	assert.False(t, b.window.ShowControls)

	m, _ = m.Update(key("s"))
	assert.Equal(t, 12, m.(browser).window.Size)

	m, _ = m.Update(key("right"))
	assert.Equal(t, 1, m.(browser).window.Page, "single page stays put")

	m, _ = m.Update(refreshed{})
	assert.Contains(t, m.View(), "Showing 1-2 of 2, 12 per page")
	assert.Contains(t, m.View(), "Status: Ready (refreshed ")

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
}

func TestRenderLinks(t *testing.T) {
	assert.Equal(t, "1 ... 4 [5] 6 ... 10", renderLinks(pagination.Links(5, 10)))
	assert.Equal(t, 6, nextSize(pagination.OrderSizes.Sizes, 24))
}
