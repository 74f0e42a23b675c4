package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-order-console/internal/app"
	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/ariefcatur/go-order-console/internal/pagination"
	tea "github.com/charmbracelet/bubbletea"
)

type refreshed struct{ err error }

type browser struct {
	ctx    context.Context
	store  *app.Store
	cursor *pagination.Cursor
	window pagination.Window[orders.Order]
	status string
	busy   bool
}

func newBrowser(ctx context.Context, store *app.Store) browser {
	b := browser{
		ctx:    ctx,
		store:  store,
		cursor: pagination.NewCursor(pagination.OrderSizes),
		status: "Ready",
	}
	b.window = pagination.Paginate(store.Orders(), b.cursor)
	return b
}

func browse(ctx context.Context, store *app.Store) error {
	_, err := tea.NewProgram(newBrowser(ctx, store), tea.WithContext(ctx)).Run()
	return err
}

func (b browser) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshed{err: b.store.Refresh(b.ctx)}
	}
}

func (b browser) Init() tea.Cmd {
	return b.refresh()
}

func (b browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return b, tea.Quit
		case "right", "n":
			b.cursor.Next()
		case "left", "p":
			b.cursor.Previous()
		case "home", "g":
			b.cursor.Reset()
		case "s":
			_ = b.cursor.SetSize(nextSize(pagination.OrderSizes.Sizes, b.cursor.Size()))
		case "r":
			if b.busy {
				return b, nil
			}
			b.busy = true
			b.status = "Refreshing..."
			return b, b.refresh()
		}
	case refreshed:
		b.busy = false
		b.status = "Ready"
		if msg.err != nil {
			b.status = "Refresh failed: " + msg.err.Error()
		}
	}
	b.window = pagination.Paginate(b.store.Orders(), b.cursor)
	return b, nil
}

func nextSize(sizes []int, current int) int {
	for i, s := range sizes {
		if s == current {
			return sizes[(i+1)%len(sizes)]
		}
	}
	return sizes[0]
}

func (b browser) View() string {
	sb := &strings.Builder{}
	fmt.Fprintln(sb, "orders")
	fmt.Fprintln(sb, "")
	if len(b.window.Items) == 0 {
		fmt.Fprintln(sb, "  no orders")
	}
	for _, o := range b.window.Items {
		fmt.Fprintf(sb, "  %-36s  %-14s  %10s  %s\n", o.ID, o.CurrentState, o.Amount.StringFixed(2), actionLabels(o))
	}
	fmt.Fprintln(sb, "")
	if b.window.Total > 0 {
		fmt.Fprintf(sb, "Showing %d-%d of %d, %d per page\n", b.window.Start, b.window.End, b.window.Total, b.window.Size)
	}
	if b.window.ShowControls {
		fmt.Fprintln(sb, renderLinks(b.window.Links))
	}
	fmt.Fprintf(sb, "Status: %s", b.status)
	if at := b.store.RefreshedAt(); !at.IsZero() {
		fmt.Fprintf(sb, " (refreshed %s)", at.Format("15:04:05"))
	}
	fmt.Fprintln(sb)
	fmt.Fprintln(sb, "\nControls: left/right page, g first page, s page size, r refresh, q quit")
	return sb.String()
}

func renderLinks(links []pagination.Link) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		switch {
		case l.Ellipsis:
			parts = append(parts, "...")
		case l.Current:
			parts = append(parts, fmt.Sprintf("[%d]", l.Page))
		default:
			parts = append(parts, fmt.Sprint(l.Page))
		}
	}
	return strings.Join(parts, " ")
}
