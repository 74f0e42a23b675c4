package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/ariefcatur/go-order-console/internal/pagination"
)

// listOrders refreshes the store and keeps the orders in state, or all of
// them when state is empty.
func (c *cli) listOrders(ctx context.Context, state string) ([]orders.Order, error) {
	var want orders.State
	if state != "" {
		st, ok := orders.ParseState(state)
		if !ok {
			names := make([]string, 0, 6)
			for _, s := range orders.States() {
				names = append(names, string(s))
			}
			return nil, fmt.Errorf("unknown state %q, expected one of %s", state, strings.Join(names, ", "))
		}
		want = st
	}
	if err := c.store.Refresh(ctx); err != nil {
		return nil, err
	}
	list := c.store.Orders()
	if want == "" {
		return list, nil
	}
	kept := list[:0]
	for _, o := range list {
		if o.CurrentState == want {
			kept = append(kept, o)
		}
	}
	return kept, nil
}

func (c *cli) showOrder(ctx context.Context, id string) error {
	o, err := c.client.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order    %s\nstate    %s\namount   %s\ncreated  %s\ncustomer %s <%s>\n",
		o.ID, o.CurrentState, o.Amount.StringFixed(2), o.CreationDate.Format("2006-01-02 15:04"),
		o.Customer.Name, o.Customer.Email)
	if o.Notes != "" {
		fmt.Fprintf(c.out, "notes    %s\n", o.Notes)
	}

	fmt.Fprintln(c.out)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tQTY\tUNIT\tSUBTOTAL")
	for _, p := range o.ProductDetails {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", p.Name, p.Quantity, p.UnitPrice.StringFixed(2), p.Subtotal().StringFixed(2))
	}
	_ = tw.Flush()

	if o.CurrentState.Terminal() {
		fmt.Fprintf(c.out, "\n%s is final, no further actions\n", o.CurrentState)
	} else {
		fmt.Fprintln(c.out, "\nactions:")
		for _, a := range orders.AllowedActions(o) {
			fmt.Fprintf(c.out, "  %-18s %s\n", a.Action, a.Label)
		}
	}

	if o.CurrentState == orders.StateCancelled {
		t, err := c.store.TicketFor(ctx, o.ID)
		if err != nil {
			return err
		}
		if t != nil {
			c.printTicket(*t)
		}
	}
	return nil
}

func (c *cli) printTicket(t orders.Ticket) {
	fmt.Fprintf(c.out, "ticket %s  order %s  %s  %s\n",
		t.ID, t.OrderID, t.CreationDate.Format("2006-01-02 15:04"), t.CancellationReason)
}

func (c *cli) printTickets(w pagination.Window[orders.Ticket]) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tORDER\tCREATED\tREASON")
	for _, t := range w.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.OrderID, t.CreationDate.Format("2006-01-02 15:04"), t.CancellationReason)
	}
	_ = tw.Flush()
	c.printFooter(w.Start, w.End, w.Total, w.Page, w.TotalPages)
}

func (c *cli) printProducts(w pagination.Window[orders.Product]) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUNIT PRICE")
	for _, p := range w.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.UnitPrice.StringFixed(2))
	}
	_ = tw.Flush()
	c.printFooter(w.Start, w.End, w.Total, w.Page, w.TotalPages)
}
