package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/ariefcatur/go-order-console/internal/api"
	"github.com/ariefcatur/go-order-console/internal/app"
	"github.com/ariefcatur/go-order-console/internal/config"
	"github.com/ariefcatur/go-order-console/internal/logging"
	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/ariefcatur/go-order-console/internal/pagination"
	"github.com/joho/godotenv"
)

const usage = `usage: orderctl <command> [flags]

commands:
  list        -page N -size N -state S list orders with their allowed actions
  show        -order ID                one order with its products and actions
  logs        -q TEXT -order ID        recent transition logs, newest first
  transition  -order ID -action A [-reason R]
  tickets     -page N -size N          cancellation tickets
  ticket      -order ID | -id ID       cancellation ticket of an order, or by id
  products    -page N -size N          saved products
  product     -id ID
  customer    -id ID
  verify      -order ID                compare local and server action lists
  delete      -order ID
  browse                               interactive order pager
`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	log := logging.NewWithWriter(os.Stderr, cfg.ServiceName+"-ctl", cfg.LogLevel)
	client := api.New(cfg.APIBaseURL, api.WithTimeout(cfg.APITimeout), api.WithLogger(log))
	store := app.NewStore(client, cfg.LogLimit, app.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{store: store, client: client, out: os.Stdout}
	if err := c.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type cli struct {
	store  *app.Store
	client *api.Client
	out    io.Writer
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 0, "page size")
	orderID := fs.String("order", "", "order id")
	action := fs.String("action", "", "transition action")
	reason := fs.String("reason", "", "cancellation reason")
	query := fs.String("q", "", "filter logs by order id")
	id := fs.String("id", "", "ticket, product or customer id")
	state := fs.String("state", "", "only orders in this state")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}

	needOrder := func() error {
		if *orderID == "" {
			return fmt.Errorf("%s: -order is required", cmd)
		}
		return nil
	}
	needID := func() error {
		if *id == "" {
			return fmt.Errorf("%s: -id is required", cmd)
		}
		return nil
	}

	switch cmd {
	case "list":
		list, err := c.listOrders(ctx, *state)
		if err != nil {
			return err
		}
		c.printOrders(pagination.At(list, pagination.OrderSizes, *page, *size))
	case "show":
		if err := needOrder(); err != nil {
			return err
		}
		return c.showOrder(ctx, *orderID)
	case "logs":
		var logs []orders.TransitionLog
		if *orderID != "" {
			var err error
			if logs, err = c.client.OrderLogs(ctx, *orderID); err != nil {
				return err
			}
		} else {
			if err := c.store.Refresh(ctx); err != nil {
				return err
			}
			logs = c.store.Logs()
		}
		logs = orders.SortLogsByDate(orders.FilterLogs(logs, *query), true)
		c.printLogs(pagination.At(logs, pagination.LogSizes, *page, *size))
	case "transition":
		if err := needOrder(); err != nil {
			return err
		}
		if err := c.store.Refresh(ctx); err != nil {
			return err
		}
		a, _ := orders.ParseAction(*action)
		o, err := c.store.Transition(ctx, *orderID, orders.TransitionRequest{Action: a, CancellationReason: *reason})
		if err != nil {
			var se *api.StatusError
			if errors.As(err, &se) && se.Detail != "" {
				return fmt.Errorf("%w (server: %s)", err, se.Detail)
			}
			return err
		}
		fmt.Fprintf(c.out, "order %s is now %s\n", o.ID, o.CurrentState)
	case "tickets":
		ts, err := c.client.ListTickets(ctx)
		if err != nil {
			return err
		}
		c.printTickets(pagination.At(ts, pagination.LogSizes, *page, *size))
	case "ticket":
		if *id != "" {
			t, err := c.client.GetTicket(ctx, *id)
			if err != nil {
				return err
			}
			c.printTicket(t)
			return nil
		}
		if err := needOrder(); err != nil {
			return err
		}
		t, err := c.store.TicketFor(ctx, *orderID)
		if err != nil {
			return err
		}
		if t == nil {
			fmt.Fprintf(c.out, "order %s has no cancellation ticket\n", *orderID)
			return nil
		}
		c.printTicket(*t)
	case "products":
		ps, err := c.client.ListProducts(ctx)
		if err != nil {
			return err
		}
		c.printProducts(pagination.At(ps, pagination.LogSizes, *page, *size))
	case "product":
		if err := needID(); err != nil {
			return err
		}
		p, err := c.client.GetProduct(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "product %s  %s  %s\n", p.ID, p.Name, p.UnitPrice.StringFixed(2))
	case "customer":
		if err := needID(); err != nil {
			return err
		}
		cu, err := c.client.GetCustomer(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "customer %s  %s <%s>\n", cu.ID, cu.Name, cu.Email)
	case "verify":
		if err := needOrder(); err != nil {
			return err
		}
		if err := c.store.Refresh(ctx); err != nil {
			return err
		}
		chk, err := c.store.VerifyActions(ctx, *orderID)
		if err != nil {
			return err
		}
		verdict := "agree"
		if !chk.Agree {
			verdict = "DISAGREE"
		}
		fmt.Fprintf(c.out, "state %s\nlocal  %s\nserver %s\n%s\n", chk.State, joinActions(chk.Local), joinActions(chk.Server), verdict)
	case "delete":
		if err := needOrder(); err != nil {
			return err
		}
		if err := c.client.DeleteOrder(ctx, *orderID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "order %s deleted\n", *orderID)
	case "browse":
		return browse(ctx, c.store)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
	return nil
}

func joinActions(as []orders.Action) string {
	if len(as) == 0 {
		return "-"
	}
	s := make([]string, len(as))
	for i, a := range as {
		s[i] = string(a)
	}
	return strings.Join(s, ", ")
}

func actionLabels(o orders.Order) string {
	if o.CurrentState.Terminal() {
		return "final"
	}
	acts := orders.AllowedActions(o)
	if len(acts) == 0 {
		return "-"
	}
	s := make([]string, len(acts))
	for i, a := range acts {
		s[i] = a.Label
	}
	return strings.Join(s, " | ")
}

func (c *cli) printOrders(w pagination.Window[orders.Order]) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATE\tAMOUNT\tCUSTOMER\tCREATED\tACTIONS")
	for _, o := range w.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.CurrentState, o.Amount.StringFixed(2), o.Customer.Name,
			o.CreationDate.Format("2006-01-02 15:04"), actionLabels(o))
	}
	_ = tw.Flush()
	c.printFooter(w.Start, w.End, w.Total, w.Page, w.TotalPages)
}

func (c *cli) printLogs(w pagination.Window[orders.TransitionLog]) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tORDER\tACTION\tFROM\tTO")
	for _, l := range w.Items {
		from := "-"
		if l.PreviousState != nil {
			from = string(*l.PreviousState)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			l.TransitionDate.Format("2006-01-02 15:04:05"), l.OrderID, l.ActionTaken, from, l.NewState)
	}
	_ = tw.Flush()
	c.printFooter(w.Start, w.End, w.Total, w.Page, w.TotalPages)
}

func (c *cli) printFooter(start, end, total, page, pages int) {
	if total == 0 {
		fmt.Fprintln(c.out, "nothing to show")
		return
	}
	fmt.Fprintf(c.out, "showing %d-%d of %d", start, end, total)
	if pages > 1 {
		fmt.Fprintf(c.out, "  page %d/%d", page, pages)
	}
	fmt.Fprintln(c.out)
}
