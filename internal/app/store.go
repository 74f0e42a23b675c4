// Package app owns the console's copy of the order and log collections.
// The server is the source of truth; every mutation ends with Refresh, which
// replaces both collections wholesale.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ariefcatur/go-order-console/internal/draft"
	"github.com/ariefcatur/go-order-console/internal/orders"
	"github.com/ariefcatur/go-order-console/internal/session"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownOrder = errors.New("order not loaded")

const (
	submitClaimTTL = 2 * time.Minute
	submitDoneTTL  = 24 * time.Hour
)

type Backend interface {
	ListOrders(ctx context.Context) ([]orders.Order, error)
	GetOrder(ctx context.Context, id string) (orders.Order, error)
	RecentLogs(ctx context.Context, limit int) ([]orders.TransitionLog, error)
	Transition(ctx context.Context, orderID string, req orders.TransitionRequest) (orders.Order, error)
	AllowedActions(ctx context.Context, orderID string) ([]orders.Action, error)
	TicketForOrder(ctx context.Context, orderID string) (*orders.Ticket, error)
}

type Store struct {
	api      Backend
	pub      Publisher
	locks    session.Locker
	log      zerolog.Logger
	logLimit int

	mu          sync.RWMutex
	orders      []orders.Order
	logs        []orders.TransitionLog
	refreshedAt time.Time
}

type Option func(*Store)

func WithPublisher(p Publisher) Option   { return func(s *Store) { s.pub = p } }
func WithLocker(l session.Locker) Option { return func(s *Store) { s.locks = l } }
func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.log = l } }

func NewStore(api Backend, logLimit int, opts ...Option) *Store {
	s := &Store{
		api:      api,
		pub:      NopPublisher{},
		locks:    session.NewMemoryLocker(),
		log:      zerolog.Nop(),
		logLimit: logLimit,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Refresh fetches orders and recent logs concurrently. Local state is only
// replaced when both succeed.
func (s *Store) Refresh(ctx context.Context) error {
	var (
		list   []orders.Order
		recent []orders.TransitionLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.api.ListOrders(gctx)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = s.api.RecentLogs(gctx, s.logLimit)
		if err != nil {
			return fmt.Errorf("list logs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.orders = list
	s.logs = recent
	s.refreshedAt = time.Now()
	s.mu.Unlock()
	s.log.Debug().Int("orders", len(list)).Int("logs", len(recent)).Msg("store refreshed")
	return nil
}

func (s *Store) Orders() []orders.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

func (s *Store) Logs() []orders.TransitionLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logs)
}

func (s *Store) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

func (s *Store) Order(id string) (orders.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return orders.Order{}, false
	}
	return s.orders[i], true
}

// Adjacent returns the ids before and after id in list order. Either is empty
// at the ends of the list.
func (s *Store) Adjacent(id string) (prev, next string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return "", "", false
	}
	if i > 0 {
		prev = s.orders[i-1].ID
	}
	if i < len(s.orders)-1 {
		next = s.orders[i+1].ID
	}
	return prev, next, true
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.orders, func(o orders.Order) bool { return o.ID == id })
}

// Transition validates locally, asks the server to apply the action, then
// refreshes. A *orders.ValidationError means no request was made; a server
// or network failure comes back as *orders.TransitionError and leaves the
// local collections untouched.
func (s *Store) Transition(ctx context.Context, orderID string, req orders.TransitionRequest) (orders.Order, error) {
	if err := req.Validate(); err != nil {
		return orders.Order{}, err
	}
	req = req.Normalized()

	previous, _ := s.Order(orderID)
	if previous.ID != "" && !orders.CanTransition(previous, req.Action) {
		// the local list is advisory; the server decides
		s.log.Warn().
			Str("order_id", orderID).
			Str("state", string(previous.CurrentState)).
			Str("action", string(req.Action)).
			Msg("action not offered locally, sending anyway")
	}

	o, err := s.api.Transition(ctx, orderID, req)
	if err != nil {
		s.log.Error().Err(err).Str("order_id", orderID).Str("action", string(req.Action)).Msg("transition failed")
		return orders.Order{}, &orders.TransitionError{OrderID: orderID, Action: req.Action, Err: err}
	}
	s.log.Info().
		Str("order_id", orderID).
		Str("action", string(req.Action)).
		Str("state", string(o.CurrentState)).
		Msg("order transitioned")

	if err := s.pub.OrderTransitioned(ctx, previous.CurrentState, o, req); err != nil {
		s.log.Warn().Err(err).Str("order_id", orderID).Msg("publish transition")
	}
	s.refreshAfter(ctx, "transition")
	return o, nil
}

// SubmitDraft submits d under key. A key that already produced an order
// replays that order with replayed set; a key whose submit is still in
// flight is refused with draft.ErrSubmitting.
func (s *Store) SubmitDraft(ctx context.Context, key string, d *draft.Draft) (o orders.Order, replayed bool, err error) {
	if prev, ok, err := s.Submitted(ctx, key); err != nil {
		return orders.Order{}, false, err
	} else if ok {
		return prev, true, nil
	}

	claimed, err := s.locks.Claim(ctx, key, submitClaimTTL)
	if err != nil {
		return orders.Order{}, false, fmt.Errorf("claim submit lock: %w", err)
	}
	if !claimed {
		return orders.Order{}, false, draft.ErrSubmitting
	}

	o, err = d.Submit(ctx)
	if err != nil {
		if rerr := s.locks.Release(ctx, key); rerr != nil {
			s.log.Warn().Err(rerr).Str("draft_id", key).Msg("release submit lock")
		}
		var oce *orders.OrderCreationError
		if errors.As(err, &oce) {
			s.log.Error().Err(err).Str("draft_id", key).Str("customer_id", oce.CustomerID).Msg("order creation failed")
		}
		return orders.Order{}, false, err
	}
	if err := s.locks.Complete(ctx, key, o.ID, submitDoneTTL); err != nil {
		s.log.Warn().Err(err).Str("draft_id", key).Str("order_id", o.ID).Msg("record submitted order")
	}
	s.log.Info().Str("order_id", o.ID).Str("amount", o.Amount.String()).Msg("order created")

	if err := s.pub.OrderCreated(ctx, o, o.Customer.ID); err != nil {
		s.log.Warn().Err(err).Str("order_id", o.ID).Msg("publish order created")
	}
	s.refreshAfter(ctx, "submit")
	return o, false, nil
}

// Submitted reports the order an earlier submit under key created. An order
// not in the local list yet, such as one created through another console
// sharing the lock, is fetched from the service.
func (s *Store) Submitted(ctx context.Context, key string) (orders.Order, bool, error) {
	id, found, err := s.locks.Lookup(ctx, key)
	if err != nil {
		return orders.Order{}, false, fmt.Errorf("lookup submit lock: %w", err)
	}
	if !found {
		return orders.Order{}, false, nil
	}
	if o, ok := s.Order(id); ok {
		return o, true, nil
	}
	o, err := s.api.GetOrder(ctx, id)
	if err != nil {
		return orders.Order{}, false, fmt.Errorf("load submitted order %s: %w", id, err)
	}
	return o, true, nil
}

// refreshAfter keeps a successful mutation successful even when the
// follow-up fetch fails; the stale list stays until the next refresh.
func (s *Store) refreshAfter(ctx context.Context, op string) {
	if err := s.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Str("after", op).Msg("refresh failed")
	}
}

// ActionCheck compares the locally derived action list with the server's.
type ActionCheck struct {
	OrderID string          `json:"orderId"`
	State   orders.State    `json:"state"`
	Local   []orders.Action `json:"local"`
	Server  []orders.Action `json:"server"`
	Agree   bool            `json:"agree"`
}

// VerifyActions asks the server for its action list. A disagreement is
// logged, not returned as an error.
func (s *Store) VerifyActions(ctx context.Context, orderID string) (ActionCheck, error) {
	o, ok := s.Order(orderID)
	if !ok {
		return ActionCheck{}, ErrUnknownOrder
	}
	server, err := s.api.AllowedActions(ctx, orderID)
	if err != nil {
		return ActionCheck{}, fmt.Errorf("allowed actions: %w", err)
	}
	local := make([]orders.Action, 0, 2)
	for _, a := range orders.AllowedActions(o) {
		local = append(local, a.Action)
	}
	c := ActionCheck{
		OrderID: orderID,
		State:   o.CurrentState,
		Local:   local,
		Server:  server,
		Agree:   sameActions(local, server),
	}
	if !c.Agree {
		s.log.Warn().
			Str("order_id", orderID).
			Interface("local", local).
			Interface("server", server).
			Msg("allowed actions disagree")
	}
	return c, nil
}

func sameActions(a, b []orders.Action) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

// TicketFor returns nil when the order was never cancelled.
func (s *Store) TicketFor(ctx context.Context, orderID string) (*orders.Ticket, error) {
	t, err := s.api.TicketForOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("ticket for order %s: %w", orderID, err)
	}
	return t, nil
}
