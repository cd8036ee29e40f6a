// Package actor implements the single-threaded cooperative actor-per-order-
// book model from spec §5: one goroutine owns a book's mutable state,
// submissions are presented as a serialized queue, and a submission runs to
// completion — including any cascading fills — before the next is accepted.
package actor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	xcrypto "github.com/lucentlabs/dexmatcher/pkg/crypto"
	"github.com/lucentlabs/dexmatcher/pkg/errs"
	"github.com/lucentlabs/dexmatcher/pkg/matching"
	"github.com/lucentlabs/dexmatcher/pkg/order"
	"github.com/lucentlabs/dexmatcher/pkg/orderbook"
	"github.com/lucentlabs/dexmatcher/util"
)

// eventStallWarnAfter is how long a blocked push to the caller's event
// channel waits before the actor logs a stall warning. Logging happens once
// per stall; the push itself keeps blocking until the caller drains.
const eventStallWarnAfter = 2 * time.Second

// request is one unit of work the actor processes serially.
type request struct {
	order    order.AcceptedOrder // nil for a cancel request
	cancelID xcrypto.Hash32
	isCancel bool
	now      int64
	reply    chan response
}

type response struct {
	events []matching.Event
	err    error
}

// BookActor owns one OrderBook and runs matching.Engine.Match against it on
// a single goroutine, so book mutation is never interleaved across
// submissions (spec §5's only required ordering).
type BookActor struct {
	book   *orderbook.OrderBook
	engine *matching.Engine
	in     chan request
	events chan matching.Event
	done   chan struct{}

	logger *zap.SugaredLogger
	clock  util.Clock
}

// Option configures optional BookActor behavior beyond its required
// constructor arguments.
type Option func(*BookActor)

// WithLogger attaches a logger the actor uses for rejected/cancelled
// submissions and event-channel stalls. Nil (the default) disables logging.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *BookActor) { a.logger = logger }
}

// WithClock overrides the clock used to time event-channel stall warnings.
// Defaults to util.RealClock{}.
func WithClock(clock util.Clock) Option {
	return func(a *BookActor) { a.clock = clock }
}

// New builds an actor over book using engine for match decisions. eventCh is
// the bounded, caller-owned sink match and cancel events are pushed to; the
// actor blocks pushing to it when full, which stalls the intake queue
// without ever blocking mid-match (the match itself has already completed
// by the time events are pushed).
func New(book *orderbook.OrderBook, engine *matching.Engine, eventCh chan matching.Event, opts ...Option) *BookActor {
	a := &BookActor{
		book:   book,
		engine: engine,
		in:     make(chan request),
		events: eventCh,
		done:   make(chan struct{}),
		clock:  util.RealClock{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run processes requests until ctx is cancelled. Call it from exactly one
// goroutine; that goroutine is the book's sole owner for its lifetime.
func (a *BookActor) Run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-a.in:
			a.process(req)
		}
	}
}

// Done reports when Run has returned.
func (a *BookActor) Done() <-chan struct{} { return a.done }

// Submit enqueues o for matching and blocks for the result. now is supplied
// by the caller — the actor never reads the wall clock for event
// timestamps, preserving determinism (spec §5/§8).
func (a *BookActor) Submit(ctx context.Context, o order.AcceptedOrder, now int64) ([]matching.Event, error) {
	req := request{order: o, now: now, reply: make(chan response, 1)}
	return a.send(ctx, req)
}

// Cancel enqueues a cancel request for the resting order identified by id.
func (a *BookActor) Cancel(ctx context.Context, id xcrypto.Hash32, now int64) ([]matching.Event, error) {
	req := request{isCancel: true, cancelID: id, now: now, reply: make(chan response, 1)}
	return a.send(ctx, req)
}

func (a *BookActor) send(ctx context.Context, req request) ([]matching.Event, error) {
	select {
	case a.in <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.events, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *BookActor) process(req request) {
	if req.isCancel {
		a.processCancel(req)
		return
	}

	events, err := a.engine.Match(req.order, a.book, req.now)
	if err != nil && a.logger != nil {
		a.logger.Warnw("submission_rejected", "order_id", fmt.Sprintf("0x%x", req.order.Base().ID().Bytes()[:8]), "err", err)
	}
	for _, ev := range events {
		a.pushEvent(ev)
	}
	req.reply <- response{events: events, err: err}
}

func (a *BookActor) processCancel(req request) {
	removed, ok := a.book.Cancel(req.cancelID)
	if !ok {
		if a.logger != nil {
			a.logger.Infow("cancel_not_found", "order_id", fmt.Sprintf("0x%x", req.cancelID[:8]))
		}
		req.reply <- response{err: errs.New(errs.NotFound, "cancel: no resting order with that id")}
		return
	}
	if a.logger != nil {
		a.logger.Infow("order_cancelled", "order_id", fmt.Sprintf("0x%x", req.cancelID[:8]))
	}
	ev := matching.Event{Kind: matching.OrderCanceled, Timestamp: req.now, Canceled: removed, SystemCancel: false}
	a.pushEvent(ev)
	req.reply <- response{events: []matching.Event{ev}}
}

// pushEvent sends ev to the caller's event channel, logging a single Warn
// if the channel stays full past eventStallWarnAfter. The push itself never
// gives up: per spec §5 a full event buffer stalls intake, it never drops
// an event.
func (a *BookActor) pushEvent(ev matching.Event) {
	select {
	case a.events <- ev:
		return
	default:
	}

	timer := a.clock.After(eventStallWarnAfter)
	warned := false
	for {
		select {
		case a.events <- ev:
			return
		case <-timer:
			if !warned && a.logger != nil {
				a.logger.Warnw("event_channel_stalled", "kind", ev.Kind)
				warned = true
			}
			timer = nil
		}
	}
}
