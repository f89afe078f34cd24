package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"saasbase/internal/models/db_models"
	"saasbase/internal/repositories"
)

// UserCharge is published once per successfully committed payment event.
type UserCharge struct {
	UserID   uuid.UUID
	Email    string
	Price    float64
	Provider db_models.OrderProvider
}

type ChargePublisher interface {
	Publish(ev UserCharge)
}

type ChargeHandler func(ctx context.Context, ev UserCharge)

// Dispatcher decouples accounting/analytics consumers from the reconciler's
// transaction: the reconciler publishes after commit and a single worker
// goroutine fans events out to the handlers.
type Dispatcher struct {
	ch       chan UserCharge
	handlers []ChargeHandler
	logger   *zap.SugaredLogger

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewDispatcher(buffer int, logger *zap.SugaredLogger, handlers ...ChargeHandler) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		ch:       make(chan UserCharge, buffer),
		handlers: handlers,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Publish never blocks the webhook path; if the buffer is full the event is
// dropped and logged for operator follow-up.
func (d *Dispatcher) Publish(ev UserCharge) {
	select {
	case d.ch <- ev:
	default:
		d.logger.Warnw("charge event dropped, buffer full",
			"user_id", ev.UserID, "order_provider", ev.Provider)
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case ev := <-d.ch:
				d.dispatch(ev)
			case <-d.stop:
				// Drain what is already buffered before exiting.
				for {
					select {
					case ev := <-d.ch:
						d.dispatch(ev)
					default:
						return
					}
				}
			}
		}
	}()
}

func (d *Dispatcher) Stop() {
	close(d.stop)
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ev UserCharge) {
	ctx := context.Background()
	for _, h := range d.handlers {
		h(ctx, ev)
	}
}

// AccountingHandler accumulates charges into the user's lifetime and monthly
// paid totals.
func AccountingHandler(users repositories.UserRepository, logger *zap.SugaredLogger) ChargeHandler {
	return func(ctx context.Context, ev UserCharge) {
		if err := users.AddCharge(ctx, ev.UserID, ev.Price); err != nil {
			logger.Errorw("failed to account user charge",
				"user_id", ev.UserID, "price", ev.Price, "error", err)
		}
	}
}
