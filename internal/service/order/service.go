// Package order owns the order lifecycle: creation, the status machine, and
// the print/notify side effects each transition triggers.
package order

import (
	"context"
	"errors"
	"log"
	"time"

	"tableside/internal/domain"
	"tableside/internal/notify"
)

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Order, error)
	ListActive(ctx context.Context, storeID string) ([]domain.Order, error)
	// UpdateStatus performs the transition only while the stored status still
	// equals from, returning ErrNotFound when the guard fails. This is what
	// keeps at most one transition in flight per order.
	UpdateStatus(ctx context.Context, orderID string, from, to domain.Status, changedBy string) (*domain.Order, error)
}

type publisher interface {
	Publish(event domain.OrderEvent)
}

type Service struct {
	repo      orderRepo
	printer   notify.Printer
	notifier  notify.Notifier
	bus       publisher
	logger    *log.Logger
	autoPrint bool
	printDest string
}

func New(repo orderRepo, printer notify.Printer, notifier notify.Notifier, bus publisher, logger *log.Logger, autoPrint bool, printDest string) *Service {
	return &Service{
		repo:      repo,
		printer:   printer,
		notifier:  notifier,
		bus:       bus,
		logger:    logger,
		autoPrint: autoPrint,
		printDest: printDest,
	}
}

// Create persists a new order snapshot in pending state and fans the event
// out. When auto-print is on, a successful print of the kitchen ticket also
// advances the order to preparing; the transition is a consequence of the
// print succeeding and produces exactly one status write.
func (s *Service) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	o.Status = domain.StatusPending
	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, domain.Integration("create order", err)
	}
	s.publish(*created)

	if s.autoPrint && s.printer != nil {
		if err := s.printer.Print(ctx, s.printDest, notify.BuildTicket(*created)); err != nil {
			s.logger.Printf("auto-print order %s failed: %v", created.ID, err)
			return created, nil
		}
		advanced, err := s.repo.UpdateStatus(ctx, created.ID, domain.StatusPending, domain.StatusPreparing, "auto-print")
		if err != nil {
			// Someone already moved it; the print still went out.
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("auto-print transition for order %s failed: %v", created.ID, err)
			}
			return created, nil
		}
		s.publish(*advanced)
		s.notifyStatus(ctx, *advanced)
		return advanced, nil
	}
	return created, nil
}

// Get returns one order for the tracking page.
func (s *Service) Get(ctx context.Context, storeID, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, storeID, id)
}

// ListActive returns the store's non-terminal orders for the kitchen board.
func (s *Service) ListActive(ctx context.Context, storeID string) ([]domain.Order, error) {
	return s.repo.ListActive(ctx, storeID)
}

// Advance moves an order one stage forward along the view's flow. The write
// goes to the store first; subscribers see the result through the push
// channel. Notification failure never rolls the transition back.
func (s *Service) Advance(ctx context.Context, storeID, orderID string, view FlowView, actor string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	next, ok := Next(view, o.Status)
	if !ok {
		return nil, domain.Validationf("order %d has no further transition from %s", o.Sequence, o.Status)
	}
	updated, err := s.repo.UpdateStatus(ctx, orderID, o.Status, next, actor)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Conflictf("order %d was updated by someone else", o.Sequence)
		}
		return nil, domain.Integration("update order status", err)
	}
	s.publish(*updated)
	s.notifyStatus(ctx, *updated)
	return updated, nil
}

// Cancel moves any non-terminal order to cancelled.
func (s *Service) Cancel(ctx context.Context, storeID, orderID, actor string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	if !CanCancel(o.Status) {
		return nil, domain.Validationf("order %d is already %s", o.Sequence, o.Status)
	}
	updated, err := s.repo.UpdateStatus(ctx, orderID, o.Status, domain.StatusCancelled, actor)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Conflictf("order %d was updated by someone else", o.Sequence)
		}
		return nil, domain.Integration("cancel order", err)
	}
	s.publish(*updated)
	s.notifyStatus(ctx, *updated)
	return updated, nil
}

// Reprint sends the kitchen ticket again on operator request. The dispatcher
// error message is surfaced verbatim.
func (s *Service) Reprint(ctx context.Context, storeID, orderID, destination string) error {
	if s.printer == nil {
		return domain.Validationf("no printer configured")
	}
	o, err := s.repo.GetByID(ctx, storeID, orderID)
	if err != nil {
		return err
	}
	if destination == "" {
		destination = s.printDest
	}
	if err := s.printer.Print(ctx, destination, notify.BuildTicket(*o)); err != nil {
		return domain.Integration("print order", err)
	}
	return nil
}

func (s *Service) publish(o domain.Order) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(domain.OrderEvent{
		OrderID:  o.ID,
		StoreID:  o.StoreID,
		Sequence: o.Sequence,
		Status:   o.Status,
		At:       time.Now(),
	})
}

// notifyStatus is a degraded side effect: a failed customer notification is
// logged and never fails the transition that triggered it.
func (s *Service) notifyStatus(ctx context.Context, o domain.Order) {
	if s.notifier == nil || o.CustomerPhone == "" {
		return
	}
	if err := s.notifier.Notify(ctx, o, o.Status); err != nil {
		s.logger.Printf("notify order %s status %s failed: %v", o.ID, o.Status, err)
	}
}
