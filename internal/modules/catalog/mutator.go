package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/modules/catalog/topics"
	"github.com/nfrund/storefront/internal/pubsub"
	"github.com/nfrund/storefront/internal/simulate"
)

const (
	// priceChangeShare is the probability that an unspecified change is a
	// price change.
	priceChangeShare = 0.6

	minSimulatedPrice   = 50.0
	simulatedPriceRange = 100.0
)

// ChangeRequest describes one simulated product mutation.
type ChangeRequest struct {
	ProductID int64
	// Kind is chosen at random when empty.
	Kind domain.ChangeKind
	// ForcedAvailability replaces the toggle for availability changes.
	ForcedAvailability *bool
}

// TriggerOptions selects which change kinds a trigger may pick. Nil means enabled.
type TriggerOptions struct {
	PriceChangeEnabled        *bool `json:"priceChangeEnabled,omitempty"`
	AvailabilityChangeEnabled *bool `json:"availabilityChangeEnabled,omitempty"`
}

// TriggerResult reports whether a change was scheduled. A rejected trigger
// carries its Reason (domain.ErrAlreadyTriggered or domain.ErrNoChangeEnabled)
// and is an expected outcome, not a failure.
type TriggerResult struct {
	Triggered bool              `json:"success"`
	Kind      domain.ChangeKind `json:"changeType,omitempty"`
	Message   string            `json:"message"`
	Reason    error             `json:"-"`
}

// MutatorConfig tunes the simulated timings.
type MutatorConfig struct {
	ChangeDelay time.Duration
	Cooldown    time.Duration
	// Now drives the cooldown clock; nil uses time.Now.
	Now func() time.Time
}

// Mutator applies simulated product changes and publishes them on the bus.
type Mutator struct {
	repo      domain.ProductRepository
	publisher pubsub.Publisher
	random    simulate.Random
	scheduler *simulate.Scheduler
	cooldown  *simulate.Cooldown[int64]
	delay     time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewMutator creates a Mutator. Delayed changes run on scheduler.
func NewMutator(repo domain.ProductRepository, publisher pubsub.Publisher, random simulate.Random, scheduler *simulate.Scheduler, cfg MutatorConfig, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Mutator{
		repo:      repo,
		publisher: publisher,
		random:    random,
		scheduler: scheduler,
		cooldown:  simulate.NewCooldown[int64](cfg.Cooldown, now),
		delay:     cfg.ChangeDelay,
		now:       now,
		logger:    logger.With("component", "mutator"),
	}
}

// ScheduleChange applies req after the configured delay. Failures are logged
// and publish nothing.
func (m *Mutator) ScheduleChange(req ChangeRequest) {
	m.logger.Debug("Scheduling product change", "productId", req.ProductID, "kind", req.Kind, "delay", m.delay)
	m.scheduler.After(m.delay, func(ctx context.Context) {
		if _, err := m.ApplyChange(ctx, req); err != nil {
			m.logger.Error("Scheduled product change failed", "productId", req.ProductID, "error", err)
		}
	})
}

// ApplyChange performs req immediately: it persists the new value and then
// publishes the resulting event. Nothing is published when the store write
// fails.
func (m *Mutator) ApplyChange(ctx context.Context, req ChangeRequest) (domain.ProductChangeEvent, error) {
	kind := req.Kind
	if kind == "" {
		kind = m.randomKind()
	}
	if !kind.Valid() {
		return domain.ProductChangeEvent{}, fmt.Errorf("%w: unknown change kind %q", domain.ErrValidationFailed, kind)
	}

	// Fresh read right before the write; the toggle acts on current state.
	product, err := m.repo.GetByID(ctx, req.ProductID)
	if err != nil {
		return domain.ProductChangeEvent{}, storeError(err)
	}

	event := domain.ProductChangeEvent{
		ProductID: product.ID,
		Kind:      kind,
		Data: domain.ProductChangeData{
			ProductName: product.Name,
		},
	}

	var patch domain.ProductPatch
	switch kind {
	case domain.KindPriceChange:
		price := m.randomPrice()
		patch.Price = &price
		event.Data.NewPrice = &price
	case domain.KindAvailabilityChange:
		available := !product.IsAvailable
		if req.ForcedAvailability != nil {
			available = *req.ForcedAvailability
		}
		patch.IsAvailable = &available
		event.Data.IsAvailable = &available
	}

	if err := m.repo.Update(ctx, product.ID, patch); err != nil {
		return domain.ProductChangeEvent{}, storeError(err)
	}
	event.Data.Timestamp = m.now().UTC()

	if err := m.publish(ctx, event); err != nil {
		return event, err
	}
	return event, nil
}

// TriggerProductChange schedules a simulated change unless the product was
// triggered within the cooldown window. Availability changes made this way
// always take the product offline.
func (m *Mutator) TriggerProductChange(ctx context.Context, productID int64, opts TriggerOptions) (TriggerResult, error) {
	if _, err := m.repo.GetByID(ctx, productID); err != nil {
		return TriggerResult{}, storeError(err)
	}

	priceOn := opts.PriceChangeEnabled == nil || *opts.PriceChangeEnabled
	availabilityOn := opts.AvailabilityChangeEnabled == nil || *opts.AvailabilityChangeEnabled

	if !priceOn && !availabilityOn {
		return TriggerResult{Message: "No change types enabled", Reason: domain.ErrNoChangeEnabled}, nil
	}

	if ok, wait := m.cooldown.TryAcquire(productID); !ok {
		m.logger.Debug("Product change rejected by cooldown", "productId", productID, "retryIn", wait)
		return TriggerResult{Message: "Product change already triggered recently", Reason: domain.ErrAlreadyTriggered}, nil
	}

	var kind domain.ChangeKind
	switch {
	case priceOn && availabilityOn:
		kind = m.randomKind()
	case priceOn:
		kind = domain.KindPriceChange
	default:
		kind = domain.KindAvailabilityChange
	}

	req := ChangeRequest{ProductID: productID, Kind: kind}
	if kind == domain.KindAvailabilityChange {
		offline := false
		req.ForcedAvailability = &offline
	}
	m.ScheduleChange(req)

	return TriggerResult{Triggered: true, Kind: kind, Message: "Product change triggered"}, nil
}

// TriggerPriceChange schedules a price change without any cooldown.
func (m *Mutator) TriggerPriceChange(ctx context.Context, productID int64) (TriggerResult, error) {
	if _, err := m.repo.GetByID(ctx, productID); err != nil {
		return TriggerResult{}, storeError(err)
	}
	m.ScheduleChange(ChangeRequest{ProductID: productID, Kind: domain.KindPriceChange})
	return TriggerResult{Triggered: true, Kind: domain.KindPriceChange, Message: "Price change triggered"}, nil
}

// ToggleAvailability flips a product's availability and publishes at once,
// bypassing the simulated delay.
func (m *Mutator) ToggleAvailability(ctx context.Context, productID int64) (bool, error) {
	event, err := m.ApplyChange(ctx, ChangeRequest{ProductID: productID, Kind: domain.KindAvailabilityChange})
	if err != nil {
		return false, err
	}
	return *event.Data.IsAvailable, nil
}

// MakeProductAvailable marks one product available and publishes the change.
func (m *Mutator) MakeProductAvailable(ctx context.Context, productID int64) error {
	available := true
	_, err := m.ApplyChange(ctx, ChangeRequest{
		ProductID:          productID,
		Kind:               domain.KindAvailabilityChange,
		ForcedAvailability: &available,
	})
	return err
}

// MakeAllAvailable marks every product available. It publishes nothing;
// clients refresh their listings instead.
func (m *Mutator) MakeAllAvailable(ctx context.Context) error {
	available := true
	if err := m.repo.UpdateAll(ctx, domain.ProductPatch{IsAvailable: &available}); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMutationFailed, err)
	}
	m.logger.Info("All products made available")
	return nil
}

func (m *Mutator) publish(ctx context.Context, event domain.ProductChangeEvent) error {
	key := strconv.FormatInt(event.ProductID, 10)
	if err := pubsub.Publish(ctx, m.publisher, topics.ProductChanged, key, event); err != nil {
		return fmt.Errorf("publish product change: %w", err)
	}
	m.logger.Info("Product change published", "productId", event.ProductID, "kind", event.Kind)
	return nil
}

func (m *Mutator) randomKind() domain.ChangeKind {
	if m.random.Float64() < priceChangeShare {
		return domain.KindPriceChange
	}
	return domain.KindAvailabilityChange
}

// randomPrice returns a price in [50, 150] rounded to cents.
func (m *Mutator) randomPrice() float64 {
	return math.Round((minSimulatedPrice+m.random.Float64()*simulatedPriceRange)*100) / 100
}

// storeError keeps ErrNotFound and classifies everything else as a failed mutation.
func storeError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrMutationFailed, err)
}
