package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/storefront/internal/database"
	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/modules/catalog/topics"
	"github.com/nfrund/storefront/internal/pubsub"
	"github.com/nfrund/storefront/internal/simulate"
)

type fixture struct {
	repo      domain.ProductRepository
	bus       *pubsub.WatermillBridge
	scheduler *simulate.Scheduler
	service   *Service
	mutator   *Mutator
	now       time.Time
}

// newFixture wires a catalog over an in-memory SQLite store seeded with the
// six sample products plus a seventh, "Desk Lamp".
func newFixture(t *testing.T, repo domain.ProductRepository, cfg MutatorConfig, random ...float64) *fixture {
	t.Helper()
	ctx := context.Background()

	if repo == nil {
		store, err := database.OpenSQLite(ctx, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close(ctx) })
		repo = store
	}

	products, err := database.LoadSeed(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	products = append(products, domain.NewProduct{
		Name: "Desk Lamp", Description: "LED lamp", Price: 39.99,
		Image: "https://example.com/lamp", Category: "Home", Stock: 4,
	})
	_, err = database.Seed(ctx, repo, products)
	require.NoError(t, err)

	f := &fixture{
		repo:      repo,
		bus:       pubsub.NewWatermillBridge(),
		scheduler: simulate.NewScheduler(),
		now:       time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	t.Cleanup(func() {
		_ = f.scheduler.Shutdown(context.Background())
		_ = f.bus.Close()
	})

	if cfg.Now == nil {
		cfg.Now = func() time.Time { return f.now }
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 10 * time.Second
	}
	if len(random) == 0 {
		random = []float64{0.5}
	}
	f.service = NewService(repo, f.bus, nil)
	f.mutator = NewMutator(repo, f.bus, simulate.NewSequence(random...), f.scheduler, cfg, nil)
	return f
}

func (f *fixture) subscribe(t *testing.T, productID *int64) (<-chan domain.TrackedProductChange, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	updates, err := f.service.OpenProductUpdates(ctx, productID, "")
	require.NoError(t, err)
	return updates, cancel
}

func next(t *testing.T, ch <-chan domain.TrackedProductChange) domain.TrackedProductChange {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for product change")
		return domain.TrackedProductChange{}
	}
}

func expectSilence(t *testing.T, ch <-chan domain.TrackedProductChange, d time.Duration) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected product change for product %d", ev.Event.ProductID)
	case <-time.After(d):
	}
}

func ptr[T any](v T) *T { return &v }

func TestApplyChange_PriceFromRandomSource(t *testing.T) {
	f := newFixture(t, nil, MutatorConfig{}, 0.999)
	updates, _ := f.subscribe(t, nil)

	event, err := f.mutator.ApplyChange(context.Background(), ChangeRequest{ProductID: 1, Kind: domain.KindPriceChange})
	require.NoError(t, err)
	require.NotNil(t, event.Data.NewPrice)
	assert.Equal(t, 149.9, *event.Data.NewPrice)
	assert.Nil(t, event.Data.IsAvailable)
	assert.Equal(t, "Premium Headphones", event.Data.ProductName)

	stored, err := f.repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 149.9, stored.Price)

	got := next(t, updates)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, domain.KindPriceChange, got.Event.Kind)
	assert.Equal(t, 149.9, *got.Event.Data.NewPrice)
}

func TestApplyChange_RandomKind(t *testing.T) {
	t.Run("below 0.6 changes price", func(t *testing.T) {
		f := newFixture(t, nil, MutatorConfig{}, 0.59, 0)
		event, err := f.mutator.ApplyChange(context.Background(), ChangeRequest{ProductID: 2})
		require.NoError(t, err)
		assert.Equal(t, domain.KindPriceChange, event.Kind)
		assert.Equal(t, 50.0, *event.Data.NewPrice)
	})

	t.Run("0.6 and above toggles availability", func(t *testing.T) {
		f := newFixture(t, nil, MutatorConfig{}, 0.6)
		event, err := f.mutator.ApplyChange(context.Background(), ChangeRequest{ProductID: 2})
		require.NoError(t, err)
		assert.Equal(t, domain.KindAvailabilityChange, event.Kind)
		assert.False(t, *event.Data.IsAvailable)
	})
}

func TestScheduleChange_FilteredAvailabilityScenario(t *testing.T) {
	f := newFixture(t, nil, MutatorConfig{ChangeDelay: 20 * time.Millisecond})
	onlySeven, _ := f.subscribe(t, ptr(int64(7)))
	everything, _ := f.subscribe(t, nil)

	f.mutator.ScheduleChange(ChangeRequest{ProductID: 3, Kind: domain.KindPriceChange})
	f.mutator.ScheduleChange(ChangeRequest{ProductID: 7, Kind: domain.KindAvailabilityChange})

	got := next(t, onlySeven)
	assert.Equal(t, "7", got.ID)
	assert.Equal(t, int64(7), got.Event.ProductID)
	assert.Equal(t, domain.KindAvailabilityChange, got.Event.Kind)
	require.NotNil(t, got.Event.Data.IsAvailable)
	assert.False(t, *got.Event.Data.IsAvailable)
	expectSilence(t, onlySeven, 100*time.Millisecond)

	seen := map[int64]bool{}
	seen[next(t, everything).Event.ProductID] = true
	seen[next(t, everything).Event.ProductID] = true
	assert.Equal(t, map[int64]bool{3: true, 7: true}, seen)

	stored, err := f.repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, stored.IsAvailable)
}

func TestOpenProductUpdates_CancelReleasesListener(t *testing.T) {
	f := newFixture(t, nil, MutatorConfig{})
	updates, cancel := f.subscribe(t, ptr(int64(1)))
	require.Equal(t, 1, f.bus.Listeners(topics.ProductChanged.Name()))

	cancel()

	require.Eventually(t, func() bool {
		return f.bus.Listeners(topics.ProductChanged.Name()) == 0
	}, time.Second, 5*time.Millisecond)

	_, err := f.mutator.ToggleAvailability(context.Background(), 1)
	require.NoError(t, err)

	select {
	case _, ok := <-updates:
		assert.False(t, ok, "canceled subscription must not deliver")
	case <-time.After(time.Second):
		t.Fatal("subscription channel was not closed")
	}
}

func TestTriggerProductChange_Cooldown(t *testing.T) {
	f := newFixture(t, nil, MutatorConfig{ChangeDelay: time.Hour})
	ctx := context.Background()

	first, err := f.mutator.TriggerProductChange(ctx, 4, TriggerOptions{})
	require.NoError(t, err)
	assert.True(t, first.Triggered)

	f.now = f.now.Add(9 * time.Second)
	second, err := f.mutator.TriggerProductChange(ctx, 4, TriggerOptions{})
	require.NoError(t, err)
	assert.False(t, second.Triggered)
	assert.ErrorIs(t, second.Reason, domain.ErrAlreadyTriggered)

	other, err := f.mutator.TriggerProductChange(ctx, 5, TriggerOptions{})
	require.NoError(t, err)
	assert.True(t, other.Triggered, "cooldown is per product")

	f.now = f.now.Add(time.Second)
	third, err := f.mutator.TriggerProductChange(ctx, 4, TriggerOptions{})
	require.NoError(t, err)
	assert.True(t, third.Triggered)
}

func TestTriggerProductChange_Options(t *testing.T) {
	t.Run("availability only takes the product offline", func(t *testing.T) {
		f := newFixture(t, nil, MutatorConfig{ChangeDelay: 10 * time.Millisecond})
		updates, _ := f.subscribe(t, ptr(int64(2)))

		res, err := f.mutator.TriggerProductChange(context.Background(), 2, TriggerOptions{PriceChangeEnabled: ptr(false)})
		require.NoError(t, err)
		assert.True(t, res.Triggered)
		assert.Equal(t, domain.KindAvailabilityChange, res.Kind)

		got := next(t, updates)
		assert.False(t, *got.Event.Data.IsAvailable)
	})

	t.Run("price only", func(t *testing.T) {
		f := newFixture(t, nil, MutatorConfig{ChangeDelay: time.Hour}, 0.99)
		res, err := f.mutator.TriggerProductChange(context.Background(), 2, TriggerOptions{AvailabilityChangeEnabled: ptr(false)})
		require.NoError(t, err)
		assert.Equal(t, domain.KindPriceChange, res.Kind)
	})

	t.Run("nothing enabled", func(t *testing.T) {
		f := newFixture(t, nil, MutatorConfig{ChangeDelay: time.Hour})
		res, err := f.mutator.TriggerProductChange(context.Background(), 2, TriggerOptions{
			PriceChangeEnabled:        ptr(false),
			AvailabilityChangeEnabled: ptr(false),
		})
		require.NoError(t, err)
		assert.False(t, res.Triggered)
		assert.ErrorIs(t, res.Reason, domain.ErrNoChangeEnabled)
	})
}

func TestMutator_NotFound(t *testing.T) {
	f := newFixture(t, nil, MutatorConfig{ChangeDelay: time.Hour})
	ctx := context.Background()

	_, err := f.mutator.ApplyChange(ctx, ChangeRequest{ProductID: 99, Kind: domain.KindPriceChange})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.mutator.TriggerProductChange(ctx, 99, TriggerOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.mutator.TriggerPriceChange(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.mutator.ToggleAvailability(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// failingRepo fails every write.
type failingRepo struct {
	domain.ProductRepository
}

var errDiskFull = errors.New("disk full")

func (r failingRepo) Update(context.Context, int64, domain.ProductPatch) error { return errDiskFull }

func (r failingRepo) UpdateAll(context.Context, domain.ProductPatch) error { return errDiskFull }

func TestMutator_FailedWritePublishesNothing(t *testing.T) {
	store, err := database.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	f := newFixture(t, failingRepo{store}, MutatorConfig{})
	updates, _ := f.subscribe(t, nil)

	_, err = f.mutator.ApplyChange(context.Background(), ChangeRequest{ProductID: 1, Kind: domain.KindPriceChange})
	assert.ErrorIs(t, err, domain.ErrMutationFailed)
	assert.ErrorIs(t, err, errDiskFull)

	_, err = f.mutator.ToggleAvailability(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrMutationFailed)

	assert.ErrorIs(t, f.mutator.MakeAllAvailable(context.Background()), domain.ErrMutationFailed)

	expectSilence(t, updates, 100*time.Millisecond)
}

func TestMutator_Availability(t *testing.T) {
	f := newFixture(t, nil, MutatorConfig{})
	ctx := context.Background()
	updates, _ := f.subscribe(t, ptr(int64(6)))

	available, err := f.mutator.ToggleAvailability(ctx, 6)
	require.NoError(t, err)
	assert.False(t, available)
	assert.False(t, *next(t, updates).Event.Data.IsAvailable)

	require.NoError(t, f.mutator.MakeProductAvailable(ctx, 6))
	assert.True(t, *next(t, updates).Event.Data.IsAvailable)

	_, err = f.mutator.ToggleAvailability(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, f.mutator.MakeAllAvailable(ctx))
	expectSilence(t, updates, 50*time.Millisecond)

	products, err := f.service.List(ctx)
	require.NoError(t, err)
	for _, p := range products {
		assert.True(t, p.IsAvailable, p.Name)
	}
}

func TestService_Reads(t *testing.T) {
	f := newFixture(t, nil, MutatorConfig{})
	ctx := context.Background()

	products, err := f.service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 7)

	related, err := f.service.Related(ctx, 3)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Winter Jacket", related[0].Name)

	related, err = f.service.Related(ctx, 5)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "Desk Lamp", related[0].Name)

	_, err = f.service.Related(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.service.Create(ctx, domain.NewProduct{Name: "No category"})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	created, err := f.service.Create(ctx, domain.NewProduct{
		Name: "Toaster", Description: "Two slots", Price: 25, Image: "x", Category: "Home", Stock: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID)
}
