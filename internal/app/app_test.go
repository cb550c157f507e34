package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/talkincode/productapi/config"
	"github.com/talkincode/productapi/internal/domain"
	"github.com/talkincode/productapi/internal/repository"
)

type stubRepo struct {
	mu       sync.Mutex
	products []domain.Product
	counts   int
}

func (r *stubRepo) List(context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Product{}, r.products...), nil
}

func (r *stubRepo) Create(_ context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	r.products = append(r.products, *p)
	return nil
}

func (r *stubRepo) Update(context.Context, primitive.ObjectID, domain.ProductFields) (*domain.Product, error) {
	return nil, repository.ErrProductNotFound
}

func (r *stubRepo) Delete(context.Context, primitive.ObjectID) (*domain.Product, error) {
	return nil, repository.ErrProductNotFound
}

func (r *stubRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts++
	return int64(len(r.products)), nil
}

func newTestApplication(t *testing.T) (*Application, *stubRepo) {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.Database.URI = "mongodb://localhost:27017"
	a := NewApplication(cfg)
	repo := &stubRepo{}
	a.OverrideRepo(repo)
	return a, repo
}

func TestCheckProductsSeedsMissingNames(t *testing.T) {
	a, repo := newTestApplication(t)
	repo.products = []domain.Product{{ID: primitive.NewObjectID(), Name: "demo-desk", Price: 1, Image: "x"}}

	a.checkProducts()

	names := make([]string, 0, len(repo.products))
	for _, p := range repo.products {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"demo-desk", "demo-chair", "demo-lamp"}, names)

	// running again is a no-op
	a.checkProducts()
	assert.Len(t, repo.products, 3)
}

func TestSchedCatalogStatsTaskWithoutStorage(t *testing.T) {
	a, repo := newTestApplication(t)

	require.ErrorIs(t, a.Ping(context.Background()), errStoreNotConnected)
	a.SchedCatalogStatsTask()
	assert.Zero(t, repo.counts, "count is skipped when the ping fails")
}

func TestInitJobSchedulesStats(t *testing.T) {
	a, _ := newTestApplication(t)
	a.initJob()
	defer a.Release()

	require.NotNil(t, a.Scheduler())
	assert.Len(t, a.Scheduler().Entries(), 1)
}

func TestInitJobRejectsBadSchedule(t *testing.T) {
	a, _ := newTestApplication(t)
	a.appConfig.Jobs.StatsInterval = "every now and then"
	a.initJob()
	defer a.Release()

	assert.Empty(t, a.Scheduler().Entries())
}
