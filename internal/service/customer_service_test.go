package service_test

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory CustomerRepository ─────────────────────────────────────────────

type stubCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]*model.Customer
	creates   int
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[string]*model.Customer)}
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if _, taken := r.customers[c.ID]; taken {
		return gorm.ErrDuplicatedKey
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id string) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.customers[id]
	return ok, nil
}

func (r *stubCustomerRepo) List(_ context.Context) ([]model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.customers, id)
	return nil
}

func (r *stubCustomerRepo) CountReferred(_ context.Context, ids []string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, c := range r.customers {
		if c.ReferralID != nil {
			counts[*c.ReferralID]++
		}
	}
	return counts, nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

// sequence returns an IDSource cycling through ids.
func sequence(ids ...string) service.IDSource {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestRandomCustomerID_Format(t *testing.T) {
	re := regexp.MustCompile(`^C-\d{3}$`)
	for i := 0; i < 200; i++ {
		assert.Regexp(t, re, service.RandomCustomerID())
	}
}

func TestCreateCustomer_RetriesOnCollision(t *testing.T) {
	repo := newStubCustomerRepo()
	svc := service.NewCustomerService(repo, sequence("C-001", "C-001", "C-002"))
	ctx := context.Background()

	first, err := svc.Create(ctx, dto.CreateCustomerRequest{Name: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, "C-001", first.ID)

	second, err := svc.Create(ctx, dto.CreateCustomerRequest{Name: "Bruno"})
	require.NoError(t, err)
	assert.Equal(t, "C-002", second.ID)
	assert.Equal(t, 3, repo.creates)
}

func TestCreateCustomer_IDSpaceExhausted(t *testing.T) {
	repo := newStubCustomerRepo()
	svc := service.NewCustomerService(repo, sequence("C-000"))
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateCustomerRequest{Name: "Only"})
	require.NoError(t, err)

	repo.creates = 0
	_, err = svc.Create(ctx, dto.CreateCustomerRequest{Name: "One too many"})
	require.ErrorIs(t, err, service.ErrIDExhausted)
	assert.Equal(t, service.MaxCustomerIDAttempts, repo.creates)
}

func TestCreateCustomer_Defaults(t *testing.T) {
	svc := service.NewCustomerService(newStubCustomerRepo(), sequence("C-010"))
	c, err := svc.Create(context.Background(), dto.CreateCustomerRequest{Name: "  Carla  "})
	require.NoError(t, err)
	assert.Equal(t, "Carla", c.Name)
	assert.True(t, c.Attivo)
	assert.False(t, c.IsReferral)
	assert.True(t, c.Spesa.IsZero())
	assert.True(t, c.Debito.IsZero())
	assert.Nil(t, c.ReferralID)
}

func TestCreateCustomer_UnknownReferral(t *testing.T) {
	svc := service.NewCustomerService(newStubCustomerRepo(), sequence("C-010"))
	ref := "C-999"
	_, err := svc.Create(context.Background(), dto.CreateCustomerRequest{Name: "X", ReferralID: &ref})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestUpdateCustomer_SelfReferralRejected(t *testing.T) {
	svc := service.NewCustomerService(newStubCustomerRepo(), sequence("C-100", "C-101"))
	ctx := context.Background()
	c, err := svc.Create(ctx, dto.CreateCustomerRequest{Name: "Self"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, c.ID, dto.UpdateCustomerRequest{ReferralID: dto.Some(c.ID)})
	require.ErrorIs(t, err, service.ErrValidation)
	assert.ErrorContains(t, err, "itself")
}

func TestUpdateCustomer_SetAndClearReferral(t *testing.T) {
	svc := service.NewCustomerService(newStubCustomerRepo(), sequence("C-100", "C-101"))
	ctx := context.Background()
	referrer, err := svc.Create(ctx, dto.CreateCustomerRequest{Name: "Referrer"})
	require.NoError(t, err)
	c, err := svc.Create(ctx, dto.CreateCustomerRequest{Name: "Referred"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, c.ID, dto.UpdateCustomerRequest{ReferralID: dto.Some(referrer.ID)})
	require.NoError(t, err)
	require.NotNil(t, updated.ReferralID)
	assert.Equal(t, referrer.ID, *updated.ReferralID)

	got, err := svc.Get(ctx, referrer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ReferredByCount)

	cleared, err := svc.Update(ctx, c.ID, dto.UpdateCustomerRequest{ReferralID: dto.Optional[string]{Set: true}})
	require.NoError(t, err)
	assert.Nil(t, cleared.ReferralID)
}

func TestUpdateCustomer_PartialFields(t *testing.T) {
	svc := service.NewCustomerService(newStubCustomerRepo(), sequence("C-200"))
	ctx := context.Background()
	spesa := decimal.NewFromFloat(12.345)
	c, err := svc.Create(ctx, dto.CreateCustomerRequest{Name: "Dario", Spesa: &spesa})
	require.NoError(t, err)
	assert.Equal(t, "12.35", c.Spesa.StringFixed(2))

	inactive := false
	updated, err := svc.Update(ctx, c.ID, dto.UpdateCustomerRequest{Attivo: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Attivo)
	assert.Equal(t, "Dario", updated.Name)

	_, err = svc.Update(ctx, "C-404", dto.UpdateCustomerRequest{Attivo: &inactive})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateReferralSettings(t *testing.T) {
	svc := service.NewCustomerService(newStubCustomerRepo(), sequence("C-300"))
	ctx := context.Background()
	c, err := svc.Create(ctx, dto.CreateCustomerRequest{Name: "Elena"})
	require.NoError(t, err)

	on := true
	updated, err := svc.UpdateReferralSettings(ctx, c.ID, dto.UpdateReferralSettingsRequest{
		IsReferral:    &on,
		ReferralColor: dto.Some("#1a2B3c"),
	})
	require.NoError(t, err)
	assert.True(t, updated.IsReferral)
	require.NotNil(t, updated.ReferralColor)
	assert.Equal(t, "#1a2B3c", *updated.ReferralColor)

	_, err = svc.UpdateReferralSettings(ctx, c.ID, dto.UpdateReferralSettingsRequest{ReferralColor: dto.Some("red")})
	assert.ErrorIs(t, err, service.ErrValidation)

	cleared, err := svc.UpdateReferralSettings(ctx, c.ID, dto.UpdateReferralSettingsRequest{ReferralColor: dto.Optional[string]{Set: true}})
	require.NoError(t, err)
	assert.Nil(t, cleared.ReferralColor)
	assert.True(t, cleared.IsReferral, "untouched fields keep their value")
}

// Database-backed: referral embedding and delete detaching referrers.

func TestCustomer_DeleteDetachesReferred(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	referrer, err := s.customers.Create(ctx, dto.CreateCustomerRequest{Name: "Referrer"})
	require.NoError(t, err)
	referred, err := s.customers.Create(ctx, dto.CreateCustomerRequest{Name: "Referred", ReferralID: &referrer.ID})
	require.NoError(t, err)
	require.NotNil(t, referred.Referral)
	assert.Equal(t, "Referrer", referred.Referral.Name)

	list, err := s.customers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, c := range list {
		if c.ID == referrer.ID {
			assert.EqualValues(t, 1, c.ReferredByCount)
		}
	}

	require.NoError(t, s.customers.Delete(ctx, referrer.ID))

	after, err := s.customers.Get(ctx, referred.ID)
	require.NoError(t, err)
	assert.Nil(t, after.ReferralID)
	assert.Nil(t, after.Referral)

	assert.ErrorIs(t, s.customers.Delete(ctx, referrer.ID), service.ErrNotFound)
}

func TestCustomer_CreateManyGetsDistinctIDs(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		c, err := s.customers.Create(ctx, dto.CreateCustomerRequest{Name: "Bulk"})
		require.NoError(t, err)
		assert.False(t, seen[c.ID], "id %s handed out twice", c.ID)
		seen[c.ID] = true
	}
}
