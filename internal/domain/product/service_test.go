package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/efitness/internal/domain/apperr"
)

type mockRepo struct {
	byID       map[int64]Product
	lastFilter Filter
	lastPatch  Patch
	created    *Product
}

func newMockRepo(products ...Product) *mockRepo {
	m := &mockRepo{byID: make(map[int64]Product)}
	for _, p := range products {
		m.byID[p.ID] = p
	}
	return m
}

func (m *mockRepo) ListAvailable(_ context.Context) ([]Product, error) {
	var out []Product
	for _, p := range m.byID {
		if p.IsActive && p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) List(_ context.Context, f Filter) ([]Product, error) {
	m.lastFilter = f
	return nil, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *mockRepo) Create(_ context.Context, p *Product) (int64, error) {
	m.created = p
	return 42, nil
}

func (m *mockRepo) Update(_ context.Context, id int64, p Patch) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	m.lastPatch = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func TestListAvailable(t *testing.T) {
	svc := NewService(newMockRepo(
		Product{ID: 1, Name: "Whey", Stock: 3, IsActive: true},
		Product{ID: 2, Name: "Gloves", Stock: 0, IsActive: true},
		Product{ID: 3, Name: "Old belt", Stock: 9, IsActive: false},
	))

	list, err := svc.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)
}

func TestGetActive(t *testing.T) {
	svc := NewService(newMockRepo(
		Product{ID: 1, IsActive: true},
		Product{ID: 2, IsActive: false},
	))

	_, err := svc.GetActive(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.GetActive(context.Background(), 2)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetActive(context.Background(), 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_Validation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{Name: " ", Price: decimal.NewFromInt(1)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, Product{Name: "Mat", Price: decimal.NewFromInt(-1)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, Product{Name: "Mat", Price: decimal.NewFromInt(1), Stock: -2})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	id, err := svc.Create(ctx, Product{Name: "Mat", Price: decimal.RequireFromString("19.999"), Stock: 4, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "20", repo.created.Price.String())
}

func TestUpdate(t *testing.T) {
	repo := newMockRepo(Product{ID: 5, Name: "Rope"})
	svc := NewService(repo)
	ctx := context.Background()

	require.ErrorIs(t, svc.Update(ctx, 5, Patch{}), apperr.ErrNothingToUpdate)

	neg := -1
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(svc.Update(ctx, 5, Patch{Stock: &neg})))

	price := decimal.RequireFromString("9.499")
	require.NoError(t, svc.Update(ctx, 5, Patch{Price: &price}))
	assert.True(t, repo.lastPatch.Price.Equal(decimal.RequireFromString("9.5")))

	stock := 10
	require.ErrorIs(t, svc.Update(ctx, 6, Patch{Stock: &stock}), ErrNotFound)
}

func TestList_TrimsFilter(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, err := svc.List(context.Background(), Filter{Search: "  whey ", Category: " Supplements"})
	require.NoError(t, err)
	assert.Equal(t, Filter{Search: "whey", Category: "Supplements"}, repo.lastFilter)
}
