package catalogs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeWarehouseRepo struct {
	items        map[id.ID]*Warehouse
	clearedCount int
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{items: make(map[id.ID]*Warehouse)}
}

func (f *fakeWarehouseRepo) Create(ctx context.Context, wh *Warehouse) error {
	f.items[wh.ID] = wh
	return nil
}

func (f *fakeWarehouseRepo) GetByID(ctx context.Context, whID id.ID) (*Warehouse, error) {
	wh, ok := f.items[whID]
	if !ok {
		return nil, apperror.NewNotFound("warehouse", whID.String())
	}
	return wh, nil
}

func (f *fakeWarehouseRepo) GetByCode(ctx context.Context, code string) (*Warehouse, error) {
	for _, wh := range f.items {
		if wh.Code == code {
			return wh, nil
		}
	}
	return nil, apperror.NewNotFound("warehouse", code)
}

func (f *fakeWarehouseRepo) Update(ctx context.Context, wh *Warehouse) error {
	f.items[wh.ID] = wh
	return nil
}

func (f *fakeWarehouseRepo) SetDeletionMark(ctx context.Context, whID id.ID, marked bool) error {
	if wh, ok := f.items[whID]; ok {
		wh.DeletionMark = marked
	}
	return nil
}

func (f *fakeWarehouseRepo) List(ctx context.Context, filter ListFilter) (ListResult[*Warehouse], error) {
	return ListResult[*Warehouse]{}, nil
}

func (f *fakeWarehouseRepo) Exists(ctx context.Context, whID id.ID) (bool, error) {
	_, ok := f.items[whID]
	return ok, nil
}

func (f *fakeWarehouseRepo) ClearDefault(ctx context.Context) error {
	f.clearedCount++
	for _, wh := range f.items {
		wh.IsDefault = false
	}
	return nil
}

func TestWarehouseService_SettingDefaultClearsPrevious(t *testing.T) {
	repo := newFakeWarehouseRepo()
	svc := NewWarehouseService(repo, fakeTxManager{})

	first := NewWarehouse("WH-01", "Main")
	first.IsDefault = true
	require.NoError(t, svc.Create(context.Background(), first))

	second := NewWarehouse("WH-02", "Annex")
	second.IsDefault = true
	require.NoError(t, svc.Create(context.Background(), second))

	assert.Equal(t, 2, repo.clearedCount)
	assert.False(t, repo.items[first.ID].IsDefault, "previous default cleared")
	assert.True(t, repo.items[second.ID].IsDefault)
}

func TestWarehouseService_NonDefaultSkipsClear(t *testing.T) {
	repo := newFakeWarehouseRepo()
	svc := NewWarehouseService(repo, fakeTxManager{})

	require.NoError(t, svc.Create(context.Background(), NewWarehouse("WH-01", "Main")))
	assert.Zero(t, repo.clearedCount)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	svc := NewService[*Item]("item", nil, fakeTxManager{})

	item := NewItem("ITM-01", "widget", "pc")
	item.SalePrice = types.MustMoney("-5")

	err := svc.Create(context.Background(), item)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_DeleteMissingEntity(t *testing.T) {
	repo := newFakeWarehouseRepo()
	svc := NewService[*Warehouse]("warehouse", repo, fakeTxManager{})

	err := svc.Delete(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
