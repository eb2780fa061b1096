package stock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/types"
)

type fakeLedger struct {
	purchases []LedgerInvoice
	sales     []LedgerInvoice

	purchaseErr error
	saleErr     error
}

func (f *fakeLedger) ListPurchaseInvoices(ctx context.Context) ([]LedgerInvoice, error) {
	return f.purchases, f.purchaseErr
}

func (f *fakeLedger) ListSaleInvoices(ctx context.Context) ([]LedgerInvoice, error) {
	return f.sales, f.saleErr
}

func inv(warehouseID string, item string, qty string) LedgerInvoice {
	return LedgerInvoice{
		WarehouseID: warehouseID,
		Lines:       []LedgerLine{{ItemName: item, Quantity: types.MustMoney(qty)}},
	}
}

func TestAvailableStock_ReplaysBothStreams(t *testing.T) {
	r := NewReconciler(&fakeLedger{
		purchases: []LedgerInvoice{inv("W1", "A", "10")},
		sales:     []LedgerInvoice{inv("W1", "A", "3")},
	})

	got := r.AvailableStock(context.Background(), "A", "W1")

	assert.True(t, types.MustMoney("7").Equal(got), "got %s", got)
}

func TestAvailableStock_FiltersByWarehouseAndItem(t *testing.T) {
	r := NewReconciler(&fakeLedger{
		purchases: []LedgerInvoice{
			inv("W1", "A", "10"),
			inv("W2", "A", "100"), // other warehouse
			inv("W1", "B", "50"),  // other item
			{WarehouseID: "W1", Lines: []LedgerLine{
				{ItemName: "A", Quantity: types.MustMoney("2")},
				{ItemName: "B", Quantity: types.MustMoney("9")},
			}},
		},
		sales: []LedgerInvoice{inv("W1", "A", "5")},
	})

	got := r.AvailableStock(context.Background(), "A", "W1")

	assert.True(t, types.MustMoney("7").Equal(got), "10+2-5, got %s", got)
}

func TestAvailableStock_NoEventsIsZero(t *testing.T) {
	r := NewReconciler(&fakeLedger{})

	got := r.AvailableStock(context.Background(), "A", "W1")

	assert.True(t, got.IsZero())
}

func TestAvailableStock_NegativeIsValid(t *testing.T) {
	r := NewReconciler(&fakeLedger{
		sales: []LedgerInvoice{inv("W1", "A", "4")},
	})

	got := r.AvailableStock(context.Background(), "A", "W1")

	assert.True(t, types.MustMoney("-4").Equal(got), "oversold item, got %s", got)
}

func TestAvailableStock_FetchFailureDegradesToZero(t *testing.T) {
	boom := errors.New("connection refused")

	for _, f := range []*fakeLedger{
		{purchaseErr: boom, sales: []LedgerInvoice{inv("W1", "A", "3")}},
		{purchases: []LedgerInvoice{inv("W1", "A", "10")}, saleErr: boom},
	} {
		r := NewReconciler(f)
		got := r.AvailableStock(context.Background(), "A", "W1")
		assert.True(t, got.IsZero(), "fetch failure must degrade to zero")
	}
}

func TestBalanceCache(t *testing.T) {
	c := NewBalanceCache()

	_, ok := c.Get("A", "W1")
	assert.False(t, ok)

	c.Put("A", "W1", types.MustMoney("7"))
	c.Put("A", "W2", types.MustMoney("-2"))

	got, ok := c.Get("A", "W1")
	require.True(t, ok)
	assert.True(t, types.MustMoney("7").Equal(got))
	assert.Equal(t, 2, c.Len())

	c.Reset()
	assert.Zero(t, c.Len())
	_, ok = c.Get("A", "W1")
	assert.False(t, ok)
}

func TestCatalogCache_ServesFreshValueWithoutRefetch(t *testing.T) {
	calls := 0
	c := NewCatalogCache(time.Minute, func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"Sugar", "Rice"}, nil
	})

	first, err := c.Get(context.Background())
	require.NoError(t, err)
	second, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCatalogCache_ExpiredEntryRefetches(t *testing.T) {
	calls := 0
	c := NewCatalogCache(-time.Second, func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"Sugar"}, nil
	})

	_, err := c.Get(context.Background())
	require.NoError(t, err)
	_, err = c.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "non-positive TTL means every read refetches")
}

func TestCatalogCache_RefreshBypassesTTL(t *testing.T) {
	calls := 0
	c := NewCatalogCache(time.Hour, func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"Sugar"}, nil
	})

	_, err := c.Get(context.Background())
	require.NoError(t, err)
	_, err = c.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestCatalogCache_ReturnedSliceIsACopy(t *testing.T) {
	c := NewCatalogCache(time.Hour, func(ctx context.Context) ([]string, error) {
		return []string{"Sugar", "Rice"}, nil
	})

	first, err := c.Get(context.Background())
	require.NoError(t, err)
	first[0] = "mutated"

	second, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sugar", "Rice"}, second, "caller mutation must not reach the cache")

	refreshed, err := c.Refresh(context.Background())
	require.NoError(t, err)
	refreshed[1] = "mutated"
	again, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sugar", "Rice"}, again)
}

func TestCatalogCache_FailedFetchKeepsNothing(t *testing.T) {
	boom := errors.New("unavailable")
	fail := true
	c := NewCatalogCache(time.Hour, func(ctx context.Context) ([]string, error) {
		if fail {
			return nil, boom
		}
		return []string{"Sugar"}, nil
	})

	_, err := c.Get(context.Background())
	require.ErrorIs(t, err, boom)

	// Only a successful fetch stamps the expiry clock.
	fail = false
	got, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Sugar"}, got)
}
