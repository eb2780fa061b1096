package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/types"
)

// readyBuilder returns a builder that passes every readiness check with a
// single 1 x 100 line at 15% tax (grand total 115).
func readyBuilder(t *testing.T) *Builder {
	t.Helper()

	b := NewBuilder("15")
	b.SetHeader(Header{
		BranchID:      "BR-1",
		WarehouseID:   "WH-1",
		CustomerName:  "ACME Trading",
		PaymentMethod: "cash",
	})

	d := NewDraft("15")
	d.ItemName = "Sugar"
	d.Quantity = "1"
	d.UnitPrice = "100"
	require.True(t, b.Editor().AddOrUpdate(d))

	return b
}

func TestReadiness_Conjunction(t *testing.T) {
	b := NewBuilder("15")

	reason, ready := b.ReadyState()
	assert.False(t, ready)
	assert.Equal(t, ReasonBranchMissing, reason)

	h := Header{BranchID: "BR-1"}
	b.SetHeader(h)
	reason, _ = b.ReadyState()
	assert.Equal(t, ReasonCustomerMissing, reason)

	h.CustomerName = "ACME Trading"
	b.SetHeader(h)
	reason, _ = b.ReadyState()
	assert.Equal(t, ReasonWarehouseMissing, reason)

	h.WarehouseID = "WH-1"
	b.SetHeader(h)
	reason, _ = b.ReadyState()
	assert.Equal(t, ReasonNoLines, reason)

	d := NewDraft("15")
	d.ItemName = "Sugar"
	d.Quantity = "1"
	d.UnitPrice = "100"
	require.True(t, b.Editor().AddOrUpdate(d))
	reason, _ = b.ReadyState()
	assert.Equal(t, ReasonPaymentMethodMissing, reason)

	h.PaymentMethod = "cash"
	b.SetHeader(h)
	reason, ready = b.ReadyState()
	assert.True(t, ready)
	assert.Empty(t, reason)
}

func TestReadiness_MultipleWarehouseModeSkipsHeaderWarehouse(t *testing.T) {
	b := readyBuilder(t)

	h := b.Header()
	h.WarehouseID = ""
	b.SetHeader(h)
	assert.False(t, b.IsReadyToSave())

	b.SetWarehouseMode(WarehouseModeMultiple)
	assert.True(t, b.IsReadyToSave())
}

func TestReadiness_PaymentSplitTolerance(t *testing.T) {
	b := readyBuilder(t)
	require.True(t, types.MustMoney("115").Equal(b.Totals().AfterTax))

	b.EnableMultiPayment(PaymentSplit{
		Cash: &CashPayment{Amount: types.MustMoney("100"), CashBoxID: "CB-1"},
		Bank: &BankPayment{Amount: types.MustMoney("15"), BankID: "BK-1"},
	})
	assert.True(t, b.IsReadyToSave())

	b.EnableMultiPayment(PaymentSplit{
		Cash: &CashPayment{Amount: types.MustMoney("100"), CashBoxID: "CB-1"},
		Bank: &BankPayment{Amount: types.MustMoney("14.50"), BankID: "BK-1"},
	})
	reason, ready := b.ReadyState()
	assert.False(t, ready, "delta 0.50 exceeds the 0.01 tolerance")
	assert.Equal(t, ReasonPaymentSplitMismatch, reason)

	b.DisableMultiPayment()
	assert.True(t, b.IsReadyToSave(), "split check passes trivially without multi-payment")
}

func TestTotals_RecomputedWhenLinesChange(t *testing.T) {
	b := readyBuilder(t)

	d := NewDraft("15")
	d.ItemName = "Rice"
	d.Quantity = "2"
	d.UnitPrice = "50"
	d.TaxPercent = "0"
	require.True(t, b.Editor().AddOrUpdate(d))

	got := b.Totals()
	assert.True(t, types.MustMoney("200").Equal(got.AfterDiscount))
	assert.True(t, types.MustMoney("15").Equal(got.Tax))
	assert.True(t, types.MustMoney("215").Equal(got.AfterTax))
	assert.True(t, got.Total.Equal(got.AfterDiscount))

	require.NoError(t, b.Editor().Delete(1))
	assert.True(t, types.MustMoney("115").Equal(b.Totals().AfterTax))
}

func TestEditIdempotence_TotalsUnchanged(t *testing.T) {
	b := readyBuilder(t)
	before := b.Totals()

	require.NoError(t, b.Editor().BeginEdit(0))
	d := b.Editor().Draft()
	require.True(t, b.Editor().AddOrUpdate(d))

	after := b.Totals()
	assert.True(t, before.AfterDiscount.Equal(after.AfterDiscount))
	assert.True(t, before.Tax.Equal(after.Tax))
	assert.True(t, before.AfterTax.Equal(after.AfterTax))
}

func TestReset_AllOrNothing(t *testing.T) {
	b := readyBuilder(t)
	b.EnableMultiPayment(PaymentSplit{Card: &CardPayment{Amount: types.MustMoney("115")}})
	b.StockCache().Put("Sugar", "WH-1", types.MustMoney("7"))
	require.NoError(t, b.Editor().BeginEdit(0))

	b.Reset()

	assert.Equal(t, Header{}, b.Header())
	assert.Empty(t, b.Editor().Lines())
	assert.Equal(t, NewDraft("15"), b.Editor().Draft())

	_, editing := b.Editor().EditingIndex()
	assert.False(t, editing)
	assert.Zero(t, b.StockCache().Len())

	_, multi := b.MultiPayment()
	assert.False(t, multi)
}
