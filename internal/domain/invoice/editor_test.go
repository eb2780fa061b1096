package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/types"
)

func draftFor(name, qty, price string) Draft {
	d := NewDraft("15")
	d.ItemName = name
	d.Quantity = qty
	d.UnitPrice = price
	return d
}

func TestAddOrUpdate_RejectsIncompleteDraft(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
	}{
		{"empty item name", draftFor("", "2", "10")},
		{"empty quantity", draftFor("Sugar", "", "10")},
		{"zero quantity", draftFor("Sugar", "0", "10")},
		{"garbage quantity", draftFor("Sugar", "abc", "10")},
		{"empty price", draftFor("Sugar", "2", "")},
		{"zero price", draftFor("Sugar", "2", "0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor("15")
			ok := e.AddOrUpdate(tt.draft)

			assert.False(t, ok)
			assert.Empty(t, e.Lines(), "rejected draft must not mutate lines")
		})
	}
}

func TestAddOrUpdate_AppendsAndRecomputesDerivedFields(t *testing.T) {
	e := NewEditor("15")

	d := draftFor("Sugar", "2", "100")
	d.DiscountPercent = "10"
	d.TaxPercent = "15"

	require.True(t, e.AddOrUpdate(d))
	require.Len(t, e.Lines(), 1)

	l := e.Lines()[0]
	assert.True(t, types.MustMoney("200").Equal(l.LineTotal))
	assert.True(t, types.MustMoney("20").Equal(l.DiscountValue))
	// Line tax value accrues on the raw subtotal, unlike the invoice rollup.
	assert.True(t, types.MustMoney("30").Equal(l.TaxValue))
}

func TestAddOrUpdate_ResetsDraftAfterConfirm(t *testing.T) {
	e := NewEditor("15")

	require.True(t, e.AddOrUpdate(draftFor("Sugar", "2", "100")))

	d := e.Draft()
	assert.Equal(t, "1", d.Quantity)
	assert.Equal(t, DefaultUnit, d.Unit)
	assert.Equal(t, "0", d.DiscountPercent)
	assert.Equal(t, "15", d.TaxPercent)
	assert.True(t, d.Total.IsZero())
}

func TestBeginEdit_LoadsLineIntoDraft(t *testing.T) {
	e := NewEditor("15")
	require.True(t, e.AddOrUpdate(draftFor("Sugar", "2", "100")))
	require.True(t, e.AddOrUpdate(draftFor("Rice", "5", "40")))

	require.NoError(t, e.BeginEdit(1))

	idx, editing := e.EditingIndex()
	assert.True(t, editing)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "Rice", e.Draft().ItemName)
	assert.Equal(t, "5", e.Draft().Quantity)
}

func TestBeginEdit_OutOfRangeFailsHard(t *testing.T) {
	e := NewEditor("15")
	require.True(t, e.AddOrUpdate(draftFor("Sugar", "2", "100")))

	assert.Error(t, e.BeginEdit(1))
	assert.Error(t, e.BeginEdit(-1))
}

func TestAddOrUpdate_ReplacesLineUnderEdit(t *testing.T) {
	e := NewEditor("15")
	require.True(t, e.AddOrUpdate(draftFor("Sugar", "2", "100")))
	require.True(t, e.AddOrUpdate(draftFor("Rice", "5", "40")))

	require.NoError(t, e.BeginEdit(0))
	require.True(t, e.AddOrUpdate(draftFor("Sugar", "3", "100")))

	require.Len(t, e.Lines(), 2)
	assert.True(t, types.MustMoney("3").Equal(e.Lines()[0].Quantity))

	_, editing := e.EditingIndex()
	assert.False(t, editing, "confirming an edit must return to idle")
}

func TestDelete_RemovesLine(t *testing.T) {
	e := NewEditor("15")
	require.True(t, e.AddOrUpdate(draftFor("Sugar", "2", "100")))
	require.True(t, e.AddOrUpdate(draftFor("Rice", "5", "40")))

	require.NoError(t, e.Delete(0))

	require.Len(t, e.Lines(), 1)
	assert.Equal(t, "Rice", e.Lines()[0].ItemName)
	assert.Error(t, e.Delete(5))
}

func TestDelete_WhileEditingSameIndexResetsDraft(t *testing.T) {
	e := NewEditor("15")
	require.True(t, e.AddOrUpdate(draftFor("Sugar", "2", "100")))
	require.NoError(t, e.BeginEdit(0))

	require.NoError(t, e.Delete(0))

	_, editing := e.EditingIndex()
	assert.False(t, editing)
	assert.Equal(t, "1", e.Draft().Quantity)
	assert.Empty(t, e.Draft().ItemName)
}

func TestDelete_EarlierIndexShiftsEditPointer(t *testing.T) {
	e := NewEditor("15")
	require.True(t, e.AddOrUpdate(draftFor("Sugar", "2", "100")))
	require.True(t, e.AddOrUpdate(draftFor("Rice", "5", "40")))
	require.NoError(t, e.BeginEdit(1))

	require.NoError(t, e.Delete(0))

	idx, editing := e.EditingIndex()
	assert.True(t, editing)
	assert.Equal(t, 0, idx, "edit must still point at the Rice line")
}

func TestCancelEdit_RestoresDefaults(t *testing.T) {
	e := NewEditor("14")
	require.True(t, e.AddOrUpdate(draftFor("Sugar", "2", "100")))
	require.NoError(t, e.BeginEdit(0))

	e.CancelEdit()

	_, editing := e.EditingIndex()
	assert.False(t, editing)

	d := e.Draft()
	assert.Equal(t, "1", d.Quantity)
	assert.Equal(t, DefaultUnit, d.Unit)
	assert.Equal(t, "0", d.DiscountPercent)
	assert.Equal(t, "14", d.TaxPercent, "tax resets to the invoice default rate, not zero")
	assert.True(t, d.Total.IsZero())

	require.Len(t, e.Lines(), 1, "cancel must not touch confirmed lines")
}
