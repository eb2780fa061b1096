package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/types"
)

func TestGroupLedgerRows(t *testing.T) {
	rows := []ledgerRow{
		{DocumentID: "a", WarehouseID: "wh-1", ItemName: "widget", Quantity: types.MustMoney("5")},
		{DocumentID: "a", WarehouseID: "wh-1", ItemName: "gadget", Quantity: types.MustMoney("2")},
		{DocumentID: "a", WarehouseID: "wh-2", ItemName: "widget", Quantity: types.MustMoney("1")},
		{DocumentID: "b", WarehouseID: "wh-1", ItemName: "widget", Quantity: types.MustMoney("3")},
	}

	invoices := groupLedgerRows(rows)
	require.Len(t, invoices, 3, "one invoice per (document, warehouse)")

	assert.Equal(t, "wh-1", invoices[0].WarehouseID)
	assert.Len(t, invoices[0].Lines, 2)
	assert.Equal(t, "wh-2", invoices[1].WarehouseID)
	assert.Len(t, invoices[1].Lines, 1)
	assert.Len(t, invoices[2].Lines, 1)
}

func TestGroupLedgerRows_Empty(t *testing.T) {
	assert.Empty(t, groupLedgerRows(nil))
}
