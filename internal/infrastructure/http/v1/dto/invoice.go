package dto

import (
	"time"

	"backoffice/internal/core/types"
	"backoffice/internal/domain/invoice"
	"backoffice/internal/domain/money"
)

// HeaderRequest updates the invoice header of a drafting session.
type HeaderRequest struct {
	BranchID      string    `json:"branchId"`
	WarehouseID   string    `json:"warehouseId"`
	CustomerName  string    `json:"customerName"`
	Delegate      string    `json:"delegate"`
	PaymentMethod string    `json:"paymentMethod"`
	InvoiceDate   time.Time `json:"invoiceDate"`
	DueDate       time.Time `json:"dueDate"`
}

// ToHeader converts to the domain header.
func (r HeaderRequest) ToHeader() invoice.Header {
	return invoice.Header{
		BranchID:      r.BranchID,
		WarehouseID:   r.WarehouseID,
		CustomerName:  r.CustomerName,
		Delegate:      r.Delegate,
		PaymentMethod: r.PaymentMethod,
		InvoiceDate:   r.InvoiceDate,
		DueDate:       r.DueDate,
	}
}

// DraftRequest carries the raw line form input. All numeric fields are
// strings on purpose; the editor applies the zero-on-invalid coercion.
type DraftRequest struct {
	ItemNumber      string `json:"itemNumber"`
	ItemName        string `json:"itemName"`
	Quantity        string `json:"quantity"`
	Unit            string `json:"unit"`
	UnitPrice       string `json:"unitPrice"`
	DiscountPercent string `json:"discountPercent"`
	TaxPercent      string `json:"taxPercent"`
	IsNewItem       bool   `json:"isNewItem"`
	WarehouseID     string `json:"warehouseId"`
}

// ToDraft converts to the domain draft.
func (r DraftRequest) ToDraft() invoice.Draft {
	return invoice.Draft{
		ItemNumber:      r.ItemNumber,
		ItemName:        r.ItemName,
		Quantity:        r.Quantity,
		Unit:            r.Unit,
		UnitPrice:       r.UnitPrice,
		DiscountPercent: r.DiscountPercent,
		TaxPercent:      r.TaxPercent,
		IsNewItem:       r.IsNewItem,
		WarehouseID:     r.WarehouseID,
	}
}

// PaymentSplitRequest enables multi-payment with the given legs.
type PaymentSplitRequest struct {
	Cash *CashLeg `json:"cash"`
	Bank *BankLeg `json:"bank"`
	Card *CardLeg `json:"card"`
}

type CashLeg struct {
	Amount    types.Money `json:"amount"`
	CashBoxID string      `json:"cashBoxId"`
}

type BankLeg struct {
	Amount        types.Money `json:"amount"`
	BankID        string      `json:"bankId"`
	AccountNumber string      `json:"accountNumber"`
}

type CardLeg struct {
	Amount types.Money `json:"amount"`
}

// ToSplit converts to the domain payment split.
func (r PaymentSplitRequest) ToSplit() invoice.PaymentSplit {
	var split invoice.PaymentSplit
	if r.Cash != nil {
		split.Cash = &invoice.CashPayment{Amount: r.Cash.Amount, CashBoxID: r.Cash.CashBoxID}
	}
	if r.Bank != nil {
		split.Bank = &invoice.BankPayment{Amount: r.Bank.Amount, BankID: r.Bank.BankID, AccountNumber: r.Bank.AccountNumber}
	}
	if r.Card != nil {
		split.Card = &invoice.CardPayment{Amount: r.Card.Amount}
	}
	return split
}

// SessionResponse is the full drafting session state.
type SessionResponse struct {
	SessionID     string             `json:"sessionId"`
	Header        invoice.Header     `json:"header"`
	WarehouseMode string             `json:"warehouseMode"`
	Lines         []invoice.LineItem `json:"lines"`
	Draft         invoice.Draft      `json:"draft"`
	EditingIndex  *int               `json:"editingIndex,omitempty"`
	Totals        money.Totals       `json:"totals"`
	ReadyToSave   bool               `json:"readyToSave"`
	NotReadyCause string             `json:"notReadyCause,omitempty"`
}

// FromBuilder builds the session state snapshot.
func FromBuilder(sessionID string, b *invoice.Builder) SessionResponse {
	resp := SessionResponse{
		SessionID:     sessionID,
		Header:        b.Header(),
		WarehouseMode: string(b.WarehouseMode()),
		Lines:         b.Editor().Lines(),
		Draft:         b.Editor().Draft(),
		Totals:        b.Totals(),
	}

	if idx, editing := b.Editor().EditingIndex(); editing {
		resp.EditingIndex = &idx
	}

	resp.NotReadyCause, resp.ReadyToSave = b.ReadyState()
	return resp
}

// StockAvailabilityResponse reports derived stock for an item.
type StockAvailabilityResponse struct {
	ItemName    string      `json:"itemName"`
	WarehouseID string      `json:"warehouseId"`
	Quantity    types.Money `json:"quantity"`
	FromCache   bool        `json:"fromCache"`
}
