package invoice

import (
	"backoffice/internal/core/types"
)

// splitTolerance is the allowed absolute gap between the split sum and the
// invoice grand total.
var splitTolerance = types.MustMoney("0.01")

// CashPayment is the cash leg of a multi-payment split.
type CashPayment struct {
	Amount    types.Money `json:"amount"`
	CashBoxID string      `json:"cashBoxId"`
}

// BankPayment is the bank-transfer leg of a multi-payment split.
type BankPayment struct {
	Amount        types.Money `json:"amount"`
	BankID        string      `json:"bankId"`
	AccountNumber string      `json:"accountNumber"`
}

// CardPayment is the card leg of a multi-payment split.
type CardPayment struct {
	Amount types.Money `json:"amount"`
}

// PaymentSplit distributes the invoice total across up to three methods.
// Absent legs count as zero.
type PaymentSplit struct {
	Cash *CashPayment `json:"cash,omitempty"`
	Bank *BankPayment `json:"bank,omitempty"`
	Card *CardPayment `json:"card,omitempty"`
}

// Sum returns the total amount across all present legs.
func (s PaymentSplit) Sum() types.Money {
	total := types.Zero()
	if s.Cash != nil {
		total = total.Add(s.Cash.Amount)
	}
	if s.Bank != nil {
		total = total.Add(s.Bank.Amount)
	}
	if s.Card != nil {
		total = total.Add(s.Card.Amount)
	}
	return total
}

// Covers reports whether the split matches the invoice grand total within
// tolerance: |sum - total| <= 0.01.
func (s PaymentSplit) Covers(grandTotal types.Money) bool {
	return s.Sum().Sub(grandTotal).Abs().LessThanOrEqual(splitTolerance)
}
