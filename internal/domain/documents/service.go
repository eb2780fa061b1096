package documents

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/invoice"
	"backoffice/pkg/logger"
)

// DateGate validates document dates against the current financial year.
// The fiscalyear package provides the production implementation.
type DateGate interface {
	ValidateDate(date time.Time) bool
	ValidationMessage(date time.Time) string
}

// NumberSource issues sequential document numbers per prefix.
type NumberSource interface {
	Next(ctx context.Context, prefix string, date time.Time) (string, error)
}

// SaleService turns a ready invoice builder into a persisted sale invoice.
type SaleService struct {
	repo      SaleRepository
	gate      DateGate
	numbers   NumberSource
	auditor   audit.Recorder
	txManager tx.Manager
}

// NewSaleService creates a sale invoice service.
func NewSaleService(repo SaleRepository, gate DateGate, numbers NumberSource, auditor audit.Recorder, txManager tx.Manager) *SaleService {
	return &SaleService{
		repo:      repo,
		gate:      gate,
		numbers:   numbers,
		auditor:   auditor,
		txManager: txManager,
	}
}

// SaveFromBuilder persists the invoice under construction. It re-checks the
// readiness predicate and the financial-year window at the moment of save,
// and resets the builder only after the write committed.
func (s *SaleService) SaveFromBuilder(ctx context.Context, b *invoice.Builder) (*SaleInvoice, error) {
	reason, ready := b.ReadyState()
	if !ready {
		if reason == invoice.ReasonPaymentSplitMismatch {
			split, _ := b.MultiPayment()
			return nil, apperror.NewPaymentSplitMismatch(
				split.Sum().String(),
				b.Totals().AfterTax.String(),
			)
		}
		return nil, apperror.NewInvoiceNotReady(reason)
	}

	header := b.Header()
	if !s.gate.ValidateDate(header.InvoiceDate) {
		return nil, apperror.NewDateOutOfYear(s.gate.ValidationMessage(header.InvoiceDate))
	}

	doc := s.buildDocument(b)

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	number, err := s.numbers.Next(ctx, "SI", doc.Date)
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, audit.ActionCreate, "sale_invoice", doc.ID, doc)

	// The builder resets only after a committed save; a failed save keeps
	// everything the user typed.
	b.Reset()

	logger.Info(ctx, "sale invoice saved",
		"id", doc.ID,
		"number", doc.Number,
		"customer", doc.CustomerName,
		"afterTax", doc.AfterTax,
	)
	return doc, nil
}

func (s *SaleService) buildDocument(b *invoice.Builder) *SaleInvoice {
	header := b.Header()
	totals := b.Totals()

	doc := NewSaleInvoice(header.BranchID)
	doc.Date = header.InvoiceDate
	doc.DueDate = header.DueDate
	doc.CustomerName = header.CustomerName
	doc.Delegate = header.Delegate
	doc.PaymentMethod = header.PaymentMethod
	doc.AfterDiscount = totals.AfterDiscount
	doc.TaxTotal = totals.Tax
	doc.AfterTax = totals.AfterTax
	doc.Lines = linesFromEditor(b.Editor().Lines())

	if b.WarehouseMode() == invoice.WarehouseModeSingle {
		doc.WarehouseID = header.WarehouseID
	}

	if split, ok := b.MultiPayment(); ok {
		doc.MultiPayment = true
		if split.Cash != nil {
			doc.CashAmount = split.Cash.Amount
			doc.CashBoxID = split.Cash.CashBoxID
		}
		if split.Bank != nil {
			doc.BankAmount = split.Bank.Amount
			doc.BankID = split.Bank.BankID
		}
		if split.Card != nil {
			doc.CardAmount = split.Card.Amount
		}
	}

	return doc
}

// GetByID retrieves a sale invoice with lines.
func (s *SaleService) GetByID(ctx context.Context, docID id.ID) (*SaleInvoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Delete soft-deletes a sale invoice. The stock ledger excludes deleted
// documents, so the deletion is visible in balances immediately.
func (s *SaleService) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, docID, true)
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, audit.ActionDelete, "sale_invoice", docID, doc)
	return nil
}

// List retrieves sale invoices with filtering.
func (s *SaleService) List(ctx context.Context, filter ListFilter) (ListResult[*SaleInvoice], error) {
	return s.repo.List(ctx, filter)
}

func (s *SaleService) recordAudit(ctx context.Context, action, entityType string, entityID id.ID, payload any) {
	entry := audit.NewEntry(action, entityType, entityID, payload)
	if err := s.auditor.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "audit write failed", "action", action, "entity", entityType, "error", err)
	}
}

// PurchaseService manages purchase invoices, the incoming leg of the ledger.
type PurchaseService struct {
	repo      PurchaseRepository
	gate      DateGate
	numbers   NumberSource
	auditor   audit.Recorder
	txManager tx.Manager
}

// NewPurchaseService creates a purchase invoice service.
func NewPurchaseService(repo PurchaseRepository, gate DateGate, numbers NumberSource, auditor audit.Recorder, txManager tx.Manager) *PurchaseService {
	return &PurchaseService{
		repo:      repo,
		gate:      gate,
		numbers:   numbers,
		auditor:   auditor,
		txManager: txManager,
	}
}

// Create persists a new purchase invoice. Incoming lines carry raw fields
// only: identity, position and the derived money columns are recomputed
// here, and the invoice totals roll up from the recomputed lines.
func (s *PurchaseService) Create(ctx context.Context, doc *PurchaseInvoice) error {
	normalizeLines(doc.Lines)

	totals := rollupTotals(doc.Lines)
	doc.AfterDiscount = totals.AfterDiscount
	doc.TaxTotal = totals.Tax
	doc.AfterTax = totals.AfterTax

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if !s.gate.ValidateDate(doc.Date) {
		return apperror.NewDateOutOfYear(s.gate.ValidationMessage(doc.Date))
	}

	if doc.Number == "" {
		number, err := s.numbers.Next(ctx, "PI", doc.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	entry := audit.NewEntry(audit.ActionCreate, "purchase_invoice", doc.ID, doc)
	if err := s.auditor.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "audit write failed", "action", audit.ActionCreate, "entity", "purchase_invoice", "error", err)
	}

	logger.Info(ctx, "purchase invoice saved", "id", doc.ID, "number", doc.Number, "supplier", doc.SupplierName)
	return nil
}

// GetByID retrieves a purchase invoice with lines.
func (s *PurchaseService) GetByID(ctx context.Context, docID id.ID) (*PurchaseInvoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// List retrieves purchase invoices with filtering.
func (s *PurchaseService) List(ctx context.Context, filter ListFilter) (ListResult[*PurchaseInvoice], error) {
	return s.repo.List(ctx, filter)
}
