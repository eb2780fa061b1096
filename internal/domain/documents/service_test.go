package documents

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/invoice"
)

type fakeTxManager struct {
	failWith error
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.failWith != nil {
		return f.failWith
	}
	return fn(ctx)
}

type fakeSaleRepo struct {
	created []*SaleInvoice
	lines   map[id.ID][]DocumentLine
	marked  []id.ID
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{lines: make(map[id.ID][]DocumentLine)}
}

func (f *fakeSaleRepo) Create(ctx context.Context, doc *SaleInvoice) error {
	f.created = append(f.created, doc)
	return nil
}

func (f *fakeSaleRepo) GetByID(ctx context.Context, docID id.ID) (*SaleInvoice, error) {
	for _, d := range f.created {
		if d.ID == docID {
			return d, nil
		}
	}
	return nil, apperror.NewNotFound("sale_invoice", docID.String())
}

func (f *fakeSaleRepo) Update(ctx context.Context, doc *SaleInvoice) error { return nil }

func (f *fakeSaleRepo) SaveLines(ctx context.Context, docID id.ID, lines []DocumentLine) error {
	f.lines[docID] = lines
	return nil
}

func (f *fakeSaleRepo) GetLines(ctx context.Context, docID id.ID) ([]DocumentLine, error) {
	return f.lines[docID], nil
}

func (f *fakeSaleRepo) SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error {
	f.marked = append(f.marked, docID)
	return nil
}

func (f *fakeSaleRepo) List(ctx context.Context, filter ListFilter) (ListResult[*SaleInvoice], error) {
	return ListResult[*SaleInvoice]{Items: f.created, TotalCount: int64(len(f.created))}, nil
}

type fakeGate struct {
	rejectAll bool
}

func (f *fakeGate) ValidateDate(date time.Time) bool { return !f.rejectAll }

func (f *fakeGate) ValidationMessage(date time.Time) string {
	if f.rejectAll {
		return "date is after the financial year end (2024-12-31)"
	}
	return ""
}

type fakeNumbers struct {
	n int
}

func (f *fakeNumbers) Next(ctx context.Context, prefix string, date time.Time) (string, error) {
	f.n++
	return fmt.Sprintf("%s-%04d", prefix, f.n), nil
}

type recordingAuditor struct {
	entries []audit.Entry
	err     error
}

func (r *recordingAuditor) Record(ctx context.Context, entry audit.Entry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func readyBuilder(t *testing.T) *invoice.Builder {
	t.Helper()

	b := invoice.NewBuilder("15")
	b.SetHeader(invoice.Header{
		BranchID:      "branch-1",
		WarehouseID:   "wh-1",
		CustomerName:  "Acme",
		PaymentMethod: "cash",
		InvoiceDate:   time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	d := b.Editor().Draft()
	d.ItemName = "widget"
	d.Quantity = "2"
	d.UnitPrice = "100"
	require.True(t, b.Editor().AddOrUpdate(d))

	return b
}

func newSaleService(repo SaleRepository, gate DateGate, auditor audit.Recorder) *SaleService {
	return NewSaleService(repo, gate, &fakeNumbers{}, auditor, &fakeTxManager{})
}

func TestSaveFromBuilder_PersistsTotalsAndLines(t *testing.T) {
	repo := newFakeSaleRepo()
	auditor := &recordingAuditor{}
	svc := newSaleService(repo, &fakeGate{}, auditor)

	b := readyBuilder(t)
	doc, err := svc.SaveFromBuilder(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, "SI-0001", doc.Number)
	assert.Equal(t, "Acme", doc.CustomerName)
	assert.Equal(t, "wh-1", doc.WarehouseID)

	// 2 * 100 with 15% tax on the discounted subtotal.
	assert.True(t, types.MustMoney("200").Equal(doc.AfterDiscount))
	assert.True(t, types.MustMoney("30").Equal(doc.TaxTotal))
	assert.True(t, types.MustMoney("230").Equal(doc.AfterTax))

	require.Len(t, repo.created, 1)
	require.Len(t, repo.lines[doc.ID], 1)
	line := repo.lines[doc.ID][0]
	assert.Equal(t, 1, line.LineNo)
	assert.Equal(t, "widget", line.ItemName)
	assert.True(t, types.MustMoney("30").Equal(line.TaxValue), "line tax keeps the pre-discount base")

	require.Len(t, auditor.entries, 1)
	assert.Equal(t, audit.ActionCreate, auditor.entries[0].Action)
	assert.Equal(t, "sale_invoice", auditor.entries[0].EntityType)
}

func TestSaveFromBuilder_ResetsBuilderOnlyAfterCommit(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := newSaleService(repo, &fakeGate{}, audit.NopRecorder{})

	b := readyBuilder(t)
	_, err := svc.SaveFromBuilder(context.Background(), b)
	require.NoError(t, err)

	assert.Empty(t, b.Editor().Lines())
	assert.Empty(t, b.Header().CustomerName)
}

func TestSaveFromBuilder_FailedCommitKeepsBuilder(t *testing.T) {
	svc := NewSaleService(newFakeSaleRepo(), &fakeGate{}, &fakeNumbers{}, audit.NopRecorder{},
		&fakeTxManager{failWith: errors.New("connection reset")})

	b := readyBuilder(t)
	_, err := svc.SaveFromBuilder(context.Background(), b)
	require.Error(t, err)

	assert.Len(t, b.Editor().Lines(), 1, "user input survives a failed save")
	assert.Equal(t, "Acme", b.Header().CustomerName)
}

func TestSaveFromBuilder_NotReady(t *testing.T) {
	svc := newSaleService(newFakeSaleRepo(), &fakeGate{}, audit.NopRecorder{})

	b := invoice.NewBuilder("15")
	_, err := svc.SaveFromBuilder(context.Background(), b)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvoiceNotReady, appErr.Code)
	assert.Equal(t, invoice.ReasonBranchMissing, appErr.Details["reason"])
}

func TestSaveFromBuilder_SplitMismatchGetsDedicatedError(t *testing.T) {
	svc := newSaleService(newFakeSaleRepo(), &fakeGate{}, audit.NopRecorder{})

	b := readyBuilder(t)
	b.EnableMultiPayment(invoice.PaymentSplit{
		Cash: &invoice.CashPayment{Amount: types.MustMoney("100"), CashBoxID: "box-1"},
	})

	_, err := svc.SaveFromBuilder(context.Background(), b)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePaymentSplit, appErr.Code)
	assert.Equal(t, "100", appErr.Details["split_total"])
	assert.Equal(t, "230", appErr.Details["invoice_total"])
}

func TestSaveFromBuilder_DateOutsideFinancialYear(t *testing.T) {
	svc := newSaleService(newFakeSaleRepo(), &fakeGate{rejectAll: true}, audit.NopRecorder{})

	b := readyBuilder(t)
	_, err := svc.SaveFromBuilder(context.Background(), b)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDateOutOfYear, appErr.Code)
	assert.Contains(t, appErr.Message, "2024-12-31")

	assert.Len(t, b.Editor().Lines(), 1, "builder untouched on rejection")
}

func TestSaveFromBuilder_MultiPaymentPersistsSplit(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := newSaleService(repo, &fakeGate{}, audit.NopRecorder{})

	b := readyBuilder(t)
	b.EnableMultiPayment(invoice.PaymentSplit{
		Cash: &invoice.CashPayment{Amount: types.MustMoney("200"), CashBoxID: "box-1"},
		Card: &invoice.CardPayment{Amount: types.MustMoney("30")},
	})

	doc, err := svc.SaveFromBuilder(context.Background(), b)
	require.NoError(t, err)

	assert.True(t, doc.MultiPayment)
	assert.True(t, types.MustMoney("200").Equal(doc.CashAmount))
	assert.True(t, types.MustMoney("30").Equal(doc.CardAmount))
	assert.True(t, doc.BankAmount.IsZero())
	assert.Equal(t, "box-1", doc.CashBoxID)
}

func TestSaveFromBuilder_AuditFailureDoesNotFailSave(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := newSaleService(repo, &fakeGate{}, &recordingAuditor{err: errors.New("trail unavailable")})

	_, err := svc.SaveFromBuilder(context.Background(), readyBuilder(t))
	assert.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

type fakePurchaseRepo struct {
	created []*PurchaseInvoice
	lines   map[id.ID][]DocumentLine
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{lines: make(map[id.ID][]DocumentLine)}
}

func (f *fakePurchaseRepo) Create(ctx context.Context, doc *PurchaseInvoice) error {
	f.created = append(f.created, doc)
	return nil
}

func (f *fakePurchaseRepo) GetByID(ctx context.Context, docID id.ID) (*PurchaseInvoice, error) {
	for _, d := range f.created {
		if d.ID == docID {
			return d, nil
		}
	}
	return nil, apperror.NewNotFound("purchase_invoice", docID.String())
}

func (f *fakePurchaseRepo) Update(ctx context.Context, doc *PurchaseInvoice) error { return nil }

func (f *fakePurchaseRepo) SaveLines(ctx context.Context, docID id.ID, lines []DocumentLine) error {
	f.lines[docID] = lines
	return nil
}

func (f *fakePurchaseRepo) GetLines(ctx context.Context, docID id.ID) ([]DocumentLine, error) {
	return f.lines[docID], nil
}

func (f *fakePurchaseRepo) SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error {
	return nil
}

func (f *fakePurchaseRepo) List(ctx context.Context, filter ListFilter) (ListResult[*PurchaseInvoice], error) {
	return ListResult[*PurchaseInvoice]{Items: f.created}, nil
}

func TestPurchaseCreate(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := NewPurchaseService(repo, &fakeGate{}, &fakeNumbers{}, audit.NopRecorder{}, &fakeTxManager{})

	doc := NewPurchaseInvoice("branch-1")
	doc.SupplierName = "Supplier Co"
	doc.WarehouseID = "wh-1"
	doc.Lines = []DocumentLine{{
		LineID:   id.New(),
		LineNo:   1,
		ItemName: "widget",
		Quantity: types.MustMoney("10"),
	}}

	require.NoError(t, svc.Create(context.Background(), doc))
	assert.Equal(t, "PI-0001", doc.Number)
	require.Len(t, repo.created, 1)
	assert.Len(t, repo.lines[doc.ID], 1)
}

func TestPurchaseCreate_NormalizesLines(t *testing.T) {
	repo := newFakePurchaseRepo()
	svc := NewPurchaseService(repo, &fakeGate{}, &fakeNumbers{}, audit.NopRecorder{}, &fakeTxManager{})

	doc := NewPurchaseInvoice("branch-1")
	doc.SupplierName = "Supplier Co"
	doc.WarehouseID = "wh-1"
	// Derived values and totals arrive bogus; only the raw fields count.
	doc.AfterTax = types.MustMoney("999999")
	doc.Lines = []DocumentLine{
		{
			ItemName:        "widget",
			Quantity:        types.MustMoney("10"),
			UnitPrice:       types.MustMoney("5"),
			DiscountPercent: types.MustMoney("10"),
			TaxPercent:      types.MustMoney("15"),
			DiscountValue:   types.MustMoney("42"),
			TaxValue:        types.MustMoney("42"),
			LineTotal:       types.MustMoney("42"),
		},
		{
			ItemName:  "gadget",
			Quantity:  types.MustMoney("1"),
			UnitPrice: types.MustMoney("100"),
		},
	}

	require.NoError(t, svc.Create(context.Background(), doc))

	saved := repo.lines[doc.ID]
	require.Len(t, saved, 2)

	assert.Equal(t, 1, saved[0].LineNo)
	assert.Equal(t, 2, saved[1].LineNo)
	assert.NotEqual(t, id.Nil(), saved[0].LineID)
	assert.NotEqual(t, saved[0].LineID, saved[1].LineID)

	// 10 * 5 = 50, 10% discount = 5, 15% tax on the raw subtotal = 7.5.
	assert.True(t, types.MustMoney("50").Equal(saved[0].LineTotal))
	assert.True(t, types.MustMoney("5").Equal(saved[0].DiscountValue))
	assert.True(t, types.MustMoney("7.5").Equal(saved[0].TaxValue))

	// Totals roll up from the recomputed lines: (50-5) + 100 = 145,
	// tax on discounted subtotals = 45*0.15 = 6.75.
	assert.True(t, types.MustMoney("145").Equal(doc.AfterDiscount))
	assert.True(t, types.MustMoney("6.75").Equal(doc.TaxTotal))
	assert.True(t, types.MustMoney("151.75").Equal(doc.AfterTax))
}

func TestPurchaseCreate_RequiresWarehouse(t *testing.T) {
	svc := NewPurchaseService(newFakePurchaseRepo(), &fakeGate{}, &fakeNumbers{}, audit.NopRecorder{}, &fakeTxManager{})

	doc := NewPurchaseInvoice("branch-1")
	doc.SupplierName = "Supplier Co"
	doc.Lines = []DocumentLine{{ItemName: "widget", Quantity: types.MustMoney("1")}}

	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
