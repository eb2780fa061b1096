package invoice

import (
	"backoffice/internal/core/apperror"
	"backoffice/internal/core/types"
)

// noEdit marks the idle state (no line loaded into the draft buffer).
const noEdit = -1

// Editor is the stateful add/edit/delete/cancel workflow for invoice lines.
// It is owned by exactly one Builder and must not be shared across
// goroutines; the HTTP host serializes access per session.
type Editor struct {
	defaultTaxPercent string

	lines   []LineItem
	draft   Draft
	editing int
}

// NewEditor creates an idle editor with a default draft.
// defaultTaxPercent is the invoice-level tax rate a reset draft returns to.
func NewEditor(defaultTaxPercent string) *Editor {
	return &Editor{
		defaultTaxPercent: defaultTaxPercent,
		lines:             make([]LineItem, 0),
		draft:             NewDraft(defaultTaxPercent),
		editing:           noEdit,
	}
}

// Lines returns the confirmed lines. The slice is owned by the editor;
// callers must not mutate it.
func (e *Editor) Lines() []LineItem {
	return e.lines
}

// Draft returns the current draft buffer.
func (e *Editor) Draft() Draft {
	return e.draft
}

// EditingIndex returns the index being edited and whether editing is active.
func (e *Editor) EditingIndex() (int, bool) {
	if e.editing == noEdit {
		return 0, false
	}
	return e.editing, true
}

// AddOrUpdate confirms the draft as a line. It returns false without
// mutating any state when the item name, quantity or unit price is empty
// or coerces to zero. On success the derived fields are recomputed, the
// line is appended (or replaces the line under edit) and the draft resets.
func (e *Editor) AddOrUpdate(d Draft) bool {
	if d.ItemName == "" {
		return false
	}
	if types.ParseDecimalOrZero(d.Quantity).IsZero() {
		return false
	}
	if types.ParseDecimalOrZero(d.UnitPrice).IsZero() {
		return false
	}

	line := normalize(d)

	if e.editing != noEdit {
		e.lines[e.editing] = line
		e.editing = noEdit
	} else {
		e.lines = append(e.lines, line)
	}

	e.draft = NewDraft(e.defaultTaxPercent)
	return true
}

// BeginEdit loads the line at index into the draft buffer.
// An out-of-range index is a programming error and fails hard.
func (e *Editor) BeginEdit(index int) error {
	if index < 0 || index >= len(e.lines) {
		return apperror.NewValidation("line index out of range").
			WithDetail("index", index).
			WithDetail("lines", len(e.lines))
	}

	l := e.lines[index]
	e.draft = Draft{
		ItemNumber:      l.ItemNumber,
		ItemName:        l.ItemName,
		Quantity:        l.Quantity.String(),
		Unit:            l.Unit,
		UnitPrice:       l.UnitPrice.String(),
		DiscountPercent: l.DiscountPercent.String(),
		TaxPercent:      l.TaxPercent.String(),
		IsNewItem:       l.IsNewItem,
		WarehouseID:     l.WarehouseID,
		Total:           l.LineTotal,
	}
	e.editing = index
	return nil
}

// Delete removes the line at index. If that line is currently being
// edited, the draft buffer is reset and the editor returns to idle.
func (e *Editor) Delete(index int) error {
	if index < 0 || index >= len(e.lines) {
		return apperror.NewValidation("line index out of range").
			WithDetail("index", index).
			WithDetail("lines", len(e.lines))
	}

	e.lines = append(e.lines[:index], e.lines[index+1:]...)

	if e.editing == index {
		e.draft = NewDraft(e.defaultTaxPercent)
		e.editing = noEdit
	} else if e.editing != noEdit && e.editing > index {
		// Keep the edit pointing at the same line after the shift.
		e.editing--
	}

	return nil
}

// CancelEdit discards draft changes and returns to idle.
func (e *Editor) CancelEdit() {
	e.draft = NewDraft(e.defaultTaxPercent)
	e.editing = noEdit
}

// Reset clears lines, draft and editing state in one step.
func (e *Editor) Reset() {
	e.lines = make([]LineItem, 0)
	e.draft = NewDraft(e.defaultTaxPercent)
	e.editing = noEdit
}
