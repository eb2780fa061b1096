// Package fiscalyear validates invoice dates against the company's
// currently selected financial year window.
package fiscalyear

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/pkg/logger"
)

// DateFormat is used when naming a violated bound in messages.
const DateFormat = "2006-01-02"

// FinancialYear is a company-configured date range gating invoice dates.
type FinancialYear struct {
	Year      int       `db:"year" json:"year"`
	StartDate time.Time `db:"start_date" json:"startDate"`
	EndDate   time.Time `db:"end_date" json:"endDate"`
}

// Validate checks the window invariant.
func (y FinancialYear) Validate(ctx context.Context) error {
	if y.EndDate.Before(y.StartDate) {
		return apperror.NewValidation("financial year start must not be after end").
			WithDetail("year", y.Year)
	}
	return nil
}

// Contains reports whether d falls inside the window, inclusive both ends.
func (y FinancialYear) Contains(d time.Time) bool {
	return !d.Before(y.StartDate) && !d.After(y.EndDate)
}

// State of the gate's lifecycle.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateReady           State = "ready"
	StateNoYearAvailable State = "no_year_available"
)

// Source supplies the active years and the company's persisted selection.
type Source interface {
	ListActiveYears(ctx context.Context) ([]FinancialYear, error)

	// GetCompanySelection returns the saved fiscal year as recorded on the
	// company record (a stringified year number; empty when never saved).
	GetCompanySelection(ctx context.Context) (string, error)

	SaveCompanySelection(ctx context.Context, year int) error
}

// Gate holds the current financial year selection and validates dates
// against it. It is constructed explicitly and injected into whatever
// needs it; there is no ambient global. The mutex only guards against the
// HTTP host calling in from concurrent requests.
type Gate struct {
	source Source

	mu      sync.RWMutex
	state   State
	current FinancialYear
	years   []FinancialYear

	persists sync.WaitGroup
}

// NewGate creates an uninitialized gate.
func NewGate(source Source) *Gate {
	return &Gate{
		source: source,
		state:  StateUninitialized,
	}
}

// Initialize fetches the active years and the saved company selection.
// The saved selection wins when it matches a fetched year; otherwise the
// most recent year (highest year number) becomes current. With no years
// at all the gate enters the no-year state and validation passes
// everything. Fetch failures are logged and degrade the same way; they
// never propagate.
func (g *Gate) Initialize(ctx context.Context) State {
	years, err := g.source.ListActiveYears(ctx)
	if err != nil {
		logger.Error(ctx, "financial year fetch failed, date validation disabled", "error", err)
		years = nil
	}

	saved := ""
	if len(years) > 0 {
		saved, err = g.source.GetCompanySelection(ctx)
		if err != nil {
			logger.Warn(ctx, "company year selection fetch failed, falling back to most recent", "error", err)
			saved = ""
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.years = years
	if len(years) == 0 {
		g.state = StateNoYearAvailable
		g.current = FinancialYear{}
		return g.state
	}

	g.current = pickCurrent(years, saved)
	g.state = StateReady

	logger.Info(ctx, "financial year gate initialized",
		"year", g.current.Year,
		"start", g.current.StartDate.Format(DateFormat),
		"end", g.current.EndDate.Format(DateFormat),
	)
	return g.state
}

// pickCurrent applies the selection rule: saved match first, then the
// highest year number.
func pickCurrent(years []FinancialYear, saved string) FinancialYear {
	if savedYear, err := strconv.Atoi(saved); err == nil {
		for _, y := range years {
			if y.Year == savedYear {
				return y
			}
		}
	}

	best := years[0]
	for _, y := range years[1:] {
		if y.Year > best.Year {
			best = y
		}
	}
	return best
}

// Teardown waits for in-flight persistence started by SetCurrentYear.
func (g *Gate) Teardown() {
	g.persists.Wait()
}

// State returns the lifecycle state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// CurrentYear returns the active selection, if any.
func (g *Gate) CurrentYear() (FinancialYear, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current, g.state == StateReady
}

// Years returns the fetched active years.
func (g *Gate) Years() []FinancialYear {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.years
}

// ValidateDate reports whether d is acceptable: always true without a
// current year (permissive default), otherwise the inclusive window test.
func (g *Gate) ValidateDate(d time.Time) bool {
	current, ok := g.CurrentYear()
	if !ok {
		return true
	}
	return current.Contains(d)
}

// ValidationMessage returns an empty string when d is valid, otherwise a
// message naming the violated bound with its formatted date.
func (g *Gate) ValidationMessage(d time.Time) string {
	current, ok := g.CurrentYear()
	if !ok {
		return ""
	}
	if d.Before(current.StartDate) {
		return fmt.Sprintf("date is before the financial year start (%s)", current.StartDate.Format(DateFormat))
	}
	if d.After(current.EndDate) {
		return fmt.Sprintf("date is after the financial year end (%s)", current.EndDate.Format(DateFormat))
	}
	return ""
}

// SetCurrentYear switches the in-memory selection immediately and then
// persists the choice to the company record in the background. A persist
// failure is logged and does NOT roll back the in-memory selection
// (optimistic behavior); the returned channel carries the persist outcome
// so a caller that wants to reconcile can, and one that doesn't can drop it.
func (g *Gate) SetCurrentYear(ctx context.Context, year int) (<-chan error, error) {
	g.mu.Lock()

	var selected *FinancialYear
	for i := range g.years {
		if g.years[i].Year == year {
			selected = &g.years[i]
			break
		}
	}
	if selected == nil {
		g.mu.Unlock()
		return nil, apperror.NewNotFound("financial year", year)
	}

	g.current = *selected
	g.state = StateReady
	g.mu.Unlock()

	result := make(chan error, 1)
	g.persists.Add(1)

	// Persist outlives the request that triggered it.
	persistCtx := context.WithoutCancel(ctx)
	go func() {
		defer g.persists.Done()

		err := g.source.SaveCompanySelection(persistCtx, year)
		if err != nil {
			logger.Error(persistCtx, "saving financial year selection failed, in-memory selection kept",
				"year", year,
				"error", err,
			)
		}
		result <- err
	}()

	return result, nil
}
