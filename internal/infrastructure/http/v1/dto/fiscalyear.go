package dto

import (
	"strconv"

	"backoffice/internal/domain/fiscalyear"
)

// FinancialYearResponse describes one selectable year.
type FinancialYearResponse struct {
	Year      string `json:"year"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Current   bool   `json:"current"`
}

// FinancialYearsResponse lists years plus the gate state.
type FinancialYearsResponse struct {
	State string                  `json:"state"`
	Years []FinancialYearResponse `json:"years"`
}

// FromGate snapshots the gate for the API. Years travel as strings on the
// wire, matching the persisted selection format.
func FromGate(g *fiscalyear.Gate) FinancialYearsResponse {
	current, hasCurrent := g.CurrentYear()

	years := g.Years()
	out := make([]FinancialYearResponse, len(years))
	for i, y := range years {
		out[i] = FinancialYearResponse{
			Year:      strconv.Itoa(y.Year),
			StartDate: y.StartDate.Format(fiscalyear.DateFormat),
			EndDate:   y.EndDate.Format(fiscalyear.DateFormat),
			Current:   hasCurrent && y.Year == current.Year,
		}
	}

	return FinancialYearsResponse{
		State: string(g.State()),
		Years: out,
	}
}

// SetYearRequest switches the current financial year.
type SetYearRequest struct {
	Year int `json:"year" binding:"required"`
}
