package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"backoffice/internal/domain/fiscalyear"
)

const currentYearKey = "current_financial_year"

// SettingsRepo persists company-level settings: the financial year table
// and the key-value settings store carrying the current year selection.
type SettingsRepo struct {
	txManager *TxManager
}

// NewSettingsRepo creates the settings repository.
func NewSettingsRepo(txManager *TxManager) *SettingsRepo {
	return &SettingsRepo{txManager: txManager}
}

var _ fiscalyear.Source = (*SettingsRepo)(nil)

// ListActiveYears returns all active financial years.
func (r *SettingsRepo) ListActiveYears(ctx context.Context) ([]fiscalyear.FinancialYear, error) {
	sql := `
		SELECT year, start_date, end_date
		FROM financial_years
		WHERE is_active = true
		ORDER BY year
	`

	var years []fiscalyear.FinancialYear
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &years, sql); err != nil {
		return nil, fmt.Errorf("list financial years: %w", err)
	}

	return years, nil
}

// GetCompanySelection returns the saved year selection; empty when never set.
func (r *SettingsRepo) GetCompanySelection(ctx context.Context) (string, error) {
	sql := `SELECT value FROM app_settings WHERE key = $1`

	var value string
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, currentYearKey).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get year selection: %w", err)
	}

	return value, nil
}

// SaveCompanySelection upserts the year selection.
func (r *SettingsRepo) SaveCompanySelection(ctx context.Context, year int) error {
	sql := `
		INSERT INTO app_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, currentYearKey, strconv.Itoa(year)); err != nil {
		return fmt.Errorf("save year selection: %w", err)
	}

	return nil
}
