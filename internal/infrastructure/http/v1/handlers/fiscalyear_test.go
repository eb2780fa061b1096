package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain/fiscalyear"
	"backoffice/internal/infrastructure/http/v1/middleware"
)

type fakeYearSource struct {
	years   []fiscalyear.FinancialYear
	saveErr error
	release chan struct{}

	savedYear int
}

func (f *fakeYearSource) ListActiveYears(ctx context.Context) ([]fiscalyear.FinancialYear, error) {
	return f.years, nil
}

func (f *fakeYearSource) GetCompanySelection(ctx context.Context) (string, error) {
	return "", nil
}

func (f *fakeYearSource) SaveCompanySelection(ctx context.Context, year int) error {
	if f.release != nil {
		<-f.release
	}
	f.savedYear = year
	return f.saveErr
}

func yearWindow(year int) fiscalyear.FinancialYear {
	return fiscalyear.FinancialYear{
		Year:      year,
		StartDate: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func newFiscalYearRouter(t *testing.T, src *fakeYearSource) (*gin.Engine, *fiscalyear.Gate) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gate := fiscalyear.NewGate(src)
	require.Equal(t, fiscalyear.StateReady, gate.Initialize(context.Background()))

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	handler := NewFiscalYearHandler(NewBaseHandler(), gate)
	handler.RegisterRoutes(router.Group("/financial-years"))
	return router, gate
}

func putYear(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/financial-years/current", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestFiscalYearSetCurrent_RespondsBeforePersistCompletes(t *testing.T) {
	src := &fakeYearSource{
		years:   []fiscalyear.FinancialYear{yearWindow(2023), yearWindow(2024), yearWindow(2025)},
		release: make(chan struct{}),
	}
	router, gate := newFiscalYearRouter(t, src)

	w := putYear(router, `{"year":2024}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// The switch is visible before the save ever ran.
	current, ok := gate.CurrentYear()
	require.True(t, ok)
	assert.Equal(t, 2024, current.Year)
	assert.Equal(t, 0, src.savedYear)

	close(src.release)
	gate.Teardown()
	assert.Equal(t, 2024, src.savedYear)
}

func TestFiscalYearSetCurrent_PersistFailureKeepsSelection(t *testing.T) {
	src := &fakeYearSource{
		years:   []fiscalyear.FinancialYear{yearWindow(2023), yearWindow(2024)},
		saveErr: errors.New("settings table unavailable"),
	}
	router, gate := newFiscalYearRouter(t, src)

	w := putYear(router, `{"year":2023}`)
	assert.Equal(t, http.StatusOK, w.Code)

	gate.Teardown()

	current, ok := gate.CurrentYear()
	require.True(t, ok)
	assert.Equal(t, 2023, current.Year, "in-memory selection survives a failed persist")
}

func TestFiscalYearSetCurrent_UnknownYear(t *testing.T) {
	src := &fakeYearSource{years: []fiscalyear.FinancialYear{yearWindow(2024)}}
	router, _ := newFiscalYearRouter(t, src)

	w := putYear(router, `{"year":1999}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
