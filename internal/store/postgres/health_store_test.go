package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewbot/jobscout/internal/ingest"
)

func sampleReport() ingest.HealthReport {
	return ingest.HealthReport{
		RunID:     "run-1",
		StartedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Sites: []ingest.SiteHealth{
			{Site: "saramin.co.kr", Status: ingest.SiteStatusPass, TextLength: 1200},
			{Site: "catch.co.kr", Status: ingest.SiteStatusFail, Reason: "extracted text too short: 80 chars"},
		},
	}
}

func TestSaveReport(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewHealthStoreWithPool(mock)
	require.NoError(t, err)

	report := sampleReport()
	sites, err := json.Marshal(report.Sites)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(insertReportSQL)).
		WithArgs(report.RunID, report.StartedAt, 1, sites).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.SaveReport(context.Background(), report))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReports(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewHealthStoreWithPool(mock)
	require.NoError(t, err)

	report := sampleReport()
	sites, err := json.Marshal(report.Sites)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(listReportsSQL)).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"run_id", "started_at", "sites"}).
			AddRow(report.RunID, report.StartedAt, sites))

	reports, err := store.ListReports(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.RunID, reports[0].RunID)
	require.Len(t, reports[0].Sites, 2)
	assert.Equal(t, ingest.SiteStatusFail, reports[0].Sites[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewHealthStoreRequiresDSN(t *testing.T) {
	_, err := NewHealthStore(context.Background(), HealthStoreConfig{})
	assert.Error(t, err)
}
