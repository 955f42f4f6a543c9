package main

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"healthcare-admin-console/internal/domain/entity"
	"healthcare-admin-console/internal/infrastructure/upstream"
	"healthcare-admin-console/internal/repository"
	"healthcare-admin-console/internal/service"
	"healthcare-admin-console/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type staticRecords struct {
	rows []map[string]any
}

func (s staticRecords) FindAll(ctx context.Context, screen *entity.Screen, scope entity.Scope) ([]entity.Record, error) {
	records := make([]entity.Record, 0, len(s.rows))
	for _, row := range s.rows {
		records = append(records, entity.NewRecord(row, screen, ""))
	}
	return records, nil
}

func (staticRecords) UpdateStatus(ctx context.Context, screen *entity.Screen, id string, status string) error {
	return nil
}

func (staticRecords) Delete(ctx context.Context, screen *entity.Screen, id string) error {
	return nil
}

func (staticRecords) UploadAttachment(ctx context.Context, screen *entity.Screen, id string, kind entity.AttachmentKind, filename string, content io.Reader) error {
	return nil
}

type fileServer map[string][]byte

func (f fileServer) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok := f[url]; ok {
		return data, nil
	}
	return nil, upstream.ErrUpstream
}

func nullLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

// newSessions serves two bookings; b1 has report r1.pdf, b2 gets secondReport when given
func newSessions(t *testing.T, files fileServer, secondReport ...string) usecase.ScreenSessionUsecase {
	t.Helper()
	log, _ := test.NewNullLogger()
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	records := staticRecords{rows: []map[string]any{
		{"_id": "b1", "bookingId": "BK-1", "patientName": "Rahul Sharma", "date": "2024-01-22", "report": "https://files.test/r1.pdf"},
		{"_id": "b2", "bookingId": "BK-2", "patientName": "Priya Nair", "date": "2024-01-21"},
	}}
	if len(secondReport) > 0 {
		records.rows[1]["report"] = secondReport[0]
	}

	return usecase.NewScreenSessionUsecase(
		log,
		repository.NewMemorySessionRepository(time.Hour),
		records,
		service.NewRecordFilter(ist, nil),
		service.NewSpreadsheetExporter(ist, nil),
		service.NewArchiveExporter(files, 2, log),
		service.NewAuditService(nil, log, repository.NewAuditLogRepository()),
	)
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--screen", "staff", "--company-id", "c1", "-f", "zip", "--type", "reports", "-o", "/tmp/out"})
	require.NoError(t, err)
	assert.Equal(t, "staff", opts.screen)
	assert.Equal(t, formatZIP, opts.format)
	assert.Equal(t, "reports", opts.exportType)
	assert.Equal(t, "/tmp/out", opts.outDir)
	assert.Equal(t, "c1", opts.scope().CompanyID)
	assert.Equal(t, entity.RoleAdmin, opts.scope().Role)

	defaults, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ScreenDiagnosticsBookings, defaults.screen)
	assert.Equal(t, formatXLSX, defaults.format)

	_, err = parseFlags([]string{"--format", "csv"})
	assert.Error(t, err)

	_, err = parseFlags([]string{"--screen", "invoices"})
	assert.Error(t, err)
}

func TestRunWritesSpreadsheet(t *testing.T) {
	fs := afero.NewMemMapFs()
	opts, err := parseFlags([]string{"--search", "priya", "--out", "/exports"})
	require.NoError(t, err)

	path, err := run(context.Background(), fs, newSessions(t, nil), opts, nullLogger())
	require.NoError(t, err)
	assert.Equal(t, "/exports", filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".xlsx"))

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	book, err := excelize.OpenReader(strings.NewReader(string(content)))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BK-2", rows[1][0])
}

func TestRunWritesArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	opts, err := parseFlags([]string{"--format", "zip", "--type", "reports", "--out", "/exports"})
	require.NoError(t, err)

	log, hook := test.NewNullLogger()
	files := fileServer{"https://files.test/r1.pdf": []byte("%PDF-1.4")}
	path, err := run(context.Background(), fs, newSessions(t, files), opts, log)
	require.NoError(t, err)
	assert.Equal(t, "/exports/diagnostics-bookings-reports-all.zip", path)
	assert.Empty(t, hook.AllEntries())

	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunLogsFailedFetches(t *testing.T) {
	fs := afero.NewMemMapFs()
	opts, err := parseFlags([]string{"--format", "zip", "--type", "reports", "--out", "/exports"})
	require.NoError(t, err)

	log, hook := test.NewNullLogger()
	sessions := newSessions(t, fileServer{"https://files.test/r1.pdf": []byte("%PDF-1.4")}, "https://files.test/r2.pdf")
	_, err = run(context.Background(), fs, sessions, opts, log)
	require.NoError(t, err)

	var warnings []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && strings.HasPrefix(entry.Message, "Failed to fetch report https://files.test/r2.pdf") {
			warnings = append(warnings, entry.Message)
		}
	}
	assert.Len(t, warnings, 1)
}

func TestRunPropagatesExportErrors(t *testing.T) {
	fs := afero.NewMemMapFs()

	opts, err := parseFlags([]string{"--format", "zip", "--out", "/exports"})
	require.NoError(t, err)
	_, err = run(context.Background(), fs, newSessions(t, fileServer{}), opts, nullLogger())
	assert.ErrorIs(t, err, usecase.ErrNothingToDownload)

	opts, err = parseFlags([]string{"--screen", "staff"})
	require.NoError(t, err)
	_, err = run(context.Background(), fs, newSessions(t, nil), opts, nullLogger())
	assert.ErrorIs(t, err, entity.ErrScopeMissing)

	opts, err = parseFlags([]string{"--date-mode", "custom", "--start", "2024-02-01", "--end", "2024-01-01"})
	require.NoError(t, err)
	_, err = run(context.Background(), fs, newSessions(t, nil), opts, nullLogger())
	assert.ErrorIs(t, err, usecase.ErrInvalidCustomRange)

	exists, err := afero.DirExists(fs, "/exports")
	require.NoError(t, err)
	assert.False(t, exists)
}
