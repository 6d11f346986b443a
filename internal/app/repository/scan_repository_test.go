package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func scanEventFixture() *model.ScanEvent {
	return &model.ScanEvent{
		ID:         "scan-1",
		LinkID:     "link-1",
		ScannedAt:  time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		IP:         "203.0.113.7",
		Country:    "Germany",
		City:       "Berlin",
		DeviceType: model.DeviceMobile,
		Browser:    "Chrome 120",
		OS:         "Android 14",
	}
}

func TestScanRepository_RecordInsertsAndBumpsCounterInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "scan_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "links" SET "total_scans"=total_scans + 1`)).
		WithArgs("link-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewScanRepository(db)
	err := repo.Record(context.Background(), scanEventFixture())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet(),
		"insert and counter increment run between one begin and one commit")
}

func TestScanRepository_FailedInsertRollsBackWithoutCounterUpdate(t *testing.T) {
	db, mock := newMockDB(t)

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "scan_events"`)).WillReturnError(boom)
	mock.ExpectRollback()

	repo := NewScanRepository(db)
	err := repo.Record(context.Background(), scanEventFixture())
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet(),
		"the counter is untouched when the insert fails")
}

func TestScanRepository_FailedCounterUpdateRollsBackInsert(t *testing.T) {
	db, mock := newMockDB(t)

	boom := errors.New("deadlock detected")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "scan_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "links" SET "total_scans"=total_scans + 1`)).
		WithArgs("link-1").
		WillReturnError(boom)
	mock.ExpectRollback()

	repo := NewScanRepository(db)
	err := repo.Record(context.Background(), scanEventFixture())
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
