package notification

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock
}

func newTestService(db *gorm.DB) Service {
	return New(db, nil, slog.New(slog.DiscardHandler))
}

func expectInstallCount(mock sqlmock.Sqlmock, n int64) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "app_installations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(n))
}

func TestCreateDecrementsBalanceByOne(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	clinicID := uuid.New()
	notifID := uuid.New()

	mock.ExpectBegin()
	expectInstallCount(mock, 1)
	mock.ExpectExec(`UPDATE "clinics" SET "push_notification_balance"=push_notification_balance - \$1.*push_notification_balance >= \$4`).
		WithArgs(1, sqlmock.AnyArg(), clinicID, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(notifID.String()))
	mock.ExpectCommit()

	n, err := svc.Create(context.Background(), clinicID, CreateRequest{
		PatientID: uuid.New(),
		Message:   "take your medication",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.Status != "sent" || n.SentAt == nil {
		t.Errorf("status = %q, sentAt = %v, want immediate sent", n.Status, n.SentAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateInsufficientBalanceAbortsBeforeInsert(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	clinicID := uuid.New()

	mock.ExpectBegin()
	expectInstallCount(mock, 1)
	// Guard matches zero rows: the transaction must roll back with no insert.
	mock.ExpectExec(`UPDATE "clinics" SET "push_notification_balance"=push_notification_balance - \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), clinicID, CreateRequest{
		PatientID: uuid.New(),
		Message:   "take your medication",
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateBatchDecrementsBalanceByCount(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	clinicID := uuid.New()
	reqs := []CreateRequest{
		{PatientID: uuid.New(), Message: "first"},
		{PatientID: uuid.New(), Message: "second"},
	}

	mock.ExpectBegin()
	expectInstallCount(mock, 1)
	expectInstallCount(mock, 1)
	mock.ExpectExec(`UPDATE "clinics" SET "push_notification_balance"=push_notification_balance - \$1.*push_notification_balance >= \$4`).
		WithArgs(2, sqlmock.AnyArg(), clinicID, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New().String()).
			AddRow(uuid.New().String()))
	mock.ExpectCommit()

	created, err := svc.CreateBatch(context.Background(), clinicID, reqs)
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if len(created) != 2 {
		t.Errorf("created %d notifications, want 2", len(created))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateBatchAllOrNothing(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	clinicID := uuid.New()
	reqs := []CreateRequest{
		{PatientID: uuid.New(), Message: "first"},
		{PatientID: uuid.New(), Message: "second"},
	}

	// Second patient has no active installation: no balance touch, no insert.
	mock.ExpectBegin()
	expectInstallCount(mock, 1)
	expectInstallCount(mock, 0)
	mock.ExpectRollback()

	_, err := svc.CreateBatch(context.Background(), clinicID, reqs)
	if !errors.Is(err, ErrNoAppInstallation) {
		t.Fatalf("err = %v, want ErrNoAppInstallation", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteScheduledRefundsOneCredit(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	clinicID := uuid.New()
	notifID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "notifications" WHERE id = \$1 AND clinic_id = \$2 AND status = \$3`).
		WithArgs(notifID, clinicID, "scheduled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "clinics" SET "push_notification_balance"=push_notification_balance \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.Delete(context.Background(), clinicID, notifID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteNonScheduledNoRefund(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	clinicID := uuid.New()
	notifID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), clinicID, notifID)
	if !errors.Is(err, ErrNotDeletable) {
		t.Fatalf("err = %v, want ErrNotDeletable", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteMissingNotification(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("err = %v, want ErrNotificationNotFound", err)
	}
}

func TestDispatchDueMovesScheduledRows(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET .*WHERE status = \$3 AND scheduled_date <= \$4`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "scheduled", now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	moved, err := svc.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("DispatchDue: %v", err)
	}
	if moved != 3 {
		t.Errorf("moved = %d, want 3", moved)
	}
}
