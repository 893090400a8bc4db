package review

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

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
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
	return New(db, nil, slog.New(slog.DiscardHandler), DefaultDedupWindow)
}

// conflictRows yields the active-request lookup result for one review.
func conflictRows(id uuid.UUID, status string, requestDate time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "status", "request_date"}).
		AddRow(id.String(), status, requestDate)
}

func emptyReviewRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "status", "request_date"})
}

func TestCreateRejectsActiveRequestInWindow(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	existingID := uuid.New()
	requested := time.Now().Add(-72 * time.Hour)

	// The pending request from three days ago blocks a new one; nothing is
	// inserted.
	mock.ExpectQuery(`SELECT \* FROM "reviews" WHERE clinic_id = \$1 AND patient_id = \$2 AND status IN .* AND request_date >= `).
		WillReturnRows(conflictRows(existingID, model.ReviewStatusPending, requested))

	r, conflict, err := svc.Create(context.Background(), uuid.New(), CreateRequest{
		PatientID: uuid.New(),
		Platform:  "google",
	})
	if !errors.Is(err, ErrAlreadyRequested) {
		t.Fatalf("err = %v, want ErrAlreadyRequested", err)
	}
	if r != nil {
		t.Errorf("review = %+v, want nil", r)
	}
	if conflict == nil {
		t.Fatal("conflict = nil, want details of the existing request")
	}
	if conflict.ReviewID != existingID {
		t.Errorf("conflict.ReviewID = %v, want %v", conflict.ReviewID, existingID)
	}
	if conflict.Status != model.ReviewStatusPending {
		t.Errorf("conflict.Status = %q, want %q", conflict.Status, model.ReviewStatusPending)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateInsertsWhenWindowClear(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	newID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "reviews"`).
		WillReturnRows(emptyReviewRows())
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "reviews"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(newID.String()))
	mock.ExpectCommit()

	r, conflict, err := svc.Create(context.Background(), uuid.New(), CreateRequest{
		PatientID: uuid.New(),
		Platform:  "google",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conflict != nil {
		t.Errorf("conflict = %+v, want nil", conflict)
	}
	if r.Status != model.ReviewStatusPending {
		t.Errorf("status = %q, want %q", r.Status, model.ReviewStatusPending)
	}
	if r.ID != newID {
		t.Errorf("ID = %v, want %v", r.ID, newID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateBulkPartitionsByWindow(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newTestService(db)

	blocked := uuid.New()
	eligible := uuid.New()
	existingID := uuid.New()

	// First patient hits the window, second is clear and gets a request.
	mock.ExpectQuery(`SELECT \* FROM "reviews"`).
		WillReturnRows(conflictRows(existingID, model.ReviewStatusSent, time.Now().Add(-24*time.Hour)))
	mock.ExpectQuery(`SELECT \* FROM "reviews"`).
		WillReturnRows(emptyReviewRows())
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "reviews"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))
	mock.ExpectCommit()

	result, err := svc.CreateBulk(context.Background(), uuid.New(), []uuid.UUID{blocked, eligible}, "google")
	if err != nil {
		t.Fatalf("CreateBulk: %v", err)
	}
	if len(result.Eligible) != 1 {
		t.Fatalf("eligible = %d, want 1", len(result.Eligible))
	}
	if result.Eligible[0].PatientID != eligible {
		t.Errorf("eligible patient = %v, want %v", result.Eligible[0].PatientID, eligible)
	}
	conflict, found := result.AlreadyRequested[blocked]
	if !found {
		t.Fatal("blocked patient missing from AlreadyRequested")
	}
	if conflict.ReviewID != existingID {
		t.Errorf("conflict.ReviewID = %v, want %v", conflict.ReviewID, existingID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
