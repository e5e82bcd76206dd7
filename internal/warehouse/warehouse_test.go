package warehouse

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestExecuteReturnsColumnsAndRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT payment_status, COUNT").WillReturnRows(
		sqlmock.NewRows([]string{"payment_status", "customer_count"}).
			AddRow([]byte("paid"), int64(12)).
			AddRow([]byte("overdue"), int64(3)),
	)

	w := NewWithDB(db, 0)
	result, err := w.Execute(context.Background(), "SELECT payment_status, COUNT(*) AS customer_count FROM re_postsales GROUP BY payment_status;")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Columns) != 2 || result.Columns[0] != "payment_status" {
		t.Fatalf("Columns = %#v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("Rows = %#v", result.Rows)
	}
	if result.Rows[0][0] != "paid" {
		t.Fatalf("Rows[0][0] = %#v, want byte slice normalized to string", result.Rows[0][0])
	}
	if result.Empty() {
		t.Fatal("Empty() = true for a two-row result")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExecuteEmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT satisfaction_score").WillReturnRows(
		sqlmock.NewRows([]string{"satisfaction_score"}),
	)

	w := NewWithDB(db, 0)
	result, err := w.Execute(context.Background(), "SELECT satisfaction_score FROM re_postsales WHERE region = 'nowhere'")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.Empty() {
		t.Fatal("Empty() = false for zero rows")
	}
	if len(result.Columns) != 1 {
		t.Fatalf("Columns = %#v", result.Columns)
	}
}

func TestExecuteSurfacesQueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT nope").WillReturnError(errors.New(`column "nope" does not exist`))

	w := NewWithDB(db, 0)
	if _, err := w.Execute(context.Background(), "SELECT nope FROM re_postsales"); err == nil {
		t.Fatal("expected execution error")
	}
}

func TestExecuteRejectsEmptySQL(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	w := NewWithDB(db, 0)
	if _, err := w.Execute(context.Background(), "  ;; "); err == nil {
		t.Fatal("expected error for empty sql")
	}
}
