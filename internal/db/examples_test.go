package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/themobileprof/helpdesk-intent/internal/intent"
)

func newMockStore(t *testing.T) (*ExampleStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return NewExampleStore(&DB{sqlDB}), mock
}

func TestExampleStore_ListExamples(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		want      []intent.Example
		wantErr   bool
	}{
		{
			name: "returns examples in order",
			setupMock: func(m sqlmock.Sqlmock) {
				now := time.Now()
				rows := sqlmock.NewRows([]string{"id", "text", "intent", "created_at"}).
					AddRow("11111111-1111-1111-1111-111111111111", "olá pessoal", "greeting", now).
					AddRow("22222222-2222-2222-2222-222222222222", "scanner travou", "new_ticket", now)
				m.ExpectQuery(`SELECT id, text, intent, created_at\s+FROM training_examples`).
					WillReturnRows(rows)
			},
			want: []intent.Example{
				{Text: "olá pessoal", Intent: intent.Greeting},
				{Text: "scanner travou", Intent: intent.NewTicket},
			},
		},
		{
			name: "empty table",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT (.+) FROM training_examples`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "text", "intent", "created_at"}))
			},
		},
		{
			name: "query error",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT (.+) FROM training_examples`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setupMock(mock)

			got, err := store.ListExamples(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ListExamples error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListExamples = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("example %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestExampleStore_SaveExamples(t *testing.T) {
	examples := []intent.Example{
		{Text: "olá pessoal", Intent: intent.Greeting},
		{Text: "scanner travou", Intent: intent.NewTicket},
	}

	t.Run("commits all examples", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		for _, ex := range examples {
			mock.ExpectExec(`INSERT INTO training_examples`).
				WithArgs(sqlmock.AnyArg(), ex.Text, string(ex.Intent), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()

		if err := store.SaveExamples(context.Background(), examples); err != nil {
			t.Fatalf("SaveExamples: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("rolls back on insert failure", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO training_examples`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO training_examples`).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		if err := store.SaveExamples(context.Background(), examples); err == nil {
			t.Fatal("expected error")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("nothing to save", func(t *testing.T) {
		store, mock := newMockStore(t)
		if err := store.SaveExamples(context.Background(), nil); err != nil {
			t.Fatalf("SaveExamples(nil): %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unexpected database calls: %v", err)
		}
	})
}

func TestExampleStore_CountExamples(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM training_examples`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := store.CountExamples(context.Background())
	if err != nil {
		t.Fatalf("CountExamples: %v", err)
	}
	if n != 7 {
		t.Errorf("CountExamples = %d, want 7", n)
	}
}

func TestDB_EnsureSchema(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS training_examples`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := (&DB{sqlDB}).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
