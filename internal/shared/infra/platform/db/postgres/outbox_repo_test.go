package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/davicafu/secopviewer/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepoPostgres_SaveAndFetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOutboxRepoPostgres(db)
	id := uuid.New()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox")).
		WithArgs(id, "session", "s-1", "procesos.export.requested", []byte(`{"kind":"csv"}`), created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveOutbox(context.Background(), domain.OutboxEvent{
		ID:            id,
		AggregateType: "session",
		AggregateID:   "s-1",
		EventType:     "procesos.export.requested",
		Payload:       map[string]string{"kind": "csv"},
		CreatedAt:     created,
	}))

	rows := sqlmock.NewRows([]string{"id", "aggregate_type", "aggregate_id", "event_type", "payload", "created_at"}).
		AddRow(id.String(), "session", "s-1", "procesos.export.requested", []byte(`{"kind":"csv"}`), created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox WHERE processed=false")).WithArgs(10).WillReturnRows(rows)

	events, err := repo.FetchPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, map[string]interface{}{"kind": "csv"}, events[0].Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepoPostgres_MarkOutboxProcessed_NoEncontrado(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox SET processed=true")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewOutboxRepoPostgres(db).MarkOutboxProcessed(context.Background(), id)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
