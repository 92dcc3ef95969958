package actiontokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hrmis/internal/backend/models"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

const qConsume = `(?s)DELETE\s+FROM\s+auth_action_tokens\s+WHERE\s+token\s*=\s*\$1\s+AND\s+purpose\s*=\s*\$2\s+RETURNING\s+user_id,\s*expires_at`

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+auth_action_tokens\s*\(token,\s*user_id,\s*purpose,\s*expires_at\)`).
		WithArgs("t1", "u1", "verify_email", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+auth_action_tokens`).WillReturnError(errors.New("down"))

	tok := &models.ActionToken{Token: "t1", UserID: "u1", Purpose: models.PurposeVerifyEmail, Expires: exp}
	require.NoError(t, repo.Create(context.Background(), tok))
	require.ErrorContains(t, repo.Create(context.Background(), tok), "db error: down")
}

func TestConsume_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(qConsume).
		WithArgs("t1", "reset_password").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow("u1", exp))

	tok, err := repo.Consume(context.Background(), "t1", models.PurposeResetPassword)
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)
	assert.Equal(t, exp, tok.Expires)
	assert.Equal(t, models.PurposeResetPassword, tok.Purpose)
}

func TestConsume_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qConsume).WithArgs("t1", "verify_email").WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "t1", models.PurposeVerifyEmail)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestConsume_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qConsume).WillReturnError(errors.New("boom"))

	_, err := repo.Consume(context.Background(), "t1", models.PurposeVerifyEmail)
	require.ErrorContains(t, err, "db error: boom")
}
