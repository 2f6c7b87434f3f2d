package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens-api/internal/models"
)

func testDataset() *models.Dataset {
	return &models.Dataset{
		Companies: []*models.Company{{ID: "google", Name: "Google", Category: "Tech", IsActive: true}},
		Roles:     []*models.Role{{ID: "software-engineer", Name: "Software Engineer", Category: "General", Popular: true, IsActive: true}},
		Skills:    []*models.Skill{{ID: "algorithms", Name: "Algorithms", Category: "Technical", Level: "advanced", IsActive: true}},
		Questions: []*models.Question{{ID: "q1", Question: "LIFO?", Type: "mcq", Difficulty: "easy", Options: []string{"Queue", "Stack"}, CorrectAnswer: 1, IsActive: true}},
		HRQuestions: []*models.HRQuestion{
			{ID: "h1", Question: "Tell me about yourself.", Tags: []string{"hr", "behavioral"}, IsActive: true},
			{ID: "h2", Question: "Why us?", Tags: []string{"hr", "behavioral"}, IsActive: true},
		},
		TechQuestions: []*models.TechQuestion{{ID: "t1", Question: "Two Sum", Type: "coding", Difficulty: "easy", IsActive: true}},
	}
}

func newMock(t *testing.T) (*Writer, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWriter(db), mock
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]Scope{"": ScopeAll, "all": ScopeAll, "catalog": ScopeCatalog, "hr": ScopeHR, "tech": ScopeTech} {
		got, err := ParseScope(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseScope("users")
	assert.ErrorContains(t, err, "unknown seed scope")
}

func TestWriteAll(t *testing.T) {
	w, mock := newMock(t)

	mock.ExpectBegin()
	for _, table := range []string{"questions", "skills", "roles", "companies"} {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 5))
	}
	mock.ExpectExec("INSERT INTO companies").
		WithArgs("google", "Google", "", "Tech", "", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO roles").
		WithArgs("software-engineer", "Software Engineer", "", "", "General", true, sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO skills").
		WithArgs("algorithms", "Algorithms", "Technical", "advanced", "", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO questions").
		WithArgs("q1", "LIFO?", "mcq", "easy", sqlmock.AnyArg(), 1, "", []byte("[]"), sqlmock.AnyArg(), "", []byte("[]"), sqlmock.AnyArg(), nil, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO hr_questions .* ON CONFLICT \(question\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO hr_questions .* ON CONFLICT \(question\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO tech_questions .* ON CONFLICT \(question\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := w.Write(context.Background(), testDataset(), ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, &Result{
		Companies: 1, Roles: 1, Skills: 1, Questions: 1,
		HRInserted: 1, HRSkipped: 1, TechInserted: 1,
	}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteScopeHROnly(t *testing.T) {
	w, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hr_questions").
		WithArgs("h1", "Tell me about yourself.", sqlmock.AnyArg(), "", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO hr_questions").
		WithArgs("h2", "Why us?", sqlmock.AnyArg(), "", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := w.Write(context.Background(), testDataset(), ScopeHR)
	require.NoError(t, err)
	assert.Equal(t, 2, res.HRInserted)
	assert.Zero(t, res.Companies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteRollsBackOnFailure(t *testing.T) {
	w, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM questions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM skills").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	_, err := w.Write(context.Background(), testDataset(), ScopeCatalog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear skills")
	assert.NoError(t, mock.ExpectationsWereMet())
}
