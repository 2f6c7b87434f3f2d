package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/careerlens/careerlens-api/internal/models"
)

// Scope selects which parts of the corpus a run writes
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeCatalog Scope = "catalog"
	ScopeHR      Scope = "hr"
	ScopeTech    Scope = "tech"
)

// ParseScope validates a -only flag value
func ParseScope(s string) (Scope, error) {
	switch scope := Scope(s); scope {
	case ScopeAll, ScopeCatalog, ScopeHR, ScopeTech:
		return scope, nil
	case "":
		return ScopeAll, nil
	}
	return "", fmt.Errorf("unknown seed scope %q (want catalog, hr, tech or all)", s)
}

func (s Scope) includes(part Scope) bool {
	return s == ScopeAll || s == part
}

// Result counts rows written by a seed run
type Result struct {
	Companies    int `json:"companies"`
	Roles        int `json:"roles"`
	Skills       int `json:"skills"`
	Questions    int `json:"questions"`
	HRInserted   int `json:"hrInserted"`
	HRSkipped    int `json:"hrSkipped"`
	TechInserted int `json:"techInserted"`
	TechSkipped  int `json:"techSkipped"`
}

// Open connects to PostgreSQL through lib/pq and verifies the connection
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Writer stores a dataset in PostgreSQL. The catalog is replaced wholesale;
// the HR and tech banks only gain questions whose text is new.
type Writer struct {
	db *sql.DB
}

// NewWriter creates a writer on db
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// Write stores the scoped parts of ds in one transaction
func (w *Writer) Write(ctx context.Context, ds *models.Dataset, scope Scope) (*Result, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res := &Result{}
	if scope.includes(ScopeCatalog) {
		if err := writeCatalog(ctx, tx, ds, res); err != nil {
			return nil, err
		}
	}
	if scope.includes(ScopeHR) {
		if err := writeHR(ctx, tx, ds.HRQuestions, res); err != nil {
			return nil, err
		}
	}
	if scope.includes(ScopeTech) {
		if err := writeTech(ctx, tx, ds.TechQuestions, res); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed: %w", err)
	}

	slog.Info("seed written",
		"scope", scope,
		"companies", res.Companies,
		"roles", res.Roles,
		"skills", res.Skills,
		"questions", res.Questions,
		"hr_inserted", res.HRInserted,
		"tech_inserted", res.TechInserted,
	)
	return res, nil
}

func writeCatalog(ctx context.Context, tx *sql.Tx, ds *models.Dataset, res *Result) error {
	for _, table := range []string{"questions", "skills", "roles", "companies"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, c := range ds.Companies {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO companies (id, name, logo, category, description, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.Name, c.Logo, c.Category, c.Description, c.IsActive,
		); err != nil {
			return fmt.Errorf("failed to insert company %s: %w", c.ID, err)
		}
		res.Companies++
	}

	for _, r := range ds.Roles {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO roles (id, name, description, image, category, popular, required_skills, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.ID, r.Name, r.Description, r.Image, r.Category, r.Popular, pq.Array(strs(r.RequiredSkills)), r.IsActive,
		); err != nil {
			return fmt.Errorf("failed to insert role %s: %w", r.ID, err)
		}
		res.Roles++
	}

	for _, s := range ds.Skills {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO skills (id, name, category, level, description, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.Name, s.Category, s.Level, s.Description, s.IsActive,
		); err != nil {
			return fmt.Errorf("failed to insert skill %s: %w", s.ID, err)
		}
		res.Skills++
	}

	for _, q := range ds.Questions {
		examples, testCases, err := marshalProblem(q.Examples, q.TestCases)
		if err != nil {
			return fmt.Errorf("question %s: %w", q.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO questions (id, question, type, difficulty, options, correct_answer, language,
				examples, constraints, starter_code, test_cases, tags, role_id, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			q.ID, q.Question, q.Type, q.Difficulty, pq.Array(strs(q.Options)), q.CorrectAnswer, q.Language,
			examples, pq.Array(strs(q.Constraints)), q.StarterCode, testCases, pq.Array(strs(q.Tags)), q.RoleID, q.IsActive,
		); err != nil {
			return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
		}
		res.Questions++
	}
	return nil
}

func writeHR(ctx context.Context, tx *sql.Tx, questions []*models.HRQuestion, res *Result) error {
	for _, q := range questions {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO hr_questions (id, question, tags, difficulty, is_active)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (question) DO NOTHING`,
			q.ID, q.Question, pq.Array(strs(q.Tags)), q.Difficulty, q.IsActive,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert hr question %q: %w", q.Question, err)
		}
		if inserted(result) {
			res.HRInserted++
		} else {
			res.HRSkipped++
		}
	}
	return nil
}

func writeTech(ctx context.Context, tx *sql.Tx, questions []*models.TechQuestion, res *Result) error {
	for _, q := range questions {
		examples, testCases, err := marshalProblem(q.Examples, q.TestCases)
		if err != nil {
			return fmt.Errorf("tech question %q: %w", q.Question, err)
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO tech_questions (id, question, type, tags, difficulty, description, constraints,
				examples, test_cases, starter_code, hints, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (question) DO NOTHING`,
			q.ID, q.Question, q.Type, pq.Array(strs(q.Tags)), q.Difficulty, q.Description, pq.Array(strs(q.Constraints)),
			examples, testCases, q.StarterCode, pq.Array(strs(q.Hints)), q.IsActive,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert tech question %q: %w", q.Question, err)
		}
		if inserted(result) {
			res.TechInserted++
		} else {
			res.TechSkipped++
		}
	}
	return nil
}

func inserted(r sql.Result) bool {
	n, err := r.RowsAffected()
	return err == nil && n > 0
}

// strs keeps NOT NULL array columns from receiving NULL
func strs(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func marshalProblem(examples []models.Example, testCases []models.TestCase) ([]byte, []byte, error) {
	if examples == nil {
		examples = []models.Example{}
	}
	if testCases == nil {
		testCases = []models.TestCase{}
	}
	ex, err := json.Marshal(examples)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal examples: %w", err)
	}
	tc, err := json.Marshal(testCases)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal test cases: %w", err)
	}
	return ex, tc, nil
}
