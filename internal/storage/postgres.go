package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerlens/careerlens-api/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	poolConfig.MaxConns = 25
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	poolConfig.MinConns = 0
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	poolConfig.MaxConnLifetime = 30 * time.Minute
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	repo := &PostgresRepository{pool: pool}
	if err := repo.Ping(ctx); err != nil {
		// The pool dials lazily; the monitor reports when the database comes up
		slog.Warn("database unreachable, continuing without connection", "error", err)
	}

	return repo, nil
}

// Pool exposes the underlying pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// where accumulates AND-ed predicates with positional args
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(w.clauses, " AND ")
}

// escapeLike quotes LIKE metacharacters so search input matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// --- Companies ---

const companyColumns = `id, name, logo, category, description, is_active`

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Logo, &c.Category, &c.Description, &c.IsActive); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompanies returns active companies ordered by name
func (r *PostgresRepository) ListCompanies(ctx context.Context, filters models.CatalogFilters) ([]*models.Company, error) {
	var w where
	if c := filters.EffectiveCategory(); c != "" {
		w.add("category = $%d", c)
	}
	if filters.Search != "" {
		w.add("name ILIKE $%d", escapeLike(filters.Search))
	}

	query := `SELECT ` + companyColumns + ` FROM companies WHERE is_active` + w.String() + ` ORDER BY name`
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []*models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// GetCompany retrieves an active company by ID
func (r *PostgresRepository) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1 AND is_active`, id)
	c, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// --- Roles ---

const roleColumns = `id, name, description, image, category, popular, required_skills, is_active`

func scanRole(row pgx.Row) (*models.Role, error) {
	var rl models.Role
	if err := row.Scan(&rl.ID, &rl.Name, &rl.Description, &rl.Image, &rl.Category, &rl.Popular, &rl.RequiredSkills, &rl.IsActive); err != nil {
		return nil, err
	}
	if rl.RequiredSkills == nil {
		rl.RequiredSkills = []string{}
	}
	return &rl, nil
}

// ListRoles returns active roles ordered by name
func (r *PostgresRepository) ListRoles(ctx context.Context, filters models.CatalogFilters) ([]*models.Role, error) {
	var w where
	if c := filters.EffectiveCategory(); c != "" {
		w.add("category = $%d", c)
	}
	if filters.Search != "" {
		w.add("name ILIKE $%d", escapeLike(filters.Search))
	}

	query := `SELECT ` + roleColumns + ` FROM roles WHERE is_active` + w.String() + ` ORDER BY name`
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := []*models.Role{}
	for rows.Next() {
		rl, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, rl)
	}
	return roles, rows.Err()
}

// GetRole retrieves an active role by ID
func (r *PostgresRepository) GetRole(ctx context.Context, id string) (*models.Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1 AND is_active`, id)
	rl, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return rl, nil
}

// --- Skills ---

const skillColumns = `id, name, category, level, description, is_active`

func scanSkill(row pgx.Row) (*models.Skill, error) {
	var s models.Skill
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Level, &s.Description, &s.IsActive); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSkills returns active skills ordered by category then name
func (r *PostgresRepository) ListSkills(ctx context.Context, filters models.CatalogFilters) ([]*models.Skill, error) {
	var w where
	if c := filters.EffectiveCategory(); c != "" {
		w.add("category = $%d", c)
	}
	if filters.Level != "" {
		w.add("level = $%d", filters.Level)
	}
	if filters.Search != "" {
		w.add("name ILIKE $%d", escapeLike(filters.Search))
	}

	query := `SELECT ` + skillColumns + ` FROM skills WHERE is_active` + w.String() + ` ORDER BY category, name`
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := []*models.Skill{}
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// GetSkill retrieves an active skill by ID
func (r *PostgresRepository) GetSkill(ctx context.Context, id string) (*models.Skill, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+skillColumns+` FROM skills WHERE id = $1 AND is_active`, id)
	s, err := scanSkill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}
	return s, nil
}

// --- Questions ---

const questionColumns = `id, question, type, difficulty, options, correct_answer, language,
	examples, constraints, starter_code, test_cases, tags, role_id, is_active`

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	var examplesJSON, testCasesJSON []byte

	err := row.Scan(
		&q.ID,
		&q.Question,
		&q.Type,
		&q.Difficulty,
		&q.Options,
		&q.CorrectAnswer,
		&q.Language,
		&examplesJSON,
		&q.Constraints,
		&q.StarterCode,
		&testCasesJSON,
		&q.Tags,
		&q.RoleID,
		&q.IsActive,
	)
	if err != nil {
		return nil, err
	}

	if len(examplesJSON) > 0 {
		if err := json.Unmarshal(examplesJSON, &q.Examples); err != nil {
			return nil, fmt.Errorf("failed to unmarshal examples: %w", err)
		}
	}
	if len(testCasesJSON) > 0 {
		if err := json.Unmarshal(testCasesJSON, &q.TestCases); err != nil {
			return nil, fmt.Errorf("failed to unmarshal test cases: %w", err)
		}
	}

	return &q, nil
}

func (r *PostgresRepository) queryQuestions(ctx context.Context, query string, args ...any) ([]*models.Question, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []*models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListQuestions returns active questions ordered by difficulty then id
func (r *PostgresRepository) ListQuestions(ctx context.Context, filters models.CatalogFilters) ([]*models.Question, error) {
	var w where
	if filters.RoleID != "" {
		w.add("(role_id = $%d OR role_id IS NULL)", filters.RoleID)
	}
	if filters.Type != "" {
		w.add("type = $%d", filters.Type)
	}
	if filters.Difficulty != "" {
		w.add("difficulty = $%d", filters.Difficulty)
	}

	query := `SELECT ` + questionColumns + ` FROM questions WHERE is_active` + w.String() + ` ORDER BY difficulty, id`
	return r.queryQuestions(ctx, query, w.args...)
}

// GetQuestion retrieves an active question by ID
func (r *PostgresRepository) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return r.getQuestion(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1 AND is_active`, id)
}

// GetQuestionByID retrieves a question regardless of its active flag
func (r *PostgresRepository) GetQuestionByID(ctx context.Context, id string) (*models.Question, error) {
	return r.getQuestion(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
}

func (r *PostgresRepository) getQuestion(ctx context.Context, query, id string) (*models.Question, error) {
	q, err := scanQuestion(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// CountQuestions returns the number of active questions
func (r *PostgresRepository) CountQuestions(ctx context.Context) (int, error) {
	return r.count(ctx, "questions")
}

// RandomQuestions samples n active questions without replacement
func (r *PostgresRepository) RandomQuestions(ctx context.Context, n int) ([]*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE is_active ORDER BY random() LIMIT $1`
	return r.queryQuestions(ctx, query, n)
}

func (r *PostgresRepository) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE is_active`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// --- Question banks ---

// CountHRQuestions returns the size of the active HR bank
func (r *PostgresRepository) CountHRQuestions(ctx context.Context) (int, error) {
	return r.count(ctx, "hr_questions")
}

// RandomHRQuestions samples n active HR questions
func (r *PostgresRepository) RandomHRQuestions(ctx context.Context, n int) ([]*models.HRQuestion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, question, tags, difficulty, is_active
		FROM hr_questions
		WHERE is_active
		ORDER BY random()
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query hr questions: %w", err)
	}
	defer rows.Close()

	questions := []*models.HRQuestion{}
	for rows.Next() {
		var q models.HRQuestion
		if err := rows.Scan(&q.ID, &q.Question, &q.Tags, &q.Difficulty, &q.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan hr question: %w", err)
		}
		questions = append(questions, &q)
	}
	return questions, rows.Err()
}

// CountTechQuestions returns the size of the active tech bank
func (r *PostgresRepository) CountTechQuestions(ctx context.Context) (int, error) {
	return r.count(ctx, "tech_questions")
}

// RandomTechQuestions samples n active tech questions
func (r *PostgresRepository) RandomTechQuestions(ctx context.Context, n int) ([]*models.TechQuestion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, question, type, tags, difficulty, description, constraints,
		       examples, test_cases, starter_code, hints, is_active
		FROM tech_questions
		WHERE is_active
		ORDER BY random()
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query tech questions: %w", err)
	}
	defer rows.Close()

	questions := []*models.TechQuestion{}
	for rows.Next() {
		var q models.TechQuestion
		var examplesJSON, testCasesJSON []byte
		err := rows.Scan(
			&q.ID, &q.Question, &q.Type, &q.Tags, &q.Difficulty, &q.Description, &q.Constraints,
			&examplesJSON, &testCasesJSON, &q.StarterCode, &q.Hints, &q.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tech question: %w", err)
		}
		if len(examplesJSON) > 0 {
			if err := json.Unmarshal(examplesJSON, &q.Examples); err != nil {
				return nil, fmt.Errorf("failed to unmarshal examples: %w", err)
			}
		}
		if len(testCasesJSON) > 0 {
			if err := json.Unmarshal(testCasesJSON, &q.TestCases); err != nil {
				return nil, fmt.Errorf("failed to unmarshal test cases: %w", err)
			}
		}
		questions = append(questions, &q)
	}
	return questions, rows.Err()
}

// --- Assessments ---

const assessmentColumns = `session_id, company_id, role_id, selected_skills, answers, score,
	total_questions, percentage, skill_gap_analysis, learning_roadmap, completed_at, created_at, updated_at`

// CreateAssessment inserts a new assessment record
func (r *PostgresRepository) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	answersJSON, err := json.Marshal(nonNilAnswers(a.Answers))
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO assessments (session_id, company_id, role_id, selected_skills, answers, score,
			total_questions, percentage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		a.SessionID,
		a.CompanyID,
		a.RoleID,
		nonNilStrings(a.SelectedSkills),
		answersJSON,
		a.Score,
		a.TotalQuestions,
		a.Percentage,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func scanAssessment(row pgx.Row) (*models.Assessment, error) {
	var a models.Assessment
	var answersJSON, gapJSON, roadmapJSON []byte

	err := row.Scan(
		&a.SessionID,
		&a.CompanyID,
		&a.RoleID,
		&a.SelectedSkills,
		&answersJSON,
		&a.Score,
		&a.TotalQuestions,
		&a.Percentage,
		&gapJSON,
		&roadmapJSON,
		&a.CompletedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if len(gapJSON) > 0 {
		a.SkillGapAnalysis = &models.SkillGapAnalysis{}
		if err := json.Unmarshal(gapJSON, a.SkillGapAnalysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skill gap analysis: %w", err)
		}
	}
	if len(roadmapJSON) > 0 {
		a.LearningRoadmap = &models.LearningRoadmap{}
		if err := json.Unmarshal(roadmapJSON, a.LearningRoadmap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal learning roadmap: %w", err)
		}
	}
	if a.SelectedSkills == nil {
		a.SelectedSkills = []string{}
	}
	if a.Answers == nil {
		a.Answers = []models.Answer{}
	}

	return &a, nil
}

// GetAssessment retrieves an assessment by session ID
func (r *PostgresRepository) GetAssessment(ctx context.Context, sessionID string) (*models.Assessment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE session_id = $1`, sessionID)
	a, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

// UpdateAssessment stores the scored answers and advisory results
func (r *PostgresRepository) UpdateAssessment(ctx context.Context, a *models.Assessment) error {
	answersJSON, err := json.Marshal(nonNilAnswers(a.Answers))
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	gapJSON, err := marshalNullable(a.SkillGapAnalysis)
	if err != nil {
		return fmt.Errorf("failed to marshal skill gap analysis: %w", err)
	}
	roadmapJSON, err := marshalNullable(a.LearningRoadmap)
	if err != nil {
		return fmt.Errorf("failed to marshal learning roadmap: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE assessments
		SET answers = $2, score = $3, total_questions = $4, percentage = $5,
		    skill_gap_analysis = $6, learning_roadmap = $7, completed_at = $8, updated_at = $9
		WHERE session_id = $1
	`,
		a.SessionID,
		answersJSON,
		a.Score,
		a.TotalQuestions,
		a.Percentage,
		gapJSON,
		roadmapJSON,
		a.CompletedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update assessment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assessment %s not found", a.SessionID)
	}
	return nil
}

// ListAssessments returns the most recent assessments, newest first
func (r *PostgresRepository) ListAssessments(ctx context.Context, limit int) ([]*models.Assessment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+assessmentColumns+` FROM assessments ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	assessments := []*models.Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

// Helper functions

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilAnswers(a []models.Answer) []models.Answer {
	if a == nil {
		return []models.Answer{}
	}
	return a
}
