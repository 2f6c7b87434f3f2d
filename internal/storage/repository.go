package storage

import (
	"context"
	"errors"

	"github.com/careerlens/careerlens-api/internal/models"
)

// ErrUnavailable is returned when the backing store cannot be reached
var ErrUnavailable = errors.New("storage unavailable")

// Repository defines the interface for CareerLens persistence.
// Get methods return (nil, nil) when the record does not exist or is inactive.
type Repository interface {
	// Catalog
	ListCompanies(ctx context.Context, filters models.CatalogFilters) ([]*models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	ListRoles(ctx context.Context, filters models.CatalogFilters) ([]*models.Role, error)
	GetRole(ctx context.Context, id string) (*models.Role, error)
	ListSkills(ctx context.Context, filters models.CatalogFilters) ([]*models.Skill, error)
	GetSkill(ctx context.Context, id string) (*models.Skill, error)

	// Questions
	ListQuestions(ctx context.Context, filters models.CatalogFilters) ([]*models.Question, error)
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	// GetQuestionByID ignores the active flag; used for scoring.
	GetQuestionByID(ctx context.Context, id string) (*models.Question, error)
	CountQuestions(ctx context.Context) (int, error)
	RandomQuestions(ctx context.Context, n int) ([]*models.Question, error)

	// Question banks
	CountHRQuestions(ctx context.Context) (int, error)
	RandomHRQuestions(ctx context.Context, n int) ([]*models.HRQuestion, error)
	CountTechQuestions(ctx context.Context) (int, error)
	RandomTechQuestions(ctx context.Context, n int) ([]*models.TechQuestion, error)

	// Assessments
	CreateAssessment(ctx context.Context, a *models.Assessment) error
	GetAssessment(ctx context.Context, sessionID string) (*models.Assessment, error)
	UpdateAssessment(ctx context.Context, a *models.Assessment) error
	ListAssessments(ctx context.Context, limit int) ([]*models.Assessment, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
