package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/careerlens/careerlens-api/internal/cache"
	"github.com/careerlens/careerlens-api/internal/models"
	"github.com/careerlens/careerlens-api/internal/storage"
)

// ErrNotFound matches every catalog lookup miss
var ErrNotFound = errors.New("not found")

// NotFoundError names the resource that was not found
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

var (
	ErrCompanyNotFound  = &NotFoundError{Resource: "Company"}
	ErrRoleNotFound     = &NotFoundError{Resource: "Role"}
	ErrSkillNotFound    = &NotFoundError{Resource: "Skill"}
	ErrQuestionNotFound = &NotFoundError{Resource: "Question"}
)

// Sampling limits for the random endpoints
const (
	MaxSample           = 100
	DefaultQuestionSize = 20
	DefaultHRSize       = 10
	DefaultTechSize     = 20
)

// Cache namespaces
const (
	nsCompanies = "companies"
	nsRoles     = "roles"
	nsSkills    = "skills"
)

// Service serves catalog reads. Company, role and skill lists go through
// the cache; questions and random samples always hit the repository.
type Service struct {
	repo  storage.Repository
	cache *cache.Cache
}

// NewService creates a catalog service; c may be nil
func NewService(repo storage.Repository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// ParseCount reads a count query value. Missing, malformed or non-positive
// values become def; the result never exceeds MaxSample.
func ParseCount(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		n = def
	}
	return min(n, MaxSample)
}

func (s *Service) ListCompanies(ctx context.Context, filters models.CatalogFilters) ([]*models.Company, error) {
	key := cache.Key(nsCompanies, filters.EffectiveCategory(), strings.ToLower(filters.Search))
	var companies []*models.Company
	if s.cache.Get(ctx, key, &companies) {
		return companies, nil
	}

	companies, err := s.repo.ListCompanies(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	s.cache.Set(ctx, key, companies)
	return companies, nil
}

func (s *Service) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	c, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	if c == nil {
		return nil, ErrCompanyNotFound
	}
	return c, nil
}

func (s *Service) ListRoles(ctx context.Context, filters models.CatalogFilters) ([]*models.Role, error) {
	key := cache.Key(nsRoles, filters.EffectiveCategory(), strings.ToLower(filters.Search))
	var roles []*models.Role
	if s.cache.Get(ctx, key, &roles) {
		return roles, nil
	}

	roles, err := s.repo.ListRoles(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	s.cache.Set(ctx, key, roles)
	return roles, nil
}

func (s *Service) GetRole(ctx context.Context, id string) (*models.Role, error) {
	r, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	if r == nil {
		return nil, ErrRoleNotFound
	}
	return r, nil
}

func (s *Service) ListSkills(ctx context.Context, filters models.CatalogFilters) ([]*models.Skill, error) {
	key := cache.Key(nsSkills, filters.EffectiveCategory(), filters.Level, strings.ToLower(filters.Search))
	var skills []*models.Skill
	if s.cache.Get(ctx, key, &skills) {
		return skills, nil
	}

	skills, err := s.repo.ListSkills(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	s.cache.Set(ctx, key, skills)
	return skills, nil
}

func (s *Service) GetSkill(ctx context.Context, id string) (*models.Skill, error) {
	sk, err := s.repo.GetSkill(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	if sk == nil {
		return nil, ErrSkillNotFound
	}
	return sk, nil
}

// ListQuestions returns active questions. A role filter also matches
// questions not tied to any role.
func (s *Service) ListQuestions(ctx context.Context, filters models.CatalogFilters) ([]*models.Question, error) {
	questions, err := s.repo.ListQuestions(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *Service) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	q, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	return q, nil
}

// RandomQuestions samples up to count questions. An empty bank still
// requests min(count, DefaultQuestionSize) so the call never errors.
func (s *Service) RandomQuestions(ctx context.Context, count int) ([]*models.Question, error) {
	total, err := s.repo.CountQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}

	size := min(count, DefaultQuestionSize)
	if total > 0 {
		size = min(count, total)
	}

	questions, err := s.repo.RandomQuestions(ctx, size)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	return questions, nil
}

// RandomHRQuestions samples up to count behavioral questions
func (s *Service) RandomHRQuestions(ctx context.Context, count int) ([]*models.HRQuestion, error) {
	total, err := s.repo.CountHRQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("count hr questions: %w", err)
	}
	if total > 0 {
		count = min(count, total)
	}

	questions, err := s.repo.RandomHRQuestions(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("sample hr questions: %w", err)
	}
	return questions, nil
}

// RandomTechQuestions samples up to count CS fundamentals questions
func (s *Service) RandomTechQuestions(ctx context.Context, count int) ([]*models.TechQuestion, error) {
	total, err := s.repo.CountTechQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tech questions: %w", err)
	}
	if total > 0 {
		count = min(count, total)
	}

	questions, err := s.repo.RandomTechQuestions(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("sample tech questions: %w", err)
	}
	return questions, nil
}

// ValidateAnswer checks one answer against the stored key.
// Inactive questions can still be validated.
func (s *Service) ValidateAnswer(ctx context.Context, id string, answer json.RawMessage) (*models.ValidationResult, error) {
	q, err := s.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}

	result := &models.ValidationResult{IsCorrect: q.IsCorrect(answer)}
	if q.IsMCQ() {
		idx := q.CorrectAnswer
		result.CorrectAnswer = &idx
	}
	return result, nil
}

// InvalidateCache drops cached company, role and skill lists
func (s *Service) InvalidateCache(ctx context.Context) error {
	for _, ns := range []string{nsCompanies, nsRoles, nsSkills} {
		if err := s.cache.InvalidatePrefix(ctx, cache.Prefix(ns)); err != nil {
			return fmt.Errorf("invalidate %s: %w", ns, err)
		}
	}
	slog.Info("catalog cache invalidated")
	return nil
}
