package storage

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/careerlens/careerlens-api/internal/models"
)

// MemoryRepository implements Repository in process memory.
// It backs STORAGE_BACKEND=memory and the handler tests.
type MemoryRepository struct {
	mu sync.RWMutex

	companies     map[string]models.Company
	roles         map[string]models.Role
	skills        map[string]models.Skill
	questions     map[string]models.Question
	hrQuestions   []models.HRQuestion
	techQuestions []models.TechQuestion
	assessments   map[string]models.Assessment

	pingErr error
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		companies:   make(map[string]models.Company),
		roles:       make(map[string]models.Role),
		skills:      make(map[string]models.Skill),
		questions:   make(map[string]models.Question),
		assessments: make(map[string]models.Assessment),
	}
}

// Load replaces the catalog and question banks with the given dataset.
// Assessments are kept.
func (r *MemoryRepository) Load(ds *models.Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.companies = make(map[string]models.Company, len(ds.Companies))
	for _, c := range ds.Companies {
		r.companies[c.ID] = *c
	}
	r.roles = make(map[string]models.Role, len(ds.Roles))
	for _, rl := range ds.Roles {
		r.roles[rl.ID] = *rl
	}
	r.skills = make(map[string]models.Skill, len(ds.Skills))
	for _, s := range ds.Skills {
		r.skills[s.ID] = *s
	}
	r.questions = make(map[string]models.Question, len(ds.Questions))
	for _, q := range ds.Questions {
		r.questions[q.ID] = *q
	}
	r.hrQuestions = r.hrQuestions[:0]
	for _, q := range ds.HRQuestions {
		r.hrQuestions = append(r.hrQuestions, *q)
	}
	r.techQuestions = r.techQuestions[:0]
	for _, q := range ds.TechQuestions {
		r.techQuestions = append(r.techQuestions, *q)
	}
}

// SetPingError makes Ping fail with err; nil restores connectivity
func (r *MemoryRepository) SetPingError(err error) {
	r.mu.Lock()
	r.pingErr = err
	r.mu.Unlock()
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pingErr != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, r.pingErr)
	}
	return ctx.Err()
}

func (r *MemoryRepository) Close() error {
	return nil
}

func matchesSearch(name, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

func (r *MemoryRepository) ListCompanies(_ context.Context, filters models.CatalogFilters) ([]*models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category := filters.EffectiveCategory()
	result := []*models.Company{}
	for _, c := range r.companies {
		if !c.IsActive || (category != "" && c.Category != category) || !matchesSearch(c.Name, filters.Search) {
			continue
		}
		c := c
		result = append(result, &c)
	}
	slices.SortFunc(result, func(a, b *models.Company) int { return cmp.Compare(a.Name, b.Name) })
	return result, nil
}

func (r *MemoryRepository) GetCompany(_ context.Context, id string) (*models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.companies[id]
	if !ok || !c.IsActive {
		return nil, nil
	}
	return &c, nil
}

func (r *MemoryRepository) ListRoles(_ context.Context, filters models.CatalogFilters) ([]*models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category := filters.EffectiveCategory()
	result := []*models.Role{}
	for _, rl := range r.roles {
		if !rl.IsActive || (category != "" && rl.Category != category) || !matchesSearch(rl.Name, filters.Search) {
			continue
		}
		rl := rl
		rl.RequiredSkills = slices.Clone(rl.RequiredSkills)
		result = append(result, &rl)
	}
	slices.SortFunc(result, func(a, b *models.Role) int { return cmp.Compare(a.Name, b.Name) })
	return result, nil
}

func (r *MemoryRepository) GetRole(_ context.Context, id string) (*models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rl, ok := r.roles[id]
	if !ok || !rl.IsActive {
		return nil, nil
	}
	rl.RequiredSkills = slices.Clone(rl.RequiredSkills)
	return &rl, nil
}

func (r *MemoryRepository) ListSkills(_ context.Context, filters models.CatalogFilters) ([]*models.Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category := filters.EffectiveCategory()
	result := []*models.Skill{}
	for _, s := range r.skills {
		if !s.IsActive || (category != "" && s.Category != category) {
			continue
		}
		if filters.Level != "" && s.Level != filters.Level {
			continue
		}
		if !matchesSearch(s.Name, filters.Search) {
			continue
		}
		s := s
		result = append(result, &s)
	}
	slices.SortFunc(result, func(a, b *models.Skill) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Name, b.Name))
	})
	return result, nil
}

func (r *MemoryRepository) GetSkill(_ context.Context, id string) (*models.Skill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.skills[id]
	if !ok || !s.IsActive {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepository) ListQuestions(_ context.Context, filters models.CatalogFilters) ([]*models.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Question{}
	for _, q := range r.questions {
		if !q.IsActive {
			continue
		}
		if filters.RoleID != "" && q.RoleID != nil && *q.RoleID != filters.RoleID {
			continue
		}
		if filters.Type != "" && q.Type != filters.Type {
			continue
		}
		if filters.Difficulty != "" && q.Difficulty != filters.Difficulty {
			continue
		}
		q := q
		result = append(result, &q)
	}
	slices.SortFunc(result, func(a, b *models.Question) int {
		return cmp.Or(cmp.Compare(a.Difficulty, b.Difficulty), cmp.Compare(a.ID, b.ID))
	})
	return result, nil
}

func (r *MemoryRepository) GetQuestion(_ context.Context, id string) (*models.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questions[id]
	if !ok || !q.IsActive {
		return nil, nil
	}
	return &q, nil
}

func (r *MemoryRepository) GetQuestionByID(_ context.Context, id string) (*models.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *MemoryRepository) activeQuestions() []models.Question {
	active := make([]models.Question, 0, len(r.questions))
	for _, q := range r.questions {
		if q.IsActive {
			active = append(active, q)
		}
	}
	return active
}

func (r *MemoryRepository) CountQuestions(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activeQuestions()), nil
}

func (r *MemoryRepository) RandomQuestions(_ context.Context, n int) ([]*models.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	picked := sample(r.activeQuestions(), n)
	result := make([]*models.Question, len(picked))
	for i := range picked {
		result[i] = &picked[i]
	}
	return result, nil
}

func (r *MemoryRepository) CountHRQuestions(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, q := range r.hrQuestions {
		if q.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) RandomHRQuestions(_ context.Context, n int) ([]*models.HRQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]models.HRQuestion, 0, len(r.hrQuestions))
	for _, q := range r.hrQuestions {
		if q.IsActive {
			active = append(active, q)
		}
	}
	picked := sample(active, n)
	result := make([]*models.HRQuestion, len(picked))
	for i := range picked {
		result[i] = &picked[i]
	}
	return result, nil
}

func (r *MemoryRepository) CountTechQuestions(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, q := range r.techQuestions {
		if q.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) RandomTechQuestions(_ context.Context, n int) ([]*models.TechQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]models.TechQuestion, 0, len(r.techQuestions))
	for _, q := range r.techQuestions {
		if q.IsActive {
			active = append(active, q)
		}
	}
	picked := sample(active, n)
	result := make([]*models.TechQuestion, len(picked))
	for i := range picked {
		result[i] = &picked[i]
	}
	return result, nil
}

// sample draws min(n, len(items)) distinct elements in random order
func sample[T any](items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return []T{}
	}
	out := make([]T, n)
	for i, j := range rand.Perm(len(items))[:n] {
		out[i] = items[j]
	}
	return out
}

func (r *MemoryRepository) CreateAssessment(_ context.Context, a *models.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assessments[a.SessionID]; exists {
		return fmt.Errorf("assessment %s already exists", a.SessionID)
	}
	r.assessments[a.SessionID] = cloneAssessment(*a)
	return nil
}

func (r *MemoryRepository) GetAssessment(_ context.Context, sessionID string) (*models.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assessments[sessionID]
	if !ok {
		return nil, nil
	}
	a = cloneAssessment(a)
	return &a, nil
}

func (r *MemoryRepository) UpdateAssessment(_ context.Context, a *models.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assessments[a.SessionID]; !ok {
		return fmt.Errorf("assessment %s not found", a.SessionID)
	}
	r.assessments[a.SessionID] = cloneAssessment(*a)
	return nil
}

func (r *MemoryRepository) ListAssessments(_ context.Context, limit int) ([]*models.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Assessment, 0, len(r.assessments))
	for _, a := range r.assessments {
		a = cloneAssessment(a)
		result = append(result, &a)
	}
	slices.SortFunc(result, func(a, b *models.Assessment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func cloneAssessment(a models.Assessment) models.Assessment {
	a.SelectedSkills = slices.Clone(a.SelectedSkills)
	if a.SelectedSkills == nil {
		a.SelectedSkills = []string{}
	}
	a.Answers = slices.Clone(a.Answers)
	if a.Answers == nil {
		a.Answers = []models.Answer{}
	}
	return a
}
