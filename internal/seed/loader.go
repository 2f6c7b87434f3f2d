package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/careerlens/careerlens-api/internal/models"
)

// idNamespace derives stable question ids from question text
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://careerlens.dev/seed"))

// QuestionID returns the deterministic id of a question in bank kind
func QuestionID(kind, text string) string {
	return uuid.NewSHA1(idNamespace, []byte(kind+":"+text)).String()
}

var (
	companyCategories = []string{models.CompanyTech, models.CompanyFinance, models.CompanyConsulting, models.CompanyHealthcare, models.CompanyOther}
	skillCategories   = []string{models.SkillTechnical, models.SkillLanguages, models.SkillSoftSkills, models.SkillDomain, models.SkillOther}
	skillLevels       = []string{models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced}
	difficulties      = []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}
)

// Loader reads the seed corpus from YAML files. Every file may hold any of
// the dataset sections; sections from several files are concatenated.
type Loader struct {
	dataset models.Dataset
	files   int
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDir is a shorthand for NewLoader, LoadFromDir and Dataset
func LoadDir(dir string) (*models.Dataset, error) {
	l := NewLoader()
	if err := l.LoadFromDir(dir); err != nil {
		return nil, err
	}
	return l.Dataset()
}

// LoadFromDir loads all YAML files of a directory in name order
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading seed corpus from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("failed to list seed files: %w", err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no seed files found in %s", dir)
	}
	sort.Strings(files)

	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

// LoadFromFile parses one YAML file and appends its sections
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var ds models.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.dataset.Companies = append(l.dataset.Companies, ds.Companies...)
	l.dataset.Roles = append(l.dataset.Roles, ds.Roles...)
	l.dataset.Skills = append(l.dataset.Skills, ds.Skills...)
	l.dataset.Questions = append(l.dataset.Questions, ds.Questions...)
	l.dataset.HRQuestions = append(l.dataset.HRQuestions, ds.HRQuestions...)
	l.dataset.TechQuestions = append(l.dataset.TechQuestions, ds.TechQuestions...)
	l.files++

	slog.Debug("seed file loaded", "file", path,
		"companies", len(ds.Companies),
		"roles", len(ds.Roles),
		"skills", len(ds.Skills),
		"questions", len(ds.Questions),
		"hr_questions", len(ds.HRQuestions),
		"tech_questions", len(ds.TechQuestions),
	)
	return nil
}

// Dataset applies defaults, assigns missing ids and validates the loaded
// corpus. All entries come back active.
func (l *Loader) Dataset() (*models.Dataset, error) {
	ds := &l.dataset
	var errs []error

	seen := make(map[string]bool)
	unique := func(kind, id string) {
		key := kind + "/" + id
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s %q: duplicate id", kind, id))
		}
		seen[key] = true
	}

	for i, c := range ds.Companies {
		c.IsActive = true
		if c.ID == "" || c.Name == "" {
			errs = append(errs, fmt.Errorf("companies[%d]: id and name are required", i))
			continue
		}
		if !slices.Contains(companyCategories, c.Category) {
			errs = append(errs, fmt.Errorf("company %q: unknown category %q", c.ID, c.Category))
		}
		unique("company", c.ID)
	}

	for i, r := range ds.Roles {
		r.IsActive = true
		if r.Category == "" {
			r.Category = models.DefaultRoleCategory
		}
		if r.RequiredSkills == nil {
			r.RequiredSkills = []string{}
		}
		if r.ID == "" || r.Name == "" {
			errs = append(errs, fmt.Errorf("roles[%d]: id and name are required", i))
			continue
		}
		unique("role", r.ID)
	}

	for i, s := range ds.Skills {
		s.IsActive = true
		if s.ID == "" || s.Name == "" {
			errs = append(errs, fmt.Errorf("skills[%d]: id and name are required", i))
			continue
		}
		if !slices.Contains(skillCategories, s.Category) {
			errs = append(errs, fmt.Errorf("skill %q: unknown category %q", s.ID, s.Category))
		}
		if !slices.Contains(skillLevels, s.Level) {
			errs = append(errs, fmt.Errorf("skill %q: unknown level %q", s.ID, s.Level))
		}
		unique("skill", s.ID)
	}

	for i, q := range ds.Questions {
		q.IsActive = true
		if strings.TrimSpace(q.Question) == "" {
			errs = append(errs, fmt.Errorf("questions[%d]: question text is required", i))
			continue
		}
		if q.ID == "" {
			q.ID = QuestionID("question", q.Question)
		}
		if err := validateQuestion(q); err != nil {
			errs = append(errs, fmt.Errorf("questions[%d]: %w", i, err))
		}
		unique("question", q.ID)
	}

	for i, q := range ds.HRQuestions {
		q.IsActive = true
		if strings.TrimSpace(q.Question) == "" {
			errs = append(errs, fmt.Errorf("hr_questions[%d]: question text is required", i))
			continue
		}
		if q.ID == "" {
			q.ID = QuestionID("hr", q.Question)
		}
		if q.Tags == nil {
			q.Tags = []string{}
		}
		unique("hr_question", q.Question)
	}

	for i, q := range ds.TechQuestions {
		q.IsActive = true
		if strings.TrimSpace(q.Question) == "" {
			errs = append(errs, fmt.Errorf("tech_questions[%d]: question text is required", i))
			continue
		}
		if q.ID == "" {
			q.ID = QuestionID("tech", q.Question)
		}
		if q.Difficulty == "" {
			q.Difficulty = models.DifficultyEasy
		}
		if q.Tags == nil {
			q.Tags = []string{}
		}
		if !slices.Contains(difficulties, q.Difficulty) {
			errs = append(errs, fmt.Errorf("tech_questions[%d]: unknown difficulty %q", i, q.Difficulty))
		}
		unique("tech_question", q.Question)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid seed corpus: %w", err)
	}

	slog.Info("seed corpus loaded",
		"files", l.files,
		"companies", len(ds.Companies),
		"roles", len(ds.Roles),
		"skills", len(ds.Skills),
		"questions", len(ds.Questions),
		"hr_questions", len(ds.HRQuestions),
		"tech_questions", len(ds.TechQuestions),
	)
	return ds, nil
}

func validateQuestion(q *models.Question) error {
	if !slices.Contains(difficulties, q.Difficulty) {
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	switch q.Type {
	case models.QuestionMCQ:
		if len(q.Options) < 2 {
			return errors.New("mcq needs at least two options")
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("correct_answer %d out of range", q.CorrectAnswer)
		}
	case models.QuestionCoding:
	default:
		return fmt.Errorf("unknown type %q", q.Type)
	}
	return nil
}
