package models

// Company categories
const (
	CompanyTech       = "Tech"
	CompanyFinance    = "Finance"
	CompanyConsulting = "Consulting"
	CompanyHealthcare = "Healthcare"
	CompanyOther      = "Other"
)

// Skill categories
const (
	SkillTechnical  = "Technical"
	SkillLanguages  = "Languages"
	SkillSoftSkills = "Soft Skills"
	SkillDomain     = "Domain"
	SkillOther      = "Other"
)

// Skill levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// DefaultRoleCategory is applied to roles seeded without a category
const DefaultRoleCategory = "General"

// CategoryAll disables category filtering in list queries
const CategoryAll = "All"

// Company is a target employer the candidate prepares for
type Company struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Logo        string `json:"logo,omitempty" yaml:"logo"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description,omitempty" yaml:"description"`
	IsActive    bool   `json:"isActive" yaml:"-"`
}

// Role is a target job role
type Role struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description,omitempty" yaml:"description"`
	Image          string   `json:"image,omitempty" yaml:"image"`
	Category       string   `json:"category" yaml:"category"`
	Popular        bool     `json:"popular" yaml:"popular"`
	RequiredSkills []string `json:"requiredSkills" yaml:"required_skills"`
	IsActive       bool     `json:"isActive" yaml:"-"`
}

// Skill is a selectable competency
type Skill struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Level       string `json:"level" yaml:"level"`
	Description string `json:"description,omitempty" yaml:"description"`
	IsActive    bool   `json:"isActive" yaml:"-"`
}

// CatalogFilters holds recognized list query parameters.
// Empty fields do not constrain the result.
type CatalogFilters struct {
	Category   string
	Search     string
	Level      string
	RoleID     string
	Type       string
	Difficulty string
}

// EffectiveCategory returns the category filter, treating "All" as no filter
func (f CatalogFilters) EffectiveCategory() string {
	if f.Category == CategoryAll {
		return ""
	}
	return f.Category
}
