package models

// Dataset is the full reference corpus: catalog entities plus the question banks.
// Entries loaded from seed files are active unless marked otherwise.
type Dataset struct {
	Companies     []*Company      `yaml:"companies"`
	Roles         []*Role         `yaml:"roles"`
	Skills        []*Skill        `yaml:"skills"`
	Questions     []*Question     `yaml:"questions"`
	HRQuestions   []*HRQuestion   `yaml:"hr_questions"`
	TechQuestions []*TechQuestion `yaml:"tech_questions"`
}
