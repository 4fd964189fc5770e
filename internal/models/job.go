package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// JobQuery is the persisted snapshot of one /company request and its shortlist.
type JobQuery struct {
	ID             string         `gorm:"type:text;primaryKey" json:"id"`
	CompanyName    string         `gorm:"type:text;not null" json:"company_name"`
	CompanyEmail   string         `gorm:"type:text;not null" json:"company_email"`
	HiringType     string         `gorm:"type:text" json:"hiring_type"`
	WorkMode       string         `gorm:"type:text" json:"work_mode"`
	JobRole        string         `gorm:"type:text" json:"job_role"`
	JobDescription string         `gorm:"type:text;not null" json:"job_description"`
	Matches        datatypes.JSON `gorm:"type:jsonb" json:"matches"`
	TotalMatches   int            `json:"total_matches"`
	CreatedAt      time.Time      `gorm:"type:timestamptz" json:"created_at"`
}

func (JobQuery) TableName() string {
	return "job_queries"
}

// CompanyKey derives the snapshot key from a company name.
func CompanyKey(companyName string) string {
	return strings.ToLower(strings.Join(strings.Fields(companyName), " "))
}

func (j *JobQuery) SetMatches(matches []MatchResult) error {
	if matches == nil {
		matches = []MatchResult{}
	}
	raw, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to encode matches: %w", err)
	}
	j.Matches = datatypes.JSON(raw)
	j.TotalMatches = len(matches)
	return nil
}

func (j *JobQuery) GetMatches() ([]MatchResult, error) {
	matches := []MatchResult{}
	if len(j.Matches) == 0 {
		return matches, nil
	}
	if err := json.Unmarshal(j.Matches, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}
	return matches, nil
}
