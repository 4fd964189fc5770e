package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type PersonalInfo struct {
	Name  *string `gorm:"type:text" json:"name"`
	Email *string `gorm:"type:text" json:"email"`
	Phone *string `gorm:"type:text" json:"phone"`
}

// Resume is one candidate's parsed record. Email is the identity: one record
// per address, a later upload for the same address replaces the row.
type Resume struct {
	Email        string         `gorm:"type:text;primaryKey" json:"email"`
	UserID       string         `gorm:"type:text;index" json:"user_id"`
	UserEmail    string         `gorm:"type:text" json:"user_email,omitempty"`
	PersonalInfo PersonalInfo   `gorm:"embedded;embeddedPrefix:personal_" json:"personal_info"`
	Skills       pq.StringArray `gorm:"type:text[]" json:"skills"`

	// Free-text or list fields exactly as the extractor returned them; NULL when absent.
	WorkExperience            datatypes.JSON `gorm:"type:jsonb" json:"work_experience"`
	Education                 datatypes.JSON `gorm:"type:jsonb" json:"education"`
	Certifications            datatypes.JSON `gorm:"type:jsonb" json:"certifications"`
	ExtracurricularActivities datatypes.JSON `gorm:"type:jsonb" json:"extracurricular_activities"`
	Achievements              datatypes.JSON `gorm:"type:jsonb" json:"achievements"`
	Projects                  datatypes.JSON `gorm:"type:jsonb" json:"projects"`
	Languages                 datatypes.JSON `gorm:"type:jsonb" json:"languages"`

	ResumeURL  string    `gorm:"type:text" json:"resume_url"`
	UploadedAt time.Time `gorm:"type:timestamptz;not null" json:"uploaded_at"`
}

func (Resume) TableName() string {
	return "resumes"
}

// DisplayName falls back to the identity when the extractor found no name.
func (r *Resume) DisplayName() string {
	if r.PersonalInfo.Name != nil && strings.TrimSpace(*r.PersonalInfo.Name) != "" {
		return strings.TrimSpace(*r.PersonalInfo.Name)
	}
	return r.Email
}

func (r *Resume) WorkExperienceText() string {
	return JSONText(r.WorkExperience)
}

// JSONText renders a stored free-text/list field for prompts: strings are
// unquoted, lists of strings are newline-joined, anything else is compact JSON.
func JSONText(raw datatypes.JSON) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []string
	if err := json.Unmarshal(trimmed, &list); err == nil {
		return strings.Join(list, "\n")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed)
	}
	return compact.String()
}
