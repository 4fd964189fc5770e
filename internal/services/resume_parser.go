package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/resume-matcher/internal/models"
)

// ResumeParser turns cleaned resume text into a structured record. The
// returned record has no identity, owner or URL yet.
type ResumeParser interface {
	Parse(ctx context.Context, text string) (*models.Resume, error)
}

type resumeParser struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

func NewResumeParser(gemini GeminiService, log *zap.Logger) ResumeParser {
	return &resumeParser{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		log:           log.Named("resume_parser"),
	}
}

type parsedPersonalInfo struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type parsedResume struct {
	PersonalInfo              parsedPersonalInfo `json:"personal_info"`
	Skills                    json.RawMessage    `json:"skills"`
	WorkExperience            json.RawMessage    `json:"work_experience"`
	Education                 json.RawMessage    `json:"education"`
	Certifications            json.RawMessage    `json:"certifications"`
	ExtracurricularActivities json.RawMessage    `json:"extracurricular_activities"`
	Achievements              json.RawMessage    `json:"achievements"`
	Projects                  json.RawMessage    `json:"projects"`
	Languages                 json.RawMessage    `json:"languages"`
}

// Parse implements ResumeParser.
func (p *resumeParser) Parse(ctx context.Context, text string) (*models.Resume, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("resume text is empty")
	}

	raw, err := p.gemini.GenerateJSON(ctx, JSONRequest{
		SystemInstruction: resumeParserInstruction,
		Prompt:            p.promptBuilder.BuildResumeParsePrompt(text),
		Schema:            resumeResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract resume fields: %w", err)
	}

	var parsed parsedResume
	if err := decodeLenient(raw, &parsed); err != nil {
		p.log.Warn("unparseable extractor output", zap.Error(err))
		return nil, err
	}

	skills, err := normalizeSkills(parsed.Skills)
	if err != nil {
		return nil, err
	}

	return &models.Resume{
		PersonalInfo: models.PersonalInfo{
			Name:  trimmedOrNil(parsed.PersonalInfo.Name),
			Email: trimmedOrNil(parsed.PersonalInfo.Email),
			Phone: trimmedOrNil(parsed.PersonalInfo.Phone),
		},
		Skills:                    skills,
		WorkExperience:            rawField(parsed.WorkExperience),
		Education:                 rawField(parsed.Education),
		Certifications:            rawField(parsed.Certifications),
		ExtracurricularActivities: rawField(parsed.ExtracurricularActivities),
		Achievements:              rawField(parsed.Achievements),
		Projects:                  rawField(parsed.Projects),
		Languages:                 rawField(parsed.Languages),
	}, nil
}

// normalizeSkills accepts either a list of strings or one delimited string.
func normalizeSkills(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return cleanSkills(list), nil
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return cleanSkills(strings.FieldsFunc(joined, func(r rune) bool {
			return r == ',' || r == ';' || r == '\n'
		})), nil
	}

	return nil, fmt.Errorf("%w: skills must be a list or a string", ErrMalformedResponse)
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func rawField(raw json.RawMessage) datatypes.JSON {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		return nil
	}
	return datatypes.JSON(raw)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
