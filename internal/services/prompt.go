package services

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	resumeParserInstruction = "You are a helpful assistant that extracts structured resume information."
	matchScorerInstruction  = "You are an expert technical recruiter who scores candidates against job descriptions."
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeParsePrompt creates the field extraction prompt for cleaned resume text.
func (pb *PromptBuilder) BuildResumeParsePrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert resume parser. Extract the following fields from the resume text and output JSON:
- personal_info: {name, email, phone}
- education: string
- work_experience: string
- skills: list of strings
- certifications: string
- extracurricular_activities: string
- achievements: string
- projects: string
- languages: string
If any field is missing, set its value to null. Here is the resume text:
%s
Output only the JSON.`, resumeText)
}

// BuildMatchPrompt creates the scoring prompt for one candidate and one job description.
func (pb *PromptBuilder) BuildMatchPrompt(skills []string, workExperience, jobDescription string) string {
	skillText := "None listed"
	if len(skills) > 0 {
		skillText = strings.Join(skills, ", ")
	}
	if strings.TrimSpace(workExperience) == "" {
		workExperience = "None listed"
	}

	return fmt.Sprintf(`Evaluate how well this candidate matches the job description.

JOB DESCRIPTION:
%s

CANDIDATE SKILLS:
%s

CANDIDATE WORK EXPERIENCE:
%s

Scoring guidelines:
- 90-100: exceeds the requirements
- 75-89: meets all requirements
- 60-74: meets most requirements
- 40-59: meets some requirements
- 0-39: does not meet the requirements

Return only this JSON object:
{
  "score": <integer 0-100>,
  "matching_skills": [<candidate skills that satisfy the job requirements>],
  "explanation": "<two or three sentences explaining the score>"
}`, jobDescription, skillText, workExperience)
}

func matchResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score": {
				Type:        genai.TypeInteger,
				Description: "Match score from 0 to 100.",
			},
			"matching_skills": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"explanation": {
				Type: genai.TypeString,
			},
		},
		Required:         []string{"score", "matching_skills", "explanation"},
		PropertyOrdering: []string{"score", "matching_skills", "explanation"},
	}
}

func resumeResponseSchema() *genai.Schema {
	nullable := true
	text := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Nullable: &nullable}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"personal_info": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":  text(),
					"email": text(),
					"phone": text(),
				},
			},
			"education":       text(),
			"work_experience": text(),
			"skills": {
				Type:     genai.TypeArray,
				Items:    &genai.Schema{Type: genai.TypeString},
				Nullable: &nullable,
			},
			"certifications":             text(),
			"extracurricular_activities": text(),
			"achievements":               text(),
			"projects":                   text(),
			"languages":                  text(),
		},
		Required: []string{"personal_info", "skills"},
	}
}
