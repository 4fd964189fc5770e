package models

type UploadResponse struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
	PDFURL     string `json:"pdf_url"`
}

type CompanyRequest struct {
	CompanyName    string `json:"company_name" validate:"required"`
	JobDescription string `json:"job_description" validate:"required"`
	HiringType     string `json:"hiring_type" validate:"required"`
	WorkMode       string `json:"work_mode" validate:"required"`
	JobRole        string `json:"job_role" validate:"required"`
	CompanyEmail   string `json:"company_email" validate:"required,emailshape"`
}

type CompanyResponse struct {
	Message      string        `json:"message"`
	TotalMatches int           `json:"total_matches"`
	TopMatches   []MatchResult `json:"top_matches"`
	EmailSent    bool          `json:"email_sent"`
}

type SearchResponse struct {
	TotalMatches    int      `json:"total_matches"`
	MatchingResumes []Resume `json:"matching_resumes"`
}
