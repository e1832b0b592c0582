package dto

type CreateSummaryRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	FileURL  string `json:"file_url" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
	Title    string `json:"title"`
}

type CreateSummaryResponse struct {
	SummaryID string `json:"summary_id"`
	Status    string `json:"status"`
}

// SummaryStatusResponse is the polling projection: status plus the fields a
// caller needs to render the result. Owner identity is not echoed back.
type SummaryStatusResponse struct {
	SummaryID   string `json:"summary_id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	SummaryText string `json:"summary_text"`
	CreatedAt   string `json:"created_at"`
}

type ListSummariesRequest struct {
	UserID   string `form:"user_id" binding:"required"`
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListSummariesResponse struct {
	Summaries  []SummaryDTO `json:"summaries"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type SummaryDTO struct {
	SummaryID   string `json:"summary_id"`
	FileURL     string `json:"file_url"`
	FileName    string `json:"file_name"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	SummaryText string `json:"summary_text"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
