package repositories

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type TemplateFilters struct {
	PublishedOnly bool `json:"published_only"`
	Limit         int  `json:"limit"`
	Offset        int  `json:"offset"`
}

type SubmissionFilters struct {
	TemplateID  *uint  `json:"template_id"`
	GroupID     *uint  `json:"group_id"`
	CreatedByID string `json:"created_by_id"`
	// VisibleTo restricts results to submissions the user wrote or shares a group with
	VisibleTo    *Visibility `json:"visible_to,omitempty"`
	IncludeDraft bool        `json:"include_draft"`
	Limit        int         `json:"limit"`
	Offset       int         `json:"offset"`
	SortOrder    string      `json:"sort_order"` // "asc", "desc" by created_at
}

type Visibility struct {
	UserID   string `json:"user_id"`
	GroupIDs []uint `json:"group_ids"`
}
