package handler

import "time"

// --- Requests ---

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Password   *string `json:"password"`
}

type locationRequest struct {
	Building    string `json:"building"`
	Floor       string `json:"floor"`
	Room        string `json:"room"`
	Description string `json:"description"`
}

type createIssueRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Priority    string          `json:"priority"`
	Location    locationRequest `json:"location"`
	Images      []string        `json:"images"`
}

// updateIssueRequest is a partial update: absent fields keep their value,
// present ones replace it. A present location replaces the whole location.
type updateIssueRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Priority    *string          `json:"priority"`
	Location    *locationRequest `json:"location"`
	Images      *[]string        `json:"images"`
}

type statusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type listIssuesQuery struct {
	Status   string `query:"status"`
	Category string `query:"category"`
	Priority string `query:"priority"`
	My       bool   `query:"my"`
	Search   string `query:"search"`
	Page     int    `query:"page"  validate:"gte=0"`
	Limit    int    `query:"limit" validate:"gte=0,lte=100"`
}

// --- Responses ---

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userRefResponse struct {
	ID         string `json:"_id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

type locationResponse struct {
	Building    string `json:"building"`
	Floor       string `json:"floor,omitempty"`
	Room        string `json:"room,omitempty"`
	Description string `json:"description,omitempty"`
}

type statusChangeResponse struct {
	Status    string           `json:"status"`
	ChangedBy *userRefResponse `json:"changedBy,omitempty"`
	ChangedAt time.Time        `json:"changedAt"`
	Note      string           `json:"note,omitempty"`
}

type issueResponse struct {
	ID            string                 `json:"_id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Category      string                 `json:"category"`
	Status        string                 `json:"status"`
	Priority      string                 `json:"priority"`
	Location      locationResponse       `json:"location"`
	Images        []string               `json:"images"`
	ReportedBy    *userRefResponse       `json:"reportedBy"`
	AssignedTo    *userRefResponse       `json:"assignedTo,omitempty"`
	StatusHistory []statusChangeResponse `json:"statusHistory"`
	ResolvedAt    *time.Time             `json:"resolvedAt,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

type commentResponse struct {
	ID             string           `json:"_id"`
	Text           string           `json:"text"`
	Issue          string           `json:"issue"`
	Author         *userRefResponse `json:"author"`
	IsStatusUpdate bool             `json:"isStatusUpdate"`
	CreatedAt      time.Time        `json:"createdAt"`
}

type listIssuesResponse struct {
	Issues []issueResponse `json:"issues"`
	Page   int             `json:"page"`
	Pages  int             `json:"pages"`
	Total  int64           `json:"total"`
}

type issueDetailResponse struct {
	Issue    issueResponse     `json:"issue"`
	Comments []commentResponse `json:"comments"`
}

type statusCountsResponse struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
	Closed     int64 `json:"closed"`
	Total      int64 `json:"total"`
}

type monthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type monthlyTrendResponse struct {
	ID    monthKey `json:"_id"`
	Count int64    `json:"count"`
}

type dashboardResponse struct {
	StatusCounts      statusCountsResponse   `json:"statusCounts"`
	CategoryStats     map[string]int64       `json:"categoryStats"`
	PriorityStats     map[string]int64       `json:"priorityStats"`
	RecentIssues      []issueResponse        `json:"recentIssues"`
	AvgResolutionTime int64                  `json:"avgResolutionTime"` // hours
	MonthlyTrend      []monthlyTrendResponse `json:"monthlyTrend"`
}

type topReporterResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Count int64  `json:"count"`
}

type locationStatResponse struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

type adminStatsResponse struct {
	TotalUsers    int64                  `json:"totalUsers"`
	TotalStudents int64                  `json:"totalStudents"`
	UrgentIssues  int64                  `json:"urgentIssues"`
	TopReporters  []topReporterResponse  `json:"topReporters"`
	LocationStats []locationStatResponse `json:"locationStats"`
}

type uploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}
