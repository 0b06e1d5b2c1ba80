package conversation

// Tool handlers report outcomes in-band: failures are payloads like any
// other result, never Go errors, so a broken tool degrades to an inline
// fragment instead of aborting the reply. The JSON tags shape the audit
// snapshot stored alongside the assistant turn.

// ToolResult is implemented by every payload a tool handler can return. The
// formatter switches on the concrete type.
type ToolResult interface {
	toolResult()
}

// ToolFailure reports a failed tool call. Error is shown to the user,
// Details carries the underlying error text for the audit snapshot only.
type ToolFailure struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// MaidSummary is one search hit, pre-rendered to strings the way the reply
// presents them.
type MaidSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Age          string `json:"age"`
	Experience   string `json:"experience"`
	Skills       string `json:"skills"`
	Availability string `json:"availability"`
	Location     string `json:"location"`
	Nationality  string `json:"nationality"`
	Languages    string `json:"languages"`
}

// SearchCriteria echoes the filters used, for the audit snapshot.
type SearchCriteria struct {
	Skills        []string `json:"skills,omitempty"`
	MinExperience int      `json:"min_experience,omitempty"`
	Location      string   `json:"location,omitempty"`
}

// AvailabilityResult is the check_maid_availability payload. A zero Count is
// not a failure: Message and Suggestions steer the user toward a broader
// search.
type AvailabilityResult struct {
	Count       int             `json:"count"`
	Maids       []MaidSummary   `json:"maids"`
	Message     string          `json:"message,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Criteria    *SearchCriteria `json:"search_criteria,omitempty"`
}

// BookingSummary is one booking as presented in a reply.
type BookingSummary struct {
	ID          string `json:"id"`
	BookingType string `json:"booking_type"`
	Status      string `json:"status"`
	MaidName    string `json:"maid_name,omitempty"`
	BookingDate string `json:"booking_date,omitempty"`
}

// BookingList is the view_bookings payload.
type BookingList struct {
	Count    int              `json:"count"`
	Bookings []BookingSummary `json:"bookings"`
}

// ActionDone acknowledges a state change (booking created, cancelled or
// rescheduled, interview cancelled).
type ActionDone struct {
	Success bool            `json:"success"`
	Booking *BookingSummary `json:"booking,omitempty"`
	Message string          `json:"message,omitempty"`
}

// InterviewScheduled is the schedule_video_interview success payload.
// ScheduledDate is already formatted for display in Gulf time.
type InterviewScheduled struct {
	Success       bool   `json:"success"`
	InterviewID   string `json:"interview_id"`
	MaidName      string `json:"maid_name"`
	ScheduledDate string `json:"scheduled_date"`
	InterviewType string `json:"interview_type"`
	Duration      int    `json:"duration"`
	MeetingLink   string `json:"meeting_link,omitempty"`
	Message       string `json:"message"`
}

// InterviewSummary is one upcoming interview as presented in a reply.
type InterviewSummary struct {
	MaidName        string `json:"maid_name"`
	ScheduledDate   string `json:"scheduled_date"`
	InterviewType   string `json:"interview_type"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          string `json:"status"`
}

// InterviewList is the view_upcoming_interviews payload.
type InterviewList struct {
	Count      int                `json:"count"`
	Interviews []InterviewSummary `json:"interviews"`
	Message    string             `json:"message"`
}

func (ToolFailure) toolResult()        {}
func (AvailabilityResult) toolResult() {}
func (BookingList) toolResult()        {}
func (ActionDone) toolResult()         {}
func (InterviewScheduled) toolResult() {}
func (InterviewList) toolResult()      {}

// executedTool pairs a model-requested call with its outcome, preserving
// request order for both formatting and the audit snapshot.
type executedTool struct {
	ToolUseID string     `json:"tool_use_id"`
	Name      string     `json:"name"`
	Result    ToolResult `json:"result"`
}
