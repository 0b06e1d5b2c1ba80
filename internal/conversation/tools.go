package conversation

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ToolKind is the closed set of operations the model may request. Dispatch
// switches over it so the compiler flags a missing handler when a kind is
// added.
type ToolKind int

const (
	ToolCheckAvailability ToolKind = iota
	ToolViewBookings
	ToolBookMaid
	ToolCancelBooking
	ToolRescheduleBooking
	ToolScheduleInterview
	ToolViewInterviews
	ToolCancelInterview
)

var toolNames = map[ToolKind]string{
	ToolCheckAvailability: "check_maid_availability",
	ToolViewBookings:      "view_bookings",
	ToolBookMaid:          "book_maid",
	ToolCancelBooking:     "cancel_booking",
	ToolRescheduleBooking: "reschedule_booking",
	ToolScheduleInterview: "schedule_video_interview",
	ToolViewInterviews:    "view_upcoming_interviews",
	ToolCancelInterview:   "cancel_video_interview",
}

func (k ToolKind) String() string {
	if name, ok := toolNames[k]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", int(k))
}

// ToolKindFromName maps a model-supplied tool name to its kind.
func ToolKindFromName(name string) (ToolKind, bool) {
	for kind, n := range toolNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// StringList accepts either a JSON array of strings or a single string; the
// model occasionally sends "cooking" where the schema says ["cooking"].
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*l = nil
		return nil
	}
	*l = StringList{single}
	return nil
}

// AvailabilityInput filters the worker search. All fields optional.
type AvailabilityInput struct {
	Name               string     `json:"name,omitempty" jsonschema:"description=Search for maid by name (partial match supported)"`
	Skills             StringList `json:"skills,omitempty" jsonschema:"description=Required skills (e.g. cooking, cleaning, childcare)"`
	MinExperience      int        `json:"min_experience,omitempty" jsonschema:"description=Minimum years of experience"`
	LocationPreference string     `json:"location_preference,omitempty" jsonschema:"description=Preferred GCC country (UAE, Saudi Arabia, Qatar, Kuwait, Bahrain, Oman)"`
}

type ViewBookingsInput struct {
	PhoneNumber string `json:"phone_number" jsonschema:"description=Phone number to check bookings for"`
	Status      string `json:"status,omitempty" jsonschema:"description=Filter by booking status,enum=pending,enum=confirmed,enum=cancelled,enum=completed,enum=all"`
}

type BookMaidInput struct {
	PhoneNumber string `json:"phone_number" jsonschema:"description=Sponsor phone number"`
	SponsorName string `json:"sponsor_name,omitempty" jsonschema:"description=Sponsor full name"`
	MaidID      string `json:"maid_id,omitempty" jsonschema:"description=ID of the maid to book (if known)"`
	MaidName    string `json:"maid_name,omitempty" jsonschema:"description=Name of the maid to book"`
	BookingType string `json:"booking_type" jsonschema:"description=Type of booking,enum=interview,enum=hire,enum=replacement,enum=inquiry"`
	BookingDate string `json:"booking_date,omitempty" jsonschema:"description=Preferred date and time (ISO format)"`
	Notes       string `json:"notes,omitempty" jsonschema:"description=Additional notes or requirements"`
}

type CancelBookingInput struct {
	BookingID string `json:"booking_id" jsonschema:"description=ID of the booking to cancel"`
	Reason    string `json:"reason,omitempty" jsonschema:"description=Cancellation reason"`
}

type RescheduleBookingInput struct {
	BookingID string `json:"booking_id" jsonschema:"description=ID of the booking to reschedule"`
	NewDate   string `json:"new_date" jsonschema:"description=New date and time (ISO format)"`
}

type ScheduleInterviewInput struct {
	MaidID          string `json:"maid_id,omitempty" jsonschema:"description=UUID of the maid to interview (optional if maid_name is provided)"`
	MaidName        string `json:"maid_name,omitempty" jsonschema:"description=Name of the maid to interview - system will search automatically"`
	SponsorName     string `json:"sponsor_name,omitempty" jsonschema:"description=Name of the sponsor"`
	PreferredDate   string `json:"preferred_date" jsonschema:"description=Preferred date and time in ISO format (e.g. 2025-10-28T15:00:00Z)"`
	InterviewType   string `json:"interview_type,omitempty" jsonschema:"description=Type of interview platform,enum=whatsapp_video,enum=zoom,enum=google_meet,enum=phone_call,default=whatsapp_video"`
	DurationMinutes int    `json:"duration_minutes,omitempty" jsonschema:"description=Duration of interview in minutes,default=30"`
	Notes           string `json:"notes,omitempty" jsonschema:"description=Any special notes or requirements for the interview"`
}

type ViewInterviewsInput struct {
	PhoneNumber string `json:"phone_number" jsonschema:"description=Phone number to check interviews for"`
	DaysAhead   int    `json:"days_ahead,omitempty" jsonschema:"description=Number of days to look ahead,default=7"`
}

type CancelInterviewInput struct {
	InterviewID string `json:"interview_id" jsonschema:"description=ID of the video interview to cancel"`
	Reason      string `json:"reason,omitempty" jsonschema:"description=Cancellation reason"`
}

var toolDescriptions = map[ToolKind]string{
	ToolCheckAvailability: "Check available maids matching specific criteria. Returns list of available maids with their details. Can also search by name to find specific maids.",
	ToolViewBookings:      "View existing bookings for a phone number",
	ToolBookMaid:          "Create a new booking for maid interview or hire",
	ToolCancelBooking:     "Cancel an existing booking",
	ToolRescheduleBooking: "Reschedule an existing booking to a new date/time",
	ToolScheduleInterview: "Schedule a video interview between sponsor and maid. You can provide either maid_id OR maid_name - the system will find the maid automatically if you provide the name.",
	ToolViewInterviews:    "View upcoming video interviews for a sponsor",
	ToolCancelInterview:   "Cancel a scheduled video interview",
}

var toolInputPrototypes = map[ToolKind]any{
	ToolCheckAvailability: &AvailabilityInput{},
	ToolViewBookings:      &ViewBookingsInput{},
	ToolBookMaid:          &BookMaidInput{},
	ToolCancelBooking:     &CancelBookingInput{},
	ToolRescheduleBooking: &RescheduleBookingInput{},
	ToolScheduleInterview: &ScheduleInterviewInput{},
	ToolViewInterviews:    &ViewInterviewsInput{},
	ToolCancelInterview:   &CancelInterviewInput{},
}

// toolSpecs is built once at init; schemas are reflected from the typed input
// structs so schema and decoder cannot drift apart.
var toolSpecs = buildToolSpecs()

// ToolSpecs returns the registry handed to the model on every request.
func ToolSpecs() []ToolSpec {
	return toolSpecs
}

func buildToolSpecs() []ToolSpec {
	kinds := []ToolKind{
		ToolCheckAvailability,
		ToolViewBookings,
		ToolBookMaid,
		ToolCancelBooking,
		ToolRescheduleBooking,
		ToolScheduleInterview,
		ToolViewInterviews,
		ToolCancelInterview,
	}
	specs := make([]ToolSpec, 0, len(kinds))
	for _, kind := range kinds {
		specs = append(specs, ToolSpec{
			Name:        kind.String(),
			Description: toolDescriptions[kind],
			InputSchema: reflectInputSchema(toolInputPrototypes[kind]),
		})
	}
	return specs
}

func reflectInputSchema(prototype any) map[string]any {
	reflector := jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(prototype)

	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("conversation: marshal tool schema: %v", err))
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("conversation: decode tool schema: %v", err))
	}
	// The model expects a bare object schema.
	delete(out, "$schema")
	delete(out, "$id")
	return out
}

// decodeToolInput converts raw model-supplied arguments into the typed input
// struct for a tool. Validation failure is surfaced through the normal
// in-band tool error channel, not an exception.
func decodeToolInput[T any](raw json.RawMessage) (T, error) {
	var input T
	if len(raw) == 0 {
		return input, nil
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return input, fmt.Errorf("conversation: invalid tool input: %w", err)
	}
	return input, nil
}
