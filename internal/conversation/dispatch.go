package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethiomaids/platform/internal/bookings"
	"github.com/ethiomaids/platform/internal/interviews"
	"github.com/ethiomaids/platform/internal/maids"
)

// executeTool runs one model-requested call. Tool calls execute sequentially
// in the order the model asked for them; a failure never aborts the reply, it
// becomes a ToolFailure fragment.
func (s *Service) executeTool(ctx context.Context, callerPhone string, use ToolUse) ToolResult {
	kind, ok := ToolKindFromName(use.Name)
	if !ok {
		s.logger.Warn("model requested unknown tool", "tool", use.Name)
		s.metrics.ObserveTool(use.Name, "unknown")
		return ToolFailure{Error: "Unknown tool"}
	}

	ctx, span := tracer.Start(ctx, "conversation.tool."+use.Name)
	defer span.End()

	var result ToolResult
	switch kind {
	case ToolCheckAvailability:
		result = s.checkAvailability(ctx, use.Input)
	case ToolViewBookings:
		result = s.viewBookings(ctx, callerPhone, use.Input)
	case ToolBookMaid:
		result = s.bookMaid(ctx, callerPhone, use.Input)
	case ToolCancelBooking:
		result = s.cancelBooking(ctx, callerPhone, use.Input)
	case ToolRescheduleBooking:
		result = s.rescheduleBooking(ctx, callerPhone, use.Input)
	case ToolScheduleInterview:
		result = s.scheduleInterview(ctx, callerPhone, use.Input)
	case ToolViewInterviews:
		result = s.viewInterviews(ctx, callerPhone, use.Input)
	case ToolCancelInterview:
		result = s.cancelInterview(ctx, callerPhone, use.Input)
	}

	status := "ok"
	if failure, failed := result.(ToolFailure); failed {
		status = "error"
		s.logger.Warn("tool call failed", "tool", use.Name, "error", failure.Error, "details", failure.Details)
	}
	s.metrics.ObserveTool(use.Name, status)
	return result
}

func (s *Service) checkAvailability(ctx context.Context, raw []byte) ToolResult {
	input, err := decodeToolInput[AvailabilityInput](raw)
	if err != nil {
		return ToolFailure{Error: "Invalid search criteria", Details: err.Error()}
	}

	profiles, err := s.maids.SearchAvailable(ctx, maids.Filter{
		Name:          input.Name,
		Skills:        input.Skills,
		MinExperience: input.MinExperience,
		Location:      input.LocationPreference,
	})
	if err != nil {
		return ToolFailure{Error: "Failed to search for maids", Details: err.Error()}
	}
	if len(profiles) == 0 {
		return AvailabilityResult{
			Count: 0,
			Maids: []MaidSummary{},
			Message: "No maids found matching your requirements. You may want to broaden your search criteria or contact us directly for more options.",
			Suggestions: []string{
				"Try removing specific skill requirements",
				"Lower the minimum experience requirement",
				"Consider maids from nearby countries",
				"Contact our support team for personalized recommendations",
			},
		}
	}

	now := s.now()
	summaries := make([]MaidSummary, 0, len(profiles))
	for _, p := range profiles {
		summaries = append(summaries, summarizeProfile(p, now))
	}
	return AvailabilityResult{
		Count: len(summaries),
		Maids: summaries,
		Criteria: &SearchCriteria{
			Skills:        input.Skills,
			MinExperience: input.MinExperience,
			Location:      input.LocationPreference,
		},
	}
}

// summarizeProfile pre-renders a profile for display, substituting friendly
// defaults for missing data.
func summarizeProfile(p maids.Profile, now time.Time) MaidSummary {
	age := "Not specified"
	if p.DateOfBirth != nil {
		age = fmt.Sprintf("%d years", p.Age(now))
	}
	experience := "Not specified"
	if p.ExperienceYears > 0 {
		experience = fmt.Sprintf("%d years", p.ExperienceYears)
	}
	skills := "General housework"
	if len(p.Skills) > 0 {
		skills = strings.Join(p.Skills, ", ")
	}
	languages := "Amharic, English"
	if len(p.Languages) > 0 {
		languages = strings.Join(p.Languages, ", ")
	}
	availability := p.Availability
	if availability == "" {
		availability = maids.AvailabilityAvailable
	}
	location := p.Location
	if location == "" {
		location = "Not specified"
	}
	nationality := p.Nationality
	if nationality == "" {
		nationality = "Ethiopian"
	}
	return MaidSummary{
		ID:           p.ID,
		Name:         p.FullName,
		Age:          age,
		Experience:   experience,
		Skills:       skills,
		Availability: availability,
		Location:     location,
		Nationality:  nationality,
		Languages:    languages,
	}
}

func (s *Service) viewBookings(ctx context.Context, callerPhone string, raw []byte) ToolResult {
	input, err := decodeToolInput[ViewBookingsInput](raw)
	if err != nil {
		return ToolFailure{Error: "Invalid booking query", Details: err.Error()}
	}
	phone := input.PhoneNumber
	if phone == "" {
		phone = callerPhone
	}

	list, err := s.bookings.ListByPhone(ctx, phone, input.Status)
	if err != nil {
		return ToolFailure{Error: "Failed to fetch bookings", Details: err.Error()}
	}
	summaries := make([]BookingSummary, 0, len(list))
	for _, b := range list {
		summaries = append(summaries, summarizeBooking(b))
	}
	return BookingList{Count: len(summaries), Bookings: summaries}
}

func summarizeBooking(b bookings.Booking) BookingSummary {
	summary := BookingSummary{
		ID:          b.ID.String(),
		BookingType: b.BookingType,
		Status:      b.Status,
		MaidName:    b.MaidName,
	}
	if b.BookingDate != nil {
		summary.BookingDate = FormatGulfDate(*b.BookingDate)
	}
	return summary
}

func (s *Service) bookMaid(ctx context.Context, callerPhone string, raw []byte) ToolResult {
	input, err := decodeToolInput[BookMaidInput](raw)
	if err != nil {
		return ToolFailure{Error: "Invalid booking request", Details: err.Error()}
	}
	phone := input.PhoneNumber
	if phone == "" {
		phone = callerPhone
	}

	// A booking without a worker id is allowed: it is recorded as a general
	// inquiry for an agent to follow up.
	req := bookings.CreateRequest{
		PhoneNumber: phone,
		SponsorName: input.SponsorName,
		MaidID:      input.MaidID,
		MaidName:    input.MaidName,
		BookingType: input.BookingType,
		Notes:       input.Notes,
	}
	if input.BookingDate != "" {
		if date, err := parseFlexibleDate(input.BookingDate); err == nil {
			req.BookingDate = &date
		}
	}

	booking, err := s.bookings.Create(ctx, req)
	if err != nil {
		return ToolFailure{Error: "Failed to create booking", Details: err.Error()}
	}
	summary := summarizeBooking(*booking)
	return ActionDone{Success: true, Booking: &summary}
}

func (s *Service) cancelBooking(ctx context.Context, callerPhone string, raw []byte) ToolResult {
	input, err := decodeToolInput[CancelBookingInput](raw)
	if err != nil {
		return ToolFailure{Error: "Invalid cancellation request", Details: err.Error()}
	}
	if input.BookingID == "" {
		return ToolFailure{Error: "Missing booking id", Message: "Please provide the id of the booking to cancel."}
	}
	if err := s.bookings.Cancel(ctx, input.BookingID, callerPhone, input.Reason); err != nil {
		return ToolFailure{Error: "Failed to cancel booking", Details: err.Error()}
	}
	return ActionDone{Success: true, Message: "Booking cancelled successfully"}
}

func (s *Service) rescheduleBooking(ctx context.Context, callerPhone string, raw []byte) ToolResult {
	input, err := decodeToolInput[RescheduleBookingInput](raw)
	if err != nil {
		return ToolFailure{Error: "Invalid reschedule request", Details: err.Error()}
	}
	if input.BookingID == "" {
		return ToolFailure{Error: "Missing booking id", Message: "Please provide the id of the booking to reschedule."}
	}
	newDate, err := parseFlexibleDate(input.NewDate)
	if err != nil {
		return ToolFailure{Error: "Invalid date format", Message: "Please provide a valid date and time for the booking."}
	}
	if err := s.bookings.Reschedule(ctx, input.BookingID, callerPhone, newDate); err != nil {
		return ToolFailure{Error: "Failed to reschedule booking", Details: err.Error()}
	}
	return ActionDone{Success: true, Message: "Booking rescheduled successfully"}
}

func (s *Service) scheduleInterview(ctx context.Context, callerPhone string, raw []byte) ToolResult {
	input, err := decodeToolInput[ScheduleInterviewInput](raw)
	if err != nil {
		return ToolFailure{Error: "Invalid interview request", Details: err.Error()}
	}

	var contact *maids.Contact
	switch {
	case input.MaidID != "":
		contact, err = s.maids.FindByID(ctx, input.MaidID)
	case input.MaidName != "":
		contact, err = s.maids.FindAvailableByName(ctx, input.MaidName)
	default:
		return ToolFailure{
			Error:   "Missing maid information",
			Message: "Please provide either maid_id or maid_name to schedule an interview.",
		}
	}
	if err != nil || contact == nil {
		target := input.MaidName
		if target == "" {
			target = "with ID " + input.MaidID
		}
		failure := ToolFailure{
			Error:   "Maid not found",
			Message: fmt.Sprintf("Could not find the maid %s. Please search for available maids first.", target),
		}
		if err != nil {
			failure.Details = err.Error()
		}
		return failure
	}

	scheduledDate, err := parseFlexibleDate(input.PreferredDate)
	if err != nil {
		return ToolFailure{
			Error:   "Invalid date format",
			Message: "Please provide a valid date and time for the interview.",
		}
	}
	if !scheduledDate.After(s.now()) {
		return ToolFailure{
			Error:   "Past date",
			Message: "Interview date must be in the future. Please choose a later date.",
		}
	}

	interviewType := input.InterviewType
	if interviewType == "" {
		interviewType = interviews.TypeWhatsAppVideo
	}
	var meetingLink string
	if interviewType == interviews.TypeWhatsAppVideo {
		meetingLink = interviews.WhatsAppMeetingLink(contact.PhoneNumber, callerPhone)
	}

	created, err := s.interviews.Create(ctx, interviews.ScheduleRequest{
		MaidID:          contact.ID,
		MaidPhone:       contact.PhoneNumber,
		SponsorPhone:    callerPhone,
		SponsorName:     input.SponsorName,
		ScheduledDate:   scheduledDate,
		DurationMinutes: input.DurationMinutes,
		InterviewType:   interviewType,
		MeetingLink:     meetingLink,
		Notes:           input.Notes,
		CreatedVia:      "whatsapp",
	})
	if err != nil {
		return ToolFailure{Error: "Failed to schedule interview", Details: err.Error()}
	}

	return InterviewScheduled{
		Success:       true,
		InterviewID:   created.ID.String(),
		MaidName:      contact.FullName,
		ScheduledDate: FormatGulfDate(created.ScheduledDate),
		InterviewType: created.InterviewType,
		Duration:      created.DurationMinutes,
		MeetingLink:   created.MeetingLink,
		Message:       fmt.Sprintf("Video interview scheduled successfully with %s", contact.FullName),
	}
}

func (s *Service) viewInterviews(ctx context.Context, callerPhone string, raw []byte) ToolResult {
	input, err := decodeToolInput[ViewInterviewsInput](raw)
	if err != nil {
		return ToolFailure{Error: "Invalid interview query", Details: err.Error()}
	}
	phone := input.PhoneNumber
	if phone == "" {
		phone = callerPhone
	}

	upcoming, err := s.interviews.Upcoming(ctx, phone, input.DaysAhead)
	if err != nil {
		return ToolFailure{Error: "Failed to fetch interviews", Details: err.Error()}
	}

	summaries := make([]InterviewSummary, 0, len(upcoming))
	for _, iv := range upcoming {
		summaries = append(summaries, InterviewSummary{
			MaidName:        iv.MaidName,
			ScheduledDate:   formatGulfShortDate(iv.ScheduledDate),
			InterviewType:   iv.InterviewType,
			DurationMinutes: iv.DurationMinutes,
			Status:          iv.Status,
		})
	}
	message := "You have no upcoming interviews scheduled."
	if len(summaries) > 0 {
		message = fmt.Sprintf("You have %d upcoming interview%s", len(summaries), plural(len(summaries)))
	}
	return InterviewList{Count: len(summaries), Interviews: summaries, Message: message}
}

func (s *Service) cancelInterview(ctx context.Context, callerPhone string, raw []byte) ToolResult {
	input, err := decodeToolInput[CancelInterviewInput](raw)
	if err != nil {
		return ToolFailure{Error: "Invalid cancellation request", Details: err.Error()}
	}
	if input.InterviewID == "" {
		return ToolFailure{Error: "Missing interview id", Message: "Please provide the id of the interview to cancel."}
	}
	if err := s.interviews.Cancel(ctx, input.InterviewID, callerPhone, input.Reason); err != nil {
		return ToolFailure{Error: "Failed to cancel interview", Details: err.Error()}
	}
	return ActionDone{Success: true, Message: "Video interview cancelled successfully"}
}

// Date layouts accepted from the model, broadest first. The model usually
// sends RFC 3339 but occasionally drops the zone or the time.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseFlexibleDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("conversation: empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, gulfTime); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("conversation: unparseable date %q", value)
}
