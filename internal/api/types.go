package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/peer-support-platform/internal/booking"
	"github.com/hackgods/peer-support-platform/internal/simulator"
	"github.com/hackgods/peer-support-platform/internal/video"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type DateResponse struct {
	ID        int    `json:"id"`
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	DayNumber int    `json:"day_number"`
	Month     string `json:"month"`
}

type SlotResponse struct {
	ID    int    `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

type BookingStateResponse struct {
	SessionID    uuid.UUID      `json:"session_id"`
	Phase        booking.Phase  `json:"phase"`
	Loaded       bool           `json:"loaded"`
	Dates        []DateResponse `json:"dates,omitempty"`
	SelectedDate *DateResponse  `json:"selected_date,omitempty"`
	SelectedSlot *SlotResponse  `json:"selected_slot,omitempty"`
}

type SlotsResponse struct {
	Date  DateResponse   `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

type SelectDateRequest struct {
	DateID int `json:"date_id"`
}

type SelectSlotRequest struct {
	SlotID int `json:"slot_id"`
}

type ConfirmationResponse struct {
	Token       uuid.UUID    `json:"token"`
	RoomID      string       `json:"room_id"`
	Date        DateResponse `json:"date"`
	Slot        SlotResponse `json:"slot"`
	StartsAt    time.Time    `json:"starts_at"`
	EndsAt      time.Time    `json:"ends_at"`
	ConfirmedAt time.Time    `json:"confirmed_at"`
	Path        string       `json:"path"`
	Embed       video.Embed  `json:"embed"`
}

type ChatMessageResponse struct {
	ID     int64            `json:"id"`
	Author simulator.Author `json:"author"`
	Text   string           `json:"text"`
	SentAt time.Time        `json:"sent_at"`
}

type ChatSessionResponse struct {
	SessionID uuid.UUID             `json:"session_id"`
	Typing    bool                  `json:"typing"`
	Messages  []ChatMessageResponse `json:"messages"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

type SendMessageResponse struct {
	Sent  ChatMessageResponse `json:"sent"`
	Reply ChatMessageResponse `json:"reply"`
}

type HourlyActivityResponse struct {
	Hour     int `json:"hour"`
	Sessions int `json:"sessions"`
	Users    int `json:"users"`
}

type IssueResponse struct {
	Name       string `json:"name"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type ShareResponse struct {
	Label      string `json:"label"`
	Percentage int    `json:"percentage"`
}

type DemographicsResponse struct {
	AgeGroups []ShareResponse `json:"age_groups"`
	Gender    []ShareResponse `json:"gender"`
}

type SnapshotResponse struct {
	Sequence              uint64                   `json:"sequence"`
	GeneratedAt           time.Time                `json:"generated_at"`
	ActiveSessions        int                      `json:"active_sessions"`
	PerHour               []HourlyActivityResponse `json:"per_hour"`
	TotalUsers            int                      `json:"total_users"`
	TotalSessions         int                      `json:"total_sessions"`
	AverageSessionMinutes int                      `json:"average_session_minutes"`
	SatisfactionRate      int                      `json:"satisfaction_rate"`
	MonthlyGrowth         int                      `json:"monthly_growth"`
	TopIssues             []IssueResponse          `json:"top_issues"`
	Demographics          DemographicsResponse     `json:"demographics"`
}

type AnalyticsViewResponse struct {
	SessionID uuid.UUID        `json:"session_id"`
	Running   bool             `json:"running"`
	Snapshot  SnapshotResponse `json:"snapshot"`
}

// RoomLink is a standing room and the join page path that opens it.
type RoomLink struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type RoomsResponse struct {
	Rooms []RoomLink `json:"rooms"`
}

type MeetResponse struct {
	Embed    video.Embed `json:"embed"`
	HomePath string      `json:"home_path"`
}

func toDateResponse(d booking.DateOption) DateResponse {
	return DateResponse{
		ID:        d.ID,
		Date:      d.Label(),
		Weekday:   d.Weekday.String(),
		DayNumber: d.DayNumber,
		Month:     d.Month,
	}
}

func toDateResponses(in []booking.DateOption) []DateResponse {
	out := make([]DateResponse, 0, len(in))
	for _, d := range in {
		out = append(out, toDateResponse(d))
	}
	return out
}

func toSlotResponse(s booking.TimeSlotOption) SlotResponse {
	return SlotResponse{
		ID:    s.ID,
		Start: s.Start.String(),
		End:   s.End.String(),
		Label: s.Label(),
	}
}

func toMessageResponse(m simulator.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{ID: m.ID, Author: m.Author, Text: m.Text, SentAt: m.SentAt}
}

func toSnapshotResponse(s simulator.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		Sequence:              s.Sequence,
		GeneratedAt:           s.GeneratedAt,
		ActiveSessions:        s.ActiveSessions,
		PerHour:               make([]HourlyActivityResponse, 0, len(s.PerHour)),
		TotalUsers:            s.TotalUsers,
		TotalSessions:         s.TotalSessions,
		AverageSessionMinutes: s.AverageSessionMinutes,
		SatisfactionRate:      s.SatisfactionRate,
		MonthlyGrowth:         s.MonthlyGrowth,
		TopIssues:             make([]IssueResponse, 0, len(s.TopIssues)),
	}
	for _, h := range s.PerHour {
		resp.PerHour = append(resp.PerHour, HourlyActivityResponse{Hour: h.Hour, Sessions: h.Sessions, Users: h.Users})
	}
	for _, i := range s.TopIssues {
		resp.TopIssues = append(resp.TopIssues, IssueResponse{Name: i.Name, Count: i.Count, Percentage: i.Percentage})
	}
	resp.Demographics = DemographicsResponse{
		AgeGroups: toShareResponses(s.Demographics.AgeGroups),
		Gender:    toShareResponses(s.Demographics.Gender),
	}
	return resp
}

func toShareResponses(shares []simulator.Share) []ShareResponse {
	out := make([]ShareResponse, 0, len(shares))
	for _, sh := range shares {
		out = append(out, ShareResponse{Label: sh.Label, Percentage: sh.Percentage})
	}
	return out
}
