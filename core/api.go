package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Remote API endpoints
const (
	PathLogin         = "/auth"
	PathRegister      = "/auth/register"
	PathRefresh       = "/auth/refresh"
	PathResetRequest  = "/auth/reset/request"
	PathReset         = "/auth/reset"
	PathStudyPrograms = "/study/programs"
	PathHealth        = "/health"
	PathSchedules     = "/user/schedules"
	PathScheduleSync  = "/user/schedules/sync"
)

// Response is the data envelope returned by the remote API
type Response[T any] struct {
	Data   T       `json:"data"`
	Paging *Paging `json:"paging,omitempty"`
}

// Paging describes a paginated listing
type Paging struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPage  int `json:"total_page"`
	TotalCount int `json:"total_count"`
}

// ErrorResponse is the error envelope returned by the remote API.
// Errors maps a field name to a list of error codes.
type ErrorResponse struct {
	RequestID string              `json:"request_id,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Message   string              `json:"message,omitempty"`
}

// Describe maps every error code through messages and joins the result.
// Unknown codes are passed through unchanged; fields are visited in sorted order.
func (e ErrorResponse) Describe(messages map[string]string) string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []string
	for _, field := range fields {
		codes := e.Errors[field]
		if len(codes) == 0 {
			if msg, ok := messages[field]; ok {
				parts = append(parts, msg)
			} else {
				parts = append(parts, MsgUnknownError)
			}
			continue
		}
		mapped := make([]string, 0, len(codes))
		for _, code := range codes {
			if msg, ok := messages[code]; ok {
				mapped = append(mapped, msg)
			} else {
				mapped = append(mapped, code)
			}
		}
		parts = append(parts, strings.Join(mapped, ", "))
	}
	return strings.Join(parts, ", ")
}

// Tokens is the payload of a successful login or refresh exchange
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Pair converts the payload into a credential pair
func (t Tokens) Pair() CredentialPair {
	return CredentialPair{Access: t.AccessToken, Refresh: t.RefreshToken}
}

// Registration is the payload of a successful registration
type Registration struct {
	Email string `json:"email"`
}

// Schedule is one class meeting of a student's timetable
type Schedule struct {
	ClassCode    string          `json:"class_code"`
	CourseCode   string          `json:"course_code"`
	CourseName   string          `json:"course_name"`
	Day          string          `json:"day"`
	StartTime    string          `json:"start_time"`
	EndTime      string          `json:"end_time"`
	Lecturer     *string         `json:"lecturer,omitempty"`
	RoomNumber   string          `json:"room_number"`
	Semester     string          `json:"semester"`
	Credits      decimal.Decimal `json:"credits"`
	StudyProgram string          `json:"study_program"`
}

// TotalCredits sums the credits of distinct courses in the schedule
func TotalCredits(schedules []Schedule) decimal.Decimal {
	seen := make(map[string]struct{}, len(schedules))
	total := decimal.Zero
	for _, s := range schedules {
		key := s.CourseCode + "/" + s.ClassCode
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		total = total.Add(s.Credits)
	}
	return total
}

// StudyProgram is a selectable study program
type StudyProgram struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Option is a label/value pair for a selection widget
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
