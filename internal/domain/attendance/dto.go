package attendance

import (
	"io"
	"net/url"
	"strings"

	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

const (
	DefaultListLimit = 30
	MaxListLimit     = 366

	maxLocationLength = 255
	maxPhotoSize      = 10 << 20 // 10MB
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// ProofPhoto is an uploaded image that becomes the stored photo URL of a
// clock transition.
type ProofPhoto struct {
	File     io.Reader
	Filename string
	Size     int64
}

type ClockInRequest struct {
	EmployeeID string      `json:"employee_id"`
	Location   *string     `json:"location,omitempty"`
	PhotoURL   *string     `json:"photo_url,omitempty"`
	Photo      *ProofPhoto `json:"-"`
}

func (r *ClockInRequest) Validate() error {
	return validateTransition(r.EmployeeID, r.Location, r.PhotoURL, r.Photo)
}

type ClockOutRequest struct {
	EmployeeID string      `json:"employee_id"`
	Location   *string     `json:"location,omitempty"`
	PhotoURL   *string     `json:"photo_url,omitempty"`
	Photo      *ProofPhoto `json:"-"`
}

func (r *ClockOutRequest) Validate() error {
	return validateTransition(r.EmployeeID, r.Location, r.PhotoURL, r.Photo)
}

func validateTransition(employeeID string, location, photoURL *string, photo *ProofPhoto) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(employeeID) {
		errs.Add("employee_id", "employee_id is required")
	} else if !validator.IsValidUUID(employeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	if location != nil && len(strings.TrimSpace(*location)) > maxLocationLength {
		errs.Add("location", "location must not exceed 255 characters")
	}

	if photoURL != nil && photo != nil {
		errs.Add("photo", "send either photo_url or a photo file, not both")
	}
	if photoURL != nil {
		if u, err := url.ParseRequestURI(*photoURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add("photo_url", "photo_url must be an absolute URL")
		}
	}
	if photo != nil {
		dot := strings.LastIndex(photo.Filename, ".")
		ext := ""
		if dot >= 0 {
			ext = strings.ToLower(photo.Filename[dot:])
		}
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			errs.Add("photo", "invalid file type: only jpg, jpeg, png allowed")
		} else if photo.Size > maxPhotoSize {
			errs.Add("photo", "attendance proof photo size must not exceed 10MB")
		}
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID               string   `json:"id"`
	EmployeeID       string   `json:"employee_id"`
	EmployeeName     *string  `json:"employee_name,omitempty"`
	Date             string   `json:"date"`
	ClockIn          *string  `json:"clock_in,omitempty"`
	ClockOut         *string  `json:"clock_out,omitempty"`
	ClockInLocation  *string  `json:"clock_in_location,omitempty"`
	ClockOutLocation *string  `json:"clock_out_location,omitempty"`
	ClockInPhoto     *string  `json:"clock_in_photo,omitempty"`
	ClockOutPhoto    *string  `json:"clock_out_photo,omitempty"`
	HoursWorked      *float64 `json:"hours_worked,omitempty"`
	Status           string   `json:"status"`
	Notes            *string  `json:"notes,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Limit      int     `json:"limit"`
}

// Validate checks the filter and converts it for the store.
func (f *AttendanceFilter) Validate() (ListFilter, error) {
	var errs validator.ValidationErrors
	out := ListFilter{Limit: f.Limit}

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	if f.StartDate != nil {
		if d, ok := validator.IsValidDate(*f.StartDate); ok {
			out.From = &d
		} else {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil {
		if d, ok := validator.IsValidDate(*f.EndDate); ok {
			out.To = &d
		} else {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if out.From != nil && out.To != nil && out.To.Before(*out.From) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	switch {
	case f.Limit < 0:
		errs.Add("limit", "limit must be a positive number")
	case f.Limit == 0:
		out.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		errs.Add("limit", "limit must not exceed 366")
	}

	if err := errs.Err(); err != nil {
		return ListFilter{}, err
	}
	out.EmployeeID = f.EmployeeID
	return out, nil
}

type ListAttendanceResponse struct {
	Attendances []AttendanceResponse `json:"attendances"`
	Count       int                  `json:"count"`
}

type StatsResponse struct {
	EmployeeID         string  `json:"employee_id"`
	Month              int     `json:"month"`
	Year               int     `json:"year"`
	PeriodStart        string  `json:"period_start"`
	PeriodEnd          string  `json:"period_end"`
	TotalDays          int     `json:"total_days"`
	PresentDays        int     `json:"present_days"`
	LateDays           int     `json:"late_days"`
	AbsentDays         int     `json:"absent_days"`
	HalfDays           int     `json:"half_days"`
	CompletedDays      int     `json:"completed_days"`
	AverageHoursWorked float64 `json:"average_hours_worked"`
}

// ValidatePeriod checks a month/year pair.
func ValidatePeriod(month, year int) error {
	var errs validator.ValidationErrors
	if !validator.IsValidMonth(month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if !validator.IsValidYear(year) {
		errs.Add("year", "year must be between 1970 and 9999")
	}
	return errs.Err()
}
