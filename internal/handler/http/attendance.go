package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const maxMultipartMemory = 10 << 20

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetStats(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	clock             clock.Clock
	location          *time.Location
}

// NewAttendanceHandler serves the attendance routes. clk and loc resolve the
// default month of the stats endpoint.
func NewAttendanceHandler(attendanceService attendance.AttendanceService, clk clock.Clock, loc *time.Location) AttendanceHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		clock:             clk,
		location:          loc,
	}
}

// transitionBody is the shared payload of clock-in and clock-out.
type transitionBody struct {
	EmployeeID string  `json:"employee_id"`
	Location   *string `json:"location,omitempty"`
	PhotoURL   *string `json:"photo_url,omitempty"`
}

// decodeTransition reads either a JSON body or a multipart form whose "data"
// field holds the JSON and whose optional "photo" field holds the proof
// image. The returned cleanup must be called once the photo is consumed.
func decodeTransition(w http.ResponseWriter, r *http.Request, scope user.Scope) (transitionBody, *attendance.ProofPhoto, func(), bool) {
	var body transitionBody
	noop := func() {}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			response.BadRequest(w, "Failed to parse form data", nil)
			return body, nil, noop, false
		}

		if dataJSON := r.FormValue("data"); dataJSON != "" {
			if err := json.Unmarshal([]byte(dataJSON), &body); err != nil {
				slog.Error("Failed to unmarshal JSON data", "error", err)
				response.BadRequest(w, "Invalid request format", nil)
				return body, nil, noop, false
			}
		}

		file, header, err := r.FormFile("photo")
		switch {
		case err == nil:
		case errors.Is(err, http.ErrMissingFile):
			applyDefaultEmployee(&body, scope)
			return body, nil, noop, true
		default:
			slog.Error("Failed to get file from form", "error", err)
			response.BadRequest(w, "Invalid file upload", nil)
			return body, nil, noop, false
		}

		applyDefaultEmployee(&body, scope)
		photo := &attendance.ProofPhoto{File: file, Filename: header.Filename, Size: header.Size}
		return body, photo, func() { file.Close() }, true
	}

	// An empty body clocks the caller's own record
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Failed to decode attendance request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return body, nil, noop, false
	}
	applyDefaultEmployee(&body, scope)
	return body, nil, noop, true
}

// applyDefaultEmployee targets the caller's own record when no employee_id is sent.
func applyDefaultEmployee(body *transitionBody, scope user.Scope) {
	if strings.TrimSpace(body.EmployeeID) == "" && scope.EmployeeID != nil {
		body.EmployeeID = *scope.EmployeeID
	}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	body, photo, cleanup, ok := decodeTransition(w, r, scope)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.attendanceService.ClockIn(r.Context(), scope, attendance.ClockInRequest{
		EmployeeID: body.EmployeeID,
		Location:   body.Location,
		PhotoURL:   body.PhotoURL,
		Photo:      photo,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	body, photo, cleanup, ok := decodeTransition(w, r, scope)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.attendanceService.ClockOut(r.Context(), scope, attendance.ClockOutRequest{
		EmployeeID: body.EmployeeID,
		Location:   body.Location,
		PhotoURL:   body.PhotoURL,
		Photo:      photo,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	var errs validator.ValidationErrors
	filter := attendance.AttendanceFilter{
		EmployeeID: optionalQuery(r, "employee_id"),
		StartDate:  optionalQuery(r, "start_date"),
		EndDate:    optionalQuery(r, "end_date"),
		Limit:      queryInt(r, "limit", 0, &errs),
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ListAttendance(r.Context(), scope, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetToday implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetToday(r.Context(), scope, chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if result == nil {
		response.SuccessWithMessage(w, "No attendance recorded today", nil)
		return
	}

	response.Success(w, result)
}

// GetStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	month, year, err := period(r, h.clock, h.location)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ComputeStats(r.Context(), scope, chi.URLParam(r, "employeeID"), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
