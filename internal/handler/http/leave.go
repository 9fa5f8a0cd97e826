package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	DecideRequest(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
	clock        clock.Clock
	location     *time.Location
}

func NewLeaveHandler(leaveService leave.LeaveService, clk clock.Clock, loc *time.Location) LeaveHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &LeaveHandlerImpl{
		leaveService: leaveService,
		clock:        clk,
		location:     loc,
	}
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	var req leave.CreateLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Employees file for themselves unless they name someone else
	if strings.TrimSpace(req.EmployeeID) == "" && scope.EmployeeID != nil {
		req.EmployeeID = *scope.EmployeeID
	}

	result, err := l.leaveService.CreateRequest(r.Context(), scope, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", result)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	filter := leave.LeaveRequestFilter{
		EmployeeID: optionalQuery(r, "employee_id"),
		Status:     optionalQuery(r, "status"),
		StartDate:  optionalQuery(r, "start_date"),
		EndDate:    optionalQuery(r, "end_date"),
	}

	result, err := l.leaveService.ListRequests(r.Context(), scope, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	result, err := l.leaveService.GetRequest(r.Context(), scope, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DecideRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) DecideRequest(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	var req leave.DecideLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("DecideRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RequestID = chi.URLParam(r, "id")

	result, err := l.leaveService.Decide(r.Context(), scope, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request "+result.Status, result)
}

// GetBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	year, err := yearParam(r, l.clock, l.location)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := l.leaveService.ComputeBalance(r.Context(), scope, chi.URLParam(r, "employeeID"), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
