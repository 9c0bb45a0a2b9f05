package lifecycle

import (
	"time"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/workflow"
)

type SubmitLeaveRequest struct {
	EmployeeID  string   `json:"employee_id" binding:"required,uuid"`
	LeaveType   string   `json:"leave_type" binding:"required,oneof=ANNUAL SICK UNPAID"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	TotalUnits  string   `json:"total_units" binding:"required"`
	Reason      string   `json:"reason"`
	ApproverIDs []string `json:"approver_ids" binding:"required,min=1,dive,uuid"`
}

type ApproveStepRequest struct {
	Remarks string `json:"remarks"`
}

type RejectStepRequest struct {
	Remarks string `json:"remarks" binding:"required"`
}

type WithdrawRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type StepResponse struct {
	ID         string  `json:"id"`
	RequestID  string  `json:"request_id"`
	Sequence   int     `json:"sequence"`
	ApproverID string  `json:"approver_id"`
	Status     string  `json:"status"`
	ActedAt    *string `json:"acted_at,omitempty"`
	Remarks    *string `json:"remarks,omitempty"`
}

type LeaveRequestResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalUnits string `json:"total_units"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`

	DecidedBy       *string `json:"decided_by,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	DecisionRemarks *string `json:"decision_remarks,omitempty"`

	CancelledBy  *string `json:"cancelled_by,omitempty"`
	CancelledAt  *string `json:"cancelled_at,omitempty"`
	CancelReason *string `json:"cancel_reason,omitempty"`

	Steps []StepResponse `json:"steps,omitempty"`
}

// TransitionResponse reports one lifecycle transition. FinalStatus is only
// present when the transition completed the workflow.
type TransitionResponse struct {
	Request     LeaveRequestResponse `json:"request"`
	Step        *StepResponse        `json:"step,omitempty"`
	Completed   bool                 `json:"completed"`
	FinalStatus string               `json:"final_status,omitempty"`
}

func mapToStepResponse(s workflow.WorkflowStep) StepResponse {
	resp := StepResponse{
		ID:         s.ID.String(),
		RequestID:  s.RequestID.String(),
		Sequence:   s.Sequence,
		ApproverID: s.ApproverID.String(),
		Status:     s.Status,
		Remarks:    s.Remarks,
	}
	if s.ActedAt != nil {
		v := s.ActedAt.Format(time.RFC3339)
		resp.ActedAt = &v
	}
	return resp
}

func mapToRequestResponse(lr workflow.LeaveRequest, steps []workflow.WorkflowStep) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:         lr.ID.String(),
		EmployeeID: lr.EmployeeID.String(),
		LeaveType:  lr.LeaveType,
		StartDate:  lr.StartDate.Format("2006-01-02"),
		EndDate:    lr.EndDate.Format("2006-01-02"),
		TotalUnits: lr.TotalUnits.String(),
		Reason:     lr.Reason,
		Status:     lr.Status,
	}
	if lr.DecidedBy != nil {
		v := lr.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if lr.DecidedAt != nil {
		v := lr.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	resp.DecisionRemarks = lr.DecisionRemarks
	if lr.CancelledBy != nil {
		v := lr.CancelledBy.String()
		resp.CancelledBy = &v
	}
	if lr.CancelledAt != nil {
		v := lr.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &v
	}
	resp.CancelReason = lr.CancelReason

	for _, s := range steps {
		resp.Steps = append(resp.Steps, mapToStepResponse(s))
	}
	return resp
}

func mapToTransitionResponse(res *workflow.TransitionResult, steps []workflow.WorkflowStep) TransitionResponse {
	resp := TransitionResponse{
		Request:     mapToRequestResponse(*res.Request, steps),
		Completed:   res.Completed,
		FinalStatus: res.FinalStatus,
	}
	if res.Step != nil {
		v := mapToStepResponse(*res.Step)
		resp.Step = &v
	}
	return resp
}
