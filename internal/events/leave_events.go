package events

// Topic and event types for the leave lifecycle stream. Producers write
// these through the transactional outbox; downstream notification services
// consume them from Kafka.
const (
	TopicLeaveLifecycle = "leave.lifecycle"

	EventLeaveSubmitted    = "leave.submitted"
	EventLeaveStepApproved = "leave.step_approved"
	EventLeaveApproved     = "leave.approved"
	EventLeaveRejected     = "leave.rejected"
	EventLeaveWithdrawn    = "leave.withdrawn"
)

type LeaveLifecycleEvent struct {
	RequestID  string `json:"request_id"`
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	TotalUnits string `json:"total_units"`
	Status     string `json:"status"`
	ActorID    string `json:"actor_id"`
	OccurredAt string `json:"occurred_at"`
}
