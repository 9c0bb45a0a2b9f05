package balance

import "time"

type CreateBalanceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=ANNUAL SICK UNPAID"`
	Available  string `json:"available" binding:"required"`
}

type AccrueRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=ANNUAL SICK UNPAID"`
	Quantity   string `json:"quantity" binding:"required"`
}

type BalanceResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	Available  string `json:"available"`
	Held       string `json:"held"`
	Consumed   string `json:"consumed"`
	AsOf       string `json:"as_of"`
}

type TransactionResponse struct {
	ID        string `json:"id"`
	BalanceID string `json:"balance_id"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
	RequestID string `json:"request_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

func mapToBalanceResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:         b.ID.String(),
		EmployeeID: b.EmployeeID.String(),
		LeaveType:  b.LeaveType,
		Available:  b.Available.String(),
		Held:       b.Held.String(),
		Consumed:   b.Consumed.String(),
		AsOf:       b.AsOf.Format(time.RFC3339),
	}
}

func mapToTransactionResponse(t BalanceTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:        t.ID.String(),
		BalanceID: t.BalanceID.String(),
		Kind:      t.Kind,
		Amount:    t.Amount.String(),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if t.RequestID != nil {
		resp.RequestID = t.RequestID.String()
	}
	return resp
}
