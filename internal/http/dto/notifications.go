package dto

import "github.com/shopspring/decimal"

// NotificationUser identifica al destinatario.
type NotificationUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// NotificationRequest es el body de POST /v1/notifications/{kind}.
// Cada kind usa sólo sus campos.
type NotificationRequest struct {
	User       NotificationUser    `json:"user"`
	CourseName string              `json:"course_name,omitempty"`
	Reason     string              `json:"reason,omitempty"`
	AmountPaid decimal.NullDecimal `json:"amount_paid"`
	BatchName  string              `json:"batch_name,omitempty"`
}

type NotificationResponse struct {
	Kind     string `json:"kind"`
	Template string `json:"template"`
	Status   string `json:"status"`
}
