package model

import "time"

type InquiryStatus string

const (
	InquiryStatusPending  InquiryStatus = "pending"
	InquiryStatusApproved InquiryStatus = "approved"
	InquiryStatusPaid     InquiryStatus = "paid"     // terminal
	InquiryStatusRejected InquiryStatus = "rejected" // terminal
)

// Inquiry is a buyer-initiated request to be allowed to pay for a course.
// Anonymous visitors submit name+phone; approval lazily creates their account.
type Inquiry struct {
	ID          string  // UUID
	UserID      *string // nil for anonymous submissions until approval
	FirstName   string
	LastName    string
	PhoneNumber string
	CourseID    string
	Message     string
	Status      InquiryStatus
	CreatedAt   time.Time
}

// CanTransitionTo enforces the pending -> approved -> paid / pending -> rejected
// state machine. Terminal states never move.
func (i *Inquiry) CanTransitionTo(next InquiryStatus) bool {
	switch i.Status {
	case InquiryStatusPending:
		return next == InquiryStatusApproved || next == InquiryStatusRejected
	case InquiryStatusApproved:
		return next == InquiryStatusPaid
	}
	return false
}
