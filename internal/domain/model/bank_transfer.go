package model

import "time"

type BankTransferStatus string

const (
	BankTransferStatusPending  BankTransferStatus = "pending"
	BankTransferStatusApproved BankTransferStatus = "approved"
)

// BankTransferRequest is the manual payment path: the buyer uploads a transfer
// slip and an administrator approval performs the same entitlement grant as a
// successful gateway callback.
type BankTransferRequest struct {
	ID        string // UUID
	UserID    string
	CourseID  string
	SlipURL   string // reference into external file storage
	Status    BankTransferStatus
	CreatedAt time.Time
}
