package model

import "time"

// Entitlement is a time-boxed grant of course-viewing rights. Rows are never
// mutated after creation; a later grant naturally supersedes an expired one.
type Entitlement struct {
	ID        string // UUID
	UserID    string // UUID
	CourseID  string // UUID
	Source    string // grant path: callback, client_verify, bank_transfer, admin_override, admin_recover
	GrantedAt time.Time
	ExpiresAt time.Time
}

// NextEighth computes the entitlement expiry for a grant at t: midnight on the
// 8th of the following calendar month (January of the next year for December
// grants). The billing cycle is fixed; expiry never depends on amount or
// course duration.
func NextEighth(t time.Time) time.Time {
	year, month := t.Year(), t.Month()
	if month == time.December {
		year++
		month = time.January
	} else {
		month++
	}
	return time.Date(year, month, 8, 0, 0, 0, 0, t.Location())
}

// Live reports whether the grant is still valid at the given instant.
func (e *Entitlement) Live(now time.Time) bool {
	return e.ExpiresAt.After(now)
}
