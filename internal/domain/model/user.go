package model

import (
	"strings"
	"time"

	"github.com/Randipa/lmcfinal/internal/domain"
)

type UserRole string

const (
	UserRoleStudent   UserRole = "student"
	UserRoleTeacher   UserRole = "teacher"
	UserRoleAssistant UserRole = "assistant"
	UserRoleAdmin     UserRole = "admin"
)

type User struct {
	ID           string // UUID
	FirstName    string
	LastName     string
	PhoneNumber  string // normalized local form (07xxxxxxxx)
	PasswordHash string
	Education    string
	Address      string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizePhoneNumber strips non-digits and accepts only the local ten-digit
// form starting with 07.
func NormalizePhoneNumber(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 10 || !strings.HasPrefix(digits, "07") {
		return "", domain.ErrInvalidPhoneNumber
	}
	return digits, nil
}

// InternationalPhone converts a normalized local number to the international
// form the messaging provider expects (94xxxxxxxxx).
func InternationalPhone(normalized string) string {
	if strings.HasPrefix(normalized, "0") {
		return "94" + normalized[1:]
	}
	return normalized
}
