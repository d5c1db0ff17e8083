package repository

import (
	"context"

	"github.com/Randipa/lmcfinal/internal/domain/model"
)

// UserRepository is the payment core's window into account storage. Reads
// serve lookups for receipts and authorization; Save exists only for the lazy
// account creation performed by inquiry approval and OTP registration.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByPhone(ctx context.Context, tx Tx, phone string) (*model.User, error)
	ListAdmins(ctx context.Context, tx Tx) ([]*model.User, error)
}

// CourseRepository is a read-only port into the catalog.
type CourseRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Course, error)
}
