package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
)

// Actor is the verified caller identity the auth collaborator supplies with
// every request. The engine only needs the id, role and branch.
type Actor struct {
	EmployeeID uuid.UUID
	Role       string
	BranchID   uuid.UUID
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

// translate maps persistence errors onto the engine taxonomy. Lock waits
// that time out, deadlock aborts and expired transaction deadlines all
// surface as the retryable conflict, never as a hang.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case repository.IsUniqueViolation(err),
		repository.IsLockContention(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	default:
		return err
	}
}
