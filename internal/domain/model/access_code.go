package model

import (
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"

	"github.com/google/uuid"
)

// AccessCode is a single-use credential for the partner VR service.
// The code string is globally unique and immutable; after creation the only
// mutable fields are IsUsed, AssignedTo and AssignedAt.
type AccessCode struct {
	ID          string
	Code        string
	BatchID     string
	IsUsed      bool
	AssignedTo  *string    // nil while the code sits in the unassigned pool
	AssignedAt  *time.Time // set exactly when AssignedTo becomes non-nil
	ExpiresAt   time.Time  // copied from the owning batch at import time
	EmailSent   bool
	EmailSentAt *time.Time
	CreatedAt   time.Time
}

// NewAccessCode constructs an unassigned code belonging to a batch. The
// expiry is the batch expiry frozen at creation, never re-derived later.
func NewAccessCode(code, batchID string, expiresAt time.Time) (*AccessCode, error) {
	if code == "" || batchID == "" || expiresAt.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &AccessCode{
		ID:        uuid.NewString(),
		Code:      code,
		BatchID:   batchID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

func (c *AccessCode) IsZero() bool     { return c == nil || c.ID == "" }
func (c *AccessCode) IsAssigned() bool { return c != nil && c.AssignedTo != nil }

// Assignable reports whether the code is still eligible for a claim.
func (c *AccessCode) Assignable() bool {
	return c != nil && c.AssignedTo == nil && !c.IsUsed
}

// Assign transitions the code from the unassigned pool to a user.
func (c *AccessCode) Assign(userID string, at time.Time) error {
	if userID == "" {
		return domain.ErrInvalidArgument
	}
	if !c.Assignable() {
		return domain.ErrAlreadyExists
	}
	c.AssignedTo = &userID
	c.AssignedAt = &at
	return nil
}

// Unassign returns the code to the pool and clears the assignment timestamp,
// keeping the AssignedAt-iff-AssignedTo invariant.
func (c *AccessCode) Unassign() {
	c.AssignedTo = nil
	c.AssignedAt = nil
}
