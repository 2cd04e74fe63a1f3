package model

import (
	"crypto/rand"
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"

	"github.com/oklog/ulid/v2"
)

// CodeBatch groups access codes imported together from one spreadsheet.
// TotalCodes must always equal the number of codes persisted for the batch;
// AssignedCodes is maintained incrementally on every (un)assignment.
type CodeBatch struct {
	ID            string
	Name          string
	Description   string
	ImportedBy    string
	ImportedAt    time.Time
	TotalCodes    int
	AssignedCodes int
	ExpiryDate    time.Time
	SourceFile    string
	IsActive      bool
}

// NewCodeBatch validates metadata and constructs a batch. Batch IDs are
// ULIDs so listings sort by import time without an extra column.
func NewCodeBatch(name, description, importedBy string, expiryDate time.Time) (*CodeBatch, error) {
	if name == "" || importedBy == "" || expiryDate.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &CodeBatch{
		ID:          ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Name:        name,
		Description: description,
		ImportedBy:  importedBy,
		ImportedAt:  now,
		ExpiryDate:  expiryDate,
		IsActive:    true,
	}, nil
}

func (b *CodeBatch) IsZero() bool { return b == nil || b.ID == "" }

// Available is the derived size of the unassigned pool.
func (b *CodeBatch) Available() int { return b.TotalCodes - b.AssignedCodes }
