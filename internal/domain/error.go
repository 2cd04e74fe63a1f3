package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound               = errors.New("entity not found")
	ErrAlreadyExists          = errors.New("entity already exists")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrOperationFailed        = errors.New("operation failed")
	ErrInvalidExecContext     = errors.New("invalid executor context")
	ErrReadDatabaseRow        = errors.New("failed to read database row")
	ErrRateLimited            = errors.New("too many attempts")
	ErrActiveMembershipExists = errors.New("user already has an active membership")

	// Access-code lifecycle errors
	ErrDuplicateCode    = errors.New("access code already exists")
	ErrEmptyImport      = errors.New("import file contains no rows")
	ErrInvalidCount     = errors.New("requested count must be positive")
	ErrInsufficientPool = errors.New("not enough unassigned codes in batch")
	// ErrBatchesImported blocks deleting a user still named as the importer
	// of existing batches.
	ErrBatchesImported = errors.New("user is recorded as importer of existing batches")
)
