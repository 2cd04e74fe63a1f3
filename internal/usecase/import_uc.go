package usecase

import (
	"context"
	"io"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/adapter"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/logging"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/metrics"
)

// Compile-time check
var _ ImportUseCase = (*importUC)(nil)

// ImportRequest carries the batch metadata entered alongside the upload.
type ImportRequest struct {
	Name        string
	Description string
	SourceFile  string
	ExpiryDate  time.Time
	ImportedBy  string
}

// ImportResult reports what happened to every row of the upload. Rejected
// rows never abort the import; they are returned so the admin can fix the
// spreadsheet and re-upload.
type ImportResult struct {
	Batch       *model.CodeBatch
	Imported    int
	Duplicates  []string // code values already present, in file order
	SkippedRows int      // rows with an empty code cell
}

type ImportUseCase interface {
	// ImportCodes parses the uploaded spreadsheet and persists one new batch
	// with every acceptable code. A batch whose rows were all rejected is
	// still persisted, with zero codes, so the upload stays auditable.
	ImportCodes(ctx context.Context, req ImportRequest, file io.Reader) (*ImportResult, error)
}

type importUC struct {
	reader  adapter.SpreadsheetReader
	batches repository.CodeBatchRepository
	codes   repository.AccessCodeRepository
	tm      repository.TransactionManager
	cache   DashboardCache
	log     *zerolog.Logger
}

func NewImportUseCase(
	reader adapter.SpreadsheetReader,
	batches repository.CodeBatchRepository,
	codes repository.AccessCodeRepository,
	tm repository.TransactionManager,
	cache DashboardCache,
	logger *zerolog.Logger,
) *importUC {
	return &importUC{reader: reader, batches: batches, codes: codes, tm: tm, cache: cache, log: logger}
}

func (uc *importUC) ImportCodes(ctx context.Context, req ImportRequest, file io.Reader) (*ImportResult, error) {
	defer logging.TraceDuration(uc.log, "ImportCodes")()

	if req.ExpiryDate.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	batch, err := model.NewCodeBatch(req.Name, req.Description, req.ImportedBy, req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	batch.SourceFile = req.SourceFile

	rows, err := uc.reader.Rows(file)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrEmptyImport
	}

	res := &ImportResult{Batch: batch}
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Raw row count first; corrected to the accepted count below so the
		// batch never claims codes that were rejected.
		batch.TotalCodes = len(rows)
		if err := uc.batches.Save(ctx, tx, batch); err != nil {
			return err
		}

		seen := make(map[string]struct{}, len(rows))
		var accepted []*model.AccessCode
		for _, row := range rows {
			value := row["code"]
			if value == "" {
				res.SkippedRows++
				continue
			}
			if _, dup := seen[value]; dup {
				res.Duplicates = append(res.Duplicates, value)
				continue
			}
			seen[value] = struct{}{}

			// Codes are unique across every batch, not just this one.
			exists, err := uc.codes.ExistsByCode(ctx, tx, value)
			if err != nil {
				return err
			}
			if exists {
				res.Duplicates = append(res.Duplicates, value)
				continue
			}

			code, err := model.NewAccessCode(value, batch.ID, batch.ExpiryDate)
			if err != nil {
				return err
			}
			accepted = append(accepted, code)
		}

		if len(accepted) > 0 {
			if err := uc.codes.BulkInsert(ctx, tx, accepted); err != nil {
				return err
			}
		}
		res.Imported = len(accepted)
		batch.TotalCodes = len(accepted)
		return uc.batches.SetTotal(ctx, tx, batch.ID, len(accepted))
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCodesImported(res.Imported)
	metrics.IncCodesRejected("duplicate", len(res.Duplicates))
	metrics.IncCodesRejected("missing_code", res.SkippedRows)
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("stats cache invalidation failed")
		}
	}

	uc.log.Info().
		Str("batch_id", batch.ID).
		Int("imported", res.Imported).
		Int("duplicates", len(res.Duplicates)).
		Int("skipped", res.SkippedRows).
		Msg("code batch imported")
	return res, nil
}
