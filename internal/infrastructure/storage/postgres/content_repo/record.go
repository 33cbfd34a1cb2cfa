package content_repo

import (
	"cgl/internal/domain/record"
	"cgl/internal/infrastructure/storage/postgres"
)

const recordTable = "records"

// RecordRepo implements record.Repository.
type RecordRepo struct {
	*BaseContentRepo[*record.Record]
}

// NewRecordRepo creates a new record repository.
func NewRecordRepo(txm *postgres.TxManager) *RecordRepo {
	return &RecordRepo{
		BaseContentRepo: NewBaseContentRepo(
			txm,
			recordTable,
			postgres.ExtractDBColumns[record.Record](),
			func() *record.Record { return &record.Record{} },
			"book_id",
			"content",
		),
	}
}

var _ record.Repository = (*RecordRepo)(nil)
