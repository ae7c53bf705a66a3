package repositories

import (
	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"

	"record_consensus_system/internal/db/models"
)

type recordRepository struct {
	repository
}

type RecordRepository interface {
	GetOne(recordID int64) (*models.Record, error)
}

func NewRecordRepository(db *pg.DB) RecordRepository {
	return &recordRepository{
		repository: repository{
			db: db,
		},
	}
}

func (r *recordRepository) GetOne(recordID int64) (*models.Record, error) {
	record := &models.Record{}

	err := r.db.Model(record).
		Where("id = ?", recordID).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}
