package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
)

type stagingRepository struct {
	mu   sync.RWMutex
	rows map[string]*model.StagingRow
}

func newStagingRepository() *stagingRepository {
	return &stagingRepository{
		rows: make(map[string]*model.StagingRow),
	}
}

func (r *stagingRepository) Put(ctx context.Context, rows []*model.StagingRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		if row.ID == "" {
			return goerr.New("staging row ID is required", goerr.V("row_number", row.RowNumber))
		}
	}
	for _, row := range rows {
		r.rows[row.ID] = row.Copy()
	}
	return nil
}

func (r *stagingRepository) List(ctx context.Context) ([]*model.StagingRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]*model.StagingRow, 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, row.Copy())
	}
	sortStagingRows(rows)
	return rows, nil
}

func (r *stagingRepository) Delete(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.rows, id)
	}
	return nil
}

func (r *stagingRepository) Clear(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.rows)
	r.rows = make(map[string]*model.StagingRow)
	return n, nil
}

func sortStagingRows(rows []*model.StagingRow) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		if rows[i].SourceFile != rows[j].SourceFile {
			return rows[i].SourceFile < rows[j].SourceFile
		}
		return rows[i].RowNumber < rows[j].RowNumber
	})
}
