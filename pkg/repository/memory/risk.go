package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/interfaces"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
)

type riskRepository struct {
	mu        sync.RWMutex
	risks     map[int64]*model.Risk
	nextID    int64
	sequences map[string]int
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks:     make(map[int64]*model.Risk),
		nextID:    1,
		sequences: make(map[string]int),
	}
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := risk.Copy()
	created.ID = r.nextID
	created.Deleted = false
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.risks[created.ID] = created
	return created.Copy(), nil
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, exists := r.risks[id]
	if !exists || risk.Deleted {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return risk.Copy(), nil
}

func (r *riskRepository) List(ctx context.Context, opts ...interfaces.ListRiskOption) ([]*model.Risk, error) {
	cfg := interfaces.BuildListRiskConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	risks := make([]*model.Risk, 0, len(r.risks))
	for _, risk := range r.risks {
		if risk.Deleted || !cfg.Match(risk.Department) {
			continue
		}
		risks = append(risks, risk.Copy())
	}

	sort.Slice(risks, func(i, j int) bool {
		if !risks[i].CreatedAt.Equal(risks[j].CreatedAt) {
			return risks[i].CreatedAt.After(risks[j].CreatedAt)
		}
		return risks[i].ID > risks[j].ID
	})

	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.risks[risk.ID]
	if !exists || existing.Deleted {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", risk.ID))
	}

	updated := risk.Copy()
	updated.Deleted = false
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.UpdatedAt = time.Now().UTC()

	r.risks[updated.ID] = updated
	return updated.Copy(), nil
}

func (r *riskRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	risk, exists := r.risks[id]
	if !exists || risk.Deleted {
		return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}

	risk.Deleted = true
	risk.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *riskRepository) NextSequence(ctx context.Context, code string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.sequences[code]
	// stored risks may carry IDs that were not reserved here
	for _, risk := range r.risks {
		if seq, ok := model.ParseRiskIDSequence(risk.RiskID, code); ok && seq > next {
			next = seq
		}
	}
	next++

	r.sequences[code] = next
	return next, nil
}
