package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/domain/interfaces"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
	"github.com/secmon-lab/riskreg/pkg/repository/firestore"
	"github.com/secmon-lab/riskreg/pkg/repository/memory"
)

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}

func newRisk(dept, riskID string) *model.Risk {
	ce := 40.0
	residual := 30.0
	return &model.Risk{
		RiskID:               riskID,
		Title:                "Vendor outage",
		RiskType:             "Third party",
		Category:             "Operational",
		BusinessUnit:         "Retail",
		Department:           dept,
		Status:               types.RiskStatusOpen,
		DateReported:         time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Likelihood:           50,
		Impact:               60,
		ControlEffectiveness: &ce,
		InherentRisk:         50,
		InherentMatrixValue:  12,
		InherentRating:       types.RatingMedium,
		ResidualRisk:         &residual,
		ResidualRating:       types.RatingLow,
		RiskScore:            residual,
		CreatedBy:            "alice",
	}
}

func runRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns incrementing IDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created1, err := repo.Risk().Create(ctx, newRisk("Finance Office", "FO-01"))
		gt.NoError(t, err).Required()
		gt.V(t, created1.ID).Equal(int64(1))
		gt.V(t, created1.RiskID).Equal("FO-01")
		gt.B(t, created1.CreatedAt.IsZero()).False()
		gt.B(t, created1.UpdatedAt.IsZero()).False()

		created2, err := repo.Risk().Create(ctx, newRisk("Finance Office", "FO-02"))
		gt.NoError(t, err).Required()
		gt.V(t, created2.ID).Equal(int64(2))
	})

	t.Run("Get returns every stored field", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, newRisk("Legal Service", "LS-01"))
		gt.NoError(t, err).Required()

		got, err := repo.Risk().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.V(t, got.RiskID).Equal("LS-01")
		gt.V(t, got.Department).Equal("Legal Service")
		gt.V(t, got.Status).Equal(types.RiskStatusOpen)
		gt.V(t, got.InherentRating).Equal(types.RatingMedium)
		gt.V(t, got.ResidualRating).Equal(types.RatingLow)
		gt.V(t, *got.ControlEffectiveness).Equal(40.0)
		gt.V(t, *got.ResidualRisk).Equal(30.0)
		gt.V(t, got.CreatedBy).Equal("alice")
		gt.B(t, got.DateReported.Equal(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))).True()
	})

	t.Run("Get of missing risk is not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Risk().Get(context.Background(), 99999)
		gt.B(t, isNotFound(err)).True()
	})

	t.Run("returned risks are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, newRisk("Finance Office", "FO-01"))
		gt.NoError(t, err).Required()
		*created.ControlEffectiveness = 99
		created.Title = "mutated"

		got, err := repo.Risk().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.V(t, *got.ControlEffectiveness).Equal(40.0)
		gt.V(t, got.Title).Equal("Vendor outage")
	})

	t.Run("List filters by department and hides deleted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a, err := repo.Risk().Create(ctx, newRisk("Finance Office", "FO-01"))
		gt.NoError(t, err).Required()
		_, err = repo.Risk().Create(ctx, newRisk("Legal Service", "LS-01"))
		gt.NoError(t, err).Required()
		c, err := repo.Risk().Create(ctx, newRisk("Finance Office", "FO-02"))
		gt.NoError(t, err).Required()

		all, err := repo.Risk().List(ctx)
		gt.NoError(t, err).Required()
		gt.A(t, all).Length(3)
		gt.V(t, all[0].ID).Equal(c.ID)

		finance, err := repo.Risk().List(ctx, interfaces.WithDepartment("Finance Office"))
		gt.NoError(t, err).Required()
		gt.A(t, finance).Length(2)
		for _, r := range finance {
			gt.V(t, r.Department).Equal("Finance Office")
		}

		gt.NoError(t, repo.Risk().Delete(ctx, a.ID)).Required()
		finance, err = repo.Risk().List(ctx, interfaces.WithDepartment("Finance Office"))
		gt.NoError(t, err).Required()
		gt.A(t, finance).Length(1)
		gt.V(t, finance[0].ID).Equal(c.ID)
	})

	t.Run("Update keeps creation metadata", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, newRisk("Finance Office", "FO-01"))
		gt.NoError(t, err).Required()

		time.Sleep(10 * time.Millisecond)
		changed := created.Copy()
		changed.Title = "Renamed"
		changed.Status = types.RiskStatusMitigating
		changed.ControlEffectiveness = nil
		changed.ResidualRisk = nil
		changed.CreatedBy = "mallory"

		updated, err := repo.Risk().Update(ctx, changed)
		gt.NoError(t, err).Required()
		gt.V(t, updated.Title).Equal("Renamed")
		gt.V(t, updated.CreatedBy).Equal("alice")
		gt.B(t, updated.UpdatedAt.After(created.UpdatedAt)).True()

		got, err := repo.Risk().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.V(t, got.Status).Equal(types.RiskStatusMitigating)
		gt.V(t, got.ControlEffectiveness).Nil()
		gt.V(t, got.ResidualRisk).Nil()
	})

	t.Run("Update of missing risk is not found", func(t *testing.T) {
		repo := newRepo(t)
		r := newRisk("Finance Office", "FO-01")
		r.ID = 99999
		_, err := repo.Risk().Update(context.Background(), r)
		gt.B(t, isNotFound(err)).True()
	})

	t.Run("Delete is soft and final", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Risk().Create(ctx, newRisk("Finance Office", "FO-01"))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Risk().Delete(ctx, created.ID)).Required()

		_, err = repo.Risk().Get(ctx, created.ID)
		gt.B(t, isNotFound(err)).True()
		gt.B(t, isNotFound(repo.Risk().Delete(ctx, created.ID))).True()

		_, err = repo.Risk().Update(ctx, created)
		gt.B(t, isNotFound(err)).True()
	})

	t.Run("NextSequence increments per department code", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		n, err := repo.Risk().NextSequence(ctx, "CR")
		gt.NoError(t, err).Required()
		gt.V(t, n).Equal(1)

		n, err = repo.Risk().NextSequence(ctx, "CR")
		gt.NoError(t, err).Required()
		gt.V(t, n).Equal(2)

		n, err = repo.Risk().NextSequence(ctx, "LS")
		gt.NoError(t, err).Required()
		gt.V(t, n).Equal(1)
	})

	t.Run("NextSequence never reuses numbers of deleted risks", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		seq, err := repo.Risk().NextSequence(ctx, "FO")
		gt.NoError(t, err).Required()
		created, err := repo.Risk().Create(ctx, newRisk("Finance Office", model.FormatRiskID("FO", seq)))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Risk().Delete(ctx, created.ID)).Required()

		next, err := repo.Risk().NextSequence(ctx, "FO")
		gt.NoError(t, err).Required()
		gt.V(t, next).Equal(seq + 1)
	})

	t.Run("NextSequence skips IDs already stored", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Risk().Create(ctx, newRisk("Finance Office", "FO-07"))
		gt.NoError(t, err).Required()
		deleted, err := repo.Risk().Create(ctx, newRisk("Finance Office", "FO-12"))
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Risk().Delete(ctx, deleted.ID)).Required()
		// other codes sharing a prefix do not count
		_, err = repo.Risk().Create(ctx, newRisk("Food Operations", "FOX-30"))
		gt.NoError(t, err).Required()

		next, err := repo.Risk().NextSequence(ctx, "FO")
		gt.NoError(t, err).Required()
		gt.V(t, next).Equal(13)

		next, err = repo.Risk().NextSequence(ctx, "FO")
		gt.NoError(t, err).Required()
		gt.V(t, next).Equal(14)
	})

	t.Run("NextSequence is safe for concurrent use", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const n = 10
		var (
			mu   sync.Mutex
			wg   sync.WaitGroup
			seen = make(map[int]bool)
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				seq, err := repo.Risk().NextSequence(ctx, "DB")
				gt.NoError(t, err)
				mu.Lock()
				seen[seq] = true
				mu.Unlock()
			}()
		}
		wg.Wait()
		gt.V(t, len(seen)).Equal(n)
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestMemoryRiskRepository(t *testing.T) {
	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreRiskRepository(t *testing.T) {
	runRepositoryTest(t, newFirestoreRepository)
}
