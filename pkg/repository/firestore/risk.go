package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/interfaces"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type riskDocument struct {
	ID           int64     `firestore:"id"`
	RiskID       string    `firestore:"risk_id"`
	Title        string    `firestore:"title"`
	RiskType     string    `firestore:"risk_type"`
	Category     string    `firestore:"category"`
	BusinessUnit string    `firestore:"business_unit"`
	Department   string    `firestore:"department"`
	Status       string    `firestore:"status"`
	OwnerID      string    `firestore:"owner_id"`
	DateReported time.Time `firestore:"date_reported"`

	Description    string `firestore:"description"`
	MitigationPlan string `firestore:"mitigation_plan"`

	Likelihood           float64  `firestore:"likelihood"`
	Impact               float64  `firestore:"impact"`
	ControlEffectiveness *float64 `firestore:"control_effectiveness"`

	InherentRisk        float64  `firestore:"inherent_risk"`
	InherentMatrixValue int      `firestore:"inherent_matrix_value"`
	InherentRating      string   `firestore:"inherent_rating"`
	ResidualRisk        *float64 `firestore:"residual_risk"`
	ResidualRating      string   `firestore:"residual_rating"`
	RiskScore           float64  `firestore:"risk_score"`

	Deleted   bool      `firestore:"deleted"`
	CreatedBy string    `firestore:"created_by"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func toRiskDocument(r *model.Risk) *riskDocument {
	return &riskDocument{
		ID:                   r.ID,
		RiskID:               r.RiskID,
		Title:                r.Title,
		RiskType:             r.RiskType,
		Category:             r.Category,
		BusinessUnit:         r.BusinessUnit,
		Department:           r.Department,
		Status:               string(r.Status),
		OwnerID:              r.OwnerID,
		DateReported:         r.DateReported,
		Description:          r.Description,
		MitigationPlan:       r.MitigationPlan,
		Likelihood:           r.Likelihood,
		Impact:               r.Impact,
		ControlEffectiveness: r.ControlEffectiveness,
		InherentRisk:         r.InherentRisk,
		InherentMatrixValue:  r.InherentMatrixValue,
		InherentRating:       string(r.InherentRating),
		ResidualRisk:         r.ResidualRisk,
		ResidualRating:       string(r.ResidualRating),
		RiskScore:            r.RiskScore,
		Deleted:              r.Deleted,
		CreatedBy:            r.CreatedBy,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func (d *riskDocument) toModel() *model.Risk {
	r := &model.Risk{
		ID:                   d.ID,
		RiskID:               d.RiskID,
		Title:                d.Title,
		RiskType:             d.RiskType,
		Category:             d.Category,
		BusinessUnit:         d.BusinessUnit,
		Department:           d.Department,
		Status:               types.RiskStatus(d.Status),
		OwnerID:              d.OwnerID,
		DateReported:         d.DateReported,
		Description:          d.Description,
		MitigationPlan:       d.MitigationPlan,
		Likelihood:           d.Likelihood,
		Impact:               d.Impact,
		ControlEffectiveness: d.ControlEffectiveness,
		InherentRisk:         d.InherentRisk,
		InherentMatrixValue:  d.InherentMatrixValue,
		InherentRating:       types.Rating(d.InherentRating),
		ResidualRisk:         d.ResidualRisk,
		ResidualRating:       types.Rating(d.ResidualRating),
		RiskScore:            d.RiskScore,
		Deleted:              d.Deleted,
		CreatedBy:            d.CreatedBy,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
	return r.Copy()
}

type riskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskRepository(client *firestore.Client) *riskRepository {
	return &riskRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskRepository) risksCollection() string {
	return collectionName(r.collectionPrefix, "risks")
}

func (r *riskRepository) counterCollection() string {
	return collectionName(r.collectionPrefix, "counters")
}

func (r *riskRepository) riskDoc(id int64) *firestore.DocumentRef {
	return r.client.Collection(r.risksCollection()).Doc(fmt.Sprintf("%d", id))
}

// increment atomically bumps the counter document and returns the new value
func (r *riskRepository) increment(ctx context.Context, counterDoc string) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(counterDoc)

	var next int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				next = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": next,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}
		current, ok := currentValue.(int64)
		if !ok {
			return goerr.New("unexpected counter value type", goerr.V("value", currentValue))
		}

		next = current + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: next},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to increment counter", goerr.V("counter", counterDoc))
	}

	return next, nil
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	id, err := r.increment(ctx, "risk_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := risk.Copy()
	created.ID = id
	created.Deleted = false
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.riskDoc(id).Set(ctx, toRiskDocument(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V("id", id))
	}

	return created, nil
}

func (r *riskRepository) get(ctx context.Context, id int64) (*riskDocument, error) {
	doc, err := r.riskDoc(id).Get(ctx)
	return decodeRisk(doc, err, id)
}

// decodeRisk turns a fetched snapshot into a live risk document. Missing
// and soft deleted risks are both ErrNotFound.
func decodeRisk(doc *firestore.DocumentSnapshot, err error, id int64) (*riskDocument, error) {
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", id))
	}
	if riskDoc.Deleted {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
	}

	return &riskDoc, nil
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	riskDoc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return riskDoc.toModel(), nil
}

func (r *riskRepository) List(ctx context.Context, opts ...interfaces.ListRiskOption) ([]*model.Risk, error) {
	cfg := interfaces.BuildListRiskConfig(opts...)

	// served by the composite indexes declared in `riskreg migrate`
	query := r.client.Collection(r.risksCollection()).Where("deleted", "==", false)
	if dept := cfg.Department(); dept != nil {
		query = query.Where("department", "==", *dept)
	}
	query = query.OrderBy("created_at", firestore.Desc).OrderBy("id", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	risks := make([]*model.Risk, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("doc_id", doc.Ref.ID))
		}
		if riskDoc.Deleted {
			continue
		}

		risks = append(risks, riskDoc.toModel())
	}

	return risks, nil
}

// Update replaces the risk in a transaction so a concurrent Delete cannot be
// undone by a stale read
func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	ref := r.riskDoc(risk.ID)

	var updated *model.Risk
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		existing, err := decodeRisk(doc, err, risk.ID)
		if err != nil {
			return err
		}

		updated = risk.Copy()
		updated.Deleted = false
		updated.CreatedAt = existing.CreatedAt
		updated.CreatedBy = existing.CreatedBy
		updated.UpdatedAt = time.Now().UTC()

		return tx.Set(ref, toRiskDocument(updated))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V("id", risk.ID))
	}

	return updated, nil
}

func (r *riskRepository) Delete(ctx context.Context, id int64) error {
	ref := r.riskDoc(id)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if _, err := decodeRisk(doc, err, id); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "deleted", Value: true},
			{Path: "updated_at", Value: time.Now().UTC()},
		})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V("id", id))
	}

	return nil
}

// NextSequence bumps the per-code counter past every stored risk ID of the
// code, soft deleted ones included, so IDs written by other means are never
// handed out again
func (r *riskRepository) NextSequence(ctx context.Context, code string) (int, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc("risk_seq_" + code)
	// "." sorts right after "-", so this covers every "<code>-..." ID
	stored := r.client.Collection(r.risksCollection()).
		Where("risk_id", ">=", code+"-").
		Where("risk_id", "<", code+".")

	var next int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current int64
		doc, err := tx.Get(counterRef)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return goerr.Wrap(err, "failed to get counter")
		default:
			value, err := doc.DataAt("value")
			if err != nil {
				return goerr.Wrap(err, "failed to get counter value")
			}
			v, ok := value.(int64)
			if !ok {
				return goerr.New("unexpected counter value type", goerr.V("value", value))
			}
			current = v
		}

		docs, err := tx.Documents(stored).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query stored risk IDs")
		}
		for _, d := range docs {
			riskID, err := d.DataAt("risk_id")
			if err != nil {
				continue
			}
			id, _ := riskID.(string)
			if seq, ok := model.ParseRiskIDSequence(id, code); ok && int64(seq) > current {
				current = int64(seq)
			}
		}

		next = current + 1
		return tx.Set(counterRef, map[string]interface{}{"value": next})
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to reserve risk sequence", goerr.V("code", code))
	}
	return int(next), nil
}
