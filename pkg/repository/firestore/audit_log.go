package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type auditLogDocument struct {
	ID         string                 `firestore:"id"`
	UserID     string                 `firestore:"user_id"`
	Action     string                 `firestore:"action"`
	Resource   string                 `firestore:"resource"`
	ResourceID string                 `firestore:"resource_id"`
	Details    map[string]interface{} `firestore:"details"`
	CreatedAt  time.Time              `firestore:"created_at"`
}

type auditLogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAuditLogRepository(client *firestore.Client) *auditLogRepository {
	return &auditLogRepository{client: client}
}

func (r *auditLogRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "audit_logs"))
}

func (r *auditLogRepository) Put(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		return goerr.New("audit log ID is required")
	}

	doc := &auditLogDocument{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Action:     string(entry.Action),
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    entry.Details,
		CreatedAt:  entry.CreatedAt,
	}
	if _, err := r.collection().Doc(entry.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put audit log", goerr.V("id", entry.ID))
	}
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	query := r.collection().OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	entries := make([]*model.AuditLog, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate audit logs")
		}

		var d auditLogDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal audit log", goerr.V("doc_id", doc.Ref.ID))
		}

		entries = append(entries, &model.AuditLog{
			ID:         d.ID,
			UserID:     d.UserID,
			Action:     model.AuditAction(d.Action),
			Resource:   d.Resource,
			ResourceID: d.ResourceID,
			Details:    d.Details,
			CreatedAt:  d.CreatedAt,
		})
	}

	return entries, nil
}
