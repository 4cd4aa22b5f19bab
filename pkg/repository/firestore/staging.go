package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type stagingErrorDocument struct {
	Row     int    `firestore:"row"`
	Field   string `firestore:"field"`
	Message string `firestore:"message"`
	Value   string `firestore:"value"`
}

type stagingDocument struct {
	ID         string                 `firestore:"id"`
	SourceFile string                 `firestore:"source_file"`
	RowNumber  int                    `firestore:"row_number"`
	Raw        map[string]string      `firestore:"raw"`
	Errors     []stagingErrorDocument `firestore:"errors"`
	UploadedBy string                 `firestore:"uploaded_by"`
	CreatedAt  time.Time              `firestore:"created_at"`
}

func toStagingDocument(row *model.StagingRow) *stagingDocument {
	doc := &stagingDocument{
		ID:         row.ID,
		SourceFile: row.SourceFile,
		RowNumber:  row.RowNumber,
		Raw:        row.Raw,
		Errors:     make([]stagingErrorDocument, 0, len(row.Errors)),
		UploadedBy: row.UploadedBy,
		CreatedAt:  row.CreatedAt,
	}
	for _, e := range row.Errors {
		doc.Errors = append(doc.Errors, stagingErrorDocument(e))
	}
	return doc
}

func (d *stagingDocument) toModel() *model.StagingRow {
	row := &model.StagingRow{
		ID:         d.ID,
		SourceFile: d.SourceFile,
		RowNumber:  d.RowNumber,
		Raw:        d.Raw,
		UploadedBy: d.UploadedBy,
		CreatedAt:  d.CreatedAt,
	}
	if row.Raw == nil {
		row.Raw = map[string]string{}
	}
	for _, e := range d.Errors {
		row.Errors = append(row.Errors, model.StagingError(e))
	}
	return row
}

type stagingRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newStagingRepository(client *firestore.Client) *stagingRepository {
	return &stagingRepository{client: client}
}

func (r *stagingRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "staging"))
}

func (r *stagingRepository) Put(ctx context.Context, rows []*model.StagingRow) error {
	for _, row := range rows {
		if row.ID == "" {
			return goerr.New("staging row ID is required", goerr.V("row_number", row.RowNumber))
		}
	}

	bulkWriter := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(rows))
	for _, row := range rows {
		job, err := bulkWriter.Set(r.collection().Doc(row.ID), toStagingDocument(row))
		if err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to enqueue staging row", goerr.V("id", row.ID))
		}
		jobs = append(jobs, job)
	}
	bulkWriter.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to put staging row", goerr.V("id", rows[i].ID))
		}
	}
	return nil
}

func (r *stagingRepository) List(ctx context.Context) ([]*model.StagingRow, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	rows := make([]*model.StagingRow, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate staging rows")
		}

		var d stagingDocument
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal staging row", goerr.V("doc_id", doc.Ref.ID))
		}
		rows = append(rows, d.toModel())
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		if rows[i].SourceFile != rows[j].SourceFile {
			return rows[i].SourceFile < rows[j].SourceFile
		}
		return rows[i].RowNumber < rows[j].RowNumber
	})
	return rows, nil
}

func (r *stagingRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	bulkWriter := r.client.BulkWriter(ctx)
	for _, id := range ids {
		if _, err := bulkWriter.Delete(r.collection().Doc(id)); err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to delete staging row", goerr.V("id", id))
		}
	}
	bulkWriter.End()
	return nil
}

func (r *stagingRepository) Clear(ctx context.Context) (int, error) {
	const batchSize = 500
	totalDeleted := 0

	for {
		iter := r.collection().Limit(batchSize).Documents(ctx)
		bulkWriter := r.client.BulkWriter(ctx)
		count := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to iterate staging rows for deletion")
			}

			if _, err := bulkWriter.Delete(doc.Ref); err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to delete staging row")
			}
			count++
		}
		iter.Stop()
		bulkWriter.End()

		totalDeleted += count
		if count < batchSize {
			break
		}
	}

	return totalDeleted, nil
}
