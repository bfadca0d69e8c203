package vectorindex

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	qdrant "github.com/qdrant/go-client/qdrant"
	"gorm.io/gorm"

	"github.com/nbaqa/hro/internal/types"
)

// Loader builds an Index snapshot at startup. Document ingestion and
// embedding are out of scope; a Loader only reads a pre-populated store.
type Loader interface {
	Load(ctx context.Context) (*Index, error)
}

// pgvectorChunkRow mirrors one row of the chunks table backing PostgresLoader.
type pgvectorChunkRow struct {
	ID       string          `gorm:"column:id"`
	Text     string          `gorm:"column:text"`
	Source   string          `gorm:"column:source"`
	Page     string          `gorm:"column:page"`
	DataType string          `gorm:"column:data_type"`
	Vector   pgvector.Vector `gorm:"column:embedding"`
}

func (pgvectorChunkRow) TableName() string { return "document_chunks" }

// PostgresLoader loads a snapshot from a pgvector-backed table.
type PostgresLoader struct {
	db *gorm.DB
}

// NewPostgresLoader builds a Loader backed by the document_chunks table.
func NewPostgresLoader(db *gorm.DB) *PostgresLoader {
	return &PostgresLoader{db: db}
}

func (l *PostgresLoader) Load(ctx context.Context) (*Index, error) {
	var rows []pgvectorChunkRow
	if err := l.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load chunk snapshot: %w", err)
	}

	vectors := make([][]float32, len(rows))
	chunks := make([]types.DocumentChunk, len(rows))
	for i, r := range rows {
		vectors[i] = r.Vector.Slice()
		chunks[i] = types.DocumentChunk{
			ID:     r.ID,
			Text:   r.Text,
			Source: r.Source,
			Page:   r.Page,
			Vector: vectors[i],
			Metadata: map[string]string{
				"data_type": r.DataType,
			},
		}
	}
	return New(vectors, chunks)
}

// QdrantLoader loads a snapshot by scrolling a Qdrant collection.
type QdrantLoader struct {
	client     *qdrant.Client
	collection string
	batchSize  uint32
}

// NewQdrantLoader builds a Loader backed by a Qdrant collection.
func NewQdrantLoader(client *qdrant.Client, collection string) *QdrantLoader {
	return &QdrantLoader{client: client, collection: collection, batchSize: 256}
}

func (l *QdrantLoader) Load(ctx context.Context) (*Index, error) {
	var vectors [][]float32
	var chunks []types.DocumentChunk

	var offset *qdrant.PointId
	for {
		limit := l.batchSize
		points, err := l.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: l.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll qdrant collection %s: %w", l.collection, err)
		}
		for _, pt := range points {
			vec := pt.GetVectors().GetVector().GetData()
			payload := pt.GetPayload()
			chunk := types.DocumentChunk{
				ID:     pointIDToString(pt.GetId()),
				Text:   payload["text"].GetStringValue(),
				Source: payload["source"].GetStringValue(),
				Page:   payload["page"].GetStringValue(),
				Vector: vec,
				Metadata: map[string]string{
					"data_type": payload["data_type"].GetStringValue(),
				},
			}
			vectors = append(vectors, vec)
			chunks = append(chunks, chunk)
		}
		if len(points) < int(l.batchSize) {
			break
		}
		offset = points[len(points)-1].GetId()
	}
	return New(vectors, chunks)
}

func pointIDToString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uid := id.GetUuid(); uid != "" {
		return uid
	}
	return fmt.Sprintf("%d", id.GetNum())
}
