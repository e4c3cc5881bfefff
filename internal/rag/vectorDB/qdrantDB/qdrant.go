package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/rag/vectorDB"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const upsertBatchSize = 100

// pointNamespace scopes the deterministic point ids derived from passage ids.
var pointNamespace = uuid.MustParse("6f1c7a52-4b0e-4d8e-9a35-2f7f3c1f8a11")

type ClientHolder struct {
	QObj       *qdrant.Client
	collection string
	logger     *logger_i.Logger
}

func NewQdrantReplica(settings config.MirrorSettings) (vectorDB.Replica, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.QdrantHost,
		Port:     settings.QdrantPort,
		APIKey:   settings.QdrantAPIKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}
	logger := logger_i.NewLogger("Qdrant")
	logger.Info("Qdrant mirror enabled", "host", settings.QdrantHost, "collection", settings.QdrantCollection)
	return &ClientHolder{QObj: client, collection: settings.QdrantCollection, logger: logger}, nil
}

func (db *ClientHolder) Close() error {
	db.logger.Info("Shutting down Qdrant")
	if err := db.QObj.Close(); err != nil {
		db.logger.Error("could not close Qdrant", "error", err)
		return err
	}
	return nil
}

func (db *ClientHolder) UpsertPassages(ctx context.Context, passages []commonModels.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	if err := createCollection(ctx, db.QObj, db.collection, uint64(len(passages[0].Embedding))); err != nil {
		return fmt.Errorf("qdrant collection: %w", err)
	}

	for start := 0; start < len(passages); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(passages))
		_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: db.collection,
			Points:         toPoints(passages[start:end]),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("qdrant upsert failed: %w", err)
		}
	}
	return nil
}

func (db *ClientHolder) DeleteDocument(ctx context.Context, docId string) error {
	exists, err := db.QObj.CollectionExists(ctx, db.collection)
	if err != nil || !exists {
		return err
	}
	_, err = db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("source_doc_id", docId)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Resync(ctx context.Context, passages []commonModels.Passage) error {
	exists, err := db.QObj.CollectionExists(ctx, db.collection)
	if err != nil {
		return err
	}
	if exists {
		if err := db.QObj.DeleteCollection(ctx, db.collection); err != nil {
			return fmt.Errorf("qdrant drop collection: %w", err)
		}
	}
	db.logger.Info("Resyncing qdrant mirror", "passages", len(passages))
	return db.UpsertPassages(ctx, passages)
}

// PointId maps a passage id onto the UUID qdrant requires. The mapping is stable across restarts.
func PointId(passageId string) string {
	return uuid.NewSHA1(pointNamespace, []byte(passageId)).String()
}

func toPoints(passages []commonModels.Passage) []*qdrant.PointStruct {
	points := make([]*qdrant.PointStruct, len(passages))
	for i, p := range passages {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointId(p.Id)),
			Vectors: qdrant.NewVectors(p.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       p.Text,
				"source_doc_id": p.DocumentId,
				"passage_id":    p.Id,
				"ordinal":       p.Ordinal,
				"start":         p.Start,
				"end":           p.End,
				"seq":           int64(p.Seq),
			}),
		}
	}
	return points
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}
	if dimension == 0 {
		return errors.New("cannot create a collection for empty vectors")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
