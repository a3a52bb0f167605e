package dedup

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const firestoreCollection = "seen_ids"

// FirestoreStore backs the seen-set with Firestore, one document per product
// id, so identity is shared across worker instances and restarts.
type FirestoreStore struct {
	client *firestore.Client
}

type seenDoc struct {
	MarkedAt time.Time `firestore:"markedAt"`
}

func NewFirestoreStore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

var _ Store = (*FirestoreStore)(nil)

func (s *FirestoreStore) Seen(ctx context.Context, id string) (bool, error) {
	doc, err := s.client.Collection(firestoreCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to read seen id %s: %w", id, err)
	}
	return doc.Exists(), nil
}

func (s *FirestoreStore) MarkSeen(ctx context.Context, id string) error {
	_, err := s.client.Collection(firestoreCollection).Doc(id).Set(ctx, seenDoc{MarkedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to mark id %s: %w", id, err)
	}
	return nil
}

// MarkIfUnseen relies on Create failing when the document exists, which
// makes the check-and-mark a single atomic operation even with multiple
// workers sharing the project.
func (s *FirestoreStore) MarkIfUnseen(ctx context.Context, id string) error {
	_, err := s.client.Collection(firestoreCollection).Doc(id).Create(ctx, seenDoc{MarkedAt: time.Now()})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrAlreadySeen
		}
		return fmt.Errorf("failed to mark id %s: %w", id, err)
	}
	return nil
}

func (s *FirestoreStore) Count(ctx context.Context) (int, error) {
	snapshot, err := s.client.Collection(firestoreCollection).NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count seen ids: %w", err)
	}
	value, ok := snapshot["all"]
	if !ok {
		return 0, fmt.Errorf("count aggregation result missing 'all' key")
	}
	pbValue, ok := value.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count aggregation result has unexpected type %T", value)
	}
	return int(pbValue.GetIntegerValue()), nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
