package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements ProductStore on a Firestore collection.
// Filtering by category and ordering by createdAt needs a composite index on (category, subcategory, createdAt desc).
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	now        func() time.Time
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: collection,
		now:        time.Now,
	}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *FirestoreStore) FindByID(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		return nil, storeerrors.ErrProductNotFound
	}
	snap, err := s.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, storeerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %s: %w", storeerrors.ErrFailedToFindProduct, id, err)
	}
	return docToProduct(snap)
}

func (s *FirestoreStore) Find(ctx context.Context, filter Filter) ([]Product, error) {
	q := s.col().Query
	if filter.Category != "" {
		q = q.Where("category", "==", filter.Category)
	}
	if filter.Subcategory != "" {
		q = q.Where("subcategory", "==", filter.Subcategory)
	}
	q = q.OrderBy("createdAt", firestore.Desc)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	products := make([]Product, 0)
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", storeerrors.ErrFailedToFindProduct, err)
		}
		p, err := docToProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

func (s *FirestoreStore) Create(ctx context.Context, p Product) (*Product, error) {
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	ref := s.col().NewDoc()
	if _, err := ref.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %w", storeerrors.ErrCreateProduct, err)
	}
	p.ID = ref.ID
	return &p, nil
}

func (s *FirestoreStore) Update(ctx context.Context, p Product) (*Product, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, storeerrors.ErrProductNotFound
	}
	ref := s.col().Doc(p.ID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "name", Value: p.Name},
		{Path: "price", Value: p.Price},
		{Path: "category", Value: p.Category},
		{Path: "subcategory", Value: p.Subcategory},
		{Path: "description", Value: p.Description},
		{Path: "imageUrl", Value: p.ImageURL},
		{Path: "updatedAt", Value: s.now().UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, storeerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %s: %w", storeerrors.ErrUpdateProduct, p.ID, err)
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reload %s: %w", storeerrors.ErrUpdateProduct, p.ID, err)
	}
	return docToProduct(snap)
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return storeerrors.ErrProductNotFound
	}
	if _, err := s.col().Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return storeerrors.ErrProductNotFound
		}
		return fmt.Errorf("%w: %s: %w", storeerrors.ErrDeleteProduct, id, err)
	}
	return nil
}

func docToProduct(snap *firestore.DocumentSnapshot) (*Product, error) {
	var p Product
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", storeerrors.ErrFailedToFindProduct, snap.Ref.ID, err)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}
