package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"qancha/internal/models"
)

const productsCollection = "products"

var ErrNotFound = errors.New("product not found")

// Counter names the increment-only fields of a product.
type Counter string

const (
	CounterViews    Counter = "views"
	CounterForwards Counter = "forwards"
)

// ListFilter narrows the public listing. Zero values mean "no constraint".
type ListFilter struct {
	Search string
	Type   models.ProductType
	Page   int64
	Limit  int64
}

// ProductFields is the editable part of a product. Updates overwrite all of
// it; counters, id and createdAt are never part of an edit.
type ProductFields struct {
	Name              string
	LowestPrice       float64
	HighestPrice      float64
	Type              models.ProductType
	Image             string
	Description       string
	IsSellerAvailable bool
	PhoneNumber       string
}

type ProductStore struct {
	db *mongo.Database
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) collection() *mongo.Collection {
	return s.db.Collection(productsCollection)
}

func (s *ProductStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// FindByID performs a single read. Ids that are not valid object ids can
// never exist and are reported as ErrNotFound without touching the store.
func (s *ProductStore) FindByID(ctx context.Context, id string) (models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return models.Product{}, ErrNotFound
	}

	var product models.Product
	err = s.collection().FindOne(ctx, bson.M{"_id": objectID}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("find product %s: %w", objectID.Hex(), err)
	}
	return product, nil
}

func listQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	return query
}

// List returns one page of products, newest first, and the total number of
// matches across all pages.
func (s *ProductStore) List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error) {
	query := listQuery(filter)

	total, err := s.collection().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		findOptions.SetSkip((page - 1) * filter.Limit).SetLimit(filter.Limit)
	}

	cursor, err := s.collection().Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

// Create inserts a new product with zeroed counters and a fresh createdAt.
func (s *ProductStore) Create(ctx context.Context, fields ProductFields) (models.Product, error) {
	product := models.Product{
		ID:                primitive.NewObjectID(),
		Name:              fields.Name,
		LowestPrice:       fields.LowestPrice,
		HighestPrice:      fields.HighestPrice,
		Type:              fields.Type,
		Image:             fields.Image,
		Description:       fields.Description,
		IsSellerAvailable: fields.IsSellerAvailable,
		PhoneNumber:       fields.PhoneNumber,
		CreatedAt:         models.Now(),
	}

	if _, err := s.collection().InsertOne(ctx, product); err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

func updateDocument(fields ProductFields) bson.M {
	set := bson.M{
		"name":              fields.Name,
		"lowestPrice":       fields.LowestPrice,
		"highestPrice":      fields.HighestPrice,
		"isSellerAvailable": fields.IsSellerAvailable,
	}
	unset := bson.M{}

	optional := map[string]string{
		"type":        string(fields.Type),
		"image":       fields.Image,
		"description": fields.Description,
		"phoneNumber": fields.PhoneNumber,
	}
	for key, value := range optional {
		if value == "" {
			unset[key] = ""
		} else {
			set[key] = value
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

// Update overwrites every editable field and returns the stored document.
func (s *ProductStore) Update(ctx context.Context, id string, fields ProductFields) (models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return models.Product{}, ErrNotFound
	}

	var updated models.Product
	err = s.collection().FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		updateDocument(fields),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("update product %s: %w", objectID.Hex(), err)
	}
	return updated, nil
}

// Delete removes the product and returns what was deleted so the caller can
// clean up its image.
func (s *ProductStore) Delete(ctx context.Context, id string) (models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return models.Product{}, ErrNotFound
	}

	var deleted models.Product
	err = s.collection().FindOneAndDelete(ctx, bson.M{"_id": objectID}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("delete product %s: %w", objectID.Hex(), err)
	}
	return deleted, nil
}

func incrementDocument(counter Counter) bson.M {
	return bson.M{"$inc": bson.M{string(counter): int64(1)}}
}

// Increment bumps a counter by one with the server-side $inc operator, so
// concurrent viewers never lose updates. It returns the new value.
func (s *ProductStore) Increment(ctx context.Context, id string, counter Counter) (int64, error) {
	if counter != CounterViews && counter != CounterForwards {
		return 0, fmt.Errorf("unknown counter %q", counter)
	}

	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return 0, ErrNotFound
	}

	var updated models.Product
	err = s.collection().FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		incrementDocument(counter),
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{string(counter): 1}),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment %s on %s: %w", counter, objectID.Hex(), err)
	}

	if counter == CounterViews {
		return updated.Views, nil
	}
	return updated.Forwards, nil
}
