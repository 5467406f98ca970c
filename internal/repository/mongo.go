package repository

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yshulhan/customers/internal/model"
)

const (
	customersDb         = "customersdb"
	customersCollection = "customers"
	countersCollection  = "counters"
	customersCounterID  = "customers"
)

type mongoCustomerRepository struct {
	client *mongo.Client
}

// NewMongoCustomerRepository builds customer repository over mongodb
func NewMongoCustomerRepository(client *mongo.Client) CustomerRepository {
	return &mongoCustomerRepository{client: client}
}

func (r *mongoCustomerRepository) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	var c model.Customer
	if err := r.customers().FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoCustomerRepository) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var c model.Customer
	filter := bson.M{"email": email, "status": bson.M{"$ne": model.StatusDeleted}}
	if err := r.customers().FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoCustomerRepository) FindAll(ctx context.Context) ([]*model.Customer, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoCustomerRepository) FindByFilters(ctx context.Context, filters map[string]string) ([]*model.Customer, error) {
	query := bson.M{}
	for field, value := range filters {
		if field == "status" {
			query[field] = value
			continue
		}
		query[field] = primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
	}
	return r.find(ctx, query)
}

func (r *mongoCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}

	c.ID = id
	if _, err := r.customers().InsertOne(ctx, c); err != nil {
		return err
	}
	return nil
}

func (r *mongoCustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	if _, err := r.customers().ReplaceOne(ctx, bson.M{"_id": c.ID}, c); err != nil {
		return err
	}
	return nil
}

func (r *mongoCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.customers().DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	return nil
}

func (r *mongoCustomerRepository) find(ctx context.Context, query bson.M) ([]*model.Customer, error) {
	customers := make([]*model.Customer, 0)

	cursor, err := r.customers().Find(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// nextID emulates a database sequence through an atomic counter document, so
// both repository implementations assign integer ids
func (r *mongoCustomerRepository) nextID(ctx context.Context) (int64, error) {
	counters := r.client.Database(customersDb).Collection(countersCollection)

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	res := counters.FindOneAndUpdate(ctx, bson.M{"_id": customersCounterID}, bson.M{"$inc": bson.M{"seq": 1}}, opts)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&counter); err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *mongoCustomerRepository) customers() *mongo.Collection {
	return r.client.Database(customersDb).Collection(customersCollection)
}
