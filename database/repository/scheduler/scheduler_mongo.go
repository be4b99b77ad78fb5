package schedulerRepo

import (
	"context"
	"errors"
	"fmt"

	"appointly/models"
	"appointly/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoSchedulerRepo implements SchedulerRepository using MongoDB.
// Booking writes run in multi-document transactions, so the server must be a
// replica set or a sharded cluster.
type MongoSchedulerRepo struct {
	client       *mongo.Client
	providerColl *mongo.Collection
	serviceColl  *mongo.Collection
	weeklyColl   *mongo.Collection
	overrideColl *mongo.Collection
	bookingColl  *mongo.Collection
	lockColl     *mongo.Collection
}

// NewMongoSchedulerRepo constructs a new instance of MongoSchedulerRepo and ensures its indexes.
func NewMongoSchedulerRepo(ctx context.Context, client *mongo.Client, dbName string) (*MongoSchedulerRepo, error) {
	db := client.Database(dbName)
	repo := &MongoSchedulerRepo{
		client:       client,
		providerColl: db.Collection("providers"),
		serviceColl:  db.Collection("services"),
		weeklyColl:   db.Collection("weeklySchedules"),
		overrideColl: db.Collection("scheduleOverrides"),
		bookingColl:  db.Collection("bookings"),
		lockColl:     db.Collection("bookingLocks"),
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (repo *MongoSchedulerRepo) Ping(ctx context.Context) error {
	return repo.client.Ping(ctx, readpref.Primary())
}

// GetProviderByID retrieves a provider document by ID.
func (repo *MongoSchedulerRepo) GetProviderByID(ctx context.Context, providerID string) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	var provider models.Provider
	if err := repo.providerColl.FindOne(ctx, bson.M{"id": providerID}).Decode(&provider); err != nil {
		return nil, notFoundOr(err, "error fetching provider with id %s", providerID)
	}
	return &provider, nil
}

// GetServiceByID retrieves a service document by ID.
func (repo *MongoSchedulerRepo) GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	var service models.Service
	if err := repo.serviceColl.FindOne(ctx, bson.M{"id": serviceID}).Decode(&service); err != nil {
		return nil, notFoundOr(err, "error fetching service with id %s", serviceID)
	}
	return &service, nil
}

// notFoundOr maps mongo.ErrNoDocuments to ErrNotFound and wraps everything else.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// SaveProvider upserts a provider document by ID.
func (repo *MongoSchedulerRepo) SaveProvider(ctx context.Context, provider *models.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	_, err := repo.providerColl.ReplaceOne(ctx, bson.M{"id": provider.ID}, provider, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error saving provider %s: %w", provider.ID, err)
	}
	return nil
}

// SaveService upserts a service document by ID.
func (repo *MongoSchedulerRepo) SaveService(ctx context.Context, service *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultStoreTimeout)
	defer cancel()

	_, err := repo.serviceColl.ReplaceOne(ctx, bson.M{"id": service.ID}, service, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error saving service %s: %w", service.ID, err)
	}
	return nil
}
