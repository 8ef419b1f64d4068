package app

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/dan13ram/mtoken-bridge/models"
	log "github.com/sirupsen/logrus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	lock "github.com/square/mongo-lock"
)

type Database interface {
	Connect() error
	SetupLockers() error
	SetupIndexes() error
	Disconnect() error
	InsertOne(collection string, data interface{}) error
	FindOne(collection string, filter interface{}, result interface{}) error
	FindMany(collection string, filter interface{}, result interface{}) error
	UpdateOne(collection string, filter interface{}, update interface{}) error
	UpsertOne(collection string, filter interface{}, update interface{}) error

	XLock(resourceId string) (string, error)
	SLock(resourceId string) (string, error)
	Unlock(lockId string) error
}

// mongoDatabase is a wrapper around the mongo database
type mongoDatabase struct {
	db            *mongo.Database
	uri           string
	database      string
	timeoutMillis int64
	locker        *lock.Client
}

var (
	DB Database
)

func (d *mongoDatabase) timeout() time.Duration {
	return time.Duration(d.timeoutMillis) * time.Millisecond
}

// Connect connects to the database
func (d *mongoDatabase) Connect() error {
	log.Debug("[DB] Connecting to database")
	wcMajority := writeconcern.New(writeconcern.WMajority(), writeconcern.WTimeout(d.timeout()))

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(d.uri).SetWriteConcern(wcMajority))
	if err != nil {
		return err
	}
	d.db = client.Database(d.database)

	log.Info("[DB] Connected to mongo database: ", d.database)
	return nil
}

// SetupLocker sets up the locker
func (d *mongoDatabase) SetupLockers() error {
	log.Debug("[DB] Setting up locker")
	var locker *lock.Client

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()

	locker = lock.NewClient(d.db.Collection("locks"))
	if err := locker.CreateIndexes(ctx); err != nil {
		return err
	}
	d.locker = locker

	log.Info("[DB] Locker setup")
	return nil
}

// lock lifetime in seconds
const lockTTL = 120

func randomString(n int) string {
	const alphanum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	var bytes = make([]byte, n)
	rand.Read(bytes)
	for i, b := range bytes {
		bytes[i] = alphanum[b%byte(len(alphanum))]
	}
	return string(bytes)
}

// XLock locks a resource for exclusive access, for at most lockTTL seconds
func (d *mongoDatabase) XLock(resourceId string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()

	lockId := randomString(32)
	err := d.locker.XLock(ctx, resourceId, lockId, lock.LockDetails{TTL: lockTTL})
	return lockId, err
}

// SLock locks a resource for shared access
func (d *mongoDatabase) SLock(resourceId string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()

	lockId := randomString(32)
	err := d.locker.SLock(ctx, resourceId, lockId, lock.LockDetails{TTL: lockTTL}, -1)
	return lockId, err
}

// Unlock unlocks a resource
func (d *mongoDatabase) Unlock(lockId string) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()

	_, err := d.locker.Unlock(ctx, lockId)
	return err
}

func (d *mongoDatabase) createIndex(collection string, keys bson.D, unique bool) error {
	log.Debug("[DB] Setting up indexes for ", collection)
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()
	_, err := d.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(unique),
	})
	return err
}

// SetupIndexes creates the unique keys that make journaling idempotent
func (d *mongoDatabase) SetupIndexes() error {
	log.Debug("[DB] Setting up indexes")

	err := d.createIndex(models.CollectionMintRequests, bson.D{{Key: "chain_id", Value: 1}, {Key: "request_id", Value: 1}}, true)
	if err != nil {
		return err
	}

	err = d.createIndex(models.CollectionMintRequests, bson.D{{Key: "status", Value: 1}, {Key: "submitted_at", Value: 1}}, false)
	if err != nil {
		return err
	}

	err = d.createIndex(models.CollectionMessages, bson.D{{Key: "message_id", Value: 1}}, true)
	if err != nil {
		return err
	}

	err = d.createIndex(models.CollectionEvents, bson.D{{Key: "chain_id", Value: 1}, {Key: "name", Value: 1}}, false)
	if err != nil {
		return err
	}

	err = d.createIndex(models.CollectionHealthChecks, bson.D{{Key: "node_id", Value: 1}, {Key: "hostname", Value: 1}}, true)
	if err != nil {
		return err
	}

	log.Info("[DB] Indexes setup")

	return nil
}

// Disconnect disconnects from the database
func (d *mongoDatabase) Disconnect() error {
	log.Debug("[DB] Disconnecting from database")
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()
	err := d.db.Client().Disconnect(ctx)
	log.Info("[DB] Disconnected from database")
	return err
}

// method for insert single value in a collection
func (d *mongoDatabase) InsertOne(collection string, data interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()
	_, err := d.db.Collection(collection).InsertOne(ctx, data)
	return err
}

// method for find single value in a collection
func (d *mongoDatabase) FindOne(collection string, filter interface{}, result interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()
	err := d.db.Collection(collection).FindOne(ctx, filter).Decode(result)
	return err
}

// method for find multiple values in a collection
func (d *mongoDatabase) FindMany(collection string, filter interface{}, result interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()
	cursor, err := d.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return err
	}
	err = cursor.All(ctx, result)
	return err
}

// method for update single value in a collection
func (d *mongoDatabase) UpdateOne(collection string, filter interface{}, update interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()
	_, err := d.db.Collection(collection).UpdateOne(ctx, filter, update)
	return err
}

// method for upsert single value in a collection
func (d *mongoDatabase) UpsertOne(collection string, filter interface{}, update interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
	defer cancel()

	opts := options.Update().SetUpsert(true)
	_, err := d.db.Collection(collection).UpdateOne(ctx, filter, update, opts)
	return err
}

// InitDB creates a new database wrapper
func InitDB() {
	DB = &mongoDatabase{
		uri:           Config.MongoDB.URI,
		database:      Config.MongoDB.Database,
		timeoutMillis: Config.MongoDB.TimeoutMillis,
	}

	err := DB.Connect()
	if err != nil {
		log.Fatal(err)
	}
	err = DB.SetupIndexes()
	if err != nil {
		log.Fatal(err)
	}
	err = DB.SetupLockers()
	if err != nil {
		log.Fatal(err)
	}
	log.Info("[DB] Database initialized")
}
