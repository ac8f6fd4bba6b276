package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cirocosta/todolist/internal/model"
)

// todoDocument is the stored shape of a todo in the todos collection
type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Status      bool               `bson:"status"`
}

func (d todoDocument) toModel() model.Todo {
	return model.Todo{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Status:      d.Status,
	}
}

// MongoTodoRepository implements TodoRepository on a MongoDB collection
type MongoTodoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoTodoRepository connects to uri and uses database.collection for storage
func NewMongoTodoRepository(ctx context.Context, uri, database, collection string) (*MongoTodoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoTodoRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// FindAllTodos returns all todos
func (r *MongoTodoRepository) FindAllTodos(ctx context.Context) ([]model.Todo, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find todos: %w", err)
	}

	var docs []todoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}

	todos := make([]model.Todo, 0, len(docs))
	for _, doc := range docs {
		todos = append(todos, doc.toModel())
	}

	return todos, nil
}

// CreateTodo inserts a new document; the store assigns its ObjectID
func (r *MongoTodoRepository) CreateTodo(ctx context.Context, req model.CreateTodoRequest) (model.Todo, error) {
	doc := todoDocument{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	}
	if err := validateTodo(doc.toModel()); err != nil {
		return model.Todo{}, err
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return model.Todo{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = id

	return doc.toModel(), nil
}

// UpdateTodoByID sets the provided fields and returns the document after the update
func (r *MongoTodoRepository) UpdateTodoByID(ctx context.Context, id string, req model.UpdateTodoRequest) (model.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Todo{}, fmt.Errorf("invalid todo id '%s': %w", id, err)
	}

	set, err := updateDocument(req)
	if err != nil {
		return model.Todo{}, err
	}

	var doc todoDocument
	filter := bson.M{"_id": oid}

	// $set refuses an empty document
	if len(set) == 0 {
		err = r.collection.FindOne(ctx, filter).Decode(&doc)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Todo{}, ErrTodoNotFound{ID: id}
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("update todo %s: %w", id, err)
	}

	return doc.toModel(), nil
}

// DeleteTodoByID removes the document and returns its prior value
func (r *MongoTodoRepository) DeleteTodoByID(ctx context.Context, id string) (model.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Todo{}, fmt.Errorf("invalid todo id '%s': %w", id, err)
	}

	var doc todoDocument
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Todo{}, ErrTodoNotFound{ID: id}
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("delete todo %s: %w", id, err)
	}

	return doc.toModel(), nil
}

// Close disconnects the client
func (r *MongoTodoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// updateDocument builds the $set document for a partial update, rejecting
// updates that would blank a required field.
func updateDocument(req model.UpdateTodoRequest) (bson.M, error) {
	set := bson.M{}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidTodo)
		}
		set["name"] = *req.Name
	}
	if req.Description != nil {
		if *req.Description == "" {
			return nil, fmt.Errorf("%w: description is required", ErrInvalidTodo)
		}
		set["description"] = *req.Description
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}

	return set, nil
}
