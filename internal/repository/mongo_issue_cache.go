package repository

import (
	"context"
	"errors"
	"time"

	"citizens-connect/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const onlineIssuesDocID = "online_issues"

type issueCacheDocument struct {
	ID        string                 `bson:"_id"`
	Issues    []models.ExternalIssue `bson:"issues"`
	UpdatedAt time.Time              `bson:"updatedAt"`
}

type mongoIssueCache struct {
	collection *mongo.Collection
}

func NewMongoIssueCache(db *mongo.Database) IssueCacheRepository {
	return &mongoIssueCache{collection: db.Collection("online_issue_cache")}
}

func (r *mongoIssueCache) Load(ctx context.Context) (CacheSnapshot, error) {
	var doc issueCacheDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": onlineIssuesDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return CacheSnapshot{}, nil
	}
	if err != nil {
		return CacheSnapshot{}, err
	}
	return CacheSnapshot{Issues: doc.Issues, UpdatedAt: doc.UpdatedAt}, nil
}

func (r *mongoIssueCache) Save(ctx context.Context, issues []models.ExternalIssue, at time.Time) error {
	doc := issueCacheDocument{ID: onlineIssuesDocID, Issues: issues, UpdatedAt: at}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": onlineIssuesDocID}, doc, options.Replace().SetUpsert(true))
	return err
}
