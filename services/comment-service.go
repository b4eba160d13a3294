package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"project-management-api/models"
)

type CommentService struct {
	CommentsCollection *mongo.Collection
}

func NewCommentService(commentsCollection *mongo.Collection) *CommentService {
	return &CommentService{CommentsCollection: commentsCollection}
}

func (s *CommentService) Create(ctx context.Context, text string, author, taskID primitive.ObjectID) (*models.Comment, error) {
	comment := &models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      text,
		Author:    author,
		TaskID:    taskID,
		Timestamp: time.Now(),
	}

	if _, err := s.CommentsCollection.InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := s.CommentsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByTask returns the comments on a task, newest first.
func (s *CommentService) ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	cursor, err := s.CommentsCollection.Find(ctx, bson.M{"taskId": taskID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateText replaces the comment text and returns the updated document.
// Author and task are immutable.
func (s *CommentService) UpdateText(ctx context.Context, id primitive.ObjectID, text string) (*models.Comment, error) {
	result, err := s.CommentsCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"text": text}})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.CommentsCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
