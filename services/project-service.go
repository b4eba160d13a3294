package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"project-management-api/models"
)

type ProjectService struct {
	ProjectsCollection *mongo.Collection
}

func NewProjectService(projectsCollection *mongo.Collection) *ProjectService {
	return &ProjectService{ProjectsCollection: projectsCollection}
}

// Create inserts a new project owned by createdBy.
func (s *ProjectService) Create(ctx context.Context, title, description string, createdBy primitive.ObjectID, members []primitive.ObjectID) (*models.Project, error) {
	if members == nil {
		members = []primitive.ObjectID{}
	}

	project := &models.Project{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		CreatedBy:   createdBy,
		Members:     members,
		CreatedAt:   time.Now(),
	}

	if _, err := s.ProjectsCollection.InsertOne(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.ProjectsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListAll returns every project. Admin view.
func (s *ProjectService) ListAll(ctx context.Context) ([]models.Project, error) {
	return s.list(ctx, bson.M{})
}

// ListFor returns the projects the user created or is a member of.
func (s *ProjectService) ListFor(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	return s.list(ctx, bson.M{
		"$or": []bson.M{
			{"createdBy": userID},
			{"members": userID},
		},
	})
}

// ProjectUpdate carries the mutable project fields; nil/empty means keep.
// CreatedBy is immutable and deliberately absent.
type ProjectUpdate struct {
	Title       string
	Description string
	Members     []primitive.ObjectID
}

func (s *ProjectService) Update(ctx context.Context, id primitive.ObjectID, upd ProjectUpdate) (*models.Project, error) {
	set := bson.M{}
	if upd.Title != "" {
		set["title"] = upd.Title
	}
	if upd.Description != "" {
		set["description"] = upd.Description
	}
	if upd.Members != nil {
		set["members"] = upd.Members
	}

	if len(set) > 0 {
		result, err := s.ProjectsCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetByID(ctx, id)
}

func (s *ProjectService) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.ProjectsCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProjectService) list(ctx context.Context, filter bson.M) ([]models.Project, error) {
	cursor, err := s.ProjectsCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}
