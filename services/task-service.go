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

type TaskService struct {
	TasksCollection *mongo.Collection
}

func NewTaskService(tasksCollection *mongo.Collection) *TaskService {
	return &TaskService{TasksCollection: tasksCollection}
}

// Create inserts a new task under the given project. Status defaults to
// todo, priority to medium.
func (s *TaskService) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	task.ID = primitive.NewObjectID()
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	task.CreatedAt = time.Now()

	if _, err := s.TasksCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

func (s *TaskService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.TasksCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// TaskUpdate carries the mutable task fields; empty means keep. ProjectID is
// immutable and deliberately absent.
type TaskUpdate struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssignedTo  primitive.ObjectID
}

func (s *TaskService) Update(ctx context.Context, id primitive.ObjectID, upd TaskUpdate) (*models.Task, error) {
	set := bson.M{}
	if upd.Title != "" {
		set["title"] = upd.Title
	}
	if upd.Description != "" {
		set["description"] = upd.Description
	}
	if upd.Status != "" {
		set["status"] = upd.Status
	}
	if upd.Priority != "" {
		set["priority"] = upd.Priority
	}
	if upd.DueDate != nil {
		set["dueDate"] = upd.DueDate
	}
	if !upd.AssignedTo.IsZero() {
		set["assignedTo"] = upd.AssignedTo
	}

	if len(set) > 0 {
		result, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetByID(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.TasksCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
