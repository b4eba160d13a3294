package services

import (
	"context"
	"sort"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"project-management-api/logging"
	"project-management-api/models"
)

// ActionService appends and queries the audit log. Writes go through a
// circuit breaker: a failing actions collection must not slow down the
// primary mutations that audit records trail behind.
type ActionService struct {
	ActionsCollection *mongo.Collection
	TasksCollection   *mongo.Collection
	breaker           *gobreaker.CircuitBreaker
}

func NewActionService(actionsCollection, tasksCollection *mongo.Collection) *ActionService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ActionsWriterCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	return &ActionService{
		ActionsCollection: actionsCollection,
		TasksCollection:   tasksCollection,
		breaker:           breaker,
	}
}

// Record appends one audit record after a successful mutation. It is
// fire-and-forget: the primary write already happened, so a failed audit
// insert is logged and swallowed, never surfaced to the caller.
func (s *ActionService) Record(ctx context.Context, label string, actor primitive.ObjectID, targetType models.TargetType, targetID primitive.ObjectID) {
	action := models.Action{
		ID:         primitive.NewObjectID(),
		Action:     label,
		User:       actor,
		TargetType: targetType,
		TargetID:   targetID,
		Timestamp:  time.Now(),
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return s.ActionsCollection.InsertOne(ctx, action)
	})
	if err != nil {
		logging.Logger.Errorf("Event ID: AUDIT_WRITE_FAILED, Description: Failed to record action '%s' on %s %s: %v", label, targetType, targetID.Hex(), err)
	}
}

// All returns every audit record, newest first.
func (s *ActionService) All(ctx context.Context) ([]models.Action, error) {
	return s.find(ctx, bson.M{})
}

// ByUser returns the audit records produced by one actor, newest first.
func (s *ActionService) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Action, error) {
	return s.find(ctx, bson.M{"user": userID})
}

// ByProject returns the union of the actions targeting the project itself
// and the actions targeting any of its tasks, deduplicated and sorted
// newest first.
func (s *ActionService) ByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Action, error) {
	projectActions, err := s.find(ctx, bson.M{
		"targetType": models.TargetProject,
		"targetId":   projectID,
	})
	if err != nil {
		return nil, err
	}

	taskIDs, err := s.taskIDsForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var taskActions []models.Action
	if len(taskIDs) > 0 {
		taskActions, err = s.find(ctx, bson.M{
			"targetType": models.TargetTask,
			"targetId":   bson.M{"$in": taskIDs},
		})
		if err != nil {
			return nil, err
		}
	}

	return MergeActions(projectActions, taskActions), nil
}

func (s *ActionService) find(ctx context.Context, filter bson.M) ([]models.Action, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	cursor, err := s.ActionsCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	actions := []models.Action{}
	if err := cursor.All(ctx, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

func (s *ActionService) taskIDsForProject(ctx context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// MergeActions combines two audit feeds, drops duplicate ids and sorts the
// result by timestamp descending.
func MergeActions(a, b []models.Action) []models.Action {
	seen := make(map[primitive.ObjectID]bool, len(a)+len(b))
	merged := make([]models.Action, 0, len(a)+len(b))
	for _, action := range append(a, b...) {
		if seen[action.ID] {
			continue
		}
		seen[action.ID] = true
		merged = append(merged, action)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}
