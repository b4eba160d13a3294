package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TargetType string

const (
	TargetTask    TargetType = "Task"
	TargetProject TargetType = "Project"
	TargetComment TargetType = "Comment"
	TargetUser    TargetType = "User"
)

// Action is an immutable audit record: who did what to which resource and
// when. Records are only ever inserted, never updated or deleted.
type Action struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Action     string             `json:"action" bson:"action"`
	User       primitive.ObjectID `json:"user" bson:"user"`
	TargetType TargetType         `json:"targetType" bson:"targetType"`
	TargetID   primitive.ObjectID `json:"targetId" bson:"targetId"`
	Timestamp  time.Time          `json:"timestamp" bson:"timestamp"`
}
