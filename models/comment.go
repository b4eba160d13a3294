package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Text      string             `json:"text" bson:"text"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	TaskID    primitive.ObjectID `json:"taskId" bson:"taskId"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}
