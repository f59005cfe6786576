package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PollTemplate represents a reusable poll blueprint. Templates are copied at
// instantiation time, so editing or deleting one never changes polls already
// created from it.
type PollTemplate struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                  string             `bson:"name" json:"name"`
	Description           string             `bson:"description" json:"description"`
	DefaultPlayerIDs      []string           `bson:"defaultPlayerIds" json:"defaultPlayerIds"`
	DefaultAutoStart      bool               `bson:"defaultAutoStart" json:"defaultAutoStart"`
	DefaultScheduledStart bool               `bson:"defaultScheduledStart" json:"defaultScheduledStart"`
	CreatedBy             string             `bson:"createdBy" json:"createdBy"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}
