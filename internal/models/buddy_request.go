package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestType string

const (
	RequestTypeBuddy    RequestType = "buddy"
	RequestTypeFollower RequestType = "follower"
)

func (t RequestType) Valid() bool {
	return t == RequestTypeBuddy || t == RequestTypeFollower
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// BuddyRequest is a proposed relationship transition awaiting receiver
// action. At most one document exists per (sender, receiver, type); resends
// upsert the existing record.
type BuddyRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Receiver  primitive.ObjectID `bson:"receiver" json:"receiver"`
	Type      RequestType        `bson:"type" json:"type"`
	Status    RequestStatus      `bson:"status" json:"status"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Terminal reports whether the request has already been accepted or
// rejected. Terminal requests behave as expired for any later action.
func (r *BuddyRequest) Terminal() bool {
	return r.Status == RequestStatusAccepted || r.Status == RequestStatusRejected
}

func (r *BuddyRequest) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
