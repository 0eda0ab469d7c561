package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GoalLevel string

const (
	GoalLevelBeginner     GoalLevel = "BEGINNER"
	GoalLevelIntermediate GoalLevel = "INTERMEDIATE"
	GoalLevelExpert       GoalLevel = "EXPERT"
)

// Goal is what the user wants to achieve; sub-fields are optional and an
// unset field never constrains matching.
type Goal struct {
	Title  string    `bson:"title,omitempty" json:"title,omitempty"`
	Target string    `bson:"target,omitempty" json:"target,omitempty"`
	Year   int       `bson:"year,omitempty" json:"year,omitempty"`
	Level  GoalLevel `bson:"level,omitempty" json:"level,omitempty"`
}

func (g Goal) Empty() bool {
	return g.Title == "" && g.Target == "" && g.Year == 0 && g.Level == ""
}

// User holds identity plus relationship state. Buddy is the single symmetric
// primary partner; Buddies is the wider follower list; PvsBuddy is the
// append-only archive of former primary buddies.
type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name             string               `bson:"name" json:"name"`
	Username         string               `bson:"username" json:"username"`
	Mobile           string               `bson:"mobile" json:"mobile"`
	PasswordHash     string               `bson:"hash_password" json:"-"`
	Goal             Goal                 `bson:"goal,omitempty" json:"goal,omitempty"`
	Interests        []string             `bson:"interests,omitempty" json:"interests,omitempty"`
	Avatar           string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Buddy            *primitive.ObjectID  `bson:"buddy,omitempty" json:"buddy,omitempty"`
	Buddies          []primitive.ObjectID `bson:"buddies,omitempty" json:"buddies,omitempty"`
	BlockedUsers     []primitive.ObjectID `bson:"blocked_users,omitempty" json:"blocked_users,omitempty"`
	PvsBuddy         []primitive.ObjectID `bson:"pvs_buddy,omitempty" json:"pvs_buddy,omitempty"`
	Communities      []primitive.ObjectID `bson:"communities,omitempty" json:"communities,omitempty"`
	IsAdmin          bool                 `bson:"is_admin" json:"is_admin"`
	IsMobileVerified bool                 `bson:"is_mobile_verified" json:"is_mobile_verified"`
	IsActive         bool                 `bson:"is_active" json:"is_active"`
	CreatedAt        time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updated_at"`
}

// HasBlocked reports whether id is in the user's blocked list. Comparisons go
// through Hex so different representations of the same identity match.
func (u *User) HasBlocked(id primitive.ObjectID) bool {
	return containsID(u.BlockedUsers, id)
}

func (u *User) InBuddies(id primitive.ObjectID) bool {
	return containsID(u.Buddies, id)
}

func (u *User) InPvsBuddy(id primitive.ObjectID) bool {
	return containsID(u.PvsBuddy, id)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v.Hex() == id.Hex() {
			return true
		}
	}
	return false
}
