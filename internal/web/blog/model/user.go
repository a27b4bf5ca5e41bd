package model

import (
	"time"

	gutils "github.com/Laisky/go-utils/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User blog users
type User struct {
	// ID unique identifier for the user
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	// Name display name
	Name string `bson:"name" json:"name"`
	// Email login account, unique and lower-cased
	Email string `bson:"email" json:"email"`
	// Password bcrypt hash
	Password string `bson:"password" json:"-"`
}

// GetID get id
func (u *User) GetID() string {
	return u.ID.Hex()
}

// NewUser create a new user
func NewUser(name, email, hashedPassword string) *User {
	now := gutils.Clock.GetUTCNow()
	return &User{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Email:     email,
		Password:  hashedPassword,
	}
}
