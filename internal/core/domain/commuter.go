package domain

import "time"

// Commuter is the application-side profile created when an account registers.
type Commuter struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Account   string    `json:"account" bson:"account"`
	Email     string    `json:"email" bson:"email"`
	GivenName string    `json:"givenName" bson:"given_name"`
	Surname   string    `json:"surname" bson:"surname"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
