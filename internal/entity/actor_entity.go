package entity

import "github.com/google/uuid"

type ActorKind string

const (
	ActorUser   ActorKind = "user"
	ActorDoctor ActorKind = "doctor"
)

// Actor is the authenticated principal: either a User or a Doctor.
type Actor struct {
	Kind     ActorKind
	Id       uuid.UUID
	Username string
}

func (a Actor) IsDoctor() bool {
	return a.Kind == ActorDoctor
}

// Owner returns the (user_id, doctor_id) pair a post authored by a carries.
func (a Actor) Owner() (userId *uuid.UUID, doctorId *uuid.UUID) {
	id := a.Id
	if a.IsDoctor() {
		return nil, &id
	}
	return &id, nil
}
