// Package policy holds the ownership and rating rules shared by parks,
// comments and reviews. Nothing in here touches storage.
package policy

import (
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

// Owned is an entity that records the user who created it
type Owned interface {
	OwnerID() string
}

// Decision is the outcome of an ownership check
type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "denied"
}

// Authorize allows the actor iff it is authenticated and is the entity's author.
func Authorize(actor *entities.Actor, entity Owned) Decision {
	if actor == nil || actor.UserID == "" || entity == nil {
		return Denied
	}
	if entity.OwnerID() != actor.UserID {
		return Denied
	}
	return Allowed
}

// Require returns a forbidden error unless Authorize allows the actor.
func Require(actor *entities.Actor, entity Owned, what string) error {
	if Authorize(actor, entity) == Allowed {
		return nil
	}
	return apperrors.NewForbiddenError("you do not have permission to modify this " + what)
}

// RequireAuthenticated rejects anonymous actors.
func RequireAuthenticated(actor *entities.Actor) error {
	if actor == nil || actor.UserID == "" {
		return apperrors.NewUnauthorizedError("Please login to proceed.")
	}
	return nil
}
