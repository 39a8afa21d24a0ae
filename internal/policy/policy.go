// internal/policy/policy.go

// Package policy decides, for one actor and one row, whether an operation on
// a marketplace table is permitted. Rules never touch storage directly: the
// few that depend on related rows read them through a Snapshot, so the same
// rules run against postgres, the in-memory store or a test fixture.
package policy

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/models"
)

// Actor is the authenticated identity issuing an operation. The zero value
// is an anonymous visitor.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

func NewActor(id uuid.UUID, role models.Role) Actor {
	return Actor{ID: id, Role: role}
}

func (a Actor) IsAnonymous() bool { return a.ID == uuid.Nil }
func (a Actor) IsAdmin() bool     { return !a.IsAnonymous() && a.Role == models.RoleAdmin }
func (a Actor) IsFarmer() bool    { return !a.IsAnonymous() && a.Role == models.RoleFarmer }
func (a Actor) IsBuyer() bool     { return !a.IsAnonymous() && a.Role == models.RoleBuyer }

// Is reports whether the actor is the given (non-nil) account.
func (a Actor) Is(id uuid.UUID) bool {
	return !a.IsAnonymous() && a.ID == id
}

// Decision is the outcome of one evaluation.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "ALLOW"
	}
	return "DENY"
}

func decide(ok bool) Decision { return Decision(ok) }

type Operation string

const (
	OpRead   Operation = "read"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type Entity string

const (
	EntityAccount          Entity = "account"
	EntityCategory         Entity = "category"
	EntityProduct          Entity = "product"
	EntityOrder            Entity = "order"
	EntityOrderItem        Entity = "order_item"
	EntityReview           Entity = "review"
	EntityMessage          Entity = "message"
	EntityResource         Entity = "educational_resource"
	EntityResourceBookmark Entity = "resource_bookmark"
)

// Snapshot gives rules read-only access to the live state of related rows.
// Implementations must answer from the same transaction as the write being
// authorized.
type Snapshot interface {
	// Order returns the order or an error satisfying apperrors.IsNotFound.
	Order(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// HasDeliveredPurchase reports whether buyerID has a delivered order
	// containing productID. When orderID is set only that order qualifies.
	HasDeliveredPurchase(ctx context.Context, buyerID, productID uuid.UUID, orderID *uuid.UUID) (bool, error)
}
