// internal/policy/rules.go
package policy

import (
	"context"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
)

// Accounts

func AccountRead(a Actor, row *models.Account) Decision {
	return decide(a.Is(row.ID) || a.IsAdmin())
}

// AccountInsert only permits self-registration.
func AccountInsert(a Actor, proposed *models.Account) Decision {
	return decide(a.Is(proposed.ID))
}

// AccountUpdate lets the owner or an admin edit the profile; the role is
// frozen for both and only an admin may change the active flag.
func AccountUpdate(a Actor, current, proposed *models.Account) Decision {
	if current.ID != proposed.ID || current.Role != proposed.Role {
		return Deny
	}
	if current.IsActive != proposed.IsActive {
		return decide(a.IsAdmin())
	}
	return decide(a.Is(current.ID) || a.IsAdmin())
}

func AccountDelete(a Actor, row *models.Account) Decision {
	return decide(a.IsAdmin())
}

// Categories

func CategoryRead(Actor, *models.Category) Decision {
	return Allow
}

func CategoryWrite(a Actor) Decision {
	return decide(a.IsAdmin())
}

// Products

// ProductRead hides inactive products from everyone but their owner and admins.
func ProductRead(a Actor, row *models.Product) Decision {
	switch {
	case a.Is(row.FarmerID), a.IsAdmin():
		return Allow
	case a.IsBuyer():
		return decide(row.IsActive)
	}
	return Deny
}

func ProductInsert(a Actor, proposed *models.Product) Decision {
	return decide(a.IsFarmer() && a.Is(proposed.FarmerID))
}

func ProductUpdate(a Actor, current, proposed *models.Product) Decision {
	return decide(a.Is(current.FarmerID) && a.Is(proposed.FarmerID))
}

func ProductDelete(a Actor, row *models.Product) Decision {
	return decide(a.Is(row.FarmerID))
}

// Orders

func OrderRead(a Actor, row *models.Order) Decision {
	return decide(a.Is(row.BuyerID) || a.Is(row.FarmerID) || a.IsAdmin())
}

func OrderInsert(a Actor, proposed *models.Order) Decision {
	return decide(a.IsBuyer() && a.Is(proposed.BuyerID))
}

// OrderUpdate lets the farmer of the order move its status and payment
// status; nothing else on the row may change.
func OrderUpdate(a Actor, current, proposed *models.Order) Decision {
	return decide(a.Is(current.FarmerID) && current.OnlyProgressChanged(proposed))
}

// Order items

func OrderItemRead(ctx context.Context, snap Snapshot, a Actor, row *models.OrderItem) (Decision, error) {
	order, err := parentOrder(ctx, snap, row)
	if order == nil || err != nil {
		return Deny, err
	}
	return decide(order.HasParty(a.ID) && !a.IsAnonymous()), nil
}

func OrderItemInsert(ctx context.Context, snap Snapshot, a Actor, proposed *models.OrderItem) (Decision, error) {
	order, err := parentOrder(ctx, snap, proposed)
	if order == nil || err != nil {
		return Deny, err
	}
	return decide(a.Is(order.BuyerID)), nil
}

func parentOrder(ctx context.Context, snap Snapshot, item *models.OrderItem) (*models.Order, error) {
	order, err := snap.Order(ctx, item.OrderID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// Reviews

func ReviewRead(Actor, *models.Review) Decision {
	return Allow
}

// ReviewInsert requires a verified purchase: a delivered order of the actor
// that contains the product. The check reads live order state.
func ReviewInsert(ctx context.Context, snap Snapshot, a Actor, proposed *models.Review) (Decision, error) {
	if !a.IsBuyer() || !a.Is(proposed.BuyerID) {
		return Deny, nil
	}
	ok, err := snap.HasDeliveredPurchase(ctx, a.ID, proposed.ProductID, proposed.OrderID)
	if err != nil {
		return Deny, err
	}
	return decide(ok), nil
}

func ReviewUpdate(a Actor, current, proposed *models.Review) Decision {
	return decide(a.Is(current.BuyerID) && current.SameKey(proposed))
}

func ReviewDelete(a Actor, row *models.Review) Decision {
	return decide(a.Is(row.BuyerID))
}

// Messages

func MessageRead(a Actor, row *models.Message) Decision {
	return decide(a.Is(row.SenderID) || a.Is(row.ReceiverID))
}

func MessageInsert(a Actor, proposed *models.Message) Decision {
	return decide(a.Is(proposed.SenderID))
}

// MessageUpdate lets only the receiver flip the read flag.
func MessageUpdate(a Actor, current, proposed *models.Message) Decision {
	return decide(a.Is(current.ReceiverID) && current.OnlyReadFlagChanged(proposed))
}

// Educational resources

func ResourceRead(a Actor, row *models.EducationalResource) Decision {
	return decide(row.IsPublished || (!a.IsAnonymous() && row.AuthoredBy(a.ID)) || a.IsAdmin())
}

func ResourceWrite(a Actor) Decision {
	return decide(a.IsAdmin())
}

// Bookmarks

func BookmarkAccess(a Actor, row *models.ResourceBookmark) Decision {
	return decide(a.Is(row.UserID))
}
