// internal/integrity/transitions.go
package integrity

import (
	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
)

var validNext = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderStatusPending:   {models.OrderStatusConfirmed: true, models.OrderStatusCancelled: true},
	models.OrderStatusConfirmed: {models.OrderStatusShipped: true, models.OrderStatusCancelled: true},
	models.OrderStatusShipped:   {models.OrderStatusDelivered: true, models.OrderStatusCancelled: true},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to
// another. Delivered and cancelled are terminal.
func CanTransition(from, to models.OrderStatus) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(s models.OrderStatus) bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

// CheckTransition accepts a same-status write as a no-op.
func CheckTransition(from, to models.OrderStatus) error {
	if !to.IsValid() {
		return apperrors.Integrity(apperrors.ViolationInvalidEnum, "status", "unknown status %q", to)
	}
	if from == to || CanTransition(from, to) {
		return nil
	}
	return apperrors.Integrity(apperrors.ViolationInvalidTransition, "status",
		"cannot move order from %s to %s", from, to)
}
