// internal/policy/evaluate.go
package policy

import (
	"context"

	"github.com/javajoker/farm-marketplace/internal/models"
)

// Request is one operation submitted to the model. Current is the stored
// row for read, update and delete; Proposed is the row to insert or the new
// version of an updated row.
type Request struct {
	Actor    Actor
	Entity   Entity
	Op       Operation
	Current  interface{}
	Proposed interface{}
}

// Evaluate is total: any entity/operation pair without a rule, and any
// request whose rows do not match the entity, is denied. An error is only
// returned when the snapshot could not be read.
func Evaluate(ctx context.Context, snap Snapshot, req Request) (Decision, error) {
	a := req.Actor

	switch req.Entity {
	case EntityAccount:
		switch req.Op {
		case OpRead:
			return unary(req.Current, func(r *models.Account) Decision { return AccountRead(a, r) })
		case OpInsert:
			return unary(req.Proposed, func(r *models.Account) Decision { return AccountInsert(a, r) })
		case OpUpdate:
			return binary(req.Current, req.Proposed, func(c, p *models.Account) Decision { return AccountUpdate(a, c, p) })
		case OpDelete:
			return unary(req.Current, func(r *models.Account) Decision { return AccountDelete(a, r) })
		}

	case EntityCategory:
		switch req.Op {
		case OpRead:
			return unary(req.Current, func(r *models.Category) Decision { return CategoryRead(a, r) })
		case OpInsert:
			return unary(req.Proposed, func(*models.Category) Decision { return CategoryWrite(a) })
		case OpUpdate, OpDelete:
			return unary(req.Current, func(*models.Category) Decision { return CategoryWrite(a) })
		}

	case EntityProduct:
		switch req.Op {
		case OpRead:
			return unary(req.Current, func(r *models.Product) Decision { return ProductRead(a, r) })
		case OpInsert:
			return unary(req.Proposed, func(r *models.Product) Decision { return ProductInsert(a, r) })
		case OpUpdate:
			return binary(req.Current, req.Proposed, func(c, p *models.Product) Decision { return ProductUpdate(a, c, p) })
		case OpDelete:
			return unary(req.Current, func(r *models.Product) Decision { return ProductDelete(a, r) })
		}

	case EntityOrder:
		switch req.Op {
		case OpRead:
			return unary(req.Current, func(r *models.Order) Decision { return OrderRead(a, r) })
		case OpInsert:
			return unary(req.Proposed, func(r *models.Order) Decision { return OrderInsert(a, r) })
		case OpUpdate:
			return binary(req.Current, req.Proposed, func(c, p *models.Order) Decision { return OrderUpdate(a, c, p) })
		}

	case EntityOrderItem:
		switch req.Op {
		case OpRead:
			if r, ok := rowAs[models.OrderItem](req.Current); ok {
				return OrderItemRead(ctx, snap, a, r)
			}
		case OpInsert:
			if r, ok := rowAs[models.OrderItem](req.Proposed); ok {
				return OrderItemInsert(ctx, snap, a, r)
			}
		}

	case EntityReview:
		switch req.Op {
		case OpRead:
			return unary(req.Current, func(r *models.Review) Decision { return ReviewRead(a, r) })
		case OpInsert:
			if r, ok := rowAs[models.Review](req.Proposed); ok {
				return ReviewInsert(ctx, snap, a, r)
			}
		case OpUpdate:
			return binary(req.Current, req.Proposed, func(c, p *models.Review) Decision { return ReviewUpdate(a, c, p) })
		case OpDelete:
			return unary(req.Current, func(r *models.Review) Decision { return ReviewDelete(a, r) })
		}

	case EntityMessage:
		switch req.Op {
		case OpRead:
			return unary(req.Current, func(r *models.Message) Decision { return MessageRead(a, r) })
		case OpInsert:
			return unary(req.Proposed, func(r *models.Message) Decision { return MessageInsert(a, r) })
		case OpUpdate:
			return binary(req.Current, req.Proposed, func(c, p *models.Message) Decision { return MessageUpdate(a, c, p) })
		}

	case EntityResource:
		switch req.Op {
		case OpRead:
			return unary(req.Current, func(r *models.EducationalResource) Decision { return ResourceRead(a, r) })
		case OpInsert:
			return unary(req.Proposed, func(*models.EducationalResource) Decision { return ResourceWrite(a) })
		case OpUpdate, OpDelete:
			return unary(req.Current, func(*models.EducationalResource) Decision { return ResourceWrite(a) })
		}

	case EntityResourceBookmark:
		row := req.Current
		if req.Op == OpInsert {
			row = req.Proposed
		}
		return unary(row, func(r *models.ResourceBookmark) Decision { return BookmarkAccess(a, r) })
	}

	return Deny, nil
}

// Filter keeps the rows the read rule allows. Callers issuing a broad read
// get the visible subset rather than an error.
func Filter[T any](rows []T, rule func(*T) Decision) []T {
	out := make([]T, 0, len(rows))
	for i := range rows {
		if rule(&rows[i]) == Allow {
			out = append(out, rows[i])
		}
	}
	return out
}

// FilterWith is Filter for rules that consult a Snapshot.
func FilterWith[T any](rows []T, rule func(*T) (Decision, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i := range rows {
		d, err := rule(&rows[i])
		if err != nil {
			return nil, err
		}
		if d == Allow {
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func rowAs[T any](v interface{}) (*T, bool) {
	switch r := v.(type) {
	case *T:
		return r, r != nil
	case T:
		return &r, true
	}
	return nil, false
}

func unary[T any](v interface{}, rule func(*T) Decision) (Decision, error) {
	r, ok := rowAs[T](v)
	if !ok {
		return Deny, nil
	}
	return rule(r), nil
}

func binary[T any](current, proposed interface{}, rule func(c, p *T) Decision) (Decision, error) {
	c, ok := rowAs[T](current)
	if !ok {
		return Deny, nil
	}
	p, ok := rowAs[T](proposed)
	if !ok {
		return Deny, nil
	}
	return rule(c, p), nil
}
