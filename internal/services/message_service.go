// internal/services/message_service.go
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

type MessageService struct {
	repo repository.Repository
}

type SendMessageRequest struct {
	ReceiverID uuid.UUID  `json:"receiver_id" validate:"required"`
	ProductID  *uuid.UUID `json:"product_id,omitempty"`
	OrderID    *uuid.UUID `json:"order_id,omitempty"`
	Content    string     `json:"content" validate:"required,max=5000"`
}

func NewMessageService(repo repository.Repository) *MessageService {
	return &MessageService{repo: repo}
}

func (s *MessageService) Send(ctx context.Context, actor policy.Actor, req *SendMessageRequest) (*models.Message, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:   actor.ID,
		ReceiverID: req.ReceiverID,
		ProductID:  req.ProductID,
		OrderID:    req.OrderID,
		Content:    req.Content,
	}
	msg.ID = uuid.New()

	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityMessage, Op: policy.OpInsert, Proposed: msg,
		}); err != nil {
			return err
		}
		if err := checkRow(msg); err != nil {
			return err
		}

		if _, err := tx.Accounts().Get(ctx, msg.ReceiverID); err != nil {
			return requireRef(err, "receiver_id", msg.ReceiverID)
		}
		if msg.ProductID != nil {
			if _, err := tx.Products().Get(ctx, *msg.ProductID); err != nil {
				return requireRef(err, "product_id", *msg.ProductID)
			}
		}
		if msg.OrderID != nil {
			if _, err := tx.Orders().Get(ctx, *msg.OrderID); err != nil {
				return requireRef(err, "order_id", *msg.OrderID)
			}
		}

		return tx.Messages().Create(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// List returns every message the actor sent or received, newest first.
func (s *MessageService) List(ctx context.Context, actor policy.Actor) ([]models.Message, error) {
	if actor.IsAnonymous() {
		return []models.Message{}, nil
	}
	rows, err := s.repo.Messages().ListForAccount(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return policy.Filter(rows, func(m *models.Message) policy.Decision {
		return policy.MessageRead(actor, m)
	}), nil
}

// Conversation returns the messages exchanged between the actor and other.
func (s *MessageService) Conversation(ctx context.Context, actor policy.Actor, other uuid.UUID) ([]models.Message, error) {
	rows, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(rows))
	for _, m := range rows {
		if m.SenderID == other || m.ReceiverID == other {
			out = append(out, m)
		}
	}
	return out, nil
}

// MarkRead sets the read flag. Only the receiver may do so.
func (s *MessageService) MarkRead(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Message, error) {
	var result *models.Message
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Messages().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}

		proposed := *current
		proposed.IsRead = true

		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityMessage, Op: policy.OpUpdate, Current: current, Proposed: &proposed,
		}); err != nil {
			return err
		}
		if current.IsRead {
			result = current
			return nil
		}
		if err := tx.Messages().Update(ctx, &proposed); err != nil {
			return err
		}
		result = &proposed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
