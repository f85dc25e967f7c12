package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	"github.com/njohnson2897/bookmarkd-sub000/internal/id"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// ContactService stores messages from the public contact form.
type ContactService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(store *store.Store, logger *slog.Logger) *ContactService {
	return &ContactService{
		store:  store,
		logger: logger,
	}
}

// ContactRequest is a contact form submission. No login is required.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SubmitContact stores a contact message.
func (s *ContactService) SubmitContact(ctx context.Context, req ContactRequest) (*domain.Contact, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	contactID, err := id.Generate(id.PrefixContact)
	if err != nil {
		return nil, fmt.Errorf("generate contact ID: %w", err)
	}
	contact := &domain.Contact{
		Base:    domain.Base{ID: contactID},
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	contact.InitTimestamps()

	if err := s.store.Contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	s.logger.Info("contact message received", "contact_id", contact.ID)
	return contact, nil
}
