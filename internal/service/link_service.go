// ===========================================
// Package service - Business Logic Layer
// ===========================================
// Orchestrates the SmartLink lifecycle: payloads are normalized,
// validated, then handed to the store. Handlers stay thin; the
// store stays dumb.
// ===========================================

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/smartlink/internal/models"
	"github.com/user/smartlink/internal/normalize"
	"github.com/user/smartlink/internal/repository"
	"github.com/user/smartlink/internal/validation"
	"go.uber.org/zap"
)

// Service errors.
var (
	ErrLinkNotFound        = errors.New("smart link not found")
	ErrSlugTaken           = errors.New("slug is already in use")
	ErrPlatformUnavailable = errors.New("platform not available for this link")
)

// LinkStore is the persistence contract the service depends on.
// Implemented by repository.LinkRepository; tests substitute an
// in-memory fake.
type LinkStore interface {
	Create(ctx context.Context, link *models.SmartLink) error
	GetBySlug(ctx context.Context, slug string) (*models.SmartLink, error)
	ListAll(ctx context.Context) ([]models.SmartLink, error)
	Exists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, slug string, link *models.SmartLink) (*models.SmartLink, error)
	Delete(ctx context.Context, slug string) error
	IncrementClick(ctx context.Context, slug, platform string) error
}

// LinkService handles SmartLink business logic.
type LinkService struct {
	store  LinkStore
	logger *zap.Logger
}

// NewLinkService creates a new SmartLink service.
func NewLinkService(store LinkStore, logger *zap.Logger) *LinkService {
	return &LinkService{store: store, logger: logger}
}

// Create normalizes, validates and persists a new SmartLink.
//
// The slug existence pre-check gives a fast 409 for the common case;
// the unique index closes the remaining race window, so a concurrent
// duplicate insert also comes back as ErrSlugTaken.
func (s *LinkService) Create(ctx context.Context, payload *models.LinkPayload) (*models.SmartLink, error) {
	in := normalize.Link(payload)
	if err := validation.Link(in); err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, in.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug availability: %w", err)
	}
	if exists {
		return nil, ErrSlugTaken
	}

	link := linkFromInput(in)
	if err := s.store.Create(ctx, link); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to store smart link: %w", err)
	}

	return link, nil
}

// Get returns the SmartLink for a slug.
func (s *LinkService) Get(ctx context.Context, slug string) (*models.SmartLink, error) {
	link, err := s.store.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get smart link: %w", err)
	}
	return link, nil
}

// List returns all SmartLinks, newest first.
func (s *LinkService) List(ctx context.Context) ([]models.SmartLink, error) {
	links, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list smart links: %w", err)
	}
	return links, nil
}

// CheckSlugAvailable reports whether a slug is free. Pure read.
func (s *LinkService) CheckSlugAvailable(ctx context.Context, slug string) (bool, error) {
	exists, err := s.store.Exists(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("failed to check slug availability: %w", err)
	}
	return !exists, nil
}

// Update replaces all user-editable fields of an existing SmartLink.
// The payload goes through the same normalization and validation as
// creation. Click stats and createdAt survive the update.
func (s *LinkService) Update(ctx context.Context, slug string, payload *models.LinkPayload) (*models.SmartLink, error) {
	in := normalize.Link(payload)
	if err := validation.Link(in); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, slug, linkFromInput(in))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	if errors.Is(err, repository.ErrDuplicateSlug) {
		return nil, ErrSlugTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update smart link: %w", err)
	}

	return updated, nil
}

// Delete permanently removes a SmartLink.
func (s *LinkService) Delete(ctx context.Context, slug string) error {
	err := s.store.Delete(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLinkNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete smart link: %w", err)
	}
	return nil
}

// linkFromInput builds the persistable record from a validated input.
// Flat tag IDs are intentionally not carried over; only the nested
// analytics sub-record is stored.
func linkFromInput(in *models.LinkInput) *models.SmartLink {
	return &models.SmartLink{
		Artist:         in.Artist,
		Title:          in.Title,
		Slug:           in.Slug,
		CoverURL:       in.CoverURL,
		StreamingLinks: in.StreamingLinks,
		Analytics:      in.Analytics,
	}
}
