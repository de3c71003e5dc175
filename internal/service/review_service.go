package service

import (
	"database/sql"
	"errors"
	"log"
	"net/mail"
	"strings"

	"tavolo/internal/entities"
	apperrors "tavolo/internal/errors"
	"tavolo/internal/repository"
)

const (
	maxCommentLen      = 2000
	defaultReviewLimit = 20
	maxReviewLimit     = 100
)

type ReviewService struct {
	reviewRepo     *repository.ReviewRepository
	restaurantRepo *repository.RestaurantRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, restaurantRepo *repository.RestaurantRepository) *ReviewService {
	return &ReviewService{
		reviewRepo:     reviewRepo,
		restaurantRepo: restaurantRepo,
	}
}

// ListForRestaurant returns one page of a restaurant's reviews.
func (s *ReviewService) ListForRestaurant(slug string, limit, offset int) (*entities.ReviewsList, error) {
	rt, err := s.restaurantRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error fetching restaurant '%s': %v", slug, err)
		return nil, apperrors.Internal("could not list reviews")
	}

	limit, offset = clampReviewPage(limit, offset)

	reviews, total, err := s.reviewRepo.ListByRestaurant(rt.ID, limit, offset)
	if err != nil {
		log.Printf("Error listing reviews for restaurant %d: %v", rt.ID, err)
		return nil, apperrors.Internal("could not list reviews")
	}
	return &entities.ReviewsList{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Reviews: reviews,
	}, nil
}

// Create adds a review. Only guests with a completed reservation at the
// restaurant may review it.
func (s *ReviewService) Create(slug string, req *entities.ReviewRequest) (*entities.ReviewResponse, error) {
	rt, err := s.restaurantRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error fetching restaurant '%s': %v", slug, err)
		return nil, apperrors.Internal("could not create the review")
	}

	if req.AuthorName == "" {
		return nil, apperrors.Validation("name is required")
	}
	if _, err := mail.ParseAddress(req.AuthorEmail); err != nil {
		return nil, apperrors.Validation("a valid email address is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}
	if len(req.Comment) > maxCommentLen {
		return nil, apperrors.Validation("comment is too long")
	}
	req.AuthorEmail = strings.ToLower(strings.TrimSpace(req.AuthorEmail))

	dined, err := s.reviewRepo.HasDinedBefore(rt.ID, req.AuthorEmail)
	if err != nil {
		log.Printf("Error checking dining history: %v", err)
		return nil, apperrors.Internal("could not create the review")
	}
	if !dined {
		return nil, apperrors.Validation("reviews are open to guests who have dined here")
	}

	id, err := s.reviewRepo.Create(rt.ID, req)
	if err != nil {
		log.Printf("Error creating review for restaurant %d: %v", rt.ID, err)
		return nil, apperrors.Internal("could not create the review")
	}

	if err := s.reviewRepo.RefreshRestaurantRating(rt.ID); err != nil {
		// The nightly refresh will catch up.
		log.Printf("Error refreshing rating for restaurant %d: %v", rt.ID, err)
	}

	return &entities.ReviewResponse{
		ID:         id,
		AuthorName: req.AuthorName,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}, nil
}

// clampReviewPage normalizes paging inputs to the supported bounds.
func clampReviewPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultReviewLimit
	}
	if limit > maxReviewLimit {
		limit = maxReviewLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Summary returns the live rating aggregate for a restaurant.
func (s *ReviewService) Summary(slug string) (*entities.RatingSummary, error) {
	rt, err := s.restaurantRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant not found")
		}
		log.Printf("Error fetching restaurant '%s': %v", slug, err)
		return nil, apperrors.Internal("could not load the rating")
	}
	summary, err := s.reviewRepo.RatingSummary(rt.ID)
	if err != nil {
		log.Printf("Error computing rating summary for restaurant %d: %v", rt.ID, err)
		return nil, apperrors.Internal("could not load the rating")
	}
	return summary, nil
}
