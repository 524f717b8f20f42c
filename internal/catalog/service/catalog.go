package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	catalogerrors "servimarket/internal/catalog/errors"
	"servimarket/internal/catalog/repository"
	"servimarket/internal/catalog/validator"
	"servimarket/internal/session"
	apperrors "servimarket/pkg/errors"
	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/query"
	"servimarket/pkg/sanitizer"
	"servimarket/pkg/validation"

	"github.com/google/uuid"
)

type CatalogService interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	ListServices(ctx context.Context, filter model.ServiceFilter) ([]*model.Service, int64, error)
	GetService(ctx context.Context, id string) (*model.Service, error)
	CreateService(ctx context.Context, userID string, svc *model.Service) (*model.Service, error)
	UpdateService(ctx context.Context, userID, id string, update *model.ServiceUpdate) (*model.Service, error)
	DeleteService(ctx context.Context, userID, id string) error
	ListReviews(ctx context.Context, serviceID string) ([]*model.Review, error)
	CreateReview(ctx context.Context, userID, serviceID string, req *model.ReviewRequest) (*model.Review, error)
}

type catalogService struct {
	repo      repository.CatalogRepository
	sessions  session.Reader
	validator *validator.CatalogValidator
	now       func() time.Time
	newID     func() string
	log       *logger.Logger
}

func NewCatalogService(
	repo repository.CatalogRepository,
	sessions session.Reader,
	validator *validator.CatalogValidator,
	log *logger.Logger,
) CatalogService {
	return &catalogService{
		repo:      repo,
		sessions:  sessions,
		validator: validator,
		now:       time.Now,
		newID:     uuid.NewString,
		log:       log,
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.log.Error("Failed to list categories", "error", err)
		return nil, apperrors.Internal("Failed to retrieve categories", err)
	}
	return categories, nil
}

// ListServices filters by category in the query and by search term in
// memory, then pages the result. The total counts every match.
func (s *catalogService) ListServices(ctx context.Context, filter model.ServiceFilter) ([]*model.Service, int64, error) {
	services, err := s.repo.ListServices(ctx, filter.CategoryID)
	if err != nil {
		s.log.Error("Failed to list services", "category_id", filter.CategoryID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve services", err)
	}

	if term := sanitizer.NormalizeSearchTerm(filter.Query); term != "" {
		matched := services[:0]
		for _, svc := range services {
			if strings.Contains(strings.ToLower(svc.Title), term) || strings.Contains(strings.ToLower(svc.ProviderName), term) {
				matched = append(matched, svc)
			}
		}
		services = matched
	}

	total := int64(len(services))
	start := min(filter.Offset, len(services))
	end := len(services)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(services))
	}
	return services[start:end], total, nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindService(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}
	return svc, nil
}

// CreateService lists a new service owned by the signed-in provider. The
// provider name comes from their business name, or their full name when
// they have no provider details.
func (s *catalogService) CreateService(ctx context.Context, userID string, svc *model.Service) (*model.Service, error) {
	snap := s.sessions.Snapshot()
	if !snap.SignedInAs(userID) || !snap.IsProvider() {
		return nil, apperrors.Forbidden("Only providers can list services")
	}

	svc.ID = s.newID()
	svc.ProviderID = userID
	svc.ProviderName = providerName(snap)
	svc.Title = sanitizer.TrimAndNormalize(svc.Title)
	svc.Description = strings.TrimSpace(svc.Description)
	svc.Location = sanitizer.NormalizeAddress(svc.Location)
	svc.ImageURL = sanitizer.NormalizeURL(svc.ImageURL)
	svc.Rating = 0
	svc.ReviewCount = 0
	svc.CreatedAt = nil
	svc.UpdatedAt = nil
	if svc.Duration == 0 {
		svc.Duration = 1
	}

	if err := s.validator.ValidateService(svc); err != nil {
		s.log.Warn("Service validation failed", "provider_id", userID, "error", err)
		return nil, validation.AsAppError("Invalid service input", err)
	}
	if err := s.ensureCategory(ctx, svc.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateService(ctx, svc)
	if err != nil {
		s.log.Error("Failed to create service", "provider_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to create service", err)
	}

	s.log.Info("Service created", "id", created.ID, "provider_id", userID, "category_id", created.CategoryID)
	return created, nil
}

func (s *catalogService) UpdateService(ctx context.Context, userID, id string, update *model.ServiceUpdate) (*model.Service, error) {
	svc, err := s.ownedService(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		*update.Title = sanitizer.TrimAndNormalize(*update.Title)
	}
	if update.Location != nil {
		*update.Location = sanitizer.NormalizeAddress(*update.Location)
	}
	if err := s.validator.ValidateServiceUpdate(update); err != nil {
		s.log.Warn("Service update validation failed", "id", id, "error", err)
		return nil, validation.AsAppError("Invalid service update", err)
	}
	if update.CategoryID != nil {
		if err := s.ensureCategory(ctx, *update.CategoryID); err != nil {
			return nil, err
		}
	}

	changes := serviceChanges(svc, update)
	now := s.now().UTC()
	svc.UpdatedAt = &now
	changes["updated_at"] = now.Format(time.RFC3339Nano)

	if err := s.repo.UpdateService(ctx, id, userID, changes); err != nil {
		if errors.Is(err, catalogerrors.ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		s.log.Error("Failed to update service", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update service", err)
	}

	s.log.Info("Service updated", "id", id, "provider_id", userID)
	return svc, nil
}

func (s *catalogService) DeleteService(ctx context.Context, userID, id string) error {
	if _, err := s.ownedService(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.DeleteService(ctx, id, userID); err != nil {
		if errors.Is(err, catalogerrors.ErrServiceNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		s.log.Error("Failed to delete service", "id", id, "error", err)
		return apperrors.Internal("Failed to delete service", err)
	}

	s.log.Info("Service deleted", "id", id, "provider_id", userID)
	return nil
}

func (s *catalogService) ListReviews(ctx context.Context, serviceID string) ([]*model.Review, error) {
	if _, err := s.GetService(ctx, serviceID); err != nil {
		return nil, err
	}

	reviews, err := s.repo.ListReviews(ctx, serviceID)
	if err != nil {
		s.log.Error("Failed to list reviews", "service_id", serviceID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reviews", err)
	}
	return reviews, nil
}

// CreateReview appends a review and refreshes the service's rating and
// review count. Providers cannot review their own services.
func (s *catalogService) CreateReview(ctx context.Context, userID, serviceID string, req *model.ReviewRequest) (*model.Review, error) {
	req.Comment = strings.TrimSpace(req.Comment)
	if err := s.validator.ValidateReview(req); err != nil {
		return nil, validation.AsAppError("Invalid review", err)
	}

	svc, err := s.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID == userID {
		return nil, apperrors.Forbidden("Providers cannot review their own services")
	}

	now := s.now().UTC()
	review, err := s.repo.CreateReview(ctx, &model.Review{
		ID:        s.newID(),
		ServiceID: serviceID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: &now,
	})
	if err != nil {
		s.log.Error("Failed to create review", "service_id", serviceID, "error", err)
		return nil, apperrors.Internal("Failed to create review", err)
	}

	s.refreshRating(ctx, svc, review)
	s.log.Info("Review created", "id", review.ID, "service_id", serviceID, "rating", review.Rating)
	return review, nil
}

// refreshRating recomputes the average over every stored review plus the
// new one. Failures are logged; the review itself is already saved.
func (s *catalogService) refreshRating(ctx context.Context, svc *model.Service, review *model.Review) {
	reviews, err := s.repo.ListReviews(ctx, svc.ID)
	if err != nil {
		s.log.Warn("Failed to reload reviews for rating", "service_id", svc.ID, "error", err)
		return
	}

	seen := false
	sum := 0
	for _, r := range reviews {
		if r.ID == review.ID {
			seen = true
		}
		sum += r.Rating
	}
	count := len(reviews)
	if !seen {
		sum += review.Rating
		count++
	}

	rating := math.Round(float64(sum)/float64(count)*10) / 10
	changes := query.Row{"rating": rating, "review_count": float64(count)}
	if err := s.repo.UpdateService(ctx, svc.ID, svc.ProviderID, changes); err != nil {
		s.log.Warn("Failed to update service rating", "service_id", svc.ID, "error", err)
	}
}

func (s *catalogService) ownedService(ctx context.Context, userID, id string) (*model.Service, error) {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := s.sessions.Snapshot()
	if !snap.SignedInAs(userID) || !snap.IsProvider() || svc.ProviderID != userID {
		s.log.Warn("Rejected change to service", "id", id, "user_id", userID, "error", catalogerrors.ErrNotOwner)
		return nil, apperrors.Forbidden("Only the owning provider can change this service")
	}
	return svc, nil
}

func (s *catalogService) ensureCategory(ctx context.Context, categoryID string) error {
	if _, err := s.repo.FindCategory(ctx, categoryID); err != nil {
		if errors.Is(err, catalogerrors.ErrCategoryNotFound) {
			return validation.AsAppError("Invalid service input", validation.Field("category_id", "unknown category"))
		}
		return apperrors.Internal("Failed to check category", err)
	}
	return nil
}

func providerName(snap session.Snapshot) string {
	if snap.ProviderDetails != nil && snap.ProviderDetails.BusinessName != "" {
		return snap.ProviderDetails.BusinessName
	}
	if snap.Profile != nil {
		return strings.TrimSpace(snap.Profile.FirstName + " " + snap.Profile.LastName)
	}
	return ""
}

// serviceChanges builds the partial row for update and applies it to svc.
func serviceChanges(svc *model.Service, update *model.ServiceUpdate) query.Row {
	changes := query.Row{}
	if update.Title != nil {
		svc.Title = *update.Title
		changes["title"] = svc.Title
	}
	if update.Description != nil {
		svc.Description = strings.TrimSpace(*update.Description)
		changes["description"] = svc.Description
	}
	if update.Price != nil {
		svc.Price = *update.Price
		changes["price"] = svc.Price
	}
	if update.CategoryID != nil {
		svc.CategoryID = *update.CategoryID
		changes["category_id"] = svc.CategoryID
	}
	if update.Location != nil {
		svc.Location = *update.Location
		changes["location"] = svc.Location
	}
	if update.Duration != nil {
		svc.Duration = *update.Duration
		changes["duration"] = float64(svc.Duration)
	}
	if update.ImageURL != nil {
		svc.ImageURL = sanitizer.NormalizeURL(*update.ImageURL)
		changes["image_url"] = svc.ImageURL
	}
	return changes
}
