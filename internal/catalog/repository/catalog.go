package repository

import (
	"context"
	"fmt"

	catalogerrors "servimarket/internal/catalog/errors"
	"servimarket/pkg/model"
	"servimarket/pkg/query"
)

type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	FindCategory(ctx context.Context, id string) (*model.Category, error)
	ListServices(ctx context.Context, categoryID string) ([]*model.Service, error)
	FindService(ctx context.Context, id string) (*model.Service, error)
	CreateService(ctx context.Context, svc *model.Service) (*model.Service, error)
	UpdateService(ctx context.Context, id, providerID string, changes query.Row) error
	DeleteService(ctx context.Context, id, providerID string) error
	ListReviews(ctx context.Context, serviceID string) ([]*model.Review, error)
	CreateReview(ctx context.Context, review *model.Review) (*model.Review, error)
}

type catalogRepository struct {
	client *query.Client
}

func NewCatalogRepository(client *query.Client) CatalogRepository {
	return &catalogRepository{client: client}
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	if err := r.client.From(query.TableCategories).Select("*").Execute(ctx).Decode(&categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *catalogRepository) FindCategory(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	found, err := r.client.From(query.TableCategories).Select("*").Eq("id", id).Single(ctx).Decode(&category)
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	if !found {
		return nil, catalogerrors.ErrCategoryNotFound
	}
	return &category, nil
}

// ListServices returns services newest first, narrowed to categoryID when it
// is not empty.
func (r *catalogRepository) ListServices(ctx context.Context, categoryID string) ([]*model.Service, error) {
	q := r.client.From(query.TableServices).Select("*")
	if categoryID != "" {
		q = q.Eq("category_id", categoryID)
	}

	var services []*model.Service
	if err := q.Order("created_at", query.Descending).Execute(ctx).Decode(&services); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *catalogRepository) FindService(ctx context.Context, id string) (*model.Service, error) {
	var svc model.Service
	found, err := r.client.From(query.TableServices).Select("*").Eq("id", id).Single(ctx).Decode(&svc)
	if err != nil {
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	if !found {
		return nil, catalogerrors.ErrServiceNotFound
	}
	return &svc, nil
}

func (r *catalogRepository) CreateService(ctx context.Context, svc *model.Service) (*model.Service, error) {
	row, err := query.ToRow(svc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode service: %w", err)
	}

	var created []*model.Service
	if err := r.client.From(query.TableServices).Insert(ctx, row).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to insert service: %w", err)
	}
	if len(created) == 0 {
		return svc, nil
	}
	return created[0], nil
}

// UpdateService only touches the row when it belongs to providerID.
func (r *catalogRepository) UpdateService(ctx context.Context, id, providerID string, changes query.Row) error {
	res := r.client.From(query.TableServices).
		Update(changes).
		Eq("id", id).
		Eq("provider_id", providerID).
		Execute(ctx)
	if res.Err != nil {
		return fmt.Errorf("failed to update service: %w", res.Err)
	}
	if r.client.Mode() == query.WritePersist && res.Count == 0 {
		return catalogerrors.ErrServiceNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteService(ctx context.Context, id, providerID string) error {
	res := r.client.From(query.TableServices).
		Delete().
		Eq("id", id).
		Eq("provider_id", providerID).
		Execute(ctx)
	if res.Err != nil {
		return fmt.Errorf("failed to delete service: %w", res.Err)
	}
	if r.client.Mode() == query.WritePersist && res.Count == 0 {
		return catalogerrors.ErrServiceNotFound
	}
	return nil
}

// ListReviews returns the reviews of serviceID, newest first.
func (r *catalogRepository) ListReviews(ctx context.Context, serviceID string) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.client.From(query.TableReviews).
		Select("*").
		Eq("service_id", serviceID).
		Order("created_at", query.Descending).
		Execute(ctx).
		Decode(&reviews)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *catalogRepository) CreateReview(ctx context.Context, review *model.Review) (*model.Review, error) {
	row, err := query.ToRow(review)
	if err != nil {
		return nil, fmt.Errorf("failed to encode review: %w", err)
	}

	var created []*model.Review
	if err := r.client.From(query.TableReviews).Insert(ctx, row).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}
	if len(created) == 0 {
		return review, nil
	}
	return created[0], nil
}
