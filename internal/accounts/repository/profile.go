package repository

import (
	"context"
	"fmt"

	accountserrors "servimarket/internal/accounts/errors"
	"servimarket/pkg/model"
	"servimarket/pkg/query"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	Create(ctx context.Context, profile *model.Profile) error
	Update(ctx context.Context, id string, changes query.Row) error
	FindProviderDetails(ctx context.Context, id string) (*model.ProviderDetails, error)
	SaveProviderDetails(ctx context.Context, details *model.ProviderDetails) error
}

type profileRepository struct {
	client *query.Client
}

func NewProfileRepository(client *query.Client) ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	found, err := r.client.From(query.TableProfiles).
		Select("*").
		Eq("id", id).
		Single(ctx).
		Decode(&profile)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if !found {
		return nil, accountserrors.ErrProfileNotFound
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	row, err := query.ToRow(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	res := r.client.From(query.TableProfiles).Insert(ctx, row)
	if res.Err != nil {
		return fmt.Errorf("failed to insert profile: %w", res.Err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, id string, changes query.Row) error {
	res := r.client.From(query.TableProfiles).Update(changes).Eq("id", id).Execute(ctx)
	if res.Err != nil {
		return fmt.Errorf("failed to update profile: %w", res.Err)
	}
	if r.client.Mode() == query.WritePersist && res.Count == 0 {
		return accountserrors.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) FindProviderDetails(ctx context.Context, id string) (*model.ProviderDetails, error) {
	var details model.ProviderDetails
	found, err := r.client.From(query.TableProviderDetails).
		Select("*").
		Eq("id", id).
		Single(ctx).
		Decode(&details)
	if err != nil {
		return nil, fmt.Errorf("failed to find provider details: %w", err)
	}
	if !found {
		return nil, accountserrors.ErrProviderDetailsNotFound
	}
	return &details, nil
}

// SaveProviderDetails updates the existing row for details.ID or inserts one.
func (r *profileRepository) SaveProviderDetails(ctx context.Context, details *model.ProviderDetails) error {
	row, err := query.ToRow(details)
	if err != nil {
		return fmt.Errorf("failed to encode provider details: %w", err)
	}

	table := r.client.From(query.TableProviderDetails)
	existing := table.Select("id").Eq("id", details.ID).Single(ctx)
	if existing.Err != nil {
		return fmt.Errorf("failed to look up provider details: %w", existing.Err)
	}

	if existing.Data != nil {
		delete(row, "id")
		if res := table.Update(row).Eq("id", details.ID).Execute(ctx); res.Err != nil {
			return fmt.Errorf("failed to update provider details: %w", res.Err)
		}
		return nil
	}

	if res := table.Insert(ctx, row); res.Err != nil {
		return fmt.Errorf("failed to insert provider details: %w", res.Err)
	}
	return nil
}
