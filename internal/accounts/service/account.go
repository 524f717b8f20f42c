package service

import (
	"context"
	"errors"
	"time"

	accountserrors "servimarket/internal/accounts/errors"
	"servimarket/internal/accounts/repository"
	"servimarket/internal/accounts/validator"
	"servimarket/internal/session"
	apperrors "servimarket/pkg/errors"
	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/query"
	"servimarket/pkg/sanitizer"
	"servimarket/pkg/validation"
)

// SessionStore is the part of session.Store the account flows drive.
type SessionStore interface {
	Snapshot() session.Snapshot
	Refresh(ctx context.Context) error
	ReloadProfile(ctx context.Context) error
	SignOut(ctx context.Context)
}

// ProviderAccount is the profile and provider details after a provider
// application.
type ProviderAccount struct {
	Profile         *model.Profile         `json:"profile"`
	ProviderDetails *model.ProviderDetails `json:"provider_details"`
}

type AccountService interface {
	SignUp(ctx context.Context, creds *model.Credentials) (*model.Identity, error)
	SignIn(ctx context.Context, creds *model.Credentials) (*model.Session, error)
	SignOut(ctx context.Context)
	Session(ctx context.Context) session.Snapshot
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.Profile, error)
	BecomeProvider(ctx context.Context, userID string, app *model.ProviderApplication) (*ProviderAccount, error)
}

type accountService struct {
	auth        *query.Auth
	repo        repository.ProfileRepository
	store       SessionStore
	validator   *validator.AccountValidator
	phoneRegion string
	now         func() time.Time
	log         *logger.Logger
}

func NewAccountService(
	auth *query.Auth,
	repo repository.ProfileRepository,
	store SessionStore,
	validator *validator.AccountValidator,
	phoneRegion string,
	log *logger.Logger,
) AccountService {
	return &accountService{
		auth:        auth,
		repo:        repo,
		store:       store,
		validator:   validator,
		phoneRegion: phoneRegion,
		now:         time.Now,
		log:         log,
	}
}

// SignUp registers the account and creates a client profile for it when the
// identity has none yet.
func (s *accountService) SignUp(ctx context.Context, creds *model.Credentials) (*model.Identity, error) {
	creds.FirstName = sanitizer.NormalizeName(creds.FirstName)
	creds.LastName = sanitizer.NormalizeName(creds.LastName)
	if err := s.validator.ValidateCredentials(creds); err != nil {
		s.log.Warn("Sign up validation failed", "error", err)
		return nil, validation.AsAppError("Invalid sign up input", err)
	}

	res := s.auth.SignUp(ctx, *creds)
	if res.Err != nil {
		s.log.Error("Failed to sign up", "error", res.Err)
		return nil, apperrors.Internal("Failed to sign up", res.Err)
	}

	_, err := s.repo.FindByID(ctx, res.User.ID)
	switch {
	case errors.Is(err, accountserrors.ErrProfileNotFound):
		now := s.now().UTC()
		profile := &model.Profile{
			ID:        res.User.ID,
			FirstName: creds.FirstName,
			LastName:  creds.LastName,
			Role:      model.RoleClient,
			UpdatedAt: &now,
		}
		if err := s.repo.Create(ctx, profile); err != nil {
			s.log.Error("Failed to create profile", "user_id", res.User.ID, "error", err)
			return nil, apperrors.Internal("Failed to create profile", err)
		}
		s.log.Info("Profile created for new account", "user_id", res.User.ID)
	case err != nil:
		return nil, apperrors.Internal("Failed to look up profile", err)
	}

	return res.User, nil
}

// SignIn signs in and waits until the session store has picked up the new
// identity and its profile.
func (s *accountService) SignIn(ctx context.Context, creds *model.Credentials) (*model.Session, error) {
	if err := s.validator.ValidateCredentials(creds); err != nil {
		return nil, validation.AsAppError("Invalid sign in input", err)
	}

	res := s.auth.SignInWithPassword(ctx, *creds)
	if res.Err != nil {
		s.log.Error("Failed to sign in", "error", res.Err)
		return nil, apperrors.Internal("Failed to sign in", res.Err)
	}

	if err := s.store.Refresh(ctx); err != nil {
		s.log.Error("Failed to refresh session after sign in", "error", err)
		return nil, apperrors.Unavailable("Session store")
	}

	s.log.Info("Signed in", "user_id", res.Session.User.ID)
	return res.Session, nil
}

func (s *accountService) SignOut(ctx context.Context) {
	s.store.SignOut(ctx)
	s.log.Info("Signed out")
}

func (s *accountService) Session(_ context.Context) session.Snapshot {
	return s.store.Snapshot()
}

func (s *accountService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, accountserrors.ErrProfileNotFound) {
			return nil, apperrors.NotFoundWithID("Profile", userID)
		}
		return nil, apperrors.Internal("Failed to retrieve profile", err)
	}
	return profile, nil
}

// UpdateProfile applies the changed fields. Nothing is written when any
// field is invalid.
func (s *accountService) UpdateProfile(ctx context.Context, userID string, update *model.ProfileUpdate) (*model.Profile, error) {
	sanitizeUpdate(update)
	if err := s.validator.ValidateProfileUpdate(update); err != nil {
		s.log.Warn("Profile update validation failed", "user_id", userID, "error", err)
		return nil, validation.AsAppError("Invalid profile update", err)
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	changes, err := s.profileChanges(profile, update)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, userID, changes); err != nil {
		if errors.Is(err, accountserrors.ErrProfileNotFound) {
			return nil, apperrors.NotFoundWithID("Profile", userID)
		}
		s.log.Error("Failed to update profile", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to update profile", err)
	}

	s.reloadProfile(ctx, userID)
	s.log.Info("Profile updated", "user_id", userID)
	return profile, nil
}

// BecomeProvider switches the profile to the provider role and saves the
// business details.
func (s *accountService) BecomeProvider(ctx context.Context, userID string, app *model.ProviderApplication) (*ProviderAccount, error) {
	app.BusinessName = sanitizer.TrimAndNormalize(app.BusinessName)
	app.Bio = sanitizer.TrimAndNormalize(app.Bio)
	app.Expertise = sanitizer.NormalizeExpertise(app.Expertise)
	app.Address = sanitizer.NormalizeAddress(app.Address)
	if err := s.validator.ValidateProviderApplication(app); err != nil {
		s.log.Warn("Provider application validation failed", "user_id", userID, "error", err)
		return nil, validation.AsAppError("Invalid provider application", err)
	}

	phone := sanitizer.NormalizePhone(app.Phone, s.phoneRegion)
	if phone == "" {
		return nil, validation.AsAppError("Invalid provider application", validation.Field("phone", accountserrors.ErrInvalidPhone.Error()))
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	changes := query.Row{
		"role":       string(model.RoleProvider),
		"phone":      phone,
		"address":    app.Address,
		"updated_at": now.Format(time.RFC3339Nano),
	}
	if err := s.repo.Update(ctx, userID, changes); err != nil {
		s.log.Error("Failed to promote profile", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to update profile", err)
	}

	details := &model.ProviderDetails{
		ID:           userID,
		BusinessName: app.BusinessName,
		Bio:          app.Bio,
		Expertise:    app.Expertise,
	}
	if err := s.repo.SaveProviderDetails(ctx, details); err != nil {
		s.log.Error("Failed to save provider details", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to save provider details", err)
	}

	profile.Role = model.RoleProvider
	profile.Phone = phone
	profile.Address = app.Address
	profile.UpdatedAt = &now

	s.reloadProfile(ctx, userID)
	s.log.Info("Profile promoted to provider", "user_id", userID, "business_name", details.BusinessName)
	return &ProviderAccount{Profile: profile, ProviderDetails: details}, nil
}

func sanitizeUpdate(update *model.ProfileUpdate) {
	for _, field := range []*string{update.FirstName, update.LastName, update.Address, update.Phone, update.AvatarURL} {
		if field != nil {
			*field = sanitizer.TrimAndNormalize(*field)
		}
	}
}

// profileChanges builds the partial row for update and applies the same
// values to profile.
func (s *accountService) profileChanges(profile *model.Profile, update *model.ProfileUpdate) (query.Row, error) {
	changes := query.Row{}

	if update.FirstName != nil {
		profile.FirstName = *update.FirstName
		changes["first_name"] = profile.FirstName
	}
	if update.LastName != nil {
		profile.LastName = *update.LastName
		changes["last_name"] = profile.LastName
	}
	if update.AvatarURL != nil {
		profile.AvatarURL = sanitizer.NormalizeURL(*update.AvatarURL)
		changes["avatar_url"] = profile.AvatarURL
	}
	if update.Address != nil {
		profile.Address = *update.Address
		changes["address"] = profile.Address
	}
	if update.Phone != nil {
		phone := ""
		if raw := *update.Phone; raw != "" {
			phone = sanitizer.NormalizePhone(raw, s.phoneRegion)
			if phone == "" {
				return nil, validation.AsAppError("Invalid profile update", validation.Field("phone", accountserrors.ErrInvalidPhone.Error()))
			}
		}
		profile.Phone = phone
		changes["phone"] = phone
	}

	now := s.now().UTC()
	profile.UpdatedAt = &now
	changes["updated_at"] = now.Format(time.RFC3339Nano)
	return changes, nil
}

func (s *accountService) reloadProfile(ctx context.Context, userID string) {
	snap := s.store.Snapshot()
	if snap.User == nil || snap.User.ID != userID {
		return
	}
	if err := s.store.ReloadProfile(ctx); err != nil {
		s.log.Warn("Failed to reload profile into session", "user_id", userID, "error", err)
	}
}
