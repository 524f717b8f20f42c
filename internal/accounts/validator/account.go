package validator

import (
	"servimarket/pkg/logger"
	"servimarket/pkg/model"
	"servimarket/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AccountValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAccountValidator(log *logger.Logger) *AccountValidator {
	return &AccountValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *AccountValidator) ValidateCredentials(creds *model.Credentials) error {
	return validation.Struct(v.validate, creds)
}

func (v *AccountValidator) ValidateProfileUpdate(update *model.ProfileUpdate) error {
	if err := validation.Struct(v.validate, update); err != nil {
		return err
	}
	if update.FirstName == nil && update.LastName == nil && update.AvatarURL == nil &&
		update.Phone == nil && update.Address == nil {
		return validation.Field("body", "at least one field must be provided")
	}
	return nil
}

func (v *AccountValidator) ValidateProviderApplication(app *model.ProviderApplication) error {
	return validation.Struct(v.validate, app)
}
