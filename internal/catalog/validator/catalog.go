package validator

import (
	"servimarket/pkg/model"
	"servimarket/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type CatalogValidator struct {
	validate *validator.Validate
}

func NewCatalogValidator() *CatalogValidator {
	return &CatalogValidator{validate: validation.New()}
}

func (v *CatalogValidator) ValidateService(svc *model.Service) error {
	return validation.Struct(v.validate, svc)
}

func (v *CatalogValidator) ValidateServiceUpdate(update *model.ServiceUpdate) error {
	if err := validation.Struct(v.validate, update); err != nil {
		return err
	}
	if update.Title == nil && update.Description == nil && update.Price == nil && update.CategoryID == nil &&
		update.Location == nil && update.Duration == nil && update.ImageURL == nil {
		return validation.Field("body", "at least one field must be provided")
	}
	return nil
}

func (v *CatalogValidator) ValidateReview(review *model.ReviewRequest) error {
	return validation.Struct(v.validate, review)
}
