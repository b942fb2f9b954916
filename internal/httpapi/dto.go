package httpapi

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// CreateMaterialRequest is the body of POST /pricing/{tech}.
type CreateMaterialRequest struct {
	Material string `json:"material" binding:"required,materialname"`
	Price    int    `json:"price" binding:"required,gt=0"`
}

// UpdatePriceRequest is the body of PATCH /pricing/{tech}/{material}.
type UpdatePriceRequest struct {
	Price int `json:"price" binding:"required,gt=0"`
}

var materialNamePattern = regexp.MustCompile(`^[A-Za-z0-9 +_-]+$`)

// registerMaterialNameValidator teaches gin's binding validator the
// "materialname" tag used above: letters, digits, spaces, and +_- only, so a
// pricing key can never smuggle path separators or JSON-breaking characters
// into configs/pricing.json.
func registerMaterialNameValidator(v *validator.Validate) {
	_ = v.RegisterValidation("materialname", func(fl validator.FieldLevel) bool {
		return materialNamePattern.MatchString(fl.Field().String())
	})
}
