package http

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yanqian/accessroute/internal/domain/report"
)

var registerOnce sync.Once

// registerValidations adds the domain tags to gin's validator engine.
func registerValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("lat", validateLat)
		_ = v.RegisterValidation("lng", validateLng)
		_ = v.RegisterValidation("issuetype", validateIssueType)
	})
}

func validateLat(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90.0 && lat <= 90.0
}

func validateLng(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= -180.0 && lng <= 180.0
}

func validateIssueType(fl validator.FieldLevel) bool {
	return report.IssueType(fl.Field().String()).Valid()
}
