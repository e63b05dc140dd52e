package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator initializes the validator with custom validators
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		registerCustom(validate)

		// Use JSON tag names for error messages
		validate.RegisterTagNameFunc(jsonTagName)

		// Also register on Gin's default binding validator
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustom(v)
			v.RegisterTagNameFunc(jsonTagName)
		}
	})

	return validate
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		return InitValidator()
	}
	return validate
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("sku", validateSKU)
	_ = v.RegisterValidation("object_id", validateObjectID)
	_ = v.RegisterValidation("shipment_priority", validatePriority)
	_ = v.RegisterValidation("quality_grade", validateQualityGrade)
	_ = v.RegisterValidation("item_condition", validateItemCondition)
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return fld.Name
	}
	return name
}

var (
	skuRegex      = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,49}$`)
	objectIDRegex = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)
)

func validateSKU(fl validator.FieldLevel) bool {
	return skuRegex.MatchString(fl.Field().String())
}

func validateObjectID(fl validator.FieldLevel) bool {
	return objectIDRegex.MatchString(fl.Field().String())
}

func validatePriority(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "low", "medium", "high", "urgent":
		return true
	}
	return false
}

func validateQualityGrade(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "A", "B", "C":
		return true
	}
	return false
}

func validateItemCondition(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "good", "damaged", "expired":
		return true
	}
	return false
}
