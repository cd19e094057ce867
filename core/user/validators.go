package user

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kijani/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"
)

// InitValidators registers user-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)
}

// allRolesValidation checks that all provided roles belong to a known role family.
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, role := range roles {
		var known bool
		for _, family := range AllRoles {
			if strings.HasPrefix(role, family) {
				known = true
				break
			}
		}
		if !known {
			return false
		}
	}
	return true
}
