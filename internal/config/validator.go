package config

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"

	forgeerrors "github.com/hdlforge/hdlforge/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	runNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("run_name", func(fl validator.FieldLevel) bool {
			return runNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateWorkspace performs schema validation on the workspace config.
func ValidateWorkspace(ws *Workspace) error {
	if ws == nil {
		return forgeerrors.NewValidationError("workspace", "configuration is nil", nil)
	}
	if err := validatorInstance().Struct(ws); err != nil {
		return convertValidationError(err)
	}
	return nil
}

// ValidateProject performs schema validation on one project definition.
func ValidateProject(proj *Project) error {
	if proj == nil {
		return forgeerrors.NewValidationError("project", "configuration is nil", nil)
	}
	if err := validatorInstance().Struct(proj); err != nil {
		return convertValidationError(err)
	}
	return nil
}

func convertValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		message := fmt.Sprintf("failed on %q rule", first.Tag())
		return forgeerrors.NewValidationError(first.Namespace(), message, err)
	}
	return forgeerrors.NewValidationError("", err.Error(), err)
}
