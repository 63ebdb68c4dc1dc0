package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

// NewSubmissionValidationRules checks intake forms against the configured rating scale.
func NewSubmissionValidationRules(ratingMin, ratingMax int) []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("question_id", questionIDValidator),
		},
		{
			Rule: registerFn("rating", ratingValidator(ratingMin, ratingMax)),
		},
		{
			Rule: registerFn("submission_id", uuidValidator),
		},
	}
}
