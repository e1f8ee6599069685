package workflow

import (
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
)

// runValidator evaluates a named field validator against a value. The
// name may carry an argument after a colon, e.g. "min_length:50".
func runValidator(name, field, value string) error {
	kind, arg, _ := strings.Cut(name, ":")

	switch kind {
	case "min_length":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return goerr.New("invalid min_length argument", goerr.V("validator", name))
		}
		if len(value) < n {
			return goerr.Wrap(model.ErrValidation, "field is too short",
				goerr.V("field", field), goerr.V("min_length", n), goerr.V("length", len(value)))
		}
		return nil

	case "yes_no":
		if value != "yes" && value != "no" {
			return goerr.Wrap(model.ErrValidation, "field must be yes or no",
				goerr.V("field", field), goerr.V("value", value))
		}
		return nil

	case "date":
		if _, err := time.Parse("2006-01-02", value); err != nil {
			if _, err := time.Parse(time.RFC3339, value); err != nil {
				return goerr.Wrap(model.ErrValidation, "field must be a date (2006-01-02 or RFC3339)",
					goerr.V("field", field), goerr.V("value", value))
			}
		}
		return nil

	default:
		return goerr.New("unknown validator", goerr.V("validator", name), goerr.V("field", field))
	}
}

// validateRequirements checks every declared requirement of a stage
// against the collection's metadata
func validateRequirements(reqs []policy.Requirement, col *model.Collection) error {
	for _, req := range reqs {
		value := col.Meta(req.Field)

		if value == "" {
			if req.Required {
				return goerr.Wrap(model.ErrValidation, "required field is empty",
					goerr.V("field", req.Field), goerr.V("label", req.Label))
			}
			continue
		}

		if req.Validator != "" {
			if err := runValidator(req.Validator, req.Field, value); err != nil {
				return err
			}
		}
	}
	return nil
}
