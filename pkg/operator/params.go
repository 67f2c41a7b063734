package operator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// DecodeParams decodes string service parameters into out and validates it.
//
// Values are converted with weak typing ("true" => bool, "3" => int). Unknown
// keys are ignored. Decoding and validation failures are *Error with
// KindConfigInvalid.
//
// Parameters:
//   - scheme: service scheme, used in error messages
//   - params: flat parameter map (e.g. from FromMap)
//   - out: pointer to a struct with mapstructure and validate tags
func DecodeParams(scheme string, params map[string]string, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return NewError(KindConfigInvalid, OpBuild, "", err)
	}

	if err := decoder.Decode(params); err != nil {
		return NewError(KindConfigInvalid, OpBuild, "", fmt.Errorf("%s: invalid parameters: %w", scheme, err))
	}

	if err := validate.Struct(out); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
			e := validationErrs[0]
			err = fmt.Errorf("%s: parameter %s failed on '%s' tag (value: %v)",
				scheme, e.Field(), e.Tag(), e.Value())
		}
		return NewError(KindConfigInvalid, OpBuild, "", err)
	}

	return nil
}
