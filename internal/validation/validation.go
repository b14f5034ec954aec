// ===========================================
// Package validation - Input Validation Rules
// ===========================================
// Rule tables for create/update payloads and path parameters.
// Validation runs after normalization and reports every violated
// field at once rather than stopping at the first failure.
//
// The analytics tag ID rules are deliberately permissive about
// letter case after the prefix (GTM-572gxwpp is as valid as
// GTM-572GXWPP); container IDs in the wild are mixed case.
// ===========================================

package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/user/smartlink/internal/models"
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	gtmPattern  = regexp.MustCompile(`^GTM-[A-Za-z0-9]+$`)
	ga4Pattern  = regexp.MustCompile(`^G-[A-Za-z0-9]+$`)
	adsPattern  = regexp.MustCompile(`^AW-[0-9]+$`)
)

// allowedPlatforms is the fixed redirect allow-list. Requests for
// any other platform are rejected before the store is consulted.
var allowedPlatforms = map[string]struct{}{
	"spotify":     {},
	"appleMusic":  {},
	"youtube":     {},
	"deezer":      {},
	"amazonMusic": {},
	"tidal":       {},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields under their JSON names so error details match
	// what the client actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "gtmid", func(fl validator.FieldLevel) bool {
		return gtmPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "ga4id", func(fl validator.FieldLevel) bool {
		return ga4Pattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "adsid", func(fl validator.FieldLevel) bool {
		return adsPattern.MatchString(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// InvalidInputError carries the full list of violated fields.
type InvalidInputError struct {
	Fields []models.FieldError
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %d field(s) failed validation", len(e.Fields))
}

// Link validates a normalized payload. All rules are evaluated
// together; on failure the returned *InvalidInputError lists every
// violated field with a client-facing message.
func Link(in *models.LinkInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Non-validation failure (bad rule wiring); surface as-is.
		return err
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return &InvalidInputError{Fields: fields}
}

// fieldPath strips the root struct name from the error namespace,
// leaving "artist" or "analytics.gtmId".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "slug":
		return "slug may only contain lowercase letters, numbers and single hyphens"
	case "url":
		return fmt.Sprintf("%s must be a valid absolute URL", fe.Field())
	case "gtmid":
		return "expected format GTM-XXXXXXX"
	case "ga4id":
		return "expected format G-XXXXXXX"
	case "adsid":
		return "expected format AW-XXXXXXX"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// IsValidSlug reports whether a path parameter is a well-formed slug.
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// IsAllowedPlatform reports whether the platform key is on the
// redirect allow-list.
func IsAllowedPlatform(platform string) bool {
	_, ok := allowedPlatforms[platform]
	return ok
}
