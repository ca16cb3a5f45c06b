package rekuest

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/util"
)

var Validate = util.NewValidator()

func init() {
	entr := UT.GetFallback()
	if err := enTranslations.RegisterDefaultTranslations(Validate, entr); err != nil {
		log.Warn().Err(err).Str("locale", "en").Msg("could not register translation")
	}

	custom := map[string]string{
		"calendardate":        "{0} must be a calendar date in YYYY-MM-DD format",
		"competitioncategory": "{0} must be one of 5K, 10K, Half, 32K or Full",
	}
	for tag, text := range custom {
		tag, text := tag, text
		err := Validate.RegisterTranslation(tag, entr, func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		})
		if err != nil {
			log.Warn().Err(err).Str("tag", tag).Msg("could not register translation")
		}
	}
}

type ErrorResponse struct {
	Field     string `json:"field,omitempty"`
	Violation string `json:"violation"`
	Message   string `json:"message"`
}

func translate(utt ut.Translator, ve validator.ValidationErrors) []*ErrorResponse {
	trans := make([]*ErrorResponse, 0, len(ve))
	for _, fe := range ve {
		trans = append(trans, &ErrorResponse{
			Field:     fe.Namespace(),
			Violation: fe.Tag(),
			Message:   strings.TrimSpace(fe.Translate(utt)),
		})
	}
	return trans
}

func violations(ctx *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return rcerr.ErrInvalidReq.Msg("invalid request: %s", err)
	}
	return rcerr.NewInvalidViolations(translate(TranslatorFromCtx(ctx), errs))
}

// ValidBody parses the request body into dest, which must be a pointer, and
// validates it. Parse failures and violations are returned as ErrInvalidReq.
func ValidBody(ctx *fiber.Ctx, dest any) error {
	if err := ctx.BodyParser(dest); err != nil {
		return rcerr.ErrInvalidReq.Msg("invalid request: %s", err)
	}

	return violations(ctx, Validate.Struct(dest))
}

func ValidStruct(ctx *fiber.Ctx, dest any) error {
	return violations(ctx, Validate.Struct(dest))
}

func ValidVar(ctx *fiber.Ctx, field any, tag string) error {
	return violations(ctx, Validate.Var(field, tag))
}
