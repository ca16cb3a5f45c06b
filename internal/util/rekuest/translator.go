package rekuest

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"
)

// LocalsKeyTranslator holds a request scoped ut.Translator when a middleware
// picked one; otherwise the English translator is used.
const LocalsKeyTranslator = "T"

var UT = ut.New(en.New())

func TranslatorFromCtx(ctx *fiber.Ctx) ut.Translator {
	if ctx != nil {
		if t, ok := ctx.Locals(LocalsKeyTranslator).(ut.Translator); ok {
			return t
		}
	}
	return UT.GetFallback()
}
