package validators

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/conexaomental/clinica-api/internal/timezone"
)

var messages = map[string]string{
	"required": "campo obrigatório",
	"email":    "e-mail inválido",
	"min":      "valor muito curto",
	"max":      "valor muito longo",
	"oneof":    "valor não permitido",
	"hhmm":     "horário deve estar no formato HH:MM",
	"date":     "data deve estar no formato AAAA-MM-DD ou DD/MM/AAAA",
	"url":      "URL inválida",
}

// Register instala as regras customizadas no validador do gin. Chamado uma
// vez no boot.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not validator/v10")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("hhmm", isClock); err != nil {
		return err
	}
	return v.RegisterValidation("date", isDate)
}

func isClock(fl validator.FieldLevel) bool {
	_, err := timezone.ParseDateTime("2000-01-01", fl.Field().String())
	return err == nil && len(fl.Field().String()) == 5
}

func isDate(fl validator.FieldLevel) bool {
	_, err := timezone.ParseDate(fl.Field().String())
	return err == nil
}

// Details traduz erros de bind em uma lista por campo; nil quando o erro não
// é de validação (JSON malformado, por exemplo).
func Details(err error) []map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := messages[fe.Tag()]
		if msg == "" {
			msg = fe.Tag()
		}
		out = append(out, map[string]string{"field": fe.Field(), "message": msg})
	}
	return out
}
