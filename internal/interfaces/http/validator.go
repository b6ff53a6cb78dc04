package http

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/suministros-api/internal/application/ledger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Los nombres de campo en los errores siguen el tag json/query del DTO.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	// calendardate: mismas fechas que acepta el libro (AAAA-MM-DD o AAAA/MM/DD).
	_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := ledger.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// fieldErrors campo → regla incumplida.
type fieldErrors map[string]string

func (f fieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validación: " + strings.Join(parts, ", ")
}

// validateStruct aplica los tags validate del DTO. Devuelve fieldErrors si alguna regla falla.
func validateStruct(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := make(fieldErrors, len(ves))
	for _, ve := range ves {
		rule := ve.Tag()
		if ve.Param() != "" {
			rule += "=" + ve.Param()
		}
		out[ve.Field()] = rule
	}
	return out
}
