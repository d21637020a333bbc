package middleware

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/careline-api/internal/model"
)

var registerOnce sync.Once

// RegisterValidators installs the domain enum tags on gin's validator and
// reports fields by their JSON name.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		validators := map[string]validator.Func{
			"severity": func(fl validator.FieldLevel) bool {
				return model.Severity(fl.Field().String()).Valid()
			},
			"case_status": func(fl validator.FieldLevel) bool {
				return model.CaseStatus(fl.Field().String()).Valid()
			},
			"role": func(fl validator.FieldLevel) bool {
				return model.Role(fl.Field().String()).Valid()
			},
			"sender_type": func(fl validator.FieldLevel) bool {
				return model.SenderType(fl.Field().String()).Valid()
			},
		}
		for tag, fn := range validators {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(err)
			}
		}
	})
}
