package apperror

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var initOnce sync.Once

// Init points gin's validator at wire names so validation details say
// policy_id rather than PolicyID. Safe to call from every entrypoint.
func Init() {
	initOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			RegisterFieldNames(v)
		}
	})
}

func RegisterFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(FieldName)
}

// FieldName is the name a client used for fld: the json key for bodies,
// the form key for query strings, the Go name when neither is tagged.
// A field tagged "-" has no wire name.
func FieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		switch name {
		case "":
			continue
		case "-":
			return ""
		default:
			return name
		}
	}
	return fld.Name
}
