package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/apierror"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/middleware"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their wire name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false after writing the error response; the caller must return
// without writing another one.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidation, "invalid JSON body: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidation, "invalid query: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			respondError(c, err)
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps a service error onto the API envelope. Anything that is
// not one of the service error kinds is logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, apierror.CodeInternal
	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, apierror.CodeValidation
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, apierror.CodeNotFound
	case errors.Is(err, service.ErrInsufficientStock):
		status, code = http.StatusBadRequest, apierror.CodeInsufficientStock
	case errors.Is(err, service.ErrInsufficientBalance):
		status, code = http.StatusBadRequest, apierror.CodeInsufficientBalance
	case errors.Is(err, service.ErrDuplicate):
		status, code = http.StatusBadRequest, apierror.CodeDuplicate
	case errors.Is(err, service.ErrInUse):
		status, code = http.StatusConflict, apierror.CodeInUse
	case errors.Is(err, service.ErrIDExhausted):
		log.Error().Str("request_id", c.GetString(middleware.RequestIDKey)).Err(err).Msg("customer id generation exhausted")
		c.JSON(http.StatusInternalServerError, apierror.New(apierror.CodeIDExhausted, err.Error()))
		return
	default:
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Err(err).
			Msg("request failed")
		c.JSON(status, apierror.Internal())
		return
	}
	c.JSON(status, apierror.New(code, err.Error()))
}
