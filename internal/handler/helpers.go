package handler

import (
	"errors"
	"net/http"
	"reflect"

	"calhaforte/internal/apierror"
	"calhaforte/internal/middleware"
	"calhaforte/internal/profile"
	"calhaforte/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// actorFrom builds the service-layer actor from the request's JWT claims.
func actorFrom(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Actor{}
	}
	id, _ := uuid.Parse(claims.UserID)
	return service.Actor{ID: id, Role: claims.Role}
}

// parseUUIDParam reads a :id path parameter; writes a 400 and returns false on
// malformed input.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError translates the service failure taxonomy onto HTTP.
// Profile-core errors are client mistakes (422); unknown errors bubble to the
// ErrorHandler middleware as 500s without leaking details.
func respondServiceError(c *gin.Context, err error) {
	var (
		transitionErr *service.InvalidTransitionError
		stockErr      *service.InsufficientStockError
		widthErr      *profile.WidthError
	)

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("resource not found"))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, apierror.New("insufficient permissions"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, apierror.New(transitionErr.Error()))
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, apierror.New(stockErr.Error()))
	case errors.Is(err, service.ErrBatchInUse),
		errors.Is(err, service.ErrQuoteNotEditable):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &widthErr),
		errors.Is(err, profile.ErrInvalidSize),
		errors.Is(err, profile.ErrInvalidDirection),
		errors.Is(err, profile.ErrReversal),
		errors.Is(err, profile.ErrEmptyBend),
		errors.Is(err, service.ErrNoPositiveLength),
		errors.Is(err, service.ErrInvalidDiscount),
		errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
