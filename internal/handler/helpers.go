package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/T0MGL/0rdefy-sub002/internal/apierror"
	"github.com/T0MGL/0rdefy-sub002/internal/middleware"
	"github.com/T0MGL/0rdefy-sub002/internal/repository"
	"github.com/T0MGL/0rdefy-sub002/internal/service"

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

// storeIDFromClaims extracts the tenant scope stamped into the JWT.
// Aborts with 401 when the claim is missing or malformed.
func storeIDFromClaims(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.StoreID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid store scope"))
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a :param path segment as a UUID, writing the 400 itself.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+param))
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps domain errors to HTTP statuses. Anything the
// taxonomy does not recognize falls through as a 400 with the error text,
// except not-found lookups which become 404.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case service.IsInsufficientStock(err):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrLineItemsImmutable),
		errors.Is(err, service.ErrOrderHasDeductedStock),
		errors.Is(err, service.ErrProductReferenced),
		errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrReferenceCapacity):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
	case errors.Is(err, service.ErrNoProductMatch):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case strings.Contains(err.Error(), "not found"):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
