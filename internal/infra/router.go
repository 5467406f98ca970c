package infra

import (
	"errors"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yshulhan/customers/internal/apperrors"
	"github.com/yshulhan/customers/internal/cache"
	"github.com/yshulhan/customers/internal/handlers"
	"github.com/yshulhan/customers/internal/repository"
	"github.com/yshulhan/customers/internal/service"
	"github.com/yshulhan/customers/internal/validation"
	"github.com/yshulhan/customers/pkg/db/transactor"
)

// Router assembles the echo application: validator, error mapping and the
// customer route groups (v1 over postgres, v2 over mongodb)
func Router(pgPool *pgxpool.Pool, mongoClient *mongo.Client, redisClient *redis.Client) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpErrorHandler(e)

	enLocale := en.New()
	unvTranslator := ut.New(enLocale, enLocale)
	translator, ok := unvTranslator.GetTranslator("en")
	if !ok {
		return nil, errors.New("failed to build validator because of missing en translations")
	}

	echoValidator, err := validation.Echo(validator.New(), translator)
	if err != nil {
		return nil, err
	}
	e.Validator = echoValidator

	// Transactors
	trx := transactor.NewPgxTransactor(pgPool)
	txExecutor := transactor.NewPgxWithinTransactionExecutor(pgPool)

	// Repositories
	pgCustomerRepo := repository.NewPostgresCustomerRepository(txExecutor)
	mongoCustomerRepo := repository.NewMongoCustomerRepository(mongoClient)

	// Caches
	pgCustomerCache := cache.NewRedisCustomerCache(redisClient, "customers:pg")
	mongoCustomerCache := cache.NewRedisCustomerCache(redisClient, "customers:mongo")

	// Services
	customerSvcV1 := service.NewCustomerService(pgCustomerRepo, pgCustomerCache, trx)
	customerSvcV2 := service.NewCustomerService(mongoCustomerRepo, mongoCustomerCache, transactor.NewNoopTransactor())

	// Handlers
	customerHandlerV1 := handlers.NewCustomerHTTPHandler(customerSvcV1)
	customerHandlerV2 := handlers.NewCustomerHTTPHandler(customerSvcV2)

	e.GET("/health", handlers.Health)

	api := e.Group("/api")

	// customers v1
	customersAPIV1 := api.Group("/v1/customers")
	customersAPIV1.GET("", customerHandlerV1.GetAll)
	customersAPIV1.GET("/:id", customerHandlerV1.Get)
	customersAPIV1.POST("", customerHandlerV1.Post)
	customersAPIV1.PUT("/:id", customerHandlerV1.Put)
	customersAPIV1.PUT("/:id/action", customerHandlerV1.Action)
	customersAPIV1.DELETE("/:id", customerHandlerV1.DeleteByID)

	// customers v2
	customersAPIV2 := api.Group("/v2/customers")
	customersAPIV2.GET("", customerHandlerV2.GetAll)
	customersAPIV2.GET("/:id", customerHandlerV2.Get)
	customersAPIV2.POST("", customerHandlerV2.Post)
	customersAPIV2.PUT("/:id", customerHandlerV2.Put)
	customersAPIV2.PUT("/:id/action", customerHandlerV2.Action)
	customersAPIV2.DELETE("/:id", customerHandlerV2.DeleteByID)

	return e, nil
}

// httpErrorHandler maps typed errors to response codes: validation failures
// are client errors, persistence failures stay generic internal errors
func httpErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		logrus.Errorf("error occurred on request processing - %v", err)

		var validationErr *apperrors.ValidationErr
		var payloadErr *validation.PayloadError
		var persistenceErr *apperrors.PersistenceErr

		switch {
		case errors.As(err, &validationErr):
			err = echo.NewHTTPError(http.StatusBadRequest, validationErr)
		case errors.As(err, &payloadErr):
			err = echo.NewHTTPError(http.StatusBadRequest, payloadErr)
		case errors.As(err, &persistenceErr):
			err = echo.NewHTTPError(http.StatusInternalServerError, "database error")
		}

		e.DefaultHTTPErrorHandler(err, c)
	}
}
