package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yshulhan/customers/internal/model"
	"github.com/yshulhan/customers/internal/service"
)

type newCustomer struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,customer_email"`
	Password  string `json:"password" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Status    string `json:"status" validate:"omitempty,oneof=active suspended deleted"`
}

type statusAction struct {
	Action string `json:"action" validate:"required"`
}

// CustomerHTTPHandler is http handler for customer endpoint
type CustomerHTTPHandler struct {
	customerSvc service.CustomerService
}

// NewCustomerHTTPHandler builds new CustomerHTTPHandler
func NewCustomerHTTPHandler(customerSvc service.CustomerService) *CustomerHTTPHandler {
	return &CustomerHTTPHandler{customerSvc: customerSvc}
}

// Get returns single customer by id
func (h *CustomerHTTPHandler) Get(c echo.Context) error {
	id, err := customerID(c)
	if err != nil {
		return err
	}

	customer, err := h.customerSvc.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	if customer == nil {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer with id %d was not found", id))
	}
	return c.JSON(http.StatusOK, customer)
}

// GetAll returns all customers, optionally narrowed by query-parameter
// filters on the customer fields
func (h *CustomerHTTPHandler) GetAll(c echo.Context) error {
	filters := make(map[string]string)
	for field, values := range c.QueryParams() {
		if len(values) > 0 {
			filters[field] = values[0]
		}
	}

	if len(filters) == 0 {
		customers, err := h.customerSvc.FindAll(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, customers)
	}

	customers, err := h.customerSvc.FindByFilters(c.Request().Context(), filters)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// Post creates new customer
func (h *CustomerHTTPHandler) Post(c echo.Context) error {
	var nc newCustomer
	if err := c.Bind(&nc); err != nil {
		return bindErr(err)
	}

	if err := c.Validate(&nc); err != nil {
		return err
	}

	customer, err := h.customerSvc.Create(c.Request().Context(), &model.Customer{
		FirstName: nc.FirstName,
		LastName:  nc.LastName,
		Email:     nc.Email,
		Password:  nc.Password,
		Address:   nc.Address,
		Status:    model.Status(nc.Status),
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, locationURL(c, customer.ID))
	return c.JSON(http.StatusCreated, customer)
}

// Put partially updates customer, only the fields present in the payload change
func (h *CustomerHTTPHandler) Put(c echo.Context) error {
	id, err := customerID(c)
	if err != nil {
		return err
	}

	var patch model.PatchCustomer
	if err := c.Bind(&patch); err != nil {
		return bindErr(err)
	}

	customer, err := h.customerSvc.UpdateByID(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}

	if customer == nil {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer with id %d was not found", id))
	}
	return c.JSON(http.StatusOK, customer)
}

// Action performs the activate/suspend status transition
func (h *CustomerHTTPHandler) Action(c echo.Context) error {
	id, err := customerID(c)
	if err != nil {
		return err
	}

	var sa statusAction
	if err := c.Bind(&sa); err != nil {
		return bindErr(err)
	}

	if err := c.Validate(&sa); err != nil {
		return err
	}

	action, err := model.ParseAction(sa.Action)
	if err != nil {
		return err
	}

	customer, err := h.customerSvc.ChangeStatus(c.Request().Context(), id, action)
	if err != nil {
		return err
	}

	if customer == nil {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer with id %d was not found", id))
	}
	return c.JSON(http.StatusOK, customer)
}

// DeleteByID deletes customer, responds 204 whether or not the id existed
func (h *CustomerHTTPHandler) DeleteByID(c echo.Context) error {
	id, err := customerID(c)
	if err != nil {
		return err
	}

	if err := h.customerSvc.DeleteByID(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func customerID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("customer id must be an integer, got %q", c.Param("id")))
	}
	return id, nil
}

func locationURL(c echo.Context, id int64) string {
	return fmt.Sprintf("%s/%d", strings.TrimSuffix(c.Request().URL.Path, "/"), id)
}

// bindErr keeps echo's 415 for unsupported content type, anything else the
// binder rejects is a plain bad request
func bindErr(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusUnsupportedMediaType {
		return err
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
