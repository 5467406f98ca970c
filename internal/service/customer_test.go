package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/yshulhan/customers/internal/apperrors"
	"github.com/yshulhan/customers/internal/model"
	"github.com/yshulhan/customers/pkg/db/transactor"
)

type customerRepositoryMock struct {
	mock.Mock
}

func (m *customerRepositoryMock) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Customer)
	return c, args.Error(1)
}

func (m *customerRepositoryMock) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	args := m.Called(ctx, email)
	c, _ := args.Get(0).(*model.Customer)
	return c, args.Error(1)
}

func (m *customerRepositoryMock) FindAll(ctx context.Context) ([]*model.Customer, error) {
	args := m.Called(ctx)
	customers, _ := args.Get(0).([]*model.Customer)
	return customers, args.Error(1)
}

func (m *customerRepositoryMock) FindByFilters(ctx context.Context, filters map[string]string) ([]*model.Customer, error) {
	args := m.Called(ctx, filters)
	customers, _ := args.Get(0).([]*model.Customer)
	return customers, args.Error(1)
}

func (m *customerRepositoryMock) Create(ctx context.Context, c *model.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *customerRepositoryMock) Update(ctx context.Context, c *model.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *customerRepositoryMock) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type customerCacheMock struct {
	mock.Mock
}

func (m *customerCacheMock) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Customer)
	return c, args.Error(1)
}

func (m *customerCacheMock) EvictByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *customerCacheMock) Cache(ctx context.Context, c *model.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type customerServiceTestSuite struct {
	suite.Suite
	customerSvc       CustomerService
	customerRepoMock  *customerRepositoryMock
	customerCacheMock *customerCacheMock
	ctx               context.Context
}

func (s *customerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.customerRepoMock = new(customerRepositoryMock)
	s.customerCacheMock = new(customerCacheMock)
	s.customerSvc = NewCustomerService(s.customerRepoMock, s.customerCacheMock, transactor.NewNoopTransactor())
}

func (s *customerServiceTestSuite) storedCustomer() *model.Customer {
	now := time.Now().UTC()
	return &model.Customer{
		ID:           42,
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@x.com",
		Password:     "p",
		Address:      "1 Rd",
		Status:       model.StatusActive,
		CreationDate: &now,
		LastUpdated:  &now,
	}
}

func (s *customerServiceTestSuite) TestCreateSuccessfully() {
	ctx := s.ctx

	s.customerRepoMock.On("FindByEmail", ctx, "jane@x.com").Return(nil, nil).Once()
	s.customerRepoMock.On("Create", ctx, mock.AnythingOfType("*model.Customer")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Customer).ID = 42
	}).Return(nil).Once()

	s.T().Log("customer must be created with defaulted status and store-assigned id")
	{
		c, err := s.customerSvc.Create(ctx, &model.Customer{
			ID:        99, // caller-provided id must be discarded
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@x.com",
			Password:  "p",
			Address:   "1 Rd",
		})
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal(int64(42), c.ID, "id must be assigned by the store")
		s.Assert().Equal(model.StatusActive, c.Status, "status must default to active")
		s.Assert().NotNil(c.CreationDate, "creation date must be stamped")
		s.Assert().NotNil(c.LastUpdated, "last updated must be stamped")
	}
}

func (s *customerServiceTestSuite) TestCreateDuplicateEmail() {
	ctx := s.ctx
	existing := s.storedCustomer()

	s.customerRepoMock.On("FindByEmail", ctx, existing.Email).Return(existing, nil).Once()

	s.T().Log("second customer with the same email must be rejected")
	{
		_, err := s.customerSvc.Create(ctx, &model.Customer{
			FirstName: "Janet",
			LastName:  "Doer",
			Email:     existing.Email,
			Password:  "p2",
			Address:   "2 Rd",
		})
		s.Assert().Error(err, "duplicate email must be rejected")

		var validationErr *apperrors.ValidationErr
		s.Assert().ErrorAs(err, &validationErr, "error must be validation error")
		s.customerRepoMock.AssertNotCalled(s.T(), "Create", ctx, mock.AnythingOfType("*model.Customer"))
	}
}

func (s *customerServiceTestSuite) TestCreateInvalidEmail() {
	ctx := s.ctx

	s.T().Log("malformed email must fail before any store access")
	{
		_, err := s.customerSvc.Create(ctx, &model.Customer{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane-at-x.com",
			Password:  "p",
			Address:   "1 Rd",
		})
		s.Assert().Error(err, "invalid email must be rejected")
		s.customerRepoMock.AssertNotCalled(s.T(), "FindByEmail", ctx, mock.Anything)
		s.customerRepoMock.AssertNotCalled(s.T(), "Create", ctx, mock.Anything)
	}
}

func (s *customerServiceTestSuite) TestChangeStatusNoOp() {
	ctx := s.ctx
	customer := s.storedCustomer()

	s.customerRepoMock.On("FindByID", ctx, customer.ID).Return(customer, nil).Once()

	s.T().Log("activate on an already-active customer must not write")
	{
		c, err := s.customerSvc.ChangeStatus(ctx, customer.ID, model.ActionActivate)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal(model.StatusActive, c.Status, "status must stay active")
		s.customerRepoMock.AssertNotCalled(s.T(), "Update", ctx, mock.AnythingOfType("*model.Customer"))
		s.customerCacheMock.AssertNotCalled(s.T(), "EvictByID", ctx, customer.ID)
	}
}

func (s *customerServiceTestSuite) TestChangeStatusSuspend() {
	ctx := s.ctx
	customer := s.storedCustomer()

	s.customerRepoMock.On("FindByID", ctx, customer.ID).Return(customer, nil).Once()
	s.customerRepoMock.On("Update", ctx, mock.AnythingOfType("*model.Customer")).Return(nil).Once()
	s.customerCacheMock.On("EvictByID", ctx, customer.ID).Return(nil).Once()

	s.T().Log("suspend must persist the transition and evict cache")
	{
		c, err := s.customerSvc.ChangeStatus(ctx, customer.ID, model.ActionSuspend)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal(model.StatusSuspended, c.Status, "status must become suspended")
		s.customerCacheMock.AssertCalled(s.T(), "EvictByID", ctx, customer.ID)
	}
}

func (s *customerServiceTestSuite) TestChangeStatusNotFound() {
	ctx := s.ctx

	s.customerRepoMock.On("FindByID", ctx, int64(7)).Return(nil, nil).Once()

	s.T().Log("absent id must be reported as nil customer, not an error")
	{
		c, err := s.customerSvc.ChangeStatus(ctx, 7, model.ActionSuspend)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Nil(c, "no customer must be returned")
	}
}

func (s *customerServiceTestSuite) TestUpdateByIDPartial() {
	ctx := s.ctx
	customer := s.storedCustomer()
	firstName := "Alina"

	s.customerRepoMock.On("FindByID", ctx, customer.ID).Return(customer, nil).Once()
	s.customerRepoMock.On("Update", ctx, mock.AnythingOfType("*model.Customer")).Return(nil).Once()
	s.customerCacheMock.On("EvictByID", ctx, customer.ID).Return(nil).Once()

	s.T().Log("only fields present in the patch must change")
	{
		c, err := s.customerSvc.UpdateByID(ctx, customer.ID, model.PatchCustomer{FirstName: &firstName})
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Equal(firstName, c.FirstName, "first name must be patched")
		s.Assert().Equal("Doe", c.LastName, "last name must be untouched")
	}
}

func (s *customerServiceTestSuite) TestUpdateByIDInvalidStatus() {
	ctx := s.ctx
	customer := s.storedCustomer()
	bogus := "dormant"

	s.customerRepoMock.On("FindByID", ctx, customer.ID).Return(customer, nil).Once()

	s.T().Log("unknown status in the patch must fail without a write")
	{
		_, err := s.customerSvc.UpdateByID(ctx, customer.ID, model.PatchCustomer{Status: &bogus})
		s.Assert().Error(err, "unknown status must be rejected")
		s.customerRepoMock.AssertNotCalled(s.T(), "Update", ctx, mock.AnythingOfType("*model.Customer"))
	}
}

func (s *customerServiceTestSuite) TestUpdateByIDNotFound() {
	ctx := s.ctx

	s.customerRepoMock.On("FindByID", ctx, int64(7)).Return(nil, nil).Once()

	s.T().Log("absent id must be reported as nil customer, not an error")
	{
		c, err := s.customerSvc.UpdateByID(ctx, 7, model.PatchCustomer{})
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Nil(c, "no customer must be returned")
	}
}

func (s *customerServiceTestSuite) TestDeleteByIDSuccessfully() {
	ctx := s.ctx
	customer := s.storedCustomer()

	s.customerCacheMock.On("EvictByID", ctx, customer.ID).Return(nil).Once()
	s.customerRepoMock.On("DeleteByID", ctx, customer.ID).Return(nil).Once()

	s.T().Log("deleted successfully")
	{
		err := s.customerSvc.DeleteByID(ctx, customer.ID)
		s.Assert().NoError(err, "no error must be raised")
		s.customerRepoMock.AssertCalled(s.T(), "DeleteByID", ctx, customer.ID)
	}
}

func (s *customerServiceTestSuite) TestFindByIDFromCache() {
	ctx := s.ctx
	customer := s.storedCustomer()

	s.customerCacheMock.On("FindByID", ctx, customer.ID).Return(customer, nil).Once()

	s.T().Log("customer must be found in cache")
	{
		_, err := s.customerSvc.FindByID(ctx, customer.ID)
		s.Assert().NoError(err, "no error must be raised")
		s.customerRepoMock.AssertNotCalled(s.T(), "FindByID", ctx, customer.ID)
	}
}

func (s *customerServiceTestSuite) TestFindByIDCached() {
	ctx := s.ctx
	customer := s.storedCustomer()

	s.customerCacheMock.On("FindByID", ctx, customer.ID).Return(nil, nil).Once()
	s.customerRepoMock.On("FindByID", ctx, customer.ID).Return(customer, nil).Once()
	s.customerCacheMock.On("Cache", ctx, customer).Return(nil).Once()

	s.T().Log("customer is not in cache, found in primary datasource and cached")
	{
		c, err := s.customerSvc.FindByID(ctx, customer.ID)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().NotNil(c, "customer must be found")
		s.customerCacheMock.AssertCalled(s.T(), "Cache", ctx, mock.AnythingOfType("*model.Customer"))
	}
}

func (s *customerServiceTestSuite) TestFindByFiltersUnknownField() {
	ctx := s.ctx

	s.T().Log("unknown filter field must be a validation error naming the field")
	{
		_, err := s.customerSvc.FindByFilters(ctx, map[string]string{"first_name": "ali", "importance": "high"})
		s.Assert().Error(err, "unknown filter field must be rejected")

		var validationErr *apperrors.ValidationErr
		s.Assert().ErrorAs(err, &validationErr, "error must be validation error")
		s.Assert().Equal("importance", validationErr.Field())
		s.customerRepoMock.AssertNotCalled(s.T(), "FindByFilters", ctx, mock.Anything)
	}
}

func (s *customerServiceTestSuite) TestFindByFiltersInvalidStatus() {
	ctx := s.ctx

	s.T().Log("status filter value must parse as a valid enum member")
	{
		_, err := s.customerSvc.FindByFilters(ctx, map[string]string{"status": "dormant"})
		s.Assert().Error(err, "invalid status filter must be rejected")
		s.customerRepoMock.AssertNotCalled(s.T(), "FindByFilters", ctx, mock.Anything)
	}
}

func (s *customerServiceTestSuite) TestFindByFiltersSuccessfully() {
	ctx := s.ctx
	filters := map[string]string{"first_name": "ali", "status": "active"}

	s.customerRepoMock.On("FindByFilters", ctx, filters).Return([]*model.Customer{s.storedCustomer()}, nil).Once()

	s.T().Log("valid filters must be passed through to the store")
	{
		customers, err := s.customerSvc.FindByFilters(ctx, filters)
		s.Assert().NoError(err, "no error must be raised")
		s.Assert().Len(customers, 1, "customers must be returned")
	}
}

// start customer service test suite
func TestCustomerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(customerServiceTestSuite))
}
