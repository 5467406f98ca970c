package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yshulhan/customers/internal/apperrors"
	"github.com/yshulhan/customers/internal/cache"
	"github.com/yshulhan/customers/internal/model"
	"github.com/yshulhan/customers/internal/repository"
	"github.com/yshulhan/customers/pkg/db/transactor"
)

// filterable lists the fields a customers list query can be narrowed by
var filterable = map[string]struct{}{
	"first_name": {},
	"last_name":  {},
	"email":      {},
	"password":   {},
	"address":    {},
	"status":     {},
}

// CustomerService represents behavior for customer business operations
type CustomerService interface {
	FindByID(context.Context, int64) (*model.Customer, error)
	FindAll(context.Context) ([]*model.Customer, error)
	FindByFilters(context.Context, map[string]string) ([]*model.Customer, error)
	Create(context.Context, *model.Customer) (*model.Customer, error)
	UpdateByID(context.Context, int64, model.PatchCustomer) (*model.Customer, error)
	ChangeStatus(context.Context, int64, model.Action) (*model.Customer, error)
	DeleteByID(context.Context, int64) error
}

type customerService struct {
	customerRepo  repository.CustomerRepository
	customerCache cache.CustomerCache
	trx           transactor.Transactor
}

// NewCustomerService builds customer service
func NewCustomerService(customerRepo repository.CustomerRepository, customerCache cache.CustomerCache, trx transactor.Transactor) CustomerService {
	return &customerService{customerRepo: customerRepo, customerCache: customerCache, trx: trx}
}

// Create persists a new customer. Any caller-provided id is discarded, the
// store always assigns a fresh one. The duplicate-email check and the insert
// run within a single transaction, the unique constraint on email covers the
// racing-create window.
func (s *customerService) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	c.ID = 0
	if c.Status == "" {
		c.Status = model.StatusActive
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c.CreationDate = &now
	c.LastUpdated = &now

	err := s.trx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.customerRepo.FindByEmail(ctx, c.Email)
		if err != nil {
			return apperrors.NewPersistenceErr(err)
		}
		if existing != nil {
			return apperrors.NewValidationErr("email", fmt.Sprintf("customer with email %q already exists", c.Email))
		}

		if err := s.customerRepo.Create(ctx, c); err != nil {
			return apperrors.NewPersistenceErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateByID applies a partial update to an existing customer, only the
// fields present in the patch change. Returns nil customer when id is absent.
func (s *customerService) UpdateByID(ctx context.Context, id int64, patch model.PatchCustomer) (*model.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewPersistenceErr(err)
	}
	if c == nil {
		return nil, nil
	}

	if err := c.ApplyPatch(patch); err != nil {
		return nil, err
	}

	if patch.Email != nil {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	c.LastUpdated = &now

	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ChangeStatus performs the activate/suspend transition. Transitioning to the
// already-current status is a no-op, no persistence write happens.
func (s *customerService) ChangeStatus(ctx context.Context, id int64, action model.Action) (*model.Customer, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewPersistenceErr(err)
	}
	if c == nil {
		return nil, nil
	}

	target := action.TargetStatus()
	if c.Status == target {
		return c, nil
	}

	c.Status = target
	now := time.Now().UTC()
	c.LastUpdated = &now

	if err := s.persist(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteByID removes a customer, deleting an absent id is a no-op
func (s *customerService) DeleteByID(ctx context.Context, id int64) error {
	if err := s.customerCache.EvictByID(ctx, id); err != nil {
		return err
	}

	err := s.trx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.customerRepo.DeleteByID(ctx, id); err != nil {
			return apperrors.NewPersistenceErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

func (s *customerService) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	c, err := s.customerCache.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c != nil {
		return c, nil
	}

	c, err = s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewPersistenceErr(err)
	}

	if c == nil {
		return nil, nil
	}

	if err := s.customerCache.Cache(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) FindAll(ctx context.Context) ([]*model.Customer, error) {
	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceErr(err)
	}
	return customers, nil
}

// FindByFilters narrows the list by the provided field/value pairs. Unknown
// field names and unparsable status values are validation errors.
func (s *customerService) FindByFilters(ctx context.Context, filters map[string]string) ([]*model.Customer, error) {
	for field, value := range filters {
		if _, ok := filterable[field]; !ok {
			return nil, apperrors.NewValidationErr(field, fmt.Sprintf("unknown filter field %q", field))
		}
		if field == "status" {
			if _, err := model.ParseStatus(value); err != nil {
				return nil, err
			}
		}
	}

	customers, err := s.customerRepo.FindByFilters(ctx, filters)
	if err != nil {
		return nil, apperrors.NewPersistenceErr(err)
	}
	return customers, nil
}

// persist writes current in-memory field values within a transaction and
// evicts the stale cache entry
func (s *customerService) persist(ctx context.Context, c *model.Customer) error {
	err := s.trx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.customerRepo.Update(ctx, c); err != nil {
			return apperrors.NewPersistenceErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.customerCache.EvictByID(ctx, c.ID)
}
