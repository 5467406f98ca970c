package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"

	"github.com/yshulhan/customers/internal/model"
	"github.com/yshulhan/customers/pkg/db/transactor"
)

const customerColumns = "id, first_name, last_name, email, password, address, status, creation_date, last_updated"

// CustomerRepository represents behavior for customers durable store
type CustomerRepository interface {
	FindByID(context.Context, int64) (*model.Customer, error)
	FindByEmail(context.Context, string) (*model.Customer, error)
	FindAll(context.Context) ([]*model.Customer, error)
	FindByFilters(context.Context, map[string]string) ([]*model.Customer, error)
	Create(context.Context, *model.Customer) error
	Update(context.Context, *model.Customer) error
	DeleteByID(context.Context, int64) error
}

type postgresCustomerRepository struct {
	trx transactor.PgxWithinTransactionExecutor
}

// NewPostgresCustomerRepository builds customer repository over postgres
func NewPostgresCustomerRepository(trx transactor.PgxWithinTransactionExecutor) CustomerRepository {
	return &postgresCustomerRepository{trx: trx}
}

func (r *postgresCustomerRepository) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	q := fmt.Sprintf("SELECT %s FROM customers WHERE id = $1", customerColumns)
	row := r.trx.Executor(ctx).QueryRow(ctx, q, id)
	return r.scanRow(row)
}

func (r *postgresCustomerRepository) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	q := fmt.Sprintf("SELECT %s FROM customers WHERE email = $1 AND status <> $2", customerColumns)
	row := r.trx.Executor(ctx).QueryRow(ctx, q, email, model.StatusDeleted)
	return r.scanRow(row)
}

func (r *postgresCustomerRepository) FindAll(ctx context.Context) ([]*model.Customer, error) {
	q := fmt.Sprintf("SELECT %s FROM customers", customerColumns)
	rows, err := r.trx.Executor(ctx).Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// FindByFilters narrows the customers list by the provided field filters.
// Field names are restricted by the service layer before they reach this
// query builder. Status matches exactly, any other field matches as
// case-insensitive substring, all filters are conjunctive.
func (r *postgresCustomerRepository) FindByFilters(ctx context.Context, filters map[string]string) ([]*model.Customer, error) {
	if len(filters) == 0 {
		return r.FindAll(ctx)
	}

	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for field, value := range filters {
		args = append(args, value)
		if field == "status" {
			conds = append(conds, fmt.Sprintf("%s = $%d", field, len(args)))
			continue
		}
		conds = append(conds, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", field, len(args)))
	}

	q := fmt.Sprintf("SELECT %s FROM customers WHERE %s", customerColumns, strings.Join(conds, " AND "))
	rows, err := r.trx.Executor(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanRows(rows)
}

func (r *postgresCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	q := `INSERT INTO customers(first_name, last_name, email, password, address, status, creation_date, last_updated)
          VALUES($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	row := r.trx.Executor(ctx).QueryRow(ctx, q, c.FirstName, c.LastName, c.Email, c.Password, c.Address, c.Status, c.CreationDate, c.LastUpdated)
	if err := row.Scan(&c.ID); err != nil {
		return err
	}
	return nil
}

func (r *postgresCustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	q := `UPDATE customers SET first_name = $1, last_name = $2, email = $3, password = $4, address = $5, status = $6, last_updated = $7
          WHERE id = $8`
	if _, err := r.trx.Executor(ctx).Exec(ctx, q, c.FirstName, c.LastName, c.Email, c.Password, c.Address, c.Status, c.LastUpdated, c.ID); err != nil {
		return err
	}
	return nil
}

func (r *postgresCustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	q := "DELETE FROM customers WHERE id = $1"
	if _, err := r.trx.Executor(ctx).Exec(ctx, q, id); err != nil {
		return err
	}
	return nil
}

func (r *postgresCustomerRepository) scanRow(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Password, &c.Address, &c.Status, &c.CreationDate, &c.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCustomerRepository) scanRows(rows pgx.Rows) ([]*model.Customer, error) {
	customers := make([]*model.Customer, 0)
	for rows.Next() {
		var c model.Customer
		err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Password, &c.Address, &c.Status, &c.CreationDate, &c.LastUpdated)
		if err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}
