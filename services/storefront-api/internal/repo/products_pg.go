package repo

import (
	"context"
	"errors"

	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductsPG struct {
	DB *pgxpool.Pool
}

var _ Products = (*ProductsPG)(nil)

const productColumns = `id, name, description, price_cents, stock, brand, category, image, created_by, created_at, updated_at`

func scanProduct(row pgx.Row) (models.Product, error) {
	var p models.Product
	var price int64
	var category string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Stock, &p.Brand, &category, &p.Image,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	p.Price = models.Money(price)
	p.Category = models.Category(category)
	return p, err
}

func (r *ProductsPG) Create(ctx context.Context, p *models.Product) error {
	err := conn(ctx, r.DB).QueryRow(ctx, `
		insert into products (name, description, price_cents, stock, brand, category, image, created_by)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id, created_at, updated_at
	`, p.Name, p.Description, p.Price.Cents(), p.Stock, p.Brand, string(p.Category), p.Image, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return pgErr(err, apperr.TypeProductNotFound)
}

func (r *ProductsPG) GetByID(ctx context.Context, id int64) (models.Product, error) {
	p, err := scanProduct(conn(ctx, r.DB).QueryRow(ctx, `select `+productColumns+` from products where id = $1`, id))
	return p, pgErr(err, apperr.TypeProductNotFound)
}

func (r *ProductsPG) GetForUpdate(ctx context.Context, id int64) (models.Product, error) {
	p, err := scanProduct(conn(ctx, r.DB).QueryRow(ctx, `
		select `+productColumns+` from products where id = $1 for update
	`, id))
	return p, pgErr(err, apperr.TypeProductNotFound)
}

func (r *ProductsPG) List(ctx context.Context) ([]models.Product, error) {
	rows, err := conn(ctx, r.DB).Query(ctx, `select `+productColumns+` from products order by id`)
	if err != nil {
		return nil, pgErr(err, "")
	}
	defer rows.Close()

	out := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, pgErr(err, "")
		}
		out = append(out, p)
	}
	return out, pgErr(rows.Err(), "")
}

func (r *ProductsPG) Update(ctx context.Context, p *models.Product) error {
	err := conn(ctx, r.DB).QueryRow(ctx, `
		update products
		set name = $2, description = $3, price_cents = $4, stock = $5,
		    brand = $6, category = $7, image = $8, updated_at = now()
		where id = $1
		returning created_by, created_at, updated_at
	`, p.ID, p.Name, p.Description, p.Price.Cents(), p.Stock, p.Brand, string(p.Category), p.Image).
		Scan(&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return pgErr(err, apperr.TypeProductNotFound)
}

func (r *ProductsPG) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	var stock int
	err := conn(ctx, r.DB).QueryRow(ctx, `
		update products
		set stock = stock + $2, updated_at = now()
		where id = $1 and stock + $2 >= 0
		returning stock
	`, id, delta).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, pgErr(err, "")
	}

	// either the product is gone or the stock is short
	p, gerr := r.GetByID(ctx, id)
	if gerr != nil {
		return 0, gerr
	}
	return p.Stock, apperr.Stock(p.Name)
}

func (r *ProductsPG) Delete(ctx context.Context, id int64) error {
	ct, err := conn(ctx, r.DB).Exec(ctx, `delete from products where id = $1`, id)
	if err != nil {
		return pgErr(err, "")
	}
	if ct.RowsAffected() == 0 {
		return notFound(apperr.TypeProductNotFound)
	}
	return nil
}

func (r *ProductsPG) CountByCreator(ctx context.Context, userID int64) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRow(ctx, `select count(*) from products where created_by = $1`, userID).Scan(&n)
	return n, pgErr(err, "")
}

func (r *ProductsPG) DeleteByCreator(ctx context.Context, userID int64) (int, error) {
	ct, err := conn(ctx, r.DB).Exec(ctx, `delete from products where created_by = $1`, userID)
	if err != nil {
		return 0, pgErr(err, "")
	}
	return int(ct.RowsAffected()), nil
}
