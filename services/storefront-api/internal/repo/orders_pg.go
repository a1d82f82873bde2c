package repo

import (
	"context"

	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrdersPG struct {
	DB *pgxpool.Pool
}

var _ Orders = (*OrdersPG)(nil)

const orderSelect = `
	select o.id, o.user_id, u.name, u.email, o.total_cents, o.status, o.created_at, o.updated_at
	from orders o
	join users u on u.id = o.user_id
`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	var total int64
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.UserName, &o.UserEmail, &total, &status, &o.CreatedAt, &o.UpdatedAt)
	o.Total = models.Money(total)
	o.Status = models.OrderStatus(status)
	return o, err
}

// Create inserts the order and its items. Run it inside WithinTx so both land together.
func (r *OrdersPG) Create(ctx context.Context, o *models.Order) error {
	q := conn(ctx, r.DB)

	err := q.QueryRow(ctx, `
		with ins as (
			insert into orders (user_id, total_cents, status)
			values ($1, $2, $3)
			returning id, user_id, created_at, updated_at
		)
		select ins.id, ins.created_at, ins.updated_at, u.name, u.email
		from ins join users u on u.id = ins.user_id
	`, o.UserID, o.Total.Cents(), string(o.Status)).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.UserName, &o.UserEmail)
	if err != nil {
		return pgErr(err, apperr.TypeUserNotFound)
	}

	for pos, it := range o.Items {
		_, err = q.Exec(ctx, `
			insert into order_items (order_id, position, product_id, name, qty, unit_price_cents)
			values ($1, $2, $3, $4, $5, $6)
		`, o.ID, pos, it.ProductID, it.Name, it.Quantity, it.UnitPrice.Cents())
		if err != nil {
			return pgErr(err, "")
		}
	}
	return nil
}

func (r *OrdersPG) GetByID(ctx context.Context, id int64) (models.Order, error) {
	o, err := scanOrder(conn(ctx, r.DB).QueryRow(ctx, orderSelect+` where o.id = $1`, id))
	if err != nil {
		return models.Order{}, pgErr(err, apperr.TypeOrderNotFound)
	}
	orders := []models.Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return models.Order{}, err
	}
	return orders[0], nil
}

func (r *OrdersPG) List(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, orderSelect+` order by o.created_at desc, o.id desc`)
}

func (r *OrdersPG) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return r.list(ctx, orderSelect+` where o.user_id = $1 order by o.created_at desc, o.id desc`, userID)
}

func (r *OrdersPG) list(ctx context.Context, sql string, args ...any) ([]models.Order, error) {
	rows, err := conn(ctx, r.DB).Query(ctx, sql, args...)
	if err != nil {
		return nil, pgErr(err, "")
	}
	defer rows.Close()

	out := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, pgErr(err, "")
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, pgErr(err, "")
	}
	rows.Close()

	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrdersPG) loadItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	idx := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		idx[o.ID] = i
		orders[i].Items = []models.OrderItem{}
	}

	rows, err := conn(ctx, r.DB).Query(ctx, `
		select order_id, product_id, name, qty, unit_price_cents
		from order_items
		where order_id = any($1)
		order by order_id, position
	`, ids)
	if err != nil {
		return pgErr(err, "")
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var it models.OrderItem
		var price int64
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Quantity, &price); err != nil {
			return pgErr(err, "")
		}
		it.UnitPrice = models.Money(price)
		i := idx[orderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return pgErr(rows.Err(), "")
}

func (r *OrdersPG) UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus) error {
	ct, err := conn(ctx, r.DB).Exec(ctx, `
		update orders
		set status = $3, updated_at = now()
		where id = $1 and status = $2
	`, id, string(from), string(to))
	if err != nil {
		return pgErr(err, "")
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := conn(ctx, r.DB).QueryRow(ctx, `select exists(select 1 from orders where id = $1)`, id).Scan(&exists); err != nil {
		return pgErr(err, "")
	}
	if !exists {
		return notFound(apperr.TypeOrderNotFound)
	}
	return apperr.New(apperr.TypeOrderState, "")
}

func (r *OrdersPG) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRow(ctx, `select count(*) from orders where user_id = $1`, userID).Scan(&n)
	return n, pgErr(err, "")
}

// DeleteByUser removes the user's orders; their items go with them (on delete cascade).
func (r *OrdersPG) DeleteByUser(ctx context.Context, userID int64) (int, error) {
	ct, err := conn(ctx, r.DB).Exec(ctx, `delete from orders where user_id = $1`, userID)
	if err != nil {
		return 0, pgErr(err, "")
	}
	return int(ct.RowsAffected()), nil
}
