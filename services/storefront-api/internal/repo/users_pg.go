package repo

import (
	"context"

	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersPG struct {
	DB *pgxpool.Pool
}

var _ Users = (*UsersPG)(nil)

const userColumns = `id, name, email, address, phone, role, password_hash, created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Address, &u.Phone, &role, &u.PasswordHash, &u.CreatedAt)
	u.Role = models.Role(role)
	return u, err
}

func (r *UsersPG) Create(ctx context.Context, u *models.User) error {
	err := conn(ctx, r.DB).QueryRow(ctx, `
		insert into users (name, email, address, phone, role, password_hash)
		values ($1, $2, $3, $4, $5, $6)
		returning id, created_at
	`, u.Name, u.Email, u.Address, u.Phone, string(u.Role), u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.New(apperr.TypeUserExists, "")
	}
	return pgErr(err, apperr.TypeUserNotFound)
}

func (r *UsersPG) GetByID(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(conn(ctx, r.DB).QueryRow(ctx, `select `+userColumns+` from users where id = $1`, id))
	return u, pgErr(err, apperr.TypeUserNotFound)
}

func (r *UsersPG) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(conn(ctx, r.DB).QueryRow(ctx, `
		select `+userColumns+` from users where lower(email) = lower($1)
	`, email))
	return u, pgErr(err, apperr.TypeUserNotFound)
}

func (r *UsersPG) List(ctx context.Context) ([]models.User, error) {
	rows, err := conn(ctx, r.DB).Query(ctx, `select `+userColumns+` from users order by id`)
	if err != nil {
		return nil, pgErr(err, "")
	}
	defer rows.Close()

	out := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, pgErr(err, "")
		}
		out = append(out, u)
	}
	return out, pgErr(rows.Err(), "")
}

func (r *UsersPG) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	ct, err := conn(ctx, r.DB).Exec(ctx, `update users set role = $2 where id = $1`, id, string(role))
	if err != nil {
		return pgErr(err, "")
	}
	if ct.RowsAffected() == 0 {
		return notFound(apperr.TypeUserNotFound)
	}
	return nil
}

func (r *UsersPG) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRow(ctx, `select count(*) from users where role = $1`, string(role)).Scan(&n)
	return n, pgErr(err, "")
}

// LockAdmins locks every administrator row until the transaction ends and
// returns how many there are. A concurrent demotion waits, then sees the
// committed roles.
func (r *UsersPG) LockAdmins(ctx context.Context) (int, error) {
	rows, err := conn(ctx, r.DB).Query(ctx,
		`select id from users where role = $1 order by id for update`, string(models.RoleAdmin))
	if err != nil {
		return 0, pgErr(err, "")
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	return n, pgErr(rows.Err(), "")
}

func (r *UsersPG) Delete(ctx context.Context, id int64) error {
	ct, err := conn(ctx, r.DB).Exec(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return pgErr(err, "")
	}
	if ct.RowsAffected() == 0 {
		return notFound(apperr.TypeUserNotFound)
	}
	return nil
}
