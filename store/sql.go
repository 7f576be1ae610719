package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"go-hackhub/logger"
	"go-hackhub/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLStore keeps each collection in a table holding the JSON document plus
// the columns it is looked up by. It runs on SQLite (modernc) or Postgres (pgx).
type SQLStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
	// forUpdate locks rows read inside a read-modify-write transaction.
	// SQLite runs on a single connection and needs no row locks.
	forUpdate bool
}

var _ Store = (*SQLStore)(nil)

// OpenSQL opens a document store for driver "sqlite" or "postgres" and
// creates the schema if it does not exist yet.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	var (
		driverName  string
		placeholder sq.PlaceholderFormat
	)
	switch driver {
	case "sqlite":
		driverName, placeholder = "sqlite", sq.Question
	case "postgres":
		driverName, placeholder = "pgx", sq.Dollar
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// one connection keeps :memory: databases shared and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	s := &SQLStore{
		db:        db,
		sb:        sq.StatementBuilder.PlaceholderFormat(placeholder),
		forUpdate: driver == "postgres",
	}
	if err := s.CreateSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info.Printf("[store.OpenSQL] Connected to %s document store", driver)
	return s, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// isUniqueViolation recognises unique-constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func mapWriteErr(err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// execOne runs an update/delete and reports ErrNotFound when no row matched.
func (s *SQLStore) execOne(ctx context.Context, runner execer, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	res, err := runner.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) insert(ctx context.Context, runner execer, b sq.InsertBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := runner.ExecContext(ctx, query, args...); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

// getDoc loads one JSON body; it returns ErrNotFound for no rows.
func getDoc[T any](ctx context.Context, db *sql.DB, b sq.SelectBuilder) (*T, error) {
	query, args, err := b.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	var body string
	if err := db.QueryRowContext(ctx, query, args...).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return decode[T]([]byte(body))
}

// listDocs loads every JSON body selected by b.
func listDocs[T any](ctx context.Context, db *sql.DB, b sq.SelectBuilder) ([]T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	list := []T{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		v, err := decode[T]([]byte(body))
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

// ---------------- users ----------------

func (s *SQLStore) CreateUser(ctx context.Context, u *models.User) error {
	body, err := encode(u)
	if err != nil {
		return err
	}
	return s.insert(ctx, s.db, s.sb.Insert("users").
		Columns("id", "username", "role", "created_at", "body").
		Values(u.ID, u.Username, string(u.Role), u.CreatedAt.UnixNano(), string(body)))
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return getDoc[models.User](ctx, s.db, s.sb.Select("body").From("users").Where(sq.Eq{"id": id}))
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return getDoc[models.User](ctx, s.db, s.sb.Select("body").From("users").Where(sq.Eq{"username": username}))
}

func (s *SQLStore) UpdateUser(ctx context.Context, u *models.User) error {
	return s.updateUser(ctx, s.db, u)
}

func (s *SQLStore) updateUser(ctx context.Context, runner execer, u *models.User) error {
	body, err := encode(u)
	if err != nil {
		return err
	}
	return s.execOne(ctx, runner, s.sb.Update("users").
		Set("username", u.Username).
		Set("role", string(u.Role)).
		Set("body", string(body)).
		Where(sq.Eq{"id": u.ID}))
}

func (s *SQLStore) ModifyUser(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error) {
	var u *models.User
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		b := s.sb.Select("body").From("users").Where(sq.Eq{"id": id})
		if s.forUpdate {
			b = b.Suffix("FOR UPDATE")
		}
		query, args, err := b.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		var body string
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&body); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("error executing query: %w", err)
		}
		if u, err = decode[models.User]([]byte(body)); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		return s.updateUser(ctx, tx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	b := s.sb.Select("body").From("users").OrderBy("created_at ASC")
	if role != "" {
		b = b.Where(sq.Eq{"role": string(role)})
	}
	return listDocs[models.User](ctx, s.db, b)
}

// ---------------- hackathons ----------------

func hackathonBody(h *models.Hackathon) (string, error) {
	doc := *h
	doc.Attendants = nil
	b, err := encode(doc)
	return string(b), err
}

func (s *SQLStore) CreateHackathon(ctx context.Context, h *models.Hackathon) error {
	body, err := hackathonBody(h)
	if err != nil {
		return err
	}
	return s.insert(ctx, s.db, s.sb.Insert("hackathons").
		Columns("id", "organization", "status", "city_key", "country_key", "created_at", "body").
		Values(h.ID, h.Organization, string(h.Status),
			strings.ToLower(h.Location.City), strings.ToLower(h.Location.Country),
			h.CreatedAt.UnixNano(), body))
}

func (s *SQLStore) GetHackathon(ctx context.Context, id string) (*models.Hackathon, error) {
	return getDoc[models.Hackathon](ctx, s.db, s.sb.Select("body").From("hackathons").Where(sq.Eq{"id": id}))
}

func (s *SQLStore) UpdateHackathon(ctx context.Context, h *models.Hackathon) error {
	body, err := hackathonBody(h)
	if err != nil {
		return err
	}
	return s.execOne(ctx, s.db, s.sb.Update("hackathons").
		Set("status", string(h.Status)).
		Set("city_key", strings.ToLower(h.Location.City)).
		Set("country_key", strings.ToLower(h.Location.Country)).
		Set("body", body).
		Where(sq.Eq{"id": h.ID}))
}

func (s *SQLStore) ListHackathons(ctx context.Context, f models.HackathonFilter) ([]models.Hackathon, error) {
	b := s.sb.Select("body").From("hackathons").OrderBy("created_at DESC")
	if f.City != "" {
		b = b.Where(sq.Eq{"city_key": strings.ToLower(f.City)})
	}
	if f.Country != "" {
		b = b.Where(sq.Eq{"country_key": strings.ToLower(f.Country)})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.Organization != "" {
		b = b.Where(sq.Eq{"organization": f.Organization})
	}
	list, err := listDocs[models.Hackathon](ctx, s.db, b)
	if err != nil {
		return nil, err
	}
	// name is a substring match; applied here so LIKE wildcards in user input stay literal
	filtered := list[:0]
	for _, h := range list {
		if f.Matches(h) {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

// ---------------- attendants ----------------

func (s *SQLStore) CreateAttendant(ctx context.Context, a *models.Attendant) error {
	body, err := encode(a)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.insert(ctx, tx, s.sb.Insert("attendants").
			Columns("id", "user_id", "hackathon_id", "created_at", "body").
			Values(a.ID, a.User, a.Hackathon, a.CreatedAt.UnixNano(), string(body))); err != nil {
			return err
		}
		return s.indexInvites(ctx, tx, a)
	})
}

// indexInvites rewrites the invite id → attendant id lookup rows for a.
func (s *SQLStore) indexInvites(ctx context.Context, tx *sql.Tx, a *models.Attendant) error {
	query, args, err := s.sb.Delete("attendant_invites").Where(sq.Eq{"attendant_id": a.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error clearing invite index: %w", err)
	}
	if len(a.Invites) == 0 {
		return nil
	}
	ins := s.sb.Insert("attendant_invites").Columns("invite_id", "attendant_id")
	for _, inv := range a.Invites {
		ins = ins.Values(inv.ID, a.ID)
	}
	return s.insert(ctx, tx, ins)
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) GetAttendant(ctx context.Context, id string) (*models.Attendant, error) {
	return getDoc[models.Attendant](ctx, s.db, s.sb.Select("body").From("attendants").Where(sq.Eq{"id": id}))
}

func (s *SQLStore) FindAttendant(ctx context.Context, hackathonID, userID string) (*models.Attendant, error) {
	return getDoc[models.Attendant](ctx, s.db, s.sb.Select("body").From("attendants").
		Where(sq.Eq{"hackathon_id": hackathonID, "user_id": userID}))
}

func (s *SQLStore) FindAttendantByInvite(ctx context.Context, inviteID string) (*models.Attendant, error) {
	return getDoc[models.Attendant](ctx, s.db, s.sb.Select("a.body").
		From("attendants a").
		Join("attendant_invites i ON i.attendant_id = a.id").
		Where(sq.Eq{"i.invite_id": inviteID}))
}

func (s *SQLStore) UpdateAttendant(ctx context.Context, a *models.Attendant) error {
	return s.UpdateAttendants(ctx, a)
}

func (s *SQLStore) UpdateAttendants(ctx context.Context, attendants ...*models.Attendant) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range attendants {
			body, err := encode(a)
			if err != nil {
				return err
			}
			if err := s.execOne(ctx, tx, s.sb.Update("attendants").
				Set("body", string(body)).
				Where(sq.Eq{"id": a.ID})); err != nil {
				return err
			}
			if err := s.indexInvites(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLStore) DeleteAttendant(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.indexInvites(ctx, tx, &models.Attendant{ID: id}); err != nil {
			return err
		}
		return s.execOne(ctx, tx, s.sb.Delete("attendants").Where(sq.Eq{"id": id}))
	})
}

func (s *SQLStore) ListAttendantsByHackathon(ctx context.Context, hackathonID string) ([]models.Attendant, error) {
	return listDocs[models.Attendant](ctx, s.db, s.sb.Select("body").From("attendants").
		Where(sq.Eq{"hackathon_id": hackathonID}).OrderBy("created_at ASC"))
}

func (s *SQLStore) ListAttendantsByUser(ctx context.Context, userID string) ([]models.Attendant, error) {
	return listDocs[models.Attendant](ctx, s.db, s.sb.Select("body").From("attendants").
		Where(sq.Eq{"user_id": userID}).OrderBy("created_at ASC"))
}
