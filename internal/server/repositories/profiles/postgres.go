package profiles

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/dbx"
	"github.com/dmitrijs2005/rentable/internal/server/models"
	"github.com/google/uuid"
)

const profileColumns = `id, email, full_name, date_of_birth, phone_number, address, profile_image_url, user_type, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Select(ctx context.Context, column, value string) ([]models.Profile, error) {
	switch column {
	case ColumnID, ColumnEmail:
	default:
		return nil, fmt.Errorf("%w: unknown column %q", common.ErrorValidation, column)
	}
	// ids are uuid columns; a malformed id matches nothing
	if column == ColumnID && uuid.Validate(value) != nil {
		return nil, nil
	}

	// column is one of the constants above
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE ` + column + ` = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func scanProfile(rows *sql.Rows) (models.Profile, error) {
	var (
		p                                  models.Profile
		fullName, phone, address, imageURL sql.NullString
		dob                                sql.NullTime
	)
	err := rows.Scan(&p.ID, &p.Email, &fullName, &dob, &phone, &address, &imageURL, &p.UserType, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	p.FullName = nullString(fullName)
	p.PhoneNumber = nullString(phone)
	p.Address = nullString(address)
	p.ProfileImageURL = nullString(imageURL)
	if dob.Valid {
		t := dob.Time
		p.DateOfBirth = &t
	}
	return p, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func (r *PostgresRepository) Insert(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Email, p.FullName, p.DateOfBirth, p.PhoneNumber, p.Address, p.ProfileImageURL, p.UserType, createdAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.ProfilePatch) (int64, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.DateOfBirth != nil {
		add("date_of_birth", *patch.DateOfBirth)
	}
	if patch.PhoneNumber != nil {
		add("phone_number", *patch.PhoneNumber)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.ProfileImageURL != nil {
		add("profile_image_url", *patch.ProfileImageURL)
	}
	if patch.UserType != nil {
		add("user_type", *patch.UserType)
	}
	if len(sets) == 0 {
		return 0, nil
	}

	args = append(args, id)
	query := `UPDATE profiles SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + strconv.Itoa(len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, common.ErrorConflict
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
