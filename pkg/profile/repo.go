package profile

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v4/stdlib"
)

type Repo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(p *Profile) (string, error) {
	row := r.db.QueryRow(
		"INSERT INTO profiles(address, handle, display_name) VALUES($1, $2, $3) RETURNING id",
		p.Address, p.Handle, p.DisplayName)
	var id string
	if err := row.Scan(&id); err != nil {
		return ``, fmt.Errorf("profile/repo: profile wasn't added: %w", err)
	}
	return id, nil
}

func (r *Repo) GetByAddress(ctx context.Context, address string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, address, handle, display_name FROM profiles where address=$1", address)
	p := new(Profile)
	if err := row.Scan(&p.Id, &p.Address, &p.Handle, &p.DisplayName); err != nil {
		return nil, fmt.Errorf("profile/repo: row scan failed: %w", err)
	}
	return p, nil
}

func (r *Repo) GetById(ctx context.Context, id string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, address, handle FROM profiles where id=$1", id)
	p := new(Profile)
	if err := row.Scan(&p.Id, &p.Address, &p.Handle); err != nil {
		return p, fmt.Errorf("profile/repo: could not scan row: %w", err)
	}
	return p, nil
}

func (r *Repo) Exists(address string) bool {
	row := r.db.QueryRow("SELECT id FROM profiles where address=$1", address)
	p := new(Profile)
	if err := row.Scan(&p.Id); err != nil {
		log.Printf("profile/repo: could not scan row: %v", err)
		return false
	}
	return true
}

// Returns all profiles. Used only for seeding the DB.
func (r *Repo) GetAll() ([]*Profile, error) {
	rows, err := r.db.Query("SELECT id, address, handle, display_name FROM profiles")
	if err != nil {
		return nil, fmt.Errorf("profile/repo: failed executing query for getting all profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*Profile{}
	for rows.Next() {
		p := new(Profile)
		err := rows.Scan(&p.Id, &p.Address, &p.Handle, &p.DisplayName)
		if err != nil {
			return nil, fmt.Errorf("profile/repo: could not scan row: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}
