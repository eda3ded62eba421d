package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rickdex/pkg/models"
)

// Repo is the local cache of every character the service has seen.
type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q       string // substring match on name
	Status  string
	Species string
	Gender  string
	Limit   int
	Offset  int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const selectColumns = `
	SELECT id, name, status, species, type, gender,
	       origin_name, origin_url, location_name, location_url,
	       image, episodes, url, created
	FROM characters
`

// Upsert writes chars in one transaction, replacing existing rows.
func (r *Repo) Upsert(ctx context.Context, chars []models.Character) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO characters (id, name, status, species, type, gender,
		  origin_name, origin_url, location_name, location_url,
		  image, episodes, url, created, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  status = excluded.status,
		  species = excluded.species,
		  type = excluded.type,
		  gender = excluded.gender,
		  origin_name = excluded.origin_name,
		  origin_url = excluded.origin_url,
		  location_name = excluded.location_name,
		  location_url = excluded.location_url,
		  image = excluded.image,
		  episodes = excluded.episodes,
		  url = excluded.url,
		  created = excluded.created,
		  fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, c := range chars {
		episodes := c.Episode
		if episodes == nil {
			episodes = []string{}
		}
		episodesJSON, err := json.Marshal(episodes)
		if err != nil {
			return fmt.Errorf("marshal episodes for %d: %w", c.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Name, c.Status, c.Species, c.Type, c.Gender,
			c.Origin.Name, c.Origin.URL, c.Location.Name, c.Location.URL,
			c.Image, string(episodesJSON), c.URL, c.Created,
		); err != nil {
			return fmt.Errorf("exec upsert for %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the character is not cached.
func (r *Repo) GetByID(ctx context.Context, id int) (*models.Character, error) {
	row := r.DB.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	c, err := scanCharacter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return c, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Character, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Character, 0, NormalizeLimit(q.Limit))
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCharacter(s scanner) (*models.Character, error) {
	var (
		c            models.Character
		status       sql.NullString
		species      sql.NullString
		typ          sql.NullString
		gender       sql.NullString
		originName   sql.NullString
		originURL    sql.NullString
		locationName sql.NullString
		locationURL  sql.NullString
		image        sql.NullString
		episodesJSON string
		url          sql.NullString
		created      sql.NullString
	)
	if err := s.Scan(
		&c.ID, &c.Name, &status, &species, &typ, &gender,
		&originName, &originURL, &locationName, &locationURL,
		&image, &episodesJSON, &url, &created,
	); err != nil {
		return nil, err
	}

	c.Status = status.String
	c.Species = species.String
	c.Type = typ.String
	c.Gender = gender.String
	c.Origin = models.Place{Name: originName.String, URL: originURL.String}
	c.Location = models.Place{Name: locationName.String, URL: locationURL.String}
	c.Image = image.String
	c.URL = url.String
	c.Created = created.String

	c.Episode = []string{}
	if err := json.Unmarshal([]byte(episodesJSON), &c.Episode); err != nil {
		return nil, fmt.Errorf("decode episodes of %d: %w", c.ID, err)
	}
	return &c, nil
}

// NormalizeLimit maps out-of-range page sizes to the default of 20.
func NormalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

// likeEscaper makes user text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// buildListSQL builds either COUNT(*) or the paged SELECT.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	base := selectColumns
	if countOnly {
		base = `SELECT COUNT(*) FROM characters`
	}

	var where []string
	var args []any

	if kw := strings.TrimSpace(q.Q); kw != "" {
		where = append(where, `LOWER(name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(kw))+"%")
	}
	exact := []struct{ col, val string }{
		{"status", q.Status},
		{"species", q.Species},
		{"gender", q.Gender},
	}
	for _, f := range exact {
		if v := strings.TrimSpace(f.val); v != "" {
			where = append(where, "LOWER("+f.col+") = ?")
			args = append(args, strings.ToLower(v))
		}
	}

	sqlStr := base
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY id ASC LIMIT ? OFFSET ?"
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, NormalizeLimit(q.Limit), offset)
	}

	return sqlStr, args
}
