package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrShareLinkNotFound = errors.New("share link not found")

type Repository interface {
	CreateLink(ctx context.Context, userId int, link Link) (Link, error)
	ListLinks(ctx context.Context, userId int, petId int) ([]Link, error)
	UpdateLink(ctx context.Context, userId int, link Link) (Link, error)
	DeleteLink(ctx context.Context, userId int, petId int, id int) (bool, error)
	// GetLinkByToken is not scoped to a user; it also returns the owner's id.
	GetLinkByToken(ctx context.Context, token string) (Link, int, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const linkColumns = `id, pet_id, token::text, show_birth_date, show_microchip, show_notes, show_calendar,
				show_event_details, created_at, expires_at`

func scanLink(row pgx.Row, extra ...any) (Link, error) {
	var link Link
	dest := []any{
		&link.Id,
		&link.PetId,
		&link.Token,
		&link.Visibility.ShowBirthDate,
		&link.Visibility.ShowMicrochip,
		&link.Visibility.ShowNotes,
		&link.Visibility.ShowCalendar,
		&link.Visibility.ShowEventDetails,
		&link.CreatedAt,
		&link.ExpiresAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return link, err
}

func (r *repositoryImpl) CreateLink(ctx context.Context, userId int, link Link) (Link, error) {
	query := `INSERT INTO share_link (user_id, pet_id, token, show_birth_date, show_microchip, show_notes,
	                        show_calendar, show_event_details, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + linkColumns
	v := link.Visibility
	created, err := scanLink(r.db.QueryRow(ctx, query, userId, link.PetId, link.Token,
		v.ShowBirthDate, v.ShowMicrochip, v.ShowNotes, v.ShowCalendar, v.ShowEventDetails, link.ExpiresAt))
	if err != nil {
		log.Errorf("failed to create share link: %v", err)
		return Link{}, fmt.Errorf("failed to create share link: %w", err)
	}
	return created, nil
}

func (r *repositoryImpl) ListLinks(ctx context.Context, userId int, petId int) ([]Link, error) {
	query := `SELECT ` + linkColumns + ` FROM share_link WHERE user_id = $1 AND pet_id = $2 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, userId, petId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (r *repositoryImpl) UpdateLink(ctx context.Context, userId int, link Link) (Link, error) {
	query := `UPDATE share_link
			  SET show_birth_date = $1, show_microchip = $2, show_notes = $3, show_calendar = $4,
			      show_event_details = $5, expires_at = $6
			  WHERE user_id = $7 AND pet_id = $8 AND id = $9
			  RETURNING ` + linkColumns
	v := link.Visibility
	updated, err := scanLink(r.db.QueryRow(ctx, query,
		v.ShowBirthDate, v.ShowMicrochip, v.ShowNotes, v.ShowCalendar, v.ShowEventDetails, link.ExpiresAt,
		userId, link.PetId, link.Id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Link{}, ErrShareLinkNotFound
	} else if err != nil {
		log.Errorf("failed to update share link %d: %v", link.Id, err)
		return Link{}, fmt.Errorf("failed to update share link: %w", err)
	}
	return updated, nil
}

func (r *repositoryImpl) DeleteLink(ctx context.Context, userId int, petId int, id int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM share_link WHERE user_id = $1 AND pet_id = $2 AND id = $3`, userId, petId, id)
	if err != nil {
		log.Errorf("failed to delete share link %d: %v", id, err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *repositoryImpl) GetLinkByToken(ctx context.Context, token string) (Link, int, error) {
	query := `SELECT ` + linkColumns + `, user_id FROM share_link WHERE token = $1`
	var userId int
	link, err := scanLink(r.db.QueryRow(ctx, query, token), &userId)
	if errors.Is(err, pgx.ErrNoRows) {
		return Link{}, 0, ErrShareLinkNotFound
	} else if err != nil {
		log.Errorf("failed to get share link by token: %v", err)
		return Link{}, 0, fmt.Errorf("failed to get share link: %w", err)
	}
	return link, userId, nil
}
