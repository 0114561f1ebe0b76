package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, userId int, event CareEvent) (CareEvent, error)
	GetEvent(ctx context.Context, userId int, petId int, id string) (CareEvent, error)
	GetPetEvents(ctx context.Context, userId int, petId int) ([]CareEvent, error)
	// GetCalendarEvents returns every recurring event and the one-time events dated on or after
	// oneTimeFrom. An empty petIds matches all pets of the user.
	GetCalendarEvents(ctx context.Context, userId int, petIds []int, oneTimeFrom time.Time) ([]CareEvent, error)
	UpdateEvent(ctx context.Context, userId int, event CareEvent) (CareEvent, error)
	DeleteEvent(ctx context.Context, userId int, petId int, id string) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op after commit
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const eventColumns = `id::text,
				pet_id,
				event_type,
				title,
				description,
				notes,
				location,
				is_recurring,
				event_date,
				event_time,
				recurrence_pattern,
				recurrence_start_date,
				recurrence_end_date,
				recurrence_day_of_week,
				recurrence_day_of_month,
				created_at,
				updated_at`

func scanEvent(row pgx.Row) (CareEvent, error) {
	var event CareEvent
	var eventType string
	var eventTime, pattern, dayOfWeek *string
	err := row.Scan(
		&event.Id,
		&event.PetId,
		&eventType,
		&event.Title,
		&event.Description,
		&event.Notes,
		&event.Location,
		&event.IsRecurring,
		&event.EventDate,
		&eventTime,
		&pattern,
		&event.RecurrenceStartDate,
		&event.RecurrenceEndDate,
		&dayOfWeek,
		&event.RecurrenceDayOfMonth,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return CareEvent{}, err
	}
	event.Type = EventType(eventType)
	if eventTime != nil {
		event.EventTime = *eventTime
	}
	if pattern != nil {
		event.RecurrencePattern = RecurrencePattern(*pattern)
	}
	if dayOfWeek != nil {
		weekday, ok := ParseDayOfWeek(*dayOfWeek)
		if !ok {
			return CareEvent{}, fmt.Errorf("unknown day of week %q for event %s", *dayOfWeek, event.Id)
		}
		event.RecurrenceDayOfWeek = &weekday
	}
	return event, nil
}

func collectEvents(rows pgx.Rows) ([]CareEvent, error) {
	defer rows.Close()
	events := make([]CareEvent, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *RepositoryImpl) StoreEvent(ctx context.Context, userId int, event CareEvent) (CareEvent, error) {
	query := `INSERT INTO care_event (
				id,
				user_id,
				pet_id,
				event_type,
				title,
				description,
				notes,
				location,
				is_recurring,
				event_date,
				event_time,
				recurrence_pattern,
				recurrence_start_date,
				recurrence_end_date,
				recurrence_day_of_week,
				recurrence_day_of_month
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING ` + eventColumns

	stored, err := scanEvent(r.getQueryer().QueryRow(ctx, query,
		event.Id,
		userId,
		event.PetId,
		string(event.Type),
		event.Title,
		event.Description,
		event.Notes,
		event.Location,
		event.IsRecurring,
		event.EventDate,
		nullIfEmpty(event.EventTime),
		nullIfEmpty(string(event.RecurrencePattern)),
		event.RecurrenceStartDate,
		event.RecurrenceEndDate,
		dayOfWeekValue(event.RecurrenceDayOfWeek),
		event.RecurrenceDayOfMonth,
	))
	if err != nil {
		err := fmt.Errorf("could not store care event: %w", err)
		log.Error(err)
		return CareEvent{}, err
	}
	return stored, nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, userId int, petId int, id string) (CareEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM care_event WHERE user_id = $1 AND pet_id = $2 AND id = $3`
	event, err := scanEvent(r.getQueryer().QueryRow(ctx, query, userId, petId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return CareEvent{}, ErrCareEventNotFound
	} else if err != nil {
		log.Errorf("failed to get care event %s: %v", id, err)
		return CareEvent{}, fmt.Errorf("failed to get care event: %w", err)
	}
	return event, nil
}

func (r *RepositoryImpl) GetPetEvents(ctx context.Context, userId int, petId int) ([]CareEvent, error) {
	query := `SELECT ` + eventColumns + `
			  FROM care_event
			  WHERE user_id = $1 AND pet_id = $2
			  ORDER BY coalesce(event_date, recurrence_start_date), created_at`
	rows, err := r.getQueryer().Query(ctx, query, userId, petId)
	if err != nil {
		err := fmt.Errorf("could not query care events: %w", err)
		log.Error(err)
		return nil, err
	}
	return collectEvents(rows)
}

func (r *RepositoryImpl) GetCalendarEvents(ctx context.Context, userId int, petIds []int, oneTimeFrom time.Time) ([]CareEvent, error) {
	query := `SELECT ` + eventColumns + `
			  FROM care_event
			  WHERE user_id = $1
			    AND (cardinality($2::int[]) = 0 OR pet_id = ANY($2::int[]))
			    AND (is_recurring OR event_date >= $3)
			  ORDER BY created_at`
	if petIds == nil {
		petIds = []int{}
	}
	rows, err := r.getQueryer().Query(ctx, query, userId, petIds, oneTimeFrom)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	return collectEvents(rows)
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, userId int, event CareEvent) (CareEvent, error) {
	query := `UPDATE care_event SET
				event_type = $1,
				title = $2,
				description = $3,
				notes = $4,
				location = $5,
				is_recurring = $6,
				event_date = $7,
				event_time = $8,
				recurrence_pattern = $9,
				recurrence_start_date = $10,
				recurrence_end_date = $11,
				recurrence_day_of_week = $12,
				recurrence_day_of_month = $13,
				updated_at = now()
			  WHERE user_id = $14 AND pet_id = $15 AND id = $16
			  RETURNING ` + eventColumns
	updated, err := scanEvent(r.getQueryer().QueryRow(ctx, query,
		string(event.Type),
		event.Title,
		event.Description,
		event.Notes,
		event.Location,
		event.IsRecurring,
		event.EventDate,
		nullIfEmpty(event.EventTime),
		nullIfEmpty(string(event.RecurrencePattern)),
		event.RecurrenceStartDate,
		event.RecurrenceEndDate,
		dayOfWeekValue(event.RecurrenceDayOfWeek),
		event.RecurrenceDayOfMonth,
		userId,
		event.PetId,
		event.Id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return CareEvent{}, ErrCareEventNotFound
	} else if err != nil {
		err := fmt.Errorf("could not update care event: %w", err)
		log.Error(err)
		return CareEvent{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, userId int, petId int, id string) (bool, error) {
	query := `DELETE FROM care_event WHERE user_id = $1 AND pet_id = $2 AND id = $3`
	result, err := r.getQueryer().Exec(ctx, query, userId, petId, id)
	if err != nil {
		err := fmt.Errorf("could not delete care event: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func dayOfWeekValue(weekday *time.Weekday) *string {
	if weekday == nil {
		return nil
	}
	return nullIfEmpty(weekdayName(*weekday))
}
