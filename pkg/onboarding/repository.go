package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// GetProgress returns a fresh progress when nothing was stored for the pet yet.
	GetProgress(ctx context.Context, userId int, petId int) (Progress, error)
	// LockProgress is GetProgress holding the pet's row until the surrounding transaction ends.
	// The row is created first so concurrent first writers also serialize on it.
	LockProgress(ctx context.Context, userId int, petId int) (Progress, error)
	SaveProgress(ctx context.Context, userId int, progress Progress) (Progress, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
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

	if err := fn(&repositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetProgress(ctx context.Context, userId int, petId int) (Progress, error) {
	query := `SELECT completed_steps, skipped_steps, dismissed, updated_at
			  FROM onboarding_progress WHERE user_id = $1 AND pet_id = $2`
	return r.readProgress(ctx, query, userId, petId)
}

func (r *repositoryImpl) LockProgress(ctx context.Context, userId int, petId int) (Progress, error) {
	insert := `INSERT INTO onboarding_progress (pet_id, user_id) VALUES ($1, $2)
			   ON CONFLICT (pet_id) DO NOTHING`
	if _, err := r.getQueryer().Exec(ctx, insert, petId, userId); err != nil {
		log.Errorf("failed to create onboarding progress of pet %d: %v", petId, err)
		return Progress{}, fmt.Errorf("failed to lock onboarding progress: %w", err)
	}
	query := `SELECT completed_steps, skipped_steps, dismissed, updated_at
			  FROM onboarding_progress WHERE user_id = $1 AND pet_id = $2
			  FOR UPDATE`
	return r.readProgress(ctx, query, userId, petId)
}

func (r *repositoryImpl) readProgress(ctx context.Context, query string, userId int, petId int) (Progress, error) {
	var completed, skipped []string
	progress := NewProgress(petId)
	err := r.getQueryer().QueryRow(ctx, query, userId, petId).Scan(&completed, &skipped, &progress.Dismissed, &progress.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return progress, nil
	} else if err != nil {
		log.Errorf("failed to get onboarding progress of pet %d: %v", petId, err)
		return Progress{}, fmt.Errorf("failed to get onboarding progress: %w", err)
	}
	progress.Completed = toSteps(completed)
	progress.Skipped = toSteps(skipped)
	return progress, nil
}

func (r *repositoryImpl) SaveProgress(ctx context.Context, userId int, progress Progress) (Progress, error) {
	query := `INSERT INTO onboarding_progress (pet_id, user_id, completed_steps, skipped_steps, dismissed, updated_at)
			  VALUES ($1, $2, $3, $4, $5, now())
			  ON CONFLICT (pet_id) DO UPDATE
			  SET completed_steps = EXCLUDED.completed_steps,
			      skipped_steps = EXCLUDED.skipped_steps,
			      dismissed = EXCLUDED.dismissed,
			      updated_at = EXCLUDED.updated_at
			  WHERE onboarding_progress.user_id = EXCLUDED.user_id
			  RETURNING updated_at`
	err := r.getQueryer().QueryRow(ctx, query, progress.PetId, userId,
		fromSteps(progress.Completed), fromSteps(progress.Skipped), progress.Dismissed).Scan(&progress.UpdatedAt)
	if err != nil {
		log.Errorf("failed to save onboarding progress of pet %d: %v", progress.PetId, err)
		return Progress{}, fmt.Errorf("failed to save onboarding progress: %w", err)
	}
	return progress, nil
}

func toSteps(values []string) []Step {
	steps := make([]Step, 0, len(values))
	for _, value := range values {
		if step, ok := ParseStep(value); ok {
			steps = append(steps, step)
		}
	}
	return steps
}

func fromSteps(steps []Step) []string {
	values := make([]string, 0, len(steps))
	for _, step := range steps {
		values = append(values, string(step))
	}
	return values
}
