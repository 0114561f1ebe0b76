package pet

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrPetNotFound = errors.New("pet not found")

type Repository interface {
	CreatePet(ctx context.Context, userId int, pet Pet) (Pet, error)
	GetPet(ctx context.Context, userId int, id int) (Pet, error)
	ListPets(ctx context.Context, userId int) ([]Pet, error)
	UpdatePet(ctx context.Context, userId int, pet Pet) (Pet, error)
	DeletePet(ctx context.Context, userId int, id int) (bool, error)
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const petColumns = `id, name, species, breed, birth_date, microchip, notes, created_at, updated_at`

func scanPet(row pgx.Row) (Pet, error) {
	var pet Pet
	err := row.Scan(
		&pet.Id,
		&pet.Name,
		&pet.Species,
		&pet.Breed,
		&pet.BirthDate,
		&pet.Microchip,
		&pet.Notes,
		&pet.CreatedAt,
		&pet.UpdatedAt,
	)
	return pet, err
}

func (r *repositoryImpl) CreatePet(ctx context.Context, userId int, pet Pet) (Pet, error) {
	query := `INSERT INTO pet (user_id, name, species, breed, birth_date, microchip, notes)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + petColumns
	created, err := scanPet(r.db.QueryRow(ctx, query,
		userId, pet.Name, pet.Species, pet.Breed, pet.BirthDate, pet.Microchip, pet.Notes))
	if err != nil {
		log.Errorf("failed to create pet: %v", err)
		return Pet{}, fmt.Errorf("failed to create pet: %w", err)
	}
	return created, nil
}

func (r *repositoryImpl) GetPet(ctx context.Context, userId int, id int) (Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pet WHERE user_id = $1 AND id = $2`
	pet, err := scanPet(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Pet{}, ErrPetNotFound
	} else if err != nil {
		log.Errorf("failed to get pet %d: %v", id, err)
		return Pet{}, fmt.Errorf("failed to get pet: %w", err)
	}
	return pet, nil
}

func (r *repositoryImpl) ListPets(ctx context.Context, userId int) ([]Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pet WHERE user_id = $1 ORDER BY name, id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pets := make([]Pet, 0)
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		pets = append(pets, pet)
	}
	return pets, rows.Err()
}

func (r *repositoryImpl) UpdatePet(ctx context.Context, userId int, pet Pet) (Pet, error) {
	query := `UPDATE pet
			  SET name = $1, species = $2, breed = $3, birth_date = $4, microchip = $5, notes = $6, updated_at = now()
			  WHERE user_id = $7 AND id = $8
			  RETURNING ` + petColumns
	updated, err := scanPet(r.db.QueryRow(ctx, query,
		pet.Name, pet.Species, pet.Breed, pet.BirthDate, pet.Microchip, pet.Notes, userId, pet.Id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Pet{}, ErrPetNotFound
	} else if err != nil {
		log.Errorf("failed to update pet %d: %v", pet.Id, err)
		return Pet{}, fmt.Errorf("failed to update pet: %w", err)
	}
	return updated, nil
}

func (r *repositoryImpl) DeletePet(ctx context.Context, userId int, id int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM pet WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		log.Errorf("failed to delete pet %d: %v", id, err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
