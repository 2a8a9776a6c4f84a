package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/appointment-system/internal/db"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "seed").Logger()

func main() {
	logger.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Seeding is batch inserts on a handful of connections.
	pool, err := db.ConnectPostgres(ctx, dsn, 4)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		logger.Fatal().Err(err).Msg("ensure schema")
	}

	gofakeit.Seed(time.Now().UnixNano())

	// Every seeded account shares one hash so seeding stays fast.
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("hash seed password")
	}
	passwordHash := string(hash)

	departmentIDs, err := seedDepartments(context.Background(), pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed departments")
	}
	if err := seedDoctors(context.Background(), pool, passwordHash, departmentIDs, 50); err != nil {
		logger.Fatal().Err(err).Msg("seed doctors")
	}
	if err := seedPatients(context.Background(), pool, passwordHash, 2000); err != nil {
		logger.Fatal().Err(err).Msg("seed patients")
	}

	logger.Info().Msg("seed complete")
}

func seedDepartments(ctx context.Context, pool *pgxpool.Pool) ([]int64, error) {
	names := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	logger.Info().Int("count", len(names)).Msg("seeding departments")

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		var id int64
		err := pool.QueryRow(ctx, `
			INSERT INTO departments (name, description, is_active)
			VALUES ($1, $2, TRUE)
			RETURNING id
		`, name, gofakeit.Sentence(8)).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	logger.Info().Msg("departments seeded")
	return ids, nil
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, passwordHash string, departmentIDs []int64, count int) error {
	logger.Info().Int("count", count).Msg("seeding doctors")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		var userID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, first_name, last_name, phone_number, role, is_active)
			VALUES ($1, $2, $3, $4, $5, 'Doctor', TRUE)
			RETURNING id
		`, gofakeit.Email(), passwordHash, gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Phone()).Scan(&userID)
		if err != nil {
			return err
		}

		deptID := departmentIDs[gofakeit.Number(0, len(departmentIDs)-1)]
		years := gofakeit.Number(1, 35)

		_, err = tx.Exec(ctx, `
			INSERT INTO doctors (user_id, department_id, title, license_number, experience_years, is_active)
			VALUES ($1, $2, 'Dr.', $3, $4, TRUE)
		`, userID, deptID, gofakeit.LetterN(2)+gofakeit.DigitN(6), years)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info().Msg("doctors seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) error {
	logger.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			var userID int64
			err := tx.QueryRow(ctx, `
				INSERT INTO users (email, password_hash, first_name, last_name, phone_number, role, is_active)
				VALUES ($1, $2, $3, $4, $5, 'Patient', TRUE)
				RETURNING id
			`, gofakeit.Email(), passwordHash, gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Phone()).Scan(&userID)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}

			dob := gofakeit.DateRange(
				time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC),
			)

			_, err = tx.Exec(ctx, `
				INSERT INTO patients (user_id, date_of_birth, gender, address, blood_type)
				VALUES ($1, $2, $3, $4, $5)
			`, userID, dob, gofakeit.Gender(), gofakeit.Address().Address, gofakeit.RandomString([]string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}))
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		logger.Info().Int("done", end).Int("total", count).Msg("patients seeded so far")
	}

	logger.Info().Msg("patients seeded")
	return nil
}
