package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements are applied in order on startup. Every statement is
// idempotent so repeated boots are safe.
//
// The partial unique index on appointments is the safety mechanism for
// concurrent bookings of the same slot: the service-level availability check
// is only an optimization, the index makes the loser of a create/create race
// fail with a unique violation.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone_number TEXT,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS departments (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS doctors (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		department_id BIGINT NOT NULL REFERENCES departments(id),
		title TEXT,
		license_number TEXT,
		biography TEXT,
		experience_years INT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS patients (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		date_of_birth DATE,
		gender TEXT,
		address TEXT,
		emergency_contact TEXT,
		blood_type TEXT,
		allergies TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS appointments (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		patient_id BIGINT NOT NULL REFERENCES patients(id),
		doctor_id BIGINT NOT NULL REFERENCES doctors(id),
		appointment_date DATE NOT NULL,
		appointment_time VARCHAR(5) NOT NULL,
		status TEXT NOT NULL,
		notes TEXT,
		cancellation_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments (patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_doctor_date ON appointments (doctor_id, appointment_date)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_appointments_slot
		ON appointments (doctor_id, appointment_date, appointment_time)
		WHERE status NOT IN ('Cancelled', 'NoShow')`,
}

// EnsureSchema brings the database up to the schema the services expect.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
