package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type mockRepo struct {
	users    map[int64]*User
	profiles map[int64]PatientProfile
	nextID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:    make(map[int64]*User),
		profiles: make(map[int64]PatientProfile),
	}
}

func (m *mockRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepo) GetUserByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *mockRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *mockRepo) CreateUser(_ context.Context, user *User) (int64, error) {
	for _, u := range m.users {
		if u.Email == user.Email {
			return 0, ErrEmailExists
		}
	}
	m.nextID++
	stored := *user
	stored.ID = m.nextID
	m.users[stored.ID] = &stored
	return stored.ID, nil
}

func (m *mockRepo) CreatePatientProfile(_ context.Context, userID int64, profile PatientProfile) (int64, error) {
	m.profiles[userID] = profile
	return userID, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, NewTokenIssuer("test-secret", time.Hour), zerolog.Nop())
}

func registerRequest() RegisterRequest {
	return RegisterRequest{
		Email:     "jane@example.com",
		Password:  "hunter2hunter2",
		FirstName: "Jane",
		LastName:  "Doe",
		Profile:   PatientProfile{Gender: "F", BloodType: "O+"},
	}
}

func TestRegisterPatient(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	id, err := svc.RegisterPatient(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}
	if id <= 0 {
		t.Fatalf("user id = %d", id)
	}

	user := repo.users[id]
	if user.Role != RolePatient {
		t.Errorf("role = %s, want %s", user.Role, RolePatient)
	}
	if !user.IsActive {
		t.Error("new account should be active")
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
	if _, ok := repo.profiles[id]; !ok {
		t.Error("patient profile not created")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	if _, err := svc.RegisterPatient(context.Background(), registerRequest()); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := svc.RegisterPatient(context.Background(), registerRequest()); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	if _, err := svc.RegisterPatient(context.Background(), registerRequest()); err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}

	result, err := svc.Login(context.Background(), "jane@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Error("no token issued")
	}
	if result.FullName != "Jane Doe" {
		t.Errorf("full name = %q", result.FullName)
	}
	if result.Role != RolePatient {
		t.Errorf("role = %q", result.Role)
	}
}

func TestLoginFailures(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	if _, err := svc.RegisterPatient(context.Background(), registerRequest()); err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}

	// Unknown email and wrong password yield the same error.
	if _, err := svc.Login(context.Background(), "nobody@example.com", "whatever12345"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", err)
	}
	if _, err := svc.Login(context.Background(), "jane@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	id, err := svc.RegisterPatient(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}
	repo.users[id].IsActive = false

	if _, err := svc.Login(context.Background(), "jane@example.com", "hunter2hunter2"); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}
