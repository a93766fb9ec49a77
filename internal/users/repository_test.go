package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, validDoctor())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
	require.NotNil(t, got.Doctor)
	assert.Equal(t, "GP-10482", got.Doctor.LicenseNumber)
}

func TestInMemoryGet_NotFound(t *testing.T) {
	repo := NewInMemoryRepository()
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestInMemoryUpsert_EmailImmutable(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, validDoctor())
	require.NoError(t, err)

	update := *created
	update.Name = "Dr. Lee Osei-Mensah"
	require.NoError(t, repo.Upsert(ctx, &update))

	update.Email = "other@clinic.example"
	assert.ErrorIs(t, repo.Upsert(ctx, &update), ErrEmailImmutable)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, "Dr. Lee Osei-Mensah", got.Name)
}

func TestInMemoryFind_ByRole(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, validDoctor())
	require.NoError(t, err)
	_, err = repo.Create(ctx, &User{
		Email:   "jo@example.com",
		Name:    "Jo Malik",
		Role:    RolePatient,
		Patient: &PatientProfile{DateOfBirth: "1991-04-02"},
	})
	require.NoError(t, err)

	patients, err := repo.Find(ctx, Filter{Role: RolePatient})
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "Jo Malik", patients[0].Name)

	all, err := repo.Find(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInMemoryDelete(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, validDoctor())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrUserNotFound)
}
