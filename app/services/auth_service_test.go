package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	auth := NewAuthService(h.userRepo, h.settings)

	user, err := auth.Register(ctx, RegisterInput{FullName: "Sam Lee", Email: "Sam@Example.com", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "s3cretpass", user.Password)

	_, err = auth.Register(ctx, RegisterInput{FullName: "Sam Again", Email: "sam@example.com", Password: "s3cretpass"})
	assert.True(t, errors.Is(err, ErrEmailTaken))

	logged, err := auth.Login(ctx, LoginInput{Email: "sam@example.com", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = auth.Login(ctx, LoginInput{Email: "sam@example.com", Password: "wrong-password"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = auth.Login(ctx, LoginInput{Email: "not-an-email", Password: "x"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAuthService_RegistrationClosed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	auth := NewAuthService(h.userRepo, h.settings)

	_, err := h.settings.UpdateUserRegistration(ctx, false)
	require.NoError(t, err)

	_, err = auth.Register(ctx, RegisterInput{FullName: "Late Comer", Email: "late@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, ErrRegistrationClosed))
}

func TestAddressService(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	addresses := NewAddressService(repositories.NewGormAddressRepository(h.db))

	_, err := addresses.Create(ctx, h.user.ID, AddressInput{FullName: "Jane"})
	assert.True(t, errors.Is(err, ErrValidation))

	created, err := addresses.Create(ctx, h.user.ID, AddressInput{
		FullName: "Jane Buyer", Phone: "0811", Street: "2 Side St", City: "Bandung", PostalCode: "40111", Country: "id", IsDefault: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ID", created.Country)

	list, err := addresses.List(ctx, h.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, created.ID, list[0].ID)
}
