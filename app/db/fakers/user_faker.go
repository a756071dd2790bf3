package fakers

import (
	"errors"
	"strings"

	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/go-faker/faker/v4"
)

func newUser(fullName, email, phone, password, role string) (*models.User, error) {
	hashed := helpers.HashPassword(password)
	if hashed == "" {
		return nil, errors.New("failed to hash password")
	}
	return &models.User{
		FullName: fullName,
		Email:    strings.ToLower(email),
		Phone:    phone,
		Password: hashed,
		Role:     role,
	}, nil
}

func AdminUser(email, password string) (*models.User, error) {
	return newUser("Store Admin", email, "", password, models.RoleAdmin)
}

func CustomerFaker(password string) (*models.User, error) {
	return newUser(faker.FirstName()+" "+faker.LastName(), faker.Email(), faker.Phonenumber(), password, models.RoleCustomer)
}
