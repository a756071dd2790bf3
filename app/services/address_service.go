package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/go-playground/validator/v10"
)

type AddressInput struct {
	FullName   string `json:"full_name" validate:"required,max=255"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=10"`
	Country    string `json:"country" validate:"omitempty,len=2"`
	IsDefault  bool   `json:"is_default"`
}

type AddressService struct {
	repo     repositories.AddressRepository
	validate *validator.Validate
}

func NewAddressService(repo repositories.AddressRepository) *AddressService {
	return &AddressService{repo: repo, validate: validator.New()}
}

func (s *AddressService) List(ctx context.Context, userID string) ([]models.Address, error) {
	addresses, err := s.repo.FindAddressesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *AddressService) Create(ctx context.Context, userID string, in AddressInput) (*models.Address, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	country := strings.ToUpper(in.Country)
	if country == "" {
		country = "ID"
	}
	address := &models.Address{
		UserID:     userID,
		FullName:   in.FullName,
		Phone:      in.Phone,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    country,
		IsDefault:  in.IsDefault,
	}
	if err := s.repo.CreateAddress(ctx, address); err != nil {
		log.Printf("ERROR: AddressService.Create: user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}
