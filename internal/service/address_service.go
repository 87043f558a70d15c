package service

import (
	"strings"

	"github.com/tarano297/pocopini2/internal/models"
	"github.com/tarano297/pocopini2/internal/repository"
)

// CreateAddressInput 创建地址输入
type CreateAddressInput struct {
	UserID      uint
	FullName    string
	PhoneNumber string
	Province    string
	City        string
	PostalCode  string
	AddressLine string
	IsDefault   bool
}

// AddressService 收货地址服务
type AddressService struct {
	addressRepo repository.AddressRepository
}

// NewAddressService 创建地址服务
func NewAddressService(addressRepo repository.AddressRepository) *AddressService {
	return &AddressService{addressRepo: addressRepo}
}

// ListAddresses 获取用户地址列表
func (s *AddressService) ListAddresses(userID uint) ([]models.Address, error) {
	return s.addressRepo.ListByUser(userID)
}

// GetAddress 获取地址，校验归属
func (s *AddressService) GetAddress(userID, addressID uint) (*models.Address, error) {
	address, err := s.addressRepo.GetByIDAndUser(addressID, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// CreateAddress 创建地址
func (s *AddressService) CreateAddress(input CreateAddressInput) (*models.Address, error) {
	address := &models.Address{
		UserID:      input.UserID,
		FullName:    strings.TrimSpace(input.FullName),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Province:    strings.TrimSpace(input.Province),
		City:        strings.TrimSpace(input.City),
		PostalCode:  strings.TrimSpace(input.PostalCode),
		AddressLine: strings.TrimSpace(input.AddressLine),
		IsDefault:   input.IsDefault,
	}
	if address.FullName == "" || address.PhoneNumber == "" || address.AddressLine == "" {
		return nil, ErrAddressInvalid
	}
	if err := s.addressRepo.Create(address); err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteAddress 删除地址，校验归属
func (s *AddressService) DeleteAddress(userID, addressID uint) error {
	affected, err := s.addressRepo.DeleteByIDAndUser(addressID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAddressNotFound
	}
	return nil
}
