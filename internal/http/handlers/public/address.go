package public

import (
	"strconv"

	"github.com/tarano297/pocopini2/internal/http/response"
	"github.com/tarano297/pocopini2/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAddressRequest 创建地址请求
type CreateAddressRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Province    string `json:"province"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	AddressLine string `json:"address_line" binding:"required"`
	IsDefault   bool   `json:"is_default"`
}

// ListAddresses 地址列表
func (h *Handler) ListAddresses(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addresses, err := h.AddressService.ListAddresses(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "address list failed", err)
		return
	}
	response.Success(c, gin.H{"addresses": addresses})
}

// CreateAddress 创建地址
func (h *Handler) CreateAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	address, err := h.AddressService.CreateAddress(service.CreateAddressInput{
		UserID:      uid,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Province:    req.Province,
		City:        req.City,
		PostalCode:  req.PostalCode,
		AddressLine: req.AddressLine,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		respondWithMappedError(c, err, addressErrorRules, response.CodeInternal, "address create failed")
		return
	}
	response.Created(c, address)
}

// DeleteAddress 删除地址
func (h *Handler) DeleteAddress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	addressID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || addressID == 0 {
		respondError(c, response.CodeBadRequest, "invalid address id", nil)
		return
	}
	if err := h.AddressService.DeleteAddress(uid, uint(addressID)); err != nil {
		respondWithMappedError(c, err, addressErrorRules, response.CodeInternal, "address delete failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
