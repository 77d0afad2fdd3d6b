package usecase

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/retailm/retailm-api/internal/application/dto"
	"github.com/retailm/retailm-api/internal/domain"
	"github.com/retailm/retailm-api/internal/domain/auth"
	"github.com/retailm/retailm-api/internal/domain/entity"
	"github.com/retailm/retailm-api/internal/domain/repository"
)

// UserUseCase administración de usuarios (solo admin).
type UserUseCase struct {
	repo      repository.UserRepository
	auditRepo repository.AuditLogRepository
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(repo repository.UserRepository, auditRepo repository.AuditLogRepository) *UserUseCase {
	return &UserUseCase{repo: repo, auditRepo: auditRepo}
}

// List lista usuarios.
func (uc *UserUseCase) List(p auth.Principal, page dto.PageRequest) ([]*dto.UserResponse, error) {
	if !auth.Can(p.Role, auth.OpUserManage) {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	users, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out, nil
}

// GetByID obtiene un usuario. Cada usuario puede consultarse a sí mismo.
func (uc *UserUseCase) GetByID(p auth.Principal, id string) (*dto.UserResponse, error) {
	if id != p.UserID && !auth.Can(p.Role, auth.OpUserManage) {
		return nil, domain.ErrForbidden
	}
	user, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return toUserDTO(user), nil
}

// SetRole cambia el rol de un usuario (solo admin).
func (uc *UserUseCase) SetRole(p auth.Principal, id, role string) (*dto.UserResponse, error) {
	if !auth.Can(p.Role, auth.OpUserManage) {
		return nil, domain.ErrForbidden
	}
	if !entity.ValidRole(role) {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	previous := user.Role
	user.Role = role
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(user); err != nil {
		return nil, err
	}
	raw, _ := json.Marshal(map[string]string{"role_from": previous, "role_to": role})
	if err := uc.auditRepo.Create(&entity.AuditLogEntry{
		ID:         uuid.New().String(),
		UserID:     p.UserID,
		Action:     entity.AuditActionUpdate,
		EntityName: "User",
		EntityID:   user.ID,
		Changes:    raw,
		CreatedAt:  time.Now(),
	}); err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

func toUserDTO(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		BranchID:  u.BranchID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
