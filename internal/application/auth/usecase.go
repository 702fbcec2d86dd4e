package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-faceid/internal/application/dto"
	"github.com/jhoicas/almacen-faceid/internal/domain"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/repository"
	"github.com/jhoicas/almacen-faceid/pkg/jwt"
	"github.com/jhoicas/almacen-faceid/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación y cuentas de acceso.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, log: log.Named("auth")}
}

// CreateUser crea una cuenta (solo admin): hashea el password con bcrypt y persiste.
func (uc *AuthUseCase) CreateUser(ctx context.Context, actor entity.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !actor.Can(entity.CapManageUsers) {
		return nil, domain.ErrForbidden
	}
	if !entity.IsValidRole(in.Role) {
		return nil, domain.ErrInvalidInput
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", user.ID).Str("role", user.Role).Int64("by", actor.UserID).Msg("usuario creado")
	return toUserResponse(user), nil
}

// Login verifica usuario/password, genera JWT y retorna token + usuario.
// Usuario inexistente y password incorrecto devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      *toUserResponse(user),
	}, nil
}

// Me devuelve la cuenta del actor.
func (uc *AuthUseCase) Me(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return toUserResponse(user), nil
}

// ListUsers lista las cuentas (solo admin).
func (uc *AuthUseCase) ListUsers(ctx context.Context, actor entity.Actor) ([]dto.UserResponse, error) {
	if !actor.Can(entity.CapManageUsers) {
		return nil, domain.ErrForbidden
	}
	list, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *toUserResponse(u))
	}
	return out, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
