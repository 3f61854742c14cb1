// Package auth autentica usuarios y emite el token de sesión.
package auth

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Consultorio-api/internal/application/authz"
	"github.com/jhoicas/Consultorio-api/internal/application/dto"
	"github.com/jhoicas/Consultorio-api/internal/domain"
	"github.com/jhoicas/Consultorio-api/internal/domain/repository"
	"github.com/jhoicas/Consultorio-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
	// EmbedPermissions incluye los códigos efectivos en el token.
	EmbedPermissions bool
}

// AuthUseCase caso de uso de login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	perms    authz.PermissionSource
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, perms authz.PermissionSource, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, perms: perms, jwtCfg: jwtCfg, log: log}
}

// Login verifica email/password, genera JWT y retorna token, usuario, permisos y módulos.
// Email desconocido o password incorrecto dan ErrUnauthorized; usuario inactivo, ErrForbidden.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		v := &domain.ValidationError{}
		if email == "" {
			v.Add("email", "es obligatorio")
		}
		if in.Password == "" {
			v.Add("password", "es obligatorio")
		}
		return nil, v
	}
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.log.Info().Str("email", email).Msg("login con email desconocido")
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Info().Str("user_id", user.ID).Msg("login con password incorrecto")
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, &domain.ForbiddenError{Reason: "usuario inactivo"}
	}

	set, err := uc.perms.EffectivePermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	var snapshot []string
	if uc.jwtCfg.EmbedPermissions {
		snapshot = set.Strings()
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, snapshot, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Int("permissions", len(set)).Msg("login correcto")
	return &dto.LoginResponse{
		Token:       token,
		User:        dto.UserFromEntity(user),
		Permissions: set.Strings(),
		Modules:     set.VisibleModules(),
	}, nil
}
