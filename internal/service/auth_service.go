package service

import (
	"errors"

	"afilia/config"
	"afilia/internal/auth"
	"afilia/internal/domain"
	"afilia/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCreds = errors.New("invalid email or password")

// AuthService issues JWTs for affiliates and back-office admins.
type AuthService struct {
	cfg        *config.Config
	affiliates repository.AffiliateRepository
	admins     repository.AdminRepository
}

func NewAuthService(cfg *config.Config, affiliates repository.AffiliateRepository, admins repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, affiliates: affiliates, admins: admins}
}

func (s *AuthService) LoginAffiliate(email, password string) (access, refresh string, err error) {
	a, err := s.affiliates.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrAffiliateNotFound) {
			return "", "", ErrInvalidCreds
		}
		return "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", "", ErrInvalidCreds
	}
	access, err = auth.GenerateAccessToken(&s.cfg.JWT, a.ID, a.Email, domain.RoleAffiliate)
	if err != nil {
		return "", "", err
	}
	refresh, err = auth.GenerateRefreshToken(&s.cfg.JWT, a.ID, domain.RoleAffiliate)
	return access, refresh, err
}

func (s *AuthService) LoginAdmin(email, password string) (access, refresh string, err error) {
	admin, err := s.admins.GetByEmail(email)
	if err != nil {
		return "", "", ErrInvalidCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", "", ErrInvalidCreds
	}
	access, err = auth.GenerateAccessToken(&s.cfg.JWT, admin.ID, admin.Email, domain.RoleAdmin)
	if err != nil {
		return "", "", err
	}
	refresh, err = auth.GenerateRefreshToken(&s.cfg.JWT, admin.ID, domain.RoleAdmin)
	return access, refresh, err
}

func (s *AuthService) Refresh(refreshToken string) (access, refresh string, err error) {
	role, id, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", "", err
	}
	var email string
	switch role {
	case domain.RoleAffiliate:
		a, err := s.affiliates.GetByID(id)
		if err != nil {
			return "", "", err
		}
		email = a.Email
	case domain.RoleAdmin:
		// The account must still exist; a removed operator's refresh
		// token stops working immediately.
		admin, err := s.admins.GetByID(id)
		if err != nil {
			return "", "", auth.ErrInvalidToken
		}
		email = admin.Email
	default:
		return "", "", auth.ErrInvalidToken
	}
	access, err = auth.GenerateAccessToken(&s.cfg.JWT, id, email, role)
	if err != nil {
		return "", "", err
	}
	refresh, err = auth.GenerateRefreshToken(&s.cfg.JWT, id, role)
	return access, refresh, err
}
