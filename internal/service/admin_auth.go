package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Nerzal/gocloak/v13"
	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/bindassticks/storefront/pkg/config"
	"github.com/go-playground/validator/v10"
)

// IdPClient is the part of *gocloak.GoCloak used for admin sign-in.
type IdPClient interface {
	Login(ctx context.Context, clientID, clientSecret, realm, username, password string) (*gocloak.JWT, error)
}

// AdminAuthService exchanges admin credentials for a bearer token accepted by the admin routes.
type AdminAuthService interface {
	// Login returns ErrInvalidCredentials when the identity provider rejects the
	// credentials and ErrIdPInteractionFailed when it cannot be reached.
	Login(ctx context.Context, in AdminCredentials) (*AdminTokenDto, error)
}

type AdminCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AdminTokenDto struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// AdminAuth implements AdminAuthService with a Keycloak realm.
type AdminAuth struct {
	client   IdPClient
	realm    string
	clientID string
	secret   string
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAdminAuth(client IdPClient, cfg config.KeycloakConfig, validate *validator.Validate, logger *slog.Logger) *AdminAuth {
	return &AdminAuth{
		client:   client,
		realm:    cfg.Realm,
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
		validate: validate,
		logger:   logger.With("component", "admin_auth"),
	}
}

func (a *AdminAuth) Login(ctx context.Context, in AdminCredentials) (*AdminTokenDto, error) {
	if err := a.validate.Struct(in); err != nil {
		return nil, err
	}
	token, err := a.client.Login(ctx, a.clientID, a.secret, a.realm, in.Email, in.Password)
	if err != nil {
		var apiErr *gocloak.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusBadRequest) {
			a.logger.WarnContext(ctx, "Admin login rejected", "email", in.Email, "code", apiErr.Code)
			return nil, storeerrors.ErrInvalidCredentials
		}
		a.logger.ErrorContext(ctx, "Failed to login", "error", err)
		return nil, fmt.Errorf("%w: failed to login to Keycloak: %v", storeerrors.ErrIdPInteractionFailed, err)
	}
	a.logger.InfoContext(ctx, "Admin signed in", "email", in.Email)
	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &AdminTokenDto{AccessToken: token.AccessToken, TokenType: tokenType, ExpiresIn: token.ExpiresIn}, nil
}
