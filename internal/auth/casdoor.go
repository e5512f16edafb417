package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/classroom-service/internal/models"
)

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// CasdoorValidator accepts tokens signed by a Casdoor SSO instance
type CasdoorValidator struct {
	client *casdoorsdk.Client
}

func NewCasdoorValidator(cfg CasdoorConfig) *CasdoorValidator {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorValidator{client: client}
}

func (v *CasdoorValidator) ValidateToken(_ context.Context, token string) (*Principal, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.User.Id == "" {
		return nil, ErrInvalidToken
	}

	p := &Principal{
		ID:      claims.User.Id,
		Email:   claims.User.Email,
		Role:    mapCasdoorRole(claims.User.Type),
		TokenID: claims.RegisteredClaims.ID,
	}
	if exp := claims.RegisteredClaims.ExpiresAt; exp != nil {
		p.ExpiresAt = exp.Time
	}
	return p, nil
}

// mapCasdoorRole maps a Casdoor user type onto a local role
func mapCasdoorRole(casdoorType string) models.UserRole {
	switch strings.ToLower(casdoorType) {
	case "admin", "administrator":
		return models.RoleAdmin
	case "teacher", "instructor", "educator":
		return models.RoleTeacher
	default:
		return models.RoleStudent
	}
}
