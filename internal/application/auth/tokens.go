package auth

import (
	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TokenRequest operador para el que se emite el token.
type TokenRequest struct {
	UserID   string
	BranchID string // vacío: todas las sucursales (solo admin)
	Role     string
}

// TokenIssuer emite tokens de operador. Las cuentas viven fuera del servicio; el ledger solo
// necesita identidad, rol y sucursal en el token.
type TokenIssuer struct {
	jwtCfg JWTConfig
}

// NewTokenIssuer construye el emisor.
func NewTokenIssuer(jwtCfg JWTConfig) *TokenIssuer {
	return &TokenIssuer{jwtCfg: jwtCfg}
}

// Issue valida la solicitud y firma el token.
func (t *TokenIssuer) Issue(in TokenRequest) (string, error) {
	if in.UserID == "" {
		return "", domain.Invalid("user_id", "requerido")
	}
	if !entity.ValidRole(in.Role) {
		return "", domain.Invalid("role", "debe ser admin, manager, cashier o stocker")
	}
	if in.BranchID == "" && in.Role != entity.RoleAdmin {
		return "", domain.Invalid("branch_id", "requerido para roles distintos de admin")
	}
	if t.jwtCfg.Secret == "" {
		return "", &domain.ConfigurationError{Key: "JWT_SECRET", Reason: "es obligatorio"}
	}
	exp := t.jwtCfg.ExpMinutes
	if exp <= 0 {
		exp = 60
	}
	return jwt.Generate(t.jwtCfg.Secret, in.UserID, in.BranchID, in.Role, t.jwtCfg.Issuer, exp)
}
