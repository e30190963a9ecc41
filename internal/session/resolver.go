package session

import (
	"fmt"
	"net/url"

	"github.com/golang-jwt/jwt/v5"

	"github.com/examdesk/complaints-api/internal/models"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
)

// Carrier is one named credential source supplied by the transport layer,
// typically a cookie. A carrier with an empty value counts as absent.
type Carrier struct {
	Name  string
	Value string
}

type carrierSpec struct {
	name string
	// fallbackRole covers tokens minted before the role claim existed.
	fallbackRole models.Role
}

// Resolver extracts a single authenticated identity from an ordered set of
// credential carriers. Precedence is fixed: the admin-scoped carrier wins over
// the student-scoped one, which wins over the legacy unscoped cookie. Older
// carriers stay supported so that previously issued credentials survive
// deploys; a newer role-scoped carrier always beats a stale legacy one.
type Resolver struct {
	secret []byte
	order  []carrierSpec
}

// NewResolver builds a resolver over the configured carrier names.
func NewResolver(secret, adminCarrier, studentCarrier, legacyCarrier string) *Resolver {
	return &Resolver{
		secret: []byte(secret),
		order: []carrierSpec{
			{name: adminCarrier, fallbackRole: models.RoleAdmin},
			{name: studentCarrier, fallbackRole: models.RoleStudent},
			{name: legacyCarrier, fallbackRole: models.RoleStudent},
		},
	}
}

// Resolve returns the identity of the highest-precedence present carrier.
// A present carrier that fails to decode fails the whole resolution; it is
// never skipped in favour of a lower-precedence carrier.
func (r *Resolver) Resolve(carriers []Carrier) (*models.Identity, error) {
	byName := make(map[string]string, len(carriers))
	for _, c := range carriers {
		if c.Value != "" {
			byName[c.Name] = c.Value
		}
	}

	for _, spec := range r.order {
		raw, ok := byName[spec.name]
		if !ok {
			continue
		}

		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "malformed credential")
		}

		claims, err := r.parse(decoded)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "invalid credential")
		}

		subject := claims.SubjectID()
		role := claims.Role
		if subject == "" && role == "" {
			return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "credential carries no identity")
		}
		if role == "" {
			role = spec.fallbackRole
		}
		if role != models.RoleStudent && role != models.RoleAdmin {
			return nil, appErrors.Clone(appErrors.ErrNotAuthenticated, "unknown role")
		}

		return &models.Identity{SubjectID: subject, Role: role, Name: claims.FullName}, nil
	}

	return nil, appErrors.ErrNotAuthenticated
}

func (r *Resolver) parse(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
