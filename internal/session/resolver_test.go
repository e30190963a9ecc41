package session

import (
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/examdesk/complaints-api/internal/models"
	appErrors "github.com/examdesk/complaints-api/pkg/errors"
)

const testSecret = "resolver-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestResolver() *Resolver {
	return NewResolver(testSecret, "admin_token", "student_token", "token")
}

func TestResolveAdminCarrierWins(t *testing.T) {
	r := newTestResolver()
	adminToken := signToken(t, testSecret, jwt.MapClaims{"uid": "admin-1", "role": "admin", "name": "Dean Okafor"})
	studentToken := signToken(t, testSecret, jwt.MapClaims{"uid": "student-1", "role": "student"})

	identity, err := r.Resolve([]Carrier{
		{Name: "student_token", Value: studentToken},
		{Name: "admin_token", Value: adminToken},
	})
	require.NoError(t, err)
	require.Equal(t, "admin-1", identity.SubjectID)
	require.Equal(t, models.RoleAdmin, identity.Role)
	require.Equal(t, "Dean Okafor", identity.Name)
}

func TestResolveStudentBeatsLegacy(t *testing.T) {
	r := newTestResolver()
	studentToken := signToken(t, testSecret, jwt.MapClaims{"uid": "student-1", "role": "student"})
	legacyToken := signToken(t, testSecret, jwt.MapClaims{"uid": "someone-else", "role": "student"})

	identity, err := r.Resolve([]Carrier{
		{Name: "token", Value: legacyToken},
		{Name: "student_token", Value: studentToken},
	})
	require.NoError(t, err)
	require.Equal(t, "student-1", identity.SubjectID)
}

func TestResolveLegacyFallbackRole(t *testing.T) {
	r := newTestResolver()
	legacyToken := signToken(t, testSecret, jwt.MapClaims{"uid": "student-9"})

	identity, err := r.Resolve([]Carrier{{Name: "token", Value: legacyToken}})
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, identity.Role)
	require.Equal(t, "student-9", identity.SubjectID)
}

func TestResolveAdminFallbackRole(t *testing.T) {
	r := newTestResolver()
	adminToken := signToken(t, testSecret, jwt.MapClaims{"uid": "admin-2"})

	identity, err := r.Resolve([]Carrier{{Name: "admin_token", Value: adminToken}})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, identity.Role)
}

func TestResolveMalformedCarrierFailsClosed(t *testing.T) {
	r := newTestResolver()
	studentToken := signToken(t, testSecret, jwt.MapClaims{"uid": "student-1", "role": "student"})

	// A present but undecodable higher-precedence carrier must fail the whole
	// resolution, never fall through to the valid student credential.
	_, err := r.Resolve([]Carrier{
		{Name: "admin_token", Value: "not-a-jwt"},
		{Name: "student_token", Value: studentToken},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNotAuthenticated.Code, appErr.Code)
}

func TestResolveWrongSecretRejected(t *testing.T) {
	r := newTestResolver()
	forged := signToken(t, "other-secret", jwt.MapClaims{"uid": "admin-1", "role": "admin"})

	_, err := r.Resolve([]Carrier{{Name: "admin_token", Value: forged}})
	require.Error(t, err)
}

func TestResolveExpiredTokenRejected(t *testing.T) {
	r := newTestResolver()
	expired := signToken(t, testSecret, jwt.MapClaims{
		"uid":  "student-1",
		"role": "student",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	_, err := r.Resolve([]Carrier{{Name: "student_token", Value: expired}})
	require.Error(t, err)
}

func TestResolveNoCarriers(t *testing.T) {
	r := newTestResolver()

	_, err := r.Resolve(nil)
	require.ErrorIs(t, err, appErrors.ErrNotAuthenticated)

	_, err = r.Resolve([]Carrier{{Name: "admin_token", Value: ""}})
	require.ErrorIs(t, err, appErrors.ErrNotAuthenticated)
}

func TestResolveURLEncodedToken(t *testing.T) {
	r := newTestResolver()
	token := signToken(t, testSecret, jwt.MapClaims{"uid": "student-1", "role": "student"})

	identity, err := r.Resolve([]Carrier{{Name: "student_token", Value: url.QueryEscape(token)}})
	require.NoError(t, err)
	require.Equal(t, "student-1", identity.SubjectID)
}

func TestResolveUnknownRoleRejected(t *testing.T) {
	r := newTestResolver()
	token := signToken(t, testSecret, jwt.MapClaims{"uid": "user-1", "role": "superuser"})

	_, err := r.Resolve([]Carrier{{Name: "student_token", Value: token}})
	require.Error(t, err)
}

func TestResolveEmptyClaimsRejected(t *testing.T) {
	r := newTestResolver()
	token := signToken(t, testSecret, jwt.MapClaims{})

	_, err := r.Resolve([]Carrier{{Name: "token", Value: token}})
	require.Error(t, err)
}

func TestResolvePrefersUIDOverSubject(t *testing.T) {
	r := newTestResolver()
	token := signToken(t, testSecret, jwt.MapClaims{
		"uid":  "uid-wins",
		"sub":  "sub-loses",
		"role": "student",
	})

	identity, err := r.Resolve([]Carrier{{Name: "student_token", Value: token}})
	require.NoError(t, err)
	require.Equal(t, "uid-wins", identity.SubjectID)
}

func TestResolveSubjectOnlyToken(t *testing.T) {
	r := newTestResolver()
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "student-3", "role": "student"})

	identity, err := r.Resolve([]Carrier{{Name: "student_token", Value: token}})
	require.NoError(t, err)
	require.Equal(t, "student-3", identity.SubjectID)
}
