package platform

import (
	"errors"

	"github.com/google/uuid"
)

// Session binds one running storefront instance to its tenant. It replaces
// ambient global lookup: the tenant id and auth token are fixed at
// construction and injected into every collaborator that needs them.
type Session struct {
	tenantID   string
	authToken  string
	instanceID string
}

// NewSession creates an immutable session for tenantID. The auth token may be
// empty when the storefront only reads public configuration.
func NewSession(tenantID, authToken string) (*Session, error) {
	if tenantID == "" {
		return nil, errors.New("tenant id must not be empty")
	}
	return &Session{
		tenantID:   tenantID,
		authToken:  authToken,
		instanceID: uuid.New().String(),
	}, nil
}

// TenantID returns the tenant identifier this instance was built for.
func (s *Session) TenantID() string {
	return s.tenantID
}

// AuthToken returns the bearer token, if any.
func (s *Session) AuthToken() string {
	return s.authToken
}

// InstanceID returns the unique id of this running instance.
func (s *Session) InstanceID() string {
	return s.instanceID
}
