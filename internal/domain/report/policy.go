package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotAuthorized is returned when a capability does not grant deletion.
var ErrNotAuthorized = errors.New("report deletion not authorized")

// DeletePolicy decides who may delete a report. It is consulted at the storage boundary
// so ownership rules can be tightened without changing the service interface.
type DeletePolicy interface {
	// Grant returns the capability handed to the creator (may be empty).
	Grant(report IssueReport) (string, error)
	// Authorize checks a presented capability against the stored report.
	Authorize(report IssueReport, capability string) error
}

// OpenPolicy lets any caller delete any report.
type OpenPolicy struct{}

// Grant implements DeletePolicy.
func (OpenPolicy) Grant(IssueReport) (string, error) { return "", nil }

// Authorize implements DeletePolicy.
func (OpenPolicy) Authorize(IssueReport, string) error { return nil }

// TokenPolicy issues an HS256 token bound to the report id; only its holder may delete.
type TokenPolicy struct {
	secret []byte
	now    func() time.Time
}

// NewTokenPolicy builds a TokenPolicy. now may be nil.
func NewTokenPolicy(secret string, now func() time.Time) (*TokenPolicy, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("capability secret cannot be empty")
	}
	if now == nil {
		now = time.Now
	}
	return &TokenPolicy{secret: []byte(secret), now: now}, nil
}

// Grant implements DeletePolicy.
func (p *TokenPolicy) Grant(report IssueReport) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  report.ID.String(),
		IssuedAt: jwt.NewNumericDate(report.CreatedAt),
	}
	if report.ExpiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*report.ExpiresAt)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign capability: %w", err)
	}
	return signed, nil
}

// Authorize implements DeletePolicy.
func (p *TokenPolicy) Authorize(report IssueReport, capability string) error {
	if strings.TrimSpace(capability) == "" {
		return ErrNotAuthorized
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(capability, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAuthorized, err)
	}
	if claims.Subject != report.ID.String() {
		return ErrNotAuthorized
	}
	return nil
}

var (
	_ DeletePolicy = OpenPolicy{}
	_ DeletePolicy = (*TokenPolicy)(nil)
)
