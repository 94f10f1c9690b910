package report

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenPolicyRejectsExpiredCapability(t *testing.T) {
	created := mustParse("2024-07-01T10:00:00Z")
	expires := created.Add(time.Hour)
	report := IssueReport{ID: uuid.New(), CreatedAt: created, ExpiresAt: &expires}

	now := created
	policy, err := NewTokenPolicy("secret", func() time.Time { return now })
	require.NoError(t, err)

	capability, err := policy.Grant(report)
	require.NoError(t, err)
	require.NoError(t, policy.Authorize(report, capability))

	now = created.Add(2 * time.Hour)
	err = policy.Authorize(report, capability)
	require.True(t, errors.Is(err, ErrNotAuthorized))
}

func TestTokenPolicyRejectsForeignSecret(t *testing.T) {
	report := IssueReport{ID: uuid.New(), CreatedAt: time.Now()}
	issuer, err := NewTokenPolicy("one", nil)
	require.NoError(t, err)
	verifier, err := NewTokenPolicy("two", nil)
	require.NoError(t, err)

	capability, err := issuer.Grant(report)
	require.NoError(t, err)
	require.ErrorIs(t, verifier.Authorize(report, capability), ErrNotAuthorized)

	_, err = NewTokenPolicy("  ", nil)
	require.Error(t, err)
}

func TestOpenPolicyAllowsAnyone(t *testing.T) {
	capability, err := OpenPolicy{}.Grant(IssueReport{})
	require.NoError(t, err)
	require.Empty(t, capability)
	require.NoError(t, OpenPolicy{}.Authorize(IssueReport{}, "anything"))
}
