package impersonate

import (
	"github.com/voteagora/op-atlas-sub006/pkg/errors"
)

// Authorization failures carry deliberately generic messages so responses
// never reveal which identities are admins.
var (
	// ErrNotAdmin is returned when the caller is not a registry member.
	ErrNotAdmin = errors.New(errors.ErrCodeForbidden, "forbidden")

	// ErrFeatureDisabled is returned when the impersonation feature flag
	// is off, regardless of membership.
	ErrFeatureDisabled = errors.New(errors.ErrCodeFeatureDisabled, "impersonation is not enabled")

	// ErrSelfImpersonation is returned when an admin targets themselves.
	ErrSelfImpersonation = errors.New(errors.ErrCodeInvalidInput, "cannot impersonate your own account")

	// ErrTargetNotFound is returned when the target account does not exist.
	ErrTargetNotFound = errors.New(errors.ErrCodeNotFound, "target account not found")
)

// ErrLimitTooLarge is returned when the requested search limit exceeds
// the hard ceiling.
func ErrLimitTooLarge(limit int32) *errors.Error {
	return errors.Newf(errors.ErrCodeInvalidInput, "limit %d exceeds maximum of %d", limit, MaxSearchLimit).
		WithDetail("max_limit", MaxSearchLimit)
}
