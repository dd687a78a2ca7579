package session

import (
	"github.com/voteagora/op-atlas-sub006/pkg/adminregistry"
)

// EffectiveUser returns the identity all business logic must act as.
// It is the single data-scoping function: handlers read OperatorID only
// for admin-authorization checks, never for scoping data.
//
// The admin's registry membership and the feature flag are re-checked on
// every call, so a stale session loses its impersonated identity the
// moment the admin is removed from the registry or the feature is
// turned off.
func EffectiveUser(sess Session, registry *adminregistry.Registry) string {
	if imp := sess.Impersonation; imp != nil &&
		imp.Active &&
		registry.IsEnabled() &&
		registry.IsAdmin(imp.AdminID) {
		return imp.TargetID
	}
	return sess.OperatorID
}

// IsImpersonating reports whether the session currently resolves to an
// impersonated identity.
func IsImpersonating(sess Session, registry *adminregistry.Registry) bool {
	imp := sess.Impersonation
	return imp != nil &&
		imp.Active &&
		registry.IsEnabled() &&
		registry.IsAdmin(imp.AdminID)
}
