// Package impersonate lets authorized admins act on behalf of another
// account for support and debugging.
//
// Impersonation is gated by pkg/adminregistry (membership plus a global
// feature flag) and is carried in the session tokens rather than server
// state: StartImpersonation returns a session.ImpersonationState that the
// HTTP handler embeds into freshly issued access and refresh tokens, and
// StopImpersonation clears it. Admin membership is re-checked every time
// the state is read, so removing an admin from the registry immediately
// revokes their impersonated identity even for tokens already issued.
//
// Every lifecycle transition is written to the audit trail, and all
// irreversible external effects performed while impersonating are mocked
// by pkg/effectguard.
//
// # Basic Usage
//
//	registry := adminregistry.NewRegistry(cfg.Enabled, cfg.Admins())
//	service := impersonate.NewService(registry, store.Accounts(), sink)
//	handle := impersonate.NewHandle(service, jwtService)
//	handle.RegisterRoutes(router)
//
// # Related Packages
//
//   - pkg/session - session resolution and effective identity
//   - pkg/effectguard - mocking of irreversible effects
//   - pkg/audit - append-only audit trail
package impersonate
