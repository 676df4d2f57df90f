package archive

import "context"

// Authenticate completes the second-factor step for the current session with code.
func (s *Session) Authenticate(ctx context.Context, code string) (Result, error) {
	return s.protected(ctx, s.client.Post, "authentications", map[string]any{"code": code})
}

// ActivateAuthentication switches on second-factor authentication for the
// account. The response carries what the authenticator app needs.
func (s *Session) ActivateAuthentication(ctx context.Context, password string) (Result, error) {
	return s.protected(ctx, s.client.Put, "authentications/activate", map[string]any{"password": password})
}

// DeactivateAuthentication switches off second-factor authentication.
func (s *Session) DeactivateAuthentication(ctx context.Context, password string) (Result, error) {
	return s.protected(ctx, s.client.Put, "authentications/deactivate", map[string]any{"password": password})
}
