package archive

import "context"

// User returns the user owning the current session.
func (s *Session) User(ctx context.Context) (Result, error) {
	body, err := s.protected(ctx, s.client.Get, "users/me", nil)
	if err != nil {
		return nil, err
	}
	return unwrapObject(body, "user"), nil
}
