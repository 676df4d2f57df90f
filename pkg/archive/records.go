package archive

import (
	"context"
	"net/url"
)

// CreateRecord stores a new record. extra is merged into the record content
// after title and type, so its keys win on collision.
func (s *Session) CreateRecord(ctx context.Context, title, recordType string, extra map[string]any) (Result, error) {
	content := map[string]any{
		"title": title,
		"type":  recordType,
	}
	for k, v := range extra {
		content[k] = v
	}
	return s.protected(ctx, s.client.Post, "records", map[string]any{"content": content})
}

// GetRecord returns the full record with id.
func (s *Session) GetRecord(ctx context.Context, id string) (Result, error) {
	body, err := s.protected(ctx, s.client.Get, recordPath(id), nil)
	if err != nil {
		return nil, err
	}
	return unwrapObject(body, "record"), nil
}

// ListRecords returns the short form of every record of the account.
func (s *Session) ListRecords(ctx context.Context) ([]Result, error) {
	body, err := s.protected(ctx, s.client.Get, "records", nil)
	if err != nil {
		return nil, err
	}
	return unwrapList(body, "records"), nil
}

// UpdateRecord replaces the content of the record with id.
func (s *Session) UpdateRecord(ctx context.Context, id string, content map[string]any) (Result, error) {
	if content == nil {
		content = map[string]any{}
	}
	return s.protected(ctx, s.client.Put, recordPath(id), map[string]any{"content": content})
}

// DeleteRecord removes the record with id.
func (s *Session) DeleteRecord(ctx context.Context, id string) (Result, error) {
	return s.protected(ctx, s.client.Delete, recordPath(id), nil)
}

func recordPath(id string) string {
	return "records/" + url.PathEscape(id)
}
