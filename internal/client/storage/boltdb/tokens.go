package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/webkit/internal/client/storage"
)

// SaveToken сохраняет токен под его server-side ID
func (s *Storage) SaveToken(ctx context.Context, token *storage.IssuedToken) error {
	if token.ID == "" {
		return fmt.Errorf("token id is empty")
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketTokens)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(token.ID), data); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		return nil
	})
}

// GetToken возвращает сохраненный токен
func (s *Storage) GetToken(ctx context.Context, id string) (*storage.IssuedToken, error) {
	var token storage.IssuedToken

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketTokens)
		if err != nil {
			return err
		}
		data := b.Get([]byte(id))
		if data == nil {
			return storage.ErrTokenNotFound
		}
		if err := json.Unmarshal(data, &token); err != nil {
			return fmt.Errorf("failed to unmarshal token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &token, nil
}

// ListTokens возвращает токены пользователя, отсортированные по времени создания
func (s *Storage) ListTokens(ctx context.Context, username string) ([]*storage.IssuedToken, error) {
	tokens := make([]*storage.IssuedToken, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketTokens)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			var token storage.IssuedToken
			if err := json.Unmarshal(v, &token); err != nil {
				return fmt.Errorf("failed to unmarshal token %s: %w", k, err)
			}
			if token.Username == username {
				tokens = append(tokens, &token)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
	})

	return tokens, nil
}

// DeleteToken удаляет токен из локального журнала
func (s *Storage) DeleteToken(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketTokens)
		if err != nil {
			return err
		}
		if b.Get([]byte(id)) == nil {
			return storage.ErrTokenNotFound
		}
		if err := b.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}
		return nil
	})
}
