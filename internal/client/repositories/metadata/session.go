package metadata

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/citybreaks/internal/dbx"
)

// Session is the signed-in account remembered across restarts, so queued
// operations can be replayed with its token after an offline start.
type Session struct {
	UserName string
	Token    string
}

var errEmptyToken = errors.New("session without token")

// SessionStore keeps a Session under KeyToken and KeyUserName.
type SessionStore struct {
	db dbx.TxBeginner
	r  *SQLiteRepository
}

// NewSessionStore builds a store over db. The handle must satisfy both
// dbx.DBTX and dbx.TxBeginner; *sql.DB does.
func NewSessionStore(db interface {
	dbx.DBTX
	dbx.TxBeginner
}) *SessionStore {
	return &SessionStore{db: db, r: NewSQLiteRepository(db)}
}

// Load returns (nil, nil) when nobody is signed in.
func (s *SessionStore) Load(ctx context.Context) (*Session, error) {
	token, err := s.r.Get(ctx, KeyToken)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, nil
	}
	user, err := s.r.Get(ctx, KeyUserName)
	if err != nil {
		return nil, err
	}
	return &Session{UserName: string(user), Token: string(token)}, nil
}

// Save replaces the stored session. Both keys change together.
func (s *SessionStore) Save(ctx context.Context, sess Session) error {
	if sess.Token == "" {
		return errEmptyToken
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := NewSQLiteRepository(tx)
		if err := r.Set(ctx, KeyToken, []byte(sess.Token)); err != nil {
			return err
		}
		return r.Set(ctx, KeyUserName, []byte(sess.UserName))
	})
}

// Clear forgets the session. Other metadata stays.
func (s *SessionStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := NewSQLiteRepository(tx)
		if err := r.Delete(ctx, KeyToken); err != nil {
			return err
		}
		return r.Delete(ctx, KeyUserName)
	})
}
