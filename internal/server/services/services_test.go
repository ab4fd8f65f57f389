package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/dmitrijs2005/citybreaks/internal/server/config"
	"github.com/dmitrijs2005/citybreaks/internal/server/models"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/citybreaks"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/citybreaks/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type published struct {
	userID string
	typ    models.ChangeType
	rec    models.CityBreak
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakeNotifier) Publish(_ context.Context, userID string, t models.ChangeType, c *models.CityBreak) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{userID: userID, typ: t, rec: *c})
}

// brokenManager fails every repository call with err.
type brokenManager struct {
	repomanager.RepositoryManager
	err error
}

type brokenUsers struct{ err error }

func (b brokenUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, b.err }
func (b brokenUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, b.err
}

type brokenCityBreaks struct {
	citybreaks.Repository
	err error
}

func (b brokenCityBreaks) List(context.Context, string) ([]*models.CityBreak, error) {
	return nil, b.err
}

func (m brokenManager) Users() users.Repository           { return brokenUsers{err: m.err} }
func (m brokenManager) CityBreaks() citybreaks.Repository { return brokenCityBreaks{err: m.err} }

type fakeStore struct {
	uploads map[string][]byte
	putErr  error
}

func (f *fakeStore) Upload(_ context.Context, key string, body []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = body
	return nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string) (string, error) {
	return "https://s3.local/" + key, nil
}

// --- helpers ---

func newUserService(t *testing.T, m repomanager.RepositoryManager) *UserService {
	t.Helper()
	s := NewUserService(m, &config.Config{SecretKey: "k", TokenValidityDuration: time.Hour})
	s.bcryptCost = bcrypt.MinCost
	return s
}

func newCityBreakService(t *testing.T) (*CityBreakService, *fakeNotifier) {
	t.Helper()
	n := &fakeNotifier{}
	s := NewCityBreakService(repomanager.NewMemoryRepositoryManager(), n, logging.NewNopLogger())
	next := 0
	s.newID = func() string {
		next++
		return []string{"", "id-1", "id-2", "id-3"}[next]
	}
	return s, n
}

func rome(version int64) models.CityBreak {
	return models.CityBreak{Name: "Rome", StartDate: "2025-05-01", EndDate: "2025-05-04", Price: 200, Version: version}
}

// --- users ---

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newUserService(t, repomanager.NewMemoryRepositoryManager())

	token, err := s.Signup(ctx, " alice ", "secret1")
	require.NoError(t, err)
	uid, err := s.UserIDFromToken(token)
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	token, err = s.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	uid2, err := s.UserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, uid, uid2)

	_, err = s.Login(ctx, "alice", "wrong!!")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = s.Login(ctx, "bob", "secret1")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = s.Signup(ctx, "alice", "another1")
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestSignup_Validation(t *testing.T) {
	s := newUserService(t, repomanager.NewMemoryRepositoryManager())

	_, err := s.Signup(context.Background(), "  ", "secret1")
	require.ErrorIs(t, err, common.ErrValidation)
	_, err = s.Signup(context.Background(), "alice", "123")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestLogin_RepositoryError(t *testing.T) {
	s := newUserService(t, brokenManager{err: errors.New("db down")})

	_, err := s.Login(context.Background(), "alice", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserIDFromToken_Invalid(t *testing.T) {
	s := newUserService(t, repomanager.NewMemoryRepositoryManager())
	_, err := s.UserIDFromToken("garbage")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

// --- city breaks ---

func TestCreate_AssignsIDAndVersionOne(t *testing.T) {
	ctx := context.Background()
	s, n := newCityBreakService(t)

	in := rome(7)
	in.ID = "client-id"
	c, err := s.Create(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "id-1", c.ID)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, int64(1), c.Version)

	require.Len(t, n.msgs, 1)
	assert.Equal(t, "u1", n.msgs[0].userID)
	assert.Equal(t, models.ChangeCreated, n.msgs[0].typ)
	assert.Equal(t, "id-1", n.msgs[0].rec.ID)
}

func TestCreate_Invalid(t *testing.T) {
	s, n := newCityBreakService(t)
	in := rome(0)
	in.Name = ""
	_, err := s.Create(context.Background(), "u1", in)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, n.msgs)
}

func TestUpdate_VersionRules(t *testing.T) {
	ctx := context.Background()
	s, n := newCityBreakService(t)

	c, err := s.Create(ctx, "u1", rome(0))
	require.NoError(t, err)

	upd := rome(1)
	upd.Name = "Rome again"
	got, err := s.Update(ctx, "u1", c.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, "Rome again", got.Name)

	// A copy newer than the stored one is accepted and still bumps by one.
	got, err = s.Update(ctx, "u1", c.ID, rome(5))
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Version)

	_, err = s.Update(ctx, "u1", c.ID, rome(2))
	require.ErrorIs(t, err, common.ErrVersionConflict)

	stored, err := s.Get(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Version)

	require.Len(t, n.msgs, 3)
	assert.Equal(t, models.ChangeUpdated, n.msgs[2].typ)
	assert.Equal(t, int64(3), n.msgs[2].rec.Version)
}

func TestUpdate_OtherUsersRecord(t *testing.T) {
	ctx := context.Background()
	s, _ := newCityBreakService(t)

	c, err := s.Create(ctx, "u1", rome(0))
	require.NoError(t, err)

	_, err = s.Update(ctx, "u2", c.ID, rome(1))
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.Get(ctx, "u2", c.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "u2", c.ID), common.ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newCityBreakService(t)

	list, err := s.List(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	c, err := s.Create(ctx, "u1", rome(0))
	require.NoError(t, err)
	list, err = s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, "u1", c.ID))
	require.ErrorIs(t, s.Delete(ctx, "u1", c.ID), common.ErrNotFound)
}

// --- export ---

func TestExport(t *testing.T) {
	ctx := context.Background()
	m := repomanager.NewMemoryRepositoryManager()
	cs := NewCityBreakService(m, nil, logging.NewNopLogger())
	_, err := cs.Create(ctx, "u1", rome(0))
	require.NoError(t, err)

	store := &fakeStore{}
	s := NewExportService(m, store)
	s.now = func() time.Time { return time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC) }

	url, err := s.Export(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, store.uploads, 1)
	for key, body := range store.uploads {
		assert.Equal(t, "https://s3.local/"+key, url)
		assert.Regexp(t, `^exports/u1/2025/6/7/`, key)

		var got []models.CityBreak
		require.NoError(t, json.Unmarshal(body, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Rome", got[0].Name)
	}
}

func TestExport_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewExportService(repomanager.NewMemoryRepositoryManager(), nil).Export(ctx, "u1")
	require.ErrorIs(t, err, ErrExportDisabled)

	_, err = NewExportService(brokenManager{err: errors.New("db down")}, &fakeStore{}).Export(ctx, "u1")
	require.Error(t, err)

	boom := errors.New("bucket missing")
	_, err = NewExportService(repomanager.NewMemoryRepositoryManager(), &fakeStore{putErr: boom}).Export(ctx, "u1")
	require.ErrorIs(t, err, boom)
}
