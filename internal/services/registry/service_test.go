package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/domain"
	"chatrelay/internal/infrastructure/stream"
)

type fakeDirectory struct {
	users       map[string]stream.DirectoryUser
	queryErr    error
	upsertErr   error
	upsertCalls int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: make(map[string]stream.DirectoryUser)}
}

func (f *fakeDirectory) QueryUsers(_ context.Context, userID string) ([]stream.DirectoryUser, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if u, ok := f.users[userID]; ok {
		return []stream.DirectoryUser{u}, nil
	}
	return nil, nil
}

func (f *fakeDirectory) UpsertUser(_ context.Context, user stream.DirectoryUser) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.users[user.ID] = user
	return nil
}

type fakeUserStore struct {
	users     map[string]domain.User
	upsertErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]domain.User)}
}

func (f *fakeUserStore) UpsertUser(_ context.Context, user domain.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	// Upsert-on-conflict: first write wins, repeats are no-ops
	if _, ok := f.users[user.UserID]; !ok {
		f.users[user.UserID] = user
	}
	return nil
}

func newService(dir *fakeDirectory, store *fakeUserStore) *Service {
	return NewService(dir, store, time.Second)
}

func TestRegisterDerivesIdentity(t *testing.T) {
	dir := newFakeDirectory()
	store := newFakeUserStore()

	user, err := newService(dir, store).Register(context.Background(), "Ann Lee", "ann.lee@x.com")
	require.NoError(t, err)

	assert.Equal(t, domain.User{
		UserID: "ann_lee_x_com",
		Name:   "Ann Lee",
		Email:  "ann.lee@x.com",
	}, user)

	assert.Equal(t, "user", dir.users["ann_lee_x_com"].Role)
	assert.Contains(t, store.users, "ann_lee_x_com")
}

func TestRegisterIsIdempotent(t *testing.T) {
	dir := newFakeDirectory()
	store := newFakeUserStore()
	svc := newService(dir, store)

	first, err := svc.Register(context.Background(), "Ann Lee", "ann.lee@x.com")
	require.NoError(t, err)

	second, err := svc.Register(context.Background(), "Ann Lee", "ann.lee@x.com")
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Len(t, store.users, 1, "re-registration must not create a duplicate row")
	assert.Equal(t, 1, dir.upsertCalls, "an existing directory entry must not be re-created")
}

func TestRegisterValidatesInput(t *testing.T) {
	tests := []struct {
		name  string
		uname string
		email string
	}{
		{name: "missing name", uname: "", email: "a@b.c"},
		{name: "missing email", uname: "Ann", email: ""},
		{name: "missing both", uname: "", email: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(newFakeDirectory(), newFakeUserStore()).Register(context.Background(), tt.uname, tt.email)

			var derr *domain.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domain.KindValidation, derr.Kind)
			assert.Equal(t, "Name and email are required fields.", derr.Message)
		})
	}
}

func TestRegisterDirectoryFailureIsInternal(t *testing.T) {
	dir := newFakeDirectory()
	dir.queryErr = errors.New("directory unreachable")

	_, err := newService(dir, newFakeUserStore()).Register(context.Background(), "Ann", "a@b.c")

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.KindInternal, derr.Kind)
}

func TestRegisterStoreFailureIsInternal(t *testing.T) {
	store := newFakeUserStore()
	store.upsertErr = errors.New("db down")
	dir := newFakeDirectory()

	_, err := newService(dir, store).Register(context.Background(), "Ann", "a@b.c")

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.KindInternal, derr.Kind)

	// No rollback is attempted: the directory entry survives the failed
	// local write.
	assert.Contains(t, dir.users, "a_b_c")
}
