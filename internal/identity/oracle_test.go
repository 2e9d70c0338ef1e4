package identity

import (
	"context"
	"errors"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[uint]*model.User

func (f fakeUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	if id == 500 {
		return nil, util.StoreError("find user", errors.New("connection refused"))
	}
	u, ok := f[id]
	if !ok {
		return nil, util.ErrUserNotFound
	}
	return u, nil
}

func newOracle() *UserRoleOracle {
	users := fakeUsers{
		1: {BaseModel: model.BaseModel{ID: 1}, Role: model.Student},
		2: {BaseModel: model.BaseModel{ID: 2}, Role: model.Teacher},
		3: {BaseModel: model.BaseModel{ID: 3}, Role: model.Admin},
		4: {BaseModel: model.BaseModel{ID: 4}, Role: model.Student, Disabled: true},
		5: {BaseModel: model.BaseModel{ID: 5}, Role: "guest"},
	}
	return NewUserRoleOracle(users)
}

func TestUserRoleOracle(t *testing.T) {
	oracle := newOracle()
	ctx := context.Background()

	role, err := oracle.Role(ctx, Principal{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, model.Student, role)

	for _, id := range []uint{0, 4, 5, 99} {
		_, err := oracle.Role(ctx, Principal{UserID: id})
		assert.ErrorIs(t, err, util.ErrUnauthorized, "user %d", id)
	}

	_, err = oracle.Role(ctx, Principal{UserID: 500})
	assert.ErrorIs(t, err, util.ErrStoreUnavailable)
}

func TestHasRole(t *testing.T) {
	oracle := newOracle()
	ctx := context.Background()

	ok, err := HasRole(ctx, oracle, Principal{UserID: 1}, model.Student)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = HasRole(ctx, oracle, Principal{UserID: 2}, model.Student)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = HasRole(ctx, oracle, Principal{UserID: 3}, model.Student)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = HasRole(ctx, oracle, Principal{}, model.Student)
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestResolvedRole(t *testing.T) {
	student := Principal{UserID: 1}
	ctx := WithResolvedRole(context.Background(), student, model.Student)

	role, ok := ResolvedRole(ctx, student)
	assert.True(t, ok)
	assert.Equal(t, model.Student, role)

	_, ok = ResolvedRole(ctx, Principal{UserID: 2})
	assert.False(t, ok)
	_, ok = ResolvedRole(ctx, Principal{})
	assert.False(t, ok)
	_, ok = ResolvedRole(context.Background(), student)
	assert.False(t, ok)
}
