package repository

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)

	u := &model.User{Name: "n", Email: "n@example.com", Password: "hash", Role: model.Student}
	require.NoError(t, repo.Create(bg, u))

	byEmail, err := repo.FindByEmail(bg, "n@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	require.NoError(t, repo.UpdateRole(bg, u.ID, model.Teacher))
	byID, err := repo.FindByID(bg, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Teacher, byID.Role)

	_, err = repo.FindByID(bg, 9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdateRole(bg, 9999, model.Admin), util.ErrUserNotFound)

	dup := &model.User{Name: "d", Email: "n@example.com", Password: "hash"}
	assert.Error(t, repo.Create(bg, dup))
}
