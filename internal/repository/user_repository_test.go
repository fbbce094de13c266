package repository

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/findnest-api/internal/models"
)

func TestUserRepositoryList(t *testing.T) {
	client, _ := newBackend(t, func(w http.ResponseWriter, call recordedCall) {
		_, _ = w.Write([]byte(`[{"uid":"u1","firstName":"Ana","role":"admin","department":"SSO"},{"id":"u2","firstName":"Ben","role":"staff"}]`))
	})

	users, err := NewUserRepository(client).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.ID("u1"), users[0].ID)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.Equal(t, models.ID("u2"), users[1].ID)
}

func TestUserRepositoryCreateOmitsEmptyPasswordOnUpdate(t *testing.T) {
	client, calls := newBackend(t, func(w http.ResponseWriter, call recordedCall) {
		w.WriteHeader(http.StatusNoContent)
	})
	repo := NewUserRepository(client)

	in := UserWrite{FirstName: "Cy", LastName: "Dee", Username: "cy", Email: "cy@example.com", Department: "SSD", Role: models.RoleStaff, Password: "secret1"}
	created, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "cy", created.Username)

	in.Password = ""
	updated, err := repo.Update(context.Background(), "u9", in)
	require.NoError(t, err)
	assert.Equal(t, models.ID("u9"), updated.ID)

	require.Len(t, *calls, 2)
	assert.Equal(t, "secret1", (*calls)[0].Body["password"])
	_, hasPassword := (*calls)[1].Body["password"]
	assert.False(t, hasPassword)
	assert.Equal(t, "/api/users/u9", (*calls)[1].Path)
}

func TestUserRepositoryProfilePictureAndDelete(t *testing.T) {
	client, calls := newBackend(t, func(w http.ResponseWriter, call recordedCall) {
		w.WriteHeader(http.StatusOK)
	})
	repo := NewUserRepository(client)

	require.NoError(t, repo.UpdateProfilePicture(context.Background(), "u1", "https://cdn.example.com/a b.jpg"))
	require.NoError(t, repo.Delete(context.Background(), "u1"))

	require.Len(t, *calls, 2)
	assert.Equal(t, http.MethodPatch, (*calls)[0].Method)
	assert.Equal(t, "/api/users/u1/profile-picture", (*calls)[0].Path)
	assert.Equal(t, "profilePictureUrl=https%3A%2F%2Fcdn.example.com%2Fa+b.jpg", (*calls)[0].Query)
	assert.Equal(t, http.MethodDelete, (*calls)[1].Method)
}
