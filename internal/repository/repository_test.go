package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyai/internal/model"
	"studyai/internal/repository"
	"studyai/internal/testsupport"
)

func newSession(t *testing.T, repo *repository.SessionRepository, title string) *model.ChatSession {
	t.Helper()
	session := &model.ChatSession{ID: uuid.NewString(), Title: title, Type: model.SessionTypeStudy}
	require.NoError(t, repo.Create(session))
	return session
}

func TestSessionRepositoryGetReturnsEmptyMaterials(t *testing.T) {
	db := testsupport.NewDB(t)
	sessions := repository.NewSessionRepository(db)

	created := newSession(t, sessions, "Algebra I")

	got, err := sessions.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Algebra I", got.Title)
	assert.NotNil(t, got.Materials)
	assert.Empty(t, got.Materials)
}

func TestSessionRepositoryGetMissing(t *testing.T) {
	db := testsupport.NewDB(t)
	sessions := repository.NewSessionRepository(db)

	got, err := sessions.GetByID(uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepositoryListOrdersByUpdatedAt(t *testing.T) {
	db := testsupport.NewDB(t)
	sessions := repository.NewSessionRepository(db)

	older := newSession(t, sessions, "older")
	newer := newSession(t, sessions, "newer")
	require.NoError(t, sessions.Touch(older.ID, time.Now().Add(time.Hour)))

	list, err := sessions.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].ID)
	assert.Equal(t, newer.ID, list[1].ID)
}

func TestSessionRepositoryUpdateTitle(t *testing.T) {
	db := testsupport.NewDB(t)
	sessions := repository.NewSessionRepository(db)
	created := newSession(t, sessions, "draft")

	ok, err := sessions.UpdateTitle(created.ID, "final", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sessions.UpdateTitle(uuid.NewString(), "nobody", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := sessions.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
}

func TestSessionRepositoryDeleteCascadesMaterials(t *testing.T) {
	db := testsupport.NewDB(t)
	sessions := repository.NewSessionRepository(db)
	materials := repository.NewMaterialRepository(db)
	session := newSession(t, sessions, "biology")

	for _, name := range []string{"cells", "dna"} {
		require.NoError(t, materials.Create(&model.Material{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			Name:      name,
			Type:      model.MaterialTypeText,
			FilePath:  "/tmp/" + name,
			Content:   name,
		}))
	}

	list, err := materials.ListBySessionID(session.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, sessions.Delete(session.ID))

	list, err = materials.ListBySessionID(session.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := sessions.GetByID(session.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMaterialRepositoryUpdateAndDelete(t *testing.T) {
	db := testsupport.NewDB(t)
	sessions := repository.NewSessionRepository(db)
	materials := repository.NewMaterialRepository(db)
	session := newSession(t, sessions, "history")

	m := &model.Material{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Name:      "notes.pdf",
		Type:      model.MaterialTypePDF,
		FilePath:  "/tmp/notes.pdf",
		Content:   model.UploadPlaceholder("notes.pdf"),
	}
	require.NoError(t, materials.Create(m))
	require.NoError(t, materials.UpdateContent(m.ID, "extracted"))

	got, err := materials.GetByID(m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "extracted", got.Content)

	require.NoError(t, materials.Delete(m.ID))
	got, err = materials.GetByID(m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
