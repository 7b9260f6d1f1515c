package viewmodel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/models"
)

func TestEditor_BlankTitleNeverCallsBackend(t *testing.T) {
	for _, title := range []string{"", " ", "\t\n  "} {
		for _, publish := range []bool{false, true} {
			client := &fakeClient{user: &models.User{ID: "u1"}}
			e := NewCreateEditor(client, backend.NewSession(client))
			e.SetTitle(title)
			e.SetContent("body")

			route, err := e.Submit(context.Background(), publish)
			assert.True(t, apperr.IsValidation(err), "title %q: err = %v", title, err)
			assert.Equal(t, RouteNone, route)
			assert.Equal(t, "Title is required.", e.FieldError("title"))
			assert.Empty(t, client.Calls())
			assert.Equal(t, "body", e.Draft().Content)
		}
	}
}

func TestEditor_CreateRequiresUser(t *testing.T) {
	client := &fakeClient{}
	sess := backend.NewSession(client)
	_, err := sess.Refresh(context.Background())
	require.NoError(t, err)

	e := NewCreateEditor(client, sess)
	e.SetTitle("A")
	route, err := e.Submit(context.Background(), false)

	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Equal(t, RouteLogin, route)
	assert.Empty(t, client.Calls())
}

func TestEditor_CreateStampsOwnerAndClock(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	client := &fakeClient{user: &models.User{ID: "u1"}}
	sess := backend.NewSessionFor(client, client.user)

	e := NewCreateEditor(client, sess, WithClock(func() time.Time { return now }))
	assert.True(t, e.IsNew())
	e.SetTitle("A")
	e.SetContent("x")
	route, err := e.Submit(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, RouteList, route)

	saved := e.Saved()
	require.NotNil(t, saved)
	assert.Equal(t, "u1", saved.UserID)
	assert.True(t, saved.IsPublic)
	assert.Equal(t, now, saved.ModifiedAt)
	assert.Equal(t, []string{"insert"}, client.Calls())
}

func TestEditor_PublishFlagDecidesVisibility(t *testing.T) {
	owner := &models.User{ID: "u1"}
	client := &fakeClient{user: owner, notes: []models.Note{
		{ID: "n1", Title: "Old", IsPublic: true, UserID: "u1"},
	}}
	sess := backend.NewSessionFor(client, owner)

	e, err := OpenEditor(context.Background(), client, sess, "n1")
	require.NoError(t, err)
	assert.False(t, e.IsNew())
	assert.Equal(t, "Old", e.Draft().Title)
	assert.True(t, e.Draft().IsPublic)

	_, err = e.Submit(context.Background(), false)
	require.NoError(t, err)
	got, _ := client.GetNote(context.Background(), "n1")
	assert.False(t, got.IsPublic, "save as private overrides prior visibility")
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "n1", got.ID)
}

func TestEditor_OpenErrors(t *testing.T) {
	ctx := context.Background()
	notes := []models.Note{{ID: "n1", Title: "Mine", UserID: "u1"}}

	anon := &fakeClient{notes: notes}
	_, err := OpenEditor(ctx, anon, backend.NewSession(anon), "n1")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	other := &fakeClient{user: &models.User{ID: "u2"}, notes: notes}
	_, err = OpenEditor(ctx, other, backend.NewSession(other), "n1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	owner := &fakeClient{user: &models.User{ID: "u1"}, notes: notes}
	_, err = OpenEditor(ctx, owner, backend.NewSession(owner), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	var fe *apperr.FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestEditor_BackendErrorPreservesDraft(t *testing.T) {
	client := &fakeClient{user: &models.User{ID: "u1"}, mutErr: errors.New("network down")}
	e := NewCreateEditor(client, backend.NewSessionFor(client, client.user))
	e.SetTitle("Keep me")
	e.SetContent("typed text")

	route, err := e.Submit(context.Background(), false)
	var me *apperr.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, RouteNone, route)
	assert.Equal(t, "Keep me", e.Draft().Title)
	assert.Equal(t, "typed text", e.Draft().Content)
	assert.False(t, e.Saving())
	assert.Equal(t, err, e.Err())

	client.mutErr = nil
	route, err = e.Submit(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, RouteList, route)
}

// blockingClient holds InsertNote until release is closed.
type blockingClient struct {
	fakeClient
	started chan struct{}
	release chan struct{}
}

func (b *blockingClient) InsertNote(ctx context.Context, n models.Note) (*models.Note, error) {
	close(b.started)
	<-b.release
	return b.fakeClient.InsertNote(ctx, n)
}

func TestEditor_DuplicateSubmitIsBusy(t *testing.T) {
	client := &blockingClient{
		fakeClient: fakeClient{user: &models.User{ID: "u1"}},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	e := NewCreateEditor(client, backend.NewSessionFor(client, client.user))
	e.SetTitle("Once")

	done := make(chan error, 1)
	go func() {
		_, err := e.Submit(context.Background(), false)
		done <- err
	}()
	<-client.started
	assert.True(t, e.Saving())

	_, err := e.Submit(context.Background(), true)
	assert.ErrorIs(t, err, apperr.ErrBusy)

	close(client.release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"insert"}, client.Calls())
}

func TestDetail_OwnerAndDelete(t *testing.T) {
	ctx := context.Background()
	notes := []models.Note{{ID: "n1", Title: "Shared", IsPublic: true, UserID: "u1"}}

	viewer := &fakeClient{user: &models.User{ID: "u2"}, notes: notes}
	d, err := OpenDetail(ctx, viewer, backend.NewSession(viewer), "n1")
	require.NoError(t, err)
	assert.False(t, d.IsOwner())
	assert.ErrorIs(t, d.RequestDelete(), apperr.ErrForbidden)

	owner := &fakeClient{user: &models.User{ID: "u1"}, notes: notes}
	d, err = OpenDetail(ctx, owner, backend.NewSession(owner), "n1")
	require.NoError(t, err)
	assert.True(t, d.IsOwner())
	require.NoError(t, d.RequestDelete())
	assert.True(t, d.DeletePending())
	route, err := d.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, RouteList, route)

	_, err = OpenDetail(ctx, owner, backend.NewSession(owner), "n1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
