package viewmodel

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

// fakeClient is an in-memory backend.Client that records calls and can be
// told to fail.
type fakeClient struct {
	mu      sync.Mutex
	user    *models.User
	notes   []models.Note
	calls   []string
	listErr error
	mutErr  error
	nextID  int
}

func (f *fakeClient) record(op string) {
	f.calls = append(f.calls, op)
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeClient) CurrentUser(context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, nil
}

func (f *fakeClient) ListNotes(context.Context) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.notes), nil
}

func (f *fakeClient) GetNote(_ context.Context, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get")
	for _, n := range f.notes {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeClient) InsertNote(_ context.Context, n models.Note) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert")
	if f.mutErr != nil {
		return nil, f.mutErr
	}
	f.nextID++
	n.ID = "note-" + strconv.Itoa(f.nextID)
	f.notes = append([]models.Note{n}, f.notes...)
	return &n, nil
}

func (f *fakeClient) UpdateNote(_ context.Context, id string, p models.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")
	if f.mutErr != nil {
		return f.mutErr
	}
	for i, n := range f.notes {
		if n.ID == id {
			f.notes[i] = n.Apply(p)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (f *fakeClient) DeleteNote(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	if f.mutErr != nil {
		return f.mutErr
	}
	for i, n := range f.notes {
		if n.ID == id {
			f.notes = slices.Delete(f.notes, i, i+1)
			return nil
		}
	}
	return apperr.ErrNotFound
}
