package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// errStoreDown simulates a database outage.
var errStoreDown = errors.New("database is locked")

// fakeUserRepo is an in-memory repository.UserRepository. It copies on every
// read and write so the service can never mutate stored state by accident,
// just like a real store.
type fakeUserRepo struct {
	users  []model.User
	nextID int

	// set to a non-nil error to simulate a store failure
	listErr   error
	getErr    error
	createErr error
	updateErr error

	followingWrites int
	pointsWrites    int
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	f := &fakeUserRepo{}
	for _, u := range users {
		f.add(u)
	}
	return f
}

// add stores u, assigning an ID and an empty following list when missing.
func (f *fakeUserRepo) add(u model.User) {
	f.nextID++
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	f.users = append(f.users, cloneUser(u))
}

func cloneUser(u model.User) model.User {
	u.Following = slices.Clone(u.Following)
	return u
}

func (f *fakeUserRepo) find(match func(*model.User) bool) *model.User {
	for i := range f.users {
		if match(&f.users[i]) {
			return &f.users[i]
		}
	}
	return nil
}

func (f *fakeUserRepo) get(username string) *model.User {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.get(user.Username) != nil {
		return apperror.Conflict("user", user.Username)
	}
	f.add(*user)
	user.ID = f.users[len(f.users)-1].ID
	return nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.User, len(f.users))
	for i, u := range f.users {
		out[i] = cloneUser(u)
	}
	return out, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u := f.get(username)
	if u == nil {
		return nil, apperror.NotFound("user", username)
	}
	c := cloneUser(*u)
	return &c, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u := f.find(func(u *model.User) bool { return u.Email == email })
	if u == nil {
		return nil, apperror.NotFound("user", email)
	}
	c := cloneUser(*u)
	return &c, nil
}

func (f *fakeUserRepo) UpdateFollowing(_ context.Context, id string, following []string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	u := f.find(func(u *model.User) bool { return u.ID == id })
	if u == nil {
		return apperror.NotFound("user", id)
	}
	u.Following = slices.Clone(following)
	f.followingWrites++
	return nil
}

func (f *fakeUserRepo) UpdatePoints(_ context.Context, id string, points int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	u := f.find(func(u *model.User) bool { return u.ID == id })
	if u == nil {
		return apperror.NotFound("user", id)
	}
	u.KnowledgePoints = points
	f.pointsWrites++
	return nil
}

// player is shorthand for building test users.
func player(username string, points int, following ...string) model.User {
	return model.User{
		Username:        username,
		Email:           username + "@example.com",
		KnowledgePoints: points,
		Following:       following,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
