package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/league"
	"github.com/sakif/trivia-league/internal/model"
)

func newTestLeaderboard(repo *fakeUserRepo) *LeaderboardService {
	return NewLeaderboardService(repo, nil, discardLogger())
}

func TestGlobalRanking(t *testing.T) {
	repo := newFakeUserRepo(
		player("carol", 120),
		player("alice", 450),
		player("bob", 450),
		player("dave", 0),
		player("erin", 1200),
	)

	got, err := newTestLeaderboard(repo).GlobalRanking(context.Background())
	if err != nil {
		t.Fatalf("GlobalRanking() error = %v", err)
	}

	want := []model.PlayerScore{
		{Username: "erin", KnowledgePoints: 1200},
		{Username: "alice", KnowledgePoints: 450},
		{Username: "bob", KnowledgePoints: 450},
		{Username: "carol", KnowledgePoints: 120},
		{Username: "dave", KnowledgePoints: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GlobalRanking() mismatch (-want +got):\n%s", diff)
	}
}

func TestGlobalRanking_Empty(t *testing.T) {
	got, err := newTestLeaderboard(newFakeUserRepo()).GlobalRanking(context.Background())
	if err != nil {
		t.Fatalf("GlobalRanking() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("GlobalRanking() = %#v, want empty non-nil slice", got)
	}
}

func TestGlobalRanking_StoreFailure(t *testing.T) {
	repo := newFakeUserRepo(player("alice", 10))
	repo.listErr = errStoreDown

	_, err := newTestLeaderboard(repo).GlobalRanking(context.Background())
	if !errors.Is(err, apperror.ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Errorf("error = %v, want the store cause to be kept", err)
	}
}

// TestGlobalRanking_Properties checks, over randomized populations, that the
// ranking is sorted, complete and stable across repeated calls.
func TestGlobalRanking_Properties(t *testing.T) {
	faker := gofakeit.New(7)

	for round := range 20 {
		n := faker.Number(0, 60)
		users := make([]model.User, n)
		for i := range users {
			// Narrow point range forces plenty of ties.
			users[i] = player(fmt.Sprintf("%s-%d", faker.Username(), i), faker.Number(0, 40)*25)
		}
		svc := newTestLeaderboard(newFakeUserRepo(users...))

		first, err := svc.GlobalRanking(context.Background())
		if err != nil {
			t.Fatalf("round %d: GlobalRanking() error = %v", round, err)
		}
		if len(first) != n {
			t.Fatalf("round %d: len = %d, want %d", round, len(first), n)
		}
		if !slices.IsSortedFunc(first, compareScores) {
			t.Errorf("round %d: ranking is not sorted: %v", round, first)
		}
		for i := 1; i < len(first); i++ {
			if first[i-1].KnowledgePoints < first[i].KnowledgePoints {
				t.Fatalf("round %d: %v ranked above %v", round, first[i-1], first[i])
			}
		}

		reversed := slices.Clone(first)
		slices.Reverse(reversed)
		slices.Reverse(reversed)
		if diff := cmp.Diff(first, reversed); diff != "" {
			t.Errorf("round %d: reversing twice changed the ranking:\n%s", round, diff)
		}

		second, err := svc.GlobalRanking(context.Background())
		if err != nil {
			t.Fatalf("round %d: second GlobalRanking() error = %v", round, err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("round %d: ranking not reproducible (-first +second):\n%s", round, diff)
		}
	}
}

func TestPlayerView(t *testing.T) {
	repo := newFakeUserRepo(
		player("alice", 450, "erin", "bob", "ghost"),
		player("bob", 300),
		player("carol", 599),
		player("dave", 600),
		player("erin", 1200),
		player("frank", 299),
		player("gina", 450),
	)

	got, err := newTestLeaderboard(repo).PlayerView(context.Background(), "alice")
	if err != nil {
		t.Fatalf("PlayerView() error = %v", err)
	}

	want := &model.PlayerView{
		CurrentLeague: "Gold",
		LeaguePeers: []model.PlayerScore{
			{Username: "carol", KnowledgePoints: 599},
			{Username: "alice", KnowledgePoints: 450},
			{Username: "gina", KnowledgePoints: 450},
			{Username: "bob", KnowledgePoints: 300},
		},
		// "ghost" no longer exists and is skipped.
		FollowingPeers: []model.PlayerScore{
			{Username: "erin", KnowledgePoints: 1200},
			{Username: "bob", KnowledgePoints: 300},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PlayerView() mismatch (-want +got):\n%s", diff)
	}

	for _, p := range got.LeaguePeers {
		if p.KnowledgePoints < 300 || p.KnowledgePoints >= 600 {
			t.Errorf("league peer %v is outside [300, 600)", p)
		}
	}
}

func TestPlayerView_NoFollowing(t *testing.T) {
	repo := newFakeUserRepo(player("solo", 5))

	got, err := newTestLeaderboard(repo).PlayerView(context.Background(), "solo")
	if err != nil {
		t.Fatalf("PlayerView() error = %v", err)
	}
	if got.CurrentLeague != league.Bronze.String() {
		t.Errorf("CurrentLeague = %q, want Bronze", got.CurrentLeague)
	}
	if got.FollowingPeers == nil || len(got.FollowingPeers) != 0 {
		t.Errorf("FollowingPeers = %#v, want empty non-nil slice", got.FollowingPeers)
	}
	if len(got.LeaguePeers) != 1 || got.LeaguePeers[0].Username != "solo" {
		t.Errorf("LeaguePeers = %v, want only solo", got.LeaguePeers)
	}
}

func TestPlayerView_Errors(t *testing.T) {
	tests := []struct {
		name     string
		username string
		listErr  error
		wantErr  error
	}{
		{"unknown user", "ghost", nil, apperror.ErrNotFound},
		{"empty username", "  ", nil, apperror.ErrValidation},
		{"store down", "alice", errStoreDown, apperror.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo(player("alice", 10))
			repo.listErr = tt.listErr

			_, err := newTestLeaderboard(repo).PlayerView(context.Background(), tt.username)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("PlayerView() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
