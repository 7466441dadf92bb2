package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

func TestRideRepository_ListsInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRideRepository()

	for _, id := range []string{"c", "a", "b"} {
		if err := repo.Create(ctx, &domain.Ride{ID: id, UserID: "u-1", Status: domain.RideStatusRequested, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	rides, err := repo.ListByUserID(ctx, "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rides) != 3 || rides[0].ID != "c" || rides[1].ID != "a" || rides[2].ID != "b" {
		t.Errorf("unexpected order %v", rides)
	}

	if err := repo.Create(ctx, &domain.Ride{ID: "a"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestRideRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewRideRepository()
	ride := &domain.Ride{ID: "r-1", Status: domain.RideStatusRequested}
	if err := repo.Create(ctx, ride); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ride.Status = domain.RideStatusCompleted
	got, err := repo.GetByID(ctx, "r-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got.Status = domain.RideStatusCompleted

	again, _ := repo.GetByID(ctx, "r-1")
	if again.Status != domain.RideStatusRequested {
		t.Errorf("stored ride was mutated through a returned pointer: %s", again.Status)
	}
}

func TestRideRepository_Transition(t *testing.T) {
	ctx := context.Background()
	repo := NewRideRepository()
	if err := repo.Create(ctx, &domain.Ride{ID: "r-1", Status: domain.RideStatusRequested}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ride, err := repo.Transition(ctx, "r-1", domain.RideStatusRequested, domain.RideStatusAccepted, "d-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Status != domain.RideStatusAccepted || ride.DriverID != "d-1" {
		t.Errorf("unexpected ride %+v", ride)
	}

	if _, err := repo.Transition(ctx, "r-1", domain.RideStatusRequested, domain.RideStatusAccepted, "d-2"); !errors.Is(err, repository.ErrStatusConflict) {
		t.Errorf("expected ErrStatusConflict, got %v", err)
	}
	if _, err := repo.Transition(ctx, "missing", domain.RideStatusRequested, domain.RideStatusAccepted, "d-2"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	pending, _ := repo.ListByStatus(ctx, domain.RideStatusRequested)
	if pending == nil || len(pending) != 0 {
		t.Errorf("expected empty non-nil pending list, got %v", pending)
	}
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	if err := repo.Create(ctx, &domain.User{ID: "u-1", Username: "john"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Create(ctx, &domain.User{ID: "u-2", Username: "john"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	user, err := repo.GetByUsername(ctx, "john")
	if err != nil || user.ID != "u-1" {
		t.Errorf("expected u-1, got %v %v", user, err)
	}
	if _, err := repo.GetByID(ctx, "u-2"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
