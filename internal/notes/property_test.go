package notes

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/auth"
	"pgregory.net/rapid"
)

func TestPropertyForeignOwnerNeverSees(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			svc := NewService(open(t), WithClock(tickingClock()))
			ctx := context.Background()

			rapid.Check(t, func(rt *rapid.T) {
				a := auth.Identity{UserID: uuid.New()}
				b := auth.Identity{UserID: uuid.New()}
				title := rapid.StringMatching(`[a-zA-Z0-9][a-zA-Z0-9 ]{0,40}`).Draw(rt, "title")

				res, err := svc.Create(ctx, a, Input{Title: title})
				if err != nil {
					rt.Fatalf("create: %v", err)
				}
				if res.Kind != KindCollection {
					rt.Fatalf("expected %q to be accepted, got %v", title, res.Kind)
				}

				if _, err := svc.Get(ctx, b, res.Note.ID); !errors.Is(err, ErrNotFound) {
					rt.Fatalf("owner b read a's note: %v", err)
				}
				if _, err := svc.ToggleFavourite(ctx, b, res.Note.ID); !errors.Is(err, ErrNotFound) {
					rt.Fatalf("owner b toggled a's note: %v", err)
				}
				if _, err := svc.Delete(ctx, b, res.Note.ID); !errors.Is(err, ErrNotFound) {
					rt.Fatalf("owner b deleted a's note: %v", err)
				}
				list, err := svc.List(ctx, b)
				if err != nil || len(list) != 0 {
					rt.Fatalf("owner b listed %d notes (err %v)", len(list), err)
				}
			})
		})
	}
}

func TestPropertyEvenTogglesRestoreFavourite(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			svc := NewService(open(t), WithClock(tickingClock()))
			ctx := context.Background()

			rapid.Check(t, func(rt *rapid.T) {
				owner := auth.Identity{UserID: uuid.New()}
				start := rapid.Bool().Draw(rt, "start")
				toggles := rapid.IntRange(0, 6).Draw(rt, "toggles")

				res, err := svc.Create(ctx, owner, Input{Title: "toggled", IsFavourite: start})
				if err != nil {
					rt.Fatalf("create: %v", err)
				}
				prev := res.Note.UpdatedAt
				for i := 0; i < toggles; i++ {
					tr, err := svc.ToggleFavourite(ctx, owner, res.Note.ID)
					if err != nil {
						rt.Fatalf("toggle %d: %v", i, err)
					}
					if !tr.Note.UpdatedAt.After(prev) {
						rt.Fatalf("toggle %d did not advance updated_at", i)
					}
					prev = tr.Note.UpdatedAt
				}

				got, err := svc.Get(ctx, owner, res.Note.ID)
				if err != nil {
					rt.Fatalf("get: %v", err)
				}
				want := start != (toggles%2 == 1)
				if got.IsFavourite != want {
					rt.Fatalf("after %d toggles from %v got %v", toggles, start, got.IsFavourite)
				}
			})
		})
	}
}
