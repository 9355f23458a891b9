package service

import (
	"testing"

	"mathdojo_backend/internal/model"
)

type fakeProgressStore struct {
	levels map[int]*model.LevelProgress
	belts  map[string]*model.BeltProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{
		levels: map[int]*model.LevelProgress{},
		belts:  map[string]*model.BeltProgress{},
	}
}

func beltKey(level int, belt model.Belt) string {
	return string(belt) + string(rune('0'+level))
}

func (f *fakeProgressStore) GetOrCreateLevel(userID uint, level int) (*model.LevelProgress, error) {
	if lp, ok := f.levels[level]; ok {
		return lp, nil
	}
	lp := &model.LevelProgress{UserID: userID, Level: level}
	f.levels[level] = lp
	return lp, nil
}

func (f *fakeProgressStore) SaveLevel(p *model.LevelProgress) error {
	f.levels[p.Level] = p
	return nil
}

func (f *fakeProgressStore) GetOrCreateBelt(userID uint, level int, belt model.Belt) (*model.BeltProgress, error) {
	if bp, ok := f.belts[beltKey(level, belt)]; ok {
		return bp, nil
	}
	bp := &model.BeltProgress{UserID: userID, Level: level, Belt: belt}
	f.belts[beltKey(level, belt)] = bp
	return bp, nil
}

func (f *fakeProgressStore) SaveBelt(b *model.BeltProgress) error {
	f.belts[beltKey(b.Level, b.Belt)] = b
	return nil
}

func (f *fakeProgressStore) ListLevels(uint) ([]model.LevelProgress, error) {
	out := make([]model.LevelProgress, 0, len(f.levels))
	for _, lp := range f.levels {
		out = append(out, *lp)
	}
	return out, nil
}

func (f *fakeProgressStore) ListBelts(uint) ([]model.BeltProgress, error) {
	out := make([]model.BeltProgress, 0, len(f.belts))
	for _, bp := range f.belts {
		out = append(out, *bp)
	}
	return out, nil
}

func (f *fakeProgressStore) InitDefault(userID uint) error {
	lp, _ := f.GetOrCreateLevel(userID, 1)
	lp.Unlocked = true
	bp, _ := f.GetOrCreateBelt(userID, 1, model.BeltWhite)
	bp.Unlocked = true
	return nil
}

func (f *fakeProgressStore) DeleteAllForUser(uint) error {
	f.levels = map[int]*model.LevelProgress{}
	f.belts = map[string]*model.BeltProgress{}
	return nil
}

func TestUnlockOnPassColoredChain(t *testing.T) {
	store := newFakeProgressStore()
	svc := &ProgressionService{ProgressRepo: store}

	if err := svc.UnlockOnPass(7, 1, model.BeltYellow, true); err != nil {
		t.Fatalf("UnlockOnPass: %v", err)
	}

	yellow := store.belts[beltKey(1, model.BeltYellow)]
	if yellow == nil || !yellow.Completed || !yellow.Unlocked {
		t.Errorf("yellow after pass = %+v, want completed and unlocked", yellow)
	}
	green := store.belts[beltKey(1, model.BeltGreen)]
	if green == nil || !green.Unlocked || green.Completed {
		t.Errorf("green after yellow pass = %+v, want unlocked only", green)
	}

	// Repeating the pass changes nothing.
	if err := svc.UnlockOnPass(7, 1, model.BeltYellow, true); err != nil {
		t.Fatalf("repeat UnlockOnPass: %v", err)
	}
	if g := store.belts[beltKey(1, model.BeltGreen)]; g.Completed {
		t.Error("repeat pass must not complete the next belt")
	}
}

func TestUnlockOnPassBrownOpensBlack(t *testing.T) {
	store := newFakeProgressStore()
	svc := &ProgressionService{ProgressRepo: store}

	if err := svc.UnlockOnPass(7, 2, model.BeltBrown, true); err != nil {
		t.Fatalf("UnlockOnPass: %v", err)
	}
	lp := store.levels[2]
	if lp == nil || !lp.BlackUnlocked {
		t.Errorf("level 2 after brown pass = %+v, want black unlocked", lp)
	}
}

func TestUnlockOnPassBlackDegrees(t *testing.T) {
	store := newFakeProgressStore()
	svc := &ProgressionService{ProgressRepo: store}

	if err := svc.UnlockOnPass(7, 1, model.BlackBelt(3), true); err != nil {
		t.Fatalf("UnlockOnPass: %v", err)
	}
	lp := store.levels[1]
	if !lp.HasDegree(3) || lp.Completed {
		t.Errorf("level after degree 3 = %+v", lp)
	}

	// Same degree again stays a single entry.
	if err := svc.UnlockOnPass(7, 1, model.BlackBelt(3), true); err != nil {
		t.Fatalf("repeat UnlockOnPass: %v", err)
	}
	if got := store.levels[1].Degrees(); len(got) != 1 {
		t.Errorf("degrees = %v, want exactly one entry", got)
	}
}

func TestUnlockOnPassDegreeSevenCompletesLevel(t *testing.T) {
	store := newFakeProgressStore()
	svc := &ProgressionService{ProgressRepo: store}

	if err := svc.UnlockOnPass(7, 1, model.BlackBelt(model.MaxBlackDegree), true); err != nil {
		t.Fatalf("UnlockOnPass: %v", err)
	}

	lp := store.levels[1]
	if !lp.Completed || !lp.HasDegree(model.MaxBlackDegree) {
		t.Errorf("level 1 after degree 7 = %+v, want completed", lp)
	}
	next := store.levels[2]
	if next == nil || !next.Unlocked {
		t.Errorf("level 2 after degree 7 = %+v, want unlocked", next)
	}

	// Monotonic: nothing regresses on a repeat.
	if err := svc.UnlockOnPass(7, 1, model.BlackBelt(model.MaxBlackDegree), true); err != nil {
		t.Fatalf("repeat UnlockOnPass: %v", err)
	}
	if !store.levels[1].Completed || !store.levels[2].Unlocked {
		t.Error("repeat degree 7 pass regressed level state")
	}
}

func TestUnlockOnPassIgnoresFailedRuns(t *testing.T) {
	store := newFakeProgressStore()
	svc := &ProgressionService{ProgressRepo: store}

	if err := svc.UnlockOnPass(7, 1, model.BeltYellow, false); err != nil {
		t.Fatalf("UnlockOnPass: %v", err)
	}
	if len(store.levels) != 0 || len(store.belts) != 0 {
		t.Error("failed run touched the progress store")
	}
}
