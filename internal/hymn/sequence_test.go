package hymn

import (
	"errors"
	"testing"
)

func threeVersesWithChorus() *Hymn {
	return &Hymn{
		ID:    "h1",
		Title: "To God Be the Glory",
		Blocks: []Block{
			{Lines: []string{"To God be the glory, great things He hath done"}},
			{Label: "Chorus", Lines: []string{"Praise the Lord, praise the Lord"}},
			{Lines: []string{"O perfect redemption, the purchase of blood"}},
			{Lines: []string{"Great things He hath taught us"}},
		},
	}
}

func TestBuildSequence_Interleaved(t *testing.T) {
	s := BuildSequence(threeVersesWithChorus())

	if s.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", s.Len())
	}

	wantLabels := []string{"Verse 1", "Chorus", "Verse 2", "Chorus", "Verse 3", "Chorus"}
	for i, want := range wantLabels {
		if got := s.Label(i); got != want {
			t.Errorf("Label(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestBuildSequence_NoChorus(t *testing.T) {
	h := &Hymn{
		ID:    "h2",
		Title: "Amazing Grace",
		Blocks: []Block{
			{Lines: []string{"Amazing grace, how sweet the sound"}},
			{Lines: []string{"'Twas grace that taught my heart to fear"}},
		},
	}
	s := BuildSequence(h)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.Label(0) != "Verse 1" {
		t.Errorf("Label(0) = %q, want Verse 1", s.Label(0))
	}
	if s.Label(1) != "Verse 2" {
		t.Errorf("Label(1) = %q, want Verse 2", s.Label(1))
	}
}

func TestBuildSequence_OnlyChorus(t *testing.T) {
	h := &Hymn{
		ID:     "h3",
		Blocks: []Block{{Label: "Refrain", Lines: []string{"Alleluia"}}},
	}
	s := BuildSequence(h)

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if s.Label(0) != "Refrain" {
		t.Errorf("Label(0) = %q, want Refrain", s.Label(0))
	}
}

func TestBuildSequence_Empty(t *testing.T) {
	s := BuildSequence(&Hymn{ID: "h4"})

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.Slide(0); ok {
		t.Error("Slide(0) on empty sequence should return false")
	}
}

func TestSequence_VerseOrdinalSkipsChorus(t *testing.T) {
	s := BuildSequence(threeVersesWithChorus())

	// Index 4 is the third plain verse in [V1, C, V2, C, V3, C].
	if got := s.Label(4); got != "Verse 3" {
		t.Errorf("Label(4) = %q, want Verse 3", got)
	}
}

func TestSequence_NextPreviousBoundaries(t *testing.T) {
	s := BuildSequence(threeVersesWithChorus())

	if _, ok := s.Previous(Cursor{HymnID: "h1", Index: 0}); ok {
		t.Error("Previous at index 0 should return false")
	}
	if _, ok := s.Next(Cursor{HymnID: "h1", Index: s.Len() - 1}); ok {
		t.Error("Next at last index should return false")
	}

	c, ok := s.Next(Cursor{HymnID: "h1", Index: 0})
	if !ok || c.Index != 1 {
		t.Errorf("Next(0) = %+v, %v, want index 1", c, ok)
	}
	c, ok = s.Previous(Cursor{HymnID: "h1", Index: 3})
	if !ok || c.Index != 2 {
		t.Errorf("Previous(3) = %+v, %v, want index 2", c, ok)
	}
}

func TestSequence_Jump(t *testing.T) {
	s := BuildSequence(threeVersesWithChorus())
	start := Cursor{HymnID: "h1", Index: 2}

	c, err := s.Jump(start, 5)
	if err != nil {
		t.Fatalf("Jump(5) failed: %v", err)
	}
	if c.Index != 5 {
		t.Errorf("Jump(5) index = %d, want 5", c.Index)
	}

	c, err = s.Jump(start, 6)
	if !errors.Is(err, ErrVerseOutOfRange) {
		t.Errorf("Jump(6) error = %v, want ErrVerseOutOfRange", err)
	}
	if c != start {
		t.Errorf("cursor changed on failed jump: %+v", c)
	}

	if _, err := s.Jump(start, -1); !errors.Is(err, ErrVerseOutOfRange) {
		t.Errorf("Jump(-1) error = %v, want ErrVerseOutOfRange", err)
	}
}

func TestSequence_Clamp(t *testing.T) {
	s := BuildSequence(threeVersesWithChorus())

	if got := s.Clamp(-3); got != 0 {
		t.Errorf("Clamp(-3) = %d, want 0", got)
	}
	if got := s.Clamp(99); got != 5 {
		t.Errorf("Clamp(99) = %d, want 5", got)
	}
	if got := s.Clamp(2); got != 2 {
		t.Errorf("Clamp(2) = %d, want 2", got)
	}
}

func TestSequence_Slide(t *testing.T) {
	s := BuildSequence(threeVersesWithChorus())

	slide, ok := s.Slide(1)
	if !ok {
		t.Fatal("Slide(1) should exist")
	}
	if slide.Label != "Chorus" {
		t.Errorf("slide.Label = %q, want Chorus", slide.Label)
	}
	if slide.HymnID != "h1" || slide.HymnTitle != "To God Be the Glory" {
		t.Errorf("slide identity = %q/%q", slide.HymnID, slide.HymnTitle)
	}
	if slide.Total != 6 || slide.Index != 1 {
		t.Errorf("slide position = %d/%d, want 1/6", slide.Index, slide.Total)
	}
}
