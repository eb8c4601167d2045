package hymn

import (
	"errors"
	"fmt"
)

// ErrVerseOutOfRange is returned by Jump for indices outside the sequence.
var ErrVerseOutOfRange = errors.New("verse index out of range")

// Sequence is the interleaved presentation order of a hymn's blocks.
// When the hymn has a labeled repeating section (chorus), it is inserted
// after every plain verse: verse, chorus, verse, chorus, ...
// Otherwise blocks appear in their original order.
type Sequence struct {
	hymnID    string
	hymnTitle string
	blocks    []Block  // one entry per slide
	labels    []string // resolved label per slide
}

// BuildSequence computes the presentation sequence for a hymn.
// The first labeled block is used as the repeating section; hymns in this
// model carry at most one.
func BuildSequence(h *Hymn) *Sequence {
	s := &Sequence{hymnID: h.ID, hymnTitle: h.Title}

	var chorus *Block
	for i := range h.Blocks {
		if !h.Blocks[i].IsVerse() {
			chorus = &h.Blocks[i]
			break
		}
	}

	verseNum := 0
	for _, b := range h.Blocks {
		if !b.IsVerse() {
			continue
		}
		verseNum++
		s.blocks = append(s.blocks, b)
		s.labels = append(s.labels, fmt.Sprintf("Verse %d", verseNum))
		if chorus != nil {
			s.blocks = append(s.blocks, *chorus)
			s.labels = append(s.labels, chorus.Label)
		}
	}

	// A hymn with only a labeled block and no verses still has one slide.
	if len(s.blocks) == 0 && chorus != nil {
		s.blocks = append(s.blocks, *chorus)
		s.labels = append(s.labels, chorus.Label)
	}

	return s
}

// Len returns the number of slides in the sequence.
func (s *Sequence) Len() int {
	return len(s.blocks)
}

// HymnID returns the id of the hymn the sequence was built from.
func (s *Sequence) HymnID() string {
	return s.hymnID
}

// Label returns the display label for the slide at index.
// Labeled sections keep their own label; plain verses get an ordinal
// that counts only plain verses, so a chorus shown three times is never
// numbered as three distinct verses.
func (s *Sequence) Label(index int) string {
	if index < 0 || index >= len(s.labels) {
		return ""
	}
	return s.labels[index]
}

// Slide returns the render descriptor for the slide at index.
func (s *Sequence) Slide(index int) (Slide, bool) {
	if index < 0 || index >= len(s.blocks) {
		return Slide{}, false
	}
	return Slide{
		HymnID:    s.hymnID,
		HymnTitle: s.hymnTitle,
		Label:     s.labels[index],
		Lines:     s.blocks[index].Lines,
		Index:     index,
		Total:     len(s.blocks),
	}, true
}

// Clamp constrains an index to the valid slide range.
func (s *Sequence) Clamp(index int) int {
	if index < 0 || len(s.blocks) == 0 {
		return 0
	}
	if index >= len(s.blocks) {
		return len(s.blocks) - 1
	}
	return index
}

// Next returns the cursor for the following slide.
// Returns false at the end of the sequence (no wraparound).
func (s *Sequence) Next(c Cursor) (Cursor, bool) {
	if c.Index+1 >= len(s.blocks) {
		return c, false
	}
	return Cursor{HymnID: s.hymnID, Index: c.Index + 1}, true
}

// Previous returns the cursor for the preceding slide.
// Returns false at the start of the sequence (no wraparound).
func (s *Sequence) Previous(c Cursor) (Cursor, bool) {
	if c.Index <= 0 {
		return c, false
	}
	return Cursor{HymnID: s.hymnID, Index: c.Index - 1}, true
}

// Jump returns a cursor at the given index, or ErrVerseOutOfRange.
// The input cursor is returned unchanged on error.
func (s *Sequence) Jump(c Cursor, index int) (Cursor, error) {
	if index < 0 || index >= len(s.blocks) {
		return c, fmt.Errorf("jump to %d of %d: %w", index, len(s.blocks), ErrVerseOutOfRange)
	}
	return Cursor{HymnID: s.hymnID, Index: index}, nil
}
