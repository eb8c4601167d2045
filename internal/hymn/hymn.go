package hymn

// Block is a single content block of a hymn: either a plain verse
// (empty Label) or a labeled repeating section such as a chorus.
type Block struct {
	Label string
	Lines []string
}

// IsVerse returns true if the block is a plain, unlabeled verse.
func (b Block) IsVerse() bool {
	return b.Label == ""
}

// Hymn is a read-only copy of a hymn as stored by the library.
type Hymn struct {
	ID     string
	Title  string
	Blocks []Block
}

// Cursor identifies the active slide within a hymn's presentation sequence.
type Cursor struct {
	HymnID string
	Index  int
}

// Slide is the render descriptor for a single presentation slide.
type Slide struct {
	HymnID    string
	HymnTitle string
	Label     string
	Lines     []string
	Index     int
	Total     int
}
