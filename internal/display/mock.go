package display

import "github.com/cantor-app/cantor/internal/hymn"

// MockSurface is a test double for Surface. It records lifecycle and
// content calls so tests can assert the seamless-switch contract: the
// open count must not grow across hymn switches.
type MockSurface struct {
	opened      bool
	openCount   int
	closeCount  int
	slides      []hymn.Slide
	backgrounds []string
	clearCount  int

	openErr  error
	slideErr error
}

// NewMockSurface creates a closed mock surface.
func NewMockSurface() *MockSurface {
	return &MockSurface{}
}

func (m *MockSurface) Open(_ Descriptor) error {
	if m.openErr != nil {
		return m.openErr
	}
	m.opened = true
	m.openCount++
	return nil
}

func (m *MockSurface) SetSlide(s hymn.Slide) error {
	if m.slideErr != nil {
		return m.slideErr
	}
	m.slides = append(m.slides, s)
	return nil
}

func (m *MockSurface) SetBackground(image string) error {
	m.backgrounds = append(m.backgrounds, image)
	return nil
}

func (m *MockSurface) Clear() error {
	m.clearCount = m.clearCount + 1
	return nil
}

func (m *MockSurface) Close() error {
	m.opened = false
	m.closeCount++
	return nil
}

// Test helpers

func (m *MockSurface) IsOpen() bool { return m.opened }

func (m *MockSurface) OpenCount() int { return m.openCount }

func (m *MockSurface) CloseCount() int { return m.closeCount }

func (m *MockSurface) Slides() []hymn.Slide { return m.slides }

func (m *MockSurface) LastSlide() *hymn.Slide {
	if len(m.slides) == 0 {
		return nil
	}
	return &m.slides[len(m.slides)-1]
}

func (m *MockSurface) Backgrounds() []string { return m.backgrounds }

func (m *MockSurface) SetOpenError(err error) { m.openErr = err }

func (m *MockSurface) SetSlideError(err error) { m.slideErr = err }

// Verify MockSurface implements Surface at compile time.
var _ Surface = (*MockSurface)(nil)
