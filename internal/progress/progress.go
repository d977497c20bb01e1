// Package progress defines the display contract download pipelines report
// to, and a plain line-oriented implementation of it.
//
// A Reporter is shared by every concurrent pipeline and must serialise
// updates itself. Each pipeline owns one Bar and finishes it exactly once.
package progress

// Reporter creates one Bar per track.
type Reporter interface {
	Add(label string, total int64) Bar
}

// Bar is the progress surface of a single track.
type Bar interface {
	SetTotal(total int64)
	SetPosition(pos int64)
	SetMessage(msg string)
	// Finish marks the bar terminal. Calls after the first are ignored.
	Finish(msg string)
}

// Level classifies terminal messages for styling.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Discard is a Reporter whose bars drop every update.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Add(string, int64) Bar { return discardBar{} }

type discardBar struct{}

func (discardBar) SetTotal(int64)    {}
func (discardBar) SetPosition(int64) {}
func (discardBar) SetMessage(string) {}
func (discardBar) Finish(string)     {}
