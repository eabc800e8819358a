package game

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// input is everything the frame loop reads from devices in one tick.
type input struct {
	chars     []rune
	backspace bool
	enter     bool
	newline   bool
	quit      bool
	pause     bool
	open      bool
	mouseX    int
	mouseY    int
	mouseDown bool
	mouseUp   bool
}

func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d > 30 && d%4 == 0)
}

func pollInput(buf []rune) input {
	in := input{
		chars:     ebiten.AppendInputChars(buf[:0]),
		backspace: repeating(ebiten.KeyBackspace),
		enter:     inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter),
		quit:      inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		mouseDown: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		mouseUp:   inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
	}
	if in.enter && ebiten.IsKeyPressed(ebiten.KeyShift) {
		in.enter, in.newline = false, true
	}
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	in.pause = ctrl && inpututil.IsKeyJustPressed(ebiten.KeyP)
	in.open = ctrl && inpututil.IsKeyJustPressed(ebiten.KeyO)
	in.mouseX, in.mouseY = ebiten.CursorPosition()
	return in
}

// textBuffer is the worry the user types before burning it.
type textBuffer struct {
	runes []rune
	limit int
}

func (b *textBuffer) append(chars []rune) {
	for _, r := range chars {
		if b.limit > 0 && len(b.runes) >= b.limit {
			return
		}
		b.runes = append(b.runes, r)
	}
}

func (b *textBuffer) backspace() {
	if len(b.runes) > 0 {
		b.runes = b.runes[:len(b.runes)-1]
	}
}

func (b *textBuffer) newline() {
	b.append([]rune{'\n'})
}

func (b *textBuffer) String() string { return string(b.runes) }

func (b *textBuffer) blank() bool { return strings.TrimSpace(string(b.runes)) == "" }

func (b *textBuffer) reset() { b.runes = b.runes[:0] }
