package terminal

import (
	"fmt"
	"strings"
)

// Key is a non-printable key sent to the process.
type Key int

const (
	KeyEnter Key = iota
	KeyTab
	KeyBackspace
	KeyEscape
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifiers held with a key, in xterm's bit order.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
)

// cursorKeys end in a letter and switch to SS3 in application cursor mode.
var cursorKeys = map[Key]byte{
	KeyUp: 'A', KeyDown: 'B', KeyRight: 'C', KeyLeft: 'D', KeyHome: 'H', KeyEnd: 'F',
}

var tildeKeys = map[Key]int{
	KeyInsert: 2, KeyDelete: 3, KeyPageUp: 5, KeyPageDown: 6,
	KeyF5: 15, KeyF6: 17, KeyF7: 18, KeyF8: 19, KeyF9: 20, KeyF10: 21, KeyF11: 23, KeyF12: 24,
}

var ss3Keys = map[Key]byte{KeyF1: 'P', KeyF2: 'Q', KeyF3: 'R', KeyF4: 'S'}

// EncodeKey returns the bytes xterm sends for k.
func EncodeKey(k Key, mods Modifiers, appCursor bool) []byte {
	m := int(mods) + 1
	if c, ok := cursorKeys[k]; ok {
		switch {
		case mods != 0:
			return []byte(fmt.Sprintf("\x1b[1;%d%c", m, c))
		case appCursor:
			return []byte{0x1b, 'O', c}
		default:
			return []byte{0x1b, '[', c}
		}
	}
	if n, ok := tildeKeys[k]; ok {
		if mods != 0 {
			return []byte(fmt.Sprintf("\x1b[%d;%d~", n, m))
		}
		return []byte(fmt.Sprintf("\x1b[%d~", n))
	}
	if c, ok := ss3Keys[k]; ok {
		if mods != 0 {
			return []byte(fmt.Sprintf("\x1b[1;%d%c", m, c))
		}
		return []byte{0x1b, 'O', c}
	}

	var b []byte
	switch k {
	case KeyEnter:
		b = []byte{'\r'}
	case KeyTab:
		if mods&ModShift != 0 {
			return []byte("\x1b[Z")
		}
		b = []byte{'\t'}
	case KeyBackspace:
		b = []byte{0x7f}
		if mods&ModCtrl != 0 {
			b = []byte{0x08}
		}
	case KeyEscape:
		b = []byte{0x1b}
	default:
		return nil
	}
	if mods&ModAlt != 0 {
		b = append([]byte{0x1b}, b...)
	}
	return b
}

// EncodeCtrl returns the control byte for ctrl+r, such as 0x03 for ctrl+c.
func EncodeCtrl(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r-'a') + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r-'A') + 1, true
	case r == ' ' || r == '@' || r == '2':
		return 0, true
	case r >= '[' && r <= '_':
		return byte(r-'[') + 0x1b, true
	case r == '/':
		return 0x1f, true
	}
	return 0, false
}

// SendKey writes the encoding of k to the process.
func (e *Emulator) SendKey(k Key, mods Modifiers) error {
	return e.send(EncodeKey(k, mods, e.appCursor))
}

// SendCtrl writes ctrl+r to the process.
func (e *Emulator) SendCtrl(r rune) error {
	b, ok := EncodeCtrl(r)
	if !ok {
		return nil
	}
	return e.send([]byte{b})
}

// SendText writes typed text. Newlines become carriage returns, which is
// what the Enter key sends.
func (e *Emulator) SendText(text string) error {
	return e.send([]byte(strings.ReplaceAll(text, "\n", "\r")))
}

// SendAlt writes text prefixed with ESC, the meta encoding of alt+text.
func (e *Emulator) SendAlt(text string) error {
	return e.send([]byte("\x1b" + text))
}

// Paste writes clipboard text, wrapped in bracketed-paste markers when the
// program asked for them.
func (e *Emulator) Paste(text string) error {
	text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\r"), "\n", "\r")
	if e.bracketedPaste {
		text = "\x1b[200~" + strings.ReplaceAll(text, "\x1b[201~", "") + "\x1b[201~"
	}
	return e.send([]byte(text))
}

func (e *Emulator) send(b []byte) error {
	if e.proc == nil || len(b) == 0 {
		return nil
	}
	if _, err := e.proc.Write(b); err != nil {
		return fmt.Errorf("writing to terminal process: %w", err)
	}
	return nil
}
