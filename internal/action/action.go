// Package action defines the closed set of editor commands and the per-frame
// input queue that carries them.
package action

// Kind names one editor command.
type Kind int

const (
	None Kind = iota

	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	MoveWordLeft
	MoveWordRight
	MoveHome
	MoveEnd
	PageUp
	PageDown
	MoveToStart
	MoveToEnd

	SelectAll
	AddCursorAbove
	AddCursorBelow
	AddCursorAtNextOccurrence
	Escape

	Enter
	Indent
	Unindent
	DeleteBackward
	DeleteForward
	DeleteWordBackward
	DeleteWordForward
	DeleteLines
	ToggleComments

	Copy
	Cut
	Paste

	Undo
	Redo
	UndoCursor
	RedoCursor

	Find
	FindNext
	FindPrevious
	FindInFiles
	OpenAllFiles
	OpenExplorer

	Save
	SaveAs
	NewTab
	CloseTab
	NextTab
	PreviousTab
	SplitPane
	ClosePane
	FocusNextPane
	ToggleTerminal
	Recenter

	Hover
	Rename
	Format

	Quit
)

var names = [...]string{
	None:                      "none",
	MoveLeft:                  "move_left",
	MoveRight:                 "move_right",
	MoveUp:                    "move_up",
	MoveDown:                  "move_down",
	MoveWordLeft:              "move_word_left",
	MoveWordRight:             "move_word_right",
	MoveHome:                  "move_home",
	MoveEnd:                   "move_end",
	PageUp:                    "page_up",
	PageDown:                  "page_down",
	MoveToStart:               "move_to_start",
	MoveToEnd:                 "move_to_end",
	SelectAll:                 "select_all",
	AddCursorAbove:            "add_cursor_above",
	AddCursorBelow:            "add_cursor_below",
	AddCursorAtNextOccurrence: "add_cursor_at_next_occurrence",
	Escape:                    "escape",
	Enter:                     "enter",
	Indent:                    "indent",
	Unindent:                  "unindent",
	DeleteBackward:            "delete_backward",
	DeleteForward:             "delete_forward",
	DeleteWordBackward:        "delete_word_backward",
	DeleteWordForward:         "delete_word_forward",
	DeleteLines:               "delete_lines",
	ToggleComments:            "toggle_comments",
	Copy:                      "copy",
	Cut:                       "cut",
	Paste:                     "paste",
	Undo:                      "undo",
	Redo:                      "redo",
	UndoCursor:                "undo_cursor",
	RedoCursor:                "redo_cursor",
	Find:                      "find",
	FindNext:                  "find_next",
	FindPrevious:              "find_previous",
	FindInFiles:               "find_in_files",
	OpenAllFiles:              "open_all_files",
	OpenExplorer:              "open_explorer",
	Save:                      "save",
	SaveAs:                    "save_as",
	NewTab:                    "new_tab",
	CloseTab:                  "close_tab",
	NextTab:                   "next_tab",
	PreviousTab:               "previous_tab",
	SplitPane:                 "split_pane",
	ClosePane:                 "close_pane",
	FocusNextPane:             "focus_next_pane",
	ToggleTerminal:            "toggle_terminal",
	Recenter:                  "recenter",
	Hover:                     "hover",
	Rename:                    "rename",
	Format:                    "format",
	Quit:                      "quit",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return "unknown"
	}
	return names[k]
}

// Parse returns the Kind with the given name.
func Parse(name string) (Kind, bool) {
	for k, n := range names {
		if n == name {
			return Kind(k), true
		}
	}
	return None, false
}

// Action is one command. Select extends the selection for motions; Text
// carries an argument such as a search needle or a new name.
type Action struct {
	Kind   Kind
	Select bool
	Text   string
}

// Of builds an Action without arguments.
func Of(k Kind) Action { return Action{Kind: k} }

// Selecting builds a motion that extends the selection.
func Selecting(k Kind) Action { return Action{Kind: k, Select: true} }

// IsMotion reports whether the action only moves cursors.
func (a Action) IsMotion() bool {
	return a.Kind >= MoveLeft && a.Kind <= MoveToEnd
}

func (a Action) String() string {
	s := a.Kind.String()
	if a.Select {
		s += "+select"
	}
	if a.Text != "" {
		s += "(" + a.Text + ")"
	}
	return s
}
