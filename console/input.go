package console

// Key codes match the reference host's mapping, used by key_pressed(300)
// and key_released(301).
const (
	KeyUp = iota
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyReturn
	KeyEscape
)

// Keyboard tracks the current and previous frame's pressed-key sets so
// key_released can detect the falling edge the way the reference host's
// keys_pressed/previous_keys_pressed pair does.
type Keyboard struct {
	current  map[int]bool
	previous map[int]bool
}

func NewKeyboard() *Keyboard {
	return &Keyboard{current: make(map[int]bool), previous: make(map[int]bool)}
}

// Press marks code as held down; a host's event loop calls this once per
// key-down event.
func (k *Keyboard) Press(code int) { k.current[code] = true }

// Release marks code as no longer held.
func (k *Keyboard) Release(code int) { delete(k.current, code) }

// EndFrame snapshots the current pressed set as "previous" for the next
// frame's key_released edge detection; a host calls this once per frame.
func (k *Keyboard) EndFrame() {
	k.previous = make(map[int]bool, len(k.current))
	for code := range k.current {
		k.previous[code] = true
	}
}

func (k *Keyboard) IsPressed(code int) bool { return k.current[code] }

func (k *Keyboard) WasReleased(code int) bool {
	return k.previous[code] && !k.current[code]
}
