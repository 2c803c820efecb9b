// Package tray provides a system tray interface for controlling detection.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/ayusman/poselens/internal/expression"
)

// Tray represents the system tray application.
type Tray struct {
	log       zerolog.Logger
	onToggle  func(detecting bool) error
	onOpenUI  func()
	onQuit    func()
	detecting bool
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastEmotion *systray.MenuItem
}

// New creates a new Tray. Detection is shown as stopped until SetDetecting
// is called.
func New(log zerolog.Logger) *Tray {
	return &Tray{
		log: log.With().Str("component", "tray").Logger(),
	}
}

// OnToggle sets the callback invoked with the requested detection state.
// If it returns an error the displayed state is not changed.
func (t *Tray) OnToggle(fn func(detecting bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenUI sets the callback function to be called when the open menu item is clicked.
func (t *Tray) OnOpenUI(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenUI = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops the tray event loop, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("PoseLens")
	systray.SetTooltip("PoseLens pose and expression detection")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.detecting), "Start or stop detection")
	systray.AddSeparator()

	t.menuLastEmotion = systray.AddMenuItem(emotionTitle(nil), "Last detected expression")
	t.menuLastEmotion.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open PoseLens...", "Open the live view in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit PoseLens")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpenUI()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// handleToggle requests the opposite detection state.
func (t *Tray) handleToggle() {
	t.mu.RLock()
	want := !t.detecting
	callback := t.onToggle
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		if err := callback(want); err != nil {
			t.log.Error().Err(err).Bool("detecting", want).Msg("failed to toggle detection")
			return
		}
	}
	t.SetDetecting(want)
}

func (t *Tray) handleOpenUI() {
	t.mu.RLock()
	callback := t.onOpenUI
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetDetecting updates the displayed detection state.
func (t *Tray) SetDetecting(detecting bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.detecting = detecting
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(detecting))
	}
}

// SetLastEmotion updates the last expression display in the menu.
func (t *Tray) SetLastEmotion(r *expression.Result) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastEmotion != nil {
		t.menuLastEmotion.SetTitle(emotionTitle(r))
	}
}

// IsDetecting returns the displayed detection state.
func (t *Tray) IsDetecting() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.detecting
}

func toggleTitle(detecting bool) string {
	if detecting {
		return "● Detecting"
	}
	return "○ Stopped"
}

func emotionTitle(r *expression.Result) string {
	if r == nil {
		return "Last: none"
	}
	st := expression.Display(r.Type)
	return "Last: " + st.Emoji + " " + st.Label
}
