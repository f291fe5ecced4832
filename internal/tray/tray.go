// Package tray provides a system tray menu for pausing practice and opening
// the signtutor web UI.
package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/signtutor/internal/practice"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(paused bool)
	onOpen   func()
	onQuit   func()
	paused   bool
	status   string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a new Tray with practice running.
func New() *Tray {
	return &Tray{status: statusText(practice.Snapshot{})}
}

// OnToggle sets the callback called when practice is paused or resumed.
func (t *Tray) OnToggle(fn func(paused bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback called when the open menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
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

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("SignTutor")
	systray.SetTooltip("SignTutor fingerspelling practice")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.paused), "Pause or resume practice")
	systray.AddSeparator()
	t.menuStatus = systray.AddMenuItem(t.status, "Current practice state")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open SignTutor...", "Open the tutor in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit SignTutor")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				systray.Quit()
				return
			}
		}
	}()
}

func toggleTitle(paused bool) string {
	if paused {
		return "○ Paused"
	}
	return "● Practicing"
}

// handleToggle flips the paused state and reports it to the callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.paused = !t.paused
	paused := t.paused

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(paused))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(paused)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
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
}

// Watch shows each snapshot from snaps in the status line until ctx is done
// or snaps is closed.
func (t *Tray) Watch(ctx context.Context, snaps <-chan practice.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			t.setStatus(snap)
		}
	}
}

func (t *Tray) setStatus(snap practice.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = statusText(snap)
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(t.status)
	}

	// Pause and resume can also come from the web UI.
	if snap.Running && snap.Paused != t.paused {
		t.paused = snap.Paused
		if t.menuToggle != nil {
			t.menuToggle.SetTitle(toggleTitle(t.paused))
		}
	}
}

func statusText(snap practice.Snapshot) string {
	switch {
	case snap.Error != "":
		return "Unavailable: " + snap.Error
	case !snap.Running || snap.Exercise.Target == "":
		return "Not practicing"
	case snap.Correct:
		return fmt.Sprintf("%s: correct!", snap.Exercise.Target)
	}
	prediction := snap.Prediction
	if prediction == "" {
		prediction = practice.NoPrediction
	}
	return fmt.Sprintf("%s: seeing %s", snap.Exercise.Target, prediction)
}

// Status returns the status line text.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// IsPaused returns whether practice is paused from the tray.
func (t *Tray) IsPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}
