package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Velocity used by toolbar strikes on simulated pads.
const strikeVelocity = 0.8

// createPadButtons creates one button per configured pad. The label carries
// the hit count; on a simulated device clicking the button strikes the pad.
func createPadButtons(state *appState) fyne.CanvasObject {
	state.padBtns = make([]*widget.Button, len(state.cfg.Pads))
	objects := make([]fyne.CanvasObject, len(state.cfg.Pads))
	for i := range state.cfg.Pads {
		btn := widget.NewButton(padLabel(state, i, 0), func() {
			handleStrike(state, i)
		})
		btn.Disable()
		state.padBtns[i] = btn
		objects[i] = btn
	}
	return container.NewHBox(objects...)
}

// handleStrike strikes pad i on the simulated device. Hardware pads are
// struck by hand, so the button only shows counts there.
func handleStrike(state *appState, i int) {
	if state.mock == nil || !state.mock.IsConnected() {
		return
	}
	if err := state.mock.Strike(i, strikeVelocity); err != nil {
		dialog.ShowError(fmt.Errorf("failed to strike pad %s: %w", state.cfg.Pads[i].Name, err), state.window)
	}
}

// updatePadButtons refreshes hit counts. Must run on the main thread.
func updatePadButtons(state *appState, counts []int) {
	for i, btn := range state.padBtns {
		n := 0
		if i < len(counts) {
			n = counts[i]
		}
		label := padLabel(state, i, n)
		if btn.Text != label {
			btn.SetText(label)
		}
	}
}

func setPadButtonsEnabled(state *appState, enabled bool) {
	for _, btn := range state.padBtns {
		if enabled && state.mock != nil {
			btn.Enable()
			btn.Importance = widget.HighImportance
		} else {
			btn.Disable()
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

func padLabel(state *appState, i, hits int) string {
	pad := state.cfg.Pads[i]
	return fmt.Sprintf("%s %s (%d)", pad.Name, pad.Sound, hits)
}
