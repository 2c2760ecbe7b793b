package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/drumpads/pkg/monitor"
	"github.com/itohio/drumpads/pkg/scope"
	"github.com/itohio/drumpads/pkg/telemetry"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createDetectionTab(state),
		createMonitorTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := telemetry.Ports()
	if err != nil {
		state.log.Warnw("Failed to list serial ports", "error", err)
	}

	portOptions := []string{}
	portMap := make(map[string]string) // Display name to port name
	for _, port := range ports {
		display := port.Name
		if port.Description != "" && port.Description != port.Name {
			display = port.Description
		}
		portOptions = append(portOptions, display)
		portMap[display] = port.Name
	}

	current := state.cfg.Serial.Port
	currentDisplay := current
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == current {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && current != "" {
		portOptions = append(portOptions, current)
		portMap[current] = current
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			selected := portMap[portSelect.Selected]
			if selected == "" {
				selected = portSelect.Selected
			}
			changed := false
			if selected != "" && selected != state.cfg.Serial.Port {
				state.cfg.Serial.Port = selected
				changed = true
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 && baud != state.cfg.Serial.BaudRate {
				state.cfg.Serial.BaudRate = baud
				changed = true
			}
			if !saveConfig(state) || !changed {
				return
			}
			if !state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createDetectionTab creates the hit detection configuration tab.
func createDetectionTab(state *appState) *container.TabItem {
	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText(strconv.FormatUint(uint64(state.cfg.Detection.ThresholdMV), 10))

	cooldownEntry := widget.NewEntry()
	cooldownEntry.SetText(state.cfg.Detection.Cooldown.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Threshold (mV)", Widget: thresholdEntry},
			{Text: "Cooldown", Widget: cooldownEntry},
		},
		OnSubmit: func() {
			if th, err := strconv.ParseUint(thresholdEntry.Text, 10, 32); err == nil && uint32(th) < state.cfg.Sampling.ReferenceMV {
				state.cfg.Detection.ThresholdMV = uint32(th)
			}
			if cd, err := time.ParseDuration(cooldownEntry.Text); err == nil && cd >= 0 {
				state.cfg.Detection.Cooldown = cd
			}
			if saveConfig(state) {
				rebuildView(state)
			}
		},
	}

	return container.NewTabItem("Detection", form)
}

// createMonitorTab creates the display configuration tab.
func createMonitorTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Monitor.WindowSeconds))

	pointsEntry := widget.NewEntry()
	pointsEntry.SetText(strconv.Itoa(state.cfg.Monitor.MaxDisplayPoints))

	decimateEntry := widget.NewEntry()
	decimateEntry.SetText(strconv.Itoa(state.cfg.Monitor.Decimate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowEntry},
			{Text: "Max Display Points", Widget: pointsEntry},
			{Text: "Decimate (0=disabled)", Widget: decimateEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowEntry.Text, 64); err == nil && ws > 0 {
				state.cfg.Monitor.WindowSeconds = ws
			}
			if mp, err := strconv.Atoi(pointsEntry.Text); err == nil && mp > 0 {
				state.cfg.Monitor.MaxDisplayPoints = mp
			}
			if d, err := strconv.Atoi(decimateEntry.Text); err == nil && d >= 0 {
				state.cfg.Monitor.Decimate = d
			}
			if saveConfig(state) {
				rebuildView(state)
			}
		},
	}

	return container.NewTabItem("Monitor", form)
}

// createMockTab creates the simulated pad configuration tab.
func createMockTab(state *appState) *container.TabItem {
	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.NoiseMV))

	peakEntry := widget.NewEntry()
	peakEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.PeakMV))

	decayEntry := widget.NewEntry()
	decayEntry.SetText(state.cfg.Mock.DecayTime.String())

	resonanceEntry := widget.NewEntry()
	resonanceEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.ResonanceHz))

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	strikeEntry := widget.NewEntry()
	strikeEntry.SetText(state.cfg.Mock.StrikePeriod.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Noise (mV)", Widget: noiseEntry},
			{Text: "Peak (mV)", Widget: peakEntry},
			{Text: "Decay Time", Widget: decayEntry},
			{Text: "Resonance (Hz)", Widget: resonanceEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
			{Text: "Strike Period (0=manual)", Widget: strikeEntry},
		},
		OnSubmit: func() {
			if n, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseMV = n
			}
			if p, err := strconv.ParseFloat(peakEntry.Text, 64); err == nil {
				state.cfg.Mock.PeakMV = p
			}
			if d, err := time.ParseDuration(decayEntry.Text); err == nil {
				state.cfg.Mock.DecayTime = d
			}
			if r, err := strconv.ParseFloat(resonanceEntry.Text, 64); err == nil {
				state.cfg.Mock.ResonanceHz = r
			}
			if sr, err := time.ParseDuration(sampleRateEntry.Text); err == nil {
				state.cfg.Mock.SampleRate = sr
			}
			if sp, err := time.ParseDuration(strikeEntry.Text); err == nil {
				state.cfg.Mock.StrikePeriod = sp
			}
			if saveConfig(state) && state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}

func saveConfig(state *appState) bool {
	if err := state.cfg.Save(state.configFile); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

// reconnect restarts the chain if it is running so new device settings apply.
func reconnect(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	disconnect(state)
	handleConnect(state)
}

// rebuildView replaces the monitor and the scope so new detection and display
// settings apply, restarting the chain around them if it was running.
func rebuildView(state *appState) {
	wasConnected := state.device != nil && state.device.IsConnected()
	if wasConnected {
		disconnect(state)
	}

	state.monitor = monitor.New(state.cfg)
	state.scopeWidget = scope.New(state.cfg)
	watchMonitor(state)

	toolbar := createToolbar(state)
	state.window.SetContent(container.NewBorder(toolbar, nil, nil, nil, state.scopeWidget))

	if wasConnected {
		handleConnect(state)
	}
}
