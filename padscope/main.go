package main

import (
	"flag"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/logging"
	"github.com/itohio/drumpads/pkg/monitor"
	"github.com/itohio/drumpads/pkg/sample"
	"github.com/itohio/drumpads/pkg/scope"
	"github.com/itohio/drumpads/pkg/telemetry"
)

// Throttle scope refreshes to ~60 FPS.
const updateInterval = 16 * time.Millisecond

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Use simulated pads instead of serial port")
		decimateFlag = flag.Int("decimate", -1, "Frames folded into one displayed sample (overrides config)")
	)
	flag.Parse()

	log := logging.Named("padscope")
	defer logging.Sync()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalw("Failed to load configuration", "file", *configFlag, "error", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *decimateFlag >= 0 {
		cfg.Monitor.Decimate = *decimateFlag
	}

	application := app.NewWithID("com.itohio.drumpads")
	window := application.NewWindow("Drum Pad Scope")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configFile: *configFlag,
		monitor:    monitor.New(cfg),
		window:     window,
		useMock:    *mockFlag,
		log:        log,
	}

	state.scopeWidget = scope.New(cfg)
	toolbar := createToolbar(state)
	watchMonitor(state)

	window.SetContent(container.NewBorder(toolbar, nil, nil, nil, state.scopeWidget))
	window.SetOnClosed(func() {
		if state.device != nil && state.device.IsConnected() {
			closeChain(state.chain)
		}
	})
	window.ShowAndRun()
}

// chain tracks the goroutines between the device and the monitor so a
// disconnect can wait for them to drain.
type chain struct {
	device      telemetry.Device
	monitorDone chan struct{}
}

type appState struct {
	cfg         *config.Config
	configFile  string
	device      telemetry.Device
	mock        *telemetry.Mock // Set when the device is simulated
	monitor     *monitor.Monitor
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	resetBtn    *widget.Button
	padBtns     []*widget.Button
	useMock     bool
	chain       *chain
	log         *zap.SugaredLogger

	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect, Settings and
// Reset on the left and one button per pad on the right.
func createToolbar(state *appState) fyne.CanvasObject {
	state.connectBtn = widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.resetBtn = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		state.monitor.Reset()
		updatePadButtons(state, state.monitor.Counts())
	})

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(state.connectBtn, settingsBtn, state.resetBtn),
		createPadButtons(state),
		nil,
	)
}

// closeChain closes the device and waits for the monitor goroutine, which
// exits once every converter downstream of the device has drained.
func closeChain(c *chain) {
	if c == nil {
		return
	}
	if c.device != nil {
		c.device.Close()
	}
	if c.monitorDone != nil {
		<-c.monitorDone
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		disconnect(state)
		return
	}
	if err := connect(state); err != nil {
		dialog.ShowError(err, state.window)
	}
}

func disconnect(state *appState) {
	closeChain(state.chain)
	state.chain = nil
	state.device = nil
	state.mock = nil
	setPadButtonsEnabled(state, false)
	state.log.Infow("Disconnected", "mock", state.useMock)
}

func connect(state *appState) error {
	var device telemetry.Device
	if state.useMock {
		state.mock = telemetry.NewMock(state.cfg)
		device = state.mock
	} else {
		device = telemetry.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, telemetry.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		state.mock = nil
		if state.useMock {
			return fmt.Errorf("failed to connect to simulated pads: %w", err)
		}
		return fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err)
	}
	state.device = device
	state.log.Infow("Connected", "mock", state.useMock, "port", state.cfg.Serial.Port)

	setPadButtonsEnabled(state, true)
	state.monitor.ResetShutdown()

	var samples <-chan sample.Sample
	if state.cfg.Monitor.Decimate > 1 {
		samples = sample.NewPeakConverter(state.cfg, state.cfg.Monitor.Decimate, 500)(device.Frames())
	} else {
		samples = sample.NewConverter(state.cfg, 500)(device.Frames())
	}

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		state.monitor.ProcessSamples(samples)
	}()

	state.chain = &chain{device: device, monitorDone: monitorDone}
	return nil
}

// watchMonitor forwards monitor updates to the scope and the pad buttons on
// the main thread.
func watchMonitor(state *appState) {
	state.monitor.OnUpdate(func(samples []sample.Sample, hits []monitor.Hit) {
		state.updateMu.Lock()
		now := time.Now()
		if now.Sub(state.lastUpdateTime) < updateInterval {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = now
		state.updateMu.Unlock()

		counts := state.monitor.Counts()
		fyne.Do(func() {
			state.scopeWidget.UpdateData(samples, hits)
			updatePadButtons(state, counts)
		})
	})
}
