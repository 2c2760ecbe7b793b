package telemetry

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"github.com/itohio/drumpads/pkg/logging"
)

const (
	// DefaultBaudRate is the firmware's UART rate.
	DefaultBaudRate = 921600
	// DefaultBufferSize is the default size for the frames channel buffer.
	DefaultBufferSize = 1000
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads telemetry from the board's serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	log      *zap.SugaredLogger

	mu        sync.RWMutex
	conn      serial.Port
	frames    chan Frame
	cancel    context.CancelFunc
	connected bool
	dropped   uint64
}

// New creates a Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		log:      logging.Named("telemetry").With("port", port),
		frames:   closedFrames(),
	}
}

// Ports returns the available serial ports. USB ports are described by their
// product name when the platform reports one.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil && len(details) > 0 {
		result := make([]Port, 0, len(details))
		for _, d := range details {
			desc := d.Name
			if d.IsUSB {
				desc = fmt.Sprintf("%s (%s:%s %s)", d.Name, d.VID, d.PID, d.Product)
			}
			result = append(result, Port{Name: d.Name, Description: desc})
		}
		return result, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading frames.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	conn, err := serial.Open(d.port, Mode(d.baudRate))
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.conn = conn
	d.cancel = cancel
	d.frames = make(chan Frame, d.bufSize)
	d.connected = true

	go d.readFrames(ctx, conn, d.frames)

	return nil
}

// Close closes the port. The reader goroutine then closes the frames channel.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()
	if err := d.conn.Close(); err != nil {
		d.log.Warnw("error closing serial port", "error", err)
	}
	d.conn = nil
	d.connected = false

	return nil
}

// Frames returns the channel for reading frames.
func (d *Serial) Frames() <-chan Frame {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frames
}

// Dropped returns the number of frames dropped by finished connections
// because the consumer fell behind.
func (d *Serial) Dropped() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dropped
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

func (d *Serial) readFrames(ctx context.Context, r io.Reader, out chan<- Frame) {
	defer close(out)
	dropped := readLines(ctx, r, out, d.log)

	d.mu.Lock()
	d.dropped += dropped
	d.mu.Unlock()
}

// readLines scans telemetry lines from r and forwards parsed frames without
// blocking. It returns the number of frames dropped because out was full.
func readLines(ctx context.Context, r io.Reader, out chan<- Frame, log *zap.SugaredLogger) uint64 {
	var dropped uint64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return dropped
		}

		line := scanner.Text()
		frame, err := ParseLine(line, time.Now())
		if err != nil {
			// Partial lines are normal right after connecting.
			log.Debugw("failed to parse line", "line", line, "error", err)
			continue
		}

		select {
		case out <- frame:
		case <-ctx.Done():
			return dropped
		default:
			dropped++
			if dropped%1000 == 1 {
				log.Warnw("frames channel full, dropping frames", "dropped", dropped)
			}
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
		log.Errorw("error reading from serial port", "error", err)
	}
	return dropped
}

// Mode returns the 8N1 serial mode used by the firmware.
func Mode(baudRate int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenTransport opens port for writing telemetry, as a board would.
func OpenTransport(port string, baudRate int) (io.WriteCloser, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	conn, err := serial.Open(port, Mode(baudRate))
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	return conn, nil
}

func closedFrames() chan Frame {
	ch := make(chan Frame)
	close(ch)
	return ch
}
