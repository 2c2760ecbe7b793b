package telemetry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

func TestParseLine(t *testing.T) {
	at := time.Unix(1700000000, 0)
	tests := []struct {
		name    string
		line    string
		want    Frame
		wantErr bool
	}{
		{
			name: "dual channel",
			line: "A:450,B:12\r\n",
			want: Frame{Timestamp: at, Names: []string{"A", "B"}, Values: []uint32{450, 12}},
		},
		{
			name: "dual channel full scale",
			line: "A:3300,B:3300",
			want: Frame{Timestamp: at, Names: []string{"A", "B"}, Values: []uint32{3300, 3300}},
		},
		{
			name: "single channel",
			line: "1234\r\n",
			want: Frame{Timestamp: at, Values: []uint32{1234}},
		},
		{
			name: "single channel zero",
			line: "0",
			want: Frame{Timestamp: at, Values: []uint32{0}},
		},
		{name: "empty", line: "\r\n", wantErr: true},
		{name: "out of range", line: "A:3301,B:0", wantErr: true},
		{name: "negative", line: "-5", wantErr: true},
		{name: "missing value", line: "A:,B:1", wantErr: true},
		{name: "missing name", line: ":12,B:1", wantErr: true},
		{name: "mixed formats", line: "A:12,40", wantErr: true},
		{name: "garbage", line: "A:1x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line, at)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrame_Value(t *testing.T) {
	dual := Frame{Names: []string{"A", "B"}, Values: []uint32{1, 2}}
	v, ok := dual.Value("B")
	assert.True(t, ok)
	assert.Equal(t, uint32(2), v)
	_, ok = dual.Value("C")
	assert.False(t, ok)

	single := Frame{Values: []uint32{7}}
	v, ok = single.Value("POT")
	assert.True(t, ok)
	assert.Equal(t, uint32(7), v)
}

func TestReadLines_SkipsBadLinesAndDropsWhenFull(t *testing.T) {
	input := strings.Join([]string{
		"B:12",
		"A:1,B:2",
		"garbage",
		"A:3,B:4",
		"A:5,B:6",
	}, "\r\n") + "\r\n"

	out := make(chan Frame, 2)
	dropped := readLines(context.Background(), strings.NewReader(input), out, zap.NewNop().Sugar())

	assert.Equal(t, uint64(2), dropped)
	require.Len(t, out, 2)
	first := <-out
	assert.Equal(t, []uint32{12}, first.Values)
	assert.Equal(t, []string{"B"}, first.Names)
	second := <-out
	assert.Equal(t, []uint32{1, 2}, second.Values)
}

func TestReadLines_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan Frame, 10)
	readLines(ctx, strings.NewReader("A:1,B:2\r\nA:3,B:4\r\n"), out, zap.NewNop().Sugar())
	assert.Empty(t, out)
}

func TestSerial_NotConnected(t *testing.T) {
	d := New("/dev/does-not-exist", 0, 0)
	assert.False(t, d.IsConnected())
	assert.NoError(t, d.Close())

	_, ok := <-d.Frames()
	assert.False(t, ok, "frames of an unconnected device are closed")

	assert.Error(t, d.Connect())
	assert.False(t, d.IsConnected())
}

func TestMode(t *testing.T) {
	m := Mode(DefaultBaudRate)
	assert.Equal(t, 921600, m.BaudRate)
	assert.Equal(t, 8, m.DataBits)
	assert.Equal(t, serial.NoParity, m.Parity)
	assert.Equal(t, serial.OneStopBit, m.StopBits)
}
