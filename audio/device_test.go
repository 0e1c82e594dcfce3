package audio

import (
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHostApis(t *testing.T) {
	mic := &portaudio.DeviceInfo{
		Name:                    "USB Mic",
		MaxInputChannels:        2,
		DefaultLowInputLatency:  5 * time.Millisecond,
		DefaultHighInputLatency: 20 * time.Millisecond,
		DefaultSampleRate:       48000,
	}
	hs := []*portaudio.HostApiInfo{{
		Name:               "ALSA",
		DefaultInputDevice: mic,
		Devices:            []*portaudio.DeviceInfo{mic},
	}}

	s, err := formatHostApis(hs)
	require.NoError(t, err)
	assert.Contains(t, s, "1 host APIs")
	assert.Contains(t, s, "Default input device:   USB Mic")
	assert.Contains(t, s, "MaxInputChannels:          2")
	assert.Contains(t, s, "DefaultSampleRate:         48000")
	assert.NotContains(t, s, "Default output device")
}
