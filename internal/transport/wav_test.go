package transport

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexwarp/swl/internal/codec"
	"github.com/hexwarp/swl/internal/vocab"
)

func newTestCodec(t *testing.T) *codec.Codec {
	t.Helper()
	table, err := vocab.Load()
	require.NoError(t, err)
	return codec.New(table)
}

func TestWAVRoundTrip(t *testing.T) {
	c := newTestCodec(t)
	path := filepath.Join(t.TempDir(), "msg.wav")

	w := c.Encode(codec.NewMessage("test", 0, "help", "learn"))
	require.NoError(t, WriteWAV(path, w))

	got, err := ReadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, w.Rate, got.Rate)
	assert.Len(t, got.Samples, len(w.Samples))
	assert.ElementsMatch(t, []string{"help", "learn"}, c.DecodeConcepts(got))
}

func TestWAVRoundTrip_PreservesPCM(t *testing.T) {
	c := newTestCodec(t)
	path := filepath.Join(t.TempDir(), "msg.wav")

	w := c.EncodeTone(43000)
	require.NoError(t, WriteWAV(path, w))

	got, err := ReadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, w.PCM(), got.PCM(), "the container must not alter samples")
}

func TestReadWAV_MissingFile(t *testing.T) {
	_, err := ReadWAV(filepath.Join(t.TempDir(), "absent.wav"))
	assert.Error(t, err)
}
