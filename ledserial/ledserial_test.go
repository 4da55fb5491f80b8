package ledserial_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/beatglow/ledserial"
)

func TestWriteFramePacket(t *testing.T) {
	var buf bytes.Buffer
	err := ledserial.WritePacket(&buf, ledserial.FramePacket{Pix: []uint8{1, 2, 3}})
	require.NoError(t, err)

	body := []byte{
		byte(ledserial.TypeFrame),
		3, 0, // pixel byte count, little endian
		1, 2, 3,
	}
	want := body
	want = binary.LittleEndian.AppendUint32(want, crc32.ChecksumIEEE(body))
	assert.Equal(t, want, buf.Bytes())
}

func TestWriteInitializePacket(t *testing.T) {
	var buf bytes.Buffer
	err := ledserial.WritePacket(&buf, ledserial.InitializePacket{NumPixels: 300})
	require.NoError(t, err)

	body := []byte{byte(ledserial.TypeInitialize), 0x2C, 0x01}
	want := binary.LittleEndian.AppendUint32(body, crc32.ChecksumIEEE(body))
	assert.Equal(t, want, buf.Bytes())
}

func TestReplyRoundTrip(t *testing.T) {
	replies := []ledserial.Reply{
		{Type: ledserial.ReplyAck},
		{Type: ledserial.ReplyError, Message: "overcurrent"},
		{Type: ledserial.ReplyLog, Message: "strip ready"},
	}

	for _, want := range replies {
		t.Run(want.Type.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, ledserial.WriteReply(&buf, want))

			got, err := ledserial.ReadReply(&buf)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReadReplyChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ledserial.WriteReply(&buf, ledserial.Reply{
		Type:    ledserial.ReplyLog,
		Message: "hi",
	}))

	b := buf.Bytes()
	b[len(b)-1] ^= 0xFF

	_, err := ledserial.ReadReply(bytes.NewReader(b))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestReadReplyUnknownType(t *testing.T) {
	_, err := ledserial.ReadReply(bytes.NewReader([]byte{0xEE, 0, 0, 0, 0}))
	assert.Error(t, err)
}
