// Package ledserial implements the framed packet protocol spoken over the
// serial link to a strip-driving microcontroller.
//
// The host sends Packets (initialize, clear, frame); the controller answers
// with Replies (ack, error, log). Every packet and reply is trailed by a
// CRC32 of its type byte and payload.
package ledserial

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/pkg/errors"
)

// Endianness is the byte order of every multi-byte field on the wire.
var Endianness = binary.LittleEndian

// PacketType identifies a host-to-controller packet.
type PacketType uint8

const (
	TypeInitialize PacketType = iota
	TypeClear
	TypeFrame
)

// String returns a string representation of the packet type.
func (t PacketType) String() string {
	switch t {
	case TypeInitialize:
		return "initialize"
	case TypeClear:
		return "clear"
	case TypeFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// Packet is a host-to-controller packet.
type Packet interface {
	// Type returns the type of the packet.
	Type() PacketType
}

// InitializePacket tells the controller how many pixels to drive.
type InitializePacket struct {
	NumPixels uint16
}

// ClearPacket turns the whole strip off.
type ClearPacket struct{}

// FramePacket carries one full frame, three RGB bytes per pixel.
type FramePacket struct {
	Pix []uint8
}

func (InitializePacket) Type() PacketType { return TypeInitialize }
func (ClearPacket) Type() PacketType      { return TypeClear }
func (FramePacket) Type() PacketType      { return TypeFrame }

// WritePacket writes one packet to w, trailed by its checksum.
func WritePacket(w io.Writer, p Packet) error {
	hash := crc32.NewIEEE()
	mw := io.MultiWriter(w, hash)

	if _, err := mw.Write([]byte{byte(p.Type())}); err != nil {
		return errors.Wrap(err, "failed to write packet type")
	}

	switch p := p.(type) {
	case InitializePacket:
		if err := binary.Write(mw, Endianness, p.NumPixels); err != nil {
			return errors.Wrap(err, "failed to write pixel count")
		}
	case ClearPacket:
		// Type byte only.
	case FramePacket:
		if err := binary.Write(mw, Endianness, uint16(len(p.Pix))); err != nil {
			return errors.Wrap(err, "failed to write frame size")
		}
		if _, err := mw.Write(p.Pix); err != nil {
			return errors.Wrap(err, "failed to write frame pixels")
		}
	default:
		return errors.Errorf("unknown packet type %T", p)
	}

	return errors.Wrap(binary.Write(w, Endianness, hash.Sum32()), "failed to write checksum")
}

// ReplyType identifies a controller-to-host packet.
type ReplyType uint8

const (
	ReplyAck ReplyType = iota
	ReplyError
	ReplyLog
)

// String returns a string representation of the reply type.
func (t ReplyType) String() string {
	switch t {
	case ReplyAck:
		return "ack"
	case ReplyError:
		return "error"
	case ReplyLog:
		return "log"
	default:
		return "unknown"
	}
}

// Reply is a controller-to-host packet.
type Reply struct {
	Type ReplyType
	// Message is set for ReplyError and ReplyLog.
	Message string
}

// ReadReply reads one controller reply from r and verifies its checksum.
func ReadReply(r io.Reader) (Reply, error) {
	hash := crc32.NewIEEE()
	tr := io.TeeReader(r, hash)

	var head [1]byte
	if _, err := io.ReadFull(tr, head[:]); err != nil {
		return Reply{}, errors.Wrap(err, "failed to read reply type")
	}

	reply := Reply{Type: ReplyType(head[0])}

	switch reply.Type {
	case ReplyAck:
		// Type byte only.
	case ReplyError, ReplyLog:
		var size uint16
		if err := binary.Read(tr, Endianness, &size); err != nil {
			return Reply{}, errors.Wrap(err, "failed to read message size")
		}
		msg := make([]byte, size)
		if _, err := io.ReadFull(tr, msg); err != nil {
			return Reply{}, errors.Wrap(err, "failed to read message")
		}
		reply.Message = string(msg)
	default:
		return Reply{}, errors.Errorf("unknown reply type %d", head[0])
	}

	sum := hash.Sum32()

	var want uint32
	if err := binary.Read(r, Endianness, &want); err != nil {
		return Reply{}, errors.Wrap(err, "failed to read checksum")
	}
	if want != sum {
		return Reply{}, errors.Errorf("reply checksum mismatch: got %08x, want %08x", sum, want)
	}

	return reply, nil
}

// WriteReply writes one reply to w the way a controller would. It exists for
// host-side loopback testing of ReadReply.
func WriteReply(w io.Writer, reply Reply) error {
	hash := crc32.NewIEEE()
	mw := io.MultiWriter(w, hash)

	if _, err := mw.Write([]byte{byte(reply.Type)}); err != nil {
		return errors.Wrap(err, "failed to write reply type")
	}

	if reply.Type == ReplyError || reply.Type == ReplyLog {
		if err := binary.Write(mw, Endianness, uint16(len(reply.Message))); err != nil {
			return errors.Wrap(err, "failed to write message size")
		}
		if _, err := io.WriteString(mw, reply.Message); err != nil {
			return errors.Wrap(err, "failed to write message")
		}
	}

	return errors.Wrap(binary.Write(w, Endianness, hash.Sum32()), "failed to write checksum")
}
