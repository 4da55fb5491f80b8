package beatglow

import (
	"log/slog"

	"github.com/pkg/errors"
	"go.bug.st/serial"

	"libdb.so/beatglow/internal/led"
	"libdb.so/beatglow/ledserial"
)

// SerialStrip drives a strip through a microcontroller over a serial port,
// speaking the ledserial protocol.
type SerialStrip struct {
	port   serial.Port
	frame  led.Frame
	logger *slog.Logger
}

var _ Strip = (*SerialStrip)(nil)

// OpenSerialStrip opens the serial port, initializes the controller for
// numPixels pixels and starts draining controller replies in the background.
func OpenSerialStrip(device string, baud, numPixels int, logger *slog.Logger) (*SerialStrip, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}

	s := &SerialStrip{
		port:   port,
		frame:  led.NewFrame(numPixels),
		logger: logger,
	}

	if err := ledserial.WritePacket(port, ledserial.InitializePacket{
		NumPixels: uint16(numPixels),
	}); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to initialize controller")
	}

	go s.readReplies()

	return s, nil
}

// SetPixel stages the color of pixel i into the local frame.
func (s *SerialStrip) SetPixel(i int, c led.Color) {
	s.frame[i] = c
}

// Show sends the staged frame to the controller.
func (s *SerialStrip) Show() error {
	err := ledserial.WritePacket(s.port, ledserial.FramePacket{Pix: s.frame.Bytes()})
	return errors.Wrap(err, "failed to write frame")
}

// Close clears the strip and closes the port, which also unblocks the reply
// reader.
func (s *SerialStrip) Close() error {
	if err := ledserial.WritePacket(s.port, ledserial.ClearPacket{}); err != nil {
		s.logger.Warn("cannot clear strip on close", "error", err)
	}
	return s.port.Close()
}

// readReplies surfaces controller-side errors and logs. It exits when the
// port closes.
func (s *SerialStrip) readReplies() {
	for {
		reply, err := ledserial.ReadReply(s.port)
		if err != nil {
			s.logger.Debug("reply reader exiting", "error", err)
			return
		}

		switch reply.Type {
		case ledserial.ReplyAck:
			// Frames are fire-and-forget; acks need no bookkeeping.
		case ledserial.ReplyError:
			s.logger.Warn("controller reported error", "message", reply.Message)
		case ledserial.ReplyLog:
			s.logger.Info("controller log", "message", reply.Message)
		}
	}
}
