package transport

import (
	"fmt"
	"io"
	"time"

	serial "github.com/daedaluz/goserial"
)

// serialConn adapts a *serial.Port to the io.ReadWriteCloser the engine
// drives, matching the shape net.Conn already satisfies so both transports
// share one reader/writer loop.
type serialConn struct {
	port *serial.Port
}

func (s serialConn) Read(p []byte) (int, error)  { return s.port.Read(p) }
func (s serialConn) Write(p []byte) (int, error) { return s.port.Write(p) }
func (s serialConn) Close() error                { return s.port.Close() }

// dialSerial opens path at 38400 8N1 with hardware (RTS/CTS) flow control,
// per spec.md §6. Grounded on Daedaluz-goserial's Port/Termios2/CFlag API;
// this library is the dedicated serial example in the pack and replaces any
// hand-rolled ioctl/termios handling.
func dialSerial(path string) (io.ReadWriteCloser, error) {
	opts := serial.NewOptions().SetReadTimeout(250 * time.Millisecond)
	port, err := serial.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("transport: open serial port %s: %w", path, err)
	}

	attrs, err := port.GetAttr2()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: get serial attrs for %s: %w", path, err)
	}
	attrs.MakeRaw()
	attrs.Cflag = (attrs.Cflag &^ serial.CSIZE) | serial.CS8
	attrs.Cflag |= serial.CREAD | serial.CLOCAL | serial.CRTSCTS
	attrs.Cflag &^= serial.PARENB | serial.CSTOPB
	attrs.SetSpeed(serial.B38400)
	if err := port.SetAttr2(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("transport: set serial attrs for %s: %w", path, err)
	}

	return serialConn{port: port}, nil
}
