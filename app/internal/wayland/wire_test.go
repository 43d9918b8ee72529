// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux

package wayland

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// The fake compositor speaks the wire format itself. Messages are a
// two word header followed by word aligned arguments, all in host byte
// order.
const headerSize = 8

var order = binary.NativeEndian

var errShortMessage = errors.New("fake: message too short")

// fd is a file descriptor argument. It travels out of band.
type fd int

// fixed is a signed 24.8 fixed point number.
type fixed int32

func (f fixed) Float() float32 { return float32(f) / 256 }

// encoder appends the arguments of a message.
type encoder struct {
	buf []byte
	fds []int
}

// message appends a message from obj. Arguments are uint32 for uint,
// object and new_id, int32 for int, fixed, string, []byte for arrays and
// fd.
func (e *encoder) message(obj uint32, op uint16, args ...any) {
	start := len(e.buf)
	e.buf = order.AppendUint32(e.buf, obj)
	e.buf = order.AppendUint32(e.buf, 0)
	for _, a := range args {
		switch a := a.(type) {
		case uint32:
			e.buf = order.AppendUint32(e.buf, a)
		case int32:
			e.buf = order.AppendUint32(e.buf, uint32(a))
		case fixed:
			e.buf = order.AppendUint32(e.buf, uint32(a))
		case string:
			e.buf = order.AppendUint32(e.buf, uint32(len(a)+1))
			e.buf = append(e.buf, a...)
			e.buf = append(e.buf, 0)
			e.pad()
		case []byte:
			e.buf = order.AppendUint32(e.buf, uint32(len(a)))
			e.buf = append(e.buf, a...)
			e.pad()
		case fd:
			e.fds = append(e.fds, int(a))
		default:
			panic(fmt.Sprintf("fake: unsupported argument %T", a))
		}
	}
	size := len(e.buf) - start
	order.PutUint32(e.buf[start+4:], uint32(size)<<16|uint32(op))
}

func (e *encoder) pad() {
	for len(e.buf)%4 != 0 {
		e.buf = append(e.buf, 0)
	}
}

// decoder reads the arguments of a received message. The first error
// sticks; later reads return zero values.
type decoder struct {
	b   []byte
	fds func() (int, bool)
	err error
}

func (d *decoder) uint() uint32 {
	if d.err != nil {
		return 0
	}
	if len(d.b) < 4 {
		d.err = errShortMessage
		return 0
	}
	v := order.Uint32(d.b)
	d.b = d.b[4:]
	return v
}

func (d *decoder) int() int32 { return int32(d.uint()) }

func (d *decoder) fixed() fixed { return fixed(d.uint()) }

func (d *decoder) array() []byte {
	n := int(d.uint())
	if d.err != nil {
		return nil
	}
	padded := (n + 3) &^ 3
	if len(d.b) < padded {
		d.err = errShortMessage
		return nil
	}
	v := d.b[:n:n]
	d.b = d.b[padded:]
	return v
}

func (d *decoder) string() string {
	b := d.array()
	if len(b) == 0 {
		return ""
	}
	// Drop the terminating NUL.
	return string(b[:len(b)-1])
}

func (d *decoder) fd() int {
	if d.err != nil {
		return -1
	}
	if d.fds == nil {
		d.err = errors.New("fake: missing file descriptor")
		return -1
	}
	v, ok := d.fds()
	if !ok {
		d.err = errors.New("fake: missing file descriptor")
		return -1
	}
	return v
}

// header splits the first message of b.
func header(b []byte) (obj uint32, op uint16, size int, ok bool) {
	if len(b) < headerSize {
		return 0, 0, 0, false
	}
	obj = order.Uint32(b)
	w := order.Uint32(b[4:])
	return obj, uint16(w), int(w >> 16), true
}
