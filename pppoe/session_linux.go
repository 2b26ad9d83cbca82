package pppoe

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// protoPPPoE is the PPPoE protocol number for AF_PPPOX sockets,
// PX_PROTO_OE in linux/if_pppox.h.
const protoPPPoE = 0

// newSessionFd opens the kernel PPPoE session socket that will frame
// and deframe PPP traffic once connectSessionFd binds it to a
// session. It's opened before discovery completes so that any PPP
// traffic the Access Concentrator sends immediately after PADS isn't
// lost waiting for us to get around to connecting it.
func newSessionFd(ifName string) (int, error) {
	fd, err := unix.Socket(unix.AF_PPPOX, unix.SOCK_STREAM, protoPPPoE)
	if err != nil {
		return 0, fmt.Errorf("pppoe: opening AF_PPPOX session socket: %w", err)
	}
	return fd, nil
}

func closeSessionFd(fd int) error {
	return unix.Close(fd)
}

func connectSessionFd(fd int, ifName string, remote net.HardwareAddr, sessionID uint16) error {
	sa := &unix.SockaddrPPPoE{
		SID:    sessionID,
		Remote: remote,
		Dev:    ifName,
	}
	if err := unix.Connect(fd, sa); err != nil {
		return fmt.Errorf("pppoe: connecting session socket: %w", err)
	}
	return nil
}

// setSessionTimeout installs (or, for a zero deadline, clears) a
// socket-level send/receive timeout, since AF_PPPOX session sockets
// have no SetDeadline method of their own to piggyback on.
func setSessionTimeout(fd int, deadline time.Time, opt int) error {
	if deadline.IsZero() {
		return unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, opt, &unix.Timeval{})
	}
	remaining := time.Until(deadline)
	if remaining < 0 {
		remaining = 0
	}
	tv := unix.NsecToTimeval(remaining.Nanoseconds())
	return unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, opt, &tv)
}

func sendSessionPacket(fd int, pkt []byte, deadline time.Time) (int, error) {
	if err := setSessionTimeout(fd, deadline, unix.SO_SNDTIMEO); err != nil {
		return 0, fmt.Errorf("pppoe: setting write deadline: %w", err)
	}
	n, err := unix.Write(fd, pkt)
	if err != nil {
		return n, fmt.Errorf("pppoe: writing session packet: %w", err)
	}
	if n != len(pkt) {
		return n, fmt.Errorf("pppoe: short session write: got %d, want %d", n, len(pkt))
	}
	return n, nil
}

func readSessionPacket(fd int, buf []byte, deadline time.Time) (int, error) {
	if err := setSessionTimeout(fd, deadline, unix.SO_RCVTIMEO); err != nil {
		return 0, fmt.Errorf("pppoe: setting read deadline: %w", err)
	}
	n, _, err := unix.Recvfrom(fd, buf, 0)
	if err != nil {
		return n, fmt.Errorf("pppoe: reading session packet: %w", err)
	}
	return n, nil
}
