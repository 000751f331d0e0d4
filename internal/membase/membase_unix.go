//go:build unix

package membase

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapBackend reserves the full capacity as an anonymous PROT_NONE mapping
// and commits pages on demand. Reserving up front pins the base address, so
// payload slices handed to clients stay valid across growth.
type mmapBackend struct {
	mem       []byte
	used      int
	committed int
	pageSize  int
}

// New returns a region backed by an anonymous mapping of capBytes.
func New(capBytes int) (Backend, error) {
	if capBytes <= 0 {
		return nil, ErrBadSize
	}
	pageSize := unix.Getpagesize()
	reserve := roundUp(capBytes, pageSize)

	mem, err := unix.Mmap(-1, 0, reserve, unix.PROT_NONE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("membase: reserve %d bytes: %w", reserve, err)
	}
	return &mmapBackend{
		mem:      mem[:capBytes],
		pageSize: pageSize,
	}, nil
}

func (m *mmapBackend) Bytes() []byte { return m.mem[:m.used] }

func (m *mmapBackend) Len() int { return m.used }

func (m *mmapBackend) Cap() int { return len(m.mem) }

func (m *mmapBackend) Extend(n int) (int, error) {
	if n <= 0 {
		return 0, ErrBadSize
	}
	end := m.used + n
	if end > len(m.mem) {
		return 0, ErrExhausted
	}
	if end > m.committed {
		newCommitted := roundUp(end, m.pageSize)
		if newCommitted > cap(m.mem) {
			newCommitted = cap(m.mem)
		}
		err := unix.Mprotect(m.mem[m.committed:newCommitted:newCommitted],
			unix.PROT_READ|unix.PROT_WRITE)
		if err != nil {
			return 0, fmt.Errorf("membase: commit pages: %w", err)
		}
		m.committed = newCommitted
	}
	off := m.used
	m.used = end
	return off, nil
}

func (m *mmapBackend) Close() error {
	if m.mem == nil {
		return nil
	}
	mem := m.mem[:cap(m.mem)]
	m.mem = nil
	m.used = 0
	return unix.Munmap(mem)
}

func roundUp(n, unit int) int {
	return (n + unit - 1) / unit * unit
}
