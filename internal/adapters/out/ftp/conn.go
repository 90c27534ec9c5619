package ftp

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/jlaffaye/ftp"
)

// conn is the subset of *ftp.ServerConn the binding drives.
type conn interface {
	Login(user, password string) error
	Type(transferType ftp.TransferType) error
	ChangeDir(path string) error
	MakeDir(path string) error
	Stor(path string, r io.Reader) error
	Rename(from, to string) error
	Delete(path string) error
	FileSize(path string) (int64, error)
	List(path string) ([]*ftp.Entry, error)
	Quit() error
}

// dialFunc opens a control connection to addr (host:port).
type dialFunc func(ctx context.Context, addr string, timeout time.Duration) (conn, error)

// dialServer dials with jlaffaye/ftp. Every socket it opens, control and
// data alike, inherits the attempt deadline and is interrupted when ctx ends.
func dialServer(ctx context.Context, addr string, timeout time.Duration) (conn, error) {
	dialer := &net.Dialer{Timeout: timeout}
	deadline, hasDeadline := ctx.Deadline()

	c, err := ftp.Dial(addr, ftp.DialWithDialFunc(func(network, address string) (net.Conn, error) {
		nc, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		if hasDeadline {
			_ = nc.SetDeadline(deadline)
		}
		context.AfterFunc(ctx, func() {
			_ = nc.SetDeadline(time.Now())
		})
		return nc, nil
	}))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ctxReader stops feeding the upload once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
	n   int64
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
