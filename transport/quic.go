package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"time"

	"github.com/quic-go/quic-go"
)

// ALPN is the application protocol negotiated on QUIC connections of the proxy.
const ALPN = "spectrum"

// QUIC is a transport over plain QUIC, with one stream per player.
type QUIC struct {
	listener *quic.Listener
	queue    *queue
	cancel   context.CancelFunc
}

// NewQUIC ...
func NewQUIC() *QUIC {
	return &QUIC{queue: newQueue()}
}

// Listen ...
func (q *QUIC) Listen(addr string) error {
	cert, err := selfSignedCertificate()
	if err != nil {
		return err
	}
	listener, err := quic.ListenAddr(addr, &tls.Config{Certificates: []tls.Certificate{cert}, NextProtos: []string{ALPN}}, &quic.Config{
		MaxIdleTimeout:     time.Second * 10,
		KeepAlivePeriod:    time.Second * 5,
		MaxIncomingStreams: 1 << 16,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.listener, q.cancel = listener, cancel
	go func() {
		for {
			conn, err := listener.Accept(ctx)
			if err != nil {
				q.queue.close()
				return
			}
			go func() {
				for {
					stream, err := conn.AcceptStream(ctx)
					if err != nil {
						return
					}
					q.queue.push(streamConn{ReadWriteCloser: stream, addr: conn.RemoteAddr()})
				}
			}()
		}
	}()
	return nil
}

// Accept ...
func (q *QUIC) Accept() (io.ReadWriteCloser, error) {
	return q.queue.pop()
}

// Close ...
func (q *QUIC) Close() error {
	q.queue.close()
	if q.cancel != nil {
		q.cancel()
	}
	if q.listener != nil {
		return q.listener.Close()
	}
	return nil
}

// selfSignedCertificate generates the certificate presented to proxies, which do not verify it.
func selfSignedCertificate() (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "crossplay"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().AddDate(1, 0, 0),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}
