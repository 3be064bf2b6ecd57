package crossplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/cooldogedev/crossplay/admin"
	"github.com/cooldogedev/crossplay/backend"
	"github.com/cooldogedev/crossplay/bedrock"
	"github.com/cooldogedev/crossplay/mappings"
	"github.com/cooldogedev/crossplay/presence"
	"github.com/cooldogedev/crossplay/session"
	tr "github.com/cooldogedev/crossplay/transport"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"golang.org/x/sync/errgroup"
)

// FrontListener accepts clients of the proxy.
type FrontListener interface {
	// Accept blocks until a client is ready for a session to be started for it.
	Accept() (session.FrontConn, error)
	// Close stops accepting clients. Accept returns an error once it is called.
	Close() error
}

// Proxy accepts Bedrock clients and runs a session translating between each of them and the Java server.
type Proxy struct {
	conf    Config
	manager *session.Manager
}

// New loads the mappings and returns a Proxy ready to Run.
func New(conf Config) (*Proxy, error) {
	data, err := mappings.Load(conf.MappingsDirectory)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}
	if !slices.Contains(data.JavaVersions(), conf.Session.BackendVersion) {
		return nil, fmt.Errorf("no mappings for java protocol %v", conf.Session.BackendVersion)
	}
	fronts := []int32{protocol.CurrentProtocol}
	for _, p := range bedrock.Protocols() {
		fronts = append(fronts, p.ID())
	}
	tables, err := data.ResolveAll(fronts, []int32{conf.Session.BackendVersion}, conf.Mappings)
	if err != nil {
		return nil, fmt.Errorf("resolve mappings: %w", err)
	}
	conf.Log.Debug("resolved mappings", "bedrock_versions", fronts, "java_version", conf.Session.BackendVersion)

	dialer := session.BackendDialer{Dialer: backend.Dialer{Log: conf.Log, Timeout: conf.DialTimeout}}
	return &Proxy{
		conf:    conf,
		manager: session.NewManager(conf.Log, conf.Session, tables, nil, dialer),
	}, nil
}

// Listen starts listening for clients over the transport of the config.
func (p *Proxy) Listen() (FrontListener, error) {
	if p.conf.Transport == TransportRakNet {
		return NewRakNetListener(p.conf.Log, RakNetConfig{
			Address:                p.conf.ListenAddress,
			MOTD:                   p.conf.MOTD,
			AuthenticationDisabled: p.conf.AuthenticationDisabled,
			ChunkRadius:            p.conf.Session.ChunkRadius,
		})
	}
	transport, err := tr.New(p.conf.Transport)
	if err != nil {
		return nil, err
	}
	if tcp, ok := transport.(*tr.TCP); ok {
		tcp.ProxyProtocol = p.conf.ProxyProtocol
	}
	l, err := NewListener(p.conf.Log, ListenerConfig{
		Address:        p.conf.ListenAddress,
		Transport:      transport,
		Authentication: p.conf.Authentication,
		ChunkRadius:    p.conf.Session.ChunkRadius,
		Supported:      p.supported,
	})
	if err != nil {
		return nil, fmt.Errorf("listen on %v: %w", p.conf.ListenAddress, err)
	}
	return l, nil
}

// supported reports whether the proxy has mappings for a Bedrock protocol. Every protocol with a codec
// is accepted before the mappings are loaded.
func (p *Proxy) supported(protocol int32) bool {
	return p.manager == nil || p.manager.Supports(protocol)
}

// Run accepts clients until the context is done, then disconnects every player and waits for their sessions
// to end.
func (p *Proxy) Run(ctx context.Context) error {
	l, err := p.Listen()
	if err != nil {
		return err
	}
	p.conf.Log.Info("proxy listening", "transport", p.conf.Transport, "addr", p.conf.ListenAddress, "backend", p.conf.Session.BackendAddress)

	g, ctx := errgroup.WithContext(ctx)
	if p.conf.Presence.RedisAddress != "" || p.conf.Presence.NATSURL != "" {
		pr, closePresence, err := presence.Dial(ctx, p.conf.Log, p.conf.Presence)
		if err != nil {
			_ = l.Close()
			return err
		}
		defer closePresence()
		p.manager.Observe(pr)
		g.Go(func() error {
			pr.Run(ctx)
			return nil
		})
	}
	if p.conf.AdminAddress != "" {
		srv := admin.New(p.conf.Log, p.conf.AdminAddress, p.manager)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		_ = l.Close()
		return nil
	})
	g.Go(func() error {
		for {
			conn, err := l.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			go func() {
				_ = p.manager.Handle(context.WithoutCancel(ctx), conn)
			}()
		}
	})
	err = g.Wait()
	p.manager.CloseAll("Proxy closed.")
	return err
}
