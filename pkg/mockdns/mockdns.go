// SPDX-License-Identifier: LGPL-3.0-or-later

// Package mockdns is a nameserver offering only limited capabilities. It lets a
// CA under test resolve the harness target domain to the local host while the
// "nonexistent" fixture name reliably answers NXDOMAIN, without depending on
// live DNS.
package mockdns

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

const defaultTTL = 60

// Server is a running nameserver backed by a DB.
type Server struct {
	server *dns.Server
	stop   func() bool

	once sync.Once
	err  error
}

// Start binds addr (UDP) and answers queries from db until ctx is done or
// Shutdown is called. An empty addr binds an ephemeral local port.
func Start(ctx context.Context, db *DB, addr string) (*Server, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	lc := net.ListenConfig{}
	pc, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("new listener: %w", err)
	}

	started := make(chan struct{})
	exited := make(chan error, 1)
	server := &dns.Server{
		PacketConn:        pc,
		Handler:           db,
		NotifyStartedFunc: func() { close(started) },
	}
	go func() {
		exited <- server.ActivateAndServe()
	}()

	select {
	case <-started:
	case err := <-exited:
		pc.Close()
		return nil, fmt.Errorf("start nameserver: %w", err)
	}

	s := &Server{server: server}
	s.stop = context.AfterFunc(ctx, s.shutdown)
	db.log.Info().Stringer("addr", pc.LocalAddr()).Msg("nameserver listening")

	return s, nil
}

// Addr returns the net.Addr where the nameserver is listening.
func (s *Server) Addr() net.Addr {
	return s.server.PacketConn.LocalAddr()
}

// Shutdown stops answering queries and releases the socket.
func (s *Server) Shutdown() error {
	s.stop()
	s.shutdown()
	return s.err
}

func (s *Server) shutdown() {
	s.once.Do(func() {
		s.err = s.server.Shutdown()
	})
}

// DB holds query questions mapped to responses, names that must not exist, and
// a default A answer for everything else. It is used directly as the
// dns.Handler of a Server.
type DB struct {
	m        sync.Map
	nx       sync.Map
	defaultA net.IP

	log zerolog.Logger
}

// NewDB creates an empty DB answering A queries with defaultA. A nil defaultA
// means 127.0.0.1.
func NewDB(defaultA net.IP, log zerolog.Logger) *DB {
	if defaultA == nil {
		defaultA = net.IPv4(127, 0, 0, 1)
	}
	return &DB{defaultA: defaultA, log: log}
}

// DefaultA returns the address given to names without a stored answer.
func (db *DB) DefaultA() net.IP {
	return db.defaultA
}

func msgKey(m *dns.Msg) string {
	if len(m.Question) != 1 {
		panic("cannot store multi-question messages")
	}
	q := m.Question[0]
	return fmt.Sprintf("%s-%s", dns.CanonicalName(q.Name), dns.TypeToString[q.Qtype])
}

// AddMsg stores the given DNS message for lookup when resolving names.
func (db *DB) AddMsg(r dns.Msg) {
	db.m.Store(msgKey(&r), r)
}

// DeleteMsg immediately removes the given DNS message (by its question).
func (db *DB) DeleteMsg(r dns.Msg) {
	db.m.Delete(msgKey(&r))
}

// GetMsg looks up a stored response based on its question.
func (db *DB) GetMsg(r *dns.Msg) *dns.Msg {
	val, ok := db.m.Load(msgKey(r))
	if !ok {
		return nil
	}

	m, ok := val.(dns.Msg)
	if !ok {
		panic("nameserver db returned non-msg item")
	}
	return &m
}

// AddA answers A queries for name with ip.
func (db *DB) AddA(name string, ip net.IP) {
	name = dns.CanonicalName(name)
	db.AddMsg(dns.Msg{
		Question: []dns.Question{{Name: name, Qtype: dns.TypeA, Qclass: dns.ClassINET}},
		Answer: []dns.RR{&dns.A{
			Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: defaultTTL},
			A:   ip,
		}},
	})
}

// AddNXDomain makes every query for name answer NXDOMAIN.
func (db *DB) AddNXDomain(name string) {
	db.nx.Store(dns.CanonicalName(name), struct{}{})
}

// DeleteNXDomain undoes AddNXDomain.
func (db *DB) DeleteNXDomain(name string) {
	db.nx.Delete(dns.CanonicalName(name))
}

func (db *DB) isNX(name string) bool {
	_, ok := db.nx.Load(dns.CanonicalName(name))
	return ok
}

// ServeDNS answers from the DB.
func (db *DB) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	if len(r.Question) != 1 {
		dns.HandleFailed(w, r)
		return
	}
	q := r.Question[0]

	response := new(dns.Msg)
	response.SetReply(r)
	response.Authoritative = true

	switch {
	case db.isNX(q.Name):
		response.SetRcode(r, dns.RcodeNameError)
	case db.GetMsg(r) != nil:
		response.Answer = db.GetMsg(r).Answer
	case q.Qtype == dns.TypeA:
		response.Answer = []dns.RR{&dns.A{
			Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: defaultTTL},
			A:   db.defaultA,
		}}
	default:
		// NODATA: the name exists but has no records of this type.
	}

	db.log.Debug().
		Str("name", q.Name).
		Str("type", dns.TypeToString[q.Qtype]).
		Str("rcode", dns.RcodeToString[response.Rcode]).
		Int("answers", len(response.Answer)).
		Msg("answered query")

	if err := w.WriteMsg(response); err != nil {
		db.log.Warn().Err(err).Msg("write reply")
	}
}

var _ dns.Handler = (*DB)(nil)
