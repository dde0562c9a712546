// Package actor binds remote actor interfaces: a Service lists the callable
// methods with their schemas and modes, an Actor calls them through an
// agent, and an Invoker dispatches incoming calls to local implementations.
package actor

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-multihash"
	cbg "github.com/whyrusleeping/cbor-gen"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/idl"
)

var log = logging.Logger("actor")

// Mode says how a call is ordered by the replica. Queries are read-only and
// may be answered by any single node; updates go through consensus.
type Mode uint8

const (
	Query Mode = iota + 1
	Update
)

func (m Mode) String() string {
	switch m {
	case Query:
		return "query"
	case Update:
		return "update"
	default:
		return fmt.Sprintf("mode(%d)", m)
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "query":
		return Query, nil
	case "update":
		return Update, nil
	default:
		return 0, xerrors.Errorf("unknown call mode %q", s)
	}
}

type Method struct {
	Name   string
	Args   []idl.Type
	Result idl.Type
	Mode   Mode
}

func (m Method) String() string {
	args := make([]string, len(m.Args))
	for i, a := range m.Args {
		args[i] = a.String()
	}
	sig := fmt.Sprintf("%s : (%s) -> (%s)", m.Name, strings.Join(args, ", "), m.Result)
	if m.Mode == Query {
		sig += " query"
	}
	return sig
}

// Service is the interface of a remote actor. It is built once at package
// init and is read-only afterwards.
type Service struct {
	name    string
	methods map[string]Method
	order   []string
}

func NewService(name string) *Service {
	return &Service{
		name:    name,
		methods: make(map[string]Method),
	}
}

// Query declares a read-only method. Declaring the same name twice panics.
func (s *Service) Query(name string, args []idl.Type, result idl.Type) *Service {
	return s.add(Method{Name: name, Args: args, Result: result, Mode: Query})
}

// Update declares a state-changing method.
func (s *Service) Update(name string, args []idl.Type, result idl.Type) *Service {
	return s.add(Method{Name: name, Args: args, Result: result, Mode: Update})
}

func (s *Service) add(m Method) *Service {
	if m.Name == "" {
		panic(fmt.Sprintf("actor: service %s: method with empty name", s.name))
	}
	if _, dup := s.methods[m.Name]; dup {
		panic(fmt.Sprintf("actor: service %s: duplicate method %q", s.name, m.Name))
	}
	if m.Result.Kind == idl.KindInvalid {
		panic(fmt.Sprintf("actor: service %s: method %q has no result type, use idl.Null()", s.name, m.Name))
	}
	for i, a := range m.Args {
		if a.Kind == idl.KindInvalid {
			panic(fmt.Sprintf("actor: service %s: method %q argument %d has no type", s.name, m.Name, i))
		}
	}
	s.methods[m.Name] = m
	s.order = append(s.order, m.Name)
	return s
}

func (s *Service) Name() string {
	return s.name
}

func (s *Service) Method(name string) (Method, bool) {
	m, ok := s.methods[name]
	return m, ok
}

// Methods returns the methods in declaration order.
func (s *Service) Methods() []Method {
	out := make([]Method, len(s.order))
	for i, n := range s.order {
		out[i] = s.methods[n]
	}
	return out
}

func (s *Service) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "service %s : {\n", s.name)
	for _, m := range s.Methods() {
		fmt.Fprintf(&b, "  %s;\n", m)
	}
	b.WriteString("}")
	return b.String()
}

// Fingerprint identifies the structure of the interface. Two services with
// the same methods, schemas and modes share a fingerprint regardless of
// declaration order or type aliases.
func (s *Service) Fingerprint() cid.Cid {
	c, err := fingerprint(s)
	if err != nil {
		// only reachable with invalid nested types
		panic(err)
	}
	return c
}

func fingerprint(s *Service) (cid.Cid, error) {
	names := append([]string(nil), s.order...)
	sort.Strings(names)

	buf := new(bytes.Buffer)
	cw := cbg.NewCborWriter(buf)
	if err := cw.WriteMajorTypeHeader(cbg.MajArray, uint64(len(names))); err != nil {
		return cid.Undef, err
	}
	for _, n := range names {
		m := s.methods[n]
		if err := cw.WriteMajorTypeHeader(cbg.MajArray, 4); err != nil {
			return cid.Undef, err
		}
		if err := cw.WriteMajorTypeHeader(cbg.MajTextString, uint64(len(n))); err != nil {
			return cid.Undef, err
		}
		if _, err := cw.WriteString(n); err != nil {
			return cid.Undef, err
		}
		if err := cw.WriteMajorTypeHeader(cbg.MajUnsignedInt, uint64(m.Mode)); err != nil {
			return cid.Undef, err
		}
		if err := cw.WriteMajorTypeHeader(cbg.MajArray, uint64(len(m.Args))); err != nil {
			return cid.Undef, err
		}
		for _, a := range m.Args {
			if err := idl.MarshalTypeCBOR(cw, a); err != nil {
				return cid.Undef, xerrors.Errorf("method %s: %w", n, err)
			}
		}
		if err := idl.MarshalTypeCBOR(cw, m.Result); err != nil {
			return cid.Undef, xerrors.Errorf("method %s: %w", n, err)
		}
	}

	h, err := multihash.Sum(buf.Bytes(), multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.DagCBOR, h), nil
}
