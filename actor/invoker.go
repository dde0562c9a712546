package actor

import (
	"context"
	"sort"

	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/principal"
)

// ErrModeMismatch is returned when an update method is called as a query.
var ErrModeMismatch = xerrors.New("update method called as query")

// CallContext describes the incoming call to a Handler.
type CallContext struct {
	Canister string
	Sender   principal.Principal
	Nonce    string
	Mode     Mode
}

// Handler implements one method. Application failures are returned as the
// `err` variant of the result value; a returned error rejects the call.
type Handler func(ctx context.Context, cc CallContext, args []idl.Value) (idl.Value, error)

// Invokee is a local implementation of a service.
type Invokee interface {
	Exports() map[string]Handler
}

// Invoker dispatches encoded calls to an Invokee.
type Invoker struct {
	svc     *Service
	methods map[string]Handler
}

func NewInvoker() *Invoker {
	return &Invoker{}
}

// Register binds impl to svc. Every declared method must be exported and
// every export must be declared.
func (inv *Invoker) Register(svc *Service, impl Invokee) error {
	if inv.svc != nil {
		return xerrors.Errorf("invoker already serves %s", inv.svc.Name())
	}

	exports := impl.Exports()
	for _, m := range svc.Methods() {
		if exports[m.Name] == nil {
			return xerrors.Errorf("register(%s): method %s not implemented", svc.Name(), m.Name)
		}
	}
	var extra []string
	for name := range exports {
		if _, ok := svc.Method(name); !ok {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return xerrors.Errorf("register(%s): exports undeclared methods %v", svc.Name(), extra)
	}

	inv.svc = svc
	inv.methods = exports
	return nil
}

func (inv *Invoker) Service() *Service {
	return inv.svc
}

// Invoke decodes arg, runs the handler and encodes its result.
func (inv *Invoker) Invoke(ctx context.Context, cc CallContext, method string, mode Mode, arg []byte) ([]byte, error) {
	if inv.svc == nil {
		return nil, xerrors.New("invoker has no registered service")
	}
	m, ok := inv.svc.Method(method)
	if !ok {
		return nil, xerrors.Errorf("%s.%s: %w", inv.svc.Name(), method, ErrUnknownMethod)
	}
	if mode == Query && m.Mode == Update {
		return nil, xerrors.Errorf("%s.%s: %w", inv.svc.Name(), method, ErrModeMismatch)
	}

	args, err := idl.DecodeArgs(m.Args, arg)
	if err != nil {
		return nil, &ArgumentError{Method: method, Err: err}
	}

	cc.Mode = mode
	res, err := inv.methods[method](ctx, cc, args)
	if err != nil {
		return nil, err
	}

	out, err := idl.Encode(m.Result, res)
	if err != nil {
		log.Errorw("handler produced a value outside its result type", "method", method, "error", err)
		return nil, xerrors.Errorf("encoding %s result: %w", method, err)
	}
	return out, nil
}
