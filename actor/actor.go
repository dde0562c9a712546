package actor

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/agent"
	"github.com/canlink-project/canlink/build"
	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/metrics"
)

// Actor is a handle on one canister speaking one Service. Creating it does
// no I/O; each Call is a single request through the agent.
type Actor struct {
	agent    agent.Agent
	canister string
	svc      *Service
}

func New(a agent.Agent, canister string, svc *Service) *Actor {
	return &Actor{
		agent:    a,
		canister: canister,
		svc:      svc,
	}
}

func (a *Actor) Canister() string  { return a.canister }
func (a *Actor) Service() *Service { return a.svc }

// Call validates and encodes args for method, dispatches by the method's
// mode and decodes the reply against the declared result type.
//
// The returned error is one of: ErrUnknownMethod, *ArgumentError,
// *TransportError or *idl.DecodeError. An application-level `err` result is
// a successful call and comes back as a value.
func (a *Actor) Call(ctx context.Context, method string, args ...idl.Value) (idl.Value, error) {
	m, ok := a.svc.Method(method)
	if !ok {
		return nil, xerrors.Errorf("%s.%s: %w", a.svc.Name(), method, ErrUnknownMethod)
	}

	arg, err := idl.EncodeArgs(m.Args, args)
	if err != nil {
		return nil, &ArgumentError{Method: method, Err: err}
	}

	start := build.Clock.Now()
	outcome := metrics.OutcomeOK
	defer func() {
		metrics.RecordCall(ctx, method, m.Mode.String(), outcome, build.Clock.Since(start))
	}()

	var reply []byte
	switch m.Mode {
	case Query:
		reply, err = a.agent.Query(ctx, a.canister, method, arg)
	case Update:
		reply, err = a.agent.Update(ctx, a.canister, method, arg)
	default:
		return nil, xerrors.Errorf("method %s has invalid mode %s", method, m.Mode)
	}
	if err != nil {
		outcome = metrics.OutcomeTransport
		return nil, &TransportError{Canister: a.canister, Method: method, Mode: m.Mode, Err: err}
	}

	v, err := idl.Decode(m.Result, reply)
	if err != nil {
		outcome = metrics.OutcomeDecode
		log.Warnw("undecodable reply", "canister", a.canister, "method", method, "error", err)
		return nil, err
	}
	if vr, ok := v.(idl.Variant); ok && vr.Tag == idl.ResultErrTag && m.Result.Kind == idl.KindVariant {
		outcome = metrics.OutcomeAppErr
	}
	return v, nil
}

// Verify checks that the canister serves the interface this handle was
// built for.
func (a *Actor) Verify(ctx context.Context) error {
	remote, err := a.agent.Interface(ctx, a.canister)
	if err != nil {
		return &TransportError{Canister: a.canister, Method: "interface", Mode: Query, Err: err}
	}
	local := a.svc.Fingerprint()
	if !remote.Equals(local) {
		return &InterfaceMismatchError{Canister: a.canister, Local: local.String(), Remote: remote.String()}
	}
	return nil
}
