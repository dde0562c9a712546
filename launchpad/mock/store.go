package mock

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	dsq "github.com/ipfs/go-datastore/query"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/idl"
)

var (
	itemsKey = datastore.NewKey("items")
	nextKey  = datastore.NewKey("next")
)

// store keeps idl-encoded values of one type under a datastore namespace and
// hands out sequential ids. Callers serialize writes.
type store struct {
	ds     datastore.Datastore
	t      idl.Type
	prefix string
}

func newStore(ds datastore.Datastore, ns string, t idl.Type, idPrefix string) *store {
	return &store{
		ds:     namespace.Wrap(ds, datastore.NewKey(ns)),
		t:      t,
		prefix: idPrefix,
	}
}

func (s *store) nextID(ctx context.Context) (string, error) {
	var n uint64
	b, err := s.ds.Get(ctx, nextKey)
	switch {
	case xerrors.Is(err, datastore.ErrNotFound):
	case err != nil:
		return "", xerrors.Errorf("reading id counter: %w", err)
	default:
		if n, err = strconv.ParseUint(string(b), 10, 64); err != nil {
			return "", xerrors.Errorf("parsing id counter: %w", err)
		}
	}
	n++
	if err := s.ds.Put(ctx, nextKey, []byte(strconv.FormatUint(n, 10))); err != nil {
		return "", xerrors.Errorf("writing id counter: %w", err)
	}
	return s.prefix + "-" + strconv.FormatUint(n, 10), nil
}

func (s *store) put(ctx context.Context, id string, v idl.Value) error {
	b, err := idl.Encode(s.t, v)
	if err != nil {
		return xerrors.Errorf("encoding %s: %w", id, err)
	}
	return s.ds.Put(ctx, itemsKey.ChildString(id), b)
}

// get returns the stored value, or nil if there is none.
func (s *store) get(ctx context.Context, id string) (idl.Value, error) {
	b, err := s.ds.Get(ctx, itemsKey.ChildString(id))
	if xerrors.Is(err, datastore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.Errorf("getting %s: %w", id, err)
	}
	return idl.Decode(s.t, b)
}

// list returns every value in creation order.
func (s *store) list(ctx context.Context) ([]idl.Value, error) {
	res, err := s.ds.Query(ctx, dsq.Query{Prefix: itemsKey.String()})
	if err != nil {
		return nil, xerrors.Errorf("querying %s: %w", s.prefix, err)
	}
	defer res.Close() //nolint:errcheck

	entries, err := res.Rest()
	if err != nil {
		return nil, xerrors.Errorf("reading %s: %w", s.prefix, err)
	}
	// ids end in a sequence number; shorter sorts first
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Key, entries[j].Key
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return strings.Compare(a, b) < 0
	})

	out := make([]idl.Value, 0, len(entries))
	for _, e := range entries {
		v, err := idl.Decode(s.t, e.Value)
		if err != nil {
			return nil, xerrors.Errorf("decoding %s: %w", e.Key, err)
		}
		out = append(out, v)
	}
	return out, nil
}
