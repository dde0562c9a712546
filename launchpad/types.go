package launchpad

import (
	"go.uber.org/multierr"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/idl"
	"github.com/canlink-project/canlink/principal"
)

// Identifiers are all text on the wire. Keeping them distinct types stops a
// sale id from being passed where a token id is expected.
type (
	TokenID    string
	CanisterID string
	AgentID    string
	SaleID     string
)

func asID[T ~string](v idl.Value) (T, error) {
	s, err := idl.AsText(v)
	return T(s), err
}

func idValue[T ~string](id T) idl.Value { return string(id) }

var (
	AsTokenID    = asID[TokenID]
	AsCanisterID = asID[CanisterID]
	AsAgentID    = asID[AgentID]
	AsSaleID     = asID[SaleID]
)

type SaleStatus string

const (
	SaleUpcoming  SaleStatus = "upcoming"
	SaleActive    SaleStatus = "active"
	SaleEnded     SaleStatus = "ended"
	SaleCancelled SaleStatus = "cancelled"
)

func (s SaleStatus) Value() idl.Value { return idl.V(string(s), nil) }

func AsSaleStatus(v idl.Value) (SaleStatus, error) {
	vr, err := idl.AsVariant(v)
	if err != nil {
		return "", err
	}
	switch st := SaleStatus(vr.Tag); st {
	case SaleUpcoming, SaleActive, SaleEnded, SaleCancelled:
		return st, nil
	default:
		return "", &idl.DecodeError{Reason: "unknown sale status " + vr.Tag}
	}
}

// record reads fields out of a record value, collecting every failure.
type record struct {
	r   idl.Record
	err error
}

func readRecord(v idl.Value) (*record, error) {
	r, err := idl.AsRecord(v)
	if err != nil {
		return nil, err
	}
	return &record{r: r}, nil
}

func field[T any](rd *record, name string, conv func(idl.Value) (T, error)) T {
	out, err := idl.Get(rd.r, name, conv)
	rd.err = multierr.Append(rd.err, err)
	return out
}

func opt[T any](conv func(idl.Value) (T, error)) func(idl.Value) (idl.Option[T], error) {
	return func(v idl.Value) (idl.Option[T], error) {
		return idl.OptionFromValue(v, conv)
	}
}

func (rd *record) done(what string) error {
	if rd.err != nil {
		return xerrors.Errorf("decoding %s: %w", what, rd.err)
	}
	return nil
}

type TokenConfig struct {
	Name        string
	Symbol      string
	Decimals    uint64
	TotalSupply uint64
	Logo        idl.Option[[]byte]
	Description idl.Option[string]
}

func (c TokenConfig) Value() idl.Value {
	return idl.Record{
		"name":        c.Name,
		"symbol":      c.Symbol,
		"decimals":    c.Decimals,
		"totalSupply": c.TotalSupply,
		"logo":        idl.OptionOf(c.Logo, idl.BlobValue),
		"description": idl.OptionOf(c.Description, idl.TextValue),
	}
}

func AsTokenConfig(v idl.Value) (TokenConfig, error) {
	rd, err := readRecord(v)
	if err != nil {
		return TokenConfig{}, err
	}
	c := TokenConfig{
		Name:        field(rd, "name", idl.AsText),
		Symbol:      field(rd, "symbol", idl.AsText),
		Decimals:    field(rd, "decimals", idl.AsNat),
		TotalSupply: field(rd, "totalSupply", idl.AsNat),
		Logo:        field(rd, "logo", opt(idl.AsBlob)),
		Description: field(rd, "description", opt(idl.AsText)),
	}
	return c, rd.done("TokenConfig")
}

type TokenInfo struct {
	ID TokenID
	TokenConfig
	Owner     principal.Principal
	Canister  idl.Option[CanisterID]
	CreatedAt int64
}

func (t TokenInfo) Value() idl.Value {
	r := t.TokenConfig.Value().(idl.Record)
	r["id"] = string(t.ID)
	r["owner"] = t.Owner
	r["canisterId"] = idl.OptionOf(t.Canister, idValue[CanisterID])
	r["createdAt"] = t.CreatedAt
	return r
}

func AsTokenInfo(v idl.Value) (TokenInfo, error) {
	cfg, err := AsTokenConfig(v)
	if err != nil {
		return TokenInfo{}, err
	}
	rd, err := readRecord(v)
	if err != nil {
		return TokenInfo{}, err
	}
	t := TokenInfo{
		ID:          field(rd, "id", AsTokenID),
		TokenConfig: cfg,
		Owner:       field(rd, "owner", idl.AsPrincipal),
		Canister:    field(rd, "canisterId", opt(AsCanisterID)),
		CreatedAt:   field(rd, "createdAt", idl.AsInt),
	}
	return t, rd.done("TokenInfo")
}

type SaleConfig struct {
	Token     TokenID
	Price     uint64
	SoftCap   uint64
	HardCap   uint64
	StartTime int64
	EndTime   int64
}

func (c SaleConfig) Value() idl.Value {
	return idl.Record{
		"tokenId":   string(c.Token),
		"price":     c.Price,
		"softCap":   c.SoftCap,
		"hardCap":   c.HardCap,
		"startTime": c.StartTime,
		"endTime":   c.EndTime,
	}
}

func AsSaleConfig(v idl.Value) (SaleConfig, error) {
	rd, err := readRecord(v)
	if err != nil {
		return SaleConfig{}, err
	}
	c := SaleConfig{
		Token:     field(rd, "tokenId", AsTokenID),
		Price:     field(rd, "price", idl.AsNat),
		SoftCap:   field(rd, "softCap", idl.AsNat),
		HardCap:   field(rd, "hardCap", idl.AsNat),
		StartTime: field(rd, "startTime", idl.AsInt),
		EndTime:   field(rd, "endTime", idl.AsInt),
	}
	return c, rd.done("SaleConfig")
}

type SaleInfo struct {
	ID SaleID
	SaleConfig
	Raised  uint64
	Status  SaleStatus
	Creator principal.Principal
}

func (s SaleInfo) Value() idl.Value {
	r := s.SaleConfig.Value().(idl.Record)
	r["id"] = string(s.ID)
	r["raised"] = s.Raised
	r["status"] = s.Status.Value()
	r["creator"] = s.Creator
	return r
}

func AsSaleInfo(v idl.Value) (SaleInfo, error) {
	cfg, err := AsSaleConfig(v)
	if err != nil {
		return SaleInfo{}, err
	}
	rd, err := readRecord(v)
	if err != nil {
		return SaleInfo{}, err
	}
	s := SaleInfo{
		ID:         field(rd, "id", AsSaleID),
		SaleConfig: cfg,
		Raised:     field(rd, "raised", idl.AsNat),
		Status:     field(rd, "status", AsSaleStatus),
		Creator:    field(rd, "creator", idl.AsPrincipal),
	}
	return s, rd.done("SaleInfo")
}

type AgentConfig struct {
	Name        string
	Description idl.Option[string]
	Token       idl.Option[TokenID]
}

func (c AgentConfig) Value() idl.Value {
	return idl.Record{
		"name":        c.Name,
		"description": idl.OptionOf(c.Description, idl.TextValue),
		"tokenId":     idl.OptionOf(c.Token, idValue[TokenID]),
	}
}

func AsAgentConfig(v idl.Value) (AgentConfig, error) {
	rd, err := readRecord(v)
	if err != nil {
		return AgentConfig{}, err
	}
	c := AgentConfig{
		Name:        field(rd, "name", idl.AsText),
		Description: field(rd, "description", opt(idl.AsText)),
		Token:       field(rd, "tokenId", opt(AsTokenID)),
	}
	return c, rd.done("AgentConfig")
}

type AgentInfo struct {
	ID AgentID
	AgentConfig
	Owner     principal.Principal
	CreatedAt int64
}

func (a AgentInfo) Value() idl.Value {
	r := a.AgentConfig.Value().(idl.Record)
	r["id"] = string(a.ID)
	r["owner"] = a.Owner
	r["createdAt"] = a.CreatedAt
	return r
}

func AsAgentInfo(v idl.Value) (AgentInfo, error) {
	cfg, err := AsAgentConfig(v)
	if err != nil {
		return AgentInfo{}, err
	}
	rd, err := readRecord(v)
	if err != nil {
		return AgentInfo{}, err
	}
	a := AgentInfo{
		ID:          field(rd, "id", AsAgentID),
		AgentConfig: cfg,
		Owner:       field(rd, "owner", idl.AsPrincipal),
		CreatedAt:   field(rd, "createdAt", idl.AsInt),
	}
	return a, rd.done("AgentInfo")
}
