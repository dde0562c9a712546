package launchpad

import (
	"github.com/canlink-project/canlink/actor"
	"github.com/canlink-project/canlink/idl"
)

var (
	TokenIDType    = idl.Named("TokenId", idl.Text())
	CanisterIDType = idl.Named("CanisterId", idl.Text())
	AgentIDType    = idl.Named("AgentId", idl.Text())
	SaleIDType     = idl.Named("SaleId", idl.Text())
)

var tokenConfigFields = []idl.Field{
	idl.F("name", idl.Text()),
	idl.F("symbol", idl.Text()),
	idl.F("decimals", idl.Nat()),
	idl.F("totalSupply", idl.Nat()),
	idl.F("logo", idl.Opt(idl.Blob())),
	idl.F("description", idl.Opt(idl.Text())),
}

var saleConfigFields = []idl.Field{
	idl.F("tokenId", TokenIDType),
	idl.F("price", idl.Nat()),
	idl.F("softCap", idl.Nat()),
	idl.F("hardCap", idl.Nat()),
	idl.F("startTime", idl.Int()),
	idl.F("endTime", idl.Int()),
}

var agentConfigFields = []idl.Field{
	idl.F("name", idl.Text()),
	idl.F("description", idl.Opt(idl.Text())),
	idl.F("tokenId", idl.Opt(TokenIDType)),
}

func with(base []idl.Field, extra ...idl.Field) []idl.Field {
	return append(append([]idl.Field{}, base...), extra...)
}

var (
	TokenConfigType = idl.Named("TokenConfig", idl.RecordOf(tokenConfigFields...))
	TokenInfoType   = idl.Named("TokenInfo", idl.RecordOf(with(tokenConfigFields,
		idl.F("id", TokenIDType),
		idl.F("owner", idl.Principal()),
		idl.F("canisterId", idl.Opt(CanisterIDType)),
		idl.F("createdAt", idl.Int()),
	)...))

	SaleStatusType = idl.Named("SaleStatus", idl.VariantOf(
		idl.Tag(string(SaleUpcoming)),
		idl.Tag(string(SaleActive)),
		idl.Tag(string(SaleEnded)),
		idl.Tag(string(SaleCancelled)),
	))
	SaleConfigType = idl.Named("SaleConfig", idl.RecordOf(saleConfigFields...))
	SaleInfoType   = idl.Named("SaleInfo", idl.RecordOf(with(saleConfigFields,
		idl.F("id", SaleIDType),
		idl.F("raised", idl.Nat()),
		idl.F("status", SaleStatusType),
		idl.F("creator", idl.Principal()),
	)...))

	AgentConfigType = idl.Named("AgentConfig", idl.RecordOf(agentConfigFields...))
	AgentInfoType   = idl.Named("AgentInfo", idl.RecordOf(with(agentConfigFields,
		idl.F("id", AgentIDType),
		idl.F("owner", idl.Principal()),
		idl.F("createdAt", idl.Int()),
	)...))
)

func args(ts ...idl.Type) []idl.Type { return ts }

var TokenFactory = actor.NewService("TokenFactory").
	Update("createToken", args(TokenConfigType), idl.ResultOf(TokenIDType)).
	Update("createTokenBatch", args(idl.Vec(TokenConfigType)), idl.ResultOf(idl.Vec(TokenIDType))).
	Query("getToken", args(TokenIDType), idl.Opt(TokenInfoType)).
	Query("listTokens", nil, idl.Vec(TokenInfoType)).
	Query("getTokenCanister", args(TokenIDType), idl.Opt(CanisterIDType))

var SaleManager = actor.NewService("SaleManager").
	Update("createSale", args(SaleConfigType), idl.ResultOf(SaleIDType)).
	Query("getSale", args(SaleIDType), idl.Opt(SaleInfoType)).
	Query("listSales", nil, idl.Vec(SaleInfoType)).
	Query("listSalesByToken", args(TokenIDType), idl.Vec(SaleInfoType)).
	Update("contribute", args(SaleIDType, idl.Nat()), idl.ResultOf(idl.Null())).
	Update("finalizeSale", args(SaleIDType), idl.ResultOf(SaleStatusType))

var AgentRegistry = actor.NewService("AgentRegistry").
	Update("registerAgent", args(AgentConfigType), idl.ResultOf(AgentIDType)).
	Query("listAgents", nil, idl.Vec(AgentInfoType)).
	Query("getAgent", args(AgentIDType), idl.Opt(AgentInfoType))

// Services lists the launchpad services by name.
var Services = map[string]*actor.Service{
	TokenFactory.Name():  TokenFactory,
	SaleManager.Name():   SaleManager,
	AgentRegistry.Name(): AgentRegistry,
}
