package token

import (
	"math/big"

	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/oracle"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

const (
	FieldMessager     = "messager"
	FieldRevoker      = "revoker"
	FieldOperator     = "operator"
	FieldReserveFeed  = "reserveFeed"
	FieldFallbackFeed = "fallbackFeed"
)

// Config describes one token instance. The optional role and feed
// addresses are installed directly at construction, without a delay.
type Config struct {
	Address        common.Address
	Owner          common.Address
	Implementation common.Address
	MainChain      bool

	Operator     common.Address
	Revoker      common.Address
	Messager     common.Address
	ReserveFeed  common.Address
	FallbackFeed common.Address
}

// MToken is the token instance of one chain. The main chain instance draws
// its mint budget from the attested reserve; a side chain instance only
// receives budget from the main chain.
//
// MToken is not safe for concurrent use; callers serialize access per chain.
type MToken struct {
	address   common.Address
	owner     common.Address
	mainChain bool

	gov          *governance.Governor
	messager     *governance.Param[common.Address]
	revoker      *governance.Param[common.Address]
	operator     *governance.Param[common.Address]
	reserveFeed  *governance.Param[common.Address]
	fallbackFeed *governance.Param[common.Address]
	upgrader     *governance.Upgrader

	ownerRole     governance.Role
	operatorRole  governance.Role
	messagerRole  governance.Role
	nftRole       governance.Role
	operatorOrNFT governance.Role

	nftContract    common.Address
	ccSendDisabled bool

	ledger   *Ledger
	requests *RequestLedger
	budget   *MintBudgetAccount
	oracle   *oracle.ReserveOracle
	feeds    oracle.Resolver
	sink     events.Sink
}

// New builds a token instance. feeds resolves the configured reserve feed
// addresses and may be nil on a side chain.
func New(cfg Config, clock governance.Clock, sink events.Sink, feeds oracle.Resolver) *MToken {
	if sink == nil {
		sink = events.Discard
	}
	t := &MToken{
		address:   cfg.Address,
		owner:     cfg.Owner,
		mainChain: cfg.MainChain,
		ledger:    NewLedger(cfg.Address, sink),
		requests:  NewRequestLedger(),
		budget:    NewMintBudgetAccount(),
		oracle:    oracle.NewReserveOracle(clock),
		feeds:     feeds,
		sink:      sink,
	}

	t.ownerRole = governance.AddressRole(governance.RoleOwner, func() common.Address { return t.owner })
	t.operatorRole = governance.AddressRole(governance.RoleOperator, func() common.Address { return t.operator.Current() })
	t.messagerRole = governance.AddressRole(governance.RoleMessager, func() common.Address { return t.messager.Current() })
	t.nftRole = governance.AddressRole(governance.RoleNFTContract, func() common.Address { return t.nftContract })
	t.operatorOrNFT = governance.AnyOf(governance.RoleOperatorOrNFT, t.operatorRole, t.nftRole)
	revokerRole := governance.AddressRole(governance.RoleRevoker, func() common.Address { return t.revoker.Current() })

	t.gov = governance.NewGovernor(clock, sink, t.ownerRole, revokerRole)
	t.messager = governance.NewParam(t.gov, FieldMessager, cfg.Messager, t.ownerRole, governance.NonZeroAddress)
	t.revoker = governance.NewParam(t.gov, FieldRevoker, cfg.Revoker, t.ownerRole, governance.NonZeroAddress)
	t.operator = governance.NewParam(t.gov, FieldOperator, cfg.Operator, t.ownerRole, governance.NonZeroAddress)
	if cfg.MainChain {
		t.reserveFeed = governance.NewParam(t.gov, FieldReserveFeed, cfg.ReserveFeed, t.ownerRole, governance.NonZeroAddress)
		t.fallbackFeed = governance.NewParam(t.gov, FieldFallbackFeed, cfg.FallbackFeed, t.ownerRole, governance.Comparable[common.Address]())
	}
	t.upgrader = governance.NewUpgrader(t.gov, t.ownerRole, cfg.Implementation)
	return t
}

func (t *MToken) Address() common.Address             { return t.address }
func (t *MToken) Owner() common.Address               { return t.owner }
func (t *MToken) IsMainChain() bool                   { return t.mainChain }
func (t *MToken) Governor() *governance.Governor      { return t.gov }
func (t *MToken) Ledger() *Ledger                     { return t.ledger }
func (t *MToken) Requests() *RequestLedger            { return t.requests }
func (t *MToken) Budget() *MintBudgetAccount          { return t.budget }
func (t *MToken) Upgrader() *governance.Upgrader      { return t.upgrader }
func (t *MToken) OperatorRole() governance.Role       { return t.operatorRole }
func (t *MToken) NFTContract() common.Address         { return t.nftContract }
func (t *MToken) CcSendDisabled() bool                { return t.ccSendDisabled }
func (t *MToken) Delay() uint64                       { return t.gov.DelaySeconds() }
func (t *MToken) Messager() common.Address            { return t.messager.Current() }
func (t *MToken) Revoker() common.Address             { return t.revoker.Current() }
func (t *MToken) Operator() common.Address            { return t.operator.Current() }
func (t *MToken) MintBudget() *big.Int                { return t.budget.MintBudget() }
func (t *MToken) UsedReserve() *big.Int               { return t.budget.UsedReserve() }
func (t *MToken) TotalSupply() *big.Int               { return t.ledger.TotalSupply() }
func (t *MToken) BalanceOf(a common.Address) *big.Int { return t.ledger.BalanceOf(a) }
func (t *MToken) IsBlocked(a common.Address) bool     { return t.ledger.IsBlocked(a) }
func (t *MToken) RequestTime(id common.Hash) uint64   { return t.requests.SubmittedAt(id) }

func (t *MToken) Allowance(owner, spender common.Address) *big.Int {
	return t.ledger.Allowance(owner, spender)
}

func (t *MToken) ReserveFeed() common.Address {
	if t.reserveFeed == nil {
		return common.Address{}
	}
	return t.reserveFeed.Current()
}

func (t *MToken) FallbackFeed() common.Address {
	if t.fallbackFeed == nil {
		return common.Address{}
	}
	return t.fallbackFeed.Current()
}

func (t *MToken) SetDelay(actor common.Address, delay uint64) error {
	return t.gov.Delay().Request(actor, delay)
}

func (t *MToken) RevokeNextDelay(actor common.Address) error {
	return t.gov.Delay().Revoke(actor)
}

func (t *MToken) NextDelay() (uint64, uint64) {
	return t.gov.Delay().Pending(), t.gov.Delay().EffectiveAt()
}

// AddressParam returns the governed address field by name, or nil when the
// field does not exist on this instance.
func (t *MToken) AddressParam(field string) *governance.Param[common.Address] {
	switch field {
	case FieldMessager:
		return t.messager
	case FieldRevoker:
		return t.revoker
	case FieldOperator:
		return t.operator
	case FieldReserveFeed:
		return t.reserveFeed
	case FieldFallbackFeed:
		return t.fallbackFeed
	}
	return nil
}

func (t *MToken) SetMessager(actor, v common.Address) error { return t.messager.Request(actor, v) }
func (t *MToken) SetRevoker(actor, v common.Address) error  { return t.revoker.Request(actor, v) }
func (t *MToken) SetOperator(actor, v common.Address) error { return t.operator.Request(actor, v) }

func (t *MToken) RevokeNextMessager(actor common.Address) error { return t.messager.Revoke(actor) }
func (t *MToken) RevokeNextRevoker(actor common.Address) error  { return t.revoker.Revoke(actor) }
func (t *MToken) RevokeNextOperator(actor common.Address) error { return t.operator.Revoke(actor) }

func (t *MToken) SetReserveFeed(actor, v common.Address) error {
	if t.reserveFeed == nil {
		return ErrNoReserveFeed
	}
	return t.reserveFeed.Request(actor, v)
}

func (t *MToken) SetFallbackFeed(actor, v common.Address) error {
	if t.fallbackFeed == nil {
		return ErrNoReserveFeed
	}
	return t.fallbackFeed.Request(actor, v)
}

func (t *MToken) RevokeNextReserveFeed(actor common.Address) error {
	if t.reserveFeed == nil {
		return ErrNoReserveFeed
	}
	return t.reserveFeed.Revoke(actor)
}

func (t *MToken) RevokeNextFallbackFeed(actor common.Address) error {
	if t.fallbackFeed == nil {
		return ErrNoReserveFeed
	}
	return t.fallbackFeed.Revoke(actor)
}

// SetNFTContract binds the certificate registry once; later calls are
// ignored.
func (t *MToken) SetNFTContract(actor, nft common.Address) error {
	if err := t.ownerRole.Check(actor); err != nil {
		return err
	}
	if nft == (common.Address{}) {
		return governance.ErrZeroAddress
	}
	if t.nftContract != (common.Address{}) {
		log.Debug("[MTOKEN] NFT contract already set to ", t.nftContract.Hex())
		return nil
	}
	t.nftContract = nft
	t.sink.Emit(NFTContractSet{Contract: nft})
	return nil
}

func (t *MToken) SetDisableCcSend(actor common.Address, disabled bool) error {
	if err := t.ownerRole.Check(actor); err != nil {
		return err
	}
	t.ccSendDisabled = disabled
	log.Info("[MTOKEN] cross-chain send disabled: ", disabled)
	t.sink.Emit(CcSendDisabledSet{Disabled: disabled})
	return nil
}

func (t *MToken) AddToBlockedList(actor, account common.Address) error {
	if err := t.operatorRole.Check(actor); err != nil {
		return err
	}
	t.ledger.setBlocked(account, true)
	return nil
}

func (t *MToken) RemoveFromBlockedList(actor, account common.Address) error {
	if err := t.operatorRole.Check(actor); err != nil {
		return err
	}
	t.ledger.setBlocked(account, false)
	return nil
}

func (t *MToken) RequestUpgrade(actor, implementation common.Address, data []byte) error {
	return t.upgrader.RequestUpgrade(actor, implementation, data)
}

func (t *MToken) Upgrade(actor, implementation common.Address, data []byte) error {
	return t.upgrader.Upgrade(actor, implementation, data)
}

func (t *MToken) RevokeUpgrade(actor common.Address) error {
	return t.upgrader.RevokeUpgrade(actor)
}
