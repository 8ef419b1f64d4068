// Package pack binds bullion certificates to amounts of the fungible token
// held in escrow by the registry. Each certificate is a non-fungible unit
// that can be transferred, locked and finally unpacked back into tokens.
package pack

import (
	"math/big"
	"strings"

	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultName   = "BullionNFT"
	DefaultSymbol = "BNFT"

	FieldPackSigner = "packSigner"
)

// Token is the fungible ledger the registry escrows amounts in. The
// registry address must be registered as the token's NFT contract.
type Token interface {
	Owner() common.Address
	Operator() common.Address
	IsBlocked(account common.Address) bool
	Governor() *governance.Governor

	CheckPack(actor, owner common.Address, amount *big.Int) error
	Pack(actor, owner common.Address, amount *big.Int) error
	CheckUnpack(actor, owner common.Address, amount *big.Int) error
	Unpack(actor, owner common.Address, amount *big.Int) error
	CheckMintTo(actor, receiver common.Address, amount, nonce *big.Int) (bool, error)
	CheckMint(receiver common.Address, amount *big.Int) error
	MintTo(actor, receiver common.Address, amount, nonce *big.Int) (bool, error)
	CheckRedeemFrom(actor, holder common.Address, amount *big.Int) error
	RedeemFrom(actor, holder common.Address, amount *big.Int, to common.Address, memo []byte) error
}

// CertificateReceiver is notified by SafeTransferFrom. Returning an error
// rejects the transfer.
type CertificateReceiver interface {
	OnCertificateReceived(operator, from common.Address, id *big.Int, data []byte) error
}

type Config struct {
	Address    common.Address
	Name       string
	Symbol     string
	ChainID    *big.Int
	PackSigner common.Address
	BaseURI    string

	Implementation common.Address
}

// Registry is not safe for concurrent use; callers serialize access per
// chain together with the token.
type Registry struct {
	address common.Address
	name    string
	symbol  string
	chainID *big.Int
	baseURI string

	token        Token
	operatorRole governance.Role
	packSigner   *governance.Param[common.Address]
	upgrader     *governance.Upgrader

	certificates map[common.Hash]*big.Int
	owners       map[common.Hash]common.Address
	balances     map[common.Address]uint64
	approvals    map[common.Hash]common.Address
	approvedAll  map[common.Address]map[common.Address]bool
	locked       map[common.Hash][]byte
	receivers    map[common.Address]CertificateReceiver

	sink events.Sink
}

func New(cfg Config, tok Token, sink events.Sink) *Registry {
	if sink == nil {
		sink = events.Discard
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Symbol == "" {
		cfg.Symbol = DefaultSymbol
	}
	chainID := new(big.Int)
	if cfg.ChainID != nil {
		chainID.Set(cfg.ChainID)
	}
	r := &Registry{
		address:      cfg.Address,
		name:         cfg.Name,
		symbol:       cfg.Symbol,
		chainID:      chainID,
		baseURI:      cfg.BaseURI,
		token:        tok,
		operatorRole: governance.AddressRole(governance.RoleOperator, tok.Operator),
		certificates: make(map[common.Hash]*big.Int),
		owners:       make(map[common.Hash]common.Address),
		balances:     make(map[common.Address]uint64),
		approvals:    make(map[common.Hash]common.Address),
		approvedAll:  make(map[common.Address]map[common.Address]bool),
		locked:       make(map[common.Hash][]byte),
		receivers:    make(map[common.Address]CertificateReceiver),
		sink:         sink,
	}
	r.packSigner = governance.NewParam(tok.Governor(), FieldPackSigner, cfg.PackSigner, r.operatorRole, governance.NonZeroAddress)
	// the registry shares the token's delay, revoker and owner
	r.upgrader = governance.NewUpgrader(tok.Governor(), governance.AddressRole(governance.RoleOwner, tok.Owner), cfg.Implementation)
	return r
}

func (r *Registry) Address() common.Address { return r.address }
func (r *Registry) Name() string            { return r.name }
func (r *Registry) Symbol() string          { return r.symbol }

func (r *Registry) Domain() Domain {
	return Domain{ChainID: new(big.Int).Set(r.chainID), VerifyingContract: r.address}
}

func (r *Registry) PackSigner() common.Address {
	return r.packSigner.Current()
}

func (r *Registry) PackSignerParam() *governance.Param[common.Address] {
	return r.packSigner
}

func (r *Registry) SetPackSigner(actor, signer common.Address) error {
	return r.packSigner.Request(actor, signer)
}

func (r *Registry) RevokeNextPackSigner(actor common.Address) error {
	return r.packSigner.Revoke(actor)
}

func (r *Registry) Upgrader() *governance.Upgrader { return r.upgrader }
func (r *Registry) Version() uint64                { return r.upgrader.Version() }

func (r *Registry) RequestUpgrade(actor, implementation common.Address, data []byte) error {
	return r.upgrader.RequestUpgrade(actor, implementation, data)
}

func (r *Registry) Upgrade(actor, implementation common.Address, data []byte) error {
	return r.upgrader.Upgrade(actor, implementation, data)
}

func (r *Registry) RevokeUpgrade(actor common.Address) error {
	return r.upgrader.RevokeUpgrade(actor)
}

func (r *Registry) SetBaseURI(actor common.Address, uri string) error {
	if err := r.operatorRole.Check(actor); err != nil {
		return err
	}
	r.baseURI = uri
	return nil
}

// TokenURI is the base URI followed by the decimal id.
func (r *Registry) TokenURI(id *big.Int) (string, error) {
	if _, err := r.existing(id); err != nil {
		return "", err
	}
	if r.baseURI == "" {
		return "", nil
	}
	return r.baseURI + id.String(), nil
}

// SetReceiver installs the hook SafeTransferFrom calls for transfers to
// address. A nil receiver removes the hook.
func (r *Registry) SetReceiver(address common.Address, receiver CertificateReceiver) {
	if receiver == nil {
		delete(r.receivers, address)
		return
	}
	r.receivers[address] = receiver
}

func key(id *big.Int) common.Hash {
	return common.BigToHash(id)
}

func checkID(id *big.Int) error {
	if id == nil || id.Sign() < 0 || id.Cmp(math.MaxBig256) > 0 {
		return ErrInvalidID
	}
	return nil
}

// Amount returns the escrowed amount of a certificate, nil if absent.
func (r *Registry) Amount(id *big.Int) *big.Int {
	if checkID(id) != nil {
		return nil
	}
	if a, ok := r.certificates[key(id)]; ok {
		return new(big.Int).Set(a)
	}
	return nil
}

// CertificateOwner returns the holder of id and whether it exists.
func (r *Registry) CertificateOwner(id *big.Int) (common.Address, bool) {
	if checkID(id) != nil {
		return common.Address{}, false
	}
	owner, ok := r.owners[key(id)]
	return owner, ok
}

func (r *Registry) BalanceOf(owner common.Address) uint64 {
	return r.balances[owner]
}

func (r *Registry) IsLocked(id *big.Int) bool {
	if checkID(id) != nil {
		return false
	}
	_, ok := r.locked[key(id)]
	return ok
}

func (r *Registry) LockMemo(id *big.Int) []byte {
	if checkID(id) != nil {
		return nil
	}
	return common.CopyBytes(r.locked[key(id)])
}

// Certificates lists the ids currently packed.
func (r *Registry) Certificates() []*big.Int {
	ids := make([]*big.Int, 0, len(r.certificates))
	for k := range r.certificates {
		ids = append(ids, k.Big())
	}
	return ids
}

// AddToLockedList locks id, whether or not it exists yet.
func (r *Registry) AddToLockedList(actor common.Address, id *big.Int, memo []byte) error {
	if err := r.operatorRole.Check(actor); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	r.locked[key(id)] = common.CopyBytes(memo)
	log.Debugf("[PACK] certificate %s locked", id)
	r.sink.Emit(LockPlaced{ID: new(big.Int).Set(id), Memo: common.CopyBytes(memo)})
	return nil
}

func (r *Registry) RemoveFromLockedList(actor common.Address, id *big.Int) error {
	if err := r.operatorRole.Check(actor); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	delete(r.locked, key(id))
	log.Debugf("[PACK] certificate %s unlocked", id)
	r.sink.Emit(LockReleased{ID: new(big.Int).Set(id)})
	return nil
}

func (r *Registry) checkBlocked(accounts ...common.Address) error {
	for _, a := range accounts {
		if r.token.IsBlocked(a) {
			return &token.BlockedAccountError{Account: a}
		}
	}
	return nil
}

func (r *Registry) checkUnlocked(id *big.Int) error {
	if _, ok := r.locked[key(id)]; ok {
		return &TokenLockedError{ID: new(big.Int).Set(id)}
	}
	return nil
}

func (r *Registry) existing(id *big.Int) (common.Address, error) {
	if err := checkID(id); err != nil {
		return common.Address{}, err
	}
	owner, ok := r.owners[key(id)]
	if !ok {
		return common.Address{}, &NoSuchCertificateError{ID: new(big.Int).Set(id)}
	}
	return owner, nil
}

// checkNew validates binding a new certificate id.
func (r *Registry) checkNew(id *big.Int) error {
	if err := checkID(id); err != nil {
		return err
	}
	if _, ok := r.certificates[key(id)]; ok {
		return &DuplicateCertificateError{ID: new(big.Int).Set(id)}
	}
	return r.checkUnlocked(id)
}

func (r *Registry) bind(owner common.Address, id, amount *big.Int) {
	k := key(id)
	r.certificates[k] = new(big.Int).Set(amount)
	r.owners[k] = owner
	r.balances[owner]++
	r.sink.Emit(Transfer{From: common.Address{}, To: owner, ID: new(big.Int).Set(id)})
	r.sink.Emit(Packed{Owner: owner, ID: new(big.Int).Set(id), Amount: new(big.Int).Set(amount)})
}

func (r *Registry) unbind(owner common.Address, id *big.Int) *big.Int {
	k := key(id)
	amount := r.certificates[k]
	delete(r.certificates, k)
	delete(r.owners, k)
	delete(r.approvals, k)
	r.decBalance(owner)
	r.sink.Emit(Transfer{From: owner, To: common.Address{}, ID: new(big.Int).Set(id)})
	r.sink.Emit(Unpacked{Owner: owner, ID: new(big.Int).Set(id), Amount: new(big.Int).Set(amount)})
	return amount
}

func (r *Registry) decBalance(owner common.Address) {
	if r.balances[owner] <= 1 {
		delete(r.balances, owner)
		return
	}
	r.balances[owner]--
}

// checkOwnedUnpack validates that holder may unpack id and returns its amount.
func (r *Registry) checkOwnedUnpack(holder common.Address, id *big.Int) (*big.Int, error) {
	owner, err := r.existing(id)
	if err != nil {
		return nil, err
	}
	if owner != holder {
		return nil, &NotOwnerError{ID: new(big.Int).Set(id), Caller: holder}
	}
	if err := r.checkUnlocked(id); err != nil {
		return nil, err
	}
	if err := r.checkBlocked(holder); err != nil {
		return nil, err
	}
	return r.certificates[key(id)], nil
}

func sumOf(amounts []*big.Int) *big.Int {
	total := new(big.Int)
	for _, a := range amounts {
		total.Add(total, a)
	}
	return total
}

func mismatch(lengths ...int) bool {
	for _, l := range lengths[1:] {
		if l != lengths[0] {
			return true
		}
	}
	return false
}

func idList(ids []*big.Int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
