package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)

	requestArgs = abi.Arguments{{Type: addressType}, {Type: uint256Type}, {Type: uint256Type}}
)

// RequestID is keccak256(abi.encode(receiver, amount, nonce)).
func RequestID(receiver common.Address, amount, nonce *big.Int) common.Hash {
	packed, err := requestArgs.Pack(receiver, copyInt(amount), copyInt(nonce))
	if err != nil {
		// only reachable with amounts outside uint256, rejected before hashing
		panic(err)
	}
	return crypto.Keccak256Hash(packed)
}

// RequestLedger maps pending mint request ids to their submission time.
type RequestLedger struct {
	submitted map[common.Hash]uint64
}

func NewRequestLedger() *RequestLedger {
	return &RequestLedger{submitted: make(map[common.Hash]uint64)}
}

// SubmittedAt returns 0 when there is no pending request for id.
func (r *RequestLedger) SubmittedAt(id common.Hash) uint64 {
	return r.submitted[id]
}

func (r *RequestLedger) Pending(id common.Hash) bool {
	_, ok := r.submitted[id]
	return ok
}

func (r *RequestLedger) Len() int {
	return len(r.submitted)
}

// Matured reports whether a pending request may execute at now.
func (r *RequestLedger) Matured(id common.Hash, now, delay uint64) bool {
	ts, ok := r.submitted[id]
	return ok && now >= ts && now-ts >= delay
}

func (r *RequestLedger) record(id common.Hash, now uint64) {
	r.submitted[id] = now
}

func (r *RequestLedger) remove(id common.Hash) {
	delete(r.submitted, id)
}
