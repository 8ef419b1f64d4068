package pack

import (
	"fmt"
	"math/big"

	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/token"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

func (r *Registry) GetApproved(id *big.Int) common.Address {
	if checkID(id) != nil {
		return common.Address{}
	}
	return r.approvals[key(id)]
}

func (r *Registry) IsApprovedForAll(owner, operator common.Address) bool {
	return r.approvedAll[owner][operator]
}

// Approve lets approved move certificate id. Only the holder or one of its
// approved operators may approve.
func (r *Registry) Approve(actor, approved common.Address, id *big.Int) error {
	owner, err := r.existing(id)
	if err != nil {
		return err
	}
	if err := r.checkBlocked(actor, approved); err != nil {
		return err
	}
	if actor != owner && !r.approvedAll[owner][actor] {
		return &NotApprovedError{ID: new(big.Int).Set(id), Caller: actor}
	}
	if approved == (common.Address{}) {
		delete(r.approvals, key(id))
	} else {
		r.approvals[key(id)] = approved
	}
	r.sink.Emit(Approval{Owner: owner, Approved: approved, ID: new(big.Int).Set(id)})
	return nil
}

func (r *Registry) SetApprovalForAll(actor, operator common.Address, approved bool) error {
	if err := r.checkBlocked(actor, operator); err != nil {
		return err
	}
	if operator == (common.Address{}) {
		return governance.ErrZeroAddress
	}
	if approved {
		if r.approvedAll[actor] == nil {
			r.approvedAll[actor] = make(map[common.Address]bool)
		}
		r.approvedAll[actor][operator] = true
	} else {
		delete(r.approvedAll[actor], operator)
	}
	return nil
}

func (r *Registry) checkTransfer(actor, from, to common.Address, id *big.Int) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := r.checkBlocked(actor, from, to); err != nil {
		return err
	}
	if to == r.address {
		return token.ErrTransferToContract
	}
	if to == (common.Address{}) {
		return governance.ErrZeroAddress
	}
	if err := r.checkUnlocked(id); err != nil {
		return err
	}
	owner, err := r.existing(id)
	if err != nil {
		return err
	}
	if owner != from {
		return &NotOwnerError{ID: new(big.Int).Set(id), Caller: from}
	}
	if actor != from && r.approvals[key(id)] != actor && !r.approvedAll[from][actor] {
		return &NotApprovedError{ID: new(big.Int).Set(id), Caller: actor}
	}
	return nil
}

func (r *Registry) move(from, to common.Address, id *big.Int) {
	k := key(id)
	delete(r.approvals, k)
	r.owners[k] = to
	r.decBalance(from)
	r.balances[to]++
	log.Debugf("[PACK] certificate %s moved from %s to %s", id, from.Hex(), to.Hex())
	r.sink.Emit(Transfer{From: from, To: to, ID: new(big.Int).Set(id)})
}

func (r *Registry) TransferFrom(actor, from, to common.Address, id *big.Int) error {
	if err := r.checkTransfer(actor, from, to, id); err != nil {
		return err
	}
	r.move(from, to, id)
	return nil
}

// SafeTransferFrom is TransferFrom that also asks a registered receiver at
// to whether it accepts the certificate.
func (r *Registry) SafeTransferFrom(actor, from, to common.Address, id *big.Int, data []byte) error {
	if err := r.checkTransfer(actor, from, to, id); err != nil {
		return err
	}
	if err := r.checkReceiver(actor, from, to, id, data); err != nil {
		return err
	}
	r.move(from, to, id)
	return nil
}

func (r *Registry) checkReceiver(actor, from, to common.Address, id *big.Int, data []byte) error {
	receiver, ok := r.receivers[to]
	if !ok {
		return nil
	}
	if err := receiver.OnCertificateReceived(actor, from, new(big.Int).Set(id), common.CopyBytes(data)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRejected, to.Hex(), err)
	}
	return nil
}

// MultiTransferFrom moves ids[i] to tos[i]. Nothing moves unless every
// transfer is valid.
func (r *Registry) MultiTransferFrom(actor, from common.Address, tos []common.Address, ids []*big.Int) error {
	if err := r.checkMulti(actor, from, tos, ids); err != nil {
		return err
	}
	for i := range ids {
		r.move(from, tos[i], ids[i])
	}
	return nil
}

func (r *Registry) MultiSafeTransferFrom(actor, from common.Address, tos []common.Address, ids []*big.Int, data []byte) error {
	if err := r.checkMulti(actor, from, tos, ids); err != nil {
		return err
	}
	for i := range ids {
		if err := r.checkReceiver(actor, from, tos[i], ids[i], data); err != nil {
			return err
		}
	}
	for i := range ids {
		r.move(from, tos[i], ids[i])
	}
	return nil
}

func (r *Registry) checkMulti(actor, from common.Address, tos []common.Address, ids []*big.Int) error {
	if mismatch(len(tos), len(ids)) {
		return token.ErrArgsMismatch
	}
	seen := make(map[common.Hash]bool, len(ids))
	for i, id := range ids {
		if err := r.checkTransfer(actor, from, tos[i], id); err != nil {
			return err
		}
		if seen[key(id)] {
			return &NotOwnerError{ID: new(big.Int).Set(id), Caller: from}
		}
		seen[key(id)] = true
	}
	return nil
}
