package token

import (
	"fmt"
	"math/big"

	"github.com/dan13ram/mtoken-bridge/oracle"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// CheckMintTo reports whether a MintTo call with the same arguments would
// execute the mint (true) or record a new request (false), without changing
// state.
func (t *MToken) CheckMintTo(actor, receiver common.Address, amount, nonce *big.Int) (bool, error) {
	if err := t.operatorOrNFT.Check(actor); err != nil {
		return false, err
	}
	if err := checkAmount(amount); err != nil {
		return false, err
	}
	if err := checkAmount(nonce); err != nil {
		return false, err
	}
	id := RequestID(receiver, amount, nonce)
	if !t.requests.Pending(id) {
		return false, nil
	}
	if !t.requests.Matured(id, t.gov.Now(), t.gov.DelaySeconds()) {
		return false, &MintTooEarlyError{Receiver: receiver, Amount: copyInt(amount), Nonce: copyInt(nonce)}
	}
	return true, t.CheckMint(receiver, amount)
}

// CheckMint validates minting amount to receiver out of the mint budget.
func (t *MToken) CheckMint(receiver common.Address, amount *big.Int) error {
	if err := t.budget.CheckDebit(amount); err != nil {
		return err
	}
	return t.ledger.checkMint(receiver, amount)
}

// MintTo submits or executes a delayed mint. The first call for a
// (receiver, amount, nonce) records the request and returns false; a call
// after the delay debits the mint budget, mints and returns true.
func (t *MToken) MintTo(actor, receiver common.Address, amount, nonce *big.Int) (bool, error) {
	execute, err := t.CheckMintTo(actor, receiver, amount, nonce)
	if err != nil {
		return false, err
	}

	id := RequestID(receiver, amount, nonce)
	if !execute {
		t.requests.record(id, t.gov.Now())
		log.Debugf("[MTOKEN] mint request %s recorded: %s to %s nonce %s", id.Hex(), amount, receiver.Hex(), nonce)
		t.sink.Emit(MintRequested{Receiver: receiver, Amount: copyInt(amount), Nonce: copyInt(nonce)})
		return false, nil
	}

	if err := t.budget.debit(amount); err != nil {
		return false, err
	}
	t.requests.remove(id)
	t.ledger.mint(receiver, amount)
	log.Debugf("[MTOKEN] mint request %s executed", id.Hex())
	t.sink.Emit(Minted{ID: id, Receiver: receiver, Amount: copyInt(amount), Nonce: copyInt(nonce)})
	return true, nil
}

// RevokeRequest drops a pending mint request whether or not it matured.
func (t *MToken) RevokeRequest(actor common.Address, id common.Hash) error {
	if err := t.gov.Revoker().Check(actor); err != nil {
		return err
	}
	t.requests.remove(id)
	log.Debugf("[MTOKEN] mint request %s revoked", id.Hex())
	t.sink.Emit(RequestRevoked{ID: id})
	return nil
}

// AttestedReserve reads the reserve through the configured feeds.
func (t *MToken) AttestedReserve() (*big.Int, error) {
	if !t.mainChain {
		return nil, ErrNoReserveFeed
	}
	var primary, fallback oracle.Feed
	if t.feeds != nil {
		if f, ok := t.feeds.Resolve(t.reserveFeed.Current()); ok {
			primary = f
		}
		if f, ok := t.feeds.Resolve(t.fallbackFeed.Current()); ok {
			fallback = f
		}
	}
	return t.oracle.AttestedReserve(primary, fallback)
}

func (t *MToken) IncreaseMintBudget(actor common.Address, amount *big.Int) error {
	if err := t.operatorRole.Check(actor); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if !t.mainChain {
		return ErrNoReserveFeed
	}
	attested, err := t.AttestedReserve()
	if err != nil {
		return err
	}
	if err := t.budget.increase(amount, attested); err != nil {
		return err
	}
	log.Debugf("[MTOKEN] mint budget increased by %s to %s", amount, t.budget.mintBudget)
	t.sink.Emit(MintBudgetChanged{MintBudget: t.budget.MintBudget(), UsedReserve: t.budget.UsedReserve()})
	return nil
}

func (t *MToken) DecreaseMintBudget(actor common.Address, amount *big.Int) error {
	if err := t.operatorRole.Check(actor); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := t.budget.decrease(amount); err != nil {
		return fmt.Errorf("decrease mint budget by %s: %w", amount, err)
	}
	log.Debugf("[MTOKEN] mint budget decreased by %s to %s", amount, t.budget.mintBudget)
	t.sink.Emit(MintBudgetChanged{MintBudget: t.budget.MintBudget(), UsedReserve: t.budget.UsedReserve()})
	return nil
}

// Redeem burns amount from the caller and returns it to the mint budget.
// Used reserve is left untouched.
func (t *MToken) Redeem(actor common.Address, amount *big.Int, to common.Address, memo []byte) error {
	if err := t.operatorOrNFT.Check(actor); err != nil {
		return err
	}
	return t.redeem(actor, amount, to, memo)
}

// RedeemFrom burns from holder on behalf of the certificate registry.
func (t *MToken) RedeemFrom(actor, holder common.Address, amount *big.Int, to common.Address, memo []byte) error {
	if err := t.nftRole.Check(actor); err != nil {
		return err
	}
	return t.redeem(holder, amount, to, memo)
}

// CheckRedeemFrom validates a RedeemFrom call without changing state.
func (t *MToken) CheckRedeemFrom(actor, holder common.Address, amount *big.Int) error {
	if err := t.nftRole.Check(actor); err != nil {
		return err
	}
	return t.checkRedeem(holder, amount)
}

func (t *MToken) checkRedeem(holder common.Address, amount *big.Int) error {
	if err := t.ledger.checkBurn(holder, amount); err != nil {
		return err
	}
	_, err := checkedAdd(t.budget.mintBudget, amount)
	return err
}

func (t *MToken) redeem(holder common.Address, amount *big.Int, to common.Address, memo []byte) error {
	if err := t.checkRedeem(holder, amount); err != nil {
		return err
	}
	t.ledger.burn(holder, amount)
	if err := t.budget.credit(amount); err != nil {
		return err
	}
	log.Debugf("[MTOKEN] redeemed %s from %s for %s", amount, holder.Hex(), to.Hex())
	t.sink.Emit(Redeem{To: to, Amount: copyInt(amount), Memo: common.CopyBytes(memo)})
	return nil
}

// CheckPack validates moving amount from owner into the registry.
func (t *MToken) CheckPack(actor, owner common.Address, amount *big.Int) error {
	if err := t.nftRole.Check(actor); err != nil {
		return err
	}
	return t.ledger.checkTransfer(owner, owner, actor, amount)
}

// Pack moves amount from owner into the registry's holding account.
func (t *MToken) Pack(actor, owner common.Address, amount *big.Int) error {
	if err := t.CheckPack(actor, owner, amount); err != nil {
		return err
	}
	t.ledger.move(owner, actor, amount)
	return nil
}

// CheckUnpack validates releasing amount from the registry to owner.
func (t *MToken) CheckUnpack(actor, owner common.Address, amount *big.Int) error {
	if err := t.nftRole.Check(actor); err != nil {
		return err
	}
	return t.ledger.checkTransfer(owner, actor, owner, amount)
}

// Unpack releases amount from the registry's holding account to owner.
func (t *MToken) Unpack(actor, owner common.Address, amount *big.Int) error {
	if err := t.CheckUnpack(actor, owner, amount); err != nil {
		return err
	}
	t.ledger.move(actor, owner, amount)
	return nil
}
