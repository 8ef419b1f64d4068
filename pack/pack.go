package pack

import (
	"math/big"

	"github.com/dan13ram/mtoken-bridge/token"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// Pack escrows amount of the operator's tokens under certificate id and
// issues the certificate to the operator.
func (r *Registry) Pack(actor common.Address, amount, id *big.Int) error {
	if err := r.operatorRole.Check(actor); err != nil {
		return err
	}
	return r.pack(actor, amount, id)
}

// PackWithSignature lets any holder pack its own tokens with an
// authorization signed by the pack signer.
func (r *Registry) PackWithSignature(actor common.Address, amount, id *big.Int, deadline uint64, sig []byte) error {
	if now := r.token.Governor().Now(); now > deadline {
		return &SignatureExpiredError{Deadline: deadline}
	}
	if err := checkID(id); err != nil {
		return err
	}
	digest, err := Digest(r.Domain(), Authorization{Owner: actor, Amount: amount, Bullion: id, Deadline: deadline})
	if err != nil {
		return err
	}
	signer, err := RecoverSigner(digest, sig)
	if err != nil {
		return err
	}
	if signer != r.packSigner.Current() {
		return &InvalidSignerError{Recovered: signer}
	}
	return r.pack(actor, amount, id)
}

func (r *Registry) pack(owner common.Address, amount, id *big.Int) error {
	if err := r.checkNew(id); err != nil {
		return err
	}
	if err := r.token.CheckPack(r.address, owner, amount); err != nil {
		return err
	}
	if err := r.token.Pack(r.address, owner, amount); err != nil {
		return err
	}
	r.bind(owner, id, amount)
	log.Debugf("[PACK] certificate %s packed with %s for %s", id, amount, owner.Hex())
	return nil
}

// Unpack burns certificate id held by actor and releases its amount.
func (r *Registry) Unpack(actor common.Address, id *big.Int) error {
	amount, err := r.checkOwnedUnpack(actor, id)
	if err != nil {
		return err
	}
	if err := r.token.CheckUnpack(r.address, actor, amount); err != nil {
		return err
	}
	r.unpack(actor, id)
	return nil
}

func (r *Registry) unpack(holder common.Address, id *big.Int) *big.Int {
	amount := new(big.Int).Set(r.certificates[key(id)])
	if err := r.token.Unpack(r.address, holder, amount); err != nil {
		// checked by the caller
		log.Error("[PACK] Error releasing certificate ", id, ": ", err)
	}
	r.unbind(holder, id)
	log.Debugf("[PACK] certificate %s unpacked by %s", id, holder.Hex())
	return amount
}

// MintAndPack submits a delayed mint into the registry for the certificate.
// The first call records the request and returns false. Once the delay has
// passed the same call mints, issues the certificate to the operator and
// returns true.
func (r *Registry) MintAndPack(actor common.Address, amount, id, nonce *big.Int) (bool, error) {
	if err := r.operatorRole.Check(actor); err != nil {
		return false, err
	}
	if err := r.checkNew(id); err != nil {
		return false, err
	}
	if _, err := r.token.CheckMintTo(r.address, r.address, amount, nonce); err != nil {
		return false, err
	}
	return r.mintAndPack(actor, amount, id, nonce)
}

func (r *Registry) mintAndPack(operator common.Address, amount, id, nonce *big.Int) (bool, error) {
	minted, err := r.token.MintTo(r.address, r.address, amount, nonce)
	if err != nil || !minted {
		return false, err
	}
	r.bind(operator, id, amount)
	log.Debugf("[PACK] certificate %s minted and packed with %s", id, amount)
	return true, nil
}

// UnpackAndRedeem unpacks a certificate held by the operator and redeems
// the released amount towards to.
func (r *Registry) UnpackAndRedeem(actor common.Address, id *big.Int, to common.Address, memo []byte) error {
	if err := r.operatorRole.Check(actor); err != nil {
		return err
	}
	amount, err := r.checkOwnedUnpack(actor, id)
	if err != nil {
		return err
	}
	if err := r.checkUnpackAndRedeem(actor, amount); err != nil {
		return err
	}
	r.unpackAndRedeem(actor, id, to, memo)
	return nil
}

// checkUnpackAndRedeem validates releasing total to holder and burning it
// again. The redeem is checked against the escrow, which holds total until
// the release.
func (r *Registry) checkUnpackAndRedeem(holder common.Address, total *big.Int) error {
	if err := r.token.CheckUnpack(r.address, holder, total); err != nil {
		return err
	}
	return r.token.CheckRedeemFrom(r.address, r.address, total)
}

func (r *Registry) unpackAndRedeem(holder common.Address, id *big.Int, to common.Address, memo []byte) {
	amount := r.unpack(holder, id)
	if err := r.token.RedeemFrom(r.address, holder, amount, to, memo); err != nil {
		log.Error("[PACK] Error redeeming certificate ", id, ": ", err)
	}
}

func (r *Registry) BatchPack(actor common.Address, amounts, ids []*big.Int) error {
	if err := r.operatorRole.Check(actor); err != nil {
		return err
	}
	if mismatch(len(amounts), len(ids)) {
		return token.ErrArgsMismatch
	}
	if err := r.checkNewBatch(ids); err != nil {
		return err
	}
	for _, amount := range amounts {
		if err := r.token.CheckPack(r.address, actor, amount); err != nil {
			return err
		}
	}
	if err := r.token.CheckPack(r.address, actor, sumOf(amounts)); err != nil {
		return err
	}
	for i := range ids {
		if err := r.pack(actor, amounts[i], ids[i]); err != nil {
			return err
		}
	}
	log.Debugf("[PACK] batch packed %s", idList(ids))
	return nil
}

func (r *Registry) BatchUnpack(actor common.Address, ids []*big.Int) error {
	if err := r.operatorRole.Check(actor); err != nil {
		return err
	}
	total, err := r.checkUnpackBatch(actor, ids)
	if err != nil {
		return err
	}
	if err := r.token.CheckUnpack(r.address, actor, total); err != nil {
		return err
	}
	for _, id := range ids {
		r.unpack(actor, id)
	}
	return nil
}

// BatchMintAndPack runs MintAndPack for every (amount, id) pair with a
// shared nonce. Either every pair is recorded or executed, or none is.
func (r *Registry) BatchMintAndPack(actor common.Address, amounts, ids []*big.Int, nonce *big.Int) ([]bool, error) {
	if err := r.operatorRole.Check(actor); err != nil {
		return nil, err
	}
	if mismatch(len(amounts), len(ids)) {
		return nil, token.ErrArgsMismatch
	}
	if err := r.checkNewBatch(ids); err != nil {
		return nil, err
	}

	requests := make(map[common.Hash]bool, len(ids))
	minting := new(big.Int)
	for _, amount := range amounts {
		execute, err := r.token.CheckMintTo(r.address, r.address, amount, nonce)
		if err != nil {
			return nil, err
		}
		id := token.RequestID(r.address, amount, nonce)
		if requests[id] {
			return nil, ErrDuplicateRequest
		}
		requests[id] = true
		if execute {
			minting.Add(minting, amount)
		}
	}
	if minting.Sign() > 0 {
		if err := r.token.CheckMint(r.address, minting); err != nil {
			return nil, err
		}
	}

	results := make([]bool, len(ids))
	for i := range ids {
		minted, err := r.mintAndPack(actor, amounts[i], ids[i], nonce)
		if err != nil {
			return nil, err
		}
		results[i] = minted
	}
	return results, nil
}

func (r *Registry) BatchUnpackAndRedeem(actor common.Address, ids []*big.Int, to common.Address, memo []byte) error {
	if err := r.operatorRole.Check(actor); err != nil {
		return err
	}
	total, err := r.checkUnpackBatch(actor, ids)
	if err != nil {
		return err
	}
	if err := r.checkUnpackAndRedeem(actor, total); err != nil {
		return err
	}
	for _, id := range ids {
		r.unpackAndRedeem(actor, id, to, memo)
	}
	return nil
}

func (r *Registry) checkNewBatch(ids []*big.Int) error {
	seen := make(map[common.Hash]bool, len(ids))
	for _, id := range ids {
		if err := r.checkNew(id); err != nil {
			return err
		}
		if seen[key(id)] {
			return &DuplicateCertificateError{ID: new(big.Int).Set(id)}
		}
		seen[key(id)] = true
	}
	return nil
}

func (r *Registry) checkUnpackBatch(holder common.Address, ids []*big.Int) (*big.Int, error) {
	seen := make(map[common.Hash]bool, len(ids))
	total := new(big.Int)
	for _, id := range ids {
		amount, err := r.checkOwnedUnpack(holder, id)
		if err != nil {
			return nil, err
		}
		if seen[key(id)] {
			return nil, &NoSuchCertificateError{ID: new(big.Int).Set(id)}
		}
		seen[key(id)] = true
		total.Add(total, amount)
	}
	return total, nil
}
