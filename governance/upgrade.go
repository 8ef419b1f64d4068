package governance

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
)

const FieldUpgrade = "upgradeToAndCall"

type UpgradeTarget struct {
	Implementation common.Address
	DataHash       common.Hash
}

// Upgrader gates replacement of an instance's implementation behind the
// shared delay. Requests always reschedule; execution is a separate call
// that must present the exact implementation and call data requested.
type Upgrader struct {
	target         *Param[UpgradeTarget]
	implementation common.Address
	version        uint64
}

func NewUpgrader(g *Governor, owner Role, implementation common.Address) *Upgrader {
	return &Upgrader{
		target:         NewParam(g, FieldUpgrade, UpgradeTarget{}, owner, Comparable[UpgradeTarget]()),
		implementation: implementation,
		version:        1,
	}
}

func (u *Upgrader) Implementation() common.Address { return u.implementation }
func (u *Upgrader) Version() uint64                { return u.version }
func (u *Upgrader) NextImplementation() common.Address {
	return u.target.pending.Implementation
}
func (u *Upgrader) NextDataHash() common.Hash { return u.target.pending.DataHash }
func (u *Upgrader) EffectiveAt() uint64       { return u.target.effectiveAt }

func (u *Upgrader) RequestUpgrade(actor common.Address, implementation common.Address, data []byte) error {
	if err := u.target.setter.Check(actor); err != nil {
		return err
	}
	g := u.target.gov
	u.target.schedule(g.Now(), UpgradeTarget{
		Implementation: implementation,
		DataHash:       crypto.Keccak256Hash(data),
	})
	log.Debugf("[GOVERNANCE] upgrade to %s requested, effective at %d", implementation.Hex(), u.target.effectiveAt)
	g.sink.Emit(UpgradeRequested{Implementation: implementation, Data: data, EffectiveAt: u.target.effectiveAt})
	return nil
}

// Upgrade executes a matured upgrade request.
func (u *Upgrader) Upgrade(actor common.Address, implementation common.Address, data []byte) error {
	if err := u.target.setter.Check(actor); err != nil {
		return err
	}
	g := u.target.gov
	next := u.target.pending
	dataHash := crypto.Keccak256Hash(data)
	if implementation != next.Implementation || dataHash != next.DataHash {
		return &InvalidUpgradeTargetError{Implementation: implementation, DataHash: dataHash}
	}
	now := g.Now()
	if !u.target.matured(now) {
		return &TooEarlyError{Field: FieldUpgrade, EffectiveAt: u.target.effectiveAt, Now: now}
	}
	if implementation == (common.Address{}) {
		return ErrZeroAddress
	}
	u.target.current = next
	u.target.effectiveAt = 0
	u.implementation = implementation
	u.version++
	log.Infof("[GOVERNANCE] upgraded to %s (version %d)", implementation.Hex(), u.version)
	g.sink.Emit(Upgraded{Implementation: implementation, Version: u.version})
	return nil
}

func (u *Upgrader) RevokeUpgrade(actor common.Address) error {
	return u.target.Revoke(actor)
}
