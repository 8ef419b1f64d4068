package governance

import (
	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

const (
	MinDelay uint64 = 3600

	FieldDelay = "delay"
)

// Policy plugs value comparison and validation into a Param.
type Policy[T any] struct {
	Equal    func(a, b T) bool
	Validate func(v T) error
}

func Comparable[T comparable]() Policy[T] {
	return Policy[T]{
		Equal: func(a, b T) bool { return a == b },
	}
}

// NonZeroAddress rejects the zero address on request.
var NonZeroAddress = Policy[common.Address]{
	Equal: func(a, b common.Address) bool { return a == b },
	Validate: func(v common.Address) error {
		if v == (common.Address{}) {
			return ErrZeroAddress
		}
		return nil
	},
}

var delayPolicy = Policy[uint64]{
	Equal: func(a, b uint64) bool { return a == b },
	Validate: func(v uint64) error {
		if v < MinDelay {
			return &DelayTooSmallError{Delay: v, Min: MinDelay}
		}
		return nil
	},
}

// Governor holds what every delayed parameter of one deployment shares:
// the clock, the event sink, the delay and the revoker.
type Governor struct {
	clock   Clock
	sink    events.Sink
	revoker Role
	delay   *Param[uint64]
}

func NewGovernor(clock Clock, sink events.Sink, owner Role, revoker Role) *Governor {
	if sink == nil {
		sink = events.Discard
	}
	g := &Governor{
		clock:   clock,
		sink:    sink,
		revoker: revoker,
	}
	g.delay = NewParam(g, FieldDelay, uint64(0), owner, delayPolicy)
	// the delay gates its own changes
	g.delay.delayOf = func() uint64 { return g.delay.current }
	return g
}

func (g *Governor) Now() uint64 {
	return g.clock.Now()
}

func (g *Governor) Clock() Clock {
	return g.clock
}

func (g *Governor) Sink() events.Sink {
	return g.sink
}

func (g *Governor) Revoker() Role {
	return g.revoker
}

func (g *Governor) Delay() *Param[uint64] {
	return g.delay
}

// DelaySeconds is the delay currently in force.
func (g *Governor) DelaySeconds() uint64 {
	return g.delay.current
}

// Param is a governed value that changes only after the delay has passed
// since its last request, and can be revoked before then.
type Param[T any] struct {
	gov         *Governor
	field       string
	setter      Role
	policy      Policy[T]
	delayOf     func() uint64
	current     T
	pending     T
	effectiveAt uint64
}

func NewParam[T any](g *Governor, field string, initial T, setter Role, policy Policy[T]) *Param[T] {
	return &Param[T]{
		gov:     g,
		field:   field,
		setter:  setter,
		policy:  policy,
		current: initial,
	}
}

func (p *Param[T]) Field() string       { return p.field }
func (p *Param[T]) Current() T          { return p.current }
func (p *Param[T]) Pending() T          { return p.pending }
func (p *Param[T]) EffectiveAt() uint64 { return p.effectiveAt }
func (p *Param[T]) HasPending() bool    { return p.effectiveAt != 0 }
func (p *Param[T]) SetterRole() Role    { return p.setter }
func (p *Param[T]) Governor() *Governor { return p.gov }
func (p *Param[T]) equal(a, b T) bool   { return p.policy.Equal(a, b) }
func (p *Param[T]) matured(now uint64) bool {
	return p.effectiveAt != 0 && now >= p.effectiveAt
}

func (p *Param[T]) delaySeconds() uint64 {
	if p.delayOf != nil {
		return p.delayOf()
	}
	return p.gov.DelaySeconds()
}

// Request executes a matured request for the same value, or (re)schedules
// value otherwise. Rescheduling always restarts the delay.
func (p *Param[T]) Request(actor common.Address, value T) error {
	if err := p.setter.Check(actor); err != nil {
		return err
	}
	now := p.gov.Now()
	if p.matured(now) && p.equal(p.pending, value) {
		p.current = p.pending
		log.Debugf("[GOVERNANCE] %s effected: %v", p.field, value)
		p.gov.sink.Emit(ParamEffected{Field: p.field, Value: value})
		return nil
	}
	if p.policy.Validate != nil {
		if err := p.policy.Validate(value); err != nil {
			return err
		}
	}
	p.schedule(now, value)
	log.Debugf("[GOVERNANCE] %s requested: %v effective at %d", p.field, value, p.effectiveAt)
	p.gov.sink.Emit(ParamRequested{Field: p.field, Current: p.current, Next: value, EffectiveAt: p.effectiveAt})
	return nil
}

// schedule never stores 0, which marks an empty slot.
func (p *Param[T]) schedule(now uint64, value T) {
	p.pending = value
	p.effectiveAt = max(now+p.delaySeconds(), 1)
}

// Revoke clears the pending change; the current value is untouched.
func (p *Param[T]) Revoke(actor common.Address) error {
	if err := p.gov.revoker.Check(actor); err != nil {
		return err
	}
	p.effectiveAt = 0
	log.Debugf("[GOVERNANCE] %s revoked", p.field)
	p.gov.sink.Emit(ParamRevoked{Field: p.field})
	return nil
}
