package governance

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func capitalize(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

type ParamRequested struct {
	Field       string
	Current     interface{}
	Next        interface{}
	EffectiveAt uint64
}

func (e ParamRequested) EventName() string { return "Set" + capitalize(e.Field) + "Request" }

type ParamEffected struct {
	Field string
	Value interface{}
}

func (e ParamEffected) EventName() string { return "Set" + capitalize(e.Field) + "Effected" }

type ParamRevoked struct {
	Field string
}

func (e ParamRevoked) EventName() string { return "RevokeNext" + capitalize(e.Field) }

type UpgradeRequested struct {
	Implementation common.Address
	Data           []byte
	EffectiveAt    uint64
}

func (UpgradeRequested) EventName() string { return "UpgradeToAndCallRequest" }

type Upgraded struct {
	Implementation common.Address
	Version        uint64
}

func (Upgraded) EventName() string { return "Upgraded" }
