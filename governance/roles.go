package governance

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	RoleOwner         = "owner"
	RoleOperator      = "operator"
	RoleRevoker       = "revoker"
	RoleMessager      = "messager"
	RoleNFTContract   = "nft contract"
	RoleOperatorOrNFT = "operator or nft contract"
)

// Role names a privilege and decides who holds it at call time.
type Role struct {
	Name  string
	Holds func(actor common.Address) bool
}

func (r Role) Check(actor common.Address) error {
	if r.Holds == nil || !r.Holds(actor) {
		return &UnauthorizedError{Role: r.Name, Caller: actor}
	}
	return nil
}

// AddressRole is held by whoever the getter currently returns. A zero
// address never holds a role.
func AddressRole(name string, holder func() common.Address) Role {
	return Role{
		Name: name,
		Holds: func(actor common.Address) bool {
			h := holder()
			return h != (common.Address{}) && h == actor
		},
	}
}

// AnyOf is held by the holders of any of the given roles.
func AnyOf(name string, roles ...Role) Role {
	return Role{
		Name: name,
		Holds: func(actor common.Address) bool {
			for _, r := range roles {
				if r.Holds != nil && r.Holds(actor) {
					return true
				}
			}
			return false
		},
	}
}
