package pack

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	DomainName    = "BNFT"
	DomainVersion = "1"

	primaryType = "Pack"
)

var typesStandard = apitypes.Types{
	"EIP712Domain": {
		{
			Name: "name",
			Type: "string",
		},
		{
			Name: "version",
			Type: "string",
		},
		{
			Name: "chainId",
			Type: "uint256",
		},
		{
			Name: "verifyingContract",
			Type: "address",
		},
	},
	"Pack": {
		{
			Name: "owner",
			Type: "address",
		},
		{
			Name: "amount",
			Type: "uint256",
		},
		{
			Name: "bullion",
			Type: "uint256",
		},
		{
			Name: "deadline",
			Type: "uint256",
		},
	},
}

// Domain identifies the registry a pack authorization is valid for.
type Domain struct {
	ChainID           *big.Int
	VerifyingContract common.Address
}

// Authorization is the signed content of a pack-with-signature call.
type Authorization struct {
	Owner    common.Address
	Amount   *big.Int
	Bullion  *big.Int
	Deadline uint64
}

func typedData(domain Domain, auth Authorization) apitypes.TypedData {
	chainID := new(big.Int)
	if domain.ChainID != nil {
		chainID.Set(domain.ChainID)
	}
	return apitypes.TypedData{
		Types:       typesStandard,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           (*math.HexOrDecimal256)(chainID),
			VerifyingContract: domain.VerifyingContract.String(),
		},
		Message: apitypes.TypedDataMessage{
			"owner":    auth.Owner.String(),
			"amount":   auth.Amount.String(),
			"bullion":  auth.Bullion.String(),
			"deadline": new(big.Int).SetUint64(auth.Deadline).String(),
		},
	}
}

// Digest is the EIP-712 hash a pack signer signs.
func Digest(domain Domain, auth Authorization) (common.Hash, error) {
	if auth.Amount == nil || auth.Bullion == nil {
		return common.Hash{}, fmt.Errorf("%w: missing amount or bullion", ErrInvalidSignature)
	}
	data := typedData(domain, auth)

	domainSeparator, err := data.HashStruct("EIP712Domain", data.Domain.Map())
	if err != nil {
		return common.Hash{}, err
	}
	typedDataHash, err := data.HashStruct(data.PrimaryType, data.Message)
	if err != nil {
		return common.Hash{}, err
	}

	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(typedDataHash)))
	return crypto.Keccak256Hash(rawData), nil
}

// RecoverSigner returns the address that produced sig over digest. sig is
// r || s || v with v either 0/1 or 27/28.
func RecoverSigner(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}
	normalized := common.CopyBytes(sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(digest.Bytes(), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
