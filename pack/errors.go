package pack

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrDuplicateRequest = errors.New("duplicate mint request in batch")
	ErrInvalidSignature = errors.New("malformed pack signature")
	ErrRejected         = errors.New("certificate rejected by receiver")
	ErrInvalidID        = errors.New("invalid certificate id")
)

type DuplicateCertificateError struct {
	ID *big.Int
}

func (e *DuplicateCertificateError) Error() string {
	return fmt.Sprintf("certificate %s already exists", e.ID)
}

type NoSuchCertificateError struct {
	ID *big.Int
}

func (e *NoSuchCertificateError) Error() string {
	return fmt.Sprintf("no such certificate %s", e.ID)
}

type NotOwnerError struct {
	ID     *big.Int
	Caller common.Address
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("%s does not hold certificate %s", e.Caller.Hex(), e.ID)
}

type TokenLockedError struct {
	ID *big.Int
}

func (e *TokenLockedError) Error() string {
	return fmt.Sprintf("certificate %s is locked", e.ID)
}

type SignatureExpiredError struct {
	Deadline uint64
}

func (e *SignatureExpiredError) Error() string {
	return fmt.Sprintf("signature expired at %d", e.Deadline)
}

type InvalidSignerError struct {
	Recovered common.Address
}

func (e *InvalidSignerError) Error() string {
	return fmt.Sprintf("invalid signer %s", e.Recovered.Hex())
}

type NotApprovedError struct {
	ID     *big.Int
	Caller common.Address
}

func (e *NotApprovedError) Error() string {
	return fmt.Sprintf("%s is not approved for certificate %s", e.Caller.Hex(), e.ID)
}
