package common

import (
	"context"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"math/big"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	dcrecSecp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	gax "github.com/googleapis/gax-go/v2"
)

type GCPKeyManagementClient interface {
	Close() error
	GetPublicKey(ctx context.Context, req *kmspb.GetPublicKeyRequest, opts ...gax.CallOption) (*kmspb.PublicKey, error)
	AsymmetricSign(ctx context.Context, req *kmspb.AsymmetricSignRequest, opts ...gax.CallOption) (*kmspb.AsymmetricSignResponse, error)
	GetCryptoKeyVersion(ctx context.Context, req *kmspb.GetCryptoKeyVersionRequest, opts ...gax.CallOption) (*kmspb.CryptoKeyVersion, error)
}

// GcpKmsSigner signs with a secp256k1 key version held in Cloud KMS. The
// private key never leaves KMS.
type GcpKmsSigner struct {
	client     GCPKeyManagementClient
	keyName    string
	ethAddress common.Address
}

var _ Signer = &GcpKmsSigner{}

var NewGCPKeyManagementClient = func(ctx context.Context) (GCPKeyManagementClient, error) {
	return kms.NewKeyManagementClient(ctx)
}

func NewGcpKmsSigner(keyName string) (*GcpKmsSigner, error) {
	client, err := NewGCPKeyManagementClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create KMS client: %w", err)
	}

	keyVersionDetails, err := resolveKeyVersionDetails(client, keyName)
	if err != nil {
		return nil, fmt.Errorf("failed to get key version details: %w", err)
	}

	if keyVersionDetails.Algorithm != kmspb.CryptoKeyVersion_EC_SIGN_SECP256K1_SHA256 {
		return nil, fmt.Errorf("key algorithm is not EC_SIGN_SECP256K1_SHA256")
	}

	pubKeyBytes, err := resolvePubKeyBytes(client, keyName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve public key: %w", err)
	}

	if _, err := dcrecSecp256k1.ParsePubKey(pubKeyBytes); err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	ethPublicKey, err := crypto.UnmarshalPubkey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal public key: %w", err)
	}

	ethAddress := getEthAddr(pubKeyBytes)
	if ethAddress != crypto.PubkeyToAddress(*ethPublicKey) {
		return nil, fmt.Errorf("ethereum address mismatch")
	}

	return &GcpKmsSigner{
		client:     client,
		keyName:    keyName,
		ethAddress: ethAddress,
	}, nil
}

func (s *GcpKmsSigner) Destroy() {
	s.client.Close()
}

func (s *GcpKmsSigner) EthSign(data []byte) ([]byte, error) {
	digest := data
	if len(digest) != 32 {
		digest = crypto.Keccak256(data)
	}
	hash := common.BytesToHash(digest)
	return ethSignHash(hash, s.client, s.keyName, s.ethAddress)
}

func (s *GcpKmsSigner) EthAddress() common.Address {
	return s.ethAddress
}

func resolvePubKeyBytes(client GCPKeyManagementClient, keyName string) ([]byte, error) {
	publicKeyResp, err := client.GetPublicKey(context.Background(), &kmspb.GetPublicKeyRequest{Name: keyName})
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	publicKeyPem := publicKeyResp.Pem

	block, _ := pem.Decode([]byte(publicKeyPem))
	if block == nil {
		return nil, fmt.Errorf("public key %q PEM empty: %.130q", keyName, publicKeyPem)
	}

	var info struct {
		AlgID pkix.AlgorithmIdentifier
		Key   asn1.BitString
	}
	_, err = asn1.Unmarshal(block.Bytes, &info)
	if err != nil {
		return nil, fmt.Errorf("public key %q PEM block %q: %w", keyName, block.Type, err)
	}

	if gotAlg := info.AlgID.Algorithm; !gotAlg.Equal(oidPublicKeyECDSA) {
		return nil, fmt.Errorf("public key %q ASN.1 algorithm %s instead of %s", keyName, gotAlg, oidPublicKeyECDSA)
	}

	return info.Key.Bytes, nil
}

// getEthAddr returns the Ethereum address for uncompressed key bytes.
func getEthAddr(bytes []byte) common.Address {
	digest := crypto.Keccak256(bytes[1:])
	var addr common.Address
	copy(addr[:], digest[12:])
	return addr
}

// lowS folds s into the lower half of the curve order.
func lowS(s *big.Int) *big.Int {
	var scalar dcrecSecp256k1.ModNScalar
	var buf [32]byte
	s.FillBytes(buf[:])
	scalar.SetBytes(&buf)
	if scalar.IsOverHalfOrder() {
		scalar.Negate()
	}
	out := scalar.Bytes()
	return new(big.Int).SetBytes(out[:])
}

func ethSignHash(hash common.Hash, client GCPKeyManagementClient, keyName string, ethAddress common.Address) ([]byte, error) {
	req := kmspb.AsymmetricSignRequest{
		Name: keyName,
		Digest: &kmspb.Digest{
			Digest: &kmspb.Digest_Sha256{
				Sha256: hash[:],
			},
		},
	}
	resp, err := client.AsymmetricSign(context.Background(), &req)
	if err != nil {
		return nil, fmt.Errorf("asymmetric sign operation: %w", err)
	}

	var params struct{ R, S *big.Int }
	_, err = asn1.Unmarshal(resp.Signature, &params)
	if err != nil {
		return nil, fmt.Errorf("asymmetric signature encoding: %w", err)
	}

	var rLen, sLen int
	if params.R != nil {
		rLen = (params.R.BitLen() + 7) / 8
	}
	if params.S != nil {
		sLen = (params.S.BitLen() + 7) / 8
	}
	if rLen == 0 || rLen > 32 || sLen == 0 || sLen > 32 {
		return nil, fmt.Errorf("asymmetric signature with %d-byte r and %d-byte s denied on size", rLen, sLen)
	}
	s := lowS(params.S)

	// compact form: 1 byte header, r, s, then the ethereum v
	var sig [66]byte
	params.R.FillBytes(sig[1:33])
	s.FillBytes(sig[33:65])

	var recoverErr error
	var finalSig []byte
	for recoveryID := byte(0); recoveryID < 2; recoveryID++ {
		sig[0] = recoveryID + 27
		pubKey, _, err := btcecdsa.RecoverCompact(sig[:65], hash[:])
		if err != nil {
			recoverErr = err
			continue
		}

		if getEthAddr(pubKey.SerializeUncompressed()) == ethAddress {
			sig[65] = recoveryID
			finalSig = sig[1:]
			break
		}
	}

	if finalSig == nil {
		if recoverErr != nil {
			return nil, fmt.Errorf("asymmetric signature address recovery failed: %w", recoverErr)
		}
		return nil, fmt.Errorf("signature address mismatch")
	}

	recoveredPubKey, err := crypto.SigToPub(hash[:], finalSig)
	if err != nil {
		return nil, fmt.Errorf("failed to recover public key: %w", err)
	}
	if crypto.PubkeyToAddress(*recoveredPubKey) != ethAddress {
		return nil, fmt.Errorf("recovered address mismatch")
	}

	finalSig[64] += 27
	return finalSig, nil
}

func resolveKeyVersionDetails(client GCPKeyManagementClient, keyName string) (*kmspb.CryptoKeyVersion, error) {
	req := &kmspb.GetCryptoKeyVersionRequest{
		Name: keyName,
	}

	resp, err := client.GetCryptoKeyVersion(context.Background(), req)
	if err != nil {
		return nil, fmt.Errorf("failed to get key version details: %w", err)
	}

	return resp, nil
}
