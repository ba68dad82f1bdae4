// Package walletkey derives claim-wallet keypairs from BIP-39 mnemonics and
// seals private wallet material at rest.
package walletkey

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
)

// EntropyBits yields a 12 word mnemonic.
const EntropyBits = 128

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// Keypair is an ed25519 keypair with its base58 encodings.
type Keypair struct {
	Mnemonic          string
	Address           string
	PrivateKeyEncoded string
	PublicKey         ed25519.PublicKey
}

// Generator produces fresh mnemonics and the keypairs derived from them.
type Generator struct {
	entropy func(bits int) ([]byte, error)
}

// NewGenerator returns a generator backed by crypto/rand entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: bip39.NewEntropy}
}

// Generate creates a new random mnemonic and derives its keypair.
func (g *Generator) Generate() (Keypair, error) {
	entropy, err := g.entropy(EntropyBits)
	if err != nil {
		return Keypair{}, fmt.Errorf("entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return Keypair{}, fmt.Errorf("mnemonic: %w", err)
	}
	return Derive(mnemonic)
}

// Derive deterministically derives the keypair for mnemonic. The first 32
// bytes of the BIP-39 seed (empty passphrase) are used as the ed25519 seed,
// matching Keypair.fromSeed in browser wallets.
func Derive(mnemonic string) (Keypair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return Keypair{}, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, "")
	priv := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	pub := priv.Public().(ed25519.PublicKey)

	return Keypair{
		Mnemonic:          mnemonic,
		Address:           base58.Encode(pub),
		PrivateKeyEncoded: base58.Encode(priv),
		PublicKey:         pub,
	}, nil
}

// ValidAddress reports whether address decodes to an ed25519 public key.
func ValidAddress(address string) bool {
	raw, err := base58.Decode(address)
	return err == nil && len(raw) == ed25519.PublicKeySize
}
