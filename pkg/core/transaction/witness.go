package transaction

import (
	"errors"

	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/localnet-dev/localnet/pkg/io"
)

// Witness contains the signature proving the transaction was authorized by
// the owner of the sender account.
type Witness struct {
	Signature []byte
	PublicKey []byte
}

// EncodeBinary implements the io.Serializable interface.
func (w *Witness) EncodeBinary(bw *io.BinWriter) {
	bw.WriteVarBytes(w.Signature)
	bw.WriteVarBytes(w.PublicKey)
}

// DecodeBinary implements the io.Serializable interface.
func (w *Witness) DecodeBinary(br *io.BinReader) {
	w.Signature = br.ReadVarBytes(keys.SignatureLen)
	w.PublicKey = br.ReadVarBytes(33)
}

// Sign signs the transaction with the given key attaching the resulting
// witness to it.
func (t *Transaction) Sign(net uint32, priv *keys.PrivateKey) error {
	if priv.GetScriptHash() != t.Sender {
		return errors.New("key does not match the transaction sender")
	}
	t.Witness = Witness{
		Signature: priv.SignHashable(net, t),
		PublicKey: priv.PublicKey().Bytes(),
	}
	return nil
}

// VerifyWitness checks that the witness signature is valid, made by the key
// of the sender account and bound to this network.
func (t *Transaction) VerifyWitness(net uint32) error {
	pub, err := keys.NewPublicKeyFromBytes(t.Witness.PublicKey)
	if err != nil {
		return err
	}
	if pub.GetScriptHash() != t.Sender {
		return errors.New("witness key does not match the sender")
	}
	if !pub.VerifyHashable(t.Witness.Signature, net, t) {
		return errors.New("invalid witness signature")
	}
	return nil
}
