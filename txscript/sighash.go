// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"

	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/wire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature. The FORKID-tagged preimage
// requires SigHashForkID to be set on every signature once
// ScriptEnableSighashForkID is active.
const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// SigHashForkID is or'd into the hash type of every signature once the
	// replay-protected sighash algorithm is mandatory. The upper byte of
	// the encoded hash type carries the fork id value itself (0 for BCH).
	SigHashForkID SigHashType = 0x40

	sigHashMask = 0x1f
)

// TxSigHashes caches the midstate hashes shared across every input of a
// single transaction, computed once per transaction rather than once per
// input.
type TxSigHashes struct {
	HashPrevOuts chainhash.Hash
	HashSequence chainhash.Hash
	HashOutputs  chainhash.Hash
}

// NewTxSigHashes precomputes the midstate hashes used by the FORKID sighash
// algorithm for every input of tx.
func NewTxSigHashes(tx *wire.MsgTx) *TxSigHashes {
	return &TxSigHashes{
		HashPrevOuts: calcHashPrevOuts(tx),
		HashSequence: calcHashSequence(tx),
		HashOutputs:  calcHashOutputs(tx),
	}
}

func calcHashPrevOuts(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		b.Write(in.PreviousOutpoint.Hash[:])
		_ = binary.Write(&b, binary.LittleEndian, in.PreviousOutpoint.Index)
	}
	return chainhash.DoubleHashH(b.Bytes())
}

func calcHashSequence(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		_ = binary.Write(&b, binary.LittleEndian, in.Sequence)
	}
	return chainhash.DoubleHashH(b.Bytes())
}

func calcHashOutputs(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, out := range tx.TxOut {
		_ = binary.Write(&b, binary.LittleEndian, uint64(out.Value))
		_ = wire.WriteVarBytes(&b, out.ScriptPubKey)
	}
	return chainhash.DoubleHashH(b.Bytes())
}

// calcSingleHashOutput returns the double hash of just output idx, used for
// SIGHASH_SINGLE.
func calcSingleHashOutput(tx *wire.MsgTx, idx int) chainhash.Hash {
	var b bytes.Buffer
	out := tx.TxOut[idx]
	_ = binary.Write(&b, binary.LittleEndian, uint64(out.Value))
	_ = wire.WriteVarBytes(&b, out.ScriptPubKey)
	return chainhash.DoubleHashH(b.Bytes())
}

// scriptCode returns the subscript starting immediately after the last
// executed OP_CODESEPARATOR, with consensus-irrelevant opcodes left intact:
// the FORKID sighash algorithm does not require stripping prior signature
// pushes from the subscript.
func scriptCode(subScript []parsedOpcode) ([]byte, error) {
	return unparseScript(subScript)
}

// CalcSignatureHash computes the signature hash for the specified input of
// the transaction according to the hash type and the replay-protected
// FORKID preimage algorithm (BIP143-shaped preimage structure).
func CalcSignatureHash(subScript []parsedOpcode, hashType SigHashType, tx *wire.MsgTx,
	idx int, amount int64, hashes *TxSigHashes) (chainhash.Hash, error) {

	if idx < 0 || idx >= len(tx.TxIn) {
		str := "input index is out of range"
		return chainhash.Hash{}, scriptError(ErrInternal, str)
	}

	if hashes == nil {
		hashes = NewTxSigHashes(tx)
	}

	code, err := scriptCode(subScript)
	if err != nil {
		return chainhash.Hash{}, err
	}

	var hashPrevOuts chainhash.Hash
	var hashSequence chainhash.Hash
	var hashOutputs chainhash.Hash

	if hashType&SigHashAnyOneCanPay == 0 {
		hashPrevOuts = hashes.HashPrevOuts
	}

	baseType := hashType & sigHashMask
	if hashType&SigHashAnyOneCanPay == 0 && baseType != SigHashSingle && baseType != SigHashNone {
		hashSequence = hashes.HashSequence
	}

	switch {
	case baseType != SigHashSingle && baseType != SigHashNone:
		hashOutputs = hashes.HashOutputs
	case baseType == SigHashSingle && idx < len(tx.TxOut):
		hashOutputs = calcSingleHashOutput(tx, idx)
	}

	in := tx.TxIn[idx]

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, tx.Version)
	buf.Write(hashPrevOuts[:])
	buf.Write(hashSequence[:])
	buf.Write(in.PreviousOutpoint.Hash[:])
	_ = binary.Write(&buf, binary.LittleEndian, in.PreviousOutpoint.Index)
	_ = wire.WriteVarBytes(&buf, code)
	_ = binary.Write(&buf, binary.LittleEndian, amount)
	_ = binary.Write(&buf, binary.LittleEndian, in.Sequence)
	buf.Write(hashOutputs[:])
	_ = binary.Write(&buf, binary.LittleEndian, tx.LockTime)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(hashType))

	return chainhash.DoubleHashH(buf.Bytes()), nil
}
