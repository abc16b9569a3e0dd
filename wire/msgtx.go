// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/cashnode/cashd/chainhash"
)

const (
	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// SequenceLockTimeDisabled is the bit flag that, if set on a
	// transaction input's sequence number, disables the relative lock
	// time semantics described by BIP68.
	SequenceLockTimeDisabled = 1 << 31

	// SequenceLockTimeIsSeconds is a bit flag that if set on a
	// transaction input's sequence number, the relative lock time has
	// units of 512 seconds.
	SequenceLockTimeIsSeconds = 1 << 22

	// SequenceLockTimeMask extracts the relative lock time when masked
	// against the transaction input sequence number.
	SequenceLockTimeMask = 0x0000ffff

	// SequenceLockTimeGranularity is the defined time based granularity
	// for seconds-based relative time locks.
	SequenceLockTimeGranularity = 9

	// maxScriptSize bounds the script sizes read from the wire. Kept
	// generous; txscript enforces the real consensus limits.
	maxScriptSize = 10000

	// defaultTxInOutAlloc is a reasonable allocation hint when decoding.
	defaultTxInOutAlloc = 15
)

// Outpoint defines a bitcoin data type that is used to track previous
// transaction outputs.
type Outpoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutpoint returns a new bitcoin transaction outpoint.
func NewOutpoint(hash *chainhash.Hash, index uint32) *Outpoint {
	return &Outpoint{Hash: *hash, Index: index}
}

// String returns the Outpoint in the human-readable form "hash:index".
func (o Outpoint) String() string {
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = appendUint(buf, o.Index)
	return string(buf)
}

func appendUint(buf []byte, v uint32) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	var tmp [10]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(buf, tmp[i:]...)
}

// TxIn defines a bitcoin transaction input.
type TxIn struct {
	PreviousOutpoint Outpoint
	SignatureScript  []byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	return chainhash.HashSize + 4 + VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript) + 4
}

// NewTxIn returns a new bitcoin transaction input with the provided
// previous outpoint point and signature script with a default sequence of
// MaxTxInSequenceNum.
func NewTxIn(prevOut *Outpoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutpoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a bitcoin transaction output.
type TxOut struct {
	Value        int64
	ScriptPubKey []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction output.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.ScriptPubKey))) + len(t.ScriptPubKey)
}

// NewTxOut returns a new bitcoin transaction output with the provided
// transaction value and public key script.
func NewTxOut(value int64, scriptPubKey []byte) *TxOut {
	return &TxOut{Value: value, ScriptPubKey: scriptPubKey}
}

// MsgTx implements a bitcoin-family transaction message.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// Copy creates a deep copy of the transaction so that the original is not
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		sigScript := make([]byte, len(oldTxIn.SignatureScript))
		copy(sigScript, oldTxIn.SignatureScript)
		newTx.TxIn = append(newTx.TxIn, &TxIn{
			PreviousOutpoint: oldTxIn.PreviousOutpoint,
			SignatureScript:  sigScript,
			Sequence:         oldTxIn.Sequence,
		})
	}

	for _, oldTxOut := range msg.TxOut {
		pkScript := make([]byte, len(oldTxOut.ScriptPubKey))
		copy(pkScript, oldTxOut.ScriptPubKey)
		newTx.TxOut = append(newTx.TxOut, &TxOut{
			Value:        oldTxOut.Value,
			ScriptPubKey: pkScript,
		})
	}

	return &newTx
}

// IsCoinBase determines whether a transaction is a coinbase transaction: a
// single input whose previous outpoint is the zero hash and max index.
func IsCoinBase(msgTx *MsgTx) bool {
	if len(msgTx.TxIn) != 1 {
		return false
	}
	prevOut := &msgTx.TxIn[0].PreviousOutpoint
	return prevOut.Index == 0xffffffff && prevOut.Hash == chainhash.Hash{}
}

// TxHash generates the double-SHA256 hash for the transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	_ = msg.Serialize(buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (msg *MsgTx) SerializeSize() int {
	n := 8 // version + locktime

	n += VarIntSerializeSize(uint64(len(msg.TxIn)))
	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}

	n += VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}

	return n
}

// Serialize encodes the transaction to w.
func (msg *MsgTx) Serialize(w io.Writer) error {
	if err := WriteElement(w, msg.Version); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeElements(w, &ti.PreviousOutpoint.Hash, ti.PreviousOutpoint.Index); err != nil {
			return err
		}
		if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
			return err
		}
		if err := WriteElement(w, ti.Sequence); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := WriteElement(w, uint64(to.Value)); err != nil {
			return err
		}
		if err := WriteVarBytes(w, to.ScriptPubKey); err != nil {
			return err
		}
	}

	return WriteElement(w, msg.LockTime)
}

// Deserialize decodes a transaction from r into the receiver.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	if err := ReadElement(r, &msg.Version); err != nil {
		return err
	}

	txInCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	msg.TxIn = make([]*TxIn, 0, minUint64(txInCount, defaultTxInOutAlloc))
	for i := uint64(0); i < txInCount; i++ {
		ti := new(TxIn)
		if err := readElements(r, &ti.PreviousOutpoint.Hash, &ti.PreviousOutpoint.Index); err != nil {
			return err
		}
		ti.SignatureScript, err = ReadVarBytes(r, maxScriptSize, "signature script")
		if err != nil {
			return err
		}
		if err := ReadElement(r, &ti.Sequence); err != nil {
			return err
		}
		msg.TxIn = append(msg.TxIn, ti)
	}

	txOutCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	msg.TxOut = make([]*TxOut, 0, minUint64(txOutCount, defaultTxInOutAlloc))
	for i := uint64(0); i < txOutCount; i++ {
		to := new(TxOut)
		var value uint64
		if err := ReadElement(r, &value); err != nil {
			return err
		}
		to.Value = int64(value)
		to.ScriptPubKey, err = ReadVarBytes(r, maxScriptSize, "public key script")
		if err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, to)
	}

	return ReadElement(r, &msg.LockTime)
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
