// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/cashnode/cashd/chainhash"
)

// BlockHeaderPayload is the number of bytes a block header is: Version 4
// bytes + PrevBlock hash + MerkleRoot hash + Timestamp 8 bytes + Bits 4
// bytes + Nonce 8 bytes.
const BlockHeaderPayload = 4 + (2 * chainhash.HashSize) + 8 + 4 + 8

// BlockHeader defines information about a block and is used in MsgBlock.
//
// This describes a single-parent best-chain block: one PrevBlock hash and
// one MerkleRoot, rather than a DAG-shaped header with a ParentHashes
// slice, an AcceptedIDMerkleRoot, and a UTXOCommitment.
type BlockHeader struct {
	// Version of the block.
	Version int32

	// PrevBlock is the hash of the parent block header in the chain.
	PrevBlock chainhash.Hash

	// MerkleRoot is the merkle tree reference to the hash of all
	// transactions for the block.
	MerkleRoot chainhash.Hash

	// Timestamp is the time the block was created.
	Timestamp time.Time

	// Bits is the difficulty target for the block in compact form.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint64
}

// IsGenesis returns true iff this block has no parent.
func (h *BlockHeader) IsGenesis() bool {
	return h.PrevBlock == chainhash.Hash{}
}

// BlockHash computes the block identifier hash for the given block header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, BlockHeaderPayload))
	_ = writeBlockHeader(buf, h)
	return chainhash.DoubleHashH(buf.Bytes())
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, merkle root, difficulty bits, and nonce, with the
// timestamp defaulted to now.
func NewBlockHeader(version int32, prevBlock, merkleRoot chainhash.Hash,
	bits uint32, nonce uint64) *BlockHeader {

	return &BlockHeader{
		Version:    version,
		PrevBlock:  prevBlock,
		MerkleRoot: merkleRoot,
		Timestamp:  time.Now(),
		Bits:       bits,
		Nonce:      nonce,
	}
}

// Deserialize decodes a block header from r into the receiver using the
// long-term storage format.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	return readBlockHeader(r, h)
}

// Serialize encodes the block header to w using the long-term storage
// format.
func (h *BlockHeader) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

// SerializeSize returns the number of bytes it would take to serialize the
// block header.
func (h *BlockHeader) SerializeSize() int {
	return BlockHeaderPayload
}

func readBlockHeader(r io.Reader, bh *BlockHeader) error {
	var timestamp int64
	err := readElements(r, &bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		&timestamp, &bh.Bits, &bh.Nonce)
	if err != nil {
		return err
	}
	bh.Timestamp = time.Unix(timestamp, 0)
	return nil
}

func writeBlockHeader(w io.Writer, bh *BlockHeader) error {
	return writeElements(w, bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		bh.Timestamp.Unix(), bh.Bits, bh.Nonce)
}
