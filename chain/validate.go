// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cashnode/cashd/chaincfg"
	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/txscript"
	"github.com/cashnode/cashd/wire"
)

// lockTimeThreshold is the value a transaction's LockTime is compared
// against to tell whether it names a block height or a unix timestamp,
// matching the same split CHECKLOCKTIMEVERIFY uses.
const lockTimeThreshold = 500000000

// minTxSizeMagneticAnomaly is the smallest a serialized transaction may be
// once the Magnetic Anomaly upgrade is active.
const minTxSizeMagneticAnomaly = 100

// maxSatoshi is the maximum amount of the native currency that can ever
// exist, used to bound transaction output values.
const maxSatoshi = 21000000 * 100000000

// baseSubsidy is the starting block subsidy before any halving.
const baseSubsidy = 50 * 100000000

// coinbaseRulePercent is the share of a coinbase's total output value the
// designated addresses in chaincfg.Params.CoinbaseRuleAddresses must
// receive while the Axion-to-Wellington coinbase rule is in force.
const coinbaseRulePercent = 8

// CalcBlockSubsidy returns the block reward for a block at height, halving
// every params.SubsidyReductionInterval blocks.
func CalcBlockSubsidy(height uint64, params *chaincfg.Params) int64 {
	if params.SubsidyReductionInterval == 0 {
		return baseSubsidy
	}
	return baseSubsidy >> uint(height/params.SubsidyReductionInterval)
}

// IsFinalizedTransaction reports whether tx may be included in a block at
// height, timestamped medianTime, per its LockTime and per-input sequence
// numbers.
func IsFinalizedTransaction(tx *wire.MsgTx, height uint64, medianTime time.Time) bool {
	if tx.LockTime == 0 {
		return true
	}

	blockTimeOrHeight := int64(height)
	if tx.LockTime >= lockTimeThreshold {
		blockTimeOrHeight = medianTime.Unix()
	}
	if int64(tx.LockTime) < blockTimeOrHeight {
		return true
	}

	for _, txIn := range tx.TxIn {
		if txIn.Sequence != wire.MaxTxInSequenceNum {
			return false
		}
	}
	return true
}

// SequenceLock is the converted form of a transaction's relative
// lock-times: the input's own lock-times are satisfied only once both the
// evaluating block's height exceeds BlockHeight and its MTP exceeds
// Seconds. A value of -1 in either field means that dimension imposes no
// constraint.
type SequenceLock struct {
	Seconds     int64
	BlockHeight int64
}

// calcSequenceLock computes tx's SequenceLock against view, evaluated as
// of the block extending prev (BIP68/BIP112).
func calcSequenceLock(prev *Entry, view *View, tx *wire.MsgTx) (*SequenceLock, *VerifyError) {
	lock := &SequenceLock{Seconds: -1, BlockHeight: -1}
	if wire.IsCoinBase(tx) {
		return lock, nil
	}

	for _, txIn := range tx.TxIn {
		entry := view.LookupEntry(txIn.PreviousOutpoint)
		if entry == nil {
			return nil, ruleError(ErrMissingTxOut, fmt.Sprintf(
				"output %s referenced from transaction is either "+
					"unknown or already spent", txIn.PreviousOutpoint))
		}

		sequenceNum := txIn.Sequence
		relativeLock := int64(sequenceNum & wire.SequenceLockTimeMask)

		switch {
		case sequenceNum&wire.SequenceLockTimeDisabled == wire.SequenceLockTimeDisabled:
			continue
		case sequenceNum&wire.SequenceLockTimeIsSeconds == wire.SequenceLockTimeIsSeconds:
			depHeight := int64(entry.Height) - 1
			if depHeight < 0 {
				depHeight = 0
			}
			anchor := prev.Ancestor(uint64(depHeight))
			if anchor == nil {
				anchor = prev
			}
			timeLockSeconds := (relativeLock << wire.SequenceLockTimeGranularity) - 1
			timeLock := medianTimePast(anchor) + timeLockSeconds
			if timeLock > lock.Seconds {
				lock.Seconds = timeLock
			}
		default:
			blockHeight := int64(entry.Height) + relativeLock - 1
			if blockHeight > lock.BlockHeight {
				lock.BlockHeight = blockHeight
			}
		}
	}

	return lock, nil
}

// sequenceLockActive reports whether every relative lock-time in lock has
// matured as of height/medianTime.
func sequenceLockActive(lock *SequenceLock, height uint64, medianTime time.Time) bool {
	return lock.Seconds < medianTime.Unix() && lock.BlockHeight < int64(height)
}

// extractCoinbaseHeight reads the BIP34 height push that must lead a
// coinbase's signature script once state.BIP34 is active.
func extractCoinbaseHeight(tx *wire.MsgTx) (uint64, error) {
	sigScript := tx.TxIn[0].SignatureScript
	data, err := txscript.PushedData(sigScript)
	if err != nil || len(data) == 0 {
		return 0, ruleError(ErrMissingCoinbaseHeight,
			"coinbase signature script does not begin with a height push")
	}
	num, err := txscript.MakeScriptNum(data[0], true, 5)
	if err != nil || num < 0 {
		return 0, ruleError(ErrMissingCoinbaseHeight,
			"coinbase height push is not a valid minimal script number")
	}
	return uint64(num), nil
}

// lessTxID reports whether a sorts before b under Magnetic Anomaly's
// canonical transaction ordering: ascending by txid, compared byte-for-byte
// over the hash's own internal representation.
func lessTxID(a, b chainhash.Hash) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// verify runs every context-dependent check on block, given the entry it
// would form (prev is nil at genesis) and the deployment State active for
// it. It does not touch the UTXO set; verifyInputs does that separately.
func verify(params *chaincfg.Params, prev *Entry, block *wire.MsgBlock, state *State, now time.Time) *VerifyError {
	header := &block.Header

	if prev != nil && header.PrevBlock != prev.Hash {
		return ruleError(ErrUnknownParent, "block does not extend its claimed parent")
	}

	height := uint64(0)
	if prev != nil {
		height = prev.Height + 1
	}

	for _, cp := range params.Checkpoints {
		if cp.Height == height {
			hash := header.BlockHash()
			if hash != *cp.Hash {
				err := verifyError(ErrorKindCheckpoint, ErrCheckpointMismatch,
					"block does not match the checkpoint hash for this height")
				return err
			}
		}
	}

	expectedBits := NextWorkRequired(params, prev, state, header.Timestamp.Unix())
	if header.Bits != expectedBits {
		return ruleError(ErrUnexpectedDifficulty, fmt.Sprintf(
			"block difficulty of %d is not the expected value of %d",
			header.Bits, expectedBits))
	}

	if prev != nil && header.Timestamp.Unix() <= medianTimePast(prev) {
		return ruleError(ErrTimeTooOld,
			"block timestamp is not after the median time of the last 11 blocks")
	}
	maxTime := now.Add(time.Duration(params.TimestampDeviationTolerance) * time.Second)
	if header.Timestamp.After(maxTime) {
		return ruleError(ErrTimeTooNew, "block timestamp is too far in the future")
	}

	if minVersion := minVersionFor(params, height); header.Version < minVersion {
		return ruleError(ErrBlockVersionTooOld, fmt.Sprintf(
			"block version %d is too old for height %d", header.Version, height))
	}

	if len(block.Transactions) == 0 {
		return ruleError(ErrNoTransactions, "block has no transactions")
	}
	if !wire.IsCoinBase(block.Transactions[0]) {
		return ruleError(ErrFirstTxNotCoinbase, "first transaction is not a coinbase")
	}
	for _, tx := range block.Transactions[1:] {
		if wire.IsCoinBase(tx) {
			return ruleError(ErrMultipleCoinbases, "block contains more than one coinbase")
		}
	}

	var mtp time.Time
	if prev != nil {
		mtp = time.Unix(medianTimePast(prev), 0)
	}
	for i, tx := range block.Transactions {
		if state.MagneticAnomaly {
			if tx.SerializeSize() < minTxSizeMagneticAnomaly {
				return ruleError(ErrTxTooSmall, fmt.Sprintf(
					"transaction size is below the %d byte minimum",
					minTxSizeMagneticAnomaly))
			}
			if i > 1 && !lessTxID(block.Transactions[i-1].TxHash(), tx.TxHash()) {
				return malleatedError(ErrDuplicateTx,
					"transactions are not in canonical (ascending txid) order")
			}
		}
		if state.Wellington && (tx.Version < 1 || tx.Version > 2) {
			return ruleError(ErrBadTxVersion, "transaction version must be 1 or 2")
		}
		if !IsFinalizedTransaction(tx, height, mtp) {
			return ruleError(ErrUnfinalizedTx, "transaction is not finalized")
		}
	}

	if state.BIP34 {
		coinbaseHeight, err := extractCoinbaseHeight(block.Transactions[0])
		if err != nil {
			return err
		}
		if coinbaseHeight != height {
			return ruleError(ErrBadBIP34Height, fmt.Sprintf(
				"coinbase height %d does not match block height %d",
				coinbaseHeight, height))
		}
	}

	maxSize := state.MaxBlockSize(params)
	if serialized := uint32(block.SerializeSize()); serialized > maxSize {
		return ruleError(ErrBlockTooBig, fmt.Sprintf(
			"serialized block is %d bytes, exceeds max of %d", serialized, maxSize))
	}

	return nil
}

// verifyDuplicates enforces BIP30: no transaction in block may have the
// same ID as an already-unspent transaction, unless BIP34 (which makes
// coinbase transactions unique by construction) is active.
func verifyDuplicates(db DB, block *wire.MsgBlock) *VerifyError {
	for _, tx := range block.Transactions {
		if db.HasCoins(tx) {
			return ruleError(ErrOverwriteTx, fmt.Sprintf(
				"tried to overwrite transaction %s with a new one", tx.TxHash()))
		}
	}
	return nil
}

// verifyInputs spends every transaction's inputs against view, invokes the
// interpreter on each one (through pool, if non-nil), and returns the total
// fee collected. It mutates view in place: by the time it returns
// successfully, view reflects every effect block's transactions had on the
// UTXO set.
func verifyInputs(params *chaincfg.Params, height uint64, block *wire.MsgBlock, state *State, view *View, prev *Entry, pool *workerPool, sigCache *txscript.SigCache) (int64, *VerifyError) {
	if state.MagneticAnomaly {
		for _, tx := range block.Transactions {
			view.AddTX(tx, height)
		}
	}

	var totalFees int64
	var totalSigOps int

	for txIdx, tx := range block.Transactions {
		isCoinbase := wire.IsCoinBase(tx)

		var inputSum int64
		if !isCoinbase {
			if tx.Version >= 2 && state.CSV {
				lock, err := calcSequenceLock(prev, view, tx)
				if err != nil {
					return 0, err
				}
				mtp := time.Unix(medianTimePast(prev), 0)
				if !sequenceLockActive(lock, height, mtp) {
					return 0, ruleError(ErrUnfinalizedTx,
						"transaction sequence locks are not active")
				}
			}

			for _, txIn := range tx.TxIn {
				entry, ok := view.Spend(txIn.PreviousOutpoint)
				if !ok {
					return 0, ruleError(ErrMissingTxOut, fmt.Sprintf(
						"output %s referenced from transaction %s either "+
							"does not exist or has already been spent",
							txIn.PreviousOutpoint, tx.TxHash()))
				}
				if entry.IsCoinbase() && height-entry.Height < params.CoinbaseMaturity {
					return 0, ruleError(ErrImmatureSpend, fmt.Sprintf(
						"tried to spend coinbase output %s from %d blocks ago",
						txIn.PreviousOutpoint, height-entry.Height))
				}
				inputSum += entry.Amount
			}

			var outputSum int64
			for _, txOut := range tx.TxOut {
				outputSum += txOut.Value
			}
			if outputSum > inputSum {
				return 0, ruleError(ErrSpendTooHigh, fmt.Sprintf(
					"transaction %s spends %d which is more than its inputs "+
						"of %d", tx.TxHash(), outputSum, inputSum))
			}
			totalFees += inputSum - outputSum
		}

		for _, txOut := range tx.TxOut {
			totalSigOps += txscript.GetSigOpCount(txOut.ScriptPubKey)
		}
		if !isCoinbase {
			for _, txIn := range tx.TxIn {
				totalSigOps += txscript.GetSigOpCount(txIn.SignatureScript)
			}
		}

		if err := verifyTxInputs(tx, txIdx, view, state, sigCache, pool); err != nil {
			return 0, err
		}

		if !state.MagneticAnomaly {
			view.AddTX(tx, height)
		}
	}

	if !state.Phonon && totalSigOps > maxSigOpsPerBlock {
		return 0, ruleError(ErrTooManySigOps, fmt.Sprintf(
			"block contains %d signature operations which exceeds the "+
				"max allowed of %d", totalSigOps, maxSigOpsPerBlock))
	}

	subsidy := CalcBlockSubsidy(height, params)
	var coinbaseValue int64
	for _, txOut := range block.Transactions[0].TxOut {
		coinbaseValue += txOut.Value
	}
	if coinbaseValue > subsidy+totalFees {
		return 0, ruleError(ErrBadFees, fmt.Sprintf(
			"coinbase pays %d which exceeds the allowed subsidy+fees of %d",
			coinbaseValue, subsidy+totalFees))
	}

	if state.Axion && !state.Wellington && len(params.CoinbaseRuleAddresses) > 0 {
		var toRecipients int64
		for _, txOut := range block.Transactions[0].TxOut {
			for _, addr := range params.CoinbaseRuleAddresses {
				if bytes.Equal(txOut.ScriptPubKey, addr) {
					toRecipients += txOut.Value
					break
				}
			}
		}
		if coinbaseValue > 0 && toRecipients*100/coinbaseValue < coinbaseRulePercent {
			return 0, ruleError(ErrBadCoinbaseTransaction,
				"coinbase does not pay the required share to the designated addresses")
		}
	}

	return totalFees, nil
}

// maxSigOpsPerBlock bounds total signature operations per block before
// Phonon replaces the cap with a per-input sigcheck budget enforced inside
// the interpreter itself.
const maxSigOpsPerBlock = 20000

// malformedScriptCodes are txscript failures that stem from a structurally
// invalid script rather than a failed signature check, warranting a plain
// ruleError instead of a malleatedError.
var malformedScriptCodes = []txscript.ErrorCode{
	txscript.ErrScriptSize,
	txscript.ErrPushSize,
	txscript.ErrOpCount,
	txscript.ErrStackSize,
	txscript.ErrBadOpcode,
	txscript.ErrDisabledOpcode,
	txscript.ErrUnbalancedConditional,
}

func isMalformedScriptError(err error) bool {
	for _, code := range malformedScriptCodes {
		if txscript.IsErrorCode(err, code) {
			return true
		}
	}
	return false
}

// verifyTxInputs invokes the interpreter on every input of tx at txIdx
// within block, dispatching across pool when non-nil.
func verifyTxInputs(tx *wire.MsgTx, txIdx int, view *View, state *State, sigCache *txscript.SigCache, pool *workerPool) *VerifyError {
	if wire.IsCoinBase(tx) {
		return nil
	}

	hashCache := txscript.NewTxSigHashes(tx)
	run := func(i int) error {
		txIn := tx.TxIn[i]
		entry := view.LookupEntry(txIn.PreviousOutpoint)
		if entry == nil {
			return ruleError(ErrMissingTxOut, "input spent by verifyTxInputs was not found in view")
		}
		if _, err := txscript.Verify(tx, i, entry.ScriptPubKey, entry.Amount, state.Flags, sigCache, hashCache); err != nil {
			if isMalformedScriptError(err) {
				return ruleError(ErrScriptMalformed, err.Error())
			}
			return malleatedError(ErrScriptValidation, err.Error())
		}
		return nil
	}

	if pool == nil {
		for i := range tx.TxIn {
			if err := run(i); err != nil {
				return err.(*VerifyError)
			}
		}
		return nil
	}

	for i := range tx.TxIn {
		i := i
		pool.submit(func() error { return run(i) })
	}
	if err := pool.joinAll(); err != nil {
		return err.(*VerifyError)
	}
	return nil
}
