// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "fmt"

// ErrorKind classifies a VerifyError by how the caller should react. By
// default invalid, malformed and checkpoint failures carry a ban-level
// score of 100, while obsolete and duplicate blocks carry a score of 0.
type ErrorKind int

const (
	ErrorKindInvalid ErrorKind = iota
	ErrorKindObsolete
	ErrorKindCheckpoint
	ErrorKindMalformed
	ErrorKindDuplicate
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInvalid:
		return "invalid"
	case ErrorKindObsolete:
		return "obsolete"
	case ErrorKindCheckpoint:
		return "checkpoint"
	case ErrorKindMalformed:
		return "malformed"
	case ErrorKindDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// ErrorCode identifies the specific rule a candidate block or transaction
// violated. The set mirrors the Bitcoin-family RuleError taxonomy: one code
// per condition, independent of the taxonomy the script interpreter exposes
// for in-script failures (see txscript.ErrorCode).
type ErrorCode int

const (
	ErrDuplicateBlock ErrorCode = iota
	ErrBlockTooBig
	ErrBlockVersionTooOld
	ErrInvalidTime
	ErrTimeTooOld
	ErrTimeTooNew
	ErrNoParents
	ErrUnknownParent
	ErrDifficultyTooLow
	ErrUnexpectedDifficulty
	ErrHighHash
	ErrBadMerkleRoot
	ErrBadCheckpoint
	ErrCheckpointMismatch
	ErrCheckpointTimeTooOld
	ErrNoTransactions
	ErrNoTxInputs
	ErrTxTooBig
	ErrTxTooSmall
	ErrBadTxOutValue
	ErrDuplicateTxInputs
	ErrBadTxInput
	ErrMissingTxOut
	ErrUnfinalizedTx
	ErrDuplicateTx
	ErrOverwriteTx
	ErrImmatureSpend
	ErrSpendTooHigh
	ErrBadFees
	ErrTooManySigOps
	ErrTooManySigChecks
	ErrFirstTxNotCoinbase
	ErrMultipleCoinbases
	ErrBadCoinbasePayloadLen
	ErrBadCoinbaseTransaction
	ErrScriptMalformed
	ErrScriptValidation
	ErrBadBIP34Height
	ErrMissingCoinbaseHeight
	ErrBadTxVersion
	ErrOrphanBlock
	ErrInvalidAncestorBlock
	ErrNumErrorCodes
)

var errorCodeStrings = map[ErrorCode]string{
	ErrDuplicateBlock:         "ErrDuplicateBlock",
	ErrBlockTooBig:            "ErrBlockTooBig",
	ErrBlockVersionTooOld:     "ErrBlockVersionTooOld",
	ErrInvalidTime:            "ErrInvalidTime",
	ErrTimeTooOld:             "ErrTimeTooOld",
	ErrTimeTooNew:             "ErrTimeTooNew",
	ErrNoParents:              "ErrNoParents",
	ErrUnknownParent:          "ErrUnknownParent",
	ErrDifficultyTooLow:       "ErrDifficultyTooLow",
	ErrUnexpectedDifficulty:   "ErrUnexpectedDifficulty",
	ErrHighHash:               "ErrHighHash",
	ErrBadMerkleRoot:          "ErrBadMerkleRoot",
	ErrBadCheckpoint:          "ErrBadCheckpoint",
	ErrCheckpointMismatch:     "ErrCheckpointMismatch",
	ErrCheckpointTimeTooOld:   "ErrCheckpointTimeTooOld",
	ErrNoTransactions:         "ErrNoTransactions",
	ErrNoTxInputs:             "ErrNoTxInputs",
	ErrTxTooBig:               "ErrTxTooBig",
	ErrTxTooSmall:             "ErrTxTooSmall",
	ErrBadTxOutValue:          "ErrBadTxOutValue",
	ErrDuplicateTxInputs:      "ErrDuplicateTxInputs",
	ErrBadTxInput:             "ErrBadTxInput",
	ErrMissingTxOut:           "ErrMissingTxOut",
	ErrUnfinalizedTx:          "ErrUnfinalizedTx",
	ErrDuplicateTx:            "ErrDuplicateTx",
	ErrOverwriteTx:            "ErrOverwriteTx",
	ErrImmatureSpend:          "ErrImmatureSpend",
	ErrSpendTooHigh:           "ErrSpendTooHigh",
	ErrBadFees:                "ErrBadFees",
	ErrTooManySigOps:          "ErrTooManySigOps",
	ErrTooManySigChecks:       "ErrTooManySigChecks",
	ErrFirstTxNotCoinbase:     "ErrFirstTxNotCoinbase",
	ErrMultipleCoinbases:      "ErrMultipleCoinbases",
	ErrBadCoinbasePayloadLen:  "ErrBadCoinbasePayloadLen",
	ErrBadCoinbaseTransaction: "ErrBadCoinbaseTransaction",
	ErrScriptMalformed:        "ErrScriptMalformed",
	ErrScriptValidation:       "ErrScriptValidation",
	ErrBadBIP34Height:         "ErrBadBIP34Height",
	ErrMissingCoinbaseHeight:  "ErrMissingCoinbaseHeight",
	ErrBadTxVersion:           "ErrBadTxVersion",
	ErrOrphanBlock:            "ErrOrphanBlock",
	ErrInvalidAncestorBlock:   "ErrInvalidAncestorBlock",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// VerifyError is returned by every chain-level rejection. Kind tells the
// caller how to react (ban, ignore, hold for later); Malleated marks
// failures that could become valid if the block were relayed with
// different-but-equivalent bytes (e.g. a bad merkle root from transaction
// reordering), which must never be cached as permanently invalid.
type VerifyError struct {
	Kind      ErrorKind
	Code      ErrorCode
	Reason    string
	Score     int
	Malleated bool
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Code, e.Reason)
}

func verifyError(kind ErrorKind, code ErrorCode, reason string) *VerifyError {
	return &VerifyError{Kind: kind, Code: code, Reason: reason, Score: defaultScoreFor(kind)}
}

func defaultScoreFor(kind ErrorKind) int {
	switch kind {
	case ErrorKindInvalid:
		return 100
	case ErrorKindMalformed:
		return 100
	case ErrorKindObsolete:
		return 0
	case ErrorKindCheckpoint:
		return 100
	default:
		return 0
	}
}

// ruleError is the common constructor used throughout validate.go: it
// reports a deterministic consensus-rule violation, not malleated unless
// the caller overrides it afterward.
func ruleError(code ErrorCode, reason string) *VerifyError {
	return verifyError(ErrorKindInvalid, code, reason)
}

// malleatedError reports a rule violation that could be cured by relaying
// the same logical block with different bytes (reordered transactions,
// alternate witness encoding) and therefore must not be latched into the
// invalid-block LRU.
func malleatedError(code ErrorCode, reason string) *VerifyError {
	err := verifyError(ErrorKindInvalid, code, reason)
	err.Malleated = true
	return err
}
