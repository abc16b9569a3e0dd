// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// ErrorCode identifies a kind of script error.
type ErrorCode int

// One identifier per condition the interpreter can fail with, following
// the ErrorCode+String()-table idiom used throughout this codebase.
const (
	ErrScriptSize ErrorCode = iota
	ErrPushSize
	ErrOpCount
	ErrStackSize
	ErrBadOpcode
	ErrDisabledOpcode
	ErrMinimalData
	ErrMinimalIf
	ErrVerify
	ErrEqualVerify
	ErrNumEqualVerify
	ErrCheckSigVerify
	ErrCheckDataSigVerify
	ErrCheckMultisigVerify
	ErrUnbalancedConditional
	ErrInvalidStackOperation
	ErrInvalidAltStackOperation
	ErrNegativeLocktime
	ErrUnsatisfiedLocktime
	ErrDiscourageUpgradableNops
	ErrDivByZero
	ErrModByZero
	ErrInvalidSplitRange
	ErrInvalidOperandSize
	ErrImpossibleEncoding
	ErrInvalidNumberRange
	ErrPubKeyType
	ErrNonCompressedPubkey
	ErrSigDER
	ErrSigHighS
	ErrSigHashType
	ErrSigBadLength
	ErrSigNonSchnorr
	ErrSigPushOnly
	ErrIllegalForkID
	ErrMustUseForkID
	ErrNullFail
	ErrPubKeyCount
	ErrSigCount
	ErrInvalidBitfieldSize
	ErrBitfieldSize
	ErrBitRange
	ErrInvalidBitCount
	ErrInvalidBitRange
	ErrCleanStack
	ErrEvalFalse
	ErrOpReturn
	ErrInputSigChecks
	ErrUnknownError
	ErrInternal
	ErrNumErrorCodes // sentinel
)

var errorCodeStrings = map[ErrorCode]string{
	ErrScriptSize:               "ErrScriptSize",
	ErrPushSize:                 "ErrPushSize",
	ErrOpCount:                  "ErrOpCount",
	ErrStackSize:                "ErrStackSize",
	ErrBadOpcode:                "ErrBadOpcode",
	ErrDisabledOpcode:           "ErrDisabledOpcode",
	ErrMinimalData:              "ErrMinimalData",
	ErrMinimalIf:                "ErrMinimalIf",
	ErrVerify:                   "ErrVerify",
	ErrEqualVerify:              "ErrEqualVerify",
	ErrNumEqualVerify:           "ErrNumEqualVerify",
	ErrCheckSigVerify:           "ErrCheckSigVerify",
	ErrCheckDataSigVerify:       "ErrCheckDataSigVerify",
	ErrCheckMultisigVerify:      "ErrCheckMultisigVerify",
	ErrUnbalancedConditional:    "ErrUnbalancedConditional",
	ErrInvalidStackOperation:    "ErrInvalidStackOperation",
	ErrInvalidAltStackOperation: "ErrInvalidAltStackOperation",
	ErrNegativeLocktime:         "ErrNegativeLocktime",
	ErrUnsatisfiedLocktime:      "ErrUnsatisfiedLocktime",
	ErrDiscourageUpgradableNops: "ErrDiscourageUpgradableNops",
	ErrDivByZero:                "ErrDivByZero",
	ErrModByZero:                "ErrModByZero",
	ErrInvalidSplitRange:        "ErrInvalidSplitRange",
	ErrInvalidOperandSize:       "ErrInvalidOperandSize",
	ErrImpossibleEncoding:       "ErrImpossibleEncoding",
	ErrInvalidNumberRange:       "ErrInvalidNumberRange",
	ErrPubKeyType:               "ErrPubKeyType",
	ErrNonCompressedPubkey:      "ErrNonCompressedPubkey",
	ErrSigDER:                   "ErrSigDER",
	ErrSigHighS:                 "ErrSigHighS",
	ErrSigHashType:              "ErrSigHashType",
	ErrSigBadLength:             "ErrSigBadLength",
	ErrSigNonSchnorr:            "ErrSigNonSchnorr",
	ErrSigPushOnly:              "ErrSigPushOnly",
	ErrIllegalForkID:            "ErrIllegalForkID",
	ErrMustUseForkID:            "ErrMustUseForkID",
	ErrNullFail:                 "ErrNullFail",
	ErrPubKeyCount:              "ErrPubKeyCount",
	ErrSigCount:                 "ErrSigCount",
	ErrInvalidBitfieldSize:      "ErrInvalidBitfieldSize",
	ErrBitfieldSize:             "ErrBitfieldSize",
	ErrBitRange:                 "ErrBitRange",
	ErrInvalidBitCount:          "ErrInvalidBitCount",
	ErrInvalidBitRange:          "ErrInvalidBitRange",
	ErrCleanStack:               "ErrCleanStack",
	ErrEvalFalse:                "ErrEvalFalse",
	ErrOpReturn:                 "ErrOpReturn",
	ErrInputSigChecks:           "ErrInputSigChecks",
	ErrUnknownError:             "ErrUnknownError",
	ErrInternal:                 "ErrInternal",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return "Unknown ErrorCode"
}

// ScriptError identifies an error relating to script evaluation. It is
// used to indicate three categories of error: a script was malformed in a
// way the consensus rules forbid, a script executed but resolved to false,
// or a signature/encoding constraint was violated. It satisfies the error
// interface.
type ScriptError struct {
	ErrorCode   ErrorCode
	Description string
}

// Error implements the error interface.
func (e ScriptError) Error() string {
	return e.Description
}

// scriptError creates a ScriptError given a set of arguments.
func scriptError(c ErrorCode, desc string) ScriptError {
	return ScriptError{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a ScriptError
// with the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	serr, ok := err.(ScriptError)
	return ok && serr.ErrorCode == c
}
