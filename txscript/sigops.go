// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// MaxPubKeysPerMultiSig is the maximum number of public keys allowed in a
// multi-signature script, matching the range OP_CHECKMULTISIG's popped key
// count is validated against.
const MaxPubKeysPerMultiSig = 20

// getSigOpCount scans pops, counting one sigop per CHECKSIG/CHECKDATASIG
// (verify variants included) and, for CHECKMULTISIG, either the number of
// keys named by an immediately preceding small-int push (precise) or
// MaxPubKeysPerMultiSig (the conservative count used when the preceding
// push isn't a minimal small int, matching legacy imprecise counting).
func getSigOpCount(pops []parsedOpcode, precise bool) int {
	numSigOps := 0
	for i, pop := range pops {
		switch pop.opcode.value {
		case OpCheckSig, OpCheckSigVerify, OpCheckDataSig, OpCheckDataSigVerify:
			numSigOps++
		case OpCheckMultiSig, OpCheckMultiSigVerify:
			if precise && i > 0 &&
				pops[i-1].opcode.value >= Op1 && pops[i-1].opcode.value <= Op16 {
				numSigOps += int(pops[i-1].opcode.value - (Op1 - 1))
			} else {
				numSigOps += MaxPubKeysPerMultiSig
			}
		}
	}
	return numSigOps
}

// GetSigOpCount returns the number of signature operations in script,
// using the imprecise (legacy) counting rule for CHECKMULTISIG.
func GetSigOpCount(script []byte) int {
	pops, err := parseScript(script)
	if err != nil {
		return 0
	}
	return getSigOpCount(pops, false)
}

// GetPreciseSigOpCount returns the number of signature operations in
// scriptPubKey, using scriptSig's last push as the redeem script when
// scriptPubKey is a pay-to-script-hash template, and the precise
// CHECKMULTISIG counting rule throughout.
func GetPreciseSigOpCount(scriptSig, scriptPubKey []byte, isScriptHash bool) int {
	pubKeyPops, err := parseScript(scriptPubKey)
	if err != nil {
		return 0
	}

	if !isScriptHash {
		return getSigOpCount(pubKeyPops, true)
	}

	sigPops, err := parseScript(scriptSig)
	if err != nil || len(sigPops) == 0 {
		return 0
	}

	redeemScript := sigPops[len(sigPops)-1]
	if !redeemScript.isPush() {
		return 0
	}
	rsPops, err := parseScript(redeemScript.data)
	if err != nil {
		return 0
	}
	return getSigOpCount(rsPops, true)
}
