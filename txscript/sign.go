// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/pkg/errors"

	"github.com/cashnode/cashd/wire"
)

// RawTxInECDSASignature returns the serialized ECDSA signature for the
// input idx of the given transaction, with the hash type byte appended.
func RawTxInECDSASignature(tx *wire.MsgTx, idx int, subScript []byte, hashType SigHashType,
	key *btcec.PrivateKey, amount int64, hashes *TxSigHashes) ([]byte, error) {

	parsed, err := parseScript(subScript)
	if err != nil {
		return nil, err
	}
	hash, err := CalcSignatureHash(parsed, hashType, tx, idx, amount, hashes)
	if err != nil {
		return nil, err
	}

	sig := ecdsa.Sign(key, hash[:])
	return append(sig.Serialize(), byte(hashType)), nil
}

// RawTxInSchnorrSignature returns the serialized Schnorr signature for the
// input idx of the given transaction, with the hash type byte appended.
func RawTxInSchnorrSignature(tx *wire.MsgTx, idx int, subScript []byte, hashType SigHashType,
	key *btcec.PrivateKey, amount int64, hashes *TxSigHashes) ([]byte, error) {

	parsed, err := parseScript(subScript)
	if err != nil {
		return nil, err
	}
	hash, err := CalcSignatureHash(parsed, hashType, tx, idx, amount, hashes)
	if err != nil {
		return nil, err
	}

	sig, err := schnorr.Sign(key, hash[:])
	if err != nil {
		return nil, errors.Errorf("cannot sign tx input: %s", err)
	}
	return append(sig.Serialize(), byte(hashType)), nil
}

// SignatureScript creates a standard pay-to-pubkey-hash input signature
// script spending the output locked by script with privKey, using a
// Schnorr signature when useSchnorr is set and an ECDSA signature
// otherwise. tx must already contain every input and output; only the
// signature script at idx is produced.
func SignatureScript(tx *wire.MsgTx, idx int, script []byte, hashType SigHashType,
	privKey *btcec.PrivateKey, amount int64, compress bool, useSchnorr bool) ([]byte, error) {

	var sig []byte
	var err error
	if useSchnorr {
		sig, err = RawTxInSchnorrSignature(tx, idx, script, hashType, privKey, amount, nil)
	} else {
		sig, err = RawTxInECDSASignature(tx, idx, script, hashType, privKey, amount, nil)
	}
	if err != nil {
		return nil, err
	}

	pubKey := privKey.PubKey()
	var pkData []byte
	if compress {
		pkData = pubKey.SerializeCompressed()
	} else {
		pkData = pubKey.SerializeUncompressed()
	}

	return NewScriptBuilder().AddData(sig).AddData(pkData).Script()
}

// mergeScripts chooses between sigScript and prevScript, two candidate
// signature scripts for the same input: it returns sigScript when it parses
// to at least one opcode and is strictly longer than prevScript, and
// prevScript otherwise. It does not combine the contents of the two
// scripts and does not unwrap pay-to-script-hash redeem scripts.
func mergeScripts(sigScript, prevScript []byte) ([]byte, error) {
	sigPops, err := parseScript(sigScript)
	if err != nil || len(sigPops) == 0 {
		return prevScript, nil
	}
	if len(sigScript) > len(prevScript) {
		return sigScript, nil
	}
	return prevScript, nil
}
