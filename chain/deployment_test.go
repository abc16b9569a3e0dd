// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"testing"

	"github.com/cashnode/cashd/chaincfg"
	"github.com/cashnode/cashd/txscript"
)

func TestDeriveGenesisMainnetNothingActive(t *testing.T) {
	d := newDeployments(&chaincfg.MainNetParams)
	s := d.Derive(nil, 0)

	if s.UAHF || s.DAA || s.MagneticAnomaly || s.Asert || s.Axion {
		t.Errorf("no upgrade should be active at mainnet genesis: %+v", s)
	}
}

func TestDeriveRegtestEverythingActiveFromGenesis(t *testing.T) {
	d := newDeployments(&chaincfg.RegressionNetParams)
	entries := buildChain(1, chaincfg.RegressionNetParams.PowLimitBits)
	s := d.Derive(entries[0], entries[0].Time.Unix())

	if !s.BIP34 {
		t.Error("BIP34 must be active immediately on regtest")
	}
	if !s.UAHF || !s.DAA {
		t.Error("UAHF/DAA must be active immediately on regtest")
	}
}

func TestDeriveCheckDataSigGatedByMagneticAnomaly(t *testing.T) {
	d := newDeployments(&chaincfg.MainNetParams)
	before := d.Derive(nil, 0)
	if before.MagneticAnomaly {
		t.Fatal("mainnet genesis must predate MagneticAnomaly")
	}
	if before.Flags&txscript.ScriptVerifyCheckDataSig != 0 {
		t.Error("ScriptVerifyCheckDataSig must not be set before MagneticAnomaly activates")
	}

	d = newDeployments(&chaincfg.RegressionNetParams)
	entries := buildChain(1, chaincfg.RegressionNetParams.PowLimitBits)
	after := d.Derive(entries[0], entries[0].Time.Unix())
	if !after.MagneticAnomaly {
		t.Fatal("MagneticAnomaly must be active immediately on regtest")
	}
	if after.Flags&txscript.ScriptVerifyCheckDataSig == 0 {
		t.Error("ScriptVerifyCheckDataSig must be set once MagneticAnomaly is active")
	}
}

func TestMaxBlockSize(t *testing.T) {
	params := &chaincfg.MainNetParams

	preUAHF := &State{UAHF: false}
	if got := preUAHF.MaxBlockSize(params); got != params.MaxBlockSizeLegacy {
		t.Errorf("pre-UAHF max block size: got %d want %d", got, params.MaxBlockSizeLegacy)
	}

	postUAHF := &State{UAHF: true}
	if got := postUAHF.MaxBlockSize(params); got != params.MaxBlockSize {
		t.Errorf("post-UAHF max block size: got %d want %d", got, params.MaxBlockSize)
	}
}

func TestMinVersionFor(t *testing.T) {
	params := &chaincfg.MainNetParams

	tests := []struct {
		height uint64
		want   int32
	}{
		{0, 1},
		{params.BIP34Height, 2},
		{params.BIP66Height, 3},
		{params.BIP65Height, 4},
	}

	for _, test := range tests {
		got := minVersionFor(params, test.height)
		if got != test.want {
			t.Errorf("minVersionFor(%d): got %d want %d", test.height, got, test.want)
		}
	}
}

func TestThresholdStateString(t *testing.T) {
	tests := []struct {
		state ThresholdState
		want  string
	}{
		{ThresholdDefined, "defined"},
		{ThresholdStarted, "started"},
		{ThresholdLockedIn, "locked-in"},
		{ThresholdActive, "active"},
		{ThresholdFailed, "failed"},
		{ThresholdState(99), "unknown"},
	}
	for _, test := range tests {
		if got := test.state.String(); got != test.want {
			t.Errorf("%d.String(): got %q want %q", test.state, got, test.want)
		}
	}
}
