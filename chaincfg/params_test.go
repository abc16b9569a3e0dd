// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "testing"

func TestMainNetGenesisHash(t *testing.T) {
	want := "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26"
	if MainNetParams.GenesisHash.String() != want {
		t.Errorf("mainnet genesis hash: got %s want %s",
			MainNetParams.GenesisHash.String(), want)
	}
}

func TestDeploymentIndexByBitNumber(t *testing.T) {
	idx, ok := MainNetParams.DeploymentIndexByBitNumber(0)
	if !ok || idx != DeploymentCSV {
		t.Errorf("bit 0: got idx=%d ok=%v want idx=%d ok=true", idx, ok, DeploymentCSV)
	}

	idx, ok = MainNetParams.DeploymentIndexByBitNumber(28)
	if !ok || idx != DeploymentTestDummy {
		t.Errorf("bit 28: got idx=%d ok=%v want idx=%d ok=true", idx, ok, DeploymentTestDummy)
	}

	if _, ok := MainNetParams.DeploymentIndexByBitNumber(15); ok {
		t.Error("bit 15 should not be claimed by any deployment")
	}
}

func TestParamsByName(t *testing.T) {
	p, ok := ParamsByName("mainnet")
	if !ok || p != &MainNetParams {
		t.Errorf("ParamsByName(mainnet): got %v, %v", p, ok)
	}

	if _, ok := ParamsByName("nonexistent"); ok {
		t.Error("ParamsByName(nonexistent): expected false, got true")
	}
}

func TestRegisterCustomNetwork(t *testing.T) {
	custom := Params{Name: "customnet-params-test"}
	Register(&custom)

	p, ok := ParamsByName("customnet-params-test")
	if !ok || p != &custom {
		t.Errorf("ParamsByName after Register: got %v, %v", p, ok)
	}
}

func TestPowLimits(t *testing.T) {
	if MainNetParams.PowLimit.Sign() <= 0 {
		t.Error("mainnet pow limit must be positive")
	}
	if RegressionNetParams.PowLimit.Cmp(MainNetParams.PowLimit) != 0 {
		t.Error("regtest pow limit expected to match mainnet's in this build")
	}
}

func TestCheckpointsSortedByHeight(t *testing.T) {
	for _, params := range []*Params{&MainNetParams, &TestNet3Params} {
		prev := uint64(0)
		for i, cp := range params.Checkpoints {
			if i > 0 && cp.Height <= prev {
				t.Errorf("%s: checkpoint at index %d (height %d) is not "+
					"strictly after the previous one (height %d)",
					params.Name, i, cp.Height, prev)
			}
			prev = cp.Height
		}
	}
}
