// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/cashnode/cashd/chaincfg"
	"github.com/cashnode/cashd/txscript"
)

// State is the immutable set of consensus rules in force at a given block
// height and median-time-past. Once constructed, a State is never mutated;
// a new one is derived for every block the chain connects.
type State struct {
	Flags     txscript.ScriptFlags
	LockFlags uint32

	BIP34 bool
	CSV   bool

	UAHF            bool
	DAA             bool
	MagneticAnomaly bool
	GreatWall       bool
	Graviton        bool
	Phonon          bool
	Asert           bool
	Axion           bool
	Tachyon         bool
	Selectron       bool
	Gluon           bool
	Jefferson       bool
	Wellington      bool
}

// MaxBlockSize returns the serialized block size ceiling in force under s:
// 2MB before UAHF, 32MB from UAHF on, per params.
func (s *State) MaxBlockSize(params *chaincfg.Params) uint32 {
	if s.UAHF {
		return params.MaxBlockSize
	}
	return params.MaxBlockSizeLegacy
}

// LockFlags bit positions, consumed by sequence-lock verification.
const (
	LockFlagVerifySequence uint32 = 1 << iota
	LockFlagVerifyMTP
)

// deployments bundles the per-chain BIP9 machinery Derive needs: the
// params table plus one threshold cache shared across calls.
type deployments struct {
	params *chaincfg.Params
	csv    *thresholdCache
}

func newDeployments(params *chaincfg.Params) *deployments {
	return &deployments{params: params, csv: newThresholdCache(64)}
}

// Derive computes the DeploymentState active for a block extending prev
// (nil at genesis), timestamped at medianTime (its own median-time-past,
// not its own timestamp — every MTP-gated rule below reads this value).
func (d *deployments) Derive(prev *Entry, medianTime int64) *State {
	height := uint64(0)
	if prev != nil {
		height = prev.Height + 1
	}
	p := d.params

	s := &State{}
	s.BIP34 = height >= p.BIP34Height
	bip65 := height >= p.BIP65Height
	s.UAHF = height >= p.UAHFHeight
	s.DAA = height >= p.DAAHeight
	s.MagneticAnomaly = uint64(medianTime) >= p.MagneticAnomalyActivationTime
	s.GreatWall = uint64(medianTime) >= p.GreatWallActivationTime
	s.Graviton = uint64(medianTime) >= p.GravitonActivationTime
	s.Phonon = uint64(medianTime) >= p.PhononActivationTime
	s.Asert = uint64(medianTime) >= p.AsertActivationTime
	s.Axion = uint64(medianTime) >= p.AxionActivationTime
	s.Tachyon = uint64(medianTime) >= p.TachyonActivationTime
	s.Selectron = uint64(medianTime) >= p.SelectronActivationTime
	s.Gluon = uint64(medianTime) >= p.GluonActivationTime
	s.Jefferson = uint64(medianTime) >= p.JeffersonActivationTime
	s.Wellington = uint64(medianTime) >= p.WellingtonActivationTime

	csvDep := p.Deployments[chaincfg.DeploymentCSV]
	csvState := thresholdState(d.csv, csvDep.BitNumber, &csvDep,
		p.MinerConfirmationWindow, p.RuleChangeActivationThreshold, prev)
	s.CSV = csvState == ThresholdActive

	var flags txscript.ScriptFlags
	if uint64(medianTime) >= p.BIP16Time {
		flags |= txscript.ScriptBip16
	}
	if s.CSV {
		flags |= txscript.ScriptVerifyCheckSequenceVerify
		s.LockFlags |= LockFlagVerifySequence | LockFlagVerifyMTP
	}
	if bip65 {
		flags |= txscript.ScriptVerifyCheckLockTimeVerify
	}

	if s.UAHF {
		flags |= txscript.ScriptVerifyDERSignatures | txscript.ScriptEnableSighashForkID
	}
	if s.DAA {
		flags |= txscript.ScriptVerifyLowS | txscript.ScriptVerifyNullFail
	}
	if s.MagneticAnomaly {
		flags |= txscript.ScriptVerifySigPushOnly | txscript.ScriptVerifyCleanStack |
			txscript.ScriptVerifyCheckDataSig
	}
	if s.Graviton {
		flags |= txscript.ScriptVerifyMinimalData
	}

	s.Flags = flags
	return s
}

// minVersionFor returns the minimum block version required at height,
// following BIP34/66/65's version-floor schedule.
func minVersionFor(p *chaincfg.Params, height uint64) int32 {
	switch {
	case height >= p.BIP65Height:
		return 4
	case height >= p.BIP66Height:
		return 3
	case height >= p.BIP34Height:
		return 2
	default:
		return 1
	}
}
