// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the network parameters the chain validator needs
// to evaluate blocks against: proof-of-work limits, checkpoints, and the
// height/median-time-past thresholds at which each consensus upgrade that
// the chain package's deployment State tracks becomes active.
package chaincfg

import (
	"math/big"
	"time"

	"github.com/cashnode/cashd/chainhash"
	"github.com/cashnode/cashd/wire"
)

// bigOne is 1 represented as a big.Int, defined once to avoid the overhead
// of creating it on every limit computation.
var bigOne = big.NewInt(1)

// mainPowLimit is the highest proof of work value a block can have on the
// main network. It is the value 2^255 - 1.
var mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

// regressionPowLimit is the proof of work limit for the regression test
// network, deliberately permissive so tests can mine blocks instantly.
var regressionPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

// testNet3PowLimit is the proof of work limit for the test network.
var testNet3PowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

const legacyDifficultyAdjustmentWindowSize = 2016
const timestampDeviationTolerance = 7200 // 2 hours, per the contextual timestamp check

// Checkpoint identifies a known-good block at a given height. The chain
// rejects any candidate at a checkpointed height whose hash doesn't match.
type Checkpoint struct {
	Height uint64
	Hash   *chainhash.Hash
}

// Constants that define the deployment offset in the Deployments array of
// Params. DeploymentCSV is the only rule currently voted on through BIP9
// versionbits; every later upgrade in this family activates by a flag-day
// median-time-past instead of a miner-signaled threshold.
const (
	DeploymentTestDummy = iota
	DeploymentCSV

	// DefinedDeployments must always come last; it is used to size the
	// Deployments array.
	DefinedDeployments
)

// ConsensusDeployment defines the BIP9 threshold-state parameters for a
// single versionbits-gated rule change.
type ConsensusDeployment struct {
	BitNumber  uint8
	StartTime  uint64
	ExpireTime uint64
}

// Params defines a network by the consensus parameters the chain validator
// needs: proof-of-work limits, block-size and timestamp bounds, checkpoints,
// and the activation point of every deployment the chain package's State
// tracks.
type Params struct {
	Name string

	GenesisBlock *wire.MsgBlock
	GenesisHash  *chainhash.Hash

	PowLimit     *big.Int
	PowLimitBits uint32

	CoinbaseMaturity         uint64
	SubsidyReductionInterval uint64

	// TargetTimePerBlock is the desired spacing between blocks, used by
	// both the legacy retarget and the ASERT anchor (600s).
	TargetTimePerBlock time.Duration

	// TimestampDeviationTolerance bounds how far into the future (in
	// seconds) a block's timestamp may sit ahead of the validator's clock.
	TimestampDeviationTolerance uint64

	// DifficultyAdjustmentWindowSize is the retarget window used by the
	// legacy (pre-DAA) algorithm.
	DifficultyAdjustmentWindowSize uint64

	// MaxBlockSizeLegacy and MaxBlockSize are the pre-UAHF and post-UAHF
	// serialized block size ceilings.
	MaxBlockSizeLegacy uint32
	MaxBlockSize       uint32

	Checkpoints []Checkpoint

	// RuleChangeActivationThreshold and MinerConfirmationWindow drive the
	// BIP9 versionbits state machine; Deployments holds the per-rule
	// bit/time parameters it evaluates against.
	RuleChangeActivationThreshold uint64
	MinerConfirmationWindow       uint64
	Deployments                   [DefinedDeployments]ConsensusDeployment

	// Height-based activations, evaluated against prev.height+1.
	BIP34Height uint64
	BIP65Height uint64
	BIP66Height uint64
	UAHFHeight  uint64
	DAAHeight   uint64

	// Median-time-past activations. BIP16Time gates P2SH; every later
	// upgrade in this family is a flag-day activated by MTP rather than
	// by height, matching how the real network scheduled them.
	BIP16Time                     uint64
	MagneticAnomalyActivationTime uint64
	GreatWallActivationTime       uint64
	GravitonActivationTime        uint64
	PhononActivationTime          uint64
	AsertActivationTime           uint64
	AxionActivationTime           uint64
	TachyonActivationTime         uint64
	SelectronActivationTime       uint64
	GluonActivationTime           uint64
	JeffersonActivationTime       uint64
	WellingtonActivationTime      uint64

	// ASERT anchors the exponential retarget to a fixed reference block
	// rather than recomputing from genesis on every evaluation.
	AsertHalfLife        int64
	AsertReferenceHeight uint64
	AsertReferenceBits   uint32
	AsertReferenceTime   uint64

	// CoinbaseRuleAddresses lists the scriptPubKeys a coinbase must pay at
	// least 8% of its value to once Axion is active and before Wellington
	// retires the rule (the infrastructure-funding coinbase requirement).
	// Empty on every network this module defines, since none of them
	// enforced it during the window the rule existed.
	CoinbaseRuleAddresses [][]byte
}

// DeploymentIndexByBitNumber returns the deployment index whose bit number
// matches the version bit, or false if no active deployment claims it.
func (p *Params) DeploymentIndexByBitNumber(bit uint8) (int, bool) {
	for i, d := range p.Deployments {
		if d.BitNumber == bit {
			return i, true
		}
	}
	return 0, false
}

// MainNetParams defines the consensus parameters for the main network.
var MainNetParams = Params{
	Name: "mainnet",

	GenesisBlock: &mainNetGenesisBlock,
	GenesisHash:  &mainNetGenesisHash,

	PowLimit:     mainPowLimit,
	PowLimitBits: 0x1d00ffff,

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 210000,
	TargetTimePerBlock:       600 * time.Second,

	TimestampDeviationTolerance:    timestampDeviationTolerance,
	DifficultyAdjustmentWindowSize: legacyDifficultyAdjustmentWindowSize,

	MaxBlockSizeLegacy: 2 * 1000 * 1000,
	MaxBlockSize:       32 * 1000 * 1000,

	Checkpoints: []Checkpoint{
		{Height: 0, Hash: &mainNetGenesisHash},
	},

	RuleChangeActivationThreshold: 1916, // 95% of MinerConfirmationWindow
	MinerConfirmationWindow:       2016,
	Deployments: [DefinedDeployments]ConsensusDeployment{
		DeploymentTestDummy: {
			BitNumber:  28,
			StartTime:  1199145601, // January 1, 2008 UTC
			ExpireTime: 1230767999, // December 31, 2008 UTC
		},
		DeploymentCSV: {
			BitNumber:  0,
			StartTime:  1462060800, // May 1, 2016 UTC
			ExpireTime: 1493596800, // May 1, 2017 UTC
		},
	},

	BIP34Height: 227931,
	BIP65Height: 388381,
	BIP66Height: 363725,
	UAHFHeight:  478559,
	DAAHeight:   504031,

	BIP16Time:                     1333238400, // April 1, 2012
	MagneticAnomalyActivationTime: 1542300000, // November 2018 upgrade
	GreatWallActivationTime:       1557921600, // May 2019 upgrade
	GravitonActivationTime:        1573819200, // November 2019 upgrade
	PhononActivationTime:          1589544000, // May 2020 upgrade
	AsertActivationTime:           1605441600, // November 2020 upgrade
	AxionActivationTime:           1605441600,
	TachyonActivationTime:         1621080000, // May 2021 upgrade
	SelectronActivationTime:       1652616000, // May 2022 upgrade
	GluonActivationTime:           1684152000, // May 2023 upgrade
	JeffersonActivationTime:       1715688000, // May 2024 upgrade
	WellingtonActivationTime:      1747224000, // May 2025 upgrade

	AsertHalfLife:        172800, // 2 days
	AsertReferenceHeight: 661647,
	AsertReferenceBits:   0x1804dafe,
	AsertReferenceTime:   1605447844,
}

// RegressionNetParams defines the consensus parameters for the regression
// test network: every deployment is active from genesis and proof-of-work
// is trivial so tests can mine blocks deterministically.
var RegressionNetParams = Params{
	Name: "regtest",

	GenesisBlock: &regTestGenesisBlock,
	GenesisHash:  &regTestGenesisHash,

	PowLimit:     regressionPowLimit,
	PowLimitBits: 0x207fffff,

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 150,
	TargetTimePerBlock:       600 * time.Second,

	TimestampDeviationTolerance:    timestampDeviationTolerance,
	DifficultyAdjustmentWindowSize: legacyDifficultyAdjustmentWindowSize,

	MaxBlockSizeLegacy: 2 * 1000 * 1000,
	MaxBlockSize:       32 * 1000 * 1000,

	Checkpoints: nil,

	RuleChangeActivationThreshold: 108, // 75% of MinerConfirmationWindow
	MinerConfirmationWindow:       144,
	Deployments: [DefinedDeployments]ConsensusDeployment{
		DeploymentTestDummy: {
			BitNumber:  28,
			StartTime:  0,
			ExpireTime: 9223372036854775807, // never expires
		},
		DeploymentCSV: {
			BitNumber:  0,
			StartTime:  0,
			ExpireTime: 9223372036854775807,
		},
	},

	BIP34Height: 0,
	BIP65Height: 0,
	BIP66Height: 0,
	UAHFHeight:  0,
	DAAHeight:   0,

	AsertHalfLife:        172800,
	AsertReferenceHeight: 0,
	AsertReferenceBits:   0x207fffff,
	AsertReferenceTime:   0,
}

// TestNet3Params defines the consensus parameters for the public test
// network (version 3).
var TestNet3Params = Params{
	Name: "testnet3",

	GenesisBlock: &testNet3GenesisBlock,
	GenesisHash:  &testNet3GenesisHash,

	PowLimit:     testNet3PowLimit,
	PowLimitBits: 0x1d00ffff,

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 210000,
	TargetTimePerBlock:       600 * time.Second,

	TimestampDeviationTolerance:    timestampDeviationTolerance,
	DifficultyAdjustmentWindowSize: legacyDifficultyAdjustmentWindowSize,

	MaxBlockSizeLegacy: 2 * 1000 * 1000,
	MaxBlockSize:       32 * 1000 * 1000,

	Checkpoints: []Checkpoint{
		{Height: 0, Hash: &testNet3GenesisHash},
	},

	RuleChangeActivationThreshold: 1512, // 75% of MinerConfirmationWindow
	MinerConfirmationWindow:       2016,
	Deployments: [DefinedDeployments]ConsensusDeployment{
		DeploymentTestDummy: {
			BitNumber:  28,
			StartTime:  1199145601,
			ExpireTime: 1230767999,
		},
		DeploymentCSV: {
			BitNumber:  0,
			StartTime:  1456790400, // March 1, 2016 UTC
			ExpireTime: 1493596800,
		},
	},

	BIP34Height: 21111,
	BIP65Height: 581885,
	BIP66Height: 330776,
	UAHFHeight:  1155875,
	DAAHeight:   1188697,

	BIP16Time:                     1333238400,
	MagneticAnomalyActivationTime: 1542300000,
	GreatWallActivationTime:       1557921600,
	GravitonActivationTime:        1573819200,
	PhononActivationTime:          1589544000,
	AsertActivationTime:           1605441600,
	AxionActivationTime:           1605441600,
	TachyonActivationTime:         1621080000,
	SelectronActivationTime:       1652616000,
	GluonActivationTime:           1684152000,
	JeffersonActivationTime:       1715688000,
	WellingtonActivationTime:      1747224000,

	AsertHalfLife:        172800,
	AsertReferenceHeight: 1421481,
	AsertReferenceBits:   0x1d00ffff,
	AsertReferenceTime:   1605441600,
}

var registeredNets = map[string]*Params{
	MainNetParams.Name:       &MainNetParams,
	RegressionNetParams.Name: &RegressionNetParams,
	TestNet3Params.Name:      &TestNet3Params,
}

// Register makes a network's parameters available for lookup by name via
// ParamsByName. It is a no-op for the three built-in networks, which are
// always registered; it exists so a caller embedding this module can add a
// private network without forking the package.
func Register(params *Params) {
	log.Infof("registering network parameters for %q", params.Name)
	registeredNets[params.Name] = params
}

// ParamsByName returns the registered Params for the given network name, or
// false if no network was registered under that name.
func ParamsByName(name string) (*Params, bool) {
	p, ok := registeredNets[name]
	return p, ok
}
