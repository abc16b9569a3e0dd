// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"math/big"

	"github.com/cashnode/cashd/chaincfg"
)

// CompactToBig converts a compact "nBits" difficulty representation (a
// base-256 floating point number: the low 3 bytes are the mantissa, the
// high byte the exponent) to its full big.Int target.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	exponent := compact >> 24

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, uint(8*(exponent-3)))
	}

	if compact&0x00800000 != 0 {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact converts a big.Int target to its compact nBits encoding.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var mantissa uint32
	exponent := uint(len(n.Bytes()))
	if exponent <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - exponent)
	} else {
		tn := new(big.Int).Set(n)
		mantissa = uint32(tn.Rsh(tn, 8*(exponent-3)).Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	compact := uint32(exponent)<<24 | mantissa
	if n.Sign() < 0 {
		compact |= 0x00800000
	}
	return compact
}

const (
	legacyRetargetClampHigh = 4
	legacyRetargetClampLow  = 4
	edaThreshold            = 12 * 60 * 60 // 12h MTP span triggers the 1.25x emergency adjustment
)

// medianTimeSpan is the window the median-time-past check and the legacy
// EDA both look back over.
const medianTimeSpan = 11

// medianTimePast returns the median timestamp of the given entry and its
// ten ancestors, the definition every contextual timestamp check and the
// legacy EDA trigger use.
func medianTimePast(e *Entry) int64 {
	timestamps := make([]int64, 0, medianTimeSpan)
	for n := e; n != nil && len(timestamps) < medianTimeSpan; n = n.parent {
		timestamps = append(timestamps, n.Time.Unix())
	}
	sortInt64s(timestamps)
	return timestamps[len(timestamps)/2]
}

func sortInt64s(s []int64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// calcLegacyRetarget computes the pre-DAA 2016-block retarget with a ±4x
// clamp, and the "emergency difficulty adjustment" that lets a chain with
// no blocks for 12 hours (by MTP span) retarget 25% easier mid-window.
func calcLegacyRetarget(params *chaincfg.Params, prev *Entry) uint32 {
	height := prev.Height + 1
	windowSize := params.DifficultyAdjustmentWindowSize

	if height%windowSize != 0 {
		if anchor := prev.RelativeAncestor(6); anchor != nil {
			span := medianTimePast(prev) - medianTimePast(anchor)
			if span >= edaThreshold {
				return boundedNewTarget(params, prev.Bits, 5, 4)
			}
		}
		return prev.Bits
	}

	firstNode := prev.RelativeAncestor(windowSize - 1)
	if firstNode == nil {
		return prev.Bits
	}

	actualTimespan := prev.Time.Unix() - firstNode.Time.Unix()
	targetTimespan := int64(params.TargetTimePerBlock/1e9) * int64(windowSize)

	adjustedTimespan := actualTimespan
	if adjustedTimespan < targetTimespan/legacyRetargetClampHigh {
		adjustedTimespan = targetTimespan / legacyRetargetClampHigh
	} else if adjustedTimespan > targetTimespan*legacyRetargetClampLow {
		adjustedTimespan = targetTimespan * legacyRetargetClampLow
	}

	oldTarget := CompactToBig(prev.Bits)
	newTarget := new(big.Int).Mul(oldTarget, big.NewInt(adjustedTimespan))
	newTarget.Div(newTarget, big.NewInt(targetTimespan))
	return clampToCompact(params, newTarget)
}

// boundedNewTarget scales prev's target by num/den and re-clamps to the
// network's proof-of-work limit, used by the legacy EDA path above.
func boundedNewTarget(params *chaincfg.Params, bits uint32, num, den int64) uint32 {
	target := CompactToBig(bits)
	target.Mul(target, big.NewInt(num))
	target.Div(target, big.NewInt(den))
	return clampToCompact(params, target)
}

func clampToCompact(params *chaincfg.Params, target *big.Int) uint32 {
	if target.Cmp(params.PowLimit) > 0 {
		target = params.PowLimit
	}
	return BigToCompact(target)
}

// suitableBlock implements the DAA's median-of-three selection: given a
// block, look at it and its two immediate ancestors, and keep the one with
// the median timestamp (ties broken by height, since all three are
// distinct heights here anyway).
func suitableBlock(e *Entry) *Entry {
	candidates := [3]*Entry{e.parent.parent, e.parent, e}
	if candidates[0].Time.After(candidates[2].Time) {
		candidates[0], candidates[2] = candidates[2], candidates[0]
	}
	if candidates[0].Time.After(candidates[1].Time) {
		candidates[0], candidates[1] = candidates[1], candidates[0]
	}
	if candidates[1].Time.After(candidates[2].Time) {
		candidates[1], candidates[2] = candidates[2], candidates[1]
	}
	return candidates[1]
}

// calcDAARetarget computes the "cw-144" difficulty adjustment algorithm:
// target work over the 144 blocks between two median-of-three anchors,
// scaled by the time they actually took versus 144 block intervals.
func calcDAARetarget(params *chaincfg.Params, prev *Entry) uint32 {
	const window = 144
	if prev.Height < window {
		return prev.Bits
	}

	last := suitableBlock(prev)
	firstAnchor := prev.RelativeAncestor(window)
	if firstAnchor == nil || firstAnchor.parent == nil || firstAnchor.parent.parent == nil {
		return prev.Bits
	}
	first := suitableBlock(firstAnchor)

	actualTimespan := last.Time.Unix() - first.Time.Unix()
	if actualTimespan > 288*int64(params.TargetTimePerBlock/1e9) {
		actualTimespan = 288 * int64(params.TargetTimePerBlock/1e9)
	} else if actualTimespan < 72*int64(params.TargetTimePerBlock/1e9) {
		actualTimespan = 72 * int64(params.TargetTimePerBlock/1e9)
	}

	// work is the chainwork of the blocks after first up to and including
	// last;
	// ChainWork deltas avoid re-walking the header chain to sum CalcWork.
	work := new(big.Int).Sub(last.ChainWork, first.ChainWork)

	projectedWork := new(big.Int).Mul(work, big.NewInt(int64(params.TargetTimePerBlock/1e9)))
	projectedWork.Div(projectedWork, big.NewInt(actualTimespan))

	if projectedWork.Sign() <= 0 {
		return BigToCompact(params.PowLimit)
	}
	target := new(big.Int).Div(oneLsh256, projectedWork)
	target.Sub(target, big.NewInt(1))
	return clampToCompact(params, target)
}

// The cubic 2^x approximation constants below are
// taken verbatim from the exponential ASERT schedule: they reproduce
// 2^frac for the fractional part of the schedule's exponent to within a
// fraction of a part per billion, which is what keeps every node's integer
// arithmetic bit-identical.
const (
	asertCoeff0 = 195766423245049
	asertCoeff1 = 971821376
	asertCoeff2 = 5127
)

// calcASERTRetarget computes the anchored exponential difficulty schedule:
// target drifts by a factor of 2 every halfLife seconds that actual block
// production lags or leads the network's target spacing, measured from a
// single fixed reference block rather than recomputed from genesis.
func calcASERTRetarget(params *chaincfg.Params, evalTime int64, evalHeight uint64) uint32 {
	refTarget := CompactToBig(params.AsertReferenceBits)
	heightDiff := int64(evalHeight) - int64(params.AsertReferenceHeight)
	timeDiff := (evalTime - int64(params.AsertReferenceTime)) - int64(params.TargetTimePerBlock/1e9)*(heightDiff+1)

	// exponent is a Q16.16 fixed-point value: timeDiff*2^16 / halfLife.
	shifted := new(big.Int).Lsh(big.NewInt(timeDiff), 16)
	exponent := new(big.Int).Div(shifted, big.NewInt(params.AsertHalfLife))

	// big.Int's Rsh/And both floor toward negative infinity for negative
	// operands (infinite two's complement semantics), so intPart and frac
	// stay consistent (frac always in [0, 0xffff]) without a sign fixup.
	intPart := new(big.Int).Rsh(exponent, 16)
	frac := new(big.Int).And(exponent, big.NewInt(0xffff))

	// The cubic below is evaluated in uint64: at e == 0xffff the unrounded
	// sum exceeds math.MaxInt64, so signed arithmetic isn't an option.
	e := frac.Uint64()
	factor := int64((asertCoeff0*e+asertCoeff1*e*e+asertCoeff2*e*e*e+(1<<47))>>48) + 1<<16

	target := new(big.Int).Mul(refTarget, big.NewInt(factor))
	shiftAmount := intPart.Int64() - 16
	if shiftAmount < 0 {
		target.Rsh(target, uint(-shiftAmount))
	} else {
		target.Lsh(target, uint(shiftAmount))
	}

	if target.Sign() == 0 {
		return BigToCompact(big.NewInt(1))
	}
	return clampToCompact(params, target)
}

// NextWorkRequired dispatches to the retarget algorithm selected by the
// deployment state active at prev.Height+1.
func NextWorkRequired(params *chaincfg.Params, prev *Entry, state *State, evalTime int64) uint32 {
	if prev == nil {
		return params.PowLimitBits
	}
	switch {
	case state.Asert:
		return calcASERTRetarget(params, evalTime, prev.Height+1)
	case state.DAA:
		return calcDAARetarget(params, prev)
	default:
		return calcLegacyRetarget(params, prev)
	}
}
