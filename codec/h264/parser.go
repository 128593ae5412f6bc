/*
NAME
  parser.go

DESCRIPTION
  parser.go implements Parser, a stateful Annex-B byte-stream reassembler
  that turns fragmented input into one access unit per call, tracking
  SPS/PPS state and detecting picture boundaries via slice-header
  comparison (spec §4.3).

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.
*/

package h264

import (
	"bytes"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/vvasgo/accel/devctx"
	"github.com/ausocean/vvasgo/accel/frame"
	"github.com/ausocean/vvasgo/codec/h264/h264dec"
	"github.com/ausocean/vvasgo/codec/h264/h264dec/bits"
)

// NAL unit type range bounds (Table 7-1); VCL NALUs are 1-5 inclusive.
const (
	nalMinVCL = 1
	nalMaxVCL = 5
)

// parseState is the cumulative state-machine bitset from spec §4.3.
type parseState uint8

const (
	stateHaveSPS parseState = 1 << iota
	stateHavePPS
	stateHaveFrame
)

// DecoderInputConfig is the decoder configuration artifact emitted after
// every access unit whose SPS-derived fields changed (spec §6).
type DecoderInputConfig struct {
	Profile, Level, BitDepth int
	Width, Height            int
	FrameRateNum             uint32
	ClockRatio               uint32
	ChromaMode               string // fixed "4:2:0" per spec §4.3/§6
	ScanType                 string
	CodecID                  string
	EntropyBufferCount       int
	SplitBufferMode          bool
	LowLatency               bool
}

func (c DecoderInputConfig) equal(o DecoderInputConfig) bool { return c == o }

// Parser implements spec §4.3's H.264 Parser contract for codec H264.
// H.265 is equivalent in shape per the spec but out of scope for this
// core; Parser does not attempt it.
type Parser struct {
	ctx   *devctx.Context
	log   logging.Logger
	state parseState

	spsTable map[uint64]*h264dec.SPS // up to 32 entries
	ppsTable map[int]*h264dec.PPS    // up to 256 entries, keyed by PPS.ID

	lastHeader  *h264dec.SliceHeader
	lastNALType int
	lastRefIdc  int
	haveLast    bool

	partialIn  []byte
	partialOut []byte
	hasSlice   bool

	lastConfig   DecoderInputConfig
	haveLastConf bool

	eos bool
}

// NewParser creates a Parser. Per spec §4.3's Create contract, H.265 is
// named only for shape parity and is not implemented; codec must always
// be H264 here.
func NewParser(ctx *devctx.Context, l logging.Logger) *Parser {
	h264dec.SetLogger(l)
	return &Parser{
		ctx:      ctx,
		log:      l,
		spsTable: make(map[uint64]*h264dec.SPS),
		ppsTable: make(map[int]*h264dec.PPS),
	}
}

// Status is the outcome of a GetAccessUnit call.
type Status int8

const (
	StatusSuccess Status = iota
	StatusNeedMoreData
	StatusEndOfStream
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNeedMoreData:
		return "need more data"
	case StatusEndOfStream:
		return "end of stream"
	default:
		return "error"
	}
}

// isVCL reports whether nalType is a coded-slice NALU (1-5 inclusive).
func isVCL(nalType int) bool { return nalType >= nalMinVCL && nalType <= nalMaxVCL }

// GetAccessUnit consumes bytes from in (Annex-B: concatenated NALUs
// prefixed by start codes), reassembling exactly one access unit per
// Success return. isEOS signals no further input will ever arrive.
// Returns the access unit wrapped as an External frame.Frame (spec §6
// "Access-unit output"; nil unless status is Success or EndOfStream with
// a non-empty flush), the decoder configuration if it changed this call,
// how many bytes of in were consumed, and the status.
func (p *Parser) GetAccessUnit(in []byte, isEOS bool) (*frame.Frame, *DecoderInputConfig, int, Status) {
	auBytes, cfg, n, status := p.getAccessUnitBytes(in, isEOS)
	if auBytes == nil {
		return nil, cfg, n, status
	}
	f, err := frame.WrapRaw(p.ctx, auBytes, freeAccessUnit, nil)
	if err != nil {
		p.logWarn("could not wrap access unit", "error", err)
		return nil, cfg, n, StatusError
	}
	return f, cfg, n, status
}

// freeAccessUnit is the free callback for access-unit frames: the
// underlying buffer is ordinary Go memory, so there is nothing to
// release beyond letting the garbage collector reclaim it.
func freeAccessUnit(interface{}) {}

// getAccessUnitBytes is GetAccessUnit's implementation, operating on raw
// bytes before they're wrapped as a frame.Frame.
func (p *Parser) getAccessUnitBytes(in []byte, isEOS bool) ([]byte, *DecoderInputConfig, int, Status) {
	if p.eos {
		return nil, nil, 0, StatusEndOfStream
	}

	pending := append(p.partialIn, in...)
	p.partialIn = nil
	oldPartialLen := len(pending) - len(in)

	cursor := 0
	for {
		scAt, scLen, ok := findStartCode(pending, cursor)
		if !ok {
			// No further start code: whatever remains from cursor onward is an
			// incomplete (or absent) trailing NALU.
			tail := pending[cursor:]
			if isEOS {
				if p.hasSlice {
					au := p.partialOut
					p.partialOut = nil
					p.hasSlice = false
					p.eos = true
					return au, nil, len(in), StatusEndOfStream
				}
				p.eos = true
				return nil, nil, len(in), StatusEndOfStream
			}
			p.partialIn = append([]byte(nil), tail...)
			return nil, nil, len(in), StatusNeedMoreData
		}

		nalStart := scAt + scLen
		nextSC, _, nextOK := findStartCode(pending, nalStart)
		nalEnd := len(pending)
		if nextOK {
			nalEnd = nextSC
		} else if !isEOS {
			// This NALU's end hasn't arrived yet; carry it (plus its start
			// code, so the next call can re-find it) into partialIn.
			p.partialIn = append([]byte(nil), pending[scAt:]...)
			return nil, nil, len(in), StatusNeedMoreData
		}

		nalBytes := pending[nalStart:nalEnd]
		au, cfg, status, ok2 := p.consumeNAL(nalBytes)

		if !ok2 {
			// A malformed NALU: discard it and keep scanning, matching the
			// parser's general policy of staying resilient to bad input
			// rather than aborting the whole stream.
			cursor = nalEnd
			if !nextOK {
				cursor = len(pending)
			}
			continue
		}

		if status == StatusSuccess {
			// consumeNAL has already folded nalBytes into the next AU's
			// partialOut; everything from nalEnd onward is still unconsumed.
			p.partialIn = append([]byte(nil), pending[nalEnd:]...)
			consumed := clampOffset(nalEnd, oldPartialLen, len(in))
			return au, cfg, consumed, StatusSuccess
		}

		cursor = nalEnd
		if !nextOK {
			if isEOS {
				continue // loop will hit the EOS flush branch above with cursor==len(pending)
			}
			p.partialIn = nil
			return nil, nil, len(in), StatusNeedMoreData
		}
	}
}

// clampOffset converts an absolute index into pending (partialIn+in) into
// an offset within in alone, per spec §6's "offsets advance monotonically
// into the caller's input" contract.
func clampOffset(pendingIdx, oldPartialLen, inLen int) int {
	off := pendingIdx - oldPartialLen
	if off < 0 {
		return 0
	}
	if off > inLen {
		return inLen
	}
	return off
}

// consumeNAL applies the state-machine transitions of spec §4.3 to a
// single NALU (header+payload, start code already stripped). ok is false
// if the NALU could not be parsed at all (propagated as "skip it").
func (p *Parser) consumeNAL(nalBytes []byte) (au []byte, cfg *DecoderInputConfig, status Status, ok bool) {
	if len(nalBytes) == 0 {
		return nil, nil, StatusNeedMoreData, false
	}
	br := bits.NewBitReader(bytes.NewReader(nalBytes))
	nu, err := h264dec.NewNALUnit(br)
	if err != nil {
		p.logWarn("could not parse NAL unit", "error", err)
		return nil, nil, StatusNeedMoreData, false
	}
	nalType := int(nu.Type)
	refIdc := int(nu.RefIdc)

	switch {
	case nalType == h264dec.NALTypeSPS:
		sps, err := h264dec.NewSPS(nu.RBSP, false)
		if err != nil {
			p.logWarn("could not parse SPS", "error", err)
			return nil, nil, StatusNeedMoreData, false
		}
		p.spsTable[sps.SPSID] = sps
		p.state |= stateHaveSPS
		return nil, nil, StatusNeedMoreData, true

	case nalType == h264dec.NALTypePPS:
		chroma := 1 // default 4:2:0 if no SPS has been seen yet
		if sps := p.anySPS(); sps != nil {
			chroma = int(sps.ChromaFormatIDC)
		}
		pbr := bits.NewBitReader(bytes.NewReader(nu.RBSP))
		pps, err := h264dec.NewPPS(pbr, chroma)
		if err != nil {
			p.logWarn("could not parse PPS", "error", err)
			return nil, nil, StatusNeedMoreData, false
		}
		p.ppsTable[pps.ID] = pps
		p.state |= stateHavePPS
		return nil, nil, StatusNeedMoreData, true
	}

	// Rule 3: anything else received before HaveSPS is discarded.
	if p.state&stateHaveSPS == 0 {
		p.partialOut = nil
		p.hasSlice = false
		return nil, nil, StatusNeedMoreData, true
	}

	if isVCL(nalType) {
		ppsID, err := h264dec.PeekPPSID(nu.RBSP)
		if err != nil {
			p.logWarn("could not read slice header pic_parameter_set_id", "error", err)
			return nil, nil, StatusNeedMoreData, false
		}
		pps := p.ppsTable[ppsID]
		sps := p.spsForPPS(pps)
		if sps == nil || pps == nil {
			p.logWarn("VCL NALU references unknown SPS/PPS, discarding")
			return nil, nil, StatusNeedMoreData, false
		}

		header, err := h264dec.ParseSliceHeaderPrefix(nu.RBSP, sps, pps, nalType == h264dec.NALTypeIDR)
		if err != nil {
			p.logWarn("could not parse slice header", "error", err)
			return nil, nil, StatusNeedMoreData, false
		}

		if !p.hasSlice {
			p.appendNAL(nalBytes)
			p.hasSlice = true
			p.setLast(header, nalType, refIdc, sps)
			p.state |= stateHaveFrame
			return nil, nil, StatusNeedMoreData, true
		}

		if p.haveLast && p.newPicture(header, nalType, refIdc, sps) {
			emitted := p.partialOut
			p.partialOut = nil
			p.appendNAL(nalBytes)
			p.setLast(header, nalType, refIdc, sps)
			cfg := p.maybeEmitConfig(sps)
			return emitted, cfg, StatusSuccess, true
		}

		p.appendNAL(nalBytes)
		p.setLast(header, nalType, refIdc, sps)
		return nil, nil, StatusNeedMoreData, true
	}

	// Non-VCL "other" NALU (SEI/AUD/prefix/sub-SPS/reserved, etc.): ends
	// the current access unit if one is open, then starts the next one
	// with this NALU as its first member.
	if p.hasSlice {
		emitted := p.partialOut
		p.partialOut = nil
		p.appendNAL(nalBytes)
		p.hasSlice = false
		return emitted, nil, StatusSuccess, true
	}
	p.appendNAL(nalBytes)
	return nil, nil, StatusNeedMoreData, true
}

// appendNAL appends nalBytes (with its canonical 4-byte start code
// restored) to partialOut.
func (p *Parser) appendNAL(nalBytes []byte) {
	p.partialOut = append(p.partialOut, h264dec.InitialNALU...)
	p.partialOut = append(p.partialOut, nalBytes...)
}

func (p *Parser) setLast(h *h264dec.SliceHeader, nalType, refIdc int, sps *h264dec.SPS) {
	p.lastHeader = h
	p.lastNALType = nalType
	p.lastRefIdc = refIdc
	p.haveLast = true
}

// anySPS returns an arbitrary SPS from the table, used only to guess a
// chroma format while parsing a PPS that precedes any SPS in the stream.
func (p *Parser) anySPS() *h264dec.SPS {
	for _, s := range p.spsTable {
		return s
	}
	return nil
}

func (p *Parser) spsForPPS(pps *h264dec.PPS) *h264dec.SPS {
	if pps == nil {
		return nil
	}
	return p.spsTable[uint64(pps.SPSID)]
}

// newPicture implements spec §4.3's new-picture predicate.
func (p *Parser) newPicture(h *h264dec.SliceHeader, nalType, refIdc int, sps *h264dec.SPS) bool {
	last := p.lastHeader
	if h.FrameNum != last.FrameNum {
		return true
	}
	if h.PPSID != last.PPSID {
		return true
	}
	if h.FieldPic != last.FieldPic {
		return true
	}
	if sps.FrameMBSOnlyFlag && h.FieldPic && last.FieldPic && h.BottomField != last.BottomField {
		return true
	}
	if (refIdc == 0) != (p.lastRefIdc == 0) {
		return true
	}
	if sps.PicOrderCountType == 0 {
		if h.PicOrderCntLsb != last.PicOrderCntLsb || h.DeltaPicOrderCntBottom != last.DeltaPicOrderCntBottom {
			return true
		}
	}
	if sps.PicOrderCountType == 1 {
		if !equalDeltaPOC(h.DeltaPicOrderCnt, last.DeltaPicOrderCnt) {
			return true
		}
	}
	curIDR := nalType == h264dec.NALTypeIDR
	lastIDR := p.lastNALType == h264dec.NALTypeIDR
	if curIDR != lastIDR {
		return true
	}
	if curIDR && lastIDR && h.IDRPicID != last.IDRPicID {
		return true
	}
	return false
}

func equalDeltaPOC(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// maybeEmitConfig returns a DecoderInputConfig if it differs from the
// last one emitted, nil otherwise (spec §4.3 "Configuration emission").
func (p *Parser) maybeEmitConfig(sps *h264dec.SPS) *DecoderInputConfig {
	w, h := sps.Dimensions()
	cfg := DecoderInputConfig{
		Profile:            int(sps.Profile),
		Level:              int(sps.LevelIDC),
		BitDepth:           int(sps.BitDepthLumaMinus8) + 8,
		Width:              w,
		Height:             h,
		ChromaMode:         "4:2:0",
		ScanType:            scanType(sps),
		CodecID:            "H264",
		EntropyBufferCount: 2,
		SplitBufferMode:    false,
		LowLatency:         false,
	}
	if num, den, err := sps.FrameRate(); err == nil {
		cfg.FrameRateNum = num
		cfg.ClockRatio = den
	}

	if p.haveLastConf && p.lastConfig.equal(cfg) {
		return nil
	}
	p.lastConfig = cfg
	p.haveLastConf = true
	return &cfg
}

func scanType(sps *h264dec.SPS) string {
	if sps.FrameMBSOnlyFlag {
		return "progressive"
	}
	return "interlaced"
}

func (p *Parser) logWarn(msg string, params ...interface{}) {
	if p.log != nil {
		p.log.Warning(msg, params...)
	}
}

// Destroy releases the parser's owned partial-input/output buffers
// (spec §4.3 "Destroy").
func (p *Parser) Destroy() {
	p.partialIn = nil
	p.partialOut = nil
}
