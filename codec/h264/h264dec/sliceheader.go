package h264dec

import (
	"bytes"

	"github.com/ausocean/vvasgo/codec/h264/h264dec/bits"
	"github.com/pkg/errors"
)

// PeekPPSID reads just enough of a slice_header() (first_mb_in_slice,
// slice_type, pic_parameter_set_id) to learn which PPS governs this
// slice, without requiring an active SPS/PPS the way
// ParseSliceHeaderPrefix does.
func PeekPPSID(rbsp []byte) (int, error) {
	br := bits.NewBitReader(bytes.NewReader(rbsp))
	if _, err := readUe(br); err != nil {
		return 0, errors.Wrap(err, "error reading first_mb_in_slice")
	}
	if _, err := readUe(br); err != nil {
		return 0, errors.Wrap(err, "error reading slice_type")
	}
	ppsID, err := readUe(br)
	if err != nil {
		return 0, errors.Wrap(err, "error reading pic_parameter_set_id")
	}
	return int(ppsID), nil
}

// ParseSliceHeaderPrefix parses the fields of a slice_header() (7.3.3)
// needed to detect a new picture (7.4.1.2.4), stopping immediately after
// delta_pic_order_cnt. It does not parse ref_pic_list_modification,
// pred_weight_table, dec_ref_pic_marking, or any of the macroblock-level
// data that follows: none of that is needed to distinguish one picture's
// slices from another's, which is all GetAccessUnit requires.
//
// isIDR must reflect whether the containing NALU's type is 5 (IDR).
func ParseSliceHeaderPrefix(rbsp []byte, sps *SPS, pps *PPS, isIDR bool) (*SliceHeader, error) {
	if sps == nil {
		return nil, errors.New("no active SPS")
	}
	if pps == nil {
		return nil, errors.New("no active PPS")
	}

	h := &SliceHeader{DeltaPicOrderCnt: make([]int, 2)}
	br := bits.NewBitReader(bytes.NewReader(rbsp))
	r := newFieldReader(br)

	h.FirstMbInSlice = int(r.readUe())
	h.SliceType = int(r.readUe())
	h.PPSID = int(r.readUe())

	if sps.SeparateColorPlaneFlag {
		h.ColorPlaneID = int(r.readBits(2))
	}

	h.FrameNum = int(r.readBits(int(sps.Log2MaxFrameNumMinus4 + 4)))

	if !sps.FrameMBSOnlyFlag {
		h.FieldPic = r.readBits(1) == 1
		if h.FieldPic {
			h.BottomField = r.readBits(1) == 1
		}
	}

	if isIDR {
		h.IDRPicID = int(r.readUe())
	}

	if sps.PicOrderCountType == 0 {
		h.PicOrderCntLsb = int(r.readBits(int(sps.Log2MaxPicOrderCntLSBMin4 + 4)))
		if pps.BottomFieldPicOrderInFramePresent && !h.FieldPic {
			h.DeltaPicOrderCntBottom = r.readSe()
		}
	}

	if sps.PicOrderCountType == 1 && !sps.DeltaPicOrderAlwaysZeroFlag {
		h.DeltaPicOrderCnt[0] = r.readSe()
		if pps.BottomFieldPicOrderInFramePresent && !h.FieldPic {
			h.DeltaPicOrderCnt[1] = r.readSe()
		}
	}

	if err := r.err(); err != nil {
		return nil, errors.Wrap(err, "error parsing slice header prefix")
	}
	return h, nil
}
