package h264dec

// NAL unit types as defined by Table 7-1 of ITU-T H.264 (04/2017).
const (
	NALTypeUnspecified            = 0
	NALTypeNonIDR                 = 1
	NALTypeDataPartitionA         = 2
	NALTypeDataPartitionB         = 3
	NALTypeDataPartitionC         = 4
	NALTypeIDR                    = 5
	NALTypeSEI                    = 6
	NALTypeSPS                    = 7
	NALTypePPS                    = 8
	NALTypeAccessUnitDelimiter    = 9
	NALTypeEndOfSequence          = 10
	NALTypeEndOfStream            = 11
	NALTypeFillerData             = 12
	NALTypeSPSExtension           = 13
	naluTypePrefixNALU            = 14
	NALTypeSubsetSPS              = 15
	NALTypeDepthParameterSet      = 16
	// 17, 18 reserved.
	NALTypeAuxCodedPicture  = 19
	naluTypeSliceLayerExtRBSP  = 20
	naluTypeSliceLayerExtRBSP2 = 21
	// 22, 23 reserved.
)

// InitialNALU is the four-byte Annex-B start code prefix (00 00 00 01) used
// to recognize the beginning of a NAL unit in a byte-stream search.
var InitialNALU = []byte{0x00, 0x00, 0x00, 0x01}
