package convolve

// StereoManager owns one Manager per channel, sharing a single impulse
// response while keeping each channel's delay-line and overlap-save state
// independent — the "dual-channel orchestration" responsibility of the
// Manager component in spec section 2, generalized from the teacher's
// per-channel engines slice (dsp/convolution.go's ConvolutionReverb.engines)
// to an arbitrary channel count.
type StereoManager struct {
	channels []*Manager
}

// NewStereo constructs a StereoManager with the given channel count (1 for
// mono, 2 for stereo), each channel built from the same ir and blockSize.
func NewStereo(channelCount int, ir []float32, blockSize int) (*StereoManager, error) {
	if channelCount <= 0 {
		channelCount = 1
	}

	s := &StereoManager{channels: make([]*Manager, channelCount)}
	for c := range s.channels {
		m, err := New(ir, blockSize)
		if err != nil {
			return nil, err
		}
		s.channels[c] = m
	}

	return s, nil
}

// ChannelCount returns the number of channels.
func (s *StereoManager) ChannelCount() int { return len(s.channels) }

// ProcessInput advances the given channel by one block.
func (s *StereoManager) ProcessInput(channel int, block []float32) {
	s.channels[channel].ProcessInput(block)
}

// OutputBuffer borrows the given channel's most recently produced block.
func (s *StereoManager) OutputBuffer(channel int) []float32 {
	return s.channels[channel].OutputBuffer()
}

// SetImpulseResponse installs ir on every channel. If any channel fails to
// rebuild, the others may already have been updated; callers that need
// atomicity across channels should validate ir before calling this.
func (s *StereoManager) SetImpulseResponse(ir []float32) error {
	for _, m := range s.channels {
		if err := m.SetImpulseResponse(ir); err != nil {
			return err
		}
	}

	return nil
}

// SetBlockSize changes the block size on every channel.
func (s *StereoManager) SetBlockSize(blockSize int) error {
	for _, m := range s.channels {
		if err := m.SetBlockSize(blockSize); err != nil {
			return err
		}
	}

	return nil
}
