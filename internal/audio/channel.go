package audio

// ChannelPosition identifies a speaker position in the stream layout.
type ChannelPosition int

const (
	PositionMono ChannelPosition = iota
	PositionFrontLeft
	PositionFrontRight
	PositionFrontCenter
	PositionLfe
	PositionRearLeft
	PositionRearRight
	PositionRearCenter
	PositionSideLeft
	PositionSideRight
	PositionUnknown
)

// Side is the stereo-field grouping a channel is drawn as.
type Side int

const (
	SideCenter Side = iota
	SideLeft
	SideRight
	SideNotLocalized
)

// Channel describes how one stream channel is rendered: which side of
// the field it sits on and how strongly it contributes.
type Channel struct {
	Side   Side
	Factor float64
}

// NewChannel derives the rendering weight for a speaker position.
// Front positions dominate, rears and sides are progressively dimmer,
// LFE has no position at all.
func NewChannel(pos ChannelPosition) Channel {
	switch pos {
	case PositionMono:
		return Channel{Side: SideCenter, Factor: 0.9}
	case PositionFrontLeft:
		return Channel{Side: SideLeft, Factor: 0.9}
	case PositionFrontRight:
		return Channel{Side: SideRight, Factor: 0.9}
	case PositionFrontCenter:
		return Channel{Side: SideCenter, Factor: 0.9}
	case PositionLfe:
		return Channel{Side: SideNotLocalized, Factor: 0.75}
	case PositionRearLeft:
		return Channel{Side: SideLeft, Factor: 0.5}
	case PositionRearRight:
		return Channel{Side: SideRight, Factor: 0.5}
	case PositionRearCenter:
		return Channel{Side: SideCenter, Factor: 0.5}
	case PositionSideLeft:
		return Channel{Side: SideLeft, Factor: 0.66}
	case PositionSideRight:
		return Channel{Side: SideRight, Factor: 0.66}
	default:
		return Channel{Side: SideNotLocalized, Factor: 0.6}
	}
}

// DefaultLayout maps a plain channel count to speaker positions using
// the common orderings: mono, stereo, 3.0, quad, 5.0, 5.1, 6.1, 7.1.
func DefaultLayout(n int) []ChannelPosition {
	switch n {
	case 1:
		return []ChannelPosition{PositionMono}
	case 2:
		return []ChannelPosition{PositionFrontLeft, PositionFrontRight}
	case 3:
		return []ChannelPosition{PositionFrontLeft, PositionFrontRight, PositionFrontCenter}
	case 4:
		return []ChannelPosition{
			PositionFrontLeft, PositionFrontRight,
			PositionRearLeft, PositionRearRight,
		}
	case 5:
		return []ChannelPosition{
			PositionFrontLeft, PositionFrontRight, PositionFrontCenter,
			PositionRearLeft, PositionRearRight,
		}
	case 6:
		return []ChannelPosition{
			PositionFrontLeft, PositionFrontRight, PositionFrontCenter,
			PositionLfe, PositionRearLeft, PositionRearRight,
		}
	case 7:
		return []ChannelPosition{
			PositionFrontLeft, PositionFrontRight, PositionFrontCenter,
			PositionLfe, PositionRearLeft, PositionRearRight,
			PositionRearCenter,
		}
	case 8:
		return []ChannelPosition{
			PositionFrontLeft, PositionFrontRight, PositionFrontCenter,
			PositionLfe, PositionRearLeft, PositionRearRight,
			PositionSideLeft, PositionSideRight,
		}
	default:
		positions := make([]ChannelPosition, n)
		for i := range positions {
			positions[i] = PositionUnknown
		}
		return positions
	}
}
