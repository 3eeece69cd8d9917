package units

// SampleValue is one signed 16-bit PCM sample.
type SampleValue int16

// sampleRange spans the full excursion of a 16-bit sample. Dividing by
// half of it maps values into [-1, 1).
const sampleRange = 1 << 15

// Norm maps the sample into [-1, 1).
func (v SampleValue) Norm() float64 {
	return float64(v) / sampleRange
}
