package pl4

// Edge selects which end of the time series a crop removes.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// CropCount computes the number of samples to remove:
// floor(samplesPerCycle * lineFrequencyHz * secondsToRemove), clamped to >= 0.
// Example: 128 * 60 * 1.0 = 7680.
func CropCount(samplesPerCycle int, lineFrequencyHz, secondsToRemove float64) int {
	n := int(float64(samplesPerCycle) * lineFrequencyHz * secondsToRemove)
	if n < 0 {
		return 0
	}
	return n
}

// Crop removes n leading (edge=start) or trailing (edge=end) samples from the
// time vector and every channel row, recomputing the derived record count and
// max time from the unchanged sampling interval. Cropping is best-effort and
// never fails the pipeline: when n <= 0, n >= N, or the dataset's shape is
// inconsistent, the input is returned unchanged. The input Dataset is never
// mutated; a cropped result is a new Dataset.
func Crop(ds *Dataset, samplesPerCycle int, lineFrequencyHz, secondsToRemove float64, edge Edge) *Dataset {
	if ds == nil {
		return ds
	}
	n := CropCount(samplesPerCycle, lineFrequencyHz, secondsToRemove)
	total := len(ds.Time)
	if n <= 0 || n >= total {
		return ds
	}
	for _, row := range ds.Data {
		if len(row) != total {
			return ds
		}
	}

	out := &Dataset{
		Channels: ds.Channels,
		DeltaT:   ds.DeltaT,
		Data:     make([][]float32, len(ds.Data)),
	}
	if edge == EdgeEnd {
		out.Time = ds.Time[:total-n]
		for i, row := range ds.Data {
			out.Data[i] = row[:total-n]
		}
	} else {
		out.Time = ds.Time[n:]
		for i, row := range ds.Data {
			out.Data[i] = row[n:]
		}
	}
	out.Records = len(out.Time)
	out.TMax = float32(out.Records-1) * out.DeltaT
	return out
}

// CropColumns applies the same crop to a selected {time + named series} set:
// every series whose length equals the time vector's is cut identically,
// anything else passes through untouched. The returned maps are new; the
// inputs are not modified.
func CropColumns(time []float32, series map[string][]float32, samplesPerCycle int, lineFrequencyHz, secondsToRemove float64, edge Edge) ([]float32, map[string][]float32) {
	n := CropCount(samplesPerCycle, lineFrequencyHz, secondsToRemove)
	total := len(time)
	if n <= 0 || n >= total {
		return time, series
	}

	cut := func(s []float32) []float32 {
		if edge == EdgeEnd {
			return s[:len(s)-n]
		}
		return s[n:]
	}

	out := make(map[string][]float32, len(series))
	for name, values := range series {
		if len(values) == total {
			out[name] = cut(values)
		} else {
			out[name] = values
		}
	}
	return cut(time), out
}
